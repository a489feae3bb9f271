package pvalue

import (
	apperrors "suppqc/internal/errors"
)

// conversionMatrix maps (raw class, filtered class) to a qualitative assessment
// of what expression-level filtering did to the p-value distribution. Row is
// the raw class, column the filtered class. The table is fixed domain knowledge
// and intentionally asymmetric.
var conversionMatrix = map[Class]map[Class]string{
	ClassUniform: {
		ClassUniform:          "same good",
		ClassAntiConservative: "improve, effects",
		ClassConservative:     "worsen",
		ClassOther:            "worsen",
	},
	ClassAntiConservative: {
		ClassUniform:          "effects lost",
		ClassAntiConservative: "same good",
		ClassConservative:     "worsen",
		ClassOther:            "worsen",
	},
	ClassConservative: {
		ClassUniform:          "improvement, no effects",
		ClassAntiConservative: "improvement, effects",
		ClassConservative:     "same bad",
		ClassOther:            "no improvement",
	},
	ClassOther: {
		ClassUniform:          "improvement, no effects",
		ClassAntiConservative: "improvement, effects",
		ClassConservative:     "no improvement",
		ClassOther:            "same bad",
	},
}

// Convert looks up the conversion label for a raw and a filtered histogram
// class. The lookup is total over the four by four class domain; unknown
// classes are a validation error.
func Convert(raw, filtered Class) (string, error) {
	row, ok := conversionMatrix[raw]
	if !ok {
		return "", apperrors.ValidationError("unknown raw histogram class: " + string(raw))
	}
	label, ok := row[filtered]
	if !ok {
		return "", apperrors.ValidationError("unknown filtered histogram class: " + string(filtered))
	}
	return label, nil
}
