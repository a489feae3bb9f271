package pvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvert_FullMatrix(t *testing.T) {
	// Row is the raw class, column the filtered class.
	want := map[Class]map[Class]string{
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

	for _, raw := range Classes {
		for _, filtered := range Classes {
			got, err := Convert(raw, filtered)
			assert.NoError(t, err, "lookup must be total over the class domain")
			assert.Equal(t, want[raw][filtered], got, "conversion(%s, %s)", raw, filtered)
		}
	}
}

func TestConvert_Asymmetry(t *testing.T) {
	ab, err := Convert(ClassConservative, ClassAntiConservative)
	assert.NoError(t, err)
	ba, err := Convert(ClassAntiConservative, ClassConservative)
	assert.NoError(t, err)
	assert.Equal(t, "improvement, effects", ab)
	assert.Equal(t, "worsen", ba)
}

func TestConvert_UnknownClass(t *testing.T) {
	_, err := Convert(Class("bimodal"), ClassUniform)
	assert.Error(t, err)
	_, err = Convert(ClassUniform, Class("bimodal"))
	assert.Error(t, err)
}
