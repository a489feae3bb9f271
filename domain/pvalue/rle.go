package pvalue

// Run describes one maximal run of equal consecutive values.
type Run[T comparable] struct {
	Length int
	Start  int
	Value  T
}

// EncodeRuns run-length encodes a sequence into maximal runs of equal values.
// Runs cover the input in order with no gaps or overlaps; an empty input yields
// an empty result. Comparison is equality-based, so the encoder works on
// booleans and strings as well as numbers.
func EncodeRuns[T comparable](seq []T) []Run[T] {
	if len(seq) == 0 {
		return nil
	}
	runs := make([]Run[T], 0, 4)
	start := 0
	for i := 1; i <= len(seq); i++ {
		if i == len(seq) || seq[i] != seq[start] {
			runs = append(runs, Run[T]{Length: i - start, Start: start, Value: seq[start]})
			start = i
		}
	}
	return runs
}

// DecodeRuns reconstructs the original sequence from its run-length encoding.
func DecodeRuns[T comparable](runs []Run[T]) []T {
	n := 0
	for _, r := range runs {
		n += r.Length
	}
	out := make([]T, 0, n)
	for _, r := range runs {
		for i := 0; i < r.Length; i++ {
			out = append(out, r.Value)
		}
	}
	return out
}
