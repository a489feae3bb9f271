package pvalue

import (
	"reflect"
	"testing"
)

func TestEncodeRuns_Reconstruction(t *testing.T) {
	cases := [][]int{
		{},
		{1},
		{1, 1, 1},
		{1, 2, 3},
		{1, 1, 2, 2, 2, 1, 3, 3},
		{0, 0, 0, 5, 5, 5, 0, 0, 0},
	}
	for _, seq := range cases {
		runs := EncodeRuns(seq)
		if len(seq) == 0 {
			if runs != nil {
				t.Errorf("empty input should encode to nil, got %v", runs)
			}
			continue
		}

		total := 0
		prevStart := -1
		for _, r := range runs {
			if r.Start <= prevStart {
				t.Errorf("run starts not strictly increasing in %v: %v", seq, runs)
			}
			if r.Start != total {
				t.Errorf("run %v does not start where the previous ended in %v", r, seq)
			}
			prevStart = r.Start
			total += r.Length
		}
		if total != len(seq) {
			t.Errorf("run lengths sum to %d, want %d for %v", total, len(seq), seq)
		}
		if got := DecodeRuns(runs); !reflect.DeepEqual(got, seq) {
			t.Errorf("decode(encode(%v)) = %v", seq, got)
		}
	}
}

func TestEncodeRuns_NonNumericTypes(t *testing.T) {
	strRuns := EncodeRuns([]string{"a", "a", "b", "a"})
	want := []Run[string]{
		{Length: 2, Start: 0, Value: "a"},
		{Length: 1, Start: 2, Value: "b"},
		{Length: 1, Start: 3, Value: "a"},
	}
	if !reflect.DeepEqual(strRuns, want) {
		t.Errorf("string runs = %v, want %v", strRuns, want)
	}

	boolRuns := EncodeRuns([]bool{false, false, true, true, true})
	if len(boolRuns) != 2 || boolRuns[1].Start != 2 || boolRuns[1].Length != 3 {
		t.Errorf("bool runs = %v", boolRuns)
	}
}
