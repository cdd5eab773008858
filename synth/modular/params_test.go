package modular

import (
	"math"
	"testing"
)

func TestParamSpecClamp(t *testing.T) {
	t.Parallel()

	spec := ParamSpec{ID: "cutoff", Default: 1000, Min: 20, Max: 20000}

	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"in range", 440, 440},
		{"below min", 1, 20},
		{"above max", 44100, 20000},
		{"at min", 20, 20},
		{"at max", 20000, 20000},
		{"nan falls back to default", math.NaN(), 1000},
		{"inf falls back to default", math.Inf(1), 1000},
		{"negative inf falls back to default", math.Inf(-1), 1000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := spec.Clamp(tc.in); got != tc.want {
				t.Errorf("Clamp(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDescriptorIndexes(t *testing.T) {
	t.Parallel()

	d := Descriptor{
		Kind: "Test",
		Inputs: []PortSpec{
			{ID: "in", Semantic: SemanticAudio},
			{ID: "mod", Semantic: SemanticCV},
		},
		Outputs: []PortSpec{{ID: "out", Semantic: SemanticAudio}},
		Params:  []ParamSpec{{ID: "level", Default: 1}},
	}

	if d.InputIndex("mod") != 1 || d.InputIndex("nope") != -1 {
		t.Error("InputIndex wrong")
	}

	if d.OutputIndex("out") != 0 || d.OutputIndex("in") != -1 {
		t.Error("OutputIndex wrong")
	}

	if d.ParamIndex("level") != 0 || d.ParamIndex("gain") != -1 {
		t.Error("ParamIndex wrong")
	}
}

func TestDescriptorDefaultParams(t *testing.T) {
	t.Parallel()

	d := Descriptor{
		Params: []ParamSpec{
			{ID: "a", Default: 0.25},
			{ID: "b", Default: 4},
		},
	}

	got := d.DefaultParams()
	if len(got) != 2 || got[0] != 0.25 || got[1] != 4 {
		t.Errorf("DefaultParams = %v", got)
	}

	// Must be a fresh slice each call.
	got[0] = 99
	if d.DefaultParams()[0] != 0.25 {
		t.Error("DefaultParams shares state between calls")
	}
}

func TestPortSemanticString(t *testing.T) {
	t.Parallel()

	if SemanticAudio.String() != "audio" || SemanticCV.String() != "cv" {
		t.Error("semantic names wrong")
	}
}
