package modular

import "math"

// cutoffModOctaves is the full-scale CV swing of the cutoff modulation
// input: a +1 CV at modDepth 1 raises the cutoff by five octaves.
const cutoffModOctaves = 5.0

// vcfModule is a four-pole lowpass ladder with resonance feedback and an
// exponential cutoff modulation input. The input stage is saturated with
// tanh so high resonance stays bounded.
type vcfModule struct {
	sampleRate float64

	cutoff    float64
	resonance float64
	modDepth  float64

	y1, y2, y3, y4 float64
}

func newVCF(ctx Context) (Module, error) {
	return &vcfModule{sampleRate: ctx.SampleRate}, nil
}

func (f *vcfModule) Configure(_ Context, params []float64) error {
	f.cutoff = params[0]
	f.resonance = params[1]
	f.modDepth = params[2]

	return nil
}

func (f *vcfModule) Reset() {
	f.y1, f.y2, f.y3, f.y4 = 0, 0, 0, 0
}

func (f *vcfModule) Process(in, out [][]float64) {
	audio := in[0]
	mod := in[1]
	dst := out[0]

	maxCutoff := 0.45 * f.sampleRate
	norm := 2 * math.Pi / f.sampleRate
	k := f.resonance

	for i := range dst {
		fc := f.cutoff
		if f.modDepth != 0 && mod[i] != 0 {
			fc *= pow2(mod[i] * f.modDepth * cutoffModOctaves)
		}

		if fc < 20 {
			fc = 20
		}

		if fc > maxCutoff {
			fc = maxCutoff
		}

		g := 1 - math.Exp(-fc*norm)

		x := math.Tanh(audio[i] - k*f.y4)
		f.y1 += g * (x - f.y1)
		f.y2 += g * (f.y1 - f.y2)
		f.y3 += g * (f.y2 - f.y3)
		f.y4 += g * (f.y3 - f.y4)

		dst[i] = f.y4
	}
}
