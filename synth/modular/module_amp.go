package modular

import (
	"github.com/cwbudde/algo-synth/synth/core"
	"github.com/cwbudde/algo-vecmath"
)

// vcaModule multiplies its audio input by a gain CV. The gain bus defaults
// to unity when unconnected, so a bare VCA is a level control. Negative
// summed gain clamps at zero rather than inverting.
type vcaModule struct {
	level float64
}

func newVCA(_ Context) (Module, error) {
	return &vcaModule{}, nil
}

func (v *vcaModule) Configure(_ Context, params []float64) error {
	v.level = params[0]

	return nil
}

func (v *vcaModule) Reset() {}

func (v *vcaModule) Process(in, out [][]float64) {
	audio := in[0]
	gain := in[1]
	dst := out[0]

	for i := range dst {
		g := gain[i]
		if g < 0 {
			g = 0
		}

		dst[i] = audio[i] * g * v.level
	}
}

// outputModule is the terminal sink of a voice graph. It has no output
// ports; the voice manager reads the level-scaled block through Terminal.
type outputModule struct {
	level float64
	buf   []float64
}

func newOutput(ctx Context) (Module, error) {
	return &outputModule{buf: make([]float64, ctx.BlockSize)}, nil
}

func (o *outputModule) Configure(_ Context, params []float64) error {
	o.level = params[0]

	return nil
}

func (o *outputModule) Reset() {
	core.Zero(o.buf)
}

func (o *outputModule) Process(in, _ [][]float64) {
	o.buf = core.EnsureLen(o.buf, len(in[0]))
	vecmath.ScaleBlock(o.buf, in[0], o.level)
}

func (o *outputModule) Rendered() []float64 {
	return o.buf
}
