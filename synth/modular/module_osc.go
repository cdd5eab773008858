package modular

import (
	"math"
	"math/rand"

	"github.com/meko-christian/algo-approx"
)

// Waveform selectors shared by VCO and LFO.
const (
	waveSine = iota
	waveSaw
	waveSquare
	waveTriangle
)

const ln2 = 0.6931471805599453

// pow2 computes 2^x with the fast exponential approximation. It sits on the
// per-sample modulation path, where exactness matters less than cost.
func pow2(x float64) float64 {
	return approx.FastExp(x * ln2)
}

func waveSample(wave int, phase float64) float64 {
	switch wave {
	case waveSaw:
		return 2*phase - 1
	case waveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case waveTriangle:
		return 1 - 4*math.Abs(phase-0.5)
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// selectWave rounds a wave parameter to a valid selector.
func selectWave(v float64) int {
	w := int(math.Round(v))
	if w < waveSine {
		return waveSine
	}
	if w > waveTriangle {
		return waveTriangle
	}
	return w
}

// vcoModule is an audio-rate oscillator with a through-zero FM input and a
// hard-sync input. When tracking is on, the freq parameter acts as a ratio
// relative to A4, so the oscillator follows the voice pitch; with tracking
// off it free-runs at freq.
type vcoModule struct {
	sampleRate float64

	freq    float64
	wave    int
	fmDepth float64
	track   bool

	noteFreq float64
	phase    float64
	prevSync float64
}

func newVCO(ctx Context) (Module, error) {
	return &vcoModule{sampleRate: ctx.SampleRate, noteFreq: referenceA4}, nil
}

func (o *vcoModule) Configure(_ Context, params []float64) error {
	o.freq = params[0]
	o.wave = selectWave(params[1])
	o.fmDepth = params[2]
	o.track = params[3] >= 0.5

	return nil
}

func (o *vcoModule) NoteOn(freqHz, _ float64) {
	o.noteFreq = freqHz
}

func (o *vcoModule) NoteOff() {}

func (o *vcoModule) Reset() {
	o.phase = 0
	o.prevSync = 0
	o.noteFreq = referenceA4
}

func (o *vcoModule) Process(in, out [][]float64) {
	fm := in[0]
	sync := in[1]
	dst := out[0]

	base := o.freq
	if o.track {
		base = o.noteFreq * (o.freq / referenceA4)
	}

	step := 1.0 / o.sampleRate

	for i := range dst {
		if sync[i] >= 0.5 && o.prevSync < 0.5 {
			o.phase = 0
		}

		o.prevSync = sync[i]

		// Through-zero FM: the instantaneous frequency may go negative and
		// run the phase backwards.
		f := base * (1 + o.fmDepth*fm[i])

		o.phase += f * step
		o.phase -= math.Floor(o.phase)

		dst[i] = waveSample(o.wave, o.phase)
	}
}

// lfoModule is a control-rate oscillator. It ignores the voice pitch but its
// phase restarts with the voice, so repeated notes modulate identically.
type lfoModule struct {
	sampleRate float64

	rate  float64
	wave  int
	depth float64

	phase float64
}

func newLFO(ctx Context) (Module, error) {
	return &lfoModule{sampleRate: ctx.SampleRate}, nil
}

func (o *lfoModule) Configure(_ Context, params []float64) error {
	o.rate = params[0]
	o.wave = selectWave(params[1])
	o.depth = params[2]

	return nil
}

func (o *lfoModule) Reset() {
	o.phase = 0
}

func (o *lfoModule) Process(_, out [][]float64) {
	dst := out[0]
	step := o.rate / o.sampleRate

	for i := range dst {
		dst[i] = o.depth * waveSample(o.wave, o.phase)

		o.phase += step
		o.phase -= math.Floor(o.phase)
	}
}

// noiseModule is a white noise source with a deterministic per-voice seed, so
// identical control sequences render bit-identically.
type noiseModule struct {
	level float64
	seed  int64
	rng   *rand.Rand
}

func newNoise(_ Context) (Module, error) {
	return &noiseModule{seed: 1, rng: rand.New(rand.NewSource(1))}, nil
}

func (n *noiseModule) Configure(_ Context, params []float64) error {
	n.level = params[0]

	return nil
}

func (n *noiseModule) SetSeed(seed int64) {
	n.seed = seed
	n.rng = rand.New(rand.NewSource(seed))
}

func (n *noiseModule) Reset() {
	n.rng = rand.New(rand.NewSource(n.seed))
}

func (n *noiseModule) Process(_, out [][]float64) {
	dst := out[0]
	for i := range dst {
		dst[i] = (n.rng.Float64()*2 - 1) * n.level
	}
}
