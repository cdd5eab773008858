package modular

// Envelope stages.
const (
	stageIdle = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

// adsrModule is a linear-segment gate envelope. The gate is the logical OR
// of the voice note gate and the gate CV input, so an envelope can be
// retriggered from elsewhere in the patch. Its release tail keeps the voice
// alive until the level reaches zero.
type adsrModule struct {
	sampleRate float64

	attack   float64
	decay    float64
	sustain  float64
	release  float64
	velSense float64

	stage    int
	level    float64
	noteGate bool
	velocity float64
	lastGate bool
}

func newADSR(ctx Context) (Module, error) {
	return &adsrModule{sampleRate: ctx.SampleRate, velocity: 1}, nil
}

func (a *adsrModule) Configure(_ Context, params []float64) error {
	a.attack = params[0]
	a.decay = params[1]
	a.sustain = params[2]
	a.release = params[3]
	a.velSense = params[4]

	return nil
}

func (a *adsrModule) NoteOn(_, velocity float64) {
	a.noteGate = true
	a.velocity = velocity
}

func (a *adsrModule) NoteOff() {
	a.noteGate = false
}

func (a *adsrModule) TailActive() bool {
	return a.stage != stageIdle
}

func (a *adsrModule) Reset() {
	a.stage = stageIdle
	a.level = 0
	a.noteGate = false
	a.lastGate = false
	a.velocity = 1
}

func (a *adsrModule) Process(in, out [][]float64) {
	gateIn := in[0]
	dst := out[0]

	dt := 1.0 / a.sampleRate
	scale := 1 - a.velSense + a.velSense*a.velocity

	for i := range dst {
		gate := a.noteGate || gateIn[i] >= 0.5

		if gate && !a.lastGate {
			a.stage = stageAttack
		}

		if !gate && a.lastGate && a.stage != stageIdle {
			a.stage = stageRelease
		}

		a.lastGate = gate

		switch a.stage {
		case stageAttack:
			a.level += dt / a.attack
			if a.level >= 1 {
				a.level = 1
				a.stage = stageDecay
			}
		case stageDecay:
			a.level -= dt * (1 - a.sustain) / a.decay
			if a.level <= a.sustain {
				a.level = a.sustain
				a.stage = stageSustain
			}
		case stageSustain:
			a.level = a.sustain
		case stageRelease:
			a.level -= dt / a.release
			if a.level <= 0 {
				a.level = 0
				a.stage = stageIdle
			}
		}

		dst[i] = a.level * scale
	}
}
