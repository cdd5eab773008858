package modular

import (
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-synth/synth/core"
	"github.com/cwbudde/algo-vecmath"
)

// Engine executes one modular patch at a time. Control methods (LoadPatch,
// SetParameter, NoteOn, NoteOff, AllNotesOff) belong to a single control
// goroutine; RenderBlock belongs to the audio callback. The two sides meet
// only through the event ring and an atomic patch pointer, so the render
// path never blocks and never allocates in steady state.
type Engine struct {
	cfg core.ProcessorConfig
	ctx Context
	reg *Registry

	events *eventRing
	patch  atomic.Pointer[enginePatch]
	mix    []float64

	// Control-thread state.
	nextID uint64
	gen    uint64
}

// enginePatch is one loaded patch with its voice pool and shared parameter
// values. Built entirely off the render path and published atomically.
type enginePatch struct {
	gen     uint64
	cp      *compiledPatch
	index   map[string]int
	params  [][]float64
	dirty   []bool
	voices  []*voice
	counter uint64
}

// NewEngine creates an engine bound to a descriptor registry. A nil registry
// selects the builtin catalog.
func NewEngine(reg *Registry, opts ...core.ProcessorOption) (*Engine, error) {
	cfg := core.ApplyProcessorOptions(opts...)
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be > 0: %f", cfg.SampleRate)
	}

	if cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("block size must be > 0: %d", cfg.BlockSize)
	}

	if reg == nil {
		reg = DefaultRegistry()
	}

	return &Engine{
		cfg:    cfg,
		ctx:    Context{SampleRate: cfg.SampleRate, BlockSize: cfg.BlockSize},
		reg:    reg,
		events: newEventRing(),
		mix:    make([]float64, cfg.BlockSize),
	}, nil
}

// Config returns the engine's processing configuration.
func (e *Engine) Config() core.ProcessorConfig {
	return e.cfg
}

// Catalog returns the registered module descriptors for patch editors.
func (e *Engine) Catalog() []Descriptor {
	return e.reg.Catalog()
}

// LoadPatch validates and compiles a patch, builds its voice pool, and swaps
// it in at the next block boundary. On error the previously loaded patch
// keeps playing untouched.
func (e *Engine) LoadPatch(p Patch) error {
	cp, err := compilePatch(e.reg, p)
	if err != nil {
		return err
	}

	ep := &enginePatch{
		gen:    e.gen + 1,
		cp:     cp,
		index:  make(map[string]int, len(cp.modules)),
		params: make([][]float64, len(cp.modules)),
		dirty:  make([]bool, len(cp.modules)),
		voices: make([]*voice, cp.polyphony),
	}

	for i, m := range cp.modules {
		ep.index[m.id] = i
		ep.params[i] = append([]float64(nil), m.params...)
	}

	for i := range ep.voices {
		v, err := newVoice(cp, e.ctx, ep.params, int64(i)+1)
		if err != nil {
			return err
		}

		ep.voices[i] = v
	}

	e.gen++
	e.patch.Store(ep)

	return nil
}

// LoadPatchJSON parses and loads a JSON patch description.
func (e *Engine) LoadPatchJSON(raw []byte) error {
	p, err := ParsePatch(raw)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPatchGraph, err)
	}

	return e.LoadPatch(p)
}

// SetParameter queues a parameter change, applied to all voices at the next
// block boundary. The value is clamped to the descriptor range. Unknown
// module or parameter IDs return an error and change nothing.
func (e *Engine) SetParameter(moduleID, paramID string, value float64) error {
	p := e.patch.Load()
	if p == nil {
		return ErrNoPatch
	}

	m, ok := p.index[moduleID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModule, moduleID)
	}

	desc := p.cp.modules[m].desc

	pi := desc.ParamIndex(paramID)
	if pi < 0 {
		return fmt.Errorf("%w: %s.%s", ErrUnknownParameter, moduleID, paramID)
	}

	ok = e.events.push(event{
		kind:   evParam,
		gen:    p.gen,
		module: m,
		param:  pi,
		value:  desc.Params[pi].Clamp(value),
	})
	if !ok {
		return fmt.Errorf("parameter update %s.%s dropped: event queue full", moduleID, paramID)
	}

	return nil
}

// NoteOn queues a note start and returns its voice ID for a later NoteOff.
// Pitch is in MIDI semitones (69 = A4), velocity in [0, 1]. Returns 0 if
// the event queue is full and the note was dropped.
func (e *Engine) NoteOn(pitch, velocity float64) uint64 {
	if velocity < 0 {
		velocity = 0
	}

	if velocity > 1 {
		velocity = 1
	}

	e.nextID++
	id := e.nextID

	ok := e.events.push(event{
		kind:     evNoteOn,
		voiceID:  id,
		freqHz:   SemitoneToHz(pitch),
		velocity: velocity,
	})
	if !ok {
		return 0
	}

	return id
}

// NoteOff queues the release of the given voice. Stale IDs (stolen or
// already reclaimed voices) are ignored.
func (e *Engine) NoteOff(voiceID uint64) {
	if voiceID == 0 {
		return
	}

	e.events.push(event{kind: evNoteOff, voiceID: voiceID})
}

// AllNotesOff queues the release of every sounding voice.
func (e *Engine) AllNotesOff() {
	e.events.push(event{kind: evAllNotesOff})
}

// SemitoneToHz converts a MIDI semitone pitch to frequency in Hz.
func SemitoneToHz(pitch float64) float64 {
	return referenceA4 * pow2((pitch-69)/12)
}

// RenderBlock renders up to frameCount frames of mixed audio, consuming
// pending control events at the block boundary first. The returned slice is
// reused by the next call. Without a loaded patch it renders silence.
func (e *Engine) RenderBlock(frameCount int) []float64 {
	if frameCount <= 0 {
		return nil
	}

	if frameCount > e.cfg.BlockSize {
		frameCount = e.cfg.BlockSize
	}

	p := e.patch.Load()
	e.drainEvents(p)

	mix := e.mix[:frameCount]
	core.Zero(mix)

	if p == nil {
		return mix
	}

	e.applyDirtyParams(p)

	for _, v := range p.voices {
		if !v.active {
			continue
		}

		v.render(frameCount)
		vecmath.AddBlockInPlace(mix, v.out[:frameCount])
	}

	return mix
}

func (e *Engine) drainEvents(p *enginePatch) {
	for {
		ev, ok := e.events.pop()
		if !ok {
			return
		}

		if p == nil {
			continue
		}

		switch ev.kind {
		case evNoteOn:
			p.allocateVoice(ev)
		case evNoteOff:
			for _, v := range p.voices {
				if v.active && v.id == ev.voiceID {
					v.noteOff()
					break
				}
			}
		case evAllNotesOff:
			for _, v := range p.voices {
				if v.active {
					v.noteOff()
				}
			}
		case evParam:
			if ev.gen == p.gen {
				p.params[ev.module][ev.param] = ev.value
				p.dirty[ev.module] = true
			}
		}
	}
}

// applyDirtyParams reconfigures changed modules on every voice so parameter
// updates take effect atomically at the block start.
func (e *Engine) applyDirtyParams(p *enginePatch) {
	for m, dirty := range p.dirty {
		if !dirty {
			continue
		}

		p.dirty[m] = false

		for _, v := range p.voices {
			// Builtin modules accept any clamped parameter set; a failure
			// here cannot be surfaced from the audio thread.
			_ = v.slots[m].mod.Configure(e.ctx, p.params[m])
		}
	}
}

// allocateVoice picks a free voice, or steals one: the oldest releasing
// voice first, the oldest sounding voice if none are releasing. Trigger
// order makes the policy deterministic.
func (p *enginePatch) allocateVoice(ev event) {
	var best *voice

	for _, v := range p.voices {
		if !v.active {
			best = v
			break
		}
	}

	if best == nil {
		for _, v := range p.voices {
			if !v.releasing() {
				continue
			}

			if best == nil || v.age < best.age {
				best = v
			}
		}
	}

	if best == nil {
		for _, v := range p.voices {
			if best == nil || v.age < best.age {
				best = v
			}
		}
	}

	p.counter++
	best.noteOn(ev.voiceID, p.counter, ev.freqHz, ev.velocity)
}
