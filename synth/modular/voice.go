package modular

import (
	"fmt"

	"github.com/cwbudde/algo-synth/synth/core"
	"github.com/cwbudde/algo-vecmath"
)

// moduleSlot holds one module instance in a voice: its buses and output
// buffers plus the resolved capability interfaces.
type moduleSlot struct {
	mod  Module
	note NoteReceiver
	tail TailReporter
	sink Terminal

	// in holds one accumulation bus per input port. cur and prev hold one
	// output buffer per output port, swapped each block so delayed edges can
	// read the previous block.
	in   [][]float64
	cur  [][]float64
	prev [][]float64
}

// voice is one polyphonic clone of the patch's module graph, bound to a
// single note. Parameter values and the connection table are shared
// read-only across voices; only per-instance DSP state lives here.
type voice struct {
	cp  *compiledPatch
	ctx Context

	slots   []moduleSlot
	scratch []float64
	out     []float64

	id       uint64
	age      uint64
	gate     bool
	active   bool
	hasTails bool
}

// newVoice instantiates fresh modules for every patch slot and configures
// them with the shared parameter values. seed makes stochastic modules
// deterministic per voice slot.
func newVoice(cp *compiledPatch, ctx Context, params [][]float64, seed int64) (*voice, error) {
	v := &voice{
		cp:      cp,
		ctx:     ctx,
		slots:   make([]moduleSlot, len(cp.modules)),
		scratch: make([]float64, ctx.BlockSize),
		out:     make([]float64, ctx.BlockSize),
	}

	for i, cm := range cp.modules {
		mod, err := cm.factory(ctx)
		if err != nil {
			return nil, fmt.Errorf("module %q (%s): %w", cm.id, cm.desc.Kind, err)
		}

		if s, ok := mod.(Seeder); ok {
			s.SetSeed(seed)
		}

		err = mod.Configure(ctx, params[i])
		if err != nil {
			return nil, fmt.Errorf("configure module %q (%s): %w", cm.id, cm.desc.Kind, err)
		}

		slot := moduleSlot{
			mod:  mod,
			in:   makePortBuffers(len(cm.desc.Inputs), ctx.BlockSize),
			cur:  makePortBuffers(len(cm.desc.Outputs), ctx.BlockSize),
			prev: makePortBuffers(len(cm.desc.Outputs), ctx.BlockSize),
		}

		if n, ok := mod.(NoteReceiver); ok {
			slot.note = n
		}

		if t, ok := mod.(TailReporter); ok {
			slot.tail = t
			v.hasTails = true
		}

		if s, ok := mod.(Terminal); ok {
			slot.sink = s
		}

		v.slots[i] = slot
	}

	return v, nil
}

func makePortBuffers(ports, blockSize int) [][]float64 {
	if ports == 0 {
		return nil
	}

	bufs := make([][]float64, ports)
	for i := range bufs {
		bufs[i] = make([]float64, blockSize)
	}

	return bufs
}

// noteOn rebinds the voice to a note: all module state is reset (shared
// parameters are untouched) and note-bound modules receive the pitch.
func (v *voice) noteOn(id, age uint64, freqHz, velocity float64) {
	v.id = id
	v.age = age
	v.gate = true
	v.active = true

	for i := range v.slots {
		slot := &v.slots[i]
		slot.mod.Reset()

		for _, buf := range slot.prev {
			core.Zero(buf)
		}

		if slot.note != nil {
			slot.note.NoteOn(freqHz, velocity)
		}
	}
}

func (v *voice) noteOff() {
	if !v.gate {
		return
	}

	v.gate = false

	for i := range v.slots {
		if v.slots[i].note != nil {
			v.slots[i].note.NoteOff()
		}
	}

	if !v.hasTails {
		v.active = false
	}
}

func (v *voice) releasing() bool {
	return v.active && !v.gate
}

// render evaluates the voice graph for one block in the cached schedule
// order, accumulating port buses from the connection table, and leaves the
// mixed terminal audio in v.out. It allocates nothing.
func (v *voice) render(frames int) {
	for _, m := range v.cp.order {
		slot := &v.slots[m]

		v.fillBuses(m, slot, frames)

		slot.mod.Process(trimPorts(slot.in, frames), trimPorts(slot.cur, frames))
	}

	for i := range v.slots {
		slot := &v.slots[i]
		slot.cur, slot.prev = slot.prev, slot.cur
	}

	out := v.out[:frames]
	core.Zero(out)

	for _, t := range v.cp.terminals {
		sink := v.slots[t].sink
		if sink == nil {
			continue
		}

		vecmath.AddBlockInPlace(out, sink.Rendered()[:frames])
	}

	if !v.gate {
		v.active = v.hasTails && v.anyTailActive()
	}
}

// fillBuses accumulates every connection targeting the module's input ports.
// Unconnected ports read the descriptor default bias; connected ports sum
// sourceOutput*amount over all incoming edges, delayed edges reading the
// previous block.
func (v *voice) fillBuses(m int, slot *moduleSlot, frames int) {
	desc := v.cp.modules[m].desc

	for p := range slot.in {
		bus := slot.in[p][:frames]

		if !v.cp.connected[m][p] {
			core.Fill(bus, desc.Inputs[p].Default)
			continue
		}

		core.Zero(bus)
	}

	scratch := v.scratch[:frames]

	for _, ei := range v.cp.incoming[m] {
		e := v.cp.edges[ei]

		src := v.slots[e.src].cur
		if e.delayed {
			src = v.slots[e.src].prev
		}

		bus := slot.in[e.dstPort][:frames]
		vecmath.ScaleBlock(scratch, src[e.srcPort][:frames], e.amount)
		vecmath.AddBlockInPlace(bus, scratch)
	}
}

func (v *voice) anyTailActive() bool {
	for i := range v.slots {
		if v.slots[i].tail != nil && v.slots[i].tail.TailActive() {
			return true
		}
	}

	return false
}

// trimPorts reslices every port buffer to the block length. Buffer headers
// only; no allocation.
func trimPorts(bufs [][]float64, frames int) [][]float64 {
	for i := range bufs {
		bufs[i] = bufs[i][:frames]
	}

	return bufs
}
