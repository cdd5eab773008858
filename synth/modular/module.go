package modular

// Module is the per-voice processing contract. Configure applies the shared,
// pre-clamped parameter values (indexed by the descriptor's parameter order)
// and is called at load and at the block boundary after a parameter change.
// Process evaluates one block: in and out hold one buffer per declared input
// and output port, in descriptor order, all of equal length. A module writes
// every sample of every output buffer and touches no state but its own.
// Reset returns the module to its initial state for voice reuse.
type Module interface {
	Configure(ctx Context, params []float64) error
	Process(in, out [][]float64)
	Reset()
}

// NoteReceiver is an optional interface for note-bound modules. The voice
// manager calls NoteOn with the allocated note's frequency and velocity when
// a voice is (re)triggered, and NoteOff when the note is released.
type NoteReceiver interface {
	NoteOn(freqHz, velocity float64)
	NoteOff()
}

// TailReporter is an optional interface for modules that keep a voice alive
// after its gate is released (envelope release tails). A voice is reclaimed
// once every TailReporter in it reports false.
type TailReporter interface {
	TailActive() bool
}

// Terminal is an optional interface for sink modules that terminate the
// graph. Rendered returns the module's audio for the block just processed;
// the voice manager mixes it into the engine output.
type Terminal interface {
	Rendered() []float64
}

// Seeder is an optional interface for modules with stochastic state. The
// voice manager seeds each voice slot deterministically at patch load so
// renders are reproducible.
type Seeder interface {
	SetSeed(seed int64)
}
