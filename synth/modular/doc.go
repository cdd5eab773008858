// Package modular executes modular synthesizer patches: declarative networks
// of oscillator, filter, envelope, and amplifier modules wired together
// through control-voltage and audio connections.
//
// A patch is a plain serializable graph (modules + connections + polyphony).
// Loading a patch compiles it against the module descriptor registry,
// computes a deterministic block evaluation order (breaking feedback cycles
// with one-block-delayed edges), and replicates the module graph per voice.
// The steady-state render path is allocation-free and lock-free: note and
// parameter events from a control thread are handed off through a
// single-producer/single-consumer ring and consumed at block boundaries.
//
// The engine owns graph execution only. Module DSP bodies sit behind the
// Module interface, the descriptor catalog declares valid kinds, ports, and
// parameter ranges for patch editors, and audio device ownership stays with
// the host driving RenderBlock.
package modular
