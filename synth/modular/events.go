package modular

import "sync/atomic"

// eventCapacity is the fixed size of the control event ring. Power of two.
const eventCapacity = 256

type eventKind uint8

const (
	evNoteOn eventKind = iota + 1
	evNoteOff
	evAllNotesOff
	evParam
)

// event is one control message handed from the control thread to the audio
// thread. Parameter events carry the patch generation they were validated
// against so they cannot land on a different patch after a swap.
type event struct {
	kind     eventKind
	voiceID  uint64
	gen      uint64
	module   int
	param    int
	value    float64
	freqHz   float64
	velocity float64
}

// eventRing is a fixed-size lock-free single-producer/single-consumer queue.
// The control thread pushes, the audio thread pops at block boundaries;
// neither side takes a lock or allocates.
type eventRing struct {
	buf  [eventCapacity]event
	mask uint64
	head atomic.Uint64
	tail atomic.Uint64
}

func newEventRing() *eventRing {
	return &eventRing{mask: eventCapacity - 1}
}

// push enqueues an event. Returns false if the ring is full.
func (r *eventRing) push(e event) bool {
	tail := r.tail.Load()
	if tail-r.head.Load() == eventCapacity {
		return false
	}

	r.buf[tail&r.mask] = e
	r.tail.Store(tail + 1)

	return true
}

// pop dequeues the oldest event. Returns false if the ring is empty.
func (r *eventRing) pop() (event, bool) {
	head := r.head.Load()
	if head == r.tail.Load() {
		return event{}, false
	}

	e := r.buf[head&r.mask]
	r.head.Store(head + 1)

	return e, true
}
