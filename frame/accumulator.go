package frame

import (
	"fmt"
)

// State is the accumulator state. Complete is transient: a response is emitted
// and the accumulator is back to Empty within the same Feed call.
type State uint8

const (
	StateEmpty State = iota
	StateAccumulating
	// StateDiscarding drops bytes after an overflow until the next terminator.
	StateDiscarding
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateAccumulating:
		return "Accumulating"
	case StateDiscarding:
		return "Discarding"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Accumulator grows a response across raw reads until a terminator arrives.
//
// It is NOT goroutine-safe; the receive loop owns it exclusively.
type Accumulator struct {
	buf        []byte
	capacity   int
	marker     byte
	discarding bool
}

// NewAccumulator creates an Accumulator holding at most capacity bytes per
// response. A non-positive capacity selects DefaultCapacity.
func NewAccumulator(capacity int, marker byte) *Accumulator {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Accumulator{
		buf:      make([]byte, 0, capacity),
		capacity: capacity,
		marker:   marker,
	}
}

// Feed appends p and returns every response completed by it, in order.
//
// Every byte is examined, so splitting the same stream across any number of
// Feed calls yields the same responses. When a response would exceed the
// capacity, its bytes are dropped up to and including the next terminator and
// the returned error is ErrFrameOverflow; responses completed in the same call
// are still returned.
func (a *Accumulator) Feed(p []byte) ([]Response, error) {
	var (
		out      []Response
		overflow bool
	)

	for _, b := range p {
		if b == Terminator {
			if a.discarding {
				a.discarding = false
				continue
			}

			raw := make([]byte, len(a.buf))
			copy(raw, a.buf)
			a.buf = a.buf[:0]
			out = append(out, Classify(raw, a.marker))

			continue
		}

		if a.discarding {
			continue
		}

		if len(a.buf) >= a.capacity {
			a.buf = a.buf[:0]
			a.discarding = true
			overflow = true

			continue
		}

		a.buf = append(a.buf, b)
	}

	if overflow {
		return out, fmt.Errorf("%w (%d bytes)", ErrFrameOverflow, a.capacity)
	}

	return out, nil
}

// State returns the current accumulator state.
func (a *Accumulator) State() State {
	switch {
	case a.discarding:
		return StateDiscarding
	case len(a.buf) > 0:
		return StateAccumulating
	default:
		return StateEmpty
	}
}

// Len returns the number of bytes of the pending response.
func (a *Accumulator) Len() int { return len(a.buf) }

// Cap returns the response capacity.
func (a *Accumulator) Cap() int { return a.capacity }

// Reset drops any pending bytes and leaves discard mode.
func (a *Accumulator) Reset() {
	a.buf = a.buf[:0]
	a.discarding = false
}
