package serial

import "sync/atomic"

type portState uint32

const (
	openedState portState = iota
	closingState
	closedState
)

// atomicPortState guards the single close of the underlying port.
type atomicPortState struct {
	state atomic.Uint32
}

func (st *atomicPortState) String() string {
	switch st.get() {
	case openedState:
		return "Opened"
	case closingState:
		return "Closing"
	case closedState:
		return "Closed"
	default:
		return "Unknown"
	}
}

func (st *atomicPortState) get() portState {
	return portState(st.state.Load())
}

func (st *atomicPortState) isOpened() bool {
	return st.get() == openedState
}

// toClosing reports whether the caller won the right to close the port.
func (st *atomicPortState) toClosing() bool {
	return st.state.CompareAndSwap(uint32(openedState), uint32(closingState))
}

func (st *atomicPortState) toClosed() {
	st.state.Store(uint32(closedState))
}
