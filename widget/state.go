package widget

import (
	"sync/atomic"
)

type display struct {
	seq  uint64
	text string
}

// displayState holds the current status text. A write carries the
// sequence number of the caret event that produced it and is dropped if
// a later event has already been stored.
type displayState struct {
	current atomic.Pointer[display]
	issued  atomic.Uint64
}

func newDisplayState() *displayState {
	var state displayState
	state.current.Store(&display{text: NoElement})
	return &state
}

func (state *displayState) next() uint64 {
	return state.issued.Add(1)
}

func (state *displayState) store(seq uint64, text string) bool {
	update := &display{seq: seq, text: text}
	for {
		current := state.current.Load()
		if current.seq >= seq {
			return false
		}
		if state.current.CompareAndSwap(current, update) {
			return true
		}
	}
}

func (state *displayState) load() string {
	return state.current.Load().text
}
