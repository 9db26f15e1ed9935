package audio

import (
	"sync/atomic"

	"github.com/valerio/go-bitsynth/bitsynth/synth"
)

// Snapshot is an immutable set of oscillator parameters.
// Generation increases by one on every Publish, so the render context can
// tell a repeated note apart from the one already playing.
type Snapshot struct {
	synth.Params
	Generation uint64
}

// State is the only object shared between the sequencer and the render
// context. A note change is a single pointer swap, so readers always see
// a complete parameter set.
type State struct {
	current atomic.Pointer[Snapshot]
}

// NewState creates a State holding initial as generation 0.
func NewState(initial synth.Params) *State {
	s := &State{}
	s.current.Store(&Snapshot{Params: initial})
	return s
}

// Publish makes p the active parameters. Callers are expected to be a single
// producer (the sequencer).
func (s *State) Publish(p synth.Params) *Snapshot {
	next := &Snapshot{
		Params:     p,
		Generation: s.current.Load().Generation + 1,
	}
	s.current.Store(next)
	return next
}

// Load returns the active snapshot. Never nil.
func (s *State) Load() *Snapshot {
	return s.current.Load()
}

func (s *State) Generation() uint64 {
	return s.current.Load().Generation
}
