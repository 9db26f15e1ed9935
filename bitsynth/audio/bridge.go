package audio

import (
	"sync/atomic"

	"github.com/valerio/go-bitsynth/bitsynth/synth"
)

// Source is what output devices pull samples from.
type Source interface {
	// Fill writes exactly len(buf) unsigned 8-bit mono samples.
	// It must not block, allocate, or fail.
	Fill(buf []byte)
}

var _ Source = (*Bridge)(nil)

// Bridge renders samples from the currently published parameters.
// Fill is called from the device's render goroutine; the phase lives here
// and nowhere else.
type Bridge struct {
	state *State
	osc   *synth.Oscillator

	// generation of the snapshot the oscillator phase belongs to
	generation uint64

	consumed atomic.Uint64
}

// NewBridge creates a bridge over state. The initial snapshot is treated as
// already started, so its phase begins at 0 without a reset.
func NewBridge(state *State, cfg synth.Config) *Bridge {
	return &Bridge{
		state:      state,
		osc:        synth.NewOscillator(cfg),
		generation: state.Generation(),
	}
}

// Fill implements Source. The snapshot is re-read for every sample so a note
// change published mid-buffer takes effect at the next sample, with the
// phase reset to the start of the waveform.
func (b *Bridge) Fill(buf []byte) {
	for i := range buf {
		snap := b.state.Load()
		if snap.Generation != b.generation {
			b.generation = snap.Generation
			b.osc.Reset()
		}
		buf[i] = b.osc.Next(snap.Params)
	}
	b.consumed.Add(uint64(len(buf)))
}

// Read implements io.Reader for pull-based players. It always fills p.
func (b *Bridge) Read(p []byte) (int, error) {
	b.Fill(p)
	return len(p), nil
}

// SamplesConsumed is the number of samples rendered so far. Safe to call
// from any goroutine.
func (b *Bridge) SamplesConsumed() uint64 {
	return b.consumed.Load()
}

// Phase returns the oscillator phase. Only meaningful from the render
// goroutine or after the device has stopped.
func (b *Bridge) Phase() float64 {
	return b.osc.Phase()
}

func (b *Bridge) Config() synth.Config {
	return b.osc.Config()
}
