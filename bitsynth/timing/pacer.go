package timing

import (
	"context"
	"time"
)

// Pacer controls how long the sequencer holds each note.
type Pacer interface {
	// Wait blocks until d has elapsed on the pacer's clock, measured from the
	// end of the previous wait (or the last Reset). Returns ctx.Err() if the
	// context ends first.
	Wait(ctx context.Context, d time.Duration) error

	// Reset starts a new timeline at the current instant.
	Reset()
}

// NewNoOpPacer returns a pacer that never waits (offline rendering, tests).
func NewNoOpPacer() Pacer {
	return &noOpPacer{}
}

type noOpPacer struct{}

func (n *noOpPacer) Wait(ctx context.Context, d time.Duration) error { return ctx.Err() }
func (n *noOpPacer) Reset()                                          {}

// SamplesFor converts a duration to a sample count at rate, rounding to the
// nearest sample.
func SamplesFor(d time.Duration, rate int) uint64 {
	if d <= 0 || rate <= 0 {
		return 0
	}
	return uint64(d.Seconds()*float64(rate) + 0.5)
}

// sleepUntil blocks until deadline or ctx is done.
func sleepUntil(ctx context.Context, deadline time.Time) error {
	wait := time.Until(deadline)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
