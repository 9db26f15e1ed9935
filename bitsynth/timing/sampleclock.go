package timing

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultPollInterval = time.Millisecond
	DefaultStallTimeout = 500 * time.Millisecond
)

// SampleCounter reports how many samples the output device has pulled.
type SampleCounter interface {
	SamplesConsumed() uint64
}

// SampleClock paces notes by the number of samples actually consumed by the
// render context rather than by wall time. If the device stops pulling for
// longer than the stall timeout, waits fall back to the wall-clock deadline
// so playback cannot hang on a dead device.
type SampleClock struct {
	counter SampleCounter
	rate    int

	PollInterval time.Duration
	StallTimeout time.Duration

	base    uint64        // counter value at Reset
	elapsed time.Duration // sum of all waits since Reset
	wall    *WallClock
	stalled bool
}

func NewSampleClock(counter SampleCounter, rate int) *SampleClock {
	return &SampleClock{
		counter:      counter,
		rate:         rate,
		PollInterval: DefaultPollInterval,
		StallTimeout: DefaultStallTimeout,
		base:         counter.SamplesConsumed(),
		wall:         NewWallClock(),
	}
}

func (s *SampleClock) Reset() {
	s.base = s.counter.SamplesConsumed()
	s.elapsed = 0
	s.stalled = false
	s.wall.Reset()
}

// Target is the counter value the current wait is waiting for.
func (s *SampleClock) Target() uint64 {
	return s.base + SamplesFor(s.elapsed, s.rate)
}

func (s *SampleClock) Wait(ctx context.Context, d time.Duration) error {
	s.elapsed += d
	target := s.Target()

	// keep the fallback deadline in step with the sample timeline
	s.wall.next = s.wall.next.Add(d)
	deadline := s.wall.next

	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	last := s.counter.SamplesConsumed()
	lastProgress := time.Now()

	for {
		consumed := s.counter.SamplesConsumed()
		if consumed >= target {
			return nil
		}

		now := time.Now()
		if consumed != last {
			last = consumed
			lastProgress = now
			s.stalled = false
		} else if now.Sub(lastProgress) > s.StallTimeout {
			if !s.stalled {
				slog.Warn("Audio device stopped consuming samples, pacing by wall clock",
					"consumed", consumed, "target", target)
				s.stalled = true
			}
			if !now.Before(deadline) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

var _ Pacer = (*SampleClock)(nil)
