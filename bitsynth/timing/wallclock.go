package timing

import (
	"context"
	"log/slog"
	"time"
)

// resyncThreshold is how far behind schedule the clock may fall before it
// gives up on catching up (e.g. after the process was suspended).
const resyncThreshold = 50 * time.Millisecond

// WallClock paces notes against absolute deadlines: each deadline is the
// previous deadline plus the note duration, not "now" plus the duration,
// so sleep overshoot does not accumulate over a long playlist.
type WallClock struct {
	next time.Time
}

func NewWallClock() *WallClock {
	return &WallClock{next: time.Now()}
}

func (w *WallClock) Wait(ctx context.Context, d time.Duration) error {
	now := time.Now()
	if behind := now.Sub(w.next); behind > resyncThreshold {
		slog.Debug("Note timing behind schedule, resyncing", "behind_ms", behind.Milliseconds())
		w.next = now
	}

	w.next = w.next.Add(d)

	return sleepUntil(ctx, w.next)
}

func (w *WallClock) Reset() {
	w.next = time.Now()
}

// Deadline is the instant the current wait ends.
func (w *WallClock) Deadline() time.Time {
	return w.next
}

var _ Pacer = (*WallClock)(nil)
