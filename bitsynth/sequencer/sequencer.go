package sequencer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/valerio/go-bitsynth/bitsynth/audio"
	"github.com/valerio/go-bitsynth/bitsynth/note"
	"github.com/valerio/go-bitsynth/bitsynth/timing"
)

// ErrEmptyPlaylist is returned when there is nothing to play.
var ErrEmptyPlaylist = errors.New("no notes to play")

// Observer is notified when a note starts. It runs on the sequencing
// goroutine and must return quickly.
type Observer func(index int, n note.Note)

// Sequencer walks a playlist in order, publishing each note's parameters to
// the shared state and holding them for the note's duration.
type Sequencer struct {
	state    *audio.State
	pacer    timing.Pacer
	observer Observer
}

type Option func(*Sequencer)

// WithObserver registers a callback for note starts.
func WithObserver(o Observer) Option {
	return func(s *Sequencer) {
		s.observer = o
	}
}

func New(state *audio.State, pacer timing.Pacer, opts ...Option) *Sequencer {
	s := &Sequencer{
		state: state,
		pacer: pacer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Play blocks until every note has been held for its duration or ctx ends.
// Each published note starts at phase 0 in the render context; there is no
// gap or overlap between notes.
func (s *Sequencer) Play(ctx context.Context, playlist note.Playlist) error {
	if len(playlist) == 0 {
		return ErrEmptyPlaylist
	}

	s.pacer.Reset()
	for i, n := range playlist {
		if err := ctx.Err(); err != nil {
			return err
		}

		snap := s.state.Publish(n.Params())
		slog.Debug("Note start",
			"index", i,
			"waveform", n.Waveform,
			"frequency", n.Frequency,
			"duration_ms", n.Duration,
			"volume", n.Volume,
			"generation", snap.Generation)

		if s.observer != nil {
			s.observer(i, n)
		}

		if err := s.pacer.Wait(ctx, n.Length()); err != nil {
			return err
		}
	}

	slog.Debug("Playlist finished", "notes", len(playlist))
	return nil
}
