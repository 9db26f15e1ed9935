package bitsynth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-bitsynth/bitsynth/audio"
	"github.com/valerio/go-bitsynth/bitsynth/backend"
	"github.com/valerio/go-bitsynth/bitsynth/note"
	"github.com/valerio/go-bitsynth/bitsynth/sequencer"
	"github.com/valerio/go-bitsynth/bitsynth/synth"
	"github.com/valerio/go-bitsynth/bitsynth/timing"
)

var (
	// ErrEmptyPlaylist is returned when the loader produced no notes.
	ErrEmptyPlaylist = sequencer.ErrEmptyPlaylist
	// ErrDeviceInit is returned when the output device cannot be opened.
	ErrDeviceInit = backend.ErrDeviceInit
)

// PacingMode selects the clock that decides when a note ends.
type PacingMode int

const (
	// PaceWallClock holds each note for its duration of real time.
	PaceWallClock PacingMode = iota
	// PaceSamples holds each note until the device has consumed the
	// note's duration worth of samples.
	PaceSamples
)

func (m PacingMode) String() string {
	switch m {
	case PaceWallClock:
		return "wall"
	case PaceSamples:
		return "samples"
	default:
		return fmt.Sprintf("pacing(%d)", int(m))
	}
}

// ParsePacingMode parses the CLI spelling of a pacing mode.
func ParsePacingMode(s string) (PacingMode, error) {
	switch s {
	case "wall", "":
		return PaceWallClock, nil
	case "samples":
		return PaceSamples, nil
	default:
		return 0, fmt.Errorf("unknown pacing mode %q (want wall or samples)", s)
	}
}

// Session plays one playlist through one device.
type Session struct {
	Device        backend.Device
	Config        synth.Config
	BufferSamples int
	Pacing        PacingMode

	// Observer, if set, is called as each note starts.
	Observer sequencer.Observer

	// newPacer overrides pacer construction in tests.
	newPacer func(bridge *audio.Bridge) timing.Pacer
}

// NewSession creates a session with the default 44.1 kHz configuration.
func NewSession(device backend.Device) *Session {
	return &Session{
		Device:        device,
		Config:        synth.DefaultConfig(),
		BufferSamples: backend.DefaultBufferSamples,
		Pacing:        PaceWallClock,
	}
}

// Play runs the whole playlist, returning once the last note has been held
// for its duration. An empty playlist fails before the device is touched.
func (s *Session) Play(ctx context.Context, playlist note.Playlist) (err error) {
	if len(playlist) == 0 {
		return ErrEmptyPlaylist
	}
	if err := s.Config.Validate(); err != nil {
		return fmt.Errorf("invalid synth config: %w", err)
	}

	state := audio.NewState(synth.DefaultParams())
	bridge := audio.NewBridge(state, s.Config)

	spec := backend.NewSpec(s.Config)
	if s.BufferSamples > 0 {
		spec.BufferSamples = s.BufferSamples
	}

	if err := s.Device.Open(spec, bridge); err != nil {
		if closeErr := s.Device.Close(); closeErr != nil {
			slog.Warn("Failed to close audio device after open failure", "error", closeErr)
		}
		return wrapDeviceError(err)
	}
	defer func() {
		if closeErr := s.Device.Close(); closeErr != nil {
			slog.Warn("Failed to close audio device", "error", closeErr)
			if err == nil {
				err = fmt.Errorf("failed to close audio device: %w", closeErr)
			}
		}
	}()

	if err := s.Device.Start(); err != nil {
		return wrapDeviceError(err)
	}

	slog.Info("Playback started",
		"notes", len(playlist),
		"duration", playlist.TotalDuration(),
		"sample_rate", s.Config.SampleRate,
		"pacing", s.Pacing)

	var opts []sequencer.Option
	if s.Observer != nil {
		opts = append(opts, sequencer.WithObserver(s.Observer))
	}
	seq := sequencer.New(state, s.pacer(bridge), opts...)

	if err := seq.Play(ctx, playlist); err != nil {
		return err
	}

	slog.Info("Playback finished", "samples", bridge.SamplesConsumed())
	return nil
}

func (s *Session) pacer(bridge *audio.Bridge) timing.Pacer {
	if s.newPacer != nil {
		return s.newPacer(bridge)
	}
	if s.Pacing == PaceSamples {
		return timing.NewSampleClock(bridge, s.Config.SampleRate)
	}
	return timing.NewWallClock()
}

func wrapDeviceError(err error) error {
	if errors.Is(err, ErrDeviceInit) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrDeviceInit, err)
}
