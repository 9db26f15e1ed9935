package backend

import (
	"errors"
	"fmt"

	"github.com/valerio/go-bitsynth/bitsynth/audio"
	"github.com/valerio/go-bitsynth/bitsynth/synth"
)

// ErrDeviceInit wraps every failure to initialize or open an output stream.
var ErrDeviceInit = errors.New("audio device initialization failed")

// DefaultBufferSamples is the device buffer size: ~93ms at 44.1 kHz.
const DefaultBufferSamples = 4096

// Device is an audio output that pulls unsigned 8-bit mono samples.
// Devices are responsible for:
// - Opening the platform stream with the requested Spec
// - Calling Source.Fill from their own render goroutine once started
// - Releasing platform resources on Close
type Device interface {
	// Open prepares the stream. src is not called before Start.
	Open(spec Spec, src audio.Source) error

	// Start begins pulling samples.
	Start() error

	// Close stops playback and releases resources. Safe to call after a
	// failed Open.
	Close() error
}

// Spec describes the stream a device should open.
type Spec struct {
	SampleRate    int
	Channels      int
	BufferSamples int
}

// NewSpec returns a mono spec for cfg with the default buffer size.
func NewSpec(cfg synth.Config) Spec {
	return Spec{
		SampleRate:    cfg.SampleRate,
		Channels:      1,
		BufferSamples: DefaultBufferSamples,
	}
}

// Validate checks the spec describes a stream this player can produce.
func (s Spec) Validate() error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrDeviceInit, s.SampleRate)
	}
	if s.Channels != 1 {
		return fmt.Errorf("%w: only mono output is supported, got %d channels", ErrDeviceInit, s.Channels)
	}
	if s.BufferSamples <= 0 {
		return fmt.Errorf("%w: buffer size must be positive, got %d", ErrDeviceInit, s.BufferSamples)
	}
	return nil
}

// InitError wraps a platform error as ErrDeviceInit.
func InitError(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDeviceInit, what, err)
}
