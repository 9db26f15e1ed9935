//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/valerio/go-bitsynth/bitsynth/audio"
	"github.com/valerio/go-bitsynth/bitsynth/backend"
	"github.com/veandco/go-sdl2/sdl"
)

// Backend plays through SDL2 using an AUDIO_U8 mono device in queue mode.
// A pump goroutine keeps at least one buffer queued by pulling from the
// source, which stands in for SDL's C callback.
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stub, see build tags (sdl2)
type Backend struct {
	mu       sync.Mutex
	device   sdl.AudioDeviceID
	obtained sdl.AudioSpec
	src      audio.Source
	buf      []byte
	running  bool
	stop     chan struct{}
	done     chan struct{}
}

// New creates a new SDL2 audio backend
func New() *Backend {
	return &Backend{}
}

// Open initializes the SDL audio subsystem and opens the default device
func (s *Backend) Open(spec backend.Spec, src audio.Source) error {
	if err := validateSpec(spec); err != nil {
		return err
	}

	if err := sdl.Init(sdl.INIT_AUDIO); err != nil {
		return backend.InitError("failed to initialize SDL2", err)
	}

	desired := sdl.AudioSpec{
		Freq:     int32(spec.SampleRate),
		Format:   sdl.AUDIO_U8,
		Channels: uint8(spec.Channels),
		Samples:  uint16(spec.BufferSamples),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	device, err := sdl.OpenAudioDevice("", false, &desired, &s.obtained, 0)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return backend.InitError("failed to open audio", err)
	}

	s.device = device
	s.src = src
	s.buf = make([]byte, int(s.obtained.Samples)*int(s.obtained.Channels))

	slog.Info("SDL2 audio device opened",
		"sample_rate", s.obtained.Freq,
		"buffer_samples", s.obtained.Samples,
		"buffer_bytes", s.obtained.Size)
	return nil
}

// Start unpauses the device and starts the pump
func (s *Backend) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device == 0 {
		return fmt.Errorf("%w: device not open", backend.ErrDeviceInit)
	}
	if s.running {
		return nil
	}

	// queue one buffer before unpausing so the device starts with data
	if err := s.queue(); err != nil {
		return backend.InitError("failed to queue audio", err)
	}
	sdl.PauseAudioDevice(s.device, false)

	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.pump(s.stop, s.done)

	return nil
}

func (s *Backend) queue() error {
	s.src.Fill(s.buf)
	return sdl.QueueAudio(s.device, s.buf)
}

func (s *Backend) pump(stop, done chan struct{}) {
	defer close(done)

	bufferBytes := uint32(len(s.buf))
	period := time.Duration(float64(time.Second) * float64(s.obtained.Samples) / float64(s.obtained.Freq))
	ticker := time.NewTicker(period / 4)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		for sdl.GetQueuedAudioSize(s.device) < bufferBytes {
			if err := s.queue(); err != nil {
				slog.Error("Failed to queue audio", "error", err)
				break
			}
		}
	}
}

// Close stops the pump and releases the device
func (s *Backend) Close() error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.running = false
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device == 0 {
		return nil
	}

	slog.Info("Closing SDL2 audio device")
	sdl.PauseAudioDevice(s.device, true)
	sdl.ClearQueuedAudio(s.device)
	sdl.CloseAudioDevice(s.device)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
	s.device = 0

	return nil
}

var _ backend.Device = (*Backend)(nil)
