package oto

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/valerio/go-bitsynth/bitsynth/audio"
	"github.com/valerio/go-bitsynth/bitsynth/backend"
)

// oto allows a single context per process, so it is shared by every Backend.
var (
	contextMu      sync.Mutex
	sharedContext  *oto.Context
	contextOptions oto.NewContextOptions
)

func acquireContext(options oto.NewContextOptions) (*oto.Context, error) {
	contextMu.Lock()
	defer contextMu.Unlock()

	if sharedContext != nil {
		if contextOptions != options {
			return nil, fmt.Errorf("audio context already open at %d Hz, %d channels", contextOptions.SampleRate, contextOptions.ChannelCount)
		}
		return sharedContext, nil
	}

	ctx, ready, err := oto.NewContext(&options)
	if err != nil {
		return nil, err
	}
	<-ready

	sharedContext = ctx
	contextOptions = options
	return ctx, nil
}

// Backend plays through the platform audio API via oto. The oto player pulls
// from the source on its own goroutine through an io.Reader.
type Backend struct {
	mu      sync.Mutex
	ctx     *oto.Context
	player  *oto.Player
	started bool
}

func New() *Backend {
	return &Backend{}
}

// sourceReader adapts a Source to io.Reader. Read always fills p, so the
// player never sees EOF and never stops on its own.
type sourceReader struct {
	src audio.Source
}

func (r sourceReader) Read(p []byte) (int, error) {
	r.src.Fill(p)
	return len(p), nil
}

func (o *Backend) Open(spec backend.Spec, src audio.Source) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	bufferTime := time.Duration(float64(time.Second) * float64(spec.BufferSamples) / float64(spec.SampleRate))
	ctx, err := acquireContext(oto.NewContextOptions{
		SampleRate:   spec.SampleRate,
		ChannelCount: spec.Channels,
		Format:       oto.FormatUnsignedInt8,
		BufferSize:   bufferTime,
	})
	if err != nil {
		return backend.InitError("failed to open oto context", err)
	}

	var r io.Reader = sourceReader{src: src}
	if reader, ok := src.(io.Reader); ok {
		r = reader
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.ctx = ctx
	o.player = ctx.NewPlayer(r)
	o.player.SetBufferSize(spec.BufferSamples * spec.Channels)

	slog.Info("oto audio device opened",
		"sample_rate", spec.SampleRate,
		"buffer_samples", spec.BufferSamples,
		"buffer_time", bufferTime)
	return nil
}

func (o *Backend) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return fmt.Errorf("%w: device not open", backend.ErrDeviceInit)
	}
	if err := o.ctx.Err(); err != nil {
		return backend.InitError("oto context failed", err)
	}
	if !o.started {
		o.player.Play()
		o.started = true
	}
	return nil
}

func (o *Backend) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return nil
	}

	o.player.Pause()
	err := o.player.Close()
	o.player = nil
	o.started = false

	slog.Info("oto audio device closed")
	return err
}

var _ backend.Device = (*Backend)(nil)
