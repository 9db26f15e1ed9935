package headless

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/valerio/go-bitsynth/bitsynth/audio"
	"github.com/valerio/go-bitsynth/bitsynth/backend"
)

// Backend is an output device without audio hardware. It pulls one buffer
// per buffer period on a ticker, the way a sound card would, and optionally
// copies the rendered bytes to a writer. Useful on machines without audio and
// for exercising the full playback path in tests.
type Backend struct {
	sink io.Writer

	mu      sync.Mutex
	spec    backend.Spec
	src     audio.Source
	buf     []byte
	ticker  *time.Ticker
	stop    chan struct{}
	done    chan struct{}
	buffers int
	written int64
	sinkErr error
}

// New creates a headless device. sink may be nil.
func New(sink io.Writer) *Backend {
	return &Backend{sink: sink}
}

func (h *Backend) Open(spec backend.Spec, src audio.Source) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("%w: no sample source", backend.ErrDeviceInit)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.spec = spec
	h.src = src
	h.buf = make([]byte, spec.BufferSamples*spec.Channels)

	slog.Info("Headless audio device opened",
		"sample_rate", spec.SampleRate,
		"buffer_samples", spec.BufferSamples,
		"sink", h.sink != nil)
	return nil
}

// BufferPeriod is the wall time one buffer represents.
func (h *Backend) BufferPeriod() time.Duration {
	return time.Duration(float64(time.Second) * float64(h.spec.BufferSamples) / float64(h.spec.SampleRate))
}

func (h *Backend) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.src == nil {
		return fmt.Errorf("%w: device not open", backend.ErrDeviceInit)
	}
	if h.stop != nil {
		return nil
	}

	h.ticker = time.NewTicker(h.BufferPeriod())
	h.stop = make(chan struct{})
	h.done = make(chan struct{})

	// prime the first buffer immediately, like a device filling its queue
	h.pull()

	go h.run(h.ticker.C, h.stop, h.done)
	return nil
}

func (h *Backend) run(ticks <-chan time.Time, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case <-ticks:
			h.mu.Lock()
			h.pull()
			h.mu.Unlock()
		}
	}
}

// pull renders one buffer. Callers hold mu.
func (h *Backend) pull() {
	h.src.Fill(h.buf)
	h.buffers++

	if h.sink == nil || h.sinkErr != nil {
		return
	}
	n, err := h.sink.Write(h.buf)
	h.written += int64(n)
	if err != nil {
		h.sinkErr = err
		slog.Error("Headless sink write failed, discarding further output", "error", err)
	}
}

func (h *Backend) Close() error {
	h.mu.Lock()
	stop, done := h.stop, h.done
	h.stop, h.done = nil, nil
	if h.ticker != nil {
		h.ticker.Stop()
		h.ticker = nil
	}
	h.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.src != nil {
		slog.Info("Headless audio device closed", "buffers", h.buffers, "bytes_written", h.written)
	}
	return h.sinkErr
}

// Buffers is the number of buffers pulled so far.
func (h *Backend) Buffers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buffers
}

var _ backend.Device = (*Backend)(nil)
