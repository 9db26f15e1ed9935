package headless_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-bitsynth/bitsynth/audio"
	"github.com/valerio/go-bitsynth/bitsynth/backend"
	"github.com/valerio/go-bitsynth/bitsynth/backend/headless"
	"github.com/valerio/go-bitsynth/bitsynth/synth"
)

// lockedBuffer is a bytes.Buffer safe to read while the device writes.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *lockedBuffer) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Len()
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestHeadlessBackend(t *testing.T) {
	t.Run("normal operation", func(t *testing.T) {
		sink := &lockedBuffer{}
		h := headless.New(sink)

		cfg := synth.Config{SampleRate: 8000, Peak: 127}
		bridge := audio.NewBridge(audio.NewState(synth.DefaultParams()), cfg)
		spec := backend.Spec{SampleRate: 8000, Channels: 1, BufferSamples: 80}

		require.NoError(t, h.Open(spec, bridge))
		assert.Equal(t, 10*time.Millisecond, h.BufferPeriod())

		require.NoError(t, h.Start())
		assert.Eventually(t, func() bool { return h.Buffers() >= 3 }, time.Second, time.Millisecond)
		require.NoError(t, h.Close())

		buffers := h.Buffers()
		assert.Equal(t, buffers*80, sink.Len())
		assert.Equal(t, uint64(buffers*80), bridge.SamplesConsumed())

		// nothing is pulled after Close
		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, buffers, h.Buffers())
	})

	t.Run("no sink", func(t *testing.T) {
		h := headless.New(nil)
		bridge := audio.NewBridge(audio.NewState(synth.DefaultParams()), synth.DefaultConfig())

		require.NoError(t, h.Open(backend.NewSpec(synth.DefaultConfig()), bridge))
		require.NoError(t, h.Start())
		require.NoError(t, h.Close())
		assert.GreaterOrEqual(t, h.Buffers(), 1)
	})

	t.Run("sink error is reported on close", func(t *testing.T) {
		h := headless.New(failingWriter{})
		bridge := audio.NewBridge(audio.NewState(synth.DefaultParams()), synth.DefaultConfig())

		require.NoError(t, h.Open(backend.NewSpec(synth.DefaultConfig()), bridge))
		require.NoError(t, h.Start())
		assert.EqualError(t, h.Close(), "disk full")
	})

	t.Run("invalid spec", func(t *testing.T) {
		h := headless.New(nil)
		bridge := audio.NewBridge(audio.NewState(synth.DefaultParams()), synth.DefaultConfig())

		err := h.Open(backend.Spec{SampleRate: 44100, Channels: 2, BufferSamples: 4096}, bridge)
		assert.ErrorIs(t, err, backend.ErrDeviceInit)
	})

	t.Run("start before open", func(t *testing.T) {
		h := headless.New(nil)
		assert.ErrorIs(t, h.Start(), backend.ErrDeviceInit)
		assert.NoError(t, h.Close())
	})
}

func TestHeadlessImplementsDevice(t *testing.T) {
	// Compile-time check that headless.Backend implements backend.Device
	var _ backend.Device = (*headless.Backend)(nil)
}
