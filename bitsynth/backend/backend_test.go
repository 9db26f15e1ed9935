package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-bitsynth/bitsynth/synth"
)

func TestSpec(t *testing.T) {
	spec := NewSpec(synth.DefaultConfig())
	assert.Equal(t, Spec{SampleRate: 44100, Channels: 1, BufferSamples: DefaultBufferSamples}, spec)
	assert.NoError(t, spec.Validate())

	tests := []struct {
		name string
		spec Spec
	}{
		{"zero rate", Spec{SampleRate: 0, Channels: 1, BufferSamples: 4096}},
		{"stereo", Spec{SampleRate: 44100, Channels: 2, BufferSamples: 4096}},
		{"no buffer", Spec{SampleRate: 44100, Channels: 1, BufferSamples: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.spec.Validate(), ErrDeviceInit)
		})
	}
}

func TestInitError(t *testing.T) {
	err := InitError("failed to open audio", errors.New("no such device"))
	assert.ErrorIs(t, err, ErrDeviceInit)
	assert.Contains(t, err.Error(), "no such device")
}
