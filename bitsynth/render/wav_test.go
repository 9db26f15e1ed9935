package render_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-bitsynth/bitsynth/note"
	"github.com/valerio/go-bitsynth/bitsynth/render"
	"github.com/valerio/go-bitsynth/bitsynth/synth"
)

func TestWAV_Header(t *testing.T) {
	cfg := synth.DefaultConfig()
	playlist := note.Playlist{
		{Waveform: synth.Square, Frequency: 441, Duration: 10, Volume: 1},
		{Waveform: synth.Sine, Frequency: 882, Duration: 20, Volume: 0.5},
	}

	var out bytes.Buffer
	require.NoError(t, render.WAV(&out, playlist, cfg))

	data := out.Bytes()
	samples := render.SampleCount(playlist, cfg)
	assert.Equal(t, 441+882, samples)
	require.Len(t, data, 44+samples+1) // odd sample count gets a pad byte

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, uint32(36+samples+1), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "fmt ", string(data[12:16]))
	assert.Equal(t, uint32(16), binary.LittleEndian.Uint32(data[16:20]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[20:22]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[22:24]))
	assert.Equal(t, uint32(44100), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, uint32(44100), binary.LittleEndian.Uint32(data[28:32]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[32:34]))
	assert.Equal(t, uint16(8), binary.LittleEndian.Uint16(data[34:36]))
	assert.Equal(t, "data", string(data[36:40]))
	assert.Equal(t, uint32(samples), binary.LittleEndian.Uint32(data[40:44]))
	assert.Equal(t, cfg.Midpoint(), data[len(data)-1])
}

func TestWAV_NotesStartAtPhaseZero(t *testing.T) {
	cfg := synth.DefaultConfig()
	playlist := note.Playlist{
		// 441 Hz is 100 samples per period; 20ms (882 samples) ends mid-period
		{Waveform: synth.Square, Frequency: 441, Duration: 20, Volume: 1},
		{Waveform: synth.Square, Frequency: 441, Duration: 10, Volume: 1},
	}

	var out bytes.Buffer
	require.NoError(t, render.WAV(&out, playlist, cfg))
	samples := out.Bytes()[44:]

	first := 882
	require.Greater(t, len(samples), first)
	assert.Equal(t, byte(1), samples[first-1], "first note ends in the low half")
	assert.Equal(t, byte(255), samples[first], "second note restarts at the high half")
}

func TestWAV_SilenceAndEmpty(t *testing.T) {
	cfg := synth.DefaultConfig()

	var out bytes.Buffer
	require.NoError(t, render.WAV(&out, nil, cfg))
	assert.Len(t, out.Bytes(), 44)

	out.Reset()
	playlist := note.Playlist{{Waveform: synth.Triangle, Frequency: 220, Duration: 100, Volume: 0}}
	require.NoError(t, render.WAV(&out, playlist, cfg))
	for _, b := range out.Bytes()[44:] {
		require.Equal(t, cfg.Midpoint(), b)
	}
}

func TestWAV_InvalidConfig(t *testing.T) {
	var out bytes.Buffer
	err := render.WAV(&out, note.Playlist{{Waveform: synth.Sine, Frequency: 440, Duration: 10, Volume: 1}}, synth.Config{})
	assert.Error(t, err)
	assert.Zero(t, out.Len())
}

func TestWAV_TooLong(t *testing.T) {
	cfg := synth.DefaultConfig()
	// 28 hours at 44.1 kHz is past the 4 GiB RIFF limit
	playlist := note.Playlist{
		{Waveform: synth.Square, Frequency: 440, Duration: 28 * 60 * 60 * 1000, Volume: 1},
	}
	require.Greater(t, int64(render.SampleCount(playlist, cfg)), render.MaxSamples)

	var buf bytes.Buffer
	err := render.WAV(&buf, playlist, cfg)
	assert.ErrorIs(t, err, render.ErrTooLong)
	assert.Zero(t, buf.Len())
}
