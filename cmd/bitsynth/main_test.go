package main

import (
	"encoding/binary"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-bitsynth/bitsynth"
	"github.com/valerio/go-bitsynth/bitsynth/backend/headless"
	"github.com/valerio/go-bitsynth/bitsynth/render"
)

func runApp(t *testing.T, args ...string) error {
	t.Helper()

	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	return newApp().Run(append([]string{"bitsynth"}, args...))
}

func TestNewDevice(t *testing.T) {
	device, err := newDevice("headless")
	require.NoError(t, err)
	assert.IsType(t, &headless.Backend{}, device)

	for _, name := range []string{"oto", "sdl2"} {
		device, err := newDevice(name)
		require.NoError(t, err)
		assert.NotNil(t, device)
	}

	_, err = newDevice("alsa")
	assert.ErrorContains(t, err, "unknown backend")
}

func TestRun_RendersWAV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.wav")

	require.NoError(t, runApp(t, "--wav", out, "--sample-rate", "8000", "testdata/short.txt"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Greater(t, len(data), 44)

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, uint32(8000), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, uint16(8), binary.LittleEndian.Uint16(data[34:36]))

	// 6 notes of 120ms and 2 of 240ms at 8 kHz
	assert.Equal(t, uint32(9600), binary.LittleEndian.Uint32(data[40:44]))
}

func TestRun_FailedRenderRemovesFile(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "long.txt")
	// 28 hours does not fit in a WAV file at 44.1 kHz
	require.NoError(t, os.WriteFile(notes, []byte("0 440 100800000 50\n"), 0o644))

	out := filepath.Join(dir, "out.wav")
	err := runApp(t, "--wav", out, notes)
	assert.ErrorIs(t, err, render.ErrTooLong)
	assert.NoFileExists(t, out)
}

func TestRun_NotesFlagOverridesArgument(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.wav")

	err := runApp(t, "--wav", out, "--notes", "testdata/short.txt", "missing.txt")
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestRun_MissingNoteFile(t *testing.T) {
	err := runApp(t, "--backend", "headless", filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, bitsynth.ErrEmptyPlaylist)
}

func TestRun_InvalidOptions(t *testing.T) {
	err := runApp(t, "--backend", "alsa", "testdata/short.txt")
	assert.ErrorContains(t, err, "unknown backend")

	err = runApp(t, "--backend", "headless", "--pacing", "midi", "testdata/short.txt")
	assert.ErrorContains(t, err, "unknown pacing mode")

	err = runApp(t, "--sample-rate", "0", "testdata/short.txt")
	assert.Error(t, err)
}

func TestRun_HeadlessPlayback(t *testing.T) {
	notes := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("0 440 20 50\n3 880 20 50\n"), 0o644))

	for _, pacing := range []string{"wall", "samples"} {
		t.Run(pacing, func(t *testing.T) {
			err := runApp(t,
				"--backend", "headless",
				"--pacing", pacing,
				"--sample-rate", "8000",
				"--buffer-samples", "80",
				notes)
			assert.NoError(t, err)
		})
	}
}
