package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/valerio/go-bitsynth/bitsynth/audio"
	"github.com/valerio/go-bitsynth/bitsynth/note"
	"github.com/valerio/go-bitsynth/bitsynth/synth"
	"github.com/valerio/go-bitsynth/bitsynth/timing"
)

const (
	wavHeaderSize  = 44
	fmtChunkSize   = 16
	formatPCM      = 1
	bitsPerSample  = 8
	channels       = 1
	renderBufBytes = 4096
)

// MaxSamples is the longest render a WAV file can describe: RIFF sizes are
// 32-bit, and the header counts toward them.
const MaxSamples int64 = math.MaxUint32 - wavHeaderSize

// ErrTooLong is returned when a playlist renders to more than MaxSamples.
var ErrTooLong = errors.New("playlist too long for a WAV file")

// SampleCount is the number of samples the playlist renders to at cfg's rate.
// Each note is rounded to a whole number of samples on its own.
func SampleCount(playlist note.Playlist, cfg synth.Config) int {
	total := 0
	for _, n := range playlist {
		total += int(timing.SamplesFor(n.Length(), cfg.SampleRate))
	}
	return total
}

// WAV renders playlist offline into an 8-bit unsigned mono PCM WAV file.
// Unlike live playback every note lasts exactly its duration in samples,
// starting at phase 0.
func WAV(w io.Writer, playlist note.Playlist, cfg synth.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	total := SampleCount(playlist, cfg)
	if int64(total) > MaxSamples {
		return fmt.Errorf("%w: %d samples, at most %d", ErrTooLong, total, MaxSamples)
	}

	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, total, cfg.SampleRate); err != nil {
		return fmt.Errorf("failed to write WAV header: %w", err)
	}

	state := audio.NewState(synth.DefaultParams())
	bridge := audio.NewBridge(state, cfg)
	buf := make([]byte, renderBufBytes)

	for _, n := range playlist {
		state.Publish(n.Params())

		remaining := int(timing.SamplesFor(n.Length(), cfg.SampleRate))
		for remaining > 0 {
			chunk := buf[:min(remaining, len(buf))]
			bridge.Fill(chunk)
			if _, err := bw.Write(chunk); err != nil {
				return fmt.Errorf("failed to write samples: %w", err)
			}
			remaining -= len(chunk)
		}
	}

	// The sample data must end on an even byte boundary
	if total%2 != 0 {
		if err := bw.WriteByte(cfg.Midpoint()); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	return bw.Flush()
}

func writeHeader(w io.Writer, samples, sampleRate int) error {
	dataSize := uint32(samples * channels * bitsPerSample / 8)
	padded := dataSize + dataSize%2
	blockAlign := uint16(channels * bitsPerSample / 8)

	header := struct {
		RIFF          [4]byte
		ChunkSize     uint32
		WAVE          [4]byte
		Fmt           [4]byte
		FmtSize       uint32
		AudioFormat   uint16
		NumChannels   uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		Data          [4]byte
		DataSize      uint32
	}{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     wavHeaderSize - 8 + padded,
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       fmtChunkSize,
		AudioFormat:   formatPCM,
		NumChannels:   channels,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * uint32(blockAlign),
		BlockAlign:    blockAlign,
		BitsPerSample: bitsPerSample,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      dataSize,
	}

	return binary.Write(w, binary.LittleEndian, &header)
}
