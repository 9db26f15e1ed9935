package note

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/valerio/go-bitsynth/bitsynth/synth"
)

// Record layout, one note per line:
//
//	<waveform index> <frequency Hz> <duration ms> <volume percent>
//
// e.g. "0 440.0 500 50" is a square wave at 440 Hz for half a second at half volume.
const recordFields = 4

const initialLineBuffer = 64 * 1024

// ParseLine parses one note record. ok is false for anything that is not a
// well-formed record; callers skip those lines.
func ParseLine(line string) (Note, bool) {
	fields := strings.Fields(line)
	if len(fields) != recordFields {
		return Note{}, false
	}

	index, err := strconv.Atoi(fields[0])
	if err != nil {
		return Note{}, false
	}
	waveform, err := synth.WaveformFromIndex(index)
	if err != nil {
		return Note{}, false
	}

	frequency, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || frequency <= 0 || math.IsInf(frequency, 0) || math.IsNaN(frequency) {
		return Note{}, false
	}

	duration, err := strconv.Atoi(fields[2])
	if err != nil || duration < 0 {
		return Note{}, false
	}

	percent, err := strconv.Atoi(fields[3])
	if err != nil || percent < 0 || percent > 100 {
		return Note{}, false
	}

	return Note{
		Waveform:  waveform,
		Frequency: frequency,
		Duration:  duration,
		Volume:    float64(percent) / 100.0,
	}, true
}

// Read parses every record in r. Malformed lines are skipped. The returned
// error only reports read failures; the notes parsed before the failure are
// still returned.
func Read(r io.Reader) (Playlist, error) {
	var notes Playlist

	// Lines have no length limit; an oversized record is skipped like any
	// other malformed line.
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBuffer), math.MaxInt)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		n, ok := ParseLine(line)
		if !ok {
			slog.Debug("Skipping malformed note record", "line", lineNumber, "text", line)
			continue
		}
		notes = append(notes, n)
	}

	if err := scanner.Err(); err != nil {
		return notes, fmt.Errorf("failed to read notes: %w", err)
	}
	return notes, nil
}

// LoadFile reads a note file from disk. A file that cannot be opened yields
// an empty playlist together with the open error.
func LoadFile(path string) (Playlist, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open note file: %w", err)
	}
	defer file.Close()

	notes, err := Read(file)
	if err != nil {
		return notes, fmt.Errorf("%s: %w", path, err)
	}

	slog.Debug("Loaded note file", "path", path, "notes", len(notes), "duration", notes.TotalDuration())
	return notes, nil
}
