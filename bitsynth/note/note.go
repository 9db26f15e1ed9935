package note

import (
	"fmt"
	"time"

	"github.com/valerio/go-bitsynth/bitsynth/synth"
)

// Note is a single entry in a note file.
type Note struct {
	Waveform  synth.Waveform
	Frequency float64 // Hz
	Duration  int     // milliseconds
	Volume    float64 // 0.0 - 1.0
}

// Params returns the oscillator parameters for the note.
func (n Note) Params() synth.Params {
	return synth.Params{
		Waveform:  n.Waveform,
		Frequency: n.Frequency,
		Volume:    n.Volume,
	}
}

// Length is the note duration as a time.Duration.
func (n Note) Length() time.Duration {
	return time.Duration(n.Duration) * time.Millisecond
}

func (n Note) String() string {
	return fmt.Sprintf("%s %.2fHz %dms %d%%", n.Waveform, n.Frequency, n.Duration, int(n.Volume*100+0.5))
}

// Playlist is an ordered list of notes; index order is playback order.
type Playlist []Note

// TotalDuration sums the duration of every note.
func (p Playlist) TotalDuration() time.Duration {
	var total time.Duration
	for _, n := range p {
		total += n.Length()
	}
	return total
}
