package synth

import (
	"fmt"
	"math"
)

const (
	// DefaultSampleRate is the output rate in Hz used unless configured otherwise
	DefaultSampleRate = 44100
	// DefaultPeak is the largest unscaled amplitude for unsigned 8-bit output
	DefaultPeak = 127

	maxSample = math.MaxUint8
)

// Config holds the fixed synthesis parameters for a playback session.
type Config struct {
	SampleRate int
	Peak       int
}

// DefaultConfig returns the 44.1 kHz, 8-bit configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate: DefaultSampleRate,
		Peak:       DefaultPeak,
	}
}

// Validate checks that the config can produce unsigned 8-bit samples.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.Peak < 1 || c.Peak > DefaultPeak {
		return fmt.Errorf("peak must be in [1, %d], got %d", DefaultPeak, c.Peak)
	}
	return nil
}

// Midpoint is the sample value that represents silence.
func (c Config) Midpoint() uint8 {
	return uint8(c.Peak + 1)
}

// Params are the note-driven oscillator parameters.
type Params struct {
	Waveform  Waveform
	Frequency float64 // Hz
	Volume    float64 // 0.0 - 1.0
}

// DefaultParams is the state a session starts in before the first note.
func DefaultParams() Params {
	return Params{
		Waveform:  Square,
		Frequency: 440.0,
		Volume:    1.0,
	}
}

// Sample returns the unscaled amplitude of w at phase, in [-peak, peak].
// Unknown waveforms are silent.
func Sample(w Waveform, phase float64, cfg Config) float64 {
	if !w.Valid() {
		return 0
	}
	return shapes[w](phase, float64(cfg.Peak))
}

// GenerateSample produces one unsigned 8-bit sample and advances phase by
// frequency/sampleRate, wrapping it back into [0,1).
func GenerateSample(w Waveform, frequency float64, phase *float64, volume float64, cfg Config) uint8 {
	increment := frequency / float64(cfg.SampleRate)

	value := Sample(w, *phase, cfg) * clampVolume(volume)

	*phase = wrapPhase(*phase + increment)

	out := value + float64(cfg.Midpoint())
	if out < 0 {
		out = 0
	} else if out > maxSample {
		out = maxSample
	}
	return uint8(out)
}

// wrapPhase keeps the accumulator in [0,1) for any finite increment,
// including frequencies at or above the sample rate.
func wrapPhase(phase float64) float64 {
	if phase >= 1.0 || phase < 0 {
		phase -= math.Floor(phase)
		if phase >= 1.0 {
			phase = 0
		}
	}
	if math.IsNaN(phase) {
		return 0
	}
	return phase
}

func clampVolume(volume float64) float64 {
	switch {
	case volume > 1:
		return 1
	case volume > 0:
		return volume
	default:
		// also catches NaN
		return 0
	}
}

// Oscillator is a phase accumulator bound to a Config.
// It is not safe for concurrent use; the render context owns it.
type Oscillator struct {
	cfg   Config
	phase float64
}

func NewOscillator(cfg Config) *Oscillator {
	return &Oscillator{cfg: cfg}
}

// Next returns the next sample for p and advances the phase.
func (o *Oscillator) Next(p Params) uint8 {
	return GenerateSample(p.Waveform, p.Frequency, &o.phase, p.Volume, o.cfg)
}

// Reset moves the phase back to the start of the period.
func (o *Oscillator) Reset() {
	o.phase = 0
}

func (o *Oscillator) Phase() float64 {
	return o.phase
}

func (o *Oscillator) Config() Config {
	return o.cfg
}
