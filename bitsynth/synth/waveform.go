package synth

import (
	"fmt"
	"math"
)

// Waveform selects one of the fixed oscillator shapes.
// The numeric values match the waveform index used in note files.
type Waveform uint8

const (
	Square Waveform = iota
	Triangle
	Sawtooth
	Sine

	// waveformCount must stay last, it sizes the shape table.
	waveformCount
)

// shapeFunc returns the unscaled amplitude in [-peak, peak] for a phase in [0,1).
type shapeFunc func(phase, peak float64) float64

// shapes is indexed by Waveform. The explicit array type below makes a new
// Waveform without a formula a compile error.
var shapes = [...]shapeFunc{
	Square:   square,
	Triangle: triangle,
	Sawtooth: sawtooth,
	Sine:     sine,
}

var _ [waveformCount]shapeFunc = shapes

var waveformNames = [...]string{
	Square:   "square",
	Triangle: "triangle",
	Sawtooth: "sawtooth",
	Sine:     "sine",
}

var _ [waveformCount]string = waveformNames

func square(phase, peak float64) float64 {
	if phase < 0.5 {
		return peak
	}
	return -peak
}

func triangle(phase, peak float64) float64 {
	if phase < 0.5 {
		return 4*peak*phase - peak
	}
	return -4*peak*(phase-0.5) + peak
}

func sawtooth(phase, peak float64) float64 {
	return 2 * peak * (phase - 0.5)
}

func sine(phase, peak float64) float64 {
	return peak * math.Sin(2*math.Pi*phase)
}

// Valid reports whether w is one of the known shapes.
func (w Waveform) Valid() bool {
	return w < waveformCount
}

func (w Waveform) String() string {
	if !w.Valid() {
		return fmt.Sprintf("waveform(%d)", uint8(w))
	}
	return waveformNames[w]
}

// WaveformFromIndex converts a note file waveform index to a Waveform.
func WaveformFromIndex(index int) (Waveform, error) {
	if index < 0 || index >= int(waveformCount) {
		return 0, fmt.Errorf("unknown waveform index %d", index)
	}
	return Waveform(index), nil
}

// Waveforms returns every shape in index order.
func Waveforms() []Waveform {
	all := make([]Waveform, 0, waveformCount)
	for w := Waveform(0); w < waveformCount; w++ {
		all = append(all, w)
	}
	return all
}
