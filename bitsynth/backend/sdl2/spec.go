package sdl2

import (
	"fmt"
	"math"

	"github.com/valerio/go-bitsynth/bitsynth/backend"
)

// validateSpec checks spec against SDL's AudioSpec, which carries the buffer
// size as a uint16.
func validateSpec(spec backend.Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if spec.BufferSamples > math.MaxUint16 {
		return fmt.Errorf("%w: SDL2 buffer size must be at most %d samples, got %d",
			backend.ErrDeviceInit, math.MaxUint16, spec.BufferSamples)
	}
	return nil
}
