//go:build !sdl2

package sdl2

import (
	"fmt"

	"github.com/valerio/go-bitsynth/bitsynth/audio"
	"github.com/valerio/go-bitsynth/bitsynth/backend"
)

// Backend stub for when SDL2 is not available
type Backend struct{}

// New creates a stub SDL2 backend that returns an error
func New() *Backend {
	return &Backend{}
}

// Open returns an error indicating SDL2 is not available
func (s *Backend) Open(spec backend.Spec, src audio.Source) error {
	if err := validateSpec(spec); err != nil {
		return err
	}
	return fmt.Errorf("%w: SDL2 backend not available - build with -tags sdl2 to enable", backend.ErrDeviceInit)
}

// Start returns an error
func (s *Backend) Start() error {
	return fmt.Errorf("%w: SDL2 backend not available", backend.ErrDeviceInit)
}

// Close does nothing
func (s *Backend) Close() error {
	return nil
}

var _ backend.Device = (*Backend)(nil)
