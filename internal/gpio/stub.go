//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealOutputs is not available on non-Linux platforms.
type RealOutputs struct{}

// NewRealOutputs returns an error on non-Linux platforms.
func NewRealOutputs(chipName string, pinRelay, pinLamp int) (*RealOutputs, error) {
	return nil, errUnsupported
}

// SetHeater is not implemented on non-Linux platforms.
func (o *RealOutputs) SetHeater(on bool) error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (o *RealOutputs) Close() error { return nil }

// RealSwitches is not available on non-Linux platforms.
type RealSwitches struct{}

// NewRealSwitches returns an error on non-Linux platforms.
func NewRealSwitches(chipName string, pinPower, pinDisplay int) (*RealSwitches, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (s *RealSwitches) Read() (bool, bool, error) { return false, false, errUnsupported }

// Close is not implemented on non-Linux platforms.
func (s *RealSwitches) Close() error { return nil }
