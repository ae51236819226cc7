// Package gpio provides digital I/O with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Outputs drives the heater relay and its paired indicator lamp.
type Outputs interface {
	// SetHeater drives the relay and the indicator together; a caller never
	// observes one without the other.
	SetHeater(on bool) error

	// Close releases GPIO resources, leaving the relay de-energized.
	Close() error
}

// Switches reads the front-panel switch levels.
type Switches interface {
	// Read returns the logical levels of the main power switch and the
	// display/light switch.
	Read() (power, display bool, err error)

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering) for the reference layout. Alternate
// layouts override these through the hardware profile at runtime.
const (
	DefaultPinRelay   = 17 // heater relay
	DefaultPinLamp    = 27 // heater indicator lamp
	DefaultPinPower   = 22 // main power switch
	DefaultPinDisplay = 23 // display/light switch
)
