// Package adc provides analog input acquisition with hardware abstraction.
// The real implementation reads an RS-485 Modbus RTU analog input module;
// the fake implementation allows testing without hardware.
package adc

// Reader reads raw values from ADC channels.
type Reader interface {
	// Read returns the raw reading for one channel. The reference module is
	// 10-bit, so values are in 0..1023.
	Read(channel int) (int, error)

	// Close releases the underlying transport.
	Close() error
}

// Default channel assignments on the reference analog module.
const (
	ChannelOven  = 0 // oven thermistor
	ChannelProbe = 1 // meat/food probe thermistor
	ChannelDial  = 2 // setpoint dial
)
