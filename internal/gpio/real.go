//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealOutputs drives the relay and indicator through the Linux GPIO
// character device.
type RealOutputs struct {
	chip  *gpiocdev.Chip
	relay *gpiocdev.Line
	lamp  *gpiocdev.Line
}

// NewRealOutputs requests the relay and lamp lines as outputs, both
// de-energized.
func NewRealOutputs(chipName string, pinRelay, pinLamp int) (*RealOutputs, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	relay, err := chip.RequestLine(pinRelay, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request relay pin %d: %w", pinRelay, err)
	}

	lamp, err := chip.RequestLine(pinLamp, gpiocdev.AsOutput(0))
	if err != nil {
		relay.Close()
		chip.Close()
		return nil, fmt.Errorf("request lamp pin %d: %w", pinLamp, err)
	}

	return &RealOutputs{chip: chip, relay: relay, lamp: lamp}, nil
}

// SetHeater drives the relay and the indicator lamp together.
func (o *RealOutputs) SetHeater(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := o.relay.SetValue(v); err != nil {
		return fmt.Errorf("set relay: %w", err)
	}
	if err := o.lamp.SetValue(v); err != nil {
		return fmt.Errorf("set lamp: %w", err)
	}
	return nil
}

// Close de-energizes the relay and releases GPIO resources. The pins are
// reconfigured to input with pull-down (the Pi boot default) so the relay
// module sees a clean low level through a reboot.
func (o *RealOutputs) Close() error {
	var errs []error

	if err := o.SetHeater(false); err != nil {
		errs = append(errs, err)
	}
	for _, line := range []*gpiocdev.Line{o.relay, o.lamp} {
		if line == nil {
			continue
		}
		if err := line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure: %w", err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if o.chip != nil {
		if err := o.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealSwitches reads the front-panel switches through the Linux GPIO
// character device.
type RealSwitches struct {
	chip    *gpiocdev.Chip
	power   *gpiocdev.Line
	display *gpiocdev.Line
}

// NewRealSwitches requests the switch lines as inputs with pull-down to
// match Pi boot defaults.
func NewRealSwitches(chipName string, pinPower, pinDisplay int) (*RealSwitches, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	power, err := chip.RequestLine(pinPower, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request power pin %d: %w", pinPower, err)
	}

	display, err := chip.RequestLine(pinDisplay, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		power.Close()
		chip.Close()
		return nil, fmt.Errorf("request display pin %d: %w", pinDisplay, err)
	}

	return &RealSwitches{chip: chip, power: power, display: display}, nil
}

// Read returns the switch levels. The switches pull the lines high when
// closed, so no inversion is needed.
func (s *RealSwitches) Read() (bool, bool, error) {
	p, err := s.power.Value()
	if err != nil {
		return false, false, fmt.Errorf("read power pin: %w", err)
	}
	d, err := s.display.Value()
	if err != nil {
		return false, false, fmt.Errorf("read display pin: %w", err)
	}
	return p != 0, d != 0, nil
}

// Close releases GPIO resources.
func (s *RealSwitches) Close() error {
	var errs []error
	for _, line := range []*gpiocdev.Line{s.power, s.display} {
		if line == nil {
			continue
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
