package control

import "math"

// dialFullScale is the top of the dial's effective raw domain after the
// dead zone is subtracted from the bottom.
const dialFullScale = 1021

// SetpointConfig maps the averaged dial reading onto a target temperature.
type SetpointConfig struct {
	MinTarget int // Fahrenheit
	MaxTarget int

	// StandbyBelow is compared against the UNquantized mapped temperature;
	// below it the heater is forced off unconditionally.
	StandbyBelow float64

	// DialDeadZone is the raw reading subtracted off the bottom of the dial
	// travel before mapping.
	DialDeadZone float64
}

// Setpoint is the mapped dial state.
type Setpoint struct {
	Raw     int  // rounded dial average
	Target  int  // multiple of 5, clamped to [MinTarget, MaxTarget]
	Standby bool
}

// Map converts the unrounded dial average to a quantized target and standby
// flag. The target is quantized to the nearest multiple of 5 so small dial
// jitter does not flap the display or the heater decision.
func (c SetpointConfig) Map(mean float64) Setpoint {
	span := float64(c.MaxTarget - c.MinTarget)
	pos := (mean - c.DialDeadZone) / (dialFullScale - c.DialDeadZone)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	mapped := float64(c.MinTarget) + pos*span

	target := int(math.Round(mapped/5)) * 5
	if target < c.MinTarget {
		target = c.MinTarget
	}
	if target > c.MaxTarget {
		target = c.MaxTarget
	}

	return Setpoint{
		Raw:     int(math.Round(mean)),
		Target:  target,
		Standby: mapped < c.StandbyBelow,
	}
}
