package control

import (
	"errors"
	"fmt"
	"math"
)

// ErrSensorFault marks a raw reading that would make the thermistor
// conversion undefined (division by zero or logarithm domain error). It is
// detected before the math runs; a fault never propagates as NaN into the
// band or heater decisions.
var ErrSensorFault = errors.New("sensor fault")

// Profile is the immutable calibration for one NTC thermistor input: the
// known divider resistance and the three Steinhart-Hart coefficients. The
// coefficients are of the ratio-referenced form, so the log term vanishes
// when the thermistor resistance equals R0 (raw reading 512 on a 10-bit ADC).
type Profile struct {
	R0 float64 // divider resistance, ohms
	A  float64
	B  float64
	C  float64
}

// Celsius converts an averaged raw ADC reading (valid domain 1..1023) to a
// temperature:
//
//	R    = R0 * (1024/raw - 1)
//	L    = ln(R/R0)
//	1/T  = A + (B + C*L^2)*L     (T in Kelvin)
func (p Profile) Celsius(raw float64) (float64, error) {
	if raw < 1 {
		return 0, fmt.Errorf("%w: raw reading %.1f below conversion domain", ErrSensorFault, raw)
	}
	ratio := 1024.0/raw - 1
	if ratio <= 0 {
		return 0, fmt.Errorf("%w: raw reading %.1f above conversion domain", ErrSensorFault, raw)
	}
	l := math.Log(ratio) // ln(R/R0)
	invT := p.A + (p.B+p.C*l*l)*l
	if invT <= 0 {
		return 0, fmt.Errorf("%w: reading %.1f outside calibrated range", ErrSensorFault, raw)
	}
	return 1/invT - 273.15, nil
}

// Fahrenheit converts an averaged raw ADC reading to Fahrenheit, the source
// unit for setpoints and display.
func (p Profile) Fahrenheit(raw float64) (float64, error) {
	c, err := p.Celsius(raw)
	if err != nil {
		return 0, err
	}
	return c*9/5 + 32, nil
}
