// Package control contains the pure control logic for the smoker daemon:
// the multi-rate task scheduler, sensor averaging, thermistor conversion,
// setpoint mapping, the adaptive hysteresis band and the heater state machine.
// This package has NO hardware dependencies (no GPIO, ADC, MQTT, OS, or
// time.Sleep). Time is always injectable via time.Time parameters.
package control

import "time"

// State represents the heater state machine.
type State string

const (
	StateOn      State = "ON"
	StateOff     State = "OFF"
	StateStandby State = "STANDBY"
)

// EventKind classifies events emitted by a controller tick.
type EventKind string

const (
	// EventStatus is emitted every display tick and carries the current summary.
	EventStatus EventKind = "STATUS"

	// Heater transitions, emitted by the modulation tick when the relay changes.
	EventHeaterOn      EventKind = "HEATER_ON"
	EventHeaterOff     EventKind = "HEATER_OFF"
	EventHeaterStandby EventKind = "HEATER_STANDBY"

	// EventCheckpoint is emitted when the adaptive band is re-evaluated.
	EventCheckpoint EventKind = "CHECKPOINT"

	// Display switch edges. The presentation layer reinitializes on DISPLAY_ON
	// and blanks on DISPLAY_OFF; the core only forwards the notification.
	EventDisplayOn  EventKind = "DISPLAY_ON"
	EventDisplayOff EventKind = "DISPLAY_OFF"

	// Main power switch edges.
	EventPowerOn  EventKind = "POWER_ON"
	EventPowerOff EventKind = "POWER_OFF"
)

// Event represents something to be published or shown.
type Event struct {
	Timestamp time.Time
	Kind      EventKind
	Summary   Summary

	// Delta is the checkpoint temperature change (checkpoint events only).
	Delta float64
}

// Input represents a single sample of the digital switch states.
type Input struct {
	Power   bool // main power switch, level-triggered
	Display bool // display/light switch, level-triggered
}

// Summary is a point-in-time view of the control state. It is the typed
// status value consumed by the presentation layer, the status tracker and
// telemetry; formatting for a concrete display lives outside this package.
type Summary struct {
	Elapsed time.Duration

	Target  int // quantized setpoint, multiple of 5
	Standby bool

	Oven       float64 // last good oven temperature, Fahrenheit
	Probe      float64 // last good food probe temperature, Fahrenheit
	OvenStale  bool    // true when the latest conversion faulted
	ProbeStale bool

	Heater State
	Band   float64

	// Rounded raw averages, for diagnostics.
	RawOven  int
	RawProbe int
	RawDial  int
}
