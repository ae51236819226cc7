// Package config holds the daemon configuration: a YAML hardware layout
// profile selected at runtime (pin roles, ADC channels, intervals, gains,
// thermistor calibration) and the CLI/environment options.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/smoker-controller/internal/adc"
	"github.com/sweeney/smoker-controller/internal/control"
	"github.com/sweeney/smoker-controller/internal/gpio"
)

// Layout describes one hardware variant. Alternate boards ship alternate
// layout files instead of compile-time branching.
type Layout struct {
	Serial      SerialConfig     `yaml:"serial"`
	Channels    ChannelConfig    `yaml:"channels"`
	Pins        PinConfig        `yaml:"pins"`
	Intervals   IntervalConfig   `yaml:"intervals"`
	Gains       GainConfig       `yaml:"gains"`
	Thermistors ThermistorConfig `yaml:"thermistors"`
	Setpoint    SetpointRange    `yaml:"setpoint"`

	// WarmupSamples is the number of conversions per channel discarded at
	// bring-up before the control loop starts.
	WarmupSamples int `yaml:"warmup_samples"`
}

// SerialConfig describes the link to the Modbus analog input module.
type SerialConfig struct {
	Device  string        `yaml:"device"`
	Baud    int           `yaml:"baud"`
	SlaveID int           `yaml:"slave_id"`
	Timeout time.Duration `yaml:"timeout"`
}

// ChannelConfig assigns ADC channels to input roles.
type ChannelConfig struct {
	Oven  int `yaml:"oven"`
	Probe int `yaml:"probe"`
	Dial  int `yaml:"dial"`
}

// PinConfig assigns GPIO pins (BCM numbering) to digital roles.
type PinConfig struct {
	Chip    string `yaml:"chip"`
	Relay   int    `yaml:"relay"`
	Lamp    int    `yaml:"lamp"`
	Power   int    `yaml:"power"`
	Display int    `yaml:"display"`
}

// IntervalConfig holds the four task periods, in milliseconds.
type IntervalConfig struct {
	SampleMs     int `yaml:"sample_ms"`
	DisplayMs    int `yaml:"display_ms"`
	ModulateMs   int `yaml:"modulate_ms"`
	CheckpointMs int `yaml:"checkpoint_ms"`
}

// GainConfig holds the adaptive band gains.
type GainConfig struct {
	Rising  float64 `yaml:"rising"`
	Falling float64 `yaml:"falling"`
}

// Calibration holds one thermistor's divider resistance and Steinhart-Hart
// coefficients.
type Calibration struct {
	R0 float64 `yaml:"r0"`
	A  float64 `yaml:"a"`
	B  float64 `yaml:"b"`
	C  float64 `yaml:"c"`
}

// ThermistorConfig holds per-input calibration.
type ThermistorConfig struct {
	Oven  Calibration `yaml:"oven"`
	Probe Calibration `yaml:"probe"`
}

// SetpointRange configures the dial-to-target mapping.
type SetpointRange struct {
	Min          int     `yaml:"min"`
	Max          int     `yaml:"max"`
	StandbyBelow float64 `yaml:"standby_below"`
	DialDeadZone float64 `yaml:"dial_dead_zone"`
}

// DefaultLayout returns the reference hardware layout.
func DefaultLayout() *Layout {
	return &Layout{
		Serial: SerialConfig{
			Device:  "/dev/ttyUSB0",
			Baud:    9600,
			SlaveID: 1,
			Timeout: 500 * time.Millisecond,
		},
		Channels: ChannelConfig{
			Oven:  adc.ChannelOven,
			Probe: adc.ChannelProbe,
			Dial:  adc.ChannelDial,
		},
		Pins: PinConfig{
			Chip:    "gpiochip0",
			Relay:   gpio.DefaultPinRelay,
			Lamp:    gpio.DefaultPinLamp,
			Power:   gpio.DefaultPinPower,
			Display: gpio.DefaultPinDisplay,
		},
		Intervals: IntervalConfig{
			SampleMs:     100,
			DisplayMs:    1000,
			ModulateMs:   3000,
			CheckpointMs: 60000,
		},
		Gains: GainConfig{
			Rising:  2.2,
			Falling: 1.0,
		},
		Thermistors: ThermistorConfig{
			Oven:  Calibration{R0: 1.0e5, A: 3.345620366e-3, B: -2.846696310e-4, C: 2.067411171e-6},
			Probe: Calibration{R0: 1.0e5, A: 3.345620366e-3, B: -2.846696310e-4, C: 2.067411171e-6},
		},
		Setpoint: SetpointRange{
			Min:          150,
			Max:          350,
			StandbyBelow: 170,
			DialDeadZone: 10,
		},
		WarmupSamples: 4,
	}
}

// LoadLayout reads a layout file over the defaults and validates it. An
// empty path returns the validated defaults.
func LoadLayout(path string) (*Layout, error) {
	l := DefaultLayout()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read layout: %w", err)
		}
		if err := yaml.Unmarshal(data, l); err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks the layout invariants the control loop depends on.
// Violations are fatal at startup: the scheduler's gating contract requires
// the interval ordering, and the heater decision requires a sane range.
func (l *Layout) Validate() error {
	iv := l.Intervals
	if iv.SampleMs <= 0 {
		return fmt.Errorf("layout: sample interval %dms must be positive", iv.SampleMs)
	}
	if !(iv.SampleMs < iv.DisplayMs && iv.DisplayMs < iv.ModulateMs && iv.ModulateMs < iv.CheckpointMs) {
		return fmt.Errorf("layout: intervals %d < %d < %d < %d ms must be strictly increasing",
			iv.SampleMs, iv.DisplayMs, iv.ModulateMs, iv.CheckpointMs)
	}

	sp := l.Setpoint
	if sp.Min >= sp.Max {
		return fmt.Errorf("layout: setpoint range [%d, %d] is empty", sp.Min, sp.Max)
	}
	if sp.StandbyBelow < float64(sp.Min) || sp.StandbyBelow > float64(sp.Max) {
		return fmt.Errorf("layout: standby threshold %.0f outside setpoint range [%d, %d]",
			sp.StandbyBelow, sp.Min, sp.Max)
	}
	if sp.DialDeadZone < 0 {
		return fmt.Errorf("layout: dial dead zone %.0f must not be negative", sp.DialDeadZone)
	}

	if l.Gains.Rising <= 0 || l.Gains.Falling <= 0 {
		return fmt.Errorf("layout: gains (%v, %v) must be positive", l.Gains.Rising, l.Gains.Falling)
	}

	for _, cal := range []struct {
		name string
		c    Calibration
	}{{"oven", l.Thermistors.Oven}, {"probe", l.Thermistors.Probe}} {
		if cal.c.R0 <= 0 {
			return fmt.Errorf("layout: %s thermistor R0 %v must be positive", cal.name, cal.c.R0)
		}
		if cal.c.A == 0 {
			return fmt.Errorf("layout: %s thermistor coefficient A must not be zero", cal.name)
		}
	}

	pins := map[int]string{}
	for _, p := range []struct {
		pin  int
		name string
	}{
		{l.Pins.Relay, "relay"},
		{l.Pins.Lamp, "lamp"},
		{l.Pins.Power, "power"},
		{l.Pins.Display, "display"},
	} {
		if other, dup := pins[p.pin]; dup {
			return fmt.Errorf("layout: pin %d assigned to both %s and %s", p.pin, other, p.name)
		}
		pins[p.pin] = p.name
	}

	if l.WarmupSamples < 0 {
		return fmt.Errorf("layout: warmup samples %d must not be negative", l.WarmupSamples)
	}
	return nil
}

// ControlConfig converts the layout into the control loop's configuration.
func (l *Layout) ControlConfig() control.Config {
	return control.Config{
		SamplePeriod:     time.Duration(l.Intervals.SampleMs) * time.Millisecond,
		DisplayPeriod:    time.Duration(l.Intervals.DisplayMs) * time.Millisecond,
		ModulatePeriod:   time.Duration(l.Intervals.ModulateMs) * time.Millisecond,
		CheckpointPeriod: time.Duration(l.Intervals.CheckpointMs) * time.Millisecond,
		OvenChannel:      l.Channels.Oven,
		ProbeChannel:     l.Channels.Probe,
		DialChannel:      l.Channels.Dial,
		Oven:             l.Thermistors.Oven.Profile(),
		Probe:            l.Thermistors.Probe.Profile(),
		Setpoint: control.SetpointConfig{
			MinTarget:    l.Setpoint.Min,
			MaxTarget:    l.Setpoint.Max,
			StandbyBelow: l.Setpoint.StandbyBelow,
			DialDeadZone: l.Setpoint.DialDeadZone,
		},
		RisingGain:  l.Gains.Rising,
		FallingGain: l.Gains.Falling,
	}
}

// ModbusConfig converts the serial section for the ADC reader.
func (l *Layout) ModbusConfig() adc.ModbusConfig {
	return adc.ModbusConfig{
		Device:  l.Serial.Device,
		Baud:    l.Serial.Baud,
		SlaveID: byte(l.Serial.SlaveID),
		Timeout: l.Serial.Timeout,
	}
}

// Profile converts a calibration into a conversion profile.
func (c Calibration) Profile() control.Profile {
	return control.Profile{R0: c.R0, A: c.A, B: c.B, C: c.C}
}
