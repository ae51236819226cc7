package gpio

import "errors"

// FakeOutputs records heater output writes for test assertions.
type FakeOutputs struct {
	// Heater is the current relay/lamp level.
	Heater bool

	// Writes contains every SetHeater call in order.
	Writes []bool

	// SetError, if set, will be returned by SetHeater.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// SetHeater records the write.
func (f *FakeOutputs) SetHeater(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Heater = on
	f.Writes = append(f.Writes, on)
	return nil
}

// Close marks the outputs as closed and drops the relay.
func (f *FakeOutputs) Close() error {
	f.Heater = false
	f.Closed = true
	return nil
}

// SwitchSample represents a single reading of both switch levels.
type SwitchSample struct {
	Power   bool
	Display bool
}

// FakeSwitches is a test double that returns scripted switch levels.
type FakeSwitches struct {
	// Samples contains scripted levels. Each Read consumes the next sample;
	// when exhausted, the last sample is returned repeatedly.
	Samples []SwitchSample

	// ReadError, if set, will be returned by Read.
	ReadError error

	// Closed tracks if Close was called.
	Closed bool

	index int
}

// NewFakeSwitches creates a FakeSwitches with the given samples.
func NewFakeSwitches(samples []SwitchSample) *FakeSwitches {
	return &FakeSwitches{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeSwitches) Read() (bool, bool, error) {
	if f.ReadError != nil {
		return false, false, f.ReadError
	}
	if len(f.Samples) == 0 {
		return false, false, errors.New("no samples configured")
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s.Power, s.Display, nil
}

// Close marks the switches as closed.
func (f *FakeSwitches) Close() error {
	f.Closed = true
	return nil
}
