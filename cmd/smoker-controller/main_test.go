package main

import (
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sweeney/smoker-controller/internal/adc"
	"github.com/sweeney/smoker-controller/internal/config"
	"github.com/sweeney/smoker-controller/internal/control"
	"github.com/sweeney/smoker-controller/internal/gpio"
	"github.com/sweeney/smoker-controller/internal/mqtt"
	"github.com/sweeney/smoker-controller/internal/status"
)

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use (only called from runLoop's
// goroutine).
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

// repeat returns n copies of sample.
func repeat(sample gpio.SwitchSample, n int) []gpio.SwitchSample {
	out := make([]gpio.SwitchSample, n)
	for i := range out {
		out[i] = sample
	}
	return out
}

// faultSwitches returns errors for a range of Read() calls and delegates to
// the inner fake otherwise.
type faultSwitches struct {
	inner      *gpio.FakeSwitches
	call       int
	faultStart int // first call index that returns error (inclusive)
	faultEnd   int // last call index that returns error (exclusive)
}

func (s *faultSwitches) Read() (bool, bool, error) {
	i := s.call
	s.call++
	if i >= s.faultStart && i < s.faultEnd {
		return false, false, errors.New("switch fault")
	}
	return s.inner.Read()
}

func (s *faultSwitches) Close() error { return s.inner.Close() }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestController(t *testing.T, reader adc.Reader, outputs gpio.Outputs) *control.Controller {
	t.Helper()
	ctrl, err := control.New(config.DefaultLayout().ControlConfig(), reader, outputs, quietLogger())
	if err != nil {
		t.Fatalf("control.New: %v", err)
	}
	return ctrl
}

func newTestTracker() *status.Tracker {
	return status.NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), status.Config{
		SampleMs: 100, DisplayMs: 1000, ModulateMs: 3000, CheckpointMs: 60000,
		Broker: "tcp://test:1883",
	})
}

// runRunLoop drives runLoop for nTicks, then delivers the signal and returns
// the loop's error.
func runRunLoop(t *testing.T, ctrl *control.Controller, switches gpio.Switches,
	outputs gpio.Outputs, pub *mqtt.FakePublisher, tracker *status.Tracker,
	clock func() time.Time, nTicks int, signal os.Signal) error {
	t.Helper()

	log := quietLogger()
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(ctrl, switches, outputs, pub, pub, tracker,
			newPresenter(log), log, clock, tick, sig)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	sig <- signal

	return <-errCh
}

func TestRunLoopPublishesStatusAndShutdown(t *testing.T) {
	reader := &adc.StubReader{Values: map[int]int{0: 512, 1: 512, 2: 512}}
	outputs := &gpio.FakeOutputs{}
	switches := gpio.NewFakeSwitches(repeat(gpio.SwitchSample{Power: true, Display: true}, 1))
	ctrl := newTestController(t, reader, outputs)
	pub := mqtt.NewFakePublisher()
	tracker := newTestTracker()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 100*time.Millisecond)

	// 12 ticks cover the first pass plus one full display period.
	err := runRunLoop(t, ctrl, switches, outputs, pub, tracker, clock, 12, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(pub.StatusPayloads) < 2 {
		t.Errorf("expected at least 2 status payloads, got %d", len(pub.StatusPayloads))
	}
	if !tracker.Snapshot().Ready {
		t.Error("tracker should be ready after status events")
	}

	if len(pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(pub.SystemEvents))
	}
	se := pub.SystemEvents[0]
	if se.Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN event, got %q", se.Event)
	}
	if se.Reason != "SIGTERM" {
		t.Errorf("expected SIGTERM reason, got %q", se.Reason)
	}
	if !se.Retained {
		t.Error("shutdown event should be retained")
	}

	// The loop drops the relay on the way out.
	if len(outputs.Writes) == 0 {
		t.Fatal("expected relay writes")
	}
	if outputs.Heater {
		t.Error("heater should be off after shutdown")
	}
}

func TestRunLoopHeaterEngages(t *testing.T) {
	// Cold oven (raw 800) with the dial at full scale: the heater should
	// engage on the first modulation after the histories settle.
	reader := &adc.StubReader{Values: map[int]int{0: 800, 1: 800, 2: 1021}}
	outputs := &gpio.FakeOutputs{}
	switches := gpio.NewFakeSwitches(repeat(gpio.SwitchSample{Power: true, Display: true}, 1))
	ctrl := newTestController(t, reader, outputs)
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 100*time.Millisecond)

	err := runRunLoop(t, ctrl, switches, outputs, pub, newTestTracker(), clock, 35, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	var heaterOn int
	for _, ev := range pub.Events {
		if ev.Kind == control.EventHeaterOn {
			heaterOn++
			if ev.Summary.Target != 350 {
				t.Errorf("target at HEATER_ON: got %d, want 350", ev.Summary.Target)
			}
		}
	}
	if heaterOn != 1 {
		t.Errorf("expected exactly 1 HEATER_ON event, got %d", heaterOn)
	}
}

func TestRunLoopPowerOffSequence(t *testing.T) {
	// Heater engages, then the main power switch opens.
	reader := &adc.StubReader{Values: map[int]int{0: 800, 1: 800, 2: 1021}}
	outputs := &gpio.FakeOutputs{}
	samples := append(
		repeat(gpio.SwitchSample{Power: true, Display: true}, 35),
		gpio.SwitchSample{Power: false, Display: true},
	)
	switches := gpio.NewFakeSwitches(samples)
	ctrl := newTestController(t, reader, outputs)
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 100*time.Millisecond)

	err := runRunLoop(t, ctrl, switches, outputs, pub, newTestTracker(), clock, 40, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	var kinds []control.EventKind
	for _, ev := range pub.Events {
		kinds = append(kinds, ev.Kind)
	}
	want := []control.EventKind{
		control.EventHeaterOn,
		control.EventPowerOff,
		control.EventHeaterOff,
		control.EventDisplayOff,
	}
	if len(kinds) != len(want) {
		t.Fatalf("expected events %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}

	if outputs.Heater {
		t.Error("heater should be off after power removal")
	}
}

func TestRunLoopSwitchReadErrorHoldsInput(t *testing.T) {
	// Read faults must not fake a power-off edge.
	reader := &adc.StubReader{Values: map[int]int{0: 512, 1: 512, 2: 512}}
	outputs := &gpio.FakeOutputs{}
	inner := gpio.NewFakeSwitches(repeat(gpio.SwitchSample{Power: true, Display: true}, 1))
	switches := &faultSwitches{inner: inner, faultStart: 5, faultEnd: 10}
	ctrl := newTestController(t, reader, outputs)
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 100*time.Millisecond)

	err := runRunLoop(t, ctrl, switches, outputs, pub, newTestTracker(), clock, 15, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	for _, ev := range pub.Events {
		if ev.Kind == control.EventPowerOff || ev.Kind == control.EventDisplayOff {
			t.Errorf("unexpected %s event during switch faults", ev.Kind)
		}
	}
	if len(pub.SystemEvents) != 1 || pub.SystemEvents[0].Event != "SHUTDOWN" {
		t.Error("expected SHUTDOWN after switch faults")
	}
}

func TestRunLoopDisplayToggle(t *testing.T) {
	reader := &adc.StubReader{Values: map[int]int{0: 512, 1: 512, 2: 512}}
	outputs := &gpio.FakeOutputs{}
	samples := append(
		repeat(gpio.SwitchSample{Power: true, Display: true}, 5),
		gpio.SwitchSample{Power: true, Display: false},
	)
	switches := gpio.NewFakeSwitches(samples)
	ctrl := newTestController(t, reader, outputs)
	pub := mqtt.NewFakePublisher()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 100*time.Millisecond)

	err := runRunLoop(t, ctrl, switches, outputs, pub, newTestTracker(), clock, 10, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	var displayOff int
	for _, ev := range pub.Events {
		if ev.Kind == control.EventDisplayOff {
			displayOff++
		}
	}
	if displayOff != 1 {
		t.Errorf("expected exactly 1 DISPLAY_OFF event, got %d", displayOff)
	}
}

func TestPresenterDropsWhenInactive(t *testing.T) {
	p := newPresenter(quietLogger())
	if !p.active {
		t.Error("presenter should start active")
	}
	p.SetActive(false)
	p.Show(control.Summary{}) // must not panic while blanked
	if p.active {
		t.Error("presenter should be inactive")
	}
	p.SetActive(true)
	if !p.active {
		t.Error("presenter should be active again")
	}
}

func TestBuildHardwareMock(t *testing.T) {
	cfg := &config.CliConfig{Mock: true}
	layout := config.DefaultLayout()

	reader, outputs, switches, err := buildHardware(cfg, layout, quietLogger())
	if err != nil {
		t.Fatalf("buildHardware: %v", err)
	}
	defer reader.Close()
	defer outputs.Close()
	defer switches.Close()

	raw, err := reader.Read(layout.Channels.Oven)
	if err != nil {
		t.Fatalf("mock read: %v", err)
	}
	if raw != 512 {
		t.Errorf("mock oven raw: got %d, want 512", raw)
	}

	power, display, err := switches.Read()
	if err != nil {
		t.Fatalf("mock switches: %v", err)
	}
	if !power || !display {
		t.Error("mock switches should report both closed")
	}
}
