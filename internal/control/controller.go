package control

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// AnalogReader supplies raw readings for one ADC channel. The concrete
// implementation (modbus module, fake) lives outside this package.
type AnalogReader interface {
	Read(channel int) (int, error)
}

// RelayDriver drives the heater relay and its paired indicator lamp together.
type RelayDriver interface {
	SetHeater(on bool) error
}

// Config holds the compile-time constants of the control loop in one place
// so alternate hardware layouts can select them at runtime.
type Config struct {
	// Task periods, required strictly increasing.
	SamplePeriod     time.Duration
	DisplayPeriod    time.Duration
	ModulatePeriod   time.Duration
	CheckpointPeriod time.Duration

	// ADC channel numbers.
	OvenChannel  int
	ProbeChannel int
	DialChannel  int

	Oven  Profile
	Probe Profile

	Setpoint SetpointConfig

	RisingGain  float64
	FallingGain float64
}

// Controller owns all mutable control state (channel histories, setpoint,
// band, heater) and sequences it through the scheduler. It is single-writer
// by construction: everything is touched only from Tick, so correctness
// depends on the scheduler's ordering, not on locks.
type Controller struct {
	cfg   Config
	log   logrus.FieldLogger
	adc   AnalogReader
	relay RelayDriver

	sched  *Scheduler
	cursor int

	oven  *Channel
	probe *Channel
	dial  *Channel

	setpoint Setpoint
	band     *Band
	heater   *Heater

	start   time.Time
	started bool

	power   bool
	display bool

	pending []Event // events accumulated during the current pass
}

// New validates the configuration and builds a controller. Configuration
// faults (periods not strictly increasing, standby threshold outside the
// target range) are fatal here, before any hardware is touched.
func New(cfg Config, adc AnalogReader, relay RelayDriver, log logrus.FieldLogger) (*Controller, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.Setpoint.MinTarget >= cfg.Setpoint.MaxTarget {
		return nil, fmt.Errorf("controller: target range [%d, %d] is empty", cfg.Setpoint.MinTarget, cfg.Setpoint.MaxTarget)
	}
	if sb := cfg.Setpoint.StandbyBelow; sb < float64(cfg.Setpoint.MinTarget) || sb > float64(cfg.Setpoint.MaxTarget) {
		return nil, fmt.Errorf("controller: standby threshold %.0f outside target range [%d, %d]",
			sb, cfg.Setpoint.MinTarget, cfg.Setpoint.MaxTarget)
	}

	c := &Controller{
		cfg:    cfg,
		log:    log,
		adc:    adc,
		relay:  relay,
		oven:   NewChannel(&cfg.Oven),
		probe:  NewChannel(&cfg.Probe),
		dial:   NewChannel(nil),
		band:   NewBand(cfg.RisingGain, cfg.FallingGain),
		heater: NewHeater(),
		// Assume both switches closed until the first input says otherwise,
		// so startup does not emit spurious edges.
		power:   true,
		display: true,
	}

	sched, err := NewScheduler(
		&Task{Name: "sample", Period: cfg.SamplePeriod, Run: c.sample},
		&Task{Name: "display", Period: cfg.DisplayPeriod, Run: c.refreshDisplay},
		&Task{Name: "modulate", Period: cfg.ModulatePeriod, Run: c.modulate},
		&Task{Name: "checkpoint", Period: cfg.CheckpointPeriod, Run: c.checkpoint},
	)
	if err != nil {
		return nil, err
	}
	c.sched = sched
	return c, nil
}

// Tick is one scheduler pass. It handles the digital switch levels, then
// runs whichever tasks are due, and returns the events the pass produced.
// Must be called from a single goroutine.
func (c *Controller) Tick(now time.Time, in Input) []Event {
	if !c.started {
		c.start = now
		c.started = true
	}
	c.pending = c.pending[:0]

	if in.Power != c.power {
		c.power = in.Power
		if in.Power {
			c.emit(now, EventPowerOn)
			c.log.Info("main power restored")
		} else {
			c.emit(now, EventPowerOff)
			c.log.Info("main power removed, forcing heater off")
			if _, changed := c.heater.ForceOff(); changed {
				c.driveRelay()
				c.emit(now, EventHeaterOff)
			}
			if c.display {
				c.display = false
				c.emit(now, EventDisplayOff)
			}
		}
	}
	if !c.power {
		// Control loop idles while powered down; task timestamps keep aging
		// so everything runs on the first pass after power returns.
		return c.drain()
	}

	if in.Display != c.display {
		c.display = in.Display
		if in.Display {
			c.emit(now, EventDisplayOn)
		} else {
			c.emit(now, EventDisplayOff)
		}
	}

	c.sched.Tick(now)
	return c.drain()
}

// Summary builds the current status summary. Exposed for shutdown reporting;
// the display task emits the same value as a STATUS event.
func (c *Controller) Summary(now time.Time) Summary {
	ovenT, ovenStale := c.oven.Temperature()
	probeT, probeStale := c.probe.Temperature()
	var elapsed time.Duration
	if c.started {
		elapsed = now.Sub(c.start)
	}
	return Summary{
		Elapsed:    elapsed,
		Target:     c.setpoint.Target,
		Standby:    c.setpoint.Standby,
		Oven:       ovenT,
		Probe:      probeT,
		OvenStale:  ovenStale,
		ProbeStale: probeStale,
		Heater:     c.heater.State(),
		Band:       c.band.Value(),
		RawOven:    c.oven.Average(),
		RawProbe:   c.probe.Average(),
		RawDial:    c.dial.Average(),
	}
}

// sample advances the shared cursor and refreshes every channel: raw read,
// ring write, average recompute, temperature conversion and setpoint mapping.
// This is the fastest task, so every slower consumer sees averages from the
// same pass.
func (c *Controller) sample(now time.Time) {
	c.cursor = (c.cursor + 1) % HistorySize

	c.acquire(c.cfg.OvenChannel, c.oven, "oven")
	c.acquire(c.cfg.ProbeChannel, c.probe, "probe")
	c.acquire(c.cfg.DialChannel, c.dial, "dial")

	if err := c.oven.Convert(); err != nil {
		c.log.WithField("raw", c.oven.Average()).Warnf("oven conversion: %v", err)
	}
	if err := c.probe.Convert(); err != nil {
		c.log.WithField("raw", c.probe.Average()).Warnf("probe conversion: %v", err)
	}

	c.setpoint = c.cfg.Setpoint.Map(c.dial.Mean())

	c.log.WithFields(logrus.Fields{
		"oven":   c.oven.Average(),
		"probe":  c.probe.Average(),
		"dial":   c.dial.Average(),
		"target": c.setpoint.Target,
	}).Debug("sampled")
}

// acquire reads one raw input and stores it at the shared cursor. Read
// errors are tolerated: the previous raw value is held so the channel
// histories stay time-aligned.
func (c *Controller) acquire(channel int, ch *Channel, name string) {
	raw, err := c.adc.Read(channel)
	if err != nil {
		c.log.Warnf("adc read %s (channel %d): %v, holding last value", name, channel, err)
		raw = ch.Last()
	}
	ch.Store(c.cursor, raw)
}

// refreshDisplay emits the status summary for the presentation layer,
// tracker and telemetry.
func (c *Controller) refreshDisplay(now time.Time) {
	c.emit(now, EventStatus)
}

// modulate runs the heater decision and drives the relay. Runs deliberately
// coarser than sampling to limit mechanical relay switching frequency.
func (c *Controller) modulate(now time.Time) {
	ovenT, stale := c.oven.Temperature()
	state, changed := c.heater.Decide(c.setpoint.Standby, float64(c.setpoint.Target), c.band.Value(), ovenT, stale)
	if stale && !c.setpoint.Standby {
		c.log.Warn("oven temperature stale, holding heater state")
	}

	c.driveRelay()

	if changed {
		c.log.WithFields(logrus.Fields{
			"state":  state,
			"oven":   ovenT,
			"target": c.setpoint.Target,
			"band":   c.band.Value(),
		}).Info("heater transition")
		switch state {
		case StateOn:
			c.emit(now, EventHeaterOn)
		case StateStandby:
			c.emit(now, EventHeaterStandby)
		default:
			c.emit(now, EventHeaterOff)
		}
	}
}

// checkpoint re-evaluates the adaptive band from the slope observed since
// the previous checkpoint. The sequential gating guarantees a sample ran
// earlier in this same pass, so the oven average is current. A stale oven
// temperature skips the evaluation entirely, baseline included.
func (c *Controller) checkpoint(now time.Time) {
	ovenT, stale := c.oven.Temperature()
	if stale {
		c.log.Warn("oven temperature stale, skipping band checkpoint")
		return
	}

	seeded := c.band.Seeded()
	delta := c.band.Checkpoint(ovenT)
	if !seeded {
		c.log.WithField("oven", ovenT).Debug("band baseline seeded")
		return
	}

	c.log.WithFields(logrus.Fields{
		"delta": delta,
		"band":  c.band.Value(),
		"oven":  ovenT,
	}).Info("band checkpoint")

	ev := Event{Timestamp: now, Kind: EventCheckpoint, Summary: c.Summary(now), Delta: delta}
	c.pending = append(c.pending, ev)
}

// driveRelay writes the relay and indicator outputs. Write failures are
// logged and retried naturally on the next modulation tick.
func (c *Controller) driveRelay() {
	if err := c.relay.SetHeater(c.heater.On()); err != nil {
		c.log.Errorf("relay write: %v", err)
	}
}

func (c *Controller) emit(now time.Time, kind EventKind) {
	c.pending = append(c.pending, Event{Timestamp: now, Kind: kind, Summary: c.Summary(now)})
}

func (c *Controller) drain() []Event {
	if len(c.pending) == 0 {
		return nil
	}
	out := make([]Event, len(c.pending))
	copy(out, c.pending)
	return out
}
