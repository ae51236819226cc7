// Command smoker-controller drives an electric smoker: it samples the analog
// inputs through a Modbus ADC module, maps the setpoint dial, modulates the
// heater relay and publishes telemetry over MQTT and HTTP.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/koding/multiconfig"
	"github.com/sirupsen/logrus"

	"github.com/sweeney/smoker-controller/internal/adc"
	"github.com/sweeney/smoker-controller/internal/config"
	"github.com/sweeney/smoker-controller/internal/control"
	"github.com/sweeney/smoker-controller/internal/gpio"
	"github.com/sweeney/smoker-controller/internal/mqtt"
	"github.com/sweeney/smoker-controller/internal/status"
	"github.com/sweeney/smoker-controller/internal/web"
)

func main() {
	cfg := new(config.CliConfig)
	multiconfig.New().MustLoad(cfg)

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid log level %q: %v", cfg.LogLevel, err)
	}
	log.SetLevel(level)

	if err := run(cfg, log); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg *config.CliConfig, log *logrus.Logger) error {
	layout, err := config.LoadLayout(cfg.LayoutFile)
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}

	reader, outputs, switches, err := buildHardware(cfg, layout, log)
	if err != nil {
		return err
	}
	defer reader.Close()
	defer outputs.Close()
	defer switches.Close()

	ctrl, err := control.New(layout.ControlConfig(), reader, outputs, log)
	if err != nil {
		return fmt.Errorf("init controller: %w", err)
	}

	var publisher mqtt.Publisher
	if cfg.DisableMQTT {
		log.Info("mqtt disabled")
		publisher = mqtt.NewFakePublisher()
	} else {
		real, err := mqtt.NewRealPublisher(cfg.Broker, log)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher = real
	}
	defer publisher.Close()
	mqttStatus, _ := publisher.(mqtt.ConnectionStatus)

	tracker := status.NewTracker(time.Now(), status.Config{
		SampleMs:     int64(layout.Intervals.SampleMs),
		DisplayMs:    int64(layout.Intervals.DisplayMs),
		ModulateMs:   int64(layout.Intervals.ModulateMs),
		CheckpointMs: int64(layout.Intervals.CheckpointMs),
		Broker:       cfg.Broker,
		HTTPAddr:     cfg.HTTPAddr,
		LayoutFile:   cfg.LayoutFile,
	})

	startup := mqtt.SystemEvent{
		Timestamp: time.Now(),
		Event:     "STARTUP",
		Retained:  true,
		Config: &mqtt.SystemConfig{
			SampleMs:     int64(layout.Intervals.SampleMs),
			DisplayMs:    int64(layout.Intervals.DisplayMs),
			ModulateMs:   int64(layout.Intervals.ModulateMs),
			CheckpointMs: int64(layout.Intervals.CheckpointMs),
			Broker:       cfg.Broker,
		},
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Warnf("failed to publish startup event: %v", err)
	}

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Infof("http status server listening on %s", cfg.HTTPAddr)
	}

	log.WithFields(logrus.Fields{
		"sample":     time.Duration(layout.Intervals.SampleMs) * time.Millisecond,
		"checkpoint": time.Duration(layout.Intervals.CheckpointMs) * time.Millisecond,
		"broker":     cfg.Broker,
	}).Info("started")

	ticker := time.NewTicker(time.Duration(layout.Intervals.SampleMs) * time.Millisecond)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, switches, outputs, publisher, mqttStatus, tracker,
		newPresenter(log), log, time.Now, ticker.C, sigCh)
}

// buildHardware assembles the ADC and GPIO backends. Mock mode substitutes
// fakes so the daemon can run on a bench without the analog module or relay
// board attached.
func buildHardware(cfg *config.CliConfig, layout *config.Layout, log *logrus.Logger) (adc.Reader, gpio.Outputs, gpio.Switches, error) {
	if cfg.Mock {
		log.Info("mock hardware: stub ADC, fake GPIO")
		reader := &adc.StubReader{Values: map[int]int{
			layout.Channels.Oven:  512,
			layout.Channels.Probe: 512,
			layout.Channels.Dial:  512,
		}}
		switches := gpio.NewFakeSwitches([]gpio.SwitchSample{{Power: true, Display: true}})
		return reader, &gpio.FakeOutputs{}, switches, nil
	}

	reader, err := adc.NewModbusReader(layout.ModbusConfig())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init adc: %w", err)
	}
	reader.Warmup([]int{layout.Channels.Oven, layout.Channels.Probe, layout.Channels.Dial}, layout.WarmupSamples)

	outputs, err := gpio.NewRealOutputs(layout.Pins.Chip, layout.Pins.Relay, layout.Pins.Lamp)
	if err != nil {
		reader.Close()
		return nil, nil, nil, fmt.Errorf("init outputs: %w", err)
	}

	switches, err := gpio.NewRealSwitches(layout.Pins.Chip, layout.Pins.Power, layout.Pins.Display)
	if err != nil {
		outputs.Close()
		reader.Close()
		return nil, nil, nil, fmt.Errorf("init switches: %w", err)
	}
	return reader, outputs, switches, nil
}

func runLoop(ctrl *control.Controller, switches gpio.Switches, outputs gpio.Outputs,
	publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker,
	display *presenter, log logrus.FieldLogger,
	now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {

	// Assume both switches closed until the first read, matching the
	// controller's startup assumption.
	input := control.Input{Power: true, Display: true}

	for {
		select {
		case s := <-sig:
			log.Infof("received %v, shutting down", s)
			if err := outputs.SetHeater(false); err != nil {
				log.Errorf("relay off on shutdown: %v", err)
			}

			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			shutdown := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if err := publisher.PublishSystem(shutdown); err != nil {
				log.Warnf("failed to publish shutdown event: %v", err)
			}
			return nil

		case <-tick:
			t := now()
			power, disp, err := switches.Read()
			if err != nil {
				// Hold the previous switch levels so a transient read
				// fault cannot fake a power-off edge.
				log.Warnf("switch read error: %v", err)
			} else {
				input = control.Input{Power: power, Display: disp}
			}

			for _, ev := range ctrl.Tick(t, input) {
				handleEvent(ev, publisher, mqttStatus, tracker, display, log)
			}
		}
	}
}

func handleEvent(ev control.Event, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus,
	tracker *status.Tracker, display *presenter, log logrus.FieldLogger) {

	tracker.Update(ev.Summary)
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}

	switch ev.Kind {
	case control.EventStatus:
		display.Show(ev.Summary)
		payload, err := status.FormatStatusEvent(tracker.Snapshot(), "")
		if err != nil {
			log.Errorf("format status: %v", err)
			return
		}
		if err := publisher.PublishStatus(payload); err != nil {
			log.Warnf("status publish error: %v", err)
		}

	case control.EventDisplayOn:
		display.SetActive(true)
		display.Show(ev.Summary)
		publishEvent(ev, publisher, log)

	case control.EventDisplayOff:
		display.SetActive(false)
		publishEvent(ev, publisher, log)

	default:
		log.WithFields(logrus.Fields{
			"event":  ev.Kind,
			"heater": ev.Summary.Heater,
			"target": ev.Summary.Target,
			"oven":   ev.Summary.Oven,
			"band":   ev.Summary.Band,
		}).Info("event")
		publishEvent(ev, publisher, log)
	}
}

func publishEvent(ev control.Event, publisher mqtt.Publisher, log logrus.FieldLogger) {
	if err := publisher.Publish(ev); err != nil {
		// Publish failures must not crash the control loop.
		log.Warnf("publish error: %v", err)
	}
}

// presenter mirrors the two-line panel text into the log. A physical LCD
// backend plugs in here once the display hat is wired.
type presenter struct {
	log    logrus.FieldLogger
	active bool
}

func newPresenter(log logrus.FieldLogger) *presenter {
	return &presenter{log: log, active: true}
}

// SetActive toggles the panel. An inactive panel drops updates, matching a
// blanked display.
func (p *presenter) SetActive(on bool) {
	p.active = on
	if !on {
		p.log.Debug("display blanked")
	}
}

// Show renders the summary as panel lines when the display is active.
func (p *presenter) Show(sum control.Summary) {
	if !p.active {
		return
	}
	lines := status.FormatLines(sum)
	p.log.WithFields(logrus.Fields{
		"line1": lines[0],
		"line2": lines[1],
	}).Debug("display")
}
