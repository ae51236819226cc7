// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sweeney/smoker-controller/internal/control"
)

// TopicEvents is the MQTT topic for smoker control events.
const TopicEvents = "bbq/smoker/events"

// TopicStatus is the MQTT topic for periodic status snapshots (retained).
const TopicStatus = "bbq/smoker/status"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "bbq/smoker/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a control event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event control.Event) error

	// PublishStatus sends a pre-formatted status snapshot, retained.
	PublishStatus(payload []byte) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (startup, shutdown,
// reconnection).
type SystemEvent struct {
	Timestamp time.Time
	Event     string // e.g., "STARTUP", "SHUTDOWN", "RECONNECTED"
	Reason    string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	Config    *SystemConfig
	Retained  bool
}

// SystemConfig is the daemon configuration included in STARTUP events.
type SystemConfig struct {
	SampleMs     int64  `json:"sample_ms"`
	DisplayMs    int64  `json:"display_ms"`
	ModulateMs   int64  `json:"modulate_ms"`
	CheckpointMs int64  `json:"checkpoint_ms"`
	Broker       string `json:"broker"`
}

// Payload represents the MQTT message payload structure for control events.
type Payload struct {
	Smoker SmokerPayload `json:"smoker"`
}

// SmokerPayload contains the control event details. Temperatures are pointers
// so a stale channel serializes as null.
type SmokerPayload struct {
	Timestamp string   `json:"timestamp"`
	Event     string   `json:"event"`
	Target    int      `json:"target"`
	Standby   bool     `json:"standby"`
	Heater    string   `json:"heater"`
	Oven      *float64 `json:"oven"`
	Probe     *float64 `json:"probe"`
	Band      float64  `json:"band"`
	Delta     *float64 `json:"delta,omitempty"`
}

// FormatPayload creates the JSON payload for a control event.
func FormatPayload(event control.Event) ([]byte, error) {
	s := event.Summary
	payload := Payload{
		Smoker: SmokerPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Kind),
			Target:    s.Target,
			Standby:   s.Standby,
			Heater:    string(s.Heater),
			Oven:      tempValue(s.Oven, s.OvenStale),
			Probe:     tempValue(s.Probe, s.ProbeStale),
			Band:      round1(s.Band),
		},
	}
	if event.Kind == control.EventCheckpoint {
		d := round1(event.Delta)
		payload.Smoker.Delta = &d
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string        `json:"timestamp"`
	Event     string        `json:"event"`
	Reason    string        `json:"reason,omitempty"`
	Config    *SystemConfig `json:"config,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
			Config:    event.Config,
		},
	}
	return json.Marshal(payload)
}

func tempValue(temp float64, stale bool) *float64 {
	if stale {
		return nil
	}
	v := round1(temp)
	return &v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
