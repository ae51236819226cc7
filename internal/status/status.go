// Package status provides a thread-safe status tracker for the smoker
// controller daemon plus the formatting owned by the presentation contract:
// the two-line LCD text and the JSON payloads read by HTTP and MQTT
// consumers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/smoker-controller/internal/control"
)

// Config contains daemon configuration for display.
type Config struct {
	SampleMs     int64
	DisplayMs    int64
	ModulateMs   int64
	CheckpointMs int64
	Broker       string
	HTTPAddr     string
	LayoutFile   string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Summary control.Summary

	// Ready is false until the first display tick delivers a summary.
	Ready bool

	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex. The control loop is
// single-threaded but HTTP handlers read concurrently.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the latest control summary. Called on every display tick.
func (t *Tracker) Update(s control.Summary) {
	t.mu.Lock()
	t.snap.Summary = s
	t.snap.Ready = true
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
