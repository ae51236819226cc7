package status

import (
	"encoding/json"
	"math"
	"time"
)

// statusJSON is the JSON document served at /index.json and published to the
// status topic. Temperatures are pointers so stale channels serialize as
// null instead of a misleading number.
type statusJSON struct {
	Event          string     `json:"event,omitempty"`
	Ready          bool       `json:"ready"`
	Elapsed        string     `json:"elapsed"`
	ElapsedSeconds int64      `json:"elapsed_seconds"`
	Target         int        `json:"target"`
	Standby        bool       `json:"standby"`
	Heater         string     `json:"heater"`
	Oven           *float64   `json:"oven"`
	Probe          *float64   `json:"probe"`
	Band           float64    `json:"band"`
	RawOven        int        `json:"raw_oven"`
	RawProbe       int        `json:"raw_probe"`
	RawDial        int        `json:"raw_dial"`
	LCD            [2]string  `json:"lcd"`
	Uptime         string     `json:"uptime"`
	StartTime      time.Time  `json:"start_time"`
	Timestamp      time.Time  `json:"timestamp"`
	MQTTConnected  bool       `json:"mqtt_connected"`
	Config         configJSON `json:"config"`
}

type configJSON struct {
	SampleMs     int64  `json:"sample_ms"`
	DisplayMs    int64  `json:"display_ms"`
	ModulateMs   int64  `json:"modulate_ms"`
	CheckpointMs int64  `json:"checkpoint_ms"`
	Broker       string `json:"broker"`
	HTTPAddr     string `json:"http_addr"`
	LayoutFile   string `json:"layout_file"`
}

// FormatJSON renders a snapshot as an indented JSON document.
func FormatJSON(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(buildStatus(s, ""), "", "  ")
}

// FormatStatusEvent renders a snapshot as a compact JSON document tagged
// with an event name, suitable for MQTT publication.
func FormatStatusEvent(s Snapshot, event string) ([]byte, error) {
	return json.Marshal(buildStatus(s, event))
}

func buildStatus(s Snapshot, event string) statusJSON {
	sum := s.Summary
	doc := statusJSON{
		Event:          event,
		Ready:          s.Ready,
		Elapsed:        sum.Elapsed.Truncate(time.Second).String(),
		ElapsedSeconds: int64(sum.Elapsed.Seconds()),
		Target:         sum.Target,
		Standby:        sum.Standby,
		Heater:         string(sum.Heater),
		Oven:           tempValue(sum.Oven, sum.OvenStale),
		Probe:          tempValue(sum.Probe, sum.ProbeStale),
		Band:           round1(sum.Band),
		RawOven:        sum.RawOven,
		RawProbe:       sum.RawProbe,
		RawDial:        sum.RawDial,
		LCD:            FormatLines(sum),
		Uptime:         s.Uptime().Truncate(time.Second).String(),
		StartTime:      s.StartTime,
		Timestamp:      s.Now,
		MQTTConnected:  s.MQTTConnected,
		Config: configJSON{
			SampleMs:     s.Config.SampleMs,
			DisplayMs:    s.Config.DisplayMs,
			ModulateMs:   s.Config.ModulateMs,
			CheckpointMs: s.Config.CheckpointMs,
			Broker:       s.Config.Broker,
			HTTPAddr:     s.Config.HTTPAddr,
			LayoutFile:   s.Config.LayoutFile,
		},
	}
	return doc
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
