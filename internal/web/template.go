package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/smoker-controller/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"temp": func(v float64, stale bool) string {
		if stale {
			return "---"
		}
		return fmt.Sprintf("%.1f °F", v)
	},
	"band": func(v float64) string {
		return fmt.Sprintf("%.1f °F", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Smoker Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.standby { color: orange; }
.stale { color: red; }
.connected { color: green; }
.disconnected { color: red; }
.lcd { background: #1a2b1a; color: #9f9; display: inline-block; padding: 8px 12px; white-space: pre; letter-spacing: 2px; }
</style>
</head>
<body>
<h1>Smoker Controller</h1>

{{if .Ready}}
<p class="lcd">{{index .LCD 0}}
{{index .LCD 1}}</p>
{{else}}
<p>Waiting for first sample…</p>
{{end}}

<h2>Cook</h2>
<table>
<tr><th>Heater</th><td class="{{if eq .Summary.Heater "ON"}}on{{else if eq .Summary.Heater "STANDBY"}}standby{{else}}off{{end}}">{{printf "%s" .Summary.Heater}}</td></tr>
<tr><th>Setpoint</th><td>{{if .Summary.Standby}}standby{{else}}{{.Summary.Target}} °F{{end}}</td></tr>
<tr><th>Oven</th><td{{if .Summary.OvenStale}} class="stale"{{end}}>{{temp .Summary.Oven .Summary.OvenStale}}</td></tr>
<tr><th>Food probe</th><td{{if .Summary.ProbeStale}} class="stale"{{end}}>{{temp .Summary.Probe .Summary.ProbeStale}}</td></tr>
<tr><th>Hysteresis band</th><td>{{band .Summary.Band}}</td></tr>
<tr><th>Cook time</th><td>{{uptime .Summary.Elapsed}}</td></tr>
</table>

<h2>Raw readings</h2>
<table>
<tr><th>Oven</th><td>{{.Summary.RawOven}}</td></tr>
<tr><th>Probe</th><td>{{.Summary.RawProbe}}</td></tr>
<tr><th>Dial</th><td>{{.Summary.RawDial}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Sample</th><td>{{.Config.SampleMs}}ms</td></tr>
<tr><th>Display</th><td>{{.Config.DisplayMs}}ms</td></tr>
<tr><th>Modulate</th><td>{{.Config.ModulateMs}}ms</td></tr>
<tr><th>Checkpoint</th><td>{{.Config.CheckpointMs}}ms</td></tr>
<tr><th>Layout</th><td>{{if .Config.LayoutFile}}{{.Config.LayoutFile}}{{else}}built-in defaults{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but the template needs plain fields.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		LCD    [2]string
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		LCD:      status.FormatLines(snap.Summary),
	}
	indexTmpl.Execute(w, data)
}
