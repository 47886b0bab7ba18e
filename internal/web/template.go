package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sweeney/fbw-supervisor/internal/status"
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
	"functions": func(s string) string {
		if s == "" {
			return "-"
		}
		return strings.ReplaceAll(s, ",", " ")
	},
	"lower": strings.ToLower,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>FBW Bench</title>
<style>
body { font-family: monospace; max-width: 900px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.fault { color: red; font-weight: bold; }
.testing { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>FBW Bench{{if .Ready}} <span class="on">READY</span>{{end}}</h1>

<h2>Computers</h2>
<table>
<tr><th>Computer</th><th>Power</th><th>State</th><th>Pitch law</th><th>Lateral law</th><th>Engaged</th><th>Transitions</th></tr>
{{range .Computers}}<tr>
<td><a href="/computers/{{lower .Computer.String}}.json">{{.Computer}}</a></td>
<td class="{{if .Powered}}on{{else}}off{{end}}">{{if .Powered}}ON{{else}}OFF{{end}}</td>
<td>{{if .FaultLatched}}<span class="fault">LATCHED</span>{{else if .SelfTest}}<span class="testing">SELF TEST</span>{{else if .Healthy}}<span class="on">HEALTHY</span>{{else}}<span class="fault">FAULT</span>{{end}}</td>
<td>{{.PitchLaw}}</td>
<td>{{.LateralLaw}}</td>
<td>{{functions .Functions}}</td>
<td>{{index $.Transitions .Computer}}</td>
</tr>
{{end}}</table>

{{if .Panel}}<h2>Panel</h2>
<table>
<tr><th>Ready</th><td>{{if .PanelBaselined}}yes{{else}}no{{end}}</td></tr>
{{range $line, $on := .Panel}}<tr><th>{{$line}}</th><td class="{{if $on}}on{{else}}off{{end}}">{{if $on}}ON{{else}}OFF{{end}}</td></tr>
{{end}}</table>
{{end}}
{{if .ScenarioName}}<h2>Scenario</h2>
<table>
<tr><th>Name</th><td>{{.ScenarioName}}</td></tr>
<tr><th>State</th><td>{{if .ScenarioDone}}done{{else}}running{{end}}</td></tr>
</table>
{{end}}
<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Sim time</th><td>{{.SimTime}}</td></tr>
<tr><th>Frames</th><td>{{.Frames}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Frame</th><td>{{.Config.FrameMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() and Ready() methods but the template needs fields.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Ready  bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Ready:    snap.Ready(),
	}
	indexTmpl.Execute(w, data)
}
