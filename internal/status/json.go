package status

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/sweeney/fbw-supervisor/internal/fcs"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Ready         bool           `json:"ready"`
	SimTimeMs     int64          `json:"sim_time_ms"`
	Frames        uint64         `json:"frames"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	Computers     []ComputerJSON `json:"computers"`
	Panel         *PanelJSON     `json:"panel,omitempty"`
	Scenario      *ScenarioJSON  `json:"scenario,omitempty"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Transitions   map[string]int `json:"transitions"`
	Network       *NetworkJSON   `json:"network,omitempty"`
	Config        ConfigJSON     `json:"config"`
}

// ComputerJSON is the JSON representation of one computer summary.
type ComputerJSON struct {
	Computer     string   `json:"computer"`
	Powered      bool     `json:"powered"`
	Healthy      bool     `json:"healthy"`
	SelfTest     bool     `json:"self_test"`
	FaultLatched bool     `json:"fault_latched"`
	PitchLaw     string   `json:"pitch_law"`
	LateralLaw   string   `json:"lateral_law"`
	Functions    []string `json:"functions"`
}

// PanelJSON reports the debounced cockpit panel lines.
type PanelJSON struct {
	Ready bool              `json:"ready"`
	Lines map[string]string `json:"lines"`
}

// ScenarioJSON reports scenario playback.
type ScenarioJSON struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	FrameMs     int64  `json:"frame_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	BusEvery    int    `json:"bus_every"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	Scenario    string `json:"scenario,omitempty"`
}

// Computer converts one summary for JSON output.
func Computer(s fcs.Summary) ComputerJSON {
	fns := []string{}
	if s.Functions != "" {
		fns = strings.Split(s.Functions, ",")
	}
	return ComputerJSON{
		Computer:     s.Computer.String(),
		Powered:      s.Powered,
		Healthy:      s.Healthy,
		SelfTest:     s.SelfTest,
		FaultLatched: s.FaultLatched,
		PitchLaw:     s.PitchLaw.String(),
		LateralLaw:   s.LateralLaw.String(),
		Functions:    fns,
	}
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Ready:         snap.Ready(),
		SimTimeMs:     snap.SimTime.Milliseconds(),
		Frames:        snap.Frames,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Computers:     make([]ComputerJSON, 0, len(snap.Computers)),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Transitions:   make(map[string]int, len(snap.Transitions)),
		Config: ConfigJSON{
			FrameMs:     snap.Config.FrameMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			BusEvery:    snap.Config.BusEvery,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			Scenario:    snap.Config.Scenario,
		},
	}
	for _, c := range snap.Computers {
		inner.Computers = append(inner.Computers, Computer(c))
	}
	for id, n := range snap.Transitions {
		inner.Transitions[id.String()] = n
	}
	if snap.Panel != nil {
		p := &PanelJSON{Ready: snap.PanelBaselined, Lines: make(map[string]string, len(snap.Panel))}
		names := make([]string, 0, len(snap.Panel))
		for name := range snap.Panel {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			p.Lines[name] = onOff(snap.Panel[name])
		}
		inner.Panel = p
	}
	if snap.ScenarioName != "" {
		inner.Scenario = &ScenarioJSON{Name: snap.ScenarioName, Done: snap.ScenarioDone}
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
