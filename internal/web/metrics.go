package web

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/fbw-supervisor/internal/status"
)

var (
	computerLabels = []string{"computer"}

	descPowered = prometheus.NewDesc("fbw_computer_powered",
		"Whether the computer's power supply is available.", computerLabels, nil)
	descHealthy = prometheus.NewDesc("fbw_computer_healthy",
		"Whether the computer is healthy and allowed to engage.", computerLabels, nil)
	descSelfTest = prometheus.NewDesc("fbw_computer_self_test",
		"Whether the computer is running its power-up self-test.", computerLabels, nil)
	descFaultLatched = prometheus.NewDesc("fbw_computer_fault_latched",
		"Whether a monitoring fault is latched until the next power cycle.", computerLabels, nil)
	descFunctions = prometheus.NewDesc("fbw_computer_engaged_functions",
		"Number of functions the computer has engaged.", computerLabels, nil)
	descPitchLaw = prometheus.NewDesc("fbw_computer_pitch_law_info",
		"Active pitch law, as a label.", []string{"computer", "law"}, nil)
	descLateralLaw = prometheus.NewDesc("fbw_computer_lateral_law_info",
		"Active lateral law, as a label.", []string{"computer", "law"}, nil)
	descTransitions = prometheus.NewDesc("fbw_transitions_total",
		"Signal transitions reported per computer.", computerLabels, nil)
	descSimTime = prometheus.NewDesc("fbw_sim_time_seconds",
		"Simulated time since the bench started.", nil, nil)
	descFrames = prometheus.NewDesc("fbw_frames_total",
		"Frames stepped since the bench started.", nil, nil)
	descMQTT = prometheus.NewDesc("fbw_mqtt_connected",
		"Whether the MQTT publisher is connected.", nil, nil)
	descPanel = prometheus.NewDesc("fbw_panel_line",
		"Debounced state of a cockpit panel line.", []string{"line"}, nil)
)

// collector exports tracker snapshots. Every scrape reads one snapshot, so the
// metrics of a scrape are consistent with each other.
type collector struct {
	tracker *status.Tracker
}

func newCollector(t *status.Tracker) *collector {
	return &collector{tracker: t}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		descPowered, descHealthy, descSelfTest, descFaultLatched, descFunctions,
		descPitchLaw, descLateralLaw, descTransitions, descSimTime, descFrames,
		descMQTT, descPanel,
	} {
		ch <- d
	}
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.tracker.Snapshot()

	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}

	for _, sm := range snap.Computers {
		name := sm.Computer.String()
		gauge(descPowered, boolValue(sm.Powered), name)
		gauge(descHealthy, boolValue(sm.Healthy), name)
		gauge(descSelfTest, boolValue(sm.SelfTest), name)
		gauge(descFaultLatched, boolValue(sm.FaultLatched), name)
		gauge(descFunctions, float64(len(status.Computer(sm).Functions)), name)
		gauge(descPitchLaw, 1, name, sm.PitchLaw.String())
		gauge(descLateralLaw, 1, name, sm.LateralLaw.String())
		ch <- prometheus.MustNewConstMetric(descTransitions, prometheus.CounterValue,
			float64(snap.Transitions[sm.Computer]), name)
	}

	gauge(descSimTime, snap.SimTime.Seconds())
	ch <- prometheus.MustNewConstMetric(descFrames, prometheus.CounterValue, float64(snap.Frames))
	gauge(descMQTT, boolValue(snap.MQTTConnected))
	for line, on := range snap.Panel {
		gauge(descPanel, boolValue(on), line)
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
