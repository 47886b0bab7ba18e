// Package status provides a thread-safe status tracker for the fbw-bench daemon.
// The control loop writes it once per frame; HTTP handlers and the heartbeat read
// point-in-time snapshots.
package status

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/sweeney/fbw-supervisor/internal/fcs"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	FrameMs     int64
	DebounceMs  int64
	HeartbeatMs int64
	BusEvery    int
	Broker      string
	HTTPAddr    string
	Scenario    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type: safe to use after the lock is released.
type Snapshot struct {
	Computers []fcs.Summary
	SimTime   time.Duration
	Frames    uint64
	// Transitions counts every event the system has reported, per computer.
	Transitions map[fcs.ID]int

	Panel          map[string]bool
	PanelBaselined bool
	ScenarioName   string
	ScenarioDone   bool

	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Ready reports whether the system has stepped and every computer is healthy.
func (s Snapshot) Ready() bool {
	if len(s.Computers) == 0 {
		return false
	}
	for _, c := range s.Computers {
		if !c.Healthy {
			return false
		}
	}
	return true
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime:   startTime,
			Config:      cfg,
			Transitions: make(map[fcs.ID]int),
		},
	}
}

// Update records the state after one frame. Called from the run loop on every tick.
func (t *Tracker) Update(simTime time.Duration, summaries []fcs.Summary, events []fcs.Event) {
	t.mu.Lock()
	t.snap.SimTime = simTime
	t.snap.Frames++
	t.snap.Computers = slices.Clone(summaries)
	for _, e := range events {
		t.snap.Transitions[e.Computer]++
	}
	t.mu.Unlock()
}

// SetPanel records the debounced panel line states.
func (t *Tracker) SetPanel(lines map[string]bool, baselined bool) {
	t.mu.Lock()
	t.snap.Panel = maps.Clone(lines)
	t.snap.PanelBaselined = baselined
	t.mu.Unlock()
}

// SetScenario records the running scenario and whether it has finished.
func (t *Tracker) SetScenario(name string, done bool) {
	t.mu.Lock()
	t.snap.ScenarioName = name
	t.snap.ScenarioDone = done
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Computers = slices.Clone(t.snap.Computers)
	s.Transitions = maps.Clone(t.snap.Transitions)
	s.Panel = maps.Clone(t.snap.Panel)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
