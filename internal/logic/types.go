package logic

import "time"

// State represents the debounced state of a panel discrete line.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// Event represents a debounced transition of one panel line.
type Event struct {
	Timestamp time.Time
	Line      string
	State     State
}

// LineState tracks debounce state for a single line.
type LineState struct {
	// Current stable (debounced) state
	Stable State
	// Pending state during debounce
	Pending State
	// Time when pending state was first observed
	PendingSince time.Time
	// Whether we have established a baseline
	Baselined bool
}

// Input represents a single sample of all panel lines, in the order the detector
// was created with.
type Input struct {
	Lines []bool
	Time  time.Time
}

// TransitionCounts tracks the number of transitions of one line since startup.
type TransitionCounts struct {
	On  int
	Off int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    map[string]TransitionCounts
}
