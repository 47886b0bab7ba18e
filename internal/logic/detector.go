package logic

import "time"

// Detector debounces the contacts of a set of panel lines (pushbuttons, takeover
// buttons) and reports stable transitions. It sits at the hardware boundary; the
// computers themselves see only the debounced states.
type Detector struct {
	debounceDuration time.Duration
	names            []string
	lines            []LineState
	baselined        bool
	startTime        time.Time
	counts           []TransitionCounts
	lastHeartbeat    time.Time
}

// NewDetector creates a detector for the named lines with the given debounce duration.
// The startTime is used for calculating uptime in heartbeat events.
func NewDetector(names []string, debounceDuration time.Duration, startTime time.Time) *Detector {
	return &Detector{
		debounceDuration: debounceDuration,
		names:            names,
		lines:            make([]LineState, len(names)),
		counts:           make([]TransitionCounts, len(names)),
		startTime:        startTime,
		lastHeartbeat:    startTime,
	}
}

// Process takes a new input sample and returns any events that should be emitted.
// Events are only returned after every line is baselined, in line order.
// Samples shorter than the line list leave the missing lines untouched.
func (d *Detector) Process(input Input) []Event {
	var events []Event
	for i := range d.lines {
		if i >= len(input.Lines) {
			break
		}
		if to, ok := d.processLine(&d.lines[i], boolToState(input.Lines[i]), input.Time); ok {
			events = append(events, Event{
				Timestamp: input.Time,
				Line:      d.names[i],
				State:     to,
			})
			if to == StateOn {
				d.counts[i].On++
			} else {
				d.counts[i].Off++
			}
		}
	}

	if !d.baselined {
		d.baselined = true
		for _, l := range d.lines {
			if !l.Baselined {
				d.baselined = false
			}
		}
		// No events until every line has a baseline
		return nil
	}

	return events
}

// processLine handles debounce logic for a single line.
// Returns the new stable state if a transition occurred.
func (d *Detector) processLine(l *LineState, newState State, now time.Time) (State, bool) {
	// First time seeing this line
	if !l.Baselined {
		if l.Pending != newState {
			// Start observing, or state changed during baseline: restart
			l.Pending = newState
			l.PendingSince = now
			return "", false
		}

		if now.Sub(l.PendingSince) >= d.debounceDuration {
			l.Stable = newState
			l.Baselined = true
			l.Pending = ""
		}
		return "", false
	}

	if newState == l.Stable {
		// No change from stable state, clear any pending
		l.Pending = ""
		return "", false
	}

	if l.Pending != newState {
		l.Pending = newState
		l.PendingSince = now
		return "", false
	}

	if now.Sub(l.PendingSince) >= d.debounceDuration {
		l.Stable = newState
		l.Pending = ""
		return newState, true
	}

	return "", false
}

func boolToState(b bool) State {
	if b {
		return StateOn
	}
	return StateOff
}

// IsBaselined returns whether every line has established a baseline.
func (d *Detector) IsBaselined() bool {
	return d.baselined
}

// Stable returns the debounced state of every line, false for lines without a baseline.
func (d *Detector) Stable() []bool {
	out := make([]bool, len(d.lines))
	for i, l := range d.lines {
		out[i] = l.Stable == StateOn
	}
	return out
}

// CountsSnapshot returns a copy of the per-line transition counts.
func (d *Detector) CountsSnapshot() map[string]TransitionCounts {
	out := make(map[string]TransitionCounts, len(d.names))
	for i, name := range d.names {
		out[name] = d.counts[i]
	}
	return out
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet baselined, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if !d.baselined {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.CountsSnapshot(),
	}
}
