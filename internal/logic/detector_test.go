package logic

import (
	"testing"
	"time"
)

var testLines = []string{"capt_takeover", "fo_takeover"}

func TestNewDetector(t *testing.T) {
	startTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(testLines, 250*time.Millisecond, startTime)
	if d == nil {
		t.Fatal("NewDetector returned nil")
	}
	if d.debounceDuration != 250*time.Millisecond {
		t.Errorf("expected debounce duration 250ms, got %v", d.debounceDuration)
	}
	if d.baselined {
		t.Error("new detector should not be baselined")
	}
	if len(d.lines) != 2 {
		t.Errorf("expected 2 lines, got %d", len(d.lines))
	}
	if !d.lastHeartbeat.Equal(startTime) {
		t.Errorf("expected lastHeartbeat %v, got %v", startTime, d.lastHeartbeat)
	}
}

func TestBaselineEstablishment(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(testLines, 250*time.Millisecond, now)

	// First sample - starts observation
	events := d.Process(Input{Lines: []bool{true, false}, Time: now})
	if len(events) != 0 {
		t.Errorf("expected no events during baseline, got %d", len(events))
	}
	if d.IsBaselined() {
		t.Error("should not be baselined after first sample")
	}

	// Before debounce period
	d.Process(Input{Lines: []bool{true, false}, Time: now.Add(200 * time.Millisecond)})
	if d.IsBaselined() {
		t.Error("should not be baselined before debounce period")
	}

	// After debounce period - baseline established, still no events
	events = d.Process(Input{Lines: []bool{true, false}, Time: now.Add(250 * time.Millisecond)})
	if len(events) != 0 {
		t.Errorf("expected no events at baseline establishment, got %d", len(events))
	}
	if !d.IsBaselined() {
		t.Error("should be baselined after debounce period")
	}

	stable := d.Stable()
	if !stable[0] || stable[1] {
		t.Errorf("expected stable [true false], got %v", stable)
	}
}

func TestBaselineResetOnChange(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(testLines, 250*time.Millisecond, now)

	d.Process(Input{Lines: []bool{true, false}, Time: now})
	// Change state before debounce completes
	d.Process(Input{Lines: []bool{false, false}, Time: now.Add(100 * time.Millisecond)})

	d.Process(Input{Lines: []bool{false, false}, Time: now.Add(250 * time.Millisecond)})
	if d.IsBaselined() {
		t.Error("first line restarted its debounce, detector should not be baselined")
	}

	d.Process(Input{Lines: []bool{false, false}, Time: now.Add(350 * time.Millisecond)})
	if !d.IsBaselined() {
		t.Error("should be baselined after debounce from state change")
	}
}

func TestSingleTransition(t *testing.T) {
	d := setupBaselinedDetector(t, false, false)
	now := time.Date(2026, 1, 1, 12, 1, 0, 0, time.UTC)

	if events := d.Process(Input{Lines: []bool{true, false}, Time: now}); len(events) != 0 {
		t.Errorf("expected no events before debounce, got %d", len(events))
	}
	if events := d.Process(Input{Lines: []bool{true, false}, Time: now.Add(200 * time.Millisecond)}); len(events) != 0 {
		t.Errorf("expected no events before debounce, got %d", len(events))
	}

	events := d.Process(Input{Lines: []bool{true, false}, Time: now.Add(250 * time.Millisecond)})
	if len(events) != 1 {
		t.Fatalf("expected 1 event after debounce, got %d", len(events))
	}
	e := events[0]
	if e.Line != "capt_takeover" {
		t.Errorf("expected capt_takeover, got %s", e.Line)
	}
	if e.State != StateOn {
		t.Errorf("expected ON, got %s", e.State)
	}
	if !e.Timestamp.Equal(now.Add(250 * time.Millisecond)) {
		t.Errorf("unexpected timestamp: %v", e.Timestamp)
	}
}

func TestBounceShorterThanDebounce(t *testing.T) {
	d := setupBaselinedDetector(t, true, false)
	now := time.Date(2026, 1, 1, 12, 1, 0, 0, time.UTC)

	d.Process(Input{Lines: []bool{false, false}, Time: now})
	d.Process(Input{Lines: []bool{true, false}, Time: now.Add(100 * time.Millisecond)})
	events := d.Process(Input{Lines: []bool{true, false}, Time: now.Add(300 * time.Millisecond)})
	if len(events) != 0 {
		t.Errorf("expected no events after bounce, got %d", len(events))
	}
	if !d.Stable()[0] {
		t.Error("expected line to stay ON after bounce")
	}
}

func TestSimultaneousTransitionsInLineOrder(t *testing.T) {
	d := setupBaselinedDetector(t, false, false)
	now := time.Date(2026, 1, 1, 12, 1, 0, 0, time.UTC)

	d.Process(Input{Lines: []bool{true, true}, Time: now})
	events := d.Process(Input{Lines: []bool{true, true}, Time: now.Add(250 * time.Millisecond)})
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Line != "capt_takeover" || events[1].Line != "fo_takeover" {
		t.Errorf("expected events in line order, got %s then %s", events[0].Line, events[1].Line)
	}
}

func TestShortSampleLeavesLinesUntouched(t *testing.T) {
	d := setupBaselinedDetector(t, false, true)
	now := time.Date(2026, 1, 1, 12, 1, 0, 0, time.UTC)

	d.Process(Input{Lines: []bool{true}, Time: now})
	d.Process(Input{Lines: []bool{true}, Time: now.Add(time.Second)})
	stable := d.Stable()
	if !stable[0] || !stable[1] {
		t.Errorf("expected [true true], got %v", stable)
	}
}

func setupBaselinedDetector(t *testing.T, capt, fo bool) *Detector {
	t.Helper()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(testLines, 250*time.Millisecond, now)

	d.Process(Input{Lines: []bool{capt, fo}, Time: now})
	d.Process(Input{Lines: []bool{capt, fo}, Time: now.Add(250 * time.Millisecond)})

	if !d.IsBaselined() {
		t.Fatal("failed to establish baseline")
	}

	return d
}

// Heartbeat tests

func TestCountsIncrementOnTransition(t *testing.T) {
	d := setupBaselinedDetector(t, false, false)
	now := time.Date(2026, 1, 1, 12, 1, 0, 0, time.UTC)

	d.Process(Input{Lines: []bool{true, false}, Time: now})
	d.Process(Input{Lines: []bool{true, false}, Time: now.Add(250 * time.Millisecond)})
	d.Process(Input{Lines: []bool{false, false}, Time: now.Add(500 * time.Millisecond)})
	d.Process(Input{Lines: []bool{false, false}, Time: now.Add(750 * time.Millisecond)})

	counts := d.CountsSnapshot()
	if counts["capt_takeover"].On != 1 || counts["capt_takeover"].Off != 1 {
		t.Errorf("expected capt_takeover 1/1, got %+v", counts["capt_takeover"])
	}
	if counts["fo_takeover"] != (TransitionCounts{}) {
		t.Errorf("expected no fo_takeover transitions, got %+v", counts["fo_takeover"])
	}
}

func TestCheckHeartbeatDisabledWithZeroInterval(t *testing.T) {
	d := setupBaselinedDetector(t, false, false)
	if hb := d.CheckHeartbeat(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), 0); hb != nil {
		t.Error("expected nil heartbeat with zero interval")
	}
}

func TestCheckHeartbeatBeforeBaseline(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(testLines, 250*time.Millisecond, start)
	if hb := d.CheckHeartbeat(start.Add(time.Hour), time.Minute); hb != nil {
		t.Error("expected nil heartbeat before baseline")
	}
}

func TestCheckHeartbeatAtInterval(t *testing.T) {
	d := setupBaselinedDetector(t, false, false)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if hb := d.CheckHeartbeat(start.Add(59*time.Second), time.Minute); hb != nil {
		t.Error("expected nil heartbeat before interval")
	}

	hb := d.CheckHeartbeat(start.Add(time.Minute), time.Minute)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Uptime != time.Minute {
		t.Errorf("expected uptime 1m, got %v", hb.Uptime)
	}
	if len(hb.Counts) != 2 {
		t.Errorf("expected counts for 2 lines, got %d", len(hb.Counts))
	}

	if hb := d.CheckHeartbeat(start.Add(time.Minute+time.Second), time.Minute); hb != nil {
		t.Error("expected lastHeartbeat to advance")
	}
}
