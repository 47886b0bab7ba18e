package fcs

import (
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/fbw-supervisor/internal/law"
)

// Summary is the externally visible state of one computer.
type Summary struct {
	Computer     ID
	Powered      bool
	Healthy      bool
	SelfTest     bool
	FaultLatched bool
	PitchLaw     law.PitchLaw
	LateralLaw   law.LateralLaw
	// Functions lists the engaged functions, comma separated, e.g. "pitch,roll".
	Functions string
}

// Event is one observed transition of a computer signal.
type Event struct {
	Time     time.Duration
	Computer ID
	Signal   string
	From     string
	To       string
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s %s: %s -> %s", e.Time, e.Computer, e.Signal, e.From, e.To)
}

// Summaries returns the state of every computer after the last step.
func (s *System) Summaries() []Summary {
	out := make([]Summary, NumComputers)
	copy(out, s.summaries[:])
	return out
}

// Summary returns the state of one computer after the last step.
func (s *System) Summary(id ID) Summary {
	return s.summaries[id]
}

func (s *System) summarize(env Environment) [NumComputers]Summary {
	var out [NumComputers]Summary
	for i := range out {
		id := ID(i)
		out[i].Computer = id
		out[i].Powered = !env.Unpowered[id]
	}

	for i, c := range s.elac {
		st := c.Status()
		sm := &out[Elac1+ID(i)]
		sm.Healthy = c.Healthy()
		sm.SelfTest = selfTesting(st.Health.SelfTestComplete, st.Health.SelfTestRemaining)
		sm.FaultLatched = st.Health.FaultLatched
		sm.PitchLaw = st.PitchLaw
		sm.LateralLaw = st.LateralLaw
		sm.Functions = functions(
			st.Pitch.IsEngaged, "pitch",
			st.Roll.IsEngaged, "roll",
			st.Cross.Left, "left_aileron_cross",
			st.Cross.Right, "right_aileron_cross",
		)
	}
	for i, c := range s.sec {
		st := c.Status()
		sm := &out[Sec1+ID(i)]
		sm.Healthy = c.Healthy()
		sm.SelfTest = selfTesting(st.Health.SelfTestComplete, st.Health.SelfTestRemaining)
		sm.PitchLaw = st.PitchLaw
		flags := []any{st.Pitch.IsEngaged, "pitch"}
		for n, on := range st.Spoilers {
			flags = append(flags, on, fmt.Sprintf("spoiler%d", n+1))
		}
		flags = append(flags, st.GroundSpoilersOut, "ground_spoilers")
		sm.Functions = functions(flags...)
	}
	for i, c := range s.fac {
		st := c.Status()
		sm := &out[Fac1+ID(i)]
		sm.Healthy = c.Healthy()
		sm.SelfTest = selfTesting(st.Health.SelfTestComplete, st.Health.SelfTestRemaining)
		sm.Functions = functions(
			st.YawDamper.IsEngaged, string(YawDamper),
			st.RudderTrim.IsEngaged, string(RudderTrim),
			st.RudderLimiter.IsEngaged, string(RudderLimiter),
		)
	}
	for i, c := range s.fcdc {
		st := c.Status()
		sm := &out[Fcdc1+ID(i)]
		sm.Healthy = c.Healthy()
		sm.SelfTest = selfTesting(st.Health.SelfTestComplete, st.Health.SelfTestRemaining)
		if sm.Healthy {
			sm.PitchLaw = st.PitchLaw
			sm.LateralLaw = st.LateralLaw
		}
	}
	return out
}

func selfTesting(complete bool, remaining time.Duration) bool {
	return !complete && remaining > 0
}

// functions joins the names whose flag is set. Arguments alternate bool, string.
func functions(flagsAndNames ...any) string {
	var names []string
	for i := 0; i+1 < len(flagsAndNames); i += 2 {
		if on, _ := flagsAndNames[i].(bool); on {
			names = append(names, flagsAndNames[i+1].(string))
		}
	}
	return strings.Join(names, ",")
}

func (s *System) collectEvents(env Environment) []Event {
	next := s.summarize(env)
	var events []Event
	for i := range next {
		prev, cur := s.summaries[i], next[i]
		if s.started && prev == cur {
			continue
		}
		add := func(signal, from, to string) {
			if s.started && from == to {
				return
			}
			events = append(events, Event{Time: s.now, Computer: cur.Computer, Signal: signal, From: from, To: to})
		}
		add("powered", onOff(prev.Powered), onOff(cur.Powered))
		add("healthy", onOff(prev.Healthy), onOff(cur.Healthy))
		add("self_test", onOff(prev.SelfTest), onOff(cur.SelfTest))
		add("fault_latched", onOff(prev.FaultLatched), onOff(cur.FaultLatched))
		add("pitch_law", prev.PitchLaw.String(), cur.PitchLaw.String())
		add("lateral_law", prev.LateralLaw.String(), cur.LateralLaw.String())
		add("functions", prev.Functions, cur.Functions)
	}
	s.summaries = next
	s.started = true
	return events
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
