// Package health implements the power-supply and self-test supervision shared by
// every flight control computer. A Supervisor decides, once per frame, whether its
// computer is healthy enough to drive surfaces and publish valid data.
package health

import (
	"time"

	"github.com/sweeney/fbw-supervisor/internal/frame"
	"github.com/sweeney/fbw-supervisor/internal/logic"
)

// Policy holds the computer-kind specific supervision constants.
type Policy struct {
	// MinOutageForFault is the accumulated outage above which the power supply is faulted.
	MinOutageForFault time.Duration
	ShortSelfTest     time.Duration
	LongSelfTest      time.Duration
	// LongSelfTestOutage is the outage (or engage switch off time) above which an
	// unpressurized aircraft gets the long self-test.
	LongSelfTestOutage time.Duration

	// HasEngageSwitch makes healthiness depend on the engage pushbutton and lets a
	// rising edge restart the self-test.
	HasEngageSwitch bool
	// ClearMemoryOnSelfTest reports a memory clear whenever the self-test restarts.
	ClearMemoryOnSelfTest bool

	// GroundGated restricts power-restoration self-tests to the ground with both
	// engines stopped and an outage of at least MinGroundOutage.
	GroundGated     bool
	MinGroundOutage time.Duration
}

// Inputs are the discretes the supervisor reads each frame.
type Inputs struct {
	// HydraulicPressurized is true when at least one hydraulic circuit is pressurized.
	HydraulicPressurized bool
	EngageSwitch         bool
	OnGround             bool
	EnginesStopped       bool
	// LatchFault feeds the computer-specific fault latch. Once set, only a memory
	// clear resets it.
	LatchFault bool
}

// State is the observable supervision state.
type State struct {
	PowerOutageTime   time.Duration
	PowerSupplyFault  bool
	SelfTestRemaining time.Duration
	SelfTestComplete  bool
	FaultLatched      bool
	MonitoringHealthy bool
}

// Supervisor owns the HealthState of one computer instance.
type Supervisor struct {
	policy        Policy
	state         State
	engagePulse   *logic.PulseNode
	faultLatch    *logic.SRFlipFlop
	engageOffTime time.Duration
	everPowered   bool
}

// NewSupervisor creates a supervisor with every state flag false and no time accumulated.
func NewSupervisor(policy Policy) *Supervisor {
	return &Supervisor{
		policy:      policy,
		engagePulse: logic.NewPulseNode(true),
		faultLatch:  logic.NewSRFlipFlop(false),
	}
}

// Update advances supervision by one frame. It returns true when the owning
// computer must clear its latched memory.
func (s *Supervisor) Update(ctx frame.Context, in Inputs) bool {
	memoryClear := false
	startedThisFrame := false

	switch {
	case !ctx.Powered:
		s.state.PowerOutageTime += ctx.Delta
		if s.state.PowerOutageTime > s.policy.MinOutageForFault {
			s.state.PowerSupplyFault = true
		}

	case !s.everPowered:
		// Cold start behaves like a restoration after an indefinitely long outage.
		s.everPowered = true
		s.state.PowerSupplyFault = false
		s.state.PowerOutageTime = 0
		s.engagePulse.Update(in.EngageSwitch)
		s.startSelfTest(s.policy.LongSelfTestOutage, in)
		startedThisFrame = true

	case s.state.PowerSupplyFault:
		outage := s.state.PowerOutageTime
		s.state.PowerSupplyFault = false
		s.state.PowerOutageTime = 0
		if s.selfTestAllowedAfterOutage(outage, in) {
			s.startSelfTest(outage, in)
			startedThisFrame = true
			memoryClear = s.policy.ClearMemoryOnSelfTest
		}
	}

	if ctx.Powered && s.policy.HasEngageSwitch && !startedThisFrame {
		if s.engagePulse.Update(in.EngageSwitch) {
			s.startSelfTest(s.engageOffTime, in)
			startedThisFrame = true
			memoryClear = s.policy.ClearMemoryOnSelfTest
		}
		if in.EngageSwitch {
			s.engageOffTime = 0
		} else {
			s.engageOffTime += ctx.Delta
		}
	}

	if ctx.Powered && !startedThisFrame && s.state.SelfTestRemaining > 0 {
		s.state.SelfTestRemaining -= ctx.Delta
		if s.state.SelfTestRemaining <= 0 {
			s.state.SelfTestRemaining = 0
			s.state.SelfTestComplete = true
		}
	}

	s.state.FaultLatched = s.faultLatch.Update(in.LatchFault, memoryClear)

	s.state.MonitoringHealthy = !ctx.FaultInjected &&
		!s.state.PowerSupplyFault &&
		s.state.SelfTestComplete &&
		(!s.policy.HasEngageSwitch || in.EngageSwitch) &&
		!s.state.FaultLatched

	return memoryClear
}

func (s *Supervisor) selfTestAllowedAfterOutage(outage time.Duration, in Inputs) bool {
	if !s.policy.GroundGated {
		return true
	}
	return in.OnGround && in.EnginesStopped && outage >= s.policy.MinGroundOutage
}

func (s *Supervisor) startSelfTest(outage time.Duration, in Inputs) {
	s.state.SelfTestComplete = false
	s.state.SelfTestRemaining = s.selfTestDuration(outage, in)
}

// selfTestDuration picks the short test when any circuit is pressurized or the
// interruption was brief, and the long test otherwise.
func (s *Supervisor) selfTestDuration(outage time.Duration, in Inputs) time.Duration {
	if in.HydraulicPressurized {
		return s.policy.ShortSelfTest
	}
	if outage >= s.policy.LongSelfTestOutage {
		return s.policy.LongSelfTest
	}
	return s.policy.ShortSelfTest
}

// State returns a copy of the current supervision state.
func (s *Supervisor) State() State {
	return s.state
}

// Healthy reports the last computed MonitoringHealthy flag.
func (s *Supervisor) Healthy() bool {
	return s.state.MonitoringHealthy
}

// SelfTestInProgress reports whether a self-test timer is running.
func (s *Supervisor) SelfTestInProgress() bool {
	return !s.state.SelfTestComplete && s.state.SelfTestRemaining > 0
}
