// Package priority arbitrates between the two sidesticks using the takeover
// pushbuttons.
package priority

import (
	"time"

	"github.com/sweeney/fbw-supervisor/internal/logic"
)

// LockDelay is how long a takeover button must be held before the other stick is
// locked out.
const LockDelay = 30 * time.Second

// State is the persistent priority state. It survives across frames until Reset.
type State struct {
	LeftDisabled  bool
	RightDisabled bool
	LeftLocked    bool
	RightLocked   bool
}

// Arbiter owns the priority state of one computer.
type Arbiter struct {
	state     State
	leftEdge  *logic.PulseNode
	rightEdge *logic.PulseNode
	leftHold  *logic.ConfirmNode
	rightHold *logic.ConfirmNode
}

func NewArbiter() *Arbiter {
	a := &Arbiter{}
	a.Reset()
	return a
}

// Update advances the arbitration by dt. left and right are the takeover buttons.
// While an autopilot is engaged the buttons do not affect stick priority.
func (a *Arbiter) Update(dt time.Duration, left, right, autopilotEngaged bool) State {
	leftPressed := a.leftEdge.Update(left)
	rightPressed := a.rightEdge.Update(right)

	if !autopilotEngaged {
		if leftPressed {
			a.state.RightDisabled = true
			a.state.LeftDisabled = false
			a.state.LeftLocked = false
		}
		if rightPressed {
			a.state.LeftDisabled = true
			a.state.RightDisabled = false
			a.state.RightLocked = false
		}
	}

	if !left && !a.state.RightLocked {
		a.state.RightDisabled = false
	}
	if !right && !a.state.LeftLocked {
		a.state.LeftDisabled = false
	}

	if a.leftHold.Update(left && a.state.RightDisabled, dt) {
		a.state.RightLocked = true
	}
	if a.rightHold.Update(right && a.state.LeftDisabled, dt) {
		a.state.LeftLocked = true
	}
	if a.state.RightLocked {
		a.state.RightDisabled = true
	}
	if a.state.LeftLocked {
		a.state.LeftDisabled = true
	}
	return a.state
}

// State returns the current priority state.
func (a *Arbiter) State() State {
	return a.state
}

// Reset clears every disablement and lock, as on a computer memory clear.
func (a *Arbiter) Reset() {
	a.state = State{}
	a.leftEdge = logic.NewPulseNode(true)
	a.rightEdge = logic.NewPulseNode(true)
	a.leftHold = logic.NewConfirmNode(true, LockDelay)
	a.rightHold = logic.NewConfirmNode(true, LockDelay)
}
