// Package lawmodel is the boundary to the numeric control-law models. The
// supervisory computers decide which law may run; a Model turns pilot orders into
// surface commands under that law.
package lawmodel

import (
	"github.com/sweeney/fbw-supervisor/internal/law"
	"github.com/sweeney/fbw-supervisor/internal/mathx"
)

// Orders are the pilot inputs fed to a model, normalized to [-1, 1].
type Orders struct {
	Pitch float64
	Roll  float64
}

// Commands are surface positions in degrees, positive trailing edge down.
type Commands struct {
	Elevator     float64
	LeftAileron  float64
	RightAileron float64
}

// Model computes surface commands for the active laws.
type Model interface {
	Step(pitch law.PitchLaw, lateral law.LateralLaw, o Orders) Commands
}

// Surface travel limits in degrees.
const (
	ElevatorUp     = -30.0
	ElevatorDown   = 17.0
	AileronTravel  = 25.0
	directGainStep = 0.2
)

// Proportional maps stick deflection straight onto surface travel. Degraded laws
// reduce authority in steps of directGainStep so the law change is visible on a
// bench. It stands in for the real models, which are out of scope here.
type Proportional struct{}

func (Proportional) Step(pitch law.PitchLaw, lateral law.LateralLaw, o Orders) Commands {
	var c Commands
	if pitch != law.PitchNone {
		gain := pitchGain(pitch)
		p := mathx.Clamp(o.Pitch*gain, -1, 1)
		if p < 0 {
			c.Elevator = mathx.MapRange(p, -1, 0, ElevatorUp, 0)
		} else {
			c.Elevator = mathx.MapRange(p, 0, 1, 0, ElevatorDown)
		}
	}
	if lateral != law.LateralNone {
		gain := 1.0
		if lateral == law.LateralDirect {
			gain -= directGainStep
		}
		r := mathx.Clamp(o.Roll*gain, -1, 1)
		c.LeftAileron = -r * AileronTravel
		c.RightAileron = r * AileronTravel
	}
	return c
}

func pitchGain(l law.PitchLaw) float64 {
	switch l {
	case law.PitchNormal:
		return 1
	case law.PitchAlternate1:
		return 1 - directGainStep
	case law.PitchAlternate2:
		return 1 - 2*directGainStep
	default:
		return 1 - 3*directGainStep
	}
}
