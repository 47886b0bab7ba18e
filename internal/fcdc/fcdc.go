// Package fcdc implements the flight control data concentrator. It drives no
// surfaces: it consolidates the ELAC and SEC buses for display and maintenance.
package fcdc

import (
	"time"

	"github.com/sweeney/fbw-supervisor/internal/arinc429"
	"github.com/sweeney/fbw-supervisor/internal/catalog"
	"github.com/sweeney/fbw-supervisor/internal/frame"
	"github.com/sweeney/fbw-supervisor/internal/health"
	"github.com/sweeney/fbw-supervisor/internal/law"
	"github.com/sweeney/fbw-supervisor/internal/mathx"
	"github.com/sweeney/fbw-supervisor/internal/vote"
)

var Policy = health.Policy{
	MinOutageForFault:  10 * time.Millisecond,
	ShortSelfTest:      200 * time.Millisecond,
	LongSelfTest:       time.Second,
	LongSelfTestOutage: 3 * time.Second,
}

// SpoilerPairs matches the SEC spoiler numbering.
const SpoilerPairs = 5

// ElacBus is the part of an ELAC output bus an FCDC listens to.
type ElacBus struct {
	CaptPitchCommand      arinc429.Number   // label 174
	FoPitchCommand        arinc429.Number   // label 175
	CaptRollCommand       arinc429.Number   // label 176
	FoRollCommand         arinc429.Number   // label 177
	LeftAileronPosition   arinc429.Number   // label 310
	RightAileronPosition  arinc429.Number   // label 314
	LeftElevatorPosition  arinc429.Number   // label 333
	RightElevatorPosition arinc429.Number   // label 334
	DiscreteStatus1       arinc429.Discrete // label 270
	DiscreteStatus2       arinc429.Discrete // label 271
}

// SecBus is the part of a SEC output bus an FCDC listens to.
type SecBus struct {
	SpoilerPosition [SpoilerPairs]arinc429.Number // labels 361-365
	DiscreteStatus1 arinc429.Discrete             // label 270
	DiscreteStatus2 arinc429.Discrete             // label 271
}

type BusInputs struct {
	Elac       [2]ElacBus
	Sec        [3]SecBus
	FacStatus1 [2]arinc429.Discrete // label 270
}

// Inputs carries no discretes or analogs: the FCDC listens to buses only.
type Inputs struct {
	Bus BusInputs
}

type DiscreteOutputs struct {
	Healthy bool

	CaptPriorityGreen bool
	CaptPriorityRed   bool
	FoPriorityGreen   bool
	FoPriorityRed     bool
	DualInputWarning  bool
}

type Bus struct {
	LeftElevatorPosition  arinc429.Number               // label 333
	RightElevatorPosition arinc429.Number               // label 334
	LeftAileronPosition   arinc429.Number               // label 310
	RightAileronPosition  arinc429.Number               // label 314
	SpoilerPosition       [SpoilerPairs]arinc429.Number // labels 361-365
	DiscreteWord1         arinc429.Discrete             // label 270
	DiscreteWord2         arinc429.Discrete             // label 271
}

func (b Bus) Frame() arinc429.Frame {
	var f arinc429.Frame
	f.Add(catalog.LabelLeftElevatorPosition, b.LeftElevatorPosition.Pack())
	f.Add(catalog.LabelRightElevatorPosition, b.RightElevatorPosition.Pack())
	f.Add(catalog.LabelLeftAileronPosition, b.LeftAileronPosition.Pack())
	f.Add(catalog.LabelRightAileronPosition, b.RightAileronPosition.Pack())
	for i, w := range b.SpoilerPosition {
		f.Add(catalog.LabelSpoilerPosition+arinc429.Label(i), w.Pack())
	}
	f.Add(catalog.LabelDiscreteStatus1, b.DiscreteWord1.Pack())
	f.Add(catalog.LabelDiscreteStatus2, b.DiscreteWord2.Pack())
	return f
}

type Outputs struct {
	Discrete DiscreteOutputs
	Bus      Bus
}

// Status is the consolidated picture of the flight control system.
type Status struct {
	Health     health.State
	PitchLaw   law.PitchLaw
	LateralLaw law.LateralLaw
	// Faulted lists ELAC1, ELAC2, SEC1, SEC2, SEC3, FAC1, FAC2 in that order.
	Faulted [7]bool
}

type Computer struct {
	unit       int
	supervisor *health.Supervisor
	status     Status
}

func New(unit int) *Computer {
	return &Computer{unit: unit, supervisor: health.NewSupervisor(Policy)}
}

func (c *Computer) Unit() int {
	return c.unit
}

func (c *Computer) Update(ctx frame.Context, in Inputs) Outputs {
	b := in.Bus
	c.supervisor.Update(ctx, health.Inputs{})
	healthy := c.supervisor.Healthy()

	var pitchEngaged, rollEngaged [2]bool
	for i, e := range b.Elac {
		pitchEngaged[i] = e.DiscreteStatus1.BitAtOr(catalog.ElacPitchEngaged, false)
		rollEngaged[i] = e.DiscreteStatus1.BitAtOr(catalog.ElacRollEngaged, false)
	}

	pitchLaw, lateralLaw := law.PitchNone, law.LateralNone
	for i, e := range b.Elac {
		if pitchEngaged[i] && pitchLaw == law.PitchNone {
			pitchLaw = law.DecodePitch(e.DiscreteStatus2, catalog.ElacActivePitchLaw)
		}
		if rollEngaged[i] && lateralLaw == law.LateralNone {
			lateralLaw = law.DecodeLateral(e.DiscreteStatus2, catalog.ElacActiveLateralLaw)
		}
	}
	for _, s := range b.Sec {
		if pitchLaw == law.PitchNone && s.DiscreteStatus1.BitAtOr(catalog.SecPitchEngaged, false) {
			pitchLaw = law.DecodePitch(s.DiscreteStatus2, catalog.SecActivePitchLaw)
		}
	}

	var faulted [7]bool
	for i, e := range b.Elac {
		faulted[i] = !e.DiscreteStatus1.IsNormalOperation()
	}
	for i, s := range b.Sec {
		faulted[2+i] = !s.DiscreteStatus1.IsNormalOperation()
	}
	for i, w := range b.FacStatus1 {
		faulted[5+i] = !w.IsNormalOperation()
	}

	c.status = Status{
		Health:     c.supervisor.State(),
		PitchLaw:   pitchLaw,
		LateralLaw: lateralLaw,
		Faulted:    faulted,
	}
	if !healthy {
		return Outputs{}
	}

	var out Outputs
	out.Bus.LeftElevatorPosition = elacVote(b.Elac, pitchEngaged, func(e ElacBus) arinc429.Number { return e.LeftElevatorPosition })
	out.Bus.RightElevatorPosition = elacVote(b.Elac, pitchEngaged, func(e ElacBus) arinc429.Number { return e.RightElevatorPosition })
	out.Bus.LeftAileronPosition = elacVote(b.Elac, rollEngaged, func(e ElacBus) arinc429.Number { return e.LeftAileronPosition })
	out.Bus.RightAileronPosition = elacVote(b.Elac, rollEngaged, func(e ElacBus) arinc429.Number { return e.RightAileronPosition })
	for n := range out.Bus.SpoilerPosition {
		out.Bus.SpoilerPosition[n] = vote.SelectFirstValid(
			b.Sec[0].SpoilerPosition[n], b.Sec[1].SpoilerPosition[n], b.Sec[2].SpoilerPosition[n],
		).Word()
	}

	// Priority state from the ELAC holding roll, else the first valid one.
	src := vote.ByEngagement(
		vote.Candidate[uint32]{Word: b.Elac[0].DiscreteStatus2.Word, Engaged: rollEngaged[0]},
		vote.Candidate[uint32]{Word: b.Elac[1].DiscreteStatus2.Word, Engaged: rollEngaged[1]},
	)
	var captOff, foOff, dual, captMoving, foMoving bool
	if src.Valid {
		prio := arinc429.Discrete{Word: arinc429.NewWord(src.Value, arinc429.NormalOperation)}
		captOff = prio.BitAt(catalog.ElacLeftStickDisabled)
		foOff = prio.BitAt(catalog.ElacRightStickDisabled)
		dual = prio.BitAt(catalog.ElacDualInput)
		e := b.Elac[src.Source]
		captMoving = deflected(e.CaptPitchCommand, e.CaptRollCommand)
		foMoving = deflected(e.FoPitchCommand, e.FoRollCommand)
	}
	out.Discrete = DiscreteOutputs{
		Healthy:           true,
		CaptPriorityGreen: foOff && foMoving,
		CaptPriorityRed:   captOff,
		FoPriorityGreen:   captOff && captMoving,
		FoPriorityRed:     foOff,
		DualInputWarning:  dual,
	}

	w1 := arinc429.NewDiscrete(arinc429.NormalOperation)
	law.EncodePitch(&w1, catalog.FcdcPitchLaw, pitchLaw)
	law.EncodeLateral(&w1, catalog.FcdcLateralLaw, lateralLaw)
	w1.SetBit(catalog.FcdcCaptGreen, out.Discrete.CaptPriorityGreen)
	w1.SetBit(catalog.FcdcCaptRed, out.Discrete.CaptPriorityRed)
	w1.SetBit(catalog.FcdcFoGreen, out.Discrete.FoPriorityGreen)
	w1.SetBit(catalog.FcdcFoRed, out.Discrete.FoPriorityRed)
	w1.SetBit(catalog.FcdcDualInput, dual)
	out.Bus.DiscreteWord1 = w1

	w2 := arinc429.NewDiscrete(arinc429.NormalOperation)
	for i, f := range faulted {
		w2.SetBit(catalog.FcdcElac1Fault+i, f)
	}
	out.Bus.DiscreteWord2 = w2
	return out
}

func elacVote(elacs [2]ElacBus, engaged [2]bool, field func(ElacBus) arinc429.Number) arinc429.Number {
	return vote.ByEngagement(
		vote.Candidate[float32]{Word: field(elacs[0]), Engaged: engaged[0]},
		vote.Candidate[float32]{Word: field(elacs[1]), Engaged: engaged[1]},
	).Word()
}

func deflected(pitch, roll arinc429.Number) bool {
	return mathx.Abs(pitch.ValueOr(0)) > vote.DualInputThreshold || mathx.Abs(roll.ValueOr(0)) > vote.DualInputThreshold
}

func (c *Computer) Status() Status {
	return c.status
}

func (c *Computer) Healthy() bool {
	return c.supervisor.Healthy()
}
