// Package sec implements the spoiler/elevator computer. Each SEC drives its own
// spoiler pairs; SEC 1 and 2 also take over pitch when no ELAC is engaged in it.
package sec

import (
	"time"

	"github.com/sweeney/fbw-supervisor/internal/arinc429"
	"github.com/sweeney/fbw-supervisor/internal/catalog"
	"github.com/sweeney/fbw-supervisor/internal/engage"
	"github.com/sweeney/fbw-supervisor/internal/frame"
	"github.com/sweeney/fbw-supervisor/internal/health"
	"github.com/sweeney/fbw-supervisor/internal/law"
	"github.com/sweeney/fbw-supervisor/internal/lawmodel"
	"github.com/sweeney/fbw-supervisor/internal/logic"
	"github.com/sweeney/fbw-supervisor/internal/mathx"
	"github.com/sweeney/fbw-supervisor/internal/vote"
)

// Policy is the SEC supervision policy. Power restorations only retest on the
// ground with the engines stopped.
var Policy = health.Policy{
	MinOutageForFault:     20 * time.Millisecond,
	ShortSelfTest:         500 * time.Millisecond,
	LongSelfTest:          8 * time.Second,
	LongSelfTestOutage:    3 * time.Second,
	HasEngageSwitch:       true,
	ClearMemoryOnSelfTest: true,
	GroundGated:           true,
	MinGroundOutage:       2 * time.Second,
}

// SpoilerPairs is the number of spoiler pairs on the aircraft.
const SpoilerPairs = 5

// Spoiler travel, degrees.
const (
	GroundSpoilerDeflection = 50.0
	SpeedBrakeDeflection    = 40.0
	RollSpoilerDeflection   = 35.0
	// GroundSpoilerHeight is the radio height below which the aircraft counts as on the runway.
	GroundSpoilerHeight = 6.0
)

type Circuit int

const (
	Green Circuit = iota
	Blue
	Yellow
)

// pairCircuit is the hydraulic circuit powering each spoiler pair.
var pairCircuit = [SpoilerPairs]Circuit{Green, Yellow, Blue, Yellow, Green}

// pairsOf lists the spoiler pairs driven by each SEC.
var pairsOf = map[int][]int{
	1: {3, 4},
	2: {5},
	3: {1, 2},
}

type DiscreteInputs struct {
	EngageSwitch bool

	LeftElevatorServoFailed  bool
	RightElevatorServoFailed bool
	// SpoilerServoFailed is indexed by pair number minus one.
	SpoilerServoFailed [SpoilerPairs]bool

	GreenLowPressure  bool
	BlueLowPressure   bool
	YellowLowPressure bool

	OnGround            bool
	EnginesStopped      bool
	GearDown            bool
	EmergencyElectrical bool
	GroundSpoilersArmed bool
}

type AnalogInputs struct {
	CaptPitchStick float64
	CaptRollStick  float64
	FoPitchStick   float64
	FoRollStick    float64
	// SpeedBrakeLever is 0 retracted to 1 full.
	SpeedBrakeLever float64

	GreenPressure  float64
	BluePressure   float64
	YellowPressure float64
}

type BusInputs struct {
	Adr [3]arinc429.Number // label 206, CAS kt
	Ir  [3]arinc429.Number // label 324
	Ra  [2]arinc429.Number // label 164, ft

	ElacStatus1 [2]arinc429.Discrete // label 270
	ElacStatus2 [2]arinc429.Discrete // label 271
	// OppositeStatus1 is SEC 1's status word as seen by SEC 2 (and vice versa).
	OppositeStatus1 arinc429.Discrete // label 270
}

type Inputs struct {
	Discrete DiscreteInputs
	Analog   AnalogInputs
	Bus      BusInputs
}

type DiscreteOutputs struct {
	Healthy             bool
	LeftElevatorActive  bool
	RightElevatorActive bool
	SpoilerActive       [SpoilerPairs]bool
	GroundSpoilersOut   bool
}

type AnalogOutputs struct {
	LeftElevatorCommand  float64
	RightElevatorCommand float64
	// Commanded deflection per pair, degrees. Index is pair number minus one.
	LeftSpoilerCommand  [SpoilerPairs]float64
	RightSpoilerCommand [SpoilerPairs]float64
}

type Bus struct {
	RadioHeight arinc429.Number // label 164
	// SpoilerPosition is reported for the pairs this SEC drives, label 361+n-1.
	SpoilerPosition [SpoilerPairs]arinc429.Number
	DiscreteStatus1 arinc429.Discrete // label 270
	DiscreteStatus2 arinc429.Discrete // label 271
}

func (b Bus) Frame() arinc429.Frame {
	var f arinc429.Frame
	f.Add(catalog.LabelRadioHeight, b.RadioHeight.Pack())
	for i, w := range b.SpoilerPosition {
		f.Add(catalog.LabelSpoilerPosition+arinc429.Label(i), w.Pack())
	}
	f.Add(catalog.LabelDiscreteStatus1, b.DiscreteStatus1.Pack())
	f.Add(catalog.LabelDiscreteStatus2, b.DiscreteStatus2.Pack())
	return f
}

type Outputs struct {
	Discrete DiscreteOutputs
	Analog   AnalogOutputs
	Bus      Bus
}

type Status struct {
	Health            health.State
	Pitch             engage.Axis
	PitchLaw          law.PitchLaw
	Spoilers          [SpoilerPairs]bool
	GroundSpoilersOut bool
	EmergencyLatched  bool
	RadioHeight       vote.Consolidated[float32]
}

// Computer is one SEC.
type Computer struct {
	unit  int
	model lawmodel.Model

	supervisor *health.Supervisor
	pitchRole  engage.Arbiter
	radio      *vote.DualSensor
	emergency  *logic.SRFlipFlop
	speedOK    *logic.HysteresisNode

	status Status
}

// New creates SEC unit 1, 2 or 3.
func New(unit int, model lawmodel.Model) *Computer {
	c := &Computer{
		unit:       unit,
		model:      model,
		supervisor: health.NewSupervisor(Policy),
		radio:      vote.NewDualSensor(vote.RadioAltimeterConfig()),
		emergency:  logic.NewSRFlipFlop(false),
		speedOK:    logic.NewHysteresisNode(60, 72),
		pitchRole:  engage.Arbiter{Role: engage.Secondary},
	}
	if unit == 3 {
		c.pitchRole.Role = engage.Excluded
	}
	return c
}

func (c *Computer) Unit() int {
	return c.unit
}

func (c *Computer) Update(ctx frame.Context, in Inputs) Outputs {
	d, a, b := in.Discrete, in.Analog, in.Bus

	avail := [3]bool{
		engage.HydraulicAvailable(a.GreenPressure, d.GreenLowPressure),
		engage.HydraulicAvailable(a.BluePressure, d.BlueLowPressure),
		engage.HydraulicAvailable(a.YellowPressure, d.YellowLowPressure),
	}

	memoryClear := c.supervisor.Update(ctx, health.Inputs{
		HydraulicPressurized: avail[Green] || avail[Blue] || avail[Yellow],
		EngageSwitch:         d.EngageSwitch,
		OnGround:             d.OnGround,
		EnginesStopped:       d.EnginesStopped,
	})
	if memoryClear {
		c.radio.ClearMemory()
	}
	healthy := c.supervisor.Healthy()

	emerLatched := c.emergency.Update(d.EmergencyElectrical && d.GearDown, !d.EmergencyElectrical)

	// Pitch backup: ELACs first, then SEC 1 ahead of SEC 2.
	elacPitch := false
	for _, w := range b.ElacStatus1 {
		elacPitch = elacPitch || w.BitAtOr(catalog.ElacPitchEngaged, false)
	}
	peerEngaged := elacPitch
	if c.unit == 2 {
		peerEngaged = peerEngaged || b.OppositeStatus1.BitAtOr(catalog.SecPitchEngaged, false)
	}
	var elevators []engage.Channel
	if c.unit == 1 {
		elevators = []engage.Channel{
			{ServoFailed: d.LeftElevatorServoFailed, HydraulicAvailable: avail[Blue]},
			{ServoFailed: d.RightElevatorServoFailed, HydraulicAvailable: avail[Yellow]},
		}
	} else {
		elevators = []engage.Channel{
			{ServoFailed: d.LeftElevatorServoFailed, HydraulicAvailable: avail[Green]},
			{ServoFailed: d.RightElevatorServoFailed, HydraulicAvailable: avail[Yellow]},
		}
	}
	pitch := c.pitchRole.Arbitrate(healthy, elevators, engage.Peer{Valid: true, Engaged: peerEngaged})

	validADR, validIR := vote.CountValid(b.Adr[:]...), vote.CountValid(b.Ir[:]...)
	pitchCap := law.SecPitchCapability(validADR, validIR, emerLatched)

	// Roll is held by an ELAC when one is engaged in it, else by the spoilers alone.
	rollHolder := law.LateralDirect
	for _, w := range b.ElacStatus1 {
		if w.BitAtOr(catalog.ElacRollEngaged, false) && w.BitAt(catalog.ElacLateralNormalCapable) {
			rollHolder = law.LateralNormal
		}
	}
	pitchLaw := law.ActivePitch(pitch.IsEngaged, pitchCap, rollHolder)

	var spoilers [SpoilerPairs]bool
	for _, n := range pairsOf[c.unit] {
		ch := []engage.Channel{{ServoFailed: d.SpoilerServoFailed[n-1], HydraulicAvailable: avail[pairCircuit[n-1]]}}
		spoilers[n-1] = engage.Arbiter{Role: engage.Primary}.Arbitrate(healthy, ch, engage.Peer{}).IsEngaged
	}

	cas := vote.SelectFirstValid(b.Adr[:]...)
	ra := c.radio.Update(b.Ra[0], b.Ra[1], cas.Word(), ctx.Delta)
	fast := cas.Valid && c.speedOK.Update(float64(cas.Value))
	groundOut := healthy && d.GroundSpoilersArmed && fast && ra.Valid && ra.Value < GroundSpoilerHeight

	c.status = Status{
		Health:            c.supervisor.State(),
		Pitch:             pitch,
		PitchLaw:          pitchLaw,
		Spoilers:          spoilers,
		GroundSpoilersOut: groundOut,
		EmergencyLatched:  emerLatched,
		RadioHeight:       ra,
	}

	if !healthy {
		return Outputs{}
	}

	// Stick priority comes from the ELAC engaged in roll, else ELAC 1, else ELAC 2.
	prio := vote.ByEngagement(
		vote.Candidate[uint32]{Word: b.ElacStatus2[0].Word, Engaged: b.ElacStatus1[0].BitAtOr(catalog.ElacRollEngaged, false)},
		vote.Candidate[uint32]{Word: b.ElacStatus2[1].Word, Engaged: b.ElacStatus1[1].BitAtOr(catalog.ElacRollEngaged, false)},
	)
	prioWord := arinc429.Discrete{Word: arinc429.NewWord(prio.Value, arinc429.NormalOperation)}
	leftOff := prio.Valid && prioWord.BitAt(catalog.ElacLeftStickDisabled)
	rightOff := prio.Valid && prioWord.BitAt(catalog.ElacRightStickDisabled)
	orders := lawmodel.Orders{
		Pitch: vote.SidestickOrder(a.CaptPitchStick, a.FoPitchStick, leftOff, rightOff),
		Roll:  vote.SidestickOrder(a.CaptRollStick, a.FoRollStick, leftOff, rightOff),
	}

	var out Outputs
	out.Discrete.Healthy = true
	out.Discrete.LeftElevatorActive = pitch.ChannelEngaged(0)
	out.Discrete.RightElevatorActive = pitch.ChannelEngaged(1)
	out.Discrete.SpoilerActive = spoilers
	out.Discrete.GroundSpoilersOut = groundOut
	if pitch.IsEngaged {
		cmd := c.model.Step(pitchLaw, law.LateralNone, orders)
		if out.Discrete.LeftElevatorActive {
			out.Analog.LeftElevatorCommand = cmd.Elevator
		}
		if out.Discrete.RightElevatorActive {
			out.Analog.RightElevatorCommand = cmd.Elevator
		}
	}

	speedBrake := mathx.Clamp(a.SpeedBrakeLever, 0, 1) * SpeedBrakeDeflection
	for i, on := range spoilers {
		if !on {
			continue
		}
		left, right := speedBrake, speedBrake
		switch {
		case groundOut:
			left, right = GroundSpoilerDeflection, GroundSpoilerDeflection
		case orders.Roll > 0:
			right = mathx.Clamp(right+orders.Roll*RollSpoilerDeflection, 0, GroundSpoilerDeflection)
		case orders.Roll < 0:
			left = mathx.Clamp(left-orders.Roll*RollSpoilerDeflection, 0, GroundSpoilerDeflection)
		}
		out.Analog.LeftSpoilerCommand[i] = left
		out.Analog.RightSpoilerCommand[i] = right
		out.Bus.SpoilerPosition[i].SetValue(float32((left+right)/2), arinc429.NormalOperation)
	}

	ssm := arinc429.NormalOperation
	if !ra.Valid {
		ssm = arinc429.FailureWarning
	}
	out.Bus.RadioHeight.SetValue(ra.Value, ssm)

	s1 := arinc429.NewDiscrete(arinc429.NormalOperation)
	s1.SetBit(catalog.SecPitchEngaged, pitch.IsEngaged)
	s1.SetBit(catalog.SecGroundSpoilersOut, groundOut)
	s1.SetBit(catalog.SecEmergencyLatched, emerLatched)
	for i, on := range spoilers {
		s1.SetBit(catalog.SecSpoilerEngaged+i, on)
	}
	out.Bus.DiscreteStatus1 = s1

	s2 := arinc429.NewDiscrete(arinc429.NormalOperation)
	law.EncodePitch(&s2, catalog.SecActivePitchLaw, pitchLaw)
	out.Bus.DiscreteStatus2 = s2
	return out
}

func (c *Computer) Status() Status {
	return c.status
}

func (c *Computer) Healthy() bool {
	return c.supervisor.Healthy()
}
