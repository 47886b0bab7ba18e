// Package elac implements the elevator/aileron computer. ELAC 2 is the primary
// pitch computer and ELAC 1 the primary roll computer; each backs up the other.
package elac

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
	"github.com/sweeney/fbw-supervisor/internal/priority"
	"github.com/sweeney/fbw-supervisor/internal/vote"
)

// Policy is the ELAC supervision policy.
var Policy = health.Policy{
	MinOutageForFault:     20 * time.Millisecond,
	ShortSelfTest:         500 * time.Millisecond,
	LongSelfTest:          8500 * time.Millisecond,
	LongSelfTestOutage:    3 * time.Second,
	HasEngageSwitch:       true,
	ClearMemoryOnSelfTest: true,
}

// DualEngagementDelay is how long the backup unit's elevator servos may stay
// active while the primary is engaged in pitch before the backup latches itself
// faulty.
const DualEngagementDelay = time.Second

type DiscreteInputs struct {
	EngageSwitch bool

	LeftElevatorServoFailed  bool
	RightElevatorServoFailed bool
	LeftAileronServoFailed   bool
	RightAileronServoFailed  bool
	// Servo mode feedback: the elevator servo is in active mode.
	LeftElevatorServoActive  bool
	RightElevatorServoActive bool

	GreenLowPressure  bool
	BlueLowPressure   bool
	YellowLowPressure bool

	CaptTakeover     bool
	FoTakeover       bool
	AutopilotEngaged bool
}

type AnalogInputs struct {
	CaptPitchStick float64
	CaptRollStick  float64
	FoPitchStick   float64
	FoRollStick    float64

	GreenPressure  float64
	BluePressure   float64
	YellowPressure float64

	// Surface feedback, degrees.
	LeftElevatorPosition  float64
	RightElevatorPosition float64
	LeftAileronPosition   float64
	RightAileronPosition  float64
}

type BusInputs struct {
	Adr [3]arinc429.Number // label 206, CAS kt
	Ir  [3]arinc429.Number // label 324, pitch attitude deg

	OppositeStatus1 arinc429.Discrete    // opposite ELAC label 270
	FacStatus1      [2]arinc429.Discrete // FAC label 270
}

type Inputs struct {
	Discrete DiscreteInputs
	Analog   AnalogInputs
	Bus      BusInputs
}

type DiscreteOutputs struct {
	Healthy bool

	LeftElevatorActive  bool
	RightElevatorActive bool
	LeftAileronActive   bool
	RightAileronActive  bool

	LeftStickDisabled  bool
	RightStickDisabled bool
}

// AnalogOutputs are surface commands in degrees.
type AnalogOutputs struct {
	LeftElevatorCommand  float64
	RightElevatorCommand float64
	LeftAileronCommand   float64
	RightAileronCommand  float64
}

type Bus struct {
	CaptPitchCommand      arinc429.Number   // label 174
	FoPitchCommand        arinc429.Number   // label 175
	CaptRollCommand       arinc429.Number   // label 176
	FoRollCommand         arinc429.Number   // label 177
	YawDamperOrder        arinc429.Number   // label 256
	LeftAileronPosition   arinc429.Number   // label 310
	RightAileronPosition  arinc429.Number   // label 314
	LeftElevatorPosition  arinc429.Number   // label 333
	RightElevatorPosition arinc429.Number   // label 334
	DiscreteStatus1       arinc429.Discrete // label 270
	DiscreteStatus2       arinc429.Discrete // label 271
}

// Frame packs the bus for transport.
func (b Bus) Frame() arinc429.Frame {
	var f arinc429.Frame
	f.Add(catalog.LabelCaptPitchCommand, b.CaptPitchCommand.Pack())
	f.Add(catalog.LabelFoPitchCommand, b.FoPitchCommand.Pack())
	f.Add(catalog.LabelCaptRollCommand, b.CaptRollCommand.Pack())
	f.Add(catalog.LabelFoRollCommand, b.FoRollCommand.Pack())
	f.Add(catalog.LabelYawDamperOrder, b.YawDamperOrder.Pack())
	f.Add(catalog.LabelLeftAileronPosition, b.LeftAileronPosition.Pack())
	f.Add(catalog.LabelRightAileronPosition, b.RightAileronPosition.Pack())
	f.Add(catalog.LabelLeftElevatorPosition, b.LeftElevatorPosition.Pack())
	f.Add(catalog.LabelRightElevatorPosition, b.RightElevatorPosition.Pack())
	f.Add(catalog.LabelDiscreteStatus1, b.DiscreteStatus1.Pack())
	f.Add(catalog.LabelDiscreteStatus2, b.DiscreteStatus2.Pack())
	return f
}

type Outputs struct {
	Discrete DiscreteOutputs
	Analog   AnalogOutputs
	Bus      Bus
}

// Status is the decision state of the last update, for display and tests.
type Status struct {
	Health     health.State
	Pitch      engage.Axis
	Roll       engage.Axis
	Cross      engage.CrossCommand
	PitchLaw   law.PitchLaw
	LateralLaw law.LateralLaw
	Priority   priority.State
	DualInput  bool
}

// Computer is one ELAC.
type Computer struct {
	unit  int
	model lawmodel.Model

	supervisor *health.Supervisor
	pitchRole  engage.Arbiter
	rollRole   engage.Arbiter
	priority   *priority.Arbiter
	dualInput  *vote.DualInputMonitor
	dualEngage *logic.ConfirmNode

	status Status
}

// New creates ELAC unit 1 or 2 driving surfaces through model.
func New(unit int, model lawmodel.Model) *Computer {
	c := &Computer{
		unit:       unit,
		model:      model,
		supervisor: health.NewSupervisor(Policy),
		priority:   priority.NewArbiter(),
		dualInput:  vote.NewDualInputMonitor(),
		dualEngage: logic.NewConfirmNode(true, DualEngagementDelay),
	}
	if unit == 2 {
		c.pitchRole = engage.Arbiter{Role: engage.Primary}
		c.rollRole = engage.Arbiter{Role: engage.Secondary}
	} else {
		c.pitchRole = engage.Arbiter{Role: engage.Secondary}
		c.rollRole = engage.Arbiter{Role: engage.Primary}
	}
	return c
}

func (c *Computer) Unit() int {
	return c.unit
}

// Update runs one frame.
func (c *Computer) Update(ctx frame.Context, in Inputs) Outputs {
	d, a, b := in.Discrete, in.Analog, in.Bus

	green := engage.HydraulicAvailable(a.GreenPressure, d.GreenLowPressure)
	blue := engage.HydraulicAvailable(a.BluePressure, d.BlueLowPressure)
	yellow := engage.HydraulicAvailable(a.YellowPressure, d.YellowLowPressure)

	opposite := b.OppositeStatus1
	oppositeValid := opposite.IsNormalOperation()

	// Backup unit's servos stuck active while the primary drives pitch.
	both := oppositeValid && opposite.BitAt(catalog.ElacPitchEngaged) &&
		(d.LeftElevatorServoActive || d.RightElevatorServoActive)
	latch := c.pitchRole.Role != engage.Primary && c.dualEngage.Update(both, ctx.Delta)

	memoryClear := c.supervisor.Update(ctx, health.Inputs{
		HydraulicPressurized: green || blue || yellow,
		EngageSwitch:         d.EngageSwitch,
		LatchFault:           latch,
	})
	if memoryClear {
		c.priority.Reset()
		c.dualInput.Reset()
		c.dualEngage.Reset()
	}
	healthy := c.supervisor.Healthy()

	var elevators, ailerons []engage.Channel
	if c.unit == 2 {
		elevators = []engage.Channel{
			{ServoFailed: d.LeftElevatorServoFailed, HydraulicAvailable: green},
			{ServoFailed: d.RightElevatorServoFailed, HydraulicAvailable: yellow},
		}
		ailerons = []engage.Channel{
			{ServoFailed: d.LeftAileronServoFailed, HydraulicAvailable: green},
			{ServoFailed: d.RightAileronServoFailed, HydraulicAvailable: blue},
		}
	} else {
		elevators = []engage.Channel{
			{ServoFailed: d.LeftElevatorServoFailed, HydraulicAvailable: blue},
			{ServoFailed: d.RightElevatorServoFailed, HydraulicAvailable: blue},
		}
		ailerons = []engage.Channel{
			{ServoFailed: d.LeftAileronServoFailed, HydraulicAvailable: blue},
			{ServoFailed: d.RightAileronServoFailed, HydraulicAvailable: green},
		}
	}

	pitchPeer := engage.Peer{
		Valid:   oppositeValid,
		Engaged: opposite.BitAt(catalog.ElacPitchEngaged),
		SideAvailable: [2]bool{
			opposite.BitAt(catalog.ElacLeftElevatorAvail),
			opposite.BitAt(catalog.ElacRightElevatorAvail),
		},
	}
	rollPeer := engage.Peer{
		Valid:   oppositeValid,
		Engaged: opposite.BitAt(catalog.ElacRollEngaged),
		SideAvailable: [2]bool{
			opposite.BitAt(catalog.ElacLeftAileronAvail),
			opposite.BitAt(catalog.ElacRightAileronAvail),
		},
	}
	pitch := c.pitchRole.Arbitrate(healthy, elevators, pitchPeer)
	roll := c.rollRole.Arbitrate(healthy, ailerons, rollPeer)
	cross := engage.ComputeCrossCommand(healthy, roll, rollPeer)

	validADR, validIR := vote.CountValid(b.Adr[:]...), vote.CountValid(b.Ir[:]...)
	pitchCap := law.ElacPitchCapability(validADR, validIR)
	lateralCap := law.LateralCapability(validIR,
		!b.FacStatus1[0].BitAtOr(catalog.FacYawDamperAvail, false),
		!b.FacStatus1[1].BitAtOr(catalog.FacYawDamperAvail, false))

	// Roll priority holder's lateral capability, and pitch holder's pitch capability.
	rollHolder := law.LateralNone
	switch {
	case roll.IsEngaged:
		rollHolder = lateralCap
	case rollPeer.EngagedOr():
		rollHolder = law.LateralDirect
		if opposite.BitAt(catalog.ElacLateralNormalCapable) {
			rollHolder = law.LateralNormal
		}
	}
	pitchHolder := law.PitchNone
	switch {
	case pitch.IsEngaged:
		pitchHolder = pitchCap
	case pitchPeer.EngagedOr():
		pitchHolder = law.PitchAlternate1
		if opposite.BitAt(catalog.ElacPitchNormalCapable) {
			pitchHolder = law.PitchNormal
		}
	}
	pitchLaw := law.ActivePitch(pitch.IsEngaged, pitchCap, rollHolder)
	lateralLaw := law.ActiveLateral(roll.IsEngaged, lateralCap, pitchHolder)

	prio := c.priority.Update(ctx.Delta, d.CaptTakeover, d.FoTakeover, d.AutopilotEngaged)
	dual := c.dualInput.Update(deflection(a.CaptPitchStick, a.CaptRollStick), deflection(a.FoPitchStick, a.FoRollStick),
		prio.LeftDisabled, prio.RightDisabled, ctx.Delta)

	c.status = Status{
		Health:     c.supervisor.State(),
		Pitch:      pitch,
		Roll:       roll,
		Cross:      cross,
		PitchLaw:   pitchLaw,
		LateralLaw: lateralLaw,
		Priority:   prio,
		DualInput:  dual,
	}

	if !healthy {
		return Outputs{}
	}

	orders := lawmodel.Orders{
		Pitch: vote.SidestickOrder(a.CaptPitchStick, a.FoPitchStick, prio.LeftDisabled, prio.RightDisabled),
		Roll:  vote.SidestickOrder(a.CaptRollStick, a.FoRollStick, prio.LeftDisabled, prio.RightDisabled),
	}
	cmd := c.model.Step(pitchLaw, lateralLaw, orders)

	var out Outputs
	out.Discrete = DiscreteOutputs{
		Healthy:             true,
		LeftElevatorActive:  pitch.ChannelEngaged(0),
		RightElevatorActive: pitch.ChannelEngaged(1),
		LeftAileronActive:   roll.ChannelEngaged(0) || cross.Left,
		RightAileronActive:  roll.ChannelEngaged(1) || cross.Right,
		LeftStickDisabled:   prio.LeftDisabled,
		RightStickDisabled:  prio.RightDisabled,
	}
	if out.Discrete.LeftElevatorActive {
		out.Analog.LeftElevatorCommand = cmd.Elevator
	}
	if out.Discrete.RightElevatorActive {
		out.Analog.RightElevatorCommand = cmd.Elevator
	}
	if cross.Active() {
		// Cross-commanded side follows the stick in direct law.
		cmd = c.model.Step(law.PitchNone, law.LateralDirect, orders)
	}
	if out.Discrete.LeftAileronActive {
		out.Analog.LeftAileronCommand = cmd.LeftAileron
	}
	if out.Discrete.RightAileronActive {
		out.Analog.RightAileronCommand = cmd.RightAileron
	}

	no := arinc429.NormalOperation
	bus := &out.Bus
	bus.CaptPitchCommand.SetValue(float32(a.CaptPitchStick), no)
	bus.FoPitchCommand.SetValue(float32(a.FoPitchStick), no)
	bus.CaptRollCommand.SetValue(float32(a.CaptRollStick), no)
	bus.FoRollCommand.SetValue(float32(a.FoRollStick), no)
	if roll.IsEngaged {
		bus.YawDamperOrder.SetValue(float32(orders.Roll*yawDamperGain), no)
	} else {
		bus.YawDamperOrder.SetValue(0, arinc429.NoComputedData)
	}
	bus.LeftAileronPosition.SetValue(float32(a.LeftAileronPosition), no)
	bus.RightAileronPosition.SetValue(float32(a.RightAileronPosition), no)
	bus.LeftElevatorPosition.SetValue(float32(a.LeftElevatorPosition), no)
	bus.RightElevatorPosition.SetValue(float32(a.RightElevatorPosition), no)

	s1 := arinc429.NewDiscrete(no)
	s1.SetBit(catalog.ElacPitchNormalCapable, pitchCap == law.PitchNormal)
	s1.SetBit(catalog.ElacLateralNormalCapable, lateralCap == law.LateralNormal)
	s1.SetBit(catalog.ElacLeftElevatorAvail, pitch.ChannelAvailable[0])
	s1.SetBit(catalog.ElacRightElevatorAvail, pitch.ChannelAvailable[1])
	s1.SetBit(catalog.ElacLeftAileronAvail, roll.ChannelAvailable[0])
	s1.SetBit(catalog.ElacRightAileronAvail, roll.ChannelAvailable[1])
	s1.SetBit(catalog.ElacPitchEngaged, pitch.IsEngaged)
	s1.SetBit(catalog.ElacRollEngaged, roll.IsEngaged)
	s1.SetBit(catalog.ElacLeftAileronCross, cross.Left)
	s1.SetBit(catalog.ElacRightAileronCross, cross.Right)
	bus.DiscreteStatus1 = s1

	s2 := arinc429.NewDiscrete(no)
	law.EncodePitch(&s2, catalog.ElacActivePitchLaw, pitchLaw)
	law.EncodeLateral(&s2, catalog.ElacActiveLateralLaw, lateralLaw)
	s2.SetBit(catalog.ElacLeftStickDisabled, prio.LeftDisabled)
	s2.SetBit(catalog.ElacRightStickDisabled, prio.RightDisabled)
	s2.SetBit(catalog.ElacLeftStickLocked, prio.LeftLocked)
	s2.SetBit(catalog.ElacRightStickLocked, prio.RightLocked)
	s2.SetBit(catalog.ElacDualInput, dual)
	bus.DiscreteStatus2 = s2

	return out
}

// yawDamperGain turns a normalized roll order into a turn-coordination yaw order in degrees.
const yawDamperGain = 5.0

// deflection is the larger of the two axes of one sidestick.
func deflection(pitch, roll float64) float64 {
	return max(mathx.Abs(pitch), mathx.Abs(roll))
}

// Status returns the decisions of the last update.
func (c *Computer) Status() Status {
	return c.status
}

func (c *Computer) Healthy() bool {
	return c.supervisor.Healthy()
}
