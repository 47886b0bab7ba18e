// Package fac implements the flight augmentation computer: yaw damper, rudder
// trim and rudder travel limiter. FAC 1 has priority over FAC 2 in every function.
package fac

import (
	"time"

	"github.com/sweeney/fbw-supervisor/internal/arinc429"
	"github.com/sweeney/fbw-supervisor/internal/catalog"
	"github.com/sweeney/fbw-supervisor/internal/engage"
	"github.com/sweeney/fbw-supervisor/internal/frame"
	"github.com/sweeney/fbw-supervisor/internal/health"
	"github.com/sweeney/fbw-supervisor/internal/mathx"
	"github.com/sweeney/fbw-supervisor/internal/vote"
)

var Policy = health.Policy{
	MinOutageForFault:  10 * time.Millisecond,
	ShortSelfTest:      300 * time.Millisecond,
	LongSelfTest:       5 * time.Second,
	LongSelfTestOutage: 3 * time.Second,
	HasEngageSwitch:    true,
}

// Rudder travel limits, degrees, and the airspeeds (kt) they apply at.
const (
	MaxRudderTravel = 25.0
	MinRudderTravel = 3.4
	LowSpeedLimit   = 160.0
	HighSpeedLimit  = 380.0
	// MaxYawDamperAuthority bounds the yaw damper order, degrees.
	MaxYawDamperAuthority = 10.0
)

type DiscreteInputs struct {
	EngageSwitch bool

	YawDamperServoFailed bool
	RudderTrimFailed     bool
	RudderLimiterFailed  bool

	GreenLowPressure  bool
	YellowLowPressure bool
}

type AnalogInputs struct {
	GreenPressure  float64
	YellowPressure float64
	// RudderTrimSwitch is -1 (nose left), 0 or 1 (nose right).
	RudderTrimSwitch float64
}

type BusInputs struct {
	Adr [3]arinc429.Number // label 206, CAS kt

	ElacStatus1     [2]arinc429.Discrete // label 270
	ElacYawDamper   [2]arinc429.Number   // label 256
	OppositeStatus1 arinc429.Discrete    // opposite FAC label 270
}

type Inputs struct {
	Discrete DiscreteInputs
	Analog   AnalogInputs
	Bus      BusInputs
}

type DiscreteOutputs struct {
	Healthy             bool
	YawDamperActive     bool
	RudderTrimActive    bool
	RudderLimiterActive bool
}

type AnalogOutputs struct {
	YawDamperCommand  float64
	RudderTrimCommand float64
	RudderTravelLimit float64
}

type Bus struct {
	RudderTravelLimit arinc429.Number   // label 313
	RudderTrimOrder   arinc429.Number   // label 265
	YawDamperOrder    arinc429.Number   // label 256
	DiscreteStatus1   arinc429.Discrete // label 270
}

func (b Bus) Frame() arinc429.Frame {
	var f arinc429.Frame
	f.Add(catalog.LabelRudderTravelLimit, b.RudderTravelLimit.Pack())
	f.Add(catalog.LabelRudderTrimOrder, b.RudderTrimOrder.Pack())
	f.Add(catalog.LabelYawDamperOrder, b.YawDamperOrder.Pack())
	f.Add(catalog.LabelDiscreteStatus1, b.DiscreteStatus1.Pack())
	return f
}

type Outputs struct {
	Discrete DiscreteOutputs
	Analog   AnalogOutputs
	Bus      Bus
}

type Status struct {
	Health        health.State
	YawDamper     engage.Axis
	RudderTrim    engage.Axis
	RudderLimiter engage.Axis
	// OrderSource is the ELAC index the yaw damper order came from, vote.NoSource if none.
	OrderSource int
}

// Computer is one FAC.
type Computer struct {
	unit       int
	supervisor *health.Supervisor
	role       engage.Arbiter
	trim       float64
	status     Status
}

// TrimRate is the rudder trim motor speed in degrees per second.
const TrimRate = 1.0

func New(unit int) *Computer {
	c := &Computer{
		unit:       unit,
		supervisor: health.NewSupervisor(Policy),
		role:       engage.Arbiter{Role: engage.Primary},
	}
	if unit == 2 {
		c.role.Role = engage.Secondary
	}
	return c
}

func (c *Computer) Unit() int {
	return c.unit
}

func (c *Computer) Update(ctx frame.Context, in Inputs) Outputs {
	d, a, b := in.Discrete, in.Analog, in.Bus

	green := engage.HydraulicAvailable(a.GreenPressure, d.GreenLowPressure)
	yellow := engage.HydraulicAvailable(a.YellowPressure, d.YellowLowPressure)
	c.supervisor.Update(ctx, health.Inputs{
		HydraulicPressurized: green || yellow,
		EngageSwitch:         d.EngageSwitch,
	})
	healthy := c.supervisor.Healthy()

	circuit := green
	if c.unit == 2 {
		circuit = yellow
	}
	opp := b.OppositeStatus1
	peer := func(bit int) engage.Peer {
		return engage.Peer{Valid: opp.IsNormalOperation(), Engaged: opp.BitAt(bit)}
	}
	yd := c.role.Arbitrate(healthy, []engage.Channel{{ServoFailed: d.YawDamperServoFailed, HydraulicAvailable: circuit}}, peer(catalog.FacYawDamperEngaged))
	trim := c.role.Arbitrate(healthy, []engage.Channel{{ServoFailed: d.RudderTrimFailed, HydraulicAvailable: true}}, peer(catalog.FacRudderTrimEngaged))
	limiter := c.role.Arbitrate(healthy, []engage.Channel{{ServoFailed: d.RudderLimiterFailed, HydraulicAvailable: true}}, peer(catalog.FacRudderLimitEngaged))

	order := vote.ByEngagement(
		vote.Candidate[float32]{Word: b.ElacYawDamper[0], Engaged: b.ElacStatus1[0].BitAtOr(catalog.ElacRollEngaged, false)},
		vote.Candidate[float32]{Word: b.ElacYawDamper[1], Engaged: b.ElacStatus1[1].BitAtOr(catalog.ElacRollEngaged, false)},
	)

	c.status = Status{
		Health:        c.supervisor.State(),
		YawDamper:     yd,
		RudderTrim:    trim,
		RudderLimiter: limiter,
		OrderSource:   order.Source,
	}

	if !healthy {
		return Outputs{}
	}

	var out Outputs
	out.Discrete = DiscreteOutputs{
		Healthy:             true,
		YawDamperActive:     yd.IsEngaged,
		RudderTrimActive:    trim.IsEngaged,
		RudderLimiterActive: limiter.IsEngaged,
	}

	if yd.IsEngaged && order.Valid {
		out.Analog.YawDamperCommand = mathx.Clamp(float64(order.Value), -MaxYawDamperAuthority, MaxYawDamperAuthority)
	}
	out.Bus.YawDamperOrder = order.Word()

	if trim.IsEngaged {
		c.trim += mathx.Clamp(a.RudderTrimSwitch, -1, 1) * TrimRate * ctx.Delta.Seconds()
		c.trim = mathx.Clamp(c.trim, -MaxRudderTravel, MaxRudderTravel)
		out.Analog.RudderTrimCommand = c.trim
	}
	out.Bus.RudderTrimOrder.SetValue(float32(c.trim), arinc429.NormalOperation)

	cas := vote.SelectFirstValid(b.Adr[:]...)
	limit := MaxRudderTravel
	ssm := arinc429.NormalOperation
	if cas.Valid {
		v := mathx.Clamp(float64(cas.Value), LowSpeedLimit, HighSpeedLimit)
		limit = mathx.MapRange(v, LowSpeedLimit, HighSpeedLimit, MaxRudderTravel, MinRudderTravel)
	} else {
		ssm = arinc429.NoComputedData
	}
	if limiter.IsEngaged {
		out.Analog.RudderTravelLimit = limit
	}
	out.Bus.RudderTravelLimit.SetValue(float32(limit), ssm)

	s1 := arinc429.NewDiscrete(arinc429.NormalOperation)
	s1.SetBit(catalog.FacYawDamperAvail, yd.CanEngage)
	s1.SetBit(catalog.FacYawDamperEngaged, yd.IsEngaged)
	s1.SetBit(catalog.FacRudderTrimEngaged, trim.IsEngaged)
	s1.SetBit(catalog.FacRudderLimitEngaged, limiter.IsEngaged)
	out.Bus.DiscreteStatus1 = s1
	return out
}

func (c *Computer) Status() Status {
	return c.status
}

func (c *Computer) Healthy() bool {
	return c.supervisor.Healthy()
}
