// Package fcs wires the flight control computers into one system and steps them
// frame by frame. Every frame each computer sees the buses its peers published in
// the previous frame; no computer ever reads another computer directly.
package fcs

import (
	"time"

	"github.com/sweeney/fbw-supervisor/internal/arinc429"
	"github.com/sweeney/fbw-supervisor/internal/elac"
	"github.com/sweeney/fbw-supervisor/internal/fac"
	"github.com/sweeney/fbw-supervisor/internal/fcdc"
	"github.com/sweeney/fbw-supervisor/internal/frame"
	"github.com/sweeney/fbw-supervisor/internal/lawmodel"
	"github.com/sweeney/fbw-supervisor/internal/sec"
)

// System owns every computer and the bus snapshots exchanged between them.
type System struct {
	elac [2]*elac.Computer
	sec  [3]*sec.Computer
	fac  [2]*fac.Computer
	fcdc [2]*fcdc.Computer

	elacOut [2]elac.Outputs
	secOut  [3]sec.Outputs
	facOut  [2]fac.Outputs
	fcdcOut [2]fcdc.Outputs

	now       time.Duration
	summaries [NumComputers]Summary
	started   bool
}

// New builds the full complement of computers. model drives the surfaces of
// every ELAC and SEC.
func New(model lawmodel.Model) *System {
	s := &System{}
	for i := range s.elac {
		s.elac[i] = elac.New(i+1, model)
	}
	for i := range s.sec {
		s.sec[i] = sec.New(i+1, model)
	}
	for i := range s.fac {
		s.fac[i] = fac.New(i + 1)
	}
	for i := range s.fcdc {
		s.fcdc[i] = fcdc.New(i + 1)
	}
	return s
}

// Step advances every computer by dt and returns the transitions observed in this
// frame. The first step reports every computer's initial state.
func (s *System) Step(dt time.Duration, env Environment) []Event {
	s.now += dt

	// Snapshots of the previous frame, read-only for the whole step.
	elacBus := [2]elac.Bus{s.elacOut[0].Bus, s.elacOut[1].Bus}
	secBus := [3]sec.Bus{s.secOut[0].Bus, s.secOut[1].Bus, s.secOut[2].Bus}
	facBus := [2]fac.Bus{s.facOut[0].Bus, s.facOut[1].Bus}
	surf := s.surfaces()

	adr, ir, ra := sensorWords(env)

	for i, c := range s.elac {
		id := Elac1 + ID(i)
		s.elacOut[i] = c.Update(s.context(dt, id, env), s.elacInputs(i, id, env, surf, adr, ir, elacBus, facBus))
	}
	for i, c := range s.sec {
		id := Sec1 + ID(i)
		s.secOut[i] = c.Update(s.context(dt, id, env), secInputs(i, id, env, adr, ir, ra, elacBus, secBus))
	}
	for i, c := range s.fac {
		id := Fac1 + ID(i)
		s.facOut[i] = c.Update(s.context(dt, id, env), facInputs(i, id, env, adr, elacBus, facBus))
	}
	for i, c := range s.fcdc {
		s.fcdcOut[i] = c.Update(s.context(dt, Fcdc1+ID(i), env), fcdcInputs(elacBus, secBus, facBus))
	}

	return s.collectEvents(env)
}

func (s *System) context(dt time.Duration, id ID, env Environment) frame.Context {
	return frame.Context{
		Delta:          dt,
		SimulationTime: s.now,
		FaultInjected:  env.Faulted[id],
		Powered:        !env.Unpowered[id],
	}
}

// Now returns the simulated time of the last step.
func (s *System) Now() time.Duration {
	return s.now
}

// surfaceState is the actuator position of every surface, which follows the
// command of whichever computer drives it.
type surfaceState struct {
	leftElevator, rightElevator float64
	leftAileron, rightAileron   float64
}

func (s *System) surfaces() surfaceState {
	var st surfaceState
	for _, o := range s.elacOut {
		st.leftElevator += o.Analog.LeftElevatorCommand
		st.rightElevator += o.Analog.RightElevatorCommand
		st.leftAileron += o.Analog.LeftAileronCommand
		st.rightAileron += o.Analog.RightAileronCommand
	}
	for _, o := range s.secOut {
		st.leftElevator += o.Analog.LeftElevatorCommand
		st.rightElevator += o.Analog.RightElevatorCommand
	}
	return st
}

func sensorWords(env Environment) (adr, ir [3]arinc429.Number, ra [2]arinc429.Number) {
	for i := range adr {
		adr[i] = sensor(env.Airspeed, env.AdrFailed[i])
		ir[i] = sensor(env.PitchAttitude, env.IrFailed[i])
	}
	for i := range ra {
		ra[i] = sensor(env.RadioHeight, env.RaFailed[i])
	}
	return adr, ir, ra
}

func sensor(v float64, failed bool) arinc429.Number {
	if failed {
		return arinc429.NewWord[float32](0, arinc429.FailureWarning)
	}
	return arinc429.NewWord(float32(v), arinc429.NormalOperation)
}

func (s *System) elacInputs(i int, id ID, env Environment, surf surfaceState, adr, ir [3]arinc429.Number, elacBus [2]elac.Bus, facBus [2]fac.Bus) elac.Inputs {
	failed := func(sf Surface) bool { return env.ServoFailed[Servo{id, sf}] }
	prev := s.elacOut[i].Discrete
	stuck := env.ElevatorStuckActive[id]

	var in elac.Inputs
	in.Discrete = elac.DiscreteInputs{
		EngageSwitch:             !env.PushbuttonOff[id],
		LeftElevatorServoFailed:  failed(LeftElevator),
		RightElevatorServoFailed: failed(RightElevator),
		LeftAileronServoFailed:   failed(LeftAileron),
		RightAileronServoFailed:  failed(RightAileron),
		// Mode feedback reflects this ELAC's own command unless the servo is stuck.
		LeftElevatorServoActive:  stuck || prev.LeftElevatorActive,
		RightElevatorServoActive: stuck || prev.RightElevatorActive,
		GreenLowPressure:         env.GreenLow,
		BlueLowPressure:          env.BlueLow,
		YellowLowPressure:        env.YellowLow,
		CaptTakeover:             env.CaptTakeover,
		FoTakeover:               env.FoTakeover,
		AutopilotEngaged:         env.Autopilot,
	}
	in.Analog = elac.AnalogInputs{
		CaptPitchStick:        env.CaptPitch,
		CaptRollStick:         env.CaptRoll,
		FoPitchStick:          env.FoPitch,
		FoRollStick:           env.FoRoll,
		GreenPressure:         env.GreenPressure,
		BluePressure:          env.BluePressure,
		YellowPressure:        env.YellowPressure,
		LeftElevatorPosition:  surf.leftElevator,
		RightElevatorPosition: surf.rightElevator,
		LeftAileronPosition:   surf.leftAileron,
		RightAileronPosition:  surf.rightAileron,
	}
	in.Bus = elac.BusInputs{
		Adr:             adr,
		Ir:              ir,
		OppositeStatus1: elacBus[1-i].DiscreteStatus1,
		FacStatus1:      [2]arinc429.Discrete{facBus[0].DiscreteStatus1, facBus[1].DiscreteStatus1},
	}
	return in
}

func secInputs(i int, id ID, env Environment, adr, ir [3]arinc429.Number, ra [2]arinc429.Number, elacBus [2]elac.Bus, secBus [3]sec.Bus) sec.Inputs {
	failed := func(sf Surface) bool { return env.ServoFailed[Servo{id, sf}] }

	var in sec.Inputs
	in.Discrete = sec.DiscreteInputs{
		EngageSwitch:             !env.PushbuttonOff[id],
		LeftElevatorServoFailed:  failed(LeftElevator),
		RightElevatorServoFailed: failed(RightElevator),
		GreenLowPressure:         env.GreenLow,
		BlueLowPressure:          env.BlueLow,
		YellowLowPressure:        env.YellowLow,
		OnGround:                 env.OnGround,
		EnginesStopped:           env.EnginesStopped,
		GearDown:                 env.GearDown,
		EmergencyElectrical:      env.EmergencyElectrical,
		GroundSpoilersArmed:      env.GroundSpoilersArmed,
	}
	for n := 1; n <= sec.SpoilerPairs; n++ {
		in.Discrete.SpoilerServoFailed[n-1] = failed(Spoiler(n))
	}
	in.Analog = sec.AnalogInputs{
		CaptPitchStick:  env.CaptPitch,
		CaptRollStick:   env.CaptRoll,
		FoPitchStick:    env.FoPitch,
		FoRollStick:     env.FoRoll,
		SpeedBrakeLever: env.SpeedBrake,
		GreenPressure:   env.GreenPressure,
		BluePressure:    env.BluePressure,
		YellowPressure:  env.YellowPressure,
	}
	opposite := 1
	if i == 1 {
		opposite = 0
	}
	in.Bus = sec.BusInputs{
		Adr:             adr,
		Ir:              ir,
		Ra:              ra,
		ElacStatus1:     [2]arinc429.Discrete{elacBus[0].DiscreteStatus1, elacBus[1].DiscreteStatus1},
		ElacStatus2:     [2]arinc429.Discrete{elacBus[0].DiscreteStatus2, elacBus[1].DiscreteStatus2},
		OppositeStatus1: secBus[opposite].DiscreteStatus1,
	}
	return in
}

func facInputs(i int, id ID, env Environment, adr [3]arinc429.Number, elacBus [2]elac.Bus, facBus [2]fac.Bus) fac.Inputs {
	failed := func(sf Surface) bool { return env.ServoFailed[Servo{id, sf}] }

	var in fac.Inputs
	in.Discrete = fac.DiscreteInputs{
		EngageSwitch:         !env.PushbuttonOff[id],
		YawDamperServoFailed: failed(YawDamper),
		RudderTrimFailed:     failed(RudderTrim),
		RudderLimiterFailed:  failed(RudderLimiter),
		GreenLowPressure:     env.GreenLow,
		YellowLowPressure:    env.YellowLow,
	}
	in.Analog = fac.AnalogInputs{
		GreenPressure:    env.GreenPressure,
		YellowPressure:   env.YellowPressure,
		RudderTrimSwitch: env.RudderTrim,
	}
	in.Bus = fac.BusInputs{
		Adr:             adr,
		ElacStatus1:     [2]arinc429.Discrete{elacBus[0].DiscreteStatus1, elacBus[1].DiscreteStatus1},
		ElacYawDamper:   [2]arinc429.Number{elacBus[0].YawDamperOrder, elacBus[1].YawDamperOrder},
		OppositeStatus1: facBus[1-i].DiscreteStatus1,
	}
	return in
}

func fcdcInputs(elacBus [2]elac.Bus, secBus [3]sec.Bus, facBus [2]fac.Bus) fcdc.Inputs {
	var in fcdc.Inputs
	for i, b := range elacBus {
		in.Bus.Elac[i] = fcdc.ElacBus{
			CaptPitchCommand:      b.CaptPitchCommand,
			FoPitchCommand:        b.FoPitchCommand,
			CaptRollCommand:       b.CaptRollCommand,
			FoRollCommand:         b.FoRollCommand,
			LeftAileronPosition:   b.LeftAileronPosition,
			RightAileronPosition:  b.RightAileronPosition,
			LeftElevatorPosition:  b.LeftElevatorPosition,
			RightElevatorPosition: b.RightElevatorPosition,
			DiscreteStatus1:       b.DiscreteStatus1,
			DiscreteStatus2:       b.DiscreteStatus2,
		}
	}
	for i, b := range secBus {
		in.Bus.Sec[i] = fcdc.SecBus{
			SpoilerPosition: b.SpoilerPosition,
			DiscreteStatus1: b.DiscreteStatus1,
			DiscreteStatus2: b.DiscreteStatus2,
		}
	}
	in.Bus.FacStatus1 = [2]arinc429.Discrete{facBus[0].DiscreteStatus1, facBus[1].DiscreteStatus1}
	return in
}

// Frames packs the current output bus of every computer for transport.
func (s *System) Frames() [NumComputers]arinc429.Frame {
	var f [NumComputers]arinc429.Frame
	for i, o := range s.elacOut {
		f[Elac1+ID(i)] = o.Bus.Frame()
	}
	for i, o := range s.secOut {
		f[Sec1+ID(i)] = o.Bus.Frame()
	}
	for i, o := range s.facOut {
		f[Fac1+ID(i)] = o.Bus.Frame()
	}
	for i, o := range s.fcdcOut {
		f[Fcdc1+ID(i)] = o.Bus.Frame()
	}
	return f
}

// Elac returns ELAC unit n (1 or 2).
func (s *System) Elac(n int) *elac.Computer { return s.elac[n-1] }

// Sec returns SEC unit n (1 to 3).
func (s *System) Sec(n int) *sec.Computer { return s.sec[n-1] }

// Fac returns FAC unit n (1 or 2).
func (s *System) Fac(n int) *fac.Computer { return s.fac[n-1] }

// Fcdc returns FCDC unit n (1 or 2).
func (s *System) Fcdc(n int) *fcdc.Computer { return s.fcdc[n-1] }

// FcdcOutputs returns the last outputs of FCDC unit n.
func (s *System) FcdcOutputs(n int) fcdc.Outputs { return s.fcdcOut[n-1] }
