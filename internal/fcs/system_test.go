package fcs

import (
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/fbw-supervisor/internal/catalog"
	"github.com/sweeney/fbw-supervisor/internal/elac"
	"github.com/sweeney/fbw-supervisor/internal/law"
	"github.com/sweeney/fbw-supervisor/internal/lawmodel"
)

const dt = 10 * time.Millisecond

func run(s *System, env Environment, d time.Duration) []Event {
	var events []Event
	for elapsed := time.Duration(0); elapsed < d; elapsed += dt {
		events = append(events, s.Step(dt, env)...)
	}
	return events
}

func started(t *testing.T) (*System, Environment) {
	t.Helper()
	s := New(lawmodel.Proportional{})
	env := Nominal()
	run(s, env, 2*time.Second)
	for _, sm := range s.Summaries() {
		require.True(t, sm.Healthy, "%s healthy after start", sm.Computer)
	}
	return s, env
}

func find(events []Event, id ID, signal string) []Event {
	var out []Event
	for _, e := range events {
		if e.Computer == id && e.Signal == signal {
			out = append(out, e)
		}
	}
	return out
}

func TestFirstStepReportsEveryComputer(t *testing.T) {
	s := New(lawmodel.Proportional{})
	events := s.Step(dt, Nominal())
	assert.Len(t, events, 7*int(NumComputers))

	powered := find(events, Fac2, "powered")
	require.Len(t, powered, 1)
	assert.Equal(t, "ON", powered[0].To)
	assert.Equal(t, dt, powered[0].Time)

	assert.Empty(t, s.Step(dt, Nominal()), "nothing changes mid self-test")
}

func TestNominalEngagement(t *testing.T) {
	s, _ := started(t)

	assert.Equal(t, "pitch", s.Summary(Elac2).Functions)
	assert.Equal(t, "roll", s.Summary(Elac1).Functions)
	assert.Equal(t, law.PitchNormal, s.Summary(Elac2).PitchLaw)
	assert.Equal(t, law.LateralNormal, s.Summary(Elac1).LateralLaw)
	assert.Equal(t, law.PitchNone, s.Summary(Sec1).PitchLaw)
	assert.Equal(t, "yaw_damper,rudder_trim,rudder_limiter", s.Summary(Fac1).Functions)
	assert.Empty(t, s.Summary(Fac2).Functions)

	fcdc := s.Fcdc(1).Status()
	assert.Equal(t, law.PitchNormal, fcdc.PitchLaw)
	assert.Equal(t, law.LateralNormal, fcdc.LateralLaw)
	assert.Equal(t, [7]bool{}, fcdc.Faulted)
}

func TestFcdcsAgree(t *testing.T) {
	deep.CompareUnexportedFields = true
	defer func() { deep.CompareUnexportedFields = false }()

	s, _ := started(t)
	if diff := deep.Equal(s.FcdcOutputs(1), s.FcdcOutputs(2)); diff != nil {
		t.Error(diff)
	}
}

func TestPowerLossHandsPitchToElac1(t *testing.T) {
	s, env := started(t)

	Set(&env.Unpowered, Elac2, true)
	events := run(s, env, 100*time.Millisecond)

	assert.False(t, s.Summary(Elac2).Healthy)
	assert.Equal(t, "pitch,roll", s.Summary(Elac1).Functions)
	assert.Equal(t, law.PitchNormal, s.Summary(Elac1).PitchLaw)

	healthy := find(events, Elac2, "healthy")
	require.Len(t, healthy, 1)
	assert.Equal(t, "OFF", healthy[0].To)
	assert.True(t, s.Fcdc(1).Status().Faulted[Elac2])

	// Power returns with hydraulics pressurized: short test, then pitch goes back.
	Set(&env.Unpowered, Elac2, false)
	s.Step(dt, env)
	assert.Equal(t, elac.Policy.ShortSelfTest, s.Elac(2).Status().Health.SelfTestRemaining)
	run(s, env, time.Second)
	assert.Equal(t, "pitch", s.Summary(Elac2).Functions)
	assert.Equal(t, "roll", s.Summary(Elac1).Functions)
}

func TestLongOutageWithoutHydraulicsRunsLongSelfTest(t *testing.T) {
	s, env := started(t)

	Set(&env.Unpowered, Elac2, true)
	run(s, env, 3500*time.Millisecond)

	env.GreenPressure, env.BluePressure, env.YellowPressure = 0, 0, 0
	env.GreenLow, env.BlueLow, env.YellowLow = true, true, true
	Set(&env.Unpowered, Elac2, false)
	events := s.Step(dt, env)

	st := s.Elac(2).Status().Health
	assert.Equal(t, elac.Policy.LongSelfTest, st.SelfTestRemaining)
	assert.False(t, st.PowerSupplyFault)
	selfTest := find(events, Elac2, "self_test")
	require.Len(t, selfTest, 1)
	assert.Equal(t, "ON", selfTest[0].To)

	env = Nominal()
	run(s, env, elac.Policy.LongSelfTest-time.Second)
	assert.False(t, s.Summary(Elac2).Healthy, "still testing")
	run(s, env, 1500*time.Millisecond)
	assert.True(t, s.Summary(Elac2).Healthy)
	assert.Equal(t, "pitch", s.Summary(Elac2).Functions)
}

func TestBriefPowerBlipKeepsComputerHealthy(t *testing.T) {
	s, env := started(t)
	Set(&env.Unpowered, Elac2, true)
	s.Step(dt, env)
	Set(&env.Unpowered, Elac2, false)
	run(s, env, 50*time.Millisecond)

	st := s.Elac(2).Status().Health
	assert.False(t, st.PowerSupplyFault)
	assert.True(t, st.SelfTestComplete)
}

func TestBothElacsLostHandsPitchToSec1(t *testing.T) {
	s, env := started(t)
	Set(&env.Unpowered, Elac1, true)
	Set(&env.Unpowered, Elac2, true)
	run(s, env, 100*time.Millisecond)

	assert.Contains(t, s.Summary(Sec1).Functions, "pitch")
	assert.NotContains(t, s.Summary(Sec2).Functions, "pitch")
	assert.NotContains(t, s.Summary(Sec3).Functions, "pitch")
	assert.Equal(t, law.PitchAlternate1, s.Summary(Sec1).PitchLaw)
	assert.Equal(t, law.PitchAlternate1, s.Fcdc(2).Status().PitchLaw)
	assert.Equal(t, law.LateralNone, s.Fcdc(2).Status().LateralLaw)
}

func TestStuckElevatorServoLatchesBackupElac(t *testing.T) {
	s, env := started(t)
	Set(&env.ElevatorStuckActive, Elac1, true)
	run(s, env, 1500*time.Millisecond)

	assert.True(t, s.Summary(Elac1).FaultLatched)
	assert.False(t, s.Summary(Elac1).Healthy)
	assert.True(t, s.Summary(Elac2).Healthy)
	// ELAC2 takes roll once ELAC1 is lost.
	assert.Equal(t, "pitch,roll", s.Summary(Elac2).Functions)
	assert.True(t, s.FcdcOutputs(1).Bus.DiscreteWord2.BitAt(catalog.FcdcElac1Fault))
}

func TestPushbuttonOffDisengages(t *testing.T) {
	s, env := started(t)
	Set(&env.PushbuttonOff, Fac1, true)
	run(s, env, 50*time.Millisecond)

	assert.False(t, s.Summary(Fac1).Healthy)
	assert.Equal(t, "yaw_damper,rudder_trim,rudder_limiter", s.Summary(Fac2).Functions)
}

func TestFramesCarryStatusWords(t *testing.T) {
	s, _ := started(t)
	frames := s.Frames()
	for id := Elac1; id < NumComputers; id++ {
		_, ok := frames[id].Lookup(catalog.LabelDiscreteStatus1)
		assert.True(t, ok, "%s publishes label 270", id)
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("sec3")
	require.NoError(t, err)
	assert.Equal(t, Sec3, id)

	_, err = ParseID("elac9")
	assert.ErrorIs(t, err, ErrUnknownComputer)
	assert.Equal(t, "ID(42)", ID(42).String())
}

func TestEnvironmentClone(t *testing.T) {
	env := Nominal()
	Set(&env.Faulted, Sec2, true)
	c := env.Clone()
	Set(&c.Faulted, Sec2, false)
	assert.True(t, env.Faulted[Sec2])
	assert.False(t, c.Faulted[Sec2])
}
