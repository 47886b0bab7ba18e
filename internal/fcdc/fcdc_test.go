package fcdc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/fbw-supervisor/internal/arinc429"
	"github.com/sweeney/fbw-supervisor/internal/catalog"
	"github.com/sweeney/fbw-supervisor/internal/frame"
	"github.com/sweeney/fbw-supervisor/internal/law"
)

const dt = 10 * time.Millisecond

func number(v float32) arinc429.Number {
	return arinc429.NewWord(v, arinc429.NormalOperation)
}

func elacBus(pitch, roll bool, pitchLaw law.PitchLaw, lateral law.LateralLaw) ElacBus {
	var e ElacBus
	e.DiscreteStatus1 = arinc429.NewDiscrete(arinc429.NormalOperation)
	e.DiscreteStatus1.SetBit(catalog.ElacPitchEngaged, pitch)
	e.DiscreteStatus1.SetBit(catalog.ElacRollEngaged, roll)
	e.DiscreteStatus2 = arinc429.NewDiscrete(arinc429.NormalOperation)
	law.EncodePitch(&e.DiscreteStatus2, catalog.ElacActivePitchLaw, pitchLaw)
	law.EncodeLateral(&e.DiscreteStatus2, catalog.ElacActiveLateralLaw, lateral)
	for _, w := range []*arinc429.Number{&e.CaptPitchCommand, &e.FoPitchCommand, &e.CaptRollCommand, &e.FoRollCommand} {
		w.SetValue(0, arinc429.NormalOperation)
	}
	return e
}

func nominalInputs() Inputs {
	var in Inputs
	in.Bus.Elac[0] = elacBus(false, true, law.PitchNone, law.LateralNormal)
	in.Bus.Elac[1] = elacBus(true, false, law.PitchNormal, law.LateralNone)
	for i := range in.Bus.Sec {
		in.Bus.Sec[i].DiscreteStatus1 = arinc429.NewDiscrete(arinc429.NormalOperation)
	}
	for i := range in.Bus.FacStatus1 {
		in.Bus.FacStatus1[i] = arinc429.NewDiscrete(arinc429.NormalOperation)
	}
	return in
}

func healthy(t *testing.T, in Inputs) (*Computer, Outputs) {
	t.Helper()
	c := New(1)
	var out Outputs
	for elapsed := time.Duration(0); elapsed < 2*time.Second; elapsed += dt {
		out = c.Update(frame.Powered(dt, elapsed), in)
	}
	require.True(t, c.Healthy())
	return c, out
}

func TestConsolidatedLaws(t *testing.T) {
	c, out := healthy(t, nominalInputs())
	assert.Equal(t, law.PitchNormal, c.Status().PitchLaw)
	assert.Equal(t, law.LateralNormal, c.Status().LateralLaw)
	assert.Equal(t, law.PitchNormal, law.DecodePitch(out.Bus.DiscreteWord1, catalog.FcdcPitchLaw))
	assert.Equal(t, [7]bool{}, c.Status().Faulted)
}

func TestSecPitchLawWhenNoElacInPitch(t *testing.T) {
	in := nominalInputs()
	in.Bus.Elac[1] = ElacBus{}
	in.Bus.Sec[0].DiscreteStatus1.SetBit(catalog.SecPitchEngaged, true)
	in.Bus.Sec[0].DiscreteStatus2 = arinc429.NewDiscrete(arinc429.NormalOperation)
	law.EncodePitch(&in.Bus.Sec[0].DiscreteStatus2, catalog.SecActivePitchLaw, law.PitchAlternate1)

	c, out := healthy(t, in)
	assert.Equal(t, law.PitchAlternate1, c.Status().PitchLaw)
	assert.True(t, c.Status().Faulted[1])
	assert.True(t, out.Bus.DiscreteWord2.BitAt(catalog.FcdcElac2Fault))
	assert.False(t, out.Bus.DiscreteWord2.BitAt(catalog.FcdcElac1Fault))
}

func TestPositionsFollowEngagedElac(t *testing.T) {
	in := nominalInputs()
	in.Bus.Elac[0].LeftElevatorPosition = number(-1)
	in.Bus.Elac[1].LeftElevatorPosition = number(-2)
	in.Bus.Elac[0].LeftAileronPosition = number(3)
	in.Bus.Elac[1].LeftAileronPosition = number(4)
	in.Bus.Sec[2].SpoilerPosition[0] = number(10)

	_, out := healthy(t, in)
	assert.Equal(t, float32(-2), out.Bus.LeftElevatorPosition.ValueOr(0), "ELAC 2 holds pitch")
	assert.Equal(t, float32(3), out.Bus.LeftAileronPosition.ValueOr(0), "ELAC 1 holds roll")
	assert.Equal(t, float32(10), out.Bus.SpoilerPosition[0].ValueOr(0))
	assert.True(t, out.Bus.SpoilerPosition[1].IsNoComputedData())
}

func TestPriorityLights(t *testing.T) {
	in := nominalInputs()
	in.Bus.Elac[0].DiscreteStatus2.SetBit(catalog.ElacRightStickDisabled, true)
	in.Bus.Elac[0].FoRollCommand = number(0.4)

	_, out := healthy(t, in)
	assert.True(t, out.Discrete.CaptPriorityGreen)
	assert.True(t, out.Discrete.FoPriorityRed)
	assert.False(t, out.Discrete.CaptPriorityRed)
	assert.False(t, out.Discrete.FoPriorityGreen)
	assert.True(t, out.Bus.DiscreteWord1.BitAt(catalog.FcdcCaptGreen))

	// Stick back at neutral: green light goes out, red stays.
	in.Bus.Elac[0].FoRollCommand = number(0)
	_, out = healthy(t, in)
	assert.False(t, out.Discrete.CaptPriorityGreen)
	assert.True(t, out.Discrete.FoPriorityRed)
}

func TestDualInputWarning(t *testing.T) {
	in := nominalInputs()
	in.Bus.Elac[0].DiscreteStatus2.SetBit(catalog.ElacDualInput, true)
	_, out := healthy(t, in)
	assert.True(t, out.Discrete.DualInputWarning)
}

func TestColdStartUsesLongSelfTest(t *testing.T) {
	c := New(2)
	c.Update(frame.Powered(dt, 0), nominalInputs())
	assert.Equal(t, Policy.LongSelfTest, c.Status().Health.SelfTestRemaining)
	assert.False(t, c.Healthy())
}
