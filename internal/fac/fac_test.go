package fac

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/fbw-supervisor/internal/arinc429"
	"github.com/sweeney/fbw-supervisor/internal/catalog"
	"github.com/sweeney/fbw-supervisor/internal/frame"
	"github.com/sweeney/fbw-supervisor/internal/vote"
)

const dt = 10 * time.Millisecond

func nominalInputs() Inputs {
	var in Inputs
	in.Discrete.EngageSwitch = true
	in.Analog.GreenPressure = 3000
	in.Analog.YellowPressure = 3000
	for i := range in.Bus.Adr {
		in.Bus.Adr[i] = arinc429.NewWord[float32](270, arinc429.NormalOperation)
	}
	return in
}

func runFor(c *Computer, d time.Duration, in Inputs) Outputs {
	var out Outputs
	for elapsed := time.Duration(0); elapsed < d; elapsed += dt {
		out = c.Update(frame.Powered(dt, elapsed), in)
	}
	return out
}

func healthy(t *testing.T, unit int, in Inputs) (*Computer, Outputs) {
	t.Helper()
	c := New(unit)
	out := runFor(c, time.Second, in)
	require.True(t, c.Healthy())
	return c, out
}

func TestFac1EngagesEverything(t *testing.T) {
	_, out := healthy(t, 1, nominalInputs())
	assert.True(t, out.Discrete.YawDamperActive)
	assert.True(t, out.Discrete.RudderTrimActive)
	assert.True(t, out.Discrete.RudderLimiterActive)
	assert.True(t, out.Bus.DiscreteStatus1.BitAt(catalog.FacYawDamperAvail))
	assert.True(t, out.Bus.DiscreteStatus1.BitAt(catalog.FacYawDamperEngaged))
}

func TestFac2StandsBy(t *testing.T) {
	in := nominalInputs()
	_, fac1 := healthy(t, 1, in)
	in.Bus.OppositeStatus1 = fac1.Bus.DiscreteStatus1

	c, out := healthy(t, 2, in)
	assert.False(t, out.Discrete.YawDamperActive)
	assert.True(t, c.Status().YawDamper.CanEngage)
	assert.True(t, out.Bus.DiscreteStatus1.BitAt(catalog.FacYawDamperAvail))

	// FAC 1 yaw damper lost: FAC 2 takes only that function.
	in.Bus.OppositeStatus1.SetBit(catalog.FacYawDamperEngaged, false)
	out = runFor(c, dt, in)
	assert.True(t, out.Discrete.YawDamperActive)
	assert.False(t, out.Discrete.RudderTrimActive)
}

func TestYawDamperNeedsItsCircuit(t *testing.T) {
	in := nominalInputs()
	in.Discrete.GreenLowPressure = true
	c, out := healthy(t, 1, in)
	assert.False(t, out.Discrete.YawDamperActive)
	assert.False(t, out.Bus.DiscreteStatus1.BitAt(catalog.FacYawDamperAvail))
	assert.True(t, c.Status().RudderTrim.IsEngaged)
}

func TestYawDamperOrderFromEngagedElac(t *testing.T) {
	in := nominalInputs()
	in.Bus.ElacYawDamper = [2]arinc429.Number{
		arinc429.NewWord[float32](1, arinc429.NormalOperation),
		arinc429.NewWord[float32](2, arinc429.NormalOperation),
	}
	roll := arinc429.NewDiscrete(arinc429.NormalOperation)
	roll.SetBit(catalog.ElacRollEngaged, true)
	in.Bus.ElacStatus1[1] = roll

	c, out := healthy(t, 1, in)
	assert.Equal(t, 1, c.Status().OrderSource)
	assert.Equal(t, 2.0, out.Analog.YawDamperCommand)

	in.Bus.ElacYawDamper = [2]arinc429.Number{}
	out = runFor(c, dt, in)
	assert.Equal(t, vote.NoSource, c.Status().OrderSource)
	assert.Zero(t, out.Analog.YawDamperCommand)
	assert.True(t, out.Bus.YawDamperOrder.IsNoComputedData())
}

func TestRudderTravelLimit(t *testing.T) {
	tests := []struct {
		name string
		cas  float32
		want float64
	}{
		{"low speed", 120, MaxRudderTravel},
		{"high speed", 400, MinRudderTravel},
		{"midpoint", 270, (MaxRudderTravel + MinRudderTravel) / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := nominalInputs()
			for i := range in.Bus.Adr {
				in.Bus.Adr[i] = arinc429.NewWord(tt.cas, arinc429.NormalOperation)
			}
			_, out := healthy(t, 1, in)
			assert.InDelta(t, tt.want, out.Analog.RudderTravelLimit, 1e-6)
		})
	}
}

func TestRudderTravelLimitWithoutAirData(t *testing.T) {
	in := nominalInputs()
	in.Bus.Adr = [3]arinc429.Number{}
	_, out := healthy(t, 1, in)
	assert.Equal(t, MaxRudderTravel, out.Analog.RudderTravelLimit)
	assert.True(t, out.Bus.RudderTravelLimit.IsNoComputedData())
}

func TestRudderTrimIntegrates(t *testing.T) {
	in := nominalInputs()
	c, _ := healthy(t, 1, in)
	in.Analog.RudderTrimSwitch = 1
	out := runFor(c, 2*time.Second, in)
	assert.InDelta(t, 2*TrimRate, out.Analog.RudderTrimCommand, 1e-6)
	assert.InDelta(t, 2*TrimRate, float64(out.Bus.RudderTrimOrder.ValueOr(0)), 1e-4)
}

func TestEngageSwitchOffIsUnhealthy(t *testing.T) {
	in := nominalInputs()
	c, _ := healthy(t, 1, in)
	in.Discrete.EngageSwitch = false
	out := runFor(c, dt, in)
	assert.False(t, c.Healthy())
	assert.Equal(t, Outputs{}, out)
}
