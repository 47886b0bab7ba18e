package engage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var bothAvailable = []Channel{
	{HydraulicAvailable: true},
	{HydraulicAvailable: true},
}

func TestHydraulicAvailable(t *testing.T) {
	tests := []struct {
		name string
		psi  float64
		low  bool
		want bool
	}{
		{"pressurized", 3000, false, true},
		{"at threshold", HydraulicThresholdPSI, false, true},
		{"below threshold", 1400, false, false},
		{"low pressure flagged", 3000, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HydraulicAvailable(tt.psi, tt.low))
		})
	}
}

func TestPrimaryAlwaysHasPriority(t *testing.T) {
	ax := Arbiter{Role: Primary}.Arbitrate(true, bothAvailable, Peer{Valid: true, Engaged: true})
	assert.True(t, ax.HasPriority)
	assert.True(t, ax.IsEngaged)
	assert.True(t, ax.PeerEngaged)
}

func TestSecondaryPriorityFollowsPeer(t *testing.T) {
	sec := Arbiter{Role: Secondary}

	ax := sec.Arbitrate(true, bothAvailable, Peer{Valid: true, Engaged: true})
	assert.True(t, ax.CanEngage)
	assert.False(t, ax.HasPriority)
	assert.False(t, ax.IsEngaged)

	ax = sec.Arbitrate(true, bothAvailable, Peer{Valid: true, Engaged: false})
	assert.True(t, ax.IsEngaged)

	// Invalid peer word counts as not engaged.
	ax = sec.Arbitrate(true, bothAvailable, Peer{Valid: false, Engaged: true})
	assert.True(t, ax.IsEngaged)
}

func TestCanEngageRequiresHealthAndAChannel(t *testing.T) {
	pri := Arbiter{Role: Primary}

	assert.False(t, pri.Arbitrate(false, bothAvailable, Peer{}).IsEngaged)

	none := []Channel{{ServoFailed: true, HydraulicAvailable: true}, {HydraulicAvailable: false}}
	ax := pri.Arbitrate(true, none, Peer{})
	assert.False(t, ax.CanEngage)
	assert.Equal(t, []bool{false, false}, ax.ChannelAvailable)

	one := []Channel{{ServoFailed: true, HydraulicAvailable: true}, {HydraulicAvailable: true}}
	ax = pri.Arbitrate(true, one, Peer{})
	assert.True(t, ax.IsEngaged)
	assert.False(t, ax.ChannelEngaged(0))
	assert.True(t, ax.ChannelEngaged(1))
	assert.False(t, ax.ChannelEngaged(5))
}

func TestExcludedNeverEngages(t *testing.T) {
	ax := Arbiter{Role: Excluded}.Arbitrate(true, bothAvailable, Peer{})
	assert.False(t, ax.CanEngage)
	assert.False(t, ax.IsEngaged)
}

func TestCrossCommand(t *testing.T) {
	secondary := Arbiter{Role: Secondary}

	tests := []struct {
		name string
		peer Peer
		want CrossCommand
	}{
		{"primary lost left", Peer{Valid: true, Engaged: true, SideAvailable: [2]bool{false, true}}, CrossCommand{Left: true}},
		{"primary lost right", Peer{Valid: true, Engaged: true, SideAvailable: [2]bool{true, false}}, CrossCommand{Right: true}},
		{"primary intact", Peer{Valid: true, Engaged: true, SideAvailable: [2]bool{true, true}}, CrossCommand{}},
		{"primary lost both", Peer{Valid: true, Engaged: true, SideAvailable: [2]bool{false, false}}, CrossCommand{}},
		{"primary not engaged", Peer{Valid: true, Engaged: false, SideAvailable: [2]bool{false, true}}, CrossCommand{}},
		{"primary invalid", Peer{Valid: false, Engaged: true, SideAvailable: [2]bool{false, true}}, CrossCommand{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			own := secondary.Arbitrate(true, bothAvailable, tt.peer)
			got := ComputeCrossCommand(true, own, tt.peer)
			assert.Equal(t, tt.want, got)
			// Cross-command never implies full-axis engagement.
			if got.Active() {
				assert.False(t, own.IsEngaged)
			}
		})
	}
}

func TestCrossCommandNeedsOwnChannel(t *testing.T) {
	peer := Peer{Valid: true, Engaged: true, SideAvailable: [2]bool{false, true}}
	own := Arbiter{Role: Secondary}.Arbitrate(true, []Channel{{ServoFailed: true, HydraulicAvailable: true}, {HydraulicAvailable: true}}, peer)
	assert.Equal(t, CrossCommand{}, ComputeCrossCommand(true, own, peer))
	assert.Equal(t, CrossCommand{}, ComputeCrossCommand(false, own, peer))
}
