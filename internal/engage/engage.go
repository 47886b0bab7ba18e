// Package engage decides, per control axis, whether a computer can drive its
// surfaces, whether it is entitled to, and whether it actually does.
package engage

// HydraulicThresholdPSI is the circuit pressure above which a circuit counts as available.
const HydraulicThresholdPSI = 1450

// HydraulicAvailable reports whether a circuit can power a servo: the measured
// pressure is above threshold and no low-pressure discrete is raised.
func HydraulicAvailable(pressurePSI float64, lowPressure bool) bool {
	return pressurePSI >= HydraulicThresholdPSI && !lowPressure
}

// Role is the priority rank of a computer in one axis.
type Role int

const (
	// Primary always holds priority in its axis.
	Primary Role = iota
	// Secondary holds priority only while the primary is not engaged.
	Secondary
	// Excluded never engages in the axis.
	Excluded
)

func (r Role) String() string {
	switch r {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return "excluded"
	}
}

// Channel is one surface servo a computer can drive.
type Channel struct {
	ServoFailed        bool
	HydraulicAvailable bool
}

// Available reports whether the servo can be driven.
func (c Channel) Available() bool {
	return !c.ServoFailed && c.HydraulicAvailable
}

// Peer is what a computer learns about the opposite unit from its published status
// word. An invalid word reads as a peer that is not engaged.
type Peer struct {
	Valid   bool
	Engaged bool
	// SideAvailable mirrors the peer's per-channel availability bits.
	SideAvailable [2]bool
}

// EngagedOr returns whether the peer is engaged, treating invalid data as not engaged.
func (p Peer) EngagedOr() bool {
	return p.Valid && p.Engaged
}

// Axis is the engagement decision of one computer in one axis.
type Axis struct {
	CanEngage   bool
	HasPriority bool
	IsEngaged   bool
	// ChannelAvailable holds the per-channel availability used for CanEngage.
	ChannelAvailable []bool
	// PeerEngaged is the peer's engagement as read from its bus.
	PeerEngaged bool
}

// ChannelEngaged reports whether channel i is driven as part of the full-axis engagement.
func (a Axis) ChannelEngaged(i int) bool {
	return a.IsEngaged && i < len(a.ChannelAvailable) && a.ChannelAvailable[i]
}

// Arbiter applies the priority rule of one role.
type Arbiter struct {
	Role Role
}

// Arbitrate computes the axis engagement from the computer's health, its channels
// and the peer's last published status.
func (a Arbiter) Arbitrate(healthy bool, channels []Channel, peer Peer) Axis {
	ax := Axis{
		ChannelAvailable: make([]bool, len(channels)),
		PeerEngaged:      peer.EngagedOr(),
	}
	if a.Role == Excluded {
		return ax
	}

	anyAvailable := false
	for i, c := range channels {
		ax.ChannelAvailable[i] = c.Available()
		anyAvailable = anyAvailable || ax.ChannelAvailable[i]
	}

	ax.CanEngage = healthy && anyAvailable
	ax.HasPriority = a.Role == Primary || !ax.PeerEngaged
	ax.IsEngaged = ax.CanEngage && ax.HasPriority
	return ax
}

// CrossCommand is the narrow, per-side engagement of a secondary computer standing
// in for one channel the engaged primary has lost.
type CrossCommand struct {
	Left  bool
	Right bool
}

// Active reports whether either side is cross-commanded.
func (c CrossCommand) Active() bool {
	return c.Left || c.Right
}

// ComputeCrossCommand engages a secondary computer on exactly the side the engaged
// primary lost, when the primary lost one side of the symmetric pair and not the
// other. A computer that already holds the full axis never cross-commands.
func ComputeCrossCommand(healthy bool, own Axis, peer Peer) CrossCommand {
	var cc CrossCommand
	if !healthy || own.IsEngaged || !peer.EngagedOr() || len(own.ChannelAvailable) != 2 {
		return cc
	}
	leftLost := !peer.SideAvailable[0]
	rightLost := !peer.SideAvailable[1]
	if leftLost == rightLost {
		return cc
	}
	cc.Left = leftLost && own.ChannelAvailable[0]
	cc.Right = rightLost && own.ChannelAvailable[1]
	return cc
}
