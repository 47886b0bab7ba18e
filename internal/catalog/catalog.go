// Package catalog lists the labels and discrete bit positions of every bus word the
// computers exchange. Labels are octal, as printed on the aircraft wiring lists.
package catalog

import "github.com/sweeney/fbw-supervisor/internal/arinc429"

// Sensor labels.
const (
	LabelComputedAirspeed arinc429.Label = 0o206
	LabelPitchAttitude    arinc429.Label = 0o324
	LabelRadioHeight      arinc429.Label = 0o164
)

// Labels shared by every computer kind.
const (
	LabelDiscreteStatus1 arinc429.Label = 0o270
	LabelDiscreteStatus2 arinc429.Label = 0o271
	LabelDiscreteStatus3 arinc429.Label = 0o272
)

// ELAC output labels.
const (
	LabelCaptPitchCommand      arinc429.Label = 0o174
	LabelFoPitchCommand        arinc429.Label = 0o175
	LabelCaptRollCommand       arinc429.Label = 0o176
	LabelFoRollCommand         arinc429.Label = 0o177
	LabelYawDamperOrder        arinc429.Label = 0o256
	LabelLeftAileronPosition   arinc429.Label = 0o310
	LabelRightAileronPosition  arinc429.Label = 0o314
	LabelLeftElevatorPosition  arinc429.Label = 0o333
	LabelRightElevatorPosition arinc429.Label = 0o334
)

// SEC output labels. Spoiler pair n is reported under LabelSpoilerPosition+n-1.
const (
	LabelSpoilerPosition arinc429.Label = 0o361
)

// FAC output labels.
const (
	LabelRudderTravelLimit arinc429.Label = 0o313
	LabelRudderTrimOrder   arinc429.Label = 0o265
)

// ELAC discrete status word 1.
const (
	ElacPitchNormalCapable   = 11
	ElacLateralNormalCapable = 12
	ElacLeftElevatorAvail    = 13
	ElacRightElevatorAvail   = 14
	ElacLeftAileronAvail     = 15
	ElacRightAileronAvail    = 16
	ElacPitchEngaged         = 17
	ElacRollEngaged          = 18
	ElacLeftAileronCross     = 19
	ElacRightAileronCross    = 20
)

// ELAC discrete status word 2.
const (
	// ElacActivePitchLaw occupies three bits, ElacActiveLateralLaw two.
	ElacActivePitchLaw     = 11
	ElacActiveLateralLaw   = 14
	ElacLeftStickDisabled  = 16
	ElacRightStickDisabled = 17
	ElacLeftStickLocked    = 18
	ElacRightStickLocked   = 19
	ElacDualInput          = 20
)

// SEC discrete status word 1.
const (
	SecPitchEngaged      = 11
	SecGroundSpoilersOut = 12
	SecEmergencyLatched  = 13
	// SecSpoilerEngaged is the bit of spoiler pair 1; pair n uses SecSpoilerEngaged+n-1.
	SecSpoilerEngaged = 14
)

// SEC discrete status word 2.
const (
	SecActivePitchLaw = 11
)

// FAC discrete status word 1.
const (
	FacYawDamperAvail     = 11
	FacYawDamperEngaged   = 12
	FacRudderTrimEngaged  = 13
	FacRudderLimitEngaged = 14
)

// FCDC discrete word 1.
const (
	FcdcPitchLaw   = 11
	FcdcLateralLaw = 14
	FcdcCaptGreen  = 16
	FcdcCaptRed    = 17
	FcdcFoGreen    = 18
	FcdcFoRed      = 19
	FcdcDualInput  = 20
)

// FCDC discrete word 2: computer fault indications.
const (
	FcdcElac1Fault = 11
	FcdcElac2Fault = 12
	FcdcSec1Fault  = 13
	FcdcSec2Fault  = 14
	FcdcSec3Fault  = 15
	FcdcFac1Fault  = 16
	FcdcFac2Fault  = 17
)
