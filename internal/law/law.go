// Package law holds the control-law enumerations and the rules that decide which
// law a computer may run in each axis.
//
// Laws are recomputed every frame from engagement and capability; nothing here
// is persisted.
package law

import "github.com/sweeney/fbw-supervisor/internal/arinc429"

// PitchLaw is the pitch-axis law. The declaration order ranks the degradation
// from None up to Normal; Direct is a deliberate fallback outside that ranking.
type PitchLaw int

const (
	PitchNone PitchLaw = iota
	PitchAlternate2
	PitchAlternate1
	PitchNormal
	PitchDirect
)

func (l PitchLaw) String() string {
	switch l {
	case PitchNone:
		return "NONE"
	case PitchAlternate2:
		return "ALTN2"
	case PitchAlternate1:
		return "ALTN1"
	case PitchNormal:
		return "NORMAL"
	case PitchDirect:
		return "DIRECT"
	default:
		return "UNKNOWN"
	}
}

// Degraded returns the law one step below l: Normal falls to Alternate 1,
// Alternate 1 to Alternate 2, Alternate 2 to Direct. None and Direct stay put.
func (l PitchLaw) Degraded() PitchLaw {
	switch l {
	case PitchNormal:
		return PitchAlternate1
	case PitchAlternate1:
		return PitchAlternate2
	case PitchAlternate2:
		return PitchDirect
	default:
		return l
	}
}

// LateralLaw is the roll/yaw law.
type LateralLaw int

const (
	LateralNone LateralLaw = iota
	LateralDirect
	LateralNormal
)

func (l LateralLaw) String() string {
	switch l {
	case LateralNone:
		return "NONE"
	case LateralDirect:
		return "DIRECT"
	case LateralNormal:
		return "NORMAL"
	default:
		return "UNKNOWN"
	}
}

// ActivePitch returns the pitch law a computer runs.
//
// rollHolderLateral is the lateral capability reported by whichever computer holds
// roll priority (this one or a peer); LateralNone when no computer holds it.
// Normal law needs both axes to agree, so a Normal-capable computer falls back one
// step to Alternate 1 when the roll holder cannot offer Normal lateral law.
func ActivePitch(engaged bool, own PitchLaw, rollHolderLateral LateralLaw) PitchLaw {
	if !engaged {
		return PitchNone
	}
	if own != PitchNormal {
		return own
	}
	if rollHolderLateral == LateralNormal {
		return PitchNormal
	}
	return own.Degraded()
}

// ActiveLateral returns the lateral law a computer runs.
//
// pitchHolderPitch is the pitch capability of whichever computer holds pitch
// priority; PitchNone when no computer holds it.
func ActiveLateral(engaged bool, own LateralLaw, pitchHolderPitch PitchLaw) LateralLaw {
	if !engaged {
		return LateralNone
	}
	if own == LateralNormal && pitchHolderPitch == PitchNormal {
		return LateralNormal
	}
	return LateralDirect
}

// ElacPitchCapability derives the pitch ceiling of an ELAC from the number of valid
// air data references and inertial references.
func ElacPitchCapability(validADR, validIR int) PitchLaw {
	switch {
	case validIR == 0:
		return PitchDirect
	case validIR < 2:
		return PitchAlternate2
	case validADR < 2:
		return PitchAlternate1
	default:
		return PitchNormal
	}
}

// SecPitchCapability derives the pitch ceiling of a SEC. A SEC never offers Normal
// law; the emergency-electrical latch forces Direct.
func SecPitchCapability(validADR, validIR int, emergencyLatched bool) PitchLaw {
	if emergencyLatched {
		return PitchDirect
	}
	l := ElacPitchCapability(validADR, validIR)
	if l == PitchNormal {
		return PitchAlternate1
	}
	return l
}

// LateralCapability is Normal unless inertial data is gone or every yaw-control
// source reports itself lost.
func LateralCapability(validIR int, yawSourceLost ...bool) LateralLaw {
	if validIR == 0 {
		return LateralDirect
	}
	if len(yawSourceLost) == 0 {
		return LateralNormal
	}
	for _, lost := range yawSourceLost {
		if !lost {
			return LateralNormal
		}
	}
	return LateralDirect
}

// EncodePitch writes l into the three discrete bits starting at bit first.
func EncodePitch(w *arinc429.Discrete, first int, l PitchLaw) {
	for i := 0; i < 3; i++ {
		w.SetBit(first+i, int(l)&(1<<i) != 0)
	}
}

// DecodePitch reads a law written by EncodePitch. An untrusted word decodes as None.
func DecodePitch(w arinc429.Discrete, first int) PitchLaw {
	if !w.IsNormalOrTest() {
		return PitchNone
	}
	var l int
	for i := 0; i < 3; i++ {
		if w.BitAt(first + i) {
			l |= 1 << i
		}
	}
	return PitchLaw(l)
}

// EncodeLateral writes l into the two discrete bits starting at bit first.
func EncodeLateral(w *arinc429.Discrete, first int, l LateralLaw) {
	w.SetBit(first, int(l)&1 != 0)
	w.SetBit(first+1, int(l)&2 != 0)
}

// DecodeLateral reads a law written by EncodeLateral. An untrusted word decodes as None.
func DecodeLateral(w arinc429.Discrete, first int) LateralLaw {
	if !w.IsNormalOrTest() {
		return LateralNone
	}
	var l int
	if w.BitAt(first) {
		l |= 1
	}
	if w.BitAt(first + 1) {
		l |= 2
	}
	return LateralLaw(l)
}
