package fcs

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

// ID names one computer of the system.
type ID int

const (
	Elac1 ID = iota
	Elac2
	Sec1
	Sec2
	Sec3
	Fac1
	Fac2
	Fcdc1
	Fcdc2
	NumComputers
)

var idNames = [NumComputers]string{"ELAC1", "ELAC2", "SEC1", "SEC2", "SEC3", "FAC1", "FAC2", "FCDC1", "FCDC2"}

func (id ID) String() string {
	if id < 0 || id >= NumComputers {
		return fmt.Sprintf("ID(%d)", int(id))
	}
	return idNames[id]
}

// ErrUnknownComputer is returned by ParseID for names that match no computer.
var ErrUnknownComputer = errors.New("unknown computer")

// ParseID accepts computer names case-insensitively, e.g. "elac1" or "FAC2".
func ParseID(s string) (ID, error) {
	for i, n := range idNames {
		if strings.EqualFold(s, n) {
			return ID(i), nil
		}
	}
	return 0, fmt.Errorf("parse computer %q: %w", s, ErrUnknownComputer)
}

// Surface names a servo-driven function a computer may lose.
type Surface string

const (
	LeftElevator  Surface = "left_elevator"
	RightElevator Surface = "right_elevator"
	LeftAileron   Surface = "left_aileron"
	RightAileron  Surface = "right_aileron"
	YawDamper     Surface = "yaw_damper"
	RudderTrim    Surface = "rudder_trim"
	RudderLimiter Surface = "rudder_limiter"
)

// Spoiler returns the surface name of spoiler pair n (1-5).
func Spoiler(n int) Surface {
	return Surface(fmt.Sprintf("spoiler%d", n))
}

// Servo identifies one computer's servo on one surface.
type Servo struct {
	Computer ID
	Surface  Surface
}

// Environment is everything outside the flight control computers for one frame:
// aircraft state, cockpit controls and injected failures. Nil maps read as "no
// computer affected".
type Environment struct {
	Unpowered     map[ID]bool
	Faulted       map[ID]bool
	PushbuttonOff map[ID]bool
	ServoFailed   map[Servo]bool
	// ElevatorStuckActive holds an ELAC's elevator servos in active mode regardless of command.
	ElevatorStuckActive map[ID]bool

	GreenPressure  float64
	BluePressure   float64
	YellowPressure float64
	GreenLow       bool
	BlueLow        bool
	YellowLow      bool

	CaptPitch    float64
	CaptRoll     float64
	FoPitch      float64
	FoRoll       float64
	CaptTakeover bool
	FoTakeover   bool
	Autopilot    bool
	SpeedBrake   float64
	RudderTrim   float64

	// Air data: airspeed kt, attitude deg, radio height ft.
	Airspeed      float64
	PitchAttitude float64
	RadioHeight   float64
	AdrFailed     [3]bool
	IrFailed      [3]bool
	RaFailed      [2]bool

	OnGround            bool
	EnginesStopped      bool
	GearDown            bool
	EmergencyElectrical bool
	GroundSpoilersArmed bool
}

// Nominal returns a cruise environment with every system pressurized and valid.
func Nominal() Environment {
	return Environment{
		GreenPressure:  3000,
		BluePressure:   3000,
		YellowPressure: 3000,
		Airspeed:       250,
		PitchAttitude:  2.5,
		RadioHeight:    2500,
	}
}

// Set enables or disables a per-computer flag map, allocating it when needed.
func Set[K comparable](m *map[K]bool, k K, on bool) {
	if *m == nil {
		*m = make(map[K]bool)
	}
	if on {
		(*m)[k] = true
	} else {
		delete(*m, k)
	}
}

// Clone returns a copy whose maps can be modified independently.
func (e Environment) Clone() Environment {
	c := e
	c.Unpowered = maps.Clone(e.Unpowered)
	c.Faulted = maps.Clone(e.Faulted)
	c.PushbuttonOff = maps.Clone(e.PushbuttonOff)
	c.ServoFailed = maps.Clone(e.ServoFailed)
	c.ElevatorStuckActive = maps.Clone(e.ElevatorStuckActive)
	return c
}
