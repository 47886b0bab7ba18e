// Package scenario loads YAML bench scenarios: timed changes to the aircraft
// environment (power, faults, hydraulics, sensors, cockpit inputs) replayed against
// the flight control system.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/fbw-supervisor/internal/bridge"
	"github.com/sweeney/fbw-supervisor/internal/engage"
	"github.com/sweeney/fbw-supervisor/internal/fcs"
)

var (
	// ErrUnknownAction is returned for steps whose action has no handler.
	ErrUnknownAction = errors.New("unknown action")
	// ErrInvalidStep is returned for steps whose arguments do not fit their action.
	ErrInvalidStep = errors.New("invalid step")
)

// Step is one timed change. Which fields are read depends on Action.
type Step struct {
	At       time.Duration `yaml:"at"`
	Action   string        `yaml:"action"`
	Computer string        `yaml:"computer,omitempty"`
	Surface  string        `yaml:"surface,omitempty"`
	Circuit  string        `yaml:"circuit,omitempty"`
	Sensor   string        `yaml:"sensor,omitempty"`
	Index    int           `yaml:"index,omitempty"`
	Flag     string        `yaml:"flag,omitempty"`
	Input    string        `yaml:"input,omitempty"`
	Value    float64       `yaml:"value,omitempty"`
	On       bool          `yaml:"on,omitempty"`
}

// Scenario is a named list of steps ordered by time.
type Scenario struct {
	Name string `yaml:"name"`
	// Duration is how long the scenario runs; zero means until the last step.
	Duration time.Duration `yaml:"duration"`
	Steps    []Step        `yaml:"steps"`
}

// End returns the time the scenario is complete.
func (s *Scenario) End() time.Duration {
	end := s.Duration
	for _, st := range s.Steps {
		end = max(end, st.At)
	}
	return end
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario and checks every step against a scratch environment.
// Unknown YAML fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	scratch := fcs.Nominal()
	d := bridge.NewDispatcher()
	for i, st := range sc.Steps {
		if st.At < 0 {
			return nil, fmt.Errorf("step %d at %v: %w", i, st.At, ErrInvalidStep)
		}
		if err := apply(st, &scratch, d); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	slices.SortStableFunc(sc.Steps, func(a, b Step) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		}
		return 0
	})
	return &sc, nil
}

type handler func(st Step, env *fcs.Environment, d *bridge.Dispatcher) error

var handlers = map[string]handler{
	"unpower":        computerFlag(func(e *fcs.Environment) *map[fcs.ID]bool { return &e.Unpowered }, true),
	"power":          computerFlag(func(e *fcs.Environment) *map[fcs.ID]bool { return &e.Unpowered }, false),
	"fault":          computerFlag(func(e *fcs.Environment) *map[fcs.ID]bool { return &e.Faulted }, true),
	"clear_fault":    computerFlag(func(e *fcs.Environment) *map[fcs.ID]bool { return &e.Faulted }, false),
	"pushbutton_off": computerFlag(func(e *fcs.Environment) *map[fcs.ID]bool { return &e.PushbuttonOff }, true),
	"pushbutton_on":  computerFlag(func(e *fcs.Environment) *map[fcs.ID]bool { return &e.PushbuttonOff }, false),
	"stuck_active":   computerFlag(func(e *fcs.Environment) *map[fcs.ID]bool { return &e.ElevatorStuckActive }, true),
	"stuck_clear":    computerFlag(func(e *fcs.Environment) *map[fcs.ID]bool { return &e.ElevatorStuckActive }, false),
	"servo_fail":     servo(true),
	"servo_restore":  servo(false),
	"hydraulics":     hydraulics,
	"sensor_fail":    sensor(true),
	"sensor_restore": sensor(false),
	"air_data":       airData,
	"set":            setFlag,
	"input":          input,
}

// Actions returns the supported action names.
func Actions() []string {
	names := make([]string, 0, len(handlers))
	for n := range handlers {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func apply(st Step, env *fcs.Environment, d *bridge.Dispatcher) error {
	h, ok := handlers[st.Action]
	if !ok {
		return fmt.Errorf("action %q: %w", st.Action, ErrUnknownAction)
	}
	return h(st, env, d)
}

func computerFlag(field func(*fcs.Environment) *map[fcs.ID]bool, on bool) handler {
	return func(st Step, env *fcs.Environment, _ *bridge.Dispatcher) error {
		id, err := fcs.ParseID(st.Computer)
		if err != nil {
			return fmt.Errorf("%s: %w", st.Action, err)
		}
		fcs.Set(field(env), id, on)
		return nil
	}
}

var surfaces = func() map[string]fcs.Surface {
	m := map[string]fcs.Surface{}
	for _, s := range []fcs.Surface{fcs.LeftElevator, fcs.RightElevator, fcs.LeftAileron, fcs.RightAileron,
		fcs.YawDamper, fcs.RudderTrim, fcs.RudderLimiter} {
		m[string(s)] = s
	}
	for n := 1; n <= 5; n++ {
		m[string(fcs.Spoiler(n))] = fcs.Spoiler(n)
	}
	return m
}()

func servo(failed bool) handler {
	return func(st Step, env *fcs.Environment, _ *bridge.Dispatcher) error {
		id, err := fcs.ParseID(st.Computer)
		if err != nil {
			return fmt.Errorf("%s: %w", st.Action, err)
		}
		sf, ok := surfaces[st.Surface]
		if !ok {
			return fmt.Errorf("%s surface %q: %w", st.Action, st.Surface, ErrInvalidStep)
		}
		fcs.Set(&env.ServoFailed, fcs.Servo{Computer: id, Surface: sf}, failed)
		return nil
	}
}

// hydraulics sets a circuit pressure; the low-pressure discrete follows the
// availability threshold.
func hydraulics(st Step, env *fcs.Environment, _ *bridge.Dispatcher) error {
	if st.Value < 0 {
		return fmt.Errorf("hydraulics pressure %v: %w", st.Value, ErrInvalidStep)
	}
	low := st.Value < engage.HydraulicThresholdPSI
	set := func(p *float64, l *bool) {
		*p, *l = st.Value, low
	}
	switch st.Circuit {
	case "green":
		set(&env.GreenPressure, &env.GreenLow)
	case "blue":
		set(&env.BluePressure, &env.BlueLow)
	case "yellow":
		set(&env.YellowPressure, &env.YellowLow)
	case "all":
		set(&env.GreenPressure, &env.GreenLow)
		set(&env.BluePressure, &env.BlueLow)
		set(&env.YellowPressure, &env.YellowLow)
	default:
		return fmt.Errorf("hydraulics circuit %q: %w", st.Circuit, ErrInvalidStep)
	}
	return nil
}

func sensor(failed bool) handler {
	return func(st Step, env *fcs.Environment, _ *bridge.Dispatcher) error {
		var bank []bool
		switch st.Sensor {
		case "adr":
			bank = env.AdrFailed[:]
		case "ir":
			bank = env.IrFailed[:]
		case "ra":
			bank = env.RaFailed[:]
		default:
			return fmt.Errorf("%s sensor %q: %w", st.Action, st.Sensor, ErrInvalidStep)
		}
		if st.Index < 1 || st.Index > len(bank) {
			return fmt.Errorf("%s %s index %d: %w", st.Action, st.Sensor, st.Index, ErrInvalidStep)
		}
		bank[st.Index-1] = failed
		return nil
	}
}

func airData(st Step, env *fcs.Environment, _ *bridge.Dispatcher) error {
	switch st.Sensor {
	case "airspeed":
		env.Airspeed = st.Value
	case "pitch_attitude":
		env.PitchAttitude = st.Value
	case "radio_height":
		env.RadioHeight = st.Value
	default:
		return fmt.Errorf("air_data sensor %q: %w", st.Sensor, ErrInvalidStep)
	}
	return nil
}

func setFlag(st Step, env *fcs.Environment, _ *bridge.Dispatcher) error {
	flags := map[string]*bool{
		"on_ground":             &env.OnGround,
		"engines_stopped":       &env.EnginesStopped,
		"gear_down":             &env.GearDown,
		"emergency_electrical":  &env.EmergencyElectrical,
		"ground_spoilers_armed": &env.GroundSpoilersArmed,
	}
	f, ok := flags[st.Flag]
	if !ok {
		return fmt.Errorf("set flag %q: %w", st.Flag, ErrInvalidStep)
	}
	*f = st.On
	return nil
}

// input routes a cockpit input through the dispatcher, as if the host had sent it.
func input(st Step, _ *fcs.Environment, d *bridge.Dispatcher) error {
	if err := d.Dispatch(bridge.InputEvent{Name: st.Input, Value: st.Value}); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	return nil
}

// Player replays a scenario against a live environment.
type Player struct {
	sc         *Scenario
	dispatcher *bridge.Dispatcher
	next       int
}

// NewPlayer replays sc; input steps go to d.
func NewPlayer(sc *Scenario, d *bridge.Dispatcher) *Player {
	return &Player{sc: sc, dispatcher: d}
}

// Advance applies every step due at or before now and returns them. Steps were
// checked by Parse, so errors here are not expected and are returned as is.
func (p *Player) Advance(now time.Duration, env *fcs.Environment) ([]Step, error) {
	var applied []Step
	for p.next < len(p.sc.Steps) && p.sc.Steps[p.next].At <= now {
		st := p.sc.Steps[p.next]
		p.next++
		if err := apply(st, env, p.dispatcher); err != nil {
			return applied, fmt.Errorf("apply %s at %v: %w", st.Action, st.At, err)
		}
		applied = append(applied, st)
	}
	return applied, nil
}

// Done reports whether every step has been applied and the scenario duration has elapsed.
func (p *Player) Done(now time.Duration) bool {
	return p.next >= len(p.sc.Steps) && now >= p.sc.End()
}
