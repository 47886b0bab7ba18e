// Package bridge is the contract between the flight control computers and a host
// simulator. The host delivers control inputs as events; a Dispatcher keeps the
// last value of each input and applies them to the environment every frame.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sweeney/fbw-supervisor/internal/arinc429"
	"github.com/sweeney/fbw-supervisor/internal/fcs"
	"github.com/sweeney/fbw-supervisor/internal/mathx"
)

// ErrUnknownInput is returned for input names the dispatcher does not handle.
var ErrUnknownInput = errors.New("unknown input")

// InputEvent is one control input received from the host.
// Buttons are pressed when Value >= 0.5.
type InputEvent struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Output is what the computers publish back to the host after a frame.
type Output struct {
	Time   time.Duration
	Frames [fcs.NumComputers]arinc429.Frame
}

// Host is a connection to the host simulator.
type Host interface {
	Connect(ctx context.Context) error
	// Read returns the input events received since the last call. It must not block
	// waiting for new events.
	Read(ctx context.Context) ([]InputEvent, error)
	Write(ctx context.Context, out Output) error
	Close() error
}

// Axis inputs.
const (
	CaptPitch  = "capt_pitch"
	CaptRoll   = "capt_roll"
	FoPitch    = "fo_pitch"
	FoRoll     = "fo_roll"
	SpeedBrake = "speed_brake"
	RudderTrim = "rudder_trim"
)

// Button inputs. Computer pushbuttons are named after the computer with a "_pb"
// suffix, e.g. "elac1_pb".
const (
	CaptTakeover        = "capt_takeover"
	FoTakeover          = "fo_takeover"
	Autopilot           = "autopilot"
	GroundSpoilersArmed = "ground_spoilers_armed"

	pushbuttonSuffix = "_pb"
)

var axisRange = map[string][2]float64{
	CaptPitch:  {-1, 1},
	CaptRoll:   {-1, 1},
	FoPitch:    {-1, 1},
	FoRoll:     {-1, 1},
	SpeedBrake: {0, 1},
	RudderTrim: {-1, 1},
}

// Pushbutton returns the input name of a computer's engage pushbutton.
func Pushbutton(id fcs.ID) string {
	return strings.ToLower(id.String()) + pushbuttonSuffix
}

// Known reports whether name is an input the dispatcher handles.
func Known(name string) bool {
	if _, ok := axisRange[name]; ok {
		return true
	}
	_, _, ok := button(name)
	return ok
}

// button resolves a button name to either a fixed button or a computer pushbutton.
func button(name string) (string, fcs.ID, bool) {
	switch name {
	case CaptTakeover, FoTakeover, Autopilot, GroundSpoilersArmed:
		return name, 0, true
	}
	if unit, ok := strings.CutSuffix(name, pushbuttonSuffix); ok {
		if id, err := fcs.ParseID(unit); err == nil {
			return pushbuttonSuffix, id, true
		}
	}
	return "", 0, false
}

// Dispatcher owns the last received value of every input.
type Dispatcher struct {
	axes        map[string]float64
	buttons     map[string]bool
	pushbuttons map[fcs.ID]bool
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		axes:        make(map[string]float64),
		buttons:     make(map[string]bool),
		pushbuttons: make(map[fcs.ID]bool),
	}
}

// Dispatch records every event. Unknown inputs are skipped and reported together.
func (d *Dispatcher) Dispatch(events ...InputEvent) error {
	var errs []error
	for _, ev := range events {
		if r, ok := axisRange[ev.Name]; ok {
			d.axes[ev.Name] = mathx.Clamp(ev.Value, r[0], r[1])
			continue
		}
		kind, id, ok := button(ev.Name)
		if !ok {
			errs = append(errs, fmt.Errorf("dispatch %q: %w", ev.Name, ErrUnknownInput))
			continue
		}
		pressed := ev.Value >= 0.5
		if kind == pushbuttonSuffix {
			d.pushbuttons[id] = pressed
		} else {
			d.buttons[kind] = pressed
		}
	}
	return errors.Join(errs...)
}

// Axis returns the last value received for an axis input.
func (d *Dispatcher) Axis(name string) (float64, bool) {
	v, ok := d.axes[name]
	return v, ok
}

// Button returns the last state received for a button input.
func (d *Dispatcher) Button(name string) (bool, bool) {
	kind, id, ok := button(name)
	if !ok {
		return false, false
	}
	if kind == pushbuttonSuffix {
		v, ok := d.pushbuttons[id]
		return v, ok
	}
	v, ok := d.buttons[kind]
	return v, ok
}

// Apply writes every received input into env. Inputs never received leave env
// untouched.
func (d *Dispatcher) Apply(env *fcs.Environment) {
	axes := map[string]*float64{
		CaptPitch:  &env.CaptPitch,
		CaptRoll:   &env.CaptRoll,
		FoPitch:    &env.FoPitch,
		FoRoll:     &env.FoRoll,
		SpeedBrake: &env.SpeedBrake,
		RudderTrim: &env.RudderTrim,
	}
	for name, v := range d.axes {
		*axes[name] = v
	}
	buttons := map[string]*bool{
		CaptTakeover:        &env.CaptTakeover,
		FoTakeover:          &env.FoTakeover,
		Autopilot:           &env.Autopilot,
		GroundSpoilersArmed: &env.GroundSpoilersArmed,
	}
	for name, v := range d.buttons {
		*buttons[name] = v
	}
	for id, pressed := range d.pushbuttons {
		fcs.Set(&env.PushbuttonOff, id, !pressed)
	}
}

// Sync exchanges one frame with the host: pending inputs go to d, out goes to the
// host. Unknown inputs are logged and skipped.
func Sync(ctx context.Context, h Host, d *Dispatcher, out Output) error {
	events, err := h.Read(ctx)
	if err != nil {
		return fmt.Errorf("read host: %w", err)
	}
	if err := d.Dispatch(events...); err != nil {
		log.Printf("bridge: %v", err)
	}
	if err := h.Write(ctx, out); err != nil {
		return fmt.Errorf("write host: %w", err)
	}
	return nil
}
