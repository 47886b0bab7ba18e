// Package gpio reads the cockpit panel discretes (takeover buttons, computer
// engage pushbuttons) of a bench rig from GPIO lines.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"errors"
	"slices"
	"strings"
)

// ErrUnsupported is returned where no GPIO character device exists.
var ErrUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Reader reads panel line states.
type Reader interface {
	// Read returns the logical state of every line, in the order the reader was
	// created with. true = pressed.
	Read() ([]bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Line is one panel discrete wired to a GPIO offset.
type Line struct {
	Name   string
	Offset int
}

// Lines turns a name->offset map into a list ordered by name.
func Lines(pins map[string]int) []Line {
	out := make([]Line, 0, len(pins))
	for name, off := range pins {
		out = append(out, Line{Name: name, Offset: off})
	}
	slices.SortFunc(out, func(a, b Line) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Names returns the line names in order.
func Names(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Name
	}
	return out
}
