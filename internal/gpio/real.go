//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads panel lines from a GPIO chip.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines *gpiocdev.Lines
	vals  []int
}

// NewRealReader requests every line on the named chip (e.g. "gpiochip0").
// Buttons pull the line low when pressed, so lines are requested active-low with
// pull-ups.
func NewRealReader(chipName string, lines []Line) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("fbw-bench"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	offsets := make([]int, len(lines))
	for i, l := range lines {
		offsets[i] = l.Offset
	}
	req, err := chip.RequestLines(offsets, gpiocdev.AsInput, gpiocdev.AsActiveLow, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request panel lines %v: %w", offsets, err)
	}

	return &RealReader{
		chip:  chip,
		lines: req,
		vals:  make([]int, len(lines)),
	}, nil
}

// Read returns the logical state of every line.
func (r *RealReader) Read() ([]bool, error) {
	if err := r.lines.Values(r.vals); err != nil {
		return nil, fmt.Errorf("read panel lines: %w", err)
	}
	out := make([]bool, len(r.vals))
	for i, v := range r.vals {
		out[i] = v == 1
	}
	return out, nil
}

// Close releases GPIO resources.
// Lines go back to input with pull-down (the Pi boot default) before closing so a
// rig left connected does not hold pins in unexpected states during early boot.
func (r *RealReader) Close() error {
	var errs []error

	if r.lines != nil {
		if err := r.lines.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure panel lines: %w", err))
		}
		if err := r.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close panel lines: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
