// Package logic contains the temporal building blocks shared by every flight control
// computer: edge detection, debounced confirmation, latches and hysteresis.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injected as a per-update delta.
package logic

import "time"

// PulseNode emits a one-cycle pulse when its input crosses the configured edge.
type PulseNode struct {
	rising bool
	last   bool
}

// NewPulseNode creates an edge detector. The previous input starts false for a
// rising-edge node and true for a falling-edge node, so an input that is already
// asserted on the first update counts as an edge.
func NewPulseNode(rising bool) *PulseNode {
	return &PulseNode{rising: rising, last: !rising}
}

// Update returns true exactly once per transition, however long the input is held.
func (p *PulseNode) Update(in bool) bool {
	var out bool
	if p.rising {
		out = in && !p.last
	} else {
		out = !in && p.last
	}
	p.last = in
	return out
}

// ConfirmNode delays one polarity of its input.
// While the input matches the confirmed polarity, time accumulates and the output
// adopts the input once the delay is reached. Any other input is passed through
// immediately and restarts the timer.
type ConfirmNode struct {
	rising bool
	delay  time.Duration
	timer  time.Duration
	output bool
}

// NewConfirmNode creates a confirmation node. A rising node confirms true inputs,
// a falling node confirms false inputs.
func NewConfirmNode(rising bool, delay time.Duration) *ConfirmNode {
	return &ConfirmNode{rising: rising, delay: delay, output: !rising}
}

// Update advances the node by dt and returns its output.
func (c *ConfirmNode) Update(in bool, dt time.Duration) bool {
	if in == c.rising {
		c.timer += dt
		if c.timer >= c.delay {
			c.output = in
		}
	} else {
		c.timer = 0
		c.output = in
	}
	return c.output
}

// Output returns the last computed output.
func (c *ConfirmNode) Output() bool {
	return c.output
}

// Reset restores the initial state.
func (c *ConfirmNode) Reset() {
	c.timer = 0
	c.output = !c.rising
}

// SRFlipFlop is a bistable latch.
type SRFlipFlop struct {
	setDominant bool
	output      bool
}

// NewSRFlipFlop creates a latch; setDominant decides the output when set and reset
// are asserted together.
func NewSRFlipFlop(setDominant bool) *SRFlipFlop {
	return &SRFlipFlop{setDominant: setDominant}
}

func (f *SRFlipFlop) Update(set, reset bool) bool {
	switch {
	case set && reset:
		f.output = f.setDominant
	case set:
		f.output = true
	case reset:
		f.output = false
	}
	return f.output
}

func (f *SRFlipFlop) Output() bool {
	return f.output
}

// HysteresisNode turns on at or above high and off at or below low.
type HysteresisNode struct {
	low, high float64
	output    bool
}

func NewHysteresisNode(low, high float64) *HysteresisNode {
	return &HysteresisNode{low: low, high: high}
}

func (h *HysteresisNode) Update(v float64) bool {
	if v >= h.high {
		h.output = true
	} else if v <= h.low {
		h.output = false
	}
	return h.output
}
