// Package vote reconciles redundant same-meaning signals into one authoritative value.
package vote

import (
	"time"

	"github.com/sweeney/fbw-supervisor/internal/arinc429"
	"github.com/sweeney/fbw-supervisor/internal/logic"
	"github.com/sweeney/fbw-supervisor/internal/mathx"
)

// NoSource marks a Consolidated value that no candidate contributed to.
const NoSource = -1

// Consolidated is the result of a vote.
type Consolidated[T arinc429.Payload] struct {
	Value T
	Valid bool
	// Source is the index of the selected candidate, NoSource when none was usable.
	// DualSensor reports 2 when both sources were combined.
	Source int
}

// Word re-encodes the result as a bus word: NormalOperation when valid,
// NoComputedData otherwise.
func (c Consolidated[T]) Word() arinc429.Word[T] {
	if c.Valid {
		return arinc429.NewWord(c.Value, arinc429.NormalOperation)
	}
	return arinc429.NewWord(c.Value, arinc429.NoComputedData)
}

// CountValid returns how many words are tagged NormalOperation.
func CountValid[T arinc429.Payload](words ...arinc429.Word[T]) int {
	n := 0
	for _, w := range words {
		if w.IsNormalOperation() {
			n++
		}
	}
	return n
}

// SelectFirstValid returns the first candidate tagged NormalOperation.
func SelectFirstValid[T arinc429.Payload](candidates ...arinc429.Word[T]) Consolidated[T] {
	for i, w := range candidates {
		if w.IsNormalOperation() {
			return Consolidated[T]{Value: w.Value(), Valid: true, Source: i}
		}
	}
	return Consolidated[T]{Source: NoSource}
}

// Candidate is one source of an engagement-ordered vote.
type Candidate[T arinc429.Payload] struct {
	Word    arinc429.Word[T]
	Engaged bool
}

// ByEngagement orders candidates engaged-first, keeping the fixed order within each
// group, and selects the first valid one. Source indexes the original slice.
func ByEngagement[T arinc429.Payload](candidates ...Candidate[T]) Consolidated[T] {
	for pass := 0; pass < 2; pass++ {
		wantEngaged := pass == 0
		for i, c := range candidates {
			if c.Engaged == wantEngaged && c.Word.IsNormalOperation() {
				return Consolidated[T]{Value: c.Word.Value(), Valid: true, Source: i}
			}
		}
	}
	return Consolidated[T]{Source: NoSource}
}

// SidestickOrder sums the two sidestick deflections, ignoring a disabled side, and
// clamps the result to [-1, 1].
func SidestickOrder(capt, fo float64, captDisabled, foDisabled bool) float64 {
	var sum float64
	if !captDisabled {
		sum += capt
	}
	if !foDisabled {
		sum += fo
	}
	return mathx.Clamp(sum, -1, 1)
}

// DualInputThreshold is the deflection above which a sidestick counts as in use.
const DualInputThreshold = 0.05

// DualInputDelay is how long both sticks must be in use before dual input is reported.
const DualInputDelay = 500 * time.Millisecond

// DualInputMonitor confirms simultaneous use of both sidesticks.
type DualInputMonitor struct {
	confirm *logic.ConfirmNode
}

func NewDualInputMonitor() *DualInputMonitor {
	return &DualInputMonitor{confirm: logic.NewConfirmNode(true, DualInputDelay)}
}

// Update returns true once both enabled sticks have been deflected for DualInputDelay.
func (m *DualInputMonitor) Update(capt, fo float64, captDisabled, foDisabled bool, dt time.Duration) bool {
	both := !captDisabled && !foDisabled &&
		mathx.Abs(capt) > DualInputThreshold && mathx.Abs(fo) > DualInputThreshold
	return m.confirm.Update(both, dt)
}

func (m *DualInputMonitor) Reset() {
	m.confirm.Reset()
}
