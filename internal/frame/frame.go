// Package frame defines the per-cycle context every computer update receives.
package frame

import "time"

// Context is supplied by the host once per simulation frame.
//
// Delta must be non-negative; it is not checked.
type Context struct {
	Delta          time.Duration
	SimulationTime time.Duration
	FaultInjected  bool
	Powered        bool
}

// Powered returns a powered, fault-free context for delta dt at simulation time t.
func Powered(dt, t time.Duration) Context {
	return Context{Delta: dt, SimulationTime: t, Powered: true}
}
