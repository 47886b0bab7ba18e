package web

import (
	"encoding/json"

	"github.com/sweeney/fbw-supervisor/internal/fcs"
	"github.com/sweeney/fbw-supervisor/internal/status"
)

// ComputerStatus is the body of the per-computer endpoint.
type ComputerStatus struct {
	status.ComputerJSON
	Transitions int   `json:"transitions"`
	SimTimeMs   int64 `json:"sim_time_ms"`
}

// formatComputer reports false until the first frame has been stepped.
func formatComputer(snap status.Snapshot, id fcs.ID) ([]byte, bool) {
	for _, c := range snap.Computers {
		if c.Computer != id {
			continue
		}
		data, _ := json.MarshalIndent(ComputerStatus{
			ComputerJSON: status.Computer(c),
			Transitions:  snap.Transitions[id],
			SimTimeMs:    snap.SimTime.Milliseconds(),
		}, "", "  ")
		return data, true
	}
	return nil, false
}
