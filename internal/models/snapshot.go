// Package models defines the snapshot record exchanged between the agent and
// the collector. It carries no wire concerns; see package protocol for the
// frame encoding.
package models

import (
	"fmt"
	"strconv"
)

// Unavailable marks a Snapshot field whose metric could not be sampled.
// It travels through the normal data path and is encoded numerically.
const Unavailable = -1

// Snapshot is a single point-in-time reading of host resource utilization.
// Integer fields are signed so providers can report Unavailable; snapshots
// decoded from the wire are always non-negative.
type Snapshot struct {
	CPULoad         float64 // percent, one decimal survives the wire
	MemAvailable    int64   // megabytes
	ProcessesActive int64
}

// String renders the snapshot the way the collector displays it.
//
// Values are printed as they are. An Unavailable field that crossed the wire
// arrives as its 32-bit or 16-bit two's-complement image, so 4294967295 for
// memory or processes and 6552.6 for CPU mean "not collected" on the agent.
func (s Snapshot) String() string {
	return fmt.Sprintf("[CPU Load: %s%% | RAM Available: %dMB | Active Processes: %d]",
		strconv.FormatFloat(s.CPULoad, 'f', -1, 64), s.MemAvailable, s.ProcessesActive)
}

// Missing returns the names of fields that carry a negative sentinel.
func (s Snapshot) Missing() []string {
	var missing []string
	if s.CPULoad < 0 {
		missing = append(missing, "cpu")
	}
	if s.MemAvailable < 0 {
		missing = append(missing, "memory")
	}
	if s.ProcessesActive < 0 {
		missing = append(missing, "processes")
	}
	return missing
}
