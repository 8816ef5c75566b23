package provider

import (
	"context"

	"github.com/Guliveer/syslens/internal/models"
)

// Metric names, one per Snapshot field.
const (
	MetricCPU       = "cpu"
	MetricMemory    = "memory"
	MetricProcesses = "processes"
)

// Reading is one sampled metric, ready to be stored in a Snapshot.
// The concrete types are CPULoad, MemAvailable and ProcessCount.
type Reading interface {
	// Metric reports which Snapshot field the reading fills.
	Metric() string
	apply(s *models.Snapshot)
}

// CPULoad is overall CPU load in percent.
type CPULoad float64

// Metric returns MetricCPU.
func (CPULoad) Metric() string { return MetricCPU }

func (r CPULoad) apply(s *models.Snapshot) { s.CPULoad = float64(r) }

// MemAvailable is available memory in megabytes.
type MemAvailable int64

// Metric returns MetricMemory.
func (MemAvailable) Metric() string { return MetricMemory }

func (r MemAvailable) apply(s *models.Snapshot) { s.MemAvailable = int64(r) }

// ProcessCount is the number of active processes.
type ProcessCount int64

// Metric returns MetricProcesses.
func (ProcessCount) Metric() string { return MetricProcesses }

func (r ProcessCount) apply(s *models.Snapshot) { s.ProcessesActive = int64(r) }

// Collector samples one metric of a Snapshot.
type Collector interface {
	// Name returns the metric this collector is registered for.
	Name() string

	// Collect samples the metric. It may block for a sampling window.
	Collect(ctx context.Context) (Reading, error)

	// IsAvailable reports whether the metric can be sampled on this
	// platform. Unavailable collectors are never registered.
	IsAvailable() bool
}
