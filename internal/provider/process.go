// Active process count collector.
package provider

import (
	"context"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessCollector counts the processes currently known to the kernel.
type ProcessCollector struct{}

// NewProcessCollector creates a new process collector.
func NewProcessCollector() *ProcessCollector {
	return &ProcessCollector{}
}

// Name returns the collector identifier.
func (c *ProcessCollector) Name() string { return MetricProcesses }

// Collect returns the number of live PIDs.
func (c *ProcessCollector) Collect(ctx context.Context) (Reading, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return ProcessCount(len(pids)), nil
}

// IsAvailable returns true: process listing is available on all platforms.
func (c *ProcessCollector) IsAvailable() bool { return true }
