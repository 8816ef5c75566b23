// Available memory collector, in megabytes.
package provider

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"
)

const bytesPerMB = 1024 * 1024

// MemoryCollector collects the amount of memory available to new
// processes without swapping.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Name returns the collector identifier.
func (c *MemoryCollector) Name() string { return MetricMemory }

// Collect returns available memory in whole megabytes.
func (c *MemoryCollector) Collect(ctx context.Context) (Reading, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return MemAvailable(v.Available / bytesPerMB), nil
}

// IsAvailable returns true: memory metrics are available on all platforms.
func (c *MemoryCollector) IsAvailable() bool { return true }
