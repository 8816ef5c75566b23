// CPU load collector: compares two kernel counter readings taken one
// sampling window apart.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// DefaultCPUWindow is the time between the two counter readings.
const DefaultCPUWindow = 100 * time.Millisecond

// CPUCollector collects overall CPU load as a percentage.
type CPUCollector struct {
	window time.Duration
}

// NewCPUCollector creates a CPU collector measuring over window.
// A non-positive window falls back to DefaultCPUWindow.
func NewCPUCollector(window time.Duration) *CPUCollector {
	if window <= 0 {
		window = DefaultCPUWindow
	}
	return &CPUCollector{window: window}
}

// Name returns the collector identifier.
func (c *CPUCollector) Name() string { return MetricCPU }

// Collect blocks for the sampling window and returns the load.
func (c *CPUCollector) Collect(ctx context.Context) (Reading, error) {
	overall, err := cpu.PercentWithContext(ctx, c.window, false)
	if err != nil {
		return nil, err
	}
	if len(overall) == 0 {
		return nil, fmt.Errorf("no cpu reading")
	}
	return CPULoad(overall[0]), nil
}

// IsAvailable returns true: CPU metrics are available on all platforms.
func (c *CPUCollector) IsAvailable() bool { return true }
