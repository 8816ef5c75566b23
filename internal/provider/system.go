package provider

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/syslens/internal/models"
)

// System samples the local host.
type System struct {
	registry *Registry
}

// NewSystem creates a provider backed by the cpu, memory and process
// collectors. cpuWindow controls how long CPU sampling blocks.
func NewSystem(cpuWindow time.Duration, logger *zap.Logger) *System {
	registry := NewRegistry(logger.Named("provider"))
	registry.Register(NewCPUCollector(cpuWindow))
	registry.Register(NewMemoryCollector())
	registry.Register(NewProcessCollector())
	return NewFromRegistry(registry)
}

// NewFromRegistry creates a provider over an already populated registry.
func NewFromRegistry(registry *Registry) *System {
	return &System{registry: registry}
}

// Snapshot samples every registered collector. Any metric that failed or
// has no collector is reported as models.Unavailable.
func (s *System) Snapshot(ctx context.Context) models.Snapshot {
	return s.registry.Collect(ctx)
}
