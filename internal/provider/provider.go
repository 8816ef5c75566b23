// Package provider supplies Snapshots to the sender agent. The core only
// depends on the Provider interface; System samples the local host through
// gopsutil, whose per-OS implementations are selected at build time.
package provider

import (
	"context"

	"github.com/Guliveer/syslens/internal/models"
)

// Provider produces a Snapshot on demand. Sampling may block for a
// measurable time. Metrics that cannot be sampled are reported as
// models.Unavailable rather than as an error.
type Provider interface {
	Snapshot(ctx context.Context) models.Snapshot
}

// Func adapts an ordinary function to the Provider interface.
type Func func(ctx context.Context) models.Snapshot

// Snapshot calls f(ctx).
func (f Func) Snapshot(ctx context.Context) models.Snapshot { return f(ctx) }

// Static returns a Provider that always yields s.
func Static(s models.Snapshot) Provider {
	return Func(func(context.Context) models.Snapshot { return s })
}
