package provider

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Guliveer/syslens/internal/models"
)

// Registry holds one collector per metric and samples them concurrently.
type Registry struct {
	collectors map[string]Collector
	logger     *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		collectors: make(map[string]Collector),
		logger:     logger,
	}
}

// Register adds c under its metric name, replacing any earlier collector
// for the same metric. Collectors unavailable on this platform are skipped
// and their metric stays models.Unavailable.
func (r *Registry) Register(c Collector) {
	if !c.IsAvailable() {
		r.logger.Warn("Collector not available, metric will be reported as unavailable",
			zap.String("metric", c.Name()))
		return
	}
	if _, dup := r.collectors[c.Name()]; dup {
		r.logger.Warn("Replacing collector", zap.String("metric", c.Name()))
	}
	r.collectors[c.Name()] = c
	r.logger.Debug("Registered collector", zap.String("metric", c.Name()))
}

// Collect runs every collector concurrently and stores each reading in a
// Snapshot whose fields start as models.Unavailable. A collector that
// fails, returns no reading, or returns a reading for a metric other than
// its own is logged and leaves its field unavailable.
func (r *Registry) Collect(ctx context.Context) models.Snapshot {
	snap := models.Snapshot{
		CPULoad:         models.Unavailable,
		MemAvailable:    models.Unavailable,
		ProcessesActive: models.Unavailable,
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, c := range r.collectors {
		wg.Add(1)
		go func(name string, col Collector) {
			defer wg.Done()
			reading, err := col.Collect(ctx)
			switch {
			case err != nil:
				r.logger.Warn("Collection failed",
					zap.String("metric", name),
					zap.Error(err))
				return
			case reading == nil:
				r.logger.Warn("Collector returned no reading", zap.String("metric", name))
				return
			case reading.Metric() != name:
				r.logger.Warn("Collector returned a reading for another metric",
					zap.String("metric", name),
					zap.String("got", reading.Metric()))
				return
			}
			mu.Lock()
			reading.apply(&snap)
			mu.Unlock()
		}(name, c)
	}
	wg.Wait()

	return snap
}

// Metrics returns the names of the registered metrics.
func (r *Registry) Metrics() []string {
	names := make([]string, 0, len(r.collectors))
	for name := range r.collectors {
		names = append(names, name)
	}
	return names
}
