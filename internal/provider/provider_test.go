package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Guliveer/syslens/internal/models"
)

type fakeCollector struct {
	name      string
	reading   Reading
	err       error
	available bool
}

func (f fakeCollector) Name() string { return f.name }

func (f fakeCollector) Collect(context.Context) (Reading, error) { return f.reading, f.err }

func (f fakeCollector) IsAvailable() bool { return f.available }

var (
	_ Collector = (*CPUCollector)(nil)
	_ Collector = (*MemoryCollector)(nil)
	_ Collector = (*ProcessCollector)(nil)
	_ Provider  = (*System)(nil)
)

func TestRegistry_RegisterSkipsUnavailable(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Register(fakeCollector{name: MetricCPU, available: true})
	r.Register(fakeCollector{name: MetricMemory, available: false})

	assert.Equal(t, []string{MetricCPU}, r.Metrics())
}

func TestRegistry_RegisterReplacesDuplicate(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Register(fakeCollector{name: MetricCPU, reading: CPULoad(1), available: true})
	r.Register(fakeCollector{name: MetricCPU, reading: CPULoad(2), available: true})

	assert.Equal(t, 2.0, r.Collect(context.Background()).CPULoad)
}

func TestRegistry_CollectLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := NewRegistry(zap.New(core))
	r.Register(fakeCollector{name: MetricCPU, reading: CPULoad(12.5), available: true})
	r.Register(fakeCollector{name: MetricMemory, err: errors.New("no meminfo"), available: true})

	snap := r.Collect(context.Background())
	assert.Equal(t, 12.5, snap.CPULoad)
	assert.Equal(t, int64(models.Unavailable), snap.MemAvailable)
	require.Equal(t, 1, logs.FilterField(zap.String("metric", MetricMemory)).Len())
}

func TestRegistry_CollectRejectsMismatchedReadings(t *testing.T) {
	tests := []struct {
		name    string
		reading Reading
		logMsg  string
	}{
		{
			name:    "reading for another metric",
			reading: CPULoad(2048),
			logMsg:  "Collector returned a reading for another metric",
		},
		{
			name:    "no reading",
			reading: nil,
			logMsg:  "Collector returned no reading",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			r := NewRegistry(zap.New(core))
			r.Register(fakeCollector{name: MetricMemory, reading: tt.reading, available: true})
			r.Register(fakeCollector{name: MetricProcesses, reading: ProcessCount(7), available: true})

			snap := r.Collect(context.Background())
			assert.Equal(t, models.Snapshot{
				CPULoad:         models.Unavailable,
				MemAvailable:    models.Unavailable,
				ProcessesActive: 7,
			}, snap)

			entries := logs.FilterMessage(tt.logMsg).All()
			require.Len(t, entries, 1)
			assert.Equal(t, MetricMemory, entries[0].ContextMap()["metric"])
		})
	}
}

func TestSystem_SnapshotSentinels(t *testing.T) {
	tests := []struct {
		name       string
		collectors []Collector
		want       models.Snapshot
	}{
		{
			name: "all collected",
			collectors: []Collector{
				fakeCollector{name: MetricCPU, reading: CPULoad(37.5), available: true},
				fakeCollector{name: MetricMemory, reading: MemAvailable(2048), available: true},
				fakeCollector{name: MetricProcesses, reading: ProcessCount(312), available: true},
			},
			want: models.Snapshot{CPULoad: 37.5, MemAvailable: 2048, ProcessesActive: 312},
		},
		{
			name: "memory failed",
			collectors: []Collector{
				fakeCollector{name: MetricCPU, reading: CPULoad(5), available: true},
				fakeCollector{name: MetricMemory, err: errors.New("boom"), available: true},
				fakeCollector{name: MetricProcesses, reading: ProcessCount(3), available: true},
			},
			want: models.Snapshot{CPULoad: 5, MemAvailable: models.Unavailable, ProcessesActive: 3},
		},
		{
			name: "processes unavailable on platform",
			collectors: []Collector{
				fakeCollector{name: MetricCPU, reading: CPULoad(0), available: true},
				fakeCollector{name: MetricMemory, reading: MemAvailable(64), available: true},
				fakeCollector{name: MetricProcesses, available: false},
			},
			want: models.Snapshot{CPULoad: 0, MemAvailable: 64, ProcessesActive: models.Unavailable},
		},
		{
			name:       "nothing registered",
			collectors: nil,
			want:       models.Snapshot{CPULoad: models.Unavailable, MemAvailable: models.Unavailable, ProcessesActive: models.Unavailable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(zap.NewNop())
			for _, c := range tt.collectors {
				r.Register(c)
			}
			assert.Equal(t, tt.want, NewFromRegistry(r).Snapshot(context.Background()))
		})
	}
}

func TestStatic(t *testing.T) {
	want := models.Snapshot{CPULoad: 1.5, MemAvailable: 2, ProcessesActive: 3}
	assert.Equal(t, want, Static(want).Snapshot(context.Background()))
}

func TestNewCPUCollector_DefaultWindow(t *testing.T) {
	assert.Equal(t, DefaultCPUWindow, NewCPUCollector(0).window)
	assert.Equal(t, time.Second, NewCPUCollector(time.Second).window)
}

// TestSystem_LocalHost samples the machine running the tests.
func TestSystem_LocalHost(t *testing.T) {
	if testing.Short() {
		t.Skip("samples the host")
	}

	snap := NewSystem(50*time.Millisecond, zap.NewNop()).Snapshot(context.Background())
	if snap.CPULoad != models.Unavailable {
		assert.GreaterOrEqual(t, snap.CPULoad, 0.0)
		assert.LessOrEqual(t, snap.CPULoad, 100.0)
	}
	if snap.ProcessesActive != models.Unavailable {
		assert.Positive(t, snap.ProcessesActive)
	}
}
