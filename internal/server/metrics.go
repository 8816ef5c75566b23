package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks collector activity on a private prometheus registry, so
// several servers (and tests) can coexist in one process.
type Metrics struct {
	handler http.Handler

	accepted       prometheus.Counter
	acceptErrors   prometheus.Counter
	decoded        prometheus.Counter
	shortReads     prometheus.Counter
	readErrors     prometheus.Counter
	displayErrors  prometheus.Counter
	activeHandlers prometheus.Gauge
}

// NewMetrics creates the collector metrics and their registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		accepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "syslens_connections_accepted_total",
			Help: "Connections accepted by the collector.",
		}),
		acceptErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "syslens_accept_errors_total",
			Help: "Failed accept calls.",
		}),
		decoded: factory.NewCounter(prometheus.CounterOpts{
			Name: "syslens_frames_decoded_total",
			Help: "Frames read and decoded successfully.",
		}),
		shortReads: factory.NewCounter(prometheus.CounterOpts{
			Name: "syslens_short_reads_total",
			Help: "Connections closed by the peer before a full frame arrived.",
		}),
		readErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "syslens_read_errors_total",
			Help: "Frame reads that failed for reasons other than a short frame.",
		}),
		displayErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "syslens_display_errors_total",
			Help: "Decoded snapshots that could not be written to the output.",
		}),
		activeHandlers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "syslens_active_handlers",
			Help: "Connection handlers currently running.",
		}),
	}
}

// Handler serves the metrics in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}
