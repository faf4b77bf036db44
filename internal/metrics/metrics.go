package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the relay's instruments.
type Metrics struct {
	registry *prometheus.Registry

	// AppendsTotal counts entries accepted into the buffer.
	AppendsTotal prometheus.Counter
	// DroppedTotal counts entries evicted under capacity pressure.
	DroppedTotal prometheus.Counter
	// RejectedTotal counts append payloads refused by validation.
	RejectedTotal prometheus.Counter
	// BufferEntries tracks the number of currently retained entries.
	BufferEntries prometheus.Gauge
	// Consumers tracks currently connected delivery consumers by transport.
	Consumers *prometheus.GaugeVec
}

// New builds a Metrics with a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		AppendsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "siphon_appends_total",
			Help: "Total log entries appended to the buffer.",
		}),
		DroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "siphon_dropped_total",
			Help: "Total log entries evicted due to buffer overflow.",
		}),
		RejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "siphon_rejected_total",
			Help: "Total append payloads rejected by validation.",
		}),
		BufferEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "siphon_buffer_entries",
			Help: "Log entries currently retained in the buffer.",
		}),
		Consumers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "siphon_consumers",
			Help: "Currently connected delivery consumers.",
		}, []string{"transport"}),
	}
	reg.MustRegister(m.AppendsTotal, m.DroppedTotal, m.RejectedTotal, m.BufferEntries, m.Consumers)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
