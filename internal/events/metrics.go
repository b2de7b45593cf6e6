package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for event delivery.
type Metrics struct {
	Published           *prometheus.CounterVec
	Dropped             *prometheus.CounterVec
	PersistFailures     prometheus.Counter
	CircuitBreakerState prometheus.Gauge
	BufferDepth         prometheus.Gauge
}

// NewMetrics registers event metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "avelements_events_published_total",
			Help: "Events delivered to the downstream store",
		}, []string{"event"}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "avelements_events_dropped_total",
			Help: "Events dropped before delivery, by reason",
		}, []string{"reason"}),
		PersistFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "avelements_events_persist_failures_total",
			Help: "Failed writes to the downstream store",
		}),
		CircuitBreakerState: f.NewGauge(prometheus.GaugeOpts{
			Name: "avelements_events_circuit_breaker_state",
			Help: "Event store circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
		BufferDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "avelements_events_buffer_depth",
			Help: "Events waiting in the publisher buffer",
		}),
	}
}

func (m *Metrics) incPublished(name string) {
	if m != nil {
		m.Published.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) incDropped(reason string) {
	if m != nil {
		m.Dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) incPersistFailures() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}

func (m *Metrics) setCircuitBreakerState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitBreakerState.Set(1)
	} else {
		m.CircuitBreakerState.Set(0)
	}
}

func (m *Metrics) setBufferDepth(n int) {
	if m != nil {
		m.BufferDepth.Set(float64(n))
	}
}
