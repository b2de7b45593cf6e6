package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for address verification.
type Metrics struct {
	Outcomes          *prometheus.CounterVec
	Decisions         *prometheus.CounterVec
	RemoteLatency     *prometheus.HistogramVec
	StaleResults      prometheus.Counter
	PendingRejections prometheus.Counter
	BreakerState      prometheus.Gauge
	BreakerSkipped    prometheus.Counter
}

// New creates and registers verification metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers metrics on reg. Tests pass a fresh registry so
// repeated construction does not panic on duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "avelements_verification_outcomes_total",
			Help: "Verification attempts by classified outcome",
		}, []string{"outcome"}),
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "avelements_verification_decisions_total",
			Help: "Policy decisions by verdict and reason",
		}, []string{"verdict", "reason"}),
		RemoteLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "avelements_verification_remote_duration_seconds",
			Help:    "Latency of calls to the verification service",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4},
		}, []string{"endpoint", "status"}),
		StaleResults: f.NewCounter(prometheus.CounterOpts{
			Name: "avelements_verification_stale_results_total",
			Help: "Verification results dropped because their attempt was superseded",
		}),
		PendingRejections: f.NewCounter(prometheus.CounterOpts{
			Name: "avelements_verification_pending_rejections_total",
			Help: "Submit attempts ignored while a verification was in flight",
		}),
		BreakerState: f.NewGauge(prometheus.GaugeOpts{
			Name: "avelements_verification_circuit_breaker_state",
			Help: "Verification service circuit breaker state (0=closed, 1=open)",
		}),
		BreakerSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "avelements_verification_circuit_breaker_skipped_total",
			Help: "Verification calls skipped because the circuit breaker was open",
		}),
	}
}

// ObserveOutcome increments the outcome counter.
func (m *Metrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(outcome).Inc()
}

// ObserveDecision increments the decision counter.
func (m *Metrics) ObserveDecision(verdict, reason string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(verdict, reason).Inc()
}

// ObserveRemote records the duration of one remote call.
func (m *Metrics) ObserveRemote(endpoint, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RemoteLatency.WithLabelValues(endpoint, status).Observe(seconds)
}

func (m *Metrics) IncStaleResults() {
	if m == nil {
		return
	}
	m.StaleResults.Inc()
}

func (m *Metrics) IncPendingRejections() {
	if m == nil {
		return
	}
	m.PendingRejections.Inc()
}

func (m *Metrics) IncBreakerSkipped() {
	if m == nil {
		return
	}
	m.BreakerSkipped.Inc()
}

// SetBreakerState sets the circuit breaker gauge.
func (m *Metrics) SetBreakerState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerState.Set(1)
	} else {
		m.BreakerState.Set(0)
	}
}
