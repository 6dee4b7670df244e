package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the custody lifecycle.
type Metrics struct {
	// Operation results by operation and outcome ("ok" or an error code)
	Operations *prometheus.CounterVec

	// Operation latency by operation
	OperationLatency *prometheus.HistogramVec

	// Status changes by from/to status
	Transitions *prometheus.CounterVec

	// Regulator check decisions ("exempt", "hazard_analysis")
	CheckDecisions *prometheus.CounterVec

	// Saga compensations after a failed retailer delivery
	Compensations prometheus.Counter

	// Party lookups during checks by source role
	LookupLatency *prometheus.HistogramVec
}

// New registers the lifecycle metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "supply_operations_total",
			Help: "Total custody operations by operation and outcome",
		}, []string{"operation", "outcome"}),

		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "supply_operation_duration_seconds",
			Help:    "Duration of custody operations including store round trips",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),

		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "supply_listing_transitions_total",
			Help: "Listing status changes by previous and new status",
		}, []string{"from", "to"}),

		CheckDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "supply_check_decisions_total",
			Help: "Regulator check outcomes",
		}, []string{"decision"}),

		Compensations: factory.NewCounter(prometheus.CounterOpts{
			Name: "supply_transfer_compensations_total",
			Help: "Retailer transfers reverted after the delivery step failed",
		}),

		LookupLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "supply_party_lookup_duration_seconds",
			Help:    "Duration of party directory lookups by role",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}, []string{"role"}), // role: "supplier", "regulator", "retailer"
	}
}

// ObserveOperation records one operation's outcome and latency.
func (m *Metrics) ObserveOperation(operation, outcome string, d time.Duration) {
	if m != nil {
		m.Operations.WithLabelValues(operation, outcome).Inc()
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementTransition(from, to string) {
	if m != nil {
		m.Transitions.WithLabelValues(from, to).Inc()
	}
}

func (m *Metrics) IncrementCheckDecision(decision string) {
	if m != nil {
		m.CheckDecisions.WithLabelValues(decision).Inc()
	}
}

func (m *Metrics) IncrementCompensations() {
	if m != nil {
		m.Compensations.Inc()
	}
}

func (m *Metrics) ObserveLookupLatency(role string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(role).Observe(d.Seconds())
	}
}
