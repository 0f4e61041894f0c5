package induction

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of a session.
type Metrics struct {
	Registry *prometheus.Registry

	CallsTotal       *prometheus.CounterVec
	CallDuration     *prometheus.HistogramVec
	DiagnosticsTotal *prometheus.CounterVec
	PhaseDuration    *prometheus.HistogramVec
	KernelClauses    prometheus.Gauge
	Generalisations  prometheus.Gauge
	AnswersTotal     prometheus.Counter
}

// NewMetrics registers the collectors in a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		CallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "induction_solver_calls_total",
				Help: "Total number of grounder and solver round trips",
			},
			[]string{"status"},
		),
		CallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "induction_solver_call_seconds",
				Help:    "Duration of grounder and solver round trips in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		DiagnosticsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "induction_grounder_diagnostics_total",
				Help: "Total number of grounder diagnostic lines by kind",
			},
			[]string{"kind"},
		),
		PhaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "induction_phase_seconds",
				Help:    "Duration of the phases of the learning loop in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
		KernelClauses: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "induction_kernel_clauses",
				Help: "Number of kernel clauses of the last grounding",
			},
		),
		Generalisations: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "induction_generalised_clauses",
				Help: "Number of generalised clauses of the last grounding after pruning",
			},
		),
		AnswersTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "induction_answers_total",
				Help: "Total number of answers recorded",
			},
		),
	}
}

// RecordCall records one solver round trip.
func (m *Metrics) RecordCall(status string, d time.Duration) {
	m.CallsTotal.WithLabelValues(status).Inc()
	m.CallDuration.WithLabelValues(status).Observe(d.Seconds())
}

// RecordDiagnostic records a grounder diagnostic line.
func (m *Metrics) RecordDiagnostic(kind string) {
	m.DiagnosticsTotal.WithLabelValues(kind).Inc()
}

// RecordPhase records the duration of a phase.
func (m *Metrics) RecordPhase(phase string, d time.Duration) {
	m.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// WriteToTextfile writes the metrics in the text exposition format.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
