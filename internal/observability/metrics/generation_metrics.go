package metrics

import "github.com/prometheus/client_golang/prometheus"

// GenerationMetrics counts bulk payment-generation outcomes.
type GenerationMetrics struct {
	created *prometheus.CounterVec
	skipped *prometheus.CounterVec
	runs    prometheus.Counter
}

func NewGenerationMetrics() (*GenerationMetrics, error) {
	m := &GenerationMetrics{
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubledger_generation_payments_created_total",
			Help: "Payments created by bulk generation, by currency.",
		}, []string{"currency"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubledger_generation_students_skipped_total",
			Help: "Students skipped during bulk generation, by reason.",
		}, []string{"reason"}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clubledger_generation_runs_total",
			Help: "Completed bulk generation commits.",
		}),
	}

	for _, c := range []prometheus.Collector{m.created, m.skipped, m.runs} {
		if err := prometheus.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *GenerationMetrics) RecordCreated(currency string) {
	if m == nil {
		return
	}
	m.created.WithLabelValues(currency).Inc()
}

func (m *GenerationMetrics) RecordSkipped(reason string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(reason).Inc()
}

func (m *GenerationMetrics) RecordRun() {
	if m == nil {
		return
	}
	m.runs.Inc()
}
