package infer

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Samples     *prometheus.CounterVec
	Revisions   *prometheus.CounterVec
	ParseErrors prometheus.Counter
	Schemas     prometheus.Gauge
}

// NewMetrics creates the registry metrics and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schemagen_samples_total",
			Help: "Samples folded into each named schema.",
		}, []string{"schema"}),
		Revisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schemagen_schema_revisions_total",
			Help: "Times each named schema changed.",
		}, []string{"schema"}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schemagen_parse_errors_total",
			Help: "Samples rejected because they were not valid JSON.",
		}),
		Schemas: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schemagen_schemas",
			Help: "Named schemas currently held.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Samples, m.Revisions, m.ParseErrors, m.Schemas)
	}
	return m
}

func (m *Metrics) forget(name string) {
	m.Samples.DeleteLabelValues(name)
	m.Revisions.DeleteLabelValues(name)
}
