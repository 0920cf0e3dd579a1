package favorites

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Persists *prometheus.CounterVec
	Items    prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Persists: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "favorites_persist_total",
				Help: "Favorites writes by outcome",
			},
			[]string{"outcome"},
		),
		Items: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "favorites_items",
				Help: "Products currently in the favorites collection",
			},
		),
	}

	reg.MustRegister(m.Persists, m.Items)
	return m
}

func (m *Metrics) observe(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Persists.WithLabelValues(outcome).Inc()
}
