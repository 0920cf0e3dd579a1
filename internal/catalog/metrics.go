package catalog

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK          = "ok"
	outcomeUnavailable = "unavailable"
	outcomeBadStatus   = "bad_status"
	outcomeMalformed   = "malformed"
	outcomeError       = "error"
)

type Metrics struct {
	Fetches  *prometheus.CounterVec
	Duration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_fetch_total",
				Help: "Catalog fetches by outcome",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "catalog_fetch_duration_seconds",
				Help: "Catalog fetch latency",
			},
		),
	}

	reg.MustRegister(m.Fetches, m.Duration)
	return m
}

func (m *Metrics) observe(err error, d time.Duration) {
	if m == nil {
		return
	}
	m.Duration.Observe(d.Seconds())
	m.Fetches.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrCatalogUnavailable):
		return outcomeUnavailable
	case errors.Is(err, ErrCatalogBadStatus):
		return outcomeBadStatus
	case errors.Is(err, ErrCatalogMalformed):
		return outcomeMalformed
	default:
		return outcomeError
	}
}
