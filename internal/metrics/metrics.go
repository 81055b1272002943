// Package metrics exposes extraction counters in Prometheus format.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/linecap/internal/core"
)

const namespace = "linecap"

// Metrics holds the collectors for one process. It implements core.Observer
// so a Service can feed row counts into it directly.
type Metrics struct {
	registry *prometheus.Registry

	rows     *prometheus.CounterVec
	runs     *prometheus.CounterVec
	records  *prometheus.GaugeVec
	duration *prometheus.HistogramVec
}

// New creates a registry with the extraction collectors and the standard Go
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Rows classified, by layout and outcome.",
		}, []string{"layout", "outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Extraction runs, by layout and status.",
		}, []string{"layout", "status"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_records",
			Help:      "Records produced by the most recent run of a layout.",
		}, []string{"layout"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Extraction run duration.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"layout"}),
	}

	m.registry.MustRegister(
		m.rows, m.runs, m.records, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) RowAccepted(ev core.RowEvent) {
	outcome := "accepted"
	if ev.Replaced {
		outcome = "replaced"
	}
	m.rows.WithLabelValues(ev.Layout, outcome).Inc()
}

func (m *Metrics) RowRejected(ev core.RowEvent) {
	m.rows.WithLabelValues(ev.Layout, ev.Verdict.Reason.String()).Inc()
}

// ObserveRun records the outcome of one Service.Run call.
func (m *Metrics) ObserveRun(layout string, res *core.Result, err error) {
	status := "ok"
	switch {
	case errors.Is(err, core.ErrTooManyRuns):
		status = "rejected"
	case err != nil && res != nil && res.Partial:
		status = "partial"
	case err != nil:
		status = "failed"
	}
	m.runs.WithLabelValues(layout, status).Inc()

	if res != nil && res.Store != nil {
		m.records.WithLabelValues(layout).Set(float64(res.Store.Len()))
		m.duration.WithLabelValues(layout).Observe(res.Duration.Seconds())
	}
}

// TrackLimiter exports the limiter's active and capacity counts.
func (m *Metrics) TrackLimiter(l *core.RunLimiter) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_active",
			Help:      "Extraction runs holding a limiter slot.",
		}, func() float64 { return float64(l.Active()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_capacity",
			Help:      "Maximum concurrent extraction runs.",
		}, func() float64 { return float64(l.Capacity()) }),
	)
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
