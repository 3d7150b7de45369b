// Package metrics tracks append outcomes for the node-exporter textfile
// collector. A recorder run is short-lived, so nothing is served over HTTP.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the recorder's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	AppendsTotal   *prometheus.CounterVec
	RowsDropped    *prometheus.CounterVec
	DocumentRows   *prometheus.GaugeVec
	AppendDuration *prometheus.HistogramVec
	LastRun        prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AppendsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logonlog_appends_total",
				Help: "Append operations by log kind and result",
			},
			[]string{"kind", "result"},
		),
		RowsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logonlog_rows_dropped_total",
				Help: "Unparseable rows skipped while reading a log document",
			},
			[]string{"kind"},
		),
		DocumentRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "logonlog_document_rows",
				Help: "Data rows in the log document after the last append",
			},
			[]string{"kind"},
		),
		AppendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "logonlog_append_duration_seconds",
				Help:    "Wall time of one read-merge-write append",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"kind"},
		),
		LastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "logonlog_last_run_timestamp_seconds",
				Help: "Unix time of the last recorder run",
			},
		),
	}
	m.registry.MustRegister(m.AppendsTotal, m.RowsDropped, m.DocumentRows, m.AppendDuration, m.LastRun)
	return m
}

// ObserveAppend records one append outcome.
func (m *Metrics) ObserveAppend(kind string, rows int, took time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	} else {
		m.DocumentRows.WithLabelValues(kind).Set(float64(rows))
	}
	m.AppendsTotal.WithLabelValues(kind, result).Inc()
	m.AppendDuration.WithLabelValues(kind).Observe(took.Seconds())
}

// ObserveDropped records rows skipped while reading.
func (m *Metrics) ObserveDropped(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsDropped.WithLabelValues(kind).Add(float64(n))
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the registry in the text exposition format. The file
// is written to a temp file and renamed.
func (m *Metrics) WriteTextfile(path string, now time.Time) error {
	m.LastRun.Set(float64(now.Unix()))
	return prometheus.WriteToTextfile(path, m.registry)
}
