// Package metrics exports query-execution counters and histograms over
// Prometheus, grounded on the pack's telemetry.Metrics shape (a registry
// plus one field per instrument, constructed once and passed around rather
// than reached for via a package global).
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every instrument this engine exports. A disabled Metrics
// (New(..., false)) still answers every Record* call as a no-op, so
// callers never need a nil check.
type Metrics struct {
	enabled bool

	queriesStarted   *prometheus.CounterVec
	queriesCompleted *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec

	operatorsExecuted *prometheus.CounterVec
	operatorDuration  *prometheus.HistogramVec
	operatorRows      *prometheus.CounterVec

	activeQueries prometheus.Gauge
	killedQueries prometheus.Counter

	registry *prometheus.Registry
}

// New builds a Metrics instance. namespace prefixes every metric name
// (Prometheus convention); pass "" for none.
func New(namespace string, enabled bool) *Metrics {
	if !enabled {
		return &Metrics{enabled: false}
	}

	registry := prometheus.NewRegistry()
	m := &Metrics{
		enabled:  true,
		registry: registry,

		queriesStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_started_total",
				Help:      "Total number of queries submitted for execution.",
			},
			[]string{"space"},
		),
		queriesCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_completed_total",
				Help:      "Total number of queries that finished, by outcome.",
			},
			[]string{"space", "status"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query wall-clock duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"space", "status"},
		),

		operatorsExecuted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operator_executions_total",
				Help:      "Total number of operator Execute calls, by operator kind.",
			},
			[]string{"kind"},
		),
		operatorDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operator_duration_seconds",
				Help:      "Operator Execute duration in seconds, by operator kind.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		operatorRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operator_rows_produced_total",
				Help:      "Total rows produced, by operator kind.",
			},
			[]string{"kind"},
		),

		activeQueries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_queries",
			Help:      "Number of queries currently executing.",
		}),
		killedQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "killed_queries_total",
			Help:      "Total number of queries terminated via kill_query.",
		}),
	}

	registry.MustRegister(
		m.queriesStarted, m.queriesCompleted, m.queryDuration,
		m.operatorsExecuted, m.operatorDuration, m.operatorRows,
		m.activeQueries, m.killedQueries,
	)
	return m
}

func (m *Metrics) RecordQueryStarted(space string) {
	if !m.enabled {
		return
	}
	m.queriesStarted.WithLabelValues(space).Inc()
	m.activeQueries.Inc()
}

func (m *Metrics) RecordQueryCompleted(space, status string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.queriesCompleted.WithLabelValues(space, status).Inc()
	m.queryDuration.WithLabelValues(space, status).Observe(d.Seconds())
	m.activeQueries.Dec()
}

func (m *Metrics) RecordKilled() {
	if !m.enabled {
		return
	}
	m.killedQueries.Inc()
}

// RecordOperator is fed from an operator.Stats snapshot after Execute
// returns, one call per (kind, Stats) pair in the finished operator DAG.
func (m *Metrics) RecordOperator(kind string, elapsed time.Duration, rowsProduced int64) {
	if !m.enabled {
		return
	}
	m.operatorsExecuted.WithLabelValues(kind).Inc()
	m.operatorDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	m.operatorRows.WithLabelValues(kind).Add(float64(rowsProduced))
}

// Handler exposes the registry for an HTTP /metrics endpoint. Returns nil
// when metrics are disabled; callers must check before mounting it.
func (m *Metrics) Handler() http.Handler {
	if !m.enabled {
		return nil
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
