package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK           = "ok"
	OutcomeInvalidInput = "invalid_input"
	OutcomeError        = "error"
)

var (
	EventsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vclog_presence_events_recorded_total",
			Help: "Presence events appended to the event log",
		},
		[]string{"action"},
	)

	EventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vclog_presence_events_dropped_total",
			Help: "Voice state updates that could not be recorded",
		},
		[]string{"reason"},
	)

	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vclog_queries_total",
			Help: "Usage queries answered",
		},
		[]string{"query", "outcome"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vclog_query_duration_seconds",
			Help:    "Time to load the event log and answer a usage query",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"query"},
	)
)

func init() {
	prometheus.MustRegister(
		EventsRecorded,
		EventsDropped,
		QueriesTotal,
		QueryDuration,
	)
}

func ObserveQuery(query, outcome string, startedAt time.Time) {
	QueriesTotal.WithLabelValues(query, outcome).Inc()
	QueryDuration.WithLabelValues(query).Observe(time.Since(startedAt).Seconds())
}
