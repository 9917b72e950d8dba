// Package metrics provides Prometheus metrics for the extractor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "weather_extractor"

var (
	// GroupFetchTotal counts group fetches by outcome.
	GroupFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_fetch_total",
			Help:      "Total number of variable group fetches",
		},
		[]string{"group", "outcome"},
	)

	// GroupFetchDuration measures group fetch duration.
	GroupFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "group_fetch_duration_seconds",
			Help:      "Duration of variable group fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"group"},
	)

	// PipelineRunsTotal counts pipeline runs by resolution and status.
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"resolution", "status"},
	)

	// MergedRows observes the row count of merged tables.
	MergedRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "merged_rows",
			Help:      "Distribution of merged table row counts",
			Buckets:   []float64{24, 168, 744, 2208, 8784, 26352, 87840},
		},
	)

	// DroppedColumnsTotal counts columns discarded by the merge collision rule.
	DroppedColumnsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_dropped_columns_total",
			Help:      "Total number of duplicate columns discarded during merge",
		},
	)
)

// Fetch outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeEmpty     = "empty"
	OutcomeTransport = "transport_error"
	OutcomeMalformed = "malformed_response"
	OutcomeError     = "error"
)

// RecordGroupFetch records a single group fetch.
func RecordGroupFetch(group, outcome string, seconds float64) {
	GroupFetchTotal.WithLabelValues(group, outcome).Inc()
	GroupFetchDuration.WithLabelValues(group).Observe(seconds)
}

// RecordRun records a pipeline run.
func RecordRun(resolution, status string) {
	PipelineRunsTotal.WithLabelValues(resolution, status).Inc()
}

// RecordMerge records a merge result.
func RecordMerge(rows, dropped int) {
	MergedRows.Observe(float64(rows))
	DroppedColumnsTotal.Add(float64(dropped))
}
