package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cohort_reports_generated_total",
		Help: "Total number of analytics reports generated.",
	})

	ReportFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cohort_report_failures_total",
		Help: "Total number of report requests that produced no result.",
	})

	RecordsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cohort_records_ingested_total",
		Help: "Total number of raw payment records fed into the engine.",
	})

	RecordsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cohort_records_dropped_total",
		Help: "Total number of records excluded during normalization, labelled by reason.",
	}, []string{"reason"})

	TimestampsUnparsable = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cohort_timestamps_unparsable_total",
		Help: "Total number of records whose timestamp failed to parse (kept, but excluded from time-bucketed aggregates).",
	})

	ReportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cohort_report_duration_ms",
		Help:    "End-to-end report computation latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	CohortsPerReport = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cohort_cohorts_per_report",
		Help:    "Number of cohorts produced per report.",
		Buckets: []float64{1, 2, 3, 6, 12, 24, 48},
	})
)
