// Package engine ties the pipeline together: field resolution,
// normalization, the cohort pass, and the enhanced pass. Every call
// recomputes from scratch; nothing is shared across invocations.
package engine

import (
	"errors"
	"time"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/cohort"
	"github.com/aaronyarm/moveclub-cohort-ultra/internal/config"
	"github.com/aaronyarm/moveclub-cohort-ultra/internal/enhanced"
	"github.com/aaronyarm/moveclub-cohort-ultra/internal/metrics"
	"github.com/aaronyarm/moveclub-cohort-ultra/internal/record"
	"github.com/aaronyarm/moveclub-cohort-ultra/internal/txn"
)

// ErrNoRecords signals that the input contained nothing usable; callers
// get this instead of a degenerate report.
var ErrNoRecords = errors.New("engine: no records to analyze")

// Options tunes one Process call.
type Options struct {
	// Headers is the dataset's original column order, which decides
	// field-resolution precedence. When empty, the first record's keys
	// are used in lexical order.
	Headers []string
	// WindowDays restricts analysis to the trailing N days of the
	// dataset; 0 falls back to the configured window (which defaults to
	// the whole dataset).
	WindowDays int
}

// Report is the engine's full output: the cohort record and the
// enhanced record, plus the computation latency.
type Report struct {
	Cohort     *cohort.Result   `json:"cohort"`
	Enhanced   *enhanced.Result `json:"enhanced"`
	DurationMs int64            `json:"duration_ms"`
}

// Engine runs the analytics pipeline against the current configuration.
type Engine struct {
	src config.Source
}

// New creates an Engine reading its configuration from src on every
// call, so hot-reloaded fee rates and ad-spend edits apply to the next
// report.
func New(src config.Source) *Engine {
	return &Engine{src: src}
}

// Process computes a full report from raw records. Pure per invocation:
// identical inputs and configuration yield identical reports.
func (e *Engine) Process(records []record.Record, opts Options) (*Report, error) {
	start := time.Now()
	if len(records) == 0 {
		metrics.ReportFailures.Inc()
		return nil, ErrNoRecords
	}
	cfg := e.src.Config().Analytics

	headers := opts.Headers
	if len(headers) == 0 {
		headers = record.SortedKeys(records[0])
	}
	cols := record.Resolve(headers)

	txs, drops := txn.Normalize(records, cols)
	metrics.RecordsIngested.Add(float64(len(records)))
	metrics.RecordsDropped.WithLabelValues("missing_customer_id").Add(float64(drops.MissingCustomerID))
	metrics.TimestampsUnparsable.Add(float64(drops.BadTimestamp))
	if len(txs) == 0 {
		metrics.ReportFailures.Inc()
		return nil, ErrNoRecords
	}

	maxTS := maxTimestamp(txs)
	windowDays := opts.WindowDays
	if windowDays == 0 {
		windowDays = cfg.WindowDays
	}
	windowed := windowTransactions(txs, maxTS, windowDays)

	cohortResult := cohort.Analyze(cohort.Inputs{
		All:          txs,
		Windowed:     windowed,
		MaxTimestamp: maxTS,
		Bands:        cfg.TxnBands(),
		Currency:     cfg.Currency,
		FeePercent:   cfg.FeePercent,
		AdSpend:      cfg.AdSpend,
	})
	enhancedResult := enhanced.Analyze(txs)

	duration := time.Since(start)
	metrics.ReportsGenerated.Inc()
	metrics.ReportDuration.Observe(float64(duration.Milliseconds()))
	metrics.CohortsPerReport.Observe(float64(len(cohortResult.Cohorts)))

	return &Report{
		Cohort:     cohortResult,
		Enhanced:   enhancedResult,
		DurationMs: duration.Milliseconds(),
	}, nil
}

func maxTimestamp(txs []txn.Transaction) time.Time {
	var max time.Time
	for i := range txs {
		if txs[i].Timestamp.After(max) {
			max = txs[i].Timestamp
		}
	}
	return max
}

// windowTransactions returns the trailing-window view, or nil when no
// window applies. A non-nil empty slice is a real (empty) window.
func windowTransactions(txs []txn.Transaction, maxTS time.Time, days int) []txn.Transaction {
	if days <= 0 || maxTS.IsZero() {
		return nil
	}
	cutoff := maxTS.AddDate(0, 0, -days)
	windowed := make([]txn.Transaction, 0, len(txs))
	for i := range txs {
		t := txs[i]
		if t.HasTimestamp() && !t.Timestamp.Before(cutoff) && !t.Timestamp.After(maxTS) {
			windowed = append(windowed, t)
		}
	}
	return windowed
}
