package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/config"
	"github.com/aaronyarm/moveclub-cohort-ultra/internal/record"
)

var stripeHeaders = []string{
	"Customer ID", "Created date (UTC)", "Status", "Currency", "Amount", "Amount Refunded",
}

func rec(cid, created, status, currency, amount string) record.Record {
	return record.Record{
		"Customer ID":        cid,
		"Created date (UTC)": created,
		"Status":             status,
		"Currency":           currency,
		"Amount":             amount,
	}
}

func newEngine() *Engine {
	return New(config.NewStatic(config.Default()))
}

func TestProcessEmptyInput(t *testing.T) {
	_, err := newEngine().Process(nil, Options{})
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("err = %v, want ErrNoRecords", err)
	}
}

func TestProcessAllRecordsDropped(t *testing.T) {
	records := []record.Record{
		rec("", "2024-01-01 10:00:00", "Paid", "usd", "0.99"),
		rec("", "2024-01-02 10:00:00", "Paid", "usd", "29.99"),
	}
	_, err := newEngine().Process(records, Options{Headers: stripeHeaders})
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("err = %v, want ErrNoRecords when every record lacks a customer id", err)
	}
}

func TestProcessEndToEnd(t *testing.T) {
	records := []record.Record{
		rec("cus_1", "2024-01-05 10:00:00", "Paid", "usd", "0.99"),
		rec("cus_1", "2024-01-12 10:00:00", "Paid", "usd", "29.99"),
		rec("cus_2", "2024-01-20 10:00:00", "Paid", "usd", "0.99"),
		rec("cus_3", "2024-01-21 10:00:00", "Failed", "usd", "29.99"),
	}

	report, err := newEngine().Process(records, Options{Headers: stripeHeaders})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if report.Cohort == nil || report.Enhanced == nil {
		t.Fatal("report missing a section")
	}
	if got := report.Cohort.Summary.TotalTrials; got != 2 {
		t.Errorf("total trials = %d, want 2", got)
	}
	if got := report.Cohort.Summary.TotalPaid; got != 1 {
		t.Errorf("total paid = %d, want 1", got)
	}
	// 29.99 at the default 7.5% fee.
	if got := report.Cohort.Summary.TotalNetRevenue; got != 27.74 {
		t.Errorf("net revenue = %v, want 27.74", got)
	}
	if got := report.Enhanced.Summary.TotalCustomers; got != 3 {
		t.Errorf("customers = %d, want 3", got)
	}
	if got := report.Enhanced.Summary.FailedTransactions; got != 1 {
		t.Errorf("failed = %d, want 1", got)
	}
}

func TestProcessDeterministic(t *testing.T) {
	records := []record.Record{
		rec("cus_1", "2024-01-05 10:00:00", "Paid", "usd", "0.99"),
		rec("cus_1", "2024-01-12 10:00:00", "Paid", "usd", "29.99"),
		rec("cus_2", "2024-02-03 10:00:00", "Paid", "usd", "0.99"),
	}

	eng := newEngine()
	first, err := eng.Process(records, Options{Headers: stripeHeaders})
	if err != nil {
		t.Fatalf("first Process: %v", err)
	}
	second, err := eng.Process(records, Options{Headers: stripeHeaders})
	if err != nil {
		t.Fatalf("second Process: %v", err)
	}

	a, _ := json.Marshal(first.Cohort)
	b, _ := json.Marshal(second.Cohort)
	if string(a) != string(b) {
		t.Error("cohort results differ between identical runs")
	}
	a, _ = json.Marshal(first.Enhanced)
	b, _ = json.Marshal(second.Enhanced)
	if string(a) != string(b) {
		t.Error("enhanced results differ between identical runs")
	}
}

func TestProcessWindowRestrictsCohorts(t *testing.T) {
	records := []record.Record{
		rec("old", "2024-01-05 10:00:00", "Paid", "usd", "0.99"),
		rec("new", "2024-03-20 10:00:00", "Paid", "usd", "0.99"),
		rec("new", "2024-03-25 10:00:00", "Paid", "usd", "29.99"),
	}

	full, err := newEngine().Process(records, Options{Headers: stripeHeaders})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(full.Cohort.Cohorts) != 2 {
		t.Fatalf("unwindowed cohorts = %v, want 2", full.Cohort.Cohorts)
	}

	windowed, err := newEngine().Process(records, Options{Headers: stripeHeaders, WindowDays: 30})
	if err != nil {
		t.Fatalf("Process windowed: %v", err)
	}
	if len(windowed.Cohort.Cohorts) != 1 || windowed.Cohort.Cohorts[0] != "2024-03" {
		t.Errorf("windowed cohorts = %v, want [2024-03]", windowed.Cohort.Cohorts)
	}
	// The enhanced pass always sees everything.
	if got := windowed.Enhanced.Summary.TotalCustomers; got != 2 {
		t.Errorf("enhanced customers = %d, want 2", got)
	}
}

func TestProcessHeaderFallback(t *testing.T) {
	// No explicit header order: resolution falls back to the first
	// record's keys sorted lexically, which still finds the Stripe names.
	records := []record.Record{
		rec("cus_1", "2024-01-05 10:00:00", "Paid", "usd", "0.99"),
		rec("cus_1", "2024-01-12 10:00:00", "Paid", "usd", "29.99"),
	}
	report, err := newEngine().Process(records, Options{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := report.Cohort.Summary.TotalTrials; got != 1 {
		t.Errorf("total trials = %d, want 1", got)
	}
	if got := report.Cohort.Summary.TotalGrossRevenue; got != 29.99 {
		t.Errorf("gross = %v, want 29.99", got)
	}
}
