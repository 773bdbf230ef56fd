package cohort

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/txn"
)

// maxOffset is the largest month offset tracked per cohort.
const maxOffset = 12

// waterfallMonths is the number of offsets shown in the waterfalls (m0..m6).
const waterfallMonths = 7

func monthCode(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func cohortKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// bucket holds one cohort's membership sets and per-offset running
// totals. Offset arrays are explicitly zero-initialized; observed marks
// offsets where any money actually moved, so an untouched offset is
// never mistaken for observed-zero revenue. Net is derived as
// gross − fees − refunded, never stored.
type bucket struct {
	year  int
	month time.Month

	trials       map[string]struct{}
	activeTrials map[string]struct{}
	paid         map[string]struct{}
	secondPlus   map[string]struct{}

	gross    [maxOffset + 1]decimal.Decimal
	fees     [maxOffset + 1]decimal.Decimal
	refunded [maxOffset + 1]decimal.Decimal
	observed [maxOffset + 1]bool

	// payers[m] is the set of cohort customers with a qualifying paid
	// transaction at exactly offset m; feeds the retention waterfall.
	payers [maxOffset + 1]map[string]struct{}
}

func newBucket(trialStart time.Time) *bucket {
	return &bucket{
		year:         trialStart.Year(),
		month:        trialStart.Month(),
		trials:       make(map[string]struct{}),
		activeTrials: make(map[string]struct{}),
		paid:         make(map[string]struct{}),
		secondPlus:   make(map[string]struct{}),
	}
}

func (b *bucket) monthCode() int {
	return b.year*12 + int(b.month) - 1
}

// netThrough returns cumulative gross, fees, refunds and net summed over
// observed offsets 0..last.
func (b *bucket) netThrough(last int) (gross, fees, refunded, net decimal.Decimal) {
	for m := 0; m <= last && m <= maxOffset; m++ {
		if !b.observed[m] {
			continue
		}
		gross = gross.Add(b.gross[m])
		fees = fees.Add(b.fees[m])
		refunded = refunded.Add(b.refunded[m])
	}
	net = gross.Sub(fees).Sub(refunded)
	return gross, fees, refunded, net
}

// aggregate is the outcome of one fold over the transaction list: an
// explicit cohort-key → bucket mapping plus dataset-wide totals.
type aggregate struct {
	buckets      map[string]*bucket
	keys         []string // sorted ascending
	maxMonthCode int      // from the dataset's max timestamp

	totalGross   decimal.Decimal
	totalFees    decimal.Decimal
	totalRefunds decimal.Decimal
}

// futureGuard is the largest month offset the cohort could have observed
// given the dataset's latest date. Offsets beyond it are unknown, not
// zero.
func (a *aggregate) futureGuard(b *bucket) int {
	return a.maxMonthCode - b.monthCode()
}

// buildAggregate buckets customers by trial-start month and accumulates
// per-offset financial totals. Only subscription-band paid transactions
// in the accepted currency qualify for revenue; a customer who never
// trialed cannot be attributed and is excluded entirely. Refunds are
// applied in a second pass with the same attribution and offset bounds;
// refund amounts are not fee-adjusted.
func buildAggregate(scope []txn.Transaction, facts map[string]*Facts, in Inputs) *aggregate {
	agg := &aggregate{
		buckets:      make(map[string]*bucket),
		maxMonthCode: monthCode(in.MaxTimestamp),
	}
	feeRate := decimal.NewFromFloat(in.FeePercent).Div(decimal.NewFromInt(100))
	activeThreshold := in.MaxTimestamp.Add(-activeTrialWindow)

	// Membership: one entry per trialed customer, cohort created lazily
	// on first encounter.
	for cid, f := range facts {
		if f.TrialStart.IsZero() {
			continue
		}
		key := cohortKey(f.TrialStart)
		b, ok := agg.buckets[key]
		if !ok {
			b = newBucket(f.TrialStart)
			agg.buckets[key] = b
		}
		b.trials[cid] = struct{}{}
		if f.FirstPaid.IsZero() {
			if !f.TrialStart.Before(activeThreshold) {
				b.activeTrials[cid] = struct{}{}
			}
		} else {
			b.paid[cid] = struct{}{}
			if f.PaidCount >= 2 {
				b.secondPlus[cid] = struct{}{}
			}
		}
	}

	// Revenue fold.
	for i := range scope {
		t := &scope[i]
		if !t.Paid() || !t.InCurrency(in.Currency) || !t.HasTimestamp() || !in.Bands.Subscription(t.Amount) {
			continue
		}
		b, off := agg.locate(t, facts)
		if b == nil {
			continue
		}
		fee := t.Amount.Mul(feeRate)
		b.gross[off] = b.gross[off].Add(t.Amount)
		b.fees[off] = b.fees[off].Add(fee)
		b.observed[off] = true
		if b.payers[off] == nil {
			b.payers[off] = make(map[string]struct{})
		}
		b.payers[off][t.CustomerID] = struct{}{}
		agg.totalGross = agg.totalGross.Add(t.Amount)
		agg.totalFees = agg.totalFees.Add(fee)
	}

	// Refund fold.
	for i := range scope {
		t := &scope[i]
		refund := t.DetectedRefund(in.Currency)
		if !refund.IsPositive() || !t.HasTimestamp() {
			continue
		}
		b, off := agg.locate(t, facts)
		if b == nil {
			continue
		}
		b.refunded[off] = b.refunded[off].Add(refund)
		b.observed[off] = true
		agg.totalRefunds = agg.totalRefunds.Add(refund)
	}

	agg.keys = make([]string, 0, len(agg.buckets))
	for key := range agg.buckets {
		agg.keys = append(agg.keys, key)
	}
	sort.Strings(agg.keys)
	return agg
}

// locate resolves a transaction to its customer's cohort bucket and
// month offset, or (nil, 0) when the customer never trialed or the
// offset falls outside [0, maxOffset].
func (a *aggregate) locate(t *txn.Transaction, facts map[string]*Facts) (*bucket, int) {
	f := facts[t.CustomerID]
	if f == nil || f.TrialStart.IsZero() {
		return nil, 0
	}
	b := a.buckets[cohortKey(f.TrialStart)]
	if b == nil {
		return nil, 0
	}
	off := monthCode(t.Timestamp) - monthCode(f.TrialStart)
	if off < 0 || off > maxOffset {
		return nil, 0
	}
	return b, off
}

// money rounds a decimal to 2 places for output.
func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// round1 rounds to 1 decimal place; used for percentages.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 rounds to 2 decimal places; used for ratios such as ROAS.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
