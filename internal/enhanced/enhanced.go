// Package enhanced is the second analytics pass: payment-method, card,
// and geography breakdowns, decline-reason ranking, the conversion
// funnel, retry timing, behavior segments, and the revenue trend. It
// runs over the same normalized transactions as the cohort pipeline but
// is independent of it.
package enhanced

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/txn"
)

// stateCountry restricts the billing-state breakdown to one issuing
// country, as state codes are only comparable within it.
const stateCountry = "US"

// Summary holds the pass-level transaction KPIs.
type Summary struct {
	TotalCustomers         int     `json:"totalCustomers"`
	TotalTransactions      int     `json:"totalTransactions"`
	SuccessfulTransactions int     `json:"successfulTransactions"`
	FailedTransactions     int     `json:"failedTransactions"`
	OverallSuccessRate     float64 `json:"overallSuccessRate"` // percent
}

// Result is the enhanced-analytics output record.
type Result struct {
	PaymentMethods   []GroupStat     `json:"paymentMethods"`
	CardBrands       []GroupStat     `json:"cardBrands"`
	CardFundings     []GroupStat     `json:"cardFundings"`
	DeclineReasons   []DeclineReason `json:"declineReasons"`
	Countries        []GroupStat     `json:"countries"`
	States           []GroupStat     `json:"states"`
	ConversionFunnel []FunnelStage   `json:"conversionFunnel"`
	RetryAnalysis    []RetryBucket   `json:"retryAnalysis"`
	BehaviorSegments []Segment       `json:"behaviorSegments"`
	RevenueTrend     []TrendPoint    `json:"revenueTrend"`
	Summary          Summary         `json:"summary"`
}

// Analyze builds every breakdown in one pass over the transactions plus
// independent reductions over the per-customer journeys.
func Analyze(txs []txn.Transaction) *Result {
	methods := make(map[string]*groupAcc)
	brands := make(map[string]*groupAcc)
	fundings := make(map[string]*groupAcc)
	countries := make(map[string]*groupAcc)
	states := make(map[string]*groupAcc)

	observe := func(groups map[string]*groupAcc, key string, t *txn.Transaction) {
		g := groups[key]
		if g == nil {
			g = &groupAcc{}
			groups[key] = g
		}
		g.observe(t)
	}

	paidCount := 0
	for i := range txs {
		t := &txs[i]
		if t.Paid() {
			paidCount++
		}

		method := t.PaymentMethod
		if method == "" {
			method = "card"
		}
		observe(methods, method, t)

		if t.CardBrand != "" {
			observe(brands, t.CardBrand, t)
		}
		if t.CardFunding != "" {
			observe(fundings, t.CardFunding, t)
		}
		if t.Country != "" {
			observe(countries, t.Country, t)
			if t.State != "" && t.Country == stateCountry {
				observe(states, t.State, t)
			}
		}
	}

	declines, failedCount := rankDeclineReasons(txs)
	journeys := buildJourneys(txs)

	summary := Summary{
		TotalCustomers:         len(journeys),
		TotalTransactions:      len(txs),
		SuccessfulTransactions: paidCount,
		FailedTransactions:     failedCount,
	}
	if len(txs) > 0 {
		summary.OverallSuccessRate = round1(float64(paidCount) / float64(len(txs)) * 100)
	}

	return &Result{
		PaymentMethods:   rankGroups(methods),
		CardBrands:       rankGroups(brands),
		CardFundings:     rankGroups(fundings),
		DeclineReasons:   declines,
		Countries:        topN(rankGroups(countries), 10),
		States:           topN(rankGroups(states), 15),
		ConversionFunnel: buildFunnel(journeys),
		RetryAnalysis:    buildRetryAnalysis(journeys),
		BehaviorSegments: buildSegments(journeys),
		RevenueTrend:     buildRevenueTrend(txs),
		Summary:          summary,
	}
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
