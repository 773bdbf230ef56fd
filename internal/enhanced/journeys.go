package enhanced

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/txn"
)

// attempt is one payment attempt inside a customer journey, in input
// order.
type attempt struct {
	ts      time.Time
	amount  decimal.Decimal
	success bool
}

// journey accumulates a customer's attempts and successful revenue.
type journey struct {
	attempts  []attempt
	successes int
	revenue   decimal.Decimal
}

func buildJourneys(txs []txn.Transaction) map[string]*journey {
	journeys := make(map[string]*journey)
	for i := range txs {
		t := &txs[i]
		j := journeys[t.CustomerID]
		if j == nil {
			j = &journey{}
			journeys[t.CustomerID] = j
		}
		ok := t.Paid()
		j.attempts = append(j.attempts, attempt{ts: t.Timestamp, amount: t.Amount, success: ok})
		if ok {
			j.successes++
			j.revenue = j.revenue.Add(t.Amount)
		}
	}
	return journeys
}

// FunnelStage is one cumulative conversion-funnel stage. Percentages are
// relative to total customers.
type FunnelStage struct {
	Stage      string  `json:"stage"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

func buildFunnel(journeys map[string]*journey) []FunnelStage {
	total := len(journeys)
	attempted, succeeded, multiple := 0, 0, 0
	for _, j := range journeys {
		if len(j.attempts) > 0 {
			attempted++
		}
		if j.successes >= 1 {
			succeeded++
		}
		if j.successes >= 2 {
			multiple++
		}
	}
	pct := func(n int) float64 {
		if total == 0 {
			return 0
		}
		return round1(float64(n) / float64(total) * 100)
	}
	return []FunnelStage{
		{Stage: "Total Customers", Count: total, Percentage: 100},
		{Stage: "Payment Attempted", Count: attempted, Percentage: pct(attempted)},
		{Stage: "First Success", Count: succeeded, Percentage: pct(succeeded)},
		{Stage: "Multiple Payments", Count: multiple, Percentage: pct(multiple)},
	}
}

// RetryBucket reports how failed attempts that eventually succeeded are
// distributed by retry delay. Attempts and successes move together: a
// bucket only ever records matched failure→success pairs.
type RetryBucket struct {
	Timing      string  `json:"timing"`
	Attempts    int     `json:"attempts"`
	Successes   int     `json:"successes"`
	SuccessRate float64 `json:"successRate"`
}

var retryLabels = [...]string{"< 1 Hour", "1-24 Hours", "24-48 Hours", "48+ Hours"}

func retryIndex(hours float64) int {
	switch {
	case hours < 1:
		return 0
	case hours <= 24:
		return 1
	case hours <= 48:
		return 2
	default:
		return 3
	}
}

func buildRetryAnalysis(journeys map[string]*journey) []RetryBucket {
	var counts [len(retryLabels)]int
	for _, j := range journeys {
		for i, a := range j.attempts {
			if a.success || a.ts.IsZero() {
				continue
			}
			for _, next := range j.attempts[i+1:] {
				if !next.success {
					continue
				}
				if !next.ts.IsZero() {
					counts[retryIndex(next.ts.Sub(a.ts).Hours())]++
				}
				break
			}
		}
	}

	out := make([]RetryBucket, len(retryLabels))
	for i, label := range retryLabels {
		b := RetryBucket{Timing: label, Attempts: counts[i], Successes: counts[i]}
		if counts[i] > 0 {
			b.SuccessRate = 100
		}
		out[i] = b
	}
	return out
}

// Segment is one customer-behavior segment row.
type Segment struct {
	Name           string  `json:"name"`
	Count          int     `json:"count"`
	Percentage     float64 `json:"percentage"`
	AvgLTV         float64 `json:"avgLTV"`
	AvgSuccessRate float64 `json:"avgSuccessRate"`
	TotalRevenue   float64 `json:"totalRevenue"`
}

type segmentAcc struct {
	count    int
	revenue  decimal.Decimal
	rateSum  float64
	fixedAvg float64 // when > 0, reported instead of the mean rate
}

// buildSegments partitions customers by success rate and successful
// payment count. The segments are assigned in precedence order
// (Champions, Reliable, Strugglers, One-Timers) so each customer lands
// in at most one; customers matching none are left out.
func buildSegments(journeys map[string]*journey) []Segment {
	accs := [4]segmentAcc{3: {fixedAvg: 100}}
	names := [4]string{"Champions", "Reliable", "Strugglers", "One-Timers"}

	total := len(journeys)
	for _, j := range journeys {
		attempts := len(j.attempts)
		rate := 0.0
		if attempts > 0 {
			rate = float64(j.successes) / float64(attempts) * 100
		}
		idx := -1
		switch {
		case rate >= 90 && j.successes >= 3:
			idx = 0
		case rate >= 70 && rate < 90 && j.successes >= 2:
			idx = 1
		case rate < 70 && attempts >= 2:
			idx = 2
		case j.successes == 1:
			idx = 3
		}
		if idx < 0 {
			continue
		}
		accs[idx].count++
		accs[idx].revenue = accs[idx].revenue.Add(j.revenue)
		accs[idx].rateSum += rate
	}

	out := make([]Segment, 0, len(names))
	for i, name := range names {
		a := accs[i]
		seg := Segment{
			Name:         name,
			Count:        a.count,
			TotalRevenue: money(a.revenue),
		}
		if total > 0 {
			seg.Percentage = round1(float64(a.count) / float64(total) * 100)
		}
		if a.count > 0 {
			seg.AvgLTV = money(a.revenue.Div(decimal.NewFromInt(int64(a.count))))
			seg.AvgSuccessRate = round1(a.rateSum / float64(a.count))
		}
		if a.fixedAvg > 0 {
			seg.AvgSuccessRate = a.fixedAvg
		}
		out = append(out, seg)
	}
	return out
}

// TrendPoint is one day of successful-payment revenue.
type TrendPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// buildRevenueTrend sums successful amounts per UTC calendar day and
// keeps the last 30 days present in the data, ascending.
func buildRevenueTrend(txs []txn.Transaction) []TrendPoint {
	daily := make(map[string]decimal.Decimal)
	for i := range txs {
		t := &txs[i]
		if !t.Paid() || !t.HasTimestamp() {
			continue
		}
		day := t.Timestamp.Format("2006-01-02")
		daily[day] = daily[day].Add(t.Amount)
	}

	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Strings(days)
	if len(days) > 30 {
		days = days[len(days)-30:]
	}

	trend := make([]TrendPoint, 0, len(days))
	for _, day := range days {
		trend = append(trend, TrendPoint{Date: day, Revenue: money(daily[day])})
	}
	return trend
}
