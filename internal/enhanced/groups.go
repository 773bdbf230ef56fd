package enhanced

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/txn"
)

// GroupStat is one row of a success-rate breakdown (payment method, card
// brand, card funding, or geography).
type GroupStat struct {
	Name           string  `json:"name"`
	Total          int     `json:"total"`
	SuccessRate    float64 `json:"successRate"` // percent
	Revenue        float64 `json:"revenue"`
	AvgTransaction float64 `json:"avgTransaction"`
	FailureRate    float64 `json:"failureRate"` // percent
}

type groupAcc struct {
	total   int
	paid    int
	revenue decimal.Decimal
}

func (g *groupAcc) observe(t *txn.Transaction) {
	g.total++
	if t.Paid() {
		g.paid++
		g.revenue = g.revenue.Add(t.Amount)
	}
}

// rankGroups converts accumulators to rows sorted by volume descending,
// name ascending on ties for determinism.
func rankGroups(groups map[string]*groupAcc) []GroupStat {
	rows := make([]GroupStat, 0, len(groups))
	for name, g := range groups {
		row := GroupStat{
			Name:    name,
			Total:   g.total,
			Revenue: money(g.revenue),
		}
		if g.total > 0 {
			row.SuccessRate = round1(float64(g.paid) / float64(g.total) * 100)
			row.FailureRate = round1(float64(g.total-g.paid) / float64(g.total) * 100)
		}
		if g.paid > 0 {
			row.AvgTransaction = money(g.revenue.Div(decimal.NewFromInt(int64(g.paid))))
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func topN(rows []GroupStat, n int) []GroupStat {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

// DeclineReason is one ranked decline-reason row. Percentage is of all
// failed transactions.
type DeclineReason struct {
	Reason      string  `json:"reason"`
	Count       int     `json:"count"`
	LostRevenue float64 `json:"lostRevenue"`
	AvgAmount   float64 `json:"avgAmount"`
	Percentage  float64 `json:"percentage"`
}

func rankDeclineReasons(txs []txn.Transaction) ([]DeclineReason, int) {
	type acc struct {
		count int
		lost  decimal.Decimal
	}
	reasons := make(map[string]*acc)
	failed := 0
	for i := range txs {
		t := &txs[i]
		if !t.Failed() {
			continue
		}
		failed++
		reason := t.DeclineReason
		if reason == "" {
			reason = "unknown"
		}
		a := reasons[reason]
		if a == nil {
			a = &acc{}
			reasons[reason] = a
		}
		a.count++
		a.lost = a.lost.Add(t.Amount)
	}

	rows := make([]DeclineReason, 0, len(reasons))
	for reason, a := range reasons {
		row := DeclineReason{
			Reason:      titleCase(reason),
			Count:       a.count,
			LostRevenue: money(a.lost),
			AvgAmount:   money(a.lost.Div(decimal.NewFromInt(int64(a.count)))),
		}
		if failed > 0 {
			row.Percentage = round1(float64(a.count) / float64(failed) * 100)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Reason < rows[j].Reason
	})
	if len(rows) > 10 {
		rows = rows[:10]
	}
	return rows, failed
}

// titleCase turns a processor reason code like "insufficient_funds" into
// "Insufficient Funds".
func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
