package cohort

import (
	"sort"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/txn"
)

// BuildTimelines groups transactions by customer and sorts each
// customer's transactions ascending by timestamp. Only accepted-currency
// transactions with a parsed timestamp participate; everything derived
// from a timeline is time-bucketed.
func BuildTimelines(txs []txn.Transaction, currency string) map[string][]txn.Transaction {
	timelines := make(map[string][]txn.Transaction)
	for i := range txs {
		t := txs[i]
		if !t.InCurrency(currency) || !t.HasTimestamp() {
			continue
		}
		timelines[t.CustomerID] = append(timelines[t.CustomerID], t)
	}
	for _, tl := range timelines {
		sort.SliceStable(tl, func(i, j int) bool {
			return tl[i].Timestamp.Before(tl[j].Timestamp)
		})
	}
	return timelines
}
