package cohort

import (
	"github.com/shopspring/decimal"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/txn"
)

// RefundRow is one row of the refund taxonomy. Percent is the bucket's
// share of total refund value.
type RefundRow struct {
	Type    string  `json:"type"`
	Count   int     `json:"count"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// RefundBreakdown classifies every detected refund in the dataset into
// trial, subscription, or other buckets, plus a total row. Unlike cohort
// refund attribution this is global: no trial membership is required.
func RefundBreakdown(txs []txn.Transaction, bands txn.Bands, currency string) []RefundRow {
	type acc struct {
		count int
		value decimal.Decimal
	}
	var buckets [3]acc

	for i := range txs {
		refund := txs[i].DetectedRefund(currency)
		if !refund.IsPositive() {
			continue
		}
		class := bands.ClassifyRefund(refund)
		buckets[class].count++
		buckets[class].value = buckets[class].value.Add(refund)
	}

	total := buckets[0].value.Add(buckets[1].value).Add(buckets[2].value)
	totalF, _ := total.Float64()

	pctOf := func(v decimal.Decimal) float64 {
		if !total.IsPositive() {
			return 0
		}
		vf, _ := v.Float64()
		return round1(vf / totalF * 100)
	}

	labels := [3]string{"Trial Refunds", "Subscription Refunds", "Other/Partial"}
	rows := make([]RefundRow, 0, 4)
	for i, label := range labels {
		rows = append(rows, RefundRow{
			Type:    label,
			Count:   buckets[i].count,
			Value:   money(buckets[i].value),
			Percent: pctOf(buckets[i].value),
		})
	}
	totalRow := RefundRow{
		Type:  "Total",
		Count: buckets[0].count + buckets[1].count + buckets[2].count,
		Value: money(total),
	}
	if total.IsPositive() {
		totalRow.Percent = 100.0
	}
	return append(rows, totalRow)
}
