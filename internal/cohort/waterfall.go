package cohort

import "github.com/shopspring/decimal"

// WaterfallRow is one cohort's m0..m6 series. A nil cell means the
// offset lies beyond the cohort's future guard: unknown, not zero.
type WaterfallRow struct {
	Cohort string   `json:"cohort"`
	Size   int      `json:"size"`
	M0     *float64 `json:"m0"`
	M1     *float64 `json:"m1"`
	M2     *float64 `json:"m2"`
	M3     *float64 `json:"m3"`
	M4     *float64 `json:"m4"`
	M5     *float64 `json:"m5"`
	M6     *float64 `json:"m6"`
}

func waterfallRow(cohort string, size int, cells [waterfallMonths]*float64) WaterfallRow {
	return WaterfallRow{
		Cohort: cohort, Size: size,
		M0: cells[0], M1: cells[1], M2: cells[2], M3: cells[3],
		M4: cells[4], M5: cells[5], M6: cells[6],
	}
}

// ltvRows builds the LTV waterfall: cumulative net through each offset,
// divided by the cohort's paid-customer count. Cumulative, unlike the
// retention waterfall.
func (a *aggregate) ltvRows() []WaterfallRow {
	rows := make([]WaterfallRow, 0, len(a.keys))
	for _, key := range a.keys {
		b := a.buckets[key]
		guard := a.futureGuard(b)
		size := len(b.paid)

		var cells [waterfallMonths]*float64
		for m := 0; m < waterfallMonths; m++ {
			if m > guard {
				continue // unknown
			}
			v := 0.0
			if size > 0 {
				_, _, _, net := b.netThrough(m)
				v = money(net.Div(decimal.NewFromInt(int64(size))))
			}
			cell := v
			cells[m] = &cell
		}
		rows = append(rows, waterfallRow(key, size, cells))
	}
	return rows
}

// retentionRows builds the retention waterfall: the share of the
// cohort's paid customers with a qualifying paid transaction at exactly
// each offset, as a percentage. Non-cumulative: each cell stands alone.
func (a *aggregate) retentionRows() []WaterfallRow {
	rows := make([]WaterfallRow, 0, len(a.keys))
	for _, key := range a.keys {
		b := a.buckets[key]
		guard := a.futureGuard(b)
		size := len(b.paid)

		var cells [waterfallMonths]*float64
		for m := 0; m < waterfallMonths; m++ {
			if m > guard {
				continue
			}
			v := 0.0
			if size > 0 {
				v = round1(float64(len(b.payers[m])) / float64(size) * 100)
			}
			cell := v
			cells[m] = &cell
		}
		rows = append(rows, waterfallRow(key, size, cells))
	}
	return rows
}

// SpendRevenuePoint pairs a cohort's ad spend with its cumulative net
// revenue across all tracked offsets.
type SpendRevenuePoint struct {
	Month   string  `json:"month"`
	AdSpend float64 `json:"adSpend"`
	Revenue float64 `json:"revenue"`
}

// spendVsRevenue sums every observed offset with no future-guard
// truncation; not-yet-reached offsets were never populated and
// contribute nothing.
func (a *aggregate) spendVsRevenue(adSpend map[string]float64) []SpendRevenuePoint {
	points := make([]SpendRevenuePoint, 0, len(a.keys))
	for _, key := range a.keys {
		b := a.buckets[key]
		_, _, _, net := b.netThrough(maxOffset)
		points = append(points, SpendRevenuePoint{
			Month:   key,
			AdSpend: round2(adSpend[key]),
			Revenue: money(net),
		})
	}
	return points
}
