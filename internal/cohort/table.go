package cohort

import "github.com/shopspring/decimal"

// Row is one cohort-table row. Money fields are rounded numbers;
// formatting is the presentation layer's job.
type Row struct {
	Date           string  `json:"date"`
	Trials         int     `json:"trials"`
	ActiveTrials   int     `json:"activeTrials"`
	FirstPaid      int     `json:"firstPaid"`
	SecondPlusPaid int     `json:"secondPlusPaid"`
	Conversion     float64 `json:"conversion"` // percent
	CPT            float64 `json:"cpt"`
	CPASub         float64 `json:"cpaSub"`
	LTVWaterfall   float64 `json:"ltvWaterfall"`
	AdSpend        float64 `json:"adSpend"`
	StripeFees     float64 `json:"stripeFees"`
	Refunds        float64 `json:"refunds"`
	GrossRev       float64 `json:"grossRev"`
	NetRev         float64 `json:"netRev"`
	ROAS           float64 `json:"roas"`
}

// tableRows builds one row per cohort, ordered by cohort key. Cumulative
// money spans offsets 0..futureGuard only; offsets beyond the guard have
// not had time to occur.
func (a *aggregate) tableRows(adSpend map[string]float64) []Row {
	rows := make([]Row, 0, len(a.keys))
	for _, key := range a.keys {
		b := a.buckets[key]
		guard := a.futureGuard(b)

		trials := len(b.trials)
		firstPaid := len(b.paid)
		gross, fees, refunded, net := b.netThrough(guard)

		spend := adSpend[key]
		row := Row{
			Date:           key,
			Trials:         trials,
			ActiveTrials:   len(b.activeTrials),
			FirstPaid:      firstPaid,
			SecondPlusPaid: len(b.secondPlus),
			AdSpend:        round2(spend),
			StripeFees:     money(fees),
			Refunds:        money(refunded),
			GrossRev:       money(gross),
			NetRev:         money(net),
		}
		if trials > 0 {
			row.Conversion = round1(float64(firstPaid) / float64(trials) * 100)
			row.CPT = round2(spend / float64(trials))
		}
		if firstPaid > 0 {
			row.CPASub = round2(spend / float64(firstPaid))
			row.LTVWaterfall = money(net.Div(decimal.NewFromInt(int64(firstPaid))))
		}
		if spend > 0 {
			netF, _ := net.Float64()
			row.ROAS = round2(netF / spend)
		}
		rows = append(rows, row)
	}
	return rows
}
