package cohort

import (
	"time"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/txn"
)

// Facts are the per-customer classification results derived from one
// timeline scan. TrialStart and FirstPaid are found by independent
// first-match rules, so FirstPaid is not forced to follow TrialStart.
type Facts struct {
	TrialStart time.Time // first paid charge in the trial band
	FirstPaid  time.Time // first paid charge in the subscription band
	PaidCount  int       // subscription-band paid charges
	HadFailure bool
	Recovered  bool // a paid charge strictly after the first failure
}

// Converted reports whether the customer has both a trial start and a
// subscription payment.
func (f *Facts) Converted() bool {
	return !f.TrialStart.IsZero() && !f.FirstPaid.IsZero()
}

// Classify derives Facts for every customer timeline. The amount-band
// scan and the win-back scan are separate single passes so neither
// classification leaks into the other.
func Classify(timelines map[string][]txn.Transaction, bands txn.Bands) map[string]*Facts {
	facts := make(map[string]*Facts, len(timelines))
	for cid, tl := range timelines {
		f := &Facts{}

		for i := range tl {
			t := &tl[i]
			if !t.Paid() {
				continue
			}
			if f.TrialStart.IsZero() && bands.Trial(t.Amount) {
				f.TrialStart = t.Timestamp
			}
			if bands.Subscription(t.Amount) {
				if f.FirstPaid.IsZero() {
					f.FirstPaid = t.Timestamp
				}
				f.PaidCount++
			}
		}

		var failedAt time.Time
		for i := range tl {
			t := &tl[i]
			if t.Failed() && !f.HadFailure {
				f.HadFailure = true
				failedAt = t.Timestamp
			}
			if f.HadFailure && t.Paid() && t.Timestamp.After(failedAt) {
				f.Recovered = true
				break
			}
		}

		facts[cid] = f
	}
	return facts
}

// RecoveryStats counts win-back outcomes across all customers. Rate is a
// percentage, 0 when no customer ever failed.
func RecoveryStats(facts map[string]*Facts) (failed, recovered int, rate float64) {
	for _, f := range facts {
		if f.HadFailure {
			failed++
		}
		if f.Recovered {
			recovered++
		}
	}
	if failed > 0 {
		rate = round1(float64(recovered) / float64(failed) * 100)
	}
	return failed, recovered, rate
}
