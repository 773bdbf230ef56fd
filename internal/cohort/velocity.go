package cohort

import (
	"math"
	"time"
)

// lateConversionDays is the trial→paid gap beyond which a conversion
// counts as zombie revenue.
const lateConversionDays = 8

// activeTrialWindow is the trailing window, measured from the dataset's
// max timestamp, inside which an unconverted trial counts as active.
const activeTrialWindow = 7 * 24 * time.Hour

// VelocityBucket is one row of the trial-velocity histogram.
type VelocityBucket struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

var velocityLabels = [...]string{"Same Day", "1-6 Days", "7 Days", "8-14 Days", "14+ Days"}

func velocityIndex(days int) int {
	switch {
	case days == 0:
		return 0
	case days >= 1 && days <= 6:
		return 1
	case days == 7:
		return 2
	case days >= 8 && days <= 14:
		return 3
	default:
		return 4
	}
}

func floorDays(d time.Duration) int {
	return int(math.Floor(d.Hours() / 24))
}

// TrialVelocity buckets the trial→paid gap of every converted customer
// into the five fixed histogram rows. Percentages are of all converters.
func TrialVelocity(facts map[string]*Facts) []VelocityBucket {
	var counts [len(velocityLabels)]int
	converted := 0
	for _, f := range facts {
		if !f.Converted() {
			continue
		}
		converted++
		counts[velocityIndex(floorDays(f.FirstPaid.Sub(f.TrialStart)))]++
	}

	out := make([]VelocityBucket, len(velocityLabels))
	for i, label := range velocityLabels {
		b := VelocityBucket{Label: label, Count: counts[i]}
		if converted > 0 {
			b.Percent = round1(float64(counts[i]) / float64(converted) * 100)
		}
		out[i] = b
	}
	return out
}

// ZombieRevenue returns the share of converters whose trial→paid gap
// exceeded the late-conversion threshold, as a percentage of all
// converters, 0 when nobody converted.
func ZombieRevenue(facts map[string]*Facts) (converted, late int, pct float64) {
	for _, f := range facts {
		if !f.Converted() {
			continue
		}
		converted++
		if floorDays(f.FirstPaid.Sub(f.TrialStart)) > lateConversionDays {
			late++
		}
	}
	if converted > 0 {
		pct = round1(float64(late) / float64(converted) * 100)
	}
	return converted, late, pct
}

// ActiveTrials returns the customers whose trial started inside the
// trailing window and who never made a subscription-band payment.
func ActiveTrials(facts map[string]*Facts, maxTimestamp time.Time) map[string]struct{} {
	threshold := maxTimestamp.Add(-activeTrialWindow)
	active := make(map[string]struct{})
	for cid, f := range facts {
		if f.TrialStart.IsZero() || !f.FirstPaid.IsZero() {
			continue
		}
		if !f.TrialStart.Before(threshold) {
			active[cid] = struct{}{}
		}
	}
	return active
}
