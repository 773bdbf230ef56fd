package txn

import "github.com/shopspring/decimal"

// Bands holds the amount thresholds used to classify charges. The
// defaults fit a $0.99 trial and a >$2 recurring charge; both are
// configuration because they track a specific pricing scheme. Amounts in
// the gap (TrialMax, SubscriptionMin] stay unclassified on purpose.
type Bands struct {
	TrialMin        decimal.Decimal
	TrialMax        decimal.Decimal
	SubscriptionMin decimal.Decimal
}

// DefaultBands returns the nominal $0.99-trial band [0.90, 1.10] and the
// $2.00 subscription threshold.
func DefaultBands() Bands {
	return Bands{
		TrialMin:        decimal.NewFromFloat(0.90),
		TrialMax:        decimal.NewFromFloat(1.10),
		SubscriptionMin: decimal.NewFromFloat(2.00),
	}
}

// Trial reports whether amount falls in the trial-charge band, bounds
// inclusive.
func (b Bands) Trial(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(b.TrialMin) && amount.LessThanOrEqual(b.TrialMax)
}

// Subscription reports whether amount is a subscription-band charge,
// strictly above the threshold.
func (b Bands) Subscription(amount decimal.Decimal) bool {
	return amount.GreaterThan(b.SubscriptionMin)
}

// RefundClass is the taxonomy bucket of a refund value.
type RefundClass int

const (
	RefundTrial RefundClass = iota
	RefundSubscription
	RefundOther
)

// ClassifyRefund buckets a positive refund value. Unlike charge
// classification, subscription refunds start at the threshold itself
// (a full $2.00 refund belongs to the subscription bucket).
func (b Bands) ClassifyRefund(value decimal.Decimal) RefundClass {
	switch {
	case b.Trial(value):
		return RefundTrial
	case value.GreaterThanOrEqual(b.SubscriptionMin):
		return RefundSubscription
	default:
		return RefundOther
	}
}
