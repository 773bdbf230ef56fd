package txn

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the canonical internal representation of one payment
// record. Amounts are decimals; a negative Amount signals a refund issued
// as a reversing charge.
type Transaction struct {
	CustomerID    string
	Timestamp     time.Time // zero when the source value did not parse
	Status        string
	Currency      string
	Amount        decimal.Decimal
	RefundAmount  decimal.Decimal
	DeclineReason string
	CardBrand     string
	CardFunding   string
	PaymentMethod string
	Country       string
	State         string
}

// Paid reports whether the transaction succeeded, case-insensitively.
func (t *Transaction) Paid() bool {
	return strings.EqualFold(t.Status, "paid")
}

// Failed reports whether the transaction was declined, case-insensitively.
func (t *Transaction) Failed() bool {
	return strings.EqualFold(t.Status, "failed")
}

// InCurrency reports whether the transaction is denominated in the
// accepted currency, case-insensitively.
func (t *Transaction) InCurrency(currency string) bool {
	return strings.EqualFold(t.Currency, currency)
}

// HasTimestamp reports whether the source timestamp parsed. Transactions
// without one are excluded from every time-bucketed computation.
func (t *Transaction) HasTimestamp() bool {
	return !t.Timestamp.IsZero()
}

// DetectedRefund returns the refund value carried by this transaction in
// the accepted currency: the explicit refund amount when positive,
// otherwise the absolute value of a negative charge amount, otherwise
// zero.
func (t *Transaction) DetectedRefund(currency string) decimal.Decimal {
	if !t.InCurrency(currency) {
		return decimal.Zero
	}
	if t.RefundAmount.IsPositive() {
		return t.RefundAmount
	}
	if t.Amount.IsNegative() {
		return t.Amount.Neg()
	}
	return decimal.Zero
}
