package txn

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/record"
)

// timestampLayouts covers the formats seen in processor exports.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// DropStats counts records excluded or degraded during normalization.
type DropStats struct {
	MissingCustomerID int
	BadTimestamp      int
}

// Normalize converts raw records into Transactions using the resolved
// column mapping. Records without a customer id are dropped entirely.
// Unparsable timestamps leave the zero time on the transaction, which
// excludes it from time-bucketed aggregates but not from per-transaction
// taxonomies. Unparsable amounts degrade to zero.
func Normalize(records []record.Record, cols record.Columns) ([]Transaction, DropStats) {
	txs := make([]Transaction, 0, len(records))
	var stats DropStats
	for _, r := range records {
		cid := strings.TrimSpace(cols.Get(r, record.FieldCustomerID))
		if cid == "" {
			stats.MissingCustomerID++
			continue
		}
		ts := parseTimestamp(cols.Get(r, record.FieldTimestamp))
		if ts.IsZero() {
			stats.BadTimestamp++
		}
		txs = append(txs, Transaction{
			CustomerID:    cid,
			Timestamp:     ts,
			Status:        strings.TrimSpace(cols.Get(r, record.FieldStatus)),
			Currency:      strings.TrimSpace(cols.Get(r, record.FieldCurrency)),
			Amount:        parseAmount(cols.Get(r, record.FieldAmount)),
			RefundAmount:  parseAmount(cols.Get(r, record.FieldRefundAmount)),
			DeclineReason: strings.TrimSpace(cols.Get(r, record.FieldDeclineReason)),
			CardBrand:     strings.TrimSpace(cols.Get(r, record.FieldCardBrand)),
			CardFunding:   strings.TrimSpace(cols.Get(r, record.FieldCardFunding)),
			PaymentMethod: strings.TrimSpace(cols.Get(r, record.FieldPaymentMethod)),
			Country:       strings.TrimSpace(cols.Get(r, record.FieldCountry)),
			State:         strings.TrimSpace(cols.Get(r, record.FieldState)),
		})
	}
	return txs, stats
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
