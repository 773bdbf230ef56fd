package record

import "regexp"

// Field is a canonical semantic field of a payment record.
type Field string

const (
	FieldTimestamp     Field = "timestamp"
	FieldCustomerID    Field = "customer_id"
	FieldStatus        Field = "status"
	FieldCurrency      Field = "currency"
	FieldAmount        Field = "amount"
	FieldRefundAmount  Field = "refund_amount"
	FieldFee           Field = "fee"
	FieldDeclineReason Field = "decline_reason"
	FieldCardBrand     Field = "card_brand"
	FieldCardFunding   Field = "card_funding"
	FieldPaymentMethod Field = "payment_method"
	FieldCountry       Field = "country"
	FieldState         Field = "state"
)

// FieldSpec declares how one canonical field is located in a record's
// key set: the first key matching Pattern and not matching Exclude wins;
// when nothing matches, Default is used verbatim.
type FieldSpec struct {
	Field   Field
	Pattern *regexp.Regexp
	Exclude *regexp.Regexp
	Default string
}

var specs = []FieldSpec{
	{FieldTimestamp, re(`(?i)created|date`), nil, "Created date (UTC)"},
	{FieldCustomerID, re(`(?i)customer.*id|cust.*id`), nil, "Customer ID"},
	{FieldStatus, re(`(?i)status`), nil, "Status"},
	{FieldCurrency, re(`(?i)currency`), nil, "Currency"},
	{FieldAmount, re(`(?i)^amount$`), re(`(?i)refund`), "Amount"},
	{FieldRefundAmount, re(`(?i)refund`), nil, "Amount Refunded"},
	{FieldFee, re(`(?i)fee`), nil, "Fee"},
	{FieldDeclineReason, re(`(?i)decline.*reason`), nil, "Decline Reason"},
	{FieldCardBrand, re(`(?i)card.*brand`), nil, "Card Brand"},
	{FieldCardFunding, re(`(?i)card.*funding`), nil, "Card Funding"},
	{FieldPaymentMethod, re(`(?i)tokenization.*method`), nil, "Card Tokenization Method"},
	{FieldCountry, re(`(?i)card.*issue.*country`), nil, "Card Issue Country"},
	{FieldState, re(`(?i)card.*address.*state`), nil, "Card Address State"},
}

func re(pattern string) *regexp.Regexp { return regexp.MustCompile(pattern) }

// Columns maps each canonical field to the column name it resolved to.
type Columns map[Field]string

// Resolve maps canonical fields to column names using the given header
// order. Resolution is performed once per dataset, never per row. A field
// whose default column is absent from the data simply yields empty values
// downstream; that is tolerated, not an error.
func Resolve(keys []string) Columns {
	cols := make(Columns, len(specs))
	for _, spec := range specs {
		cols[spec.Field] = spec.Default
		for _, key := range keys {
			if spec.Pattern.MatchString(key) && (spec.Exclude == nil || !spec.Exclude.MatchString(key)) {
				cols[spec.Field] = key
				break
			}
		}
	}
	return cols
}

// Get returns the record value for a canonical field, or "" when the
// resolved column is missing from the record.
func (c Columns) Get(r Record, f Field) string {
	return r[c[f]]
}
