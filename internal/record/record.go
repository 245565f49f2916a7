// Package record defines the normalized transaction record produced by the
// file format parsers and consumed by categorization and posting.
package record

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TypeAccount marks an account-definition pseudo-record in QIF input.
// Records of this type update the carried account name and are never
// emitted by the parser.
const TypeAccount = "Account"

// Record is one parsed transaction. Parsers create it empty, fill fields as
// source lines or columns are read, and freeze it at the item boundary.
// The categorizer may later fill SplitCategory; everything downstream of
// that treats the record as read-only.
//
// Amounts are exact decimals. Binary floating point is never used for
// monetary values anywhere in this module.
type Record struct {
	Type     string
	Date     time.Time
	Account  string // source account full name; empty until resolved
	Amount   decimal.Decimal
	Cleared  string
	Num      string // check/reference number
	Payee    string
	Memo     string
	Address  string
	Category string

	SplitCategory string              // destination account full name; empty until resolved
	SplitMemo     string
	SplitAmount   decimal.NullDecimal // defaults to Amount when not supplied by the source
}

// EffectiveAmount returns the split amount when the source supplied one,
// otherwise the record amount.
func (r *Record) EffectiveAmount() decimal.Decimal {
	if r.SplitAmount.Valid {
		return r.SplitAmount.Decimal
	}
	return r.Amount
}

// IsAccountHeader reports whether this is a QIF account-definition
// pseudo-record rather than a transaction.
func (r *Record) IsAccountHeader() bool {
	return r.Type == TypeAccount
}

// ApplyDefaults fills fields the parser left empty: the source account and
// the split amount. Called once per record after parsing, before
// categorization.
func (r *Record) ApplyDefaults(defaultAccount string) {
	if r.Account == "" {
		r.Account = defaultAccount
	}
	if !r.SplitAmount.Valid {
		r.SplitAmount = decimal.NullDecimal{Decimal: r.Amount, Valid: true}
	}
}

// Validate checks that the record can be posted: a real calendar date and
// a resolved source account. An empty payee is legal (the transaction
// description is simply blank), as is a zero amount.
func (r *Record) Validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("record has no date")
	}
	if r.Account == "" {
		return fmt.Errorf("record has no source account")
	}
	return nil
}
