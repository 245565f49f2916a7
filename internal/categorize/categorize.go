// Package categorize resolves the destination account for each record.
package categorize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rumor-ml/commons.systems/qifimport/internal/record"
	"github.com/rumor-ml/commons.systems/qifimport/internal/rules"
)

// Ignore is a reserved category sentinel, not an account: a record that
// resolves to it must be dropped rather than posted.
const Ignore = "IGNORE"

// ImbalancePrefix starts the name of the per-currency fallback accounts
// used when no rule matches, e.g. "Imbalance-GBP".
const ImbalancePrefix = "Imbalance-"

// ErrUnresolved is returned when no rule matches and no imbalance fallback
// is available. The record must not be posted with a missing account.
var ErrUnresolved = errors.New("no destination account resolved")

// CurrencyLookup supplies the currency code of an account, used to name
// the imbalance fallback. The ledger book implements it.
type CurrencyLookup interface {
	AccountCurrency(fullName string) (string, error)
}

// Categorizer combines the rule engine with the imbalance fallback.
type Categorizer struct {
	engine *rules.Engine
	book   CurrencyLookup
}

// New creates a categorizer. book may be nil, in which case records no
// rule matches resolve to an ErrUnresolved error instead of an imbalance
// account.
func New(engine *rules.Engine, book CurrencyLookup) *Categorizer {
	return &Categorizer{engine: engine, book: book}
}

// Resolve returns the destination account full name for a record:
//
//  1. an explicit override already on the record always wins;
//  2. otherwise the first matching rule against the payee;
//  3. otherwise Imbalance-<currency of the record's source account>.
//
// The result may be the Ignore sentinel; the caller is responsible for
// skipping such records.
func (c *Categorizer) Resolve(rec *record.Record) (string, error) {
	if rec.SplitCategory != "" {
		return rec.SplitCategory, nil
	}

	if account, ok := c.engine.Match(rec.Payee); ok {
		return account, nil
	}

	if c.book == nil {
		return "", fmt.Errorf("payee %q: %w", rec.Payee, ErrUnresolved)
	}

	code, err := c.book.AccountCurrency(rec.Account)
	if err != nil {
		return "", fmt.Errorf("failed to derive imbalance account for %q: %w", rec.Account, err)
	}
	return ImbalancePrefix + code, nil
}

// IsImbalance reports whether an account path names a per-currency
// imbalance fallback. These accounts come into existence on demand.
func IsImbalance(fullName string) bool {
	return strings.HasPrefix(fullName, ImbalancePrefix)
}
