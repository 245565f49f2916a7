package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Split is one leg of a posted transaction, joined with the fields of its
// parent transaction that duplicate detection compares against.
type Split struct {
	GUID        string
	TxGUID      string
	AccountGUID string
	Value       decimal.Decimal
	Description string
	PostDate    time.Time
}

// SplitsFor returns all splits posted to the given account, each carrying
// its transaction's description and post date. The result reflects
// uncommitted writes from the current run.
func (b *Book) SplitsFor(account *Account) ([]Split, error) {
	rows, err := b.q().Query(
		`SELECT s.guid, s.tx_guid, s.account_guid, s.value, t.description, t.post_date
		 FROM splits s JOIN transactions t ON t.guid = s.tx_guid
		 WHERE s.account_guid = ?`,
		account.GUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits for %q: %w", account.FullName, err)
	}
	defer rows.Close()

	var splits []Split
	for rows.Next() {
		var (
			s        Split
			value    string
			postDate string
		)
		if err := rows.Scan(&s.GUID, &s.TxGUID, &s.AccountGUID, &value, &s.Description, &postDate); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		s.Value, err = decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("corrupt split value %q in book %q: %w", value, b.path, err)
		}
		s.PostDate, err = time.ParseInLocation(dateLayout, postDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("corrupt post date %q in book %q: %w", postDate, b.path, err)
		}
		splits = append(splits, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list splits for %q: %w", account.FullName, err)
	}
	return splits, nil
}

// AddTransaction posts a balanced two-split transaction: value against
// from, the negation against to. The write lands in the pending book
// transaction and becomes durable on Save.
func (b *Book) AddTransaction(postDate time.Time, description string, currency *Commodity, from, to *Account, value decimal.Decimal) error {
	if from == nil || to == nil {
		return fmt.Errorf("transaction %q needs two resolved accounts", description)
	}
	if currency == nil {
		return fmt.Errorf("transaction %q needs a currency", description)
	}

	q, err := b.begin()
	if err != nil {
		return err
	}

	txGUID := newGUID()
	if _, err := q.Exec(
		`INSERT INTO transactions (guid, currency_guid, post_date, enter_date, description)
		 VALUES (?, ?, ?, ?, ?)`,
		txGUID, currency.GUID, postDate.Format(dateLayout),
		time.Now().UTC().Format(time.RFC3339), description); err != nil {
		return fmt.Errorf("failed to insert transaction %q: %w", description, err)
	}

	legs := []struct {
		account *Account
		value   decimal.Decimal
	}{
		{from, value},
		{to, value.Neg()},
	}
	for _, leg := range legs {
		if _, err := q.Exec(
			`INSERT INTO splits (guid, tx_guid, account_guid, value) VALUES (?, ?, ?, ?)`,
			newGUID(), txGUID, leg.account.GUID, leg.value.String()); err != nil {
			return fmt.Errorf("failed to insert split for %q: %w", leg.account.FullName, err)
		}
	}

	return nil
}
