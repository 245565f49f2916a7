package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrAccountNotFound is returned when no account exists at the queried path.
var ErrAccountNotFound = errors.New("account not found")

// ErrCurrencyNotFound is returned when no commodity exists for the queried
// ISO code.
var ErrCurrencyNotFound = errors.New("currency not found")

// Account is a handle to one node of the account tree.
type Account struct {
	GUID          string
	Name          string
	FullName      string // colon-separated path from the tree root
	CommodityGUID string
}

// Commodity is a currency known to the book.
type Commodity struct {
	GUID     string
	Mnemonic string // ISO code, e.g. "GBP"
}

// AccountByPath resolves an account by its colon-separated full name.
// Returns ErrAccountNotFound (wrapped) when any path segment is missing.
func (b *Book) AccountByPath(fullName string) (*Account, error) {
	segments := splitPath(fullName)
	if len(segments) == 0 {
		return nil, fmt.Errorf("empty account path: %w", ErrAccountNotFound)
	}

	var (
		parent    sql.NullString
		guid      string
		commodity string
	)
	for _, name := range segments {
		row := b.q().QueryRow(
			`SELECT guid, commodity_guid FROM accounts
			 WHERE name = ? AND parent_guid IS ?`,
			name, parent)
		if err := row.Scan(&guid, &commodity); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("account %q: %w", fullName, ErrAccountNotFound)
			}
			return nil, fmt.Errorf("failed to resolve account %q: %w", fullName, err)
		}
		parent = sql.NullString{String: guid, Valid: true}
	}

	return &Account{
		GUID:          guid,
		Name:          segments[len(segments)-1],
		FullName:      fullName,
		CommodityGUID: commodity,
	}, nil
}

// EnsureAccount resolves an account by full name, creating it (and any
// missing ancestors) denominated in the given currency. Used for book
// setup and for imbalance accounts, which come into existence on demand.
func (b *Book) EnsureAccount(fullName, currencyCode string) (*Account, error) {
	currency, err := b.EnsureCurrency(currencyCode)
	if err != nil {
		return nil, err
	}

	segments := splitPath(fullName)
	if len(segments) == 0 {
		return nil, fmt.Errorf("empty account path")
	}

	q, err := b.begin()
	if err != nil {
		return nil, err
	}

	var parent sql.NullString
	var guid, commodity string
	for _, name := range segments {
		row := q.QueryRow(
			`SELECT guid, commodity_guid FROM accounts
			 WHERE name = ? AND parent_guid IS ?`,
			name, parent)
		err := row.Scan(&guid, &commodity)
		if errors.Is(err, sql.ErrNoRows) {
			guid = newGUID()
			commodity = currency.GUID
			if _, err := q.Exec(
				`INSERT INTO accounts (guid, name, parent_guid, commodity_guid)
				 VALUES (?, ?, ?, ?)`,
				guid, name, parent, commodity); err != nil {
				return nil, fmt.Errorf("failed to create account %q: %w", fullName, err)
			}
		} else if err != nil {
			return nil, fmt.Errorf("failed to resolve account %q: %w", fullName, err)
		}
		parent = sql.NullString{String: guid, Valid: true}
	}

	return &Account{
		GUID:          guid,
		Name:          segments[len(segments)-1],
		FullName:      fullName,
		CommodityGUID: commodity,
	}, nil
}

// CurrencyByCode resolves a currency by ISO code. Returns
// ErrCurrencyNotFound (wrapped) when the book does not know the code.
func (b *Book) CurrencyByCode(code string) (*Commodity, error) {
	row := b.q().QueryRow(
		`SELECT guid FROM commodities WHERE namespace = 'CURRENCY' AND mnemonic = ?`, code)
	var guid string
	if err := row.Scan(&guid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("currency %q: %w", code, ErrCurrencyNotFound)
		}
		return nil, fmt.Errorf("failed to resolve currency %q: %w", code, err)
	}
	return &Commodity{GUID: guid, Mnemonic: code}, nil
}

// EnsureCurrency resolves a currency by ISO code, creating it if missing.
func (b *Book) EnsureCurrency(code string) (*Commodity, error) {
	currency, err := b.CurrencyByCode(code)
	if err == nil {
		return currency, nil
	}
	if !errors.Is(err, ErrCurrencyNotFound) {
		return nil, err
	}

	q, err := b.begin()
	if err != nil {
		return nil, err
	}
	guid := newGUID()
	if _, err := q.Exec(
		`INSERT INTO commodities (guid, namespace, mnemonic) VALUES (?, 'CURRENCY', ?)`,
		guid, code); err != nil {
		return nil, fmt.Errorf("failed to create currency %q: %w", code, err)
	}
	return &Commodity{GUID: guid, Mnemonic: code}, nil
}

// AccountCurrency returns the ISO code of the commodity the account at the
// given path is denominated in. This is what names imbalance accounts.
func (b *Book) AccountCurrency(fullName string) (string, error) {
	account, err := b.AccountByPath(fullName)
	if err != nil {
		return "", err
	}
	row := b.q().QueryRow(`SELECT mnemonic FROM commodities WHERE guid = ?`, account.CommodityGUID)
	var mnemonic string
	if err := row.Scan(&mnemonic); err != nil {
		return "", fmt.Errorf("failed to resolve commodity of %q: %w", fullName, err)
	}
	return mnemonic, nil
}

func splitPath(fullName string) []string {
	if strings.TrimSpace(fullName) == "" {
		return nil
	}
	return strings.Split(fullName, ":")
}
