// Package ledger implements the double-entry book the importer posts into,
// backed by a SQLite file. Accounts form a tree addressed by colon-separated
// full names ("Expenses:Groceries"); every transaction has exactly two
// splits whose values sum to zero.
package ledger

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS commodities (
	guid      TEXT PRIMARY KEY,
	namespace TEXT NOT NULL DEFAULT 'CURRENCY',
	mnemonic  TEXT NOT NULL,
	UNIQUE (namespace, mnemonic)
);
CREATE TABLE IF NOT EXISTS accounts (
	guid           TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	parent_guid    TEXT REFERENCES accounts (guid),
	commodity_guid TEXT NOT NULL REFERENCES commodities (guid),
	UNIQUE (parent_guid, name)
);
CREATE TABLE IF NOT EXISTS transactions (
	guid          TEXT PRIMARY KEY,
	currency_guid TEXT NOT NULL REFERENCES commodities (guid),
	post_date     TEXT NOT NULL,
	enter_date    TEXT NOT NULL,
	description   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS splits (
	guid         TEXT PRIMARY KEY,
	tx_guid      TEXT NOT NULL REFERENCES transactions (guid),
	account_guid TEXT NOT NULL REFERENCES accounts (guid),
	value        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS splits_account_idx ON splits (account_guid);
`

// Book is an open ledger file. Mutations accumulate in a single SQL
// transaction that Save commits; a book closed without Save discards them.
// Reads go through the same transaction, so splits added during a run are
// visible to later duplicate checks in that run.
//
// Book is not safe for concurrent use; the importer is strictly sequential.
type Book struct {
	db   *sql.DB
	tx   *sql.Tx
	path string
}

// Open opens (creating if necessary) a book file and ensures the schema
// exists.
func Open(path string) (*Book, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open book %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize book schema in %q: %w", path, err)
	}
	return &Book{db: db, path: path}, nil
}

// Path returns the book file path.
func (b *Book) Path() string { return b.path }

// Save commits all mutations made since Open or the previous Save.
// A no-op when nothing was written.
func (b *Book) Save() error {
	if b.tx == nil {
		return nil
	}
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("failed to save book %q: %w", b.path, err)
	}
	b.tx = nil
	return nil
}

// Close discards unsaved mutations and releases the underlying file.
func (b *Book) Close() error {
	if b.tx != nil {
		b.tx.Rollback()
		b.tx = nil
	}
	return b.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// q returns the pending transaction when one exists so reads observe
// uncommitted writes.
func (b *Book) q() querier {
	if b.tx != nil {
		return b.tx
	}
	return b.db
}

// begin lazily starts the write transaction.
func (b *Book) begin() (querier, error) {
	if b.tx == nil {
		tx, err := b.db.Begin()
		if err != nil {
			return nil, fmt.Errorf("failed to begin book transaction: %w", err)
		}
		b.tx = tx
	}
	return b.tx, nil
}

// newGUID returns a 32-character hex identifier for ledger rows.
func newGUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
