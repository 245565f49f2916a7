// Package csv provides header-labeled bank export parsing for qifimport.
//
// Each row maps to exactly one record; unlike the QIF parser there is no
// state carried between rows. Column resolution tries a fixed, ordered list
// of header aliases per logical field and takes the first one present.
package csv

import (
	"context"
	encsv "encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rumor-ml/commons.systems/qifimport/internal/parser"
	"github.com/rumor-ml/commons.systems/qifimport/internal/record"
)

// Header aliases per logical field, tried in order. These cover the export
// formats of the banks this importer grew up with; absence of every alias
// leaves the field empty rather than erroring.
var (
	dateHeaders        = []string{"date", "Date", "Transaction Date"}
	descriptionHeaders = []string{"description", "Description", "Transaction Remarks"}
	withdrawalHeaders  = []string{"Withdrawals", "Withdrawal Amount (INR )", "amount", "Amount(GBP)"}
	depositHeaders     = []string{"Deposits", "Deposit Amount (INR )"}
	typeHeaders        = []string{"debitCreditCode"}
)

// pendingMarker rows describe transactions the bank has not settled yet;
// they are excluded from the output entirely.
const pendingMarker = "Pending"

// Placeholder values banks emit for an absent withdrawal/deposit cell.
func isPlaceholder(v string) bool {
	return v == "" || v == "--" || v == "0"
}

// dateLayouts tried in order when parsing the date column.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006/01/02",
	"Jan 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
}

// Parser implements tabular bank export parsing with a stateless design.
type Parser struct{}

var parserInstance = &Parser{}

// NewParser returns the shared CSV parser instance.
func NewParser() *Parser {
	return parserInstance
}

// Name returns the parser identifier
func (p *Parser) Name() string {
	return "csv"
}

// CanParse checks if this parser can handle the file based on extension.
// Any .csv with a readable header row is claimed; an unrecognized column
// layout then fails in Parse with a diagnostic naming the missing field,
// rather than falling out of the registry as an unparseable file.
func (p *Parser) CanParse(path string, header []byte) bool {
	if strings.ToLower(filepath.Ext(path)) != ".csv" {
		return false
	}

	r := encsv.NewReader(strings.NewReader(string(header)))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	_, err := r.Read()
	return err == nil
}

// Parse reads all header-labeled rows and returns one record per settled row.
func (p *Parser) Parse(ctx context.Context, r io.Reader, meta *parser.Metadata) ([]record.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	csvReader := encsv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV content%s: %w", parser.FileInfo(meta), err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("CSV file is empty%s", parser.FileInfo(meta))
	}

	header := newHeaderIndex(rows[0])

	items := []record.Record{}
	for i, row := range rows[1:] {
		rec, skip, err := p.parseRow(header, row)
		if err != nil {
			return nil, fmt.Errorf("row %d%s: %w", i+2, parser.FileInfo(meta), err)
		}
		if skip {
			continue
		}
		items = append(items, *rec)
	}

	return items, nil
}

// headerIndex maps column names to positions for alias lookup.
type headerIndex map[string]int

func newHeaderIndex(row []string) headerIndex {
	idx := make(headerIndex, len(row))
	for i, name := range row {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

// value resolves a logical field: the first alias present in the header
// wins. Returns ok=false when no alias is present at all.
func (h headerIndex) value(row []string, aliases []string) (string, bool) {
	for _, alias := range aliases {
		if i, present := h[alias]; present && i < len(row) {
			return strings.TrimSpace(row[i]), true
		}
	}
	return "", false
}

// parseRow converts one data row into a record. skip=true means the row is
// excluded from output (pending transactions).
func (p *Parser) parseRow(header headerIndex, row []string) (*record.Record, bool, error) {
	rec := &record.Record{}

	dateValue, _ := header.value(row, dateHeaders)
	if dateValue == pendingMarker {
		return nil, true, nil
	}
	date, err := parseDate(dateValue)
	if err != nil {
		return nil, false, err
	}
	rec.Date = date

	rec.Payee, _ = header.value(row, descriptionHeaders)

	// Two mutually exclusive amount strategies, selected by the presence
	// of a debit/credit type column.
	if txnType, present := header.value(row, typeHeaders); present {
		raw, _ := header.value(row, withdrawalHeaders)
		amount, err := record.ParseAmount(raw)
		if err != nil {
			return nil, false, err
		}
		if txnType == "Debit" {
			amount = amount.Neg()
		}
		rec.Amount = amount
	} else {
		// Withdrawal first, then deposit: when a row carries both, the
		// deposit assignment lands last and wins. Observable behavior of
		// the long-standing import path; kept deliberately (see DESIGN.md).
		if withdrawal, present := header.value(row, withdrawalHeaders); present && !isPlaceholder(withdrawal) {
			amount, err := record.ParseAmount(withdrawal)
			if err != nil {
				return nil, false, err
			}
			rec.Amount = amount.Neg()
		}
		if deposit, present := header.value(row, depositHeaders); present && !isPlaceholder(deposit) {
			amount, err := record.ParseAmount(deposit)
			if err != nil {
				return nil, false, err
			}
			rec.Amount = amount
		}
	}

	return rec, false, nil
}

// parseDate tries each accepted layout in order; a value no layout accepts
// is a fatal parse error for the file.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}
