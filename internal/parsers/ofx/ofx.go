// Package ofx provides OFX/QFX statement parsing for qifimport.
package ofx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/rumor-ml/commons.systems/qifimport/internal/parser"
	"github.com/rumor-ml/commons.systems/qifimport/internal/record"
)

// Parser implements OFX/QFX parsing with a stateless design. All behavior
// is determined by the file content and optional Metadata, so the shared
// instance is safe for concurrent use.
type Parser struct{}

var parserInstance = &Parser{}

// NewParser returns the shared OFX parser instance.
func NewParser() *Parser {
	return parserInstance
}

// Name returns the parser identifier
func (p *Parser) Name() string {
	return "ofx"
}

// CanParse checks if this parser can handle the file based on extension and header
func (p *Parser) CanParse(path string, header []byte) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".ofx" && ext != ".qfx" {
		return false
	}

	// Look for OFX header markers (both v1 SGML and v2 XML formats)
	headerUpper := strings.ToUpper(string(header))
	return strings.Contains(headerUpper, "OFXHEADER") ||
		strings.Contains(headerUpper, "<?OFX") ||
		strings.Contains(headerUpper, "<OFX>")
}

// Parse extracts records from an OFX/QFX file. Bank and credit card
// statements are supported; anything else is an error.
func (p *Parser) Parse(ctx context.Context, r io.Reader, meta *parser.Metadata) ([]record.Record, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX content%s: %w", parser.FileInfo(meta), err)
	}

	// ofxgo.ParseResponse does not support cancellation; this check only
	// catches cancellation between file read and parsing.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	response, err := ofxgo.ParseResponse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file%s (%d bytes): %w", parser.FileInfo(meta), len(content), err)
	}

	if len(response.Bank) > 0 {
		stmt, ok := response.Bank[0].(*ofxgo.StatementResponse)
		if !ok {
			return nil, fmt.Errorf("unexpected bank statement type %T%s", response.Bank[0], parser.FileInfo(meta))
		}
		if stmt.BankTranList == nil {
			return []record.Record{}, nil
		}
		return convertTransactions(stmt.BankTranList.Transactions, meta)
	}

	if len(response.CreditCard) > 0 {
		stmt, ok := response.CreditCard[0].(*ofxgo.CCStatementResponse)
		if !ok {
			return nil, fmt.Errorf("unexpected credit card statement type %T%s", response.CreditCard[0], parser.FileInfo(meta))
		}
		if stmt.BankTranList == nil {
			return []record.Record{}, nil
		}
		return convertTransactions(stmt.BankTranList.Transactions, meta)
	}

	return nil, fmt.Errorf("no bank or credit card statement found in OFX file%s", parser.FileInfo(meta))
}

// convertTransactions maps OFX transactions onto records. The source
// account path is left empty; the importer fills in the configured or
// inferred default account.
func convertTransactions(txns []ofxgo.Transaction, meta *parser.Metadata) ([]record.Record, error) {
	items := make([]record.Record, 0, len(txns))

	for _, txn := range txns {
		date := txn.DtPosted.Time
		if date.IsZero() {
			date = txn.DtUser.Time
		}
		if date.IsZero() {
			return nil, fmt.Errorf("transaction %s missing posted and user dates%s",
				txn.FiTID.String(), parser.FileInfo(meta))
		}
		// Duplicate detection compares dates only; drop the time of day.
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

		payee := strings.TrimSpace(txn.Name.String())
		if payee == "" {
			payee = strings.TrimSpace(txn.Memo.String())
		}
		if payee == "" {
			return nil, fmt.Errorf("transaction %s missing both name and memo%s",
				txn.FiTID.String(), parser.FileInfo(meta))
		}

		rec := record.Record{
			Date:   date,
			Payee:  payee,
			Memo:   strings.TrimSpace(txn.Memo.String()),
			Num:    strings.TrimSpace(txn.CheckNum.String()),
			Amount: decimal.NewFromBigRat(&txn.TrnAmt.Rat, 2),
		}
		if rec.Num == "" {
			rec.Num = strings.TrimSpace(txn.FiTID.String())
		}
		items = append(items, rec)
	}

	return items, nil
}
