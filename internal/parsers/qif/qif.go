// Package qif provides line-oriented QIF statement parsing for qifimport.
package qif

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rumor-ml/commons.systems/qifimport/internal/parser"
	"github.com/rumor-ml/commons.systems/qifimport/internal/record"
)

// Parser implements QIF parsing with a stateless design. All parse state
// lives in a per-call state struct, so the shared instance is safe for
// concurrent use.
type Parser struct{}

var parserInstance = &Parser{}

// NewParser returns the shared QIF parser instance.
func NewParser() *Parser {
	return parserInstance
}

// Name returns the parser identifier
func (p *Parser) Name() string {
	return "qif"
}

// CanParse checks if this parser can handle the file based on extension
func (p *Parser) CanParse(path string, header []byte) bool {
	return strings.ToLower(filepath.Ext(path)) == ".qif"
}

// Parse runs the line state machine over the input and returns all fully
// terminated records. A trailing record never closed by a '^' marker is
// discarded; QIF files are expected to end with a terminator.
func (p *Parser) Parse(ctx context.Context, r io.Reader, meta *parser.Metadata) ([]record.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	items := []record.Record{}
	st := newState()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		emitted, err := st.step(strings.TrimRight(scanner.Text(), "\r"), lineNo, meta)
		if err != nil {
			return nil, err
		}
		if emitted != nil {
			items = append(items, *emitted)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read QIF content%s: %w", parser.FileInfo(meta), err)
	}

	return items, nil
}

// state is the complete mutable state of the line machine: the record under
// construction plus the account name carried across record boundaries. It is
// an explicit struct (rather than loop-local variables) so a single line
// transition can be exercised in isolation.
type state struct {
	account string
	current record.Record
}

func newState() *state {
	return &state{}
}

// step processes one input line. It returns a completed record when the
// line is an end-of-item marker closing a transaction, and an error when
// the line carries a malformed date or amount. Unrecognized field tags are
// skipped with a diagnostic and never abort the parse.
func (s *state) step(line string, lineNo int, meta *parser.Metadata) (*record.Record, error) {
	if line == "" {
		return nil, nil
	}

	tag := line[0]
	data := strings.TrimSpace(line[1:])

	switch tag {
	case '^':
		var emitted *record.Record
		if !s.current.IsAccountHeader() {
			done := s.current
			emitted = &done
		}
		s.current = record.Record{Account: s.account}
		return emitted, nil
	case 'D':
		date, err := parseDate(data)
		if err != nil {
			return nil, fmt.Errorf("line %d%s: %w", lineNo, parser.FileInfo(meta), err)
		}
		s.current.Date = date
	case 'T':
		amount, err := record.ParseAmount(data)
		if err != nil {
			return nil, fmt.Errorf("line %d%s: %w", lineNo, parser.FileInfo(meta), err)
		}
		s.current.Amount = amount
	case '$':
		amount, err := record.ParseAmount(data)
		if err != nil {
			return nil, fmt.Errorf("line %d%s: %w", lineNo, parser.FileInfo(meta), err)
		}
		s.current.SplitAmount = decimal.NullDecimal{Decimal: amount, Valid: true}
	case 'C':
		s.current.Cleared = data
	case 'P':
		s.current.Payee = data
	case 'M':
		s.current.Memo = data
	case 'A':
		s.current.Address = data
	case 'L':
		s.current.Category = data
	case 'S':
		s.current.SplitCategory = data
	case 'E':
		s.current.SplitMemo = data
	case 'N':
		// Only meaningful inside an account-definition record, where it
		// names the account carried into subsequent transactions.
		if s.current.IsAccountHeader() {
			s.account = data
		}
	case '!':
		s.current.Type = data
	default:
		fmt.Fprintf(os.Stderr, "Warning: skipping unknown QIF line %d%s: %q\n",
			lineNo, parser.FileInfo(meta), line)
	}

	return nil, nil
}

// parseDate parses the QIF date field, day/month/year with numeric
// components. Malformed components and impossible calendar dates are both
// parse errors; nothing is silently defaulted.
func parseDate(data string) (time.Time, error) {
	parts := strings.Split(data, "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date %q: want day/month/year", data)
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", data, err)
		}
		nums[i] = n
	}

	day, month, year := nums[0], nums[1], nums[2]
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components (e.g. 31/2 becomes 2/3),
	// so round-trip the components to reject impossible dates.
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, fmt.Errorf("invalid calendar date %q", data)
	}
	return date, nil
}
