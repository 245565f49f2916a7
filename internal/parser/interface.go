package parser

import (
	"context"
	"io"

	"github.com/rumor-ml/commons.systems/qifimport/internal/record"
)

// Parser is the strategy interface for all input format parsers.
//
// Parse must be restartable: calling it again with a fresh reader over the
// same content yields the same records. Implementations must return a
// non-nil slice (possibly empty) whenever the error is nil.
type Parser interface {
	// Name returns the parser identifier (e.g., "qif", "csv", "ofx")
	Name() string

	// CanParse checks if this parser can handle the file, based on the
	// path and the first bytes of content
	CanParse(path string, header []byte) bool

	// Parse reads the whole input and returns normalized records in
	// file order
	Parse(ctx context.Context, r io.Reader, meta *Metadata) ([]record.Record, error)
}
