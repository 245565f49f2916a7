package parser

import (
	"fmt"
	"path/filepath"
	"time"
)

// Metadata carries context about the file being parsed, mainly so parsers
// can produce error messages that name the offending file. It is optional:
// a nil *Metadata is accepted everywhere.
type Metadata struct {
	filePath   string
	detectedAt time.Time
}

// NewMetadata creates a Metadata instance with validated required fields.
func NewMetadata(filePath string, detectedAt time.Time) (*Metadata, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}
	if detectedAt.IsZero() {
		return nil, fmt.Errorf("detected time cannot be zero")
	}
	return &Metadata{
		filePath:   filePath,
		detectedAt: detectedAt,
	}, nil
}

// FilePath returns the full path of the source file.
func (m *Metadata) FilePath() string { return m.filePath }

// BaseName returns the base file name, the identifier used by the
// imported-file cache.
func (m *Metadata) BaseName() string { return filepath.Base(m.filePath) }

// DetectedAt returns when the file was discovered.
func (m *Metadata) DetectedAt() time.Time { return m.detectedAt }

// FileInfo returns a formatted file path fragment for error messages.
// Returns the empty string when no metadata is available.
func FileInfo(meta *Metadata) string {
	if meta != nil && meta.filePath != "" {
		return fmt.Sprintf(" from %s", meta.filePath)
	}
	return ""
}
