// Package report serializes the result of an import run as JSON, either to
// a file or to stdout.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// FileResult summarizes what happened to a single input file.
type FileResult struct {
	File       string `json:"file"`
	Parser     string `json:"parser,omitempty"`
	Replayed   bool   `json:"replayed,omitempty"`
	Records    int    `json:"records"`
	Posted     int    `json:"posted"`
	Duplicates int    `json:"duplicates"`
	Ignored    int    `json:"ignored"`
}

// Report is the full run summary.
type Report struct {
	GeneratedAt    time.Time    `json:"generated_at"`
	DryRun         bool         `json:"dry_run"`
	Currency       string       `json:"currency"`
	Files          []FileResult `json:"files"`
	Posted         int          `json:"posted"`
	Duplicates     int          `json:"duplicates"`
	Ignored        int          `json:"ignored"`
	RulesMatched   int          `json:"rules_matched"`
	RulesUnmatched int          `json:"rules_unmatched"`
	RuleCoverage   float64      `json:"rule_coverage"`
}

// Write serializes the report to w with 2-space indentation.
func Write(r *Report, w io.Writer) error {
	if r == nil {
		return fmt.Errorf("report cannot be nil")
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report as JSON: %w", err)
	}

	return nil
}

// WriteToFile writes the report to filePath, or to stdout when filePath is
// empty.
func WriteToFile(r *Report, filePath string) (err error) {
	if r == nil {
		return fmt.Errorf("report cannot be nil")
	}

	if filePath == "" {
		return Write(r, os.Stdout)
	}

	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %w", filePath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close report file %s: %w", filePath, closeErr)
		}
	}()

	if err = Write(r, f); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", filePath, err)
	}

	return nil
}

// Load reads a previously written report, mainly for tests and tooling.
func Load(filePath string) (*Report, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", filePath, closeErr)
		}
	}()

	var r Report
	if err := json.NewDecoder(f).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode report JSON: %w", err)
	}

	return &r, nil
}
