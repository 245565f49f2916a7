// Package dedup implements the two duplicate-avoidance layers of the
// importer: whole-file replay avoidance via a persisted set of imported
// file names, and per-record duplicate detection against splits already
// posted to the ledger.
package dedup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rumor-ml/commons.systems/qifimport/internal/ledger"
)

// FileSet is the persisted set of base file names that have been fully
// imported by a previous run. It is extended only after a successful,
// non-simulated run; a dry run never writes it back.
type FileSet struct {
	files map[string]struct{}
}

// NewFileSet returns an empty set.
func NewFileSet() *FileSet {
	return &FileSet{files: make(map[string]struct{})}
}

// LoadFileSet reads the cache file, a flat JSON array of strings. A
// missing file yields an empty set; an unreadable or malformed file is an
// error, because silently starting with an empty set would re-import
// everything.
func LoadFileSet(path string) (*FileSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewFileSet(), nil
		}
		return nil, fmt.Errorf("failed to read imported-file cache %q: %w", path, err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse imported-file cache %q: %w", path, err)
	}

	set := NewFileSet()
	for _, name := range names {
		set.files[name] = struct{}{}
	}
	return set, nil
}

// Contains reports whether the base file name was imported by a previous
// run.
func (s *FileSet) Contains(baseName string) bool {
	_, ok := s.files[baseName]
	return ok
}

// Add records a base file name as imported.
func (s *FileSet) Add(baseName string) {
	s.files[baseName] = struct{}{}
}

// Len returns the number of recorded file names.
func (s *FileSet) Len() int {
	return len(s.files)
}

// Save atomically writes the set back to disk: temp file in the same
// directory, then rename. Names are sorted only to keep the file diffable;
// the set itself has no ordering invariant.
func (s *FileSet) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)

	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal imported-file cache: %w", err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp cache file: %w", err)
	}

	return nil
}

// MatchesExisting reports whether an already-posted split matches the
// candidate record: equal description, equal posting date (date only),
// and exactly equal value. The triple is a heuristic, not an identifier;
// it deliberately trades occasional false positives for not needing a
// stable external transaction ID.
func MatchesExisting(splits []ledger.Split, payee string, date time.Time, value decimal.Decimal) bool {
	for _, split := range splits {
		if split.Description == payee &&
			sameDay(split.PostDate, date) &&
			split.Value.Equal(value) {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
