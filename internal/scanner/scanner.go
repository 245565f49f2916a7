// Package scanner expands the importer's input arguments: plain files are
// passed through, directories are walked for importable statement files.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rumor-ml/commons.systems/qifimport/internal/parser"
)

// Input is one file to import, with its metadata.
type Input struct {
	Path     string
	Metadata *parser.Metadata
}

// Expand resolves a mixed list of file and directory arguments into a flat
// list of importable files. Files given explicitly are always kept (the
// registry decides whether anything can parse them); files found inside
// directories are filtered by extension. Directory results are sorted so
// runs are deterministic.
func Expand(args []string) ([]Input, error) {
	var inputs []Input

	for _, arg := range args {
		path := expandHome(arg)

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat input %s: %w", arg, err)
		}

		if !info.IsDir() {
			input, err := newInput(path)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, input)
			continue
		}

		var found []string
		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() || !isStatementFile(p) {
				return nil
			}
			found = append(found, p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory %s: %w", arg, err)
		}
		sort.Strings(found)
		for _, p := range found {
			input, err := newInput(p)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, input)
		}
	}

	return inputs, nil
}

func newInput(path string) (Input, error) {
	meta, err := parser.NewMetadata(path, time.Now())
	if err != nil {
		return Input{}, fmt.Errorf("failed to build metadata for %s: %w", path, err)
	}
	return Input{Path: path, Metadata: meta}, nil
}

// isStatementFile checks if a file has a known importable extension.
func isStatementFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".qif", ".csv", ".ofx", ".qfx":
		return true
	}
	return false
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
