package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExpandPlainFiles(t *testing.T) {
	dir := t.TempDir()
	qif := filepath.Join(dir, "statement.qif")
	writeFile(t, qif)

	inputs, err := Expand([]string{qif})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(inputs) != 1 {
		t.Fatalf("expected 1 input, got %d", len(inputs))
	}
	if inputs[0].Path != qif {
		t.Errorf("expected path %s, got %s", qif, inputs[0].Path)
	}
	if inputs[0].Metadata.BaseName() != "statement.qif" {
		t.Errorf("unexpected base name %s", inputs[0].Metadata.BaseName())
	}
}

func TestExpandKeepsExplicitFileWithUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	writeFile(t, txt)

	inputs, err := Expand([]string{txt})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(inputs) != 1 {
		t.Fatalf("expected explicit file to be kept, got %d inputs", len(inputs))
	}
}

func TestExpandDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.csv"))
	writeFile(t, filepath.Join(dir, "a.qif"))
	writeFile(t, filepath.Join(dir, "nested", "c.QFX"))
	writeFile(t, filepath.Join(dir, "readme.md"))

	inputs, err := Expand([]string{dir})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(inputs) != 3 {
		t.Fatalf("expected 3 inputs, got %d", len(inputs))
	}
	// Directory scans are sorted by path.
	if filepath.Base(inputs[0].Path) != "a.qif" {
		t.Errorf("expected a.qif first, got %s", inputs[0].Path)
	}
	if filepath.Base(inputs[1].Path) != "b.csv" {
		t.Errorf("expected b.csv second, got %s", inputs[1].Path)
	}
	if filepath.Base(inputs[2].Path) != "c.QFX" {
		t.Errorf("expected c.QFX third, got %s", inputs[2].Path)
	}
}

func TestExpandMissingInput(t *testing.T) {
	_, err := Expand([]string{"/nonexistent/input.qif"})
	if err == nil {
		t.Fatal("expected error for missing input")
	}
}
