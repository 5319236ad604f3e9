package lexicon

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	input := "the 23135851162\nOf 13151942776\n\n  and 12997637966\nin\n"
	l, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if l.Len() != 4 {
		t.Errorf("Len() = %d, want 4", l.Len())
	}

	for _, w := range []string{"the", "of", "OF", "and", "In"} {
		if !l.Contains(w) {
			t.Errorf("Contains(%q) = false, want true", w)
		}
	}

	if l.Contains("23135851162") {
		t.Error("frequency column should not be loaded as a word")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
	if l == nil || !l.Empty() {
		t.Error("expected empty, non-nil lexicon for missing file")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freq.txt")
	if err := os.WriteFile(path, []byte("house 10\nboat 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !l.Contains("house") || !l.Contains("boat") {
		t.Error("expected loaded words to be present")
	}
}

func TestNilLexicon(t *testing.T) {
	var l *Lexicon
	if l.Contains("the") {
		t.Error("nil lexicon should contain nothing")
	}
	if !l.Empty() {
		t.Error("nil lexicon should be empty")
	}
}
