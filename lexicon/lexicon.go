// Package lexicon loads word-frequency lists into a set of known words used
// to validate dictionary repairs.
//
// The file format is line oriented: the first whitespace-delimited field of
// each line is taken as a word and lowercased. Additional fields, typically a
// frequency count, are ignored.
package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single line of a frequency file.
const maxLineSize = 1024 * 1024

// Lexicon is a set of lowercase words. The zero value is an empty lexicon,
// and a nil *Lexicon behaves like an empty one.
type Lexicon struct {
	words map[string]struct{}
}

// New creates a lexicon from the given words. Words are lowercased.
func New(words ...string) *Lexicon {
	l := &Lexicon{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		l.Add(w)
	}
	return l
}

// Load reads a frequency file from path. When the file does not exist an
// empty lexicon is returned together with an error wrapping fs.ErrNotExist,
// so callers can choose to continue without dictionary repairs.
func Load(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return New(), fmt.Errorf("opening lexicon: %w", err)
	}
	defer f.Close()

	l, err := Read(f)
	if err != nil {
		return New(), fmt.Errorf("reading lexicon %s: %w", path, err)
	}
	return l, nil
}

// Read parses a frequency list from r. Blank lines are skipped.
func Read(r io.Reader) (*Lexicon, error) {
	l := New()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		l.Add(fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

// Add inserts a word, lowercased. Empty words are ignored.
func (l *Lexicon) Add(word string) {
	word = strings.ToLower(word)
	if word == "" {
		return
	}
	if l.words == nil {
		l.words = make(map[string]struct{})
	}
	l.words[word] = struct{}{}
}

// Contains reports whether the lowercase form of word is known.
func (l *Lexicon) Contains(word string) bool {
	if l == nil || len(l.words) == 0 {
		return false
	}
	_, ok := l.words[strings.ToLower(word)]
	return ok
}

// Len returns the number of distinct words.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.words)
}

// Empty reports whether the lexicon has no words. Repair passes are
// disabled against an empty lexicon.
func (l *Lexicon) Empty() bool {
	return l.Len() == 0
}
