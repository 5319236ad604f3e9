package clean

import (
	"unicode/utf8"

	"github.com/tsawler/corpusprep/lexicon"
)

// Stats accumulates the repairs made while cleaning.
type Stats struct {
	// BrokenPairs is the number of fragment/word pairs considered for joining.
	BrokenPairs int `json:"broken_pairs"`

	// Joins is the number of pairs merged into a known word.
	Joins int `json:"joins"`

	// Splits is the number of tokens divided into two known words.
	Splits int `json:"splits"`

	// DropCaps is the number of drop-cap substitutions.
	DropCaps int `json:"drop_caps"`
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		BrokenPairs: s.BrokenPairs + o.BrokenPairs,
		Joins:       s.Joins + o.Joins,
		Splits:      s.Splits + o.Splits,
		DropCaps:    s.DropCaps + o.DropCaps,
	}
}

// TotalFixes returns joins + splits + drop-cap fixes.
func (s Stats) TotalFixes() int {
	return s.Joins + s.Splits + s.DropCaps
}

// JoinConfidence returns the fraction of broken pairs that were joined. ok
// is false when no broken pairs were seen.
func (s Stats) JoinConfidence() (ratio float64, ok bool) {
	if s.BrokenPairs == 0 {
		return 0, false
	}
	return float64(s.Joins) / float64(s.BrokenPairs), true
}

// Config holds configuration for the cleaner.
type Config struct {
	// SplitCaseBoundaries runs ProtectBoundaries after the repairs.
	// Default: true
	SplitCaseBoundaries bool
}

// DefaultConfig returns the default cleaner configuration.
func DefaultConfig() Config {
	return Config{
		SplitCaseBoundaries: true,
	}
}

// Cleaner runs the full cleaning sequence against a lexicon.
type Cleaner struct {
	config  Config
	lexicon *lexicon.Lexicon
}

// NewCleaner creates a cleaner with default configuration. A nil lexicon
// disables the dictionary repairs.
func NewCleaner(lex *lexicon.Lexicon) *Cleaner {
	return NewCleanerWithConfig(lex, DefaultConfig())
}

// NewCleanerWithConfig creates a cleaner with custom configuration.
func NewCleanerWithConfig(lex *lexicon.Lexicon, config Config) *Cleaner {
	return &Cleaner{config: config, lexicon: lex}
}

// Result is the output of Clean.
type Result struct {
	// Text is the cleaned text.
	Text string

	// OriginalLength and CleanedLength are measured in characters.
	OriginalLength int
	CleanedLength  int

	// Stats counts the repairs applied.
	Stats Stats
}

// Reduction returns how many characters cleaning removed.
func (r *Result) Reduction() int {
	return r.OriginalLength - r.CleanedLength
}

// Clean normalizes and repairs text.
func (c *Cleaner) Clean(text string) *Result {
	result := &Result{OriginalLength: utf8.RuneCountInString(text)}

	text = Normalize(text)

	var s Stats
	text, s = JoinWords(text, c.lexicon)
	result.Stats = result.Stats.Add(s)

	text, s = SplitWords(text, c.lexicon)
	result.Stats = result.Stats.Add(s)

	text, s = RepairDropCaps(text)
	result.Stats = result.Stats.Add(s)

	if c.config.SplitCaseBoundaries {
		text = ProtectBoundaries(text)
	}

	result.Text = text
	result.CleanedLength = utf8.RuneCountInString(text)
	return result
}
