package rag

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SegmenterConfig holds configuration for sentence filtering
type SegmenterConfig struct {
	// MinChars is the minimum sentence length in characters
	// Default: 40
	MinChars int

	// MaxSymbolRatio is the highest fraction of symbol characters tolerated
	// Default: 0.25
	MaxSymbolRatio float64
}

// DefaultSegmenterConfig returns the default sentence filter configuration
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		MinChars:       40,
		MaxSymbolRatio: 0.25,
	}
}

// Segmenter splits text into sentences and drops noise
type Segmenter struct {
	config SegmenterConfig
}

// NewSegmenter creates a segmenter with default configuration
func NewSegmenter() *Segmenter {
	return &Segmenter{config: DefaultSegmenterConfig()}
}

// NewSegmenterWithConfig creates a segmenter with custom configuration
func NewSegmenterWithConfig(config SegmenterConfig) *Segmenter {
	return &Segmenter{config: config}
}

// SegmentResult contains the surviving sentences and filter counts
type SegmentResult struct {
	// Sentences are the kept sentences in original order
	Sentences []string

	// Candidates is the number of candidates produced by splitting
	Candidates int

	// TooShort is the number of candidates dropped for length
	TooShort int

	// SymbolHeavy is the number of candidates dropped for symbol ratio
	SymbolHeavy int
}

// Segment splits text and filters the candidates
func (s *Segmenter) Segment(text string) *SegmentResult {
	candidates := SplitSentences(text)
	result := &SegmentResult{
		Sentences:  make([]string, 0, len(candidates)),
		Candidates: len(candidates),
	}

	for _, c := range candidates {
		c = strings.TrimSpace(c)

		if utf8.RuneCountInString(c) < s.config.MinChars {
			result.TooShort++
			continue
		}

		if SymbolRatio(c) > s.config.MaxSymbolRatio {
			result.SymbolHeavy++
			continue
		}

		result.Sentences = append(result.Sentences, c)
	}

	return result
}

// SplitSentences splits text at every run of whitespace that immediately
// follows '.', '!' or '?'. The punctuation stays with the preceding
// sentence and the whitespace run is dropped. Candidates are not trimmed.
func SplitSentences(text string) []string {
	var parts []string
	start := 0

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) && i > 0 && isTerminalPunct(text[i-1]) {
			parts = append(parts, text[start:i])

			// Skip the whole whitespace run
			j := i
			for j < len(text) {
				next, n := utf8.DecodeRuneInString(text[j:])
				if !unicode.IsSpace(next) {
					break
				}
				j += n
			}
			start, i = j, j
			continue
		}
		i += size
	}

	return append(parts, text[start:])
}

func isTerminalPunct(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

// SymbolRatio returns the fraction of characters in s that are neither
// alphanumeric nor whitespace
func SymbolRatio(s string) float64 {
	total, symbols := 0, 0
	for _, r := range s {
		total++
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsSpace(r) {
			symbols++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(symbols) / float64(total)
}
