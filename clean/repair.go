package clean

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsawler/corpusprep/lexicon"
)

// maxFragmentLen is the longest token considered a fragment by JoinWords.
const maxFragmentLen = 2

// minSplitLen is the shortest token SplitWords will try to divide.
const minSplitLen = 4

// JoinWords merges a short alphabetic token with the alphabetic token that
// follows it when the lowercase concatenation is a known word. Candidates
// are counted in Stats.BrokenPairs and merges in Stats.Joins.
//
// Tokens are scanned left to right with no lookahead past the next token; a
// merge consumes both tokens. On success the text is rebuilt with single
// spaces between tokens. With an empty lexicon the text is returned as is.
func JoinWords(text string, lex *lexicon.Lexicon) (string, Stats) {
	var stats Stats
	if lex.Empty() {
		return text, stats
	}

	tokens := strings.Fields(text)
	fixed := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) {
			a, b := tokens[i], tokens[i+1]
			if utf8.RuneCountInString(a) <= maxFragmentLen && isAlpha(a) && isAlpha(b) {
				stats.BrokenPairs++
				if lex.Contains(a + b) {
					fixed = append(fixed, a+b)
					stats.Joins++
					i++
					continue
				}
			}
		}
		fixed = append(fixed, tokens[i])
	}

	return strings.Join(fixed, " "), stats
}

// SplitWords divides an unknown alphabetic token of at least four letters
// into two known words. Cut positions are tried from left to right and the
// first one whose halves are both in the lexicon wins. The halves are
// emitted in lowercase. Splits are counted in Stats.Splits.
func SplitWords(text string, lex *lexicon.Lexicon) (string, Stats) {
	var stats Stats
	if lex.Empty() {
		return text, stats
	}

	tokens := strings.Fields(text)
	fixed := make([]string, 0, len(tokens))

	for _, tok := range tokens {
		if lex.Contains(tok) || !isAlpha(tok) || utf8.RuneCountInString(tok) < minSplitLen {
			fixed = append(fixed, tok)
			continue
		}

		if left, right, ok := splitKnown(strings.ToLower(tok), lex); ok {
			fixed = append(fixed, left+" "+right)
			stats.Splits++
			continue
		}
		fixed = append(fixed, tok)
	}

	return strings.Join(fixed, " "), stats
}

// splitKnown returns the lowest cut of low whose halves are both known.
func splitKnown(low string, lex *lexicon.Lexicon) (string, string, bool) {
	runes := []rune(low)
	for cut := 1; cut < len(runes); cut++ {
		left, right := string(runes[:cut]), string(runes[cut:])
		if lex.Contains(left) && lex.Contains(right) {
			return left, right, true
		}
	}
	return "", "", false
}

// isAlpha reports whether s is non-empty and made only of letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
