package clean

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxNormalizePasses bounds the fixpoint loop in Normalize.
const maxNormalizePasses = 4

var ligatureReplacer = strings.NewReplacer(
	"ﬀ", "ff",
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
)

var punctuationReplacer = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"“", `"`,
	"”", `"`,
	"–", "-",
	"—", "-",
	"−", "-",
	"…", "...",
)

var newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

var (
	zeroWidthPattern       = regexp.MustCompile(`[\x{200B}-\x{200D}\x{2060}\x{FEFF}\x{00AD}]`)
	urlPattern             = regexp.MustCompile(`https?://\S+`)
	wwwPattern             = regexp.MustCompile(`www\.\S+`)
	pageMarkerPattern      = regexp.MustCompile(`(?i)page \d+`)
	horizontalSpacePattern = regexp.MustCompile(`[ \t\f\v\x{00A0}\x{2000}-\x{200A}\x{202F}\x{205F}\x{3000}]+`)
	newlineSpacePattern    = regexp.MustCompile(` *\n *`)
)

// Normalize canonicalizes text. It never fails; text that needs no changes
// is returned unchanged.
//
// Removing an artifact can expose a new one (a page marker broken by a
// line-break hyphen, for example), so the passes repeat until the text is
// stable. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	for i := 0; i < maxNormalizePasses; i++ {
		next := normalizeOnce(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}

func normalizeOnce(text string) string {
	text = newlineReplacer.Replace(text)
	text = norm.NFC.String(text)

	// Characters
	text = ligatureReplacer.Replace(text)
	text = punctuationReplacer.Replace(text)
	text = zeroWidthPattern.ReplaceAllString(text, "")

	// Artifacts
	text = urlPattern.ReplaceAllString(text, "")
	text = wwwPattern.ReplaceAllString(text, "")
	text = pageMarkerPattern.ReplaceAllString(text, "")

	// Whitespace
	text = horizontalSpacePattern.ReplaceAllString(text, " ")
	text = newlineSpacePattern.ReplaceAllString(text, "\n")

	return joinHyphenatedLines(text)
}

// joinHyphenatedLines removes "-\n" when it sits between two lowercase ASCII
// letters, rejoining words hyphenated across a line break.
func joinHyphenatedLines(text string) string {
	if !strings.Contains(text, "-\n") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '-' && i > 0 && i+2 < len(text) && text[i+1] == '\n' &&
			isLowerASCII(text[i-1]) && isLowerASCII(text[i+2]) {
			i++ // the newline
			continue
		}
		b.WriteByte(text[i])
	}
	return b.String()
}

func isLowerASCII(c byte) bool {
	return c >= 'a' && c <= 'z'
}
