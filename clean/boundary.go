package clean

import "regexp"

var (
	lowerUpperPattern  = regexp.MustCompile(`([a-z])([A-Z])`)
	letterDigitPattern = regexp.MustCompile(`([A-Za-z])(\d)`)
	digitLetterPattern = regexp.MustCompile(`(\d)([A-Za-z])`)
)

// ProtectBoundaries inserts a space at lowercase-to-uppercase, letter-to-digit
// and digit-to-letter transitions so that words glued by extraction are not
// counted as a single token downstream.
func ProtectBoundaries(text string) string {
	text = lowerUpperPattern.ReplaceAllString(text, "${1} ${2}")
	text = letterDigitPattern.ReplaceAllString(text, "${1} ${2}")
	return digitLetterPattern.ReplaceAllString(text, "${1} ${2}")
}
