package clean

import (
	"regexp"
	"strings"
)

// dropCapPattern matches a lone lowercase letter at the start of the text or
// after sentence punctuation (or a newline) and whitespace, followed by a
// lowercase word.
var dropCapPattern = regexp.MustCompile(`(^|[\n.!?]\s+)([a-z])\s+([a-z]+)`)

// dropCapWords expands isolated letters that are usually the remains of a
// decorated initial.
var dropCapWords = map[string]string{
	"n": "In",
	"t": "The",
	"i": "I",
}

// RepairDropCaps restores a capital initial that extraction separated from
// the rest of its sentence. "n glancing" becomes "In glancing", "t he"
// becomes "The he" and any other letter is uppercased ("b ecause" becomes
// "B ecause"). Only sentence and line starts are touched. Each substitution
// is counted in Stats.DropCaps.
func RepairDropCaps(text string) (string, Stats) {
	var stats Stats

	matches := dropCapPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, stats
	}

	var b strings.Builder
	b.Grow(len(text) + 2*len(matches))
	last := 0
	for _, m := range matches {
		prefix := text[m[2]:m[3]]
		letter := text[m[4]:m[5]]
		word := text[m[6]:m[7]]

		b.WriteString(text[last:m[0]])
		b.WriteString(prefix)
		if expanded, ok := dropCapWords[letter]; ok {
			b.WriteString(expanded)
		} else {
			b.WriteString(strings.ToUpper(letter))
		}
		b.WriteByte(' ')
		b.WriteString(word)

		last = m[1]
		stats.DropCaps++
	}
	b.WriteString(text[last:])

	return b.String(), stats
}
