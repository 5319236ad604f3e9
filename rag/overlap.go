package rag

// OverlapStrategy defines how context is carried between chunks
type OverlapStrategy int

const (
	// OverlapNone starts every buffer with only the new sentence
	OverlapNone OverlapStrategy = iota
	// OverlapWords carries the trailing words of the previous buffer
	OverlapWords
)

// String returns a human-readable representation of the overlap strategy
func (os OverlapStrategy) String() string {
	switch os {
	case OverlapNone:
		return "none"
	case OverlapWords:
		return "words"
	default:
		return "unknown"
	}
}

// TailWords returns the last n words of words, or all of them when there are
// fewer than n. The result shares no storage with words.
func TailWords(words []string, n int) []string {
	if n <= 0 || len(words) == 0 {
		return nil
	}
	if n > len(words) {
		n = len(words)
	}
	tail := make([]string, n)
	copy(tail, words[len(words)-n:])
	return tail
}

// carryOver builds the next buffer from the tail of the previous buffer
// followed by the words of the sentence that did not fit.
func carryOver(strategy OverlapStrategy, size int, previous, words []string) []string {
	var tail []string
	if strategy == OverlapWords {
		tail = TailWords(previous, size)
	}
	next := make([]string, 0, len(tail)+len(words))
	next = append(next, tail...)
	return append(next, words...)
}
