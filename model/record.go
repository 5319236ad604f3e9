package model

// Record is an indexed chunk. ID is the zero-based position of the chunk in
// the chunk sequence.
type Record struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
}

// Instruction is an instruction-tuning example: a fixed instruction, an empty
// input and the chunk text as the expected output.
type Instruction struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}

// Pair labels
const (
	// LabelNegative marks a randomly sampled pair of chunks.
	LabelNegative = 0
	// LabelPositive marks two adjacent chunks.
	LabelPositive = 1
)

// Pair is a labeled pair of chunk texts.
type Pair struct {
	TextA string `json:"text_a"`
	TextB string `json:"text_b"`
	Label int    `json:"label"`
}

// Split is a disjoint, exhaustive partition of the records.
type Split struct {
	Train []Record
	Val   []Record
	Test  []Record
}

// Len returns the total number of records across the three partitions.
func (s Split) Len() int {
	return len(s.Train) + len(s.Val) + len(s.Test)
}
