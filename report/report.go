// Package report computes corpus quality statistics over exported chunks and
// renders them for humans.
package report

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/corpusprep/model"
)

const (
	// ShortChunkWords is the word count below which a chunk counts as short
	ShortChunkWords = 80

	// CharsPerToken approximates tokenizer output from character counts
	CharsPerToken = 4
)

// WordStats describes the distribution of words per chunk
type WordStats struct {
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// CharStats describes the distribution of characters per chunk
type CharStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
}

// SplitSizes holds the record count of each partition
type SplitSizes struct {
	Train int `json:"train"`
	Val   int `json:"val"`
	Test  int `json:"test"`
}

// Total returns the sum of the three partitions
func (s SplitSizes) Total() int {
	return s.Train + s.Val + s.Test
}

// SizesOf returns the partition sizes of split
func SizesOf(split model.Split) SplitSizes {
	return SplitSizes{
		Train: len(split.Train),
		Val:   len(split.Val),
		Test:  len(split.Test),
	}
}

// Report is the structured quality report
type Report struct {
	TotalChunks      int            `json:"total_chunks"`
	TotalRecords     int            `json:"total_records"`
	WordStats        WordStats      `json:"word_stats"`
	CharStats        CharStats      `json:"char_stats"`
	ShortChunks      int            `json:"short_chunks_under_80w"`
	DuplicateChunks  int            `json:"duplicate_chunks"`
	VocabSize        int            `json:"vocab_size_estimate"`
	PairLabelBalance map[string]int `json:"pair_label_balance"`
	Splits           SplitSizes     `json:"splits"`
	EstimatedTokens  int            `json:"estimated_tokens"`
}

// Positive returns the number of positive pairs
func (r *Report) Positive() int {
	return r.PairLabelBalance[labelKey(model.LabelPositive)]
}

// Negative returns the number of negative pairs
func (r *Report) Negative() int {
	return r.PairLabelBalance[labelKey(model.LabelNegative)]
}

// Build computes the report. Character counts are measured in runes. All
// distribution fields are zero when there are no chunks.
func Build(chunks []string, records []model.Record, pairs []model.Pair, splits SplitSizes) *Report {
	r := &Report{
		TotalChunks:      len(chunks),
		TotalRecords:     len(records),
		PairLabelBalance: make(map[string]int),
		Splits:           splits,
	}

	words := make([]int, len(chunks))
	chars := make([]int, len(chunks))
	distinct := make(map[string]struct{}, len(chunks))
	vocab := make(map[string]struct{})
	totalChars := 0

	for i, c := range chunks {
		fields := strings.Fields(strings.ToLower(c))
		words[i] = len(fields)
		chars[i] = utf8.RuneCountInString(c)
		totalChars += chars[i]

		if words[i] < ShortChunkWords {
			r.ShortChunks++
		}
		distinct[c] = struct{}{}
		for _, w := range fields {
			vocab[w] = struct{}{}
		}
	}

	r.DuplicateChunks = len(chunks) - len(distinct)
	r.VocabSize = len(vocab)
	r.EstimatedTokens = totalChars / CharsPerToken

	if len(chunks) > 0 {
		r.WordStats = WordStats{
			Min:    slices.Min(words),
			Max:    slices.Max(words),
			Mean:   round2(mean(words)),
			Median: median(words),
		}
		r.CharStats = CharStats{
			Min:  slices.Min(chars),
			Max:  slices.Max(chars),
			Mean: round2(mean(chars)),
		}
	}

	for _, p := range pairs {
		r.PairLabelBalance[labelKey(p.Label)]++
	}

	return r
}

func labelKey(label int) string {
	return strconv.Itoa(label)
}

func mean(values []int) float64 {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// median averages the two middle values of an even-length input
func median(values []int) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
