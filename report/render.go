package report

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

const (
	// PreviewChunks is the number of chunks shown in the rendered report
	PreviewChunks = 3

	// PreviewChars bounds each chunk preview
	PreviewChars = 400
)

// Render writes the human-readable report followed by previews of the first
// chunks.
func Render(w io.Writer, r *Report, chunks []string) error {
	var sb strings.Builder

	sb.WriteString("DATASET QUALITY REPORT\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	section := func(name, body string) {
		fmt.Fprintf(&sb, "%s:\n%s\n\n", name, body)
	}

	section("total_chunks", fmt.Sprint(r.TotalChunks))
	section("total_records", fmt.Sprint(r.TotalRecords))
	section("word_stats", fmt.Sprintf("min=%d max=%d mean=%s median=%s",
		r.WordStats.Min, r.WordStats.Max, formatFloat(r.WordStats.Mean), formatFloat(r.WordStats.Median)))
	section("char_stats", fmt.Sprintf("min=%d max=%d mean=%s",
		r.CharStats.Min, r.CharStats.Max, formatFloat(r.CharStats.Mean)))
	section("short_chunks_under_80w", fmt.Sprint(r.ShortChunks))
	section("duplicate_chunks", fmt.Sprint(r.DuplicateChunks))
	section("vocab_size_estimate", fmt.Sprint(r.VocabSize))
	section("pair_label_balance", formatBalance(r.PairLabelBalance))
	section("splits", fmt.Sprintf("train=%d val=%d test=%d", r.Splits.Train, r.Splits.Val, r.Splits.Test))
	section("estimated_tokens", fmt.Sprint(r.EstimatedTokens))

	sb.WriteString("\nSAMPLE CHUNKS:\n")
	sb.WriteString(strings.Repeat("-", 50) + "\n")
	for i, c := range chunks[:min(PreviewChunks, len(chunks))] {
		fmt.Fprintf(&sb, "\n--- Sample %d ---\n%s\n", i, Truncate(c, PreviewChars))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// Truncate returns at most n runes of s
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func formatBalance(balance map[string]int) string {
	if len(balance) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(balance))
	for k := range balance {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, balance[k])
	}
	return strings.Join(parts, " ")
}

func formatFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
