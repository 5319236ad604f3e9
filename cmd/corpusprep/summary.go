package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tsawler/corpusprep"
	"github.com/tsawler/corpusprep/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

// printSummary writes the console summary of a finished run
func printSummary(w io.Writer, result *corpusprep.Result) error {
	_, err := io.WriteString(w, summary(result))
	return err
}

func summary(result *corpusprep.Result) string {
	var b strings.Builder
	r := result.Report

	b.WriteString(titleStyle.Render("DATASET SUMMARY"))
	b.WriteString("\n")
	if result.Skipped {
		b.WriteString(labelStyle.Render("unchanged source, previous outputs reused"))
		b.WriteString("\n")
	}

	section(&b, "Data size")
	row(&b, "Chunks", fmt.Sprint(r.TotalChunks))
	row(&b, "Records", fmt.Sprint(r.TotalRecords))
	row(&b, "Vocabulary", fmt.Sprint(r.VocabSize))
	row(&b, "Est. tokens", fmt.Sprint(r.EstimatedTokens))
	row(&b, "Method", result.Method.String())

	section(&b, "Words per chunk")
	row(&b, "Min", fmt.Sprint(r.WordStats.Min))
	row(&b, "Max", fmt.Sprint(r.WordStats.Max))
	row(&b, "Mean", fmt.Sprintf("%.2f", r.WordStats.Mean))
	row(&b, "Median", fmt.Sprintf("%.2f", r.WordStats.Median))

	section(&b, "Characters per chunk")
	row(&b, "Min", fmt.Sprint(r.CharStats.Min))
	row(&b, "Max", fmt.Sprint(r.CharStats.Max))
	row(&b, "Mean", fmt.Sprintf("%.2f", r.CharStats.Mean))

	section(&b, "Quality checks")
	check(&b, fmt.Sprintf("Short chunks (<%dw)", report.ShortChunkWords), r.ShortChunks)
	check(&b, "Duplicate chunks", r.DuplicateChunks)

	section(&b, "Pair label balance")
	row(&b, "Positive", fmt.Sprint(r.Positive()))
	row(&b, "Negative", fmt.Sprint(r.Negative()))

	section(&b, "Splits")
	row(&b, "Train", fmt.Sprint(r.Splits.Train))
	row(&b, "Val", fmt.Sprint(r.Splits.Val))
	row(&b, "Test", fmt.Sprint(r.Splits.Test))

	return b.String()
}

func section(b *strings.Builder, name string) {
	b.WriteString("\n")
	b.WriteString(headingStyle.Render(name))
	b.WriteString("\n")
}

func row(b *strings.Builder, label, value string) {
	b.WriteString("  ")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-20s", label)))
	b.WriteString(value)
	b.WriteString("\n")
}

// check highlights non-zero counts
func check(b *strings.Builder, label string, n int) {
	value := fmt.Sprint(n)
	if n > 0 {
		value = warnStyle.Render(value)
	}
	row(b, label, value)
}
