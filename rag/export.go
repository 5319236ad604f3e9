package rag

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/tsawler/corpusprep/model"
)

// DefaultInstruction is the instruction attached to every instruction record
const DefaultInstruction = "Study the following passage and learn its content."

// DefaultSeed seeds negative pair sampling and split shuffling
const DefaultSeed uint64 = 42

// ExportFormat defines the available encodings for record artifacts
type ExportFormat int

const (
	// ExportFormatJSON exports as an indented JSON array
	ExportFormatJSON ExportFormat = iota
	// ExportFormatJSONL exports as JSON Lines (one JSON object per line)
	ExportFormatJSONL
)

// String returns a human-readable representation of the export format
func (ef ExportFormat) String() string {
	switch ef {
	case ExportFormatJSON:
		return "json"
	case ExportFormatJSONL:
		return "jsonl"
	default:
		return "unknown"
	}
}

// FileExtension returns the typical file extension for this format
func (ef ExportFormat) FileExtension() string {
	switch ef {
	case ExportFormatJSONL:
		return ".jsonl"
	default:
		return ".json"
	}
}

// ParseExportFormat maps "json" or "jsonl" to an ExportFormat
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return ExportFormatJSON, nil
	case "jsonl":
		return ExportFormatJSONL, nil
	default:
		return ExportFormatJSON, fmt.Errorf("unknown export format %q", s)
	}
}

// ExportConfig holds configuration options for export
type ExportConfig struct {
	// Instruction is the fixed instruction of every instruction record
	Instruction string

	// Seed seeds every randomized artifact
	Seed uint64
}

// DefaultExportConfig returns sensible defaults for export
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Instruction: DefaultInstruction,
		Seed:        DefaultSeed,
	}
}

// Exporter derives dataset artifacts from a chunk sequence
type Exporter struct {
	config ExportConfig
}

// NewExporter creates a new exporter with default configuration
func NewExporter() *Exporter {
	return &Exporter{config: DefaultExportConfig()}
}

// NewExporterWithConfig creates an exporter with custom configuration
func NewExporterWithConfig(config ExportConfig) *Exporter {
	if config.Instruction == "" {
		config.Instruction = DefaultInstruction
	}
	return &Exporter{config: config}
}

// Dataset holds every artifact derived from one chunk sequence
type Dataset struct {
	Records      []model.Record
	Corpus       string
	Instructions []model.Instruction
	Pairs        []model.Pair
	Split        model.Split
}

// Export derives all artifacts. Pairs and the split each draw from a fresh
// generator seeded with the configured seed, so either can be rebuilt alone
// with identical output.
func (e *Exporter) Export(chunks []string) *Dataset {
	records := e.Records(chunks)
	return &Dataset{
		Records:      records,
		Corpus:       e.Corpus(chunks),
		Instructions: e.Instructions(chunks),
		Pairs:        e.Pairs(chunks, NewRand(e.config.Seed)),
		Split:        e.Split(records, NewRand(e.config.Seed)),
	}
}

// NewRand returns a deterministic generator for the given seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Records indexes chunks in order
func (e *Exporter) Records(chunks []string) []model.Record {
	records := make([]model.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = model.Record{
			ID:        i,
			Text:      chunk,
			WordCount: countWords(chunk),
		}
	}
	return records
}

// Corpus concatenates the chunks, each followed by a blank line
func (e *Exporter) Corpus(chunks []string) string {
	var sb strings.Builder
	for _, chunk := range chunks {
		sb.WriteString(chunk)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// Instructions wraps every chunk in an instruction record with empty input
func (e *Exporter) Instructions(chunks []string) []model.Instruction {
	out := make([]model.Instruction, len(chunks))
	for i, chunk := range chunks {
		out[i] = model.Instruction{
			Instruction: e.config.Instruction,
			Input:       "",
			Output:      chunk,
		}
	}
	return out
}

// Pairs returns one positive pair per adjacent chunk pair followed by
// len(chunks) negatives sampled from two distinct chunk indices. No
// negatives are drawn when there are fewer than two chunks.
func (e *Exporter) Pairs(chunks []string, rng *rand.Rand) []model.Pair {
	n := len(chunks)
	if n == 0 {
		return []model.Pair{}
	}

	pairs := make([]model.Pair, 0, 2*n-1)
	for i := 0; i+1 < n; i++ {
		pairs = append(pairs, model.Pair{
			TextA: chunks[i],
			TextB: chunks[i+1],
			Label: model.LabelPositive,
		})
	}

	if n < 2 {
		return pairs
	}

	for range n {
		i := rng.IntN(n)
		j := rng.IntN(n - 1)
		if j >= i {
			j++
		}
		pairs = append(pairs, model.Pair{
			TextA: chunks[i],
			TextB: chunks[j],
			Label: model.LabelNegative,
		})
	}

	return pairs
}

// Split shuffles a copy of records and cuts it at floor(0.8n) and floor(0.9n).
// A non-empty input always leaves at least one record in train.
func (e *Exporter) Split(records []model.Record, rng *rand.Rand) model.Split {
	shuffled := make([]model.Record, len(records))
	copy(shuffled, records)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	trainEnd, valEnd := SplitBounds(len(shuffled))
	return model.Split{
		Train: shuffled[:trainEnd],
		Val:   shuffled[trainEnd:valEnd],
		Test:  shuffled[valEnd:],
	}
}

// SplitBounds returns the train and validation cut indices for n records
func SplitBounds(n int) (trainEnd, valEnd int) {
	trainEnd = n * 8 / 10
	valEnd = n * 9 / 10
	if n > 0 && trainEnd == 0 {
		trainEnd = 1
	}
	if valEnd < trainEnd {
		valEnd = trainEnd
	}
	return trainEnd, valEnd
}

// WriteJSON writes v as a JSON document indented by two spaces. HTML
// characters are not escaped so passages stay readable.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// WriteJSONL writes one JSON object per line
func WriteJSONL[T any](w io.Writer, items []T) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	for i, item := range items {
		if err := encoder.Encode(item); err != nil {
			return fmt.Errorf("encoding item %d: %w", i, err)
		}
	}
	return nil
}

// WriteRecords writes items in the given format
func WriteRecords[T any](w io.Writer, items []T, format ExportFormat) error {
	if format == ExportFormatJSONL {
		return WriteJSONL(w, items)
	}
	if items == nil {
		items = []T{}
	}
	return WriteJSON(w, items)
}

// ReadJSONL decodes a JSON Lines stream
func ReadJSONL[T any](r io.Reader) ([]T, error) {
	decoder := json.NewDecoder(r)
	items := make([]T, 0)
	for decoder.More() {
		var item T
		if err := decoder.Decode(&item); err != nil {
			return nil, fmt.Errorf("decoding item %d: %w", len(items), err)
		}
		items = append(items, item)
	}
	return items, nil
}

// ReadRecords decodes items written by WriteRecords
func ReadRecords[T any](r io.Reader, format ExportFormat) ([]T, error) {
	if format == ExportFormatJSONL {
		return ReadJSONL[T](r)
	}
	var items []T
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	return items, nil
}
