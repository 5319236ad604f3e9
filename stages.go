package corpusprep

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/tsawler/corpusprep/clean"
	"github.com/tsawler/corpusprep/model"
	"github.com/tsawler/corpusprep/rag"
	"github.com/tsawler/corpusprep/report"
	"github.com/tsawler/corpusprep/workspace"
)

// previewChars bounds the first-chunk preview in the log
const previewChars = 200

func (p *Pipeline) extractText(r *run) error {
	r.logger.Info("extracting text")

	raw, err := p.textSource().Extract(r.ctx, p.source)
	if err != nil {
		return err
	}

	if err := r.ws.WriteText(workspace.RawTextFile, raw.Text); err != nil {
		return err
	}
	r.marker.Method = raw.Method.String()
	r.result.Method = raw.Method

	r.logger.Info("text ready", "method", raw.Method, "chars", raw.Len(), "saved", workspace.RawTextFile)
	return nil
}

func (p *Pipeline) cleanText(r *run) error {
	text, err := r.ws.ReadText(workspace.RawTextFile)
	if err != nil {
		return err
	}

	lex := p.loadLexicon(r.logger)
	if !lex.Empty() {
		r.logger.Info("lexicon loaded", "words", lex.Len())
	}

	result := clean.NewCleanerWithConfig(lex, p.options.clean).Clean(text)
	r.result.Cleaning = result

	s := result.Stats
	r.logger.Info("dictionary repairs", "broken_pairs", s.BrokenPairs, "joins", s.Joins, "splits", s.Splits)
	r.logger.Info("drop-cap repairs", "fixes", s.DropCaps)
	if ratio, ok := s.JoinConfidence(); ok {
		r.logger.Info("join confidence", "ratio", ratio)
	}
	r.logger.Info("cleaning complete",
		"total_fixes", s.TotalFixes(),
		"original_chars", result.OriginalLength,
		"cleaned_chars", result.CleanedLength,
		"reduction", result.Reduction(),
	)

	return r.ws.WriteText(workspace.CleanTextFile, result.Text)
}

func (p *Pipeline) chunkText(r *run) error {
	text, err := r.ws.ReadText(workspace.CleanTextFile)
	if err != nil {
		return err
	}

	segments := rag.NewSegmenterWithConfig(p.options.segmenter).Segment(text)
	r.result.Segments = segments
	r.logger.Info("sentences kept", "valid", len(segments.Sentences), "candidates", segments.Candidates)

	chunked := rag.NewChunkerWithConfig(p.options.chunker).Chunk(segments.Sentences)
	r.result.Chunking = &chunked.Stats
	r.marker.Chunks = len(chunked.Chunks)

	r.logger.Info("chunking complete", "chunks", len(chunked.Chunks), "dropped_buffers", chunked.Stats.DroppedBuffers)
	if len(chunked.Chunks) > 0 {
		r.logger.Debug("first chunk", "preview", report.Truncate(chunked.Chunks[0], previewChars))
	}

	return writeJSON(r.ws, workspace.ChunksFile, chunked.Chunks)
}

func (p *Pipeline) exportDatasets(r *run) error {
	var chunks []string
	if err := readJSON(r.ws, workspace.ChunksFile, &chunks); err != nil {
		return err
	}

	exporter := rag.NewExporterWithConfig(rag.ExportConfig{
		Instruction: p.options.instruction,
		Seed:        p.options.seed,
	})
	ds := exporter.Export(chunks)
	format := p.options.format

	if err := writeRecords(r, workspace.RecordsBase, ds.Records, format); err != nil {
		return err
	}
	if err := r.ws.WriteText(workspace.CorpusFile, ds.Corpus); err != nil {
		return err
	}
	r.logger.Info("saved", "artifact", workspace.CorpusFile)

	if err := writeRecords(r, workspace.InstructionsBase, ds.Instructions, format); err != nil {
		return err
	}
	if err := writeRecords(r, workspace.PairsBase, ds.Pairs, format); err != nil {
		return err
	}
	if err := writeRecords(r, workspace.TrainBase, ds.Split.Train, format); err != nil {
		return err
	}
	if err := writeRecords(r, workspace.ValBase, ds.Split.Val, format); err != nil {
		return err
	}
	return writeRecords(r, workspace.TestBase, ds.Split.Test, format)
}

func (p *Pipeline) evaluate(r *run) error {
	format := p.options.format
	ext := format.FileExtension()

	var chunks []string
	if err := readJSON(r.ws, workspace.ChunksFile, &chunks); err != nil {
		return err
	}
	records, err := readRecords[model.Record](r.ws, workspace.Dataset(workspace.RecordsBase, ext), format)
	if err != nil {
		return err
	}
	pairs, err := readRecords[model.Pair](r.ws, workspace.Dataset(workspace.PairsBase, ext), format)
	if err != nil {
		return err
	}

	// A missing split file counts as an empty partition
	var splits report.SplitSizes
	for base, n := range map[string]*int{
		workspace.TrainBase: &splits.Train,
		workspace.ValBase:   &splits.Val,
		workspace.TestBase:  &splits.Test,
	} {
		part, err := readRecords[model.Record](r.ws, workspace.Dataset(base, ext), format)
		if errors.Is(err, workspace.ErrMissingArtifact) {
			continue
		}
		if err != nil {
			return err
		}
		*n = len(part)
	}

	rep := report.Build(chunks, records, pairs, splits)
	r.result.Report = rep

	if err := writeJSON(r.ws, workspace.ReportJSONFile, rep); err != nil {
		return err
	}
	r.logger.Info("saved", "artifact", workspace.ReportJSONFile)

	if err := r.ws.Write(workspace.ReportTextFile, func(w io.Writer) error {
		return report.Render(w, rep, chunks)
	}); err != nil {
		return err
	}
	r.logger.Info("saved", "artifact", workspace.ReportTextFile)
	return nil
}

func writeRecords[T any](r *run, base string, items []T, format rag.ExportFormat) error {
	name := workspace.Dataset(base, format.FileExtension())
	if err := r.ws.Write(name, func(w io.Writer) error {
		return rag.WriteRecords(w, items, format)
	}); err != nil {
		return err
	}
	r.logger.Info("saved", "artifact", name, "records", len(items))
	return nil
}

func readRecords[T any](ws *workspace.Workspace, name string, format rag.ExportFormat) ([]T, error) {
	var items []T
	err := ws.Read(name, func(rd io.Reader) error {
		var err error
		items, err = rag.ReadRecords[T](rd, format)
		return err
	})
	return items, err
}

func writeJSON(ws *workspace.Workspace, name string, v any) error {
	return ws.Write(name, func(w io.Writer) error {
		return rag.WriteJSON(w, v)
	})
}

func readJSON(ws *workspace.Workspace, name string, v any) error {
	return ws.Read(name, func(rd io.Reader) error {
		return json.NewDecoder(rd).Decode(v)
	})
}
