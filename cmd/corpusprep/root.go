package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tsawler/corpusprep"
	"github.com/tsawler/corpusprep/clean"
	"github.com/tsawler/corpusprep/extract"
	"github.com/tsawler/corpusprep/internal/config"
	"github.com/tsawler/corpusprep/internal/logging"
	"github.com/tsawler/corpusprep/ocr"
	"github.com/tsawler/corpusprep/rag"
)

// flagPaths maps each configuration flag to its koanf path
var flagPaths = map[string]string{
	"work-dir":         "work_dir",
	"lexicon":          "lexicon_path",
	"seed":             "seed",
	"force":            "force",
	"target-words":     "chunk.target_words",
	"overlap-words":    "chunk.overlap_words",
	"min-words":        "chunk.min_words",
	"min-chars":        "sentence.min_chars",
	"max-symbol-ratio": "sentence.max_symbol_ratio",
	"split-case":       "clean.split_case_boundaries",
	"ocr":              "ocr.enabled",
	"ocr-threshold":    "ocr.min_digital_chars",
	"lang":             "ocr.language",
	"dpi":              "ocr.dpi",
	"format":           "export.format",
	"log-level":        "log.level",
	"log-json":         "log.json",
}

func newRootCmd() *cobra.Command {
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "corpusprep [flags] <source>",
		Short: "Build training datasets from a PDF or text document",
		Long: "corpusprep extracts, cleans and chunks the text of a document and exports\n" +
			"chunk records, a flat corpus, instruction records, labeled pairs, a\n" +
			"train/val/test split and a quality report.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runPipeline,
	}

	f := cmd.Flags()
	f.String("env-file", ".env", "dotenv file to load before reading the environment")
	f.String("work-dir", def.WorkDir, "directory holding data, cache, datasets and outputs")
	f.String("lexicon", def.LexiconPath, "word frequency file for dictionary repairs")
	f.Uint64("seed", def.Seed, "seed for pair sampling and split shuffling")
	f.Bool("force", def.Force, "re-run every stage even for an unchanged source")
	f.Int("target-words", def.Chunk.TargetWords, "chunk size in words")
	f.Int("overlap-words", def.Chunk.OverlapWords, "words carried into the next chunk")
	f.Int("min-words", def.Chunk.MinWords, "chunks must be longer than this")
	f.Int("min-chars", def.Sentence.MinChars, "minimum sentence length in characters")
	f.Float64("max-symbol-ratio", def.Sentence.MaxSymbolRatio, "maximum fraction of symbols in a sentence")
	f.Bool("split-case", def.Clean.SplitCaseBoundaries, "insert spaces at case and digit boundaries")
	f.Bool("ocr", def.OCR.Enabled, "OCR scanned PDFs when built with the ocr tag")
	f.Int("ocr-threshold", def.OCR.MinDigitalChars, "digital text shorter than this triggers OCR")
	f.String("lang", def.OCR.Language, "Tesseract language")
	f.Int("dpi", def.OCR.DPI, "page rasterization resolution")
	f.String("format", def.Export.Format, "record dataset format: json or jsonl")
	f.String("log-level", def.Log.Level, "log level: debug, info, warn or error")
	f.Bool("log-json", def.Log.JSON, "log as JSON")

	return cmd
}

// overrides collects the flags set on the command line
func overrides(cmd *cobra.Command) map[string]any {
	out := make(map[string]any)
	for name, path := range flagPaths {
		if !cmd.Flags().Changed(name) {
			continue
		}
		out[path] = cmd.Flags().Lookup(name).Value.String()
	}
	return out
}

func runPipeline(cmd *cobra.Command, args []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(config.Options{
		EnvFile:   envFile,
		Overrides: overrides(cmd),
	})
	if err != nil {
		return reportError(cmd, err)
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		JSON:   cfg.Log.JSON,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return reportError(cmd, err)
	}

	p, err := newPipeline(args[0], cfg, logger)
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		return err
	}

	result, err := p.Run(cmd.Context())
	if err != nil {
		logger.Error("pipeline failed", "err", err)
		return err
	}

	return printSummary(cmd.OutOrStdout(), result)
}

// newPipeline translates the configuration into a pipeline for source
func newPipeline(source string, cfg *config.Config, logger *log.Logger) (*corpusprep.Pipeline, error) {
	format, err := rag.ParseExportFormat(cfg.Export.Format)
	if err != nil {
		return nil, err
	}

	useOCR := cfg.OCR.Enabled && ocr.Available()
	if cfg.OCR.Enabled && !ocr.Available() {
		logger.Warn("built without OCR support, scanned PDFs use their digital text")
	}

	extractor := extract.New(
		extract.WithOCR(useOCR),
		extract.WithOCRThreshold(cfg.OCR.MinDigitalChars),
		extract.WithLanguage(cfg.OCR.Language),
		extract.WithDPI(cfg.OCR.DPI),
		extract.WithPageFunc(func(page, total int) {
			logger.Debug("ocr page", "page", page, "of", total)
		}),
	)

	p := corpusprep.Open(source).
		WorkDir(cfg.WorkDir).
		Logger(logger).
		Source(extractor).
		Cleaning(clean.Config{SplitCaseBoundaries: cfg.Clean.SplitCaseBoundaries}).
		Segmenting(rag.SegmenterConfig{
			MinChars:       cfg.Sentence.MinChars,
			MaxSymbolRatio: cfg.Sentence.MaxSymbolRatio,
		}).
		Chunking(rag.ChunkerConfig{
			TargetWords:  cfg.Chunk.TargetWords,
			OverlapWords: cfg.Chunk.OverlapWords,
			MinWords:     cfg.Chunk.MinWords,
			Overlap:      rag.OverlapWords,
		}).
		Format(format).
		Seed(cfg.Seed)

	if cfg.LexiconPath != "" {
		p = p.LexiconFile(cfg.LexiconPath)
	}
	if cfg.Force {
		p = p.Force()
	}
	return p, nil
}

func reportError(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	return err
}
