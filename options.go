package corpusprep

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/tsawler/corpusprep/clean"
	"github.com/tsawler/corpusprep/lexicon"
	"github.com/tsawler/corpusprep/model"
	"github.com/tsawler/corpusprep/rag"
)

// Source acquires the raw text of a document
type Source interface {
	Extract(ctx context.Context, path string) (model.RawText, error)
}

// RunOptions holds configuration for a pipeline run.
type RunOptions struct {
	workDir string
	fs      afero.Fs
	logger  *log.Logger
	source  Source // nil means an extract.Extractor on fs

	// Lexicon: an explicit lexicon wins over a lexicon file
	lexicon     *lexicon.Lexicon
	lexiconPath string

	// Stage configuration
	clean       clean.Config
	segmenter   rag.SegmenterConfig
	chunker     rag.ChunkerConfig
	format      rag.ExportFormat
	seed        uint64
	instruction string

	force bool
}

// defaultOptions returns the default run options.
func defaultOptions() RunOptions {
	return RunOptions{
		workDir:     ".",
		fs:          afero.NewOsFs(),
		logger:      log.New(io.Discard),
		clean:       clean.DefaultConfig(),
		segmenter:   rag.DefaultSegmenterConfig(),
		chunker:     rag.DefaultChunkerConfig(),
		format:      rag.ExportFormatJSON,
		seed:        rag.DefaultSeed,
		instruction: rag.DefaultInstruction,
	}
}
