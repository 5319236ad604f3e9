package corpusprep

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/tsawler/corpusprep/clean"
	"github.com/tsawler/corpusprep/extract"
	"github.com/tsawler/corpusprep/lexicon"
	"github.com/tsawler/corpusprep/model"
	"github.com/tsawler/corpusprep/rag"
	"github.com/tsawler/corpusprep/report"
	"github.com/tsawler/corpusprep/state"
	"github.com/tsawler/corpusprep/workspace"
)

// Pipeline provides a fluent interface for configuring and running the
// dataset pipeline. Each configuration method returns a new Pipeline
// instance, so a configured pipeline can be reused as a template.
type Pipeline struct {
	source  string
	options RunOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a copy of the Pipeline.
func (p *Pipeline) clone() *Pipeline {
	return &Pipeline{
		source:  p.source,
		options: p.options,
		err:     p.err,
	}
}

// WorkDir sets the working directory holding data, cache, datasets and
// outputs. Default: "."
func (p *Pipeline) WorkDir(dir string) *Pipeline {
	np := p.clone()
	np.options.workDir = dir
	return np
}

// Fs sets the filesystem the source, lexicon and artifacts live on.
// Default: the OS filesystem
func (p *Pipeline) Fs(fsys afero.Fs) *Pipeline {
	np := p.clone()
	if fsys == nil {
		np.err = errors.New("nil filesystem")
		return np
	}
	np.options.fs = fsys
	return np
}

// Logger sets the logger. Default: discard
func (p *Pipeline) Logger(l *log.Logger) *Pipeline {
	np := p.clone()
	if l != nil {
		np.options.logger = l
	}
	return np
}

// Source replaces the text acquisition collaborator.
func (p *Pipeline) Source(s Source) *Pipeline {
	np := p.clone()
	np.options.source = s
	return np
}

// Lexicon sets the lexicon used by dictionary repairs.
func (p *Pipeline) Lexicon(lex *lexicon.Lexicon) *Pipeline {
	np := p.clone()
	np.options.lexicon = lex
	return np
}

// LexiconFile loads the lexicon from path when the cleaning stage runs. A
// missing file disables dictionary repairs.
func (p *Pipeline) LexiconFile(path string) *Pipeline {
	np := p.clone()
	np.options.lexiconPath = path
	return np
}

// Cleaning sets the cleaner configuration.
func (p *Pipeline) Cleaning(cfg clean.Config) *Pipeline {
	np := p.clone()
	np.options.clean = cfg
	return np
}

// Segmenting sets the sentence filter configuration.
func (p *Pipeline) Segmenting(cfg rag.SegmenterConfig) *Pipeline {
	np := p.clone()
	np.options.segmenter = cfg
	return np
}

// Chunking sets the chunker configuration.
func (p *Pipeline) Chunking(cfg rag.ChunkerConfig) *Pipeline {
	np := p.clone()
	if cfg.TargetWords <= 0 {
		np.err = fmt.Errorf("invalid target words %d", cfg.TargetWords)
		return np
	}
	np.options.chunker = cfg
	return np
}

// Format sets the encoding of record datasets. Default: JSON
func (p *Pipeline) Format(f rag.ExportFormat) *Pipeline {
	np := p.clone()
	np.options.format = f
	return np
}

// Seed sets the seed for negative pair sampling and split shuffling.
// Default: 42
func (p *Pipeline) Seed(seed uint64) *Pipeline {
	np := p.clone()
	np.options.seed = seed
	return np
}

// Instruction sets the instruction attached to instruction records.
func (p *Pipeline) Instruction(s string) *Pipeline {
	np := p.clone()
	np.options.instruction = s
	return np
}

// Force re-runs every stage even when the source is unchanged.
func (p *Pipeline) Force() *Pipeline {
	np := p.clone()
	np.options.force = true
	return np
}

// Result describes a completed run.
type Result struct {
	// RunID correlates the log lines of one run
	RunID string

	// Source is the source path and Identity its SHA-256 digest
	Source   string
	Identity string

	// Method is the text acquisition method
	Method model.Method

	// Skipped is true when the source was already fully processed
	Skipped bool

	// ResumedFrom is the stage a resumed run started after; empty for
	// fresh runs
	ResumedFrom state.Stage

	// Invalidated counts the stale artifacts removed before running
	Invalidated int

	// Stage statistics, nil for stages that did not run
	Cleaning *clean.Result
	Segments *rag.SegmentResult
	Chunking *rag.ChunkStats

	// Report is the quality report
	Report *report.Report
}

// run carries the state of one Run call
type run struct {
	ctx    context.Context
	ws     *workspace.Workspace
	marker *state.Marker
	logger *log.Logger
	result *Result
}

type stage struct {
	done state.Stage
	fn   func(*Pipeline, *run) error
}

var stages = []stage{
	{state.StageTextExtracted, (*Pipeline).extractText},
	{state.StageCleaned, (*Pipeline).cleanText},
	{state.StageChunked, (*Pipeline).chunkText},
	{state.StageDatasetsExported, (*Pipeline).exportDatasets},
	{state.StageEvaluationDone, (*Pipeline).evaluate},
}

// Run executes the pipeline. Stages are run strictly in order and the
// context is checked between stages.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.source == "" {
		return nil, errors.New("no source specified")
	}

	o := p.options
	ws := workspace.New(o.fs, o.workDir)
	if err := ws.Init(); err != nil {
		return nil, err
	}

	unlock, err := ws.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	identity, err := state.IdentifyFile(o.fs, p.source)
	if err != nil {
		return nil, err
	}

	r := &run{
		ctx: ctx,
		ws:  ws,
		result: &Result{
			RunID:    uuid.NewString(),
			Source:   p.source,
			Identity: identity,
		},
	}
	r.logger = o.logger.With("run", r.result.RunID, "source", filepath.Base(p.source))
	r.logger.Info("starting dataset pipeline", "work_dir", ws.Root())

	if err := p.guard(r); err != nil {
		return nil, err
	}
	if r.result.Skipped {
		return r.result, nil
	}

	for _, st := range stages {
		if r.marker.Stage.Reached(st.done) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := st.fn(p, r); err != nil {
			return nil, fmt.Errorf("%s: %w", st.done, err)
		}
		if err := r.marker.Advance(st.done); err != nil {
			return nil, err
		}
		if err := state.Save(o.fs, ws.Path(workspace.StateFile), r.marker); err != nil {
			return nil, err
		}
	}

	r.result.Method = model.Method(r.marker.Method)
	r.logger.Info("pipeline complete", "chunks", r.result.Report.TotalChunks, "method", r.result.Method)
	return r.result, nil
}

// guard decides between skipping, resuming and starting over
func (p *Pipeline) guard(r *run) error {
	o := p.options
	statePath := r.ws.Path(workspace.StateFile)

	marker, err := state.Load(o.fs, statePath)
	if err != nil {
		// A corrupt marker cannot vouch for the artifacts
		r.logger.Warn("discarding unreadable pipeline state", "err", err)
		marker = nil
	}

	if marker.Matches(r.result.Identity) && !o.force {
		if marker.Done() {
			rep, err := p.loadReport(r.ws)
			if err == nil {
				r.logger.Info("same source as last run, reusing cache and outputs")
				r.marker = marker
				r.result.Skipped = true
				r.result.Method = model.Method(marker.Method)
				r.result.Report = rep
				return nil
			}
			r.logger.Warn("finished run has no readable report, starting over", "err", err)
		} else {
			r.logger.Info("same source as last run, resuming", "after", marker.Stage)
			r.marker = marker
			r.result.ResumedFrom = marker.Stage
			return nil
		}
	}

	switch {
	case !marker.Matches(r.result.Identity):
		r.logger.Info("new source detected, cleaning old cache, datasets and outputs")
	case o.force:
		r.logger.Info("forced run, cleaning old cache, datasets and outputs")
	}

	removed, err := r.ws.Invalidate()
	if err != nil {
		return err
	}
	r.result.Invalidated = removed

	r.marker = state.New(r.result.Identity)
	r.marker.SourceName = filepath.Base(p.source)
	return state.Save(o.fs, statePath, r.marker)
}

func (p *Pipeline) loadReport(ws *workspace.Workspace) (*report.Report, error) {
	var rep report.Report
	if err := readJSON(ws, workspace.ReportJSONFile, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// loadLexicon resolves the configured lexicon. A missing or unreadable file
// yields an empty lexicon.
func (p *Pipeline) loadLexicon(logger *log.Logger) *lexicon.Lexicon {
	o := p.options
	if o.lexicon != nil {
		return o.lexicon
	}
	if o.lexiconPath == "" {
		logger.Warn("no lexicon configured, join/split disabled")
		return lexicon.New()
	}

	f, err := o.fs.Open(o.lexiconPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("lexicon not found, join/split disabled", "path", o.lexiconPath)
		return lexicon.New()
	}
	if err != nil {
		logger.Warn("lexicon unreadable, join/split disabled", "path", o.lexiconPath, "err", err)
		return lexicon.New()
	}
	defer f.Close()

	lex, err := lexicon.Read(f)
	if err != nil {
		logger.Warn("lexicon unreadable, join/split disabled", "path", o.lexiconPath, "err", err)
		return lexicon.New()
	}
	return lex
}

func (p *Pipeline) textSource() Source {
	if p.options.source != nil {
		return p.options.source
	}
	return extract.New(extract.WithFs(p.options.fs))
}
