package corpusprep

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/tsawler/corpusprep/lexicon"
	"github.com/tsawler/corpusprep/model"
	"github.com/tsawler/corpusprep/rag"
	"github.com/tsawler/corpusprep/report"
	"github.com/tsawler/corpusprep/state"
	"github.com/tsawler/corpusprep/workspace"
)

var vocabulary = []string{"river", "stone", "quiet", "morning", "garden", "silver", "window", "letter", "harbor", "meadow"}

// makeText builds one sentence per entry of counts, each with that many words
func makeText(counts ...int) string {
	sentences := make([]string, len(counts))
	for i, n := range counts {
		words := make([]string, n)
		for j := range words {
			words[j] = vocabulary[(i+j)%len(vocabulary)]
		}
		words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
		sentences[i] = strings.Join(words, " ") + "."
	}
	return strings.Join(sentences, " ")
}

func newTestFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func testPipeline(fs afero.Fs, source string) *Pipeline {
	return Open(source).Fs(fs).WorkDir("/work")
}

func loadMarker(t *testing.T, fs afero.Fs) *state.Marker {
	t.Helper()
	m, err := state.Load(fs, "/work/"+workspace.StateFile)
	if err != nil || m == nil {
		t.Fatalf("loading marker: %v, %v", m, err)
	}
	return m
}

func TestRun_SingleChunk(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/src/book.txt": makeText(60, 60, 60)})

	result, err := testPipeline(fs, "/src/book.txt").Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Skipped || result.ResumedFrom != "" {
		t.Errorf("fresh run reported skipped=%v resumed=%q", result.Skipped, result.ResumedFrom)
	}
	if result.Method != model.MethodTextFile {
		t.Errorf("Method = %s, want %s", result.Method, model.MethodTextFile)
	}
	if result.Cleaning == nil || result.Cleaning.Stats.TotalFixes() != 0 {
		t.Errorf("expected zero fixes without a lexicon, got %+v", result.Cleaning)
	}

	rep := result.Report
	if rep.TotalChunks != 1 || rep.TotalRecords != 1 || rep.WordStats.Max != 180 {
		t.Errorf("report = %+v, want one 180-word chunk", rep)
	}
	if len(rep.PairLabelBalance) != 0 {
		t.Errorf("expected no pairs, got %v", rep.PairLabelBalance)
	}
	if rep.Splits != (report.SplitSizes{Train: 1}) {
		t.Errorf("splits = %+v, want (1, 0, 0)", rep.Splits)
	}

	for _, name := range []string{
		workspace.RawTextFile,
		workspace.CleanTextFile,
		workspace.ChunksFile,
		workspace.CorpusFile,
		"datasets/chunks_with_id.json",
		"datasets/lora_instruct.json",
		"datasets/pairs.json",
		"datasets/train.json",
		"datasets/val.json",
		"datasets/test.json",
		workspace.ReportJSONFile,
		workspace.ReportTextFile,
	} {
		if ok, _ := afero.Exists(fs, "/work/"+name); !ok {
			t.Errorf("artifact %s missing", name)
		}
	}

	m := loadMarker(t, fs)
	if !m.Done() || m.Method != string(model.MethodTextFile) || m.Chunks != 1 || m.SourceName != "book.txt" {
		t.Errorf("marker = %+v", m)
	}
}

func TestRun_TwoChunks(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/src/book.txt": makeText(150, 150)})

	result, err := testPipeline(fs, "/src/book.txt").Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	rep := result.Report
	if rep.TotalChunks != 2 {
		t.Fatalf("TotalChunks = %d, want 2", rep.TotalChunks)
	}
	if rep.Positive() != 1 || rep.Negative() != 2 {
		t.Errorf("pair balance = %v, want 1 positive and 2 negative", rep.PairLabelBalance)
	}
	if rep.Splits.Total() != 2 {
		t.Errorf("splits = %+v", rep.Splits)
	}
}

func TestRun_SkipsFinishedSource(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/src/book.txt": makeText(60, 60, 60)})
	p := testPipeline(fs, "/src/book.txt")

	first, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}

	second, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if !second.Skipped {
		t.Error("second run should be skipped")
	}
	if second.Cleaning != nil {
		t.Error("skipped run should not clean")
	}
	if second.Report.TotalChunks != first.Report.TotalChunks || second.Report.VocabSize != first.Report.VocabSize {
		t.Errorf("reused report differs: %+v vs %+v", second.Report, first.Report)
	}
	if second.Method != model.MethodTextFile {
		t.Errorf("Method = %s", second.Method)
	}
	if second.RunID == first.RunID {
		t.Error("each run needs its own id")
	}
}

func TestRun_Force(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/src/book.txt": makeText(60, 60, 60)})
	p := testPipeline(fs, "/src/book.txt")

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	result, err := p.Force().Run(context.Background())
	if err != nil {
		t.Fatalf("forced Run failed: %v", err)
	}
	if result.Skipped || result.Cleaning == nil {
		t.Error("forced run should execute every stage")
	}
	if result.Invalidated == 0 {
		t.Error("forced run should remove previous artifacts")
	}
}

func TestRun_NewSourceInvalidates(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/src/a.txt": makeText(60, 60, 60),
		"/src/b.txt": makeText(150, 150),
	})

	if _, err := testPipeline(fs, "/src/a.txt").Format(rag.ExportFormatJSONL).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ok, _ := afero.Exists(fs, "/work/datasets/pairs.jsonl"); !ok {
		t.Fatal("jsonl artifacts missing")
	}

	result, err := testPipeline(fs, "/src/b.txt").Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Skipped || result.Invalidated == 0 {
		t.Errorf("new source should invalidate, got skipped=%v invalidated=%d", result.Skipped, result.Invalidated)
	}
	if ok, _ := afero.Exists(fs, "/work/datasets/pairs.jsonl"); ok {
		t.Error("stale jsonl artifact survived invalidation")
	}
	if result.Report.TotalChunks != 2 {
		t.Errorf("TotalChunks = %d, want 2", result.Report.TotalChunks)
	}
	if m := loadMarker(t, fs); m.SourceName != "b.txt" || m.Source != result.Identity {
		t.Errorf("marker not rebound: %+v", m)
	}
}

func TestRun_Resume(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/src/book.txt": makeText(150, 150)})
	p := testPipeline(fs, "/src/book.txt")

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	m := loadMarker(t, fs)
	m.Stage = state.StageChunked
	if err := state.Save(fs, "/work/"+workspace.StateFile, m); err != nil {
		t.Fatal(err)
	}
	_ = fs.Remove("/work/" + workspace.ReportJSONFile)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("resumed Run failed: %v", err)
	}
	if result.ResumedFrom != state.StageChunked {
		t.Errorf("ResumedFrom = %q, want %q", result.ResumedFrom, state.StageChunked)
	}
	if result.Cleaning != nil || result.Chunking != nil {
		t.Error("resumed run repeated finished stages")
	}
	if result.Report == nil || result.Report.TotalChunks != 2 {
		t.Errorf("report = %+v", result.Report)
	}
	if result.Method != model.MethodTextFile {
		t.Errorf("Method = %s", result.Method)
	}
	if !loadMarker(t, fs).Done() {
		t.Error("marker should be done after resuming")
	}
}

func TestRun_ResumeMissingArtifact(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/src/book.txt": makeText(60, 60, 60)})
	p := testPipeline(fs, "/src/book.txt")

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	m := loadMarker(t, fs)
	m.Stage = state.StageCleaned
	_ = state.Save(fs, "/work/"+workspace.StateFile, m)
	_ = fs.Remove("/work/" + workspace.CleanTextFile)

	_, err := p.Run(context.Background())
	if !errors.Is(err, workspace.ErrMissingArtifact) {
		t.Fatalf("expected ErrMissingArtifact, got %v", err)
	}
	if !strings.Contains(err.Error(), workspace.CleanTextFile) {
		t.Errorf("error should name the artifact: %v", err)
	}
	if got := loadMarker(t, fs).Stage; got != state.StageCleaned {
		t.Errorf("failed stage advanced the marker to %s", got)
	}
}

func TestRun_SkipWithoutReportStartsOver(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/src/book.txt": makeText(60, 60, 60)})
	p := testPipeline(fs, "/src/book.txt")

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	_ = fs.Remove("/work/" + workspace.ReportJSONFile)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Skipped || result.Cleaning == nil {
		t.Error("run without a readable report should start over")
	}
}

type fakeSource struct {
	raw model.RawText
	err error
}

func (f fakeSource) Extract(context.Context, string) (model.RawText, error) {
	return f.raw, f.err
}

func TestRun_SourceMethod(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/src/scan.pdf": "%PDF-1.4\n"})
	src := fakeSource{raw: model.RawText{Text: makeText(60, 60, 60), Method: model.MethodOCR}}

	result, err := testPipeline(fs, "/src/scan.pdf").Source(src).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Method != model.MethodOCR {
		t.Errorf("Method = %s, want %s", result.Method, model.MethodOCR)
	}
}

func TestRun_SourceFailureIsFatal(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/src/scan.pdf": "%PDF-1.4\n"})
	boom := errors.New("extraction failed")

	_, err := testPipeline(fs, "/src/scan.pdf").Source(fakeSource{err: boom}).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected extraction error, got %v", err)
	}
	if ok, _ := afero.Exists(fs, "/work/"+workspace.CleanTextFile); ok {
		t.Error("cleaning ran after a failed extraction")
	}
	if got := loadMarker(t, fs).Stage; got != state.StageInit {
		t.Errorf("marker stage = %s, want init", got)
	}
}

func TestRun_MissingSource(t *testing.T) {
	fs := newTestFs(t, nil)
	if _, err := testPipeline(fs, "/src/none.txt").Run(context.Background()); err == nil {
		t.Error("expected error for missing source")
	}
	if _, err := Open("").Fs(fs).Run(context.Background()); err == nil {
		t.Error("expected error for empty source")
	}
}

func TestRun_Canceled(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/src/book.txt": makeText(60, 60, 60)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := testPipeline(fs, "/src/book.txt").Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRun_LexiconRepairs(t *testing.T) {
	text := "t he " + makeText(60, 60, 60)
	fs := newTestFs(t, map[string]string{
		"/src/book.txt":  text,
		"/lex/words.txt": "the 1000\nriver 20\n",
	})

	result, err := testPipeline(fs, "/src/book.txt").LexiconFile("/lex/words.txt").Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Cleaning.Stats.Joins != 1 {
		t.Errorf("Joins = %d, want 1", result.Cleaning.Stats.Joins)
	}

	cleaned, _ := afero.ReadFile(fs, "/work/"+workspace.CleanTextFile)
	if !strings.HasPrefix(string(cleaned), "the River") {
		t.Errorf("cleaned text starts with %q", string(cleaned)[:20])
	}
}

func TestRun_MissingLexiconFile(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/src/book.txt": makeText(60, 60, 60)})
	result, err := testPipeline(fs, "/src/book.txt").LexiconFile("/lex/absent.txt").Run(context.Background())
	if err != nil {
		t.Fatalf("missing lexicon should not fail the run: %v", err)
	}
	if result.Cleaning.Stats.BrokenPairs != 0 {
		t.Errorf("repairs ran without a lexicon: %+v", result.Cleaning.Stats)
	}
}

func TestRun_ExplicitLexicon(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/src/book.txt": "t he " + makeText(60, 60, 60)})
	result, err := testPipeline(fs, "/src/book.txt").Lexicon(lexicon.New("the")).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Cleaning.Stats.Joins != 1 {
		t.Errorf("Joins = %d, want 1", result.Cleaning.Stats.Joins)
	}
}

func TestPipeline_Immutable(t *testing.T) {
	base := Open("/src/book.txt")
	seeded := base.Seed(7).Force()

	if base.options.seed != rag.DefaultSeed || base.options.force {
		t.Error("chain methods modified the receiver")
	}
	if seeded.options.seed != 7 || !seeded.options.force {
		t.Error("chain methods did not apply")
	}
}

func TestPipeline_InvalidOptions(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/src/book.txt": makeText(60)})

	if _, err := testPipeline(fs, "/src/book.txt").Chunking(rag.ChunkerConfig{}).Run(context.Background()); err == nil {
		t.Error("expected error for zero target words")
	}
	if _, err := Open("/src/book.txt").Fs(nil).Run(context.Background()); err == nil {
		t.Error("expected error for nil filesystem")
	}
}

func TestMust(t *testing.T) {
	if got := Must(3, nil); got != 3 {
		t.Errorf("Must() = %d", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("Must should panic on error")
		}
	}()
	Must(0, errors.New("boom"))
}
