package extract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/tsawler/corpusprep/model"
)

type fakeRecognizer struct {
	texts  []string
	calls  int
	err    error
	closed bool
}

func (f *fakeRecognizer) RecognizeImage([]byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	text := f.texts[f.calls%len(f.texts)]
	f.calls++
	return text, nil
}

func (f *fakeRecognizer) Close() error {
	f.closed = true
	return nil
}

type fakeRasterizer struct {
	pages [][]byte
	err   error
	dpi   int
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _ string, dpi int) ([][]byte, error) {
	f.dpi = dpi
	return f.pages, f.err
}

func pageImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 20, 10))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetGray(5, 5, color.Gray{Y: 0})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func memSource(t *testing.T, name string, data []byte) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, name, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return fs
}

func digitalOf(text string) Option {
	return withDigital(func(string) (string, error) { return text, nil })
}

func TestExtract_TextFile(t *testing.T) {
	fs := memSource(t, "/notes.txt", []byte("hello world"))
	raw, err := New(WithFs(fs)).Extract(context.Background(), "/notes.txt")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if raw.Text != "hello world" || raw.Method != model.MethodTextFile {
		t.Errorf("Extract() = %+v", raw)
	}
}

func TestExtract_Missing(t *testing.T) {
	_, err := New(WithFs(afero.NewMemMapFs())).Extract(context.Background(), "/missing.txt")
	if err == nil {
		t.Error("expected error for missing source")
	}
}

func TestExtract_EmptySource(t *testing.T) {
	fs := memSource(t, "/blank.txt", []byte(" \n\t "))
	_, err := New(WithFs(fs)).Extract(context.Background(), "/blank.txt")
	if !errors.Is(err, ErrEmptySource) {
		t.Errorf("expected ErrEmptySource, got %v", err)
	}
}

func TestExtract_DigitalBlock(t *testing.T) {
	fs := memSource(t, "/book.pdf", []byte("%PDF-1.4\n"))
	long := strings.Repeat("a", DefaultOCRThreshold)

	raw, err := New(WithFs(fs), WithOCR(true), digitalOf(long)).Extract(context.Background(), "/book.pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if raw.Method != model.MethodDigitalBlock || raw.Text != long {
		t.Errorf("method = %s, len = %d", raw.Method, raw.Len())
	}
}

func TestExtract_WeakDigitalWithoutOCR(t *testing.T) {
	fs := memSource(t, "/book.pdf", []byte("%PDF-1.4\n"))
	raw, err := New(WithFs(fs), WithOCR(false), digitalOf("thin")).Extract(context.Background(), "/book.pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if raw.Method != model.MethodDigitalBlock || raw.Text != "thin" {
		t.Errorf("Extract() = %+v", raw)
	}
}

func TestExtract_OCR(t *testing.T) {
	fs := memSource(t, "/scan.pdf", []byte("%PDF-1.4\n"))
	rec := &fakeRecognizer{texts: []string{"page one", "page two"}}
	raster := &fakeRasterizer{pages: [][]byte{pageImage(t), pageImage(t)}}

	var seen []int
	ex := New(
		WithFs(fs),
		WithOCR(true),
		WithDPI(150),
		digitalOf("thin"),
		WithRasterizer(raster),
		WithRecognizer(func(lang string) (Recognizer, error) {
			if lang != DefaultLanguage {
				t.Errorf("language = %q", lang)
			}
			return rec, nil
		}),
		WithPageFunc(func(page, total int) { seen = append(seen, page*10+total) }),
	)

	raw, err := ex.Extract(context.Background(), "/scan.pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if raw.Method != model.MethodOCR {
		t.Errorf("method = %s, want %s", raw.Method, model.MethodOCR)
	}
	if raw.Text != "page one\n\npage two" {
		t.Errorf("text = %q", raw.Text)
	}
	if raster.dpi != 150 {
		t.Errorf("dpi = %d, want 150", raster.dpi)
	}
	if !rec.closed {
		t.Error("recognizer was not closed")
	}
	if len(seen) != 2 || seen[0] != 12 || seen[1] != 22 {
		t.Errorf("page callbacks = %v", seen)
	}
}

func TestExtract_OCRFailureFallsBack(t *testing.T) {
	fs := memSource(t, "/scan.pdf", []byte("%PDF-1.4\n"))
	boom := errors.New("engine crashed")

	ex := New(
		WithFs(fs),
		WithOCR(true),
		digitalOf("thin"),
		WithRasterizer(&fakeRasterizer{pages: [][]byte{pageImage(t)}}),
		WithRecognizer(func(string) (Recognizer, error) { return &fakeRecognizer{err: boom}, nil }),
	)

	raw, err := ex.Extract(context.Background(), "/scan.pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if raw.Method != model.MethodDigitalFallback || raw.Text != "thin" {
		t.Errorf("Extract() = %+v", raw)
	}
	if !errors.Is(ex.OCRError(), boom) {
		t.Errorf("OCRError() = %v, want %v", ex.OCRError(), boom)
	}
}

func TestExtract_RasterFailureFallsBack(t *testing.T) {
	fs := memSource(t, "/scan.pdf", []byte("%PDF-1.4\n"))
	ex := New(
		WithFs(fs),
		WithOCR(true),
		digitalOf("thin"),
		WithRasterizer(&fakeRasterizer{err: errors.New("no pdftoppm")}),
		WithRecognizer(func(string) (Recognizer, error) { return &fakeRecognizer{texts: []string{"x"}}, nil }),
	)

	raw, err := ex.Extract(context.Background(), "/scan.pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if raw.Method != model.MethodDigitalFallback {
		t.Errorf("method = %s, want %s", raw.Method, model.MethodDigitalFallback)
	}
}

func TestExtract_CanceledDuringOCR(t *testing.T) {
	fs := memSource(t, "/scan.pdf", []byte("%PDF-1.4\n"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := New(
		WithFs(fs),
		WithOCR(true),
		digitalOf("thin"),
		WithRasterizer(&fakeRasterizer{pages: [][]byte{pageImage(t)}}),
		WithRecognizer(func(string) (Recognizer, error) { return &fakeRecognizer{texts: []string{"x"}}, nil }),
	)

	if _, err := ex.Extract(ctx, "/scan.pdf"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestExtract_DigitalError(t *testing.T) {
	fs := memSource(t, "/bad.pdf", []byte("%PDF-1.4\n"))
	ex := New(WithFs(fs), withDigital(func(string) (string, error) { return "", errors.New("corrupt") }))
	if _, err := ex.Extract(context.Background(), "/bad.pdf"); err == nil {
		t.Error("expected digital extraction error")
	}
}

func TestDigitalText_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\nnot really"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := DigitalText(path); err == nil {
		t.Error("expected error for malformed pdf")
	}
}

func TestJoinPages(t *testing.T) {
	if got := JoinPages([]string{"one", "", "two"}); got != "one\n\n\n\ntwo" {
		t.Errorf("JoinPages() = %q", got)
	}
	if got := JoinPages([]string{"", ""}); got != "" {
		t.Errorf("JoinPages(empty pages) = %q", got)
	}
}
