package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/tsawler/corpusprep/format"
	"github.com/tsawler/corpusprep/model"
	"github.com/tsawler/corpusprep/ocr"
)

// ErrEmptySource is returned when a source yields no text at all
var ErrEmptySource = errors.New("source produced no text")

// Defaults
const (
	DefaultOCRThreshold = 1200
	DefaultLanguage     = "eng"
	DefaultDPI          = 300
)

// Recognizer performs OCR on a single page image
type Recognizer interface {
	RecognizeImage(imageData []byte) (string, error)
	Close() error
}

// RecognizerFactory creates a recognizer for the given language
type RecognizerFactory func(lang string) (Recognizer, error)

// Rasterizer renders every page of a PDF to an encoded image
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string, dpi int) ([][]byte, error)
}

// PageFunc is called before each page is recognized
type PageFunc func(page, total int)

// Extractor acquires raw text from sources. An Extractor is not safe for
// concurrent use.
type Extractor struct {
	fs           afero.Fs
	threshold    int
	language     string
	dpi          int
	ocrEnabled   bool
	recognizer   RecognizerFactory
	rasterizer   Rasterizer
	digital      func(path string) (string, error)
	onPage       PageFunc
	lastOCRError error
}

// Option configures an Extractor
type Option func(*Extractor)

// WithFs sets the filesystem text sources are read from. PDF sources are
// always read from the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(e *Extractor) { e.fs = fsys }
}

// WithOCRThreshold sets the digital text length below which OCR is tried
func WithOCRThreshold(n int) Option {
	return func(e *Extractor) { e.threshold = n }
}

// WithLanguage sets the OCR language
func WithLanguage(lang string) Option {
	return func(e *Extractor) { e.language = lang }
}

// WithDPI sets the rasterization resolution
func WithDPI(dpi int) Option {
	return func(e *Extractor) { e.dpi = dpi }
}

// WithOCR enables or disables the OCR fallback
func WithOCR(enabled bool) Option {
	return func(e *Extractor) { e.ocrEnabled = enabled }
}

// WithRecognizer sets the OCR engine factory
func WithRecognizer(f RecognizerFactory) Option {
	return func(e *Extractor) { e.recognizer = f }
}

// WithRasterizer sets the page rasterizer
func WithRasterizer(r Rasterizer) Option {
	return func(e *Extractor) { e.rasterizer = r }
}

// WithPageFunc sets a callback invoked before each OCR page
func WithPageFunc(fn PageFunc) Option {
	return func(e *Extractor) { e.onPage = fn }
}

// withDigital replaces digital PDF extraction, for tests
func withDigital(fn func(path string) (string, error)) Option {
	return func(e *Extractor) { e.digital = fn }
}

// New creates an extractor. OCR is enabled when the binary was built with
// OCR support.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		fs:         afero.NewOsFs(),
		threshold:  DefaultOCRThreshold,
		language:   DefaultLanguage,
		dpi:        DefaultDPI,
		ocrEnabled: ocr.Available(),
		recognizer: defaultRecognizer,
		rasterizer: NewPdftoppm(),
		digital:    DigitalText,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func defaultRecognizer(lang string) (Recognizer, error) {
	client, err := ocr.New()
	if err != nil {
		return nil, err
	}
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// OCRError returns the error of the most recent failed OCR attempt
func (e *Extractor) OCRError() error {
	return e.lastOCRError
}

// Extract returns the raw text of the source at path with its method tag.
// A source yielding only whitespace fails with ErrEmptySource.
func (e *Extractor) Extract(ctx context.Context, path string) (model.RawText, error) {
	head, err := e.head(path)
	if err != nil {
		return model.RawText{}, err
	}

	var raw model.RawText
	if format.Resolve(path, head) == format.PDF {
		raw, err = e.extractPDF(ctx, path)
	} else {
		raw, err = e.extractText(path)
	}
	if err != nil {
		return model.RawText{}, err
	}

	if strings.TrimSpace(raw.Text) == "" {
		return model.RawText{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptySource)
	}
	return raw, nil
}

func (e *Extractor) head(path string) ([]byte, error) {
	f, err := e.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return head[:n], nil
}

func (e *Extractor) extractText(path string) (model.RawText, error) {
	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return model.RawText{}, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	text, err := DecodeText(data)
	if err != nil {
		return model.RawText{}, err
	}
	return model.RawText{Text: text, Method: model.MethodTextFile}, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (model.RawText, error) {
	e.lastOCRError = nil

	digital, err := e.digital(path)
	if err != nil {
		return model.RawText{}, fmt.Errorf("extracting digital text: %w", err)
	}

	raw := model.RawText{Text: digital, Method: model.MethodDigitalBlock}
	if raw.Len() >= e.threshold || !e.ocrEnabled {
		return raw, nil
	}

	text, err := e.recognize(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return model.RawText{}, ctx.Err()
		}
		e.lastOCRError = err
		return model.RawText{Text: digital, Method: model.MethodDigitalFallback}, nil
	}
	return model.RawText{Text: text, Method: model.MethodOCR}, nil
}

// recognize rasterizes every page and joins the recognized pages with
// blank lines
func (e *Extractor) recognize(ctx context.Context, path string) (string, error) {
	if e.recognizer == nil || e.rasterizer == nil {
		return "", ocr.ErrOCRNotEnabled
	}

	client, err := e.recognizer(e.language)
	if err != nil {
		return "", fmt.Errorf("starting OCR: %w", err)
	}
	defer client.Close()

	pages, err := e.rasterizer.Rasterize(ctx, path, e.dpi)
	if err != nil {
		return "", fmt.Errorf("rasterizing pages: %w", err)
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("rasterizing pages: %w", ErrEmptySource)
	}

	parts := make([][]byte, 0, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if e.onPage != nil {
			e.onPage(i+1, len(pages))
		}

		prepared, err := ocr.Prepare(page, ocr.MinWidth)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		text, err := client.RecognizeImage(prepared)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		parts = append(parts, []byte(text))
	}

	return string(bytes.Join(parts, []byte("\n\n"))), nil
}
