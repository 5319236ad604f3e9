package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
)

// Pdftoppm rasterizes PDFs with the poppler pdftoppm tool
type Pdftoppm struct {
	// Binary is the pdftoppm executable
	// Default: "pdftoppm"
	Binary string
}

// NewPdftoppm returns a rasterizer using pdftoppm from PATH
func NewPdftoppm() *Pdftoppm {
	return &Pdftoppm{Binary: "pdftoppm"}
}

// Available reports whether the pdftoppm binary can be found
func (p *Pdftoppm) Available() bool {
	_, err := exec.LookPath(p.binary())
	return err == nil
}

func (p *Pdftoppm) binary() string {
	if p.Binary == "" {
		return "pdftoppm"
	}
	return p.Binary
}

// Rasterize renders every page to PNG in page order
func (p *Pdftoppm) Rasterize(ctx context.Context, pdfPath string, dpi int) ([][]byte, error) {
	dir, err := os.MkdirTemp("", "corpusprep-pages-")
	if err != nil {
		return nil, fmt.Errorf("creating page directory: %w", err)
	}
	defer os.RemoveAll(dir)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.binary(), "-png", "-r", strconv.Itoa(dpi), pdfPath, filepath.Join(dir, "page"))
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}

	return readPages(dir)
}

// readPages loads page-N.png files ordered by page number. pdftoppm pads the
// page number to the width of the page count, so names are sorted by number
// rather than lexically.
func readPages(dir string) ([][]byte, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, err
	}

	slices.SortFunc(matches, func(a, b string) int {
		return pageNumber(a) - pageNumber(b)
	})

	pages := make([][]byte, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", filepath.Base(m), err)
		}
		pages = append(pages, data)
	}
	return pages, nil
}

func pageNumber(path string) int {
	base := filepath.Base(path)
	base = base[len("page-") : len(base)-len(".png")]
	n, err := strconv.Atoi(base)
	if err != nil {
		return 0
	}
	return n
}
