package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DigitalText extracts the embedded text layer of a PDF. Each page is
// trimmed and pages are joined with blank lines.
func DigitalText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return JoinPages(pages), nil
}

// JoinPages joins page texts with blank lines and trims the result
func JoinPages(pages []string) string {
	return strings.TrimSpace(strings.Join(pages, "\n\n"))
}
