// Package format detects whether a source document is a PDF or plain text.
package format

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is the number of leading bytes inspected by content detection.
const sniffLen = 3072

// Format represents a supported source format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
	// Text indicates a plain text document.
	Text
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case Text:
		return "Text"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PDF:
		return ".pdf"
	case Text:
		return ".txt"
	default:
		return ""
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF
	case ".txt", ".text", ".md":
		return Text
	default:
		return Unknown
	}
}

// DetectFromMagic determines the format from leading content bytes.
func DetectFromMagic(data []byte) Format {
	if len(data) == 0 {
		return Unknown
	}
	return fromMIME(MIME(data))
}

// MIME returns the sniffed media type of data.
func MIME(data []byte) string {
	if len(data) == 0 {
		return "application/octet-stream"
	}
	return mimetype.Detect(data).String()
}

func fromMIME(mt string) Format {
	lowered := strings.ToLower(mt)
	switch {
	case strings.HasPrefix(lowered, "application/pdf"):
		return PDF
	case strings.HasPrefix(lowered, "text/"):
		return Text
	default:
		return Unknown
	}
}

// DetectFromReader reads the head of r and sniffs its format.
func DetectFromReader(r io.Reader) (Format, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Unknown, err
	}
	return DetectFromMagic(head[:n]), nil
}

// Resolve combines the filename extension with sniffed content. A ".pdf"
// name or PDF magic selects PDF; everything else is treated as text.
func Resolve(filename string, head []byte) Format {
	if Detect(filename) == PDF || DetectFromMagic(head) == PDF {
		return PDF
	}
	return Text
}
