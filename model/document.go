package model

import "unicode/utf8"

// Method identifies how the raw text of a source was obtained.
type Method string

const (
	// MethodDigitalBlock is text read directly from the PDF content streams.
	MethodDigitalBlock Method = "digital_block"
	// MethodOCR is text recognized from rasterized pages. The tag value is
	// kept stable so that state files written by earlier runs stay readable.
	MethodOCR Method = "paddle_ocr"
	// MethodDigitalFallback is digital text used after OCR was attempted and failed.
	MethodDigitalFallback Method = "digital_fallback"
	// MethodTextFile is a plain text source read as-is.
	MethodTextFile Method = "text_file"
	// MethodUnknown is used before extraction has run.
	MethodUnknown Method = "unknown"
)

// String returns the tag value of the method.
func (m Method) String() string {
	return string(m)
}

// Valid reports whether m is one of the known extraction methods.
func (m Method) Valid() bool {
	switch m {
	case MethodDigitalBlock, MethodOCR, MethodDigitalFallback, MethodTextFile:
		return true
	default:
		return false
	}
}

// RawText is the text blob handed to the pipeline by the extraction step.
type RawText struct {
	Text   string
	Method Method
}

// Len returns the length of the text in characters.
func (r RawText) Len() int {
	return utf8.RuneCountInString(r.Text)
}

// Empty reports whether no text was extracted.
func (r RawText) Empty() bool {
	return r.Text == ""
}
