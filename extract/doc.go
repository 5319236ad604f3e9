// Package extract acquires raw text from source documents.
//
// PDF sources go through digital text extraction first. When the digital
// layer is too thin (fewer than OCRThreshold characters) and OCR is
// available, pages are rasterized and recognized instead:
//
//	ex := extract.New()
//	raw, err := ex.Extract(ctx, "book.pdf")
//	fmt.Println(raw.Method) // digital_block, paddle_ocr or digital_fallback
//
// Any other source is read as text with its character encoding detected and
// converted to UTF-8. The result carries the method tag text_file.
package extract
