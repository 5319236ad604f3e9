package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// Decoders for page images
	_ "image/jpeg"

	_ "golang.org/x/image/tiff"

	"golang.org/x/image/draw"
)

// MinWidth is the width below which page images are upscaled before
// recognition.
const MinWidth = 1700

// Prepare decodes a page image, converts it to grayscale and upscales it to
// at least minWidth pixels wide. The result is PNG encoded.
func Prepare(data []byte, minWidth int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding page image: %w", err)
	}

	gray := Grayscale(src)
	out := image.Image(gray)
	if b := gray.Bounds(); minWidth > 0 && b.Dx() > 0 && b.Dx() < minWidth {
		out = Upscale(gray, minWidth)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encoding page image: %w", err)
	}
	return buf.Bytes(), nil
}

// Grayscale converts img to 8-bit grayscale.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// Upscale resizes img to width pixels preserving its aspect ratio.
func Upscale(img *image.Gray, width int) *image.Gray {
	b := img.Bounds()
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
