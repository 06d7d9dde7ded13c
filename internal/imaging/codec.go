// Package imaging decodes files into mutable pixel buffers and encodes them
// back. It is the codec boundary: everything past it works on *image.RGBA.
package imaging

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	// Decoders registered for image.Decode.
	_ "image/gif"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// jpegQuality matches the original output quality setting.
const jpegQuality = 95

// Decode reads the file at path into an RGBA buffer the caller owns.
func Decode(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imaging: opening %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imaging: decoding %s: %w", path, err)
	}
	return toRGBA(src), nil
}

// toRGBA copies src into a fresh RGBA buffer with a zero-origin rectangle.
func toRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Encode writes img to path, choosing the format from the extension.
// PNG is the fallback for extensions without an encoder (webp, gif frames).
func Encode(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imaging: creating %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
	case ".bmp":
		err = bmp.Encode(f, img)
	case ".tif", ".tiff":
		err = tiff.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("imaging: encoding %s: %w", path, err)
	}
	return f.Close()
}

// SupportedExt reports whether ext (with leading dot, any case) is a
// decodable image format.
func SupportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".tif", ".webp", ".gif":
		return true
	}
	return false
}
