package imaging

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 32, 16))
	for x := 0; x < 32; x++ {
		src.Set(x, 8, color.RGBA{R: 255, A: 255})
	}

	for _, ext := range []string{".png", ".jpg", ".bmp", ".tiff"} {
		path := filepath.Join(t.TempDir(), "img"+ext)
		if err := Encode(src, path); err != nil {
			t.Fatalf("Encode(%s): %v", ext, err)
		}
		got, err := Decode(path)
		if err != nil {
			t.Fatalf("Decode(%s): %v", ext, err)
		}
		if got.Bounds() != src.Bounds() {
			t.Errorf("%s bounds = %v, want %v", ext, got.Bounds(), src.Bounds())
		}
	}
}

func TestDecodeZeroOrigin(t *testing.T) {
	// Downstream transforms index from (0,0) regardless of the source
	// image's declared origin.
	src := image.NewRGBA(image.Rect(10, 10, 42, 26))
	path := filepath.Join(t.TempDir(), "offset.png")
	if err := Encode(src, path); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds().Min != (image.Point{}) {
		t.Errorf("origin = %v, want (0,0)", got.Bounds().Min)
	}
}

func TestDecodeNotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.png")
	if err := os.WriteFile(path, []byte("not pixels"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(path); err == nil || !strings.Contains(err.Error(), "decoding") {
		t.Errorf("err = %v", err)
	}
}

func TestSupportedExt(t *testing.T) {
	for _, ext := range []string{".png", ".JPG", ".webp"} {
		if !SupportedExt(ext) {
			t.Errorf("SupportedExt(%q) = false", ext)
		}
	}
	if SupportedExt(".pdf") {
		t.Error("pdf reported as an image format")
	}
}
