// Package pdfrender rasterizes PDF pages to images through the poppler
// pdftoppm binary, the same collaborator the pipeline's OCR path consumes.
package pdfrender

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/uuid"
)

// DefaultDPI is the rasterization resolution for PDF pages.
const DefaultDPI = 300

// Renderer turns a PDF into one image file per page, in page order.
// The returned paths live under outDir; the caller owns their lifetime.
type Renderer interface {
	Render(ctx context.Context, pdfPath, outDir string, dpi int) ([]string, error)
}

// Poppler shells out to pdftoppm.
type Poppler struct {
	// Binary is the executable name or path; "pdftoppm" if empty.
	Binary string
}

// Render rasterizes every page of pdfPath into PNG files inside outDir.
func (p *Poppler) Render(ctx context.Context, pdfPath, outDir string, dpi int) ([]string, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	bin := p.Binary
	if bin == "" {
		bin = "pdftoppm"
	}

	// A unique prefix keeps concurrent renders into a shared temp dir
	// from colliding.
	prefix := filepath.Join(outDir, "page-"+uuid.NewString()[:8])

	cmd := exec.CommandContext(ctx, bin, "-png", "-r", strconv.Itoa(dpi), pdfPath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdfrender: pdftoppm on %s: %w (%s)", pdfPath, err, out)
	}

	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("pdfrender: globbing pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdfrender: no pages produced for %s", pdfPath)
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(pages)
	return pages, nil
}

// Cleanup removes rendered page files, tolerating already-missing ones.
func Cleanup(pages []string) {
	for _, p := range pages {
		_ = os.Remove(p)
	}
}
