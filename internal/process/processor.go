// Package process routes files to format-specific redaction handlers and
// reports what was found and written.
package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Dicklesworthstone/cleanse/internal/detect"
	"github.com/Dicklesworthstone/cleanse/internal/imaging"
	"github.com/Dicklesworthstone/cleanse/internal/ocr"
	"github.com/Dicklesworthstone/cleanse/internal/patterns"
	"github.com/Dicklesworthstone/cleanse/internal/pdfrender"
	"github.com/Dicklesworthstone/cleanse/internal/redactor"
	"github.com/Dicklesworthstone/cleanse/internal/region"
	"github.com/Dicklesworthstone/cleanse/internal/textclean"
)

// DefaultMaxFileSize rejects inputs above this many bytes before any
// content is read.
const DefaultMaxFileSize = 50 << 20

// Options tune a Processor. Zero values mean defaults.
type Options struct {
	// OutputDir receives all artifacts; empty means alongside the input.
	OutputDir string
	// TempDir holds intermediate page rasters; empty means os.TempDir.
	TempDir string
	// CompactJSON disables indentation of redacted JSON output.
	CompactJSON bool
	// Mode selects blur or blackout for pixel redaction.
	Mode redactor.Mode
	// Preset selects the blur strength.
	Preset redactor.Preset
	// KernelSize is the gaussian kernel width; forced odd.
	KernelSize int
	// MergeDistance and Padding tune region geometry.
	MergeDistance float64
	Padding       int
	// DPI is the PDF rasterization resolution.
	DPI int
	// Languages is passed to the OCR engine, e.g. "eng+hin".
	Languages string
	// MinOCRConfidence filters OCR word boxes.
	MinOCRConfidence int
	// MaxFileSize in bytes; DefaultMaxFileSize if zero.
	MaxFileSize int64
}

// Processor runs one file through detection and redaction.
type Processor struct {
	// OCR and PDF are swappable for tests.
	OCR ocr.Extractor
	PDF pdfrender.Renderer

	registry *patterns.Registry
	detector *detect.Detector
	engine   *redactor.Engine
	log      *log.Logger
	opts     Options
}

// New builds a processor around a pattern registry.
func New(reg *patterns.Registry, logger *log.Logger, opts Options) *Processor {
	if opts.Mode == "" {
		opts.Mode = redactor.ModeBlur
	}
	if opts.Preset == "" {
		opts.Preset = redactor.PresetStandard
	}
	if opts.MergeDistance <= 0 {
		opts.MergeDistance = region.DefaultOptions().MergeDistance
	}
	if opts.Padding <= 0 {
		opts.Padding = region.DefaultOptions().Padding
	}
	if opts.DPI <= 0 {
		opts.DPI = pdfrender.DefaultDPI
	}
	if opts.MinOCRConfidence <= 0 {
		opts.MinOCRConfidence = ocr.DefaultMinConfidence
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Processor{
		OCR: &ocr.Tesseract{
			Languages:     opts.Languages,
			MinConfidence: opts.MinOCRConfidence,
		},
		PDF:      &pdfrender.Poppler{},
		registry: reg,
		detector: detect.New(reg),
		engine:   redactor.New(opts.Mode, opts.Preset, opts.KernelSize),
		log:      logger,
		opts:     opts,
	}
}

// Process routes path to its handler. It returns ErrUnsupportedFormat or
// ErrOversize (possibly wrapped) for files that are skipped outright.
func (p *Processor) Process(ctx context.Context, path string) (*Result, error) {
	kind, err := DetectKind(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	if info.Size() > p.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrOversize, path, info.Size())
	}

	p.log.Debug("processing", "file", path, "kind", kind)

	switch kind {
	case KindImage:
		return p.processImage(ctx, path)
	case KindPDF:
		return p.processPDF(ctx, path)
	case KindText:
		return p.processText(path)
	case KindMarkup:
		return p.processMarkup(path)
	case KindJSON:
		return p.processJSON(path)
	case KindCSV:
		return p.processCSV(path)
	case KindSpreadsheet:
		return p.processSpreadsheet(path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, kind)
}

// outPath places an artifact next to the input, or inside OutputDir.
// suffix is appended to the stem; ext replaces the extension when non-empty.
func (p *Processor) outPath(path, suffix, ext string) string {
	dir := filepath.Dir(path)
	if p.opts.OutputDir != "" {
		dir = p.opts.OutputDir
	}
	base := filepath.Base(path)
	origExt := filepath.Ext(base)
	stem := strings.TrimSuffix(base, origExt)
	if ext == "" {
		ext = origExt
	}
	return filepath.Join(dir, stem+suffix+ext)
}

// processImage is the OCR pipeline: extract, normalize, detect, map to
// pixel regions, destroy them, and always leave a redacted transcript.
func (p *Processor) processImage(ctx context.Context, path string) (*Result, error) {
	res := &Result{File: path, FileType: KindImage, DocumentType: "unknown"}

	rawText, boxes, err := p.OCR.Extract(ctx, path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	cleaned := textclean.Clean(rawText)
	res.DocumentType = ClassifyDocument(cleaned)
	spans := p.detector.Detect(cleaned)
	res.SensitiveItems = itemsFromSpans(spans, "")
	p.log.Debug("image scanned", "file", path, "boxes", len(boxes), "spans", len(spans))

	// The transcript is written regardless of whether pixels change, so a
	// text-level audit exists even when region mapping comes up empty.
	transcript := p.outPath(path, "_redacted", ".txt")
	if err := os.WriteFile(transcript, []byte(detect.RedactText(cleaned, spans)), 0o644); err != nil {
		return nil, &PersistenceError{Path: transcript, Err: err}
	}
	res.OutputFiles = append(res.OutputFiles, transcript)

	img, err := imaging.Decode(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	regions := region.MapToRegions(boxes, spans, img.Bounds(), region.Options{
		MergeDistance: p.opts.MergeDistance,
		Padding:       p.opts.Padding,
	})

	if len(regions) == 0 {
		// Nothing to destroy; the copy marks the file as reviewed.
		out := p.outPath(path, "_processed", "")
		if err := copyFile(path, out); err != nil {
			return nil, &PersistenceError{Path: out, Err: err}
		}
		res.OutputFiles = append(res.OutputFiles, out)
		return res, nil
	}

	outcomes := p.engine.Apply(img, regions)
	for _, o := range outcomes {
		if o.FellBack {
			p.log.Warn("blur fell back to blackout", "file", path, "rect", o.Rect, "err", o.Err)
		}
	}

	out := p.outPath(path, "_redacted", "")
	if err := imaging.Encode(img, out); err != nil {
		return nil, &PersistenceError{Path: out, Err: err}
	}
	res.OutputFiles = append(res.OutputFiles, out)
	res.RedactionApplied = true
	return res, nil
}

// processPDF rasterizes pages and runs each through the image pipeline.
func (p *Processor) processPDF(ctx context.Context, path string) (*Result, error) {
	res := &Result{File: path, FileType: KindPDF, DocumentType: "unknown"}

	tmpDir, err := os.MkdirTemp(p.opts.TempDir, "cleanse-pdf-")
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	defer os.RemoveAll(tmpDir)

	pages, err := p.PDF.Render(ctx, path, tmpDir, p.opts.DPI)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	defer pdfrender.Cleanup(pages)

	var transcript strings.Builder
	anyRedacted := false

	for i, page := range pages {
		pageNo := i + 1
		rawText, boxes, err := p.OCR.Extract(ctx, page)
		if err != nil {
			return nil, &ExtractionError{Path: path, Err: fmt.Errorf("page %d: %w", pageNo, err)}
		}

		cleaned := textclean.Clean(rawText)
		if res.DocumentType == "unknown" {
			res.DocumentType = ClassifyDocument(cleaned)
		}
		spans := p.detector.Detect(cleaned)
		res.SensitiveItems = append(res.SensitiveItems,
			itemsFromSpans(spans, "page "+strconv.Itoa(pageNo))...)

		if transcript.Len() > 0 {
			transcript.WriteString("\n\n")
		}
		transcript.WriteString(detect.RedactText(cleaned, spans))

		img, err := imaging.Decode(page)
		if err != nil {
			return nil, &ExtractionError{Path: path, Err: fmt.Errorf("page %d: %w", pageNo, err)}
		}
		regions := region.MapToRegions(boxes, spans, img.Bounds(), region.Options{
			MergeDistance: p.opts.MergeDistance,
			Padding:       p.opts.Padding,
		})
		if len(regions) > 0 {
			p.engine.Apply(img, regions)
			anyRedacted = true
		}

		out := p.outPath(path, "_page_"+strconv.Itoa(pageNo)+"_redacted", ".png")
		if err := imaging.Encode(img, out); err != nil {
			return nil, &PersistenceError{Path: out, Err: err}
		}
		res.OutputFiles = append(res.OutputFiles, out)
	}

	txtOut := p.outPath(path, "_redacted", ".txt")
	if err := os.WriteFile(txtOut, []byte(transcript.String()), 0o644); err != nil {
		return nil, &PersistenceError{Path: txtOut, Err: err}
	}
	res.OutputFiles = append(res.OutputFiles, txtOut)
	res.RedactionApplied = anyRedacted
	return res, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
