// Package redactor applies irreversible pixel transforms to image regions.
//
// The engine owns the buffer it is handed for the duration of a call; no
// other goroutine may touch it. Each region is transformed independently,
// and a blur that cannot be applied falls back to blackout for that region
// only — a file is never failed because one rectangle was degenerate.
package redactor

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/Dicklesworthstone/cleanse/internal/region"
)

// Mode selects the visual transform.
type Mode string

const (
	ModeBlur     Mode = "blur"
	ModeBlackout Mode = "blackout"
)

// Preset names a blur strength profile. The two profiles mirror the two
// tunings the pipeline shipped with: the standard one for single images and
// the strong one for document scans.
type Preset string

const (
	// PresetStandard: 3 gaussian passes followed by a motion blur.
	PresetStandard Preset = "standard"
	// PresetStrong: 10 gaussian passes, motion blur, then a median pass.
	PresetStrong Preset = "strong"
)

// DefaultKernelSize is the gaussian kernel width. Must be odd; Engine forces
// even values up by one.
const DefaultKernelSize = 45

// motionKernelLen is the length of the directional motion-blur kernel.
const motionKernelLen = 15

var errEmptyRegion = errors.New("redactor: empty region")

// blackoutColor is the fill used for blackout mode and blur fallback.
var blackoutColor = color.RGBA{0, 0, 0, 255}

// Outcome reports what happened to one region. Fallback is explicit state,
// not a recovered fault: callers can count and report it.
type Outcome struct {
	Rect     image.Rectangle
	Mode     Mode
	FellBack bool
	Err      error
}

// Engine applies a configured transform to regions of an RGBA buffer.
type Engine struct {
	mode       Mode
	preset     Preset
	kernelSize int
}

// New builds an engine. An even kernel size is incremented, a non-positive
// one replaced with the default.
func New(mode Mode, preset Preset, kernelSize int) *Engine {
	if kernelSize <= 0 {
		kernelSize = DefaultKernelSize
	}
	if kernelSize%2 == 0 {
		kernelSize++
	}
	return &Engine{mode: mode, preset: preset, kernelSize: kernelSize}
}

// Apply transforms every region in place and returns one outcome per
// region. Overlapping regions are tolerated; each is applied independently.
func (e *Engine) Apply(img *image.RGBA, regions []region.Region) []Outcome {
	outcomes := make([]Outcome, 0, len(regions))
	for _, r := range regions {
		outcomes = append(outcomes, e.applyOne(img, r.Rect))
	}
	return outcomes
}

func (e *Engine) applyOne(img *image.RGBA, rect image.Rectangle) Outcome {
	out := Outcome{Rect: rect, Mode: e.mode}

	if e.mode == ModeBlackout {
		blackout(img, rect)
		return out
	}

	if err := e.blur(img, rect); err != nil {
		// Blur failed for this region; blackout still guarantees the
		// content is destroyed.
		out.FellBack = true
		out.Err = err
		blackout(img, rect)
	}
	return out
}

// blur runs the configured gaussian passes, a motion blur, and (for the
// strong preset) a median pass over rect.
func (e *Engine) blur(img *image.RGBA, rect image.Rectangle) error {
	roi := rect.Intersect(img.Bounds())
	if roi.Empty() {
		return errEmptyRegion
	}

	passes := 3
	if e.preset == PresetStrong {
		passes = 10
	}

	kernel := gaussianKernel(e.kernelSize)
	for i := 0; i < passes; i++ {
		convolveSeparable(img, roi, kernel)
	}

	motionBlur(img, roi, motionKernelLen)

	if e.preset == PresetStrong {
		medianBlur(img, roi)
	}
	return nil
}

// blackout overwrites every pixel in rect with solid black. Empty or
// out-of-bounds rects are a no-op.
func blackout(img *image.RGBA, rect image.Rectangle) {
	roi := rect.Intersect(img.Bounds())
	if roi.Empty() {
		return
	}
	draw.Draw(img, roi, &image.Uniform{blackoutColor}, image.Point{}, draw.Src)
}
