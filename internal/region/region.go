// Package region converts OCR word boxes and detected spans into the pixel
// rectangles that must be visually destroyed.
//
// Association is by fragment containment: a box is selected when a span's
// matched text is a substring of the box's OCR text. This is a deliberate
// simplification accepting that OCR boxes may be word-level while spans can
// cover several words; spans whose text never lands inside a single box
// produce no region and only the text-level redaction covers them.
package region

import (
	"image"
	"math"
	"strings"

	"github.com/Dicklesworthstone/cleanse/internal/detect"
)

// Box is one OCR fragment with its pixel bounds. Coordinates are in the
// space of the exact buffer that was OCR'd; if the image is resized before
// OCR the same buffer must be used for redaction.
type Box struct {
	Text       string `json:"text"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	W          int    `json:"w"`
	H          int    `json:"h"`
	Confidence int    `json:"confidence"`
}

// Rect returns the box bounds as an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

func (b Box) center() (float64, float64) {
	return float64(b.X) + float64(b.W)/2, float64(b.Y) + float64(b.H)/2
}

// Region is a pixel rectangle targeted for redaction.
type Region struct {
	// Rect is clipped to image bounds and always non-empty.
	Rect image.Rectangle
	// Sources lists the OCR fragments that produced the region.
	Sources []string
	// MergedFrom counts the boxes folded into this region.
	MergedFrom int
}

// Options control merging and expansion.
type Options struct {
	// MergeDistance is the center-to-center threshold in pixels below
	// which selected boxes are folded into one envelope.
	MergeDistance float64
	// Padding grows each region on all four sides before clipping.
	Padding int
}

// DefaultOptions match the tuning the pipeline was calibrated with.
func DefaultOptions() Options {
	return Options{MergeDistance: 50, Padding: 20}
}

// MapToRegions selects, merges, pads and clips redaction regions. An empty
// result means no pixel redaction is possible, not an error.
func MapToRegions(boxes []Box, spans []detect.Span, bounds image.Rectangle, opts Options) []Region {
	selected := selectBoxes(boxes, spans)
	if len(selected) == 0 {
		return nil
	}

	merged := mergeNearby(selected, opts.MergeDistance)

	regions := make([]Region, 0, len(merged))
	for _, g := range merged {
		r := g.rect.Inset(-opts.Padding).Intersect(bounds)
		if r.Empty() {
			continue
		}
		regions = append(regions, Region{
			Rect:       r,
			Sources:    g.sources,
			MergedFrom: g.count,
		})
	}
	return regions
}

// selectBoxes keeps every box whose OCR text contains some span's matched
// text as a substring.
func selectBoxes(boxes []Box, spans []detect.Span) []Box {
	var selected []Box
	for _, box := range boxes {
		for _, s := range spans {
			if s.Text != "" && strings.Contains(box.Text, s.Text) {
				selected = append(selected, box)
				break
			}
		}
	}
	return selected
}

type group struct {
	rect    image.Rectangle
	sources []string
	count   int
}

// mergeNearby greedily folds boxes whose centers are within dist of a seed
// box into one min/max envelope. A single pass: not globally optimal, but
// stable and cheap.
func mergeNearby(boxes []Box, dist float64) []group {
	merged := make([]group, 0, len(boxes))
	used := make([]bool, len(boxes))

	for i, seed := range boxes {
		if used[i] {
			continue
		}
		used[i] = true
		g := group{rect: seed.Rect(), sources: []string{seed.Text}, count: 1}

		sx, sy := seed.center()
		for j := i + 1; j < len(boxes); j++ {
			if used[j] {
				continue
			}
			cx, cy := boxes[j].center()
			if math.Hypot(sx-cx, sy-cy) <= dist {
				g.rect = g.rect.Union(boxes[j].Rect())
				g.sources = append(g.sources, boxes[j].Text)
				g.count++
				used[j] = true
			}
		}
		merged = append(merged, g)
	}
	return merged
}
