// Package ocr extracts text and word bounding boxes from images.
//
// The engine itself is an external collaborator: the Tesseract binary is
// driven over exec and its TSV output parsed. Box coordinates are in the
// coordinate space of the exact image that was handed to the binary.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/cleanse/internal/region"
)

// DefaultMinConfidence drops boxes below this OCR confidence score.
const DefaultMinConfidence = 30

// Extractor produces text plus word boxes for an image file.
type Extractor interface {
	Extract(ctx context.Context, imagePath string) (string, []region.Box, error)
}

// Tesseract shells out to the tesseract binary.
type Tesseract struct {
	// Binary is the executable name or path; "tesseract" if empty.
	Binary string
	// Languages is the tesseract -l argument, e.g. "eng+hin".
	Languages string
	// MinConfidence filters word boxes; DefaultMinConfidence if zero.
	MinConfidence int
}

// Extract runs tesseract in TSV mode and parses the result.
func (t *Tesseract) Extract(ctx context.Context, imagePath string) (string, []region.Box, error) {
	bin := t.Binary
	if bin == "" {
		bin = "tesseract"
	}
	args := []string{imagePath, "stdout", "--psm", "6", "tsv"}
	if t.Languages != "" {
		args = append(args, "-l", t.Languages)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", nil, fmt.Errorf("ocr: tesseract on %s: %w (%s)",
			imagePath, err, strings.TrimSpace(stderr.String()))
	}

	min := t.MinConfidence
	if min == 0 {
		min = DefaultMinConfidence
	}
	text, boxes := ParseTSV(stdout.String(), min)
	return text, boxes, nil
}

// TSV columns, per tesseract's tsv renderer.
const (
	colLineNum = 4
	colLeft    = 6
	colTop     = 7
	colWidth   = 8
	colHeight  = 9
	colConf    = 10
	colText    = 11
	numCols    = 12
)

// ParseTSV converts tesseract TSV output into the full text and the word
// boxes at or above minConf. Words on the same line are joined with spaces;
// line changes become newlines.
func ParseTSV(tsv string, minConf int) (string, []region.Box) {
	var (
		boxes    []region.Box
		text     strings.Builder
		lastLine = -1
	)

	for i, line := range strings.Split(tsv, "\n") {
		if i == 0 || strings.TrimSpace(line) == "" {
			// Header or trailing blank.
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < numCols {
			continue
		}

		conf, err := strconv.Atoi(strings.SplitN(fields[colConf], ".", 2)[0])
		if err != nil || conf < 0 {
			// Non-word rows (page/block/line markers) carry conf -1.
			continue
		}
		word := strings.TrimSpace(fields[colText])
		if word == "" {
			continue
		}

		lineNum, _ := strconv.Atoi(fields[colLineNum])
		if text.Len() > 0 {
			if lineNum != lastLine {
				text.WriteByte('\n')
			} else {
				text.WriteByte(' ')
			}
		}
		text.WriteString(word)
		lastLine = lineNum

		if conf < minConf {
			continue
		}
		x, _ := strconv.Atoi(fields[colLeft])
		y, _ := strconv.Atoi(fields[colTop])
		w, _ := strconv.Atoi(fields[colWidth])
		h, _ := strconv.Atoi(fields[colHeight])
		boxes = append(boxes, region.Box{
			Text:       word,
			X:          x,
			Y:          y,
			W:          w,
			H:          h,
			Confidence: conf,
		})
	}

	return text.String(), boxes
}
