package process

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat marks files whose extension maps to no handler.
	ErrUnsupportedFormat = errors.New("process: unsupported file format")

	// ErrOversize marks files rejected before any content is read.
	ErrOversize = errors.New("process: file exceeds size limit")
)

// ExtractionError wraps a failure to get content out of a file: decode,
// OCR, rasterization, parse.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("process: extracting from %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// PersistenceError wraps a failure to write an output artifact. The
// redaction itself may have succeeded in memory.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("process: writing %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
