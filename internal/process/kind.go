package process

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the handler family a file routes to. Routing is by extension
// only; content sniffing is deliberately avoided so behavior is predictable
// from the file name alone.
type Kind string

const (
	KindImage       Kind = "image"
	KindText        Kind = "text"
	KindJSON        Kind = "json"
	KindMarkup      Kind = "markup"
	KindCSV         Kind = "csv"
	KindSpreadsheet Kind = "spreadsheet"
	KindPDF         Kind = "pdf"
)

var kindByExt = map[string]Kind{
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".bmp":  KindImage,
	".tif":  KindImage,
	".tiff": KindImage,
	".webp": KindImage,
	".gif":  KindImage,

	".txt": KindText,
	".md":  KindText,
	".log": KindText,
	".rst": KindText,
	".tsv": KindText,

	".json": KindJSON,

	".xml":  KindMarkup,
	".yaml": KindMarkup,
	".yml":  KindMarkup,
	".ini":  KindMarkup,
	".conf": KindMarkup,

	".csv": KindCSV,

	".xlsx": KindSpreadsheet,
	".xlsm": KindSpreadsheet,

	".pdf": KindPDF,
}

// DetectKind maps a path to its handler kind, or ErrUnsupportedFormat.
func DetectKind(path string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if k, ok := kindByExt[ext]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// SupportedExtensions lists every extension a handler exists for.
// The order is unspecified.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(kindByExt))
	for ext := range kindByExt {
		exts = append(exts, ext)
	}
	return exts
}
