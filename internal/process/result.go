package process

import (
	"github.com/Dicklesworthstone/cleanse/internal/detect"
	"github.com/Dicklesworthstone/cleanse/internal/patterns"
)

// Item is one sensitive finding, stripped of the matched text itself.
// Reports and audit rows must not re-leak what was just redacted.
type Item struct {
	Type       string            `json:"type"`
	Category   patterns.Category `json:"category"`
	Confidence float64           `json:"confidence"`
	Location   string            `json:"location,omitempty"`
}

// Result describes everything that happened to one input file.
type Result struct {
	File             string   `json:"file"`
	FileType         Kind     `json:"file_type"`
	DocumentType     string   `json:"document_type"`
	SensitiveItems   []Item   `json:"sensitive_items"`
	OutputFiles      []string `json:"output_files"`
	RedactionApplied bool     `json:"redaction_applied"`
}

func itemsFromSpans(spans []detect.Span, location string) []Item {
	if len(spans) == 0 {
		return nil
	}
	items := make([]Item, len(spans))
	for i, s := range spans {
		items[i] = Item{
			Type:       s.Type,
			Category:   s.Category,
			Confidence: s.Confidence,
			Location:   location,
		}
	}
	return items
}
