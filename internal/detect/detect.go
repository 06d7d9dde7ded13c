// Package detect locates sensitive spans in normalized text.
//
// Two layers run over every input: the pattern registry (strict matches,
// confidence 1.0) and a small set of fuzzy detectors that tolerate the OCR
// noise which breaks strict patterns. Fuzzy hits carry lower confidence so
// callers can weight them, never so they can be discarded.
package detect

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Dicklesworthstone/cleanse/internal/patterns"
)

// Span is one detected sensitive substring.
type Span struct {
	// Type is the pattern name that produced the match.
	Type string `json:"type"`
	// Text is the matched substring.
	Text string `json:"text"`
	// Start and End are byte offsets into the scanned text, Start < End.
	Start int `json:"start"`
	End   int `json:"end"`
	// Confidence is 1.0 for registry matches, lower for fuzzy detections.
	Confidence float64 `json:"confidence"`
	// Category of the producing pattern, empty for fuzzy detections.
	Category patterns.Category `json:"category,omitempty"`
}

// Detector runs registry patterns and fuzzy heuristics over text.
type Detector struct {
	registry *patterns.Registry
}

// New returns a detector bound to the given registry.
func New(r *patterns.Registry) *Detector {
	return &Detector{registry: r}
}

// Fuzzy detectors, independent of the registry. OCR noise frequently breaks
// strict formats; these catch the wreckage at reduced confidence.
var (
	fuzzyIDGroups = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}\s+\d{4}\s+\d{4}\b`),
		regexp.MustCompile(`\b\d{4}\s?\d{4}\s?\d{4}\b`),
		regexp.MustCompile(`\b\d{12}\b`),
	}
	fuzzyDates = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{4}\b`),
		regexp.MustCompile(`\b\d{4}[-/]\d{1,2}[-/]\d{1,2}\b`),
	}
	fuzzyName = regexp.MustCompile(`(?i)(?:name|naam)\s*[:\-]?\s*([a-zA-Z\s]{2,25})`)
)

const (
	confidenceID   = 0.8
	confidenceDate = 0.7
	confidenceName = 0.6
)

// Detect scans text and returns deduplicated sensitive spans. Returned spans
// never overlap and always have Start < End. Order follows the accept order
// of the overlap resolution, which is not positional once an eviction
// occurred; re-sort by Start if position matters.
func (d *Detector) Detect(text string) []Span {
	if text == "" {
		return nil
	}

	// Iterate patterns in name order so overlap ties resolve the same way
	// on every run.
	reg := d.registry.Patterns()
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)

	var candidates []Span
	for _, name := range names {
		p := reg[name]
		for _, loc := range p.Regex.FindAllStringIndex(text, -1) {
			candidates = append(candidates, Span{
				Type:       name,
				Text:       text[loc[0]:loc[1]],
				Start:      loc[0],
				End:        loc[1],
				Confidence: 1.0,
				Category:   p.Category,
			})
		}
	}
	candidates = append(candidates, fuzzyDetect(text)...)

	return dedupe(candidates)
}

// fuzzyDetect runs the noise-tolerant secondary detectors.
func fuzzyDetect(text string) []Span {
	var spans []Span

	for _, re := range fuzzyIDGroups {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, Span{
				Type:       "suspected_id_number",
				Text:       text[loc[0]:loc[1]],
				Start:      loc[0],
				End:        loc[1],
				Confidence: confidenceID,
			})
		}
	}
	for _, re := range fuzzyDates {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, Span{
				Type:       "suspected_date",
				Text:       text[loc[0]:loc[1]],
				Start:      loc[0],
				End:        loc[1],
				Confidence: confidenceDate,
			})
		}
	}
	// Keyword-anchored names use the capture group, not the whole match.
	for _, m := range fuzzyName.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		if start < 0 {
			continue
		}
		name := strings.TrimSpace(text[start:end])
		if len(name) < 2 || isAllDigits(name) {
			continue
		}
		spans = append(spans, Span{
			Type:       "suspected_name",
			Text:       name,
			Start:      start,
			End:        end,
			Confidence: confidenceName,
		})
	}

	return spans
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// dedupe resolves overlapping candidates. Candidates are taken in start
// order; one that overlaps an accepted span is dropped unless its confidence
// strictly exceeds the accepted span's, in which case the accepted span is
// evicted. The accepted list is therefore not guaranteed to stay sorted.
func dedupe(candidates []Span) []Span {
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Start < candidates[j].Start
	})

	var accepted []Span
	for _, c := range candidates {
		overlaps := false
		for i, a := range accepted {
			if c.Start < a.End && c.End > a.Start {
				if c.Confidence > a.Confidence {
					accepted = append(accepted[:i], accepted[i+1:]...)
					accepted = append(accepted, c)
				}
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, c)
		}
	}
	return accepted
}

// RedactText returns text with every span replaced by a placeholder naming
// the detection, e.g. "[EMAIL REDACTED]". The input is never mutated; spans
// are applied in descending start order so earlier offsets stay valid.
func RedactText(text string, spans []Span) string {
	if len(spans) == 0 {
		return text
	}

	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})

	out := text
	for _, s := range sorted {
		if s.Start < 0 || s.End > len(out) || s.Start >= s.End {
			continue
		}
		out = out[:s.Start] + Placeholder(s.Type) + out[s.End:]
	}
	return out
}

// Placeholder renders the literal replacement token for a pattern name.
func Placeholder(patternType string) string {
	label := strings.ToUpper(strings.ReplaceAll(patternType, "_", " "))
	return "[" + label + " REDACTED]"
}
