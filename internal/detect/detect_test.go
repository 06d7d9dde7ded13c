package detect

import (
	"sort"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/Dicklesworthstone/cleanse/internal/patterns"
)

func newDetector() *Detector {
	return New(patterns.New())
}

func TestDetectEmail(t *testing.T) {
	d := newDetector()
	spans := d.Detect("reach me at jane.doe@example.com today")

	found := false
	for _, s := range spans {
		if s.Type == "email" && s.Text == "jane.doe@example.com" {
			found = true
			if s.Confidence != 1.0 {
				t.Errorf("registry match confidence = %v, want 1.0", s.Confidence)
			}
		}
	}
	if !found {
		t.Errorf("email not detected in spans: %+v", spans)
	}
}

func TestDetectEmptyText(t *testing.T) {
	if spans := newDetector().Detect(""); spans != nil {
		t.Errorf("Detect(\"\") = %+v, want nil", spans)
	}
}

func TestDetectFuzzyConfidences(t *testing.T) {
	// An unformatted 12-digit group triggers the fuzzy ID detector; the
	// registry's strict pattern claims it first at confidence 1.0, so
	// check the fuzzy layer directly.
	spans := fuzzyDetect("number 123456789012 here")
	if len(spans) == 0 {
		t.Fatal("fuzzy ID detector found nothing")
	}
	if spans[0].Type != "suspected_id_number" || spans[0].Confidence != 0.8 {
		t.Errorf("fuzzy ID span = %+v", spans[0])
	}

	spans = fuzzyDetect("dated 3/4/2021 end")
	var date *Span
	for i := range spans {
		if spans[i].Type == "suspected_date" {
			date = &spans[i]
		}
	}
	if date == nil || date.Confidence != 0.7 {
		t.Errorf("fuzzy date span = %+v", spans)
	}

	spans = fuzzyDetect("Name: Paul Smith")
	var name *Span
	for i := range spans {
		if spans[i].Type == "suspected_name" {
			name = &spans[i]
		}
	}
	if name == nil {
		t.Fatalf("fuzzy name not detected: %+v", spans)
	}
	if name.Confidence != 0.6 {
		t.Errorf("fuzzy name confidence = %v, want 0.6", name.Confidence)
	}
	if !strings.Contains(name.Text, "Paul") {
		t.Errorf("fuzzy name text = %q", name.Text)
	}
}

func TestFuzzyNameSkipsDigitsAndShort(t *testing.T) {
	if spans := fuzzyDetect("name: 12345678"); len(spans) != 0 {
		t.Errorf("all-digit capture should be skipped: %+v", spans)
	}
}

func TestDedupeHigherConfidenceWins(t *testing.T) {
	candidates := []Span{
		{Type: "weak", Text: "1234 5678 9012", Start: 10, End: 24, Confidence: 0.6},
		{Type: "strong", Text: "1234 5678 9012", Start: 10, End: 24, Confidence: 1.0},
	}
	out := dedupe(candidates)
	if len(out) != 1 {
		t.Fatalf("dedupe kept %d spans, want 1", len(out))
	}
	if out[0].Type != "strong" || out[0].Confidence != 1.0 {
		t.Errorf("surviving span = %+v, want the 1.0-confidence one", out[0])
	}
}

func TestDedupeEviction(t *testing.T) {
	// A later, stronger candidate evicts an already-accepted weaker one.
	candidates := []Span{
		{Type: "weak", Start: 0, End: 10, Confidence: 0.6},
		{Type: "strong", Start: 5, End: 15, Confidence: 1.0},
	}
	out := dedupe(candidates)
	if len(out) != 1 || out[0].Type != "strong" {
		t.Errorf("dedupe = %+v, want only the strong span", out)
	}
}

func TestDedupeEqualConfidenceFirstWins(t *testing.T) {
	candidates := []Span{
		{Type: "first", Start: 0, End: 10, Confidence: 1.0},
		{Type: "second", Start: 5, End: 15, Confidence: 1.0},
	}
	out := dedupe(candidates)
	if len(out) != 1 || out[0].Type != "first" {
		t.Errorf("dedupe = %+v, want only the first span", out)
	}
}

func TestDedupeDisjointKept(t *testing.T) {
	candidates := []Span{
		{Type: "a", Start: 0, End: 5, Confidence: 1.0},
		{Type: "b", Start: 5, End: 10, Confidence: 0.6},
	}
	// Touching spans (end == start) do not overlap.
	if out := dedupe(candidates); len(out) != 2 {
		t.Errorf("dedupe dropped a disjoint span: %+v", out)
	}
}

// Detect must return spans with Start < End and no pairwise overlap, for
// any input.
func TestDetectInvariantsProperty(t *testing.T) {
	d := newDetector()
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[ -~]{0,120}`).Draw(t, "text")
		spans := d.Detect(text)

		for _, s := range spans {
			if s.Start >= s.End {
				t.Fatalf("span %+v has Start >= End", s)
			}
		}
		sorted := make([]Span, len(spans))
		copy(sorted, spans)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
		for i := 1; i < len(sorted); i++ {
			if sorted[i].Start < sorted[i-1].End {
				t.Fatalf("spans overlap: %+v and %+v", sorted[i-1], sorted[i])
			}
		}
	})
}

func TestRedactText(t *testing.T) {
	d := newDetector()
	text := "email jane@example.com phone 9876543210 end"
	spans := d.Detect(text)
	if len(spans) == 0 {
		t.Fatal("no spans detected")
	}

	out := RedactText(text, spans)
	for _, s := range spans {
		if strings.Contains(out, s.Text) {
			t.Errorf("matched text %q survived redaction: %q", s.Text, out)
		}
	}
	if !strings.Contains(out, "[EMAIL REDACTED]") {
		t.Errorf("email placeholder missing: %q", out)
	}
	if !strings.Contains(out, " end") {
		t.Errorf("unrelated text damaged: %q", out)
	}
}

func TestRedactTextPure(t *testing.T) {
	text := "call 9876543210 now"
	d := newDetector()
	spans := d.Detect(text)
	_ = RedactText(text, spans)
	if text != "call 9876543210 now" {
		t.Error("RedactText mutated its input")
	}
}

func TestRedactTextPlaceholderPerSpan(t *testing.T) {
	text := "a@b.co and c@d.co"
	spans := []Span{
		{Type: "email", Text: "a@b.co", Start: 0, End: 6, Confidence: 1.0},
		{Type: "email", Text: "c@d.co", Start: 11, End: 17, Confidence: 1.0},
	}
	out := RedactText(text, spans)
	if got := strings.Count(out, "[EMAIL REDACTED]"); got != 2 {
		t.Errorf("placeholder count = %d, want 2: %q", got, out)
	}
}

func TestRedactTextNoSpans(t *testing.T) {
	if out := RedactText("plain", nil); out != "plain" {
		t.Errorf("RedactText with no spans = %q", out)
	}
}

func TestPlaceholder(t *testing.T) {
	if got := Placeholder("credit_card_generic"); got != "[CREDIT CARD GENERIC REDACTED]" {
		t.Errorf("Placeholder = %q", got)
	}
}
