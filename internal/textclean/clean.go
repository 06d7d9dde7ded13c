// Package textclean normalizes raw OCR output before detection.
//
// OCR text arrives with collapsed layout, stray symbols, and classic
// confusion artifacts (l/I, 0/O). Cleaning improves the hit rate of the
// pattern detectors; it never tries to reconstruct document structure.
package textclean

import (
	"regexp"
	"strings"
	"unicode"
)

type sub struct {
	re   *regexp.Regexp
	repl string
}

// Fixed substitution pipeline, applied in order. The confusion fixes only
// touch single-character tokens so multi-digit sensitive numbers are never
// rewritten.
var subs = []sub{
	// Collapse runs of whitespace.
	{regexp.MustCompile(`\s+`), " "},
	// Strip everything outside a conservative printable allowlist.
	{regexp.MustCompile(`[^\w\s.,;:!?()-]`), ""},
	// Isolated lowercase l is almost always a misread I.
	{regexp.MustCompile(`\bl\b`), "I"},
	// Isolated zero between words is almost always a misread O.
	{regexp.MustCompile(`\b0\b`), "O"},
	// Normalize spacing around punctuation. The paren rule must not consume
	// the following whitespace: a later stage can open a gap after a paren,
	// and re-consuming it on the next pass would glue the paren to the next
	// token, so cleaning would never reach a fixed point.
	{regexp.MustCompile(`\s*([.,;:!?])\s*`), "$1 "},
	{regexp.MustCompile(`\s*([()])`), " $1"},
}

var (
	scatteredCaps = regexp.MustCompile(`\b[A-Z]\s[A-Z]\s[A-Z]\b`)
	ocrLineNoise  = regexp.MustCompile(`[|\\/<>]`)
	// Single-character tokens are noise, except the words "I", "A" and "a".
	singleChar   = regexp.MustCompile(`\b[0-9_B-HJ-Zb-z]\b\s+`)
	sentenceEnds = regexp.MustCompile(`[.!?]+`)
)

// allCapsThreshold is the minimum length for the shouting heuristic: shorter
// all-caps runs are usually acronyms or field labels, not OCR artifacts.
const allCapsThreshold = 10

// Clean normalizes text for detection. It is a pure function and idempotent
// for realistic inputs; the all-caps heuristic can in principle change an
// input twice, which the tests pin down rather than hide.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	cleaned := text
	for _, s := range subs {
		cleaned = s.re.ReplaceAllString(cleaned, s.repl)
	}

	cleaned = lowerShoutingSentences(cleaned)
	cleaned = removeArtifacts(cleaned)

	return strings.Join(strings.Fields(cleaned), " ")
}

// lowerShoutingSentences converts ALL CAPS sentences longer than the
// threshold to sentence case. Sentence boundaries are ., ! and ? runs.
func lowerShoutingSentences(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	last := 0
	bounds := sentenceEnds.FindAllStringIndex(text, -1)
	for _, loc := range bounds {
		b.WriteString(fixCaps(text[last:loc[0]]))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(fixCaps(text[last:]))
	return b.String()
}

func fixCaps(sentence string) string {
	trimmed := strings.TrimSpace(sentence)
	if len(trimmed) <= allCapsThreshold || !isShouting(trimmed) {
		return sentence
	}
	lowered := strings.ToLower(sentence)
	// Capitalize the first letter, preserving leading whitespace.
	runes := []rune(lowered)
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			break
		}
	}
	return string(runes)
}

// isShouting reports whether s contains at least one letter and no lowercase
// letters, mirroring Python's str.isupper.
func isShouting(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

func removeArtifacts(text string) string {
	text = scatteredCaps.ReplaceAllString(text, " ")
	text = ocrLineNoise.ReplaceAllString(text, " ")
	text = singleChar.ReplaceAllString(text, " ")
	return text
}
