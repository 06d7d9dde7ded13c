package output

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffSegments computes a semantically cleaned character diff between the
// original and redacted text.
func diffSegments(before, after string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	return dmp.DiffCleanupSemantic(diffs)
}

// Diff writes a compact word-level preview of a redaction using wdiff-style
// markers: removed text in [-...-], inserted text in {+...+}. On a terminal
// the markers are additionally colored; plain output keeps just the markers.
func (r *Renderer) Diff(before, after string) {
	var b strings.Builder
	for _, d := range diffSegments(before, after) {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString(r.styles.bad.Render("[-" + d.Text + "-]"))
		case diffmatchpatch.DiffInsert:
			b.WriteString(r.styles.ok.Render("{+" + d.Text + "+}"))
		default:
			b.WriteString(d.Text)
		}
	}
	r.w.Write([]byte(b.String() + "\n"))
}
