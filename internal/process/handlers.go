package process

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/Dicklesworthstone/cleanse/internal/detect"
	"github.com/Dicklesworthstone/cleanse/internal/sheet"
	"github.com/Dicklesworthstone/cleanse/internal/textclean"
)

// valuePlaceholder replaces a whole JSON string leaf or CSV cell rather
// than a substring: partial redaction inside structured values invites
// format-aware reconstruction of the remainder.
const valuePlaceholder = "[REDACTED]"

func (p *Processor) processText(path string) (*Result, error) {
	return p.processFlat(path, KindText)
}

// processMarkup handles xml/yaml/ini/conf with an in-place substring sweep
// over the raw bytes. Only matched spans are replaced, so the surrounding
// structure stays parseable.
func (p *Processor) processMarkup(path string) (*Result, error) {
	return p.processFlat(path, KindMarkup)
}

func (p *Processor) processFlat(path string, kind Kind) (*Result, error) {
	res := &Result{File: path, FileType: kind}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	text := string(data)
	// Plain text gets the same OCR-grade normalization as image transcripts;
	// markup keeps its raw bytes so the surrounding structure survives the
	// in-place sweep.
	if kind == KindText {
		text = textclean.Clean(text)
	}
	res.DocumentType = ClassifyDocument(text)

	spans := p.detector.Detect(text)
	res.SensitiveItems = itemsFromSpans(spans, "")

	out := p.outPath(path, "_redacted", "")
	if err := os.WriteFile(out, []byte(detect.RedactText(text, spans)), 0o644); err != nil {
		return nil, &PersistenceError{Path: out, Err: err}
	}
	res.OutputFiles = append(res.OutputFiles, out)
	res.RedactionApplied = len(spans) > 0
	p.log.Debug("flat file scanned", "file", path, "spans", len(spans))
	return res, nil
}

func (p *Processor) processJSON(path string) (*Result, error) {
	res := &Result{File: path, FileType: KindJSON, DocumentType: "unknown"}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	redacted := false
	doc = p.redactJSONValue(doc, "", res, &redacted)

	out := p.outPath(path, "_redacted", "")
	var buf []byte
	if p.opts.CompactJSON {
		buf, err = json.Marshal(doc)
	} else {
		buf, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return nil, &PersistenceError{Path: out, Err: err}
	}
	if err := os.WriteFile(out, buf, 0o644); err != nil {
		return nil, &PersistenceError{Path: out, Err: err}
	}
	res.OutputFiles = append(res.OutputFiles, out)
	res.RedactionApplied = redacted
	return res, nil
}

// redactJSONValue walks the decoded document. String leaves with any
// detection are replaced wholesale; all other leaf types pass through
// untouched. jsonPath uses key[idx].sub notation for findings.
func (p *Processor) redactJSONValue(v any, jsonPath string, res *Result, redacted *bool) any {
	switch node := v.(type) {
	case map[string]any:
		for key, child := range node {
			node[key] = p.redactJSONValue(child, joinJSONPath(jsonPath, key), res, redacted)
		}
		return node
	case []any:
		for i, child := range node {
			node[i] = p.redactJSONValue(child, jsonPath+"["+strconv.Itoa(i)+"]", res, redacted)
		}
		return node
	case string:
		spans := p.detector.Detect(node)
		if len(spans) == 0 {
			return node
		}
		res.SensitiveItems = append(res.SensitiveItems, itemsFromSpans(spans, jsonPath)...)
		*redacted = true
		return valuePlaceholder
	default:
		return node
	}
}

func joinJSONPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// processCSV scans every field except the header row. A matching cell is
// replaced wholesale, like a JSON leaf; the row and column structure
// survives.
func (p *Processor) processCSV(path string) (*Result, error) {
	res := &Result{File: path, FileType: KindCSV, DocumentType: "unknown"}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	redacted := false
	for ri := range rows {
		if ri == 0 {
			// Header row: column names are labels, not data.
			continue
		}
		for ci, field := range rows[ri] {
			spans := p.detector.Detect(field)
			if len(spans) == 0 {
				continue
			}
			loc := fmt.Sprintf("row %d col %d", ri+1, ci+1)
			res.SensitiveItems = append(res.SensitiveItems, itemsFromSpans(spans, loc)...)
			rows[ri][ci] = valuePlaceholder
			redacted = true
		}
	}

	out := p.outPath(path, "_redacted", "")
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, &PersistenceError{Path: out, Err: err}
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return nil, &PersistenceError{Path: out, Err: err}
	}
	res.OutputFiles = append(res.OutputFiles, out)
	res.RedactionApplied = redacted
	return res, nil
}

func (p *Processor) processSpreadsheet(path string) (*Result, error) {
	res := &Result{File: path, FileType: KindSpreadsheet, DocumentType: "unknown"}

	out := p.outPath(path, "_redacted", "")
	matches, err := sheet.Redact(path, out, p.detector.Detect)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	for _, m := range matches {
		loc := m.Sheet + "!" + m.Cell
		res.SensitiveItems = append(res.SensitiveItems, itemsFromSpans(m.Spans, loc)...)
	}
	res.OutputFiles = append(res.OutputFiles, out)
	res.RedactionApplied = len(matches) > 0
	return res, nil
}
