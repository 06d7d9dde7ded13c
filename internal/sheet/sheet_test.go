package sheet

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Dicklesworthstone/cleanse/internal/detect"
)

func containsAt(needle string) func(string) []detect.Span {
	return func(text string) []detect.Span {
		if !strings.Contains(text, needle) {
			return nil
		}
		return []detect.Span{{Type: "email", Text: needle, Confidence: 1.0}}
	}
}

func writeWorkbook(t *testing.T, cells map[string]any) string {
	t.Helper()
	f := excelize.NewFile()
	for cell, v := range cells {
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "in.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRedactStringCells(t *testing.T) {
	in := writeWorkbook(t, map[string]any{
		"A1": "contact",
		"B1": "jane@example.com",
		"B2": "nothing here",
	})
	out := filepath.Join(t.TempDir(), "out.xlsx")

	matches, err := Redact(in, out, containsAt("jane@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Cell != "B1" || matches[0].Sheet != "Sheet1" {
		t.Fatalf("matches = %+v", matches)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if v, _ := f.GetCellValue("Sheet1", "B1"); v != Placeholder {
		t.Errorf("B1 = %q, want placeholder", v)
	}
	if v, _ := f.GetCellValue("Sheet1", "B2"); v != "nothing here" {
		t.Errorf("B2 = %q, clean cell was modified", v)
	}
}

func TestRedactSkipsNumericCells(t *testing.T) {
	// The detector claims everything matches; numeric cells must still
	// survive because only string cells are scanned.
	in := writeWorkbook(t, map[string]any{
		"A1": "text value",
		"A2": 4111111111111111,
	})
	out := filepath.Join(t.TempDir(), "out.xlsx")

	matchAll := func(string) []detect.Span {
		return []detect.Span{{Type: "any", Confidence: 1.0}}
	}
	matches, err := Redact(in, out, matchAll)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range matches {
		if m.Cell == "A2" {
			t.Error("numeric cell was scanned")
		}
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Sheet1", "A2"); v == Placeholder {
		t.Error("numeric cell was redacted")
	}
}

func TestRedactInputUntouched(t *testing.T) {
	in := writeWorkbook(t, map[string]any{"A1": "jane@example.com"})
	out := filepath.Join(t.TempDir(), "out.xlsx")

	if _, err := Redact(in, out, containsAt("jane@example.com")); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(in)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Sheet1", "A1"); v != "jane@example.com" {
		t.Errorf("input workbook modified: A1 = %q", v)
	}
}
