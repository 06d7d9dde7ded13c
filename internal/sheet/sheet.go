// Package sheet redacts xlsx workbooks cell by cell.
//
// Known gap, kept deliberately: only string cells are scanned. A sensitive
// number stored as an actual numeric type (or behind a formula) is never
// examined, because rewriting typed cells would silently corrupt workbooks
// whose intent is ambiguous.
package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Dicklesworthstone/cleanse/internal/detect"
)

// Placeholder replaces the full value of any matching cell.
const Placeholder = "[REDACTED]"

// flagFillColor highlights redacted cells so reviewers can spot them.
const flagFillColor = "FF0000"

// CellMatch records the detections inside one redacted cell.
type CellMatch struct {
	Sheet string        `json:"sheet"`
	Cell  string        `json:"cell"`
	Spans []detect.Span `json:"spans"`
}

// Redact scans every string cell of every sheet, replaces matching cells
// with the placeholder, flags them with a fill, and writes the workbook to
// outPath. The input file is never modified.
func Redact(path, outPath string, detectFn func(string) []detect.Span) ([]CellMatch, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("sheet: opening %s: %w", path, err)
	}
	defer f.Close()

	flagStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{flagFillColor}},
	})
	if err != nil {
		return nil, fmt.Errorf("sheet: creating flag style: %w", err)
	}

	var matches []CellMatch
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("sheet: reading %s!%s: %w", path, sheetName, err)
		}
		for ri, row := range rows {
			for ci, value := range row {
				if value == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(ci+1, ri+1)
				if err != nil {
					continue
				}
				if !isStringCell(f, sheetName, cell) {
					continue
				}
				spans := detectFn(value)
				if len(spans) == 0 {
					continue
				}
				if err := f.SetCellValue(sheetName, cell, Placeholder); err != nil {
					// One unwritable cell does not fail the sheet.
					continue
				}
				_ = f.SetCellStyle(sheetName, cell, cell, flagStyle)
				matches = append(matches, CellMatch{Sheet: sheetName, Cell: cell, Spans: spans})
			}
		}
	}

	if err := f.SaveAs(outPath); err != nil {
		return nil, fmt.Errorf("sheet: saving %s: %w", outPath, err)
	}
	return matches, nil
}

// isStringCell reports whether the cell holds literal string content.
// Numeric, boolean, date and formula cells are excluded from scanning.
func isStringCell(f *excelize.File, sheetName, cell string) bool {
	if formula, err := f.GetCellFormula(sheetName, cell); err == nil && formula != "" {
		return false
	}
	ct, err := f.GetCellType(sheetName, cell)
	if err != nil {
		return false
	}
	switch ct {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return true
	}
	return false
}
