package codec

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/SheetEdit/internal/core"
)

// maxSheetName is the longest worksheet name Excel accepts.
const maxSheetName = 31

// DecodeXLSX reads every worksheet of an OOXML workbook in workbook order.
// Row 0 of each sheet is its header. Numeric cells become number cells
// unless their display format renders them as dates; all other cells keep
// their displayed text.
func DecodeXLSX(_ string, data []byte) (core.Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names := f.GetSheetList()
	wb := make(core.Workbook, 0, len(names))
	for _, name := range names {
		m, err := readSheet(f, name)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		wb = append(wb, core.Sheet{Name: name, Rows: m})
	}
	return wb, nil
}

func readSheet(f *excelize.File, name string) (core.RowMatrix, error) {
	display, err := f.GetRows(name)
	if err != nil {
		return core.RowMatrix{}, err
	}
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return core.RowMatrix{}, err
	}

	rows := make([]core.Row, len(display))
	for r, cells := range display {
		row := make(core.Row, len(cells))
		for c, text := range cells {
			if text == "" {
				continue
			}
			rawText := text
			if r < len(raw) && c < len(raw[r]) {
				rawText = raw[r][c]
			}
			row[c] = xlsxCell(f, name, r, c, text, rawText)
		}
		rows[r] = row
	}
	return core.NewRowMatrixTrimmed(rows), nil
}

// xlsxCell converts one cell. Only cells stored as numbers are candidates
// for number cells; a numeric cell formatted as a date keeps its text.
func xlsxCell(f *excelize.File, sheet string, r, c int, text, rawText string) core.Cell {
	ref, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return core.StringCell(text)
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return core.StringCell(text)
	}
	if typ != excelize.CellTypeNumber && typ != excelize.CellTypeUnset {
		return core.StringCell(text)
	}

	if n, ok := core.ParseNumber(text); ok {
		return core.NumberCell(n)
	}
	if core.IsDate(text) {
		return core.StringCell(text)
	}
	if n, ok := core.ParseNumber(rawText); ok {
		return core.NumberCell(n)
	}
	return core.StringCell(text)
}

// WriteXLSX writes one worksheet per sheet, in order. Sheet names are made
// valid and unique; a workbook with no sheets yields a single empty sheet.
func WriteXLSX(w io.Writer, sheets core.Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	used := make(map[string]bool, len(sheets))
	for i, s := range sheets {
		name := uniqueSheetName(s.Name, i, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("rename sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %q: %w", name, err)
		}

		for r, row := range s.Rows.Rows() {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := make([]any, len(row))
			for c, v := range row {
				values[c] = v.Value()
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return fmt.Errorf("sheet %q row %d: %w", name, r, err)
			}
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// uniqueSheetName returns a valid worksheet name for name, distinct
// (case-insensitively) from every name in used, and records it.
func uniqueSheetName(name string, index int, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	base = strings.Trim(base, "'")
	if base == "" {
		base = "Sheet" + strconv.Itoa(index+1)
	}
	base = truncateRunes(base, maxSheetName)

	candidate := base
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := " (" + strconv.Itoa(n) + ")"
		candidate = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
