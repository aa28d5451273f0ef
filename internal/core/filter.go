package core

// filter.go evaluates column filters and a global search over a workbook.
//
// Filtering is a pure projection of the original workbook: the input is never
// modified, the header row of every sheet is always kept, and the same input
// always yields the same output. Each filtered sheet records which original
// rows it kept so edits made against the filtered view land on the right
// original row.
//
// Two column-filter semantics exist and are kept apart on purpose:
//
//   - ModePerColumn: every column with a non-empty filter must contain that
//     filter (case-insensitive). Columns with an empty filter are unconstrained.
//   - ModeAnyColumn: every cell of the row must contain at least one of the
//     non-empty filters. With no non-empty filters the mode imposes nothing.
//
// The global search matches when any cell contains the search term. A search
// of only whitespace is no search; otherwise the term is matched untrimmed.
// A column filter at an index a sheet does not have leaves that sheet
// unconstrained.

import "strings"

// FilteredSheet is a sheet after filtering plus its row projection.
// SourceRows[k] is the original row index of filtered data row k+1.
type FilteredSheet struct {
	Sheet
	SourceRows []int `json:"sourceRows"`
}

// SourceRow maps a row index of the filtered matrix back to the original.
// Row 0 (the header) maps to 0. It returns -1 when row is out of range.
func (fs FilteredSheet) SourceRow(row int) int {
	if row == 0 && fs.Rows.Len() > 0 {
		return 0
	}
	if row < 1 || row > len(fs.SourceRows) {
		return -1
	}
	return fs.SourceRows[row-1]
}

// ApplyFilters filters every sheet of original in per-column mode.
// When every filter and the trimmed search are empty the result is a deep
// copy of original: the baseline, not an empty result.
func ApplyFilters(original Workbook, perColumnFilters []string, globalSearch string) Workbook {
	return sheetsOf(filterWorkbook(original, newRowMatcher(perColumnFilters, globalSearch, ModePerColumn)))
}

// ApplyGlobalFilters filters every sheet of original in any-column mode.
// The empty-filter short circuit is the same as ApplyFilters.
func ApplyGlobalFilters(original Workbook, filters []string, globalSearch string) Workbook {
	return sheetsOf(filterWorkbook(original, newRowMatcher(filters, globalSearch, ModeAnyColumn)))
}

// Project applies a complete filter state, including an optional expression,
// and returns the filtered sheets with their row projections.
func Project(original Workbook, state FilterState) ([]FilteredSheet, error) {
	m := newRowMatcher(state.Columns, state.GlobalSearch, state.Mode)
	if strings.TrimSpace(state.Expression) != "" {
		expr, err := CompileExpression(state.Expression)
		if err != nil {
			return nil, err
		}
		m.expr = expr
	}
	return filterWorkbook(original, m), nil
}

// ClearFilters returns the reset filter state for a sheet of the given width
// together with a deep copy of original, which becomes the working view.
func ClearFilters(original Workbook, width int) (FilterState, Workbook) {
	return EmptyFilterState(width), original.Clone()
}

func sheetsOf(fs []FilteredSheet) Workbook {
	out := make(Workbook, len(fs))
	for i, s := range fs {
		out[i] = s.Sheet
	}
	return out
}

func filterWorkbook(original Workbook, m rowMatcher) []FilteredSheet {
	out := make([]FilteredSheet, len(original))
	for i, sheet := range original {
		out[i] = m.filterSheet(sheet)
	}
	return out
}

// rowMatcher holds the lowercased filter terms, compiled once per call.
type rowMatcher struct {
	mode    FilterMode
	columns []string // lowercased, positional; "" means unconstrained
	active  []string // lowercased non-empty filters, for ModeAnyColumn
	search  string   // lowercased, untrimmed; "" when only whitespace
	expr    *ExpressionFilter
}

func newRowMatcher(filters []string, globalSearch string, mode FilterMode) rowMatcher {
	m := rowMatcher{
		mode:    mode,
		columns: make([]string, len(filters)),
	}
	if strings.TrimSpace(globalSearch) != "" {
		m.search = strings.ToLower(globalSearch)
	}
	for i, f := range filters {
		lf := strings.ToLower(f)
		m.columns[i] = lf
		if lf != "" {
			m.active = append(m.active, lf)
		}
	}
	return m
}

// noop reports whether the matcher keeps every row.
func (m rowMatcher) noop() bool {
	return len(m.active) == 0 && m.search == "" && m.expr == nil
}

func (m rowMatcher) filterSheet(sheet Sheet) FilteredSheet {
	data := sheet.Rows.DataRows()
	kept := make([]int, 0, len(data))
	if m.noop() {
		for i := range data {
			kept = append(kept, i+1)
		}
		return FilteredSheet{Sheet: sheet.Clone(), SourceRows: kept}
	}

	var header []string
	if m.expr != nil {
		header = sheet.Rows.HeaderLabels()
	}
	for i, row := range data {
		if m.match(row, header) {
			kept = append(kept, i+1)
		}
	}
	return FilteredSheet{
		Sheet:      Sheet{Name: sheet.Name, Rows: sheet.Rows.Select(kept)},
		SourceRows: kept,
	}
}

func (m rowMatcher) match(row Row, header []string) bool {
	if !m.matchesGlobalSearch(row) {
		return false
	}
	if m.expr != nil && !m.expr.Match(header, row) {
		return false
	}
	if m.mode == ModeAnyColumn {
		return m.matchesAnyColumn(row)
	}
	return m.matchesPerColumn(row)
}

func (m rowMatcher) matchesGlobalSearch(row Row) bool {
	if m.search == "" {
		return true
	}
	for _, cell := range row {
		if cell.IsEmpty() {
			continue
		}
		if strings.Contains(strings.ToLower(cell.String()), m.search) {
			return true
		}
	}
	return false
}

func (m rowMatcher) matchesPerColumn(row Row) bool {
	for col, f := range m.columns {
		if f == "" {
			continue
		}
		if col >= len(row) {
			// The vector is shared by every sheet; narrower sheets lack the column.
			continue
		}
		if row[col].IsEmpty() {
			return false
		}
		if !strings.Contains(strings.ToLower(row[col].String()), f) {
			return false
		}
	}
	return true
}

func (m rowMatcher) matchesAnyColumn(row Row) bool {
	if len(m.active) == 0 {
		return true
	}
	for _, cell := range row {
		if cell.IsEmpty() {
			return false
		}
		text := strings.ToLower(cell.String())
		found := false
		for _, f := range m.active {
			if strings.Contains(text, f) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
