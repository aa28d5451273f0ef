package core

// export.go shapes sheets into the structures the external encoders consume.
//
// Three shapes exist:
//
//   - Matrix: header row then body rows, unchanged (spreadsheet writer).
//   - Table: {head, body} as strings, one per sheet (PDF table renderer).
//   - Records: one header-keyed record per body row (JSON serializer).
//
// Shaping never sorts, deduplicates, or reorders sheets or rows, and never
// performs I/O. Records keep header order; when two header labels collide the
// later column's value overwrites the earlier one under the first key's
// position. Callers wanting every column in JSON must use unique headers.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ExportSource selects which dataset an export reads.
type ExportSource string

const (
	SourceFiltered ExportSource = "filtered"
	SourceOriginal ExportSource = "original"
)

// ParseExportSource converts a name to an ExportSource, defaulting to filtered.
func ParseExportSource(s string) ExportSource {
	if strings.EqualFold(strings.TrimSpace(s), string(SourceOriginal)) {
		return SourceOriginal
	}
	return SourceFiltered
}

// ExportScope selects the current sheet or every sheet.
type ExportScope string

const (
	ScopeCurrent ExportScope = "current"
	ScopeAll     ExportScope = "all"
)

// ParseExportScope converts a name to an ExportScope, defaulting to current.
func ParseExportScope(s string) ExportScope {
	if strings.EqualFold(strings.TrimSpace(s), string(ScopeAll)) {
		return ScopeAll
	}
	return ScopeCurrent
}

// SelectSheets returns the sheets an export of the given scope covers.
// ScopeCurrent yields only wb[active] (nothing when active is out of range);
// ScopeAll yields every sheet in order. The input is not modified.
func SelectSheets(wb Workbook, scope ExportScope, active int) Workbook {
	if scope == ScopeAll {
		return wb
	}
	if active < 0 || active >= len(wb) {
		return Workbook{}
	}
	return wb[active : active+1]
}

// MatrixShape returns deep copies of the sheets, header first, in order.
func MatrixShape(sheets Workbook) Workbook {
	return sheets.Clone()
}

// TableShape is one sheet split into a head row and body rows.
type TableShape struct {
	SheetName string     `json:"sheetName"`
	Head      []string   `json:"head"`
	Body      [][]string `json:"body"`
}

// TableShapes returns one TableShape per sheet.
func TableShapes(sheets Workbook) []TableShape {
	out := make([]TableShape, len(sheets))
	for i, s := range sheets {
		body := make([][]string, 0, s.Rows.DataLen())
		for _, row := range s.Rows.DataRows() {
			body = append(body, row.Strings())
		}
		out[i] = TableShape{
			SheetName: s.Name,
			Head:      s.Rows.HeaderLabels(),
			Body:      body,
		}
	}
	return out
}

// Record is an ordered mapping from header label to cell.
type Record struct {
	keys   []string
	values map[string]Cell
}

// NewRecord builds a record from a header and a row. Labels are stringified
// header cells; duplicate labels keep their first position and the last value.
func NewRecord(header []string, row Row) Record {
	r := Record{keys: make([]string, 0, len(header)), values: make(map[string]Cell, len(header))}
	for i, label := range header {
		var c Cell
		if i < len(row) {
			c = row[i]
		}
		r.Set(label, c)
	}
	return r
}

// Set assigns key. New keys are appended; existing keys are overwritten in place.
func (r *Record) Set(key string, c Cell) {
	if r.values == nil {
		r.values = make(map[string]Cell)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = c
}

// Get returns the cell stored under key.
func (r Record) Get(key string) (Cell, bool) {
	c, ok := r.values[key]
	return c, ok
}

// Keys returns the keys in insertion order.
func (r Record) Keys() []string { return r.keys }

// Len returns the number of keys.
func (r Record) Len() int { return len(r.keys) }

// Map returns the record as a plain map of strings.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.keys))
	for _, k := range r.keys {
		out[k] = r.values[k].String()
	}
	return out
}

// MarshalJSON writes the keys in insertion order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("record key %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ToRecords drops the header row and returns one record per body row.
func ToRecords(m RowMatrix) []Record {
	header := m.HeaderLabels()
	out := make([]Record, 0, m.DataLen())
	for _, row := range m.DataRows() {
		out = append(out, NewRecord(header, row))
	}
	return out
}

// SheetRecords is the record shape of one sheet, tagged with its name.
type SheetRecords struct {
	SheetName string   `json:"sheetName"`
	Data      []Record `json:"data"`
}

// RecordShape returns one SheetRecords per sheet, in order.
func RecordShape(sheets Workbook) []SheetRecords {
	out := make([]SheetRecords, len(sheets))
	for i, s := range sheets {
		out[i] = SheetRecords{SheetName: s.Name, Data: ToRecords(s.Rows)}
	}
	return out
}

// DuplicateHeaders returns labels that appear more than once in header,
// in order of their second occurrence. Record shaping collapses them.
func DuplicateHeaders(header []string) []string {
	seen := make(map[string]int, len(header))
	var dups []string
	for _, h := range header {
		seen[h]++
		if seen[h] == 2 {
			dups = append(dups, h)
		}
	}
	return dups
}
