package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ColumnType is the semantic type inferred for a column.
type ColumnType string

const (
	TypeString ColumnType = "string"
	TypeNumber ColumnType = "number"
	TypeDate   ColumnType = "date"
)

// ParseColumnType converts a type name back to a ColumnType.
// Unknown names map to TypeString.
func ParseColumnType(s string) ColumnType {
	switch ColumnType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeNumber:
		return TypeNumber
	case TypeDate:
		return TypeDate
	default:
		return TypeString
	}
}

// CellKind identifies the native representation of a cell value.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
)

// Cell is a single spreadsheet value: empty, a string, or a number.
// The zero value is an empty cell.
type Cell struct {
	kind CellKind
	str  string
	num  float64
}

// EmptyCell returns an empty cell.
func EmptyCell() Cell { return Cell{} }

// StringCell returns a cell holding s verbatim.
func StringCell(s string) Cell { return Cell{kind: CellString, str: s} }

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell { return Cell{kind: CellNumber, num: f} }

// ParseCell classifies raw text the way decoders without native types
// need it: blank text is empty, finite numeric text is a number, anything
// else is a string.
func ParseCell(s string) Cell {
	if s == "" {
		return EmptyCell()
	}
	if f, ok := ParseNumber(s); ok {
		return NumberCell(f)
	}
	return StringCell(s)
}

// Kind reports the native representation.
func (c Cell) Kind() CellKind { return c.kind }

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool { return c.kind == CellEmpty }

// IsNumber reports whether the cell's native representation is numeric.
func (c Cell) IsNumber() bool { return c.kind == CellNumber }

// Number returns the numeric value and whether the cell is numeric.
func (c Cell) Number() (float64, bool) {
	return c.num, c.kind == CellNumber
}

// String returns the stringified cell. Numbers use the shortest
// representation that round-trips; empty cells yield "".
func (c Cell) String() string {
	switch c.kind {
	case CellString:
		return c.str
	case CellNumber:
		return formatNumber(c.num)
	default:
		return ""
	}
}

// Value returns the cell as a plain Go value: nil, string, or float64.
func (c Cell) Value() any {
	switch c.kind {
	case CellString:
		return c.str
	case CellNumber:
		return c.num
	default:
		return nil
	}
}

// MarshalJSON encodes numbers as JSON numbers and everything else as strings.
// Empty cells encode as "".
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.kind == CellNumber && !math.IsInf(c.num, 0) && !math.IsNaN(c.num) {
		return []byte(formatNumber(c.num)), nil
	}
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts a JSON number, string, or null.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case nil:
		*c = EmptyCell()
	case float64:
		*c = NumberCell(val)
	case string:
		if val == "" {
			*c = EmptyCell()
		} else {
			*c = StringCell(val)
		}
	case bool:
		*c = StringCell(strconv.FormatBool(val))
	default:
		*c = StringCell(string(data))
	}
	return nil
}

func formatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Row is one row of cells.
type Row []Cell

// Strings returns the stringified cells of the row.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.String()
	}
	return out
}

// StringsRow builds a Row of string cells; "" becomes an empty cell.
func StringsRow(values ...string) Row {
	row := make(Row, len(values))
	for i, v := range values {
		if v != "" {
			row[i] = StringCell(v)
		}
	}
	return row
}

// Sheet is a named RowMatrix within a workbook.
type Sheet struct {
	Name string    `json:"name"`
	Rows RowMatrix `json:"rows"`
}

// Clone returns a deep copy of the sheet.
func (s Sheet) Clone() Sheet {
	return Sheet{Name: s.Name, Rows: s.Rows.Clone()}
}

// Workbook is an ordered sequence of sheets in source order.
type Workbook []Sheet

// Clone returns a deep copy of every sheet.
func (wb Workbook) Clone() Workbook {
	if wb == nil {
		return nil
	}
	out := make(Workbook, len(wb))
	for i, s := range wb {
		out[i] = s.Clone()
	}
	return out
}

// SheetNames returns the sheet names in order.
func (wb Workbook) SheetNames() []string {
	names := make([]string, len(wb))
	for i, s := range wb {
		names[i] = s.Name
	}
	return names
}

// ColumnTypes is the per-column type vector of a sheet.
type ColumnTypes []ColumnType

// At returns the type at col, defaulting to TypeString when the vector
// does not cover the column.
func (ct ColumnTypes) At(col int) ColumnType {
	if col < 0 || col >= len(ct) {
		return TypeString
	}
	return ct[col]
}

// FilterMode selects how per-column filters are combined with a row.
type FilterMode string

const (
	// ModePerColumn requires each constrained column to contain its own filter.
	ModePerColumn FilterMode = "column"
	// ModeAnyColumn requires every cell to contain at least one filter.
	ModeAnyColumn FilterMode = "any"
)

// ParseFilterMode converts a mode name to a FilterMode, defaulting to
// ModePerColumn.
func ParseFilterMode(s string) FilterMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ModeAnyColumn), "global":
		return ModeAnyColumn
	default:
		return ModePerColumn
	}
}

// FilterState holds the active filters for a session.
type FilterState struct {
	Columns      []string   `json:"columns"`
	GlobalSearch string     `json:"globalSearch"`
	Mode         FilterMode `json:"mode"`
	Expression   string     `json:"expression,omitempty"`
}

// IsEmpty reports whether the state filters nothing.
func (f FilterState) IsEmpty() bool {
	return allEmpty(f.Columns) && strings.TrimSpace(f.GlobalSearch) == "" &&
		strings.TrimSpace(f.Expression) == ""
}

// EmptyFilterState returns a cleared state sized to width columns.
func EmptyFilterState(width int) FilterState {
	if width < 0 {
		width = 0
	}
	return FilterState{Columns: make([]string, width), Mode: ModePerColumn}
}

func allEmpty(values []string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}
