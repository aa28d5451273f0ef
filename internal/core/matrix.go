package core

// matrix.go defines RowMatrix, the header-first tabular container.
//
// Row 0 is the header; rows 1..n are data rows. Every row has exactly the
// header's width: short rows are padded with empty cells on construction and
// on append, and rows wider than the header are rejected.

import (
	"encoding/json"
	"fmt"
)

// RowMatrix is an ordered sequence of rows whose first row is the header.
// The zero value is an empty matrix with no header.
type RowMatrix struct {
	width int
	rows  []Row
}

// NewRowMatrix builds a matrix from rows, where rows[0] is the header.
// Short rows are padded; a row wider than the header returns ErrRowLength.
func NewRowMatrix(rows []Row) (RowMatrix, error) {
	if len(rows) == 0 {
		return RowMatrix{}, nil
	}
	m := RowMatrix{width: len(rows[0]), rows: make([]Row, 0, len(rows))}
	for i, r := range rows {
		padded, err := m.fit(r)
		if err != nil {
			return RowMatrix{}, fmt.Errorf("row %d: %w", i, err)
		}
		m.rows = append(m.rows, padded)
	}
	return m, nil
}

// NewRowMatrixTrimmed is like NewRowMatrix but widens the header to the widest
// row instead of rejecting it. Decoders use it because source files often
// carry data past the last labelled column.
func NewRowMatrixTrimmed(rows []Row) RowMatrix {
	if len(rows) == 0 {
		return RowMatrix{}
	}
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	m := RowMatrix{width: width, rows: make([]Row, 0, len(rows))}
	for _, r := range rows {
		padded, _ := m.fit(r)
		m.rows = append(m.rows, padded)
	}
	return m
}

// MustRowMatrix is NewRowMatrix for literals in tests and examples.
// It panics on error.
func MustRowMatrix(rows ...Row) RowMatrix {
	m, err := NewRowMatrix(rows)
	if err != nil {
		panic(err)
	}
	return m
}

// fit pads r to the matrix width, copying it.
func (m RowMatrix) fit(r Row) (Row, error) {
	if len(r) > m.width {
		return nil, fmt.Errorf("%w: %d cells, header has %d", ErrRowLength, len(r), m.width)
	}
	out := make(Row, m.width)
	copy(out, r)
	return out, nil
}

// Width returns the header length.
func (m RowMatrix) Width() int { return m.width }

// Len returns the number of rows including the header.
func (m RowMatrix) Len() int { return len(m.rows) }

// DataLen returns the number of data rows.
func (m RowMatrix) DataLen() int {
	if len(m.rows) == 0 {
		return 0
	}
	return len(m.rows) - 1
}

// Header returns the header row, or nil for an empty matrix.
func (m RowMatrix) Header() Row {
	if len(m.rows) == 0 {
		return nil
	}
	return m.rows[0]
}

// HeaderLabels returns the stringified header labels.
func (m RowMatrix) HeaderLabels() []string {
	return m.Header().Strings()
}

// Row returns row i (0 is the header).
func (m RowMatrix) Row(i int) Row {
	return m.rows[i]
}

// Rows returns the underlying rows. Callers must not modify them.
func (m RowMatrix) Rows() []Row { return m.rows }

// DataRows returns rows 1..n. Callers must not modify them.
func (m RowMatrix) DataRows() []Row {
	if len(m.rows) <= 1 {
		return nil
	}
	return m.rows[1:]
}

// Cell returns the cell at (row, col), or an empty cell when out of range.
func (m RowMatrix) Cell(row, col int) Cell {
	if row < 0 || row >= len(m.rows) || col < 0 || col >= m.width {
		return EmptyCell()
	}
	return m.rows[row][col]
}

// AppendRow adds r after the last row, padding it to the header width.
func (m *RowMatrix) AppendRow(r Row) error {
	if len(m.rows) == 0 {
		m.width = len(r)
	}
	padded, err := m.fit(r)
	if err != nil {
		return err
	}
	m.rows = append(m.rows, padded)
	return nil
}

// SetCell replaces the cell at (row, col).
func (m *RowMatrix) SetCell(row, col int, c Cell) error {
	if row < 0 || row >= len(m.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	if col < 0 || col >= m.width {
		return fmt.Errorf("%w: %d", ErrColumnOutOfRange, col)
	}
	m.rows[row][col] = c
	return nil
}

// Clone returns a deep copy.
func (m RowMatrix) Clone() RowMatrix {
	out := RowMatrix{width: m.width}
	if m.rows == nil {
		return out
	}
	out.rows = make([]Row, len(m.rows))
	for i, r := range m.rows {
		out.rows[i] = append(Row(nil), r...)
		if out.rows[i] == nil {
			out.rows[i] = Row{}
		}
	}
	return out
}

// Select returns a matrix holding the header plus the data rows at the given
// source indexes, in the given order. Rows are copied.
func (m RowMatrix) Select(indexes []int) RowMatrix {
	out := RowMatrix{width: m.width}
	if len(m.rows) == 0 {
		return out
	}
	out.rows = make([]Row, 0, len(indexes)+1)
	out.rows = append(out.rows, append(Row{}, m.rows[0]...))
	for _, i := range indexes {
		out.rows = append(out.rows, append(Row{}, m.rows[i]...))
	}
	return out
}

// Strings returns the matrix as stringified cells.
func (m RowMatrix) Strings() [][]string {
	out := make([][]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.Strings()
	}
	return out
}

// MarshalJSON encodes the matrix as an array of row arrays.
func (m RowMatrix) MarshalJSON() ([]byte, error) {
	if m.rows == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.rows)
}

// UnmarshalJSON decodes an array of row arrays, padding short rows.
func (m *RowMatrix) UnmarshalJSON(data []byte) error {
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	decoded, err := NewRowMatrix(rows)
	if err != nil {
		return err
	}
	*m = decoded
	return nil
}
