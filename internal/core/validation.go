package core

// validation.go gates cell edits against a column's inferred type.
//
// Validation is a gate, not a rewrite: an invalid value is rejected and
// nothing changes. A valid value is normalized only in representation
// (numeric text in a number column is stored as a number cell); its text is
// never truncated or reformatted.

// IsValid reports whether value is acceptable for a column of type t.
//
//   - number: the trimmed value parses as a finite number; empty is invalid.
//   - date: the value parses under the canonical date rule; empty is invalid.
//   - string: always valid.
func IsValid(value string, t ColumnType) bool {
	switch t {
	case TypeNumber:
		_, ok := ParseNumber(value)
		return ok
	case TypeDate:
		return IsDate(value)
	default:
		return true
	}
}

// Coerce validates value for type t and returns the cell to store.
// It returns an *InvalidValueError (with Row and Column unset) on rejection.
func Coerce(value string, t ColumnType) (Cell, error) {
	if !IsValid(value, t) {
		return Cell{}, &InvalidValueError{Row: -1, Column: -1, Type: t, Value: value}
	}
	switch t {
	case TypeNumber:
		f, _ := ParseNumber(value)
		return NumberCell(f), nil
	default:
		if value == "" {
			return EmptyCell(), nil
		}
		return StringCell(value), nil
	}
}

// ValidationError describes one invalid cell found by ValidateMatrix.
type ValidationError struct {
	Row     int        `json:"row"`
	Column  int        `json:"column"`
	Header  string     `json:"header"`
	Value   string     `json:"value"`
	Type    ColumnType `json:"type"`
	Message string     `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Header != "" {
		return e.Header + ": " + e.Message
	}
	return e.Message
}

// ValidateMatrix checks every non-empty data cell of m against types and
// returns the failures, at most limit of them (limit <= 0 means no limit).
// Empty cells are skipped: they are padding, not user input.
func ValidateMatrix(m RowMatrix, types ColumnTypes, limit int) []ValidationError {
	var errs []ValidationError
	header := m.HeaderLabels()
	for i, row := range m.DataRows() {
		for col, cell := range row {
			if cell.IsEmpty() || cell.IsNumber() {
				continue
			}
			t := types.At(col)
			if IsValid(cell.String(), t) {
				continue
			}
			label := ""
			if col < len(header) {
				label = header[col]
			}
			errs = append(errs, ValidationError{
				Row:     i + 1,
				Column:  col,
				Header:  label,
				Value:   cell.String(),
				Type:    t,
				Message: "expected a value of type " + string(t),
			})
			if limit > 0 && len(errs) >= limit {
				return errs
			}
		}
	}
	return errs
}
