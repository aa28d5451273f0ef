package core

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a session id is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when the store is at capacity.
	ErrTooManySessions = errors.New("too many open workbooks")

	// ErrNoWorkbook is returned by operations that need a loaded workbook.
	ErrNoWorkbook = errors.New("no workbook loaded")

	// ErrSheetOutOfRange is returned for an unknown sheet index.
	ErrSheetOutOfRange = errors.New("sheet index out of range")

	// ErrRowOutOfRange is returned for an unknown row index.
	ErrRowOutOfRange = errors.New("row index out of range")

	// ErrColumnOutOfRange is returned for an unknown column index.
	ErrColumnOutOfRange = errors.New("column index out of range")

	// ErrHeaderEdit is returned when an edit targets the header row.
	ErrHeaderEdit = errors.New("header row cannot be edited")

	// ErrRowLength is returned when a row is wider than its header.
	ErrRowLength = errors.New("row wider than header")

	// ErrEmptyFile is returned when an uploaded file has no content.
	ErrEmptyFile = errors.New("empty file")

	// ErrUnsupportedFormat is returned for unknown file or export formats.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrInvalidExpression is returned when a filter expression does not compile.
	ErrInvalidExpression = errors.New("invalid filter expression")
)

// InvalidValueError rejects a cell edit whose value does not fit the
// column's inferred type. No state is modified when it is returned.
type InvalidValueError struct {
	Row    int
	Column int
	Type   ColumnType
	Value  string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q: expected a value of type %s", e.Value, e.Type)
}
