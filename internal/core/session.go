package core

// session.go holds the editing context for one loaded workbook.
//
// The original workbook is the single source of truth. The working dataset
// is never stored: it is recomputed from the original and the filter state
// whenever it is read, so the two cannot drift apart. Cell edits and row
// insertions write the original only; a filtered view reflects them on its
// next read.
//
// The column-type vector and filter state belong to the active sheet and are
// recomputed (not patched) whenever the active sheet changes.

import (
	"strings"
	"sync"
	"time"
)

// Session is one loaded workbook plus its active sheet, filters, and types.
// It is safe for concurrent use.
type Session struct {
	ID        string
	FileName  string
	CreatedAt time.Time

	mu         sync.RWMutex
	original   Workbook
	source     []byte
	active     int
	filters    FilterState
	types      ColumnTypes
	lastAccess time.Time
}

// NewSession creates a session over wb. The session takes ownership of wb
// and source; callers must not modify them afterwards.
func NewSession(id, fileName string, wb Workbook, source []byte) *Session {
	now := time.Now()
	s := &Session{
		ID:         id,
		FileName:   fileName,
		CreatedAt:  now,
		original:   wb,
		source:     source,
		lastAccess: now,
	}
	s.resetForSheet(0)
	return s
}

// resetForSheet makes sheet i active, clears filters, and re-derives types.
// Callers hold s.mu.
func (s *Session) resetForSheet(i int) {
	s.active = i
	if i < 0 || i >= len(s.original) {
		s.filters = EmptyFilterState(0)
		s.types = ColumnTypes{}
		return
	}
	rows := s.original[i].Rows
	s.filters = EmptyFilterState(rows.Width())
	s.types = InferColumnTypes(rows)
}

// touch records an access for idle expiry.
func (s *Session) touch() {
	s.mu.Lock()
	s.lastAccess = time.Now()
	s.mu.Unlock()
}

// LastAccess returns the time of the most recent store lookup.
func (s *Session) LastAccess() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccess
}

// SheetCount returns the number of sheets.
func (s *Session) SheetCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.original)
}

// ActiveSheet returns the active sheet index.
func (s *Session) ActiveSheet() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SelectSheet switches the active sheet, resetting filters and column types.
// It is a no-op on a session with no sheets.
func (s *Session) SelectSheet(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.original) == 0 {
		return nil
	}
	if i < 0 || i >= len(s.original) {
		return ErrSheetOutOfRange
	}
	s.resetForSheet(i)
	return nil
}

// ColumnTypes returns a copy of the active sheet's type vector.
func (s *Session) ColumnTypes() ColumnTypes {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(ColumnTypes{}, s.types...)
}

// Filters returns a copy of the filter state.
func (s *Session) Filters() FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyFilterState(s.filters)
}

// Original returns a deep copy of the original workbook.
func (s *Session) Original() Workbook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.original.Clone()
}

// SourceBytes returns the uploaded file as received.
func (s *Session) SourceBytes() []byte {
	return s.source
}

// Working returns the current working dataset: the original projected
// through the filter state.
func (s *Session) Working() ([]FilteredSheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Project(s.original, s.filters)
}

// ApplyFilters sets the column filters, global search, and mode. The filter
// vector is fitted to the active sheet's header width. Any expression filter
// stays in place.
func (s *Session) ApplyFilters(filters []string, globalSearch string, mode FilterMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.original) == 0 {
		return nil
	}
	if mode != ModeAnyColumn {
		mode = ModePerColumn
	}
	width := s.original[s.active].Rows.Width()
	cols := make([]string, width)
	copy(cols, filters)
	s.filters.Columns = cols
	s.filters.GlobalSearch = globalSearch
	s.filters.Mode = mode
	return nil
}

// ApplyExpression sets the expression filter; an empty expression removes it.
// An expression that does not compile is rejected and state is unchanged.
func (s *Session) ApplyExpression(expr string) error {
	expr = strings.TrimSpace(expr)
	if expr != "" {
		if _, err := CompileExpression(expr); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.original) == 0 {
		return nil
	}
	s.filters.Expression = expr
	return nil
}

// ClearFilters resets the filter state for the active sheet. The working
// dataset becomes a deep copy of the original.
func (s *Session) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	width := 0
	if s.active < len(s.original) {
		width = s.original[s.active].Rows.Width()
	}
	s.filters = EmptyFilterState(width)
}

// EditResult describes an accepted cell edit.
type EditResult struct {
	Sheet     string     `json:"sheet"`
	Row       int        `json:"row"`
	SourceRow int        `json:"sourceRow"`
	Column    int        `json:"column"`
	Type      ColumnType `json:"type"`
	OldValue  Cell       `json:"oldValue"`
	NewValue  Cell       `json:"newValue"`
}

// EditCell validates value against the column's type and writes it to the
// original workbook. row indexes the working (possibly filtered) view of the
// active sheet; row 0 is the header and cannot be edited. An invalid value
// returns *InvalidValueError and changes nothing. On a session with no sheets
// it is a no-op.
func (s *Session) EditCell(row, col int, value string) (EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.original) == 0 {
		return EditResult{}, nil
	}

	sheet := &s.original[s.active]
	if row == 0 {
		return EditResult{}, ErrHeaderEdit
	}
	if col < 0 || col >= sheet.Rows.Width() {
		return EditResult{}, ErrColumnOutOfRange
	}

	view, err := s.activeView()
	if err != nil {
		return EditResult{}, err
	}
	src := view.SourceRow(row)
	if src < 1 {
		return EditResult{}, ErrRowOutOfRange
	}

	t := s.types.At(col)
	cell, err := Coerce(value, t)
	if err != nil {
		if iv, ok := err.(*InvalidValueError); ok {
			iv.Row, iv.Column = row, col
		}
		return EditResult{}, err
	}

	old := sheet.Rows.Cell(src, col)
	if err := sheet.Rows.SetCell(src, col, cell); err != nil {
		return EditResult{}, err
	}
	return EditResult{
		Sheet:     sheet.Name,
		Row:       row,
		SourceRow: src,
		Column:    col,
		Type:      t,
		OldValue:  old,
		NewValue:  cell,
	}, nil
}

// activeView projects the active sheet through the filter state.
// Callers hold s.mu.
func (s *Session) activeView() (FilteredSheet, error) {
	views, err := Project(s.original[s.active:s.active+1], s.filters)
	if err != nil {
		return FilteredSheet{}, err
	}
	return views[0], nil
}

// AddRow appends an empty row to the active sheet of the original workbook
// and returns its row index there. It is a no-op (returning 0) when there is
// no sheet or the active sheet has no header.
func (s *Session) AddRow() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.original) == 0 {
		return 0, nil
	}
	rows := &s.original[s.active].Rows
	if rows.Len() == 0 {
		return 0, nil
	}
	if err := rows.AppendRow(make(Row, rows.Width())); err != nil {
		return 0, err
	}
	return rows.Len() - 1, nil
}

// Export returns the sheets an export reads: the original or the working
// dataset, limited to the active sheet or covering all of them.
func (s *Session) Export(source ExportSource, scope ExportScope) (Workbook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var wb Workbook
	if source == SourceOriginal {
		wb = s.original
	} else {
		views, err := Project(s.original, s.filters)
		if err != nil {
			return nil, err
		}
		wb = sheetsOf(views)
	}
	return MatrixShape(SelectSheets(wb, scope, s.active)), nil
}

// State is a read-only snapshot for rendering.
type State struct {
	ID           string        `json:"id"`
	FileName     string        `json:"fileName"`
	Sheets       []string      `json:"sheets"`
	ActiveSheet  int           `json:"activeSheet"`
	ColumnTypes  ColumnTypes   `json:"columnTypes"`
	Filters      FilterState   `json:"filters"`
	View         FilteredSheet `json:"view"`
	TotalRows    int           `json:"totalRows"`
	DuplicateKey []string      `json:"duplicateHeaders,omitempty"`
}

// Filtered reports whether the view hides any rows.
func (st State) Filtered() bool {
	return st.View.Rows.DataLen() != st.TotalRows
}

// Snapshot returns the current state with the active sheet's working view.
func (s *Session) Snapshot() (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{
		ID:          s.ID,
		FileName:    s.FileName,
		Sheets:      s.original.SheetNames(),
		ActiveSheet: s.active,
		ColumnTypes: append(ColumnTypes{}, s.types...),
		Filters:     copyFilterState(s.filters),
	}
	if len(s.original) == 0 {
		return st, nil
	}
	view, err := s.activeView()
	if err != nil {
		return State{}, err
	}
	st.View = view
	st.TotalRows = s.original[s.active].Rows.DataLen()
	st.DuplicateKey = DuplicateHeaders(view.Rows.HeaderLabels())
	return st, nil
}

func copyFilterState(f FilterState) FilterState {
	f.Columns = append([]string{}, f.Columns...)
	return f
}
