package core

import (
	"errors"
	"reflect"
	"testing"
)

func newTestSession() *Session {
	wb := Workbook{
		{Name: "Orders", Rows: MustRowMatrix(
			StringsRow("Item", "Qty", "Due"),
			Row{StringCell("apple"), NumberCell(3), StringCell("2024-01-05")},
			Row{StringCell("pear"), NumberCell(5), StringCell("2024-02-01")},
			Row{StringCell("apricot"), NumberCell(7), StringCell("2024-03-09")},
		)},
		{Name: "Notes", Rows: MustRowMatrix(
			StringsRow("Text"),
			StringsRow("hello"),
		)},
	}
	return NewSession("s1", "orders.xlsx", wb, []byte("raw"))
}

func TestNewSession_InfersActiveSheet(t *testing.T) {
	s := newTestSession()
	want := ColumnTypes{TypeString, TypeNumber, TypeDate}
	if got := s.ColumnTypes(); !reflect.DeepEqual(got, want) {
		t.Errorf("ColumnTypes() = %v, want %v", got, want)
	}
	if f := s.Filters(); len(f.Columns) != 3 || !f.IsEmpty() {
		t.Errorf("Filters() = %+v, want three empty filters", f)
	}
}

func TestSession_SelectSheet(t *testing.T) {
	s := newTestSession()
	if err := s.ApplyFilters([]string{"ap"}, "", ModePerColumn); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectSheet(1); err != nil {
		t.Fatalf("SelectSheet(1) error = %v", err)
	}
	if s.ActiveSheet() != 1 {
		t.Errorf("ActiveSheet() = %d, want 1", s.ActiveSheet())
	}
	if got := s.ColumnTypes(); !reflect.DeepEqual(got, ColumnTypes{TypeString}) {
		t.Errorf("ColumnTypes() = %v, want [string]", got)
	}
	if f := s.Filters(); len(f.Columns) != 1 || !f.IsEmpty() {
		t.Errorf("Filters() = %+v, want reset for new sheet", f)
	}
	if err := s.SelectSheet(9); !errors.Is(err, ErrSheetOutOfRange) {
		t.Errorf("SelectSheet(9) error = %v, want ErrSheetOutOfRange", err)
	}
}

func TestSession_EditCell(t *testing.T) {
	s := newTestSession()

	res, err := s.EditCell(1, 1, "10")
	if err != nil {
		t.Fatalf("EditCell() error = %v", err)
	}
	if res.OldValue.String() != "3" || res.NewValue.String() != "10" || res.Type != TypeNumber {
		t.Errorf("EditCell() = %+v", res)
	}
	if got := s.Original()[0].Rows.Cell(1, 1); !got.IsNumber() || got.String() != "10" {
		t.Errorf("original cell = %v, want number 10", got.Value())
	}
}

func TestSession_EditCellRejectsInvalid(t *testing.T) {
	s := newTestSession()
	before := s.Original()

	_, err := s.EditCell(1, 1, "abc")
	var iv *InvalidValueError
	if !errors.As(err, &iv) {
		t.Fatalf("EditCell(abc) error = %v, want *InvalidValueError", err)
	}
	if iv.Row != 1 || iv.Column != 1 || iv.Type != TypeNumber {
		t.Errorf("InvalidValueError = %+v", iv)
	}
	if _, err := s.EditCell(2, 2, "someday"); err == nil {
		t.Error("EditCell(date column, text) error = nil, want rejection")
	}
	if !reflect.DeepEqual(s.Original(), before) {
		t.Error("rejected edit modified the workbook")
	}
}

func TestSession_EditCellBounds(t *testing.T) {
	s := newTestSession()
	if _, err := s.EditCell(0, 0, "x"); !errors.Is(err, ErrHeaderEdit) {
		t.Errorf("EditCell(header) error = %v, want ErrHeaderEdit", err)
	}
	if _, err := s.EditCell(1, 9, "x"); !errors.Is(err, ErrColumnOutOfRange) {
		t.Errorf("EditCell(col 9) error = %v, want ErrColumnOutOfRange", err)
	}
	if _, err := s.EditCell(99, 0, "x"); !errors.Is(err, ErrRowOutOfRange) {
		t.Errorf("EditCell(row 99) error = %v, want ErrRowOutOfRange", err)
	}
}

func TestSession_EditThroughFilteredView(t *testing.T) {
	s := newTestSession()
	if err := s.ApplyFilters([]string{"", "", ""}, "pear", ModePerColumn); err != nil {
		t.Fatal(err)
	}

	res, err := s.EditCell(1, 0, "plum")
	if err != nil {
		t.Fatalf("EditCell() error = %v", err)
	}
	if res.SourceRow != 2 {
		t.Errorf("SourceRow = %d, want 2", res.SourceRow)
	}
	orig := s.Original()[0].Rows
	if orig.Cell(2, 0).String() != "plum" || orig.Cell(1, 0).String() != "apple" {
		t.Errorf("original = %v, want edit on row 2 only", orig.Strings())
	}
}

func TestSession_AddRow(t *testing.T) {
	s := newTestSession()
	row, err := s.AddRow()
	if err != nil {
		t.Fatalf("AddRow() error = %v", err)
	}
	if row != 4 {
		t.Errorf("AddRow() = %d, want 4", row)
	}
	m := s.Original()[0].Rows
	if m.Len() != 5 || m.Width() != 3 {
		t.Errorf("matrix = %d rows x %d, want 5 x 3", m.Len(), m.Width())
	}
	for col := 0; col < 3; col++ {
		if !m.Cell(4, col).IsEmpty() {
			t.Errorf("new row col %d = %v, want empty", col, m.Cell(4, col).Value())
		}
	}
}

func TestSession_WorkingFollowsFilters(t *testing.T) {
	s := newTestSession()
	if err := s.ApplyFilters([]string{"ap"}, "", ModePerColumn); err != nil {
		t.Fatal(err)
	}
	views, err := s.Working()
	if err != nil {
		t.Fatal(err)
	}
	if views[0].Rows.DataLen() != 2 {
		t.Errorf("active sheet DataLen() = %d, want 2", views[0].Rows.DataLen())
	}
	if views[1].Rows.DataLen() != 0 || views[1].Rows.Len() != 1 {
		t.Errorf("other sheet = %v, want header only", views[1].Rows.Strings())
	}

	s.ClearFilters()
	views, _ = s.Working()
	if !reflect.DeepEqual(sheetsOf(views), s.Original()) {
		t.Error("Working() after ClearFilters differs from the original")
	}
}

func TestSession_ApplyExpression(t *testing.T) {
	s := newTestSession()
	if err := s.ApplyExpression("(Qty > 4"); !errors.Is(err, ErrInvalidExpression) {
		t.Fatalf("ApplyExpression(invalid) error = %v, want ErrInvalidExpression", err)
	}
	if s.Filters().Expression != "" {
		t.Error("invalid expression was stored")
	}
	if err := s.ApplyExpression("Qty > 4"); err != nil {
		t.Fatalf("ApplyExpression() error = %v", err)
	}
	st, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if st.View.Rows.DataLen() != 2 || !st.Filtered() {
		t.Errorf("view DataLen() = %d, want 2 filtered rows", st.View.Rows.DataLen())
	}
}

func TestSession_Export(t *testing.T) {
	s := newTestSession()
	if err := s.ApplyFilters(nil, "pear", ModePerColumn); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		source   ExportSource
		scope    ExportScope
		sheets   int
		dataRows int
	}{
		{name: "current filtered", source: SourceFiltered, scope: ScopeCurrent, sheets: 1, dataRows: 1},
		{name: "current original", source: SourceOriginal, scope: ScopeCurrent, sheets: 1, dataRows: 3},
		{name: "all filtered", source: SourceFiltered, scope: ScopeAll, sheets: 2, dataRows: 1},
		{name: "all original", source: SourceOriginal, scope: ScopeAll, sheets: 2, dataRows: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb, err := s.Export(tt.source, tt.scope)
			if err != nil {
				t.Fatal(err)
			}
			if len(wb) != tt.sheets {
				t.Fatalf("len(sheets) = %d, want %d", len(wb), tt.sheets)
			}
			if wb[0].Rows.DataLen() != tt.dataRows {
				t.Errorf("DataLen() = %d, want %d", wb[0].Rows.DataLen(), tt.dataRows)
			}
		})
	}
}

func TestSession_EmptyWorkbookIsNoop(t *testing.T) {
	s := NewSession("s", "empty.csv", Workbook{}, nil)
	if err := s.SelectSheet(3); err != nil {
		t.Errorf("SelectSheet() error = %v, want nil", err)
	}
	if _, err := s.EditCell(1, 0, "x"); err != nil {
		t.Errorf("EditCell() error = %v, want nil", err)
	}
	if row, err := s.AddRow(); row != 0 || err != nil {
		t.Errorf("AddRow() = %d, %v; want 0, nil", row, err)
	}
	if err := s.ApplyFilters([]string{"x"}, "y", ModeAnyColumn); err != nil {
		t.Errorf("ApplyFilters() error = %v, want nil", err)
	}
	s.ClearFilters()
	if _, err := s.Snapshot(); err != nil {
		t.Errorf("Snapshot() error = %v", err)
	}
}
