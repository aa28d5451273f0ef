package core

import (
	"reflect"
	"testing"
)

func sampleWorkbook() Workbook {
	return Workbook{
		{Name: "Sheet1", Rows: MustRowMatrix(
			StringsRow("A", "B"),
			StringsRow("1", "2"),
			StringsRow("3", "4"),
		)},
	}
}

func TestApplyFilters_PerColumn(t *testing.T) {
	got := ApplyFilters(sampleWorkbook(), []string{"", "2"}, "")
	want := [][]string{{"A", "B"}, {"1", "2"}}
	if !reflect.DeepEqual(got[0].Rows.Strings(), want) {
		t.Errorf("ApplyFilters() = %v, want %v", got[0].Rows.Strings(), want)
	}
}

func TestApplyFilters_GlobalSearch(t *testing.T) {
	got := ApplyFilters(sampleWorkbook(), []string{"", ""}, "3")
	want := [][]string{{"A", "B"}, {"3", "4"}}
	if !reflect.DeepEqual(got[0].Rows.Strings(), want) {
		t.Errorf("ApplyFilters() = %v, want %v", got[0].Rows.Strings(), want)
	}
}

func TestApplyFilters_EmptyFiltersReturnBaseline(t *testing.T) {
	original := sampleWorkbook()
	got := ApplyFilters(original, []string{"", ""}, "   ")
	if !reflect.DeepEqual(got, original) {
		t.Errorf("ApplyFilters(no filters) = %v, want deep copy of original", got)
	}

	got[0].Rows.SetCell(1, 0, StringCell("changed"))
	if original[0].Rows.Cell(1, 0).String() != "1" {
		t.Error("result shares storage with the original")
	}
}

func TestApplyFilters_CaseInsensitive(t *testing.T) {
	wb := Workbook{{Name: "S", Rows: MustRowMatrix(
		StringsRow("Name", "City"),
		StringsRow("Alice", "Paris"),
		StringsRow("Bob", "LONDON"),
	)}}

	got := ApplyFilters(wb, []string{"", "lon"}, "")
	if got[0].Rows.DataLen() != 1 || got[0].Rows.Cell(1, 0).String() != "Bob" {
		t.Errorf("column filter = %v, want Bob only", got[0].Rows.Strings())
	}

	got = ApplyFilters(wb, nil, "ALI")
	if got[0].Rows.DataLen() != 1 || got[0].Rows.Cell(1, 0).String() != "Alice" {
		t.Errorf("global search = %v, want Alice only", got[0].Rows.Strings())
	}
}

func TestApplyFilters_EmptyCellNeverMatches(t *testing.T) {
	wb := Workbook{{Name: "S", Rows: MustRowMatrix(
		StringsRow("A", "B"),
		StringsRow("", "x"),
		StringsRow("a", "x"),
	)}}
	got := ApplyFilters(wb, []string{"a", ""}, "")
	if got[0].Rows.DataLen() != 1 {
		t.Errorf("DataLen() = %d, want 1", got[0].Rows.DataLen())
	}
}

func TestApplyFilters_NumbersMatchByText(t *testing.T) {
	wb := Workbook{{Name: "S", Rows: MustRowMatrix(
		StringsRow("Price"),
		Row{NumberCell(12.5)},
		Row{NumberCell(3)},
	)}}
	got := ApplyFilters(wb, []string{"2.5"}, "")
	if got[0].Rows.DataLen() != 1 {
		t.Errorf("DataLen() = %d, want 1", got[0].Rows.DataLen())
	}
}

func TestApplyFilters_EverySheetKeepsHeader(t *testing.T) {
	wb := Workbook{
		{Name: "One", Rows: MustRowMatrix(StringsRow("A"), StringsRow("keep"), StringsRow("drop"))},
		{Name: "Two", Rows: MustRowMatrix(StringsRow("B"), StringsRow("nothing"))},
		{Name: "Three", Rows: RowMatrix{}},
	}
	got := ApplyFilters(wb, []string{"keep"}, "")
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	if got[0].Rows.DataLen() != 1 {
		t.Errorf("sheet One DataLen() = %d, want 1", got[0].Rows.DataLen())
	}
	if got[1].Rows.Len() != 1 || got[1].Rows.Cell(0, 0).String() != "B" {
		t.Errorf("sheet Two = %v, want header only", got[1].Rows.Strings())
	}
	if got[2].Rows.Len() != 0 {
		t.Errorf("sheet Three = %v, want empty", got[2].Rows.Strings())
	}
}

func TestApplyFilters_DoesNotModifyInput(t *testing.T) {
	original := sampleWorkbook()
	before := original.Clone()
	ApplyFilters(original, []string{"1", ""}, "x")
	ApplyGlobalFilters(original, []string{"1"}, "")
	if !reflect.DeepEqual(original, before) {
		t.Error("filtering modified the original workbook")
	}
}

func TestApplyGlobalFilters(t *testing.T) {
	wb := Workbook{{Name: "S", Rows: MustRowMatrix(
		StringsRow("A", "B"),
		StringsRow("red apple", "green apple"),
		StringsRow("red pear", "blue"),
		StringsRow("apple", ""),
	)}}

	tests := []struct {
		name    string
		filters []string
		search  string
		want    int
	}{
		{name: "every cell contains a filter", filters: []string{"apple", ""}, want: 1},
		{name: "any of several filters", filters: []string{"apple", "red"}, want: 1},
		{name: "cell matching only via second filter", filters: []string{"red", "blue"}, want: 1},
		{name: "no filters imposes nothing", filters: []string{"", ""}, want: 3},
		{name: "search still applies", filters: []string{"", ""}, search: "pear", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyGlobalFilters(wb, tt.filters, tt.search)
			if got[0].Rows.DataLen() != tt.want {
				t.Errorf("DataLen() = %d, want %d: %v", got[0].Rows.DataLen(), tt.want, got[0].Rows.Strings())
			}
		})
	}
}

func TestProject_SourceRows(t *testing.T) {
	wb := Workbook{{Name: "S", Rows: MustRowMatrix(
		StringsRow("Name"),
		StringsRow("alpha"),
		StringsRow("beta"),
		StringsRow("alphabet"),
	)}}
	views, err := Project(wb, FilterState{Columns: []string{"alpha"}, Mode: ModePerColumn})
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if want := []int{1, 3}; !reflect.DeepEqual(views[0].SourceRows, want) {
		t.Errorf("SourceRows = %v, want %v", views[0].SourceRows, want)
	}
	if got := views[0].SourceRow(2); got != 3 {
		t.Errorf("SourceRow(2) = %d, want 3", got)
	}
	if got := views[0].SourceRow(0); got != 0 {
		t.Errorf("SourceRow(0) = %d, want 0", got)
	}
	if got := views[0].SourceRow(5); got != -1 {
		t.Errorf("SourceRow(5) = %d, want -1", got)
	}
}

func TestProject_Expression(t *testing.T) {
	wb := Workbook{{Name: "S", Rows: MustRowMatrix(
		StringsRow("Item", "Price"),
		Row{StringCell("a"), NumberCell(5)},
		Row{StringCell("b"), NumberCell(15)},
	)}}
	views, err := Project(wb, FilterState{Mode: ModePerColumn, Expression: "Price > 10"})
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if views[0].Rows.DataLen() != 1 || views[0].Rows.Cell(1, 0).String() != "b" {
		t.Errorf("Project() = %v, want row b", views[0].Rows.Strings())
	}

	if _, err := Project(wb, FilterState{Expression: "(Price > 10"}); err == nil {
		t.Error("Project(bad expression) error = nil, want error")
	}
}

func TestClearFilters(t *testing.T) {
	original := sampleWorkbook()
	state, working := ClearFilters(original, 2)
	if !reflect.DeepEqual(working, original) {
		t.Errorf("working = %v, want deep equal to original", working)
	}
	if len(state.Columns) != 2 || !state.IsEmpty() || state.Mode != ModePerColumn {
		t.Errorf("state = %+v, want two empty filters in column mode", state)
	}
	working[0].Rows.SetCell(1, 1, StringCell("x"))
	if original[0].Rows.Cell(1, 1).String() != "2" {
		t.Error("cleared working set shares storage with the original")
	}
}

func TestApplyFilters_NarrowerSheetIgnoresMissingColumns(t *testing.T) {
	wb := Workbook{
		{Name: "Wide", Rows: MustRowMatrix(
			StringsRow("A", "B", "C"),
			StringsRow("x", "y", "keep"),
			StringsRow("x", "y", "drop"),
		)},
		{Name: "Narrow", Rows: MustRowMatrix(
			StringsRow("A"),
			StringsRow("x"),
			StringsRow("z"),
		)},
	}

	got := ApplyFilters(wb, []string{"", "", "keep"}, "")
	if want := [][]string{{"A", "B", "C"}, {"x", "y", "keep"}}; !reflect.DeepEqual(got[0].Rows.Strings(), want) {
		t.Errorf("wide = %v, want %v", got[0].Rows.Strings(), want)
	}
	if want := [][]string{{"A"}, {"x"}, {"z"}}; !reflect.DeepEqual(got[1].Rows.Strings(), want) {
		t.Errorf("narrow = %v, want %v", got[1].Rows.Strings(), want)
	}

	got = ApplyFilters(wb, []string{"x", "", "keep"}, "")
	if want := [][]string{{"A"}, {"x"}}; !reflect.DeepEqual(got[1].Rows.Strings(), want) {
		t.Errorf("narrow with column 0 filter = %v, want %v", got[1].Rows.Strings(), want)
	}
}

func TestApplyFilters_SearchIsNotTrimmed(t *testing.T) {
	wb := Workbook{{Name: "S", Rows: MustRowMatrix(
		StringsRow("Code", "Label"),
		StringsRow("13", "a"),
		StringsRow("x 3", "b"),
	)}}

	tests := []struct {
		search string
		want   []string
	}{
		{" 3", []string{"b"}},
		{"3", []string{"a", "b"}},
		{"   ", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got := ApplyFilters(wb, nil, tt.search)
			var labels []string
			for _, row := range got[0].Rows.DataRows() {
				labels = append(labels, row[1].String())
			}
			if !reflect.DeepEqual(labels, tt.want) {
				t.Errorf("ApplyFilters(search %q) labels = %v, want %v", tt.search, labels, tt.want)
			}
		})
	}
}
