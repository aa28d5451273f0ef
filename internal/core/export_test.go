package core

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestToRecords(t *testing.T) {
	m := MustRowMatrix(
		StringsRow("A", "B"),
		StringsRow("1", "2"),
		StringsRow("3", "4"),
	)
	records := ToRecords(m)
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	want := []map[string]string{{"A": "1", "B": "2"}, {"A": "3", "B": "4"}}
	for i, r := range records {
		if !reflect.DeepEqual(r.Map(), want[i]) {
			t.Errorf("records[%d] = %v, want %v", i, r.Map(), want[i])
		}
	}
}

func TestToRecords_HeaderOnly(t *testing.T) {
	m := MustRowMatrix(StringsRow("A", "B"))
	if got := ToRecords(m); len(got) != 0 {
		t.Errorf("ToRecords(header only) = %v, want empty", got)
	}
}

func TestToRecords_DuplicateHeaders(t *testing.T) {
	m := MustRowMatrix(
		StringsRow("A", "B", "A"),
		StringsRow("first", "b", "last"),
	)
	r := ToRecords(m)[0]
	if !reflect.DeepEqual(r.Keys(), []string{"A", "B"}) {
		t.Errorf("Keys() = %v, want [A B]", r.Keys())
	}
	if c, _ := r.Get("A"); c.String() != "last" {
		t.Errorf("A = %q, want later column to win", c.String())
	}
	if got := DuplicateHeaders(m.HeaderLabels()); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("DuplicateHeaders() = %v, want [A]", got)
	}
}

func TestRecord_MarshalJSONKeepsOrder(t *testing.T) {
	m := MustRowMatrix(
		StringsRow("Zeta", "Alpha", "Empty"),
		Row{StringCell("z"), NumberCell(1.5)},
	)
	got, err := json.Marshal(ToRecords(m)[0])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"Zeta":"z","Alpha":1.5,"Empty":""}`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestRecordShape(t *testing.T) {
	wb := Workbook{
		{Name: "One", Rows: MustRowMatrix(StringsRow("A"), StringsRow("x"))},
		{Name: "Two", Rows: MustRowMatrix(StringsRow("B"))},
	}
	got, err := json.Marshal(RecordShape(wb))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `[{"sheetName":"One","data":[{"A":"x"}]},{"sheetName":"Two","data":[]}]`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestTableShapes(t *testing.T) {
	wb := Workbook{{Name: "S", Rows: MustRowMatrix(
		StringsRow("A", "B"),
		Row{NumberCell(1), EmptyCell()},
	)}}
	got := TableShapes(wb)
	want := []TableShape{{SheetName: "S", Head: []string{"A", "B"}, Body: [][]string{{"1", ""}}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TableShapes() = %+v, want %+v", got, want)
	}
}

func TestSelectSheets(t *testing.T) {
	wb := Workbook{{Name: "One"}, {Name: "Two"}, {Name: "Three"}}

	if got := SelectSheets(wb, ScopeAll, 1).SheetNames(); !reflect.DeepEqual(got, []string{"One", "Two", "Three"}) {
		t.Errorf("ScopeAll = %v, want every sheet in order", got)
	}
	if got := SelectSheets(wb, ScopeCurrent, 1).SheetNames(); !reflect.DeepEqual(got, []string{"Two"}) {
		t.Errorf("ScopeCurrent = %v, want [Two]", got)
	}
	if got := SelectSheets(wb, ScopeCurrent, 7); len(got) != 0 {
		t.Errorf("ScopeCurrent out of range = %v, want empty", got)
	}
}

func TestMatrixShape_IsDeepCopy(t *testing.T) {
	wb := sampleWorkbook()
	out := MatrixShape(wb)
	if !reflect.DeepEqual(out, wb) {
		t.Fatalf("MatrixShape() = %v, want %v", out, wb)
	}
	out[0].Rows.SetCell(1, 0, StringCell("x"))
	if wb[0].Rows.Cell(1, 0).String() != "1" {
		t.Error("MatrixShape shares storage with its input")
	}
}

func TestParseExportOptions(t *testing.T) {
	if ParseExportSource("ORIGINAL") != SourceOriginal || ParseExportSource("") != SourceFiltered {
		t.Error("ParseExportSource did not map names")
	}
	if ParseExportScope(" all ") != ScopeAll || ParseExportScope("bogus") != ScopeCurrent {
		t.Error("ParseExportScope did not map names")
	}
}

func TestRecord_MarshalJSONKeepsBlankCells(t *testing.T) {
	m := MustRowMatrix(
		StringsRow("A", "B", "C"),
		Row{StringCell("x"), EmptyCell()},
	)
	got, err := json.Marshal(ToRecords(m)[0])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"A":"x","B":"","C":""}`; string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}
