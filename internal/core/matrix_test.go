package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestNewRowMatrix(t *testing.T) {
	m, err := NewRowMatrix([]Row{StringsRow("A", "B", "C"), StringsRow("1")})
	if err != nil {
		t.Fatalf("NewRowMatrix() error = %v", err)
	}
	if m.Width() != 3 || len(m.Row(1)) != 3 {
		t.Errorf("short row not padded: width %d, row len %d", m.Width(), len(m.Row(1)))
	}

	_, err = NewRowMatrix([]Row{StringsRow("A"), StringsRow("1", "2")})
	if !errors.Is(err, ErrRowLength) {
		t.Errorf("NewRowMatrix(wide row) error = %v, want ErrRowLength", err)
	}
}

func TestNewRowMatrixTrimmed(t *testing.T) {
	m := NewRowMatrixTrimmed([]Row{StringsRow("A"), StringsRow("1", "2", "3")})
	if m.Width() != 3 || len(m.Header()) != 3 {
		t.Errorf("Width() = %d, want header widened to 3", m.Width())
	}
}

func TestRowMatrix_Accessors(t *testing.T) {
	var empty RowMatrix
	if empty.Len() != 0 || empty.DataLen() != 0 || empty.Header() != nil || empty.DataRows() != nil {
		t.Error("zero RowMatrix is not empty")
	}
	if !empty.Cell(3, 3).IsEmpty() {
		t.Error("Cell(out of range) is not empty")
	}

	m := MustRowMatrix(StringsRow("A"), StringsRow("x"))
	if err := m.SetCell(5, 0, StringCell("y")); !errors.Is(err, ErrRowOutOfRange) {
		t.Errorf("SetCell(row 5) error = %v, want ErrRowOutOfRange", err)
	}
	if err := m.SetCell(1, 2, StringCell("y")); !errors.Is(err, ErrColumnOutOfRange) {
		t.Errorf("SetCell(col 2) error = %v, want ErrColumnOutOfRange", err)
	}
	if err := m.AppendRow(StringsRow("a", "b")); !errors.Is(err, ErrRowLength) {
		t.Errorf("AppendRow(wide) error = %v, want ErrRowLength", err)
	}
}

func TestRowMatrix_JSON(t *testing.T) {
	m := MustRowMatrix(
		StringsRow("Name", "Qty"),
		Row{StringCell("apple"), NumberCell(2)},
		Row{StringCell("pear")},
	)
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `[["Name","Qty"],["apple",2],["pear",""]]`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var back RowMatrix
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !back.Cell(1, 1).IsNumber() || !back.Cell(2, 1).IsEmpty() {
		t.Errorf("Unmarshal() = %v, want native kinds restored", back.Strings())
	}

	if data, _ := json.Marshal(RowMatrix{}); string(data) != "[]" {
		t.Errorf("Marshal(empty) = %s, want []", data)
	}
}

func TestCell_MarshalJSONNonFinite(t *testing.T) {
	data, err := json.Marshal(NumberCell(math.Inf(1)))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `""` {
		t.Errorf("Marshal(+Inf) = %s, want \"\"", data)
	}
}

func TestParseFilterMode(t *testing.T) {
	tests := map[string]FilterMode{
		"any":    ModeAnyColumn,
		"Global": ModeAnyColumn,
		"column": ModePerColumn,
		"":       ModePerColumn,
	}
	for in, want := range tests {
		if got := ParseFilterMode(in); got != want {
			t.Errorf("ParseFilterMode(%q) = %q, want %q", in, got, want)
		}
	}
}
