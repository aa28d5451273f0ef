package core

import (
	"reflect"
	"testing"
)

func TestInferColumnTypes(t *testing.T) {
	tests := []struct {
		name string
		m    RowMatrix
		want ColumnTypes
	}{
		{
			name: "native numbers and text",
			m: MustRowMatrix(
				StringsRow("A", "B"),
				Row{NumberCell(1), StringCell("x")},
				Row{NumberCell(2), StringCell("y")},
			),
			want: ColumnTypes{TypeNumber, TypeString},
		},
		{
			name: "numeric text classifies as number",
			m: MustRowMatrix(
				StringsRow("A", "B"),
				StringsRow("1", "2"),
				StringsRow("3", "4"),
			),
			want: ColumnTypes{TypeNumber, TypeNumber},
		},
		{
			name: "dates",
			m: MustRowMatrix(
				StringsRow("When", "Note"),
				StringsRow("2024-01-05", "ok"),
			),
			want: ColumnTypes{TypeDate, TypeString},
		},
		{
			name: "first decisive cell wins over later cells",
			m: MustRowMatrix(
				StringsRow("Mixed"),
				Row{NumberCell(5)},
				StringsRow("hello"),
				StringsRow("world"),
			),
			want: ColumnTypes{TypeNumber},
		},
		{
			name: "leading empty cells are skipped",
			m: MustRowMatrix(
				StringsRow("A"),
				Row{EmptyCell()},
				StringsRow("2024-02-01"),
			),
			want: ColumnTypes{TypeDate},
		},
		{
			name: "all empty column is string",
			m: MustRowMatrix(
				StringsRow("A", "B"),
				Row{NumberCell(1)},
				Row{NumberCell(2)},
			),
			want: ColumnTypes{TypeNumber, TypeString},
		},
		{
			name: "header values never affect types",
			m: MustRowMatrix(
				Row{NumberCell(2024), StringCell("2024-01-01")},
				StringsRow("abc", "def"),
			),
			want: ColumnTypes{TypeString, TypeString},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferColumnTypes(tt.m)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("InferColumnTypes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInferColumnTypes_NoDataRows(t *testing.T) {
	for name, m := range map[string]RowMatrix{
		"empty matrix": {},
		"header only":  MustRowMatrix(StringsRow("A", "B", "C")),
	} {
		t.Run(name, func(t *testing.T) {
			if got := InferColumnTypes(m); len(got) != 0 {
				t.Errorf("InferColumnTypes() = %v, want empty", got)
			}
		})
	}
}

func TestInferColumnTypes_LengthMatchesHeader(t *testing.T) {
	m := MustRowMatrix(
		StringsRow("A", "B", "C", "D"),
		StringsRow("1"),
	)
	if got := InferColumnTypes(m); len(got) != 4 {
		t.Errorf("len(InferColumnTypes()) = %d, want 4", len(got))
	}
}

func TestInferColumnTypes_Deterministic(t *testing.T) {
	m := MustRowMatrix(
		StringsRow("A", "B", "C"),
		StringsRow("1", "2024-01-01", "x"),
		StringsRow("y", "z", "3"),
	)
	first := InferColumnTypes(m)
	for i := 0; i < 10; i++ {
		if got := InferColumnTypes(m); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: InferColumnTypes() = %v, want %v", i, got, first)
		}
	}
}

func TestInferRowTypes(t *testing.T) {
	rows := []Row{StringsRow("1", "a"), StringsRow("2", "b")}
	want := ColumnTypes{TypeNumber, TypeString}
	if got := InferRowTypes(rows, 2); !reflect.DeepEqual(got, want) {
		t.Errorf("InferRowTypes() = %v, want %v", got, want)
	}
	if got := InferRowTypes(nil, 2); len(got) != 0 {
		t.Errorf("InferRowTypes(nil) = %v, want empty", got)
	}
}
