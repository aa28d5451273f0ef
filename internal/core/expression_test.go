package core

import (
	"errors"
	"testing"
)

func TestCompileExpression(t *testing.T) {
	if _, err := CompileExpression("(a > 1"); !errors.Is(err, ErrInvalidExpression) {
		t.Errorf("CompileExpression(unbalanced) error = %v, want ErrInvalidExpression", err)
	}

	e, err := CompileExpression("  [Unit Price] > 10  ")
	if err != nil {
		t.Fatalf("CompileExpression() error = %v", err)
	}
	if e.String() != "[Unit Price] > 10" {
		t.Errorf("String() = %q, want trimmed source", e.String())
	}
	if vars := e.Vars(); len(vars) != 1 || vars[0] != "Unit Price" {
		t.Errorf("Vars() = %v, want [Unit Price]", vars)
	}
}

func TestExpressionFilter_Match(t *testing.T) {
	header := []string{"Region", "Unit Price", "Qty"}
	tests := []struct {
		name string
		expr string
		row  Row
		want bool
	}{
		{
			name: "numeric comparison",
			expr: "[Unit Price] > 10",
			row:  Row{StringCell("EU"), NumberCell(12), NumberCell(1)},
			want: true,
		},
		{
			name: "string equality",
			expr: "Region == 'EU' && Qty >= 2",
			row:  Row{StringCell("EU"), NumberCell(1), NumberCell(3)},
			want: true,
		},
		{
			name: "false result",
			expr: "Region == 'US'",
			row:  Row{StringCell("EU"), NumberCell(1), NumberCell(3)},
			want: false,
		},
		{
			name: "non-boolean result rejects the row",
			expr: "Qty + 1",
			row:  Row{StringCell("EU"), NumberCell(1), NumberCell(3)},
			want: false,
		},
		{
			name: "missing parameter rejects the row",
			expr: "Missing > 1",
			row:  Row{StringCell("EU"), NumberCell(1), NumberCell(3)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := CompileExpression(tt.expr)
			if err != nil {
				t.Fatalf("CompileExpression(%q) error = %v", tt.expr, err)
			}
			if got := e.Match(header, tt.row); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}
