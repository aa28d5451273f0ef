package core

import (
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"
)

// ExpressionFilter is a compiled boolean row expression such as
//
//	[Unit Price] > 10 && Region == 'EU'
//
// Header labels are the parameter names. Number cells bind as float64,
// every other cell binds as its string form.
type ExpressionFilter struct {
	source string
	expr   *govaluate.EvaluableExpression
}

// CompileExpression parses src once for repeated evaluation.
func CompileExpression(src string) (*ExpressionFilter, error) {
	src = strings.TrimSpace(src)
	expr, err := govaluate.NewEvaluableExpression(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	return &ExpressionFilter{source: src, expr: expr}, nil
}

// String returns the expression source.
func (e *ExpressionFilter) String() string { return e.source }

// Vars returns the parameter names referenced by the expression.
func (e *ExpressionFilter) Vars() []string { return e.expr.Vars() }

// Match evaluates the expression against row. Evaluation errors and
// non-boolean results reject the row.
func (e *ExpressionFilter) Match(header []string, row Row) bool {
	params := make(map[string]any, len(header))
	for i, label := range header {
		if label == "" || i >= len(row) {
			continue
		}
		if f, ok := row[i].Number(); ok {
			params[label] = f
			continue
		}
		params[label] = row[i].String()
	}
	result, err := e.expr.Evaluate(params)
	if err != nil {
		return false
	}
	b, ok := result.(bool)
	return ok && b
}
