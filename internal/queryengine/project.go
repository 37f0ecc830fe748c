package queryengine

import (
	"github.com/corvidgraph/cyql/internal/ast"
	"github.com/corvidgraph/cyql/internal/bindings"
	"github.com/corvidgraph/cyql/internal/eval"
	"github.com/corvidgraph/cyql/internal/graph"
)

// projectReturn builds the RETURN projection: a column per return item
// (alias, else the variable name, else "object.property"), a row per
// binding context.
func projectReturn(ret *ast.ReturnClause, bindingSets []*bindings.Context, ev *eval.Evaluator) ([]string, [][]graph.Value) {
	cols := make([]string, len(ret.Items))
	for i, item := range ret.Items {
		cols[i] = columnName(item)
	}

	rows := make([][]graph.Value, 0, len(bindingSets))
	for _, b := range bindingSets {
		row := make([]graph.Value, len(ret.Items))
		for i, item := range ret.Items {
			row[i] = ev.Evaluate(item.Expr, b)
		}
		rows = append(rows, row)
	}
	return cols, rows
}

func columnName(item ast.ReturnItem) string {
	if item.Alias != "" {
		return item.Alias
	}
	switch e := item.Expr.(type) {
	case ast.Variable:
		return e.Name
	case ast.Property:
		return e.Object.Name + "." + e.Name
	default:
		return ""
	}
}
