package eval

import "github.com/corvidgraph/cyql/internal/ast"

// Analysis partitions a WHERE condition into single-variable
// sub-expressions grouped by the one variable they reference, and the
// residual sub-expressions that reference two or more variables (or
// none) and therefore cannot be pushed down to a single pattern.
type Analysis struct {
	SingleVar map[string][]ast.Expression
	MultiVar  []ast.Expression
}

// AnalyzeWhere partitions cond: AND recurses into every operand;
// OR/XOR/NOT/EXISTS are atomic and classified by their aggregate
// free-variable set.
func AnalyzeWhere(cond ast.Expression) Analysis {
	a := Analysis{SingleVar: map[string][]ast.Expression{}}
	var walk func(ast.Expression)
	walk = func(e ast.Expression) {
		if logical, ok := e.(ast.Logical); ok && logical.Op == ast.OpAnd {
			for _, operand := range logical.Operands {
				walk(operand)
			}
			return
		}
		vars := FreeVars(e)
		switch len(vars) {
		case 1:
			for v := range vars {
				a.SingleVar[v] = append(a.SingleVar[v], e)
			}
		default:
			a.MultiVar = append(a.MultiVar, e)
		}
	}
	walk(cond)
	return a
}

// FreeVars computes vars(e): property access contributes its object
// variable, EXISTS contributes every variable its pattern declares.
func FreeVars(e ast.Expression) map[string]struct{} {
	out := map[string]struct{}{}
	collectFreeVars(e, out)
	return out
}

func collectFreeVars(e ast.Expression, out map[string]struct{}) {
	switch x := e.(type) {
	case ast.Literal:
	case ast.Variable:
		out[x.Name] = struct{}{}
	case ast.Property:
		out[x.Object.Name] = struct{}{}
	case ast.Comparison:
		collectFreeVars(x.Left, out)
		if x.Right != nil {
			collectFreeVars(x.Right, out)
		}
	case ast.Logical:
		for _, operand := range x.Operands {
			collectFreeVars(operand, out)
		}
	case ast.Exists:
		for _, name := range x.Pattern.Variables() {
			out[name] = struct{}{}
		}
	}
}

// Subset reports whether every variable in vars also appears in within.
func Subset(vars map[string]struct{}, within map[string]struct{}) bool {
	for v := range vars {
		if _, ok := within[v]; !ok {
			return false
		}
	}
	return true
}
