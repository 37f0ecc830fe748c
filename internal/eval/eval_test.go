package eval

import (
	"testing"

	"github.com/corvidgraph/cyql/internal/ast"
	"github.com/corvidgraph/cyql/internal/bindings"
	"github.com/corvidgraph/cyql/internal/graph"
	"github.com/stretchr/testify/require"
)

func TestEvaluateLiteralAndVariable(t *testing.T) {
	e := New(nil, nil, Options{})
	b := bindings.New()
	b.Set("x", graph.Number(5))

	require.True(t, e.Evaluate(ast.Literal{Value: graph.String("hi")}, b).Equal(graph.String("hi")))
	require.True(t, e.Evaluate(ast.Variable{Name: "x"}, b).Equal(graph.Number(5)))
	require.True(t, e.Evaluate(ast.Variable{Name: "missing"}, b).IsNull())
}

func TestEvaluatePropertyOnNode(t *testing.T) {
	e := New(nil, nil, Options{})
	b := bindings.New()
	node := &graph.Node{ID: "a", Label: "Person", Data: map[string]graph.Value{"age": graph.Number(30)}}
	b.Set("p", graph.NodeRef(node))

	v := e.Evaluate(ast.Property{Object: ast.Variable{Name: "p"}, Name: "age"}, b)
	require.True(t, v.Equal(graph.Number(30)))

	missing := e.Evaluate(ast.Property{Object: ast.Variable{Name: "p"}, Name: "nope"}, b)
	require.True(t, missing.IsNull())
}

func TestComparisonMissingOperandIsFalseNotNull(t *testing.T) {
	e := New(nil, nil, Options{})
	b := bindings.New()
	cond := ast.Comparison{Left: ast.Variable{Name: "ghost"}, Op: ast.OpEq, Right: ast.Literal{Value: graph.Number(1)}}
	v := e.Evaluate(cond, b)
	require.Equal(t, graph.BoolVal, v.Kind)
	require.False(t, v.B)
}

func TestTypeCoercionComparison(t *testing.T) {
	b := bindings.New()
	withCoercion := New(nil, nil, Options{EnableTypeCoercion: true})
	cond := ast.Comparison{Left: ast.Literal{Value: graph.String("30")}, Op: ast.OpEq, Right: ast.Literal{Value: graph.Number(30)}}
	require.True(t, withCoercion.Evaluate(cond, b).Truthy())

	withoutCoercion := New(nil, nil, Options{})
	require.False(t, withoutCoercion.Evaluate(cond, b).Truthy())
}

func TestContainsStartsEndsWith(t *testing.T) {
	e := New(nil, nil, Options{})
	b := bindings.New()

	sw := ast.Comparison{Left: ast.Literal{Value: graph.String("Alice")}, Op: ast.OpStartsWith, Right: ast.Literal{Value: graph.String("Al")}}
	require.True(t, e.Evaluate(sw, b).Truthy())

	ew := ast.Comparison{Left: ast.Literal{Value: graph.String("Alice")}, Op: ast.OpEndsWith, Right: ast.Literal{Value: graph.String("ce")}}
	require.True(t, e.Evaluate(ew, b).Truthy())

	contains := ast.Comparison{Left: ast.Literal{Value: graph.List([]graph.Value{graph.String("x"), graph.String("y")})}, Op: ast.OpContains, Right: ast.Literal{Value: graph.String("y")}}
	require.True(t, e.Evaluate(contains, b).Truthy())
}

func TestLogicalShortCircuit(t *testing.T) {
	e := New(nil, nil, Options{})
	b := bindings.New()
	and := ast.Logical{Op: ast.OpAnd, Operands: []ast.Expression{
		ast.Literal{Value: graph.Bool(false)},
		ast.Literal{Value: graph.Bool(true)},
	}}
	require.False(t, e.Evaluate(and, b).Truthy())

	xor := ast.Logical{Op: ast.OpXor, Operands: []ast.Expression{
		ast.Literal{Value: graph.Bool(true)},
		ast.Literal{Value: graph.Bool(true)},
		ast.Literal{Value: graph.Bool(true)},
	}}
	require.True(t, e.Evaluate(xor, b).Truthy())
}

type fakeMatcher struct {
	result bool
}

func (f fakeMatcher) PatternExists(g graph.Graph, pattern ast.PathPattern, b *bindings.Context) (bool, error) {
	return f.result, nil
}

func TestExistsHonorsPositiveFlag(t *testing.T) {
	b := bindings.New()
	found := New(nil, fakeMatcher{result: true}, Options{})
	require.True(t, found.Evaluate(ast.Exists{Positive: true}, b).Truthy())
	require.False(t, found.Evaluate(ast.Exists{Positive: false}, b).Truthy())

	notFound := New(nil, fakeMatcher{result: false}, Options{})
	require.False(t, notFound.Evaluate(ast.Exists{Positive: true}, b).Truthy())
	require.True(t, notFound.Evaluate(ast.Exists{Positive: false}, b).Truthy())
}

func TestAnalyzeWhereSingleAndMultiVar(t *testing.T) {
	// p.age > 30 AND (p.active = true) AND (p.x = t.y)
	cond := ast.Logical{Op: ast.OpAnd, Operands: []ast.Expression{
		ast.Comparison{Left: ast.Property{Object: ast.Variable{Name: "p"}, Name: "age"}, Op: ast.OpGt, Right: ast.Literal{Value: graph.Number(30)}},
		ast.Comparison{Left: ast.Property{Object: ast.Variable{Name: "p"}, Name: "active"}, Op: ast.OpEq, Right: ast.Literal{Value: graph.Bool(true)}},
		ast.Comparison{Left: ast.Property{Object: ast.Variable{Name: "p"}, Name: "x"}, Op: ast.OpEq, Right: ast.Property{Object: ast.Variable{Name: "t"}, Name: "y"}},
	}}
	a := AnalyzeWhere(cond)
	require.Len(t, a.SingleVar["p"], 2)
	require.Len(t, a.MultiVar, 1)
}

func TestAnalyzeWhereOrIsAtomic(t *testing.T) {
	// (p.a = 1 OR p.b = 2) is single-var since both operands share "p".
	or := ast.Logical{Op: ast.OpOr, Operands: []ast.Expression{
		ast.Comparison{Left: ast.Property{Object: ast.Variable{Name: "p"}, Name: "a"}, Op: ast.OpEq, Right: ast.Literal{Value: graph.Number(1)}},
		ast.Comparison{Left: ast.Property{Object: ast.Variable{Name: "p"}, Name: "b"}, Op: ast.OpEq, Right: ast.Literal{Value: graph.Number(2)}},
	}}
	a := AnalyzeWhere(or)
	require.Len(t, a.SingleVar["p"], 1)
	require.Empty(t, a.MultiVar)
}

func TestAnalyzeWhereOrAcrossVariablesIsMultiVar(t *testing.T) {
	or := ast.Logical{Op: ast.OpOr, Operands: []ast.Expression{
		ast.Comparison{Left: ast.Property{Object: ast.Variable{Name: "p"}, Name: "a"}, Op: ast.OpEq, Right: ast.Literal{Value: graph.Number(1)}},
		ast.Comparison{Left: ast.Property{Object: ast.Variable{Name: "t"}, Name: "b"}, Op: ast.OpEq, Right: ast.Literal{Value: graph.Number(2)}},
	}}
	a := AnalyzeWhere(or)
	require.Empty(t, a.SingleVar)
	require.Len(t, a.MultiVar, 1)
}
