// Package eval evaluates expressions against a binding context and
// analyzes WHERE conditions for per-variable predicate pushdown.
package eval

import (
	"strconv"
	"strings"

	"github.com/corvidgraph/cyql/internal/ast"
	"github.com/corvidgraph/cyql/internal/bindings"
	"github.com/corvidgraph/cyql/internal/graph"
)

// Options configures comparison semantics.
type Options struct {
	// EnableTypeCoercion turns on string<->number and truthy boolean
	// coercions in comparisons; strict equality otherwise.
	EnableTypeCoercion bool
}

// PatternMatcher is the narrow slice of the pattern matcher that EXISTS
// needs. Defined here (rather than imported from internal/matcher) so
// that matcher can depend on eval for opportunistic predicate
// evaluation without a dependency cycle; matcher supplies the
// implementation at construction time.
type PatternMatcher interface {
	PatternExists(g graph.Graph, pattern ast.PathPattern, b *bindings.Context) (bool, error)
}

// Evaluator evaluates expressions against a fixed graph and options.
type Evaluator struct {
	Graph   graph.Graph
	Matcher PatternMatcher
	Opts    Options
}

// New constructs an Evaluator. Matcher may be nil if the caller never
// evaluates EXISTS expressions (e.g. pure property projection).
func New(g graph.Graph, matcher PatternMatcher, opts Options) *Evaluator {
	return &Evaluator{Graph: g, Matcher: matcher, Opts: opts}
}

// Evaluate implements evaluate_expression: literals produce their value,
// variables and property access look up bindings (missing -> Null),
// comparisons produce Bool, logicals short-circuit.
func (e *Evaluator) Evaluate(expr ast.Expression, b *bindings.Context) graph.Value {
	switch x := expr.(type) {
	case ast.Literal:
		return x.Value
	case ast.Variable:
		if v, ok := b.Get(x.Name); ok {
			return v
		}
		return graph.Null()
	case ast.Property:
		return e.evalProperty(x, b)
	case ast.Comparison:
		return e.evalComparison(x, b)
	case ast.Logical:
		return e.evalLogical(x, b)
	case ast.Exists:
		return e.evalExists(x, b)
	}
	return graph.Null()
}

// EvaluateCondition is the boolean-coerced form used by WHERE/pruning.
func (e *Evaluator) EvaluateCondition(expr ast.Expression, b *bindings.Context) bool {
	return e.Evaluate(expr, b).Truthy()
}

func (e *Evaluator) evalProperty(x ast.Property, b *bindings.Context) graph.Value {
	obj, ok := b.Get(x.Object.Name)
	if !ok {
		return graph.Null()
	}
	switch obj.Kind {
	case graph.NodeRefVal:
		if obj.Node == nil {
			return graph.Null()
		}
		if v, ok := obj.Node.Data[x.Name]; ok {
			return v
		}
	case graph.EdgeRefVal:
		if obj.Edge == nil {
			return graph.Null()
		}
		if v, ok := obj.Edge.Data[x.Name]; ok {
			return v
		}
	}
	return graph.Null()
}

func (e *Evaluator) evalLogical(x ast.Logical, b *bindings.Context) graph.Value {
	switch x.Op {
	case ast.OpAnd:
		for _, op := range x.Operands {
			if !e.EvaluateCondition(op, b) {
				return graph.Bool(false)
			}
		}
		return graph.Bool(true)
	case ast.OpOr:
		for _, op := range x.Operands {
			if e.EvaluateCondition(op, b) {
				return graph.Bool(true)
			}
		}
		return graph.Bool(false)
	case ast.OpNot:
		if len(x.Operands) == 0 {
			return graph.Bool(true)
		}
		return graph.Bool(!e.EvaluateCondition(x.Operands[0], b))
	case ast.OpXor:
		trues := 0
		for _, op := range x.Operands {
			if e.EvaluateCondition(op, b) {
				trues++
			}
		}
		return graph.Bool(trues%2 == 1)
	}
	return graph.Null()
}

func (e *Evaluator) evalExists(x ast.Exists, b *bindings.Context) graph.Value {
	if e.Matcher == nil {
		return graph.Bool(false)
	}
	found, err := e.Matcher.PatternExists(e.Graph, x.Pattern, b)
	if err != nil {
		return graph.Bool(false)
	}
	return graph.Bool(x.Positive == found)
}

func (e *Evaluator) evalComparison(x ast.Comparison, b *bindings.Context) graph.Value {
	left := e.Evaluate(x.Left, b)

	switch x.Op {
	case ast.OpIsNull:
		return graph.Bool(left.IsNull())
	case ast.OpIsNotNull:
		return graph.Bool(!left.IsNull())
	}

	right := e.Evaluate(x.Right, b)
	// "A comparison whose operand is missing returns false (never null)."
	if left.IsNull() || right.IsNull() {
		return graph.Bool(false)
	}

	switch x.Op {
	case ast.OpEq:
		return graph.Bool(e.valuesEqual(left, right))
	case ast.OpNeq:
		return graph.Bool(!e.valuesEqual(left, right))
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		ln, lok := e.asNumber(left)
		rn, rok := e.asNumber(right)
		if !lok || !rok {
			return graph.Bool(false)
		}
		switch x.Op {
		case ast.OpLt:
			return graph.Bool(ln < rn)
		case ast.OpLe:
			return graph.Bool(ln <= rn)
		case ast.OpGt:
			return graph.Bool(ln > rn)
		case ast.OpGe:
			return graph.Bool(ln >= rn)
		}
	case ast.OpIn:
		if right.Kind == graph.ListVal {
			return graph.Bool(e.listContains(right.L, left))
		}
		return graph.Bool(e.valuesEqual(left, right))
	case ast.OpContains:
		if left.Kind == graph.StringVal && right.Kind == graph.StringVal {
			return graph.Bool(strings.Contains(left.S, right.S))
		}
		if left.Kind == graph.ListVal {
			return graph.Bool(e.listContains(left.L, right))
		}
		return graph.Bool(false)
	case ast.OpStartsWith:
		if left.Kind == graph.StringVal && right.Kind == graph.StringVal {
			return graph.Bool(strings.HasPrefix(left.S, right.S))
		}
		return graph.Bool(false)
	case ast.OpEndsWith:
		if left.Kind == graph.StringVal && right.Kind == graph.StringVal {
			return graph.Bool(strings.HasSuffix(left.S, right.S))
		}
		return graph.Bool(false)
	}
	return graph.Bool(false)
}

func (e *Evaluator) listContains(list []graph.Value, target graph.Value) bool {
	return ListContains(list, target, e.Opts.EnableTypeCoercion)
}

func (e *Evaluator) valuesEqual(a, b graph.Value) bool {
	return ValuesEqual(a, b, e.Opts.EnableTypeCoercion)
}

func (e *Evaluator) asNumber(v graph.Value) (float64, bool) {
	return AsNumber(v, e.Opts.EnableTypeCoercion)
}

// ListContains reports whether target appears in list under the given
// coercion policy. Exported so the pattern matcher's property matching
// (a scalar expected value matches if the actual is a list containing
// it) can reuse the exact same equality rule.
func ListContains(list []graph.Value, target graph.Value, coerce bool) bool {
	for _, item := range list {
		if ValuesEqual(item, target, coerce) {
			return true
		}
	}
	return false
}

// ValuesEqual is strict equality unless coerce widens it to
// string<->number and boolean<->{0,1,"true","false"}.
func ValuesEqual(a, b graph.Value, coerce bool) bool {
	if a.Kind == b.Kind {
		return a.Equal(b)
	}
	if !coerce {
		return false
	}
	if an, ok := AsNumber(a, coerce); ok {
		if bn, ok := AsNumber(b, coerce); ok {
			return an == bn
		}
	}
	if ab, ok := asBool(a); ok {
		if bb, ok := asBool(b); ok {
			return ab == bb
		}
	}
	return false
}

// AsNumber coerces v to a float64 when possible; coerce additionally
// allows numeric strings and 0/1 booleans.
func AsNumber(v graph.Value, coerce bool) (float64, bool) {
	switch v.Kind {
	case graph.NumberVal:
		return v.N, true
	case graph.StringVal:
		if coerce {
			if n, err := strconv.ParseFloat(v.S, 64); err == nil {
				return n, true
			}
		}
	case graph.BoolVal:
		if coerce {
			if v.B {
				return 1, true
			}
			return 0, true
		}
	}
	return 0, false
}

func asBool(v graph.Value) (bool, bool) {
	switch v.Kind {
	case graph.BoolVal:
		return v.B, true
	case graph.NumberVal:
		if v.N == 0 {
			return false, true
		}
		if v.N == 1 {
			return true, true
		}
	case graph.StringVal:
		switch v.S {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
