package matcher

import (
	"maps"
	"sort"

	"github.com/corvidgraph/cyql/internal/ast"
	"github.com/corvidgraph/cyql/internal/bindings"
	"github.com/corvidgraph/cyql/internal/eval"
	"github.com/corvidgraph/cyql/internal/graph"
)

// ExecuteMatch analyzes WHERE once, matches each comma-separated
// pattern independently with single-variable predicates pushed into the
// BFS, computes the Cartesian product across patterns, and filters by
// the residual multi-variable predicates.
func (m *Matcher) ExecuteMatch(g graph.Graph, patterns []ast.PathPattern, where ast.Expression) ([]*bindings.Context, error) {
	declared := map[string]bool{}
	for _, p := range patterns {
		for _, v := range p.Variables() {
			declared[v] = true
		}
	}

	analysis := eval.Analysis{SingleVar: map[string][]ast.Expression{}}
	if where != nil {
		analysis = eval.AnalyzeWhere(where)
		for v := range analysis.SingleVar {
			if !declared[v] {
				return nil, errUndeclaredVariable(v)
			}
		}
		for _, expr := range analysis.MultiVar {
			for v := range eval.FreeVars(expr) {
				if !declared[v] {
					return nil, errUndeclaredVariable(v)
				}
			}
		}
	}

	root := bindings.New()
	perPattern := make([][]*bindings.Context, len(patterns))
	for i, p := range patterns {
		constrain := m.buildConstrain(analysis.SingleVar)
		paths := m.findMatchingPathsConstrained(g, p, nil, root, constrain)

		var ctxs []*bindings.Context
		seen := map[string]bool{}
		for _, path := range paths {
			key := bindingKey(p.Variables(), path.Bindings)
			if seen[key] {
				continue
			}
			seen[key] = true
			ctxs = append(ctxs, path.Bindings)
		}
		perPattern[i] = ctxs
		if len(ctxs) == 0 {
			// "If any pattern yields zero bindings, the overall result is empty."
			return nil, nil
		}
	}

	combos := cartesianProduct(perPattern)

	allVars := sortedKeys(declared)
	var final []*bindings.Context
	seenFinal := map[string]bool{}
	for _, combo := range combos {
		if !m.satisfiesResidual(analysis.MultiVar, combo) {
			continue
		}
		key := bindingKey(allVars, combo)
		if seenFinal[key] {
			continue
		}
		seenFinal[key] = true
		final = append(final, combo)
	}
	return final, nil
}

func (m *Matcher) satisfiesResidual(multiVar []ast.Expression, combo *bindings.Context) bool {
	if m.Eval == nil {
		return true
	}
	for _, expr := range multiVar {
		if !m.Eval.EvaluateCondition(expr, combo) {
			return false
		}
	}
	return true
}

// buildConstrain turns the single-var pushdown predicates into a
// constrainFunc the BFS checks at every newly bound variable.
func (m *Matcher) buildConstrain(singleVar map[string][]ast.Expression) constrainFunc {
	return func(varName string, _ graph.Value, b *bindings.Context) bool {
		preds, ok := singleVar[varName]
		if !ok || m.Eval == nil {
			return true
		}
		for _, expr := range preds {
			if !m.Eval.EvaluateCondition(expr, b) {
				return false
			}
		}
		return true
	}
}

// cartesianProduct merges per-pattern binding lists: {b1 ∪ b2 | (b1,b2) ∈ B1 × B2, ...}.
func cartesianProduct(lists [][]*bindings.Context) []*bindings.Context {
	acc := []map[string]graph.Value{{}}
	for _, list := range lists {
		var next []map[string]graph.Value
		for _, base := range acc {
			for _, item := range list {
				merged := maps.Clone(base)
				maps.Copy(merged, item.Snapshot())
				next = append(next, merged)
			}
		}
		acc = next
	}
	out := make([]*bindings.Context, 0, len(acc))
	for _, snap := range acc {
		ctx := bindings.New()
		for k, v := range snap {
			ctx.Set(k, v)
		}
		out = append(out, ctx)
	}
	return out
}

func bindingKey(vars []string, b *bindings.Context) string {
	sorted := append([]string{}, vars...)
	sort.Strings(sorted)
	key := ""
	for _, v := range sorted {
		val, ok := b.Get(v)
		if !ok {
			key += v + "=∅;"
			continue
		}
		key += v + "=" + valueIdentity(val) + ";"
	}
	return key
}

func valueIdentity(v graph.Value) string {
	switch v.Kind {
	case graph.NodeRefVal:
		if v.Node == nil {
			return "null"
		}
		return "N:" + string(v.Node.ID)
	case graph.EdgeRefVal:
		if v.Edge == nil {
			return "null"
		}
		k := v.Edge.Key()
		return "E:" + string(k.Source) + ">" + k.Label + ">" + string(k.Target)
	case graph.EdgeListRefVal:
		out := "EL:"
		for _, e := range v.Edges {
			k := e.Key()
			out += string(k.Source) + ">" + k.Label + ">" + string(k.Target) + ","
		}
		return out
	default:
		return v.String()
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
