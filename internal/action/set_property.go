package action

import (
	"fmt"

	"github.com/corvidgraph/cyql/internal/ast"
	"github.com/corvidgraph/cyql/internal/bindings"
	"github.com/corvidgraph/cyql/internal/eval"
	"github.com/corvidgraph/cyql/internal/graph"
)

// SetProperty updates a single property on a bound node or edge. Its
// Inverse is unsupported: the executor does not capture the prior
// value, so a SET cannot be rolled back on a later action's failure.
type SetProperty struct {
	TargetVar string
	Property  string
	Value     ast.Expression
}

func (a *SetProperty) Validate(g graph.Graph, ev *eval.Evaluator, b *bindings.Context) error {
	v, ok := b.Get(a.TargetVar)
	if !ok {
		return errNotBound(a.TargetVar)
	}
	if v.Kind != graph.NodeRefVal && v.Kind != graph.EdgeRefVal {
		return errWrongKind(a.TargetVar)
	}
	return nil
}

func (a *SetProperty) Execute(g graph.Graph, ev *eval.Evaluator, b *bindings.Context) (Result, error) {
	if err := a.Validate(g, ev, b); err != nil {
		return Result{}, err
	}
	v, _ := b.Get(a.TargetVar)
	value := ev.Evaluate(a.Value, b)
	patch := map[string]graph.Value{a.Property: value}

	switch v.Kind {
	case graph.NodeRefVal:
		if err := g.UpdateNodeData(v.Node.ID, patch); err != nil {
			return Result{}, err
		}
		n, _ := g.GetNode(v.Node.ID)
		b.Set(a.TargetVar, graph.NodeRef(n))
		return Result{Success: true, AffectedNodes: []*graph.Node{n}}, nil
	case graph.EdgeRefVal:
		if err := g.UpdateEdge(v.Edge.Source, v.Edge.Target, v.Edge.Label, patch); err != nil {
			return Result{}, err
		}
		e, _ := g.GetEdge(v.Edge.Source, v.Edge.Target, v.Edge.Label)
		b.Set(a.TargetVar, graph.EdgeRef(e))
		return Result{Success: true, AffectedEdges: []*graph.Edge{e}}, nil
	default:
		return Result{}, errWrongKind(a.TargetVar)
	}
}

func (a *SetProperty) Describe() string {
	return fmt.Sprintf("SET %s.%s = ...", a.TargetVar, a.Property)
}

// Inverse always returns nil: SET is not reversible in this design.
func (a *SetProperty) Inverse() Action { return nil }
