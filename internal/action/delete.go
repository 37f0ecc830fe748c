package action

import (
	"fmt"

	"github.com/corvidgraph/cyql/internal/bindings"
	"github.com/corvidgraph/cyql/internal/eval"
	"github.com/corvidgraph/cyql/internal/graph"
)

// Delete removes a bound node or edge: one instance per DELETE variable,
// all sharing the clause's single detach flag.
type Delete struct {
	Variable string
	Detach   bool

	removedNode  *graph.Node
	removedEdges []*graph.Edge
	removedEdge  *graph.Edge
	executed     bool
}

func (a *Delete) Validate(g graph.Graph, ev *eval.Evaluator, b *bindings.Context) error {
	v, ok := b.Get(a.Variable)
	if !ok {
		return errNotBound(a.Variable)
	}
	if v.Kind != graph.NodeRefVal && v.Kind != graph.EdgeRefVal {
		return errWrongKind(a.Variable)
	}
	return nil
}

func (a *Delete) Execute(g graph.Graph, ev *eval.Evaluator, b *bindings.Context) (Result, error) {
	if err := a.Validate(g, ev, b); err != nil {
		return Result{}, err
	}
	v, _ := b.Get(a.Variable)
	result := Result{Success: true}

	switch v.Kind {
	case graph.NodeRefVal:
		n := v.Node
		incident := g.GetEdgesForNode(n.ID, graph.DirBoth)
		if !a.Detach && len(incident) > 0 {
			return Result{}, errDetachRequired(string(n.ID))
		}
		if a.Detach {
			for _, e := range incident {
				if err := g.RemoveEdge(e.Source, e.Target, e.Label); err != nil {
					return Result{}, err
				}
				a.removedEdges = append(a.removedEdges, mergeEdge(e))
				result.AffectedEdges = append(result.AffectedEdges, e)
			}
		}
		if err := g.RemoveNode(n.ID); err != nil {
			return Result{}, err
		}
		a.removedNode = mergeNode(n)
		result.AffectedNodes = append(result.AffectedNodes, n)
	case graph.EdgeRefVal:
		e := v.Edge
		if err := g.RemoveEdge(e.Source, e.Target, e.Label); err != nil {
			return Result{}, err
		}
		a.removedEdge = mergeEdge(e)
		result.AffectedEdges = append(result.AffectedEdges, e)
	}

	a.executed = true
	b.Set(a.Variable, graph.Null())
	return result, nil
}

func (a *Delete) Describe() string {
	if a.Detach {
		return fmt.Sprintf("DETACH DELETE %s", a.Variable)
	}
	return fmt.Sprintf("DELETE %s", a.Variable)
}

func (a *Delete) Inverse() Action {
	if !a.executed {
		return nil
	}
	return &restoreDeleted{node: a.removedNode, edges: a.removedEdges, edge: a.removedEdge}
}

// restoreDeleted is Delete's inverse: re-add the captured node (with
// its labels+data), then its captured incident edges, or a single
// captured edge.
type restoreDeleted struct {
	node  *graph.Node
	edges []*graph.Edge
	edge  *graph.Edge
}

func (r *restoreDeleted) Validate(graph.Graph, *eval.Evaluator, *bindings.Context) error { return nil }

func (r *restoreDeleted) Execute(g graph.Graph, _ *eval.Evaluator, _ *bindings.Context) (Result, error) {
	result := Result{Success: true}
	if r.node != nil {
		n, err := g.AddNode(r.node.ID, r.node.Label, r.node.Data)
		if err != nil {
			return Result{}, err
		}
		result.AffectedNodes = append(result.AffectedNodes, n)
	}
	for _, e := range r.edges {
		re, err := g.AddEdge(e.Source, e.Target, e.Label, e.Data)
		if err != nil {
			return Result{}, err
		}
		result.AffectedEdges = append(result.AffectedEdges, re)
	}
	if r.edge != nil {
		re, err := g.AddEdge(r.edge.Source, r.edge.Target, r.edge.Label, r.edge.Data)
		if err != nil {
			return Result{}, err
		}
		result.AffectedEdges = append(result.AffectedEdges, re)
	}
	return result, nil
}

func (r *restoreDeleted) Describe() string { return "rollback: restore deleted entity" }
func (r *restoreDeleted) Inverse() Action  { return nil }
