package action

import (
	"fmt"

	"github.com/corvidgraph/cyql/internal/ast"
	"github.com/corvidgraph/cyql/internal/bindings"
	"github.com/corvidgraph/cyql/internal/eval"
	"github.com/corvidgraph/cyql/internal/graph"
)

// CreateRelationship adds an edge between two already-bound nodes.
// Variable is optional: the triple-form CREATE may leave the
// relationship unnamed.
type CreateRelationship struct {
	FromVar    string
	ToVar      string
	RelType    string
	Properties map[string]ast.Expression
	Variable   string

	from, to graph.NodeID
	executed bool
}

func (a *CreateRelationship) Validate(g graph.Graph, ev *eval.Evaluator, b *bindings.Context) error {
	from, ok := b.Get(a.FromVar)
	if !ok || from.Kind != graph.NodeRefVal || from.Node == nil {
		return errWrongKind(a.FromVar)
	}
	to, ok := b.Get(a.ToVar)
	if !ok || to.Kind != graph.NodeRefVal || to.Node == nil {
		return errWrongKind(a.ToVar)
	}
	if a.Variable != "" && b.Has(a.Variable) {
		return errAlreadyBound(a.Variable)
	}
	if a.RelType == "" {
		return errEmptyRelType()
	}
	return nil
}

func (a *CreateRelationship) Execute(g graph.Graph, ev *eval.Evaluator, b *bindings.Context) (Result, error) {
	if err := a.Validate(g, ev, b); err != nil {
		return Result{}, err
	}
	fromVal, _ := b.Get(a.FromVar)
	toVal, _ := b.Get(a.ToVar)
	data := make(map[string]graph.Value, len(a.Properties))
	for k, expr := range a.Properties {
		data[k] = ev.Evaluate(expr, b)
	}
	e, err := g.AddEdge(fromVal.Node.ID, toVal.Node.ID, a.RelType, data)
	if err != nil {
		return Result{}, err
	}
	a.from, a.to = fromVal.Node.ID, toVal.Node.ID
	a.executed = true
	if a.Variable != "" {
		b.Set(a.Variable, graph.EdgeRef(e))
	}
	return Result{Success: true, AffectedEdges: []*graph.Edge{e}}, nil
}

func (a *CreateRelationship) Describe() string {
	return fmt.Sprintf("CREATE (%s)-[:%s]->(%s)", a.FromVar, a.RelType, a.ToVar)
}

func (a *CreateRelationship) Inverse() Action {
	if !a.executed {
		return nil
	}
	return &removeEdge{source: a.from, target: a.to, label: a.RelType}
}

// removeEdge is CreateRelationship's inverse.
type removeEdge struct {
	source, target graph.NodeID
	label          string
}

func (r *removeEdge) Validate(graph.Graph, *eval.Evaluator, *bindings.Context) error { return nil }

func (r *removeEdge) Execute(g graph.Graph, _ *eval.Evaluator, _ *bindings.Context) (Result, error) {
	if err := g.RemoveEdge(r.source, r.target, r.label); err != nil {
		return Result{}, err
	}
	return Result{Success: true}, nil
}

func (r *removeEdge) Describe() string {
	return fmt.Sprintf("rollback: remove edge %s-[:%s]->%s", r.source, r.label, r.target)
}
func (r *removeEdge) Inverse() Action { return nil }
