package action

import (
	"fmt"

	"github.com/corvidgraph/cyql/internal/ast"
	"github.com/corvidgraph/cyql/internal/bindings"
	"github.com/corvidgraph/cyql/internal/eval"
	"github.com/corvidgraph/cyql/internal/graph"
	"github.com/google/uuid"
)

// CreateNode mints a unique node id, adds the node, and binds the
// variable to it.
type CreateNode struct {
	Variable   string
	Labels     []string
	Properties map[string]ast.Expression

	createdID graph.NodeID
	executed  bool
}

func (a *CreateNode) Validate(g graph.Graph, ev *eval.Evaluator, b *bindings.Context) error {
	if a.Variable != "" && b.Has(a.Variable) {
		return errAlreadyBound(a.Variable)
	}
	if len(a.Labels) == 0 {
		return errMissingLabel()
	}
	return nil
}

func (a *CreateNode) Execute(g graph.Graph, ev *eval.Evaluator, b *bindings.Context) (Result, error) {
	if err := a.Validate(g, ev, b); err != nil {
		return Result{}, err
	}
	data := make(map[string]graph.Value, len(a.Properties))
	for k, expr := range a.Properties {
		data[k] = ev.Evaluate(expr, b)
	}
	id := graph.NodeID(uuid.NewString())
	n, err := g.AddNode(id, a.Labels[0], data)
	if err != nil {
		return Result{}, err
	}
	a.createdID = id
	a.executed = true
	if a.Variable != "" {
		b.Set(a.Variable, graph.NodeRef(n))
	}
	return Result{Success: true, AffectedNodes: []*graph.Node{n}}, nil
}

func (a *CreateNode) Describe() string {
	return fmt.Sprintf("CREATE (%s:%s)", a.Variable, joinLabels(a.Labels))
}

func (a *CreateNode) Inverse() Action {
	if !a.executed {
		return nil
	}
	return &removeNode{id: a.createdID}
}

func joinLabels(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	return labels[0]
}

// removeNode is CreateNode's inverse.
type removeNode struct {
	id graph.NodeID
}

func (r *removeNode) Validate(graph.Graph, *eval.Evaluator, *bindings.Context) error { return nil }

func (r *removeNode) Execute(g graph.Graph, _ *eval.Evaluator, _ *bindings.Context) (Result, error) {
	if err := g.RemoveNode(r.id); err != nil {
		return Result{}, err
	}
	return Result{Success: true}, nil
}

func (r *removeNode) Describe() string { return fmt.Sprintf("rollback: remove node %s", r.id) }
func (r *removeNode) Inverse() Action  { return nil }
