// Package action implements the CREATE / SET / DELETE mutation set:
// four action kinds sharing one contract, plus a transactional Executor
// that rolls back CREATE/DELETE side effects on failure.
package action

import (
	"github.com/corvidgraph/cyql/internal/bindings"
	"github.com/corvidgraph/cyql/internal/eval"
	"github.com/corvidgraph/cyql/internal/graph"
)

// Result is one action's outcome, aggregated by the Executor into the
// query engine's per-binding action_results.
type Result struct {
	Success       bool
	Error         string
	AffectedNodes []*graph.Node
	AffectedEdges []*graph.Edge
}

// Action is the uniform, polymorphic contract every CREATE/SET/DELETE
// variant implements.
type Action interface {
	Validate(g graph.Graph, ev *eval.Evaluator, b *bindings.Context) error
	Execute(g graph.Graph, ev *eval.Evaluator, b *bindings.Context) (Result, error)
	Describe() string
	// Inverse returns the action that undoes this one's graph mutation,
	// built from state captured during Execute. It returns nil when the
	// action has not been executed successfully yet or, for
	// SetProperty, because the action documents itself as unreversible.
	Inverse() Action
}

func mergeNode(n *graph.Node) *graph.Node {
	cp := &graph.Node{ID: n.ID, Label: n.Label, Data: make(map[string]graph.Value, len(n.Data))}
	for k, v := range n.Data {
		cp.Data[k] = v
	}
	return cp
}

func mergeEdge(e *graph.Edge) *graph.Edge {
	cp := &graph.Edge{Source: e.Source, Target: e.Target, Label: e.Label, Data: make(map[string]graph.Value, len(e.Data))}
	for k, v := range e.Data {
		cp.Data[k] = v
	}
	return cp
}
