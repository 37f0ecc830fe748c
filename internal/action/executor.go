package action

import (
	"github.com/corvidgraph/cyql/internal/bindings"
	"github.com/corvidgraph/cyql/internal/eval"
	"github.com/corvidgraph/cyql/internal/graph"
)

// Options configures the Executor.
type Options struct {
	ValidateBeforeExecute bool
	RollbackOnFailure     bool
}

// DefaultOptions matches the query engine's per-binding executor call,
// which always runs with both enabled.
func DefaultOptions() Options {
	return Options{ValidateBeforeExecute: true, RollbackOnFailure: true}
}

// ExecutorResult aggregates one Executor run: per-action results plus
// the deduplicated affected-entity sets the caller's Result needs.
type ExecutorResult struct {
	Success       bool
	Error         string
	ActionResults []Result
	AffectedNodes []*graph.Node
	AffectedEdges []*graph.Edge
}

// Executor runs an ordered action list transactionally: optional
// up-front validation, and inverse-order rollback of previously
// succeeded actions on failure.
type Executor struct {
	Options Options
}

func NewExecutor(opts Options) *Executor {
	return &Executor{Options: opts}
}

func (x *Executor) Run(g graph.Graph, ev *eval.Evaluator, b *bindings.Context, actions []Action) ExecutorResult {
	if x.Options.ValidateBeforeExecute {
		// Validated on a scratch child so a later action referencing a
		// variable an earlier CREATE in this same list will declare
		// (but hasn't executed yet) sees it as bound, without ever
		// touching the graph or the caller's real bindings.
		scratch := b.Child()
		for _, a := range actions {
			if err := a.Validate(g, ev, scratch); err != nil {
				return ExecutorResult{Success: false, Error: err.Error()}
			}
			simulateBind(scratch, a)
		}
	}

	var succeeded []Action
	var results []Result
	for _, a := range actions {
		res, err := a.Execute(g, ev, b)
		if err != nil {
			results = append(results, Result{Success: false, Error: err.Error()})
			if x.Options.RollbackOnFailure {
				x.rollback(g, ev, b, succeeded)
			}
			return ExecutorResult{
				Success:       false,
				Error:         err.Error(),
				ActionResults: results,
			}
		}
		results = append(results, res)
		succeeded = append(succeeded, a)
	}

	return ExecutorResult{
		Success:       true,
		ActionResults: results,
		AffectedNodes: dedupNodes(results),
		AffectedEdges: dedupEdges(results),
	}
}

// rollback applies the inverse of each succeeded action in reverse
// order; an action with no inverse (SetProperty) is skipped, matching
// the documented unreversible-SET limitation.
func (x *Executor) rollback(g graph.Graph, ev *eval.Evaluator, b *bindings.Context, succeeded []Action) {
	for i := len(succeeded) - 1; i >= 0; i-- {
		inv := succeeded[i].Inverse()
		if inv == nil {
			continue
		}
		_, _ = inv.Execute(g, ev, b)
	}
}

// simulateBind mirrors the variable-binding side effect of a successful
// CreateNode/CreateRelationship Execute, using placeholder entities that
// never touch the graph. It lets the up-front validate pass see a
// variable a preceding CREATE in the same list will declare as already
// bound, without requiring actions to run out of order.
func simulateBind(b *bindings.Context, a Action) {
	switch act := a.(type) {
	case *CreateNode:
		if act.Variable != "" && !b.Has(act.Variable) {
			b.Set(act.Variable, graph.NodeRef(&graph.Node{ID: "__pending__"}))
		}
	case *CreateRelationship:
		if act.Variable != "" && !b.Has(act.Variable) {
			b.Set(act.Variable, graph.EdgeRef(&graph.Edge{Source: "__pending__", Target: "__pending__", Label: act.RelType}))
		}
	}
}

func dedupNodes(results []Result) []*graph.Node {
	seen := map[graph.NodeID]bool{}
	var out []*graph.Node
	for _, r := range results {
		for _, n := range r.AffectedNodes {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			out = append(out, n)
		}
	}
	return out
}

func dedupEdges(results []Result) []*graph.Edge {
	seen := map[graph.EdgeKey]bool{}
	var out []*graph.Edge
	for _, r := range results {
		for _, e := range r.AffectedEdges {
			k := e.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, e)
		}
	}
	return out
}
