package action

import (
	"testing"

	"github.com/corvidgraph/cyql/internal/ast"
	"github.com/corvidgraph/cyql/internal/bindings"
	"github.com/corvidgraph/cyql/internal/eval"
	"github.com/corvidgraph/cyql/internal/graph"
	"github.com/stretchr/testify/require"
)

func newEval(g graph.Graph) *eval.Evaluator {
	return eval.New(g, nil, eval.Options{})
}

func litStr(s string) ast.Expression  { return ast.Literal{Value: graph.String(s)} }
func litNum(n float64) ast.Expression { return ast.Literal{Value: graph.Number(n)} }

func TestCreateNodeBindsVariableAndMintsID(t *testing.T) {
	g := graph.NewMemGraph()
	b := bindings.New()
	ev := newEval(g)

	a := &CreateNode{Variable: "p", Labels: []string{"Person"}, Properties: map[string]ast.Expression{"name": litStr("alice")}}
	res, err := a.Execute(g, ev, b)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.AffectedNodes, 1)

	v, ok := b.Get("p")
	require.True(t, ok)
	require.Equal(t, graph.NodeRefVal, v.Kind)
	require.Equal(t, "alice", v.Node.Data["name"].S)
}

func TestCreateNodeValidateRejectsAlreadyBoundVariable(t *testing.T) {
	g := graph.NewMemGraph()
	b := bindings.New()
	b.Set("p", graph.Number(1))
	ev := newEval(g)

	a := &CreateNode{Variable: "p", Labels: []string{"Person"}}
	require.Error(t, a.Validate(g, ev, b))
}

func TestCreateNodeInverseRemovesNode(t *testing.T) {
	g := graph.NewMemGraph()
	b := bindings.New()
	ev := newEval(g)

	a := &CreateNode{Variable: "p", Labels: []string{"Person"}}
	_, err := a.Execute(g, ev, b)
	require.NoError(t, err)

	v, _ := b.Get("p")
	require.True(t, g.HasNode(v.Node.ID))

	inv := a.Inverse()
	require.NotNil(t, inv)
	_, err = inv.Execute(g, ev, b)
	require.NoError(t, err)
	require.False(t, g.HasNode(v.Node.ID))
}

func TestCreateRelationshipRequiresBoundEndpoints(t *testing.T) {
	g := graph.NewMemGraph()
	b := bindings.New()
	ev := newEval(g)

	a := &CreateRelationship{FromVar: "a", ToVar: "b", RelType: "KNOWS"}
	require.Error(t, a.Validate(g, ev, b))
}

func TestCreateRelationshipExecuteAndInverse(t *testing.T) {
	g := graph.NewMemGraph()
	n1, _ := g.AddNode("a", "Person", nil)
	n2, _ := g.AddNode("b", "Person", nil)
	b := bindings.New()
	b.Set("a", graph.NodeRef(n1))
	b.Set("b", graph.NodeRef(n2))
	ev := newEval(g)

	act := &CreateRelationship{FromVar: "a", ToVar: "b", RelType: "KNOWS", Variable: "r"}
	res, err := act.Execute(g, ev, b)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.True(t, g.HasEdge("a", "b", "KNOWS"))

	inv := act.Inverse()
	_, err = inv.Execute(g, ev, b)
	require.NoError(t, err)
	require.False(t, g.HasEdge("a", "b", "KNOWS"))
}

func TestSetPropertyMergesIntoNodeData(t *testing.T) {
	g := graph.NewMemGraph()
	n, _ := g.AddNode("a", "Person", map[string]graph.Value{"name": graph.String("alice")})
	b := bindings.New()
	b.Set("p", graph.NodeRef(n))
	ev := newEval(g)

	act := &SetProperty{TargetVar: "p", Property: "age", Value: litNum(30)}
	res, err := act.Execute(g, ev, b)
	require.NoError(t, err)
	require.True(t, res.Success)

	updated, _ := g.GetNode("a")
	require.Equal(t, float64(30), updated.Data["age"].N)
	require.Equal(t, "alice", updated.Data["name"].S)
}

func TestSetPropertyInverseIsUnsupported(t *testing.T) {
	act := &SetProperty{TargetVar: "p", Property: "age", Value: litNum(30)}
	require.Nil(t, act.Inverse())
}

func TestDeleteNodeWithoutDetachFailsWhenEdgesExist(t *testing.T) {
	g := graph.NewMemGraph()
	n1, _ := g.AddNode("a", "Person", nil)
	_, _ = g.AddNode("b", "Person", nil)
	_, _ = g.AddEdge("a", "b", "KNOWS", nil)
	b := bindings.New()
	b.Set("p", graph.NodeRef(n1))
	ev := newEval(g)

	act := &Delete{Variable: "p", Detach: false}
	_, err := act.Execute(g, ev, b)
	require.Error(t, err)
	require.True(t, g.HasNode("a"))
}

func TestDetachDeleteRemovesIncidentEdgesThenNode(t *testing.T) {
	g := graph.NewMemGraph()
	n1, _ := g.AddNode("a", "Person", nil)
	_, _ = g.AddNode("b", "Person", nil)
	_, _ = g.AddEdge("a", "b", "KNOWS", nil)
	b := bindings.New()
	b.Set("p", graph.NodeRef(n1))
	ev := newEval(g)

	act := &Delete{Variable: "p", Detach: true}
	res, err := act.Execute(g, ev, b)
	require.NoError(t, err)
	require.Len(t, res.AffectedEdges, 1)
	require.False(t, g.HasNode("a"))
	require.False(t, g.HasEdge("a", "b", "KNOWS"))

	v, ok := b.Get("p")
	require.True(t, ok)
	require.Equal(t, graph.NullVal, v.Kind)
}

func TestDetachDeleteInverseRestoresNodeAndEdges(t *testing.T) {
	g := graph.NewMemGraph()
	n1, _ := g.AddNode("a", "Person", map[string]graph.Value{"name": graph.String("alice")})
	_, _ = g.AddNode("b", "Person", nil)
	_, _ = g.AddEdge("a", "b", "KNOWS", map[string]graph.Value{"since": graph.Number(2020)})
	b := bindings.New()
	b.Set("p", graph.NodeRef(n1))
	ev := newEval(g)

	act := &Delete{Variable: "p", Detach: true}
	_, err := act.Execute(g, ev, b)
	require.NoError(t, err)

	inv := act.Inverse()
	require.NotNil(t, inv)
	_, err = inv.Execute(g, ev, b)
	require.NoError(t, err)
	require.True(t, g.HasNode("a"))
	require.True(t, g.HasEdge("a", "b", "KNOWS"))
	restored, _ := g.GetNode("a")
	require.Equal(t, "alice", restored.Data["name"].S)
}

func TestExecutorRollsBackOnPartialFailure(t *testing.T) {
	g := graph.NewMemGraph()
	b := bindings.New()
	ev := newEval(g)

	actions := []Action{
		&CreateNode{Variable: "p", Labels: []string{"Person"}, Properties: map[string]ast.Expression{"name": litStr("Bob")}},
		&CreateNode{Variable: "t", Labels: []string{"Task"}},
		&CreateRelationship{FromVar: "p", ToVar: "x", RelType: "WORKS_ON"},
	}

	// Up-front validation off, so both CreateNode actions execute before
	// the relationship fails and the rollback has to undo them.
	x := NewExecutor(Options{ValidateBeforeExecute: false, RollbackOnFailure: true})
	result := x.Run(g, ev, b, actions)
	require.False(t, result.Success)
	require.NotEmpty(t, result.Error)
	require.Empty(t, g.GetAllNodes())
	require.Empty(t, g.GetAllEdges())
}

func TestExecutorValidateBeforeExecuteAbortsWithNoMutation(t *testing.T) {
	g := graph.NewMemGraph()
	b := bindings.New()
	ev := newEval(g)

	actions := []Action{
		&CreateNode{Variable: "p", Labels: []string{"Person"}},
		&CreateRelationship{FromVar: "p", ToVar: "ghost", RelType: "WORKS_ON"},
	}

	x := NewExecutor(DefaultOptions())
	result := x.Run(g, ev, b, actions)
	require.False(t, result.Success)
	require.Empty(t, g.GetAllNodes())
}

func TestExecutorAggregatesUniqueAffectedEntities(t *testing.T) {
	g := graph.NewMemGraph()
	b := bindings.New()
	ev := newEval(g)

	actions := []Action{
		&CreateNode{Variable: "p", Labels: []string{"Person"}},
		&CreateNode{Variable: "t", Labels: []string{"Task"}},
		&CreateRelationship{FromVar: "p", ToVar: "t", RelType: "WORKS_ON"},
	}
	x := NewExecutor(DefaultOptions())
	result := x.Run(g, ev, b, actions)
	require.True(t, result.Success)
	require.Len(t, result.AffectedNodes, 2)
	require.Len(t, result.AffectedEdges, 1)
}
