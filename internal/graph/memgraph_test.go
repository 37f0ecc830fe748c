package graph

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemGraphAddRemoveNode(t *testing.T) {
	g := NewMemGraph()
	_, err := g.AddNode("a", "Person", map[string]Value{"name": String("Alice")})
	require.NoError(t, err)
	require.True(t, g.HasNode("a"))

	_, err = g.AddNode("a", "Person", nil)
	require.Error(t, err)

	require.NoError(t, g.RemoveNode("a"))
	require.False(t, g.HasNode("a"))
	require.Error(t, g.RemoveNode("a"))
}

func TestMemGraphEdgeMultiplicity(t *testing.T) {
	g := NewMemGraph()
	_, _ = g.AddNode("a", "N", nil)
	_, _ = g.AddNode("b", "N", nil)

	_, err := g.AddEdge("a", "b", "KNOWS", nil)
	require.NoError(t, err)
	_, err = g.AddEdge("a", "b", "LIKES", nil)
	require.NoError(t, err)
	_, err = g.AddEdge("a", "b", "KNOWS", nil)
	require.Error(t, err, "duplicate (source,target,label) must be rejected")

	require.Len(t, g.GetEdgesForNode("a", DirOut), 2)
	require.Len(t, g.GetEdgesForNode("b", DirIn), 2)
	require.Empty(t, g.GetEdgesForNode("a", DirIn))
}

func TestMemGraphRemoveNodeDropsIncidentEdges(t *testing.T) {
	g := NewMemGraph()
	_, _ = g.AddNode("a", "N", nil)
	_, _ = g.AddNode("b", "N", nil)
	_, _ = g.AddEdge("a", "b", "KNOWS", nil)

	require.NoError(t, g.RemoveNode("a"))
	require.False(t, g.HasEdge("a", "b", "KNOWS"))
	require.Empty(t, g.GetAllEdges())
}

func TestJSONRoundTrip(t *testing.T) {
	g := NewMemGraph()
	_, err := g.AddNode("a", "Person", map[string]Value{
		"age":    Number(30),
		"name":   String("Alice"),
		"active": Bool(true),
		"tags":   List([]Value{String("x"), String("y")}),
	})
	require.NoError(t, err)
	_, _ = g.AddNode("b", "Person", nil)
	_, err = g.AddEdge("a", "b", "KNOWS", map[string]Value{"since": Number(2020)})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(g, &buf))

	loaded, err := ReadJSON(&buf)
	require.NoError(t, err)

	n, ok := loaded.GetNode("a")
	require.True(t, ok)
	require.Equal(t, "Person", n.Label)
	require.True(t, n.Data["age"].Equal(Number(30)))
	require.True(t, n.Data["tags"].Equal(List([]Value{String("x"), String("y")})))

	e, ok := loaded.GetEdge("a", "b", "KNOWS")
	require.True(t, ok)
	require.True(t, e.Data["since"].Equal(Number(2020)))
}
