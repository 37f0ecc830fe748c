package main

import (
	"testing"

	"github.com/corvidgraph/cyql"
	"github.com/stretchr/testify/require"
)

func TestSessionCreateUseList(t *testing.T) {
	s := &session{graphs: make(map[string]*cyql.CyQL), opts: cyql.DefaultOptions()}
	s.create("a")
	require.Equal(t, "a", s.active)

	s.create("b")
	require.Equal(t, "a", s.active, "active graph should not change once set")
	require.Len(t, s.graphs, 2)

	_, ok := s.graphs["b"]
	require.True(t, ok)
}

func TestSessionQueryAgainstActiveGraph(t *testing.T) {
	s := &session{graphs: make(map[string]*cyql.CyQL), opts: cyql.DefaultOptions()}
	s.create("g")
	res := s.graphs[s.active].Query(`CREATE (p:Person {name:"ada"})`)
	require.True(t, res.Success, res.Error)
}
