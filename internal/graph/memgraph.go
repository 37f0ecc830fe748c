package graph

import (
	"maps"
	"slices"
)

// MemGraph is an in-memory adjacency-list implementation of Graph, used by
// tests, the CLI, and the server demo. The graph container itself is
// treated as an external collaborator by the query pipeline — but
// something has to play that role when this module runs standalone.
//
// A node map, a global edge map keyed by identity, and per-node out/in
// adjacency maps, keyed by (source,target,label) so parallel edges of
// different labels between the same two nodes coexist.
type MemGraph struct {
	nodes map[NodeID]*Node
	edges map[EdgeKey]*Edge
	out   map[NodeID]map[EdgeKey]*Edge
	in    map[NodeID]map[EdgeKey]*Edge
}

func NewMemGraph() *MemGraph {
	return &MemGraph{
		nodes: make(map[NodeID]*Node),
		edges: make(map[EdgeKey]*Edge),
		out:   make(map[NodeID]map[EdgeKey]*Edge),
		in:    make(map[NodeID]map[EdgeKey]*Edge),
	}
}

func (g *MemGraph) GetNode(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *MemGraph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

func (g *MemGraph) AddNode(id NodeID, label string, data map[string]Value) (*Node, error) {
	if g.HasNode(id) {
		return nil, ErrNodeExists(id)
	}
	n := &Node{ID: id, Label: label, Data: maps.Clone(data)}
	g.nodes[id] = n
	g.out[id] = make(map[EdgeKey]*Edge)
	g.in[id] = make(map[EdgeKey]*Edge)
	return n, nil
}

func (g *MemGraph) UpdateNodeData(id NodeID, data map[string]Value) error {
	n, ok := g.nodes[id]
	if !ok {
		return ErrNodeMissing(id)
	}
	if n.Data == nil {
		n.Data = make(map[string]Value)
	}
	maps.Copy(n.Data, data)
	return nil
}

func (g *MemGraph) RemoveNode(id NodeID) error {
	if !g.HasNode(id) {
		return ErrNodeMissing(id)
	}
	for k := range g.out[id] {
		delete(g.in[k.Target], k)
		delete(g.edges, k)
	}
	for k := range g.in[id] {
		delete(g.out[k.Source], k)
		delete(g.edges, k)
	}
	delete(g.out, id)
	delete(g.in, id)
	delete(g.nodes, id)
	return nil
}

func (g *MemGraph) GetEdge(source, target NodeID, label string) (*Edge, bool) {
	e, ok := g.edges[EdgeKey{Source: source, Target: target, Label: label}]
	return e, ok
}

func (g *MemGraph) HasEdge(source, target NodeID, label string) bool {
	_, ok := g.edges[EdgeKey{Source: source, Target: target, Label: label}]
	return ok
}

func (g *MemGraph) AddEdge(source, target NodeID, label string, data map[string]Value) (*Edge, error) {
	if !g.HasNode(source) {
		return nil, ErrNodeMissing(source)
	}
	if !g.HasNode(target) {
		return nil, ErrNodeMissing(target)
	}
	key := EdgeKey{Source: source, Target: target, Label: label}
	if g.HasEdge(source, target, label) {
		return nil, ErrEdgeExists(key)
	}
	e := &Edge{Source: source, Target: target, Label: label, Data: maps.Clone(data)}
	g.edges[key] = e
	g.out[source][key] = e
	g.in[target][key] = e
	return e, nil
}

func (g *MemGraph) UpdateEdge(source, target NodeID, label string, data map[string]Value) error {
	key := EdgeKey{Source: source, Target: target, Label: label}
	e, ok := g.edges[key]
	if !ok {
		return ErrEdgeMissing(key)
	}
	if e.Data == nil {
		e.Data = make(map[string]Value)
	}
	maps.Copy(e.Data, data)
	return nil
}

func (g *MemGraph) RemoveEdge(source, target NodeID, label string) error {
	key := EdgeKey{Source: source, Target: target, Label: label}
	if !g.HasEdge(source, target, label) {
		return ErrEdgeMissing(key)
	}
	delete(g.out[source], key)
	delete(g.in[target], key)
	delete(g.edges, key)
	return nil
}

func (g *MemGraph) GetEdgesForNode(id NodeID, dir Direction) []*Edge {
	var result []*Edge
	if dir == DirOut || dir == DirBoth {
		result = append(result, slices.Collect(maps.Values(g.out[id]))...)
	}
	if dir == DirIn || dir == DirBoth {
		result = append(result, slices.Collect(maps.Values(g.in[id]))...)
	}
	return result
}

func (g *MemGraph) FindNodes(pred func(*Node) bool) []*Node {
	var result []*Node
	for _, n := range g.nodes {
		if pred(n) {
			result = append(result, n)
		}
	}
	return result
}

func (g *MemGraph) FindEdges(pred func(*Edge) bool) []*Edge {
	var result []*Edge
	for _, e := range g.edges {
		if pred(e) {
			result = append(result, e)
		}
	}
	return result
}

func (g *MemGraph) GetAllNodes() []*Node {
	return slices.Collect(maps.Values(g.nodes))
}

func (g *MemGraph) GetAllEdges() []*Edge {
	return slices.Collect(maps.Values(g.edges))
}
