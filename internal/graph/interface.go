package graph

// Graph is the external collaborator contract. The query engine only ever
// consumes this interface; it is documented here because every other
// package in this module depends on it, but its implementation (beyond
// the reference MemGraph used for tests and the CLI/server demo) is out
// of scope for the core query pipeline.
type Graph interface {
	GetNode(id NodeID) (*Node, bool)
	AddNode(id NodeID, label string, data map[string]Value) (*Node, error)
	UpdateNodeData(id NodeID, data map[string]Value) error
	RemoveNode(id NodeID) error
	HasNode(id NodeID) bool

	GetEdge(source, target NodeID, label string) (*Edge, bool)
	AddEdge(source, target NodeID, label string, data map[string]Value) (*Edge, error)
	UpdateEdge(source, target NodeID, label string, data map[string]Value) error
	RemoveEdge(source, target NodeID, label string) error
	HasEdge(source, target NodeID, label string) bool

	GetEdgesForNode(id NodeID, dir Direction) []*Edge

	FindNodes(pred func(*Node) bool) []*Node
	FindEdges(pred func(*Edge) bool) []*Edge

	GetAllNodes() []*Node
	GetAllEdges() []*Edge
}
