package graph

import "fmt"

// Error is the Kind/Message tagged error shape used across the module.
type Error struct {
	Kind    string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("graph error (%v): %v", e.Kind, e.Message)
}

func ErrNodeExists(id NodeID) error {
	return Error{Kind: "NodeAlreadyExists", Message: fmt.Sprintf("node %v already exists", id)}
}

func ErrNodeMissing(id NodeID) error {
	return Error{Kind: "NodeDoesNotExist", Message: fmt.Sprintf("node %v does not exist", id)}
}

func ErrEdgeExists(k EdgeKey) error {
	return Error{Kind: "EdgeAlreadyExists", Message: fmt.Sprintf("edge %s-%s->%s already exists", k.Source, k.Label, k.Target)}
}

func ErrEdgeMissing(k EdgeKey) error {
	return Error{Kind: "EdgeDoesNotExist", Message: fmt.Sprintf("edge %s-%s->%s does not exist", k.Source, k.Label, k.Target)}
}
