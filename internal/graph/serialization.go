package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Serialized envelope shapes: kind-tagged property values so round
// tripping through JSON preserves Value's discriminated union instead of
// collapsing everything to float64/string/bool via the default decoder.

type serializedValue struct {
	Kind  string `json:"kind"`
	Value any    `json:"value,omitempty"`
}

type serializedNode struct {
	ID    string                     `json:"id"`
	Label string                     `json:"label"`
	Data  map[string]serializedValue `json:"data,omitempty"`
}

type serializedEdge struct {
	Source string                     `json:"source"`
	Target string                     `json:"target"`
	Label  string                     `json:"label"`
	Data   map[string]serializedValue `json:"data,omitempty"`
}

type serializedGraph struct {
	Nodes []serializedNode `json:"nodes"`
	Edges []serializedEdge `json:"edges"`
}

func marshalValue(v Value) serializedValue {
	switch v.Kind {
	case NullVal:
		return serializedValue{Kind: "null"}
	case StringVal:
		return serializedValue{Kind: "string", Value: v.S}
	case NumberVal:
		return serializedValue{Kind: "number", Value: v.N}
	case BoolVal:
		return serializedValue{Kind: "bool", Value: v.B}
	case ListVal:
		items := make([]serializedValue, len(v.L))
		for i, item := range v.L {
			items[i] = marshalValue(item)
		}
		return serializedValue{Kind: "list", Value: items}
	default:
		return serializedValue{Kind: "unknown"}
	}
}

func unmarshalValue(sv serializedValue) (Value, error) {
	switch sv.Kind {
	case "null", "":
		return Null(), nil
	case "string":
		s, ok := sv.Value.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected string, got %T", sv.Value)
		}
		return String(s), nil
	case "number":
		n, ok := sv.Value.(float64)
		if !ok {
			return Value{}, fmt.Errorf("expected number, got %T", sv.Value)
		}
		return Number(n), nil
	case "bool":
		b, ok := sv.Value.(bool)
		if !ok {
			return Value{}, fmt.Errorf("expected bool, got %T", sv.Value)
		}
		return Bool(b), nil
	case "list":
		raw, ok := sv.Value.([]any)
		if !ok {
			return Value{}, fmt.Errorf("expected list, got %T", sv.Value)
		}
		items := make([]Value, 0, len(raw))
		for _, r := range raw {
			b, err := json.Marshal(r)
			if err != nil {
				return Value{}, err
			}
			var inner serializedValue
			if err := json.Unmarshal(b, &inner); err != nil {
				return Value{}, err
			}
			v, err := unmarshalValue(inner)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return List(items), nil
	default:
		return Value{}, fmt.Errorf("unknown value kind %q", sv.Kind)
	}
}

func marshalData(data map[string]Value) map[string]serializedValue {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]serializedValue, len(data))
	for k, v := range data {
		out[k] = marshalValue(v)
	}
	return out
}

func unmarshalData(data map[string]serializedValue) (map[string]Value, error) {
	if len(data) == 0 {
		return nil, nil
	}
	out := make(map[string]Value, len(data))
	for k, sv := range data {
		v, err := unmarshalValue(sv)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// WriteJSON serializes a graph's full node/edge set.
func WriteJSON(g Graph, w io.Writer) error {
	sg := serializedGraph{}
	for _, n := range g.GetAllNodes() {
		sg.Nodes = append(sg.Nodes, serializedNode{ID: string(n.ID), Label: n.Label, Data: marshalData(n.Data)})
	}
	for _, e := range g.GetAllEdges() {
		sg.Edges = append(sg.Edges, serializedEdge{Source: string(e.Source), Target: string(e.Target), Label: e.Label, Data: marshalData(e.Data)})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sg)
}

// ReadJSON builds a fresh MemGraph from a serialized document.
func ReadJSON(r io.Reader) (*MemGraph, error) {
	var sg serializedGraph
	if err := json.NewDecoder(r).Decode(&sg); err != nil {
		return nil, err
	}
	g := NewMemGraph()
	for _, n := range sg.Nodes {
		data, err := unmarshalData(n.Data)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		if _, err := g.AddNode(NodeID(n.ID), n.Label, data); err != nil {
			return nil, err
		}
	}
	for _, e := range sg.Edges {
		data, err := unmarshalData(e.Data)
		if err != nil {
			return nil, fmt.Errorf("edge %s-%s->%s: %w", e.Source, e.Label, e.Target, err)
		}
		if _, err := g.AddEdge(NodeID(e.Source), NodeID(e.Target), e.Label, data); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func SaveJSON(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJSON(g, f)
}

func LoadJSON(path string) (*MemGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}
