package matcher

import (
	"github.com/corvidgraph/cyql/internal/ast"
	"github.com/corvidgraph/cyql/internal/eval"
	"github.com/corvidgraph/cyql/internal/graph"
)

// FindMatchingNodes implements find_matching_nodes: label-indexed lookup
// when the pattern carries a label, otherwise a full scan; either way
// filtered through MatchesNodePattern.
func (m *Matcher) FindMatchingNodes(g graph.Graph, pattern ast.NodePattern) []*graph.Node {
	var ids []graph.NodeID
	if len(pattern.Labels) > 0 {
		ids = m.GetNodesByLabel(g, pattern.Labels[0])
	} else {
		for _, n := range g.GetAllNodes() {
			ids = append(ids, n.ID)
		}
	}
	var out []*graph.Node
	for _, id := range ids {
		n, ok := g.GetNode(id)
		if !ok {
			continue
		}
		if m.MatchesNodePattern(n, pattern) {
			out = append(out, n)
		}
	}
	return out
}

// MatchesNodePattern implements matches_node_pattern: the label (when
// given) must be present, and every declared property must be present
// and equal (property-map values are always literals per the grammar).
func (m *Matcher) MatchesNodePattern(n *graph.Node, pattern ast.NodePattern) bool {
	if len(pattern.Labels) > 0 && !m.labelsEqual(n.Label, pattern.Labels[0]) {
		return false
	}
	for key, expr := range pattern.Properties {
		lit, ok := expr.(ast.Literal)
		if !ok {
			continue
		}
		actual, ok := n.Data[key]
		if !ok {
			return false
		}
		if !m.valueMatchesPattern(actual, lit.Value) {
			return false
		}
	}
	return true
}

// FindMatchingRelationships implements find_matching_relationships,
// optionally filtered by direction relative to source.
func (m *Matcher) FindMatchingRelationships(g graph.Graph, pattern ast.RelationshipPattern, source *graph.Node) []*graph.Edge {
	var candidates []*graph.Edge
	if pattern.RelType != "" {
		for _, key := range m.GetEdgesByType(g, pattern.RelType) {
			if e, ok := g.GetEdge(key.Source, key.Target, key.Label); ok {
				candidates = append(candidates, e)
			}
		}
	} else {
		candidates = g.GetAllEdges()
	}
	var out []*graph.Edge
	for _, e := range candidates {
		if source != nil && !edgeAlignsWithDirection(e, source.ID, pattern.Direction) {
			continue
		}
		if m.MatchesRelationshipPattern(e, pattern) {
			out = append(out, e)
		}
	}
	return out
}

// MatchesRelationshipPattern implements matches_relationship_pattern's
// intrinsic check: relationship type (when given) and declared
// properties. Direction relative to a specific source/target is checked
// separately by the caller (edgeAlignsWithDirection), since the same
// edge pattern is evaluated from different traversal origins during BFS.
func (m *Matcher) MatchesRelationshipPattern(e *graph.Edge, pattern ast.RelationshipPattern) bool {
	if pattern.RelType != "" && !m.labelsEqual(e.Label, pattern.RelType) {
		return false
	}
	for key, expr := range pattern.Properties {
		lit, ok := expr.(ast.Literal)
		if !ok {
			continue
		}
		actual, ok := e.Data[key]
		if !ok {
			return false
		}
		if !m.valueMatchesPattern(actual, lit.Value) {
			return false
		}
	}
	return true
}

func edgeAlignsWithDirection(e *graph.Edge, source graph.NodeID, dir ast.Direction) bool {
	switch dir {
	case ast.DirOut:
		return e.Source == source
	case ast.DirIn:
		return e.Target == source
	default:
		return e.Source == source || e.Target == source
	}
}

func (m *Matcher) labelsEqual(a, b string) bool {
	if m.Options.CaseSensitiveLabels {
		return a == b
	}
	return m.normalizeLabel(a) == m.normalizeLabel(b)
}

// valueMatchesPattern: strict equality by default; EnableTypeCoercion
// widens it; a scalar expected value matches if the actual is a list
// containing it.
func (m *Matcher) valueMatchesPattern(actual, expected graph.Value) bool {
	if actual.Kind == graph.ListVal && expected.Kind != graph.ListVal {
		return eval.ListContains(actual.L, expected, m.Options.EnableTypeCoercion)
	}
	return eval.ValuesEqual(actual, expected, m.Options.EnableTypeCoercion)
}
