package matcher

import "github.com/corvidgraph/cyql/internal/graph"

// ClearCache drops the label and relationship-type caches. Callers must
// invoke it whenever the underlying graph's set of labels/types changes —
// property lookups always go through the graph directly, so only
// identity membership is ever cached.
func (m *Matcher) ClearCache() {
	m.labelCache = nil
	m.typeCache = nil
}

func (m *Matcher) ensureLabelCache(g graph.Graph) {
	if m.labelCache != nil {
		return
	}
	m.labelCache = map[string][]graph.NodeID{}
	for _, n := range g.GetAllNodes() {
		key := m.normalizeLabel(n.Label)
		m.labelCache[key] = append(m.labelCache[key], n.ID)
	}
}

func (m *Matcher) ensureTypeCache(g graph.Graph) {
	if m.typeCache != nil {
		return
	}
	m.typeCache = map[string][]graph.EdgeKey{}
	for _, e := range g.GetAllEdges() {
		key := m.normalizeLabel(e.Label)
		m.typeCache[key] = append(m.typeCache[key], e.Key())
	}
}

// GetNodesByLabel returns every node id carrying label, normalized per
// CaseSensitiveLabels.
func (m *Matcher) GetNodesByLabel(g graph.Graph, label string) []graph.NodeID {
	m.ensureLabelCache(g)
	return m.labelCache[m.normalizeLabel(label)]
}

// GetEdgesByType returns the keys of every edge carrying relType, normalized
// per CaseSensitiveLabels the same way GetNodesByLabel normalizes labels.
func (m *Matcher) GetEdgesByType(g graph.Graph, relType string) []graph.EdgeKey {
	m.ensureTypeCache(g)
	return m.typeCache[m.normalizeLabel(relType)]
}
