package matcher

import (
	"maps"

	"github.com/corvidgraph/cyql/internal/ast"
	"github.com/corvidgraph/cyql/internal/bindings"
	"github.com/corvidgraph/cyql/internal/graph"
	"go.uber.org/zap"
)

// PathSegment is one traversed (relationship, node) hop of a completed
// path. Edges holds every edge consumed by that segment: exactly one for
// a fixed-length relationship, the full ordered hop list for a
// variable-length one.
type PathSegment struct {
	Edges   []*graph.Edge
	EndNode *graph.Node
}

// Path is a completed match of a PathPattern, paired with the binding
// context it produced.
type Path struct {
	StartNode *graph.Node
	Segments  []PathSegment
	Bindings  *bindings.Context
}

// hardBFSIterationCeiling terminates pathologically large searches
// regardless of the configured limits. It is not user configurable —
// only max_path_depth and max_path_results are.
const hardBFSIterationCeiling = 200_000

// constrainFunc is invoked whenever a BFS branch is about to bind a
// named variable (start node, segment relationship, segment end node).
// Returning false prunes that branch without aborting sibling branches.
// FindMatchingPaths passes a constraint that always returns true;
// ExecuteMatch passes one backed by the pushdown analysis.
type constrainFunc func(varName string, val graph.Value, b *bindings.Context) bool

func alwaysAllow(string, graph.Value, *bindings.Context) bool { return true }

// FindMatchingPaths walks a single path pattern breadth-first from each
// start candidate, respecting variable-length hop ranges and the
// no-repeated-intermediate-node cycle rule. startIDs, when non-nil,
// additionally restricts start candidates to that set (used by EXISTS
// substitution).
func (m *Matcher) FindMatchingPaths(g graph.Graph, pattern ast.PathPattern, startIDs []graph.NodeID, outer *bindings.Context) []Path {
	return m.findMatchingPathsConstrained(g, pattern, startIDs, outer, alwaysAllow)
}

type bfsState struct {
	start        *graph.Node
	current      *graph.Node
	segmentIndex int
	varHop       uint32
	visited      map[graph.NodeID]bool
	bindings     *bindings.Context
	pastSegments []PathSegment
	curSegEdges  []*graph.Edge
}

func (m *Matcher) findMatchingPathsConstrained(g graph.Graph, pattern ast.PathPattern, startIDs []graph.NodeID, outer *bindings.Context, constrain constrainFunc) []Path {
	limit := m.Options.MaxPathResults
	if limit <= 0 {
		limit = 1000
	}
	maxDepth := m.Options.MaxPathDepth
	if maxDepth == 0 {
		maxDepth = 10
	}

	starts := m.FindMatchingNodes(g, pattern.Start)
	if startIDs != nil {
		allowed := map[graph.NodeID]bool{}
		for _, id := range startIDs {
			allowed[id] = true
		}
		filtered := starts[:0]
		for _, n := range starts {
			if allowed[n.ID] {
				filtered = append(filtered, n)
			}
		}
		starts = filtered
	}

	var results []Path
	seen := map[string]bool{}

	emit := func(p Path) bool {
		key := pathKey(p)
		if seen[key] {
			return true
		}
		seen[key] = true
		results = append(results, p)
		if len(results) >= limit {
			m.Logger.Debug("max_path_results reached, truncating", zap.Int("limit", limit))
			return false
		}
		return true
	}

	if len(pattern.Segments) == 0 {
		for _, n := range starts {
			b := outer.Child()
			if pattern.Start.Variable != "" {
				startVal := graph.NodeRef(n)
				if existing, ok := outer.Get(pattern.Start.Variable); ok && !existing.Equal(startVal) {
					continue
				}
				b.Set(pattern.Start.Variable, startVal)
				if !constrain(pattern.Start.Variable, startVal, b) {
					continue
				}
			}
			if !emit(Path{StartNode: n, Bindings: b}) {
				break
			}
		}
		return results
	}

	var queue []bfsState
	for _, n := range starts {
		b := outer.Child()
		if pattern.Start.Variable != "" {
			startVal := graph.NodeRef(n)
			if existing, ok := outer.Get(pattern.Start.Variable); ok && !existing.Equal(startVal) {
				continue
			}
			b.Set(pattern.Start.Variable, startVal)
			if !constrain(pattern.Start.Variable, startVal, b) {
				continue
			}
		}
		queue = append(queue, bfsState{
			start: n, current: n, segmentIndex: 0, varHop: 0,
			visited: map[graph.NodeID]bool{n.ID: true}, bindings: b,
		})
	}

	iterations := 0
	for len(queue) > 0 {
		iterations++
		if iterations > hardBFSIterationCeiling {
			m.Logger.Debug("BFS iteration ceiling reached, truncating", zap.Int("ceiling", hardBFSIterationCeiling))
			break
		}
		if len(results) >= limit {
			break
		}
		st := queue[0]
		queue = queue[1:]

		seg := pattern.Segments[st.segmentIndex]
		isLast := st.segmentIndex == len(pattern.Segments)-1
		isVariable := seg.Rel.IsVariableLength()
		maxTraversal := traversalCap(seg.Rel.MaxHops, maxDepth)
		minHops := seg.Rel.MinHops

		dir := graphDirection(seg.Rel.Direction)
		for _, e := range g.GetEdgesForNode(st.current.ID, dir) {
			neighborID, ok := neighborAcross(st.current.ID, e, seg.Rel.Direction)
			if !ok {
				continue
			}
			if !m.MatchesRelationshipPattern(e, seg.Rel) {
				continue
			}

			cyclic := st.visited[neighborID]
			newHop := st.varHop + 1
			segEdges := append(append([]*graph.Edge{}, st.curSegEdges...), e)

			if newHop >= minHops {
				neighborNode, ok := g.GetNode(neighborID)
				if ok && m.MatchesNodePattern(neighborNode, seg.Node) {
					if completed, ok := m.tryCompleteSegment(st, seg, segEdges, neighborNode, isVariable, constrain); ok {
						segResult := PathSegment{Edges: segEdges, EndNode: neighborNode}
						if isLast {
							// A completed path may close back onto its start
							// node, but never onto an intermediate one.
							if cyclic && neighborID != st.start.ID {
								continue
							}
							path := Path{
								StartNode: st.start,
								Segments:  append(append([]PathSegment{}, st.pastSegments...), segResult),
								Bindings:  completed,
							}
							if !emit(path) {
								return results
							}
						} else if !cyclic {
							queue = append(queue, bfsState{
								start: st.start, current: neighborNode,
								segmentIndex: st.segmentIndex + 1, varHop: 0,
								visited:      addVisited(st.visited, neighborID),
								bindings:     completed,
								pastSegments: append(append([]PathSegment{}, st.pastSegments...), segResult),
							})
						}
					}
				}
			}

			if cyclic {
				continue
			}
			if isVariable && newHop < maxTraversal {
				neighborNode, ok := g.GetNode(neighborID)
				if !ok {
					continue
				}
				queue = append(queue, bfsState{
					start: st.start, current: neighborNode,
					segmentIndex: st.segmentIndex, varHop: newHop,
					visited:      addVisited(st.visited, neighborID),
					bindings:     st.bindings,
					pastSegments: st.pastSegments,
					curSegEdges:  segEdges,
				})
			}
		}
	}
	return results
}

// tryCompleteSegment binds the segment's relationship and end-node
// variables (if named) into a child of st.bindings, gating each bind
// through constrain. When a variable is already bound in an ancestor
// frame (e.g. it names an outer MATCH variable reused inside an EXISTS
// sub-pattern), the branch must be constrained to that existing value
// rather than rebinding over it — otherwise an EXISTS pattern that
// reuses an already-bound non-start variable would silently match any
// candidate instead of only the one the outer context already fixed.
// Returns the child and true on success; the caller discards the trial
// child on failure.
func (m *Matcher) tryCompleteSegment(st bfsState, seg ast.Segment, segEdges []*graph.Edge, neighborNode *graph.Node, isVariable bool, constrain constrainFunc) (*bindings.Context, bool) {
	trial := st.bindings.Child()
	if seg.Rel.Variable != "" {
		var relVal graph.Value
		if isVariable {
			relVal = graph.EdgeListRef(segEdges)
		} else {
			relVal = graph.EdgeRef(segEdges[len(segEdges)-1])
		}
		if existing, ok := st.bindings.Get(seg.Rel.Variable); ok && !existing.Equal(relVal) {
			return nil, false
		}
		trial.Set(seg.Rel.Variable, relVal)
		if !constrain(seg.Rel.Variable, relVal, trial) {
			return nil, false
		}
	}
	if seg.Node.Variable != "" {
		nodeVal := graph.NodeRef(neighborNode)
		if existing, ok := st.bindings.Get(seg.Node.Variable); ok && !existing.Equal(nodeVal) {
			return nil, false
		}
		trial.Set(seg.Node.Variable, nodeVal)
		if !constrain(seg.Node.Variable, nodeVal, trial) {
			return nil, false
		}
	}
	return trial, true
}

func addVisited(v map[graph.NodeID]bool, id graph.NodeID) map[graph.NodeID]bool {
	nv := maps.Clone(v)
	nv[id] = true
	return nv
}

func traversalCap(maxSpec *uint32, depthCap uint32) uint32 {
	if maxSpec == nil {
		return depthCap
	}
	if *maxSpec < depthCap {
		return *maxSpec
	}
	return depthCap
}

func graphDirection(d ast.Direction) graph.Direction {
	switch d {
	case ast.DirOut:
		return graph.DirOut
	case ast.DirIn:
		return graph.DirIn
	default:
		return graph.DirBoth
	}
}

func neighborAcross(current graph.NodeID, e *graph.Edge, d ast.Direction) (graph.NodeID, bool) {
	switch d {
	case ast.DirOut:
		if e.Source == current {
			return e.Target, true
		}
		return "", false
	case ast.DirIn:
		if e.Target == current {
			return e.Source, true
		}
		return "", false
	default:
		if e.Source == current {
			return e.Target, true
		}
		if e.Target == current {
			return e.Source, true
		}
		return "", false
	}
}

// pathKey dedupes by the concatenation of node ids and (source,label,target)
// edge identifiers.
func pathKey(p Path) string {
	key := "N:" + string(p.StartNode.ID)
	for _, seg := range p.Segments {
		for _, e := range seg.Edges {
			key += "|E:" + string(e.Source) + ">" + e.Label + ">" + string(e.Target)
		}
		key += "|N:" + string(seg.EndNode.ID)
	}
	return key
}
