package matcher

import (
	"github.com/corvidgraph/cyql/internal/ast"
	"github.com/corvidgraph/cyql/internal/bindings"
	"github.com/corvidgraph/cyql/internal/graph"
)

// PatternExists implements eval.PatternMatcher, backing EXISTS/NOT
// EXISTS evaluation: a start variable that is already bound to a node
// becomes the only start candidate rather than being rescanned; other
// already-bound pattern variables constrain the branch to their bound
// value.
func (m *Matcher) PatternExists(g graph.Graph, pattern ast.PathPattern, b *bindings.Context) (bool, error) {
	var startIDs []graph.NodeID
	if pattern.Start.Variable != "" {
		if v, ok := b.Get(pattern.Start.Variable); ok && v.Kind == graph.NodeRefVal && v.Node != nil {
			startIDs = []graph.NodeID{v.Node.ID}
		}
	}
	paths := m.FindMatchingPaths(g, pattern, startIDs, b)
	return len(paths) > 0, nil
}
