package queryengine

import "github.com/corvidgraph/cyql/internal/graph"

// Result carries a query's outcome: success/failure, how many bindings
// matched, any action results, and the RETURN projection (Columns/Rows
// are empty when the statement carries no RETURN clause).
type Result struct {
	Success    bool
	Statement  string
	MatchCount int
	Error      string
	Actions    *ActionsResult
	Columns    []string
	Rows       [][]graph.Value
}

// ActionsResult carries one entry per executed action across every
// binding context the MATCH (or the single implicit binding for a
// MATCH-less statement) produced.
type ActionsResult struct {
	ActionResults []ActionResultEntry
}

type ActionResultEntry struct {
	Success       bool
	Error         string
	AffectedNodes []*graph.Node
	AffectedEdges []*graph.Edge
}
