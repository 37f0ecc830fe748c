// Package matcher implements node/relationship/path matching over a
// graph.Graph and the pushdown-aware ExecuteMatch that drives
// MATCH-WHERE with per-pattern filtering and cross-product.
package matcher

import (
	"strings"

	"github.com/corvidgraph/cyql/internal/eval"
	"github.com/corvidgraph/cyql/internal/graph"
	"go.uber.org/zap"
)

// Options mirrors the pattern matcher's option set.
type Options struct {
	CaseSensitiveLabels bool
	EnableTypeCoercion  bool
	MaxPathDepth        uint32
	MaxPathResults      int
}

// DefaultOptions returns the documented option defaults.
func DefaultOptions() Options {
	return Options{MaxPathDepth: 10, MaxPathResults: 1000}
}

// Matcher owns the label/type caches and, once wired, the evaluator used
// for EXISTS and opportunistic WHERE pushdown during BFS.
// Eval is set after construction (via SetEvaluator) because eval.Evaluator
// itself needs a Matcher for EXISTS, and the two types break that cycle
// through the eval.PatternMatcher interface rather than a package import.
type Matcher struct {
	Options Options
	Eval    *eval.Evaluator
	Logger  *zap.Logger

	labelCache map[string][]graph.NodeID
	typeCache  map[string][]graph.EdgeKey
}

// New constructs a Matcher with empty caches and a no-op logger; callers
// that want diagnostic output for safety truncations call SetLogger.
func New(opts Options) *Matcher {
	return &Matcher{Options: opts, Logger: zap.NewNop()}
}

// SetEvaluator wires the evaluator used for EXISTS substitution and
// opportunistic predicate pushdown. Required before calling ExecuteMatch
// with a non-nil WHERE clause or a pattern containing EXISTS.
func (m *Matcher) SetEvaluator(e *eval.Evaluator) {
	m.Eval = e
}

// SetLogger overrides the no-op default. Safety truncations are not
// errors and must not surface as one, only be observable via logging.
func (m *Matcher) SetLogger(l *zap.Logger) {
	m.Logger = l
}

func (m *Matcher) normalizeLabel(s string) string {
	if m.Options.CaseSensitiveLabels {
		return s
	}
	return strings.ToLower(s)
}
