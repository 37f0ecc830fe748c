// Package queryengine sequences the full query pipeline: tokenize,
// parse, match (with pushdown), materialize actions, execute
// transactionally per binding, and project RETURN items.
package queryengine

import (
	"strings"

	"github.com/corvidgraph/cyql/internal/action"
	"github.com/corvidgraph/cyql/internal/ast"
	"github.com/corvidgraph/cyql/internal/bindings"
	"github.com/corvidgraph/cyql/internal/eval"
	"github.com/corvidgraph/cyql/internal/graph"
	"github.com/corvidgraph/cyql/internal/matcher"
	"github.com/corvidgraph/cyql/internal/parser"
	"go.uber.org/zap"
)

// Options mirrors the full option set across the matcher, evaluator,
// and executor, in one place for file-based configuration.
type Options struct {
	CaseSensitiveLabels   bool   `yaml:"case_sensitive_labels"`
	EnableTypeCoercion    bool   `yaml:"enable_type_coercion"`
	MaxPathDepth          uint32 `yaml:"max_path_depth"`
	MaxPathResults        int    `yaml:"max_path_results"`
	ValidateBeforeExecute bool   `yaml:"validate_before_execute"`
	RollbackOnFailure     bool   `yaml:"rollback_on_failure"`
}

// DefaultOptions returns the documented option defaults.
func DefaultOptions() Options {
	return Options{
		MaxPathDepth:          10,
		MaxPathResults:        1000,
		ValidateBeforeExecute: true,
		RollbackOnFailure:     true,
	}
}

// Engine wires a graph with the matcher/evaluator/executor built from
// Options, plus an optional structured logger (diagnostic only, never
// affects control flow or return values).
type Engine struct {
	Graph    graph.Graph
	Matcher  *matcher.Matcher
	Eval     *eval.Evaluator
	Executor *action.Executor
	Logger   *zap.Logger
	Options  Options
}

// New wires an Engine over g. A nil logger defaults to zap.NewNop().
func New(g graph.Graph, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := matcher.New(matcher.Options{
		CaseSensitiveLabels: opts.CaseSensitiveLabels,
		EnableTypeCoercion:  opts.EnableTypeCoercion,
		MaxPathDepth:        opts.MaxPathDepth,
		MaxPathResults:      opts.MaxPathResults,
	})
	m.SetLogger(logger)
	ev := eval.New(g, m, eval.Options{EnableTypeCoercion: opts.EnableTypeCoercion})
	m.SetEvaluator(ev)
	ex := action.NewExecutor(action.Options{
		ValidateBeforeExecute: opts.ValidateBeforeExecute,
		RollbackOnFailure:     opts.RollbackOnFailure,
	})
	return &Engine{Graph: g, Matcher: m, Eval: ev, Executor: ex, Logger: logger, Options: opts}
}

// Execute runs a single query end to end: parse, match, materialize and
// run actions, then project any RETURN clause.
func (e *Engine) Execute(text string) Result {
	stmt, errs := parser.Parse(text)
	if len(errs) > 0 {
		e.Logger.Debug("parse failed", zap.Strings("errors", errs))
		return Result{Success: false, Statement: text, Error: strings.Join(errs, "; ")}
	}
	e.Logger.Debug("parsed statement", zap.Bool("has_match", stmt.Match != nil))

	bindingSets, matchCount, err := e.runMatch(stmt)
	if err != nil {
		return Result{Success: false, Statement: text, Error: err.Error()}
	}
	e.Logger.Debug("matched", zap.Int("match_count", matchCount))

	actions := materializeActions(stmt)
	res := e.runActions(text, matchCount, bindingSets, actions)

	if stmt.Return != nil {
		res.Columns, res.Rows = projectReturn(stmt.Return, bindingSets, e.Eval)
	}
	return res
}

func (e *Engine) runMatch(stmt *ast.Statement) ([]*bindings.Context, int, error) {
	if stmt.Match == nil {
		return []*bindings.Context{bindings.New()}, 1, nil
	}
	var where ast.Expression
	if stmt.Where != nil {
		where = stmt.Where.Cond
	}
	ctxs, err := e.Matcher.ExecuteMatch(e.Graph, stmt.Match.Patterns, where)
	if err != nil {
		return nil, 0, err
	}
	return ctxs, len(ctxs), nil
}

func (e *Engine) runActions(text string, matchCount int, bindingSets []*bindings.Context, actions []action.Action) Result {
	res := Result{Success: true, Statement: text, MatchCount: matchCount}
	if len(actions) == 0 {
		return res
	}

	var entries []ActionResultEntry
	for _, b := range bindingSets {
		runResult := e.Executor.Run(e.Graph, e.Eval, b, actions)
		if !runResult.Success {
			res.Success = false
			res.Error = runResult.Error
			e.Logger.Warn("action execution failed", zap.String("error", runResult.Error))
		}
		for _, r := range runResult.ActionResults {
			entries = append(entries, ActionResultEntry{
				Success:       r.Success,
				Error:         r.Error,
				AffectedNodes: r.AffectedNodes,
				AffectedEdges: r.AffectedEdges,
			})
		}
	}
	res.Actions = &ActionsResult{ActionResults: entries}
	return res
}
