// Package cyql is the module's façade: construct an Engine over a graph,
// run query text against it, and load engine Options from YAML.
package cyql

import (
	"io"
	"os"

	"github.com/corvidgraph/cyql/internal/graph"
	"github.com/corvidgraph/cyql/internal/queryengine"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type (
	Options           = queryengine.Options
	Result            = queryengine.Result
	ActionsResult     = queryengine.ActionsResult
	ActionResultEntry = queryengine.ActionResultEntry
)

// DefaultOptions returns the documented option defaults.
func DefaultOptions() Options { return queryengine.DefaultOptions() }

// LoadOptions reads and unmarshals a YAML document of engine knobs,
// layered over DefaultOptions so an omitted field keeps its default.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	f, err := os.Open(path)
	if err != nil {
		return Options{}, err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// CyQL wraps a graph and the engine driving queries against it.
type CyQL struct {
	Graph  graph.Graph
	Engine *queryengine.Engine
}

// New builds an empty in-memory graph and wires an Engine with opts. A
// nil logger defaults to zap.NewNop().
func New(opts Options, logger *zap.Logger) *CyQL {
	g := graph.NewMemGraph()
	return &CyQL{Graph: g, Engine: queryengine.New(g, opts, logger)}
}

// Load builds a graph from a serialized JSON document and wires an
// Engine over it.
func Load(r io.Reader, opts Options, logger *zap.Logger) (*CyQL, error) {
	g, err := graph.ReadJSON(r)
	if err != nil {
		return nil, err
	}
	return &CyQL{Graph: g, Engine: queryengine.New(g, opts, logger)}, nil
}

// LoadFile is Load against a path on disk.
func LoadFile(path string, opts Options, logger *zap.Logger) (*CyQL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, opts, logger)
}

// Query runs a single Cypher-subset statement against the wrapped graph.
func (c *CyQL) Query(text string) Result {
	return c.Engine.Execute(text)
}

// Save serializes the wrapped graph's full node/edge set.
func (c *CyQL) Save(w io.Writer) error {
	return graph.WriteJSON(c.Graph, w)
}

// SaveFile is Save against a path on disk.
func (c *CyQL) SaveFile(path string) error {
	return graph.SaveJSON(c.Graph, path)
}
