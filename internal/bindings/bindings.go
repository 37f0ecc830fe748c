// Package bindings implements the hierarchical variable-binding table
// used while matching a pattern and executing its actions: a child
// context's writes never leak into its parent, but reads fall back to
// the parent when the child has no binding of its own.
package bindings

import "github.com/corvidgraph/cyql/internal/graph"

// Context is one frame of a binding chain. The zero value is not usable;
// construct with New.
type Context struct {
	parent *Context
	vars   map[string]graph.Value
}

// New returns a fresh root context with no parent.
func New() *Context {
	return &Context{vars: map[string]graph.Value{}}
}

// Child returns a new context whose reads fall back to c but whose
// writes are local to it.
func (c *Context) Child() *Context {
	return &Context{parent: c, vars: map[string]graph.Value{}}
}

// Set binds name in this frame, shadowing (without mutating) any
// binding of the same name in an ancestor frame.
func (c *Context) Set(name string, v graph.Value) {
	c.vars[name] = v
}

// Get looks up name in this frame, then walks up through ancestors.
func (c *Context) Get(name string) (graph.Value, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if v, ok := ctx.vars[name]; ok {
			return v, true
		}
	}
	return graph.Value{}, false
}

// Has reports whether name is bound anywhere in the chain.
func (c *Context) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// VariableNames returns every variable name visible from this frame,
// including those only bound in an ancestor. Names bound at a nearer
// frame shadow the same name further up, so each name appears once.
func (c *Context) VariableNames() []string {
	seen := map[string]struct{}{}
	var out []string
	for ctx := c; ctx != nil; ctx = ctx.parent {
		for name := range ctx.vars {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// Snapshot materializes every visible binding into a flat map, nearest
// frame winning on name collision.
func (c *Context) Snapshot() map[string]graph.Value {
	out := map[string]graph.Value{}
	var frames []*Context
	for ctx := c; ctx != nil; ctx = ctx.parent {
		frames = append(frames, ctx)
	}
	for i := len(frames) - 1; i >= 0; i-- {
		for name, v := range frames[i].vars {
			out[name] = v
		}
	}
	return out
}
