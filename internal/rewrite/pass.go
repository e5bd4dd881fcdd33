// Package rewrite runs ordered tree-rewrite passes over the target AST. A
// pass is a named, pure tree transformation; the scheduler validates a pass
// list (duplicates, dependencies, cycles, version constraints) into a
// deterministic execution order, and the pipeline applies it sequentially.
// Configuration problems are diagnosed and worked around, never fatal.
package rewrite

import (
	"fmt"

	"github.com/lume-lang/lume/internal/ast"
)

// Context carries cross-cutting metadata for passes that need to know where
// in the output module they are rewriting.
type Context struct {
	Module   string
	Function string
	Meta     map[string]string
}

// Pass is one rewrite over the whole target tree. Run must be pure: it
// receives the current tree and returns a replacement (possibly the same
// node). RunCtx is the context-aware variant; when both are set RunCtx wins.
// A pass that cannot confidently rewrite a node returns it unchanged.
type Pass struct {
	Name        string
	Description string
	Enabled     bool
	Run         func(ast.Node) ast.Node
	RunCtx      func(*Context, ast.Node) ast.Node
	RunAfter    []string

	// MinTarget is an optional semver constraint on the configured
	// target-language version (">= 1.12" for stepped ranges, say). A pass
	// whose constraint the configured version does not satisfy is disabled
	// during scheduling.
	MinTarget string
}

func (p Pass) apply(ctx *Context, root ast.Node) ast.Node {
	var out ast.Node
	if p.RunCtx != nil {
		out = p.RunCtx(ctx, root)
	} else if p.Run != nil {
		out = p.Run(root)
	}
	if out == nil {
		return root
	}
	return out
}

// Diagnostic is a non-fatal scheduling complaint: a duplicate name, a
// dangling dependency, a dependency cycle, or a version gate.
type Diagnostic struct {
	Code   string
	Pass   string
	Detail string
}

const (
	DiagDuplicate     = "duplicate-pass"
	DiagDangling      = "dangling-run-after"
	DiagCycle         = "dependency-cycle"
	DiagVersionGated  = "version-gated"
	DiagBadConstraint = "bad-constraint"
)

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: pass %q: %s", d.Code, d.Pass, d.Detail)
}

// Registry assembles passes from ordered, named groups; group order is the
// declaration order the scheduler falls back to.
type Registry struct {
	groups []registryGroup
}

type registryGroup struct {
	name   string
	passes []Pass
}

func NewRegistry() *Registry {
	return &Registry{}
}

// AddGroup appends a named group. Re-adding a name extends the existing
// group rather than reordering it.
func (r *Registry) AddGroup(name string, passes ...Pass) {
	for i := range r.groups {
		if r.groups[i].name == name {
			r.groups[i].passes = append(r.groups[i].passes, passes...)
			return
		}
	}
	r.groups = append(r.groups, registryGroup{name: name, passes: passes})
}

// Groups returns the group names in declaration order.
func (r *Registry) Groups() []string {
	names := make([]string, len(r.groups))
	for i, g := range r.groups {
		names[i] = g.name
	}
	return names
}

// Group returns the passes of one group.
func (r *Registry) Group(name string) []Pass {
	for _, g := range r.groups {
		if g.name == name {
			return g.passes
		}
	}
	return nil
}

// Passes flattens all groups into one declaration-ordered list.
func (r *Registry) Passes() []Pass {
	var out []Pass
	for _, g := range r.groups {
		out = append(out, g.passes...)
	}
	return out
}
