// Package loops recognizes the semantic shape of desugared imperative loops
// and re-synthesizes them as declarative constructs. Analysis and lowering
// are strictly separated: Analyze classifies an input-tree loop into an
// Intent without building any target nodes (building target AST during
// analysis can recurse back into analysis), and Lower consumes the Intent
// exactly once to produce the replacement subtree.
package loops

import (
	"github.com/lume-lang/lume/internal/hir"
)

// Intent is the semantic, syntax-independent description of a recognized
// loop shape. It carries the user-written variable names, never a synthetic
// desugaring counter, and references input-tree fragments that the lowering
// step translates through the supplied expression builder.
type Intent interface {
	Kind() string
	loopIntent()
}

// Source is what a lowered construct iterates: a collection expression when
// Seq is non-nil, otherwise a numeric range.
type Source struct {
	Seq       hir.Expr
	Start     hir.Expr // nil means 0
	End       hir.Expr
	Step      hir.Expr // nil means 1
	Inclusive bool
}

// RangeIntent is bounded index iteration: a counted for, or a while-loop
// whose bound test and increment were both identified. Start is nil when
// the initializer is unknown and defaults to 0.
type RangeIntent struct {
	Var       string
	Start     hir.Expr
	End       hir.Expr
	Step      hir.Expr
	Inclusive bool
	Body      hir.Expr
}

// EachIntent is side-effect iteration over a collection, no result.
type EachIntent struct {
	Var    string
	Source Source
	Body   hir.Expr
}

// MapIntent is a loop whose body unconditionally appends a transform of each
// element into the Target collection.
type MapIntent struct {
	Var       string
	Source    Source
	Target    string
	Transform hir.Expr
}

// FilterIntent is a loop whose body conditionally appends elements unchanged.
type FilterIntent struct {
	Var    string
	Source Source
	Target string
	Cond   hir.Expr
}

// FilterMapIntent is a guarded transforming append: the guard selects, the
// transform maps. The guard is never dropped.
type FilterMapIntent struct {
	Var       string
	Source    Source
	Target    string
	Cond      hir.Expr
	Transform hir.Expr
}

// ReduceIntent is accumulation into a scalar. Update is the full replacement
// expression for Acc each iteration. HaltCond, when non-nil, is a top-level
// break guard: iteration stops early the first time it holds.
type ReduceIntent struct {
	Var      string
	Source   Source
	Acc      string
	Init     hir.Expr
	Update   hir.Expr
	HaltCond hir.Expr
}

// WhileIntent is the general pre-test loop fallback.
type WhileIntent struct {
	Cond hir.Expr
	Body hir.Expr
}

// DoWhileIntent is the general post-test loop fallback: the body always runs
// once before the first condition check.
type DoWhileIntent struct {
	Cond hir.Expr
	Body hir.Expr
}

// ComprehensionIntent is a pure append expressed as a generator with an
// optional filter, for configurations that prefer comprehension syntax over
// transform/select calls.
type ComprehensionIntent struct {
	Var    string
	Source Source
	Filter hir.Expr // nil for an unguarded append
	Target string
	Elem   hir.Expr
}

func (*RangeIntent) loopIntent()         {}
func (*EachIntent) loopIntent()          {}
func (*MapIntent) loopIntent()           {}
func (*FilterIntent) loopIntent()        {}
func (*FilterMapIntent) loopIntent()     {}
func (*ReduceIntent) loopIntent()        {}
func (*WhileIntent) loopIntent()         {}
func (*DoWhileIntent) loopIntent()       {}
func (*ComprehensionIntent) loopIntent() {}

func (*RangeIntent) Kind() string         { return "range" }
func (*EachIntent) Kind() string          { return "each" }
func (*MapIntent) Kind() string           { return "map" }
func (*FilterIntent) Kind() string        { return "filter" }
func (*FilterMapIntent) Kind() string     { return "filter_map" }
func (*ReduceIntent) Kind() string        { return "reduce" }
func (*WhileIntent) Kind() string         { return "while" }
func (*DoWhileIntent) Kind() string       { return "do_while" }
func (*ComprehensionIntent) Kind() string { return "comprehension" }

func (r *RangeIntent) source() Source {
	return Source{Start: r.Start, End: r.End, Step: r.Step, Inclusive: r.Inclusive}
}
