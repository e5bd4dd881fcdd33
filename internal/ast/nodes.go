// Package ast defines the target-language syntax tree the Lume backend
// emits and rewrites: a declarative, pattern-matching tree in the Elixir
// family. Expression nodes and patterns are two separate closed sums —
// expression position never binds names; pattern position binds names
// except Pin, which uses an existing binding.
//
// Nodes own their children outright. Rewriting is functional: passes build
// replacement nodes instead of mutating in place, so older and newer
// versions of a tree may coexist on the call stack.
package ast

import (
	"fmt"
	"strings"

	"github.com/lume-lang/lume/internal/hir"
	"github.com/lume-lang/lume/internal/position"
)

// Node is the base interface for all target-tree expression nodes.
type Node interface {
	GetSpan() position.Span
	String() string
	exprNode()
}

// Var is a variable reference. Referencing, never binding: binds happen in
// pattern position only.
type Var struct {
	Span position.Span
	Name string
}

// Atom is a symbolic constant (`:ok`, `:error`).
type Atom struct {
	Span position.Span
	Name string
}

// IntLit is an integer literal.
type IntLit struct {
	Span  position.Span
	Value int64
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Span  position.Span
	Value float64
}

// BoolLit is a boolean literal.
type BoolLit struct {
	Span  position.Span
	Value bool
}

// NilLit is the nil literal.
type NilLit struct {
	Span position.Span
}

// StringSeg is one segment of an interpolated string: either raw Text or an
// interpolated expression. Interpolations are real expressions and are
// visible to usage analysis, never opaque text.
type StringSeg struct {
	Text   string
	Interp Node
}

// StringLit is a string literal with `#{...}` interpolation segments.
type StringLit struct {
	Span     position.Span
	Segments []StringSeg
}

// Block is a statement sequence evaluating to its last statement.
type Block struct {
	Span  position.Span
	Stmts []Node
}

// BinaryOp is a binary operation.
type BinaryOp struct {
	Span  position.Span
	Op    string
	Left  Node
	Right Node
}

// UnaryOp is a unary operation.
type UnaryOp struct {
	Span    position.Span
	Op      string
	Operand Node
}

// MatchExpr is assignment-as-match: `pattern = value`. Only Value is
// expression position; Pattern binds (its pins are uses).
type MatchExpr struct {
	Span    position.Span
	Pattern Pattern
	Value   Node
}

// If is a two-way conditional. Else may be nil.
type If struct {
	Span position.Span
	Cond Node
	Then Node
	Else Node
}

// CaseClause is one arm of a Case, Receive, or Try rescue/catch list.
// Pattern-bound names shadow outer names for Guard and Body.
type CaseClause struct {
	Pattern Pattern
	Guard   Node
	Body    Node
}

// Case is a multi-clause match with optional guards.
type Case struct {
	Span    position.Span
	Subject Node
	Clauses []CaseClause
}

// WithClause is one `pattern <- value` step of a With.
type WithClause struct {
	Pattern Pattern
	Value   Node
}

// With is a sequential pattern-bind pipeline; each clause's bound names are
// in scope for the following clauses and the body.
type With struct {
	Span        position.Span
	Clauses     []WithClause
	Body        Node
	ElseClauses []CaseClause
}

// Generator is one `pattern <- enumerable` of a comprehension.
type Generator struct {
	Pattern    Pattern
	Enumerable Node
}

// For is a comprehension with generators and filters. Into, when non-nil,
// is the collectable the results are poured into.
type For struct {
	Span       position.Span
	Generators []Generator
	Filters    []Node
	Into       Node
	Body       Node
}

// FnClause is one clause of an anonymous function. Parameter-bound names
// shadow outer names for this clause's guard and body only.
type FnClause struct {
	Params []Pattern
	Guard  Node
	Body   Node
}

// Fn is an anonymous function with one or more clauses.
type Fn struct {
	Span    position.Span
	Clauses []FnClause
}

// Call applies Fun (a Var, Fn, or Access) to Args.
type Call struct {
	Span position.Span
	Fun  Node
	Args []Node
}

// RemoteCall is `Module.fun(args)`.
type RemoteCall struct {
	Span   position.Span
	Module string
	Fun    string
	Args   []Node
}

// Access is field or index access: `subject[key]`.
type Access struct {
	Span    position.Span
	Subject Node
	Key     Node
}

// ListLit is a list literal.
type ListLit struct {
	Span  position.Span
	Elems []Node
}

// TupleLit is a tuple literal.
type TupleLit struct {
	Span  position.Span
	Elems []Node
}

// MapEntry is one key-value pair of a map literal.
type MapEntry struct {
	Key   Node
	Value Node
}

// MapLit is a map literal.
type MapLit struct {
	Span    position.Span
	Entries []MapEntry
}

// StructField is one named field of a struct literal.
type StructField struct {
	Name  string
	Value Node
}

// StructLit is `%Module{field: value}`.
type StructLit struct {
	Span   position.Span
	Module string
	Fields []StructField
}

// Range is a first-class range value. Step may be nil for step 1.
type Range struct {
	Span      position.Span
	Start     Node
	End       Node
	Step      Node
	Inclusive bool
}

// Receive waits for a message matching one of the clauses. Binder scoping
// is identical to Case. AfterMs/AfterBody are the optional timeout arm.
type Receive struct {
	Span      position.Span
	Clauses   []CaseClause
	AfterMs   Node
	AfterBody Node
}

// Try is a try/rescue/catch/after expression; rescue and catch clauses bind
// patterns exactly like case clauses.
type Try struct {
	Span    position.Span
	Body    Node
	Rescue  []CaseClause
	Catch   []CaseClause
	After   Node
}

// Raw is pass-through target source text. Usage analysis scans it with
// token-boundary matching only.
type Raw struct {
	Span position.Span
	Code string
}

// PendingLoop wraps an input-tree loop the conversion layer chose not to
// translate eagerly. The loop-lowering pass replaces it with an idiomatic
// construct, or leaves it untouched when no intent is recognized.
type PendingLoop struct {
	Span position.Span
	Loop hir.Expr
}

func (n *Var) exprNode()         {}
func (n *Atom) exprNode()        {}
func (n *IntLit) exprNode()      {}
func (n *FloatLit) exprNode()    {}
func (n *BoolLit) exprNode()     {}
func (n *NilLit) exprNode()      {}
func (n *StringLit) exprNode()   {}
func (n *Block) exprNode()       {}
func (n *BinaryOp) exprNode()    {}
func (n *UnaryOp) exprNode()     {}
func (n *MatchExpr) exprNode()   {}
func (n *If) exprNode()          {}
func (n *Case) exprNode()        {}
func (n *With) exprNode()        {}
func (n *For) exprNode()         {}
func (n *Fn) exprNode()          {}
func (n *Call) exprNode()        {}
func (n *RemoteCall) exprNode()  {}
func (n *Access) exprNode()      {}
func (n *ListLit) exprNode()     {}
func (n *TupleLit) exprNode()    {}
func (n *MapLit) exprNode()      {}
func (n *StructLit) exprNode()   {}
func (n *Range) exprNode()       {}
func (n *Receive) exprNode()     {}
func (n *Try) exprNode()         {}
func (n *Raw) exprNode()         {}
func (n *PendingLoop) exprNode() {}

func (n *Var) GetSpan() position.Span         { return n.Span }
func (n *Atom) GetSpan() position.Span        { return n.Span }
func (n *IntLit) GetSpan() position.Span      { return n.Span }
func (n *FloatLit) GetSpan() position.Span    { return n.Span }
func (n *BoolLit) GetSpan() position.Span     { return n.Span }
func (n *NilLit) GetSpan() position.Span      { return n.Span }
func (n *StringLit) GetSpan() position.Span   { return n.Span }
func (n *Block) GetSpan() position.Span       { return n.Span }
func (n *BinaryOp) GetSpan() position.Span    { return n.Span }
func (n *UnaryOp) GetSpan() position.Span     { return n.Span }
func (n *MatchExpr) GetSpan() position.Span   { return n.Span }
func (n *If) GetSpan() position.Span          { return n.Span }
func (n *Case) GetSpan() position.Span        { return n.Span }
func (n *With) GetSpan() position.Span        { return n.Span }
func (n *For) GetSpan() position.Span         { return n.Span }
func (n *Fn) GetSpan() position.Span          { return n.Span }
func (n *Call) GetSpan() position.Span        { return n.Span }
func (n *RemoteCall) GetSpan() position.Span  { return n.Span }
func (n *Access) GetSpan() position.Span      { return n.Span }
func (n *ListLit) GetSpan() position.Span     { return n.Span }
func (n *TupleLit) GetSpan() position.Span    { return n.Span }
func (n *MapLit) GetSpan() position.Span      { return n.Span }
func (n *StructLit) GetSpan() position.Span   { return n.Span }
func (n *Range) GetSpan() position.Span       { return n.Span }
func (n *Receive) GetSpan() position.Span     { return n.Span }
func (n *Try) GetSpan() position.Span         { return n.Span }
func (n *Raw) GetSpan() position.Span         { return n.Span }
func (n *PendingLoop) GetSpan() position.Span { return n.Span }

func (n *Var) String() string    { return n.Name }
func (n *Atom) String() string   { return ":" + n.Name }
func (n *IntLit) String() string { return fmt.Sprintf("%d", n.Value) }
func (n *FloatLit) String() string {
	s := fmt.Sprintf("%g", n.Value)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
func (n *BoolLit) String() string { return fmt.Sprintf("%t", n.Value) }
func (n *NilLit) String() string  { return "nil" }
func (n *StringLit) String() string {
	var b strings.Builder
	b.WriteByte('"')
	for _, seg := range n.Segments {
		if seg.Interp != nil {
			b.WriteString("#{")
			b.WriteString(seg.Interp.String())
			b.WriteByte('}')
		} else {
			b.WriteString(seg.Text)
		}
	}
	b.WriteByte('"')
	return b.String()
}
func (n *Block) String() string {
	parts := make([]string, len(n.Stmts))
	for i, s := range n.Stmts {
		parts[i] = s.String()
	}
	return "(" + strings.Join(parts, "; ") + ")"
}
func (n *BinaryOp) String() string {
	return fmt.Sprintf("%s %s %s", n.Left.String(), n.Op, n.Right.String())
}
func (n *UnaryOp) String() string { return n.Op + n.Operand.String() }
func (n *MatchExpr) String() string {
	return fmt.Sprintf("%s = %s", n.Pattern.String(), n.Value.String())
}
func (n *If) String() string {
	if n.Else == nil {
		return fmt.Sprintf("if %s, do: %s", n.Cond.String(), n.Then.String())
	}
	return fmt.Sprintf("if %s, do: %s, else: %s", n.Cond.String(), n.Then.String(), n.Else.String())
}
func (c CaseClause) String() string {
	head := c.Pattern.String()
	if c.Guard != nil {
		head += " when " + c.Guard.String()
	}
	return head + " -> " + c.Body.String()
}
func (n *Case) String() string {
	clauses := make([]string, len(n.Clauses))
	for i, c := range n.Clauses {
		clauses[i] = c.String()
	}
	return fmt.Sprintf("case %s do %s end", n.Subject.String(), strings.Join(clauses, "; "))
}
func (n *With) String() string {
	clauses := make([]string, len(n.Clauses))
	for i, c := range n.Clauses {
		clauses[i] = fmt.Sprintf("%s <- %s", c.Pattern.String(), c.Value.String())
	}
	s := fmt.Sprintf("with %s do %s", strings.Join(clauses, ", "), n.Body.String())
	if len(n.ElseClauses) > 0 {
		arms := make([]string, len(n.ElseClauses))
		for i, c := range n.ElseClauses {
			arms[i] = c.String()
		}
		s += " else " + strings.Join(arms, "; ")
	}
	return s + " end"
}
func (n *For) String() string {
	parts := make([]string, 0, len(n.Generators)+len(n.Filters))
	for _, g := range n.Generators {
		parts = append(parts, fmt.Sprintf("%s <- %s", g.Pattern.String(), g.Enumerable.String()))
	}
	for _, f := range n.Filters {
		parts = append(parts, f.String())
	}
	s := "for " + strings.Join(parts, ", ")
	if n.Into != nil {
		s += ", into: " + n.Into.String()
	}
	return s + ", do: " + n.Body.String()
}
func (n *Fn) String() string {
	clauses := make([]string, len(n.Clauses))
	for i, c := range n.Clauses {
		params := make([]string, len(c.Params))
		for j, p := range c.Params {
			params[j] = p.String()
		}
		head := strings.Join(params, ", ")
		if c.Guard != nil {
			head += " when " + c.Guard.String()
		}
		clauses[i] = head + " -> " + c.Body.String()
	}
	return "fn " + strings.Join(clauses, "; ") + " end"
}
func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	if _, ok := n.Fun.(*Var); ok {
		return fmt.Sprintf("%s.(%s)", n.Fun.String(), strings.Join(args, ", "))
	}
	return fmt.Sprintf("(%s).(%s)", n.Fun.String(), strings.Join(args, ", "))
}
func (n *RemoteCall) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s.%s(%s)", n.Module, n.Fun, strings.Join(args, ", "))
}
func (n *Access) String() string {
	return fmt.Sprintf("%s[%s]", n.Subject.String(), n.Key.String())
}
func (n *ListLit) String() string {
	elems := make([]string, len(n.Elems))
	for i, e := range n.Elems {
		elems[i] = e.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}
func (n *TupleLit) String() string {
	elems := make([]string, len(n.Elems))
	for i, e := range n.Elems {
		elems[i] = e.String()
	}
	return "{" + strings.Join(elems, ", ") + "}"
}
func (n *MapLit) String() string {
	entries := make([]string, len(n.Entries))
	for i, e := range n.Entries {
		entries[i] = fmt.Sprintf("%s => %s", e.Key.String(), e.Value.String())
	}
	return "%{" + strings.Join(entries, ", ") + "}"
}
func (n *StructLit) String() string {
	fields := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		fields[i] = fmt.Sprintf("%s: %s", f.Name, f.Value.String())
	}
	return fmt.Sprintf("%%%s{%s}", n.Module, strings.Join(fields, ", "))
}
func (n *Range) String() string {
	op := "..<"
	if n.Inclusive {
		op = ".."
	}
	s := n.Start.String() + op + n.End.String()
	if n.Step != nil {
		s += "//" + n.Step.String()
	}
	return s
}
func (n *Receive) String() string {
	clauses := make([]string, len(n.Clauses))
	for i, c := range n.Clauses {
		clauses[i] = c.String()
	}
	s := "receive do " + strings.Join(clauses, "; ")
	if n.AfterMs != nil {
		s += fmt.Sprintf(" after %s -> %s", n.AfterMs.String(), n.AfterBody.String())
	}
	return s + " end"
}
func (n *Try) String() string {
	s := "try do " + n.Body.String()
	if len(n.Rescue) > 0 {
		arms := make([]string, len(n.Rescue))
		for i, c := range n.Rescue {
			arms[i] = c.String()
		}
		s += " rescue " + strings.Join(arms, "; ")
	}
	if len(n.Catch) > 0 {
		arms := make([]string, len(n.Catch))
		for i, c := range n.Catch {
			arms[i] = c.String()
		}
		s += " catch " + strings.Join(arms, "; ")
	}
	if n.After != nil {
		s += " after " + n.After.String()
	}
	return s + " end"
}
func (n *Raw) String() string         { return n.Code }
func (n *PendingLoop) String() string { return "<<pending " + n.Loop.String() + ">>" }
