// Package hir defines the typed imperative input tree handed to the Lume
// backend by the front end. The tree arrives fully resolved and typed; this
// package is the interface boundary only — no inference, no checking.
package hir

import (
	"fmt"
	"strings"

	"github.com/lume-lang/lume/internal/position"
)

// Expr is the base interface for all input-tree nodes. The front end emits
// statements and expressions in a single sum; blocks carry sequencing.
type Expr interface {
	GetSpan() position.Span
	String() string
	hirExpr()
}

// Ident is a reference to a resolved local variable.
type Ident struct {
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

// StringLit is a string literal.
type StringLit struct {
	Span  position.Span
	Value string
}

// Binary is a binary operation. Op is the surface operator ("+", "<", "==",
// "&&", "%", ...).
type Binary struct {
	Span  position.Span
	Op    string
	Left  Expr
	Right Expr
}

// Unary is a unary operation ("-", "!").
type Unary struct {
	Span    position.Span
	Op      string
	Operand Expr
}

// Assign writes Value into Target. Op is "" for plain assignment or a
// compound operator ("+=", "*=", ...). Targets are Ident, Index or Field.
type Assign struct {
	Span   position.Span
	Target Expr
	Op     string
	Value  Expr
}

// Call invokes Method on Recv. Recv is nil for a free function call, in
// which case Method is the function name. A call with method "push" and one
// argument is the front end's canonical collection-append form.
type Call struct {
	Span   position.Span
	Recv   Expr
	Method string
	Args   []Expr
}

// Index is subscript access.
type Index struct {
	Span    position.Span
	Subject Expr
	Key     Expr
}

// Field is member access.
type Field struct {
	Span    position.Span
	Subject Expr
	Name    string
}

// Block is a statement sequence.
type Block struct {
	Span  position.Span
	Stmts []Expr
}

// If is a conditional with an optional else branch.
type If struct {
	Span position.Span
	Cond Expr
	Then Expr
	Else Expr
}

// While is a pre-test loop.
type While struct {
	Span position.Span
	Cond Expr
	Body Expr
}

// DoWhile is a post-test loop: Body always runs at least once.
type DoWhile struct {
	Span position.Span
	Body Expr
	Cond Expr
}

// ForRange is a counted loop over [Start, End) — or [Start, End] when
// Inclusive — advancing Var by Step each iteration. Var is the user-written
// variable name, never a desugaring counter.
type ForRange struct {
	Span      position.Span
	Var       string
	Start     Expr
	End       Expr
	Step      Expr
	Inclusive bool
	Body      Expr
}

// ForIn iterates Var over the elements of Seq.
type ForIn struct {
	Span position.Span
	Var  string
	Seq  Expr
	Body Expr
}

// Break exits the innermost loop.
type Break struct {
	Span position.Span
}

// Continue skips to the next iteration of the innermost loop.
type Continue struct {
	Span position.Span
}

// Return exits the enclosing function. Value may be nil.
type Return struct {
	Span  position.Span
	Value Expr
}

func (n *Ident) hirExpr()     {}
func (n *IntLit) hirExpr()    {}
func (n *FloatLit) hirExpr()  {}
func (n *BoolLit) hirExpr()   {}
func (n *StringLit) hirExpr() {}
func (n *Binary) hirExpr()    {}
func (n *Unary) hirExpr()     {}
func (n *Assign) hirExpr()    {}
func (n *Call) hirExpr()      {}
func (n *Index) hirExpr()     {}
func (n *Field) hirExpr()     {}
func (n *Block) hirExpr()     {}
func (n *If) hirExpr()        {}
func (n *While) hirExpr()     {}
func (n *DoWhile) hirExpr()   {}
func (n *ForRange) hirExpr()  {}
func (n *ForIn) hirExpr()     {}
func (n *Break) hirExpr()     {}
func (n *Continue) hirExpr()  {}
func (n *Return) hirExpr()    {}

func (n *Ident) GetSpan() position.Span     { return n.Span }
func (n *IntLit) GetSpan() position.Span    { return n.Span }
func (n *FloatLit) GetSpan() position.Span  { return n.Span }
func (n *BoolLit) GetSpan() position.Span   { return n.Span }
func (n *StringLit) GetSpan() position.Span { return n.Span }
func (n *Binary) GetSpan() position.Span    { return n.Span }
func (n *Unary) GetSpan() position.Span     { return n.Span }
func (n *Assign) GetSpan() position.Span    { return n.Span }
func (n *Call) GetSpan() position.Span      { return n.Span }
func (n *Index) GetSpan() position.Span     { return n.Span }
func (n *Field) GetSpan() position.Span     { return n.Span }
func (n *Block) GetSpan() position.Span     { return n.Span }
func (n *If) GetSpan() position.Span        { return n.Span }
func (n *While) GetSpan() position.Span     { return n.Span }
func (n *DoWhile) GetSpan() position.Span   { return n.Span }
func (n *ForRange) GetSpan() position.Span  { return n.Span }
func (n *ForIn) GetSpan() position.Span     { return n.Span }
func (n *Break) GetSpan() position.Span     { return n.Span }
func (n *Continue) GetSpan() position.Span  { return n.Span }
func (n *Return) GetSpan() position.Span    { return n.Span }

func (n *Ident) String() string     { return n.Name }
func (n *IntLit) String() string    { return fmt.Sprintf("%d", n.Value) }
func (n *FloatLit) String() string  { return fmt.Sprintf("%g", n.Value) }
func (n *BoolLit) String() string   { return fmt.Sprintf("%t", n.Value) }
func (n *StringLit) String() string { return fmt.Sprintf("%q", n.Value) }
func (n *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left.String(), n.Op, n.Right.String())
}
func (n *Unary) String() string { return fmt.Sprintf("(%s%s)", n.Op, n.Operand.String()) }
func (n *Assign) String() string {
	op := n.Op
	if op == "" {
		op = "="
	}
	return fmt.Sprintf("%s %s %s", n.Target.String(), op, n.Value.String())
}
func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	if n.Recv == nil {
		return fmt.Sprintf("%s(%s)", n.Method, strings.Join(args, ", "))
	}
	return fmt.Sprintf("%s.%s(%s)", n.Recv.String(), n.Method, strings.Join(args, ", "))
}
func (n *Index) String() string { return fmt.Sprintf("%s[%s]", n.Subject.String(), n.Key.String()) }
func (n *Field) String() string { return fmt.Sprintf("%s.%s", n.Subject.String(), n.Name) }
func (n *Block) String() string {
	parts := make([]string, len(n.Stmts))
	for i, s := range n.Stmts {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}
func (n *If) String() string {
	if n.Else == nil {
		return fmt.Sprintf("if %s %s", n.Cond.String(), n.Then.String())
	}
	return fmt.Sprintf("if %s %s else %s", n.Cond.String(), n.Then.String(), n.Else.String())
}
func (n *While) String() string { return fmt.Sprintf("while %s %s", n.Cond.String(), n.Body.String()) }
func (n *DoWhile) String() string {
	return fmt.Sprintf("do %s while %s", n.Body.String(), n.Cond.String())
}
func (n *ForRange) String() string {
	bound := "..<"
	if n.Inclusive {
		bound = "..."
	}
	return fmt.Sprintf("for %s in %s%s%s %s", n.Var, n.Start.String(), bound, n.End.String(), n.Body.String())
}
func (n *ForIn) String() string {
	return fmt.Sprintf("for %s in %s %s", n.Var, n.Seq.String(), n.Body.String())
}
func (n *Break) String() string    { return "break" }
func (n *Continue) String() string { return "continue" }
func (n *Return) String() string {
	if n.Value == nil {
		return "return"
	}
	return "return " + n.Value.String()
}

// Stmts returns the statement list of e, treating a non-block expression as
// a single-statement body. Loop analyzers use this to look at bodies
// uniformly.
func Stmts(e Expr) []Expr {
	if e == nil {
		return nil
	}
	if b, ok := e.(*Block); ok {
		return b.Stmts
	}
	return []Expr{e}
}
