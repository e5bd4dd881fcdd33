// Package passes holds the concrete rewrite passes and the default registry
// wiring them into groups. Every pass is conservative: a node it cannot
// confidently rewrite comes back unchanged.
package passes

import (
	"github.com/lume-lang/lume/internal/ast"
	"github.com/lume-lang/lume/internal/hir"
)

// Build is the literal input-to-target translation. It maps expressions
// one-to-one and plants a PendingLoop marker for every loop, leaving loop
// re-synthesis to the lower-loops pass. Shapes it does not cover come back
// as raw source text, keeping the pipeline fail-soft.
func Build(e hir.Expr) ast.Node {
	if e == nil {
		return &ast.NilLit{}
	}

	switch n := e.(type) {
	case *hir.Ident:
		return &ast.Var{Span: n.Span, Name: n.Name}
	case *hir.IntLit:
		return &ast.IntLit{Span: n.Span, Value: n.Value}
	case *hir.FloatLit:
		return &ast.FloatLit{Span: n.Span, Value: n.Value}
	case *hir.BoolLit:
		return &ast.BoolLit{Span: n.Span, Value: n.Value}
	case *hir.StringLit:
		return &ast.StringLit{Span: n.Span, Segments: []ast.StringSeg{{Text: n.Value}}}
	case *hir.Binary:
		return buildBinary(n)
	case *hir.Unary:
		op := n.Op
		if op == "!" {
			op = "not "
		}
		return &ast.UnaryOp{Span: n.Span, Op: op, Operand: Build(n.Operand)}
	case *hir.Assign:
		return buildAssign(n)
	case *hir.Call:
		return buildCall(n)
	case *hir.Index:
		return &ast.Access{Span: n.Span, Subject: Build(n.Subject), Key: Build(n.Key)}
	case *hir.Field:
		return &ast.Access{Span: n.Span, Subject: Build(n.Subject), Key: &ast.Atom{Name: n.Name}}
	case *hir.Block:
		stmts := make([]ast.Node, len(n.Stmts))
		for i, s := range n.Stmts {
			stmts[i] = Build(s)
		}
		return &ast.Block{Span: n.Span, Stmts: stmts}
	case *hir.If:
		out := &ast.If{Span: n.Span, Cond: Build(n.Cond), Then: Build(n.Then)}
		if n.Else != nil {
			out.Else = Build(n.Else)
		}
		return out
	case *hir.While, *hir.DoWhile, *hir.ForRange, *hir.ForIn:
		return &ast.PendingLoop{Span: n.GetSpan(), Loop: n}
	case *hir.Return:
		// The target is expression-oriented: a tail return is its value.
		if n.Value == nil {
			return &ast.NilLit{Span: n.Span}
		}
		return Build(n.Value)
	case *hir.Break:
		return &ast.Raw{Span: n.Span, Code: "throw(:break)"}
	case *hir.Continue:
		return &ast.Raw{Span: n.Span, Code: "throw(:continue)"}
	default:
		return &ast.Raw{Span: e.GetSpan(), Code: e.String()}
	}
}

func buildBinary(n *hir.Binary) ast.Node {
	left, right := Build(n.Left), Build(n.Right)
	switch n.Op {
	case "&&":
		return &ast.BinaryOp{Span: n.Span, Op: "and", Left: left, Right: right}
	case "||":
		return &ast.BinaryOp{Span: n.Span, Op: "or", Left: left, Right: right}
	case "%":
		return &ast.RemoteCall{Span: n.Span, Module: "Kernel", Fun: "rem", Args: []ast.Node{left, right}}
	default:
		return &ast.BinaryOp{Span: n.Span, Op: n.Op, Left: left, Right: right}
	}
}

func buildAssign(n *hir.Assign) ast.Node {
	target, ok := n.Target.(*hir.Ident)
	if !ok {
		// Subscript and member writes need the container-update protocol;
		// left to the surrounding conversion layer.
		return &ast.Raw{Span: n.Span, Code: n.String()}
	}

	value := Build(n.Value)
	if n.Op != "" {
		op := n.Op[:len(n.Op)-1]
		value = &ast.BinaryOp{
			Span:  n.Span,
			Op:    op,
			Left:  &ast.Var{Span: target.Span, Name: target.Name},
			Right: value,
		}
	}
	return &ast.MatchExpr{
		Span:    n.Span,
		Pattern: &ast.PVar{Span: target.Span, Name: target.Name},
		Value:   value,
	}
}

func buildCall(n *hir.Call) ast.Node {
	args := make([]ast.Node, len(n.Args))
	for i, a := range n.Args {
		args[i] = Build(a)
	}

	if n.Recv == nil {
		return &ast.Call{Span: n.Span, Fun: &ast.Var{Name: n.Method}, Args: args}
	}

	// The canonical append form becomes list concatenation rebound to the
	// collection.
	if n.Method == "push" && len(n.Args) == 1 {
		if recv, ok := n.Recv.(*hir.Ident); ok {
			return &ast.MatchExpr{
				Span:    n.Span,
				Pattern: &ast.PVar{Name: recv.Name},
				Value: &ast.BinaryOp{
					Op:    "++",
					Left:  &ast.Var{Name: recv.Name},
					Right: &ast.ListLit{Elems: args},
				},
			}
		}
	}

	// Method dispatch goes through the runtime support module with the
	// receiver as first argument.
	recvArgs := append([]ast.Node{Build(n.Recv)}, args...)
	return &ast.RemoteCall{Span: n.Span, Module: "Lume.Runtime", Fun: n.Method, Args: recvArgs}
}
