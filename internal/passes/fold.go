package passes

import (
	"github.com/lume-lang/lume/internal/ast"
	"github.com/lume-lang/lume/internal/rewrite"
)

// FoldConstants evaluates operators whose operands are literals. Integer
// division is left alone (target semantics decide division by zero and
// float promotion).
func FoldConstants() rewrite.Pass {
	return rewrite.Pass{
		Name:        "fold-constants",
		Description: "evaluate constant arithmetic, comparison, and boolean operators",
		Enabled:     true,
		Run: func(root ast.Node) ast.Node {
			return ast.Rewrite(root, foldNode)
		},
	}
}

func foldNode(n ast.Node) ast.Node {
	switch op := n.(type) {
	case *ast.BinaryOp:
		return foldBinary(op)
	case *ast.UnaryOp:
		return foldUnary(op)
	}
	return n
}

func foldBinary(b *ast.BinaryOp) ast.Node {
	if li, ok := b.Left.(*ast.IntLit); ok {
		if ri, ok := b.Right.(*ast.IntLit); ok {
			return foldInts(b, li.Value, ri.Value)
		}
	}

	if lb, ok := b.Left.(*ast.BoolLit); ok {
		switch b.Op {
		case "and":
			if lb.Value {
				return b.Right
			}
			return &ast.BoolLit{Span: b.Span, Value: false}
		case "or":
			if lb.Value {
				return &ast.BoolLit{Span: b.Span, Value: true}
			}
			return b.Right
		}
	}

	if b.Op == "<>" {
		if ls, rs, ok := textPair(b.Left, b.Right); ok {
			return &ast.StringLit{Span: b.Span, Segments: []ast.StringSeg{{Text: ls + rs}}}
		}
	}
	return b
}

func foldInts(b *ast.BinaryOp, l, r int64) ast.Node {
	switch b.Op {
	case "+":
		return &ast.IntLit{Span: b.Span, Value: l + r}
	case "-":
		return &ast.IntLit{Span: b.Span, Value: l - r}
	case "*":
		return &ast.IntLit{Span: b.Span, Value: l * r}
	case "==":
		return &ast.BoolLit{Span: b.Span, Value: l == r}
	case "!=":
		return &ast.BoolLit{Span: b.Span, Value: l != r}
	case "<":
		return &ast.BoolLit{Span: b.Span, Value: l < r}
	case "<=":
		return &ast.BoolLit{Span: b.Span, Value: l <= r}
	case ">":
		return &ast.BoolLit{Span: b.Span, Value: l > r}
	case ">=":
		return &ast.BoolLit{Span: b.Span, Value: l >= r}
	}
	return b
}

func foldUnary(u *ast.UnaryOp) ast.Node {
	switch operand := u.Operand.(type) {
	case *ast.IntLit:
		if u.Op == "-" {
			return &ast.IntLit{Span: u.Span, Value: -operand.Value}
		}
	case *ast.BoolLit:
		if u.Op == "not " || u.Op == "not" {
			return &ast.BoolLit{Span: u.Span, Value: !operand.Value}
		}
	}
	return u
}

// textPair extracts plain text from both sides when neither interpolates.
func textPair(l, r ast.Node) (string, string, bool) {
	ls, ok := plainText(l)
	if !ok {
		return "", "", false
	}
	rs, ok := plainText(r)
	if !ok {
		return "", "", false
	}
	return ls, rs, true
}

func plainText(n ast.Node) (string, bool) {
	s, ok := n.(*ast.StringLit)
	if !ok {
		return "", false
	}
	text := ""
	for _, seg := range s.Segments {
		if seg.Interp != nil {
			return "", false
		}
		text += seg.Text
	}
	return text, true
}

// PruneDeadBranches removes conditionals decided by literals: an If with a
// boolean-literal condition collapses to the taken branch, and case clauses
// after an irrefutable unguarded clause can never match.
func PruneDeadBranches() rewrite.Pass {
	return rewrite.Pass{
		Name:        "prune-dead-branches",
		Description: "collapse literal-condition ifs and unreachable case clauses",
		Enabled:     true,
		RunAfter:    []string{"fold-constants"},
		Run: func(root ast.Node) ast.Node {
			return ast.Rewrite(root, pruneNode)
		},
	}
}

func pruneNode(n ast.Node) ast.Node {
	switch node := n.(type) {
	case *ast.If:
		cond, ok := node.Cond.(*ast.BoolLit)
		if !ok {
			return node
		}
		if cond.Value {
			return node.Then
		}
		if node.Else != nil {
			return node.Else
		}
		return &ast.NilLit{Span: node.Span}
	case *ast.Case:
		return pruneCase(node)
	}
	return n
}

func pruneCase(c *ast.Case) ast.Node {
	for i, clause := range c.Clauses {
		if i == len(c.Clauses)-1 {
			break
		}
		if clause.Guard == nil && irrefutable(clause.Pattern) {
			return &ast.Case{Span: c.Span, Subject: c.Subject, Clauses: c.Clauses[:i+1]}
		}
	}
	return c
}

func irrefutable(p ast.Pattern) bool {
	switch pat := p.(type) {
	case *ast.PWildcard, *ast.PVar:
		return true
	case *ast.PAlias:
		return irrefutable(pat.Pattern)
	}
	return false
}
