package passes

import (
	"github.com/lume-lang/lume/internal/ast"
	"github.com/lume-lang/lume/internal/rewrite"
)

// SingleClauseCaseToMatch rewrites a case with one irrefutable, unguarded
// clause as a plain binding: the dispatch can never go anywhere else.
func SingleClauseCaseToMatch() rewrite.Pass {
	return rewrite.Pass{
		Name:        "single-clause-case-to-match",
		Description: "turn single irrefutable-clause cases into match bindings",
		Enabled:     true,
		RunAfter:    []string{"drop-redundant-match"},
		Run: func(root ast.Node) ast.Node {
			return ast.Rewrite(root, caseToMatch)
		},
	}
}

func caseToMatch(n ast.Node) ast.Node {
	c, ok := n.(*ast.Case)
	if !ok || len(c.Clauses) != 1 {
		return n
	}
	clause := c.Clauses[0]
	if clause.Guard != nil {
		return n
	}

	switch pat := clause.Pattern.(type) {
	case *ast.PVar:
		return &ast.Block{Span: c.Span, Stmts: []ast.Node{
			&ast.MatchExpr{Span: c.Span, Pattern: pat, Value: c.Subject},
			clause.Body,
		}}
	case *ast.PWildcard:
		if hasEffects(c.Subject) {
			return &ast.Block{Span: c.Span, Stmts: []ast.Node{c.Subject, clause.Body}}
		}
		return clause.Body
	}
	return n
}
