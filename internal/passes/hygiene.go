package passes

import (
	"strings"

	"github.com/lume-lang/lume/internal/analysis"
	"github.com/lume-lang/lume/internal/ast"
	"github.com/lume-lang/lume/internal/rewrite"
)

// FlattenBlocks splices nested statement sequences into their parent and
// unwraps single-statement blocks. The target language has no block scope,
// so splicing never changes which binding a name resolves to.
func FlattenBlocks() rewrite.Pass {
	return rewrite.Pass{
		Name:        "flatten-blocks",
		Description: "splice nested blocks and unwrap single-statement blocks",
		Enabled:     true,
		RunAfter:    []string{"single-clause-case-to-match"},
		Run: func(root ast.Node) ast.Node {
			return ast.Rewrite(root, func(n ast.Node) ast.Node {
				if b, ok := n.(*ast.Block); ok {
					return flattenBlock(b)
				}
				return n
			})
		},
	}
}

func flattenBlock(b *ast.Block) ast.Node {
	changed := false
	out := make([]ast.Node, 0, len(b.Stmts))
	for _, s := range b.Stmts {
		if inner, ok := s.(*ast.Block); ok {
			out = append(out, inner.Stmts...)
			changed = true
			continue
		}
		out = append(out, s)
	}

	switch len(out) {
	case 0:
		return &ast.NilLit{Span: b.Span}
	case 1:
		return out[0]
	}
	if !changed {
		return b
	}
	return &ast.Block{Span: b.Span, Stmts: out}
}

// UnderscoreUnused prefixes `_` on binders whose value is never read: match
// binders with no use at or after the following statement (suffix index,
// fuzzy so an already-renamed use still counts), and anonymous-function
// parameters unread in their own clause. Pinned patterns count as uses, so
// a binder a later pattern pins is never renamed.
func UnderscoreUnused() rewrite.Pass {
	return rewrite.Pass{
		Name:        "underscore-unused",
		Description: "prefix _ on never-read match binders and fn parameters",
		Enabled:     true,
		RunAfter:    []string{"lower-loops"},
		Run: func(root ast.Node) ast.Node {
			return ast.Rewrite(root, underscoreNode)
		},
	}
}

func underscoreNode(n ast.Node) ast.Node {
	switch node := n.(type) {
	case *ast.Block:
		return underscoreInBlock(node)
	case *ast.Fn:
		return underscoreParams(node)
	}
	return n
}

func underscoreInBlock(b *ast.Block) ast.Node {
	index := analysis.BuildSuffixIndex(b.Stmts)

	var out []ast.Node
	for i, s := range b.Stmts {
		match, ok := s.(*ast.MatchExpr)
		if !ok {
			continue
		}
		binder, ok := match.Pattern.(*ast.PVar)
		if !ok || strings.HasPrefix(binder.Name, "_") {
			continue
		}
		if index.UsedLater(i+1, binder.Name) {
			continue
		}
		if out == nil {
			out = append(out, b.Stmts...)
		}
		out[i] = &ast.MatchExpr{
			Span:    match.Span,
			Pattern: &ast.PVar{Span: binder.Span, Name: "_" + binder.Name},
			Value:   match.Value,
		}
	}
	if out == nil {
		return b
	}
	return &ast.Block{Span: b.Span, Stmts: out}
}

func underscoreParams(fn *ast.Fn) ast.Node {
	var clauses []ast.FnClause
	for ci, clause := range fn.Clauses {
		for pi, param := range clause.Params {
			binder, ok := param.(*ast.PVar)
			if !ok || strings.HasPrefix(binder.Name, "_") {
				continue
			}
			if analysis.Uses(clause.Guard, binder.Name) || analysis.Uses(clause.Body, binder.Name) {
				continue
			}
			if clauses == nil {
				clauses = append(clauses, fn.Clauses...)
			}
			params := make([]ast.Pattern, len(clause.Params))
			copy(params, clauses[ci].Params)
			params[pi] = &ast.PVar{Span: binder.Span, Name: "_" + binder.Name}
			clauses[ci].Params = params
		}
	}
	if clauses == nil {
		return fn
	}
	return &ast.Fn{Span: fn.Span, Clauses: clauses}
}

// DropRedundantMatch removes `x = expr` statements whose binder is never
// read afterwards. An expression with effects (calls, raw code, messaging)
// is kept, just unbound; the final statement of a block is a block's value
// and is likewise unbound rather than removed. Runs to a fixed point within
// each block, since removing one statement can strand the binder feeding it.
func DropRedundantMatch() rewrite.Pass {
	return rewrite.Pass{
		Name:        "drop-redundant-match",
		Description: "remove never-read match bindings, keeping effectful values",
		Enabled:     true,
		RunAfter:    []string{"underscore-unused"},
		Run: func(root ast.Node) ast.Node {
			return ast.Rewrite(root, func(n ast.Node) ast.Node {
				if b, ok := n.(*ast.Block); ok {
					return dropInBlock(b)
				}
				return n
			})
		},
	}
}

func dropInBlock(b *ast.Block) ast.Node {
	stmts := b.Stmts
	changed := false
	for {
		out, c := dropOnce(stmts)
		if !c {
			break
		}
		stmts = out
		changed = true
	}
	if !changed {
		return b
	}
	if len(stmts) == 1 {
		return stmts[0]
	}
	return &ast.Block{Span: b.Span, Stmts: stmts}
}

func dropOnce(stmts []ast.Node) ([]ast.Node, bool) {
	index := analysis.BuildSuffixIndex(stmts)

	for i, s := range stmts {
		match, ok := s.(*ast.MatchExpr)
		if !ok {
			continue
		}
		binder, ok := match.Pattern.(*ast.PVar)
		if !ok || index.UsedLater(i+1, binder.Name) {
			continue
		}

		last := i == len(stmts)-1
		if last || hasEffects(match.Value) {
			out := make([]ast.Node, len(stmts))
			copy(out, stmts)
			out[i] = match.Value
			return out, true
		}
		out := make([]ast.Node, 0, len(stmts)-1)
		out = append(out, stmts[:i]...)
		out = append(out, stmts[i+1:]...)
		return out, true
	}
	return stmts, false
}

// hasEffects reports whether evaluating n can do more than produce a value.
func hasEffects(n ast.Node) bool {
	effect := false
	ast.Walk(n, func(m ast.Node) bool {
		switch m.(type) {
		case *ast.Call, *ast.RemoteCall, *ast.Raw, *ast.Receive, *ast.Try, *ast.PendingLoop:
			effect = true
		}
		return !effect
	})
	return effect
}
