package loops

import (
	"fmt"

	"github.com/lume-lang/lume/internal/analysis"
	"github.com/lume-lang/lume/internal/ast"
	"github.com/lume-lang/lume/internal/hir"
)

// ExprBuilder translates an input-tree subexpression into a target-tree
// node. It is supplied by the conversion layer; the lowering step never
// translates expressions itself.
type ExprBuilder func(hir.Expr) ast.Node

// Lower consumes an Intent exactly once and returns the replacement target
// subtree. Collection results are rebound to their target variable; general
// while shapes become a self-recursive anonymous function, since the target
// language has no loop statement.
func Lower(intent Intent, b ExprBuilder) (ast.Node, error) {
	if intent == nil {
		return nil, fmt.Errorf("loops: nil intent")
	}
	if b == nil {
		return nil, fmt.Errorf("loops: nil expression builder")
	}

	switch it := intent.(type) {
	case *RangeIntent:
		return lowerEach(it.Var, it.source(), it.Body, b), nil
	case *EachIntent:
		return lowerEach(it.Var, it.Source, it.Body, b), nil
	case *MapIntent:
		call := enumCall("map", lowerSource(it.Source, b), fn1(it.Var, b(it.Transform)))
		return bindTo(it.Target, call), nil
	case *FilterIntent:
		call := enumCall("filter", lowerSource(it.Source, b), fn1(it.Var, b(it.Cond)))
		return bindTo(it.Target, call), nil
	case *FilterMapIntent:
		filtered := enumCall("filter", lowerSource(it.Source, b), fn1(it.Var, b(it.Cond)))
		mapped := enumCall("map", filtered, fn1(it.Var, b(it.Transform)))
		return bindTo(it.Target, mapped), nil
	case *ReduceIntent:
		return lowerReduce(it, b), nil
	case *WhileIntent:
		return lowerRecursive(it.Cond, it.Body, false, b), nil
	case *DoWhileIntent:
		return lowerRecursive(it.Cond, it.Body, true, b), nil
	case *ComprehensionIntent:
		return lowerComprehension(it, b), nil
	default:
		return nil, fmt.Errorf("loops: unsupported intent %q", intent.Kind())
	}
}

func lowerEach(varName string, src Source, body hir.Expr, b ExprBuilder) ast.Node {
	var inner ast.Node = &ast.Atom{Name: "ok"}
	if body != nil {
		inner = b(body)
	}
	return enumCall("each", lowerSource(src, b), fn1(varName, inner))
}

// lowerReduce emits a fold, rebinding the accumulator to the fold's result.
// A halt guard switches to the early-terminating fold form: the body yields
// an explicit halt-vs-continue signal pair through the accumulator, since
// the target form has no non-local exit. The update expression is not
// already a signal, so a continue signal is synthesized around it.
func lowerReduce(it *ReduceIntent, b ExprBuilder) ast.Node {
	src := lowerSource(it.Source, b)
	init := b(it.Init)

	if it.HaltCond == nil {
		body := b(it.Update)
		return bindTo(it.Acc, enumCall("reduce", src, init, fn2(it.Var, it.Acc, body)))
	}

	body := &ast.If{
		Cond: b(it.HaltCond),
		Then: signal("halt", &ast.Var{Name: it.Acc}),
		Else: signal("cont", b(it.Update)),
	}
	return bindTo(it.Acc, enumCall("reduce_while", src, init, fn2(it.Var, it.Acc, body)))
}

// lowerRecursive expresses a general while as a self-recursive anonymous
// function that passes itself as its only argument. postTest runs the body
// once before the first condition check.
func lowerRecursive(cond, body hir.Expr, postTest bool, b ExprBuilder) ast.Node {
	name := freshName("loop", cond, body)
	recurse := func() ast.Node {
		return &ast.Call{Fun: &ast.Var{Name: name}, Args: []ast.Node{&ast.Var{Name: name}}}
	}

	var inner ast.Node
	if postTest {
		inner = &ast.Block{Stmts: []ast.Node{
			b(body),
			&ast.If{Cond: b(cond), Then: recurse(), Else: &ast.Atom{Name: "ok"}},
		}}
	} else {
		inner = &ast.If{
			Cond: b(cond),
			Then: &ast.Block{Stmts: []ast.Node{b(body), recurse()}},
			Else: &ast.Atom{Name: "ok"},
		}
	}

	fn := &ast.Fn{Clauses: []ast.FnClause{{
		Params: []ast.Pattern{&ast.PVar{Name: name}},
		Body:   inner,
	}}}
	return &ast.Block{Stmts: []ast.Node{
		&ast.MatchExpr{Pattern: &ast.PVar{Name: name}, Value: fn},
		recurse(),
	}}
}

func lowerComprehension(it *ComprehensionIntent, b ExprBuilder) ast.Node {
	comp := &ast.For{
		Generators: []ast.Generator{{
			Pattern:    &ast.PVar{Name: it.Var},
			Enumerable: lowerSource(it.Source, b),
		}},
		Body: b(it.Elem),
	}
	if it.Filter != nil {
		comp.Filters = []ast.Node{b(it.Filter)}
	}
	return bindTo(it.Target, comp)
}

// lowerSource turns a Source into the enumerable argument: the collection
// expression, or a range normalized to inclusive bounds (an exclusive
// integer end becomes end-1).
func lowerSource(src Source, b ExprBuilder) ast.Node {
	if src.Seq != nil {
		return b(src.Seq)
	}

	var start ast.Node = &ast.IntLit{Value: 0}
	if src.Start != nil {
		start = b(src.Start)
	}

	end := b(src.End)
	if !src.Inclusive {
		if lit, ok := src.End.(*hir.IntLit); ok {
			end = &ast.IntLit{Value: lit.Value - 1}
		} else {
			end = &ast.BinaryOp{Op: "-", Left: end, Right: &ast.IntLit{Value: 1}}
		}
	}

	var step ast.Node
	if src.Step != nil && !isIntLit(src.Step, 1) {
		step = b(src.Step)
	}
	return &ast.Range{Start: start, End: end, Step: step, Inclusive: true}
}

func isIntLit(e hir.Expr, v int64) bool {
	lit, ok := e.(*hir.IntLit)
	return ok && lit.Value == v
}

func enumCall(fun string, args ...ast.Node) ast.Node {
	return &ast.RemoteCall{Module: "Enum", Fun: fun, Args: args}
}

func fn1(param string, body ast.Node) *ast.Fn {
	return &ast.Fn{Clauses: []ast.FnClause{{
		Params: []ast.Pattern{&ast.PVar{Name: param}},
		Body:   body,
	}}}
}

func fn2(first, second string, body ast.Node) *ast.Fn {
	return &ast.Fn{Clauses: []ast.FnClause{{
		Params: []ast.Pattern{&ast.PVar{Name: first}, &ast.PVar{Name: second}},
		Body:   body,
	}}}
}

func bindTo(name string, value ast.Node) ast.Node {
	return &ast.MatchExpr{Pattern: &ast.PVar{Name: name}, Value: value}
}

func signal(tag string, value ast.Node) ast.Node {
	return &ast.TupleLit{Elems: []ast.Node{&ast.Atom{Name: tag}, value}}
}

// freshName returns base, or base with a numeric suffix when the input
// fragments already mention it.
func freshName(base string, frags ...hir.Expr) string {
	name := base
	for i := 2; ; i++ {
		taken := false
		for _, f := range frags {
			if analysis.UsesInput(f, name) {
				taken = true
				break
			}
		}
		if !taken {
			return name
		}
		name = fmt.Sprintf("%s%d", base, i)
	}
}
