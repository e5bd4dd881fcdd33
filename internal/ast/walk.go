package ast

import (
	"fmt"
	"reflect"
)

// Walk traverses the tree rooted at n in preorder, calling fn for every
// expression node. If fn returns false the node's children are skipped.
// Expressions embedded in pattern position (pin-free literal values, map
// keys, binary sizes) are visited too.
//
// Walk and Rewrite are the two canonical traversals: every node variant is
// matched explicitly and an unknown variant panics, so a new variant cannot
// be added without updating them (and, through them, every analyzer built
// on top).
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	switch node := n.(type) {
	case *Var, *Atom, *IntLit, *FloatLit, *BoolLit, *NilLit, *Raw, *PendingLoop:
		// Leaves. PendingLoop holds an input-tree fragment that target-tree
		// traversals do not descend into.
	case *StringLit:
		for _, seg := range node.Segments {
			if seg.Interp != nil {
				Walk(seg.Interp, fn)
			}
		}
	case *Block:
		for _, s := range node.Stmts {
			Walk(s, fn)
		}
	case *BinaryOp:
		Walk(node.Left, fn)
		Walk(node.Right, fn)
	case *UnaryOp:
		Walk(node.Operand, fn)
	case *MatchExpr:
		WalkPattern(node.Pattern, fn)
		Walk(node.Value, fn)
	case *If:
		Walk(node.Cond, fn)
		Walk(node.Then, fn)
		Walk(node.Else, fn)
	case *Case:
		Walk(node.Subject, fn)
		for _, c := range node.Clauses {
			WalkPattern(c.Pattern, fn)
			Walk(c.Guard, fn)
			Walk(c.Body, fn)
		}
	case *With:
		for _, c := range node.Clauses {
			WalkPattern(c.Pattern, fn)
			Walk(c.Value, fn)
		}
		Walk(node.Body, fn)
		for _, c := range node.ElseClauses {
			WalkPattern(c.Pattern, fn)
			Walk(c.Guard, fn)
			Walk(c.Body, fn)
		}
	case *For:
		for _, g := range node.Generators {
			WalkPattern(g.Pattern, fn)
			Walk(g.Enumerable, fn)
		}
		for _, f := range node.Filters {
			Walk(f, fn)
		}
		Walk(node.Into, fn)
		Walk(node.Body, fn)
	case *Fn:
		for _, c := range node.Clauses {
			for _, p := range c.Params {
				WalkPattern(p, fn)
			}
			Walk(c.Guard, fn)
			Walk(c.Body, fn)
		}
	case *Call:
		Walk(node.Fun, fn)
		for _, a := range node.Args {
			Walk(a, fn)
		}
	case *RemoteCall:
		for _, a := range node.Args {
			Walk(a, fn)
		}
	case *Access:
		Walk(node.Subject, fn)
		Walk(node.Key, fn)
	case *ListLit:
		for _, e := range node.Elems {
			Walk(e, fn)
		}
	case *TupleLit:
		for _, e := range node.Elems {
			Walk(e, fn)
		}
	case *MapLit:
		for _, e := range node.Entries {
			Walk(e.Key, fn)
			Walk(e.Value, fn)
		}
	case *StructLit:
		for _, f := range node.Fields {
			Walk(f.Value, fn)
		}
	case *Range:
		Walk(node.Start, fn)
		Walk(node.End, fn)
		Walk(node.Step, fn)
	case *Receive:
		for _, c := range node.Clauses {
			WalkPattern(c.Pattern, fn)
			Walk(c.Guard, fn)
			Walk(c.Body, fn)
		}
		Walk(node.AfterMs, fn)
		Walk(node.AfterBody, fn)
	case *Try:
		Walk(node.Body, fn)
		for _, c := range node.Rescue {
			WalkPattern(c.Pattern, fn)
			Walk(c.Guard, fn)
			Walk(c.Body, fn)
		}
		for _, c := range node.Catch {
			WalkPattern(c.Pattern, fn)
			Walk(c.Guard, fn)
			Walk(c.Body, fn)
		}
		Walk(node.After, fn)
	default:
		panic(fmt.Sprintf("ast.Walk: unhandled node %T", n))
	}
}

// WalkPattern visits the expression nodes embedded in a pattern.
func WalkPattern(p Pattern, fn func(Node) bool) {
	if p == nil {
		return
	}

	switch pat := p.(type) {
	case *PWildcard, *PVar, *Pin:
	case *PLiteral:
		Walk(pat.Value, fn)
	case *PTuple:
		for _, e := range pat.Elems {
			WalkPattern(e, fn)
		}
	case *PList:
		for _, e := range pat.Elems {
			WalkPattern(e, fn)
		}
	case *PCons:
		WalkPattern(pat.Head, fn)
		WalkPattern(pat.Tail, fn)
	case *PMap:
		for _, e := range pat.Entries {
			Walk(e.Key, fn)
			WalkPattern(e.Value, fn)
		}
	case *PStruct:
		for _, f := range pat.Fields {
			WalkPattern(f.Value, fn)
		}
	case *PAlias:
		WalkPattern(pat.Pattern, fn)
	case *PBinary:
		for _, s := range pat.Segments {
			WalkPattern(s.Value, fn)
			Walk(s.Size, fn)
		}
	default:
		panic(fmt.Sprintf("ast.WalkPattern: unhandled pattern %T", p))
	}
}

// Rewrite rebuilds the tree bottom-up, applying fn to every expression node
// after its children have been rewritten. Children are copied only when
// something below them changed, so untouched subtrees are shared with the
// input and must be treated as immutable by callers.
func Rewrite(n Node, fn func(Node) Node) Node {
	if n == nil {
		return nil
	}

	out := n
	switch node := n.(type) {
	case *Var, *Atom, *IntLit, *FloatLit, *BoolLit, *NilLit, *Raw, *PendingLoop:
	case *StringLit:
		segs := node.Segments
		changed := false
		for i, seg := range node.Segments {
			if seg.Interp == nil {
				continue
			}
			interp := Rewrite(seg.Interp, fn)
			if interp != seg.Interp {
				if !changed {
					segs = append([]StringSeg(nil), node.Segments...)
					changed = true
				}
				segs[i].Interp = interp
			}
		}
		if changed {
			out = &StringLit{Span: node.Span, Segments: segs}
		}
	case *Block:
		stmts, changed := rewriteNodes(node.Stmts, fn)
		if changed {
			out = &Block{Span: node.Span, Stmts: stmts}
		}
	case *BinaryOp:
		left := Rewrite(node.Left, fn)
		right := Rewrite(node.Right, fn)
		if left != node.Left || right != node.Right {
			out = &BinaryOp{Span: node.Span, Op: node.Op, Left: left, Right: right}
		}
	case *UnaryOp:
		operand := Rewrite(node.Operand, fn)
		if operand != node.Operand {
			out = &UnaryOp{Span: node.Span, Op: node.Op, Operand: operand}
		}
	case *MatchExpr:
		pat := rewritePattern(node.Pattern, fn)
		value := Rewrite(node.Value, fn)
		if pat != node.Pattern || value != node.Value {
			out = &MatchExpr{Span: node.Span, Pattern: pat, Value: value}
		}
	case *If:
		cond := Rewrite(node.Cond, fn)
		then := Rewrite(node.Then, fn)
		els := Rewrite(node.Else, fn)
		if cond != node.Cond || then != node.Then || els != node.Else {
			out = &If{Span: node.Span, Cond: cond, Then: then, Else: els}
		}
	case *Case:
		subject := Rewrite(node.Subject, fn)
		clauses, clausesChanged := rewriteClauses(node.Clauses, fn)
		if subject != node.Subject || clausesChanged {
			out = &Case{Span: node.Span, Subject: subject, Clauses: clauses}
		}
	case *With:
		clauses := node.Clauses
		changed := false
		for i, c := range node.Clauses {
			pat := rewritePattern(c.Pattern, fn)
			value := Rewrite(c.Value, fn)
			if pat != c.Pattern || value != c.Value {
				if !changed {
					clauses = append([]WithClause(nil), node.Clauses...)
					changed = true
				}
				clauses[i] = WithClause{Pattern: pat, Value: value}
			}
		}
		body := Rewrite(node.Body, fn)
		elseClauses, elseChanged := rewriteClauses(node.ElseClauses, fn)
		if changed || body != node.Body || elseChanged {
			out = &With{Span: node.Span, Clauses: clauses, Body: body, ElseClauses: elseClauses}
		}
	case *For:
		gens := node.Generators
		changed := false
		for i, g := range node.Generators {
			pat := rewritePattern(g.Pattern, fn)
			enum := Rewrite(g.Enumerable, fn)
			if pat != g.Pattern || enum != g.Enumerable {
				if !changed {
					gens = append([]Generator(nil), node.Generators...)
					changed = true
				}
				gens[i] = Generator{Pattern: pat, Enumerable: enum}
			}
		}
		filters, filtersChanged := rewriteNodes(node.Filters, fn)
		into := Rewrite(node.Into, fn)
		body := Rewrite(node.Body, fn)
		if changed || filtersChanged || into != node.Into || body != node.Body {
			out = &For{Span: node.Span, Generators: gens, Filters: filters, Into: into, Body: body}
		}
	case *Fn:
		clauses := node.Clauses
		changed := false
		for i, c := range node.Clauses {
			params := c.Params
			paramsChanged := false
			for j, p := range c.Params {
				rp := rewritePattern(p, fn)
				if rp != p {
					if !paramsChanged {
						params = append([]Pattern(nil), c.Params...)
						paramsChanged = true
					}
					params[j] = rp
				}
			}
			guard := Rewrite(c.Guard, fn)
			body := Rewrite(c.Body, fn)
			if paramsChanged || guard != c.Guard || body != c.Body {
				if !changed {
					clauses = append([]FnClause(nil), node.Clauses...)
					changed = true
				}
				clauses[i] = FnClause{Params: params, Guard: guard, Body: body}
			}
		}
		if changed {
			out = &Fn{Span: node.Span, Clauses: clauses}
		}
	case *Call:
		fun := Rewrite(node.Fun, fn)
		args, argsChanged := rewriteNodes(node.Args, fn)
		if fun != node.Fun || argsChanged {
			out = &Call{Span: node.Span, Fun: fun, Args: args}
		}
	case *RemoteCall:
		args, argsChanged := rewriteNodes(node.Args, fn)
		if argsChanged {
			out = &RemoteCall{Span: node.Span, Module: node.Module, Fun: node.Fun, Args: args}
		}
	case *Access:
		subject := Rewrite(node.Subject, fn)
		key := Rewrite(node.Key, fn)
		if subject != node.Subject || key != node.Key {
			out = &Access{Span: node.Span, Subject: subject, Key: key}
		}
	case *ListLit:
		elems, changed := rewriteNodes(node.Elems, fn)
		if changed {
			out = &ListLit{Span: node.Span, Elems: elems}
		}
	case *TupleLit:
		elems, changed := rewriteNodes(node.Elems, fn)
		if changed {
			out = &TupleLit{Span: node.Span, Elems: elems}
		}
	case *MapLit:
		entries := node.Entries
		changed := false
		for i, e := range node.Entries {
			key := Rewrite(e.Key, fn)
			value := Rewrite(e.Value, fn)
			if key != e.Key || value != e.Value {
				if !changed {
					entries = append([]MapEntry(nil), node.Entries...)
					changed = true
				}
				entries[i] = MapEntry{Key: key, Value: value}
			}
		}
		if changed {
			out = &MapLit{Span: node.Span, Entries: entries}
		}
	case *StructLit:
		fields := node.Fields
		changed := false
		for i, f := range node.Fields {
			value := Rewrite(f.Value, fn)
			if value != f.Value {
				if !changed {
					fields = append([]StructField(nil), node.Fields...)
					changed = true
				}
				fields[i] = StructField{Name: f.Name, Value: value}
			}
		}
		if changed {
			out = &StructLit{Span: node.Span, Module: node.Module, Fields: fields}
		}
	case *Range:
		start := Rewrite(node.Start, fn)
		end := Rewrite(node.End, fn)
		step := Rewrite(node.Step, fn)
		if start != node.Start || end != node.End || step != node.Step {
			out = &Range{Span: node.Span, Start: start, End: end, Step: step, Inclusive: node.Inclusive}
		}
	case *Receive:
		clauses, clausesChanged := rewriteClauses(node.Clauses, fn)
		afterMs := Rewrite(node.AfterMs, fn)
		afterBody := Rewrite(node.AfterBody, fn)
		if clausesChanged || afterMs != node.AfterMs || afterBody != node.AfterBody {
			out = &Receive{Span: node.Span, Clauses: clauses, AfterMs: afterMs, AfterBody: afterBody}
		}
	case *Try:
		body := Rewrite(node.Body, fn)
		rescue, rescueChanged := rewriteClauses(node.Rescue, fn)
		catch, catchChanged := rewriteClauses(node.Catch, fn)
		after := Rewrite(node.After, fn)
		if body != node.Body || rescueChanged || catchChanged || after != node.After {
			out = &Try{Span: node.Span, Body: body, Rescue: rescue, Catch: catch, After: after}
		}
	default:
		panic(fmt.Sprintf("ast.Rewrite: unhandled node %T", n))
	}

	return fn(out)
}

func rewriteNodes(nodes []Node, fn func(Node) Node) ([]Node, bool) {
	out := nodes
	changed := false
	for i, n := range nodes {
		rn := Rewrite(n, fn)
		if rn != n {
			if !changed {
				out = append([]Node(nil), nodes...)
				changed = true
			}
			out[i] = rn
		}
	}
	return out, changed
}

func rewriteClauses(clauses []CaseClause, fn func(Node) Node) ([]CaseClause, bool) {
	out := clauses
	changed := false
	for i, c := range clauses {
		pat := rewritePattern(c.Pattern, fn)
		guard := Rewrite(c.Guard, fn)
		body := Rewrite(c.Body, fn)
		if pat != c.Pattern || guard != c.Guard || body != c.Body {
			if !changed {
				out = append([]CaseClause(nil), clauses...)
				changed = true
			}
			out[i] = CaseClause{Pattern: pat, Guard: guard, Body: body}
		}
	}
	return out, changed
}

func rewritePatterns(pats []Pattern, fn func(Node) Node) ([]Pattern, bool) {
	out := pats
	changed := false
	for i, p := range pats {
		rp := rewritePattern(p, fn)
		if rp != p {
			if !changed {
				out = append([]Pattern(nil), pats...)
				changed = true
			}
			out[i] = rp
		}
	}
	return out, changed
}

// rewritePattern rewrites the expressions embedded in a pattern. Pattern
// structure itself is preserved; only expression positions change.
func rewritePattern(p Pattern, fn func(Node) Node) Pattern {
	if p == nil {
		return nil
	}

	switch pat := p.(type) {
	case *PWildcard, *PVar, *Pin:
		return p
	case *PLiteral:
		value := Rewrite(pat.Value, fn)
		if value != pat.Value {
			return &PLiteral{Span: pat.Span, Value: value}
		}
		return p
	case *PTuple:
		elems, changed := rewritePatterns(pat.Elems, fn)
		if changed {
			return &PTuple{Span: pat.Span, Elems: elems}
		}
		return p
	case *PList:
		elems, changed := rewritePatterns(pat.Elems, fn)
		if changed {
			return &PList{Span: pat.Span, Elems: elems}
		}
		return p
	case *PCons:
		head := rewritePattern(pat.Head, fn)
		tail := rewritePattern(pat.Tail, fn)
		if head != pat.Head || tail != pat.Tail {
			return &PCons{Span: pat.Span, Head: head, Tail: tail}
		}
		return p
	case *PMap:
		entries := pat.Entries
		changed := false
		for i, e := range pat.Entries {
			key := Rewrite(e.Key, fn)
			value := rewritePattern(e.Value, fn)
			if key != e.Key || value != e.Value {
				if !changed {
					entries = append([]PMapEntry(nil), pat.Entries...)
					changed = true
				}
				entries[i] = PMapEntry{Key: key, Value: value}
			}
		}
		if changed {
			return &PMap{Span: pat.Span, Entries: entries}
		}
		return p
	case *PStruct:
		fields := pat.Fields
		changed := false
		for i, f := range pat.Fields {
			value := rewritePattern(f.Value, fn)
			if value != f.Value {
				if !changed {
					fields = append([]PStructField(nil), pat.Fields...)
					changed = true
				}
				fields[i] = PStructField{Name: f.Name, Value: value}
			}
		}
		if changed {
			return &PStruct{Span: pat.Span, Module: pat.Module, Fields: fields}
		}
		return p
	case *PAlias:
		inner := rewritePattern(pat.Pattern, fn)
		if inner != pat.Pattern {
			return &PAlias{Span: pat.Span, Name: pat.Name, Pattern: inner}
		}
		return p
	case *PBinary:
		segs := pat.Segments
		changed := false
		for i, s := range pat.Segments {
			value := rewritePattern(s.Value, fn)
			size := Rewrite(s.Size, fn)
			if value != s.Value || size != s.Size {
				if !changed {
					segs = append([]BinSegment(nil), pat.Segments...)
					changed = true
				}
				segs[i] = BinSegment{Value: value, Size: size, Type: s.Type}
			}
		}
		if changed {
			return &PBinary{Span: pat.Span, Segments: segs}
		}
		return p
	default:
		panic(fmt.Sprintf("ast.rewritePattern: unhandled pattern %T", p))
	}
}

// Equal reports structural equality of two trees, spans included. The
// pipeline's idempotence property is stated in terms of Equal.
func Equal(a, b Node) bool {
	return reflect.DeepEqual(a, b)
}
