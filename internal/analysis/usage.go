// Package analysis answers variable-usage questions about the target tree:
// whether a name is referenced (not merely bound) inside a node, which names
// a closure captures from its enclosing scope, and which names are still
// needed at or after a given statement. Every rewrite pass of consequence
// consults this package as a read-only oracle.
//
// There is exactly one traversal (usageVisitor) under all of the public
// entry points, so scoping rules cannot drift between them: pattern-bound
// names shadow outer names for the guard and body they govern, pinned
// patterns count as uses, string interpolations are scanned as expressions,
// and raw code spans are matched on token boundaries only.
package analysis

import (
	"strings"

	"github.com/lume-lang/lume/internal/ast"
	"github.com/lume-lang/lume/internal/hir"
)

// Uses reports whether name is referenced anywhere inside n. The query is
// exact: `x` does not match a hygiene-prefixed `_x` or a re-cased `X`.
// A nil node or empty name is never a use.
func Uses(n ast.Node, name string) bool {
	if n == nil || name == "" {
		return false
	}
	m := matcher{names: []string{name}}
	v := usageVisitor{emit: m.matches}
	return v.node(n, nil)
}

// UsesFuzzy is Uses with case-style tolerance: the query also matches the
// name rewritten between snake_case and camelCase word forms, and each form
// with or without a single leading hygiene underscore. Passes that rename a
// binder's casing or underscore prefix independently of its use sites query
// through this shape.
func UsesFuzzy(n ast.Node, name string) bool {
	if n == nil || name == "" {
		return false
	}
	m := matcher{names: Variants(name)}
	v := usageVisitor{emit: m.matches}
	return v.node(n, nil)
}

// UsesInput is Uses for a not-yet-lowered input fragment. Loop detectors ask
// it whether an accumulator's update expression reads the accumulator.
func UsesInput(e hir.Expr, name string) bool {
	if e == nil || name == "" {
		return false
	}
	m := matcher{names: []string{name}}
	v := usageVisitor{emit: m.matches}
	return v.hir(e, nil)
}

// FreeNames returns the set of names n references from its enclosing scope:
// names used inside n but not bound by n's own patterns, parameters, or
// earlier match statements. An inner binder of name x neither counts as a
// use of an outer x nor hides a genuine free reference to it elsewhere.
func FreeNames(n ast.Node) map[string]struct{} {
	out := make(map[string]struct{})
	v := usageVisitor{
		seq: true,
		emit: func(name string) bool {
			out[name] = struct{}{}
			return false
		},
	}
	v.node(n, nil)
	return out
}

// Variants returns the spellings a fuzzy query treats as the same variable:
// the name itself, its snake_case and camelCase word forms, and each with a
// leading underscore added or removed. The original spelling comes first.
func Variants(name string) []string {
	base := strings.TrimPrefix(name, "_")
	forms := []string{base, snakeToCamel(base), camelToSnake(base)}

	out := make([]string, 0, 2*len(forms)+1)
	seen := make(map[string]bool, 2*len(forms)+1)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	add(name)
	for _, f := range forms {
		add(f)
		add("_" + f)
	}
	return out
}

func snakeToCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// matcher is the set of spellings a query accepts.
type matcher struct {
	names []string
}

func (m matcher) matches(name string) bool {
	for _, n := range m.names {
		if n == name {
			return true
		}
	}
	return false
}

// shadowSet tracks names bound by enclosing patterns. Extension copies so
// sibling branches never see each other's binders.
type shadowSet map[string]struct{}

func (s shadowSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s shadowSet) extend(names []string) shadowSet {
	if len(names) == 0 {
		return s
	}
	out := make(shadowSet, len(s)+len(names))
	for k := range s {
		out[k] = struct{}{}
	}
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

// usageVisitor is the canonical scope-aware usage traversal. emit receives
// every unshadowed referenced name and returns true to stop the walk (the
// existence queries stop on first match; the collectors never stop).
//
// seq controls whether a match statement's bindings shadow the rest of the
// enclosing block: the free-name collector needs that (a name bound earlier
// in the body is not free), while plain use queries stay conservative and
// treat any later reference as a use.
type usageVisitor struct {
	seq  bool
	emit func(string) bool
}

func (v *usageVisitor) ref(name string, shadow shadowSet) bool {
	if shadow.has(name) {
		return false
	}
	return v.emit(name)
}

// node walks n and reports whether emit stopped the traversal. Every node
// variant is matched explicitly; an unknown variant uses nothing rather
// than aborting the pipeline.
func (v *usageVisitor) node(n ast.Node, shadow shadowSet) bool {
	if n == nil {
		return false
	}

	switch node := n.(type) {
	case *ast.Var:
		return v.ref(node.Name, shadow)
	case *ast.Atom, *ast.IntLit, *ast.FloatLit, *ast.BoolLit, *ast.NilLit:
		return false
	case *ast.StringLit:
		for _, seg := range node.Segments {
			if seg.Interp != nil && v.node(seg.Interp, shadow) {
				return true
			}
		}
		return false
	case *ast.Block:
		cur := shadow
		for _, s := range node.Stmts {
			if v.node(s, cur) {
				return true
			}
			if v.seq {
				if match, ok := s.(*ast.MatchExpr); ok {
					cur = cur.extend(ast.PatternNames(match.Pattern))
				}
			}
		}
		return false
	case *ast.BinaryOp:
		return v.node(node.Left, shadow) || v.node(node.Right, shadow)
	case *ast.UnaryOp:
		return v.node(node.Operand, shadow)
	case *ast.MatchExpr:
		// Only the right-hand side is expression position; the pattern
		// binds and is excluded, except for its own uses (pins, map keys,
		// binary sizes).
		return v.patternUses(node.Pattern, shadow) || v.node(node.Value, shadow)
	case *ast.If:
		return v.node(node.Cond, shadow) || v.node(node.Then, shadow) || v.node(node.Else, shadow)
	case *ast.Case:
		if v.node(node.Subject, shadow) {
			return true
		}
		return v.clauses(node.Clauses, shadow)
	case *ast.With:
		cur := shadow
		for _, c := range node.Clauses {
			if v.patternUses(c.Pattern, cur) || v.node(c.Value, cur) {
				return true
			}
			cur = cur.extend(ast.PatternNames(c.Pattern))
		}
		if v.node(node.Body, cur) {
			return true
		}
		return v.clauses(node.ElseClauses, shadow)
	case *ast.For:
		cur := shadow
		for _, g := range node.Generators {
			if v.patternUses(g.Pattern, cur) || v.node(g.Enumerable, cur) {
				return true
			}
			cur = cur.extend(ast.PatternNames(g.Pattern))
		}
		for _, f := range node.Filters {
			if v.node(f, cur) {
				return true
			}
		}
		return v.node(node.Into, shadow) || v.node(node.Body, cur)
	case *ast.Fn:
		for _, c := range node.Clauses {
			var bound []string
			for _, p := range c.Params {
				if v.patternUses(p, shadow) {
					return true
				}
				bound = append(bound, ast.PatternNames(p)...)
			}
			inner := shadow.extend(bound)
			if v.node(c.Guard, inner) || v.node(c.Body, inner) {
				return true
			}
		}
		return false
	case *ast.Call:
		if v.node(node.Fun, shadow) {
			return true
		}
		return v.all(node.Args, shadow)
	case *ast.RemoteCall:
		return v.all(node.Args, shadow)
	case *ast.Access:
		return v.node(node.Subject, shadow) || v.node(node.Key, shadow)
	case *ast.ListLit:
		return v.all(node.Elems, shadow)
	case *ast.TupleLit:
		return v.all(node.Elems, shadow)
	case *ast.MapLit:
		for _, e := range node.Entries {
			if v.node(e.Key, shadow) || v.node(e.Value, shadow) {
				return true
			}
		}
		return false
	case *ast.StructLit:
		for _, f := range node.Fields {
			if v.node(f.Value, shadow) {
				return true
			}
		}
		return false
	case *ast.Range:
		return v.node(node.Start, shadow) || v.node(node.End, shadow) || v.node(node.Step, shadow)
	case *ast.Receive:
		if v.clauses(node.Clauses, shadow) {
			return true
		}
		return v.node(node.AfterMs, shadow) || v.node(node.AfterBody, shadow)
	case *ast.Try:
		if v.node(node.Body, shadow) {
			return true
		}
		if v.clauses(node.Rescue, shadow) || v.clauses(node.Catch, shadow) {
			return true
		}
		return v.node(node.After, shadow)
	case *ast.Raw:
		return v.raw(node.Code, shadow)
	case *ast.PendingLoop:
		// Input-tree fragment awaiting lowering: scanned so a hygiene pass
		// never drops a binder the lowered form will need.
		return v.hir(node.Loop, shadow)
	default:
		return false
	}
}

func (v *usageVisitor) all(nodes []ast.Node, shadow shadowSet) bool {
	for _, n := range nodes {
		if v.node(n, shadow) {
			return true
		}
	}
	return false
}

func (v *usageVisitor) clauses(clauses []ast.CaseClause, shadow shadowSet) bool {
	for _, c := range clauses {
		if v.patternUses(c.Pattern, shadow) {
			return true
		}
		inner := shadow.extend(ast.PatternNames(c.Pattern))
		if v.node(c.Guard, inner) || v.node(c.Body, inner) {
			return true
		}
	}
	return false
}

// patternUses visits the use positions inside a pattern: pins, map key
// expressions and binary size specifiers. Bind positions are skipped.
func (v *usageVisitor) patternUses(p ast.Pattern, shadow shadowSet) bool {
	if p == nil {
		return false
	}

	switch pat := p.(type) {
	case *ast.PWildcard, *ast.PVar:
		return false
	case *ast.Pin:
		return v.ref(pat.Name, shadow)
	case *ast.PLiteral:
		return v.node(pat.Value, shadow)
	case *ast.PTuple:
		for _, e := range pat.Elems {
			if v.patternUses(e, shadow) {
				return true
			}
		}
		return false
	case *ast.PList:
		for _, e := range pat.Elems {
			if v.patternUses(e, shadow) {
				return true
			}
		}
		return false
	case *ast.PCons:
		return v.patternUses(pat.Head, shadow) || v.patternUses(pat.Tail, shadow)
	case *ast.PMap:
		for _, e := range pat.Entries {
			if v.node(e.Key, shadow) || v.patternUses(e.Value, shadow) {
				return true
			}
		}
		return false
	case *ast.PStruct:
		for _, f := range pat.Fields {
			if v.patternUses(f.Value, shadow) {
				return true
			}
		}
		return false
	case *ast.PAlias:
		return v.patternUses(pat.Pattern, shadow)
	case *ast.PBinary:
		for _, s := range pat.Segments {
			if v.patternUses(s.Value, shadow) || v.node(s.Size, shadow) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// raw emits every identifier-shaped token in a raw code span. Tokens are
// delimited by non-identifier characters, so `t` never matches inside
// `total`.
func (v *usageVisitor) raw(code string, shadow shadowSet) bool {
	start := -1
	for i := 0; i <= len(code); i++ {
		if i < len(code) && isIdentByte(code[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tok := code[start:i]
			start = -1
			if tok[0] >= '0' && tok[0] <= '9' {
				continue // number, not an identifier
			}
			if v.ref(tok, shadow) {
				return true
			}
		}
	}
	return false
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '?' || b == '!' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// hir scans a not-yet-lowered input fragment. Loop variables bound by the
// fragment shadow the queried name for the loop body, mirroring the
// target-tree rules.
func (v *usageVisitor) hir(e hir.Expr, shadow shadowSet) bool {
	if e == nil {
		return false
	}

	switch node := e.(type) {
	case *hir.Ident:
		return v.ref(node.Name, shadow)
	case *hir.IntLit, *hir.FloatLit, *hir.BoolLit, *hir.StringLit, *hir.Break, *hir.Continue:
		return false
	case *hir.Binary:
		return v.hir(node.Left, shadow) || v.hir(node.Right, shadow)
	case *hir.Unary:
		return v.hir(node.Operand, shadow)
	case *hir.Assign:
		return v.hir(node.Target, shadow) || v.hir(node.Value, shadow)
	case *hir.Call:
		if v.hir(node.Recv, shadow) {
			return true
		}
		for _, a := range node.Args {
			if v.hir(a, shadow) {
				return true
			}
		}
		return false
	case *hir.Index:
		return v.hir(node.Subject, shadow) || v.hir(node.Key, shadow)
	case *hir.Field:
		return v.hir(node.Subject, shadow)
	case *hir.Block:
		for _, s := range node.Stmts {
			if v.hir(s, shadow) {
				return true
			}
		}
		return false
	case *hir.If:
		return v.hir(node.Cond, shadow) || v.hir(node.Then, shadow) || v.hir(node.Else, shadow)
	case *hir.While:
		return v.hir(node.Cond, shadow) || v.hir(node.Body, shadow)
	case *hir.DoWhile:
		return v.hir(node.Body, shadow) || v.hir(node.Cond, shadow)
	case *hir.ForRange:
		if v.hir(node.Start, shadow) || v.hir(node.End, shadow) || v.hir(node.Step, shadow) {
			return true
		}
		return v.hir(node.Body, shadow.extend([]string{node.Var}))
	case *hir.ForIn:
		if v.hir(node.Seq, shadow) {
			return true
		}
		return v.hir(node.Body, shadow.extend([]string{node.Var}))
	case *hir.Return:
		return v.hir(node.Value, shadow)
	default:
		return false
	}
}
