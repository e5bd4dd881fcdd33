package loops

import (
	"strings"

	"github.com/lume-lang/lume/internal/analysis"
	"github.com/lume-lang/lume/internal/hir"
	"github.com/lume-lang/lume/internal/position"
)

// Confidence is a coarse preference score, not a probability: it exists only
// to pick one detector's finding when several fire on the same node.
const (
	confRange         = 0.9
	confComprehension = 0.85
	confMap           = 0.8
	confFilter        = 0.8
	confFilterMap     = 0.75
	confReduce        = 0.7
	confRangeFor      = 0.5
	confEach          = 0.4
	confWhile         = 0.3
)

// Analyzer classifies loops. The zero value prefers transform/select calls;
// PreferComprehension switches pure appends to generator syntax.
type Analyzer struct {
	PreferComprehension bool
}

// Analyze classifies loop with the default analyzer configuration.
func Analyze(loop hir.Expr) (Intent, bool) {
	return Analyzer{}.Analyze(loop)
}

type detector struct {
	name   string
	detect func(a Analyzer, loop hir.Expr) (Intent, float64)
}

// detectors run in order; on equal confidence the earlier declaration wins.
var detectors = []detector{
	{"range-while", detectRangeWhile},
	{"comprehension", detectComprehension},
	{"map-append", detectMapAppend},
	{"filter-append", detectFilterAppend},
	{"filter-map-append", detectFilterMapAppend},
	{"reduce-fold", detectReduceFold},
	{"range-for", detectRangeFor},
	{"each", detectEach},
	{"while-recurse", detectWhileFallback},
}

// Analyze runs every detector over loop and returns the highest-confidence
// intent. It never builds target-tree nodes. ok is false when no detector
// matches; the caller leaves the loop in its original form.
func (a Analyzer) Analyze(loop hir.Expr) (Intent, bool) {
	var best Intent
	bestConf := 0.0
	for _, d := range detectors {
		intent, conf := d.detect(a, loop)
		if intent != nil && conf > bestConf {
			best, bestConf = intent, conf
		}
	}
	return best, best != nil
}

// detectRangeWhile matches a while-loop carrying its own counter: a `<` or
// `<=` bound test on an index variable plus exactly one matching increment
// at the top level of the body. Missing either half invalidates the match.
// The initializer lives outside the loop, so Start stays nil (defaults to 0
// at lowering).
func detectRangeWhile(_ Analyzer, loop hir.Expr) (Intent, float64) {
	w, ok := loop.(*hir.While)
	if !ok {
		return nil, 0
	}
	cond, ok := w.Cond.(*hir.Binary)
	if !ok || (cond.Op != "<" && cond.Op != "<=") {
		return nil, 0
	}
	idx, ok := cond.Left.(*hir.Ident)
	if !ok {
		return nil, 0
	}

	var step hir.Expr
	var rest []hir.Expr
	for _, stmt := range hir.Stmts(w.Body) {
		if s, ok := incrementOf(stmt, idx.Name); ok {
			if step != nil {
				return nil, 0 // two increments, shape is ambiguous
			}
			step = s
			continue
		}
		rest = append(rest, stmt)
	}
	if step == nil {
		return nil, 0
	}
	for _, stmt := range rest {
		if assignsTo(stmt, idx.Name) || escapes(stmt) {
			return nil, 0
		}
	}

	return &RangeIntent{
		Var:       idx.Name,
		End:       cond.Right,
		Step:      step,
		Inclusive: cond.Op == "<=",
		Body:      blockOf(w.Span, rest),
	}, confRange
}

// incrementOf matches `name += k` and `name = name + k`, returning the step.
func incrementOf(stmt hir.Expr, name string) (hir.Expr, bool) {
	asg, ok := stmt.(*hir.Assign)
	if !ok {
		return nil, false
	}
	target, ok := asg.Target.(*hir.Ident)
	if !ok || target.Name != name {
		return nil, false
	}
	if asg.Op == "+=" {
		return asg.Value, true
	}
	if asg.Op != "" {
		return nil, false
	}
	bin, ok := asg.Value.(*hir.Binary)
	if !ok || bin.Op != "+" {
		return nil, false
	}
	if l, ok := bin.Left.(*hir.Ident); ok && l.Name == name {
		return bin.Right, true
	}
	if r, ok := bin.Right.(*hir.Ident); ok && r.Name == name {
		return bin.Left, true
	}
	return nil, false
}

func detectComprehension(a Analyzer, loop hir.Expr) (Intent, float64) {
	if !a.PreferComprehension {
		return nil, 0
	}
	v, src, body, ok := iterSource(loop)
	if !ok {
		return nil, 0
	}
	stmt, ok := singleStmt(body)
	if !ok {
		return nil, 0
	}

	if target, elem, ok := pushAppend(stmt); ok {
		return &ComprehensionIntent{Var: v, Source: src, Target: target, Elem: elem}, confComprehension
	}
	if cond, target, elem, ok := guardedAppend(stmt); ok {
		return &ComprehensionIntent{Var: v, Source: src, Filter: cond, Target: target, Elem: elem}, confComprehension
	}
	return nil, 0
}

// detectMapAppend matches a body that is exactly one unconditional append of
// a per-element value.
func detectMapAppend(_ Analyzer, loop hir.Expr) (Intent, float64) {
	v, src, body, ok := iterSource(loop)
	if !ok {
		return nil, 0
	}
	stmt, ok := singleStmt(body)
	if !ok {
		return nil, 0
	}
	target, value, ok := pushAppend(stmt)
	if !ok || target == v {
		return nil, 0
	}
	return &MapIntent{Var: v, Source: src, Target: target, Transform: value}, confMap
}

// detectFilterAppend matches a guarded append of the element itself,
// unchanged.
func detectFilterAppend(_ Analyzer, loop hir.Expr) (Intent, float64) {
	v, src, body, ok := iterSource(loop)
	if !ok {
		return nil, 0
	}
	stmt, ok := singleStmt(body)
	if !ok {
		return nil, 0
	}
	cond, target, value, ok := guardedAppend(stmt)
	if !ok || target == v {
		return nil, 0
	}
	if id, ok := value.(*hir.Ident); !ok || id.Name != v {
		return nil, 0
	}
	return &FilterIntent{Var: v, Source: src, Target: target, Cond: cond}, confFilter
}

// detectFilterMapAppend matches a guarded append of a transformed element:
// the same shape a filter leaves, except the appended value is no longer the
// plain element. The guard travels with the transform, never dropped.
func detectFilterMapAppend(_ Analyzer, loop hir.Expr) (Intent, float64) {
	v, src, body, ok := iterSource(loop)
	if !ok {
		return nil, 0
	}
	stmt, ok := singleStmt(body)
	if !ok {
		return nil, 0
	}
	cond, target, value, ok := guardedAppend(stmt)
	if !ok || target == v {
		return nil, 0
	}
	if id, ok := value.(*hir.Ident); ok && id.Name == v {
		return nil, 0 // plain element: that is a filter
	}
	return &FilterMapIntent{Var: v, Source: src, Target: target, Cond: cond, Transform: value}, confFilterMap
}

// detectReduceFold matches accumulation into a scalar: exactly one
// compound-assignment-like update of a non-element variable, optionally
// preceded by one top-level `if cond { break }` guard. A break or return
// buried deeper than that one conditional level does not match, and the
// loop is left alone.
func detectReduceFold(_ Analyzer, loop hir.Expr) (Intent, float64) {
	v, src, body, ok := iterSource(loop)
	if !ok {
		return nil, 0
	}

	var acc string
	var init, update, halt hir.Expr
	for _, stmt := range hir.Stmts(body) {
		if name, target, upd, ok := accUpdate(stmt, v); ok {
			if update != nil {
				return nil, 0 // second accumulator, not a simple fold
			}
			acc, init, update = name, target, upd
			continue
		}
		if cond, ok := breakGuard(stmt); ok {
			if halt != nil || update != nil {
				// Second guard, or a guard after the update: the
				// halt-before-accumulate shape no longer holds.
				return nil, 0
			}
			halt = cond
			continue
		}
		return nil, 0
	}
	if update == nil {
		return nil, 0
	}

	return &ReduceIntent{Var: v, Source: src, Acc: acc, Init: init, Update: update, HaltCond: halt}, confReduce
}

// accUpdate matches `acc op= expr` and `acc = expr-reading-acc`, returning
// the accumulator name, an expression for its incoming value, and the full
// replacement expression computed each iteration.
func accUpdate(stmt hir.Expr, loopVar string) (string, hir.Expr, hir.Expr, bool) {
	asg, ok := stmt.(*hir.Assign)
	if !ok {
		return "", nil, nil, false
	}
	target, ok := asg.Target.(*hir.Ident)
	if !ok || target.Name == loopVar {
		return "", nil, nil, false
	}
	if escapes(asg.Value) {
		return "", nil, nil, false
	}

	if asg.Op != "" {
		op := strings.TrimSuffix(asg.Op, "=")
		upd := &hir.Binary{Span: asg.Span, Op: op, Left: target, Right: asg.Value}
		return target.Name, target, upd, true
	}
	if !analysis.UsesInput(asg.Value, target.Name) {
		return "", nil, nil, false
	}
	return target.Name, target, asg.Value, true
}

// breakGuard matches `if cond { break }` with no else branch.
func breakGuard(stmt hir.Expr) (hir.Expr, bool) {
	cond, ok := stmt.(*hir.If)
	if !ok || cond.Else != nil {
		return nil, false
	}
	then := hir.Stmts(cond.Then)
	if len(then) != 1 {
		return nil, false
	}
	if _, ok := then[0].(*hir.Break); !ok {
		return nil, false
	}
	return cond.Cond, true
}

// detectRangeFor accepts any counted for whose body keeps control inside the
// loop. It scores below the body-shape detectors so an append or fold over a
// range is classified by what the body does, not how it iterates.
func detectRangeFor(_ Analyzer, loop hir.Expr) (Intent, float64) {
	fr, ok := loop.(*hir.ForRange)
	if !ok || escapes(fr.Body) {
		return nil, 0
	}
	return &RangeIntent{
		Var:       fr.Var,
		Start:     fr.Start,
		End:       fr.End,
		Step:      fr.Step,
		Inclusive: fr.Inclusive,
		Body:      fr.Body,
	}, confRangeFor
}

func detectEach(_ Analyzer, loop hir.Expr) (Intent, float64) {
	fi, ok := loop.(*hir.ForIn)
	if !ok || escapes(fi.Body) {
		return nil, 0
	}
	return &EachIntent{Var: fi.Var, Source: Source{Seq: fi.Seq}, Body: fi.Body}, confEach
}

func detectWhileFallback(_ Analyzer, loop hir.Expr) (Intent, float64) {
	switch l := loop.(type) {
	case *hir.While:
		if escapes(l.Body) {
			return nil, 0
		}
		return &WhileIntent{Cond: l.Cond, Body: l.Body}, confWhile
	case *hir.DoWhile:
		if escapes(l.Body) {
			return nil, 0
		}
		return &DoWhileIntent{Cond: l.Cond, Body: l.Body}, confWhile
	}
	return nil, 0
}

// iterSource normalizes the two counted-iteration forms to (variable,
// source, body).
func iterSource(loop hir.Expr) (string, Source, hir.Expr, bool) {
	switch l := loop.(type) {
	case *hir.ForRange:
		return l.Var, Source{Start: l.Start, End: l.End, Step: l.Step, Inclusive: l.Inclusive}, l.Body, true
	case *hir.ForIn:
		return l.Var, Source{Seq: l.Seq}, l.Body, true
	}
	return "", Source{}, nil, false
}

func singleStmt(body hir.Expr) (hir.Expr, bool) {
	stmts := hir.Stmts(body)
	if len(stmts) != 1 {
		return nil, false
	}
	return stmts[0], true
}

// pushAppend matches the front end's canonical append form,
// `target.push(value)`, with a plain variable target.
func pushAppend(stmt hir.Expr) (string, hir.Expr, bool) {
	call, ok := stmt.(*hir.Call)
	if !ok || call.Method != "push" || len(call.Args) != 1 {
		return "", nil, false
	}
	recv, ok := call.Recv.(*hir.Ident)
	if !ok {
		return "", nil, false
	}
	return recv.Name, call.Args[0], true
}

// guardedAppend matches `if cond { target.push(value) }` with no else.
func guardedAppend(stmt hir.Expr) (hir.Expr, string, hir.Expr, bool) {
	cond, ok := stmt.(*hir.If)
	if !ok || cond.Else != nil {
		return nil, "", nil, false
	}
	then, ok := singleStmt(cond.Then)
	if !ok {
		return nil, "", nil, false
	}
	target, value, ok := pushAppend(then)
	if !ok {
		return nil, "", nil, false
	}
	return cond.Cond, target, value, true
}

// blockOf wraps stmts as a body, unwrapping the single-statement case.
func blockOf(span position.Span, stmts []hir.Expr) hir.Expr {
	if len(stmts) == 1 {
		return stmts[0]
	}
	return &hir.Block{Span: span, Stmts: stmts}
}

// escapes reports whether e contains a break, continue, or return that
// leaves the loop whose body e is. Break and continue belonging to a nested
// loop stay inside it and do not count; return always escapes.
func escapes(e hir.Expr) bool {
	return scanEscape(e, false)
}

func scanEscape(e hir.Expr, nested bool) bool {
	switch node := e.(type) {
	case nil:
		return false
	case *hir.Break, *hir.Continue:
		return !nested
	case *hir.Return:
		return true
	case *hir.Binary:
		return scanEscape(node.Left, nested) || scanEscape(node.Right, nested)
	case *hir.Unary:
		return scanEscape(node.Operand, nested)
	case *hir.Assign:
		return scanEscape(node.Target, nested) || scanEscape(node.Value, nested)
	case *hir.Call:
		if scanEscape(node.Recv, nested) {
			return true
		}
		for _, a := range node.Args {
			if scanEscape(a, nested) {
				return true
			}
		}
		return false
	case *hir.Index:
		return scanEscape(node.Subject, nested) || scanEscape(node.Key, nested)
	case *hir.Field:
		return scanEscape(node.Subject, nested)
	case *hir.Block:
		for _, s := range node.Stmts {
			if scanEscape(s, nested) {
				return true
			}
		}
		return false
	case *hir.If:
		return scanEscape(node.Cond, nested) || scanEscape(node.Then, nested) || scanEscape(node.Else, nested)
	case *hir.While:
		return scanEscape(node.Cond, nested) || scanEscape(node.Body, true)
	case *hir.DoWhile:
		return scanEscape(node.Cond, nested) || scanEscape(node.Body, true)
	case *hir.ForRange:
		return scanEscape(node.Start, nested) || scanEscape(node.End, nested) ||
			scanEscape(node.Step, nested) || scanEscape(node.Body, true)
	case *hir.ForIn:
		return scanEscape(node.Seq, nested) || scanEscape(node.Body, true)
	default:
		return false
	}
}

// assignsTo reports whether e writes name anywhere, including inside nested
// constructs.
func assignsTo(e hir.Expr, name string) bool {
	found := false
	var scan func(hir.Expr)
	scan = func(e hir.Expr) {
		if e == nil || found {
			return
		}
		switch node := e.(type) {
		case *hir.Assign:
			if id, ok := node.Target.(*hir.Ident); ok && id.Name == name {
				found = true
				return
			}
			scan(node.Target)
			scan(node.Value)
		case *hir.Binary:
			scan(node.Left)
			scan(node.Right)
		case *hir.Unary:
			scan(node.Operand)
		case *hir.Call:
			scan(node.Recv)
			for _, a := range node.Args {
				scan(a)
			}
		case *hir.Index:
			scan(node.Subject)
			scan(node.Key)
		case *hir.Field:
			scan(node.Subject)
		case *hir.Block:
			for _, s := range node.Stmts {
				scan(s)
			}
		case *hir.If:
			scan(node.Cond)
			scan(node.Then)
			scan(node.Else)
		case *hir.While:
			scan(node.Cond)
			scan(node.Body)
		case *hir.DoWhile:
			scan(node.Cond)
			scan(node.Body)
		case *hir.ForRange:
			scan(node.Start)
			scan(node.End)
			scan(node.Step)
			scan(node.Body)
		case *hir.ForIn:
			scan(node.Seq)
			scan(node.Body)
		case *hir.Return:
			scan(node.Value)
		}
	}
	scan(e)
	return found
}
