package loops

import (
	"testing"

	"github.com/lume-lang/lume/internal/ast"
	"github.com/lume-lang/lume/internal/hir"
)

// testBuild is a minimal expression builder covering the shapes the
// fixtures use. The real conversion layer supplies a complete one.
func testBuild(e hir.Expr) ast.Node {
	switch n := e.(type) {
	case *hir.Ident:
		return &ast.Var{Name: n.Name}
	case *hir.IntLit:
		return &ast.IntLit{Value: n.Value}
	case *hir.BoolLit:
		return &ast.BoolLit{Value: n.Value}
	case *hir.Binary:
		return &ast.BinaryOp{Op: n.Op, Left: testBuild(n.Left), Right: testBuild(n.Right)}
	case *hir.Assign:
		id := n.Target.(*hir.Ident)
		return &ast.MatchExpr{Pattern: &ast.PVar{Name: id.Name}, Value: testBuild(n.Value)}
	case *hir.Call:
		args := make([]ast.Node, len(n.Args))
		for i, a := range n.Args {
			args[i] = testBuild(a)
		}
		return &ast.RemoteCall{Module: "IO", Fun: n.Method, Args: args}
	case *hir.Block:
		stmts := make([]ast.Node, len(n.Stmts))
		for i, s := range n.Stmts {
			stmts[i] = testBuild(s)
		}
		return &ast.Block{Stmts: stmts}
	default:
		return &ast.Raw{Code: e.String()}
	}
}

func ident(name string) *hir.Ident { return &hir.Ident{Name: name} }
func intLit(v int64) *hir.IntLit   { return &hir.IntLit{Value: v} }
func printCall(args ...hir.Expr) *hir.Call {
	return &hir.Call{Method: "print", Args: args}
}
func push(target string, value hir.Expr) *hir.Call {
	return &hir.Call{Recv: ident(target), Method: "push", Args: []hir.Expr{value}}
}

func TestRangeDetectionOnWhile(t *testing.T) {
	// while i < 10 { print(i); i = i + 1 }
	loop := &hir.While{
		Cond: &hir.Binary{Op: "<", Left: ident("i"), Right: intLit(10)},
		Body: &hir.Block{Stmts: []hir.Expr{
			printCall(ident("i")),
			&hir.Assign{Target: ident("i"), Value: &hir.Binary{Op: "+", Left: ident("i"), Right: intLit(1)}},
		}},
	}

	intent, ok := Analyze(loop)
	if !ok {
		t.Fatal("no intent detected")
	}
	r, ok := intent.(*RangeIntent)
	if !ok {
		t.Fatalf("intent = %s, want range", intent.Kind())
	}
	if r.Var != "i" {
		t.Errorf("Var = %q, want i", r.Var)
	}
	if r.Start != nil {
		t.Errorf("Start = %v, want nil (defaults to 0)", r.Start)
	}
	if end, ok := r.End.(*hir.IntLit); !ok || end.Value != 10 {
		t.Errorf("End = %v, want 10", r.End)
	}
	if step, ok := r.Step.(*hir.IntLit); !ok || step.Value != 1 {
		t.Errorf("Step = %v, want 1", r.Step)
	}
	if r.Inclusive {
		t.Error("i < 10 is exclusive")
	}

	out, err := Lower(r, testBuild)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if got, want := out.String(), "Enum.each(0..9, fn i -> IO.print(i) end)"; got != want {
		t.Errorf("lowered = %q, want %q", got, want)
	}
}

func TestRangeDetectionInclusive(t *testing.T) {
	// while i <= n { i += 1 }
	loop := &hir.While{
		Cond: &hir.Binary{Op: "<=", Left: ident("i"), Right: ident("n")},
		Body: &hir.Assign{Target: ident("i"), Op: "+=", Value: intLit(1)},
	}

	intent, ok := Analyze(loop)
	if !ok {
		t.Fatal("no intent detected")
	}
	r, ok := intent.(*RangeIntent)
	if !ok {
		t.Fatalf("intent = %s, want range", intent.Kind())
	}
	if !r.Inclusive {
		t.Error("i <= n is inclusive")
	}
	if step, ok := r.Step.(*hir.IntLit); !ok || step.Value != 1 {
		t.Errorf("Step = %v, want 1", r.Step)
	}
}

func TestRangeDetectionRequiresIncrement(t *testing.T) {
	// while i < 10 { print(i) } — no increment, range match invalid.
	loop := &hir.While{
		Cond: &hir.Binary{Op: "<", Left: ident("i"), Right: intLit(10)},
		Body: printCall(ident("i")),
	}

	intent, ok := Analyze(loop)
	if !ok {
		t.Fatal("the general while fallback should still fire")
	}
	if _, isRange := intent.(*RangeIntent); isRange {
		t.Error("range detected without an increment in the body")
	}
	if _, isWhile := intent.(*WhileIntent); !isWhile {
		t.Errorf("intent = %s, want while", intent.Kind())
	}
}

func TestMapOverRange(t *testing.T) {
	// for x in 0..<5 { result.push(x * 2) }
	loop := &hir.ForRange{
		Var:   "x",
		Start: intLit(0),
		End:   intLit(5),
		Body:  push("result", &hir.Binary{Op: "*", Left: ident("x"), Right: intLit(2)}),
	}

	intent, ok := Analyze(loop)
	if !ok {
		t.Fatal("no intent detected")
	}
	m, ok := intent.(*MapIntent)
	if !ok {
		t.Fatalf("intent = %s, want map", intent.Kind())
	}
	if m.Target != "result" {
		t.Errorf("Target = %q, want result", m.Target)
	}

	out, err := Lower(m, testBuild)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if got, want := out.String(), "result = Enum.map(0..4, fn x -> x * 2 end)"; got != want {
		t.Errorf("lowered = %q, want %q", got, want)
	}
}

func TestGuardReclassifiesMapToFilterMap(t *testing.T) {
	// Same loop with a guard before the append: the guard must survive.
	guard := &hir.Binary{
		Op:    "==",
		Left:  &hir.Binary{Op: "%", Left: ident("x"), Right: intLit(2)},
		Right: intLit(0),
	}
	loop := &hir.ForRange{
		Var:   "x",
		Start: intLit(0),
		End:   intLit(5),
		Body: &hir.If{
			Cond: guard,
			Then: push("result", &hir.Binary{Op: "*", Left: ident("x"), Right: intLit(2)}),
		},
	}

	intent, ok := Analyze(loop)
	if !ok {
		t.Fatal("no intent detected")
	}
	fm, ok := intent.(*FilterMapIntent)
	if !ok {
		t.Fatalf("intent = %s, want filter_map", intent.Kind())
	}
	if fm.Cond != guard {
		t.Error("guard condition not carried into the intent")
	}

	out, err := Lower(fm, testBuild)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	want := "result = Enum.map(Enum.filter(0..4, fn x -> x % 2 == 0 end), fn x -> x * 2 end)"
	if got := out.String(); got != want {
		t.Errorf("lowered = %q, want %q", got, want)
	}
}

func TestFilterAppendsElementUnchanged(t *testing.T) {
	// for x in xs { if x > 0 { keep.push(x) } }
	loop := &hir.ForIn{
		Var: "x",
		Seq: ident("xs"),
		Body: &hir.If{
			Cond: &hir.Binary{Op: ">", Left: ident("x"), Right: intLit(0)},
			Then: push("keep", ident("x")),
		},
	}

	intent, ok := Analyze(loop)
	if !ok {
		t.Fatal("no intent detected")
	}
	if _, isFilter := intent.(*FilterIntent); !isFilter {
		t.Fatalf("intent = %s, want filter", intent.Kind())
	}

	out, err := Lower(intent, testBuild)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if got, want := out.String(), "keep = Enum.filter(xs, fn x -> x > 0 end)"; got != want {
		t.Errorf("lowered = %q, want %q", got, want)
	}
}

func TestReduceCompoundAssignment(t *testing.T) {
	// for x in xs { total += x }
	loop := &hir.ForIn{
		Var:  "x",
		Seq:  ident("xs"),
		Body: &hir.Assign{Target: ident("total"), Op: "+=", Value: ident("x")},
	}

	intent, ok := Analyze(loop)
	if !ok {
		t.Fatal("no intent detected")
	}
	r, ok := intent.(*ReduceIntent)
	if !ok {
		t.Fatalf("intent = %s, want reduce", intent.Kind())
	}
	if r.Acc != "total" || r.HaltCond != nil {
		t.Errorf("Acc = %q, HaltCond = %v; want total with no halt", r.Acc, r.HaltCond)
	}

	out, err := Lower(r, testBuild)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	want := "total = Enum.reduce(xs, total, fn x, total -> total + x end)"
	if got := out.String(); got != want {
		t.Errorf("lowered = %q, want %q", got, want)
	}
}

func TestReduceWithBreakBecomesHaltSignals(t *testing.T) {
	// for x in xs { if x > limit { break }; total = total + x }
	loop := &hir.ForIn{
		Var: "x",
		Seq: ident("xs"),
		Body: &hir.Block{Stmts: []hir.Expr{
			&hir.If{
				Cond: &hir.Binary{Op: ">", Left: ident("x"), Right: ident("limit")},
				Then: &hir.Break{},
			},
			&hir.Assign{Target: ident("total"), Value: &hir.Binary{Op: "+", Left: ident("total"), Right: ident("x")}},
		}},
	}

	intent, ok := Analyze(loop)
	if !ok {
		t.Fatal("no intent detected")
	}
	r, ok := intent.(*ReduceIntent)
	if !ok {
		t.Fatalf("intent = %s, want reduce", intent.Kind())
	}
	if r.HaltCond == nil {
		t.Fatal("break guard not captured as a halt condition")
	}

	out, err := Lower(r, testBuild)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	want := "total = Enum.reduce_while(xs, total, fn x, total -> " +
		"if x > limit, do: {:halt, total}, else: {:cont, total + x} end)"
	if got := out.String(); got != want {
		t.Errorf("lowered = %q, want %q", got, want)
	}
}

func TestNestedBreakLeavesLoopUnrecognized(t *testing.T) {
	// A break two conditional levels deep matches no shape; the loop stays
	// in its original form.
	loop := &hir.ForIn{
		Var: "x",
		Seq: ident("xs"),
		Body: &hir.Block{Stmts: []hir.Expr{
			&hir.If{
				Cond: ident("a"),
				Then: &hir.If{Cond: ident("b"), Then: &hir.Break{}},
			},
			&hir.Assign{Target: ident("total"), Op: "+=", Value: ident("x")},
		}},
	}

	if intent, ok := Analyze(loop); ok {
		t.Errorf("intent = %s, want no detection", intent.Kind())
	}
}

func TestEachIterationKeepsSideEffects(t *testing.T) {
	loop := &hir.ForIn{
		Var:  "x",
		Seq:  ident("xs"),
		Body: printCall(ident("x")),
	}

	intent, ok := Analyze(loop)
	if !ok {
		t.Fatal("no intent detected")
	}
	if _, isEach := intent.(*EachIntent); !isEach {
		t.Fatalf("intent = %s, want each", intent.Kind())
	}

	out, err := Lower(intent, testBuild)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if got, want := out.String(), "Enum.each(xs, fn x -> IO.print(x) end)"; got != want {
		t.Errorf("lowered = %q, want %q", got, want)
	}
}

func TestWhileLowersToSelfRecursion(t *testing.T) {
	loop := &hir.While{Cond: ident("go"), Body: printCall()}

	intent, ok := Analyze(loop)
	if !ok {
		t.Fatal("no intent detected")
	}
	out, err := Lower(intent, testBuild)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	want := "(loop = fn loop -> if go, do: (IO.print(); loop.(loop)), else: :ok end; loop.(loop))"
	if got := out.String(); got != want {
		t.Errorf("lowered = %q, want %q", got, want)
	}
}

func TestDoWhileRunsBodyBeforeTest(t *testing.T) {
	loop := &hir.DoWhile{Body: printCall(), Cond: ident("go")}

	intent, ok := Analyze(loop)
	if !ok {
		t.Fatal("no intent detected")
	}
	if _, isDoWhile := intent.(*DoWhileIntent); !isDoWhile {
		t.Fatalf("intent = %s, want do_while", intent.Kind())
	}

	out, err := Lower(intent, testBuild)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	want := "(loop = fn loop -> (IO.print(); if go, do: loop.(loop), else: :ok) end; loop.(loop))"
	if got := out.String(); got != want {
		t.Errorf("lowered = %q, want %q", got, want)
	}
}

func TestWhileRecursionAvoidsNameCollision(t *testing.T) {
	loop := &hir.While{Cond: ident("go"), Body: printCall(ident("loop"))}

	intent, ok := Analyze(loop)
	if !ok {
		t.Fatal("no intent detected")
	}
	out, err := Lower(intent, testBuild)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	want := "(loop2 = fn loop2 -> if go, do: (IO.print(loop); loop2.(loop2)), else: :ok end; loop2.(loop2))"
	if got := out.String(); got != want {
		t.Errorf("lowered = %q, want %q", got, want)
	}
}

func TestComprehensionPreference(t *testing.T) {
	loop := &hir.ForIn{
		Var: "x",
		Seq: ident("xs"),
		Body: &hir.If{
			Cond: &hir.Binary{Op: ">", Left: ident("x"), Right: intLit(0)},
			Then: push("result", &hir.Binary{Op: "*", Left: ident("x"), Right: intLit(2)}),
		},
	}

	intent, ok := Analyzer{PreferComprehension: true}.Analyze(loop)
	if !ok {
		t.Fatal("no intent detected")
	}
	c, ok := intent.(*ComprehensionIntent)
	if !ok {
		t.Fatalf("intent = %s, want comprehension", intent.Kind())
	}
	if c.Filter == nil {
		t.Fatal("guard not carried as a comprehension filter")
	}

	out, err := Lower(c, testBuild)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if got, want := out.String(), "result = for x <- xs, x > 0, do: x * 2"; got != want {
		t.Errorf("lowered = %q, want %q", got, want)
	}
}

func TestLowerRejectsNilInputs(t *testing.T) {
	if _, err := Lower(nil, testBuild); err == nil {
		t.Error("nil intent should error")
	}
	if _, err := Lower(&EachIntent{Var: "x", Source: Source{Seq: ident("xs")}}, nil); err == nil {
		t.Error("nil builder should error")
	}
}
