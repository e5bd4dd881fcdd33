package passes

import (
	"strings"
	"testing"

	"github.com/lume-lang/lume/internal/ast"
	"github.com/lume-lang/lume/internal/config"
	"github.com/lume-lang/lume/internal/hir"
	"github.com/lume-lang/lume/internal/rewrite"
)

func hident(name string) *hir.Ident { return &hir.Ident{Name: name} }
func hint(v int64) *hir.IntLit      { return &hir.IntLit{Value: v} }

func TestLowerLoopsResolvesPendingMarkers(t *testing.T) {
	// for x in 0..<5 { result.push(x * 2) }
	loop := &hir.ForRange{
		Var:   "x",
		Start: hint(0),
		End:   hint(5),
		Body: &hir.Call{
			Recv:   hident("result"),
			Method: "push",
			Args:   []hir.Expr{&hir.Binary{Op: "*", Left: hident("x"), Right: hint(2)}},
		},
	}
	tree := Build(loop)
	if _, ok := tree.(*ast.PendingLoop); !ok {
		t.Fatalf("Build(loop) = %s, want a pending marker", tree.String())
	}

	out := LowerLoops(Build).Run(tree)
	if got, want := out.String(), "result = Enum.map(0..4, fn x -> x * 2 end)"; got != want {
		t.Errorf("lowered = %q, want %q", got, want)
	}
}

func TestLowerLoopsHandlesNesting(t *testing.T) {
	// for x in xs { for y in ys { use(y) } } — lowering the outer loop
	// plants a fresh marker for the inner one.
	inner := &hir.ForIn{Var: "y", Seq: hident("ys"), Body: &hir.Call{Method: "use", Args: []hir.Expr{hident("y")}}}
	outer := &hir.ForIn{Var: "x", Seq: hident("xs"), Body: inner}

	out := LowerLoops(Build).Run(Build(outer))
	rendered := out.String()
	if strings.Contains(rendered, "pending") {
		t.Fatalf("marker survived lowering: %s", rendered)
	}
	want := "Enum.each(xs, fn x -> Enum.each(ys, fn y -> use.(y) end) end)"
	if rendered != want {
		t.Errorf("lowered = %q, want %q", rendered, want)
	}
}

func TestLowerLoopsLeavesUnrecognizedLoops(t *testing.T) {
	// A while whose body breaks out matches no intent; the marker stays so
	// the original form is preserved.
	loop := &hir.While{Cond: hident("go"), Body: &hir.Break{}}

	tree := Build(loop)
	if out := LowerLoops(Build).Run(tree); out != tree {
		t.Errorf("rewritten = %s, unrecognized loop must stay", out.String())
	}
}

func TestDefaultRegistryShape(t *testing.T) {
	r := DefaultRegistry(config.Default(), nil)

	groups := r.Groups()
	want := []string{"normalize", "loops", "hygiene", "cleanup"}
	if len(groups) != len(want) {
		t.Fatalf("groups = %v, want %v", groups, want)
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Fatalf("groups = %v, want %v", groups, want)
		}
	}

	if n := len(r.Passes()); n != 7 {
		t.Errorf("registered %d passes, want 7", n)
	}
	for _, p := range r.Passes() {
		if !p.Enabled {
			t.Errorf("pass %s disabled by default", p.Name)
		}
	}
}

func TestDefaultRegistryConfigToggles(t *testing.T) {
	cfg := config.Default()
	cfg.Passes["fold-constants"] = false

	for _, p := range DefaultRegistry(cfg, nil).Passes() {
		if p.Name == "fold-constants" && p.Enabled {
			t.Error("config toggle did not disable the pass")
		}
		if p.Name != "fold-constants" && !p.Enabled {
			t.Errorf("pass %s disabled by an unrelated toggle", p.Name)
		}
	}
}

func pipelineFor(t *testing.T, cfg config.Config) *rewrite.Pipeline {
	t.Helper()
	return rewrite.NewPipeline(DefaultRegistry(cfg, nil).Passes())
}

func TestFullPipelineReduceProgram(t *testing.T) {
	// total = 0; for x in xs { total += x }; print(total)
	prog := &hir.Block{Stmts: []hir.Expr{
		&hir.Assign{Target: hident("total"), Value: hint(0)},
		&hir.ForIn{
			Var:  "x",
			Seq:  hident("xs"),
			Body: &hir.Assign{Target: hident("total"), Op: "+=", Value: hident("x")},
		},
		&hir.Call{Method: "print", Args: []hir.Expr{hident("total")}},
	}}

	out, err := pipelineFor(t, config.Default()).Run(Build(prog))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := "(total = 0; total = Enum.reduce(xs, total, fn x, total -> total + x end); print.(total))"
	if got := out.String(); got != want {
		t.Errorf("pipeline output = %q, want %q", got, want)
	}
}

func TestFullPipelineIdempotence(t *testing.T) {
	prog := &hir.Block{Stmts: []hir.Expr{
		&hir.Assign{Target: hident("total"), Value: hint(0)},
		&hir.Assign{Target: hident("unused"), Value: hint(41)},
		&hir.ForIn{
			Var:  "x",
			Seq:  hident("xs"),
			Body: &hir.Assign{Target: hident("total"), Op: "+=", Value: hident("x")},
		},
		&hir.If{
			Cond: &hir.BoolLit{Value: true},
			Then: &hir.Call{Method: "print", Args: []hir.Expr{hident("total")}},
			Else: &hir.Call{Method: "panic", Args: nil},
		},
	}}

	pipe := pipelineFor(t, config.Default())
	once, err := pipe.Run(Build(prog))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	twice, err := pipe.Run(once)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if !ast.Equal(once, twice) {
		t.Errorf("pipeline is not idempotent:\n once: %s\ntwice: %s", once.String(), twice.String())
	}
	if s := once.String(); strings.Contains(s, "unused = 41") || strings.Contains(s, "panic") {
		t.Errorf("dead code survived: %s", s)
	}
}

func TestBuildTranslatesLiterally(t *testing.T) {
	// if done { out = msg } else { n[0] }
	prog := &hir.If{
		Cond: hident("done"),
		Then: &hir.Assign{Target: hident("out"), Value: hident("msg")},
		Else: &hir.Index{Subject: hident("n"), Key: hint(0)},
	}

	out := Build(prog)
	if got, want := out.String(), "if done, do: out = msg, else: n[0]"; got != want {
		t.Errorf("Build = %q, want %q", got, want)
	}
}

func TestBuildMapsOperators(t *testing.T) {
	and := Build(&hir.Binary{Op: "&&", Left: hident("a"), Right: hident("b")})
	if got, want := and.String(), "a and b"; got != want {
		t.Errorf("Build(&&) = %q, want %q", got, want)
	}

	mod := Build(&hir.Binary{Op: "%", Left: hident("a"), Right: hint(2)})
	if got, want := mod.String(), "Kernel.rem(a, 2)"; got != want {
		t.Errorf("Build(%%) = %q, want %q", got, want)
	}

	not := Build(&hir.Unary{Op: "!", Operand: hident("a")})
	if got, want := not.String(), "not a"; got != want {
		t.Errorf("Build(!) = %q, want %q", got, want)
	}
}

func TestBuildCanonicalAppend(t *testing.T) {
	out := Build(&hir.Call{Recv: hident("acc"), Method: "push", Args: []hir.Expr{hident("x")}})
	if got, want := out.String(), "acc = acc ++ [x]"; got != want {
		t.Errorf("Build(push) = %q, want %q", got, want)
	}
}

func TestBuildMethodDispatch(t *testing.T) {
	out := Build(&hir.Call{Recv: hident("user"), Method: "name", Args: nil})
	if got, want := out.String(), "Lume.Runtime.name(user)"; got != want {
		t.Errorf("Build(method) = %q, want %q", got, want)
	}
}
