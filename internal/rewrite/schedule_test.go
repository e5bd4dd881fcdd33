package rewrite

import (
	"testing"

	"github.com/lume-lang/lume/internal/ast"
)

func named(name string, after ...string) Pass {
	return Pass{
		Name:     name,
		Enabled:  true,
		Run:      func(n ast.Node) ast.Node { return n },
		RunAfter: after,
	}
}

func orderOf(passes []Pass) []string {
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = p.Name
	}
	return names
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestScheduleKeepsDeclarationOrderWithoutEdges(t *testing.T) {
	passes := []Pass{named("a"), named("b"), named("c")}

	scheduled, diags := Schedule(passes)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if got := orderOf(scheduled); !sameOrder(got, []string{"a", "b", "c"}) {
		t.Errorf("order = %v, want declaration order", got)
	}
}

func TestScheduleRespectsRunAfter(t *testing.T) {
	passes := []Pass{named("cleanup", "lower"), named("lower"), named("fold")}

	scheduled, diags := Schedule(passes)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if got := orderOf(scheduled); !sameOrder(got, []string{"lower", "cleanup", "fold"}) {
		t.Errorf("order = %v, want [lower cleanup fold]", got)
	}
}

func TestScheduleDeterminism(t *testing.T) {
	passes := []Pass{
		named("e", "a"),
		named("d", "a"),
		named("c"),
		named("b", "c", "d"),
		named("a"),
	}

	first := orderOf(mustSchedule(t, passes))
	for i := 0; i < 50; i++ {
		if got := orderOf(mustSchedule(t, passes)); !sameOrder(got, first) {
			t.Fatalf("iteration %d: order = %v, first = %v", i, got, first)
		}
	}
}

func mustSchedule(t *testing.T, passes []Pass) []Pass {
	t.Helper()
	scheduled, diags := Schedule(passes)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return scheduled
}

func TestScheduleDropsDuplicatesFirstWins(t *testing.T) {
	first := named("fold")
	first.Description = "first"
	second := named("fold")
	second.Description = "second"

	scheduled, diags := Schedule([]Pass{first, named("prune"), second})
	if len(scheduled) != 2 {
		t.Fatalf("scheduled %d passes, want 2", len(scheduled))
	}
	if scheduled[0].Description != "first" {
		t.Error("the first occurrence must win")
	}
	if len(diags) != 1 || diags[0].Code != DiagDuplicate || diags[0].Pass != "fold" {
		t.Errorf("diagnostics = %v, want one duplicate-pass for fold", diags)
	}
}

func TestScheduleReportsDanglingRunAfter(t *testing.T) {
	scheduled, diags := Schedule([]Pass{named("a", "ghost"), named("b")})

	if got := orderOf(scheduled); !sameOrder(got, []string{"a", "b"}) {
		t.Errorf("order = %v, want declared positions kept", got)
	}
	if len(diags) != 1 || diags[0].Code != DiagDangling {
		t.Errorf("diagnostics = %v, want one dangling-run-after", diags)
	}
}

func TestScheduleBreaksCycles(t *testing.T) {
	scheduled, diags := Schedule([]Pass{
		named("a", "b"),
		named("b", "a"),
		named("c"),
	})

	if len(scheduled) != 3 {
		t.Fatalf("scheduled %d passes, want all 3", len(scheduled))
	}
	cycleSeen := false
	for _, d := range diags {
		if d.Code == DiagCycle {
			cycleSeen = true
		}
	}
	if !cycleSeen {
		t.Error("cycle not diagnosed")
	}
	// Broken cycle falls back to declaration order for its members.
	got := orderOf(scheduled)
	if !sameOrder(got, []string{"a", "b", "c"}) && !sameOrder(got, []string{"b", "a", "c"}) {
		t.Errorf("order = %v, cycle members should still be scheduled", got)
	}
}

func TestScheduleSelfDependency(t *testing.T) {
	scheduled, diags := Schedule([]Pass{named("a", "a")})

	if len(scheduled) != 1 {
		t.Fatalf("scheduled %d passes, want 1", len(scheduled))
	}
	if len(diags) != 1 || diags[0].Code != DiagCycle {
		t.Errorf("diagnostics = %v, want one dependency-cycle", diags)
	}
}

func TestScheduleVersionGating(t *testing.T) {
	stepped := named("stepped-ranges")
	stepped.MinTarget = ">= 1.12.0"
	old := named("classic")

	scheduled, diags := Schedule([]Pass{stepped, old}, WithTargetVersion("1.11.4"))
	if scheduled[0].Enabled {
		t.Error("pass requiring 1.12 must be disabled for target 1.11.4")
	}
	if !scheduled[1].Enabled {
		t.Error("unconstrained pass must stay enabled")
	}
	if len(diags) != 1 || diags[0].Code != DiagVersionGated {
		t.Errorf("diagnostics = %v, want one version-gated", diags)
	}

	scheduled, diags = Schedule([]Pass{stepped, old}, WithTargetVersion("1.14.0"))
	if !scheduled[0].Enabled {
		t.Error("pass must stay enabled when the target satisfies its constraint")
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestScheduleBadConstraintLeavesPassEnabled(t *testing.T) {
	broken := named("broken")
	broken.MinTarget = "not-a-constraint"

	scheduled, diags := Schedule([]Pass{broken}, WithTargetVersion("1.14.0"))
	if !scheduled[0].Enabled {
		t.Error("an unparsable constraint must not disable the pass")
	}
	if len(diags) != 1 || diags[0].Code != DiagBadConstraint {
		t.Errorf("diagnostics = %v, want one bad-constraint", diags)
	}
}

func TestRegistryGroupsFlattenInOrder(t *testing.T) {
	r := NewRegistry()
	r.AddGroup("normalize", named("fold"))
	r.AddGroup("hygiene", named("underscore"))
	r.AddGroup("normalize", named("flatten"))

	if got := orderOf(r.Passes()); !sameOrder(got, []string{"fold", "flatten", "underscore"}) {
		t.Errorf("flattened order = %v, want group declaration order", got)
	}
	if got := r.Groups(); !sameOrder(got, []string{"normalize", "hygiene"}) {
		t.Errorf("groups = %v", got)
	}
	if len(r.Group("hygiene")) != 1 {
		t.Errorf("hygiene group = %v", orderOf(r.Group("hygiene")))
	}
	if r.Group("missing") != nil {
		t.Error("unknown group should be nil")
	}
}
