package rewrite

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

type scheduleConfig struct {
	targetVersion string
}

// ScheduleOption adjusts validation, not ordering.
type ScheduleOption func(*scheduleConfig)

// WithTargetVersion supplies the configured target-language version that
// MinTarget constraints are checked against. Empty disables gating.
func WithTargetVersion(v string) ScheduleOption {
	return func(c *scheduleConfig) { c.targetVersion = v }
}

// Schedule validates passes into an execution order. Duplicates are dropped
// (first occurrence wins), dangling RunAfter references are ignored,
// dependency cycles are broken, and version-gated passes are disabled — each
// with a diagnostic, none fatal. The result is a stable topological order:
// RunAfter edges are respected and every remaining tie is broken by
// declaration order, so identical input always yields the identical order.
func Schedule(passes []Pass, opts ...ScheduleOption) ([]Pass, []Diagnostic) {
	var cfg scheduleConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var diags []Diagnostic

	// Deduplicate by name, first wins.
	nodes := make([]Pass, 0, len(passes))
	index := make(map[string]int, len(passes))
	for _, p := range passes {
		if at, dup := index[p.Name]; dup {
			diags = append(diags, Diagnostic{
				Code:   DiagDuplicate,
				Pass:   p.Name,
				Detail: fmt.Sprintf("already registered at position %d; duplicate dropped", at),
			})
			continue
		}
		index[p.Name] = len(nodes)
		nodes = append(nodes, p)
	}

	diags = append(diags, gateByVersion(nodes, cfg.targetVersion)...)

	// Dependency edges: dep -> dependent. Dangling references are reported
	// and ignored; the pass simply runs in its declared position.
	n := len(nodes)
	adj := make([][]int, n)
	for i, p := range nodes {
		for _, dep := range p.RunAfter {
			j, ok := index[dep]
			if !ok {
				diags = append(diags, Diagnostic{
					Code:   DiagDangling,
					Pass:   p.Name,
					Detail: fmt.Sprintf("runAfter %q does not name a registered pass; edge ignored", dep),
				})
				continue
			}
			if j == i {
				diags = append(diags, Diagnostic{
					Code:   DiagCycle,
					Pass:   p.Name,
					Detail: "pass depends on itself; edge dropped",
				})
				continue
			}
			adj[j] = append(adj[j], i)
		}
	}

	diags = append(diags, breakCycles(nodes, adj)...)

	// Stable Kahn: among ready passes always pick the lowest declaration
	// index. No map iteration anywhere, so the order is fully deterministic.
	indegree := make([]int, n)
	for _, out := range adj {
		for _, v := range out {
			indegree[v]++
		}
	}
	scheduled := make([]Pass, 0, n)
	done := make([]bool, n)
	for len(scheduled) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			// Cannot happen once cycles are broken, but never loop forever
			// over a malformed graph.
			for i := 0; i < n; i++ {
				if !done[i] {
					next = i
					break
				}
			}
		}
		done[next] = true
		scheduled = append(scheduled, nodes[next])
		for _, v := range adj[next] {
			indegree[v]--
		}
	}

	return scheduled, diags
}

// gateByVersion disables passes whose MinTarget constraint the configured
// version does not satisfy. An unparsable constraint is reported and
// ignored, leaving the pass enabled.
func gateByVersion(nodes []Pass, target string) []Diagnostic {
	if target == "" {
		return nil
	}
	version, err := semver.NewVersion(target)
	if err != nil {
		return []Diagnostic{{
			Code:   DiagBadConstraint,
			Detail: fmt.Sprintf("target version %q is not semver: %v; gating skipped", target, err),
		}}
	}

	var diags []Diagnostic
	for i := range nodes {
		if nodes[i].MinTarget == "" {
			continue
		}
		constraint, err := semver.NewConstraint(nodes[i].MinTarget)
		if err != nil {
			diags = append(diags, Diagnostic{
				Code:   DiagBadConstraint,
				Pass:   nodes[i].Name,
				Detail: fmt.Sprintf("constraint %q is not parsable: %v; pass left enabled", nodes[i].MinTarget, err),
			})
			continue
		}
		if !constraint.Check(version) {
			nodes[i].Enabled = false
			diags = append(diags, Diagnostic{
				Code:   DiagVersionGated,
				Pass:   nodes[i].Name,
				Detail: fmt.Sprintf("requires target %s, configured %s; pass disabled", nodes[i].MinTarget, target),
			})
		}
	}
	return diags
}

// breakCycles removes back edges found by a declaration-ordered DFS, so the
// passes on a cycle fall back to declaration order relative to each other.
func breakCycles(nodes []Pass, adj [][]int) []Diagnostic {
	var diags []Diagnostic
	state := make([]int, len(nodes)) // 0 unvisited, 1 on stack, 2 finished

	var visit func(u int)
	visit = func(u int) {
		state[u] = 1
		kept := adj[u][:0]
		for _, v := range adj[u] {
			if state[v] == 1 {
				diags = append(diags, Diagnostic{
					Code:   DiagCycle,
					Pass:   nodes[v].Name,
					Detail: fmt.Sprintf("runAfter cycle through %q; edge dropped, declaration order used", nodes[u].Name),
				})
				continue
			}
			kept = append(kept, v)
			if state[v] == 0 {
				visit(v)
			}
		}
		adj[u] = kept
		state[u] = 2
	}

	for i := range nodes {
		if state[i] == 0 {
			visit(i)
		}
	}
	return diags
}
