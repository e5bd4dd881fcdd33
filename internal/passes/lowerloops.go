package passes

import (
	"github.com/lume-lang/lume/internal/ast"
	"github.com/lume-lang/lume/internal/loops"
	"github.com/lume-lang/lume/internal/rewrite"
)

// Lowering a loop body can plant new pending markers for loops nested inside
// it, so the pass reruns until the tree stops changing. The bound only
// matters for pathological nesting.
const maxLowerRounds = 64

// LowerLoops resolves PendingLoop markers: each is classified by the loop
// analyzer and, when an intent is recognized, replaced with the lowered
// construct built through b. Unrecognized loops stay in their original form.
func LowerLoops(b loops.ExprBuilder) rewrite.Pass {
	return rewrite.Pass{
		Name:        "lower-loops",
		Description: "replace pending loop markers with recognized declarative constructs",
		Enabled:     true,
		RunAfter:    []string{"prune-dead-branches"},
		Run: func(root ast.Node) ast.Node {
			return lowerAll(root, b)
		},
	}
}

func lowerAll(root ast.Node, b loops.ExprBuilder) ast.Node {
	for round := 0; round < maxLowerRounds; round++ {
		out := ast.Rewrite(root, func(n ast.Node) ast.Node {
			pending, ok := n.(*ast.PendingLoop)
			if !ok {
				return n
			}
			intent, ok := loops.Analyze(pending.Loop)
			if !ok {
				return n
			}
			lowered, err := loops.Lower(intent, b)
			if err != nil || lowered == nil {
				return n
			}
			return lowered
		})
		if out == root {
			return root
		}
		root = out
	}
	return root
}
