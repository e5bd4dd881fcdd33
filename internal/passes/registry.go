package passes

import (
	"github.com/lume-lang/lume/internal/config"
	"github.com/lume-lang/lume/internal/loops"
	"github.com/lume-lang/lume/internal/rewrite"
)

// DefaultRegistry assembles the standard pass groups. b translates input
// fragments for loop lowering; nil selects the literal builder. Config
// toggles override each pass's default enablement by name.
func DefaultRegistry(cfg config.Config, b loops.ExprBuilder) *rewrite.Registry {
	if b == nil {
		b = Build
	}

	r := rewrite.NewRegistry()
	r.AddGroup("normalize", toggled(cfg,
		FoldConstants(),
		PruneDeadBranches(),
	)...)
	r.AddGroup("loops", toggled(cfg,
		LowerLoops(b),
	)...)
	r.AddGroup("hygiene", toggled(cfg,
		UnderscoreUnused(),
		DropRedundantMatch(),
	)...)
	r.AddGroup("cleanup", toggled(cfg,
		SingleClauseCaseToMatch(),
		FlattenBlocks(),
	)...)
	return r
}

func toggled(cfg config.Config, passes ...rewrite.Pass) []rewrite.Pass {
	for i := range passes {
		if enabled, ok := cfg.Passes[passes[i].Name]; ok {
			passes[i].Enabled = enabled
		}
	}
	return passes
}
