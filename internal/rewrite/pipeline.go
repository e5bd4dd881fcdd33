package rewrite

import (
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/lume-lang/lume/internal/ast"
)

// Pipeline applies a validated pass order to a tree, strictly sequentially.
type Pipeline struct {
	passes  []Pass
	ctx     *Context
	logger  *log.Logger
	trace   bool
	version string
}

// Option configures pipeline construction.
type Option func(*Pipeline)

// WithContext supplies the rewrite context handed to RunCtx passes.
func WithContext(ctx *Context) Option {
	return func(p *Pipeline) { p.ctx = ctx }
}

// WithLogger redirects diagnostics and trace output.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithTrace logs every pass application with the run id.
func WithTrace(on bool) Option {
	return func(p *Pipeline) { p.trace = on }
}

// WithVersion sets the target-language version for MinTarget gating.
func WithVersion(v string) Option {
	return func(p *Pipeline) { p.version = v }
}

// NewPipeline schedules passes and logs every scheduling diagnostic. A
// pipeline is always constructed: configuration problems degrade the pass
// list, they do not fail it.
func NewPipeline(passes []Pass, opts ...Option) *Pipeline {
	p := &Pipeline{logger: log.Default()}
	for _, opt := range opts {
		opt(p)
	}

	scheduled, diags := Schedule(passes, WithTargetVersion(p.version))
	for _, d := range diags {
		p.logger.Printf("rewrite: %s", d)
	}
	p.passes = scheduled
	return p
}

// Passes returns the scheduled pass order.
func (p *Pipeline) Passes() []Pass {
	return p.passes
}

// Run feeds root through every enabled pass in scheduled order and returns
// the final tree. Each run carries a fresh id for trace correlation.
func (p *Pipeline) Run(root ast.Node) (ast.Node, error) {
	if root == nil {
		return nil, errors.New("rewrite: nil root")
	}

	runID := uuid.NewString()
	if p.trace {
		p.logger.Printf("rewrite: run %s: %d passes scheduled", runID, len(p.passes))
	}

	for _, pass := range p.passes {
		if !pass.Enabled {
			if p.trace {
				p.logger.Printf("rewrite: run %s: skip %s (disabled)", runID, pass.Name)
			}
			continue
		}
		root = pass.apply(p.ctx, root)
		if p.trace {
			p.logger.Printf("rewrite: run %s: pass %s applied", runID, pass.Name)
		}
	}
	return root, nil
}
