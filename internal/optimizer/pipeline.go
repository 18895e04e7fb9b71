// Package optimizer runs the middle-end pipeline of §2 over a CFG already
// built and SSA-renamed by a front end: Mark, Sweep, Clean, unreachable-
// block removal, dominance rebuild, frequency estimation, and (opt-in)
// short-circuit rewriting.
package optimizer

import (
	"fmt"

	"ollie/internal/diagnostics"
	"ollie/internal/domtree"
	"ollie/internal/ir"
)

// Pipeline runs the optimizer's passes in the fixed order §2 specifies.
// ShortCircuit defaults to off, per §9 open question 2: it is the one
// pass in this package still considered experimental.
type Pipeline struct {
	Verbose      bool
	ShortCircuit bool

	// Diagnostics, if non-nil, collects notes raised by passes that have
	// something to report beyond the CFG mutation itself (a skipped
	// short-circuit rewrite, a block dropped as unreachable). Left nil,
	// those passes run silently.
	Diagnostics *diagnostics.Log
}

// NewPipeline returns a Pipeline with default settings (quiet,
// short-circuit rewriting disabled, diagnostics discarded).
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Run executes every pass in sequence, mutating cfg in place, and returns
// it for chaining.
func (p *Pipeline) Run(cfg *ir.ControlFlowGraph) *ir.ControlFlowGraph {
	p.step("visitation reset", func() { domtree.ResetVisited(cfg, false) })
	p.step("mark", func() { Mark(cfg) })
	p.step("sweep", func() { Sweep(cfg) })
	p.step("clean", func() { Clean(cfg) })
	p.step("unreachable-block removal", func() { removeUnreachableBlocks(cfg, p.Diagnostics) })
	p.step("dominance rebuild", func() { RebuildDominance(cfg) })
	p.step("frequency estimate", func() { EstimateFrequency(cfg) })
	if p.ShortCircuit {
		p.step("short-circuit rewrite", func() { shortCircuit(cfg, p.Diagnostics) })
	}
	return cfg
}

func (p *Pipeline) step(name string, fn func()) {
	if p.Verbose {
		fmt.Printf("optimizer: running %s\n", name)
	}
	fn()
}

// Optimize is the single exposed entry point of §6: optimize(cfg) -> cfg,
// run with default settings.
func Optimize(cfg *ir.ControlFlowGraph) *ir.ControlFlowGraph {
	return NewPipeline().Run(cfg)
}
