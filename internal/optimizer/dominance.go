package optimizer

import (
	"ollie/internal/domtree"
	"ollie/internal/ir"
)

// RebuildDominance implements §4.5: the Sweep/Clean/unreachable-removal
// steps just finished may have invalidated every dominance relation, so
// discard them all and recompute from scratch before frequency estimation
// and any later pass reads them.
func RebuildDominance(cfg *ir.ControlFlowGraph) {
	domtree.ClearDominanceRelations(cfg)
	domtree.CalculateAllControlRelations(cfg, true)
}
