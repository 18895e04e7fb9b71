package optimizer

import (
	"ollie/internal/diagnostics"
	"ollie/internal/ir"
)

// RemoveUnreachableBlocks implements §4.4: drop every non-entry block with
// no remaining predecessors. This mainly catches jump-table targets that
// Sweep's table deallocation stranded (scenario 6): once the table is
// gone, nothing points at its case blocks any more.
//
// The spec does not say what happens to a dropped block's own outgoing
// edges; left alone they would leave stale entries in its successors'
// Predecessors lists, violating the edge-symmetry invariant, so this also
// detaches them before the block is removed.
func RemoveUnreachableBlocks(cfg *ir.ControlFlowGraph) {
	removeUnreachableBlocks(cfg, nil)
}

func removeUnreachableBlocks(cfg *ir.ControlFlowGraph, log *diagnostics.Log) {
	for _, b := range ir.CloneBlockSlice(cfg.CreatedBlocks) {
		if b.BlockType == ir.BlockFuncEntry {
			continue
		}
		if len(b.Predecessors) > 0 {
			continue
		}
		for _, s := range ir.CloneBlockSlice(b.Successors) {
			ir.DeleteSuccessor(b, s)
		}
		logBlockRemoved(log, b)
		cfg.RemoveCreatedBlock(b)
	}
}

// logBlockRemoved records that a block was dropped as unreachable. log is
// nil whenever RemoveUnreachableBlocks is invoked through its public
// wrapper.
func logBlockRemoved(log *diagnostics.Log, b *ir.BasicBlock) {
	if log == nil {
		return
	}
	function := ""
	if b.FunctionDefinedIn != nil {
		function = b.FunctionDefinedIn.Name
	}
	log.Add(diagnostics.Diagnostic{
		Level:   diagnostics.Note,
		Code:    diagnostics.CodeBlockUnreachable,
		Message: "block removed: no remaining predecessors",
		Location: diagnostics.Location{
			Function:      function,
			Block:         b.Label,
			InstructionID: -1,
		},
	})
}
