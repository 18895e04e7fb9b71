package optimizer

import "ollie/internal/ir"

// EstimateFrequency implements §4.6: a single pass, in CFG creation order,
// raising each non-return block's estimate to the mean of its
// predecessors' estimates whenever that mean is higher than what the
// block already carries. Estimates only ever go up; a block no one
// reaches yet (no predecessors) is left untouched rather than zeroed.
func EstimateFrequency(cfg *ir.ControlFlowGraph) {
	for _, b := range cfg.CreatedBlocks {
		if b.BlockTerminalType == ir.TerminalRet {
			continue
		}
		if len(b.Predecessors) == 0 {
			continue
		}
		sum := 0
		for _, p := range b.Predecessors {
			sum += p.EstimatedExecutionFrequency
		}
		mean := sum / len(b.Predecessors)
		if mean > b.EstimatedExecutionFrequency {
			b.EstimatedExecutionFrequency = mean
		}
	}
}
