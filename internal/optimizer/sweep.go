package optimizer

import "ollie/internal/ir"

// Sweep implements §4.2: delete every unmarked instruction except
// unconditional jumps, which are kept as they are. A dropped
// conditional branch is replaced by an unconditional jump to the nearest
// marked postdominator, so control still reaches the first point of
// observable behavior; a dropped jump-table address calculation
// deallocates its jump table (and the edges it alone justified) along
// with itself.
func Sweep(cfg *ir.ControlFlowGraph) {
	for _, block := range cfg.CreatedBlocks {
		for _, inst := range block.Instructions() {
			if inst.Mark {
				continue
			}
			sweepInstruction(cfg, block, inst)
		}
	}
}

func sweepInstruction(cfg *ir.ControlFlowGraph, block *ir.BasicBlock, inst *ir.Instruction) {
	switch inst.StatementType {
	case ir.StmtJmp:
		// Unconditional jumps are never seeds and never get marked, but they
		// still carry the only path to wherever they lead; leave them be.
		return
	case ir.StmtCondBranch:
		target := nearestMarkedPostdominator(block)
		if inst.IfBlock != nil {
			ir.DeleteSuccessor(block, inst.IfBlock)
		}
		if inst.ElseBlock != nil && inst.ElseBlock != inst.IfBlock {
			ir.DeleteSuccessor(block, inst.ElseBlock)
		}
		ir.DeleteStatement(inst)
		if target != nil {
			ir.EmitJump(block, target, nil, ir.JumpUnconditional, false, false)
			block.BlockTerminalType = ir.TerminalJump
		}
	case ir.StmtIndirectJmpAddrCalc:
		if block.JumpTable != nil {
			for _, node := range block.JumpTable.Nodes {
				ir.DeleteSuccessor(block, node)
			}
			block.JumpTable = nil
		}
		ir.DeleteStatement(inst)
	default:
		ir.DeleteStatement(inst)
	}
}

// nearestMarkedPostdominator performs a BFS over the successor graph
// starting at block (excluding block itself) for the nearest block that
// both postdominates block and contains a mark. Ties are broken by BFS
// discovery order, which favors the postdominator closest in edge-count.
func nearestMarkedPostdominator(block *ir.BasicBlock) *ir.BasicBlock {
	visited := map[*ir.BasicBlock]bool{block: true}
	queue := append([]*ir.BasicBlock{}, block.Successors...)
	for _, s := range queue {
		visited[s] = true
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur != block && cur.ContainsMark && block.PostdominatorSet[cur] {
			return cur
		}
		for _, s := range cur.Successors {
			if !visited[s] {
				visited[s] = true
				queue = append(queue, s)
			}
		}
	}
	return nil
}
