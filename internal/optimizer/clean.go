package optimizer

import "ollie/internal/ir"

// Clean implements §4.3: repeatedly recompute a post-order traversal of
// each function and apply branch_reduce to every block in that order,
// until a full pass makes no change. A post-order traversal is recomputed
// at the start of every pass because R2/R3 rewrites invalidate any
// previous ordering; blocks a prior rule already removed within the same
// pass are skipped rather than recomputing the order after every single
// rewrite, which is equivalent in outcome and far cheaper.
func Clean(cfg *ir.ControlFlowGraph) {
	changed := true
	for changed {
		changed = false
		for _, fn := range cfg.Functions {
			if fn.Entry == nil {
				continue
			}
			order := postOrderWithoutVisitedFlags(fn.Entry)
			for _, b := range order {
				if !ir.ContainsBlock(cfg.CreatedBlocks, b) {
					continue
				}
				if branchReduce(cfg, b) {
					changed = true
				}
			}
		}
	}
}

// postOrderWithoutVisitedFlags mirrors domtree.ComputePostOrderTraversal
// but uses a local visited set instead of the shared Visited scratch
// field, so Clean's internal bookkeeping never collides with a caller
// that is mid-traversal using the same flag (§9's externalized-scratch-
// state note).
func postOrderWithoutVisitedFlags(entry *ir.BasicBlock) []*ir.BasicBlock {
	var order []*ir.BasicBlock
	visited := map[*ir.BasicBlock]bool{}
	var visit func(b *ir.BasicBlock)
	visit = func(b *ir.BasicBlock) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range b.Successors {
			visit(s)
		}
		order = append(order, b)
	}
	visit(entry)
	return order
}

// branchReduce tries rules R1-R4 of §4.3 against b's current state, in
// order, applying the first one that matches and returning immediately —
// a block that changes shape is left for the next full pass to
// re-examine, rather than cascading rules within a single call.
func branchReduce(cfg *ir.ControlFlowGraph, b *ir.BasicBlock) bool {
	// R1: a conditional branch whose two targets are identical collapses to
	// an unconditional jump.
	if exit := b.Exit; exit != nil && exit.StatementType == ir.StmtCondBranch &&
		exit.IfBlock != nil && exit.IfBlock == exit.ElseBlock {
		target := exit.IfBlock
		for b.Exit != nil && b.Exit.IsBranchEnding {
			ir.DeleteStatement(b.Exit)
		}
		ir.DeleteSuccessor(b, target)
		ir.EmitJump(b, target, nil, ir.JumpUnconditional, true, false)
		b.BlockTerminalType = ir.TerminalJump
		return true
	}

	// R2: an empty block (its only instruction is its own unconditional
	// jump) is elided; every predecessor's branch target is retargeted past
	// it.
	if exit := b.Exit; exit != nil && exit.StatementType == ir.StmtJmp &&
		b.BlockType != ir.BlockFuncEntry && b.Leader == b.Exit {
		target := exit.IfBlock
		replaceAllBranchTargets(b, target)
		cfg.RemoveCreatedBlock(b)
		return true
	}

	// R3: a block ending in an unconditional jump to a block with exactly
	// one predecessor (itself) is merged into that successor.
	if exit := b.Exit; exit != nil && exit.StatementType == ir.StmtJmp {
		target := exit.IfBlock
		if target != nil && len(target.Predecessors) == 1 && target.Predecessors[0] == b {
			ir.DeleteStatement(exit)
			ir.DeleteSuccessor(b, target)
			combine(cfg, b, target)
			return true
		}
	}

	// R4: a block ending in an unconditional jump to a block that begins
	// with a short-circuit chain and ends in a conditional branch gets that
	// branch hoisted into it directly, skipping the intermediate hop.
	if exit := b.Exit; exit != nil && exit.StatementType == ir.StmtJmp {
		target := exit.IfBlock
		if target != nil && target.Leader != nil && target.Leader.IsBranchEnding &&
			target.Exit != nil && target.Exit.StatementType == ir.StmtCondBranch {
			ir.DeleteStatement(exit)
			ir.DeleteSuccessor(b, target)
			hoistBranch(b, target)
			return true
		}
	}

	return false
}

// replaceAllBranchTargets implements §4.3.2: every predecessor of e that
// targets e (directly, via a jump table, or via a conditional branch) is
// retargeted to r instead, and e is detached from r.
func replaceAllBranchTargets(e, r *ir.BasicBlock) {
	for _, p := range ir.CloneBlockSlice(e.Predecessors) {
		ir.DeleteSuccessor(p, e)

		if p.JumpTable != nil {
			retargeted := false
			for idx, node := range p.JumpTable.Nodes {
				if node == e {
					p.JumpTable.Nodes[idx] = r
					retargeted = true
				}
			}
			if retargeted {
				ir.AddSuccessor(p, r)
			}
		}

		if p.Exit != nil {
			switch p.Exit.StatementType {
			case ir.StmtJmp:
				if p.Exit.IfBlock == e {
					p.Exit.IfBlock = r
					ir.AddSuccessor(p, r)
				}
			case ir.StmtCondBranch:
				if p.Exit.IfBlock == e {
					p.Exit.IfBlock = r
					ir.AddSuccessor(p, r)
				}
				if p.Exit.ElseBlock == e {
					p.Exit.ElseBlock = r
					ir.AddSuccessor(p, r)
				}
			}
		}
	}
	ir.DeleteSuccessor(e, r)
}

// combine implements §4.3.1: absorb j into i. The caller has already
// deleted the i->j jump and the i->j edge.
func combine(cfg *ir.ControlFlowGraph, i, j *ir.BasicBlock) {
	jLeader, jExit := j.Leader, j.Exit

	if jLeader != nil {
		if i.Leader == nil {
			i.Leader = jLeader
		} else {
			i.Exit.Next = jLeader
			jLeader.Prev = i.Exit
		}
		i.Exit = jExit
	}

	for _, s := range ir.CloneBlockSlice(j.Successors) {
		ir.AddSuccessorOnly(i, s)
		for idx, p := range s.Predecessors {
			if p == j {
				s.Predecessors[idx] = i
			}
		}
	}

	if i.BlockType != ir.BlockFuncEntry {
		i.BlockType = j.BlockType
	}
	i.BlockTerminalType = j.BlockTerminalType
	if j.JumpTable != nil {
		i.JumpTable = j.JumpTable
		j.JumpTable = nil
	}
	if j.EstimatedExecutionFrequency > i.EstimatedExecutionFrequency {
		i.EstimatedExecutionFrequency = j.EstimatedExecutionFrequency
	}

	for inst := jLeader; inst != nil; inst = inst.Next {
		inst.Block = i
		inst.Function = i.FunctionDefinedIn
		if inst == jExit {
			break
		}
	}

	cfg.RemoveCreatedBlock(j)
}

// hoistBranch implements R4's payload: copy every instruction of j into
// the tail of i, then adopt j's two branch-target edges as i's own. j
// itself is left in place (it may still be reachable from elsewhere);
// only the i->j hop is removed, by the caller.
func hoistBranch(i, j *ir.BasicBlock) {
	for inst := j.Leader; inst != nil; inst = inst.Next {
		cp := ir.CopyInstruction(inst)
		ir.AddStatement(i, cp)
		if cp.Assignee != nil {
			ir.AddAssignedVariable(i, cp.Assignee)
		}
		if cp.Op1 != nil {
			ir.AddUsedVariable(i, cp.Op1)
		}
		if cp.Op2 != nil {
			ir.AddUsedVariable(i, cp.Op2)
		}
	}
	branchCopy := i.Exit
	if branchCopy == nil || branchCopy.StatementType != ir.StmtCondBranch {
		return
	}
	ir.AddSuccessor(i, branchCopy.IfBlock)
	ir.AddSuccessor(i, branchCopy.ElseBlock)
	i.BlockTerminalType = ir.TerminalBranch
}
