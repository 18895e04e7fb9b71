package ir

// Edge and instruction-list primitives. These realize the §6 "Consumed"
// external interfaces that operate directly on the CFG/instruction data
// model: add_successor, add_successor_only, delete_successor, emit_jump,
// emit_jmp_instruction, delete_statement, copy_instruction, add_statement,
// add_used_variable, add_assigned_variable.

func blockIndex(list []*BasicBlock, b *BasicBlock) int {
	for i, cur := range list {
		if cur == b {
			return i
		}
	}
	return -1
}

// ContainsBlock reports whether b is present in list.
func ContainsBlock(list []*BasicBlock, b *BasicBlock) bool {
	return blockIndex(list, b) >= 0
}

func removeBlock(list []*BasicBlock, b *BasicBlock) []*BasicBlock {
	idx := blockIndex(list, b)
	if idx < 0 {
		return list
	}
	return append(list[:idx], list[idx+1:]...)
}

// AddSuccessor adds b to a's successor list and symmetrically adds a to b's
// predecessor list. No-ops if the edge already exists.
func AddSuccessor(a, b *BasicBlock) {
	if !ContainsBlock(a.Successors, b) {
		a.Successors = append(a.Successors, b)
	}
	if !ContainsBlock(b.Predecessors, a) {
		b.Predecessors = append(b.Predecessors, a)
	}
}

// AddSuccessorOnly adds b to a's successor list without touching b's
// predecessor list. Used when the predecessor side is maintained by the
// caller through a different path (e.g. combine, which rewrites the
// successor's existing predecessor slot in place).
func AddSuccessorOnly(a, b *BasicBlock) {
	if !ContainsBlock(a.Successors, b) {
		a.Successors = append(a.Successors, b)
	}
}

// DeleteSuccessor removes the a->b edge from both sides.
func DeleteSuccessor(a, b *BasicBlock) {
	a.Successors = removeBlock(a.Successors, b)
	b.Predecessors = removeBlock(b.Predecessors, a)
}

// CloneBlockSlice returns a shallow copy of list, safe to range over while
// the original is mutated. Every pass that mutates a slice it is iterating
// (replace_all_branch_targets, delete_unreachable_blocks) must clone first.
func CloneBlockSlice(list []*BasicBlock) []*BasicBlock {
	out := make([]*BasicBlock, len(list))
	copy(out, list)
	return out
}

// AddStatement appends inst to the tail of block's instruction list.
func AddStatement(block *BasicBlock, inst *Instruction) {
	inst.Block = block
	inst.Function = block.FunctionDefinedIn
	if block.Exit == nil {
		block.Leader = inst
		block.Exit = inst
		inst.Prev, inst.Next = nil, nil
		return
	}
	block.Exit.Next = inst
	inst.Prev = block.Exit
	inst.Next = nil
	block.Exit = inst
}

// InsertAfter splices inst into block's list immediately following after.
// after must currently belong to block.
func InsertAfter(block *BasicBlock, after, inst *Instruction) {
	inst.Block = block
	inst.Function = block.FunctionDefinedIn
	inst.Prev = after
	inst.Next = after.Next
	if after.Next != nil {
		after.Next.Prev = inst
	} else {
		block.Exit = inst
	}
	after.Next = inst
}

// DeleteStatement unlinks inst from its block's instruction list.
func DeleteStatement(inst *Instruction) {
	block := inst.Block
	if block == nil {
		return
	}
	if inst.Prev != nil {
		inst.Prev.Next = inst.Next
	} else {
		block.Leader = inst.Next
	}
	if inst.Next != nil {
		inst.Next.Prev = inst.Prev
	} else {
		block.Exit = inst.Prev
	}
	inst.Prev, inst.Next, inst.Block = nil, nil, nil
}

// CopyInstruction deep-copies inst (its scalar/slice fields) without
// attaching it to any block's list and without mutating the original.
func CopyInstruction(inst *Instruction) *Instruction {
	if inst == nil {
		return nil
	}
	cp := *inst
	cp.Prev, cp.Next = nil, nil
	if inst.Parameters != nil {
		cp.Parameters = make([]*Variable, len(inst.Parameters))
		copy(cp.Parameters, inst.Parameters)
	}
	return &cp
}

// EmitJmpInstruction constructs a free-standing unconditional jump
// instruction, not yet attached to any block's list or successor set.
func EmitJmpInstruction(target *BasicBlock, jumpType JumpType) *Instruction {
	return &Instruction{
		StatementType: StmtJmp,
		IfBlock:       target,
		JumpType:      jumpType,
	}
}

// EmitJump inserts an unconditional (cond == nil) or conditional jump at
// the tail of from, targeting to, and updates from's successor set
// accordingly (and to's predecessor set, via AddSuccessor). Conditional
// jumps synthesized mid-block (is_branch_ending) still register the edge
// immediately, per edge-symmetry.
func EmitJump(from, to *BasicBlock, cond *Variable, jumpType JumpType, isBranchEnding bool, inverse bool) *Instruction {
	inst := &Instruction{
		StatementType:  StmtJmp,
		IfBlock:        to,
		JumpType:       jumpType,
		IsBranchEnding: isBranchEnding,
		InverseJump:    inverse,
	}
	if cond != nil {
		inst.StatementType = StmtCondBranch
		inst.Op1 = cond
	}
	AddStatement(from, inst)
	AddSuccessor(from, to)
	return inst
}

// AddUsedVariable records that block uses v (def/use bookkeeping consumed
// by later register-allocation stages, not otherwise interpreted here).
func AddUsedVariable(block *BasicBlock, v *Variable) {
	if v == nil {
		return
	}
	if block.usedVars == nil {
		block.usedVars = make(map[*Variable]bool)
	}
	block.usedVars[v] = true
}

// AddAssignedVariable records that block assigns v.
func AddAssignedVariable(block *BasicBlock, v *Variable) {
	if v == nil {
		return
	}
	if block.assignedVars == nil {
		block.assignedVars = make(map[*Variable]bool)
	}
	block.assignedVars[v] = true
}
