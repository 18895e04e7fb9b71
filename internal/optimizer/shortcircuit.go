package optimizer

import (
	"ollie/internal/diagnostics"
	"ollie/internal/ir"
)

// ShortCircuit implements §4.7: rewrite a block ending in a conditional
// branch whose condition is a `&&`/`||` of two comparisons into two
// chained conditional jumps, so the second comparison is only ever
// evaluated when the first didn't already decide the outcome. This pass
// is experimental and gated off by default (§9 open question 2); only a
// single level of `&&`/`||` feeding the branch directly is recognized,
// and both operands of that boolean must themselves be simple
// comparisons defined earlier in the same block. Anything more deeply
// nested is left untouched rather than partially rewritten.
func ShortCircuit(cfg *ir.ControlFlowGraph) {
	shortCircuit(cfg, nil)
}

func shortCircuit(cfg *ir.ControlFlowGraph, log *diagnostics.Log) {
	for _, b := range ir.CloneBlockSlice(cfg.CreatedBlocks) {
		rewriteShortCircuitBranch(b, log)
	}
}

func isComparison(op ir.Operator) bool {
	switch op {
	case ir.OpEq, ir.OpNeq, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		return true
	default:
		return false
	}
}

// findDefiningInstruction scans block backward from its current exit for
// the most recent assignment to v. Short-circuit operands are expected to
// be defined earlier in the same straight-line block that branches on
// them; a definition living in a different block is out of scope for
// this pass.
func findDefiningInstruction(block *ir.BasicBlock, v *ir.Variable) *ir.Instruction {
	if v == nil {
		return nil
	}
	for inst := block.Exit; inst != nil; inst = inst.Prev {
		if inst.Assignee != nil && ir.VariablesEqual(inst.Assignee, v, true) {
			return inst
		}
	}
	return nil
}

func variableType(inst *ir.Instruction) ir.Type {
	if inst == nil || inst.Assignee == nil {
		return nil
	}
	return inst.Assignee.Type
}

// logShortCircuitSkip records why a candidate `&&`/`||` branch was left
// untouched. log is nil whenever ShortCircuit is invoked through its
// public wrapper, so every call site here must tolerate that.
func logShortCircuitSkip(log *diagnostics.Log, block *ir.BasicBlock, boolean *ir.Instruction, reason string) {
	if log == nil {
		return
	}
	function := ""
	if block.FunctionDefinedIn != nil {
		function = block.FunctionDefinedIn.Name
	}
	log.Add(diagnostics.Diagnostic{
		Level:   diagnostics.Note,
		Code:    diagnostics.CodeShortCircuitOperandNotFound,
		Message: "short-circuit rewrite skipped",
		Location: diagnostics.Location{
			Function:      function,
			Block:         block.Label,
			InstructionID: boolean.ID,
		},
		Notes: []string{reason},
	})
}

func rewriteShortCircuitBranch(block *ir.BasicBlock, log *diagnostics.Log) bool {
	exit := block.Exit
	if exit == nil || exit.StatementType != ir.StmtCondBranch {
		return false
	}

	boolean := findDefiningInstruction(block, exit.Op1)
	if boolean == nil || boolean.StatementType != ir.StmtAssn {
		return false
	}
	if boolean.Operator != ir.OpDoubleAnd && boolean.Operator != ir.OpDoubleOr {
		return false
	}

	leftDef := findDefiningInstruction(block, boolean.Op1)
	rightDef := findDefiningInstruction(block, boolean.Op2)
	if leftDef == nil || rightDef == nil {
		logShortCircuitSkip(log, block, boolean, "operand of && / || has no definition within this block")
		return false
	}
	if !isComparison(leftDef.Operator) || !isComparison(rightDef.Operator) {
		logShortCircuitSkip(log, block, boolean, "operand is not a simple comparison")
		return false
	}

	ifTarget, elseTarget := exit.IfBlock, exit.ElseBlock
	if exit.InverseJump {
		ifTarget, elseTarget = elseTarget, ifTarget
	}

	var firstTarget, secondTarget, fallthroughTarget *ir.BasicBlock
	var firstCategory, secondCategory ir.JumpCategory
	if boolean.Operator == ir.OpDoubleAnd {
		firstTarget, firstCategory = elseTarget, ir.JumpCategoryInverse
		secondTarget, secondCategory = ifTarget, ir.JumpCategoryNormal
		fallthroughTarget = elseTarget
	} else {
		firstTarget, firstCategory = ifTarget, ir.JumpCategoryNormal
		secondTarget, secondCategory = elseTarget, ir.JumpCategoryInverse
		fallthroughTarget = ifTarget
	}

	firstJumpType := ir.SelectAppropriateJumpStmt(leftDef.Operator, firstCategory, ir.IsTypeSigned(variableType(leftDef)))
	firstJump := &ir.Instruction{
		StatementType:  ir.StmtCondBranch,
		Op1:            leftDef.Assignee,
		IfBlock:        firstTarget,
		JumpType:       firstJumpType,
		IsBranchEnding: true,
		InverseJump:    firstCategory == ir.JumpCategoryInverse,
	}
	ir.InsertAfter(block, leftDef, firstJump)
	ir.AddSuccessor(block, firstTarget)

	secondJumpType := ir.SelectAppropriateJumpStmt(rightDef.Operator, secondCategory, ir.IsTypeSigned(variableType(rightDef)))
	secondJump := &ir.Instruction{
		StatementType:  ir.StmtCondBranch,
		Op1:            rightDef.Assignee,
		IfBlock:        secondTarget,
		JumpType:       secondJumpType,
		IsBranchEnding: true,
		InverseJump:    secondCategory == ir.JumpCategoryInverse,
	}

	ir.DeleteStatement(boolean)
	ir.DeleteStatement(exit)
	ir.AddStatement(block, secondJump)
	ir.AddSuccessor(block, secondTarget)

	ir.EmitJump(block, fallthroughTarget, nil, ir.JumpUnconditional, true, false)
	block.BlockTerminalType = ir.TerminalJump

	return true
}
