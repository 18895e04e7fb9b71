// Package irtest provides a small fixture builder for constructing CFGs in
// tests, standing in for the out-of-scope front-end collaborator that would
// normally hand the optimizer a CFG (AST lowering + SSA renaming).
package irtest

import "ollie/internal/ir"

// Builder accumulates blocks for a single function under construction.
type Builder struct {
	CFG *ir.ControlFlowGraph
	Fn  *ir.Function

	blockSeq int
	instSeq  int
	tempSeq  int
}

// New creates a fixture CFG with a single function named name, whose entry
// block is labeled "entry".
func New(name string) (*Builder, *ir.BasicBlock) {
	cfg := ir.NewControlFlowGraph()
	fn := &ir.Function{Name: name, LocalVars: map[string]*ir.Variable{}}
	b := &Builder{CFG: cfg, Fn: fn}
	entry := b.Block("entry")
	fn.Entry = entry
	cfg.AddFunction(fn)
	return b, entry
}

// Block creates and registers a new, empty basic block in the current
// function.
func (b *Builder) Block(label string) *ir.BasicBlock {
	blk := ir.NewBlock(b.blockSeq, label)
	b.blockSeq++
	b.CFG.AddBlock(blk, b.Fn)
	return blk
}

// Temp allocates a fresh temporary variable.
func (b *Builder) Temp() *ir.Variable {
	v := &ir.Variable{Kind: ir.VarTemp, TempVarNumber: b.tempSeq}
	b.tempSeq++
	return v
}

// Named returns a named variable at the given SSA generation.
func (b *Builder) Named(name string, gen int) *ir.Variable {
	return &ir.Variable{Kind: ir.VarNamed, LinkedVar: name, SSAGeneration: gen}
}

func (b *Builder) nextID() int {
	id := b.instSeq
	b.instSeq++
	return id
}

// Assign appends `assignee <- op1 operator op2` to blk.
func (b *Builder) Assign(blk *ir.BasicBlock, assignee, op1, op2 *ir.Variable, op ir.Operator) *ir.Instruction {
	inst := &ir.Instruction{ID: b.nextID(), StatementType: ir.StmtAssn, Assignee: assignee, Op1: op1, Op2: op2, Operator: op}
	ir.AddStatement(blk, inst)
	return inst
}

// AssignConst appends `assignee <- const` to blk.
func (b *Builder) AssignConst(blk *ir.BasicBlock, assignee *ir.Variable, c *ir.LocalConstant) *ir.Instruction {
	inst := &ir.Instruction{ID: b.nextID(), StatementType: ir.StmtAssnConst, Assignee: assignee, Const: c}
	ir.AddStatement(blk, inst)
	return inst
}

// Store appends `store op1, op2` to blk.
func (b *Builder) Store(blk *ir.BasicBlock, addr, val *ir.Variable) *ir.Instruction {
	inst := &ir.Instruction{ID: b.nextID(), StatementType: ir.StmtStore, Op1: addr, Op2: val}
	ir.AddStatement(blk, inst)
	return inst
}

// Call appends a direct call to blk.
func (b *Builder) Call(blk *ir.BasicBlock, assignee *ir.Variable, callee string, args ...*ir.Variable) *ir.Instruction {
	inst := &ir.Instruction{ID: b.nextID(), StatementType: ir.StmtFuncCall, Assignee: assignee, CalleeName: callee, Parameters: args}
	ir.AddStatement(blk, inst)
	return inst
}

// Idle appends an IDLE instruction to blk.
func (b *Builder) Idle(blk *ir.BasicBlock) *ir.Instruction {
	inst := &ir.Instruction{ID: b.nextID(), StatementType: ir.StmtIdle}
	ir.AddStatement(blk, inst)
	return inst
}

// Ret appends a return terminator to blk; value may be nil for a bare
// return. Marks blk's terminal type.
func (b *Builder) Ret(blk *ir.BasicBlock, value *ir.Variable) *ir.Instruction {
	inst := &ir.Instruction{ID: b.nextID(), StatementType: ir.StmtRet, Op1: value}
	ir.AddStatement(blk, inst)
	blk.BlockTerminalType = ir.TerminalRet
	return inst
}

// Jump appends an unconditional jump from blk to target, wiring the edge.
func (b *Builder) Jump(blk, target *ir.BasicBlock) *ir.Instruction {
	inst := ir.EmitJump(blk, target, nil, ir.JumpUnconditional, false, false)
	inst.ID = b.nextID()
	blk.BlockTerminalType = ir.TerminalJump
	return inst
}

// Branch appends a conditional branch from blk to ifBlk/elseBlk on cond,
// wiring both edges.
func (b *Builder) Branch(blk *ir.BasicBlock, cond *ir.Variable, ifBlk, elseBlk *ir.BasicBlock) *ir.Instruction {
	inst := &ir.Instruction{ID: b.nextID(), StatementType: ir.StmtCondBranch, Op1: cond, IfBlock: ifBlk, ElseBlock: elseBlk, IsBranchEnding: true}
	ir.AddStatement(blk, inst)
	ir.AddSuccessor(blk, ifBlk)
	ir.AddSuccessor(blk, elseBlk)
	blk.BlockTerminalType = ir.TerminalBranch
	return inst
}
