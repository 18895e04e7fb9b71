package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ollie/internal/ir"
	"ollie/internal/ir/irtest"
	"ollie/internal/optimizer"
)

// R1: a conditional branch whose two targets are identical collapses to
// an unconditional jump.
func TestCleanCollapsesIdenticalBranchTargets(t *testing.T) {
	b, entry := irtest.New("f")
	join := b.Block("join")
	cond := b.Temp()
	b.Branch(entry, cond, join, join)
	b.Ret(join, nil)

	optimizer.Clean(b.CFG)

	require.NotNil(t, entry.Exit)
	assert.Equal(t, ir.StmtJmp, entry.Exit.StatementType)
	assert.Equal(t, join, entry.Exit.IfBlock)
	assert.Equal(t, []*ir.BasicBlock{join}, entry.Successors)
}

// R2: a block containing only an unconditional jump is elided, and its
// predecessor is retargeted past it.
func TestCleanElidesEmptyPassThroughBlock(t *testing.T) {
	b, entry := irtest.New("f")
	passThrough := b.Block("pt")
	dst := b.Block("dst")
	b.Jump(entry, passThrough)
	b.Jump(passThrough, dst)
	b.Ret(dst, nil)

	optimizer.Clean(b.CFG)

	assert.False(t, ir.ContainsBlock(b.CFG.CreatedBlocks, passThrough))
	require.NotNil(t, entry.Exit)
	assert.Equal(t, dst, entry.Exit.IfBlock)
	assert.True(t, ir.ContainsBlock(entry.Successors, dst))
}

// R3: a block ending in a jump to a block with exactly one predecessor
// (itself) gets that successor merged into it.
func TestCleanMergesLinearChain(t *testing.T) {
	b, entry := irtest.New("f")
	next := b.Block("next")
	v := b.Temp()
	entryDef := b.AssignConst(entry, v, b.CFG.Constants.InternF64(1))
	b.Jump(entry, next)
	nextDef := b.AssignConst(next, b.Temp(), b.CFG.Constants.InternF64(2))
	b.Ret(next, v)

	optimizer.Clean(b.CFG)

	assert.False(t, ir.ContainsBlock(b.CFG.CreatedBlocks, next))
	got := entry.Instructions()
	require.Len(t, got, 3)
	assert.Same(t, entryDef, got[0])
	assert.Same(t, nextDef, got[1])
	assert.Equal(t, ir.StmtRet, got[2].StatementType)
}

// Dead-code elimination's canonical scenario: Sweep drops the unmarked
// branch, and unreachable-block removal then drops both of its arms.
func TestOptimizePipelineDropsDeadBranch(t *testing.T) {
	b, entry := irtest.New("f")
	thenBlk := b.Block("then")
	elseBlk := b.Block("else")
	join := b.Block("join")

	cond := b.Temp()
	b.Branch(entry, cond, thenBlk, elseBlk)
	b.Jump(thenBlk, join)
	b.Jump(elseBlk, join)
	result := b.Temp()
	b.AssignConst(join, result, b.CFG.Constants.InternF64(7))
	b.Ret(join, result)

	optimizer.Optimize(b.CFG)

	assert.False(t, ir.ContainsBlock(b.CFG.CreatedBlocks, thenBlk))
	assert.False(t, ir.ContainsBlock(b.CFG.CreatedBlocks, elseBlk))
}
