package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ollie/internal/domtree"
	"ollie/internal/ir"
	"ollie/internal/ir/irtest"
	"ollie/internal/optimizer"
)

// A dead store to a temporary that's never read, followed by a return of
// something else, must come out unmarked: it has no effect on the
// program's observable behavior.
func TestMarkDeadAssignmentUnmarked(t *testing.T) {
	b, entry := irtest.New("f")
	dead := b.Temp()
	b.AssignConst(entry, dead, b.CFG.Constants.InternF64(0))

	result := b.Temp()
	b.AssignConst(entry, result, b.CFG.Constants.InternF64(1))
	retInst := b.Ret(entry, result)

	domtree.CalculateAllControlRelations(b.CFG, true)
	optimizer.Mark(b.CFG)

	assert.False(t, entry.Leader.Mark, "dead assignment must stay unmarked")
	assert.True(t, retInst.Mark, "ret is always a seed")
	resultDef := retInst.Prev
	require.NotNil(t, resultDef)
	assert.True(t, resultDef.Mark, "definition feeding a marked use must be marked")
}

// A store through a pointer is always critical, as is the definition of
// the address and value it depends on.
func TestMarkStoreIsAlwaysCritical(t *testing.T) {
	b, entry := irtest.New("f")
	addr := b.Temp()
	addr.IndirectionLevel = 1
	val := b.Temp()

	addrDef := b.AssignConst(entry, addr, b.CFG.Constants.InternF64(0))
	valDef := b.AssignConst(entry, val, b.CFG.Constants.InternF64(1))
	store := b.Store(entry, addr, val)
	b.Ret(entry, nil)

	domtree.CalculateAllControlRelations(b.CFG, true)
	optimizer.Mark(b.CFG)

	assert.True(t, store.Mark)
	assert.True(t, addrDef.Mark)
	assert.True(t, valDef.Mark)
}

// Running Mark twice in a row on an already-marked CFG produces the same
// marking (idempotence).
func TestMarkIsIdempotent(t *testing.T) {
	b, entry := irtest.New("f")
	v := b.Temp()
	b.AssignConst(entry, v, b.CFG.Constants.InternF64(0))
	b.Ret(entry, v)

	domtree.CalculateAllControlRelations(b.CFG, true)
	optimizer.Mark(b.CFG)
	first := snapshotMarks(b.CFG)

	optimizer.Mark(b.CFG)
	second := snapshotMarks(b.CFG)

	assert.Equal(t, first, second)
}

// A conditional branch that solely controls a block containing a critical
// instruction must itself be marked, via the reverse dominance frontier.
func TestMarkControllingBranchViaReverseDominanceFrontier(t *testing.T) {
	b, entry := irtest.New("f")
	thenBlk := b.Block("then")
	joinBlk := b.Block("join")

	cond := b.Temp()
	branch := b.Branch(entry, cond, thenBlk, joinBlk)
	b.Idle(thenBlk)
	b.Jump(thenBlk, joinBlk)
	b.Ret(joinBlk, nil)

	domtree.CalculateAllControlRelations(b.CFG, true)
	optimizer.Mark(b.CFG)

	assert.True(t, branch.Mark, "branch controlling a critical block must be marked")
}

func snapshotMarks(cfg *ir.ControlFlowGraph) map[*ir.Instruction]bool {
	out := map[*ir.Instruction]bool{}
	for _, b := range cfg.CreatedBlocks {
		for inst := b.Leader; inst != nil; inst = inst.Next {
			out[inst] = inst.Mark
		}
	}
	return out
}
