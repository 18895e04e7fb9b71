package ir

import "testing"

import "github.com/stretchr/testify/assert"

func TestVariablesEqualTemp(t *testing.T) {
	a := &Variable{Kind: VarTemp, TempVarNumber: 3}
	b := &Variable{Kind: VarTemp, TempVarNumber: 3}
	c := &Variable{Kind: VarTemp, TempVarNumber: 4}

	assert.True(t, VariablesEqual(a, b, true))
	assert.False(t, VariablesEqual(a, c, true))
}

func TestVariablesEqualNamedIncludesSSA(t *testing.T) {
	a := &Variable{Kind: VarNamed, LinkedVar: "x", SSAGeneration: 1}
	b := &Variable{Kind: VarNamed, LinkedVar: "x", SSAGeneration: 2}

	assert.False(t, VariablesEqual(a, b, true))
	assert.True(t, VariablesEqual(a, b, false))
}

func TestVariablesEqualDifferentKinds(t *testing.T) {
	temp := &Variable{Kind: VarTemp, TempVarNumber: 1}
	named := &Variable{Kind: VarNamed, LinkedVar: "x"}
	assert.False(t, VariablesEqual(temp, named, true))
}

func TestOperatorInverse(t *testing.T) {
	cases := map[Operator]Operator{
		OpLt:  OpGe,
		OpLe:  OpGt,
		OpGt:  OpLe,
		OpGe:  OpLt,
		OpEq:  OpNeq,
		OpNeq: OpEq,
	}
	for operator, want := range cases {
		assert.Equal(t, want, operator.Inverse(), "inverse of %s", operator)
	}
}

func TestSelectAppropriateJumpStmtSignedness(t *testing.T) {
	assert.Equal(t, JumpLTSigned, SelectAppropriateJumpStmt(OpLt, JumpCategoryNormal, true))
	assert.Equal(t, JumpLTUnsigned, SelectAppropriateJumpStmt(OpLt, JumpCategoryNormal, false))
	assert.Equal(t, JumpGESigned, SelectAppropriateJumpStmt(OpLt, JumpCategoryInverse, true))
	assert.Equal(t, JumpGEUnsigned, SelectAppropriateJumpStmt(OpLt, JumpCategoryInverse, false))
	assert.Equal(t, JumpEQ, SelectAppropriateJumpStmt(OpEq, JumpCategoryNormal, true))
	assert.Equal(t, JumpNE, SelectAppropriateJumpStmt(OpEq, JumpCategoryInverse, true))
}

func TestIsTypeSigned(t *testing.T) {
	assert.True(t, IsTypeSigned(&IntType{Bits: 32, IsSigned: true}))
	assert.False(t, IsTypeSigned(&IntType{Bits: 32, IsSigned: false}))
	assert.False(t, IsTypeSigned(nil))
}

func TestInstructionIsTerminator(t *testing.T) {
	assert.True(t, (&Instruction{StatementType: StmtRet}).IsTerminator())
	assert.True(t, (&Instruction{StatementType: StmtJmp}).IsTerminator())
	assert.True(t, (&Instruction{StatementType: StmtCondBranch}).IsTerminator())
	assert.True(t, (&Instruction{StatementType: StmtIndirectJmp}).IsTerminator())
	assert.False(t, (&Instruction{StatementType: StmtAssn}).IsTerminator())
}
