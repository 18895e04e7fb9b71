package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ollie/internal/ir"
	"ollie/internal/ir/irtest"
	"ollie/internal/optimizer"
)

func TestEstimateFrequencyRaisesToPredecessorMean(t *testing.T) {
	b, entry := irtest.New("f")
	join := b.Block("join")
	final := b.Block("final")
	entry.EstimatedExecutionFrequency = 100

	other := b.Block("other")
	other.EstimatedExecutionFrequency = 50
	ir.AddSuccessor(entry, join)
	ir.AddSuccessor(other, join)
	b.Jump(join, final)
	b.Ret(final, nil)

	optimizer.EstimateFrequency(b.CFG)

	assert.Equal(t, 75, join.EstimatedExecutionFrequency)
}

func TestEstimateFrequencyNeverLowersExistingEstimate(t *testing.T) {
	b, entry := irtest.New("f")
	join := b.Block("join")
	final := b.Block("final")
	join.EstimatedExecutionFrequency = 1000
	ir.AddSuccessor(entry, join)
	b.Jump(join, final)
	b.Ret(final, nil)

	optimizer.EstimateFrequency(b.CFG)

	assert.Equal(t, 1000, join.EstimatedExecutionFrequency)
}

func TestEstimateFrequencySkipsReturnBlocks(t *testing.T) {
	b, entry := irtest.New("f")
	done := b.Block("done")
	entry.EstimatedExecutionFrequency = 500
	done.EstimatedExecutionFrequency = 1
	ir.AddSuccessor(entry, done)
	b.Ret(done, nil)

	optimizer.EstimateFrequency(b.CFG)

	assert.Equal(t, 1, done.EstimatedExecutionFrequency)
}
