package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatOneIncludesCodeMessageAndLocation(t *testing.T) {
	d := Diagnostic{
		Level:   Warn,
		Code:    CodeShortCircuitOperandNotFound,
		Message: "left operand of && has no definition in block",
		Location: Location{
			Function:      "transfer",
			Block:         "entry",
			InstructionID: 4,
		},
		Notes: []string{"rewrite skipped, branch left as-is"},
	}

	out := FormatOne(d)

	assert.Contains(t, out, "warning["+CodeShortCircuitOperandNotFound+"]")
	assert.Contains(t, out, "left operand of && has no definition in block")
	assert.Contains(t, out, "transfer:entry#4")
	assert.Contains(t, out, "rewrite skipped")
}

func TestLocationStringOmitsInstructionWhenNegative(t *testing.T) {
	loc := Location{Function: "f", Block: "b", InstructionID: -1}
	assert.Equal(t, "f:b", loc.String())
}

func TestLogHasErrors(t *testing.T) {
	var log Log
	log.Add(Diagnostic{Level: Note, Message: "informational"})
	assert.False(t, log.HasErrors())

	log.Add(Diagnostic{Level: Error, Code: CodeLostMarkedInstruction, Message: "witness check failed"})
	assert.True(t, log.HasErrors())

	formatted := Format(&log)
	assert.Contains(t, formatted, "informational")
	assert.Contains(t, formatted, "witness check failed")
}

func TestDescriptionKnownAndUnknownCodes(t *testing.T) {
	assert.Contains(t, Description(CodeBlockUnreachable), "removed")
	assert.Equal(t, "unknown diagnostic code", Description("O9999"))
}
