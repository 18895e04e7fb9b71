package diagnostics

// Diagnostic codes for the optimizer. These identify the class of
// finding rather than a specific instance, the same way the front-end
// compiler this package's texture is drawn from assigns stable codes per
// error category.
//
// Code ranges:
// O0001-O0099: pipeline/verification findings
// O0100-O0199: short-circuit rewrite findings
// O0600-O0699: reachability findings

const (
	// O0001: a mark=true instruction present before Sweep has no surviving
	// equivalent afterward (witness-mode verification failure).
	CodeLostMarkedInstruction = "O0001"

	// O0002: Clean's fixed-point loop did not converge. Clean has no
	// iteration limit and no pass emits this code.
	CodeCleanDidNotConverge = "O0002"

	// O0100: a branch's condition is a `&&`/`||`, but one operand's
	// definition could not be located in the same block or is not a simple
	// comparison, so the rewrite was skipped.
	CodeShortCircuitOperandNotFound = "O0100"

	// O0600: a block was dropped by unreachable-block removal.
	CodeBlockUnreachable = "O0600"
)

// Description returns a human-readable explanation of code, for use in
// -help output or documentation generation.
func Description(code string) string {
	switch code {
	case CodeLostMarkedInstruction:
		return "a marked instruction has no surviving equivalent after Sweep"
	case CodeCleanDidNotConverge:
		return "branch-reduction did not reach a fixed point"
	case CodeShortCircuitOperandNotFound:
		return "short-circuit operand definition not found within the branching block, or not a simple comparison"
	case CodeBlockUnreachable:
		return "block has no remaining predecessors and was removed"
	default:
		return "unknown diagnostic code"
	}
}
