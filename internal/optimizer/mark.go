package optimizer

import "ollie/internal/ir"

// Mark implements §4.1: assign mark=true to every instruction that may
// influence observable behavior, and contains_mark=true on every block
// holding at least one marked instruction. Everything else is left false.
//
// Mark relies on the CFG's reverse dominance frontiers already being
// populated — by the front end that built this CFG on the first pass, or
// by the dominance-rebuild step of a previous Optimize call. Mark itself
// never computes them; it only reads ReverseDominanceFrontier.
func Mark(cfg *ir.ControlFlowGraph) {
	resetMarks(cfg)

	work := newWorklist()
	seedCriticalInstructions(cfg, work)

	for {
		inst, ok := work.pop()
		if !ok {
			break
		}
		propagate(cfg, inst, work)
	}
}

func resetMarks(cfg *ir.ControlFlowGraph) {
	for _, b := range cfg.CreatedBlocks {
		b.ContainsMark = false
		for inst := b.Leader; inst != nil; inst = inst.Next {
			inst.Mark = false
		}
	}
}

// worklist is a LIFO (remove from back), per §5's ordering guarantee:
// correctness is invariant to queue discipline because marking is
// monotonic, but the spec names LIFO specifically.
type worklist struct {
	stack []*ir.Instruction
}

func newWorklist() *worklist { return &worklist{} }

func (w *worklist) push(i *ir.Instruction) { w.stack = append(w.stack, i) }

func (w *worklist) pop() (*ir.Instruction, bool) {
	if len(w.stack) == 0 {
		return nil, false
	}
	last := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	return last, true
}

func mark(inst *ir.Instruction, w *worklist) {
	if inst.Mark {
		return
	}
	inst.Mark = true
	if inst.Block != nil {
		inst.Block.ContainsMark = true
	}
	w.push(inst)
}

// isCriticalSeed reports whether inst is unconditionally critical per the
// §4.1 seed list.
func isCriticalSeed(inst *ir.Instruction) bool {
	switch inst.StatementType {
	case ir.StmtRet, ir.StmtAsmInline, ir.StmtFuncCall, ir.StmtIndirectFuncCall,
		ir.StmtIdle, ir.StmtStore, ir.StmtStoreConst:
		return true
	case ir.StmtAssn, ir.StmtAssnConst:
		return inst.Assignee != nil && inst.Assignee.IndirectionLevel > 0
	default:
		return false
	}
}

func seedCriticalInstructions(cfg *ir.ControlFlowGraph, w *worklist) {
	for _, b := range cfg.CreatedBlocks {
		for inst := b.Leader; inst != nil; inst = inst.Next {
			if isCriticalSeed(inst) {
				mark(inst, w)
			}
		}
	}
}

// propagate applies the §4.1 propagation rules for one dequeued
// instruction: mark the definitions of whatever it uses, then mark any
// controlling branch in the reverse dominance frontier of its block.
func propagate(cfg *ir.ControlFlowGraph, inst *ir.Instruction, w *worklist) {
	fn := inst.Function

	switch inst.StatementType {
	case ir.StmtPhi:
		for _, param := range inst.Parameters {
			markDefinition(cfg, fn, param, w)
		}
	case ir.StmtFuncCall:
		for _, arg := range inst.Parameters {
			markDefinition(cfg, fn, arg, w)
		}
	case ir.StmtIndirectFuncCall:
		markDefinition(cfg, fn, inst.Op1, w)
		for _, arg := range inst.Parameters {
			markDefinition(cfg, fn, arg, w)
		}
	default:
		if inst.Assignee != nil && inst.Assignee.IndirectionLevel > 0 {
			markDefinition(cfg, fn, inst.Assignee, w)
		}
		markDefinition(cfg, fn, inst.Op1, w)
		markDefinition(cfg, fn, inst.Op2, w)
	}

	markControllingBranches(inst, w)
}

// markControllingBranches implements step 5 of §4.1: every block in the
// reverse dominance frontier of inst's block whose exit is a conditional
// branch or indirect jump, and is unmarked, becomes marked and enqueued —
// the branch controls whether inst's block executes at all.
func markControllingBranches(inst *ir.Instruction, w *worklist) {
	block := inst.Block
	if block == nil {
		return
	}
	for rdfBlock := range block.ReverseDominanceFrontier {
		exit := rdfBlock.Exit
		if exit == nil || exit.Mark {
			continue
		}
		if exit.StatementType == ir.StmtCondBranch || exit.StatementType == ir.StmtIndirectJmp {
			mark(exit, w)
		}
	}
}

// markDefinition finds and marks the unique defining instruction of v
// within fn (the §4.1 "Definition lookup"). For a temporary, only blocks
// belonging to fn are scanned (temporaries never cross function
// boundaries); for a named variable every block in the CFG is scanned,
// since the lookup is keyed purely on (linked_var, ssa_generation)
// identity. SSA guarantees at most one matching definition exists, so the
// first match found ends the search, marked or not.
func markDefinition(cfg *ir.ControlFlowGraph, fn *ir.Function, v *ir.Variable, w *worklist) {
	if v == nil {
		return
	}
	for _, block := range cfg.CreatedBlocks {
		if v.Kind == ir.VarTemp && block.FunctionDefinedIn != fn {
			continue
		}
		for inst := block.Exit; inst != nil; inst = inst.Prev {
			if inst.Assignee == nil {
				continue
			}
			if !ir.VariablesEqual(inst.Assignee, v, true) {
				continue
			}
			mark(inst, w)
			return
		}
	}
}
