// Package fixture reads the small textual CFG format cmd/ollie-opt accepts,
// standing in for the out-of-scope front end (parsing, type checking, SSA
// construction) that would otherwise hand the optimizer a finished CFG.
package fixture

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ollie/internal/ir"
)

// Parse reads a fixture program and returns the CFG it describes.
//
// Syntax, one or more functions:
//
//	func <name>
//	block <label>
//	  <var> <- const <int>
//	  <var> <- <var> <op> <var>        op: + - * / % == != < <= > >= && ||
//	  <var> <- call <callee>(<args>)
//	  store <var>, <var>
//	  idle
//	  jmp <label>
//	  branch <var> -> <label>, <label>
//	  ret [<var>]
//
// `#` starts a line comment. Variables are `t<N>` for a temporary or
// `<name>.<gen>` for a named SSA variable (a bare name with no `.<gen>` is
// shorthand for generation 0). The first block declared in a function is
// its entry block.
func Parse(src string) (*ir.ControlFlowGraph, error) {
	cfg := ir.NewControlFlowGraph()

	for _, chunk := range splitFunctions(src) {
		if err := parseFunction(cfg, chunk); err != nil {
			return nil, fmt.Errorf("function %q: %w", chunk.name, err)
		}
	}
	return cfg, nil
}

type functionChunk struct {
	name  string
	lines []string // body lines, "func" line stripped
}

func splitFunctions(src string) []functionChunk {
	var chunks []functionChunk
	var cur *functionChunk
	for _, raw := range strings.Split(src, "\n") {
		line := stripComment(raw)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if name, ok := cutPrefix(trimmed, "func "); ok {
			chunks = append(chunks, functionChunk{name: strings.TrimSpace(name)})
			cur = &chunks[len(chunks)-1]
			continue
		}
		if cur != nil {
			cur.lines = append(cur.lines, trimmed)
		}
	}
	return chunks
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func cutPrefix(s, prefix string) (string, bool) {
	if strings.HasPrefix(s, prefix) {
		return s[len(prefix):], true
	}
	return "", false
}

func parseFunction(cfg *ir.ControlFlowGraph, chunk functionChunk) error {
	fn := &ir.Function{Name: chunk.name, LocalVars: map[string]*ir.Variable{}}

	blocks := map[string]*ir.BasicBlock{}
	var order []string
	blockSeq := 0
	for _, line := range chunk.lines {
		label, ok := cutPrefix(line, "block ")
		if !ok {
			continue
		}
		label = strings.TrimSpace(label)
		blk := ir.NewBlock(blockSeq, label)
		blockSeq++
		cfg.AddBlock(blk, fn)
		blocks[label] = blk
		order = append(order, label)
	}
	if len(order) == 0 {
		return fmt.Errorf("no blocks declared")
	}
	fn.Entry = blocks[order[0]]
	cfg.AddFunction(fn)

	instSeq := 0
	nextID := func() int {
		id := instSeq
		instSeq++
		return id
	}

	var cur *ir.BasicBlock
	vars := map[string]*ir.Variable{}
	for _, line := range chunk.lines {
		if label, ok := cutPrefix(line, "block "); ok {
			cur = blocks[strings.TrimSpace(label)]
			continue
		}
		if cur == nil {
			return fmt.Errorf("instruction %q before any block", line)
		}
		if err := parseInstruction(cfg, blocks, vars, cur, line, nextID); err != nil {
			return fmt.Errorf("block %s: %w", cur.Label, err)
		}
	}
	return nil
}

func parseInstruction(cfg *ir.ControlFlowGraph, blocks map[string]*ir.BasicBlock, vars map[string]*ir.Variable, blk *ir.BasicBlock, line string, nextID func() int) error {
	switch {
	case line == "idle":
		ir.AddStatement(blk, &ir.Instruction{ID: nextID(), StatementType: ir.StmtIdle})
		return nil

	case line == "ret":
		ir.AddStatement(blk, &ir.Instruction{ID: nextID(), StatementType: ir.StmtRet})
		blk.BlockTerminalType = ir.TerminalRet
		return nil

	case strings.HasPrefix(line, "ret "):
		v, err := resolveVariable(vars, strings.TrimSpace(strings.TrimPrefix(line, "ret ")))
		if err != nil {
			return err
		}
		ir.AddStatement(blk, &ir.Instruction{ID: nextID(), StatementType: ir.StmtRet, Op1: v})
		blk.BlockTerminalType = ir.TerminalRet
		return nil

	case strings.HasPrefix(line, "jmp "):
		target, ok := blocks[strings.TrimSpace(strings.TrimPrefix(line, "jmp "))]
		if !ok {
			return fmt.Errorf("unknown jmp target in %q", line)
		}
		inst := ir.EmitJump(blk, target, nil, ir.JumpUnconditional, false, false)
		inst.ID = nextID()
		blk.BlockTerminalType = ir.TerminalJump
		return nil

	case strings.HasPrefix(line, "branch "):
		return parseBranch(blocks, vars, blk, line, nextID)

	case strings.HasPrefix(line, "store "):
		return parseStore(vars, blk, line, nextID)

	case strings.Contains(line, "<-"):
		return parseAssignment(cfg, vars, blk, line, nextID)

	default:
		return fmt.Errorf("unrecognized instruction %q", line)
	}
}

func parseBranch(blocks map[string]*ir.BasicBlock, vars map[string]*ir.Variable, blk *ir.BasicBlock, line string, nextID func() int) error {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "branch "))
	arrow := strings.SplitN(rest, "->", 2)
	if len(arrow) != 2 {
		return fmt.Errorf("malformed branch %q, expected `branch <var> -> <label>, <label>`", line)
	}
	cond, err := resolveVariable(vars, strings.TrimSpace(arrow[0]))
	if err != nil {
		return err
	}
	targets := strings.SplitN(arrow[1], ",", 2)
	if len(targets) != 2 {
		return fmt.Errorf("malformed branch %q, expected two comma-separated targets", line)
	}
	ifBlk, ok := blocks[strings.TrimSpace(targets[0])]
	if !ok {
		return fmt.Errorf("unknown branch if-target in %q", line)
	}
	elseBlk, ok := blocks[strings.TrimSpace(targets[1])]
	if !ok {
		return fmt.Errorf("unknown branch else-target in %q", line)
	}
	inst := &ir.Instruction{ID: nextID(), StatementType: ir.StmtCondBranch, Op1: cond, IfBlock: ifBlk, ElseBlock: elseBlk, IsBranchEnding: true}
	ir.AddStatement(blk, inst)
	ir.AddSuccessor(blk, ifBlk)
	ir.AddSuccessor(blk, elseBlk)
	ir.AddUsedVariable(blk, cond)
	blk.BlockTerminalType = ir.TerminalBranch
	return nil
}

func parseStore(vars map[string]*ir.Variable, blk *ir.BasicBlock, line string, nextID func() int) error {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "store "))
	parts := strings.SplitN(rest, ",", 2)
	if len(parts) != 2 {
		return fmt.Errorf("malformed store %q, expected `store <addr>, <val>`", line)
	}
	addr, err := resolveVariable(vars, strings.TrimSpace(parts[0]))
	if err != nil {
		return err
	}
	val, err := resolveVariable(vars, strings.TrimSpace(parts[1]))
	if err != nil {
		return err
	}
	ir.AddStatement(blk, &ir.Instruction{ID: nextID(), StatementType: ir.StmtStore, Op1: addr, Op2: val})
	ir.AddUsedVariable(blk, addr)
	ir.AddUsedVariable(blk, val)
	return nil
}

func parseAssignment(cfg *ir.ControlFlowGraph, vars map[string]*ir.Variable, blk *ir.BasicBlock, line string, nextID func() int) error {
	parts := strings.SplitN(line, "<-", 2)
	assignee, err := resolveVariable(vars, strings.TrimSpace(parts[0]))
	if err != nil {
		return err
	}
	rhs := strings.TrimSpace(parts[1])

	switch {
	case rhs == "const" || strings.HasPrefix(rhs, "const "):
		literal := strings.TrimSpace(strings.TrimPrefix(rhs, "const"))
		var c *ir.LocalConstant
		if literal == "" {
			c = cfg.Constants.InternString("")
		} else if n, err := strconv.ParseFloat(literal, 64); err == nil {
			c = cfg.Constants.InternF64(math.Float64bits(n))
		} else {
			c = cfg.Constants.InternString(strings.Trim(literal, `"`))
		}
		ir.AddStatement(blk, &ir.Instruction{ID: nextID(), StatementType: ir.StmtAssnConst, Assignee: assignee, Const: c})
		ir.AddAssignedVariable(blk, assignee)
		return nil

	case strings.HasPrefix(rhs, "call "):
		return parseCall(vars, blk, assignee, rhs, nextID)

	default:
		return parseBinary(vars, blk, assignee, rhs, nextID)
	}
}

func parseCall(vars map[string]*ir.Variable, blk *ir.BasicBlock, assignee *ir.Variable, rhs string, nextID func() int) error {
	rest := strings.TrimSpace(strings.TrimPrefix(rhs, "call "))
	open := strings.IndexByte(rest, '(')
	if open < 0 || !strings.HasSuffix(rest, ")") {
		return fmt.Errorf("malformed call %q, expected `call <callee>(<args>)`", rhs)
	}
	callee := strings.TrimSpace(rest[:open])
	argList := strings.TrimSpace(rest[open+1 : len(rest)-1])

	var args []*ir.Variable
	if argList != "" {
		for _, a := range strings.Split(argList, ",") {
			v, err := resolveVariable(vars, strings.TrimSpace(a))
			if err != nil {
				return err
			}
			args = append(args, v)
			ir.AddUsedVariable(blk, v)
		}
	}
	ir.AddStatement(blk, &ir.Instruction{ID: nextID(), StatementType: ir.StmtFuncCall, Assignee: assignee, CalleeName: callee, Parameters: args})
	ir.AddAssignedVariable(blk, assignee)
	return nil
}

var binaryOperators = []struct {
	text string
	op   ir.Operator
}{
	// Longer tokens first so `<=` isn't mis-split as `<`.
	{"==", ir.OpEq}, {"!=", ir.OpNeq}, {"<=", ir.OpLe}, {">=", ir.OpGe},
	{"&&", ir.OpDoubleAnd}, {"||", ir.OpDoubleOr},
	{"+", ir.OpAdd}, {"-", ir.OpSub}, {"*", ir.OpMul}, {"/", ir.OpDiv}, {"%", ir.OpMod},
	{"<", ir.OpLt}, {">", ir.OpGt},
}

func parseBinary(vars map[string]*ir.Variable, blk *ir.BasicBlock, assignee *ir.Variable, rhs string, nextID func() int) error {
	for _, cand := range binaryOperators {
		idx := strings.Index(rhs, " "+cand.text+" ")
		if idx < 0 {
			continue
		}
		op1, err := resolveVariable(vars, strings.TrimSpace(rhs[:idx]))
		if err != nil {
			return err
		}
		op2, err := resolveVariable(vars, strings.TrimSpace(rhs[idx+len(cand.text)+2:]))
		if err != nil {
			return err
		}
		ir.AddStatement(blk, &ir.Instruction{ID: nextID(), StatementType: ir.StmtAssn, Assignee: assignee, Op1: op1, Op2: op2, Operator: cand.op})
		ir.AddAssignedVariable(blk, assignee)
		ir.AddUsedVariable(blk, op1)
		ir.AddUsedVariable(blk, op2)
		return nil
	}
	return fmt.Errorf("unrecognized right-hand side %q", rhs)
}

// resolveVariable interns var identity by textual spelling within a single
// function: repeated mentions of the same spelling resolve to the same
// *Variable, the way repeated mentions of the same SSA name should.
func resolveVariable(vars map[string]*ir.Variable, text string) (*ir.Variable, error) {
	if text == "" {
		return nil, fmt.Errorf("expected a variable, found nothing")
	}
	if v, ok := vars[text]; ok {
		return v, nil
	}
	v, err := parseVariable(text)
	if err != nil {
		return nil, err
	}
	vars[text] = v
	return v, nil
}

func parseVariable(text string) (*ir.Variable, error) {
	if strings.HasPrefix(text, "t") {
		if n, err := strconv.Atoi(text[1:]); err == nil {
			return &ir.Variable{Kind: ir.VarTemp, TempVarNumber: n}, nil
		}
	}
	name, genText, hasGen := strings.Cut(text, ".")
	gen := 0
	if hasGen {
		n, err := strconv.Atoi(genText)
		if err != nil {
			return nil, fmt.Errorf("invalid SSA generation in variable %q", text)
		}
		gen = n
	}
	return &ir.Variable{Kind: ir.VarNamed, LinkedVar: name, SSAGeneration: gen}, nil
}
