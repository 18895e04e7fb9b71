package ir

import (
	"fmt"
	"strings"
)

// Printer pretty-prints a CFG, adapted from the teacher's contract printer:
// an indent-tracking string builder with writeLine helpers.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a new CFG printer.
func NewPrinter() *Printer {
	return &Printer{}
}

// Print returns the textual form of the whole CFG, one function at a time.
func Print(cfg *ControlFlowGraph) string {
	p := NewPrinter()
	for _, fn := range cfg.Functions {
		p.printFunction(fn)
	}
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printFunction(fn *Function) {
	p.writeLine("func %s:", fn.Name)
	p.indent++
	for _, b := range fn.Blocks {
		p.printBlock(b)
	}
	p.indent--
	p.writeLine("")
}

func (p *Printer) printBlock(b *BasicBlock) {
	tag := ""
	if b.BlockType == BlockFuncEntry {
		tag = " [entry]"
	}
	p.writeLine("%s%s:  ; preds=%s freq=%d", b.Label, tag, blockLabels(b.Predecessors), b.EstimatedExecutionFrequency)
	p.indent++
	for _, inst := range b.Instructions() {
		markTag := ""
		if inst.Mark {
			markTag = "  ; marked"
		}
		p.writeLine("%s%s", inst.String(), markTag)
	}
	p.indent--
}

func blockLabels(blocks []*BasicBlock) string {
	labels := make([]string, len(blocks))
	for i, b := range blocks {
		labels[i] = b.Label
	}
	return "[" + strings.Join(labels, ", ") + "]"
}
