// Command ollie-opt reads a small textual CFG fixture, runs the optimizer
// pipeline over it, and prints the before/after CFG.
package main

import (
	"flag"
	"fmt"
	"os"

	"ollie/internal/diagnostics"
	"ollie/internal/domtree"
	"ollie/internal/fixture"
	"ollie/internal/ir"
	"ollie/internal/optimizer"
)

func main() {
	verify := flag.Bool("verify", false, "check that every instruction Mark kept before Sweep still has a surviving equivalent after it")
	verbose := flag.Bool("v", false, "print each pipeline pass as it runs")
	shortCircuit := flag.Bool("short-circuit", false, "enable the experimental short-circuit rewrite pass")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: ollie-opt [flags] <fixture-file>")
		os.Exit(1)
	}

	path := flag.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ollie-opt: %v\n", err)
		os.Exit(1)
	}

	if *verify {
		if err := runVerify(string(src)); err != nil {
			fmt.Fprintf(os.Stderr, "ollie-opt: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := fixture.Parse(string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ollie-opt: %v\n", err)
		os.Exit(1)
	}
	domtree.CalculateAllControlRelations(cfg, true)

	fmt.Println("-- before --")
	fmt.Print(ir.Print(cfg))

	log := &diagnostics.Log{}
	p := optimizer.NewPipeline()
	p.Verbose = *verbose
	p.ShortCircuit = *shortCircuit
	p.Diagnostics = log
	p.Run(cfg)

	fmt.Println("-- after --")
	fmt.Print(ir.Print(cfg))

	if len(log.Diagnostics) > 0 {
		fmt.Println("-- diagnostics --")
		fmt.Print(diagnostics.Format(log))
	}
}

// runVerify re-parses src into a CFG of its own and checks Sweep's central
// invariant directly: every instruction Mark left with Mark == true must
// still be linked into its block once Sweep has run. It runs against a
// separate parse (rather than the CFG the rest of main optimizes) so the
// dominance relations it depends on are never made stale by Clean or the
// later passes, which are free to delete a marked instruction as part of a
// valid rewrite (branch_reduce's R1, for one).
func runVerify(src string) error {
	cfg, err := fixture.Parse(src)
	if err != nil {
		return err
	}
	domtree.CalculateAllControlRelations(cfg, true)

	optimizer.Mark(cfg)

	type witness struct {
		inst       *ir.Instruction
		funcName   string
		blockLabel string
	}
	var marked []witness
	for _, b := range cfg.CreatedBlocks {
		for _, inst := range b.Instructions() {
			if inst.Mark {
				marked = append(marked, witness{inst: inst, funcName: functionName(b), blockLabel: b.Label})
			}
		}
	}

	optimizer.Sweep(cfg)

	log := &diagnostics.Log{}
	for _, w := range marked {
		if w.inst.Block == nil {
			log.Add(diagnostics.Diagnostic{
				Level:   diagnostics.Error,
				Code:    diagnostics.CodeLostMarkedInstruction,
				Message: fmt.Sprintf("marked instruction %q did not survive Sweep", w.inst),
				Location: diagnostics.Location{
					Function:      w.funcName,
					Block:         w.blockLabel,
					InstructionID: w.inst.ID,
				},
			})
		}
	}
	if log.HasErrors() {
		fmt.Print(diagnostics.Format(log))
		return fmt.Errorf("%d marked instruction(s) lost", len(log.Diagnostics))
	}
	fmt.Printf("verify: %d marked instruction(s) all survived Sweep\n", len(marked))
	return nil
}

func functionName(b *ir.BasicBlock) string {
	if b.FunctionDefinedIn == nil {
		return ""
	}
	return b.FunctionDefinedIn.Name
}
