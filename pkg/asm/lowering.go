package asm

import (
	"fmt"

	"github.com/samjoash9/baiscript/pkg/symtab"
	"github.com/samjoash9/baiscript/pkg/tac"
)

// Generator lowers one optimized tac.Listing to a complete assembly Listing
// for a single compilation run. Create a fresh Generator (or call Generate
// again, which resets internal state) per run.
type Generator struct {
	symbols *symtab.Table
	bank    *regBank
}

// New returns a Generator that emits one `.data` word for every entry
// currently in symbols.
func New(symbols *symtab.Table) *Generator {
	return &Generator{symbols: symbols, bank: newRegBank()}
}

// Generate lowers listing to a full `.data`/`.code` assembly Listing.
func (g *Generator) Generate(listing tac.Listing) Listing {
	g.bank.reset()

	out := Listing{".data"}
	for _, e := range g.symbols.Entries() {
		out = append(out, fmt.Sprintf("%s: .word64 0", e.Name))
	}
	out = append(out, ".code")

	for _, inst := range listing {
		out = append(out, fmt.Sprintf("// %s", inst.String()))
		out = append(out, g.lower(inst)...)
	}
	return out
}

func (g *Generator) lower(inst tac.Instruction) []string {
	switch inst.Op {
	case tac.OpAssign:
		return g.lowerCopy(inst)
	case tac.OpAdd:
		return g.lowerBinary(inst, "daddu")
	case tac.OpSub:
		return g.lowerBinary(inst, "dsub")
	case tac.OpMul:
		return g.lowerMulDiv(inst, "dmult")
	case tac.OpDiv:
		return g.lowerMulDiv(inst, "ddiv")
	default:
		return nil
	}
}

// loadOperand materializes op into a register, emitting the load instruction
// needed (if any) and appending it to code. Returns the register index.
func (g *Generator) loadOperand(op tac.Operand, code *[]string) int {
	switch op.Kind {
	case tac.OperandConst:
		r := g.bank.acquire()
		*code = append(*code, fmt.Sprintf("daddiu %s, r0, %d", g.bank.name(r), op.Const))
		return r
	case tac.OperandVar:
		r := g.bank.acquire()
		*code = append(*code, fmt.Sprintf("ld %s, %s(r0)", g.bank.name(r), op.Name))
		return r
	case tac.OperandTemp:
		if r, ok := g.bank.residentReg(op.Name); ok {
			return r
		}
		// A temp read before its defining instruction never happens given the
		// single-assignment/optimizer invariants upstream; fall back to a
		// freshly zeroed register so lowering stays total regardless.
		r := g.bank.acquire()
		*code = append(*code, fmt.Sprintf("daddiu %s, r0, 0", g.bank.name(r)))
		return r
	default:
		return g.bank.acquire()
	}
}

// releaseOperand frees reg after use, unless it backs a resident temp that
// later instructions may still read.
func (g *Generator) releaseOperand(reg int, op tac.Operand) {
	if op.Kind != tac.OperandTemp {
		g.bank.release(reg)
	}
}

// storeResult writes reg to result: a store-to-memory for a named variable
// (which also flushes every resident temp, ending the statement), or a plain
// residency update for a temporary.
func (g *Generator) storeResult(result tac.Operand, reg int, code *[]string) {
	switch result.Kind {
	case tac.OperandVar:
		*code = append(*code, fmt.Sprintf("sd %s, %s(r0)", g.bank.name(reg), result.Name))
		g.bank.release(reg)
		g.bank.flushResident()
	case tac.OperandTemp:
		g.bank.holdTemp(result.Name, reg)
	}
}

// lowerCopy handles `result = arg1` (declaration initializers, plain
// assignments, and the postfix snapshot `tN = x`). A copy into a
// temp needs no instruction beyond whatever loaded arg1 — the destination
// temp simply aliases arg1's register. A copy into a variable always needs
// an explicit store.
func (g *Generator) lowerCopy(inst tac.Instruction) []string {
	var code []string
	src := g.loadOperand(inst.Arg1, &code)
	if inst.Result.Kind == tac.OperandTemp {
		g.bank.holdTemp(inst.Result.Name, src)
		return code
	}
	g.storeResult(inst.Result, src, &code)
	return code
}

func (g *Generator) lowerBinary(inst tac.Instruction, mnemonic string) []string {
	var code []string
	rs := g.loadOperand(inst.Arg1, &code)
	rt := g.loadOperand(inst.Arg2, &code)
	rd := g.bank.acquire()
	code = append(code, fmt.Sprintf("%s %s, %s, %s", mnemonic, g.bank.name(rd), g.bank.name(rs), g.bank.name(rt)))
	g.releaseOperand(rs, inst.Arg1)
	g.releaseOperand(rt, inst.Arg2)
	g.storeResult(inst.Result, rd, &code)
	return code
}

func (g *Generator) lowerMulDiv(inst tac.Instruction, mnemonic string) []string {
	var code []string
	rs := g.loadOperand(inst.Arg1, &code)
	rt := g.loadOperand(inst.Arg2, &code)
	code = append(code, fmt.Sprintf("%s %s, %s", mnemonic, g.bank.name(rs), g.bank.name(rt)))
	rd := g.bank.acquire()
	code = append(code, fmt.Sprintf("mflo %s", g.bank.name(rd)))
	g.releaseOperand(rs, inst.Arg1)
	g.releaseOperand(rt, inst.Arg2)
	g.storeResult(inst.Result, rd, &code)
	return code
}
