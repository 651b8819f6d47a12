package tac

// Optimize runs the peephole temporary-elimination pass over a listing,
// repeating until no instruction changes. Three rewrites apply, each keyed on
// an instruction whose result is a temporary:
//
//   - A temporary with zero downstream reads is dead; its defining
//     instruction is dropped (TAC instructions have no side effects of their
//     own — variable writes always target a named result, never happen as a
//     by-product of computing a temp).
//
//   - A temporary defined by a plain copy (`tN = x`) and read exactly once is
//     inlined: the read site gets x directly and the copy is dropped. This is
//     restricted to OpAssign definitions on purpose: an Instruction's
//     Arg1/Arg2 slots hold one atomic Operand each, so a temporary defined by
//     an arithmetic instruction has no operand-shaped substitute to drop into
//     a use site. The copy's source must also not be written between the copy
//     and the read — the one place this package emits a copy-defined temp
//     with a real use is the postfix ++/-- lowering, which deliberately
//     snapshots a variable's value before overwriting it, and inlining across
//     that overwrite would make the read observe the new value instead of the
//     snapshot.
//
//   - A temporary defined by an arithmetic instruction whose single read is
//     the source of a plain copy (`tN = a op b` followed by `x = tN`) is
//     folded the other way: the definition is retargeted at the copy's result
//     (`x = a op b`) and the copy is dropped, provided nothing between the
//     two reads or writes the copy's result. This is what removes the
//     trailing `a = tempN` copy every assignment statement otherwise ends in.
//
// A temporary read twice — even twice within one instruction, as in
// `y = t0 + t0` — is kept as is. The pass loops to a fixpoint because a drop
// can make an earlier temporary newly dead; the rewrites only ever shrink the
// listing, so termination is immediate.
func Optimize(in Listing) Listing {
	out := make(Listing, len(in))
	copy(out, in)

	for changed := true; changed; {
		changed = false

		for i := 0; i < len(out); i++ {
			inst := out[i]
			if inst.Result.Kind != OperandTemp {
				continue
			}

			uses, useIdx := countReads(out, inst.Result, i+1)

			switch {
			case uses == 0:
				out = append(out[:i], out[i+1:]...)
				i--
				changed = true

			case uses == 1 && inst.Op == OpAssign:
				if writtenBetween(out, inst.Arg1, i+1, useIdx) {
					continue
				}
				out[useIdx] = substitute(out[useIdx], inst.Result, inst.Arg1)
				out = append(out[:i], out[i+1:]...)
				i--
				changed = true

			case uses == 1 && inst.Op != OpAssign:
				cp := out[useIdx]
				if cp.Op != OpAssign || cp.Arg1 != inst.Result {
					continue
				}
				if touchedBetween(out, cp.Result, i+1, useIdx) {
					continue
				}
				out[i].Result = cp.Result
				out = append(out[:useIdx], out[useIdx+1:]...)
				changed = true
			}
		}
	}

	return out
}

// countReads counts how many Arg1/Arg2 slots at or after start read temp, and
// returns the index of the first reading instruction (-1 when never read).
// The scan stops at a redefinition of temp: reads past it observe the new
// definition, not this one.
func countReads(listing Listing, temp Operand, start int) (int, int) {
	count, first := 0, -1
	for i := start; i < len(listing); i++ {
		inst := listing[i]
		if inst.Arg1 == temp {
			count++
			if first == -1 {
				first = i
			}
		}
		if inst.Arg2 == temp {
			count++
			if first == -1 {
				first = i
			}
		}
		if inst.Result == temp {
			break
		}
	}
	return count, first
}

// writtenBetween reports whether op is assigned to anywhere in [from, to).
// Constants are never written; the read at index to itself observes op before
// any write the instruction performs.
func writtenBetween(listing Listing, op Operand, from, to int) bool {
	if op.Kind == OperandConst {
		return false
	}
	for i := from; i < to; i++ {
		if listing[i].Result == op {
			return true
		}
	}
	return false
}

// touchedBetween reports whether op is read or written anywhere in [from, to):
// retargeting a definition at op moves op's write earlier, so any intervening
// access would observe the wrong value.
func touchedBetween(listing Listing, op Operand, from, to int) bool {
	for i := from; i < to; i++ {
		inst := listing[i]
		if inst.Result == op || inst.Arg1 == op || inst.Arg2 == op {
			return true
		}
	}
	return false
}

func substitute(inst Instruction, from, to Operand) Instruction {
	if inst.Arg1 == from {
		inst.Arg1 = to
	}
	if inst.Arg2 == from {
		inst.Arg2 = to
	}
	return inst
}
