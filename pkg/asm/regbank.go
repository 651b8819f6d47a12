package asm

import (
	"fmt"

	"github.com/samjoash9/baiscript/pkg/utils"
)

// regBank tracks which of the 16 general-purpose registers are free and
// which hold a live TAC temporary. The free list is a LIFO stack (most
// recently released register is handed out next), which keeps register
// numbers low and the emitted listing deterministic across runs.
type regBank struct {
	regs     [registerCount]register
	free     utils.Stack[int]
	resident map[string]int // TAC temp name -> register index, survives across instructions
}

func newRegBank() *regBank {
	rb := &regBank{resident: make(map[string]int)}
	rb.reset()
	return rb
}

func (rb *regBank) reset() {
	rb.free = utils.NewStack[int]()
	for i := registerCount - 1; i >= 0; i-- {
		rb.regs[i] = register{name: fmt.Sprintf("r%d", i+1)}
		rb.free.Push(i)
	}
	for name := range rb.resident {
		delete(rb.resident, name)
	}
}

func (rb *regBank) name(idx int) string { return rb.regs[idx].name }

// acquire hands out a free register. If the bank is exhausted it releases
// every resident temporary first — BaiScript has no control flow, so a
// statement never needs more live temporaries at once than the bank holds,
// but the fallback keeps lowering total instead of panicking on pathological
// input.
func (rb *regBank) acquire() int {
	if rb.free.Count() == 0 {
		rb.flushResident()
	}
	idx, err := rb.free.Pop()
	if err != nil {
		return 0
	}
	return idx
}

func (rb *regBank) release(idx int) {
	rb.free.Push(idx)
}

// holdTemp marks idx as the register backing the TAC temporary named name,
// keeping it resident across later instructions until flushed.
func (rb *regBank) holdTemp(name string, idx int) {
	rb.resident[name] = idx
}

// residentReg returns the register currently holding temp name, if any.
func (rb *regBank) residentReg(name string) (int, bool) {
	idx, ok := rb.resident[name]
	return idx, ok
}

// flushResident releases every register currently held by a resident
// temporary. Called at statement boundaries (a store to a named variable),
// since nothing outside the statement's own TAC can reference its temps —
// the peephole optimizer already dropped any temp with zero later uses.
func (rb *regBank) flushResident() {
	for name, idx := range rb.resident {
		rb.release(idx)
		delete(rb.resident, name)
	}
}
