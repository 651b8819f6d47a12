package mcode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// startDataAddress and addressStep define the `.data` addressing scheme:
// the first label seen gets 0xFFF8, each subsequent label 8 bytes lower.
const (
	startDataAddress uint64 = 0xFFF8
	addressStep      uint64 = 8
)

var dataLabelPattern = regexp.MustCompile(`^(\w+):\s*\.word64\s+0\s*$`)
var memOperandPattern = regexp.MustCompile(`^(.+)\((r\d+)\)$`)

// Encoder resolves `.data` label addresses and encodes `.code` instructions
// to 32-bit MIPS64-subset machine words. One Encoder handles one assembly
// listing; create a fresh one (or call Encode again) per compilation run.
type Encoder struct {
	labels map[string]uint64
}

// New returns a ready-to-use Encoder.
func New() *Encoder {
	return &Encoder{}
}

// Encode walks asmLines once: the pre-pass assigns addresses to every
// `.data` label, then every `.code` line (skipping TAC comments) is parsed
// and encoded. A malformed instruction or an operand that resolves to
// neither an integer nor a known data label is a fatal encoding error.
func (e *Encoder) Encode(asmLines []string) (Listing, error) {
	e.labels = make(map[string]uint64)

	addr := startDataAddress
	inCode := false
	var codeLines []string

	for _, raw := range asmLines {
		line := strings.TrimSpace(raw)
		switch {
		case line == ".data":
			continue
		case line == ".code":
			inCode = true
		case !inCode:
			if m := dataLabelPattern.FindStringSubmatch(line); m != nil {
				e.labels[m[1]] = addr
				addr -= addressStep
			}
		case line == "" || strings.HasPrefix(line, "//"):
			continue
		default:
			codeLines = append(codeLines, line)
		}
	}

	out := make(Listing, 0, len(codeLines))
	for _, line := range codeLines {
		word, err := e.encodeInstruction(line)
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", line, err)
		}
		out = append(out, Row{Source: line, Binary: toBinary32(word), Hex: toHex32(word)})
	}
	return out, nil
}

func splitMnemonic(line string) (string, []string) {
	fields := strings.SplitN(line, " ", 2)
	mnemonic := fields[0]
	if len(fields) == 1 {
		return mnemonic, nil
	}
	var operands []string
	for _, op := range strings.Split(fields[1], ",") {
		operands = append(operands, strings.TrimSpace(op))
	}
	return mnemonic, operands
}

func (e *Encoder) encodeInstruction(line string) (uint32, error) {
	mnemonic, ops := splitMnemonic(line)
	switch mnemonic {
	case "daddu":
		return e.encodeRType(ops, opDaddu)
	case "dsub":
		return e.encodeRType(ops, opDsub)
	case "dmult":
		return e.encodeTwoSource(ops, opDmult)
	case "ddiv":
		return e.encodeTwoSource(ops, opDdiv)
	case "mflo":
		return e.encodeOneDest(ops, opMflo)
	case "daddiu":
		return e.encodeImmediate(ops)
	case "ld":
		return e.encodeMemOp(ops, opLd)
	case "sd":
		return e.encodeMemOp(ops, opSd)
	default:
		return 0, fmt.Errorf("unknown mnemonic %q", mnemonic)
	}
}

func reg(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != 'r' {
		return 0, fmt.Errorf("not a register: %q", s)
	}
	n, err := strconv.ParseUint(s[1:], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid register %q: %w", s, err)
	}
	return uint32(n), nil
}

// encodeRType handles the "rd, rs, rt" operand order used by daddu/dsub.
// Layout: opcode(6)=0 | rs(5) | rt(5) | rd(5) | shamt(5)=0 | funct(6).
func (e *Encoder) encodeRType(ops []string, funct uint32) (uint32, error) {
	if len(ops) != 3 {
		return 0, fmt.Errorf("expected 3 operands, got %d", len(ops))
	}
	rd, err := reg(ops[0])
	if err != nil {
		return 0, err
	}
	rs, err := reg(ops[1])
	if err != nil {
		return 0, err
	}
	rt, err := reg(ops[2])
	if err != nil {
		return 0, err
	}
	return rs<<21 | rt<<16 | rd<<11 | funct, nil
}

// encodeTwoSource handles dmult/ddiv: two source registers, result goes to
// the hi/lo pair and is read back out with a following mflo.
func (e *Encoder) encodeTwoSource(ops []string, funct uint32) (uint32, error) {
	if len(ops) != 2 {
		return 0, fmt.Errorf("expected 2 operands, got %d", len(ops))
	}
	rs, err := reg(ops[0])
	if err != nil {
		return 0, err
	}
	rt, err := reg(ops[1])
	if err != nil {
		return 0, err
	}
	return rs<<21 | rt<<16 | funct, nil
}

// encodeOneDest handles mflo: a single destination register in rd.
func (e *Encoder) encodeOneDest(ops []string, funct uint32) (uint32, error) {
	if len(ops) != 1 {
		return 0, fmt.Errorf("expected 1 operand, got %d", len(ops))
	}
	rd, err := reg(ops[0])
	if err != nil {
		return 0, err
	}
	return rd<<11 | funct, nil
}

// encodeImmediate handles "daddiu rt, rs, imm". Layout: opcode(6) | rs(5) |
// rt(5) | imm(16).
func (e *Encoder) encodeImmediate(ops []string) (uint32, error) {
	if len(ops) != 3 {
		return 0, fmt.Errorf("expected 3 operands, got %d", len(ops))
	}
	rt, err := reg(ops[0])
	if err != nil {
		return 0, err
	}
	rs, err := reg(ops[1])
	if err != nil {
		return 0, err
	}
	imm, err := e.resolveImmediate(ops[2])
	if err != nil {
		return 0, err
	}
	return uint32(opDaddiu)<<26 | rs<<21 | rt<<16 | imm, nil
}

// encodeMemOp handles "ld rt, disp(base)" / "sd rt, disp(base)", where disp
// may be a numeric immediate or a `.data` label resolved via the pre-pass.
func (e *Encoder) encodeMemOp(ops []string, opcode uint32) (uint32, error) {
	if len(ops) != 2 {
		return 0, fmt.Errorf("expected 2 operands, got %d", len(ops))
	}
	rt, err := reg(ops[0])
	if err != nil {
		return 0, err
	}
	m := memOperandPattern.FindStringSubmatch(strings.TrimSpace(ops[1]))
	if m == nil {
		return 0, fmt.Errorf("malformed memory operand %q", ops[1])
	}
	base, err := reg(m[2])
	if err != nil {
		return 0, err
	}
	imm, err := e.resolveImmediate(m[1])
	if err != nil {
		return 0, err
	}
	return opcode<<26 | base<<21 | rt<<16 | imm, nil
}

// resolveImmediate parses text as a decimal integer, falling back to a
// `.data` label address; the result is masked to its 16-bit immediate field.
func (e *Encoder) resolveImmediate(text string) (uint32, error) {
	text = strings.TrimSpace(text)
	if v, err := strconv.ParseInt(text, 10, 32); err == nil {
		return uint32(v) & 0xFFFF, nil
	}
	if addr, ok := e.labels[text]; ok {
		return uint32(addr) & 0xFFFF, nil
	}
	return 0, fmt.Errorf("operand %q is neither an integer nor a known data label", text)
}
