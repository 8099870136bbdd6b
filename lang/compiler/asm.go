package compiler

import (
	"fmt"
	"strings"
)

// This file implements a human-readable disassembly of a compiled Program,
// the format printed by the --debug-compile CLI flag, whose substrings the
// tests check (see asm_test.go). There is no textual assembler back to a
// Program: VM tests build programs directly in Go (see vm_test.go), so only
// the write direction is needed.

func (b *Block) disassemble(sb *strings.Builder, index int) {
	name := b.Name
	if name == "" {
		name = fmt.Sprintf("block%d", index)
	}
	fmt.Fprintf(sb, "block %d: %s (slots=%d, binds=%d, parent=%d, result=r%d)\n", index, name, b.Slots, len(b.Binds), b.Parent, b.Result)

	if len(b.Consts) > 0 {
		fmt.Fprintln(sb, "  constants:")
		for i, c := range b.Consts {
			fmt.Fprintf(sb, "    %d: %s\n", i, formatConst(c))
		}
	}

	fmt.Fprintln(sb, "  code:")
	for pc, instr := range b.Code {
		fmt.Fprintf(sb, "    %4d: %s\n", pc, formatInstr(instr))
	}
}

func formatConst(c Const) string {
	switch c := c.(type) {
	case ConstValue:
		return fmt.Sprintf("%s %s", c.V.Kind(), c.V.String())
	case FuncTemplate:
		return fmt.Sprintf("func block%d", c.BlockIndex)
	default:
		return fmt.Sprintf("%T", c)
	}
}

func formatInstr(in Instr) string {
	switch in.Op {
	case NOP:
		return "nop"
	case MOV:
		return fmt.Sprintf("mov      r%d, r%d", in.Dest, in.X)
	case ESCAPE:
		return fmt.Sprintf("escape   r%d", in.X)
	case LOAD_CONST:
		return fmt.Sprintf("loadk    r%d, #%d", in.Dest, in.Arg)
	case LOAD_ESC:
		return fmt.Sprintf("loadesc  r%d, #%d", in.Dest, in.Arg)
	case CALL:
		return fmt.Sprintf("call     r%d, r%d, %s", in.Dest, in.X, formatRegs(in.ArgRegs))
	case CALL_IF_EQ:
		return fmt.Sprintf("calleq   r%d, r%d == r%d, r%d, %s, skip=%d", in.Dest, in.X, in.Y, in.Z, formatRegs(in.ArgRegs), in.Arg)
	case MAKE_COMP:
		return fmt.Sprintf("mkcomp   r%d, cap=%d", in.Dest, in.Arg)
	case SET_COMP:
		return fmt.Sprintf("setcomp  r%d[r%d] = r%d", in.X, in.Y, in.Z)
	case GET_COMP:
		return fmt.Sprintf("getcomp  r%d, r%d[r%d]", in.Dest, in.X, in.Y)
	case NEG:
		return fmt.Sprintf("neg      r%d, r%d", in.Dest, in.X)
	default:
		return fmt.Sprintf("%-8s r%d, r%d, r%d", in.Op, in.Dest, in.X, in.Y)
	}
}

func formatRegs(regs []Reg) string {
	parts := make([]string, len(regs))
	for i, r := range regs {
		parts[i] = fmt.Sprintf("r%d", r)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
