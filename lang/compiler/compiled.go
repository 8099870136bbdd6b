package compiler

import (
	"fmt"
	"strings"

	"github.com/mna/ink/lang/token"
	"github.com/mna/ink/lang/value"
)

// Reg identifies a register slot within a Block's frame.
type Reg int

// Instr is a single register-machine instruction.
type Instr struct {
	Op   Opcode
	Pos  token.Pos
	Dest Reg

	// X, Y, Z are operand registers; their meaning depends on Op. Unused
	// operands are left at their zero value.
	X, Y, Z Reg

	// Arg is LOAD_CONST's/LOAD_ESC's table index, MAKE_COMP's capacity hint,
	// or the number of instructions CALL_IF_EQ skips after a match.
	Arg int

	// ArgRegs holds the argument registers of a CALL or CALL_IF_EQ.
	ArgRegs []Reg
}

// Block is a single compiled function body - Ink's only scope-introducing
// construct, so a Block corresponds exactly to a source-level lexical scope
// (the top-level program is Block 0, every function literal and match
// clause body compiles to its own Block).
type Block struct {
	Name string // for disassembly/tracing, derived from its binding name if any
	Pos  token.Pos

	Code   []Instr
	Consts []Const // constant pool: numbers, strings, booleans, and Func templates

	Slots int // number of registers this block's frame must allocate

	// Binds lists, for each index a LOAD_ESC instruction inside this block
	// may reference, the register in the *parent* frame that must be copied
	// into this block's Func.Captured when a closure over it is created via
	// LOAD_CONST. Empty for the top-level program block.
	Binds []Reg

	// Parent is the index into Program.Blocks of the block this one is
	// lexically nested inside, or -1 for the top-level program block.
	Parent int

	// Result is the register holding this block's value once Code has run to
	// completion, set by the compiler rather than inferred from the last
	// instruction's destination.
	Result Reg
}

// Const is the compile-time representation of a constant pool entry; it is
// either a ConstValue (number, string, bool) or a FuncTemplate describing a
// not-yet-materialized closure.
type Const interface {
	isConst()
}

// ConstValue wraps a concrete runtime value living in a Block's constant
// pool.
type ConstValue struct {
	V value.Value
}

func (ConstValue) isConst() {}

// FuncTemplate is a compile-time constant referring to a Block that, once
// loaded via LOAD_CONST, materializes into a value.Func by copying the
// registers named in the target Block's Binds.
type FuncTemplate struct {
	BlockIndex int
}

func (FuncTemplate) isConst() {}

// Program is the result of compiling a source file: every Block that was
// compiled, in the order they were created. Block 0 is always the top-level
// program block.
type Program struct {
	Blocks []*Block
}

// Disassemble returns a human-readable rendering of every block in p, the
// format printed by the --debug-compile CLI flag.
func (p *Program) Disassemble() string {
	var sb strings.Builder
	for i, b := range p.Blocks {
		b.disassemble(&sb, i)
	}
	return sb.String()
}

// AnalysisTrace summarizes the escape analysis performed while compiling p:
// for each block, which parent register it captures and at what index, and
// which of its own registers were promoted to the heap via ESCAPE. This is
// the same information Disassemble embeds in the instruction stream, pulled
// out on its own for the --debug-analyze CLI flag.
func (p *Program) AnalysisTrace() string {
	var sb strings.Builder
	for i, b := range p.Blocks {
		name := b.Name
		if name == "" {
			name = fmt.Sprintf("block%d", i)
		}
		fmt.Fprintf(&sb, "block %d: %s parent=%d\n", i, name, b.Parent)

		for idx, reg := range b.Binds {
			fmt.Fprintf(&sb, "  binds[%d] <- parent r%d\n", idx, reg)
		}
		for _, in := range b.Code {
			if in.Op == ESCAPE {
				fmt.Fprintf(&sb, "  escapes r%d\n", in.X)
			}
		}
	}
	return sb.String()
}
