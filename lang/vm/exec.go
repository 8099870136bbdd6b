package vm

import (
	"errors"
	"fmt"

	"github.com/mna/ink/lang/compiler"
	"github.com/mna/ink/lang/value"
)

// ErrStackOverflow is returned (wrapped) when a call would exceed
// maxCallStackDepth, so callers can distinguish runaway recursion from
// other runtime errors and map it to its own exit code.
var ErrStackOverflow = errors.New("call stack depth exceeded")

// call invokes fn (a closure or native function) with the given positional
// arguments and returns its result.
func (th *Thread) call(fn value.Value, args []value.Value) (value.Value, error) {
	switch fn := fn.(type) {
	case *value.Func:
		return th.callFunc(fn, args)
	case *value.NativeFunc:
		return fn.Fn(args)
	default:
		return nil, fmt.Errorf("cannot call a value of type %s", fn.Kind())
	}
}

func (th *Thread) callFunc(fn *value.Func, args []value.Value) (value.Value, error) {
	if len(th.stack) >= maxCallStackDepth {
		return nil, fmt.Errorf("%w: %d", ErrStackOverflow, maxCallStackDepth)
	}
	if fn.BlockIndex < 0 || fn.BlockIndex >= len(th.prog.Blocks) {
		return nil, fmt.Errorf("internal error: invalid block index %d", fn.BlockIndex)
	}
	block := th.prog.Blocks[fn.BlockIndex]

	fr := &frame{block: block, blockIdx: fn.BlockIndex, regs: make([]value.Value, block.Slots)}
	for i := range fr.regs {
		fr.regs[i] = value.Empty
	}
	for i, a := range args {
		if i >= len(fr.regs) {
			break
		}
		fr.regs[i] = a
	}

	th.stack = append(th.stack, fr)
	defer func() { th.stack = th.stack[:len(th.stack)-1] }()

	if err := th.run(fn, fr); err != nil {
		return nil, err
	}
	// block.Result may itself be a capture proxy holding an Escaped
	// indirection (e.g. a closure whose body is just the captured name
	// itself); dereference it here so a heap wrapper never leaks out of the
	// frame that owns it.
	return th.load(fr, block.Result), nil
}

// run executes fr's block to completion, resolving LOAD_ESC against fn's
// captured values.
func (th *Thread) run(fn *value.Func, fr *frame) error {
	code := fr.block.Code
	for fr.pc < len(code) {
		if th.cancelled.Load() {
			return fmt.Errorf("thread cancelled")
		}
		th.steps++
		if th.steps > th.maxSteps {
			return fmt.Errorf("exceeded max steps")
		}

		in := code[fr.pc]
		skip, err := th.exec(fn, fr, in)
		if err != nil {
			return fmt.Errorf("%s: %w", in.Pos, err)
		}
		fr.pc += 1 + skip
	}
	return nil
}

// exec runs a single instruction and returns the number of extra
// instructions to skip (used by CALL_IF_EQ after a successful match, to
// bypass the remaining clauses).
func (th *Thread) exec(fn *value.Func, fr *frame, in compiler.Instr) (int, error) {
	switch in.Op {
	case compiler.NOP:
		return 0, nil

	case compiler.MOV:
		th.store(fr, in.Dest, th.load(fr, in.X))
		return 0, nil

	case compiler.ESCAPE:
		v := fr.regs[in.X]
		if _, already := v.(value.Escaped); already {
			return 0, nil
		}
		slot := len(th.heap)
		th.heap = append(th.heap, v)
		fr.regs[in.X] = value.Escaped{Slot: slot}
		return 0, nil

	case compiler.LOAD_CONST:
		v, err := th.materializeConst(fn, fr, in.Arg)
		if err != nil {
			return 0, err
		}
		fr.regs[in.Dest] = v
		return 0, nil

	case compiler.LOAD_ESC:
		if in.Arg < 0 || in.Arg >= len(fn.Captured) {
			return 0, fmt.Errorf("internal error: invalid capture index %d", in.Arg)
		}
		fr.regs[in.Dest] = fn.Captured[in.Arg]
		return 0, nil

	case compiler.CALL:
		callee := th.load(fr, in.X)
		args := make([]value.Value, len(in.ArgRegs))
		for i, r := range in.ArgRegs {
			args[i] = th.load(fr, r)
		}
		result, err := th.call(callee, args)
		if err != nil {
			return 0, err
		}
		fr.regs[in.Dest] = result
		return 0, nil

	case compiler.CALL_IF_EQ:
		x, y := th.load(fr, in.X), th.load(fr, in.Y)
		eq, err := valuesEqual(x, y)
		if err != nil {
			return 0, err
		}
		if !eq {
			return 0, nil
		}
		callee := th.load(fr, in.Z)
		result, err := th.call(callee, nil)
		if err != nil {
			return 0, err
		}
		fr.regs[in.Dest] = result
		return in.Arg, nil

	case compiler.MAKE_COMP:
		fr.regs[in.Dest] = value.NewComp(in.Arg)
		return 0, nil

	case compiler.SET_COMP:
		return 0, th.setComp(fr, in)

	case compiler.GET_COMP:
		v, err := th.getComp(fr, in)
		if err != nil {
			return 0, err
		}
		fr.regs[in.Dest] = v
		return 0, nil

	case compiler.NEG:
		switch v := th.load(fr, in.X).(type) {
		case value.Number:
			fr.regs[in.Dest] = -v
		case value.Bool:
			fr.regs[in.Dest] = !v
		default:
			return 0, fmt.Errorf("invalid operand of type %s: negation is only defined for numbers and booleans", v.Kind())
		}
		return 0, nil

	case compiler.ADD, compiler.SUB, compiler.MUL, compiler.DIV, compiler.MOD,
		compiler.AND, compiler.OR, compiler.XOR:
		v, err := arith(in.Op, th.load(fr, in.X), th.load(fr, in.Y))
		if err != nil {
			return 0, err
		}
		fr.regs[in.Dest] = v
		return 0, nil

	case compiler.GTR, compiler.LSS:
		v, err := compare(in.Op, th.load(fr, in.X), th.load(fr, in.Y))
		if err != nil {
			return 0, err
		}
		fr.regs[in.Dest] = v
		return 0, nil

	case compiler.EQL:
		eq, err := valuesEqual(th.load(fr, in.X), th.load(fr, in.Y))
		if err != nil {
			return 0, err
		}
		fr.regs[in.Dest] = value.Bool(eq)
		return 0, nil

	default:
		return 0, fmt.Errorf("internal error: unimplemented opcode %s", in.Op)
	}
}

// load reads register reg, transparently dereferencing a heap indirection.
// It never returns an Escaped value: that wrapper is only ever meaningful
// sitting inside a register or a Func.Captured slice.
func (th *Thread) load(fr *frame, reg compiler.Reg) value.Value {
	v := fr.regs[reg]
	if esc, ok := v.(value.Escaped); ok {
		return th.heap[esc.Slot]
	}
	return v
}

// store writes v into register reg, writing through to the heap slot
// instead of overwriting the register when it already holds an Escaped
// indirection - this is what keeps a captured variable's defining scope
// and its closures observing the same mutable storage.
func (th *Thread) store(fr *frame, reg compiler.Reg, v value.Value) {
	if esc, ok := fr.regs[reg].(value.Escaped); ok {
		th.heap[esc.Slot] = v
		return
	}
	fr.regs[reg] = v
}

// materializeConst resolves a constant-pool entry: a ConstValue is used
// as-is (cloning string constants so repeated evaluations - e.g. inside a
// recursive call - never alias the same backing bytes), a FuncTemplate
// becomes a fresh closure by copying the registers named in the target
// block's Binds, raw (without dereferencing any Escaped wrapper they
// carry).
func (th *Thread) materializeConst(fn *value.Func, fr *frame, idx int) (value.Value, error) {
	if idx < 0 || idx >= len(fr.block.Consts) {
		return nil, fmt.Errorf("internal error: invalid constant index %d", idx)
	}
	switch c := fr.block.Consts[idx].(type) {
	case compiler.ConstValue:
		if s, ok := c.V.(*value.Str); ok {
			return value.NewStr(s.String()), nil
		}
		return c.V, nil
	case compiler.FuncTemplate:
		target := th.prog.Blocks[c.BlockIndex]
		captured := make([]value.Value, len(target.Binds))
		for i, srcReg := range target.Binds {
			captured[i] = fr.regs[srcReg] // raw copy: may itself be Escaped
		}
		return &value.Func{BlockIndex: c.BlockIndex, Captured: captured}, nil
	default:
		return nil, fmt.Errorf("internal error: unknown constant type %T", c)
	}
}
