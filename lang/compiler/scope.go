package compiler

import "github.com/mna/ink/lang/value"

// Universe holds the predeclared built-in functions (out, char, string,
// len) available to every program without needing a binding. Package
// builtin populates this at init time; the REPL also records each line's
// top-level `name := expr` result here so later lines can refer to it.
var Universe map[string]value.Value

// blockScope is the compile-time record of one open Block: the register
// assigned to each name declared directly in it, the registers it has
// already captured from an ancestor (so repeated references share one
// LOAD_ESC rather than emitting it again), and which of its own registers
// have already been promoted to the heap via ESCAPE.
//
// Ink has no nested blocks below a function literal - an expression list
// used for grouping or sequencing shares its enclosing Block's register
// space - so a blockScope's lifetime exactly matches one Block's
// compilation, mirroring the Go call stack of the recursive compiler as it
// walks the parent chain, generalized here from stack slots to registers
// plus heap indices.
type blockScope struct {
	block  *Block
	index  int
	parent *blockScope

	locals   map[string]Reg // names bound directly in this block
	captures map[string]Reg // names resolved from an ancestor, proxied via LOAD_ESC
	escaped  map[Reg]bool   // this block's own registers already ESCAPEd
	next     Reg
}

func newBlockScope(block *Block, index int, parent *blockScope) *blockScope {
	return &blockScope{
		block:    block,
		index:    index,
		parent:   parent,
		locals:   make(map[string]Reg),
		captures: make(map[string]Reg),
		escaped:  make(map[Reg]bool),
	}
}

func (bs *blockScope) allocReg() Reg {
	r := bs.next
	bs.next++
	if int(bs.next) > bs.block.Slots {
		bs.block.Slots = int(bs.next)
	}
	return r
}

func (bs *blockScope) emit(in Instr) int {
	bs.block.Code = append(bs.block.Code, in)
	return len(bs.block.Code) - 1
}

func (bs *blockScope) addConst(c Const) int {
	bs.block.Consts = append(bs.block.Consts, c)
	return len(bs.block.Consts) - 1
}

// ensureEscaped emits an ESCAPE instruction for reg, a register that bs
// itself declared (never a capture proxy - those already carry whatever
// indirection their source had, raw, and must not be escaped again), the
// first time any descendant block needs to capture it. Repeat captures of
// the same register are idempotent.
func (bs *blockScope) ensureEscaped(reg Reg) {
	if bs.escaped[reg] {
		return
	}
	bs.escaped[reg] = true
	bs.emit(Instr{Op: ESCAPE, X: reg})
}

// resolve finds the register within bs's own frame that holds name's
// current value, recursing into ancestor blocks and wiring up the capture
// chain (ESCAPE in the defining block, a LOAD_ESC-backed proxy register in
// every block between the definition and bs) the first time a name crosses
// a block boundary. It returns ok=false if name is not declared anywhere
// in the enclosing chain.
func resolve(bs *blockScope, name string) (reg Reg, ok bool) {
	reg, _, ok = resolveOwn(bs, name)
	return reg, ok
}

// resolveOwn is like resolve but also reports whether the register it
// found is a genuine local of bs (as opposed to one of bs's own capture
// proxies), which resolve needs to decide whether an ESCAPE is required.
func resolveOwn(bs *blockScope, name string) (reg Reg, isOwnLocal, ok bool) {
	if r, found := bs.locals[name]; found {
		return r, true, true
	}
	if r, found := bs.captures[name]; found {
		return r, false, true
	}
	if bs.parent == nil {
		return 0, false, false
	}

	parentReg, parentIsOwn, found := resolveOwn(bs.parent, name)
	if !found {
		return 0, false, false
	}
	if parentIsOwn {
		bs.parent.ensureEscaped(parentReg)
	}

	bindIdx := len(bs.block.Binds)
	bs.block.Binds = append(bs.block.Binds, parentReg)

	reg = bs.allocReg()
	bs.emit(Instr{Op: LOAD_ESC, Dest: reg, Arg: bindIdx})
	bs.captures[name] = reg
	return reg, false, true
}
