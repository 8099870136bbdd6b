// Package compiler lowers an Ink AST into the register-machine bytecode
// described by Program/Block/Instr, performing escape analysis for closures
// as it goes (see scope.go), in a single recursive pass where each lexical
// scope compiles to its own Block.
package compiler

import (
	"fmt"

	"github.com/mna/ink/lang/ast"
	"github.com/mna/ink/lang/token"
	"github.com/mna/ink/lang/value"
)

// CompileProgram compiles an entire parsed source file into a Program. The
// top-level expression list becomes Block 0.
func CompileProgram(prog *ast.Program) (*Program, error) {
	p := &Program{}
	main := &Block{Name: "main", Parent: -1, Pos: prog.EOF}
	p.Blocks = append(p.Blocks, main)
	bs := newBlockScope(main, 0, nil)

	bc := &blockCompiler{prog: p}
	result, err := bc.compileBody(bs, exprsOf(prog.List))
	if err != nil {
		return nil, err
	}
	main.Result = result
	return p, nil
}

func exprsOf(list *ast.ExprList) []ast.Expr {
	if list == nil {
		return nil
	}
	return list.Exprs
}

// blockCompiler holds the state shared across an entire compilation: the
// growing Program.Blocks table that every nested FuncExpr/MatchClause
// appends a new Block to.
type blockCompiler struct {
	prog *Program
}

// compileBody compiles a sequence of expressions directly into bs's own
// block (an expression list is not a new lexical scope in Ink - only
// function literals are), pre-declaring every name bound at this level so
// mutually recursive top-level bindings can reference each other regardless
// of source order.
func (bc *blockCompiler) compileBody(bs *blockScope, exprs []ast.Expr) (Reg, error) {
	bc.forwardDeclare(bs, exprs)

	var last Reg
	have := false
	for _, e := range exprs {
		r, err := bc.compileExpr(bs, e)
		if err != nil {
			return 0, err
		}
		last, have = r, true
	}
	if !have {
		last = bc.loadConst(bs, value.Null)
	}
	return last, nil
}

// forwardDeclare pre-allocates a register for every top-level `name := ...`
// binding in exprs before any of them is compiled, so a function literal
// appearing earlier in the list can still capture a name bound later - the
// only way two Ink functions can call each other recursively.
func (bc *blockCompiler) forwardDeclare(bs *blockScope, exprs []ast.Expr) {
	for _, e := range exprs {
		bind, ok := e.(*ast.BindExpr)
		if !ok {
			continue
		}
		ident, ok := ast.Unwrap(bind.Left).(*ast.IdentExpr)
		if !ok {
			continue
		}
		if _, exists := bs.locals[ident.Name]; exists {
			continue
		}
		bs.locals[ident.Name] = bs.allocReg()
	}
}

func (bc *blockCompiler) compileExpr(bs *blockScope, e ast.Expr) (Reg, error) {
	switch n := e.(type) {
	case *ast.NumberExpr:
		return bc.loadConst(bs, value.Number(n.Value)), nil
	case *ast.StringExpr:
		return bc.loadConst(bs, value.NewStr(n.Value)), nil
	case *ast.BoolExpr:
		return bc.loadConst(bs, value.Bool(n.Value)), nil
	case *ast.EmptyExpr:
		return bc.loadConst(bs, value.Empty), nil
	case *ast.IdentExpr:
		if reg, ok := resolve(bs, n.Name); ok {
			return reg, nil
		}
		if builtin, ok := Universe[n.Name]; ok {
			return bc.loadConst(bs, builtin), nil
		}
		return 0, fmt.Errorf("%s: undefined name %q", n.Start, n.Name)
	case *ast.ParenExpr:
		return bc.compileExpr(bs, n.Expr)
	case *ast.ExprList:
		return bc.compileBody(bs, n.Exprs)
	case *ast.BindExpr:
		return bc.compileBind(bs, n)
	case *ast.UnaryExpr:
		return bc.compileUnary(bs, n)
	case *ast.BinaryExpr:
		return bc.compileBinary(bs, n)
	case *ast.CallExpr:
		return bc.compileCall(bs, n)
	case *ast.FuncExpr:
		return bc.compileFunc(bs, n)
	case *ast.MatchExpr:
		return bc.compileMatch(bs, n)
	case *ast.ObjectExpr:
		return bc.compileObject(bs, n)
	case *ast.ListExpr:
		return bc.compileList(bs, n)
	case *ast.IndexExpr:
		return bc.compileIndexGet(bs, n)
	default:
		return 0, fmt.Errorf("compiler: unsupported node %T", e)
	}
}

func (bc *blockCompiler) loadConst(bs *blockScope, v value.Value) Reg {
	idx := bs.addConst(ConstValue{V: v})
	r := bs.allocReg()
	bs.emit(Instr{Op: LOAD_CONST, Dest: r, Arg: idx})
	return r
}

func (bc *blockCompiler) compileBind(bs *blockScope, n *ast.BindExpr) (Reg, error) {
	if idx, ok := ast.Unwrap(n.Left).(*ast.IndexExpr); ok {
		return bc.compileIndexSet(bs, idx, n.Right)
	}

	valReg, err := bc.compileExpr(bs, n.Right)
	if err != nil {
		return 0, err
	}

	if _, ok := ast.Unwrap(n.Left).(*ast.EmptyExpr); ok {
		return valReg, nil
	}

	ident, ok := ast.Unwrap(n.Left).(*ast.IdentExpr)
	if !ok {
		return 0, fmt.Errorf("compiler: invalid bind target %T", n.Left)
	}

	// a name already visible here, whether local or captured from an
	// enclosing block, is rebound in place: MOV writes through an Escaped
	// capture proxy, so the defining scope sees the new value.
	if existing, found := resolve(bs, ident.Name); found {
		bs.emit(Instr{Op: MOV, Pos: n.Colon, Dest: existing, X: valReg})
		return existing, nil
	}

	dest := bs.allocReg()
	bs.locals[ident.Name] = dest
	bs.emit(Instr{Op: MOV, Pos: n.Colon, Dest: dest, X: valReg})
	return dest, nil
}

func (bc *blockCompiler) compileUnary(bs *blockScope, n *ast.UnaryExpr) (Reg, error) {
	x, err := bc.compileExpr(bs, n.X)
	if err != nil {
		return 0, err
	}
	if n.Op != token.TILDE {
		return 0, fmt.Errorf("%s: unsupported unary operator %s", n.OpPos, n.Op)
	}
	r := bs.allocReg()
	bs.emit(Instr{Op: NEG, Pos: n.OpPos, Dest: r, X: x})
	return r, nil
}

var binaryOps = map[token.Kind]Opcode{
	token.PLUS:  ADD,
	token.MINUS: SUB,
	token.STAR:  MUL,
	token.SLASH: DIV,
	token.MOD:   MOD,
	token.AMP:   AND,
	token.PIPE:  OR,
	token.CARET: XOR,
	token.GTR:   GTR,
	token.LSS:   LSS,
	token.EQL:   EQL,
}

func (bc *blockCompiler) compileBinary(bs *blockScope, n *ast.BinaryExpr) (Reg, error) {
	op, ok := binaryOps[n.Op]
	if !ok {
		return 0, fmt.Errorf("%s: unsupported binary operator %s", n.OpPos, n.Op)
	}
	x, err := bc.compileExpr(bs, n.X)
	if err != nil {
		return 0, err
	}
	y, err := bc.compileExpr(bs, n.Y)
	if err != nil {
		return 0, err
	}
	r := bs.allocReg()
	bs.emit(Instr{Op: op, Pos: n.OpPos, Dest: r, X: x, Y: y})
	return r, nil
}

func (bc *blockCompiler) compileCall(bs *blockScope, n *ast.CallExpr) (Reg, error) {
	fn, err := bc.compileExpr(bs, n.Fn)
	if err != nil {
		return 0, err
	}
	args := make([]Reg, len(n.Args))
	for i, a := range n.Args {
		r, err := bc.compileExpr(bs, a)
		if err != nil {
			return 0, err
		}
		args[i] = r
	}
	r := bs.allocReg()
	bs.emit(Instr{Op: CALL, Pos: n.Lparen, Dest: r, X: fn, ArgRegs: args})
	return r, nil
}

// compileFuncBody compiles params/body into a new Block nested under bs and
// returns the register in bs holding the materialized closure, added to
// bs's own constant pool as a FuncTemplate and loaded via LOAD_CONST.
func (bc *blockCompiler) compileFuncBody(bs *blockScope, params []*ast.IdentOrEmpty, body ast.Expr, name string, pos token.Pos) (Reg, error) {
	child := &Block{Name: name, Parent: bs.index, Pos: pos}
	childIndex := len(bc.prog.Blocks)
	bc.prog.Blocks = append(bc.prog.Blocks, child)
	childScope := newBlockScope(child, childIndex, bs)

	for _, p := range params {
		reg := childScope.allocReg()
		if p.Ident != nil {
			childScope.locals[p.Ident.Name] = reg
		}
	}

	result, err := bc.compileExpr(childScope, body)
	if err != nil {
		return 0, err
	}
	child.Result = result

	idx := bs.addConst(FuncTemplate{BlockIndex: childIndex})
	r := bs.allocReg()
	bs.emit(Instr{Op: LOAD_CONST, Pos: pos, Dest: r, Arg: idx})
	return r, nil
}

func (bc *blockCompiler) compileFunc(bs *blockScope, n *ast.FuncExpr) (Reg, error) {
	return bc.compileFuncBody(bs, n.Params, n.Body, "", n.Lparen)
}

// compileMatch compiles a match expression as a chain of pattern tests: each
// clause's pattern is evaluated eagerly in source order and its body
// compiled as a nullary closure so it only actually runs on a match.
// CALL_IF_EQ tests the pattern against the subject, invokes the closure on
// success, and otherwise falls through to the next clause's test. Because
// the total instruction count isn't known until the last clause is
// compiled, each CALL_IF_EQ's skip count is backpatched afterward.
func (bc *blockCompiler) compileMatch(bs *blockScope, n *ast.MatchExpr) (Reg, error) {
	subject, err := bc.compileExpr(bs, n.Subject)
	if err != nil {
		return 0, err
	}

	result := bc.loadConst(bs, value.Null)

	var callEqIdx []int
	for _, clause := range n.Clauses {
		pat, err := bc.compileExpr(bs, clause.Pattern)
		if err != nil {
			return 0, err
		}
		fn, err := bc.compileFuncBody(bs, nil, clause.Body, "match-clause", clause.Arrow)
		if err != nil {
			return 0, err
		}
		idx := bs.emit(Instr{Op: CALL_IF_EQ, Pos: clause.Arrow, Dest: result, X: subject, Y: pat, Z: fn})
		callEqIdx = append(callEqIdx, idx)
	}

	for i, idx := range callEqIdx {
		if i == len(callEqIdx)-1 {
			continue
		}
		bs.block.Code[idx].Arg = len(bs.block.Code) - (idx + 1)
	}
	return result, nil
}

func (bc *blockCompiler) compileObject(bs *blockScope, n *ast.ObjectExpr) (Reg, error) {
	r := bs.allocReg()
	bs.emit(Instr{Op: MAKE_COMP, Pos: n.Lbrace, Dest: r, Arg: len(n.Entries)})
	for _, entry := range n.Entries {
		key, err := bc.compileExpr(bs, entry.Key)
		if err != nil {
			return 0, err
		}
		val, err := bc.compileExpr(bs, entry.Value)
		if err != nil {
			return 0, err
		}
		bs.emit(Instr{Op: SET_COMP, Pos: entry.Colon, X: r, Y: key, Z: val})
	}
	return r, nil
}

// compileList compiles a list literal as sugar for an object literal keyed
// by stringified index, synthesizing a Number constant for each element's
// position (coerced to a decimal string key by the VM the same way any
// other numeric key is).
func (bc *blockCompiler) compileList(bs *blockScope, n *ast.ListExpr) (Reg, error) {
	r := bs.allocReg()
	bs.emit(Instr{Op: MAKE_COMP, Pos: n.Lbrack, Dest: r, Arg: len(n.Elems)})
	for i, elem := range n.Elems {
		key := bc.loadConst(bs, value.Number(i))
		val, err := bc.compileExpr(bs, elem)
		if err != nil {
			return 0, err
		}
		bs.emit(Instr{Op: SET_COMP, X: r, Y: key, Z: val})
	}
	return r, nil
}

func (bc *blockCompiler) compileIndexGet(bs *blockScope, n *ast.IndexExpr) (Reg, error) {
	x, err := bc.compileExpr(bs, n.X)
	if err != nil {
		return 0, err
	}
	idx, err := bc.compileIndexKey(bs, n)
	if err != nil {
		return 0, err
	}
	r := bs.allocReg()
	bs.emit(Instr{Op: GET_COMP, Pos: n.Dot, Dest: r, X: x, Y: idx})
	return r, nil
}

// compileIndexSet compiles an assignment through an index expression, e.g.
// `obj.key := val` or `obj.(k) := val`, the only form of mutation besides
// rebinding a plain name.
func (bc *blockCompiler) compileIndexSet(bs *blockScope, n *ast.IndexExpr, rhs ast.Expr) (Reg, error) {
	x, err := bc.compileExpr(bs, n.X)
	if err != nil {
		return 0, err
	}
	idx, err := bc.compileIndexKey(bs, n)
	if err != nil {
		return 0, err
	}
	val, err := bc.compileExpr(bs, rhs)
	if err != nil {
		return 0, err
	}
	bs.emit(Instr{Op: SET_COMP, Pos: n.Dot, X: x, Y: idx, Z: val})
	return val, nil
}

// compileIndexKey lowers an index's key operand, promoting a bare
// identifier in the sugared `x.y` form to the string literal "y" instead of
// resolving it as a variable reference; the explicit `x.(expr)` form always
// compiles its operand normally.
func (bc *blockCompiler) compileIndexKey(bs *blockScope, n *ast.IndexExpr) (Reg, error) {
	if !n.Lparen.IsValid() {
		if id, ok := n.Index.(*ast.IdentExpr); ok {
			return bc.loadConst(bs, value.NewStr(id.Name)), nil
		}
	}
	return bc.compileExpr(bs, n.Index)
}
