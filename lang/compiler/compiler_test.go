package compiler_test

import (
	"testing"

	"github.com/mna/ink/lang/ast"
	"github.com/mna/ink/lang/compiler"
	"github.com/mna/ink/lang/token"
	"github.com/stretchr/testify/require"
)

func ident(name string) *ast.IdentExpr { return &ast.IdentExpr{Name: name} }

func num(v float64) *ast.NumberExpr { return &ast.NumberExpr{Value: v} }

func program(exprs ...ast.Expr) *ast.Program {
	return &ast.Program{List: &ast.ExprList{Exprs: exprs}}
}

func TestCompileLiteral(t *testing.T) {
	prog, err := compiler.CompileProgram(program(num(3)))
	require.NoError(t, err)
	require.Len(t, prog.Blocks, 1)
	require.Contains(t, prog.Disassemble(), "loadk    r0, #0")
}

func TestCompileBindAndReference(t *testing.T) {
	// x := 3
	// x
	prog, err := compiler.CompileProgram(program(
		&ast.BindExpr{Left: ident("x"), Right: num(3)},
		ident("x"),
	))
	require.NoError(t, err)

	main := prog.Blocks[0]
	require.Equal(t, 2, main.Slots) // r0 bound to x, r1 holds the literal before the MOV
	out := prog.Disassemble()
	require.Contains(t, out, "mov      r0, r1")
}

func TestCompileUndefinedNameFails(t *testing.T) {
	_, err := compiler.CompileProgram(program(ident("nope")))
	require.Error(t, err)
	require.Contains(t, err.Error(), `undefined name "nope"`)
}

func TestCompileBinaryOp(t *testing.T) {
	prog, err := compiler.CompileProgram(program(
		&ast.BinaryExpr{X: num(1), Op: token.PLUS, Y: num(2)},
	))
	require.NoError(t, err)
	require.Contains(t, prog.Disassemble(), "add")
}

func TestCompileClosureCapturesEscapedLocal(t *testing.T) {
	// x := 1
	// f := () => x
	// f
	prog, err := compiler.CompileProgram(program(
		&ast.BindExpr{Left: ident("x"), Right: num(1)},
		&ast.BindExpr{
			Left: ident("f"),
			Right: &ast.FuncExpr{
				Body: ident("x"),
			},
		},
		ident("f"),
	))
	require.NoError(t, err)
	require.Len(t, prog.Blocks, 2)

	main := prog.Blocks[0]
	out := prog.Disassemble()
	require.Contains(t, out, "escape")

	inner := prog.Blocks[1]
	require.Len(t, inner.Binds, 1)
	require.Equal(t, main.Slots > 0, true)
}

func TestCompileNestedClosureChainsCaptureWithoutReescaping(t *testing.T) {
	// x := 1
	// f := () => (() => x)
	prog, err := compiler.CompileProgram(program(
		&ast.BindExpr{Left: ident("x"), Right: num(1)},
		&ast.BindExpr{
			Left: ident("f"),
			Right: &ast.FuncExpr{
				Body: &ast.FuncExpr{Body: ident("x")},
			},
		},
	))
	require.NoError(t, err)
	require.Len(t, prog.Blocks, 3)

	// the middle block (f's body) should have exactly one ESCAPE-free
	// LOAD_ESC proxy register, and the innermost block captures from that
	// proxy rather than escaping it again.
	middle := prog.Blocks[1]
	innermost := prog.Blocks[2]
	require.Len(t, middle.Binds, 1)
	require.Len(t, innermost.Binds, 1)

	out := prog.Disassemble()
	escapeCount := 0
	for _, in := range middle.Code {
		if in.Op == compiler.ESCAPE {
			escapeCount++
		}
	}
	require.Equal(t, 0, escapeCount, "proxy register must not itself be escaped: %s", out)
}

func TestCompileMatchBackpatchesSkipCounts(t *testing.T) {
	// x :: { 1 -> 'one', 2 -> 'two' }
	prog, err := compiler.CompileProgram(program(
		&ast.BindExpr{Left: ident("x"), Right: num(1)},
		&ast.MatchExpr{
			Subject: ident("x"),
			Clauses: []*ast.MatchClause{
				{Pattern: num(1), Body: &ast.StringExpr{Value: "one"}},
				{Pattern: num(2), Body: &ast.StringExpr{Value: "two"}},
			},
		},
	))
	require.NoError(t, err)

	main := prog.Blocks[0]
	var skips []int
	for _, in := range main.Code {
		if in.Op == compiler.CALL_IF_EQ {
			skips = append(skips, in.Arg)
		}
	}
	require.Len(t, skips, 2)
	require.Greater(t, skips[0], 0) // not the last clause: must skip past clause 2's test
	require.Equal(t, 0, skips[1])   // last clause never needs to skip anything
}

func TestCompileListSugarsToIndexedComposite(t *testing.T) {
	prog, err := compiler.CompileProgram(program(
		&ast.ListExpr{Elems: []ast.Expr{num(10), num(20)}},
	))
	require.NoError(t, err)
	out := prog.Disassemble()
	require.Contains(t, out, "mkcomp")
	require.Contains(t, out, "setcomp")
}

func TestCompileIndexAssignment(t *testing.T) {
	// o := {}
	// o.k := 1
	prog, err := compiler.CompileProgram(program(
		&ast.BindExpr{Left: ident("o"), Right: &ast.ObjectExpr{}},
		&ast.BindExpr{
			Left: &ast.IndexExpr{
				X:     ident("o"),
				Index: &ast.StringExpr{Value: "k"},
			},
			Right: num(1),
		},
	))
	require.NoError(t, err)
	require.Contains(t, prog.Disassemble(), "setcomp")
}
