package vm_test

import (
	"context"
	"testing"

	"github.com/mna/ink/lang/ast"
	"github.com/mna/ink/lang/compiler"
	"github.com/mna/ink/lang/token"
	"github.com/mna/ink/lang/value"
	"github.com/mna/ink/lang/vm"
	"github.com/stretchr/testify/require"
)

func ident(name string) *ast.IdentExpr { return &ast.IdentExpr{Name: name} }
func num(v float64) *ast.NumberExpr    { return &ast.NumberExpr{Value: v} }
func str(v string) *ast.StringExpr     { return &ast.StringExpr{Value: v} }

func program(exprs ...ast.Expr) *ast.Program {
	return &ast.Program{List: &ast.ExprList{Exprs: exprs}}
}

func run(t *testing.T, prog *ast.Program) value.Value {
	t.Helper()
	compiled, err := compiler.CompileProgram(prog)
	require.NoError(t, err)
	th := &vm.Thread{}
	v, err := th.RunProgram(context.Background(), compiled)
	require.NoError(t, err)
	return v
}

func TestRunArithmetic(t *testing.T) {
	v := run(t, program(&ast.BinaryExpr{X: num(1), Op: token.PLUS, Y: num(2)}))
	require.Equal(t, value.Number(3), v)
}

func TestRunBindAndReturnLast(t *testing.T) {
	v := run(t, program(
		&ast.BindExpr{Left: ident("x"), Right: num(10)},
		&ast.BindExpr{Left: ident("y"), Right: num(20)},
		&ast.BinaryExpr{X: ident("x"), Op: token.PLUS, Y: ident("y")},
	))
	require.Equal(t, value.Number(30), v)
}

func TestRunClosureOverMutatedLocal(t *testing.T) {
	// x := 1
	// f := () => x
	// x := 2
	// f()
	v := run(t, program(
		&ast.BindExpr{Left: ident("x"), Right: num(1)},
		&ast.BindExpr{Left: ident("f"), Right: &ast.FuncExpr{Body: ident("x")}},
		&ast.BindExpr{Left: ident("x"), Right: num(2)},
		&ast.CallExpr{Fn: ident("f")},
	))
	require.Equal(t, value.Number(2), v, "closure must observe the escaped local's current value")
}

func TestRunRecursiveFunction(t *testing.T) {
	// fact := (n) => (n > 0) :: {
	//   true -> n * fact(n - 1),
	//   false -> 1,
	// }
	// fact(5)
	factBody := &ast.MatchExpr{
		Subject: &ast.BinaryExpr{X: ident("n"), Op: token.GTR, Y: num(0)},
		Clauses: []*ast.MatchClause{
			{
				Pattern: &ast.BoolExpr{Value: true},
				Body: &ast.BinaryExpr{
					X: ident("n"), Op: token.STAR,
					Y: &ast.CallExpr{
						Fn: ident("fact"),
						Args: []ast.Expr{
							&ast.BinaryExpr{X: ident("n"), Op: token.MINUS, Y: num(1)},
						},
					},
				},
			},
			{Pattern: &ast.BoolExpr{Value: false}, Body: num(1)},
		},
	}

	v := run(t, program(
		&ast.BindExpr{Left: ident("fact"), Right: &ast.FuncExpr{
			Params: []*ast.IdentOrEmpty{{Ident: ident("n")}},
			Body:   factBody,
		}},
		&ast.CallExpr{Fn: ident("fact"), Args: []ast.Expr{num(5)}},
	))
	require.Equal(t, value.Number(120), v)
}

func TestRunObjectAndListIndexing(t *testing.T) {
	v := run(t, program(
		&ast.BindExpr{Left: ident("o"), Right: &ast.ObjectExpr{
			Entries: []*ast.ObjectEntry{{Key: str("a"), Value: num(42)}},
		}},
		&ast.IndexExpr{X: ident("o"), Index: str("a")},
	))
	require.Equal(t, value.Number(42), v)

	v = run(t, program(
		&ast.BindExpr{Left: ident("l"), Right: &ast.ListExpr{Elems: []ast.Expr{num(7), num(8), num(9)}}},
		&ast.IndexExpr{X: ident("l"), Index: num(1)},
	))
	require.Equal(t, value.Number(8), v)
}

func TestRunIndexAssignmentMutatesComposite(t *testing.T) {
	v := run(t, program(
		&ast.BindExpr{Left: ident("o"), Right: &ast.ObjectExpr{}},
		&ast.BindExpr{
			Left:  &ast.IndexExpr{X: ident("o"), Index: str("k")},
			Right: num(99),
		},
		&ast.IndexExpr{X: ident("o"), Index: str("k")},
	))
	require.Equal(t, value.Number(99), v)
}

func TestRunStringEquality(t *testing.T) {
	v := run(t, program(
		&ast.BinaryExpr{X: str("hi"), Op: token.EQL, Y: str("hi")},
	))
	require.Equal(t, value.Bool(true), v)
}
