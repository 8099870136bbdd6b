package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/ink/lang/ast"
	"github.com/mna/ink/lang/compiler"
	"github.com/mna/ink/lang/parser"
	"github.com/mna/ink/lang/token"
	"github.com/mna/ink/lang/value"
	"github.com/mna/ink/lang/vm"
)

// Repl reads one line of source at a time from stdin, evaluates it, and
// prints its terminal value, until stdin is closed. A top-level `name :=
// expr` binding is remembered across lines by recording its result in
// compiler.Universe under that name, the same fallback lookup built-ins use
// - there is no other cross-line persistence, so any other expression form
// only affects the current line.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	sc := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !sc.Scan() {
			break
		}
		line := sc.Text()
		if line == "" {
			continue
		}

		prog, perr := parseReplLine(line)
		if perr != nil {
			fmt.Fprintln(stdio.Stderr, perr)
			continue
		}

		p, cerr := compiler.CompileProgram(prog)
		if cerr != nil {
			fmt.Fprintln(stdio.Stderr, cerr)
			continue
		}

		th := &vm.Thread{Stdout: stdio.Stdout, Stderr: stdio.Stderr}
		result, rerr := th.RunProgram(ctx, p)
		if rerr != nil {
			fmt.Fprintln(stdio.Stderr, rerr)
			continue
		}

		if name, ok := replBoundName(prog); ok {
			if compiler.Universe == nil {
				compiler.Universe = map[string]value.Value{}
			}
			compiler.Universe[name] = result
		}
		fmt.Fprintln(stdio.Stdout, value.Repr(result))
	}
	return sc.Err()
}

func parseReplLine(line string) (*ast.Program, error) {
	return parser.ParseSource(context.Background(), token.NewFileSet(), "<repl>", []byte(line))
}

// replBoundName reports the name a single top-level `name := expr` binding
// assigns to, so the REPL can remember its value for later lines.
func replBoundName(prog *ast.Program) (string, bool) {
	if prog.List == nil || len(prog.List.Exprs) != 1 {
		return "", false
	}
	bind, ok := ast.Unwrap(prog.List.Exprs[0]).(*ast.BindExpr)
	if !ok {
		return "", false
	}
	ident, ok := ast.Unwrap(bind.Left).(*ast.IdentExpr)
	if !ok {
		return "", false
	}
	return ident.Name, true
}
