package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/ink/lang/compiler"
	"github.com/mna/ink/lang/parser"
	"github.com/mna/ink/lang/scanner"
)

func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return CompileFiles(ctx, stdio, args...)
}

func CompileFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	_, progs, err := parser.ParseFiles(ctx, files...)
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}

	for _, prog := range progs {
		p, cerr := compiler.CompileProgram(prog)
		if cerr != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", prog.Name, cerr)
			return cerr
		}
		p = compiler.Optimize(p)
		fmt.Fprint(stdio.Stdout, p.Disassemble())
	}
	return nil
}
