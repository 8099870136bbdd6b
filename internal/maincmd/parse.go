package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/ink/lang/ast"
	"github.com/mna/ink/lang/parser"
	"github.com/mna/ink/lang/scanner"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(ctx, stdio, args...)
}

func ParseFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	fs, progs, err := parser.ParseFiles(ctx, files...)
	printer := ast.Printer{Output: stdio.Stdout, Fset: fs}
	for _, prog := range progs {
		if perr := printer.Print(prog); perr != nil {
			fmt.Fprintln(stdio.Stderr, perr)
			return perr
		}
	}
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}
	return err
}
