package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/ink/lang/scanner"
	"github.com/mna/ink/lang/token"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(ctx, stdio, args...)
}

func TokenizeFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	fs, toksByFile, err := scanner.ScanFiles(ctx, files...)
	for i, toks := range toksByFile {
		for _, tv := range toks {
			pos := fs.Position(tv.Pos)
			fmt.Fprintf(stdio.Stdout, "%s:%d:%d: %s", files[i], pos.Line, pos.Column, tv.Kind)
			if lit := tv.Value.Str; lit != "" && tv.Kind != token.EOF {
				fmt.Fprintf(stdio.Stdout, " %q", lit)
			}
			fmt.Fprintln(stdio.Stdout)
		}
	}
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}
	return err
}
