package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/ink/lang/ast"
	"github.com/mna/ink/lang/compiler"
	"github.com/mna/ink/lang/parser"
	"github.com/mna/ink/lang/scanner"
	"github.com/mna/ink/lang/token"
	"github.com/mna/ink/lang/value"
	"github.com/mna/ink/lang/vm"
)

// Eval compiles and runs a single source string given directly on the
// command line.
func (c *Cmd) Eval(ctx context.Context, stdio mainer.Stdio, args []string) error {
	_, err := c.evalSource(ctx, stdio, "<eval>", []byte(args[0]))
	return printError(stdio, err)
}

// Run compiles and runs a single source file.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return printError(stdio, err)
	}
	_, err = c.evalSource(ctx, stdio, path, src)
	return printError(stdio, err)
}

// evalSource runs the full pipeline (scan, parse, compile, optimize, run)
// over src, printing the debug traces the -D flags enable along the way,
// and returns the program's terminal value.
func (c *Cmd) evalSource(ctx context.Context, stdio mainer.Stdio, name string, src []byte) (value.Value, error) {
	fset := token.NewFileSet()

	if c.DebugLex {
		f := fset.AddFile(name, -1, len(src))
		var s scanner.Scanner
		var el scanner.ErrorList
		var tv token.Value
		s.Init(f, src, el.Add)
		for {
			kind := s.Scan(&tv)
			fmt.Fprintf(stdio.Stdout, "%s\n", kind)
			if kind == token.EOF {
				break
			}
		}
	}

	prog, err := parser.ParseSource(ctx, fset, name, src)
	if err != nil {
		return nil, err
	}
	if c.DebugParse {
		printer := ast.Printer{Output: stdio.Stdout, Fset: fset}
		if perr := printer.Print(prog); perr != nil {
			return nil, perr
		}
	}

	p, err := compiler.CompileProgram(prog)
	if err != nil {
		return nil, err
	}
	if c.DebugAnalyze {
		fmt.Fprint(stdio.Stdout, p.AnalysisTrace())
	}
	if c.DebugCompile {
		fmt.Fprint(stdio.Stdout, p.Disassemble())
	}

	p = compiler.Optimize(p)
	if c.DebugOptimize {
		fmt.Fprint(stdio.Stdout, p.Disassemble())
	}

	th := &vm.Thread{Name: name, Stdout: stdio.Stdout, Stderr: stdio.Stderr}
	result, err := th.RunProgram(ctx, p)
	if err != nil {
		if errors.Is(err, vm.ErrStackOverflow) {
			return nil, stackOverflowError{err}
		}
		return nil, err
	}
	return result, nil
}

// stackOverflowError marks a runtime error as a stack overflow so Main can
// translate it to the dedicated exit code.
type stackOverflowError struct{ error }

func (e stackOverflowError) Unwrap() error { return e.error }
