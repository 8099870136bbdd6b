// Package parser implements the parser that transforms Ink source code into
// an abstract syntax tree (AST). Ink has no statements, so the grammar is a
// single recursive-descent/precedence-climbing expression parser.
package parser

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/mna/ink/lang/ast"
	"github.com/mna/ink/lang/scanner"
	"github.com/mna/ink/lang/token"
)

// ParseFiles is a helper function that parses the source files and returns
// the fileset along with the ASTs and any error encountered. The error, if
// non-nil, is guaranteed to be a scanner.ErrorList.
func ParseFiles(ctx context.Context, files ...string) (*token.FileSet, []*ast.Program, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var p parser
	res := make([]*ast.Program, 0, len(files))
	fs := token.NewFileSet()

	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			p.errors.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		p.init(fs, file, b)
		prog := p.parseProgram()
		prog.Name = file
		res = append(res, prog)
	}
	p.errors.Sort()
	return fs, res, p.errors.Err()
}

// ParseSource is a helper function that parses a single program from a
// slice of bytes and returns the AST and any error encountered. The program
// is added to the provided fset for position reporting under the name
// specified in filename. The error, if non-nil, is guaranteed to be a
// scanner.ErrorList.
func ParseSource(ctx context.Context, fset *token.FileSet, filename string, src []byte) (*ast.Program, error) {
	var p parser
	p.init(fset, filename, src)
	prog := p.parseProgram()
	prog.Name = filename
	return prog, p.errors.Err()
}

// parser parses Ink source and generates an AST.
type parser struct {
	scanner scanner.Scanner
	errors  scanner.ErrorList
	file    *token.File

	// current token
	tok token.Kind
	val token.Value
	pos token.Pos
}

func (p *parser) init(fset *token.FileSet, filename string, src []byte) {
	p.file = fset.AddFile(filename, -1, len(src))
	p.scanner.Init(p.file, src, p.errors.Add)
	p.advance()
}

func (p *parser) advance() {
	pos := p.scanner.Pos()
	p.tok = p.scanner.Scan(&p.val)
	p.pos = pos
}

var errPanicMode = errors.New("panic")

// expect consumes the current token if it is one of toks and returns its
// position, otherwise it records an error and panics with errPanicMode,
// recovered by parseTopLevelExpr at the enclosing top-level expression.
func (p *parser) expect(toks ...token.Kind) token.Pos {
	pos := p.pos
	for _, tok := range toks {
		if p.tok == tok {
			p.advance()
			return pos
		}
	}

	var buf strings.Builder
	for i, tok := range toks {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(tok.GoString())
	}
	lbl := buf.String()
	if len(toks) > 1 {
		lbl = "one of " + lbl
	}
	p.errorExpected(pos, lbl)
	panic(errPanicMode)
}

func (p *parser) error(pos token.Pos, msg string) {
	p.errors.Add(p.file.Position(pos), msg)
}

func (p *parser) errorExpected(pos token.Pos, msg string) {
	msg = "expected " + msg
	if pos == p.pos {
		if p.val.Str != "" && (p.tok == token.IDENT || p.tok == token.NUMBER || p.tok == token.STRING) {
			msg += ", found " + p.val.Str
		} else {
			msg += ", found " + p.tok.GoString()
		}
	}
	p.error(pos, msg)
}
