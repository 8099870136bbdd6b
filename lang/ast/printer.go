package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/mna/ink/lang/token"
)

// Printer controls pretty-printing of the AST nodes, backing the
// --debug-parse CLI flag.
type Printer struct {
	// Output is the io.Writer to print to.
	Output io.Writer

	// Fset, if non-nil, is used to print file:line:col positions alongside
	// each node. If nil, positions are omitted.
	Fset *token.FileSet

	// NodeFmt is the format string to use to print the nodes. The verb must
	// be either `s` or `v`. Defaults to `%v`.
	NodeFmt string
}

// Print pretty-prints the AST node n, indenting children under their
// parents.
func (p *Printer) Print(n Node) error {
	pp := &printer{w: p.Output, fset: p.Fset, nodeFmt: p.NodeFmt}
	if pp.nodeFmt == "" {
		pp.nodeFmt = "%v"
	}
	Walk(pp, n)
	return pp.err
}

type printer struct {
	w       io.Writer
	fset    *token.FileSet
	nodeFmt string
	depth   int
	err     error
}

func (p *printer) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit || p.err != nil {
		p.depth--
		return nil
	}

	p.depth++
	p.printNode(n, p.depth-1)
	return p
}

func (p *printer) printNode(n Node, indent int) {
	if p.err != nil {
		return
	}

	format := "%s"
	args := []any{strings.Repeat(". ", indent)}
	if p.fset != nil {
		start, end := n.Span()
		format += "[%s:%s] "
		args = append(args, p.fset.Position(start).String(), p.fset.Position(end).String())
	}
	format += p.nodeFmt + "\n"
	args = append(args, n)

	_, p.err = fmt.Fprintf(p.w, format, args...)
}
