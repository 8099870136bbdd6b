// Package ast defines the types that represent the abstract syntax tree of
// an Ink program. Ink has no statements: a program is a single expression
// list, and every construct - including name bindings - is an expression.
package ast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mna/ink/lang/token"
)

// Node represents any node in the AST.
type Node interface {
	// Every Node implements the fmt.Formatter interface so they can print a
	// description of themselves. The only supported verbs are 'v' and 's'.
	fmt.Formatter

	// Span reports the start and end position of the node.
	Span() (start, end token.Pos)

	// Walk enters each node inside itself to implement the Visitor pattern.
	Walk(v Visitor)
}

// Expr represents an expression in the AST. Every Ink node is an Expr; the
// marker method keeps arbitrary Node implementations out of Expr-typed
// fields.
type Expr interface {
	Node
	expr()
}

// Program represents an entire parsed source file: a top-level expression
// list, plus the EOF position so that an empty file still has a valid span.
type Program struct {
	Name string // filename, may be empty
	List *ExprList
	EOF  token.Pos
}

func (n *Program) Format(f fmt.State, verb rune) { format(f, verb, n, "program", nil) }
func (n *Program) Span() (start, end token.Pos) {
	if n.List != nil {
		return n.List.Span()
	}
	return n.EOF, n.EOF
}
func (n *Program) Walk(v Visitor) {
	if n.List != nil {
		Walk(v, n.List)
	}
}

func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}

	label = strings.ReplaceAll(label, "\r\n", "⏎")
	label = strings.ReplaceAll(label, "\n", "⏎")
	label = strings.ReplaceAll(label, "\t", "⭾")

	if w, ok := f.Width(); ok {
		minus, plus := f.Flag('-'), f.Flag('+')
		runes := []rune(label)
		if len(runes) >= w {
			runes = runes[:w]
		} else if minus {
			runes = append(runes, []rune(strings.Repeat(" ", w-len(runes)))...)
		} else if !plus {
			runes = append([]rune(strings.Repeat(" ", w-len(runes))), runes...)
		}
		label = string(runes)
	}

	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}
