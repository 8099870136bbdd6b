package ast

import (
	"fmt"

	"github.com/mna/ink/lang/token"
)

// Unwrap the expression inside parens, recursively.
func Unwrap(e Expr) Expr {
	if p, ok := e.(*ParenExpr); ok {
		return Unwrap(p.Expr)
	}
	return e
}

// IsAssignable returns true if e can appear on the left of a `:=` binding:
// a plain identifier, the empty identifier, or an index expression.
func IsAssignable(e Expr) bool {
	switch Unwrap(e).(type) {
	case *IdentExpr, *EmptyExpr, *IndexExpr:
		return true
	default:
		return false
	}
}

type (
	// ExprList represents a parenthesized or top-level sequence of
	// expressions; its value, when evaluated, is the value of its last
	// element.
	ExprList struct {
		Lparen token.Pos // NoPos if this is the top-level program list
		Exprs  []Expr
		Commas []token.Pos // len(Exprs)-1
		Rparen token.Pos   // NoPos if this is the top-level program list
	}

	// BindExpr represents a name binding, e.g. `x := 3`. Its value is the
	// value of Right.
	BindExpr struct {
		Left  Expr // *IdentExpr, *EmptyExpr or *IndexExpr
		Colon token.Pos
		Right Expr
	}

	// IdentExpr represents an identifier reference.
	IdentExpr struct {
		Start token.Pos
		Name  string
	}

	// EmptyExpr represents the empty identifier `_`, used as a discard
	// target in bindings and function parameters.
	EmptyExpr struct {
		Start token.Pos
	}

	// NumberExpr represents a number literal.
	NumberExpr struct {
		Start token.Pos
		Raw   string
		Value float64
	}

	// StringExpr represents a string literal.
	StringExpr struct {
		Start token.Pos
		Raw   string
		Value string
	}

	// BoolExpr represents the `true` or `false` literal.
	BoolExpr struct {
		Start token.Pos
		Value bool
	}

	// UnaryExpr represents a unary operator expression, e.g. `~x`.
	UnaryExpr struct {
		Op    token.Kind
		OpPos token.Pos
		X     Expr
	}

	// BinaryExpr represents a binary operator expression, e.g. `x + y`.
	BinaryExpr struct {
		X     Expr
		Op    token.Kind
		OpPos token.Pos
		Y     Expr
	}

	// CallExpr represents a function call, e.g. `f(x, y)`.
	CallExpr struct {
		Fn     Expr
		Lparen token.Pos
		Args   []Expr
		Commas []token.Pos
		Rparen token.Pos
	}

	// FuncExpr represents a function literal, e.g. `(x, y) => x + y`.
	FuncExpr struct {
		Lparen token.Pos
		Params []*IdentOrEmpty
		Commas []token.Pos
		Arrow  token.Pos
		Body   Expr
	}

	// IdentOrEmpty is a function parameter: either an identifier or the
	// empty identifier.
	IdentOrEmpty struct {
		Ident *IdentExpr // nil if Empty is set
		Empty *EmptyExpr // nil if Ident is set
	}

	// MatchClause represents one `pattern -> body` clause of a match
	// expression.
	MatchClause struct {
		Pattern Expr
		Arrow   token.Pos
		Body    Expr
	}

	// MatchExpr represents a match expression, e.g. `x :: { 1 -> 'one' }`.
	MatchExpr struct {
		Subject Expr
		Match   token.Pos
		Lbrace  token.Pos
		Clauses []*MatchClause
		Commas  []token.Pos
		Rbrace  token.Pos
	}

	// ObjectEntry represents one `key: value` entry of an object literal.
	ObjectEntry struct {
		Key   Expr
		Colon token.Pos
		Value Expr
	}

	// ObjectExpr represents an object (composite) literal, e.g.
	// `{ a: 1, b: 2 }`.
	ObjectExpr struct {
		Lbrace  token.Pos
		Entries []*ObjectEntry
		Commas  []token.Pos
		Rbrace  token.Pos
	}

	// ListExpr represents a list literal, e.g. `[1, 2, 3]`, sugar for an
	// object literal keyed by stringified index.
	ListExpr struct {
		Lbrack token.Pos
		Elems  []Expr
		Commas []token.Pos
		Rbrack token.Pos
	}

	// IndexExpr represents a composite access, e.g. `x.(y)` or the sugared
	// dotted form `x.y`.
	IndexExpr struct {
		X      Expr
		Dot    token.Pos
		Lparen token.Pos // NoPos for the sugared `x.y` form
		Index  Expr
		Rparen token.Pos // NoPos for the sugared `x.y` form
	}

	// ParenExpr represents a parenthesized expression list used as a
	// single expression operand.
	ParenExpr struct {
		Lparen token.Pos
		Expr   Expr
		Rparen token.Pos
	}
)

func (*ExprList) expr()     {}
func (*BindExpr) expr()     {}
func (*IdentExpr) expr()    {}
func (*EmptyExpr) expr()    {}
func (*NumberExpr) expr()   {}
func (*StringExpr) expr()   {}
func (*BoolExpr) expr()     {}
func (*UnaryExpr) expr()    {}
func (*BinaryExpr) expr()   {}
func (*CallExpr) expr()     {}
func (*FuncExpr) expr()     {}
func (*MatchExpr) expr()    {}
func (*ObjectExpr) expr()   {}
func (*ListExpr) expr()     {}
func (*IndexExpr) expr()    {}
func (*ParenExpr) expr()    {}

func (n *ExprList) Format(f fmt.State, verb rune) {
	format(f, verb, n, "expr-list", map[string]int{"exprs": len(n.Exprs)})
}
func (n *ExprList) Span() (start, end token.Pos) {
	if n.Lparen.IsValid() {
		return n.Lparen, n.Rparen
	}
	if len(n.Exprs) == 0 {
		return token.NoPos, token.NoPos
	}
	s, _ := n.Exprs[0].Span()
	_, e := n.Exprs[len(n.Exprs)-1].Span()
	return s, e
}
func (n *ExprList) Walk(v Visitor) {
	for _, e := range n.Exprs {
		Walk(v, e)
	}
}

func (n *BindExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "bind", nil) }
func (n *BindExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *BindExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

func (n *IdentExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "ident "+n.Name, nil) }
func (n *IdentExpr) Span() (start, end token.Pos) {
	return n.Start, n.Start + token.Pos(len(n.Name))
}
func (n *IdentExpr) Walk(_ Visitor) {}

func (n *EmptyExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "empty _", nil) }
func (n *EmptyExpr) Span() (start, end token.Pos)  { return n.Start, n.Start + 1 }
func (n *EmptyExpr) Walk(_ Visitor)                {}

func (n *NumberExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "number "+n.Raw, nil) }
func (n *NumberExpr) Span() (start, end token.Pos) {
	return n.Start, n.Start + token.Pos(len(n.Raw))
}
func (n *NumberExpr) Walk(_ Visitor) {}

func (n *StringExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "string "+n.Raw, nil) }
func (n *StringExpr) Span() (start, end token.Pos) {
	return n.Start, n.Start + token.Pos(len(n.Raw))
}
func (n *StringExpr) Walk(_ Visitor) {}

func (n *BoolExpr) Format(f fmt.State, verb rune) {
	lbl := "false"
	if n.Value {
		lbl = "true"
	}
	format(f, verb, n, lbl, nil)
}
func (n *BoolExpr) Span() (start, end token.Pos) {
	l := 5 // len("false")
	if n.Value {
		l = 4 // len("true")
	}
	return n.Start, n.Start + token.Pos(l)
}
func (n *BoolExpr) Walk(_ Visitor) {}

func (n *UnaryExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "unary "+n.Op.String(), nil) }
func (n *UnaryExpr) Span() (start, end token.Pos) {
	_, end = n.X.Span()
	return n.OpPos, end
}
func (n *UnaryExpr) Walk(v Visitor) { Walk(v, n.X) }

func (n *BinaryExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "binary "+n.Op.String(), nil)
}
func (n *BinaryExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	_, end = n.Y.Span()
	return start, end
}
func (n *BinaryExpr) Walk(v Visitor) {
	Walk(v, n.X)
	Walk(v, n.Y)
}

func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call", map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Span() (start, end token.Pos) {
	start, _ = n.Fn.Span()
	return start, n.Rparen
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Fn)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

func (n *FuncExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "func", map[string]int{"params": len(n.Params)})
}
func (n *FuncExpr) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.Lparen, end
}
func (n *FuncExpr) Walk(v Visitor) {
	for _, p := range n.Params {
		if p.Ident != nil {
			Walk(v, p.Ident)
		} else {
			Walk(v, p.Empty)
		}
	}
	Walk(v, n.Body)
}

func (n *MatchExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "match", map[string]int{"clauses": len(n.Clauses)})
}
func (n *MatchExpr) Span() (start, end token.Pos) {
	start, _ = n.Subject.Span()
	return start, n.Rbrace
}
func (n *MatchExpr) Walk(v Visitor) {
	Walk(v, n.Subject)
	for _, c := range n.Clauses {
		Walk(v, c.Pattern)
		Walk(v, c.Body)
	}
}

func (n *ObjectExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "object", map[string]int{"entries": len(n.Entries)})
}
func (n *ObjectExpr) Span() (start, end token.Pos) { return n.Lbrace, n.Rbrace }
func (n *ObjectExpr) Walk(v Visitor) {
	for _, e := range n.Entries {
		Walk(v, e.Key)
		Walk(v, e.Value)
	}
}

func (n *ListExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "list", map[string]int{"elems": len(n.Elems)})
}
func (n *ListExpr) Span() (start, end token.Pos) { return n.Lbrack, n.Rbrack }
func (n *ListExpr) Walk(v Visitor) {
	for _, e := range n.Elems {
		Walk(v, e)
	}
}

func (n *IndexExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "index", nil) }
func (n *IndexExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	if n.Rparen.IsValid() {
		return start, n.Rparen
	}
	_, end = n.Index.Span()
	return start, end
}
func (n *IndexExpr) Walk(v Visitor) {
	Walk(v, n.X)
	Walk(v, n.Index)
}

func (n *ParenExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "paren", nil) }
func (n *ParenExpr) Span() (start, end token.Pos)  { return n.Lparen, n.Rparen }
func (n *ParenExpr) Walk(v Visitor)                { Walk(v, n.Expr) }
