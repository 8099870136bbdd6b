package vm

import (
	"fmt"
	"math"

	"github.com/mna/ink/lang/compiler"
	"github.com/mna/ink/lang/value"
)

// arith evaluates a binary arithmetic/bitwise opcode. Numbers support the
// full set; `+` additionally concatenates two byte strings; `+ * & | ^` on
// two booleans short-circuit to logical OR/AND/AND/OR/XOR respectively
// (there is no separate integer type, so bitwise ops on numbers truncate to
// a 64-bit signed integer first); bitwise ops on two byte strings apply
// elementwise, the shorter operand zero-padded to the longer's length.
func arith(op compiler.Opcode, x, y value.Value) (value.Value, error) {
	switch x := x.(type) {
	case value.Number:
		y, ok := y.(value.Number)
		if !ok {
			return nil, fmt.Errorf("expected a number operand, got %s", y.Kind())
		}
		return numberArith(op, float64(x), float64(y))
	case value.Bool:
		y, ok := y.(value.Bool)
		if !ok {
			return nil, fmt.Errorf("expected a boolean operand, got %s", y.Kind())
		}
		return boolArith(op, bool(x), bool(y))
	case *value.Str:
		y, ok := y.(*value.Str)
		if !ok {
			return nil, fmt.Errorf("expected a string operand, got %s", y.Kind())
		}
		return stringArith(op, x, y)
	default:
		return nil, fmt.Errorf("invalid operand of type %s", x.Kind())
	}
}

func numberArith(op compiler.Opcode, a, b float64) (value.Value, error) {
	switch op {
	case compiler.ADD:
		return value.Number(a + b), nil
	case compiler.SUB:
		return value.Number(a - b), nil
	case compiler.MUL:
		return value.Number(a * b), nil
	case compiler.DIV:
		return value.Number(a / b), nil
	case compiler.MOD:
		return value.Number(math.Mod(a, b)), nil
	case compiler.AND:
		return value.Number(int64(a) & int64(b)), nil
	case compiler.OR:
		return value.Number(int64(a) | int64(b)), nil
	case compiler.XOR:
		return value.Number(int64(a) ^ int64(b)), nil
	default:
		return nil, fmt.Errorf("invalid operand of type number")
	}
}

// boolArith maps arithmetic opcodes onto logical operators for two
// booleans: `+` and `|` both mean OR, `*` and `&` both mean AND, `^` means
// XOR.
func boolArith(op compiler.Opcode, a, b bool) (value.Value, error) {
	switch op {
	case compiler.ADD, compiler.OR:
		return value.Bool(a || b), nil
	case compiler.MUL, compiler.AND:
		return value.Bool(a && b), nil
	case compiler.XOR:
		return value.Bool(a != b), nil
	default:
		return nil, fmt.Errorf("invalid operand of type bool")
	}
}

func stringArith(op compiler.Opcode, a, b *value.Str) (value.Value, error) {
	switch op {
	case compiler.ADD:
		out := make([]byte, 0, len(a.B)+len(b.B))
		out = append(out, a.B...)
		out = append(out, b.B...)
		return &value.Str{B: out}, nil
	case compiler.AND, compiler.OR, compiler.XOR:
		return bitwiseBytes(op, a.B, b.B), nil
	default:
		return nil, fmt.Errorf("invalid operand of type string")
	}
}

// bitwiseBytes applies op elementwise over a and b, zero-padding the
// shorter to the longer's length.
func bitwiseBytes(op compiler.Opcode, a, b []byte) value.Value {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		var av, bv byte
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		switch op {
		case compiler.AND:
			out[i] = av & bv
		case compiler.OR:
			out[i] = av | bv
		case compiler.XOR:
			out[i] = av ^ bv
		}
	}
	return &value.Str{B: out}
}

// compare evaluates GTR/LSS, defined only for numbers.
func compare(op compiler.Opcode, x, y value.Value) (value.Value, error) {
	xn, ok := x.(value.Number)
	if !ok {
		return nil, fmt.Errorf("invalid operand of type %s: comparison is only defined for numbers", x.Kind())
	}
	yn, ok := y.(value.Number)
	if !ok {
		return nil, fmt.Errorf("invalid operand of type %s: comparison is only defined for numbers", y.Kind())
	}
	if op == compiler.GTR {
		return value.Bool(xn > yn), nil
	}
	return value.Bool(xn < yn), nil
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return len(a) - len(b)
}

// valuesEqual implements Ink's `=` operator and match-clause pattern
// comparison. Empty is a wildcard that equals anything - this is what lets
// a match clause's `_` pattern accept any subject. Otherwise, numbers and
// booleans compare by value, strings compare by content (not pointer
// identity - two distinct mutable Str values holding the same bytes are
// equal), composites compare by entrywise equality of values under key
// equality, and functions compare by identity.
func valuesEqual(x, y value.Value) (bool, error) {
	if x.Kind() == value.EmptyKind || y.Kind() == value.EmptyKind {
		return true, nil
	}
	if x.Kind() != y.Kind() {
		return false, nil
	}
	switch x := x.(type) {
	case value.Number:
		return x == y.(value.Number), nil
	case value.Bool:
		return x == y.(value.Bool), nil
	case *value.Str:
		return compareBytes(x.B, y.(*value.Str).B) == 0, nil
	case *value.Comp:
		return compsEqual(x, y.(*value.Comp))
	default:
		return x == y, nil
	}
}

func compsEqual(x, y *value.Comp) (bool, error) {
	if x.Len() != y.Len() {
		return false, nil
	}
	var err error
	equal := true
	x.Iter(func(key string, xv value.Value) bool {
		// returning true stops the iteration
		yv, ok := y.Get(key)
		if !ok {
			equal = false
			return true
		}
		eq, e := valuesEqual(xv, yv)
		if e != nil {
			err = e
			return true
		}
		if !eq {
			equal = false
			return true
		}
		return false
	})
	return equal, err
}
