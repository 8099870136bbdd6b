// Package builtin implements Ink's small host-provided function library
// (out, char, string, len) and installs them into compiler.Universe, the
// predeclared-identifier table every program resolves against the way the
// teacher's own machine.Universe makes its built-ins available without a
// binding.
package builtin

import (
	"fmt"
	"io"
	"os"

	"github.com/mna/ink/lang/compiler"
	"github.com/mna/ink/lang/value"
)

func init() {
	compiler.Universe = map[string]value.Value{
		"out":    &value.NativeFunc{Name: "out", Fn: out},
		"char":   &value.NativeFunc{Name: "char", Fn: char},
		"string": &value.NativeFunc{Name: "string", Fn: stringFn},
		"len":    &value.NativeFunc{Name: "len", Fn: lenFn},
	}
}

// Stdout is where `out` writes; tests and the CLI driver may override it
// before running a program. Defaults to os.Stdout so a program compiled
// and run without any special wiring still behaves correctly.
var Stdout io.Writer = os.Stdout

func out(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("out: expected 1 argument, got %d", len(args))
	}
	s, ok := args[0].(*value.Str)
	if !ok {
		return nil, fmt.Errorf("out: expected a byte string, got %s", args[0].Kind())
	}
	if _, err := Stdout.Write(s.B); err != nil {
		return nil, fmt.Errorf("out: %w", err)
	}
	return s, nil
}

func char(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("char: expected 1 argument, got %d", len(args))
	}
	n, ok := args[0].(value.Number)
	if !ok {
		return nil, fmt.Errorf("char: expected a number, got %s", args[0].Kind())
	}
	b := byte(((int64(n) % 256) + 256) % 256)
	return value.NewStr(string([]byte{b})), nil
}

func stringFn(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("string: expected 1 argument, got %d", len(args))
	}
	return value.NewStr(args[0].String()), nil
}

func lenFn(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("len: expected 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case *value.Str:
		return value.Number(len(v.B)), nil
	case *value.Comp:
		return value.Number(v.Len()), nil
	default:
		return nil, fmt.Errorf("len: expected a string or composite, got %s", v.Kind())
	}
}
