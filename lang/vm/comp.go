package vm

import (
	"fmt"
	"strconv"

	"github.com/mna/ink/lang/compiler"
	"github.com/mna/ink/lang/value"
)

// getComp implements GET_COMP: reading a composite entry, or a single byte
// of a byte string (rendered back as a one-byte Str), following the
// object/string duality described for index expressions.
func (th *Thread) getComp(fr *frame, in compiler.Instr) (value.Value, error) {
	target := th.load(fr, in.X)
	key := th.load(fr, in.Y)

	switch t := target.(type) {
	case *value.Comp:
		k, err := value.CoerceKey(key)
		if err != nil {
			return nil, err
		}
		v, ok := t.Get(k)
		if !ok {
			return value.Null, nil
		}
		return v, nil
	case *value.Str:
		idx, err := stringIndex(key)
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(t.B) {
			return value.Null, nil
		}
		return value.NewStr(string(t.B[idx])), nil
	default:
		return nil, fmt.Errorf("cannot index a value of type %s", target.Kind())
	}
}

// setComp implements SET_COMP: writing a composite entry, or splicing a
// byte string into a byte string starting at a coerced index. A splice
// past the current length zero-pads up to index+len(value) before
// overwriting, matching schrift's val.rs composite assignment semantics.
func (th *Thread) setComp(fr *frame, in compiler.Instr) error {
	target := th.load(fr, in.X)
	key := th.load(fr, in.Y)
	val := th.load(fr, in.Z)

	switch t := target.(type) {
	case *value.Comp:
		k, err := value.CoerceKey(key)
		if err != nil {
			return err
		}
		t.Set(k, val)
		return nil
	case *value.Str:
		idx, err := stringIndex(key)
		if err != nil {
			return err
		}
		src, ok := val.(*value.Str)
		if !ok {
			return fmt.Errorf("cannot splice a value of type %s into a string", val.Kind())
		}
		need := idx + len(src.B)
		if need > len(t.B) {
			grown := make([]byte, need)
			copy(grown, t.B)
			t.B = grown
		}
		copy(t.B[idx:], src.B)
		return nil
	default:
		return fmt.Errorf("cannot index a value of type %s", target.Kind())
	}
}

// stringIndex coerces a composite/string key to a non-negative integer
// index: numbers truncate, digit strings parse, anything else errors.
func stringIndex(key value.Value) (int, error) {
	switch k := key.(type) {
	case value.Number:
		n := int(k)
		if n < 0 {
			return 0, fmt.Errorf("string index out of range: %d", n)
		}
		return n, nil
	case *value.Str:
		n, err := strconv.Atoi(string(k.B))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("string index out of range: %q", k.B)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("string index must be a number or digit string, got %s", key.Kind())
	}
}
