package value

import (
	"fmt"
	"strconv"

	"github.com/dolthub/swiss"
)

// Comp is a composite value: Ink's only container type, used for both
// objects (`{a: 1}`) and lists (`[1, 2, 3]`, sugar for `{"0": 1, "1": 2,
// "2": 3}`). It is shared by pointer identity - assigning a Comp to another
// register or binding aliases the same backing map - backed by a
// github.com/dolthub/swiss hash map.
type Comp struct {
	m *swiss.Map[string, Value]
}

// NewComp returns an empty composite with initial capacity for at least
// size entries.
func NewComp(size int) *Comp {
	return &Comp{m: swiss.NewMap[string, Value](uint32(size))}
}

func (*Comp) Kind() Kind     { return CompKind }
func (c *Comp) String() string { return fmt.Sprintf("{ %s }", c.joinEntries()) }

func (c *Comp) joinEntries() string {
	if c.m.Count() == 0 {
		return ""
	}
	s := ""
	first := true
	c.m.Iter(func(k string, v Value) bool {
		if !first {
			s += ", "
		}
		first = false
		s += k + ": " + v.String()
		return false
	})
	return s
}

// Get returns the value at key, and whether it was present.
func (c *Comp) Get(key string) (Value, bool) { return c.m.Get(key) }

// Set stores v at key, overwriting any existing entry.
func (c *Comp) Set(key string, v Value) { c.m.Put(key, v) }

// Len returns the number of entries.
func (c *Comp) Len() int { return int(c.m.Count()) }

// Iter visits every entry until f returns true; iteration order is
// unspecified (it follows swiss.Map's own).
func (c *Comp) Iter(f func(key string, v Value) bool) { c.m.Iter(f) }

// CoerceKey turns a Value used as a composite index into the string key
// used by the underlying map: numbers truncate to their integer part and
// format in base 10, strings are used verbatim, and any other kind is
// rejected as described in the byte-string/composite indexing rules, the
// same index coercion schrift's val.rs index_coerce implements.
func CoerceKey(v Value) (string, error) {
	switch v := v.(type) {
	case Number:
		return strconv.FormatInt(int64(v), 10), nil
	case *Str:
		return v.String(), nil
	default:
		return "", fmt.Errorf("composite key must be a number or string, got %s", v.Kind())
	}
}
