package builtin_test

import (
	"bytes"
	"testing"

	"github.com/mna/ink/lang/builtin"
	"github.com/mna/ink/lang/compiler"
	"github.com/mna/ink/lang/value"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, name string, args ...value.Value) (value.Value, error) {
	t.Helper()
	fn, ok := compiler.Universe[name].(*value.NativeFunc)
	require.True(t, ok, "missing universe entry for %q", name)
	return fn.Fn(args)
}

func TestOutWritesBytesAndReturnsInput(t *testing.T) {
	var buf bytes.Buffer
	orig := builtin.Stdout
	builtin.Stdout = &buf
	t.Cleanup(func() { builtin.Stdout = orig })

	s := value.NewStr("hello")
	v, err := call(t, "out", s)
	require.NoError(t, err)
	require.Equal(t, s, v)
	require.Equal(t, "hello", buf.String())
}

func TestOutRejectsNonString(t *testing.T) {
	_, err := call(t, "out", value.Number(1))
	require.Error(t, err)
}

func TestCharWrapsModulo256(t *testing.T) {
	v, err := call(t, "char", value.Number(321)) // 321 % 256 == 65 == 'A'
	require.NoError(t, err)
	require.Equal(t, "A", v.String())
}

func TestCharHandlesNegative(t *testing.T) {
	v, err := call(t, "char", value.Number(-1))
	require.NoError(t, err)
	require.Equal(t, string([]byte{255}), v.String())
}

func TestStringRendersCanonicalForm(t *testing.T) {
	v, err := call(t, "string", value.Bool(true))
	require.NoError(t, err)
	require.Equal(t, "true", v.String())

	v, err = call(t, "string", value.Null)
	require.NoError(t, err)
	require.Equal(t, "()", v.String())
}

func TestLenOfStringAndComposite(t *testing.T) {
	v, err := call(t, "len", value.NewStr("abcd"))
	require.NoError(t, err)
	require.Equal(t, value.Number(4), v)

	c := value.NewComp(2)
	c.Set("a", value.Number(1))
	c.Set("b", value.Number(2))
	v, err = call(t, "len", c)
	require.NoError(t, err)
	require.Equal(t, value.Number(2), v)
}
