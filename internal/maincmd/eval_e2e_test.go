package maincmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ink/lang/value"
)

func evalForTest(t *testing.T, src string) (string, value.Value) {
	t.Helper()
	var out, errbuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errbuf}
	c := &Cmd{}
	result, err := c.evalSource(context.Background(), stdio, "<test>", []byte(src))
	require.NoError(t, err, errbuf.String())
	return out.String(), result
}

func TestEndToEndHelloWorld(t *testing.T) {
	out, result := evalForTest(t, "out('hello')")
	assert.Equal(t, "hello", out)
	assert.Equal(t, "'hello'", value.Repr(result))
}

func TestEndToEndArithmetic(t *testing.T) {
	out, result := evalForTest(t, "x := 3, y := 4, out(string(x + y * 2))")
	assert.Equal(t, "11", out)
	assert.Equal(t, "'11'", value.Repr(result))
}

func TestEndToEndClosureCapturesByReference(t *testing.T) {
	out, _ := evalForTest(t, "make := n => () => n, f := make(42), out(string(f()))")
	assert.Equal(t, "42", out)
}

func TestEndToEndMovThroughEscapedVisibility(t *testing.T) {
	out, _ := evalForTest(t, "cnt := 0, inc := () => cnt := cnt + 1, inc(), inc(), inc(), out(string(cnt))")
	assert.Equal(t, "3", out)
}

func TestEndToEndMatchExpr(t *testing.T) {
	out, result := evalForTest(t, "x := 2, out(x :: {1 -> 'one', 2 -> 'two', _ -> 'other'})")
	assert.Equal(t, "two", out)
	assert.Equal(t, "'two'", value.Repr(result))
}

func TestEndToEndListIndexAndLen(t *testing.T) {
	out, result := evalForTest(t, "lst := [10,20,30], out(string(lst.1 + len(lst)))")
	assert.Equal(t, "23", out)
	assert.Equal(t, "'23'", value.Repr(result))
}
