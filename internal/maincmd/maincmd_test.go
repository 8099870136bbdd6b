package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ink/internal/maincmd"
)

func run(c *maincmd.Cmd, args []string) (stdout, stderr string, code mainer.ExitCode) {
	var out, err bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &err}
	code = c.Main(append([]string{"ink"}, args...), stdio)
	return out.String(), err.String(), code
}

func TestVersion(t *testing.T) {
	c := &maincmd.Cmd{BuildVersion: "1.2.3", BuildDate: "2026-01-01"}
	out, _, code := run(c, []string{"--version"})
	require.Equal(t, mainer.Success, code)
	assert.Equal(t, "ink 1.2.3 2026-01-01\n", out)

	out, _, code = run(c, []string{"version"})
	require.Equal(t, mainer.Success, code)
	assert.Equal(t, "ink 1.2.3 2026-01-01\n", out)
}

func TestHelp(t *testing.T) {
	c := &maincmd.Cmd{}
	out, _, code := run(c, []string{"--help"})
	require.Equal(t, mainer.Success, code)
	assert.Contains(t, out, "usage: ink")
	assert.Contains(t, out, "tokenize <path>...")
}

func TestEvalPrintsOutViaStdout(t *testing.T) {
	c := &maincmd.Cmd{}
	out, stderr, code := run(c, []string{"eval", "out('hello')"})
	require.Equal(t, mainer.Success, code, stderr)
	assert.Equal(t, "hello", out)
}

func TestEvalRequiresExactlyOneArg(t *testing.T) {
	c := &maincmd.Cmd{}
	_, stderr, code := run(c, []string{"eval"})
	assert.NotEqual(t, mainer.Success, code)
	assert.Contains(t, stderr, "eval: expected exactly one source string argument")
}

func TestEvalCompileErrorFails(t *testing.T) {
	c := &maincmd.Cmd{}
	_, stderr, code := run(c, []string{"eval", "x := , 1"})
	assert.NotEqual(t, mainer.Success, code)
	assert.NotEmpty(t, stderr)
}

func TestTokenizeRequiresAtLeastOneFile(t *testing.T) {
	c := &maincmd.Cmd{}
	_, stderr, code := run(c, []string{"tokenize"})
	assert.NotEqual(t, mainer.Success, code)
	assert.Contains(t, stderr, "tokenize: at least one file must be provided")
}

func TestParseRequiresAtLeastOneFile(t *testing.T) {
	c := &maincmd.Cmd{}
	_, stderr, code := run(c, []string{"parse"})
	assert.NotEqual(t, mainer.Success, code)
	assert.Contains(t, stderr, "parse: at least one file must be provided")
}

func TestCompileRequiresAtLeastOneFile(t *testing.T) {
	c := &maincmd.Cmd{}
	_, stderr, code := run(c, []string{"compile"})
	assert.NotEqual(t, mainer.Success, code)
	assert.Contains(t, stderr, "compile: at least one file must be provided")
}

func TestRunRequiresExactlyOneFile(t *testing.T) {
	c := &maincmd.Cmd{}
	_, stderr, code := run(c, []string{"run"})
	assert.NotEqual(t, mainer.Success, code)
	assert.Contains(t, stderr, "run: expected exactly one file argument")
}

func TestBarePathTreatedAsRun(t *testing.T) {
	c := &maincmd.Cmd{}
	_, stderr, code := run(c, []string{"nonexistent-file.ink"})
	assert.NotEqual(t, mainer.Success, code)
	assert.NotEmpty(t, stderr)
}

func TestUnknownSourceFileOpenError(t *testing.T) {
	c := &maincmd.Cmd{}
	_, stderr, code := run(c, []string{"run", "/does/not/exist.ink"})
	assert.NotEqual(t, mainer.Success, code)
	assert.NotEmpty(t, stderr)
}

func TestStackOverflowExitCode(t *testing.T) {
	c := &maincmd.Cmd{}
	_, _, code := run(c, []string{"eval", "f := () => f(), f()"})
	assert.EqualValues(t, 2, code)
}

func TestTokenizeFilesDirect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ink")
	require.NoError(t, os.WriteFile(path, []byte("1 + 2"), 0600))

	var out, errbuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errbuf}
	err := maincmd.TokenizeFiles(context.Background(), stdio, path)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "number literal")
	assert.Contains(t, out.String(), path+":1:1:")
}

func TestCompileFilesDirect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ink")
	require.NoError(t, os.WriteFile(path, []byte("1 + 2"), 0600))

	var out, errbuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errbuf}
	err := maincmd.CompileFiles(context.Background(), stdio, path)
	require.NoError(t, err, errbuf.String())
	assert.Contains(t, out.String(), "block 0")
}

func TestDebugFlagsPrintBeforeRunning(t *testing.T) {
	c := &maincmd.Cmd{}
	out, stderr, code := run(c, []string{"-Dl", "-Dp", "-Da", "-Dc", "-Do", "eval", "1 + 1"})
	require.Equal(t, mainer.Success, code, stderr)
	assert.Contains(t, out, "number literal")
	assert.Contains(t, out, "block 0")
}
