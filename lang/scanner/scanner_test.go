package scanner_test

import (
	"testing"

	"github.com/mna/ink/lang/scanner"
	"github.com/mna/ink/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) ([]token.Kind, []token.Value) {
	t.Helper()

	var s scanner.Scanner
	fset := token.NewFileSet()
	f := fset.AddFile("test.ink", -1, len(src))

	var errs scanner.ErrorList
	s.Init(f, []byte(src), errs.Add)

	var kinds []token.Kind
	var vals []token.Value
	var v token.Value
	for {
		k := s.Scan(&v)
		kinds = append(kinds, k)
		vals = append(vals, v)
		if k == token.EOF {
			break
		}
	}
	require.NoError(t, errs.Err())
	return kinds, vals
}

func TestScanAtoms(t *testing.T) {
	kinds, vals := scanAll(t, `x 12 1.5 'hi' true false _`)
	require.Equal(t, []token.Kind{
		token.IDENT, token.NUMBER, token.NUMBER, token.STRING,
		token.TRUE, token.FALSE, token.EMPTY, token.EOF,
	}, kinds)
	require.Equal(t, "x", vals[0].Str)
	require.Equal(t, float64(12), vals[1].Number)
	require.Equal(t, float64(1.5), vals[2].Number)
	require.Equal(t, "hi", vals[3].Str)
}

func TestScanPunctuation(t *testing.T) {
	kinds, _ := scanAll(t, `:= :: => -> , . : ~ + - * / %`)
	require.Equal(t, []token.Kind{
		token.DEFINE, token.MATCH, token.ARROW, token.CASE, token.COMMA,
		token.DOT, token.COLON, token.TILDE, token.PLUS, token.MINUS,
		token.STAR, token.SLASH, token.MOD, token.EOF,
	}, kinds)
}

func TestScanComments(t *testing.T) {
	kinds, _ := scanAll(t, "a `inline comment` b ``line comment\nc")
	require.Equal(t, []token.Kind{token.IDENT, token.IDENT, token.IDENT, token.EOF}, kinds)
}

func TestScanIdentWithPunctuation(t *testing.T) {
	kinds, vals := scanAll(t, "empty? push! @self")
	require.Equal(t, []token.Kind{token.IDENT, token.IDENT, token.IDENT, token.EOF}, kinds)
	require.Equal(t, "empty?", vals[0].Str)
	require.Equal(t, "push!", vals[1].Str)
	require.Equal(t, "@self", vals[2].Str)
}

func TestScanStringEscapes(t *testing.T) {
	_, vals := scanAll(t, `'line\nbreak\ttab\'quote'`)
	require.Equal(t, "line\nbreak\ttab'quote", vals[0].Str)
}
