// Some of the scanner package is adapted from the Go source code:
// https://cs.opensource.google/go/go/+/refs/tags/go1.22.1:src/go/scanner/scanner.go
//
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scanner

import (
	"bytes"
	"context"
	"fmt"
	"go/scanner"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mna/ink/lang/token"
)

type (
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

var PrintError = scanner.PrintError

// TokenAndValue combines the token kind with its literal value, if any, in
// the same struct.
type TokenAndValue struct {
	Kind  token.Kind
	Value token.Value
	Pos   token.Pos
}

// ScanFiles is a helper function that tokenizes the source files and returns
// the list of tokens, grouped by the file at the same index, and produces any
// error encountered. The error, if non-nil, is guaranteed to be an
// ErrorList.
func ScanFiles(ctx context.Context, files ...string) (*token.FileSet, [][]TokenAndValue, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var (
		s      Scanner
		tokVal token.Value
		el     ErrorList
	)

	fs := token.NewFileSet()
	tokensByFile := make([][]TokenAndValue, len(files))
	for i, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		fsf := fs.AddFile(file, -1, len(b))
		s.Init(fsf, b, el.Add)
		for {
			pos := fsf.Pos(s.off)
			kind := s.Scan(&tokVal)
			tokensByFile[i] = append(tokensByFile[i], TokenAndValue{Kind: kind, Value: tokVal, Pos: pos})
			if kind == token.EOF {
				break
			}
		}
	}
	el.Sort()
	return fs, tokensByFile, el.Err()
}

// Scanner tokenizes Ink source for the parser to consume.
type Scanner struct {
	// immutable state after Init
	file *token.File
	src  []byte
	err  func(pos token.Position, msg string)

	// mutable scanning state
	sb          strings.Builder
	invalidByte byte
	cur         rune
	off         int
	roff        int
}

var bom = [2]byte{0xEF, 0xBB}

// Init initializes the scanner to tokenize a new file. It panics if the file
// size is not the same as the length of the src slice.
func (s *Scanner) Init(file *token.File, src []byte, errHandler func(token.Position, string)) {
	if file.Size() != len(src) {
		panic(fmt.Sprintf("file size (%d) does not match src len (%d)", file.Size(), len(src)))
	}

	s.file = file
	s.src = src
	s.err = errHandler

	s.sb.Reset()
	s.invalidByte = 0
	s.cur = ' '
	s.off = 0
	s.roff = 0

	if len(src) >= len(bom) && bytes.Equal(src[:len(bom)], bom[:]) {
		s.off += len(bom)
		s.roff += len(bom)
	}
	s.advance()
}

// Pos reports the file position the next call to Scan will start reading
// from (before any leading whitespace or comments are skipped), the same
// convention ScanFiles uses to timestamp each token.
func (s *Scanner) Pos() token.Pos { return s.file.Pos(s.off) }

func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

// advance reads the next Unicode char into s.cur; s.cur < 0 means
// end-of-file.
func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		if s.cur == '\n' {
			s.file.AddLine(s.off)
		}
		s.cur = -1
		return
	}

	s.off = s.roff
	if s.cur == '\n' {
		s.file.AddLine(s.off)
	}

	s.invalidByte = 0
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.off, "illegal UTF-8 encoding")
			s.invalidByte = s.src[s.roff]
		}
	}
	s.roff += w
	s.cur = r
}

func (s *Scanner) error(off int, msg string) {
	if s.err != nil {
		s.err(s.file.Position(s.file.Pos(off)), msg)
	}
}

func (s *Scanner) errorf(off int, format string, args ...any) {
	s.error(off, fmt.Sprintf(format, args...))
}

func (s *Scanner) advanceIf(match byte) bool {
	if s.cur == rune(match) {
		s.advance()
		return true
	}
	return false
}

// Scan returns the next token's kind in the source file, filling tokVal with
// its literal payload, if any.
func (s *Scanner) Scan(tokVal *token.Value) (kind token.Kind) {
	s.skipIgnored()

	start := s.off
	switch cur := s.cur; {
	case isIdentStart(cur):
		lit := s.ident()
		switch lit {
		case "_":
			kind = token.EMPTY
		case "true":
			kind = token.TRUE
		case "false":
			kind = token.FALSE
		default:
			kind = token.IDENT
		}
		*tokVal = token.Value{Str: lit}

	case isDigit(cur) || (cur == '.' && isDigit(rune(s.peek()))):
		lit := s.number()
		kind = token.NUMBER
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			s.error(start, "invalid number literal")
		}
		*tokVal = token.Value{Str: lit, Number: v}

	case cur == '\'':
		kind = token.STRING
		*tokVal = token.Value{Str: s.quotedString()}

	default:
		s.advance() // always make progress
		switch cur {
		case ':':
			kind = token.COLON
			if s.advanceIf(':') {
				kind = token.MATCH
			} else if s.advanceIf('=') {
				kind = token.DEFINE
			}
		case '=':
			kind = token.EQL
			if s.advanceIf('>') {
				kind = token.ARROW
			}
		case '-':
			kind = token.MINUS
			if s.advanceIf('>') {
				kind = token.CASE
			}
		case ',':
			kind = token.COMMA
		case '.':
			kind = token.DOT
		case '+':
			kind = token.PLUS
		case '*':
			kind = token.STAR
		case '/':
			kind = token.SLASH
		case '%':
			kind = token.MOD
		case '&':
			kind = token.AMP
		case '|':
			kind = token.PIPE
		case '^':
			kind = token.CARET
		case '~':
			kind = token.TILDE
		case '>':
			kind = token.GTR
		case '<':
			kind = token.LSS
		case '(':
			kind = token.LPAREN
		case ')':
			kind = token.RPAREN
		case '{':
			kind = token.LBRACE
		case '}':
			kind = token.RBRACE
		case '[':
			kind = token.LBRACK
		case ']':
			kind = token.RBRACK
		case -1:
			kind = token.EOF
		default:
			if cur == utf8.RuneError && s.invalidByte > 0 {
				cur = rune(s.invalidByte)
				s.invalidByte = 0
			}
			s.errorf(start, "illegal character %#U", cur)
			kind = token.ILLEGAL
		}
		*tokVal = token.Value{Str: kind.String()}
	}
	return kind
}

// skipIgnored consumes whitespace and comments. A backtick opens an inline
// comment closed by the next backtick; two consecutive backticks open a
// comment that runs to the end of the line.
func (s *Scanner) skipIgnored() {
	for {
		switch {
		case isWhitespace(s.cur):
			s.advance()
		case s.cur == '`':
			s.advance()
			if s.advanceIf('`') {
				for s.cur != '\n' && s.cur != -1 {
					s.advance()
				}
				continue
			}
			for s.cur != '`' && s.cur != -1 {
				s.advance()
			}
			s.advanceIf('`')
		default:
			return
		}
	}
}

func (s *Scanner) ident() string {
	start := s.off
	for isIdentPart(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func (s *Scanner) number() string {
	start := s.off
	for isDigit(s.cur) {
		s.advance()
	}
	if s.cur == '.' && isDigit(rune(s.peek())) {
		s.advance()
		for isDigit(s.cur) {
			s.advance()
		}
	}
	return string(s.src[start:s.off])
}

// quotedString scans a single-quoted string literal, processing the escapes
// `\n`, `\t`, `\\` and `\'`; for any other backslash escape the backslash
// is dropped and the character after it is kept as is.
func (s *Scanner) quotedString() string {
	start := s.off
	s.advance() // opening quote
	s.sb.Reset()
	for s.cur != '\'' && s.cur != -1 {
		if s.cur == '\\' {
			s.advance()
			switch s.cur {
			case 'n':
				s.sb.WriteByte('\n')
			case 't':
				s.sb.WriteByte('\t')
			case '\\':
				s.sb.WriteByte('\\')
			case '\'':
				s.sb.WriteByte('\'')
			default:
				s.sb.WriteRune(s.cur)
			}
			s.advance()
			continue
		}
		s.sb.WriteRune(s.cur)
		s.advance()
	}
	if s.cur != '\'' {
		s.error(start, "string literal not terminated")
	} else {
		s.advance()
	}
	return s.sb.String()
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isIdentStart(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_' || r == '@'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r) || r == '?' || r == '!' || r == '@'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
