// Package scanner turns Lox source text into the token stream consumed by
// the parser.
package scanner

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"simonwaldherr.de/go/nanolox/token"
)

// Error is a lexical error at a source line.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message) }

// ErrorList collects every lexical error found in one pass.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var b strings.Builder
	for i, e := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

// Err returns nil for an empty list so callers can return it directly.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

type scanner struct {
	src     string
	start   int
	current int
	line    int
	tokens  []token.Token
	errs    ErrorList
}

// Scan tokenizes src. The returned slice always ends with an EOF token, even
// when errors were reported; the error, if any, is an ErrorList.
func Scan(src string) ([]token.Token, error) {
	s := &scanner{src: src, line: 1}
	for !s.atEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, token.New(token.EOF, "", nil, s.line))
	return s.tokens, s.errs.Err()
}

func (s *scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.add(token.LeftParen)
	case ')':
		s.add(token.RightParen)
	case '{':
		s.add(token.LeftBrace)
	case '}':
		s.add(token.RightBrace)
	case ',':
		s.add(token.Comma)
	case '.':
		s.add(token.Dot)
	case '-':
		s.add(token.Minus)
	case '+':
		s.add(token.Plus)
	case ';':
		s.add(token.Semicolon)
	case '*':
		s.add(token.Star)
	case '!':
		s.add(s.pick('=', token.BangEqual, token.Bang))
	case '=':
		s.add(s.pick('=', token.EqualEqual, token.Equal))
	case '<':
		s.add(s.pick('=', token.LessEqual, token.Less))
	case '>':
		s.add(s.pick('=', token.GreaterEqual, token.Greater))
	case '/':
		if s.match('/') {
			for s.peek() != '\n' && !s.atEnd() {
				s.advance()
			}
		} else {
			s.add(token.Slash)
		}
	case ' ', '\r', '\t':
	case '\n':
		s.line++
	case '"':
		s.stringLit()
	default:
		switch {
		case isDigit(c):
			s.number()
		case isAlpha(c):
			s.identifier()
		case c >= utf8.RuneSelf:
			// One diagnostic per character, not per byte.
			_, size := utf8.DecodeRuneInString(s.src[s.start:])
			s.current = s.start + size
			s.errorf("Unexpected character.")
		default:
			s.errorf("Unexpected character.")
		}
	}
}

func (s *scanner) stringLit() {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		s.errorf("Unterminated string.")
		return
	}
	s.advance() // closing quote
	s.addLiteral(token.String, s.src[s.start+1:s.current-1])
}

func (s *scanner) number() {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	v, err := strconv.ParseFloat(s.src[s.start:s.current], 64)
	if err != nil {
		s.errorf("Invalid number literal.")
		return
	}
	s.addLiteral(token.Number, v)
}

func (s *scanner) identifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	if kind, ok := token.Keywords[s.src[s.start:s.current]]; ok {
		s.add(kind)
		return
	}
	s.add(token.Identifier)
}

func (s *scanner) pick(next byte, yes, no token.Kind) token.Kind {
	if s.match(next) {
		return yes
	}
	return no
}

func (s *scanner) match(expected byte) bool {
	if s.atEnd() || s.src[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *scanner) add(kind token.Kind) { s.addLiteral(kind, nil) }

func (s *scanner) addLiteral(kind token.Kind, lit any) {
	s.tokens = append(s.tokens, token.New(kind, s.src[s.start:s.current], lit, s.line))
}

func (s *scanner) errorf(format string, args ...any) {
	s.errs = append(s.errs, &Error{Line: s.line, Message: fmt.Sprintf(format, args...)})
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c byte) bool { return isAlpha(c) || isDigit(c) }
