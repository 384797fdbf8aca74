package parser

import (
	"errors"
	"fmt"
	"strings"

	"simonwaldherr.de/go/nanolox/token"
)

// Error is a syntax error anchored at the offending token.
type Error struct {
	Token   token.Token
	Message string
}

func (e *Error) Error() string { return Format(e.Token, e.Message) }

// Format renders a token-anchored diagnostic the way every static phase
// reports it: "[line N] Error at 'x': message", or "at end" for EOF.
func Format(tok token.Token, msg string) string {
	if tok.Kind == token.EOF {
		return fmt.Sprintf("[line %d] Error at end: %s", tok.Line, msg)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", tok.Line, tok.Lexeme, msg)
}

// ErrorList is the error returned by Parse; one entry per broken statement.
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

func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// IsIncomplete reports whether err only complains about running into EOF,
// i.e. more input could still turn it into a valid program.
func IsIncomplete(err error) bool {
	var list ErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		return false
	}
	for _, e := range list {
		if e.Token.Kind != token.EOF {
			return false
		}
	}
	return true
}
