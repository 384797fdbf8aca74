package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Fprint writes one parenthesized S-expression per top-level statement.
func Fprint(w io.Writer, stmts []Stmt) error {
	for _, s := range stmts {
		if _, err := fmt.Fprintln(w, String(s)); err != nil {
			return err
		}
	}
	return nil
}

// String renders a single Expr or Stmt, e.g. (+ 1 (group (* 2 3))).
func String(node any) string {
	var b strings.Builder
	p := &printer{b: &b}
	switch n := node.(type) {
	case Expr:
		p.expr(n)
	case Stmt:
		p.stmt(n)
	default:
		fmt.Fprintf(&b, "<%T>", node)
	}
	return b.String()
}

type printer struct{ b *strings.Builder }

func (p *printer) open(name string) { p.b.WriteByte('('); p.b.WriteString(name) }
func (p *printer) close()           { p.b.WriteByte(')') }
func (p *printer) word(s string)    { p.b.WriteByte(' '); p.b.WriteString(s) }

func (p *printer) paren(name string, exprs ...Expr) {
	p.open(name)
	for _, e := range exprs {
		p.b.WriteByte(' ')
		p.expr(e)
	}
	p.close()
}

func (p *printer) expr(e Expr) {
	switch x := e.(type) {
	case *Assign:
		p.open("=")
		p.word(x.Name.Lexeme)
		p.b.WriteByte(' ')
		p.expr(x.Value)
		p.close()
	case *Binary:
		p.paren(x.Operator.Lexeme, x.Left, x.Right)
	case *Call:
		p.paren("call", append([]Expr{x.Callee}, x.Arguments...)...)
	case *Get:
		p.open(".")
		p.b.WriteByte(' ')
		p.expr(x.Object)
		p.word(x.Name.Lexeme)
		p.close()
	case *Grouping:
		p.paren("group", x.Expression)
	case *Literal:
		p.b.WriteString(literalString(x.Value))
	case *Logical:
		p.paren(x.Operator.Lexeme, x.Left, x.Right)
	case *Set:
		p.open("set")
		p.b.WriteByte(' ')
		p.expr(x.Object)
		p.word(x.Name.Lexeme)
		p.b.WriteByte(' ')
		p.expr(x.Value)
		p.close()
	case *Super:
		p.open("super")
		p.word(x.Method.Lexeme)
		p.close()
	case *This:
		p.b.WriteString("this")
	case *Unary:
		p.paren(x.Operator.Lexeme, x.Right)
	case *Variable:
		p.b.WriteString(x.Name.Lexeme)
	default:
		fmt.Fprintf(p.b, "<%T>", e)
	}
}

func (p *printer) stmt(s Stmt) {
	switch x := s.(type) {
	case *Block:
		p.open("block")
		p.stmts(x.Statements)
		p.close()
	case *Class:
		p.open("class")
		p.word(x.Name.Lexeme)
		if x.Superclass != nil {
			p.word("<")
			p.word(x.Superclass.Name.Lexeme)
		}
		for _, m := range x.Methods {
			p.b.WriteByte(' ')
			p.stmt(m)
		}
		p.close()
	case *Expression:
		p.paren(";", x.Expression)
	case *Function:
		p.open("fun")
		p.word(x.Name.Lexeme)
		p.b.WriteString(" (")
		for i, param := range x.Params {
			if i > 0 {
				p.b.WriteByte(' ')
			}
			p.b.WriteString(param.Lexeme)
		}
		p.b.WriteByte(')')
		p.stmts(x.Body)
		p.close()
	case *If:
		if x.ElseBranch == nil {
			p.open("if")
		} else {
			p.open("if-else")
		}
		p.b.WriteByte(' ')
		p.expr(x.Condition)
		p.b.WriteByte(' ')
		p.stmt(x.ThenBranch)
		if x.ElseBranch != nil {
			p.b.WriteByte(' ')
			p.stmt(x.ElseBranch)
		}
		p.close()
	case *Print:
		p.paren("print", x.Expression)
	case *Return:
		if x.Value == nil {
			p.b.WriteString("(return)")
			return
		}
		p.paren("return", x.Value)
	case *Var:
		p.open("var")
		p.word(x.Name.Lexeme)
		if x.Initializer != nil {
			p.b.WriteByte(' ')
			p.expr(x.Initializer)
		}
		p.close()
	case *While:
		p.open("while")
		p.b.WriteByte(' ')
		p.expr(x.Condition)
		p.b.WriteByte(' ')
		p.stmt(x.Body)
		p.close()
	default:
		fmt.Fprintf(p.b, "<%T>", s)
	}
}

func (p *printer) stmts(list []Stmt) {
	for _, s := range list {
		p.b.WriteByte(' ')
		p.stmt(s)
	}
}

func literalString(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return strconv.Quote(x)
	}
	return fmt.Sprintf("%v", v)
}
