package ast

import (
	"strings"
	"testing"

	"simonwaldherr.de/go/nanolox/token"
)

func tok(kind token.Kind, lexeme string) token.Token { return token.New(kind, lexeme, nil, 1) }

func TestStringExpressions(t *testing.T) {
	cases := []struct {
		node Expr
		want string
	}{
		{
			&Binary{
				Left:     &Unary{Operator: tok(token.Minus, "-"), Right: &Literal{Value: 123.0}},
				Operator: tok(token.Star, "*"),
				Right:    &Grouping{Expression: &Literal{Value: 45.67}},
			},
			"(* (- 123) (group 45.67))",
		},
		{&Literal{Value: "hi"}, `"hi"`},
		{&Literal{Value: nil}, "nil"},
		{&Assign{Name: tok(token.Identifier, "a"), Value: &Literal{Value: true}}, "(= a true)"},
		{
			&Call{Callee: &Variable{Name: tok(token.Identifier, "f")}, Arguments: []Expr{&Literal{Value: 1.0}, &Literal{Value: 2.0}}},
			"(call f 1 2)",
		},
		{
			&Set{Object: &This{Keyword: tok(token.This, "this")}, Name: tok(token.Identifier, "x"), Value: &Literal{Value: 0.0}},
			"(set this x 0)",
		},
		{
			&Logical{Left: &Variable{Name: tok(token.Identifier, "a")}, Operator: tok(token.Or, "or"), Right: &Get{Object: &Variable{Name: tok(token.Identifier, "b")}, Name: tok(token.Identifier, "c")}},
			"(or a (. b c))",
		},
	}
	for _, c := range cases {
		if got := String(c.node); got != c.want {
			t.Errorf("want %s, got %s", c.want, got)
		}
	}
}

func TestFprintStatements(t *testing.T) {
	stmts := []Stmt{
		&Var{Name: tok(token.Identifier, "a"), Initializer: &Literal{Value: 1.0}},
		&Function{
			Name:   tok(token.Identifier, "add"),
			Params: []token.Token{tok(token.Identifier, "x"), tok(token.Identifier, "y")},
			Body: []Stmt{&Return{Keyword: tok(token.Return, "return"), Value: &Binary{
				Left: &Variable{Name: tok(token.Identifier, "x")}, Operator: tok(token.Plus, "+"), Right: &Variable{Name: tok(token.Identifier, "y")},
			}}},
		},
		&If{Condition: &Literal{Value: false}, ThenBranch: &Print{Expression: &Literal{Value: 1.0}}, ElseBranch: &Block{}},
		&While{Condition: &Literal{Value: true}, Body: &Expression{Expression: &Variable{Name: tok(token.Identifier, "a")}}},
		&Class{Name: tok(token.Identifier, "B"), Superclass: &Variable{Name: tok(token.Identifier, "A")}},
	}
	var b strings.Builder
	if err := Fprint(&b, stmts); err != nil {
		t.Fatalf("Fprint failed: %v", err)
	}
	want := strings.Join([]string{
		"(var a 1)",
		"(fun add (x y) (return (+ x y)))",
		"(if-else false (print 1) (block))",
		"(while true (; a))",
		"(class B < A)",
	}, "\n") + "\n"
	if b.String() != want {
		t.Errorf("want\n%s\ngot\n%s", want, b.String())
	}
}
