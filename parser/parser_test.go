package parser

import (
	"errors"
	"strings"
	"testing"

	"simonwaldherr.de/go/nanolox/ast"
	"simonwaldherr.de/go/nanolox/scanner"
)

func parseSource(t *testing.T, src string) ([]ast.Stmt, error) {
	t.Helper()
	toks, err := scanner.Scan(src)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	return Parse(toks)
}

func mustParse(t *testing.T, src string) string {
	t.Helper()
	stmts, err := parseSource(t, src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var b strings.Builder
	if err := ast.Fprint(&b, stmts); err != nil {
		t.Fatal(err)
	}
	return strings.TrimSpace(b.String())
}

func errorList(t *testing.T, err error) ErrorList {
	t.Helper()
	var list ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("expected ErrorList, got %T (%v)", err, err)
	}
	return list
}

func TestPrecedenceAndAssociativity(t *testing.T) {
	cases := []struct{ src, want string }{
		{"1 + 2 * 3;", "(; (+ 1 (* 2 3)))"},
		{"(1 + 2) * 3;", "(; (* (group (+ 1 2)) 3))"},
		{"1 - 2 - 3;", "(; (- (- 1 2) 3))"},
		{"8 / 4 / 2;", "(; (/ (/ 8 4) 2))"},
		{"!!true;", "(; (! (! true)))"},
		{"-a * b;", "(; (* (- a) b))"},
		{"1 < 2 == 3 >= 4;", "(; (== (< 1 2) (>= 3 4)))"},
		{"a or b and c;", "(; (or a (and b c)))"},
		{"a = b = c;", "(; (= a (= b c)))"},
		{"f(1)(2);", "(; (call (call f 1) 2))"},
		{"a.b.c = 3;", "(; (set (. a b) c 3))"},
		{"obj.method(x).field;", "(; (. (call (. obj method) x) field))"},
	}
	for _, c := range cases {
		if got := mustParse(t, c.src); got != c.want {
			t.Errorf("%s: want %s, got %s", c.src, c.want, got)
		}
	}
}

func TestStatements(t *testing.T) {
	cases := []struct{ src, want string }{
		{"var a;", "(var a)"},
		{"var a = \"x\";", "(var a \"x\")"},
		{"print nil;", "(print nil)"},
		{"{ var a = 1; print a; }", "(block (var a 1) (print a))"},
		{"if (a) print 1; else print 2;", "(if-else a (print 1) (print 2))"},
		{"if (a) if (b) print 1; else print 2;", "(if a (if-else b (print 1) (print 2)))"},
		{"while (a) a = a - 1;", "(while a (; (= a (- a 1))))"},
		{"fun f(a, b) { return a + b; }", "(fun f (a b) (return (+ a b)))"},
		{"fun g() { return; }", "(fun g () (return))"},
		{"class A {}", "(class A)"},
		{"class B < A { m() { return this; } }", "(class B < A (fun m () (return this)))"},
		{"class C < B { m() { return super.m; } }", "(class C < B (fun m () (return (super m))))"},
	}
	for _, c := range cases {
		if got := mustParse(t, c.src); got != c.want {
			t.Errorf("%s: want %s, got %s", c.src, c.want, got)
		}
	}
}

func TestForDesugaring(t *testing.T) {
	cases := []struct{ src, want string }{
		{
			"for (var i = 0; i < 3; i = i + 1) print i;",
			"(block (var i 0) (while (< i 3) (block (print i) (; (= i (+ i 1))))))",
		},
		{"for (;;) print 1;", "(while true (print 1))"},
		{"for (i = 0; i < 1;) print i;", "(block (; (= i 0)) (while (< i 1) (print i)))"},
	}
	for _, c := range cases {
		if got := mustParse(t, c.src); got != c.want {
			t.Errorf("%s: want %s, got %s", c.src, c.want, got)
		}
	}
}

func TestSynchronizeReportsOncePerStatement(t *testing.T) {
	_, err := parseSource(t, "print ; var = 1; print 3;")
	list := errorList(t, err)
	if len(list) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(list), list)
	}
	if list[0].Message != "Expect expression." || list[1].Message != "Expect variable name." {
		t.Errorf("unexpected messages: %v", list)
	}
}

func TestRecoveryKeepsValidStatements(t *testing.T) {
	stmts, err := parseSource(t, "var a = ;\nprint 1;\nfun (x) {}\nprint 2;")
	list := errorList(t, err)
	if len(list) != 2 {
		t.Fatalf("expected 2 errors, got %v", list)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected the two print statements to survive, got %d", len(stmts))
	}
	if list[0].Token.Line != 1 || list[1].Token.Line != 3 {
		t.Errorf("unexpected error lines: %v", list)
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	_, err := parseSource(t, "a + b = c; print 1;")
	list := errorList(t, err)
	if len(list) != 1 || list[0].Message != "Invalid assignment target." || list[0].Token.Lexeme != "=" {
		t.Fatalf("unexpected errors: %v", list)
	}
}

func TestErrorRendering(t *testing.T) {
	_, err := parseSource(t, "print 1")
	list := errorList(t, err)
	if got := list[0].Error(); got != "[line 1] Error at end: Expect ';' after value." {
		t.Errorf("unexpected rendering %q", got)
	}
	_, err = parseSource(t, "var 1 = 2;")
	list = errorList(t, err)
	if got := list[0].Error(); got != "[line 1] Error at '1': Expect variable name." {
		t.Errorf("unexpected rendering %q", got)
	}
}

func TestTooManyArguments(t *testing.T) {
	args := make([]string, 256)
	for i := range args {
		args[i] = "1"
	}
	_, err := parseSource(t, "f("+strings.Join(args, ", ")+");")
	list := errorList(t, err)
	if len(list) != 1 || list[0].Message != "Can't have more than 255 arguments." {
		t.Fatalf("unexpected errors: %v", list)
	}

	params := make([]string, 256)
	for i := range params {
		params[i] = "p" + strings.Repeat("x", i)
	}
	_, err = parseSource(t, "fun f("+strings.Join(params, ", ")+") {}")
	list = errorList(t, err)
	if len(list) != 1 || list[0].Message != "Can't have more than 255 parameters." {
		t.Fatalf("unexpected errors: %v", list)
	}
}

func TestIsIncomplete(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"fun f() {", true},
		{"print 1", true},
		{"{ var a = 1;", true},
		{"print );", false},
		{"print 1;", false},
	}
	for _, c := range cases {
		_, err := parseSource(t, c.src)
		if got := IsIncomplete(err); got != c.want {
			t.Errorf("%q: IsIncomplete = %v, want %v (err %v)", c.src, got, c.want, err)
		}
	}
}

func TestParseExpression(t *testing.T) {
	toks, _ := scanner.Scan("1 + 2 * x")
	e, err := ParseExpression(toks)
	if err != nil {
		t.Fatalf("ParseExpression failed: %v", err)
	}
	if got := ast.String(e); got != "(+ 1 (* 2 x))" {
		t.Errorf("unexpected tree %s", got)
	}
	toks, _ = scanner.Scan("1 +")
	if _, err := ParseExpression(toks); err == nil {
		t.Error("expected error for dangling operator")
	}
}

func TestParseWithoutEOF(t *testing.T) {
	toks, _ := scanner.Scan("print 1;")
	stmts, err := Parse(toks[:len(toks)-1])
	if err != nil || len(stmts) != 1 {
		t.Fatalf("expected one statement, got %d (%v)", len(stmts), err)
	}
}
