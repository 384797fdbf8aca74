package interp

import (
	"strings"
	"testing"
)

func TestFormatAST(t *testing.T) {
	out, err := FormatAST("var a = 1 + 2;\nprint a;")
	if err != nil {
		t.Fatalf("FormatAST returned error: %v", err)
	}
	if out != "(var a (+ 1 2))\n(print a)\n" {
		t.Errorf("unexpected tree %q", out)
	}
}

func TestFormatASTInvalidCode(t *testing.T) {
	if _, err := FormatAST("var = ;"); err == nil {
		t.Error("expected error for invalid source, got nil")
	}
}

func TestVetSourceClean(t *testing.T) {
	src := `
var greeting = "hello";
fun greet(name) {
  var msg = greeting + " " + name;
  print msg;
  return msg;
}
greet("world");
print clock() > 0;
`
	issues, err := VetSource(src)
	if err != nil {
		t.Fatalf("VetSource error: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("expected no issues for clean code, got: %v", issues)
	}
}

func TestVetSourceUnreachableCode(t *testing.T) {
	src := `fun foo() {
  return 1;
  print "unreachable";
}
fun bar(x) {
  if (x) {
    return;
    x = x + 1;
  }
}`
	issues, err := VetSource(src)
	if err != nil {
		t.Fatalf("VetSource error: %v", err)
	}
	var got []int
	for _, issue := range issues {
		if issue.Message == "unreachable code" {
			got = append(got, issue.Line)
		}
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 8 {
		t.Errorf("expected unreachable code at lines 2 and 8, got: %v", issues)
	}
}

func TestVetSourceSelfAssignment(t *testing.T) {
	src := `var x = 1;
x = x;
x = x + 1;`
	issues, err := VetSource(src)
	if err != nil {
		t.Fatalf("VetSource error: %v", err)
	}
	if len(issues) != 1 || issues[0].Line != 2 || !strings.Contains(issues[0].Message, "self-assignment") {
		t.Errorf("expected one self-assignment issue on line 2, got: %v", issues)
	}
}

func TestVetSourceUndeclaredGlobal(t *testing.T) {
	src := `fun f() {
  return later + missing + missing;
}
var later = 1;
{ var local = 2; print local; }
other = 3;`
	issues, err := VetSource(src)
	if err != nil {
		t.Fatalf("VetSource error: %v", err)
	}
	var msgs []string
	for _, issue := range issues {
		msgs = append(msgs, issue.String())
	}
	want := []string{
		"[line 2] reference to undeclared global 'missing'",
		"[line 6] reference to undeclared global 'other'",
	}
	if strings.Join(msgs, "|") != strings.Join(want, "|") {
		t.Errorf("unexpected issues %q", msgs)
	}
}

func TestVetSourceReturnsStaticErrors(t *testing.T) {
	if _, err := VetSource("print ;"); err == nil {
		t.Error("expected syntax error")
	}
	if _, err := VetSource("return 1;"); err == nil {
		t.Error("expected resolution error")
	}
}
