package main

import (
	"io"
	"strings"
	"testing"

	"simonwaldherr.de/go/nanolox/config"
	"simonwaldherr.de/go/nanolox/runtime"
)

// scriptedReader replays canned lines and records the prompts shown.
type scriptedReader struct {
	lines   []string
	prompts []string
}

func (r *scriptedReader) Prompt(p string) (string, error) {
	r.prompts = append(r.prompts, p)
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func newTestSession() (*session, *strings.Builder, *strings.Builder) {
	var out, errw strings.Builder
	console := runtime.NewConsole(&out, &errw, false)
	return newSession(&out, console, config.Default()), &out, &errw
}

func TestNeedsMore(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"print 1;", false},
		{"1 + 2", false},
		{"fun f() {", true},
		{"fun f() {\n  return 1;", true},
		{"fun f() {\n  return 1;\n}", false},
		{"var s = \"multi", true},
		{"print );", false},
		{"", false},
	}
	for _, c := range cases {
		if got := needsMore(c.in); got != c.want {
			t.Errorf("needsMore(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestReadByParseProbeJoinsLines(t *testing.T) {
	r := &scriptedReader{lines: []string{"fun add(a, b) {", "  return a + b;", "}", "print add(1, 2);"}}
	code, ok := readByParseProbe(r, promptMain, promptCont)
	if !ok || code != "fun add(a, b) {\n  return a + b;\n}" {
		t.Fatalf("unexpected entry %q (ok=%v)", code, ok)
	}
	if strings.Join(r.prompts, "|") != "> |. |. " {
		t.Errorf("unexpected prompts %q", r.prompts)
	}
	code, ok = readByParseProbe(r, promptMain, promptCont)
	if !ok || code != "print add(1, 2);" {
		t.Fatalf("unexpected entry %q", code)
	}
	if _, ok := readByParseProbe(r, promptMain, promptCont); ok {
		t.Error("expected end of input")
	}
}

func TestReadByParseProbeFlushesAtEOF(t *testing.T) {
	r := &scriptedReader{lines: []string{"{ print 1;"}}
	code, ok := readByParseProbe(r, promptMain, promptCont)
	if !ok || code != "{ print 1;" {
		t.Errorf("pending input should be returned at EOF, got %q (ok=%v)", code, ok)
	}
}

func TestSessionKeepsGlobals(t *testing.T) {
	s, out, errw := newTestSession()
	for _, entry := range []string{"var a = 20;", "fun twice(x) { return x * 2; }", "print twice(a) + 2;", "twice(a)"} {
		if s.eval(entry) {
			t.Fatalf("%q ended the session", entry)
		}
	}
	if out.String() != "42\n40\n" {
		t.Errorf("unexpected output %q", out.String())
	}
	if errw.Len() != 0 {
		t.Errorf("unexpected diagnostics %q", errw.String())
	}
}

func TestSessionSurvivesErrors(t *testing.T) {
	s, out, errw := newTestSession()
	s.eval("print ;")
	s.eval("print nil + 1;")
	s.eval("this")
	s.eval("print \"still here\";")
	if out.String() != "still here\n" {
		t.Errorf("unexpected output %q", out.String())
	}
	got := errw.String()
	for _, want := range []string{
		"[line 1] Error at ';': Expect expression.",
		"[line 1] Runtime error: Operands must be two numbers or two strings.",
		"Can't use 'this' outside of a class.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
	if s.console.HadError.IsSet() || s.console.HadRuntimeError.IsSet() {
		t.Error("flags should be cleared by the last successful entry")
	}
}

func TestCommands(t *testing.T) {
	s, out, _ := newTestSession()
	if s.eval(":ast") {
		t.Fatal(":ast should not exit")
	}
	s.eval("var x = 1 + 2;")
	if !strings.Contains(out.String(), "syntax tree echo on\n(var x (+ 1 2))\n") {
		t.Errorf("unexpected output %q", out.String())
	}
	s.eval(":bogus")
	if !strings.Contains(out.String(), "unknown command") {
		t.Errorf("unknown command not reported: %q", out.String())
	}
	if !s.eval(":quit") {
		t.Error(":quit should end the session")
	}
}

func TestHistoryPath(t *testing.T) {
	if got := historyPath("/tmp/hist"); got != "/tmp/hist" {
		t.Errorf("absolute path changed to %q", got)
	}
	if got := historyPath(""); got != "" {
		t.Errorf("empty path changed to %q", got)
	}
	if got := historyPath(".nanolox_history"); !strings.HasSuffix(got, ".nanolox_history") {
		t.Errorf("unexpected path %q", got)
	}
}
