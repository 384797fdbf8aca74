// interp/tools.go
package interp

import (
	"fmt"
	"strings"

	"github.com/ahrtr/gocontainer/set"

	"simonwaldherr.de/go/nanolox/ast"
)

// FormatAST parses src and returns its tree as S-expressions, one top-level
// statement per line.
func FormatAST(src string) (string, error) {
	stmts, err := ParseSource(src)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := ast.Fprint(&b, stmts); err != nil {
		return "", err
	}
	return b.String(), nil
}

// VetIssue describes a potential problem found by VetSource.
type VetIssue struct {
	Line    int
	Message string
}

func (v VetIssue) String() string {
	return fmt.Sprintf("[line %d] %s", v.Line, v.Message)
}

// VetSource performs static checks without running anything: unreachable
// code after return, self-assignment, and references to globals nobody
// declares. known names extra globals a host installs beside the builtins.
// Syntax and resolution errors are returned as the error.
func VetSource(src string, known ...string) ([]VetIssue, error) {
	stmts, err := ParseSource(src)
	if err != nil {
		return nil, err
	}
	scratch := NewInterpreter()
	if err := scratch.Resolve(stmts); err != nil {
		return nil, err
	}

	var issues []VetIssue

	// Check 1: statements after a return in the same block.
	ast.Inspect(stmts, func(n any) bool {
		var body []ast.Stmt
		switch b := n.(type) {
		case *ast.Block:
			body = b.Statements
		case *ast.Function:
			body = b.Body
		default:
			return true
		}
		for i, st := range body {
			ret, ok := st.(*ast.Return)
			if !ok || i == len(body)-1 {
				continue
			}
			line := stmtLine(body[i+1])
			if line == 0 {
				line = ret.Keyword.Line
			}
			issues = append(issues, VetIssue{Line: line, Message: "unreachable code"})
			break // first one per block is enough
		}
		return true
	})

	// Check 2: self-assignment (a = a has no effect).
	ast.Inspect(stmts, func(n any) bool {
		as, ok := n.(*ast.Assign)
		if !ok {
			return true
		}
		if v, ok := as.Value.(*ast.Variable); ok && v.Name.Lexeme == as.Name.Lexeme {
			issues = append(issues, VetIssue{
				Line:    as.Name.Line,
				Message: fmt.Sprintf("self-assignment: %s = %s has no effect", as.Name.Lexeme, v.Name.Lexeme),
			})
		}
		return true
	})

	// Check 3: globals that are read or assigned but never declared at top level.
	declared := set.New()
	for _, name := range append(BuiltinNames, known...) {
		declared.Add(name)
	}
	for _, st := range stmts {
		switch d := st.(type) {
		case *ast.Var:
			declared.Add(d.Name.Lexeme)
		case *ast.Function:
			declared.Add(d.Name.Lexeme)
		case *ast.Class:
			declared.Add(d.Name.Lexeme)
		}
	}
	reported := set.New()
	ast.Inspect(stmts, func(n any) bool {
		var name string
		var line int
		switch e := n.(type) {
		case *ast.Variable:
			if _, local := scratch.locals[e]; local {
				return true
			}
			name, line = e.Name.Lexeme, e.Name.Line
		case *ast.Assign:
			if _, local := scratch.locals[e]; local {
				return true
			}
			name, line = e.Name.Lexeme, e.Name.Line
		default:
			return true
		}
		if !declared.Contains(name) && !reported.Contains(name) {
			reported.Add(name)
			issues = append(issues, VetIssue{Line: line, Message: fmt.Sprintf("reference to undeclared global '%s'", name)})
		}
		return true
	})

	return issues, nil
}

// stmtLine finds a source line for s from the first token it carries.
func stmtLine(s ast.Stmt) int {
	line := 0
	ast.Inspect(s, func(n any) bool {
		if line > 0 {
			return false
		}
		switch x := n.(type) {
		case *ast.Var:
			line = x.Name.Line
		case *ast.Function:
			line = x.Name.Line
		case *ast.Class:
			line = x.Name.Line
		case *ast.Return:
			line = x.Keyword.Line
		case *ast.Variable:
			line = x.Name.Line
		case *ast.Assign:
			line = x.Name.Line
		case *ast.Binary:
			line = x.Operator.Line
		case *ast.Logical:
			line = x.Operator.Line
		case *ast.Unary:
			line = x.Operator.Line
		case *ast.Call:
			line = x.Paren.Line
		case *ast.Get:
			line = x.Name.Line
		case *ast.Set:
			line = x.Name.Line
		case *ast.This:
			line = x.Keyword.Line
		case *ast.Super:
			line = x.Keyword.Line
		}
		return line == 0
	})
	return line
}
