// interp/resolver.go
package interp

import (
	"strings"

	"github.com/edwingeng/deque"

	"simonwaldherr.de/go/nanolox/ast"
	"simonwaldherr.de/go/nanolox/parser"
	"simonwaldherr.de/go/nanolox/token"
)

// ResolveError is a static error found between parsing and execution.
type ResolveError struct {
	Token   token.Token
	Message string
}

func (e *ResolveError) Error() string { return parser.Format(e.Token, e.Message) }

// ResolveErrors collects every static error in a program.
type ResolveErrors []*ResolveError

func (l ResolveErrors) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

type functionKind int

const (
	funcNone functionKind = iota
	funcFunction
	funcMethod
)

type classKind int

const (
	classNone classKind = iota
	classPlain
	classSub
)

// Resolver walks the tree once before execution and tells the interpreter,
// for every local variable use, how many scopes lie between the use and the
// declaration. Each scope maps a name to whether its initializer has finished.
type Resolver struct {
	vm     *Interpreter
	scopes deque.Deque // of map[string]bool, innermost at the back
	fn     functionKind
	class  classKind
	errs   ResolveErrors
}

func NewResolver(vm *Interpreter) *Resolver {
	return &Resolver{vm: vm, scopes: deque.NewDeque()}
}

// Resolve annotates vm with scope distances for stmts.
func Resolve(vm *Interpreter, stmts []ast.Stmt) error {
	r := NewResolver(vm)
	r.resolveStmts(stmts)
	if len(r.errs) > 0 {
		return r.errs
	}
	return nil
}

func (vm *Interpreter) Resolve(stmts []ast.Stmt) error { return Resolve(vm, stmts) }

func (r *Resolver) errorAt(tok token.Token, msg string) {
	r.errs = append(r.errs, &ResolveError{Token: tok, Message: msg})
}

// ---------------- Scopes ----------------

func (r *Resolver) beginScope() { r.scopes.PushBack(map[string]bool{}) }

func (r *Resolver) endScope() { r.scopes.PopBack() }

func (r *Resolver) innermost() map[string]bool {
	if r.scopes.Empty() {
		return nil
	}
	return r.scopes.Back().(map[string]bool)
}

func (r *Resolver) declare(name token.Token) {
	scope := r.innermost()
	if scope == nil {
		return
	}
	if _, dup := scope[name.Lexeme]; dup {
		r.errorAt(name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if scope := r.innermost(); scope != nil {
		scope[name.Lexeme] = true
	}
}

// resolveLocal records the distance to the innermost scope declaring name.
// Names found in no scope are left for the globals.
func (r *Resolver) resolveLocal(e ast.Expr, name token.Token) {
	n := r.scopes.Len()
	for i := n - 1; i >= 0; i-- {
		if _, ok := r.scopes.Peek(i).(map[string]bool)[name.Lexeme]; ok {
			r.vm.resolve(e, n-1-i)
			return
		}
	}
}

// ---------------- Statements ----------------

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.Block:
		r.beginScope()
		r.resolveStmts(st.Statements)
		r.endScope()
	case *ast.Var:
		r.declare(st.Name)
		if st.Initializer != nil {
			r.resolveExpr(st.Initializer)
		}
		r.define(st.Name)
	case *ast.Function:
		r.declare(st.Name)
		r.define(st.Name)
		r.resolveFunction(st, funcFunction)
	case *ast.Class:
		r.resolveClass(st)
	case *ast.Expression:
		r.resolveExpr(st.Expression)
	case *ast.If:
		r.resolveExpr(st.Condition)
		r.resolveStmt(st.ThenBranch)
		if st.ElseBranch != nil {
			r.resolveStmt(st.ElseBranch)
		}
	case *ast.Print:
		r.resolveExpr(st.Expression)
	case *ast.Return:
		if r.fn == funcNone {
			r.errorAt(st.Keyword, "Can't return from top-level code.")
		}
		if st.Value != nil {
			r.resolveExpr(st.Value)
		}
	case *ast.While:
		r.resolveExpr(st.Condition)
		r.resolveStmt(st.Body)
	}
}

func (r *Resolver) resolveFunction(fn *ast.Function, kind functionKind) {
	enclosing := r.fn
	r.fn = kind
	defer func() { r.fn = enclosing }()

	r.beginScope()
	for _, p := range fn.Params {
		r.declare(p)
		r.define(p)
	}
	r.resolveStmts(fn.Body)
	r.endScope()
}

func (r *Resolver) resolveClass(c *ast.Class) {
	enclosing := r.class
	r.class = classPlain
	defer func() { r.class = enclosing }()

	r.declare(c.Name)
	r.define(c.Name)

	if c.Superclass != nil {
		if c.Superclass.Name.Lexeme == c.Name.Lexeme {
			r.errorAt(c.Superclass.Name, "A class can't inherit from itself.")
		}
		r.class = classSub
		r.resolveExpr(c.Superclass)
		r.beginScope()
		r.innermost()["super"] = true
	}

	r.beginScope()
	r.innermost()["this"] = true
	for _, m := range c.Methods {
		r.resolveFunction(m, funcMethod)
	}
	r.endScope()

	if c.Superclass != nil {
		r.endScope()
	}
}

// ---------------- Expressions ----------------

func (r *Resolver) resolveExpr(e ast.Expr) {
	switch ex := e.(type) {
	case *ast.Variable:
		if scope := r.innermost(); scope != nil {
			if ready, ok := scope[ex.Name.Lexeme]; ok && !ready {
				r.errorAt(ex.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(ex, ex.Name)
	case *ast.Assign:
		r.resolveExpr(ex.Value)
		r.resolveLocal(ex, ex.Name)
	case *ast.Binary:
		r.resolveExpr(ex.Left)
		r.resolveExpr(ex.Right)
	case *ast.Logical:
		r.resolveExpr(ex.Left)
		r.resolveExpr(ex.Right)
	case *ast.Unary:
		r.resolveExpr(ex.Right)
	case *ast.Grouping:
		r.resolveExpr(ex.Expression)
	case *ast.Call:
		r.resolveExpr(ex.Callee)
		for _, a := range ex.Arguments {
			r.resolveExpr(a)
		}
	case *ast.Get:
		r.resolveExpr(ex.Object)
	case *ast.Set:
		r.resolveExpr(ex.Value)
		r.resolveExpr(ex.Object)
	case *ast.This:
		if r.class == classNone {
			r.errorAt(ex.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(ex, ex.Keyword)
	case *ast.Super:
		switch r.class {
		case classNone:
			r.errorAt(ex.Keyword, "Can't use 'super' outside of a class.")
			return
		case classPlain:
			r.errorAt(ex.Keyword, "Can't use 'super' in a class with no superclass.")
			return
		}
		r.resolveLocal(ex, ex.Keyword)
	case *ast.Literal:
	}
}
