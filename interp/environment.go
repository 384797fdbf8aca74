// interp/environment.go
package interp

import (
	"context"
	"fmt"
	"io"
	"os"

	"simonwaldherr.de/go/nanolox/ast"
	"simonwaldherr.de/go/nanolox/token"
)

// Env is a lexical scope chaining to a parent environment. Scopes are shared
// by pointer: a closure and the block that created it see the same Vars.
type Env struct {
	Vars   map[string]any
	Parent *Env
}

func NewEnv(parent *Env) *Env { return &Env{Vars: map[string]any{}, Parent: parent} }

// Define binds name in this scope, replacing any previous binding.
func (e *Env) Define(name string, val any) { e.Vars[name] = val }

// Get looks name up through the chain of scopes.
func (e *Env) Get(name token.Token) (any, error) {
	for env := e; env != nil; env = env.Parent {
		if v, ok := env.Vars[name.Lexeme]; ok {
			return v, nil
		}
	}
	return nil, NewRuntimeError(name, fmt.Sprintf("Undefined variable '%s'.", name.Lexeme))
}

// Assign updates the nearest existing binding of name.
func (e *Env) Assign(name token.Token, val any) error {
	for env := e; env != nil; env = env.Parent {
		if _, ok := env.Vars[name.Lexeme]; ok {
			env.Vars[name.Lexeme] = val
			return nil
		}
	}
	return NewRuntimeError(name, fmt.Sprintf("Undefined variable '%s'.", name.Lexeme))
}

// Ancestor returns the scope distance hops up the chain.
func (e *Env) Ancestor(distance int) *Env {
	env := e
	for i := 0; i < distance && env != nil; i++ {
		env = env.Parent
	}
	return env
}

// GetAt reads name from exactly the scope distance hops up, ignoring any
// shadowing binding in between.
func (e *Env) GetAt(distance int, name string) any { return e.Ancestor(distance).Vars[name] }

func (e *Env) AssignAt(distance int, name string, val any) { e.Ancestor(distance).Vars[name] = val }

// DefaultMaxDepth is the call depth at which a script gets "Stack overflow.".
const DefaultMaxDepth = 1024

// Interpreter holds global state: the global scope, the resolver's
// side-table, host natives and the call stack.
type Interpreter struct {
	globals *Env
	locals  map[ast.Expr]int
	natives map[string]*Native
	out     io.Writer

	// frames is the stack of active user-function calls.
	frames   []*callFrame
	MaxDepth int

	ctx context.Context // set while RunContext executes
}

func NewInterpreter() *Interpreter {
	return &Interpreter{
		globals:  NewEnv(nil),
		locals:   map[ast.Expr]int{},
		natives:  map[string]*Native{},
		out:      os.Stdout,
		frames:   []*callFrame{},
		MaxDepth: DefaultMaxDepth,
	}
}

// Globals exposes the program-lifetime scope.
func (vm *Interpreter) Globals() *Env { return vm.globals }

// SetOutput redirects print statements.
func (vm *Interpreter) SetOutput(w io.Writer) { vm.out = w }

// RegisterNative installs a host function as a global callable.
func (vm *Interpreter) RegisterNative(name string, arity int, f func(args []any) (any, error)) {
	n := &Native{Name: name, Params: arity, Fn: f}
	vm.natives[name] = n
	vm.globals.Define(name, n)
}

// resolve records how many scopes separate a variable use from its binding.
func (vm *Interpreter) resolve(e ast.Expr, depth int) { vm.locals[e] = depth }

// lookupVariable reads a resolved local at its recorded distance, or falls
// back to the globals for anything the resolver left unresolved.
func (vm *Interpreter) lookupVariable(name token.Token, e ast.Expr, env *Env) (any, error) {
	if d, ok := vm.locals[e]; ok {
		return env.GetAt(d, name.Lexeme), nil
	}
	return vm.globals.Get(name)
}

// ------------------- Call frames ------------------

type callFrame struct {
	name     string
	callLine int // line of the call site in the caller
}

func (vm *Interpreter) pushFrame(name string, line int) *callFrame {
	fr := &callFrame{name: name, callLine: line}
	vm.frames = append(vm.frames, fr)
	return fr
}

func (vm *Interpreter) popFrame() *callFrame {
	if len(vm.frames) == 0 {
		return nil
	}
	fr := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	return fr
}

// trace renders the active frames innermost first, the way a runtime error
// reports them; line is where execution stopped in the innermost frame.
func (vm *Interpreter) trace(line int) []string {
	out := make([]string, 0, len(vm.frames)+1)
	for i := len(vm.frames) - 1; i >= 0; i-- {
		fr := vm.frames[i]
		out = append(out, fmt.Sprintf("[line %d] in %s()", line, fr.name))
		line = fr.callLine
	}
	return append(out, fmt.Sprintf("[line %d] in script", line))
}
