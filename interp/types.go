// interp/types.go
package interp

import (
	"fmt"
	"math"
	"strconv"

	"simonwaldherr.de/go/nanolox/ast"
	"simonwaldherr.de/go/nanolox/token"
)

// RuntimeError is a fault raised while executing a script. Trace lists the
// active call frames, innermost first.
type RuntimeError struct {
	Token   token.Token
	Message string
	Trace   []string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d] Runtime error: %s", e.Token.Line, e.Message)
}

func NewRuntimeError(tok token.Token, msg string) *RuntimeError {
	return &RuntimeError{Token: tok, Message: msg}
}

// Values are plain Go values: nil, bool, float64, string, or one of the
// pointer types below.

// Callable is implemented by everything a call expression can invoke.
type Callable interface {
	Arity() int
	Call(vm *Interpreter, args []any) (any, error)
}

// Native is a host function exposed to scripts.
type Native struct {
	Name   string
	Params int
	Fn     func(args []any) (any, error)
}

func (n *Native) Arity() int { return n.Params }

func (n *Native) Call(_ *Interpreter, args []any) (any, error) { return n.Fn(args) }

func (n *Native) String() string { return "<native fn " + n.Name + ">" }

// Function is a user-defined function closed over the scope it was
// declared in.
type Function struct {
	Decl    *ast.Function
	Closure *Env
}

func (f *Function) Arity() int { return len(f.Decl.Params) }

func (f *Function) Call(vm *Interpreter, args []any) (any, error) { return vm.callFunction(f, args) }

func (f *Function) Name() string { return f.Decl.Name.Lexeme }

func (f *Function) String() string { return "<fn " + f.Name() + ">" }

// Class constructs instances when called. Superclass and Methods are kept
// for a method-dispatch layer; property lookup ignores them.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (c *Class) Arity() int { return 0 }

func (c *Class) Call(_ *Interpreter, _ []any) (any, error) {
	return &Instance{Class: c, Fields: map[string]any{}}, nil
}

func (c *Class) String() string { return c.Name }

// Instance is an object with an open set of fields.
type Instance struct {
	Class  *Class
	Fields map[string]any
}

func (i *Instance) Get(name token.Token) (any, error) {
	if v, ok := i.Fields[name.Lexeme]; ok {
		return v, nil
	}
	return nil, NewRuntimeError(name, fmt.Sprintf("Undefined property '%s'.", name.Lexeme))
}

func (i *Instance) Set(name token.Token, val any) { i.Fields[name.Lexeme] = val }

func (i *Instance) String() string { return i.Class.Name + " instance" }

// ---------------- Conversions ----------------

// IsTruthy: nil and false are falsy, everything else is truthy.
func IsTruthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	}
	return true
}

// Equal compares by value for nil, bool, float64 and string, and by
// identity for callables, classes and instances. Different types are never
// equal.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	}
	return a == b
}

// ToString renders a value the way print shows it.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return FormatNumber(x)
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprintf("%v", v)
}

// FormatNumber prints integral values without a fractional part.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
