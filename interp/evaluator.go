// interp/evaluator.go
package interp

import (
	"context"
	"errors"
	"fmt"

	"simonwaldherr.de/go/nanolox/ast"
	"simonwaldherr.de/go/nanolox/parser"
	"simonwaldherr.de/go/nanolox/scanner"
	"simonwaldherr.de/go/nanolox/token"
)

// ParseSource scans and parses src. Lexical and syntax errors are reported
// together since the parser keeps going past bad tokens.
func ParseSource(src string) ([]ast.Stmt, error) {
	toks, scanErr := scanner.Scan(src)
	stmts, parseErr := parser.Parse(toks)
	if err := errors.Join(scanErr, parseErr); err != nil {
		return nil, err
	}
	return stmts, nil
}

// Run scans, parses, resolves and executes src, stopping after the first
// phase that fails. Globals survive between calls.
func (vm *Interpreter) Run(src string) error {
	return vm.RunContext(context.Background(), src)
}

// RunContext is Run with cancellation: loops and calls stop with ctx.Err()
// once ctx is done.
func (vm *Interpreter) RunContext(ctx context.Context, src string) error {
	stmts, err := ParseSource(src)
	if err != nil {
		return err
	}
	if err := vm.Resolve(stmts); err != nil {
		return err
	}
	vm.ctx = ctx
	defer func() { vm.ctx = nil }()
	return vm.Interpret(stmts)
}

func (vm *Interpreter) interrupted() error {
	if vm.ctx == nil {
		return nil
	}
	return vm.ctx.Err()
}

// Interpret executes top-level statements in order and returns the first
// runtime error. Output printed before the error is kept.
func (vm *Interpreter) Interpret(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if _, err := vm.execStmt(s, vm.globals); err != nil {
			vm.frames = vm.frames[:0]
			return vm.withTrace(err)
		}
	}
	return nil
}

// Eval evaluates a single expression against the globals. The REPL uses it
// to echo values.
func (vm *Interpreter) Eval(src string) (any, error) {
	toks, err := scanner.Scan(src)
	if err != nil {
		return nil, err
	}
	e, err := parser.ParseExpression(toks)
	if err != nil {
		return nil, err
	}
	r := NewResolver(vm)
	r.resolveExpr(e)
	if len(r.errs) > 0 {
		return nil, r.errs
	}
	v, err := vm.evalExpr(e, vm.globals)
	if err != nil {
		vm.frames = vm.frames[:0]
		return nil, vm.withTrace(err)
	}
	return v, nil
}

// withTrace stamps the current call stack onto a runtime error the first
// time it passes a frame boundary.
func (vm *Interpreter) withTrace(err error) error {
	var re *RuntimeError
	if errors.As(err, &re) && re.Trace == nil {
		re.Trace = vm.trace(re.Token.Line)
	}
	return err
}

// ---------------- Expression evaluation ---------------------------

func (vm *Interpreter) evalExpr(e ast.Expr, env *Env) (any, error) {
	switch ex := e.(type) {
	case *ast.Literal:
		return ex.Value, nil

	case *ast.Grouping:
		return vm.evalExpr(ex.Expression, env)

	case *ast.Variable:
		return vm.lookupVariable(ex.Name, ex, env)

	case *ast.Assign:
		v, err := vm.evalExpr(ex.Value, env)
		if err != nil {
			return nil, err
		}
		if d, ok := vm.locals[ex]; ok {
			env.AssignAt(d, ex.Name.Lexeme, v)
			return v, nil
		}
		if err := vm.globals.Assign(ex.Name, v); err != nil {
			return nil, err
		}
		return v, nil

	case *ast.Logical:
		left, err := vm.evalExpr(ex.Left, env)
		if err != nil {
			return nil, err
		}
		if ex.Operator.Kind == token.Or {
			if IsTruthy(left) {
				return left, nil
			}
		} else if !IsTruthy(left) {
			return left, nil
		}
		return vm.evalExpr(ex.Right, env)

	case *ast.Unary:
		right, err := vm.evalExpr(ex.Right, env)
		if err != nil {
			return nil, err
		}
		switch ex.Operator.Kind {
		case token.Minus:
			n, ok := right.(float64)
			if !ok {
				return nil, NewRuntimeError(ex.Operator, "Operand must be a number.")
			}
			return -n, nil
		case token.Bang:
			return !IsTruthy(right), nil
		}
		return nil, NewRuntimeError(ex.Operator, "Unknown unary operator.")

	case *ast.Binary:
		left, err := vm.evalExpr(ex.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := vm.evalExpr(ex.Right, env)
		if err != nil {
			return nil, err
		}
		return applyBinaryOp(ex.Operator, left, right)

	case *ast.Call:
		return vm.evalCall(ex, env)

	case *ast.Get:
		obj, err := vm.evalExpr(ex.Object, env)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, NewRuntimeError(ex.Name, "Only instances have properties.")
		}
		return inst.Get(ex.Name)

	case *ast.Set:
		obj, err := vm.evalExpr(ex.Object, env)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, NewRuntimeError(ex.Name, "Only instances have fields.")
		}
		v, err := vm.evalExpr(ex.Value, env)
		if err != nil {
			return nil, err
		}
		inst.Set(ex.Name, v)
		return v, nil

	case *ast.This:
		return vm.lookupVariable(ex.Keyword, ex, env)

	case *ast.Super:
		return nil, NewRuntimeError(ex.Keyword, "Superclass method dispatch is not supported.")
	}
	return nil, fmt.Errorf("unsupported expression %T", e)
}

func (vm *Interpreter) evalCall(call *ast.Call, env *Env) (any, error) {
	callee, err := vm.evalExpr(call.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]any, 0, len(call.Arguments))
	for _, a := range call.Arguments {
		v, err := vm.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, NewRuntimeError(call.Paren, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, NewRuntimeError(call.Paren, fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args)))
	}

	switch f := fn.(type) {
	case *Function:
		if err := vm.interrupted(); err != nil {
			return nil, err
		}
		if len(vm.frames) >= vm.maxDepth() {
			return nil, NewRuntimeError(call.Paren, "Stack overflow.")
		}
		vm.pushFrame(f.Name(), call.Paren.Line)
		defer vm.popFrame()
		return f.Call(vm, args)
	case *Native:
		v, err := f.Call(vm, args)
		if err != nil {
			var re *RuntimeError
			if errors.As(err, &re) {
				return nil, err
			}
			return nil, NewRuntimeError(call.Paren, err.Error())
		}
		return v, nil
	}
	return fn.Call(vm, args)
}

func (vm *Interpreter) maxDepth() int {
	if vm.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return vm.MaxDepth
}

// ---------------- Statement execution ---------------------------

type controlKind int

const (
	controlNone controlKind = iota
	controlReturn
)

// controlFlow carries a pending return out of nested blocks. It travels
// beside the error result and is never an error itself.
type controlFlow struct {
	kind controlKind
	val  any
}

func (vm *Interpreter) execStmt(s ast.Stmt, env *Env) (controlFlow, error) {
	switch st := s.(type) {
	case *ast.Expression:
		_, err := vm.evalExpr(st.Expression, env)
		return controlFlow{}, err

	case *ast.Print:
		v, err := vm.evalExpr(st.Expression, env)
		if err != nil {
			return controlFlow{}, err
		}
		_, err = fmt.Fprintln(vm.out, ToString(v))
		return controlFlow{}, err

	case *ast.Var:
		var v any
		if st.Initializer != nil {
			var err error
			if v, err = vm.evalExpr(st.Initializer, env); err != nil {
				return controlFlow{}, err
			}
		}
		env.Define(st.Name.Lexeme, v)
		return controlFlow{}, nil

	case *ast.Block:
		return vm.executeBlock(st.Statements, NewEnv(env))

	case *ast.If:
		cond, err := vm.evalExpr(st.Condition, env)
		if err != nil {
			return controlFlow{}, err
		}
		if IsTruthy(cond) {
			return vm.execStmt(st.ThenBranch, env)
		}
		if st.ElseBranch != nil {
			return vm.execStmt(st.ElseBranch, env)
		}
		return controlFlow{}, nil

	case *ast.While:
		for {
			if err := vm.interrupted(); err != nil {
				return controlFlow{}, err
			}
			cond, err := vm.evalExpr(st.Condition, env)
			if err != nil {
				return controlFlow{}, err
			}
			if !IsTruthy(cond) {
				return controlFlow{}, nil
			}
			c, err := vm.execStmt(st.Body, env)
			if err != nil || c.kind != controlNone {
				return c, err
			}
		}

	case *ast.Function:
		env.Define(st.Name.Lexeme, &Function{Decl: st, Closure: env})
		return controlFlow{}, nil

	case *ast.Return:
		var v any
		if st.Value != nil {
			var err error
			if v, err = vm.evalExpr(st.Value, env); err != nil {
				return controlFlow{}, err
			}
		}
		return controlFlow{kind: controlReturn, val: v}, nil

	case *ast.Class:
		return controlFlow{}, vm.execClass(st, env)
	}
	return controlFlow{}, fmt.Errorf("unsupported statement %T", s)
}

// executeBlock runs stmts in env and stops at the first return or error.
func (vm *Interpreter) executeBlock(stmts []ast.Stmt, env *Env) (controlFlow, error) {
	for _, s := range stmts {
		c, err := vm.execStmt(s, env)
		if err != nil || c.kind != controlNone {
			return c, err
		}
	}
	return controlFlow{}, nil
}

func (vm *Interpreter) execClass(st *ast.Class, env *Env) error {
	env.Define(st.Name.Lexeme, nil)

	var super *Class
	methodEnv := env
	if st.Superclass != nil {
		v, err := vm.evalExpr(st.Superclass, env)
		if err != nil {
			return err
		}
		sc, ok := v.(*Class)
		if !ok {
			return NewRuntimeError(st.Superclass.Name, "Superclass must be a class.")
		}
		super = sc
		methodEnv = NewEnv(env)
		methodEnv.Define("super", sc)
	}

	methods := make(map[string]*Function, len(st.Methods))
	for _, m := range st.Methods {
		methods[m.Name.Lexeme] = &Function{Decl: m, Closure: methodEnv}
	}
	return env.Assign(st.Name, &Class{Name: st.Name.Lexeme, Superclass: super, Methods: methods})
}

// callFunction binds args in a fresh scope under the closure and runs the
// body. A return inside the body becomes the call's result.
func (vm *Interpreter) callFunction(fn *Function, args []any) (any, error) {
	local := NewEnv(fn.Closure)
	for i, p := range fn.Decl.Params {
		local.Define(p.Lexeme, args[i])
	}
	c, err := vm.executeBlock(fn.Decl.Body, local)
	if err != nil {
		return nil, vm.withTrace(err)
	}
	if c.kind == controlReturn {
		return c.val, nil
	}
	return nil, nil
}

// ---------------- Helpers ----------------------------------------

func applyBinaryOp(op token.Token, left, right any) (any, error) {
	switch op.Kind {
	case token.EqualEqual:
		return Equal(left, right), nil
	case token.BangEqual:
		return !Equal(left, right), nil
	case token.Plus:
		if l, ok := left.(float64); ok {
			if r, ok := right.(float64); ok {
				return l + r, nil
			}
		}
		if l, ok := left.(string); ok {
			if r, ok := right.(string); ok {
				return l + r, nil
			}
		}
		return nil, NewRuntimeError(op, "Operands must be two numbers or two strings.")
	}

	l, lok := left.(float64)
	r, rok := right.(float64)
	if !lok || !rok {
		return nil, NewRuntimeError(op, "Operand must be a number.")
	}
	switch op.Kind {
	case token.Minus:
		return l - r, nil
	case token.Star:
		return l * r, nil
	case token.Slash:
		return l / r, nil
	case token.Greater:
		return l > r, nil
	case token.GreaterEqual:
		return l >= r, nil
	case token.Less:
		return l < r, nil
	case token.LessEqual:
		return l <= r, nil
	}
	return nil, NewRuntimeError(op, "Unknown binary operator.")
}
