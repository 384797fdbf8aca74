// Package ast declares the syntax tree produced by the parser.
//
// Nodes are created once by the parser and never mutated afterwards. They are
// always handled by pointer, so a node's address is its identity: the
// resolver keys its scope distances on it.
package ast

import "simonwaldherr.de/go/nanolox/token"

// Expr is implemented by every expression node.
type Expr interface{ exprNode() }

// Stmt is implemented by every statement node.
type Stmt interface{ stmtNode() }

// ---------------- Expressions ----------------

type (
	Assign struct {
		Name  token.Token
		Value Expr
	}

	Binary struct {
		Left     Expr
		Operator token.Token
		Right    Expr
	}

	// Call records the closing paren so runtime errors point at the call site.
	Call struct {
		Callee    Expr
		Paren     token.Token
		Arguments []Expr
	}

	Get struct {
		Object Expr
		Name   token.Token
	}

	Grouping struct {
		Expression Expr
	}

	// Literal holds a float64, string, bool or nil.
	Literal struct {
		Value any
	}

	// Logical is kept apart from Binary because it short-circuits.
	Logical struct {
		Left     Expr
		Operator token.Token
		Right    Expr
	}

	Set struct {
		Object Expr
		Name   token.Token
		Value  Expr
	}

	Super struct {
		Keyword token.Token
		Method  token.Token
	}

	This struct {
		Keyword token.Token
	}

	Unary struct {
		Operator token.Token
		Right    Expr
	}

	Variable struct {
		Name token.Token
	}
)

func (*Assign) exprNode()   {}
func (*Binary) exprNode()   {}
func (*Call) exprNode()     {}
func (*Get) exprNode()      {}
func (*Grouping) exprNode() {}
func (*Literal) exprNode()  {}
func (*Logical) exprNode()  {}
func (*Set) exprNode()      {}
func (*Super) exprNode()    {}
func (*This) exprNode()     {}
func (*Unary) exprNode()    {}
func (*Variable) exprNode() {}

// ---------------- Statements ----------------

type (
	Block struct {
		Statements []Stmt
	}

	// Class keeps its superclass and methods for a future dispatch layer;
	// the interpreter stores them but never looks methods up.
	Class struct {
		Name       token.Token
		Superclass *Variable
		Methods    []*Function
	}

	Expression struct {
		Expression Expr
	}

	Function struct {
		Name   token.Token
		Params []token.Token
		Body   []Stmt
	}

	If struct {
		Condition  Expr
		ThenBranch Stmt
		ElseBranch Stmt // nil when absent
	}

	Print struct {
		Expression Expr
	}

	Return struct {
		Keyword token.Token
		Value   Expr // nil for a bare return
	}

	Var struct {
		Name        token.Token
		Initializer Expr // nil when absent
	}

	While struct {
		Condition Expr
		Body      Stmt
	}
)

func (*Block) stmtNode()      {}
func (*Class) stmtNode()      {}
func (*Expression) stmtNode() {}
func (*Function) stmtNode()   {}
func (*If) stmtNode()         {}
func (*Print) stmtNode()      {}
func (*Return) stmtNode()     {}
func (*Var) stmtNode()        {}
func (*While) stmtNode()      {}
