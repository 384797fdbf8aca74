// Package parser implements a recursive-descent parser for Lox.
//
// Grammar, lowest precedence first:
//
//	program     -> declaration* EOF
//	declaration -> classDecl | funDecl | varDecl | statement
//	classDecl   -> "class" IDENT ( "<" IDENT )? "{" function* "}"
//	funDecl     -> "fun" function
//	function    -> IDENT "(" parameters? ")" block
//	varDecl     -> "var" IDENT ( "=" expression )? ";"
//	statement   -> forStmt | ifStmt | printStmt | returnStmt | whileStmt | block | exprStmt
//	expression  -> assignment
//	assignment  -> ( call "." )? IDENT "=" assignment | logic_or
//	logic_or    -> logic_and ( "or" logic_and )*
//	logic_and   -> equality ( "and" equality )*
//	equality    -> comparison ( ( "!=" | "==" ) comparison )*
//	comparison  -> term ( ( ">" | ">=" | "<" | "<=" ) term )*
//	term        -> factor ( ( "-" | "+" ) factor )*
//	factor      -> unary ( ( "/" | "*" ) unary )*
//	unary       -> ( "!" | "-" ) unary | call
//	call        -> primary ( "(" arguments? ")" | "." IDENT )*
//	primary     -> "true" | "false" | "nil" | "this" | NUMBER | STRING | IDENT
//	             | "(" expression ")" | "super" "." IDENT
package parser

import (
	"simonwaldherr.de/go/nanolox/ast"
	"simonwaldherr.de/go/nanolox/token"
)

// MaxArgs caps both call arguments and declared parameters.
const MaxArgs = 255

// bailout unwinds a single declaration after a syntax error; it never
// escapes Parse.
type bailout struct{}

type parser struct {
	tokens  []token.Token
	current int
	errs    ErrorList
}

// Parse builds the statement list for tokens, which must end with an EOF
// token. On syntax errors it still parses the rest of the input and returns
// every error as an ErrorList; the statements are then incomplete and must
// not be executed.
func Parse(tokens []token.Token) ([]ast.Stmt, error) {
	p := &parser{tokens: terminate(tokens)}
	var stmts []ast.Stmt
	for !p.atEnd() {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts, p.errs.Err()
}

// ParseExpression parses a single expression followed by EOF.
func ParseExpression(tokens []token.Token) (expr ast.Expr, err error) {
	p := &parser{tokens: terminate(tokens)}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			expr, err = nil, p.errs.Err()
		}
	}()
	expr = p.expression()
	if !p.atEnd() {
		p.fail(p.peek(), "Expect end of expression.")
	}
	return expr, p.errs.Err()
}

// terminate appends an EOF token when the stream lacks one, so the parser
// never reads past the end.
func terminate(tokens []token.Token) []token.Token {
	if n := len(tokens); n > 0 && tokens[n-1].Kind == token.EOF {
		return tokens
	}
	line := 1
	if n := len(tokens); n > 0 {
		line = tokens[n-1].Line
	}
	return append(tokens[:len(tokens):len(tokens)], token.New(token.EOF, "", nil, line))
}

// declaration parses one declaration and recovers from a syntax error by
// skipping to the next statement boundary, returning nil in that case.
func (p *parser) declaration() (s ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			p.synchronize()
			s = nil
		}
	}()
	switch {
	case p.match(token.Class):
		return p.classDeclaration()
	case p.match(token.Fun):
		return p.function()
	case p.match(token.Var):
		return p.varDeclaration()
	}
	return p.statement()
}

func (p *parser) classDeclaration() ast.Stmt {
	name := p.consume(token.Identifier, "Expect class name.")
	var super *ast.Variable
	if p.match(token.Less) {
		p.consume(token.Identifier, "Expect superclass name.")
		super = &ast.Variable{Name: p.previous()}
	}
	p.consume(token.LeftBrace, "Expect '{' before class body.")
	var methods []*ast.Function
	for !p.check(token.RightBrace) && !p.atEnd() {
		methods = append(methods, p.function())
	}
	p.consume(token.RightBrace, "Expect '}' after class body.")
	return &ast.Class{Name: name, Superclass: super, Methods: methods}
}

func (p *parser) function() *ast.Function {
	name := p.consume(token.Identifier, "Expect function name.")
	p.consume(token.LeftParen, "Expect '(' after function name.")
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= MaxArgs {
				p.report(p.peek(), "Can't have more than 255 parameters.")
			}
			params = append(params, p.consume(token.Identifier, "Expect parameter name."))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after parameters.")
	p.consume(token.LeftBrace, "Expect '{' before function body.")
	return &ast.Function{Name: name, Params: params, Body: p.block()}
}

func (p *parser) varDeclaration() ast.Stmt {
	name := p.consume(token.Identifier, "Expect variable name.")
	var init ast.Expr
	if p.match(token.Equal) {
		init = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after variable declaration.")
	return &ast.Var{Name: name, Initializer: init}
}

func (p *parser) statement() ast.Stmt {
	switch {
	case p.match(token.For):
		return p.forStatement()
	case p.match(token.If):
		return p.ifStatement()
	case p.match(token.Print):
		v := p.expression()
		p.consume(token.Semicolon, "Expect ';' after value.")
		return &ast.Print{Expression: v}
	case p.match(token.Return):
		return p.returnStatement()
	case p.match(token.While):
		p.consume(token.LeftParen, "Expect '(' after 'while'.")
		cond := p.expression()
		p.consume(token.RightParen, "Expect ')' after condition.")
		return &ast.While{Condition: cond, Body: p.statement()}
	case p.match(token.LeftBrace):
		return &ast.Block{Statements: p.block()}
	}
	e := p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression.")
	return &ast.Expression{Expression: e}
}

// forStatement desugars a C-style for loop into a while loop wrapped in
// blocks for the initializer and increment.
func (p *parser) forStatement() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'for'.")

	var init ast.Stmt
	switch {
	case p.match(token.Semicolon):
	case p.match(token.Var):
		init = p.varDeclaration()
	default:
		e := p.expression()
		p.consume(token.Semicolon, "Expect ';' after loop initializer.")
		init = &ast.Expression{Expression: e}
	}

	var cond ast.Expr
	if !p.check(token.Semicolon) {
		cond = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after loop condition.")

	var incr ast.Expr
	if !p.check(token.RightParen) {
		incr = p.expression()
	}
	p.consume(token.RightParen, "Expect ')' after for clauses.")

	body := p.statement()
	if incr != nil {
		body = &ast.Block{Statements: []ast.Stmt{body, &ast.Expression{Expression: incr}}}
	}
	if cond == nil {
		cond = &ast.Literal{Value: true}
	}
	body = &ast.While{Condition: cond, Body: body}
	if init != nil {
		body = &ast.Block{Statements: []ast.Stmt{init, body}}
	}
	return body
}

func (p *parser) ifStatement() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'if'.")
	cond := p.expression()
	p.consume(token.RightParen, "Expect ')' after if condition.")
	then := p.statement()
	var els ast.Stmt
	if p.match(token.Else) {
		els = p.statement()
	}
	return &ast.If{Condition: cond, ThenBranch: then, ElseBranch: els}
}

func (p *parser) returnStatement() ast.Stmt {
	kw := p.previous()
	var v ast.Expr
	if !p.check(token.Semicolon) {
		v = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after return value.")
	return &ast.Return{Keyword: kw, Value: v}
}

// block parses declarations up to the closing brace; the opening brace has
// already been consumed.
func (p *parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}
	p.consume(token.RightBrace, "Expect '}' after block.")
	return stmts
}

// ---------------- Expressions ----------------

func (p *parser) expression() ast.Expr { return p.assignment() }

func (p *parser) assignment() ast.Expr {
	expr := p.or()
	if !p.match(token.Equal) {
		return expr
	}
	equals := p.previous()
	value := p.assignment()
	switch target := expr.(type) {
	case *ast.Variable:
		return &ast.Assign{Name: target.Name, Value: value}
	case *ast.Get:
		return &ast.Set{Object: target.Object, Name: target.Name, Value: value}
	}
	// Reported but not thrown: the parser is not confused about where it is.
	p.report(equals, "Invalid assignment target.")
	return expr
}

func (p *parser) or() ast.Expr {
	expr := p.and()
	for p.match(token.Or) {
		op := p.previous()
		expr = &ast.Logical{Left: expr, Operator: op, Right: p.and()}
	}
	return expr
}

func (p *parser) and() ast.Expr {
	expr := p.equality()
	for p.match(token.And) {
		op := p.previous()
		expr = &ast.Logical{Left: expr, Operator: op, Right: p.equality()}
	}
	return expr
}

// binary left-folds operand ( op operand )* for one precedence level.
func (p *parser) binary(operand func() ast.Expr, ops ...token.Kind) ast.Expr {
	expr := operand()
	for p.match(ops...) {
		op := p.previous()
		expr = &ast.Binary{Left: expr, Operator: op, Right: operand()}
	}
	return expr
}

func (p *parser) equality() ast.Expr {
	return p.binary(p.comparison, token.BangEqual, token.EqualEqual)
}

func (p *parser) comparison() ast.Expr {
	return p.binary(p.term, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *parser) term() ast.Expr { return p.binary(p.factor, token.Minus, token.Plus) }

func (p *parser) factor() ast.Expr { return p.binary(p.unary, token.Slash, token.Star) }

func (p *parser) unary() ast.Expr {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		return &ast.Unary{Operator: op, Right: p.unary()}
	}
	return p.call()
}

func (p *parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LeftParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			name := p.consume(token.Identifier, "Expect property name after '.'.")
			expr = &ast.Get{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= MaxArgs {
				p.report(p.peek(), "Can't have more than 255 arguments.")
			}
			args = append(args, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren := p.consume(token.RightParen, "Expect ')' after arguments.")
	return &ast.Call{Callee: callee, Paren: paren, Arguments: args}
}

func (p *parser) primary() ast.Expr {
	switch {
	case p.match(token.False):
		return &ast.Literal{Value: false}
	case p.match(token.True):
		return &ast.Literal{Value: true}
	case p.match(token.Nil):
		return &ast.Literal{Value: nil}
	case p.match(token.Number, token.String):
		return &ast.Literal{Value: p.previous().Literal}
	case p.match(token.Super):
		kw := p.previous()
		p.consume(token.Dot, "Expect '.' after 'super'.")
		method := p.consume(token.Identifier, "Expect superclass method name.")
		return &ast.Super{Keyword: kw, Method: method}
	case p.match(token.This):
		return &ast.This{Keyword: p.previous()}
	case p.match(token.Identifier):
		return &ast.Variable{Name: p.previous()}
	case p.match(token.LeftParen):
		e := p.expression()
		p.consume(token.RightParen, "Expect ')' after expression.")
		return &ast.Grouping{Expression: e}
	}
	p.fail(p.peek(), "Expect expression.")
	return nil
}

// ---------------- Token helpers ----------------

func (p *parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) consume(kind token.Kind, msg string) token.Token {
	if p.check(kind) {
		return p.advance()
	}
	p.fail(p.peek(), msg)
	return token.Token{}
}

func (p *parser) check(kind token.Kind) bool {
	if p.atEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *parser) atEnd() bool { return p.peek().Kind == token.EOF }

func (p *parser) peek() token.Token { return p.tokens[p.current] }

func (p *parser) previous() token.Token { return p.tokens[p.current-1] }

func (p *parser) report(tok token.Token, msg string) {
	p.errs = append(p.errs, &Error{Token: tok, Message: msg})
}

// fail records the error and abandons the current declaration.
func (p *parser) fail(tok token.Token, msg string) {
	p.report(tok, msg)
	panic(bailout{})
}

// synchronize discards tokens until it has just passed a semicolon or is
// looking at a keyword that starts a statement.
func (p *parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Kind == token.Semicolon {
			return
		}
		if p.peek().Kind.IsStatementStart() {
			return
		}
		p.advance()
	}
}
