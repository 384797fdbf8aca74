package ast

// Inspect traverses the tree rooted at node depth-first, calling f for each
// node. If f returns false the children of that node are skipped. node may
// be an Expr, a Stmt or a []Stmt.
func Inspect(node any, f func(node any) bool) {
	switch n := node.(type) {
	case nil:
		return
	case []Stmt:
		for _, s := range n {
			Inspect(s, f)
		}
		return
	}
	if !f(node) {
		return
	}

	switch n := node.(type) {
	case *Assign:
		Inspect(n.Value, f)
	case *Binary:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *Call:
		Inspect(n.Callee, f)
		for _, a := range n.Arguments {
			Inspect(a, f)
		}
	case *Get:
		Inspect(n.Object, f)
	case *Grouping:
		Inspect(n.Expression, f)
	case *Logical:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *Set:
		Inspect(n.Object, f)
		Inspect(n.Value, f)
	case *Unary:
		Inspect(n.Right, f)

	case *Block:
		Inspect(n.Statements, f)
	case *Class:
		if n.Superclass != nil {
			Inspect(n.Superclass, f)
		}
		for _, m := range n.Methods {
			Inspect(m, f)
		}
	case *Expression:
		Inspect(n.Expression, f)
	case *Function:
		Inspect(n.Body, f)
	case *If:
		Inspect(n.Condition, f)
		Inspect(n.ThenBranch, f)
		Inspect(n.ElseBranch, f)
	case *Print:
		Inspect(n.Expression, f)
	case *Return:
		Inspect(n.Value, f)
	case *Var:
		Inspect(n.Initializer, f)
	case *While:
		Inspect(n.Condition, f)
		Inspect(n.Body, f)
	}
}
