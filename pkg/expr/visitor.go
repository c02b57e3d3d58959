package expr

// Visitor walks an expression tree. Each method returns false to stop
// descending into that node's children; the zero value of BaseVisitor implements
// every method as a no-op full descent, so callers only override what they
// need.
type Visitor interface {
	VisitLiteral(n *Literal) bool
	VisitString(n *String) bool
	VisitStar(n *Star) bool
	VisitIdentifier(n *Identifier) bool
	VisitIndex(n *Index) bool
	VisitContext(n *Context) bool
	VisitCall(n *Call) bool
	VisitBinOp(n *BinOp) bool
	VisitUnOp(n *UnOp) bool
}

// BaseVisitor implements Visitor with every method returning true (descend),
// so embedders only need to override the node kinds they care about.
type BaseVisitor struct{}

func (BaseVisitor) VisitLiteral(*Literal) bool       { return true }
func (BaseVisitor) VisitString(*String) bool         { return true }
func (BaseVisitor) VisitStar(*Star) bool             { return true }
func (BaseVisitor) VisitIdentifier(*Identifier) bool { return true }
func (BaseVisitor) VisitIndex(*Index) bool           { return true }
func (BaseVisitor) VisitContext(*Context) bool       { return true }
func (BaseVisitor) VisitCall(*Call) bool             { return true }
func (BaseVisitor) VisitBinOp(*BinOp) bool           { return true }
func (BaseVisitor) VisitUnOp(*UnOp) bool             { return true }

// Walk dispatches e to the matching Visitor method, then (if that method
// returned true) recurses into e's children in source order.
func Walk(v Visitor, e Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *Literal:
		v.VisitLiteral(n)
	case *String:
		v.VisitString(n)
	case *Star:
		v.VisitStar(n)
	case *Identifier:
		v.VisitIdentifier(n)
	case *Index:
		if v.VisitIndex(n) {
			Walk(v, n.Inner)
		}
	case *Context:
		if v.VisitContext(n) {
			for _, part := range n.Parts {
				Walk(v, part)
			}
		}
	case *Call:
		if v.VisitCall(n) {
			for _, arg := range n.Args {
				Walk(v, arg)
			}
		}
	case *BinOp:
		if v.VisitBinOp(n) {
			Walk(v, n.LHS)
			Walk(v, n.RHS)
		}
	case *UnOp:
		if v.VisitUnOp(n) {
			Walk(v, n.Expr)
		}
	}
}

// Contexts collects every Context node reachable from e, in source order.
// This is the primary way audits locate `secrets.*`/`github.event.*`/etc.
// accesses inside a condition or templated string.
func Contexts(e Expr) []*Context {
	var out []*Context
	c := &contextCollector{visit: func(ctx *Context) { out = append(out, ctx) }}
	Walk(c, e)
	return out
}

type contextCollector struct {
	BaseVisitor
	visit func(*Context)
}

func (c *contextCollector) VisitContext(n *Context) bool {
	c.visit(n)
	return true
}
