package expr

import "strings"

// AsContext returns e as a *Context if it is (or trivially is) one: a bare
// Context node, or a single Identifier promoted to a one-part context. This
// mirrors the fact that `github` alone and `github.actor` both denote
// context accesses even though the parser only wraps multi-part chains in
// Context (see parsePostfix).
func AsContext(e Expr) (*Context, bool) {
	switch n := e.(type) {
	case *Context:
		return n, true
	case *Identifier:
		return &Context{base: n.base, Raw: n.Name, Parts: []Expr{n}}, true
	default:
		return nil, false
	}
}

// EqualRaw reports whether two contexts denote the same raw text,
// case-insensitively — mirroring the Rust Context PartialEq impl.
func (c *Context) EqualRaw(other string) bool {
	return equalFold(c.Raw, other)
}

// ChildOf reports whether c is a child of (or equal to) the given dotted
// pattern, e.g. "secrets" is a parent of "secrets.GITHUB_TOKEN". A context is
// always considered its own child.
func (c *Context) ChildOf(pattern string) bool {
	p, err := NewContextPattern(pattern)
	if err != nil {
		return false
	}
	return p.ParentOf(c)
}

// PopIf returns the remainder of the context after its first dotted segment,
// if that segment case-insensitively equals head. For "foo.bar.baz" and
// head "foo", it returns ("bar.baz", true).
func (c *Context) PopIf(head string) (string, bool) {
	if len(c.Parts) == 0 {
		return "", false
	}
	ident, ok := c.Parts[0].(*Identifier)
	if !ok || !ident.EqualFold(head) {
		return "", false
	}
	_, rest, found := strings.Cut(c.Raw, ".")
	if !found {
		return "", false
	}
	return rest, true
}
