package expr

import (
	"fmt"
	"strings"
)

// ContextPattern is a restricted dotted pattern used to match contexts, e.g.
// "secrets.*" or "github.event.pull_request.*.name". Patterns may only
// contain identifiers and "*" wildcards; indices are not allowed in the
// pattern itself, though contexts containing indices can still match one
// (a "*" segment matches a bracketed index part of the context).
type ContextPattern struct {
	raw   string
	parts []string
}

// NewContextPattern parses and validates a dotted context pattern.
func NewContextPattern(pattern string) (*ContextPattern, error) {
	segments := strings.Split(pattern, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("invalid context pattern %q: empty segment", pattern)
		}
		if seg == "*" {
			continue
		}
		for _, c := range seg {
			if !isPatternRune(c) {
				return nil, fmt.Errorf("invalid context pattern %q: disallowed character %q", pattern, c)
			}
		}
	}
	return &ContextPattern{raw: pattern, parts: segments}, nil
}

func isPatternRune(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

type comparison int

const (
	comparisonNone comparison = iota
	comparisonChild
	comparisonMatch
)

func (p *ContextPattern) compare(ctx *Context) comparison {
	i := 0
	for i < len(p.parts) && i < len(ctx.Parts) {
		pattern := p.parts[i]
		part := ctx.Parts[i]

		switch partNode := part.(type) {
		case *Call:
			return comparisonNone
		default:
			if pattern == "*" {
				// matches anything, including another wildcard part
			} else if star, ok := partNode.(*Star); ok {
				_ = star
				return comparisonNone
			} else if ident, ok := partNode.(*Identifier); ok {
				if !ident.EqualFold(pattern) {
					return comparisonNone
				}
			} else if idx, ok := partNode.(*Index); ok {
				str, ok := idx.Inner.(*String)
				if !ok {
					return comparisonNone
				}
				if !equalFold(str.Value, pattern) {
					return comparisonNone
				}
			}
		}
		i++
	}

	switch {
	case i == len(p.parts) && i == len(ctx.Parts):
		return comparisonMatch
	case i == len(p.parts) && i < len(ctx.Parts):
		return comparisonChild
	default:
		return comparisonNone
	}
}

// ParentOf reports whether ctx is a child of (or equal to) p. A context is
// always its own parent.
func (p *ContextPattern) ParentOf(ctx *Context) bool {
	switch p.compare(ctx) {
	case comparisonChild, comparisonMatch:
		return true
	default:
		return false
	}
}

// Matches reports whether ctx exactly matches p, part for part.
func (p *ContextPattern) Matches(ctx *Context) bool {
	return p.compare(ctx) == comparisonMatch
}

func (p *ContextPattern) String() string { return p.raw }
