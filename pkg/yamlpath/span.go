package yamlpath

import (
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/token"
)

// spanOf recovers the byte span covered by n by walking to its first and
// last leaf tokens. Composite nodes (mappings, sequences) don't carry a
// single token of their own in goccy/go-yaml's AST, so their span is the
// union of their children's spans.
func spanOf(n ast.Node) Span {
	first := firstToken(n)
	last := lastToken(n)
	if first == nil || last == nil {
		return Span{}
	}
	start := first.Position.Offset
	end := last.Position.Offset + len(last.Origin)
	if end < start {
		end = start
	}
	return Span{Start: start, End: end}
}

func firstToken(n ast.Node) *token.Token {
	switch v := n.(type) {
	case *ast.MappingNode:
		if len(v.Values) == 0 {
			return v.GetToken()
		}
		return firstToken(v.Values[0])
	case *ast.MappingValueNode:
		if v.Key != nil {
			return firstToken(v.Key)
		}
		return firstToken(v.Value)
	case *ast.SequenceNode:
		if len(v.Values) == 0 {
			return v.GetToken()
		}
		return firstToken(v.Values[0])
	default:
		return n.GetToken()
	}
}

func lastToken(n ast.Node) *token.Token {
	switch v := n.(type) {
	case *ast.MappingNode:
		if len(v.Values) == 0 {
			return v.GetToken()
		}
		return lastToken(v.Values[len(v.Values)-1])
	case *ast.MappingValueNode:
		if v.Value != nil {
			return lastToken(v.Value)
		}
		return lastToken(v.Key)
	case *ast.SequenceNode:
		if len(v.Values) == 0 {
			return v.GetToken()
		}
		return lastToken(v.Values[len(v.Values)-1])
	default:
		return n.GetToken()
	}
}

// commentsOf collects comment text attached to n, recovered from
// goccy/go-yaml's comment-group API (populated when parsing with
// parser.ParseComments).
func commentsOf(n ast.Node) []Comment {
	cg := n.GetComment()
	if cg == nil {
		return nil
	}
	var out []Comment
	for _, c := range cg.Comments {
		out = append(out, Comment{
			Text: c.Value,
			Span: Span{Start: c.Position.Offset, End: c.Position.Offset + len(c.Value)},
		})
	}
	return out
}
