package yamlpath

import (
	"fmt"

	"github.com/goccy/go-yaml/ast"
)

// Mode controls how much of a matched node's surrounding syntax a Feature
// covers.
type Mode int

const (
	// ModePretty is the default mode. It covers the located node's value,
	// the same span as ModeExact; the span is not widened to include the
	// mapping key.
	ModePretty Mode = iota
	// ModeExact covers only the value node itself, with no widening. A
	// query in this mode that returns no error always reports ok=true.
	ModeExact
	// ModeKeyOnly covers just the mapping key when the query's final
	// component is a key, e.g. to underline `uses:` rather than its value.
	ModeKeyOnly
)

// Feature is a located node's recovered span plus any attached comments.
type Feature struct {
	Span     Span
	Comments []Comment
}

// Query locates the given query's node within the document and returns its
// Feature per the given mode. A failed lookup is returned as an error; ok is
// true whenever the error is nil.
func (d *Document) Query(q Query, mode Mode) (Feature, bool, error) {
	matchKey, target, err := resolve(d.root, q.Components)
	if err != nil {
		return Feature{}, false, err
	}

	switch mode {
	case ModeKeyOnly:
		if matchKey == nil {
			return Feature{}, false, fmt.Errorf("yamlpath: query does not end on a mapping key")
		}
		return Feature{Span: spanOf(matchKey), Comments: commentsOf(matchKey)}, true, nil
	case ModeExact:
		return Feature{Span: spanOf(target), Comments: commentsOf(target)}, true, nil
	default: // ModePretty
		node := target
		if matchKey != nil {
			node = target
		}
		return Feature{Span: spanOf(node), Comments: commentsOf(node)}, true, nil
	}
}

// QueryPretty is a convenience wrapper around Query(q, ModePretty).
func (d *Document) QueryPretty(q Query) (Feature, error) {
	f, _, err := d.Query(q, ModePretty)
	return f, err
}

// QueryExact is a convenience wrapper around Query(q, ModeExact); ok is
// true whenever err is nil.
func (d *Document) QueryExact(q Query) (Feature, bool, error) {
	return d.Query(q, ModeExact)
}

// QueryKeyOnly is a convenience wrapper around Query(q, ModeKeyOnly).
func (d *Document) QueryKeyOnly(q Query) (Feature, error) {
	f, _, err := d.Query(q, ModeKeyOnly)
	return f, err
}

// resolve walks components from root, returning the final mapping key node
// (nil unless the last component was a Key match) and the matched value
// node.
func resolve(root ast.Node, components []Component) (key ast.Node, value ast.Node, err error) {
	current := root
	for i, comp := range components {
		if comp.IsIndex {
			seq, ok := asSequence(current)
			if !ok {
				return nil, nil, fmt.Errorf("yamlpath: expected a sequence at path component %d", i)
			}
			if comp.Index < 0 || comp.Index >= len(seq) {
				return nil, nil, fmt.Errorf("yamlpath: index %d out of range at path component %d", comp.Index, i)
			}
			key = nil
			current = seq[comp.Index]
			continue
		}

		pairs, ok := asMapping(current)
		if !ok {
			return nil, nil, fmt.Errorf("yamlpath: expected a mapping at path component %d", i)
		}
		found := false
		for _, pair := range pairs {
			if keyString(pair.Key) == comp.Key {
				key = pair.Key
				current = pair.Value
				found = true
				break
			}
		}
		if !found {
			return nil, nil, fmt.Errorf("yamlpath: key %q not found at path component %d", comp.Key, i)
		}
	}
	return key, current, nil
}

func asMapping(n ast.Node) ([]*ast.MappingValueNode, bool) {
	switch m := n.(type) {
	case *ast.MappingNode:
		return m.Values, true
	case *ast.MappingValueNode:
		return []*ast.MappingValueNode{m}, true
	default:
		return nil, false
	}
}

func asSequence(n ast.Node) ([]ast.Node, bool) {
	seq, ok := n.(*ast.SequenceNode)
	if !ok {
		return nil, false
	}
	return seq.Values, true
}

func keyString(n ast.Node) string {
	switch k := n.(type) {
	case *ast.StringNode:
		return k.Value
	default:
		if tok := n.GetToken(); tok != nil {
			return tok.Value
		}
		return ""
	}
}
