// Package yamlpatch applies an ordered list of structural edits to a YAML
// document while preserving everything the edit doesn't touch: comments,
// indentation, flow/block style, and unrelated formatting. It operates on
// pkg/yamlpath's byte-span recovery rather than re-emitting the whole
// document, splicing only the bytes an operation actually changes.
package yamlpatch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wflint/wflint/pkg/yamlpath"
)

// Op is the sum type of YAML edit operations a Patch can carry.
type Op interface {
	apply(doc *yamlpath.Document, q yamlpath.Query) (string, error)
}

// Patch pairs a Query identifying a node with the Op to apply there.
type Patch struct {
	Query yamlpath.Query
	Op    Op
}

// Replace replaces the subtree at the route with a newly serialized value.
type Replace struct{ Value any }

// Add inserts a key/value pair under the mapping at the route. It is an
// error for the route's target not to be a mapping.
type Add struct {
	Key   string
	Value any
}

// Remove deletes the subtree at the route, including the key/colon/newline
// that introduced it so the document remains syntactically valid.
type Remove struct{}

// RewriteFragment replaces the first occurrence of From with To within the
// exact text of the scalar node at the route.
type RewriteFragment struct{ From, To string }

// ReplaceComment rewrites the trailing comment attached to the node at the
// route, leaving the node's value untouched.
type ReplaceComment struct{ New string }

// KV is a key/value pair naming one of MergeInto's updates.
type KV struct {
	Key   string
	Value any
}

// MergeInto ensures Key exists as a mapping child of the route (creating it
// if absent) then applies each of Updates as an Add/Replace against it, in
// ascending key order; updates with equal keys keep their given order.
type MergeInto struct {
	Key     string
	Updates []KV
}

// Apply applies patches in order against doc, returning the final document.
// Each patch observes the document as modified by every prior one. A patch
// that fails is returned as an error immediately; callers that want
// best-effort application (skip failures, keep earlier successes) should
// call ApplyTolerant instead.
func Apply(doc *yamlpath.Document, patches []Patch) (*yamlpath.Document, error) {
	current := doc
	for i, p := range patches {
		next, err := applyOne(current, p)
		if err != nil {
			return nil, fmt.Errorf("yamlpatch: patch %d: %w", i, err)
		}
		current = next
	}
	return current, nil
}

// Result describes the fate of a single patch under ApplyTolerant.
type Result struct {
	Index int
	Err   error
}

// ApplyTolerant applies patches in order, skipping (and recording) any that
// fail, while keeping every previously-applied patch's effect. This mirrors
// the runner's "later fix fails due to conflict" policy from spec.md 4.3.
func ApplyTolerant(doc *yamlpath.Document, patches []Patch) (*yamlpath.Document, []Result) {
	current := doc
	var failures []Result
	for i, p := range patches {
		next, err := applyOne(current, p)
		if err != nil {
			failures = append(failures, Result{Index: i, Err: err})
			continue
		}
		current = next
	}
	return current, failures
}

func applyOne(doc *yamlpath.Document, p Patch) (*yamlpath.Document, error) {
	newSrc, err := p.Op.apply(doc, p.Query)
	if err != nil {
		return nil, err
	}
	return yamlpath.New(newSrc)
}

func (r Replace) apply(doc *yamlpath.Document, q yamlpath.Query) (string, error) {
	feat, err := doc.QueryPretty(q)
	if err != nil {
		return "", fmt.Errorf("replace: %w", err)
	}
	indent := indentOf(doc.Source(), feat.Span.Start)
	rendered := serializeValue(r.Value, indent, true)
	return splice(doc.Source(), feat.Span, rendered), nil
}

func (a Add) apply(doc *yamlpath.Document, q yamlpath.Query) (string, error) {
	feat, err := doc.QueryPretty(q)
	if err != nil {
		return "", fmt.Errorf("add: %w", err)
	}
	src := doc.Source()
	indent := indentOf(src, feat.Span.Start)
	insertAt := endOfLine(src, feat.Span.End)
	line := fmt.Sprintf("%s%s: %s\n", strings.Repeat(" ", indent), a.Key, serializeValue(a.Value, indent, false))
	return src[:insertAt] + line + src[insertAt:], nil
}

func (Remove) apply(doc *yamlpath.Document, q yamlpath.Query) (string, error) {
	feat, err := doc.QueryKeyOnly(q)
	if err != nil {
		// Fall back to a pretty span (e.g. removing a sequence element)
		// when the route doesn't resolve to a mapping key.
		feat, err = doc.QueryPretty(q)
		if err != nil {
			return "", fmt.Errorf("remove: %w", err)
		}
	}
	src := doc.Source()
	start := lineStart(src, feat.Span.Start)
	end := endOfLine(src, valueSpanEnd(doc, q, feat.Span.End))
	return src[:start] + src[end:], nil
}

func valueSpanEnd(doc *yamlpath.Document, q yamlpath.Query, fallback int) int {
	if pretty, err := doc.QueryPretty(q); err == nil && pretty.Span.End > fallback {
		return pretty.Span.End
	}
	return fallback
}

func (op RewriteFragment) apply(doc *yamlpath.Document, q yamlpath.Query) (string, error) {
	feat, ok, err := doc.QueryExact(q)
	if err != nil {
		return "", fmt.Errorf("rewrite-fragment: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("rewrite-fragment: route has no exact span")
	}
	text := doc.Extract(feat.Span)
	idx := strings.Index(text, op.From)
	if idx < 0 {
		return "", fmt.Errorf("rewrite-fragment: %q not found in node text", op.From)
	}
	newText := text[:idx] + op.To + text[idx+len(op.From):]
	return splice(doc.Source(), feat.Span, newText), nil
}

func (op ReplaceComment) apply(doc *yamlpath.Document, q yamlpath.Query) (string, error) {
	feat, err := doc.QueryPretty(q)
	if err != nil {
		return "", fmt.Errorf("replace-comment: %w", err)
	}
	src := doc.Source()
	if len(feat.Comments) == 0 {
		insertAt := endOfLine(src, feat.Span.End)
		lineEndIdx := insertAt
		for lineEndIdx > 0 && (src[lineEndIdx-1] == '\n' || src[lineEndIdx-1] == '\r') {
			lineEndIdx--
		}
		return src[:lineEndIdx] + " # " + op.New + src[lineEndIdx:], nil
	}
	last := feat.Comments[len(feat.Comments)-1]
	return splice(src, last.Span, "# "+op.New), nil
}

func (op MergeInto) apply(doc *yamlpath.Document, q yamlpath.Query) (string, error) {
	childQ := appendKey(q, op.Key)
	current := doc

	if _, err := current.Query(childQ, yamlpath.ModeExact); err != nil {
		added, aerr := Add{Key: op.Key, Value: map[string]any{}}.apply(current, q)
		if aerr != nil {
			return "", fmt.Errorf("merge-into: create child %q: %w", op.Key, aerr)
		}
		current, aerr = yamlpath.New(added)
		if aerr != nil {
			return "", fmt.Errorf("merge-into: %w", aerr)
		}
	}

	sorted := append([]KV(nil), op.Updates...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	for _, kv := range sorted {
		leafQ := appendKey(childQ, kv.Key)
		var newSrc string
		var err error
		if _, qerr := current.Query(leafQ, yamlpath.ModeExact); qerr == nil {
			newSrc, err = Replace{Value: kv.Value}.apply(current, leafQ)
		} else {
			newSrc, err = Add{Key: kv.Key, Value: kv.Value}.apply(current, childQ)
		}
		if err != nil {
			return "", fmt.Errorf("merge-into: update %q: %w", kv.Key, err)
		}
		current, err = yamlpath.New(newSrc)
		if err != nil {
			return "", fmt.Errorf("merge-into: %w", err)
		}
	}

	return current.Source(), nil
}

func appendKey(q yamlpath.Query, key string) yamlpath.Query {
	b := yamlpath.NewQueryBuilder()
	for _, c := range q.Components {
		if c.IsIndex {
			b.Index(c.Index)
		} else {
			b.Key(c.Key)
		}
	}
	return b.Key(key).Build()
}

func splice(src string, span yamlpath.Span, replacement string) string {
	return src[:span.Start] + replacement + src[span.End:]
}

func indentOf(src string, offset int) int {
	start := lineStart(src, offset)
	n := 0
	for start+n < len(src) && src[start+n] == ' ' {
		n++
	}
	return n
}

func lineStart(src string, offset int) int {
	i := offset
	for i > 0 && src[i-1] != '\n' {
		i--
	}
	return i
}

func endOfLine(src string, offset int) int {
	i := offset
	for i < len(src) && src[i] != '\n' {
		i++
	}
	if i < len(src) {
		i++
	}
	return i
}
