// Package yamlpath recovers exact byte spans, leading whitespace, and
// attached comments for nodes inside a YAML document, addressed by a
// structural path of map keys and sequence indices. It is built on
// goccy/go-yaml's AST, which (unlike gopkg.in/yaml.v3) exposes per-token
// byte offsets, making it possible to slice the original source text for a
// located node without re-serializing it.
package yamlpath

import (
	"fmt"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// Document wraps a parsed YAML document alongside its original source text.
type Document struct {
	src  string
	file *ast.File
	root ast.Node
}

// New parses src as a single-document YAML file, retaining comments so that
// Feature.Comments can later be inspected for inline suppression directives.
func New(src string) (*Document, error) {
	file, err := parser.ParseBytes([]byte(src), parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("yamlpath: parse: %w", err)
	}
	if len(file.Docs) == 0 {
		return nil, fmt.Errorf("yamlpath: empty document")
	}
	return &Document{src: src, file: file, root: file.Docs[0].Body}, nil
}

// Source returns the document's original, unmodified text.
func (d *Document) Source() string { return d.src }

// Root returns the document's top-level node.
func (d *Document) Root() ast.Node { return d.root }

// Comment is a YAML comment associated with a node, recovered from the
// token stream goccy/go-yaml retains in ParseComments mode.
type Comment struct {
	Text string
	Span Span
}

// Span is a [Start, End) byte range within the document's source text.
type Span struct {
	Start int
	End   int
}

// Extract returns the document's source text covered by span.
func (d *Document) Extract(span Span) string {
	if span.Start < 0 || span.End > len(d.src) || span.Start > span.End {
		return ""
	}
	return d.src[span.Start:span.End]
}

// ExtractWithLeadingWhitespace extends span backward to include any leading
// horizontal whitespace on the same line, matching how zizmor extracts
// features so that reformatted fixes preserve original indentation.
func (d *Document) ExtractWithLeadingWhitespace(span Span) string {
	start := span.Start
	for start > 0 && (d.src[start-1] == ' ' || d.src[start-1] == '\t') {
		start--
	}
	return d.src[start:span.End]
}
