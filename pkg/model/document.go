package model

import (
	"fmt"

	goyaml "github.com/goccy/go-yaml"

	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/inputs"
	"github.com/wflint/wflint/pkg/yamlpath"
)

// document is embedded by Workflow, Action, and Dependabot: it carries the
// byte-precise yamlpath.Document used for location recovery alongside the
// owning input's Key and an optional presentation link, grounded on the
// Action/Workflow/Dependabot structs' `key`/`link`/`document` fields.
type document struct {
	key      inputs.Key
	link     string
	doc      *yamlpath.Document
	presence map[string]bool
}

func newDocument(src string, key inputs.Key) (document, error) {
	doc, err := yamlpath.New(src)
	if err != nil {
		return document{}, fmt.Errorf("model: parse %s: %w", key, err)
	}
	link := ""
	if _, ok := key.Local(); !ok {
		link = key.URL()
	}
	return document{key: key, link: link, doc: doc}, nil
}

// Key returns the InputKey addressing this document.
func (d document) Key() inputs.Key { return d.key }

// Document returns the underlying byte-precise document, so that a
// DocumentSet can be built for finding concretization.
func (d document) Document() *yamlpath.Document { return d.doc }

// Source returns the original file bytes, for consumers (like actionlint
// schema validation) that need the raw text rather than the decoded tree.
func (d document) Source() string { return d.doc.Source() }

// decode unmarshals the document's source into a generic tree, the same
// shape walkPath expects (map[string]any / []any / scalars), mirroring the
// teacher's reliance on a single typed decode pass per input.
func (d document) decode() (map[string]any, error) {
	var out map[string]any
	if err := goyaml.Unmarshal([]byte(d.doc.Source()), &out); err != nil {
		return nil, fmt.Errorf("model: decode %s: %w", d.key, err)
	}
	return out, nil
}

// location starts a SymbolicLocation rooted at this document, carrying the
// presentation link when one is set.
func (d document) location() finding.SymbolicLocation {
	loc := finding.NewLocation(d.key)
	if d.link != "" {
		loc = loc.WithLink(d.link)
	}
	return loc
}

// asMap coerces a decoded value to a string-keyed map, returning an empty
// map rather than erroring: absent and malformed sections are handled by
// individual audits inspecting zero values, not by document decode.
func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// asSlice coerces a decoded value to a slice.
func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// asString coerces a decoded value to a string, or "" if it is not one
// (e.g. a YAML boolean-like `on: true` trigger key, which callers handle
// separately).
func asString(v any) string {
	s, _ := v.(string)
	return s
}
