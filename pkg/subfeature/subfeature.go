// Package subfeature locates a narrow fragment (e.g. an expression or a
// substring) within a wider YAML feature's already-recovered text, so that a
// finding can point at the fragment rather than the entire enclosing node.
package subfeature

import (
	"bytes"
	"regexp"
	"strings"
)

// Span is a [start, end) byte range within a feature's extracted text.
type Span struct {
	Start int
	End   int
}

// Adjust shifts the span by bias, e.g. to convert a span relative to a
// subfeature's search window back into one relative to the whole feature.
func (s Span) Adjust(bias int) Span {
	return Span{Start: s.Start + bias, End: s.End + bias}
}

// Fragment is what a Subfeature searches for. A fragment with no newlines is
// matched verbatim (Raw); one with newlines is matched with whitespace
// collapsed to `\s+`, since YAML reformats significant whitespace around
// multiline block scalars and expressions in ways an exact match would miss.
type Fragment struct {
	raw   string
	regex *regexp.Regexp
}

// NewFragment builds a Fragment from literal text, picking Raw or Regex
// matching depending on whether the text spans multiple lines.
func NewFragment(text string) Fragment {
	if !strings.Contains(text, "\n") {
		return Fragment{raw: text}
	}
	escaped := regexp.QuoteMeta(text)
	collapsed := whitespaceRun.ReplaceAllString(escaped, `\s+`)
	return Fragment{regex: regexp.MustCompile(collapsed)}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// IsRegex reports whether the fragment matches via a collapsed-whitespace
// regex rather than a verbatim substring search.
func (f Fragment) IsRegex() bool { return f.regex != nil }

// Subfeature is a fuzzily-anchored fragment within a larger feature: "after"
// marks a byte offset the fragment is known to start at or after, since the
// exact offset is lost to YAML's handling of insignificant whitespace.
type Subfeature struct {
	After    int
	Fragment Fragment
}

// New creates a Subfeature anchored after the given byte offset.
func New(after int, fragment string) Subfeature {
	return Subfeature{After: after, Fragment: NewFragment(fragment)}
}

// LocateWithin finds the subfeature inside feature's text, returning its
// span relative to feature's start, or false if it cannot be found.
func (s Subfeature) LocateWithin(feature string) (Span, bool) {
	bias := s.After
	if bias > len(feature) {
		return Span{}, false
	}
	focus := feature[bias:]

	if s.Fragment.regex != nil {
		loc := s.Fragment.regex.FindStringIndex(focus)
		if loc == nil {
			return Span{}, false
		}
		return Span{Start: loc[0], End: loc[1]}.Adjust(bias), true
	}

	idx := bytes.Index([]byte(focus), []byte(s.Fragment.raw))
	if idx < 0 {
		return Span{}, false
	}
	return Span{Start: idx, End: idx + len(s.Fragment.raw)}.Adjust(bias), true
}
