package finding

import (
	"github.com/wflint/wflint/pkg/inputs"
	"github.com/wflint/wflint/pkg/subfeature"
	"github.com/wflint/wflint/pkg/yamlpath"
)

// FeatureKind distinguishes what portion of a located node a SymbolicLocation
// ultimately resolves to.
type FeatureKind int

const (
	FeatureNormal FeatureKind = iota
	FeatureKeyOnly
	FeatureSubfeature
)

// SymbolicLocation names *what* to locate (an input, a yamlpath Query, and
// presentation metadata) without yet resolving it against a parsed
// document. It is cheap to build, so audits can construct many of them
// before any YAML walking happens.
type SymbolicLocation struct {
	Key         inputs.Key
	Query       yamlpath.Query
	Mode        yamlpath.Mode
	Primary     bool
	Hidden      bool
	Annotation  string
	Link        string
	FeatureKind FeatureKind
	Subfeature  *subfeature.Subfeature
}

// NewLocation starts a SymbolicLocation rooted at key's document root.
func NewLocation(key inputs.Key) SymbolicLocation {
	return SymbolicLocation{Key: key}
}

// WithKeys appends mapping-key components to the location's route, returning
// a new value (e.g. `loc.WithKeys("jobs", "build", "steps")`). Use WithIndex
// to append a sequence index.
func (s SymbolicLocation) WithKeys(parts ...string) SymbolicLocation {
	b := yamlpath.NewQueryBuilder()
	for _, c := range s.Query.Components {
		if c.IsIndex {
			b.Index(c.Index)
		} else {
			b.Key(c.Key)
		}
	}
	for _, p := range parts {
		b.Key(p)
	}
	s.Query = b.Build()
	return s
}

// WithIndex appends a sequence-index component to the location's route.
func (s SymbolicLocation) WithIndex(i int) SymbolicLocation {
	b := yamlpath.NewQueryBuilder()
	for _, c := range s.Query.Components {
		if c.IsIndex {
			b.Index(c.Index)
		} else {
			b.Key(c.Key)
		}
	}
	b.Index(i)
	s.Query = b.Build()
	return s
}

// WithPrimary marks this as the finding's primary location. At least one
// location on a Finding must be primary; Builder.Build enforces this.
func (s SymbolicLocation) WithPrimary() SymbolicLocation {
	s.Primary = true
	return s
}

// WithHidden marks this location as present for fix-generation purposes but
// not meant to be surfaced in human-facing output.
func (s SymbolicLocation) WithHidden() SymbolicLocation {
	s.Hidden = true
	return s
}

// WithAnnotation attaches a short human-readable note shown alongside this
// location in rendered output (e.g. "this step" vs. "the triggering event").
func (s SymbolicLocation) WithAnnotation(text string) SymbolicLocation {
	s.Annotation = text
	return s
}

// WithLink overrides the link shown for this location instead of deriving
// one from the owning input's presentation path.
func (s SymbolicLocation) WithLink(link string) SymbolicLocation {
	s.Link = link
	return s
}

// WithKeyOnly marks the location as pointing at a mapping key rather than
// its value (e.g. underlining `uses:` instead of the uses clause itself).
func (s SymbolicLocation) WithKeyOnly() SymbolicLocation {
	s.FeatureKind = FeatureKeyOnly
	s.Mode = yamlpath.ModeKeyOnly
	return s
}

// WithSubfeature narrows the location to a Subfeature within the node's
// concretized text, e.g. a single expression inside a `run:` block.
func (s SymbolicLocation) WithSubfeature(sf subfeature.Subfeature) SymbolicLocation {
	s.FeatureKind = FeatureSubfeature
	s.Subfeature = &sf
	return s
}

// ConcreteLocation is a SymbolicLocation resolved against a specific parsed
// document: it carries the recovered byte span, 1-based line/column, and
// any comments attached to the matched node.
type ConcreteLocation struct {
	Span     yamlpath.Span
	Line     int
	Column   int
	Feature  string
	Comments []yamlpath.Comment
}

// Location pairs a resolved ConcreteLocation with the SymbolicLocation that
// produced it, since presentation metadata (primary/hidden/annotation)
// lives on the symbolic half.
type Location struct {
	Symbolic SymbolicLocation
	Concrete ConcreteLocation
}
