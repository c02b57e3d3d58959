// Package finding models audit results: their severity/confidence/persona
// classification, their one-or-more source locations, and any suggested
// fixes. It generalizes zizmor's Rust Finding/FindingBuilder, with Go
// embedding standing in for the Rust derive-heavy enum stack.
package finding

import (
	"fmt"
	"strings"
)

// Persona models which audience a finding is aimed at, trading recall for
// precision as it widens.
type Persona int

const (
	PersonaRegular Persona = iota // default: minimal false positives
	PersonaPedantic
	PersonaAuditor
)

func (p Persona) String() string {
	switch p {
	case PersonaPedantic:
		return "pedantic"
	case PersonaAuditor:
		return "auditor"
	default:
		return "regular"
	}
}

// ParsePersona parses the CLI's --persona values (case-insensitive).
func ParsePersona(s string) (Persona, error) {
	switch strings.ToLower(s) {
	case "regular":
		return PersonaRegular, nil
	case "pedantic":
		return PersonaPedantic, nil
	case "auditor":
		return PersonaAuditor, nil
	default:
		return 0, fmt.Errorf("finding: unknown persona %q", s)
	}
}

// Confidence is how sure the audit is that a finding is a true positive.
type Confidence int

const (
	ConfidenceUnknown Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseConfidence parses the CLI's --min-confidence values (case-insensitive).
func ParseConfidence(s string) (Confidence, error) {
	switch strings.ToLower(s) {
	case "unknown":
		return ConfidenceUnknown, nil
	case "low":
		return ConfidenceLow, nil
	case "medium":
		return ConfidenceMedium, nil
	case "high":
		return ConfidenceHigh, nil
	default:
		return 0, fmt.Errorf("finding: unknown confidence %q", s)
	}
}

// Severity is how bad the underlying issue is if exploited.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityInformational
	SeverityLow
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityInformational:
		return "informational"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseSeverity parses the CLI's --min-severity values (case-insensitive).
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "unknown":
		return SeverityUnknown, nil
	case "informational":
		return SeverityInformational, nil
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	default:
		return 0, fmt.Errorf("finding: unknown severity %q", s)
	}
}

// Determinations bundles a finding's classification.
type Determinations struct {
	Confidence Confidence
	Severity   Severity
	Persona    Persona
}

// Finding is a single audit result, possibly spanning multiple locations
// (e.g. a step that is unsafe because of how a separate job configures it).
type Finding struct {
	Ident           string
	Desc            string
	URL             string
	Determinations  Determinations
	Locations       []Location
	Ignored         bool
	Fixes           []Fix
}

// ToMarkdown renders a short, stable Markdown summary of the finding's
// metadata (not its locations, which are rendered by pkg/render).
func (f *Finding) ToMarkdown() string {
	return fmt.Sprintf("`%s`: %s\n\nDocs: <%s>", f.Ident, f.Desc, f.URL)
}

// VisibleLocations returns the locations meant to be shown to a human,
// excluding any marked hidden by the audit that produced them.
func (f *Finding) VisibleLocations() []Location {
	out := make([]Location, 0, len(f.Locations))
	for _, l := range f.Locations {
		if !l.Symbolic.Hidden {
			out = append(out, l)
		}
	}
	return out
}

// PrimaryLocation returns the finding's first primary location. Builder.Build
// guarantees at least one exists before a Finding is ever constructed.
func (f *Finding) PrimaryLocation() Location {
	for _, l := range f.Locations {
		if l.Symbolic.Primary {
			return l
		}
	}
	panic("finding: no primary location (Builder.Build invariant violated)")
}

// Builder incrementally assembles a Finding, concretizing symbolic
// locations against a document only at Build time.
type Builder struct {
	ident      string
	desc       string
	url        string
	severity   Severity
	confidence Confidence
	persona    Persona
	raw        []Location
	symbolic   []SymbolicLocation
	fixes      []Fix
}

// NewBuilder starts a Builder for the audit identified by ident.
func NewBuilder(ident, desc, url string) *Builder {
	return &Builder{ident: ident, desc: desc, url: url}
}

func (b *Builder) Severity(s Severity) *Builder     { b.severity = s; return b }
func (b *Builder) Confidence(c Confidence) *Builder { b.confidence = c; return b }
func (b *Builder) Persona(p Persona) *Builder       { b.persona = p; return b }

func (b *Builder) AddRawLocation(l Location) *Builder {
	b.raw = append(b.raw, l)
	return b
}

func (b *Builder) AddLocation(l SymbolicLocation) *Builder {
	b.symbolic = append(b.symbolic, l)
	return b
}

func (b *Builder) AddFix(f Fix) *Builder {
	b.fixes = append(b.fixes, f)
	return b
}

// Concretizer resolves a SymbolicLocation to a Location against a parsed
// document, recovering its concrete byte span.
type Concretizer interface {
	Concretize(SymbolicLocation) (Location, error)
}

// Build concretizes all symbolic locations via doc, checks the "at least
// one primary location" invariant, evaluates inline-comment suppression,
// and produces the final, immutable Finding.
func (b *Builder) Build(doc Concretizer) (*Finding, error) {
	locations := make([]Location, 0, len(b.symbolic)+len(b.raw))
	for _, sym := range b.symbolic {
		loc, err := doc.Concretize(sym)
		if err != nil {
			return nil, fmt.Errorf("finding %s: concretize location: %w", b.ident, err)
		}
		locations = append(locations, loc)
	}
	locations = append(locations, b.raw...)

	hasPrimary := false
	for _, l := range locations {
		if l.Symbolic.Primary {
			hasPrimary = true
			break
		}
	}
	if !hasPrimary {
		return nil, fmt.Errorf("finding %s: at least one location must be marked primary", b.ident)
	}

	return &Finding{
		Ident: b.ident,
		Desc:  b.desc,
		URL:   b.url,
		Determinations: Determinations{
			Confidence: b.confidence,
			Severity:   b.severity,
			Persona:    b.persona,
		},
		Locations: locations,
		Ignored:   ignoredFromInlineComments(locations, b.ident),
		Fixes:     b.fixes,
	}, nil
}

func ignoredFromInlineComments(locations []Location, ident string) bool {
	for _, l := range locations {
		for _, c := range l.Concrete.Comments {
			if c.Ignores(ident) {
				return true
			}
		}
	}
	return false
}
