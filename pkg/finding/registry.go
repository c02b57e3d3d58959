package finding

// Ignorer decides whether a finding is excluded by some external policy
// (a wflint.yml rule). It is satisfied structurally by *config.Config
// without this package importing pkg/config, since pkg/config already
// imports pkg/finding for the Finding type its Ignores method takes.
type Ignorer interface {
	Ignores(*Finding) bool
}

// Registry collects every finding an audit run produces, write-once then
// read-many (spec.md 5 "Shared resources": the finding registry is
// write-once-then-read).
type Registry struct {
	findings []*Finding
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends f to the registry. Findings are kept in the order audits
// produced them (spec.md 5's ordering guarantees).
func (r *Registry) Add(f *Finding) {
	r.findings = append(r.findings, f)
}

// Findings returns every finding collected so far, in discovery order.
func (r *Registry) Findings() []*Finding {
	return r.findings
}

// FilterOptions bounds which findings Filter considers "remaining" after a
// run: persona floor, severity/confidence floors, and an optional
// configuration-derived ignore policy, per spec.md 4.10's FindingRegistry
// filter chain: persona, then severity/confidence, then inline-comment
// suppression (already computed at Build time), then config ignores.
type FilterOptions struct {
	PersonaFloor      Persona
	MinSeverity       Severity
	MinConfidence     Confidence
	Config            Ignorer
	IncludeSuppressed bool
}

// Filter returns the findings that survive every stage of the filter
// chain, in discovery order.
func (r *Registry) Filter(opts FilterOptions) []*Finding {
	out := make([]*Finding, 0, len(r.findings))
	for _, f := range r.findings {
		if f.Determinations.Persona < opts.PersonaFloor {
			continue
		}
		if f.Determinations.Severity < opts.MinSeverity {
			continue
		}
		if f.Determinations.Confidence < opts.MinConfidence {
			continue
		}
		if f.Ignored && !opts.IncludeSuppressed {
			continue
		}
		if opts.Config != nil && opts.Config.Ignores(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Ignored returns every finding that carries an inline suppression comment,
// regardless of persona/severity/confidence floors.
func (r *Registry) Ignored() []*Finding {
	var out []*Finding
	for _, f := range r.findings {
		if f.Ignored {
			out = append(out, f)
		}
	}
	return out
}

// Suppressed returns every finding below persona, keeping discovery order.
func (r *Registry) Suppressed(floor Persona) []*Finding {
	var out []*Finding
	for _, f := range r.findings {
		if f.Determinations.Persona < floor {
			out = append(out, f)
		}
	}
	return out
}

// FixableFindings returns every finding (from the given set, typically the
// result of Filter) carrying at least one Fix.
func FixableFindings(findings []*Finding) []*Finding {
	var out []*Finding
	for _, f := range findings {
		if len(f.Fixes) > 0 {
			out = append(out, f)
		}
	}
	return out
}

// ExitCode maps the most severe finding in findings to the process exit
// code spec.md 4.10/6 specifies: 0 if findings is empty, else 10 plus the
// 0..4 index of {Unknown,Informational,Low,Medium,High}.
func ExitCode(findings []*Finding) int {
	if len(findings) == 0 {
		return 0
	}
	worst := SeverityUnknown
	for _, f := range findings {
		if f.Determinations.Severity > worst {
			worst = f.Determinations.Severity
		}
	}
	return 10 + int(worst)
}
