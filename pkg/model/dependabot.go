package model

import (
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/inputs"
)

// Dependabot is a typed, read-only view of a parsed dependabot.yml,
// grounded on github-actions-models's dependabot/v2.rs Dependabot struct.
type Dependabot struct {
	document
	Version              int
	EnableBetaEcosystems bool
	Updates              []*DependabotUpdate
}

// DependabotFromString parses src (the raw bytes of a dependabot.yml) into
// a Dependabot, addressed by key.
func DependabotFromString(src string, key inputs.Key) (*Dependabot, error) {
	doc, err := newDocument(src, key)
	if err != nil {
		return nil, err
	}
	decoded, err := doc.decode()
	if err != nil {
		return nil, err
	}

	d := &Dependabot{
		document:             doc,
		Version:              int(mustFloat(decoded["version"])),
		EnableBetaEcosystems: asBool(decoded["enable-beta-ecosystems"]),
	}

	for i, rawUpdate := range asSlice(decoded["updates"]) {
		d.Updates = append(d.Updates, newDependabotUpdate(d, i, asMap(rawUpdate)))
	}

	return d, nil
}

func mustFloat(v any) float64 {
	f, _ := toFloat(v)
	return f
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// Location returns this config's SymbolicLocation, rooted at the document.
func (d *Dependabot) Location() finding.SymbolicLocation {
	return d.location().WithAnnotation("this configuration")
}

// DependabotUpdate is a single entry of `updates:` within a dependabot.yml,
// grounded on dependabot/v2.rs's Update struct. InsecureExternalCodeExecution
// mirrors the `insecure-external-code-execution: allow|deny` field used by
// the dependabot-execution audit (spec.md 5.8 as corrected against the
// original source: the audit flags this field being explicitly set to
// "allow", not any detail of the commit-message or pull-request-branch-name
// settings).
type DependabotUpdate struct {
	Index                         int
	parent                        *Dependabot
	PackageEcosystem              string
	Directory                     string
	Directories                   []string
	InsecureExternalCodeExecution string
	Schedule                      map[string]any
	Registries                    []string
}

func newDependabotUpdate(parent *Dependabot, index int, raw map[string]any) *DependabotUpdate {
	u := &DependabotUpdate{
		Index:                         index,
		parent:                        parent,
		PackageEcosystem:              asString(raw["package-ecosystem"]),
		Directory:                     asString(raw["directory"]),
		InsecureExternalCodeExecution: asString(raw["insecure-external-code-execution"]),
		Schedule:                      asMap(raw["schedule"]),
		Registries:                    toStringSlice(raw["registries"]),
	}
	u.Directories = toStringSlice(raw["directories"])
	return u
}

// AllowsInsecureExternalCodeExecution reports whether this update
// explicitly opts in to running external, untrusted code (e.g. `gradle`
// plugin resolution, npm `postinstall` scripts) via
// `insecure-external-code-execution: allow`.
func (u *DependabotUpdate) AllowsInsecureExternalCodeExecution() bool {
	return u.InsecureExternalCodeExecution == "allow"
}

// Location returns this update's SymbolicLocation, `updates[i]`.
func (u *DependabotUpdate) Location() finding.SymbolicLocation {
	return u.parent.Location().WithKeys("updates").WithIndex(u.Index).WithAnnotation("this update")
}
