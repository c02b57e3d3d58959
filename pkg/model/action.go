package model

import (
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/inputs"
)

// Action is a typed, read-only view of a parsed composite action.yml,
// grounded on models/action.rs's Action wrapper.
type Action struct {
	document
	Name        string
	Description string
	Inputs      map[string]any
	Outputs     map[string]any
	RunsUsing   string
	Steps       []*CompositeStep
}

// ActionFromString parses src (the raw bytes of an action.yml/action.yaml
// file) into an Action, addressed by key.
func ActionFromString(src string, key inputs.Key) (*Action, error) {
	doc, err := newDocument(src, key)
	if err != nil {
		return nil, err
	}
	decoded, err := doc.decode()
	if err != nil {
		return nil, err
	}

	a := &Action{
		document:    doc,
		Name:        asString(decoded["name"]),
		Description: asString(decoded["description"]),
		Inputs:      asMap(decoded["inputs"]),
		Outputs:     asMap(decoded["outputs"]),
	}

	runs := asMap(decoded["runs"])
	a.RunsUsing = asString(runs["using"])
	if a.RunsUsing == "composite" {
		for i, rawStep := range asSlice(runs["steps"]) {
			a.Steps = append(a.Steps, newCompositeStep(a, i, asMap(rawStep)))
		}
	}

	return a, nil
}

// IsComposite reports whether this action runs a list of its own steps,
// rather than delegating to a Docker image or a JS/container runtime.
func (a *Action) IsComposite() bool {
	return a.RunsUsing == "composite"
}

// Location returns this action's SymbolicLocation, rooted at the document.
func (a *Action) Location() finding.SymbolicLocation {
	return a.location().WithAnnotation("this action")
}

// HasInput reports whether name is a declared input; action inputs are
// always arbitrary strings, so there is no further capability to report.
func (a *Action) HasInput(name string) bool {
	_, ok := a.Inputs[name]
	return ok
}

// CompositeStep is a single step within a composite action's `runs.steps`.
type CompositeStep struct {
	Index         int
	parent        *Action
	Name          string
	ID            string
	If            string
	Uses          string
	With          map[string]string
	Run           string
	Shell         string
	WorkingDir    string
	Env           map[string]string
	ContinueOnErr any
}

func newCompositeStep(parent *Action, index int, raw map[string]any) *CompositeStep {
	return &CompositeStep{
		Index:         index,
		parent:        parent,
		Name:          asString(raw["name"]),
		ID:            asString(raw["id"]),
		If:            asString(raw["if"]),
		Uses:          asString(raw["uses"]),
		With:          stringMap(raw["with"]),
		Run:           asString(raw["run"]),
		Shell:         asString(raw["shell"]),
		WorkingDir:    asString(raw["working-directory"]),
		Env:           stringMap(raw["env"]),
		ContinueOnErr: raw["continue-on-error"],
	}
}

// Action returns this step's parent Action.
func (s *CompositeStep) Action() *Action { return s.parent }

// Location returns this step's SymbolicLocation, `.runs.steps[i]`.
func (s *CompositeStep) Location() finding.SymbolicLocation {
	return s.parent.Location().WithKeys("runs", "steps").WithIndex(s.Index).WithAnnotation("this step")
}

// LocationWithName returns this step's `name:` key location when the step
// has one, else falls back to the step's own location.
func (s *CompositeStep) LocationWithName() finding.SymbolicLocation {
	if s.Name == "" {
		return s.Location()
	}
	return s.Location().WithKeys("name")
}

// ParsedUses returns the parsed form of this step's `uses:` clause, if any.
func (s *CompositeStep) ParsedUses() (Uses, bool) {
	if s.Uses == "" {
		return Uses{}, false
	}
	return ParseUses(s.Uses), true
}
