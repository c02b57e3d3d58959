package model

import (
	"fmt"
	"sort"

	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/inputs"
)

// Permissions is the decoded form of a `permissions:` block, either the
// bare string "read-all"/"write-all"/"none", or a per-scope mapping.
type Permissions struct {
	Shorthand string
	Scopes    map[string]string
}

func newPermissions(v any) Permissions {
	switch p := v.(type) {
	case string:
		return Permissions{Shorthand: p}
	case map[string]any:
		scopes := make(map[string]string, len(p))
		for k, val := range p {
			scopes[k] = asString(val)
		}
		return Permissions{Scopes: scopes}
	default:
		return Permissions{}
	}
}

// IsExplicit reports whether permissions were declared at all (as opposed
// to left at the runner's default).
func (p Permissions) IsExplicit() bool {
	return p.Shorthand != "" || len(p.Scopes) > 0
}

// Workflow is a typed, read-only view of a parsed workflow file, grounded
// on models/workflow.rs's Workflow wrapper over the github-actions-models
// workflow schema.
type Workflow struct {
	document
	Name        string
	RawOn       any
	Permissions Permissions
	Concurrency any
	Defaults    map[string]any
	Env         map[string]string
	Jobs        []Job
	jobsByID    map[string]Job
}

// FromString parses src (the raw bytes of a workflow file) into a Workflow,
// addressed by key.
func FromString(src string, key inputs.Key) (*Workflow, error) {
	doc, err := newDocument(src, key)
	if err != nil {
		return nil, err
	}
	decoded, err := doc.decode()
	if err != nil {
		return nil, err
	}

	w := &Workflow{
		document:    doc,
		Name:        asString(decoded["name"]),
		RawOn:       decoded["on"],
		Permissions: newPermissions(decoded["permissions"]),
		Concurrency: decoded["concurrency"],
		Defaults:    asMap(decoded["defaults"]),
		Env:         stringMap(decoded["env"]),
		jobsByID:    make(map[string]Job),
	}

	jobsRaw := asMap(decoded["jobs"])
	ids := make([]string, 0, len(jobsRaw))
	for id := range jobsRaw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		job := newJob(w, id, asMap(jobsRaw[id]))
		w.Jobs = append(w.Jobs, job)
		w.jobsByID[id] = job
	}

	return w, nil
}

// Job looks up a job by id.
func (w *Workflow) Job(id string) (Job, bool) {
	j, ok := w.jobsByID[id]
	return j, ok
}

// Location returns this workflow's SymbolicLocation, rooted at the
// document.
func (w *Workflow) Location() finding.SymbolicLocation {
	return w.location().WithAnnotation("this workflow")
}

func stringMap(v any) map[string]string {
	m := asMap(v)
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = fmt.Sprint(val)
	}
	return out
}

// Job is either a NormalJob or a ReusableWorkflowCallJob.
type Job interface {
	ID() string
	Location() finding.SymbolicLocation
	Needs() []string
	If() string
}

type jobCommon struct {
	id      string
	parent  *Workflow
	needs   []string
	ifCond  string
	running map[string]any
}

func (j jobCommon) ID() string   { return j.id }
func (j jobCommon) Needs() []string { return j.needs }
func (j jobCommon) If() string   { return j.ifCond }

func (j jobCommon) location() finding.SymbolicLocation {
	return j.parent.location().WithKeys("jobs", j.id)
}

func newJob(w *Workflow, id string, raw map[string]any) Job {
	common := jobCommon{id: id, parent: w, ifCond: asString(raw["if"]), running: raw}
	if needs, ok := raw["needs"]; ok {
		common.needs = toStringSlice(needs)
	}

	if _, ok := raw["uses"]; ok {
		return &ReusableWorkflowCallJob{
			jobCommon:   common,
			Uses:        asString(raw["uses"]),
			With:        stringMap(raw["with"]),
			Secrets:     raw["secrets"],
			Permissions: newPermissions(raw["permissions"]),
		}
	}

	timeoutMinutes, hasTimeout := toFloat(raw["timeout-minutes"])
	nj := &NormalJob{
		jobCommon:      common,
		RunsOn:         raw["runs-on"],
		Permissions:    newPermissions(raw["permissions"]),
		Environment:    raw["environment"],
		Container:      raw["container"],
		Services:       asMap(raw["services"]),
		TimeoutMinutes: timeoutMinutes,
		HasTimeout:     hasTimeout,
		ContinueOnErr:  raw["continue-on-error"],
		Env:            stringMap(raw["env"]),
		Defaults:       asMap(raw["defaults"]),
	}
	nj.Strategy = asMap(raw["strategy"])
	if m, ok := nj.Strategy["matrix"]; ok {
		nj.Matrix = NewMatrix(m)
	}

	for i, rawStep := range asSlice(raw["steps"]) {
		nj.Steps = append(nj.Steps, newStep(nj, i, asMap(rawStep)))
	}

	return nj
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toStringSlice(v any) []string {
	switch n := v.(type) {
	case string:
		return []string{n}
	case []any:
		out := make([]string, 0, len(n))
		for _, item := range n {
			out = append(out, asString(item))
		}
		return out
	default:
		return nil
	}
}

// NormalJob is a job with its own `runs-on`/`steps`, grounded on
// github_actions_models::workflow::job::NormalJob.
type NormalJob struct {
	jobCommon
	RunsOn         any
	Permissions    Permissions
	Environment    any
	Container      any
	Services       map[string]any
	Strategy       map[string]any
	Matrix         *Matrix
	TimeoutMinutes float64
	HasTimeout     bool
	ContinueOnErr  any
	Env            map[string]string
	Defaults       map[string]any
	Steps          []*Step
}

// Location returns this job's SymbolicLocation.
func (j *NormalJob) Location() finding.SymbolicLocation { return j.location() }

// ReusableWorkflowCallJob is a job that calls a reusable workflow via
// `uses:`, grounded on github_actions_models::workflow::job::ReusableWorkflowCallJob.
type ReusableWorkflowCallJob struct {
	jobCommon
	Uses        string
	With        map[string]string
	Secrets     any
	Permissions Permissions
}

// Location returns this job's SymbolicLocation.
func (j *ReusableWorkflowCallJob) Location() finding.SymbolicLocation { return j.location() }

// Step is a single step within a NormalJob, either a `uses:` step or a
// `run:` step.
type Step struct {
	Index         int
	parent        *NormalJob
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
	TimeoutMin    float64
}

func newStep(parent *NormalJob, index int, raw map[string]any) *Step {
	return &Step{
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

// Location returns this step's SymbolicLocation, `.jobs.<id>.steps[i]`.
func (s *Step) Location() finding.SymbolicLocation {
	return s.parent.location().WithKeys("steps").WithIndex(s.Index).WithAnnotation("this step")
}

// LocationWithName returns this step's `name:` key location when the step
// has one, else falls back to the step's own location.
func (s *Step) LocationWithName() finding.SymbolicLocation {
	if s.Name == "" {
		return s.Location()
	}
	return s.Location().WithKeys("name")
}

// ParsedUses returns the parsed form of this step's `uses:` clause, if any.
func (s *Step) ParsedUses() (Uses, bool) {
	if s.Uses == "" {
		return Uses{}, false
	}
	return ParseUses(s.Uses), true
}
