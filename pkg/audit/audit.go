// Package audit implements the audit registry and runner (spec.md 4.10):
// it dispatches each loaded input, and its jobs/steps, to every registered
// audit's applicable entry points, and collects the resulting findings.
package audit

import (
	"context"
	"fmt"

	"github.com/wflint/wflint/pkg/config"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/ghclient"
	"github.com/wflint/wflint/pkg/inputs"
	"github.com/wflint/wflint/pkg/logger"
	"github.com/wflint/wflint/pkg/model"
)

var log = logger.New("audit")

// Meta is the fixed metadata every audit declares, standing in for the
// Rust side's audit-metadata derive macro (spec.md 4.10).
type Meta struct {
	Ident string
	Desc  string
	URL   string
}

// Audit is the base every audit entry-point interface embeds. An audit
// implements whichever of the entry-point interfaces below apply to the
// inputs it inspects; the runner discovers which ones a given audit
// satisfies with a type switch rather than requiring every method.
type Audit interface {
	Meta() Meta
}

// WorkflowAuditor inspects a workflow as a whole (triggers, permissions,
// concurrency) once per workflow input.
type WorkflowAuditor interface {
	Audit
	AuditWorkflow(ctx *Context, wf *model.Workflow) ([]*finding.Finding, error)
}

// NormalJobAuditor inspects a single `runs-on` job.
type NormalJobAuditor interface {
	Audit
	AuditNormalJob(ctx *Context, job *model.NormalJob, wf *model.Workflow) ([]*finding.Finding, error)
}

// ReusableJobAuditor inspects a single reusable-workflow-call job.
type ReusableJobAuditor interface {
	Audit
	AuditReusableJob(ctx *Context, job *model.ReusableWorkflowCallJob, wf *model.Workflow) ([]*finding.Finding, error)
}

// StepAuditor inspects a single step of a normal job.
type StepAuditor interface {
	Audit
	AuditStep(ctx *Context, step *model.Step, job *model.NormalJob, wf *model.Workflow) ([]*finding.Finding, error)
}

// CompositeStepAuditor inspects a single step of a composite action.
type CompositeStepAuditor interface {
	Audit
	AuditCompositeStep(ctx *Context, step *model.CompositeStep, action *model.Action) ([]*finding.Finding, error)
}

// ActionAuditor inspects a composite action as a whole.
type ActionAuditor interface {
	Audit
	AuditAction(ctx *Context, action *model.Action) ([]*finding.Finding, error)
}

// DependabotAuditor inspects a Dependabot configuration as a whole.
type DependabotAuditor interface {
	Audit
	AuditDependabot(ctx *Context, dep *model.Dependabot) ([]*finding.Finding, error)
}

// RawAuditor inspects the raw source text of any input, once per input,
// regardless of kind. Used by audits that only need to text-scan (e.g. a
// secret-in-expression regex) without walking the parsed model.
type RawAuditor interface {
	Audit
	AuditRaw(ctx *Context, key inputs.Key, source string) ([]*finding.Finding, error)
}

// Context bundles the shared, read-only collaborators an audit's entry
// points may need: the finding concretizer, the run's configuration, an
// online GitHub client (nil when offline), and the standard library
// context.Context governing cancellation of any HTTP calls an audit makes.
type Context struct {
	Go       context.Context
	Docs     *finding.DocumentSet
	Config   *config.Config
	GH       *ghclient.Client
	Offline  bool
	RuleOpts func(ident string, out interface{}) (bool, error)
}

// RuleConfig decodes the rule-specific config block for ident into out. It
// is a thin forwarder so audits don't need to reach into ctx.Config
// directly (and so a nil Config is handled once, here).
func (c *Context) RuleConfig(ident string, out interface{}) (bool, error) {
	if c.RuleOpts != nil {
		return c.RuleOpts(ident, out)
	}
	if c.Config == nil {
		return false, nil
	}
	return c.Config.RuleConfig(ident, out)
}

// LoadError is returned by a Factory to decline registering an audit
// (Skip, e.g. an online audit with no token) or to abort the run entirely
// (Fail, e.g. malformed built-in audit config), per spec.md 4.11/7's
// AuditLoadError{Skip|Fail}.
type LoadError struct {
	Ident string
	Skip  bool
	Err   error
}

func (e *LoadError) Error() string {
	kind := "fail"
	if e.Skip {
		kind = "skip"
	}
	return fmt.Sprintf("audit %s: %s: %v", e.Ident, kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Skip builds a LoadError that silently removes an audit from the run.
func Skip(ident string, reason error) *LoadError {
	return &LoadError{Ident: ident, Skip: true, Err: reason}
}

// Fail builds a LoadError that aborts the whole run.
func Fail(ident string, reason error) *LoadError {
	return &LoadError{Ident: ident, Skip: false, Err: reason}
}
