package audit

import (
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/inputs"
	"github.com/wflint/wflint/pkg/model"
)

// maxConcurrentInputs bounds how many inputs Run audits at once, the same
// capped-fan-out shape the teacher uses for concurrent downloads.
var maxConcurrentInputs = runtime.GOMAXPROCS(0)

// ParsedInput pairs an input's Key with whichever of the three domain
// models it decodes to (exactly one of Workflow/Action/Dependabot is
// non-nil) and its original source text, so Run can dispatch it without
// the runner needing to know how each input kind was loaded.
type ParsedInput struct {
	Key        inputs.Key
	Source     string
	Workflow   *model.Workflow
	Action     *model.Action
	Dependabot *model.Dependabot
}

// Runner dispatches a fixed, ordered set of audits across a batch of
// parsed inputs, per spec.md 4.10/5.
type Runner struct {
	audits []Audit
}

// NewRunner builds a Runner over audits, in the order they should run.
func NewRunner(audits []Audit) *Runner {
	return &Runner{audits: audits}
}

// inputResult carries one input's outcome back from a parallel worker;
// findings are kept out of the shared Registry until the gathering phase
// below, since Registry.Add isn't safe for concurrent use.
type inputResult struct {
	key      inputs.Key
	findings []*finding.Finding
	err      error
}

// Run dispatches every registered audit against every input, in the order
// described by spec.md 5: inputs are visited in their registry order, and
// within a single input, audits run in registration order (inner loop)
// with each audit's own findings in discovery order (whole input, then
// jobs, then steps). Inputs are independent of one another, so they are
// audited concurrently, bounded by maxConcurrentInputs; conc's
// NewWithResults preserves submission order in its returned slice, so the
// findings are still appended to the registry in the same order a
// sequential run would have produced.
func (r *Runner) Run(ctx *Context, ins []ParsedInput) (*finding.Registry, error) {
	reg := finding.NewRegistry()

	p := pool.NewWithResults[inputResult]().WithMaxGoroutines(maxConcurrentInputs)
	for _, in := range ins {
		in := in
		p.Go(func() inputResult {
			var findings []*finding.Finding
			for _, a := range r.audits {
				fs, err := r.dispatchOne(ctx, a, in)
				if err != nil {
					return inputResult{key: in.Key, err: fmt.Errorf("audit %s on %s: %w", a.Meta().Ident, in.Key, err)}
				}
				findings = append(findings, fs...)
			}
			return inputResult{key: in.Key, findings: findings}
		})
	}

	for _, res := range p.Wait() {
		if res.err != nil {
			return reg, res.err
		}
		for _, f := range res.findings {
			reg.Add(f)
		}
	}

	return reg, nil
}

func (r *Runner) dispatchOne(ctx *Context, a Audit, in ParsedInput) ([]*finding.Finding, error) {
	var out []*finding.Finding

	if raw, ok := a.(RawAuditor); ok {
		fs, err := raw.AuditRaw(ctx, in.Key, in.Source)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}

	switch {
	case in.Workflow != nil:
		fs, err := dispatchWorkflow(ctx, a, in.Workflow)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	case in.Action != nil:
		fs, err := dispatchAction(ctx, a, in.Action)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	case in.Dependabot != nil:
		if aud, ok := a.(DependabotAuditor); ok {
			fs, err := aud.AuditDependabot(ctx, in.Dependabot)
			if err != nil {
				return nil, err
			}
			out = append(out, fs...)
		}
	}

	return out, nil
}

func dispatchWorkflow(ctx *Context, a Audit, wf *model.Workflow) ([]*finding.Finding, error) {
	var out []*finding.Finding

	if aud, ok := a.(WorkflowAuditor); ok {
		fs, err := aud.AuditWorkflow(ctx, wf)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}

	for _, job := range wf.Jobs {
		switch j := job.(type) {
		case *model.NormalJob:
			if aud, ok := a.(NormalJobAuditor); ok {
				fs, err := aud.AuditNormalJob(ctx, j, wf)
				if err != nil {
					return nil, err
				}
				out = append(out, fs...)
			}
			if aud, ok := a.(StepAuditor); ok {
				for _, step := range j.Steps {
					fs, err := aud.AuditStep(ctx, step, j, wf)
					if err != nil {
						return nil, err
					}
					out = append(out, fs...)
				}
			}
		case *model.ReusableWorkflowCallJob:
			if aud, ok := a.(ReusableJobAuditor); ok {
				fs, err := aud.AuditReusableJob(ctx, j, wf)
				if err != nil {
					return nil, err
				}
				out = append(out, fs...)
			}
		}
	}

	return out, nil
}

func dispatchAction(ctx *Context, a Audit, action *model.Action) ([]*finding.Finding, error) {
	var out []*finding.Finding

	if aud, ok := a.(ActionAuditor); ok {
		fs, err := aud.AuditAction(ctx, action)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}

	if aud, ok := a.(CompositeStepAuditor); ok {
		for _, step := range action.Steps {
			fs, err := aud.AuditCompositeStep(ctx, step, action)
			if err != nil {
				return nil, err
			}
			out = append(out, fs...)
		}
	}

	return out, nil
}
