package rules

import (
	"fmt"
	"strings"

	"github.com/wflint/wflint/pkg/audit"
	"github.com/wflint/wflint/pkg/expr"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/model"
	"github.com/wflint/wflint/pkg/subfeature"
)

const templateInjectionIdent = "template-injection"

func init() {
	audit.Register(templateInjectionIdent, func(ctx *audit.Context) (audit.Audit, error) {
		return templateInjectionAudit{}, nil
	})
}

// templateInjectionAudit flags `${{ ... }}` expressions whose context is
// (fully or partially) attacker-controlled used inside a `run:` script or
// a string `with:` input, where the expanded text is interpolated
// verbatim into a shell command or similarly dangerous sink, grounded on
// audit/template_injection.rs's context classification table.
type templateInjectionAudit struct{}

func (templateInjectionAudit) Meta() audit.Meta {
	return audit.Meta{
		Ident: templateInjectionIdent,
		Desc:  "identifies template injections in GitHub Actions",
		URL:   "https://docs.wflint.dev/audits/#template-injection",
	}
}

// verdict is the outcome of classifying one context reference found inside
// an expression fence.
type verdict struct {
	skip       bool
	severity   finding.Severity
	confidence finding.Confidence
	reason     string
}

func classifyContext(c *expr.Context, env map[string]string, matrix *model.Matrix) verdict {
	switch {
	case c.ChildOf("secrets"), c.EqualRaw("github.token"):
		return verdict{skip: true}
	case c.ChildOf("inputs"):
		return verdict{severity: finding.SeverityHigh, confidence: finding.ConfidenceLow, reason: "workflow_call/workflow_dispatch input of unknown type"}
	case c.ChildOf("github.event"):
		path := eventSubpath(c)
		if isAttackerControlledEventPath(path) {
			return verdict{severity: finding.SeverityHigh, confidence: finding.ConfidenceHigh, reason: "attacker-controllable github.event field"}
		}
		return verdict{skip: true}
	case c.ChildOf("env"):
		name, _ := c.PopIf("env")
		if _, ok := env[name]; ok {
			return verdict{skip: true}
		}
		return verdict{severity: finding.SeverityLow, confidence: finding.ConfidenceHigh, reason: "environment variable not statically defined in this workflow"}
	case c.ChildOf("matrix"):
		if matrix != nil && matrix.ExpandsToStaticValues(c) {
			return verdict{skip: true}
		}
		return verdict{severity: finding.SeverityMedium, confidence: finding.ConfidenceMedium, reason: "matrix value not provably static"}
	default:
		return verdict{skip: true}
	}
}

// eventSubpath strips the leading "github.event." prefix from c's raw text,
// falling back to the raw text itself if the prefix is (unexpectedly) not
// present.
func eventSubpath(c *expr.Context) string {
	parts := strings.SplitN(c.Raw, ".", 3)
	if len(parts) == 3 && strings.EqualFold(parts[0], "github") && strings.EqualFold(parts[1], "event") {
		return parts[2]
	}
	return c.Raw
}

func scanForInjection(ident string, text string, loc finding.SymbolicLocation, env map[string]string, matrix *model.Matrix, docs *finding.DocumentSet) ([]*finding.Finding, error) {
	var out []*finding.Finding
	for _, fence := range expr.FindFences(text) {
		e, err := expr.Parse(fence.Inner)
		if err != nil {
			continue
		}
		for _, c := range expr.Contexts(e) {
			v := classifyContext(c, env, matrix)
			if v.skip {
				continue
			}

			sub := subfeature.New(0, text[fence.Start:fence.End])
			f, err := finding.NewBuilder(ident,
				fmt.Sprintf("code injection via %s (%s)", c.Raw, v.reason),
				"https://docs.wflint.dev/audits/#template-injection").
				Severity(v.severity).
				Confidence(v.confidence).
				Persona(finding.PersonaRegular).
				AddLocation(loc.WithSubfeature(sub).WithPrimary()).
				Build(docs)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
			break // one finding per fence: the first offending context found
		}
	}
	return out, nil
}

func (templateInjectionAudit) AuditStep(ctx *audit.Context, step *model.Step, job *model.NormalJob, wf *model.Workflow) ([]*finding.Finding, error) {
	env := mergeEnv(wf.Env, job.Env, step.Env)
	var out []*finding.Finding

	if step.Run != "" {
		fs, err := scanForInjection(templateInjectionIdent, step.Run, step.Location().WithKeys("run"), env, job.Matrix, ctx.Docs)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}

	for key, value := range step.With {
		fs, err := scanForInjection(templateInjectionIdent, value, step.Location().WithKeys("with", key), env, job.Matrix, ctx.Docs)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}

	return out, nil
}

func (templateInjectionAudit) AuditCompositeStep(ctx *audit.Context, step *model.CompositeStep, action *model.Action) ([]*finding.Finding, error) {
	env := step.Env
	var out []*finding.Finding

	if step.Run != "" {
		fs, err := scanForInjection(templateInjectionIdent, step.Run, step.Location().WithKeys("run"), env, nil, ctx.Docs)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}

	for key, value := range step.With {
		fs, err := scanForInjection(templateInjectionIdent, value, step.Location().WithKeys("with", key), env, nil, ctx.Docs)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}

	return out, nil
}

func mergeEnv(layers ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}
