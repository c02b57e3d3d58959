package rules

import (
	"github.com/wflint/wflint/pkg/audit"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/model"
)

const dependabotExecutionIdent = "dependabot-execution"

func init() {
	audit.Register(dependabotExecutionIdent, func(ctx *audit.Context) (audit.Audit, error) {
		return dependabotExecutionAudit{}, nil
	})
}

// dependabotExecutionAudit flags a dependabot.yml update that explicitly
// opts in to `insecure-external-code-execution: allow`, grounded on
// dependabot_execution.rs (see DESIGN.md's corrected semantics against
// original_source): this permits Dependabot to execute code from the
// manifest it's updating (e.g. Gradle or npm lifecycle scripts) during
// version resolution.
type dependabotExecutionAudit struct{}

func (dependabotExecutionAudit) Meta() audit.Meta {
	return audit.Meta{
		Ident: dependabotExecutionIdent,
		Desc:  "detects Dependabot configurations that allow insecure external code execution",
		URL:   "https://docs.wflint.dev/audits/#dependabot-execution",
	}
}

func (dependabotExecutionAudit) AuditDependabot(ctx *audit.Context, dep *model.Dependabot) ([]*finding.Finding, error) {
	var out []*finding.Finding

	for _, u := range dep.Updates {
		if !u.AllowsInsecureExternalCodeExecution() {
			continue
		}

		f, err := finding.NewBuilder(dependabotExecutionIdent,
			"update allows insecure external code execution",
			"https://docs.wflint.dev/audits/#dependabot-execution").
			Severity(finding.SeverityMedium).
			Confidence(finding.ConfidenceHigh).
			Persona(finding.PersonaRegular).
			AddLocation(u.Location().WithKeys("insecure-external-code-execution").WithPrimary()).
			Build(ctx.Docs)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}

	return out, nil
}
