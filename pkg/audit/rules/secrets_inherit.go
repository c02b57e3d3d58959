package rules

import (
	"github.com/wflint/wflint/pkg/audit"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/model"
)

const secretsInheritIdent = "secrets-inherit"

func init() {
	audit.Register(secretsInheritIdent, func(ctx *audit.Context) (audit.Audit, error) {
		return secretsInheritAudit{}, nil
	})
}

// secretsInheritAudit flags a reusable-workflow call job that passes
// `secrets: inherit`, grounded on audit/secrets_inherit.rs: the called
// workflow receives every secret available to the caller, including ones
// it has no legitimate use for, widening its blast radius if compromised.
type secretsInheritAudit struct{}

func (secretsInheritAudit) Meta() audit.Meta {
	return audit.Meta{
		Ident: secretsInheritIdent,
		Desc:  "detects excessive secret inheritance in reusable workflow calls",
		URL:   "https://docs.wflint.dev/audits/#secrets-inherit",
	}
}

func (secretsInheritAudit) AuditReusableJob(ctx *audit.Context, job *model.ReusableWorkflowCallJob, wf *model.Workflow) ([]*finding.Finding, error) {
	if s, ok := job.Secrets.(string); !ok || s != "inherit" {
		return nil, nil
	}

	f, err := finding.NewBuilder(secretsInheritIdent,
		"job passes secrets: inherit to the called workflow",
		"https://docs.wflint.dev/audits/#secrets-inherit").
		Severity(finding.SeverityMedium).
		Confidence(finding.ConfidenceHigh).
		Persona(finding.PersonaRegular).
		AddLocation(job.Location().WithKeys("secrets").WithPrimary()).
		Build(ctx.Docs)
	if err != nil {
		return nil, err
	}
	return []*finding.Finding{f}, nil
}
