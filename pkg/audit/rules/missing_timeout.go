package rules

import (
	"github.com/wflint/wflint/pkg/audit"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/model"
)

const missingTimeoutIdent = "missing-timeout"

func init() {
	audit.Register(missingTimeoutIdent, func(ctx *audit.Context) (audit.Audit, error) {
		return missingTimeoutAudit{}, nil
	})
}

// missingTimeoutAudit flags a `runs-on` job with no `timeout-minutes`,
// grounded on audit/excessive_permissions.rs's sibling job-hygiene checks:
// GitHub's own default timeout is 360 minutes, long enough for a hung or
// malicious job to burn significant runner-minutes before it's killed.
type missingTimeoutAudit struct{}

func (missingTimeoutAudit) Meta() audit.Meta {
	return audit.Meta{
		Ident: missingTimeoutIdent,
		Desc:  "detects jobs that don't set timeout-minutes",
		URL:   "https://docs.wflint.dev/audits/#missing-timeout",
	}
}

func (missingTimeoutAudit) AuditNormalJob(ctx *audit.Context, job *model.NormalJob, wf *model.Workflow) ([]*finding.Finding, error) {
	if job.HasTimeout {
		return nil, nil
	}

	f, err := finding.NewBuilder(missingTimeoutIdent,
		"job does not set timeout-minutes and may run until GitHub's default timeout",
		"https://docs.wflint.dev/audits/#missing-timeout").
		Severity(finding.SeverityLow).
		Confidence(finding.ConfidenceHigh).
		Persona(finding.PersonaPedantic).
		AddLocation(job.Location().WithKeyOnly().WithPrimary()).
		Build(ctx.Docs)
	if err != nil {
		return nil, err
	}
	return []*finding.Finding{f}, nil
}
