package rules

import (
	"fmt"
	"strings"

	"github.com/wflint/wflint/pkg/audit"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/model"
)

const artipackedIdent = "artipacked"

func init() {
	audit.Register(artipackedIdent, func(ctx *audit.Context) (audit.Audit, error) {
		return artipackedAudit{}, nil
	})
}

// artipackedAudit flags an actions/checkout step that leaves credentials
// persisted in the checked-out .git directory, grounded on
// audit/artipacked.rs: a subsequent actions/upload-artifact step whose
// path could capture that directory raises the finding's confidence.
type artipackedAudit struct{}

func (artipackedAudit) Meta() audit.Meta {
	return audit.Meta{
		Ident: artipackedIdent,
		Desc:  "detects leaked credentials from GitHub Actions artifacts",
		URL:   "https://docs.wflint.dev/audits/#artipacked",
	}
}

func (a artipackedAudit) AuditNormalJob(ctx *audit.Context, job *model.NormalJob, wf *model.Workflow) ([]*finding.Finding, error) {
	var out []*finding.Finding

	for i, step := range job.Steps {
		uses, ok := step.ParsedUses()
		if !ok {
			continue
		}
		repo, ok := uses.AsRepository()
		if !ok || !strings.EqualFold(repo.Owner, "actions") || !strings.EqualFold(repo.Repo, "checkout") {
			continue
		}
		if strings.EqualFold(step.With["persist-credentials"], "false") {
			continue
		}

		confidence := finding.ConfidenceLow
		for _, later := range job.Steps[i+1:] {
			laterUses, ok := later.ParsedUses()
			if !ok {
				continue
			}
			laterRepo, ok := laterUses.AsRepository()
			if !ok || !strings.EqualFold(laterRepo.Owner, "actions") || !strings.EqualFold(laterRepo.Repo, "upload-artifact") {
				continue
			}
			if isDangerousArtifactPath(later.With["path"]) {
				confidence = finding.ConfidenceHigh
				break
			}
		}

		f, err := finding.NewBuilder(artipackedIdent,
			fmt.Sprintf("%s/%s does not set persist-credentials: false", repo.Owner, repo.Repo),
			"https://docs.wflint.dev/audits/#artipacked").
			Severity(finding.SeverityMedium).
			Confidence(confidence).
			Persona(finding.PersonaRegular).
			AddLocation(step.Location().WithKeys("uses").WithAnnotation("this step does not set persist-credentials: false").WithPrimary()).
			Build(ctx.Docs)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}

	return out, nil
}

// isDangerousArtifactPath reports whether an upload-artifact `path:` value
// could plausibly capture the whole checked-out working directory,
// including its persisted `.git` credentials.
func isDangerousArtifactPath(path string) bool {
	trimmed := strings.TrimSpace(path)
	switch trimmed {
	case "", ".", "..":
		return trimmed != ""
	}
	if strings.HasPrefix(trimmed, "./") || strings.HasPrefix(trimmed, "../") {
		return true
	}
	return strings.Contains(trimmed, "github.workspace")
}
