package rules

import (
	"fmt"

	"github.com/wflint/wflint/pkg/audit"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/ghclient"
	"github.com/wflint/wflint/pkg/model"
)

const impostorCommitIdent = "impostor-commit"

func init() {
	audit.Register(impostorCommitIdent, func(ctx *audit.Context) (audit.Audit, error) {
		if ctx.Offline || ctx.GH == nil {
			return nil, audit.Skip(impostorCommitIdent, fmt.Errorf("requires network access to GitHub"))
		}
		return &impostorCommitAudit{gh: ctx.GH, cache: map[string]bool{}}, nil
	})
}

// impostorCommitAudit flags a `uses: owner/repo@<sha>` pin whose commit SHA
// is not reachable from any of owner/repo's branches or tags, grounded on
// audit/impostor_commit.rs: such a SHA resolves today only because GitHub
// caches any commit it has ever seen (including ones pushed to a fork and
// later force-pushed away), so the action a workflow runs may not be the
// one its author ever reviewed.
type impostorCommitAudit struct {
	gh    *ghclient.Client
	cache map[string]bool // "owner/repo@sha" -> reachable
}

func (*impostorCommitAudit) Meta() audit.Meta {
	return audit.Meta{
		Ident: impostorCommitIdent,
		Desc:  "detects commits that don't belong to the action's repository",
		URL:   "https://docs.wflint.dev/audits/#impostor-commit",
	}
}

func (a *impostorCommitAudit) reachable(ctx *audit.Context, owner, repo, sha string) (bool, error) {
	key := fmt.Sprintf("%s/%s@%s", owner, repo, sha)
	if v, ok := a.cache[key]; ok {
		return v, nil
	}

	branches, err := a.gh.ListBranches(ctx.Go, owner, repo)
	if err != nil {
		return false, err
	}
	for _, b := range branches {
		status, present, err := a.gh.CompareCommits(ctx.Go, owner, repo, b.Name, sha)
		if err != nil {
			return false, err
		}
		if present && (status == ghclient.ComparisonIdentical || status == ghclient.ComparisonBehind) {
			a.cache[key] = true
			return true, nil
		}
	}

	tags, err := a.gh.ListTags(ctx.Go, owner, repo)
	if err != nil {
		return false, err
	}
	for _, t := range tags {
		status, present, err := a.gh.CompareCommits(ctx.Go, owner, repo, t.Name, sha)
		if err != nil {
			return false, err
		}
		if present && (status == ghclient.ComparisonIdentical || status == ghclient.ComparisonBehind) {
			a.cache[key] = true
			return true, nil
		}
	}

	a.cache[key] = false
	return false, nil
}

func (a *impostorCommitAudit) check(ctx *audit.Context, uses model.Uses, loc finding.SymbolicLocation) (*finding.Finding, error) {
	repo, ok := uses.AsRepository()
	if !ok {
		return nil, nil
	}
	sha, ok := uses.CommitRef()
	if !ok {
		return nil, nil
	}

	ok, err := a.reachable(ctx, repo.Owner, repo.Repo, sha)
	if err != nil {
		return nil, fmt.Errorf("impostor-commit: %s/%s@%s: %w", repo.Owner, repo.Repo, sha, err)
	}
	if ok {
		return nil, nil
	}

	return finding.NewBuilder(impostorCommitIdent,
		fmt.Sprintf("commit %s is not reachable from any branch or tag of %s/%s", sha, repo.Owner, repo.Repo),
		"https://docs.wflint.dev/audits/#impostor-commit").
		Severity(finding.SeverityHigh).
		Confidence(finding.ConfidenceHigh).
		Persona(finding.PersonaRegular).
		AddLocation(loc.WithKeys("uses").WithPrimary()).
		Build(ctx.Docs)
}

func (a *impostorCommitAudit) AuditStep(ctx *audit.Context, step *model.Step, job *model.NormalJob, wf *model.Workflow) ([]*finding.Finding, error) {
	uses, ok := step.ParsedUses()
	if !ok {
		return nil, nil
	}
	f, err := a.check(ctx, uses, step.Location())
	if err != nil || f == nil {
		return nil, err
	}
	return []*finding.Finding{f}, nil
}

func (a *impostorCommitAudit) AuditReusableJob(ctx *audit.Context, job *model.ReusableWorkflowCallJob, wf *model.Workflow) ([]*finding.Finding, error) {
	uses := model.ParseUses(job.Uses)
	f, err := a.check(ctx, uses, job.Location())
	if err != nil || f == nil {
		return nil, err
	}
	return []*finding.Finding{f}, nil
}
