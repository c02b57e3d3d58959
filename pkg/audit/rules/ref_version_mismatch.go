package rules

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"

	"github.com/wflint/wflint/pkg/audit"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/ghclient"
	"github.com/wflint/wflint/pkg/model"
	"github.com/wflint/wflint/pkg/yamlpath"
)

const refVersionMismatchIdent = "ref-version-mismatch"

func init() {
	audit.Register(refVersionMismatchIdent, func(ctx *audit.Context) (audit.Audit, error) {
		if ctx.Offline || ctx.GH == nil {
			return nil, audit.Skip(refVersionMismatchIdent, fmt.Errorf("requires network access to GitHub"))
		}
		return &refVersionMismatchAudit{gh: ctx.GH}, nil
	})
}

// versionCommentPatterns recognizes the handful of ways authors annotate a
// pinned commit with the human-readable tag it came from, e.g.
// `uses: actions/checkout@a1b2c3... # tag=v4.1.2` or `# v4.1.2`.
var versionCommentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)#\s*tag\s*=\s*(v?\d+(?:\.\d+){0,2})`),
	regexp.MustCompile(`(?i)#\s*(?:version|ver)\s*[:=]\s*(v?\d+(?:\.\d+){0,2})`),
	regexp.MustCompile(`#\s*(v\d+(?:\.\d+){0,2})\s*$`),
}

func extractVersionComment(comments []yamlpath.Comment) (string, bool) {
	for _, c := range comments {
		for _, pattern := range versionCommentPatterns {
			if m := pattern.FindStringSubmatch(c.Text); m != nil {
				return m[1], true
			}
		}
	}
	return "", false
}

// refVersionMismatchAudit flags a `uses: owner/repo@<sha>` pin whose trailing
// comment names a version tag that resolves to a different commit than the
// one actually pinned, grounded on audit/ref_version_mismatch.rs: a stale
// comment like this is either a copy-paste mistake or a sign the pin was
// bumped without checking it still matches its own label.
//
// semver.NewVersion only screens the comment: it accepts abbreviated tags
// ("v4" or "v4.1") and rejects text that is not a version at all. The
// comment's raw text, not the parsed version, is then resolved as a ref
// and its commit compared with the pinned SHA.
type refVersionMismatchAudit struct {
	gh *ghclient.Client
}

func (*refVersionMismatchAudit) Meta() audit.Meta {
	return audit.Meta{
		Ident: refVersionMismatchIdent,
		Desc:  "detects commit SHAs that don't match their version comment tags",
		URL:   "https://docs.wflint.dev/audits/#ref-version-mismatch",
	}
}

func (a *refVersionMismatchAudit) checkCommon(ctx *audit.Context, uses model.Uses, loc finding.SymbolicLocation) (*finding.Finding, error) {
	repo, ok := uses.AsRepository()
	if !ok {
		return nil, nil
	}
	sha, ok := uses.CommitRef()
	if !ok {
		return nil, nil
	}

	usesLoc := loc.WithKeys("uses")
	concrete, err := ctx.Docs.Concretize(usesLoc)
	if err != nil {
		return nil, nil
	}

	versionComment, ok := extractVersionComment(concrete.Concrete.Comments)
	if !ok {
		return nil, nil
	}

	// A comment that doesn't parse as a version at all (semver.NewVersion's
	// lenient "v4"/"v4.1"/"v4.1.2" acceptance) isn't a version claim worth
	// checking against the ref it was pinned from.
	if _, err := semver.NewVersion(versionComment); err != nil {
		return nil, nil
	}

	commitForRef, present, err := a.gh.CommitForRef(ctx.Go, repo.Owner, repo.Repo, versionComment)
	if err != nil {
		return nil, fmt.Errorf("ref-version-mismatch: %s/%s@%s: %w", repo.Owner, repo.Repo, versionComment, err)
	}
	if !present || commitForRef == sha {
		return nil, nil
	}

	shortSHA := commitForRef
	if len(shortSHA) > 12 {
		shortSHA = shortSHA[:12]
	}

	builder := finding.NewBuilder(refVersionMismatchIdent,
		fmt.Sprintf("commit is pinned as %q but that tag now points to a different commit", versionComment),
		"https://docs.wflint.dev/audits/#ref-version-mismatch").
		Severity(finding.SeverityMedium).
		Confidence(finding.ConfidenceHigh).
		Persona(finding.PersonaRegular).
		AddLocation(usesLoc.WithPrimary().WithAnnotation(fmt.Sprintf("points to commit %s", shortSHA)))

	if tag, found, err := a.gh.LongestTagForCommit(ctx.Go, repo.Owner, repo.Repo, sha); err == nil && found {
		builder = builder.AddLocation(usesLoc.WithAnnotation(fmt.Sprintf("is pointed to by tag %s", tag.Name)))
	}

	return builder.Build(ctx.Docs)
}

func (a *refVersionMismatchAudit) AuditStep(ctx *audit.Context, step *model.Step, job *model.NormalJob, wf *model.Workflow) ([]*finding.Finding, error) {
	uses, ok := step.ParsedUses()
	if !ok {
		return nil, nil
	}
	f, err := a.checkCommon(ctx, uses, step.Location())
	if err != nil || f == nil {
		return nil, err
	}
	return []*finding.Finding{f}, nil
}

func (a *refVersionMismatchAudit) AuditCompositeStep(ctx *audit.Context, step *model.CompositeStep, action *model.Action) ([]*finding.Finding, error) {
	uses, ok := step.ParsedUses()
	if !ok {
		return nil, nil
	}
	f, err := a.checkCommon(ctx, uses, step.Location())
	if err != nil || f == nil {
		return nil, err
	}
	return []*finding.Finding{f}, nil
}
