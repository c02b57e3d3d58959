package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wflint/wflint/pkg/audit"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/model"
)

const unpinnedUsesIdent = "unpinned-uses"

func init() {
	audit.Register(unpinnedUsesIdent, func(ctx *audit.Context) (audit.Audit, error) {
		policy, err := loadUnpinnedUsesPolicy(ctx)
		if err != nil {
			return nil, audit.Fail(unpinnedUsesIdent, err)
		}
		return unpinnedUsesAudit{policy: policy}, nil
	})
}

// pinLevel is the strictness a policy entry demands of a matching `uses:`.
type pinLevel int

const (
	pinLevelHash pinLevel = iota
	pinLevelRef
	pinLevelAny
)

func parsePinLevel(s string) (pinLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hash", "":
		return pinLevelHash, nil
	case "ref", "tag", "branch":
		return pinLevelRef, nil
	case "any", "none", "loose":
		return pinLevelAny, nil
	default:
		return 0, fmt.Errorf("unrecognized pin policy %q", s)
	}
}

type policyEntry struct {
	pattern model.RepositoryUsesPattern
	level   pinLevel
}

// unpinnedUsesConfig is the rule-specific `config:` block's wire shape: a
// map from a `uses:` pattern ("*", "owner/*", "owner/repo", or
// "owner/repo/subpath") to a pin level ("hash", "ref", or "any").
type unpinnedUsesConfig map[string]string

func loadUnpinnedUsesPolicy(ctx *audit.Context) ([]policyEntry, error) {
	cfg := unpinnedUsesConfig{}
	if _, err := ctx.RuleConfig(unpinnedUsesIdent, &cfg); err != nil {
		return nil, err
	}

	entries := make([]policyEntry, 0, len(cfg))
	for pattern, levelStr := range cfg {
		p, err := parseUsesPattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("policy pattern %q: %w", pattern, err)
		}
		level, err := parsePinLevel(levelStr)
		if err != nil {
			return nil, fmt.Errorf("policy pattern %q: %w", pattern, err)
		}
		entries = append(entries, policyEntry{pattern: p, level: level})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].pattern.Specificity() < entries[j].pattern.Specificity()
	})

	return entries, nil
}

// parseUsesPattern parses a policy key into a RepositoryUsesPattern,
// grounded on config.rs's uses-pattern parsing: "*" matches any
// repository, "owner/*" matches any repository under owner, "owner/repo"
// matches that repository at any subpath, and "owner/repo/sub/path"
// matches exactly that subpath.
func parseUsesPattern(s string) (model.RepositoryUsesPattern, error) {
	if s == "*" {
		return model.RepositoryUsesPattern{Kind: model.PatternAny}, nil
	}
	parts := strings.SplitN(s, "/", 3)
	if len(parts) < 2 {
		return model.RepositoryUsesPattern{}, fmt.Errorf("expected owner/repo or owner/*, got %q", s)
	}
	owner, repo := parts[0], parts[1]
	switch {
	case repo == "*":
		return model.RepositoryUsesPattern{Kind: model.PatternInOwner, Owner: owner}, nil
	case len(parts) == 3:
		return model.RepositoryUsesPattern{Kind: model.PatternExactPath, Owner: owner, Repo: repo, Subpath: parts[2]}, nil
	default:
		return model.RepositoryUsesPattern{Kind: model.PatternExactRepo, Owner: owner, Repo: repo}, nil
	}
}

// unpinnedUsesAudit flags `uses:` clauses pinned more loosely than their
// applicable policy demands, grounded on audit/unpinned_uses.rs: local
// references are always flagged (spec.md 9, Open Question 1), and the
// default policy (no matching entry) requires a commit hash for
// repository references and a tag/digest for Docker references.
type unpinnedUsesAudit struct {
	policy []policyEntry
}

func (unpinnedUsesAudit) Meta() audit.Meta {
	return audit.Meta{
		Ident: unpinnedUsesIdent,
		Desc:  "detects unpinned actions and reusable workflows",
		URL:   "https://docs.wflint.dev/audits/#unpinned-uses",
	}
}

func (a unpinnedUsesAudit) levelFor(repo model.RepositoryUses) pinLevel {
	for _, entry := range a.policy {
		if entry.pattern.Matches(repo) {
			return entry.level
		}
	}
	return pinLevelHash
}

func (a unpinnedUsesAudit) check(uses model.Uses, loc finding.SymbolicLocation, docs *finding.DocumentSet) (*finding.Finding, error) {
	if uses.Kind == model.UsesLocal {
		return a.build(loc, "local action references are always unpinned", finding.SeverityLow, docs)
	}

	if repo, ok := uses.AsRepository(); ok {
		level := a.levelFor(repo)
		switch {
		case uses.Unpinned():
			return a.build(loc, "action is not pinned to a tag, branch, or commit", finding.SeverityMedium, docs)
		case level == pinLevelHash && uses.Unhashed():
			return a.build(loc, fmt.Sprintf("action is pinned to %q, not a commit hash", uses.GitRef), finding.SeverityMedium, docs)
		}
		return nil, nil
	}

	if uses.Kind == model.UsesDocker {
		switch {
		case uses.Unpinned():
			return a.build(loc, "docker action is not pinned to a tag or digest", finding.SeverityMedium, docs)
		}
	}

	return nil, nil
}

func (unpinnedUsesAudit) build(loc finding.SymbolicLocation, msg string, sev finding.Severity, docs *finding.DocumentSet) (*finding.Finding, error) {
	return finding.NewBuilder(unpinnedUsesIdent, msg, "https://docs.wflint.dev/audits/#unpinned-uses").
		Severity(sev).
		Confidence(finding.ConfidenceHigh).
		Persona(finding.PersonaRegular).
		AddLocation(loc.WithKeys("uses").WithPrimary()).
		Build(docs)
}

func (a unpinnedUsesAudit) AuditStep(ctx *audit.Context, step *model.Step, job *model.NormalJob, wf *model.Workflow) ([]*finding.Finding, error) {
	uses, ok := step.ParsedUses()
	if !ok {
		return nil, nil
	}
	f, err := a.check(uses, step.Location(), ctx.Docs)
	if err != nil || f == nil {
		return nil, err
	}
	return []*finding.Finding{f}, nil
}

func (a unpinnedUsesAudit) AuditReusableJob(ctx *audit.Context, job *model.ReusableWorkflowCallJob, wf *model.Workflow) ([]*finding.Finding, error) {
	uses := model.ParseUses(job.Uses)
	f, err := a.check(uses, job.Location(), ctx.Docs)
	if err != nil || f == nil {
		return nil, err
	}
	return []*finding.Finding{f}, nil
}
