package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wflint/wflint/pkg/model"
)

func TestUnpinnedUsesFlagsNoRefByDefault(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout
`)
	job := normalJob(t, wf, "build")
	a := unpinnedUsesAudit{}

	findings, err := a.AuditStep(ctx, job.Steps[0], job, wf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
}

func TestUnpinnedUsesFlagsTagPinByDefault(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
`)
	job := normalJob(t, wf, "build")
	a := unpinnedUsesAudit{}

	findings, err := a.AuditStep(ctx, job.Steps[0], job, wf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
}

func TestUnpinnedUsesAcceptsHashPin(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@8e5e7e5ab8b370d6c329ec480221332ada57f0ab
`)
	job := normalJob(t, wf, "build")
	a := unpinnedUsesAudit{}

	findings, err := a.AuditStep(ctx, job.Steps[0], job, wf)
	require.NoError(t, err)
	require.Empty(t, findings)
}

func TestUnpinnedUsesLocalAlwaysFlagged(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: ./.github/actions/local
`)
	job := normalJob(t, wf, "build")
	a := unpinnedUsesAudit{}

	findings, err := a.AuditStep(ctx, job.Steps[0], job, wf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
}

func TestUnpinnedUsesRefPolicyAcceptsTag(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
`)
	job := normalJob(t, wf, "build")
	pattern, err := parseUsesPattern("actions/checkout")
	require.NoError(t, err)
	a := unpinnedUsesAudit{policy: []policyEntry{
		{pattern: pattern, level: pinLevelRef},
	}}

	findings, err := a.AuditStep(ctx, job.Steps[0], job, wf)
	require.NoError(t, err)
	require.Empty(t, findings)
}

func TestUnpinnedUsesReusableJob(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
jobs:
  call:
    uses: org/repo/.github/workflows/reusable.yml@main
`)
	job := reusableJob(t, wf, "call")
	a := unpinnedUsesAudit{}

	findings, err := a.AuditReusableJob(ctx, job, wf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
}

func mustRepo(t *testing.T, raw string) model.RepositoryUses {
	t.Helper()
	repo, ok := model.ParseUses(raw).AsRepository()
	require.True(t, ok)
	return repo
}

func TestParseUsesPattern(t *testing.T) {
	p, err := parseUsesPattern("*")
	require.NoError(t, err)
	require.Equal(t, model.PatternAny, p.Kind)

	p, err = parseUsesPattern("actions/*")
	require.NoError(t, err)
	require.True(t, p.Matches(mustRepo(t, "actions/checkout@v4")))

	p, err = parseUsesPattern("actions/checkout/sub")
	require.NoError(t, err)
	require.False(t, p.Matches(mustRepo(t, "actions/checkout@v4")))
}
