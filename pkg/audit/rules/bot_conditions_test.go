package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBotConditionsFlagsFencedActorComparison(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - if: ${{ github.actor == 'dependabot[bot]' }}
        run: echo hi
`)
	job := normalJob(t, wf, "build")
	step := job.Steps[0]

	findings, err := botConditionsAudit{}.AuditStep(ctx, step, job, wf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
}

func TestBotConditionsFlagsBareActorComparison(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    if: github.actor == 'dependabot[bot]'
    steps:
      - run: echo hi
`)
	job := normalJob(t, wf, "build")

	findings, err := botConditionsAudit{}.AuditNormalJob(ctx, job, wf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
}

func TestBotConditionsSkipsUnrelatedCondition(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - if: ${{ success() }}
        run: echo hi
`)
	job := normalJob(t, wf, "build")
	step := job.Steps[0]

	findings, err := botConditionsAudit{}.AuditStep(ctx, step, job, wf)
	require.NoError(t, err)
	require.Empty(t, findings)
}
