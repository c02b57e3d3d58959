package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTemplateInjectionFlagsInputsInRun(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on:
  workflow_dispatch:
    inputs:
      message:
        type: string
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: echo "${{ inputs.message }}"
`)
	job := normalJob(t, wf, "build")
	step := job.Steps[0]

	findings, err := templateInjectionAudit{}.AuditStep(ctx, step, job, wf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Equal(t, "high", findings[0].Determinations.Severity.String())
}

func TestTemplateInjectionSkipsSecretsAndToken(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: curl -H "Authorization: ${{ secrets.TOKEN }}" -H "X: ${{ github.token }}"
`)
	job := normalJob(t, wf, "build")
	step := job.Steps[0]

	findings, err := templateInjectionAudit{}.AuditStep(ctx, step, job, wf)
	require.NoError(t, err)
	require.Empty(t, findings)
}

func TestTemplateInjectionFlagsAttackerControlledEventField(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: issues
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: echo "${{ github.event.issue.title }}"
`)
	job := normalJob(t, wf, "build")
	step := job.Steps[0]

	findings, err := templateInjectionAudit{}.AuditStep(ctx, step, job, wf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Equal(t, "high", findings[0].Determinations.Confidence.String())
}

func TestTemplateInjectionSkipsUnknownEventField(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: echo "${{ github.event.repository.name }}"
`)
	job := normalJob(t, wf, "build")
	step := job.Steps[0]

	findings, err := templateInjectionAudit{}.AuditStep(ctx, step, job, wf)
	require.NoError(t, err)
	require.Empty(t, findings)
}

func TestTemplateInjectionFlagsUndefinedEnv(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: echo "${{ env.DYNAMIC_VALUE }}"
`)
	job := normalJob(t, wf, "build")
	step := job.Steps[0]

	findings, err := templateInjectionAudit{}.AuditStep(ctx, step, job, wf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
}

func TestTemplateInjectionSkipsStaticallyDefinedEnv(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
env:
  GREETING: hello
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: echo "${{ env.GREETING }}"
`)
	job := normalJob(t, wf, "build")
	step := job.Steps[0]

	findings, err := templateInjectionAudit{}.AuditStep(ctx, step, job, wf)
	require.NoError(t, err)
	require.Empty(t, findings)
}

func TestTemplateInjectionChecksWithValues(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on:
  workflow_dispatch:
    inputs:
      body:
        type: string
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: some/action@v1
        with:
          message: "${{ inputs.body }}"
`)
	job := normalJob(t, wf, "build")
	step := job.Steps[0]

	findings, err := templateInjectionAudit{}.AuditStep(ctx, step, job, wf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
}
