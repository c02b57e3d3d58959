package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wflint/wflint/pkg/inputs"
	"github.com/wflint/wflint/pkg/model"
)

const sampleWorkflow = `
name: CI
on: push
permissions:
  contents: read
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - name: run tests
        run: go test ./...
  deploy:
    needs: [build]
    uses: ./.github/workflows/deploy.yml
    with:
      environment: prod
`

func TestWorkflowParsesJobsAndSteps(t *testing.T) {
	key := inputs.NewLocalKey(inputs.KindWorkflow, "/repo/.github/workflows/ci.yml", ".github/workflows/ci.yml")
	wf, err := model.FromString(sampleWorkflow, key)
	require.NoError(t, err)
	require.Equal(t, "CI", wf.Name)
	require.Equal(t, "read", wf.Permissions.Scopes["contents"])

	build, ok := wf.Job("build")
	require.True(t, ok)
	nj, ok := build.(*model.NormalJob)
	require.True(t, ok)
	require.Len(t, nj.Steps, 2)
	require.Equal(t, "actions/checkout@v4", nj.Steps[0].Uses)
	require.Equal(t, "go test ./...", nj.Steps[1].Run)

	uses, ok := nj.Steps[0].ParsedUses()
	require.True(t, ok)
	require.Equal(t, model.UsesRepository, uses.Kind)

	deploy, ok := wf.Job("deploy")
	require.True(t, ok)
	rwf, ok := deploy.(*model.ReusableWorkflowCallJob)
	require.True(t, ok)
	require.Equal(t, "./.github/workflows/deploy.yml", rwf.Uses)
	require.Equal(t, []string{"build"}, rwf.Needs())
}

const sampleAction = `
name: Build
description: builds the thing
inputs:
  token:
    required: true
runs:
  using: composite
  steps:
    - uses: actions/checkout@v4
    - run: echo hi
      shell: bash
`

func TestActionParsesCompositeSteps(t *testing.T) {
	key := inputs.NewLocalKey(inputs.KindAction, "/repo/action.yml", "action.yml")
	a, err := model.ActionFromString(sampleAction, key)
	require.NoError(t, err)
	require.True(t, a.IsComposite())
	require.True(t, a.HasInput("token"))
	require.Len(t, a.Steps, 2)
	require.Equal(t, "actions/checkout@v4", a.Steps[0].Uses)
	require.Equal(t, "bash", a.Steps[1].Shell)
}

const sampleDependabot = `
version: 2
updates:
  - package-ecosystem: gradle
    directory: "/"
    insecure-external-code-execution: allow
    schedule:
      interval: daily
  - package-ecosystem: npm
    directory: "/"
    schedule:
      interval: weekly
`

func TestDependabotParsesUpdates(t *testing.T) {
	key := inputs.NewLocalKey(inputs.KindDependabot, "/repo/.github/dependabot.yml", ".github/dependabot.yml")
	d, err := model.DependabotFromString(sampleDependabot, key)
	require.NoError(t, err)
	require.Equal(t, 2, d.Version)
	require.Len(t, d.Updates, 2)
	require.True(t, d.Updates[0].AllowsInsecureExternalCodeExecution())
	require.False(t, d.Updates[1].AllowsInsecureExternalCodeExecution())
}
