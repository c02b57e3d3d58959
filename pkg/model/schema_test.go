package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wflint/wflint/pkg/inputs"
	"github.com/wflint/wflint/pkg/model"
)

func TestWorkflowValidateAcceptsWellFormedWorkflow(t *testing.T) {
	key := inputs.NewLocalKey(inputs.KindWorkflow, "/repo/.github/workflows/ci.yml", ".github/workflows/ci.yml")
	wf, err := model.FromString(sampleWorkflow, key)
	require.NoError(t, err)
	require.NoError(t, wf.Validate())
}

func TestWorkflowValidateFlagsUnknownEvent(t *testing.T) {
	const src = `
on: not_a_real_event
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: echo hi
`
	key := inputs.NewLocalKey(inputs.KindWorkflow, "/repo/.github/workflows/bad.yml", ".github/workflows/bad.yml")
	wf, err := model.FromString(src, key)
	require.NoError(t, err)

	err = wf.Validate()
	require.Error(t, err)
	var schemaErr *model.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.NotEmpty(t, schemaErr.Errs)
}
