package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wflint/wflint/pkg/expr"
	"github.com/wflint/wflint/pkg/inputs"
	"github.com/wflint/wflint/pkg/model"
)

const matrixWorkflow = `
name: test
on: push
jobs:
  test:
    runs-on: ubuntu-latest
    strategy:
      matrix:
        trivially-static: [a, b, c, d]
        trivially-dynamic: [a, '${{ github.ref }}', c, d]
    steps:
      - run: true
`

const indirectMatrixWorkflow = `
name: test
on: push
jobs:
  test:
    runs-on: ubuntu-latest
    strategy:
      matrix: ${{ dynamic }}
    steps:
      - run: true
`

func mustParseContext(t *testing.T, raw string) *expr.Context {
	t.Helper()
	e, err := expr.Parse(raw)
	require.NoError(t, err)
	c, ok := expr.AsContext(e)
	require.True(t, ok)
	return c
}

func TestMatrixExpandsToStaticValues(t *testing.T) {
	key := inputs.NewLocalKey(inputs.KindWorkflow, "test.yml", "")
	wf, err := model.FromString(matrixWorkflow, key)
	require.NoError(t, err)

	job, ok := wf.Job("test")
	require.True(t, ok)
	nj, ok := job.(*model.NormalJob)
	require.True(t, ok)
	require.NotNil(t, nj.Matrix)

	require.True(t, nj.Matrix.ExpandsToStaticValues(mustParseContext(t, "matrix.trivially-static")))
	require.False(t, nj.Matrix.ExpandsToStaticValues(mustParseContext(t, "matrix.trivially-dynamic")))
}

func TestIndirectMatrixExpandsToStaticValues(t *testing.T) {
	key := inputs.NewLocalKey(inputs.KindWorkflow, "test.yml", "")
	wf, err := model.FromString(indirectMatrixWorkflow, key)
	require.NoError(t, err)

	job, ok := wf.Job("test")
	require.True(t, ok)
	nj := job.(*model.NormalJob)
	require.NotNil(t, nj.Matrix)
	require.Empty(t, nj.Matrix.ExpandedValues)
	require.False(t, nj.Matrix.ExpandsToStaticValues(mustParseContext(t, "matrix.nonexistent")))
}
