package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArtipackedFlagsMissingPersistCredentialsFalse(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - uses: actions/upload-artifact@v4
        with:
          path: .
`)
	job := normalJob(t, wf, "build")

	findings, err := artipackedAudit{}.AuditNormalJob(ctx, job, wf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Equal(t, "high", findings[0].Determinations.Confidence.String())
}

func TestArtipackedSkipsPersistCredentialsFalse(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
        with:
          persist-credentials: false
`)
	job := normalJob(t, wf, "build")

	findings, err := artipackedAudit{}.AuditNormalJob(ctx, job, wf)
	require.NoError(t, err)
	require.Empty(t, findings)
}

func TestArtipackedLowConfidenceWithoutUpload(t *testing.T) {
	wf, ctx := loadWorkflow(t, `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - run: echo hi
`)
	job := normalJob(t, wf, "build")

	findings, err := artipackedAudit{}.AuditNormalJob(ctx, job, wf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Equal(t, "low", findings[0].Determinations.Confidence.String())
}
