package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// s1Workflow is spec.md S1's end-to-end scenario fixture: a single
// actions/checkout step with no upload-artifact step, which artipacked
// should flag at Medium severity / Low confidence, yielding exit code 13.
const s1Workflow = `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
`

func writeWorkflow(t *testing.T, dir, contents string) {
	t.Helper()
	wfDir := filepath.Join(dir, ".github", "workflows")
	require.NoError(t, os.MkdirAll(wfDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(wfDir, "ci.yml"), []byte(contents), 0o644))
}

func TestRunAuditS1ArtipackedLowConfidence(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, s1Workflow)

	code := run([]string{"audit", "--offline", "--no-config", dir})
	require.Equal(t, 13, code)
}

func TestRunAuditNoFindingsIsZero(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    timeout-minutes: 10
    steps:
      - uses: actions/checkout@8e5e7e5ab8b370d6c329ec480221332ada57f0ab
        with:
          persist-credentials: false
`)

	code := run([]string{"audit", "--offline", "--no-config", dir})
	require.Equal(t, 0, code)
}

func TestRunAuditUnknownInputPath(t *testing.T) {
	code := run([]string{"audit", "--offline", "--no-config", "/nonexistent/path/xyz"})
	require.Equal(t, 2, code)
}

func TestConfigCommandListsAudits(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"config"})
	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "artipacked")
	require.Contains(t, out.String(), "unpinned-uses")
}
