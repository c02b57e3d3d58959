package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wflint/wflint/pkg/audit"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/inputs"
	"github.com/wflint/wflint/pkg/model"
	"github.com/wflint/wflint/pkg/yamlpath"
)

// loadWorkflow parses src as a workflow input and wires it into a fresh
// audit.Context whose DocumentSet can concretize findings located against
// it, mirroring pkg/finding's own test harness.
func loadWorkflow(t *testing.T, src string) (*model.Workflow, *audit.Context) {
	t.Helper()
	key := inputs.NewLocalKey(inputs.KindWorkflow, "/repo/.github/workflows/ci.yml", ".github/workflows/ci.yml")
	wf, err := model.FromString(src, key)
	require.NoError(t, err)

	doc, err := yamlpath.New(src)
	require.NoError(t, err)
	docs := finding.NewDocumentSet()
	docs.Add(key, doc)

	return wf, &audit.Context{Docs: docs}
}

func loadAction(t *testing.T, src string) (*model.Action, *audit.Context) {
	t.Helper()
	key := inputs.NewLocalKey(inputs.KindAction, "/repo/action.yml", "action.yml")
	a, err := model.ActionFromString(src, key)
	require.NoError(t, err)

	doc, err := yamlpath.New(src)
	require.NoError(t, err)
	docs := finding.NewDocumentSet()
	docs.Add(key, doc)

	return a, &audit.Context{Docs: docs}
}

func loadDependabot(t *testing.T, src string) (*model.Dependabot, *audit.Context) {
	t.Helper()
	key := inputs.NewLocalKey(inputs.KindDependabot, "/repo/.github/dependabot.yml", ".github/dependabot.yml")
	d, err := model.DependabotFromString(src, key)
	require.NoError(t, err)

	doc, err := yamlpath.New(src)
	require.NoError(t, err)
	docs := finding.NewDocumentSet()
	docs.Add(key, doc)

	return d, &audit.Context{Docs: docs}
}

func findJob(t *testing.T, wf *model.Workflow, id string) model.Job {
	t.Helper()
	for _, job := range wf.Jobs {
		if job.ID() == id {
			return job
		}
	}
	t.Fatalf("no job %q in workflow", id)
	return nil
}

func normalJob(t *testing.T, wf *model.Workflow, id string) *model.NormalJob {
	t.Helper()
	job, ok := findJob(t, wf, id).(*model.NormalJob)
	require.True(t, ok, "job %q is not a NormalJob", id)
	return job
}

func reusableJob(t *testing.T, wf *model.Workflow, id string) *model.ReusableWorkflowCallJob {
	t.Helper()
	job, ok := findJob(t, wf, id).(*model.ReusableWorkflowCallJob)
	require.True(t, ok, "job %q is not a ReusableWorkflowCallJob", id)
	return job
}
