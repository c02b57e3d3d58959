package audit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/inputs"
	"github.com/wflint/wflint/pkg/model"
	"github.com/wflint/wflint/pkg/yamlpath"
)

const testWorkflow = `name: CI
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - name: test
        run: go test ./...
`

type orderAudit struct {
	ident string
	log   *[]string
}

func (a *orderAudit) Meta() Meta { return Meta{Ident: a.ident, Desc: "d", URL: "https://example.com"} }

func (a *orderAudit) AuditWorkflow(ctx *Context, wf *model.Workflow) ([]*finding.Finding, error) {
	*a.log = append(*a.log, a.ident+":workflow")
	return nil, nil
}

func (a *orderAudit) AuditStep(ctx *Context, step *model.Step, job *model.NormalJob, wf *model.Workflow) ([]*finding.Finding, error) {
	*a.log = append(*a.log, a.ident+":step"+step.Name)
	return nil, nil
}

func TestRunnerDispatchOrder(t *testing.T) {
	key := inputs.NewLocalKey(inputs.KindWorkflow, "/repo/.github/workflows/ci.yml", ".github/workflows/ci.yml")
	wf, err := model.FromString(testWorkflow, key)
	require.NoError(t, err)

	var log []string
	first := &orderAudit{ident: "a-first", log: &log}
	second := &orderAudit{ident: "b-second", log: &log}

	runner := NewRunner([]Audit{first, second})
	ctx := &Context{}
	_, err = runner.Run(ctx, []ParsedInput{{Key: key, Workflow: wf}})
	require.NoError(t, err)

	require.Equal(t, []string{
		"a-first:workflow",
		"a-first:step",
		"a-first:steptest",
		"b-second:workflow",
		"b-second:step",
		"b-second:steptest",
	}, log)
}

type emittingAudit struct{}

func (emittingAudit) Meta() Meta {
	return Meta{Ident: "emits", Desc: "d", URL: "https://example.com"}
}

func (emittingAudit) AuditWorkflow(ctx *Context, wf *model.Workflow) ([]*finding.Finding, error) {
	f, err := finding.NewBuilder("emits", "d", "https://example.com").
		Severity(finding.SeverityHigh).
		Confidence(finding.ConfidenceHigh).
		AddLocation(wf.Location().WithPrimary()).
		Build(ctx.Docs)
	if err != nil {
		return nil, err
	}
	return []*finding.Finding{f}, nil
}

func TestRunnerCollectsFindingsViaDocumentSet(t *testing.T) {
	key := inputs.NewLocalKey(inputs.KindWorkflow, "/repo/.github/workflows/ci.yml", ".github/workflows/ci.yml")
	wf, err := model.FromString(testWorkflow, key)
	require.NoError(t, err)

	doc, err := yamlpath.New(testWorkflow)
	require.NoError(t, err)
	docs := finding.NewDocumentSet()
	docs.Add(key, doc)

	runner := NewRunner([]Audit{emittingAudit{}})
	reg, err := runner.Run(&Context{Docs: docs}, []ParsedInput{{Key: key, Workflow: wf}})
	require.NoError(t, err)
	require.Len(t, reg.Findings(), 1)
	require.Equal(t, 14, finding.ExitCode(reg.Findings()))
}

func TestLoadSkipsAndFails(t *testing.T) {
	defer resetForTest()
	resetForTest()

	Register("ok", func(ctx *Context) (Audit, error) {
		return &orderAudit{ident: "ok", log: &[]string{}}, nil
	})
	Register("skipped", func(ctx *Context) (Audit, error) {
		return nil, Skip("skipped", errors.New("needs a token"))
	})

	audits, err := Load(&Context{})
	require.NoError(t, err)
	require.Len(t, audits, 1)
	require.Equal(t, "ok", audits[0].Meta().Ident)

	resetForTest()
	Register("broken", func(ctx *Context) (Audit, error) {
		return nil, Fail("broken", errors.New("bad builtin config"))
	})
	_, err = Load(&Context{})
	require.Error(t, err)
}
