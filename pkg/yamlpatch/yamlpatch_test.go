package yamlpatch_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wflint/wflint/pkg/yamlpatch"
	"github.com/wflint/wflint/pkg/yamlpath"
)

func mustQuery(keys ...any) yamlpath.Query {
	b := yamlpath.NewQueryBuilder()
	for _, k := range keys {
		switch v := k.(type) {
		case string:
			b.Key(v)
		case int:
			b.Index(v)
		}
	}
	return b.Build()
}

const sampleWorkflow = `name: test
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
        with:
          persist-credentials: true
`

func TestReplaceScalar(t *testing.T) {
	doc, err := yamlpath.New(sampleWorkflow)
	require.NoError(t, err)

	patches := []yamlpatch.Patch{
		{
			Query: mustQuery("jobs", "build", "steps", 0, "with", "persist-credentials"),
			Op:    yamlpatch.Replace{Value: false},
		},
	}

	out, err := yamlpatch.Apply(doc, patches)
	require.NoError(t, err)
	require.Contains(t, out.Source(), "persist-credentials: false")
	require.NotContains(t, out.Source(), "persist-credentials: true")
}

func TestAddKeyToMapping(t *testing.T) {
	doc, err := yamlpath.New(sampleWorkflow)
	require.NoError(t, err)

	patches := []yamlpatch.Patch{
		{
			Query: mustQuery("jobs", "build", "steps", 0, "with"),
			Op:    yamlpatch.Add{Key: "fetch-depth", Value: 1},
		},
	}

	out, err := yamlpatch.Apply(doc, patches)
	require.NoError(t, err)
	require.Contains(t, out.Source(), "fetch-depth: 1")
}

func TestRewriteFragment(t *testing.T) {
	doc, err := yamlpath.New(sampleWorkflow)
	require.NoError(t, err)

	patches := []yamlpatch.Patch{
		{
			Query: mustQuery("jobs", "build", "steps", 0, "uses"),
			Op:    yamlpatch.RewriteFragment{From: "v4", To: "v5"},
		},
	}

	out, err := yamlpatch.Apply(doc, patches)
	require.NoError(t, err)
	require.Contains(t, out.Source(), "actions/checkout@v5")
}

func TestApplyTolerantSkipsFailingPatch(t *testing.T) {
	doc, err := yamlpath.New(sampleWorkflow)
	require.NoError(t, err)

	patches := []yamlpatch.Patch{
		{
			Query: mustQuery("jobs", "build", "steps", 0, "with", "persist-credentials"),
			Op:    yamlpatch.Replace{Value: false},
		},
		{
			Query: mustQuery("jobs", "build", "steps", 0, "with", "nonexistent-key"),
			Op:    yamlpatch.RewriteFragment{From: "x", To: "y"},
		},
	}

	out, failures := yamlpatch.ApplyTolerant(doc, patches)
	require.Len(t, failures, 1)
	require.Contains(t, out.Source(), "persist-credentials: false")
}
