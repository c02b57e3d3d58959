package yamlpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWorkflow = `jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - run: echo hi
`

func TestQueryPrettyFindsStepsUses(t *testing.T) {
	doc, err := New(sampleWorkflow)
	require.NoError(t, err)

	q := NewQueryBuilder().Key("jobs").Key("build").Key("steps").Index(0).Key("uses").Build()
	f, err := doc.QueryPretty(q)
	require.NoError(t, err)
	assert.Equal(t, "actions/checkout@v4", doc.Extract(f.Span))
}

func TestQueryKeyOnly(t *testing.T) {
	doc, err := New(sampleWorkflow)
	require.NoError(t, err)

	q := NewQueryBuilder().Key("jobs").Key("build").Key("runs-on").Build()
	f, err := doc.QueryKeyOnly(q)
	require.NoError(t, err)
	assert.Equal(t, "runs-on", doc.Extract(f.Span))
}

func TestQueryMissingKeyErrors(t *testing.T) {
	doc, err := New(sampleWorkflow)
	require.NoError(t, err)

	q := NewQueryBuilder().Key("jobs").Key("nonexistent").Build()
	_, err = doc.QueryPretty(q)
	assert.Error(t, err)
}

func TestCommentIgnores(t *testing.T) {
	c := Comment{Text: "# zizmor: ignore[template-injection]"}
	assert.True(t, c.Ignores("template-injection"))
	assert.False(t, c.Ignores("unpinned-uses"))

	c2 := Comment{Text: "# wflint: ignore[template-injection, bot-conditions]"}
	assert.True(t, c2.Ignores("bot-conditions"))
}
