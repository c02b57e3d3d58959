package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustContext(t *testing.T, src string) *Context {
	t.Helper()
	e := mustParse(t, src)
	ctx, ok := AsContext(e)
	require.True(t, ok, src)
	return ctx
}

func TestContextPatternNewValidation(t *testing.T) {
	for _, tt := range []struct {
		pattern string
		valid   bool
	}{
		{"foo", true},
		{"foo.bar", true},
		{"foo.bar.baz_baz", true},
		{"foo.bar.baz-baz", true},
		{"foo.*", true},
		{"foo.*.baz", true},
		{"", false},
		{"foo.", false},
		{"foo..bar", false},
		{"foo.**", false},
		{".", false},
	} {
		_, err := NewContextPattern(tt.pattern)
		if tt.valid {
			assert.NoError(t, err, tt.pattern)
		} else {
			assert.Error(t, err, tt.pattern)
		}
	}
}

func TestContextPatternParentOf(t *testing.T) {
	for _, tt := range []struct {
		pattern string
		ctx     string
		want    bool
	}{
		{"foo", "foo", true},
		{"foo.bar", "foo.bar", true},
		{"foo.bar", "foo['bar']", true},
		{"foo.bar", "foo['BAR']", true},
		{"foo", "foo.bar", true},
		{"foo.bar", "foo.bar.baz", true},
		{"foo.*", "foo.bar", true},
		{"foo.*.baz", "foo.bar.baz", true},
		{"foo.*.*", "foo.bar.baz.qux", true},
		{"foo", "foo.bar.baz.qux", true},
		{"foo.*", "foo.bar.baz.qux", true},
		{"secrets", "fromJSON(steps.runs.outputs.data).workflow_runs[0].id", false},
	} {
		p, err := NewContextPattern(tt.pattern)
		require.NoError(t, err, tt.pattern)
		ctx := mustContext(t, tt.ctx)
		assert.Equal(t, tt.want, p.ParentOf(ctx), "%s parentOf %s", tt.pattern, tt.ctx)
	}
}

func TestContextPatternMatches(t *testing.T) {
	for _, tt := range []struct {
		pattern string
		ctx     string
		want    bool
	}{
		{"foo", "foo", true},
		{"*", "foo", true},
		{"foo.bar", "foo.bar", true},
		{"foo.*", "foo.bar", true},
		{"foo.*.baz", "foo.bar.baz", true},
		{"foo.bar", "FOO.BAR", true},
		{"FOO.BAR", "foo.bar", true},
		{"foo.bar.baz.*", "foo.bar.baz[0]", true},
		{"foo.bar.baz.*", "foo.bar.baz['abc']", true},
		{"foo.bar.baz.*", "foo['bar']['baz']['abc']", true},
		{"foo", "bar", false},
		{"foo.bar", "foo.baz", false},
		{"foo.bar", "foo['baz']", false},
		{"foo.bar.baz", "foo.bar.baz.qux", false},
		{"foo.bar.baz", "foo.bar", false},
		{"foo.*.qux", "foo.bar.baz.qux", false},
		{"foo.1", "foo[1]", false},
	} {
		p, err := NewContextPattern(tt.pattern)
		require.NoError(t, err, tt.pattern)
		ctx := mustContext(t, tt.ctx)
		assert.Equal(t, tt.want, p.Matches(ctx), "%s matches %s", tt.pattern, tt.ctx)
	}
}

func TestContextChildOfAndPopIf(t *testing.T) {
	ctx := mustContext(t, "foo.bar.baz")
	assert.True(t, ctx.ChildOf("foo"))
	assert.True(t, ctx.ChildOf("foo.bar"))
	assert.True(t, ctx.ChildOf("FOO.BAR"))
	assert.True(t, ctx.ChildOf("foo.bar.baz"))
	assert.False(t, ctx.ChildOf("foo.bar.baz.qux"))
	assert.False(t, ctx.ChildOf("qux"))

	rest, ok := ctx.PopIf("foo")
	require.True(t, ok)
	assert.Equal(t, "bar.baz", rest)

	_, ok = ctx.PopIf("bar")
	assert.False(t, ok)
}
