package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) Expr {
	t.Helper()
	e, err := Parse(src)
	require.NoError(t, err, src)
	return e
}

func TestConstevalBooleanOps(t *testing.T) {
	for _, tt := range []struct {
		src  string
		want bool
	}{
		{"true && true", true},
		{"true && false", false},
		{"false || true", true},
		{"false || false", false},
		{"!true", false},
		{"!false", true},
		{"1 == 1", true},
		{"1 == 2", false},
		{"1 != 2", true},
		{"'a' == 'a'", true},
		{"'a' == 'b'", false},
	} {
		got, ok := Consteval(mustParse(t, tt.src))
		require.True(t, ok, tt.src)
		assert.Equal(t, boolEval(tt.want), got, tt.src)
	}
}

func TestConstevalComparisons(t *testing.T) {
	for _, tt := range []struct {
		src  string
		want bool
	}{
		{"1 < 2", true},
		{"2 < 1", false},
		{"1 <= 1", true},
		{"2 > 1", true},
		{"1 >= 2", false},
	} {
		got, ok := Consteval(mustParse(t, tt.src))
		require.True(t, ok, tt.src)
		assert.Equal(t, boolEval(tt.want), got, tt.src)
	}
}

func TestConstevalContextNeverFolds(t *testing.T) {
	for _, src := range []string{
		"github.actor",
		"secrets.TOKEN",
		"needs.build.result == 'success'",
	} {
		_, ok := Consteval(mustParse(t, src))
		assert.False(t, ok, src)
	}
}

func TestConstevalStartsWithEndsWith(t *testing.T) {
	got, ok := Consteval(mustParse(t, "startsWith('refs/heads/main', 'refs/heads/')"))
	require.True(t, ok)
	assert.Equal(t, boolEval(true), got)

	got, ok = Consteval(mustParse(t, "endsWith('main.yml', '.yaml')"))
	require.True(t, ok)
	assert.Equal(t, boolEval(false), got)
}

func TestConstevalFormat(t *testing.T) {
	got, ok := Consteval(mustParse(t, "format('{0}/{1}', 'a', 'b')"))
	require.True(t, ok)
	assert.Equal(t, stringEval("a/b"), got)
}

func TestConstevalShortCircuit(t *testing.T) {
	// The RHS references a context and would fail to fold on its own, but
	// short-circuit evaluation of the LHS means Consteval never needs it.
	got, ok := Consteval(mustParse(t, "false && github.actor == 'x'"))
	require.True(t, ok)
	assert.Equal(t, boolEval(false), got)

	got, ok = Consteval(mustParse(t, "true || github.actor == 'x'"))
	require.True(t, ok)
	assert.Equal(t, boolEval(true), got)
}
