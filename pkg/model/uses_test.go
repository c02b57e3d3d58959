package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wflint/wflint/pkg/model"
)

func TestParseUsesRepository(t *testing.T) {
	u := model.ParseUses("actions/checkout@v4")
	require.Equal(t, model.UsesRepository, u.Kind)
	require.Equal(t, "actions", u.Owner)
	require.Equal(t, "checkout", u.Repo)
	require.Equal(t, "v4", u.GitRef)
	require.True(t, u.Unpinned() == false)
	_, symbolic := u.SymbolicRef()
	require.True(t, symbolic)
}

func TestParseUsesRepositoryWithSubpathAndSHA(t *testing.T) {
	sha := "0123456789abcdef0123456789abcdef01234567"
	u := model.ParseUses("actions/aws/ec2@" + sha)
	require.Equal(t, "actions", u.Owner)
	require.Equal(t, "aws", u.Repo)
	require.Equal(t, "ec2", u.Subpath)
	ref, ok := u.CommitRef()
	require.True(t, ok)
	require.Equal(t, sha, ref)
	require.False(t, u.Unhashed())
}

func TestParseUsesLocalIsAlwaysUnpinned(t *testing.T) {
	u := model.ParseUses("./.github/actions/build")
	require.Equal(t, model.UsesLocal, u.Kind)
	require.True(t, u.Unpinned())
}

func TestParseUsesDocker(t *testing.T) {
	u := model.ParseUses("docker://alpine:3.18")
	require.Equal(t, model.UsesDocker, u.Kind)
	require.Equal(t, "alpine", u.DockerImage)
	require.Equal(t, "3.18", u.DockerTag)
	require.False(t, u.Unpinned())
	require.True(t, u.Unhashed())
}

func TestRepositoryUsesMatches(t *testing.T) {
	target, ok := model.ParseUses("actions/checkout@v4").AsRepository()
	require.True(t, ok)

	wildcard, ok := model.ParseUses("actions/*").AsRepository()
	require.True(t, ok)
	require.True(t, target.Matches(wildcard))

	other, ok := model.ParseUses("actions/setup-node").AsRepository()
	require.True(t, ok)
	require.False(t, target.Matches(other))
}

func TestRepositoryUsesPatternSpecificity(t *testing.T) {
	exact := model.RepositoryUsesPattern{Kind: model.PatternExactPath, Owner: "actions", Repo: "checkout"}
	anyPattern := model.RepositoryUsesPattern{Kind: model.PatternAny}
	require.Less(t, exact.Specificity(), anyPattern.Specificity())

	uses, ok := model.ParseUses("actions/checkout@v4").AsRepository()
	require.True(t, ok)
	require.True(t, exact.Matches(uses))
	require.True(t, anyPattern.Matches(uses))
}
