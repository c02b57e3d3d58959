package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wflint/wflint/pkg/config"
)

func TestParseWorkflowRule(t *testing.T) {
	rule, err := config.ParseWorkflowRule("foo.yml:1:2")
	require.NoError(t, err)
	require.Equal(t, config.WorkflowRule{Filename: "foo.yml", Line: 1, Column: 2}, rule)

	rule, err = config.ParseWorkflowRule("foo.yml:123")
	require.NoError(t, err)
	require.Equal(t, config.WorkflowRule{Filename: "foo.yml", Line: 123}, rule)

	rule, err = config.ParseWorkflowRule("foo.yml")
	require.NoError(t, err)
	require.Equal(t, config.WorkflowRule{Filename: "foo.yml"}, rule)
}

func TestParseWorkflowRuleInvalid(t *testing.T) {
	cases := []string{
		"foo.yml:0:0",
		"foo.yml:1:0",
		"foo.yml:0:1",
		"foo.unrelated:1",
		"1:1",
	}
	for _, c := range cases {
		_, err := config.ParseWorkflowRule(c)
		require.Errorf(t, err, "expected error for %q", c)
	}
}
