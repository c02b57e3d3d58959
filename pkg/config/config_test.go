package config_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wflint/wflint/pkg/config"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/inputs"
	"github.com/wflint/wflint/pkg/yamlpath"
)

const sampleWorkflow = `name: test
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
`

func buildFinding(t *testing.T, ident, filename string) *finding.Finding {
	t.Helper()
	doc, err := yamlpath.New(sampleWorkflow)
	require.NoError(t, err)
	key := inputs.NewLocalKey(inputs.KindWorkflow, "/repo/"+filename, filename)
	set := finding.NewDocumentSet()
	set.Add(key, doc)

	loc := finding.NewLocation(key).WithKeys("jobs", "build", "steps").WithIndex(0).WithKeys("uses").WithPrimary()
	f, err := finding.NewBuilder(ident, "desc", "https://example.com").
		Severity(finding.SeverityHigh).
		Confidence(finding.ConfidenceHigh).
		AddLocation(loc).
		Build(set)
	require.NoError(t, err)
	return f
}

func TestLoadParsesIgnoreRules(t *testing.T) {
	cfg, err := config.Load([]byte(`
rules:
  unpinned-uses:
    ignore:
      - ci.yml
      - other.yml:7:3
`))
	require.NoError(t, err)
	require.Contains(t, cfg.Rules, "unpinned-uses")
	require.Len(t, cfg.Rules["unpinned-uses"].Ignore, 2)
}

func TestLoadRejectsUnknownTopLevelKey(t *testing.T) {
	_, err := config.Load([]byte("unexpected-key: true\n"))
	require.Error(t, err)
}

func TestLoadRejectsInvalidIgnoreEntry(t *testing.T) {
	_, err := config.Load([]byte(`
rules:
  unpinned-uses:
    ignore:
      - not-a-yaml-file
`))
	require.Error(t, err)
}

func TestConfigIgnoresByFilenameOnly(t *testing.T) {
	cfg, err := config.Load([]byte(`
rules:
  unpinned-uses:
    ignore:
      - workflows/ci.yml
`))
	require.NoError(t, err)

	f := buildFinding(t, "unpinned-uses", "workflows/ci.yml")
	require.True(t, cfg.Ignores(f))

	other := buildFinding(t, "unpinned-uses", "workflows/other.yml")
	require.False(t, cfg.Ignores(other))
}

func TestConfigIgnoresByLineAndColumn(t *testing.T) {
	f := buildFinding(t, "unpinned-uses", "workflows/ci.yml")
	line := f.PrimaryLocation().Concrete.Line
	column := f.PrimaryLocation().Concrete.Column

	matching, err := config.Load([]byte(`
rules:
  unpinned-uses:
    ignore:
      - "workflows/ci.yml:` + strconv.Itoa(line) + `:` + strconv.Itoa(column) + `"
`))
	require.NoError(t, err)
	require.True(t, matching.Ignores(f))

	nonMatching, err := config.Load([]byte(`
rules:
  unpinned-uses:
    ignore:
      - "workflows/ci.yml:` + strconv.Itoa(line+1) + `"
`))
	require.NoError(t, err)
	require.False(t, nonMatching.Ignores(f))
}

func TestRuleConfigDecodesArbitraryBlock(t *testing.T) {
	cfg, err := config.Load([]byte(`
rules:
  unpinned-uses:
    config:
      allow-pinning-to-branches: true
`))
	require.NoError(t, err)

	var decoded struct {
		AllowPinningToBranches bool `yaml:"allow-pinning-to-branches"`
	}
	found, err := cfg.RuleConfig("unpinned-uses", &decoded)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, decoded.AllowPinningToBranches)

	found, err = cfg.RuleConfig("some-other-rule", &decoded)
	require.NoError(t, err)
	require.False(t, found)
}

func TestDiscoverLocalWalksUpFromFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "wflint.yml"), []byte("rules: {}\n"), 0o644))

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	target := filepath.Join(nested, "ci.yml")
	require.NoError(t, os.WriteFile(target, []byte(sampleWorkflow), 0o644))

	cfg, err := config.DiscoverLocal(target)
	require.NoError(t, err)
	require.NotNil(t, cfg)
}

func TestDiscoverLocalReturnsNilWhenAbsent(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "ci.yml")
	require.NoError(t, os.WriteFile(target, []byte(sampleWorkflow), 0o644))

	cfg, err := config.DiscoverLocal(target)
	require.NoError(t, err)
	require.Nil(t, cfg)
}
