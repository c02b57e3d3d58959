// Package config loads and applies wflint.yml configuration: per-rule
// ignore lists and rule-specific settings, grounded on zizmor's
// crates/zizmor/src/config.rs.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/wflint/wflint/pkg/constants"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/ghclient"
	"github.com/wflint/wflint/pkg/logger"
)

var log = logger.New("config:config")

// configCandidates are the file names checked, in order, when a directory is
// asked to self-report its configuration.
var configCandidates = []string{".github/" + constants.ConfigFileName, constants.ConfigFileName}

// Config is runtime configuration corresponding to a wflint.yml file.
type Config struct {
	Rules map[string]AuditRuleConfig `yaml:"-"`
}

// rawConfig is the literal shape of a wflint.yml document on the wire.
type rawConfig struct {
	Rules map[string]rawAuditRuleConfig `yaml:"rules"`
}

// Load parses contents as a wflint.yml document, validating its shape
// against the compiled config schema before decoding it.
func Load(contents []byte) (*Config, error) {
	if err := ValidateSchema(contents); err != nil {
		return nil, fmt.Errorf("config: %w\nsee https://docs.zizmor.sh/configuration/ for the equivalent zizmor format this port mirrors", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(contents, &raw); err != nil {
		return nil, fmt.Errorf("config: failed to load config: %w", err)
	}

	cfg := &Config{Rules: make(map[string]AuditRuleConfig, len(raw.Rules))}
	for ident, rawRule := range raw.Rules {
		rule := AuditRuleConfig{Config: rawRule.Config}
		for _, s := range rawRule.Ignore {
			parsed, err := ParseWorkflowRule(s)
			if err != nil {
				return nil, fmt.Errorf("config: rule %q: invalid ignore entry %q: %w", ident, s, err)
			}
			rule.Ignore = append(rule.Ignore, parsed)
		}
		cfg.Rules[ident] = rule
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read config file at %q: %w", path, err)
	}
	return Load(contents)
}

func discoverInDir(dir string) (*Config, error) {
	for _, candidate := range configCandidates {
		candidatePath := filepath.Join(dir, candidate)
		if info, err := os.Stat(candidatePath); err == nil && !info.IsDir() {
			return loadFile(candidatePath)
		}
	}
	return nil, nil
}

// DiscoverLocal finds the configuration applicable to path: if path is a
// directory, it looks for `.github/wflint.yml` or `wflint.yml` inside it; if
// path is a file, it walks up from the file's grandparent directory looking
// for a `wflint.yml`. Returns (nil, nil) if no config applies.
func DiscoverLocal(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot discover config for %q: %w", path, err)
	}

	if info.IsDir() {
		return discoverInDir(path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot resolve %q: %w", path, err)
	}

	parent := filepath.Dir(abs)
	for {
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		candidate := filepath.Join(next, constants.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return loadFile(candidate)
		}
		parent = next
	}

	log.Printf("no config found walking up from %s", path)
	return nil, nil
}

// DiscoverRemote finds the configuration applicable to a remote repository
// by fetching `.github/wflint.yml` or `wflint.yml` from its default branch.
func DiscoverRemote(ctx context.Context, client *ghclient.Client, owner, repo string) (*Config, error) {
	for _, candidate := range configCandidates {
		contents, err := client.FetchWorkflowFile(ctx, owner, repo, candidate, "")
		if err != nil {
			continue
		}
		log.Printf("retrieved config for %s/%s from %s", owner, repo, candidate)
		return Load([]byte(contents))
	}
	return nil, nil
}

// Global loads the configuration explicitly requested via a CLI flag. It
// returns (nil, nil) when noConfig is set or configPath is empty, matching
// the original's "config is opt-in unless explicitly pointed at" behavior.
func Global(noConfig bool, configPath string) (*Config, error) {
	if noConfig || configPath == "" {
		return nil, nil
	}
	log.Printf("loading config from %s", configPath)
	return loadFile(configPath)
}

// Ignores reports whether f has any location matching an ignore rule for
// f.Ident. A finding is considered ignored if *any* of its locations
// matches, since a finding's first location is what a user will typically
// act on when adding a suppression.
func (c *Config) Ignores(f *finding.Finding) bool {
	if c == nil {
		return false
	}
	ruleConfig, ok := c.Rules[f.Ident]
	if !ok {
		return false
	}

	for _, loc := range f.Locations {
		filename := loc.Symbolic.Key.Filename()
		for _, rule := range ruleConfig.Ignore {
			if rule.Filename != filename {
				continue
			}
			if rule.Line == 0 {
				return true
			}
			if rule.Line == loc.Concrete.Line && (rule.Column == 0 || rule.Column == loc.Concrete.Column) {
				return true
			}
		}
	}
	return false
}

// RuleConfig decodes the rule-specific `config:` block for ident into out,
// which must be a pointer. Returns false if no config block is present for
// ident.
func (c *Config) RuleConfig(ident string, out interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}
	ruleConfig, ok := c.Rules[ident]
	if !ok || ruleConfig.Config == nil {
		return false, nil
	}

	encoded, err := yaml.Marshal(ruleConfig.Config)
	if err != nil {
		return false, fmt.Errorf("config: re-encode rule config for %q: %w", ident, err)
	}
	if err := yaml.Unmarshal(encoded, out); err != nil {
		return false, fmt.Errorf("config: decode rule config for %q: %w", ident, err)
	}
	return true, nil
}
