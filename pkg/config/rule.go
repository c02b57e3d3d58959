package config

import (
	"fmt"
	"strconv"
	"strings"
)

// WorkflowRule identifies a single ignore entry scoped to a workflow file
// and, optionally, a specific (1-based) line and column within it, e.g.
// `ci.yml`, `ci.yml:42`, or `ci.yml:42:7`.
type WorkflowRule struct {
	Filename string
	Line     int // 0 means unset
	Column   int // 0 means unset; only meaningful when Line is set
}

// ParseWorkflowRule parses s into a WorkflowRule, grounded on config.rs's
// FromStr impl: the filename is mandatory and must end in .yml/.yaml, line
// and column are optional and 1-based, and column may only appear alongside
// a line.
func ParseWorkflowRule(s string) (WorkflowRule, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		parts = append([]string{strings.Join(parts[:len(parts)-2], ":")}, parts[len(parts)-2:]...)
	}

	filename := parts[0]
	if !strings.HasSuffix(filename, ".yml") && !strings.HasSuffix(filename, ".yaml") {
		return WorkflowRule{}, fmt.Errorf("invalid workflow filename: %s", filename)
	}

	rule := WorkflowRule{Filename: filename}

	if len(parts) >= 2 {
		line, err := parsePositiveInt(parts[1])
		if err != nil {
			return WorkflowRule{}, fmt.Errorf("invalid line number component (must be 1-based): %w", err)
		}
		rule.Line = line
	}

	if len(parts) >= 3 {
		column, err := parsePositiveInt(parts[2])
		if err != nil {
			return WorkflowRule{}, fmt.Errorf("invalid column number component (must be 1-based): %w", err)
		}
		rule.Column = column
	}

	return rule, nil
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%q must be 1-based (greater than zero)", s)
	}
	return n, nil
}

// AuditRuleConfig is the per-rule-ident block under `rules:` in a config
// file: an ignore list plus arbitrary rule-specific configuration.
type AuditRuleConfig struct {
	Ignore []WorkflowRule         `yaml:"ignore"`
	Config map[string]interface{} `yaml:"config"`
}

// rawAuditRuleConfig mirrors AuditRuleConfig on the wire, since WorkflowRule
// decodes from a plain string.
type rawAuditRuleConfig struct {
	Ignore []string               `yaml:"ignore"`
	Config map[string]interface{} `yaml:"config"`
}
