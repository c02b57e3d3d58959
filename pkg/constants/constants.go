// Package constants holds small shared literals used across wflint's packages,
// mirroring how the teacher codebase centralizes CLI-wide constants in one place.
package constants

// CLIName is the prefix used in user-facing output to refer to the CLI binary.
const CLIName = "wflint"

// ConfigFileName is the default name of a wflint configuration file.
const ConfigFileName = "wflint.yml"

// WorkflowsDir is the directory, relative to a repository root, that holds
// GitHub Actions workflow definitions.
const WorkflowsDir = ".github/workflows"

// ActionFileNames are the file names recognized as composite action definitions.
var ActionFileNames = []string{"action.yml", "action.yaml"}

// DependabotConfigPath is the path, relative to a repository root, of the
// Dependabot configuration file.
const DependabotConfigPath = ".github/dependabot.yml"

// DefaultGitHubHost is the hostname used when no explicit GitHub Enterprise
// hostname is configured.
const DefaultGitHubHost = "github.com"

// PureExpressionFunctions is the exact set of GitHub Actions expression
// functions that Expr.Consteval is permitted to fold, per spec.md 4.1.
// Matching is case-insensitive.
var PureExpressionFunctions = []string{
	"tojson",
	"format",
	"startswith",
	"endswith",
}
