// Command wflint is the CLI entry point for the audit pipeline described
// by spec.md: it loads workflow/action/dependabot inputs, runs every
// registered audit over them, and prints the resulting findings.
//
// Per spec.md 1, the CLI surface itself ("collect arguments, call the
// core, print the result") is a thin collaborator around the audit
// pipeline in pkg/audit — the engine that does the actual work.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wflint/wflint/pkg/audit"
	_ "github.com/wflint/wflint/pkg/audit/rules"
	"github.com/wflint/wflint/pkg/config"
	"github.com/wflint/wflint/pkg/constants"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/ghclient"
	"github.com/wflint/wflint/pkg/inputs"
	"github.com/wflint/wflint/pkg/render"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the process exit code, keeping main()
// itself a thin os.Exit wrapper so tests (and the top-level panic
// recovery below) can call run directly.
func run(args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "%s: panic: %v\n", constants.CLIName, r)
			code = 101
		}
	}()

	exitCode = 0
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return 2
	}
	return exitCode
}

// exitCode is set by runAudit's RunE and read back by run, since cobra's
// Execute only reports whether an error occurred, not the finding-derived
// exit code spec.md 6 specifies (0, 10..14, or 1/2 for arg/config errors).
var exitCode int

type auditOptions struct {
	offline         bool
	noOnlineAudits  bool
	ghToken         string
	githubToken     string
	zizmorGHToken   string
	ghHostname      string
	cacheDir        string
	configPath      string
	noConfig        bool
	persona         string
	minSeverity     string
	minConfidence   string
	format          string
	fix             string
	fixFormat       string
	collect         []string
	showAuditURLs   bool
	includeSupp     bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     constants.CLIName,
		Short:   "Static security analyzer for GitHub Actions workflows and composite actions",
		Version: version,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	opts := &auditOptions{}
	auditCmd := &cobra.Command{
		Use:   "audit [INPUTS...]",
		Short: "Audit local workflow/action files or directories, or remote owner/repo[@ref] slugs",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ec, err := runAudit(cmd.Context(), args, opts)
			if err != nil {
				return err
			}
			exitCode = ec
			return nil
		},
	}

	flags := auditCmd.Flags()
	flags.BoolVar(&opts.offline, "offline", false, "never make network requests")
	flags.BoolVar(&opts.noOnlineAudits, "no-online-audits", false, "skip audits that require network access")
	flags.StringVar(&opts.ghToken, "gh-token", "", "GitHub token (also: --github-token, --zizmor-github-token, $GH_TOKEN)")
	flags.StringVar(&opts.githubToken, "github-token", "", "GitHub token, alias of --gh-token")
	flags.StringVar(&opts.zizmorGHToken, "zizmor-github-token", "", "GitHub token, alias of --gh-token")
	flags.StringVar(&opts.ghHostname, "gh-hostname", constants.DefaultGitHubHost, "GitHub hostname (for GitHub Enterprise)")
	flags.StringVar(&opts.cacheDir, "cache-dir", defaultCacheDir(), "HTTP cache directory")
	flags.StringVar(&opts.configPath, "config", "", "path to a wflint.yml config file")
	flags.BoolVar(&opts.noConfig, "no-config", false, "disable config file discovery")
	flags.StringVar(&opts.persona, "persona", "regular", "persona floor: regular, pedantic, auditor")
	flags.StringVar(&opts.minSeverity, "min-severity", "unknown", "minimum severity to report")
	flags.StringVar(&opts.minConfidence, "min-confidence", "unknown", "minimum confidence to report")
	flags.StringVar(&opts.format, "format", "plain", "output format: plain (only format implemented by this core)")
	flags.StringVar(&opts.fix, "fix", "", "apply fixes: safe, unsafe-only, all")
	flags.StringVar(&opts.fixFormat, "fix-format", "inplace", "fix output format: inplace, json")
	flags.StringSliceVar(&opts.collect, "collect", []string{"workflows", "actions"}, "input kinds to collect: workflows, actions, workflows-only, actions-only")
	flags.BoolVar(&opts.showAuditURLs, "show-audit-urls", false, "print each audit's documentation URL")
	flags.BoolVar(&opts.includeSupp, "include-suppressed", false, "include inline-suppressed findings in the report")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the registered audits and their metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, a := range registeredAudits() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", a.Ident, a.Desc)
			}
			return nil
		},
	}

	root.AddCommand(auditCmd, configCmd)
	return root
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".wflint-cache"
	}
	return dir + "/wflint"
}

// registeredAudits loads every registered audit against an empty context
// purely to read back its Meta(); online audits will Skip without a token,
// which is fine for a metadata listing.
func registeredAudits() []audit.Meta {
	audits, err := audit.Load(&audit.Context{Offline: true})
	if err != nil {
		return nil
	}
	metas := make([]audit.Meta, 0, len(audits))
	for _, a := range audits {
		metas = append(metas, a.Meta())
	}
	return metas
}

func resolveToken(opts *auditOptions) string {
	for _, v := range []string{opts.ghToken, opts.githubToken, opts.zizmorGHToken} {
		if v != "" {
			return v
		}
	}
	for _, env := range []string{"GH_TOKEN", "GITHUB_TOKEN", "ZIZMOR_GITHUB_TOKEN"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}

func runAudit(goCtx context.Context, paths []string, opts *auditOptions) (int, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	persona, err := finding.ParsePersona(opts.persona)
	if err != nil {
		return 0, err
	}
	minSeverity, err := finding.ParseSeverity(opts.minSeverity)
	if err != nil {
		return 0, err
	}
	minConfidence, err := finding.ParseConfidence(opts.minConfidence)
	if err != nil {
		return 0, err
	}

	mode, err := collectMode(opts.collect)
	if err != nil {
		return 0, err
	}

	var cfg *config.Config
	if !opts.noConfig {
		if opts.configPath != "" {
			cfg, err = config.Global(false, opts.configPath)
		} else if len(paths) > 0 {
			cfg, err = config.DiscoverLocal(paths[0])
		}
		if err != nil {
			return 0, err
		}
	}

	var gh *ghclient.Client
	online := !opts.offline && !opts.noOnlineAudits
	if online {
		if token := resolveToken(opts); token != "" {
			gh, err = ghclient.NewClient(opts.ghHostname, token, opts.cacheDir)
			if err != nil {
				return 0, fmt.Errorf("wflint: building github client: %w", err)
			}
		}
	}

	loaded, err := loadBatch(goCtx, paths, mode, gh)
	if err != nil {
		return 0, err
	}

	ctx := &audit.Context{
		Go:      goCtx,
		Docs:    loaded.docs,
		Config:  cfg,
		GH:      gh,
		Offline: opts.offline || gh == nil,
	}

	audits, err := audit.Load(ctx)
	if err != nil {
		return 0, err
	}

	runner := audit.NewRunner(audits)
	reg, err := runner.Run(ctx, loaded.parsed)
	if err != nil {
		return 0, err
	}

	var ignorer finding.Ignorer
	if cfg != nil {
		ignorer = cfg
	}
	filtered := reg.Filter(finding.FilterOptions{
		PersonaFloor:      persona,
		MinSeverity:       minSeverity,
		MinConfidence:     minConfidence,
		Config:            ignorer,
		IncludeSuppressed: opts.includeSupp,
	})

	if opts.fix != "" {
		applyFixes(loaded, filtered, opts)
	}

	if opts.format != "" && opts.format != "plain" {
		fmt.Fprintf(os.Stderr, "wflint: --format %s is not implemented by this core; falling back to plain\n", opts.format)
	}

	if opts.showAuditURLs {
		for _, a := range audits {
			fmt.Fprintf(os.Stderr, "%s: %s\n", a.Meta().Ident, a.Meta().URL)
		}
	}

	color := render.IsTerminal(os.Stdout.Fd())
	if err := render.Plain(os.Stdout, filtered, color); err != nil {
		return 0, err
	}

	return finding.ExitCode(filtered), nil
}

func collectMode(collect []string) (inputs.Mode, error) {
	var mode inputs.Mode
	for _, c := range collect {
		switch c {
		case "workflows":
			mode |= inputs.ModeWorkflows
		case "actions":
			mode |= inputs.ModeActions
		case "workflows-only":
			mode |= inputs.ModeWorkflowsOnlyDeprecated
		case "actions-only":
			mode |= inputs.ModeActionsOnlyDeprecated
		default:
			return 0, fmt.Errorf("wflint: unknown --collect value %q", c)
		}
	}
	if mode == 0 {
		mode = inputs.ModeWorkflows | inputs.ModeActions
	}
	return mode, nil
}
