package main

import (
	"context"
	"fmt"
	"os"

	"github.com/wflint/wflint/pkg/audit"
	"github.com/wflint/wflint/pkg/constants"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/ghclient"
	"github.com/wflint/wflint/pkg/inputs"
	"github.com/wflint/wflint/pkg/model"
	"github.com/wflint/wflint/pkg/yamlpath"
)

// batch is every parsed input from one CLI invocation, plus the source
// documents needed to concretize findings against them and to apply fixes
// back onto disk.
type batch struct {
	docs   *finding.DocumentSet
	parsed []audit.ParsedInput
}

// loadBatch collects and parses every input reachable from paths: a path
// to a single workflow/action/dependabot file is loaded directly; a path
// to a directory is walked per mode via pkg/inputs.CollectLocal; anything
// that isn't a filesystem path at all is parsed as a remote "owner/repo[@ref]"
// slug (spec.md 6) and fetched through gh, which is nil when running
// offline or without a token.
func loadBatch(goCtx context.Context, paths []string, mode inputs.Mode, gh *ghclient.Client) (*batch, error) {
	b := &batch{
		docs: finding.NewDocumentSet(),
	}

	for _, p := range paths {
		var raw []inputs.Input

		info, statErr := os.Stat(p)
		switch {
		case statErr == nil && info.IsDir():
			collected, ierrs, err := inputs.CollectLocal(p, mode)
			if err != nil {
				return nil, err
			}
			for _, ie := range ierrs {
				fmt.Fprintf(os.Stderr, "wflint: %v\n", ie.Error())
			}
			raw = collected
		case statErr == nil:
			in, err := loadSingleFile(p)
			if err != nil {
				return nil, err
			}
			raw = []inputs.Input{in}
		default:
			owner, repo, ref, err := inputs.ParseRemoteSlug(p)
			if err != nil {
				return nil, fmt.Errorf("wflint: %s: %w", p, statErr)
			}
			if gh == nil {
				return nil, fmt.Errorf("wflint: %s: remote inputs require --gh-token and network access", p)
			}
			collected, ierrs, err := inputs.CollectRemote(goCtx, gh, owner, repo, ref, mode)
			if err != nil {
				return nil, err
			}
			for _, ie := range ierrs {
				fmt.Fprintf(os.Stderr, "wflint: %v\n", ie.Error())
			}
			raw = collected
		}

		for _, in := range raw {
			if err := b.addParsed(in); err != nil {
				return nil, err
			}
		}
	}

	return b, nil
}

func loadSingleFile(path string) (inputs.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return inputs.Input{}, fmt.Errorf("wflint: %s: %w", path, err)
	}
	kind := inputs.KindWorkflow
	switch {
	case path == constants.DependabotConfigPath || isDependabotConfig(path):
		kind = inputs.KindDependabot
	case isActionFile(path):
		kind = inputs.KindAction
	}
	return inputs.Input{Key: inputs.NewLocalKey(kind, path, path), Contents: string(data)}, nil
}

func isDependabotConfig(path string) bool {
	return hasSuffix(path, "/dependabot.yml") || hasSuffix(path, "/dependabot.yaml")
}

func isActionFile(path string) bool {
	for _, n := range constants.ActionFileNames {
		if hasSuffix(path, "/"+n) || path == n {
			return true
		}
	}
	return false
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

func (b *batch) addParsed(in inputs.Input) error {
	doc, err := yamlpath.New(in.Contents)
	if err != nil {
		return fmt.Errorf("wflint: parse %s: %w", in.Key, err)
	}
	b.docs.Add(in.Key, doc)

	parsed := audit.ParsedInput{Key: in.Key, Source: in.Contents}
	switch in.Key.Kind() {
	case inputs.KindWorkflow:
		wf, err := model.FromString(in.Contents, in.Key)
		if err != nil {
			return fmt.Errorf("wflint: %s: %w", in.Key, err)
		}
		if err := wf.Validate(); err != nil {
			return fmt.Errorf("wflint: %s: %w", in.Key, err)
		}
		parsed.Workflow = wf
	case inputs.KindAction:
		act, err := model.ActionFromString(in.Contents, in.Key)
		if err != nil {
			return fmt.Errorf("wflint: %s: %w", in.Key, err)
		}
		parsed.Action = act
	case inputs.KindDependabot:
		dep, err := model.DependabotFromString(in.Contents, in.Key)
		if err != nil {
			return fmt.Errorf("wflint: %s: %w", in.Key, err)
		}
		parsed.Dependabot = dep
	}

	b.parsed = append(b.parsed, parsed)
	return nil
}

// applyFixes applies every fix attached to findings (filtered by the
// --fix disposition) against each input's document, tolerantly (spec.md
// 4.3's concurrent-patch policy), then writes the result back to disk
// when --fix-format is "inplace". Fixes targeting an input are grouped
// and applied in finding order, matching spec.md 5's "within a key in
// finding order" ordering guarantee.
func applyFixes(b *batch, findings []*finding.Finding, opts *auditOptions) {
	byKey := make(map[inputs.Key][]finding.Fix)
	for _, f := range findings {
		for _, fx := range f.Fixes {
			if !fixDispositionAllowed(fx.Disposition, opts.fix) {
				continue
			}
			byKey[fx.Key] = append(byKey[fx.Key], fx)
		}
	}

	for key, fixes := range byKey {
		doc, ok := b.docs.Document(key)
		if !ok {
			continue
		}
		result, failed := finding.ApplyFixesTolerant(doc, fixes)
		for _, f := range failed {
			fmt.Fprintf(os.Stderr, "wflint: fix %q on %s failed: %v\n", f.Fix.Title, key, f.Err)
		}
		if result == doc {
			continue
		}
		b.docs.Add(key, result)

		local, ok := key.Local()
		if !ok || opts.fixFormat != "inplace" {
			continue
		}
		if err := os.WriteFile(local.Path, []byte(result.Source()), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "wflint: writing %s: %v\n", local.Path, err)
		}
	}
}

func fixDispositionAllowed(d finding.Disposition, mode string) bool {
	switch mode {
	case "safe":
		return d == finding.DispositionSafe
	case "unsafe-only":
		return d == finding.DispositionUnsafe
	case "all":
		return true
	default:
		return false
	}
}
