package inputs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wflint/wflint/pkg/constants"
	"github.com/wflint/wflint/pkg/ghclient"
	"github.com/wflint/wflint/pkg/logger"
	"github.com/wflint/wflint/pkg/repoutil"
)

var log = logger.New("inputs")

// Mode selects which kinds of input a Collect call admits. The deprecated
// aliases exist because ported configs may still reference them; they warn
// once (via the logger) rather than failing, and may not be combined with
// any other mode.
type Mode int

const (
	ModeWorkflows Mode = 1 << iota
	ModeActions
	ModeWorkflowsOnlyDeprecated
	ModeActionsOnlyDeprecated
)

// Input is a single loaded, eagerly-parsed file ready for auditing.
type Input struct {
	Key      Key
	Contents string
}

// InputError reports a fatal failure to read or parse one input. Collection
// of other inputs continues; InputError is surfaced to the caller as part
// of the batch result so the run can still report on everything else.
type InputError struct {
	Key Key
	Err error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input %s: %v", e.Key, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// CollectLocal walks root for workflow, action, and dependabot files per
// mode, eagerly reading (but not YAML-parsing — that's pkg/model's job)
// each one. Mixing a deprecated *-only mode with any other mode is a fatal
// configuration error; using a deprecated mode alone is accepted with a
// logged warning.
func CollectLocal(root string, mode Mode) ([]Input, []InputError, error) {
	if err := validateMode(mode); err != nil {
		return nil, nil, err
	}
	mode = resolveDeprecated(mode)

	var inputs []Input
	var errs []InputError

	if mode&ModeWorkflows != 0 {
		dir := filepath.Join(root, constants.WorkflowsDir)
		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() || !isYAMLFile(e.Name()) {
					continue
				}
				path := filepath.Join(dir, e.Name())
				in, ierr := loadLocal(KindWorkflow, root, path)
				if ierr != nil {
					errs = append(errs, *ierr)
					continue
				}
				inputs = append(inputs, in)
			}
		}
	}

	if mode&ModeActions != 0 {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !isActionFileName(d.Name()) {
				return nil
			}
			in, ierr := loadLocal(KindAction, root, path)
			if ierr != nil {
				errs = append(errs, *ierr)
				return nil
			}
			inputs = append(inputs, in)
			return nil
		})
		if err != nil {
			return inputs, errs, fmt.Errorf("inputs: walk actions: %w", err)
		}
	}

	depPath := filepath.Join(root, constants.DependabotConfigPath)
	if _, err := os.Stat(depPath); err == nil {
		in, ierr := loadLocal(KindDependabot, root, depPath)
		if ierr != nil {
			errs = append(errs, *ierr)
		} else {
			inputs = append(inputs, in)
		}
	}

	return inputs, errs, nil
}

// ParseRemoteSlug splits a CLI positional input of the form
// "owner/repo[@ref]" into its repository slug and optional ref, per
// spec.md 6's "each being a local path or a remote slug owner/repo[@ref]".
func ParseRemoteSlug(arg string) (owner, repo, ref string, err error) {
	slug, ref, _ := strings.Cut(arg, "@")
	owner, repo, err = repoutil.SplitRepoSlug(slug)
	if err != nil {
		return "", "", "", fmt.Errorf("inputs: %q is not a local path and not a valid owner/repo[@ref] slug: %w", arg, err)
	}
	return owner, repo, ref, nil
}

// CollectRemote fetches workflow and action inputs for owner/repo at ref
// (the empty string means the repository's default branch) via gh, per
// spec.md 4.10's remote-collection note: workflows come from the
// `.github/workflows` contents listing; a root-level action.yml/yaml is
// fetched directly, mirroring the single composite action a repository
// slug typically names. A failure to list or fetch any workflow file aborts
// the whole collection with an error; a root action file that cannot be
// fetched is skipped. The returned InputError slice is always empty.
func CollectRemote(ctx context.Context, gh *ghclient.Client, owner, repo, ref string, mode Mode) ([]Input, []InputError, error) {
	if err := validateMode(mode); err != nil {
		return nil, nil, err
	}
	mode = resolveDeprecated(mode)

	var ins []Input
	var errs []InputError

	if mode&ModeWorkflows != 0 {
		files, err := gh.FetchWorkflows(ctx, owner, repo, ref)
		if err != nil {
			return nil, nil, fmt.Errorf("inputs: fetch workflows for %s/%s: %w", owner, repo, err)
		}
		for path, contents := range files {
			key := NewRemoteKey(KindWorkflow, constants.DefaultGitHubHost, owner, repo, path, ref)
			ins = append(ins, Input{Key: key, Contents: contents})
		}
	}

	if mode&ModeActions != 0 {
		for _, name := range constants.ActionFileNames {
			contents, err := gh.FetchWorkflowFile(ctx, owner, repo, name, ref)
			if err != nil {
				continue
			}
			key := NewRemoteKey(KindAction, constants.DefaultGitHubHost, owner, repo, name, ref)
			ins = append(ins, Input{Key: key, Contents: contents})
			break
		}
	}

	return ins, errs, nil
}

func validateMode(mode Mode) error {
	deprecated := mode & (ModeWorkflowsOnlyDeprecated | ModeActionsOnlyDeprecated)
	if deprecated != 0 && mode != deprecated {
		return fmt.Errorf("inputs: deprecated workflows-only/actions-only modes cannot be combined with other modes")
	}
	return nil
}

func resolveDeprecated(mode Mode) Mode {
	if mode&ModeWorkflowsOnlyDeprecated != 0 {
		log.Printf("workflows-only is deprecated, use workflows")
		return ModeWorkflows
	}
	if mode&ModeActionsOnlyDeprecated != 0 {
		log.Printf("actions-only is deprecated, use actions")
		return ModeActions
	}
	return mode
}

func isYAMLFile(name string) bool {
	return strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml")
}

func isActionFileName(name string) bool {
	for _, n := range constants.ActionFileNames {
		if name == n {
			return true
		}
	}
	return false
}

func loadLocal(kind Kind, root, path string) (Input, *InputError) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	key := NewLocalKey(kind, path, rel)
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, &InputError{Key: key, Err: fmt.Errorf("read: %w", err)}
	}
	return Input{Key: key, Contents: string(data)}, nil
}
