// Package model provides a typed, read-only, path-preserving view over
// parsed workflow, composite action, and Dependabot configuration inputs,
// generalizing the teacher's markdown-to-workflow compiler models
// (pkg/workflow in githubnext/gh-aw) into a read-only "view an existing
// file" shape, per spec.md 4.4.
package model

import (
	"strings"

	"github.com/wflint/wflint/pkg/gitutil"
)

// UsesKind discriminates the three shapes a `uses:` clause can take.
type UsesKind int

const (
	UsesRepository UsesKind = iota
	UsesLocal
	UsesDocker
)

// Uses models a `uses:` clause on a step or a reusable-workflow-call job.
type Uses struct {
	Kind UsesKind

	// Repository fields.
	Owner   string
	Repo    string
	Subpath string
	GitRef  string

	// Local fields.
	LocalPath string

	// Docker fields.
	DockerRegistry  string
	DockerNamespace string
	DockerImage     string
	DockerTag       string
	DockerHash      string
}

// isCommitSHA reports whether ref is a full 40-character hex commit hash.
func isCommitSHA(ref string) bool {
	return len(ref) == 40 && gitutil.IsHexString(ref)
}

// ParseUses classifies a raw `uses:` string into a Uses value.
func ParseUses(raw string) Uses {
	switch {
	case strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../"):
		return Uses{Kind: UsesLocal, LocalPath: raw}
	case strings.HasPrefix(raw, "docker://"):
		return parseDockerUses(strings.TrimPrefix(raw, "docker://"))
	default:
		return parseRepositoryUses(raw)
	}
}

func parseRepositoryUses(raw string) Uses {
	spec, ref, hasRef := strings.Cut(raw, "@")
	parts := strings.SplitN(spec, "/", 3)
	u := Uses{Kind: UsesRepository}
	if len(parts) >= 2 {
		u.Owner = parts[0]
		u.Repo = parts[1]
	}
	if len(parts) == 3 {
		u.Subpath = parts[2]
	}
	if hasRef {
		u.GitRef = ref
	}
	return u
}

func parseDockerUses(raw string) Uses {
	image, tag, hasTag := strings.Cut(raw, ":")
	hash := ""
	if hasTag {
		if idx := strings.Index(tag, "@"); idx >= 0 {
			hash = tag[idx+1:]
			tag = tag[:idx]
		}
	} else if idx := strings.Index(image, "@"); idx >= 0 {
		hash = image[idx+1:]
		image = image[:idx]
	}

	u := Uses{Kind: UsesDocker, DockerTag: tag, DockerHash: hash}
	segments := strings.Split(image, "/")
	switch len(segments) {
	case 1:
		u.DockerImage = segments[0]
	case 2:
		u.DockerNamespace = segments[0]
		u.DockerImage = segments[1]
	default:
		u.DockerRegistry = segments[0]
		u.DockerNamespace = strings.Join(segments[1:len(segments)-1], "/")
		u.DockerImage = segments[len(segments)-1]
	}
	return u
}

// CommitRef returns the ref if it is a 40-hex-character SHA.
func (u Uses) CommitRef() (string, bool) {
	if u.Kind != UsesRepository || !isCommitSHA(u.GitRef) {
		return "", false
	}
	return u.GitRef, true
}

// SymbolicRef returns the ref if it is present but not a commit SHA.
func (u Uses) SymbolicRef() (string, bool) {
	if u.Kind != UsesRepository || u.GitRef == "" || isCommitSHA(u.GitRef) {
		return "", false
	}
	return u.GitRef, true
}

// Unpinned reports whether the uses clause carries no ref at all: always
// true for local references (spec.md 9, Open Question 1), true for a
// repository reference with no `@ref`, and true for a Docker reference with
// neither a tag nor a hash.
func (u Uses) Unpinned() bool {
	switch u.Kind {
	case UsesLocal:
		return true
	case UsesRepository:
		return u.GitRef == ""
	case UsesDocker:
		return u.DockerTag == "" && u.DockerHash == ""
	default:
		return true
	}
}

// Unhashed reports whether the uses clause lacks a content-addressed pin:
// no commit SHA for a repository reference, or no digest for a Docker
// reference.
func (u Uses) Unhashed() bool {
	switch u.Kind {
	case UsesRepository:
		_, ok := u.CommitRef()
		return !ok
	case UsesDocker:
		return u.DockerHash == ""
	default:
		return true
	}
}

// RepositoryUses is the Repository-kind view of a Uses value, exposing the
// template-matching helpers spec.md 4.4 describes.
type RepositoryUses struct{ Uses }

// AsRepository returns u as a RepositoryUses, if it is one.
func (u Uses) AsRepository() (RepositoryUses, bool) {
	if u.Kind != UsesRepository {
		return RepositoryUses{}, false
	}
	return RepositoryUses{u}, true
}

// Matches performs a case-insensitive, "template is a prefix" match: owner
// and repo must be equal (or the template's repo may be "*"), the
// template's subpath must be equal or absent, and the template's ref must
// be equal or absent.
func (r RepositoryUses) Matches(template RepositoryUses) bool {
	if !strings.EqualFold(r.Owner, template.Owner) {
		return false
	}
	if template.Repo != "*" && !strings.EqualFold(r.Repo, template.Repo) {
		return false
	}
	if template.Subpath != "" && !strings.EqualFold(r.Subpath, template.Subpath) {
		return false
	}
	if template.GitRef != "" && !strings.EqualFold(r.GitRef, template.GitRef) {
		return false
	}
	return true
}

// RepositoryUsesPatternKind orders pattern specificity, most to least.
type RepositoryUsesPatternKind int

const (
	PatternExactPath RepositoryUsesPatternKind = iota
	PatternExactRepo
	PatternInRepo
	PatternInOwner
	PatternAny
)

// RepositoryUsesPattern matches a RepositoryUses at a configurable
// specificity, used by unpinned-uses style policy evaluation.
type RepositoryUsesPattern struct {
	Kind    RepositoryUsesPatternKind
	Owner   string
	Repo    string
	Subpath string
}

// Matches reports whether uses falls under this pattern, case-insensitively.
func (p RepositoryUsesPattern) Matches(uses RepositoryUses) bool {
	switch p.Kind {
	case PatternAny:
		return true
	case PatternInOwner:
		return strings.EqualFold(p.Owner, uses.Owner)
	case PatternInRepo:
		return strings.EqualFold(p.Owner, uses.Owner) && strings.EqualFold(p.Repo, uses.Repo)
	case PatternExactRepo:
		return strings.EqualFold(p.Owner, uses.Owner) && strings.EqualFold(p.Repo, uses.Repo) && uses.Subpath == ""
	case PatternExactPath:
		return strings.EqualFold(p.Owner, uses.Owner) && strings.EqualFold(p.Repo, uses.Repo) && strings.EqualFold(p.Subpath, uses.Subpath)
	default:
		return false
	}
}

// Specificity ranks the pattern for "most specific first" policy
// evaluation: lower is more specific.
func (p RepositoryUsesPattern) Specificity() int {
	return int(p.Kind)
}
