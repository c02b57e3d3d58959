// Package inputs discovers, loads, and caches the workflow/action/dependabot
// files an audit run operates over, and assigns each one a stable Key.
package inputs

import "fmt"

// Kind distinguishes the three input shapes an audit run can see.
type Kind int

const (
	KindWorkflow Kind = iota
	KindAction
	KindDependabot
)

func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindDependabot:
		return "dependabot"
	default:
		return "workflow"
	}
}

// Key addresses a single input, either on the local filesystem or in a
// remote GitHub repository. Every key has exactly one of Local or Remote
// populated, enforced by the constructors below rather than by exposing raw
// fields for direct construction.
type Key struct {
	kind   Kind
	local  *LocalKey
	remote *RemoteKey
}

// LocalKey identifies an input by filesystem path.
type LocalKey struct {
	// Path is the canonical (absolute or repo-root-relative) path used to
	// read the file's bytes.
	Path string
	// PresentationPath is Path relative to the repository root when that
	// root is known, else equal to Path.
	PresentationPath string
}

// RemoteKey identifies an input living in a GitHub repository.
type RemoteKey struct {
	Host  string
	Owner string
	Repo  string
	Path  string
	// Ref is the git ref the input was fetched at; empty means the
	// repository's default branch (rendered as "HEAD").
	Ref string
}

// NewLocalKey builds a Key for a local file.
func NewLocalKey(kind Kind, path, presentationPath string) Key {
	if presentationPath == "" {
		presentationPath = path
	}
	return Key{kind: kind, local: &LocalKey{Path: path, PresentationPath: presentationPath}}
}

// NewRemoteKey builds a Key for a file in a remote GitHub repository.
func NewRemoteKey(kind Kind, host, owner, repo, path, ref string) Key {
	return Key{kind: kind, remote: &RemoteKey{Host: host, Owner: owner, Repo: repo, Path: path, Ref: ref}}
}

// Kind reports which of {Workflow, Action, Dependabot} this input is.
func (k Key) Kind() Kind { return k.kind }

// IsLocal reports whether this key addresses a local file.
func (k Key) IsLocal() bool { return k.local != nil }

// Local returns the LocalKey and true if this key is local.
func (k Key) Local() (LocalKey, bool) {
	if k.local == nil {
		return LocalKey{}, false
	}
	return *k.local, true
}

// Remote returns the RemoteKey and true if this key is remote.
func (k Key) Remote() (RemoteKey, bool) {
	if k.remote == nil {
		return RemoteKey{}, false
	}
	return *k.remote, true
}

// Filename returns the input's base filename; never fails, per the
// InputKey invariant that every key has a filename component.
func (k Key) Filename() string {
	path := k.path()
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

func (k Key) path() string {
	if k.local != nil {
		return k.local.PresentationPath
	}
	if k.remote != nil {
		return k.remote.Path
	}
	return ""
}

// SarifPath returns the path to present in SARIF/plain output: the
// presentation path for local inputs, or the repo-relative path for remote
// ones. Never fails.
func (k Key) SarifPath() string {
	return k.path()
}

// URL renders a remote key to a permalink; it is the empty string for local
// keys, which have no stable remote URL.
func (k Key) URL() string {
	r, ok := k.Remote()
	if !ok {
		return ""
	}
	ref := r.Ref
	if ref == "" {
		ref = "HEAD"
	}
	return fmt.Sprintf("https://%s/%s/%s/blob/%s/%s", r.Host, r.Owner, r.Repo, ref, r.Path)
}

func (k Key) String() string {
	if l, ok := k.Local(); ok {
		return l.PresentationPath
	}
	return k.URL()
}
