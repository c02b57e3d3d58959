package finding

import (
	"github.com/wflint/wflint/pkg/inputs"
	"github.com/wflint/wflint/pkg/yamlpath"
	"github.com/wflint/wflint/pkg/yamlpatch"
)

// Disposition marks how cautiously a Fix should be applied: Safe fixes are
// straightforward and narrow enough to auto-apply; Unsafe ones change
// observable behavior (e.g. removing a permission) and need a human to
// confirm them first.
type Disposition int

const (
	DispositionSafe Disposition = iota
	DispositionUnsafe
)

func (d Disposition) String() string {
	if d == DispositionUnsafe {
		return "unsafe"
	}
	return "safe"
}

// Fix is a named, orderable set of YAML patch operations targeting a single
// input, grounded on spec.md 3's Fix/Patch/Op shapes.
type Fix struct {
	Title       string
	Key         inputs.Key
	Disposition Disposition
	Patches     []yamlpatch.Patch
}

// Apply runs the fix's patches against doc in order, delegating to
// yamlpatch.Apply. Callers that want best-effort application across
// multiple fixes targeting the same input should use ApplyFixesTolerant
// instead, which keeps earlier successful fixes when a later one fails.
func (f Fix) Apply(doc *yamlpath.Document) (*yamlpath.Document, error) {
	return yamlpatch.Apply(doc, f.Patches)
}

// FailedFix records a fix that could not be applied, and why, without
// aborting the rest of a batch.
type FailedFix struct {
	Fix Fix
	Err error
}

// ApplyFixesTolerant applies every fix in fixes against doc in order
// (spec.md 4.3's concurrent-patch policy: "applied sequentially, each
// against the running result; a later fix that fails due to conflict is
// recorded as failed ... but previously applied fixes persist"). All
// fixes must target the same input; callers group by Fix.Key before
// calling. Returns the final document (doc itself if every fix failed)
// and the list of fixes that failed, in the order they were attempted.
func ApplyFixesTolerant(doc *yamlpath.Document, fixes []Fix) (*yamlpath.Document, []FailedFix) {
	var failed []FailedFix
	current := doc
	for _, f := range fixes {
		next, err := f.Apply(current)
		if err != nil {
			failed = append(failed, FailedFix{Fix: f, Err: err})
			continue
		}
		current = next
	}
	return current, failed
}
