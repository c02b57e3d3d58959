// Package rules implements the illustrative audits spec.md 4.10/C11 names:
// artipacked, template-injection, unpinned-uses, bot-conditions,
// impostor-commit, plus missing-timeout, secrets-inherit, and
// dependabot-execution recovered from original_source per SPEC_FULL.md.
// Each registers itself with pkg/audit on import, mirroring the
// database/sql driver registration idiom.
package rules

import (
	"strings"

	"github.com/wflint/wflint/pkg/sliceutil"
)

// attackerControlledEventFields lists the github.event.* subcontexts whose
// string value an external, untrusted actor can fully control — the
// "static capability table compiled at build time" spec.md 4.10 describes
// for template-injection, grounded on zizmor's context-capabilities data
// for the handful of event fields most commonly abused (issue/PR/comment/
// discussion titles and bodies, commit messages, and page names).
var attackerControlledEventFields = []string{
	"issue.title",
	"issue.body",
	"pull_request.title",
	"pull_request.body",
	"pull_request.head.ref",
	"pull_request.head.label",
	"comment.body",
	"review.body",
	"review_comment.body",
	"discussion.title",
	"discussion.body",
	"head_commit.message",
	"head_commit.author.email",
	"head_commit.author.name",
	"commits.*.message",
	"pages.*.page_name",
}

// isAttackerControlledEventPath reports whether path (a dotted
// "github.event."-relative suffix) names a field in the capability table,
// treating a "*" pattern component as matching any single segment.
func isAttackerControlledEventPath(path string) bool {
	if sliceutil.Contains(attackerControlledEventFields, strings.ToLower(path)) {
		return true
	}

	pathParts := strings.Split(path, ".")
	for _, pattern := range attackerControlledEventFields {
		if !strings.Contains(pattern, "*") {
			continue
		}
		patternParts := strings.Split(pattern, ".")
		if len(patternParts) != len(pathParts) {
			continue
		}
		match := true
		for i, p := range patternParts {
			if p == "*" {
				continue
			}
			if !strings.EqualFold(p, pathParts[i]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
