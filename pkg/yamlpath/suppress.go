package yamlpath

import (
	"regexp"
	"strings"
)

// suppressionPattern matches an inline ignore comment. Both `zizmor:` and
// `wflint:` prefixes are accepted: this project is a rename/port, and
// workflows already carrying zizmor suppressions should keep working
// unmodified.
var suppressionPattern = regexp.MustCompile(`(?i)(?:zizmor|wflint):\s*ignore\[([a-z0-9_,\-\s]+)\]`)

// Ignores reports whether comment text c suppresses the finding with the
// given audit ident.
func (c Comment) Ignores(ident string) bool {
	m := suppressionPattern.FindStringSubmatch(c.Text)
	if m == nil {
		return false
	}
	for _, id := range strings.Split(m[1], ",") {
		if strings.EqualFold(strings.TrimSpace(id), ident) {
			return true
		}
	}
	return false
}
