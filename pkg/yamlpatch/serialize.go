package yamlpatch

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// serializeValue renders v as a YAML fragment indented to match its parent.
// topLevel controls whether a multi-line block (mapping/sequence) starts on
// its own line below the key, or inline after "key: " for a scalar — block
// style is preferred whenever the value isn't a plain scalar, matching
// spec.md 4.3's "preserve block vs flow style if already present; prefer
// block" rule for newly introduced values.
func serializeValue(v any, indent int, topLevel bool) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(val)
	case string:
		return scalarString(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case map[string]any:
		return serializeMapping(val, indent, topLevel)
	case []any:
		return serializeSequence(val, indent, topLevel)
	case []string:
		items := make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
		return serializeSequence(items, indent, topLevel)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func scalarString(s string) string {
	if s == "" {
		return `""`
	}
	if needsQuoting(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuoting(s string) bool {
	switch s {
	case "true", "false", "null", "~", "yes", "no":
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	for _, r := range s {
		switch r {
		case ':', '#', '\n', '\t', '"', '\'', '{', '}', '[', ']', ',', '&', '*', '!', '|', '>', '%', '@', '`':
			return true
		}
	}
	if strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		return true
	}
	return false
}

func serializeMapping(m map[string]any, indent int, topLevel bool) string {
	if len(m) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	childIndent := indent
	if topLevel {
		childIndent = indent
	} else {
		childIndent = indent + 2
	}
	for i, k := range keys {
		if i > 0 || !topLevel {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat(" ", childIndent))
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(serializeValue(m[k], childIndent, false))
	}
	return b.String()
}

func serializeSequence(items []any, indent int, topLevel bool) string {
	if len(items) == 0 {
		return "[]"
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 || !topLevel {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat(" ", indent))
		}
		b.WriteString("- ")
		b.WriteString(serializeValue(item, indent+2, false))
	}
	return b.String()
}
