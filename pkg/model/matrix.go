package model

import (
	"strconv"
	"strings"

	"github.com/wflint/wflint/pkg/expr"
)

// Matrix is the expanded view of a job's strategy.matrix, grounded on
// models/workflow/matrix.rs: it is either a literal mapping of dimensions
// (and include/exclude rows), which can be expanded into concrete
// path/value pairs, or a bare expression, which cannot.
type Matrix struct {
	// Expression holds the raw `${{ ... }}` text when the matrix as a whole
	// is computed rather than written out literally; ExpandedValues is
	// empty in that case.
	Expression string

	// ExpandedValues pairs each expanded dotted path (e.g. "matrix.os")
	// with its string-rendered value, one entry per leaf reached while
	// walking the dimensions (and include rows, minus exclude rows).
	ExpandedValues []MatrixValue
}

// MatrixValue is one (path, value) pair produced by expanding a matrix.
type MatrixValue struct {
	Path  string
	Value string
}

// NewMatrix builds a Matrix from a raw `strategy.matrix` value, which is
// either an `${{ expr }}` string or a map with any of dimensions
// (arbitrary key -> list of values), include, and exclude entries (each a
// list of row objects).
func NewMatrix(raw any) *Matrix {
	if raw == nil {
		return nil
	}
	if s, ok := raw.(string); ok {
		return &Matrix{Expression: s}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	dimensions := map[string]any{}
	var includes, excludes []map[string]any
	for k, v := range obj {
		switch k {
		case "include":
			includes = asRows(v)
		case "exclude":
			excludes = asRows(v)
		default:
			dimensions[k] = v
		}
	}

	expansions := expandDimensions(dimensions)
	for _, row := range includes {
		expansions = append(expansions, expandRow(row)...)
	}

	if len(excludes) > 0 {
		excluded := make([][]MatrixValue, 0, len(excludes))
		for _, row := range excludes {
			excluded = append(excluded, expandRow(row))
		}
		expansions = filterExcluded(expansions, excluded)
	}

	return &Matrix{ExpandedValues: expansions}
}

// orderedKeys is used instead of ranging a map directly so that expansion
// order is deterministic; callers compare expanded paths by content, not
// position, but deterministic output keeps snapshot tests stable.
func orderedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

func expandDimensions(dimensions map[string]any) []MatrixValue {
	var out []MatrixValue
	for _, key := range orderedKeys(dimensions) {
		out = append(out, walkPath(dimensions[key], "matrix."+key)...)
	}
	return out
}

func expandRow(row map[string]any) []MatrixValue {
	var out []MatrixValue
	for _, key := range orderedKeys(row) {
		out = append(out, walkPath(row[key], "matrix."+key)...)
	}
	return out
}

func asRows(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var rows []map[string]any
	for _, item := range list {
		if row, ok := item.(map[string]any); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// walkPath recursively expands a decoded YAML value tree into (path, value)
// pairs, appending ".key" for each object level and repeating the current
// path for each array element, mirroring Matrix::walk_path.
func walkPath(tree any, currentPath string) []MatrixValue {
	switch v := tree.(type) {
	case nil:
		return nil
	case bool:
		return []MatrixValue{{Path: currentPath, Value: strconv.FormatBool(v)}}
	case string:
		return []MatrixValue{{Path: currentPath, Value: v}}
	case int:
		return []MatrixValue{{Path: currentPath, Value: strconv.Itoa(v)}}
	case int64:
		return []MatrixValue{{Path: currentPath, Value: strconv.FormatInt(v, 10)}}
	case float64:
		return []MatrixValue{{Path: currentPath, Value: formatNumber(v)}}
	case []any:
		var out []MatrixValue
		for _, item := range v {
			out = append(out, walkPath(item, currentPath)...)
		}
		return out
	case map[string]any:
		var out []MatrixValue
		for _, key := range orderedKeys(v) {
			out = append(out, walkPath(v[key], currentPath+"."+key)...)
		}
		return out
	default:
		return nil
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func filterExcluded(expansions []MatrixValue, excluded [][]MatrixValue) []MatrixValue {
	var out []MatrixValue
	for _, e := range expansions {
		matched := false
		for _, row := range excluded {
			if containsValue(row, e) {
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, e)
		}
	}
	return out
}

func containsValue(row []MatrixValue, v MatrixValue) bool {
	for _, r := range row {
		if r == v {
			return true
		}
	}
	return false
}

// ExpandsToStaticValues reports whether every expanded value reachable by
// ctx is a plain literal rather than containing a `${{ ... }}` expression.
// An indirect (expression-valued) matrix always returns false, since its
// shape cannot be determined without evaluating the expression. A context
// matching no expanded path at all (because the matrix has no such
// dimension) is vacuously true for a direct matrix.
func (m *Matrix) ExpandsToStaticValues(ctx *expr.Context) bool {
	if m == nil {
		return false
	}
	if m.Expression != "" {
		return false
	}
	for _, v := range m.ExpandedValues {
		if !contextMatchesPath(ctx, v.Path) {
			continue
		}
		if len(extractFencedExpressions(v.Value)) > 0 {
			return false
		}
	}
	return true
}

func contextMatchesPath(ctx *expr.Context, path string) bool {
	pathParts := strings.Split(path, ".")
	if len(ctx.Parts) != len(pathParts) {
		return false
	}
	for i, part := range ctx.Parts {
		switch p := part.(type) {
		case *expr.Star:
			continue
		case *expr.Identifier:
			if !p.EqualFold(pathParts[i]) {
				return false
			}
		case *expr.Index:
			str, ok := p.Inner.(*expr.String)
			if !ok || !strings.EqualFold(str.Value, pathParts[i]) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// extractFencedExpressions returns at most one entry: the text from the first
// `${{` to the last `}}`, as a greedy match of utils::iter_expressions's
// regex would.
func extractFencedExpressions(text string) []string {
	var out []string
	for {
		start := strings.Index(text, "${{")
		if start < 0 {
			break
		}
		end := strings.LastIndex(text, "}}")
		if end < start {
			break
		}
		out = append(out, text[start:end+2])
		break
	}
	return out
}
