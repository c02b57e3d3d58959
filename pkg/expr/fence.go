package expr

import "strings"

// Fence is one `${{ ... }}` occurrence located within a larger piece of
// text (e.g. a `run:` block or a `with:` value), carrying the inner
// expression text (without the delimiters) and its byte span within the
// original text (delimiters included).
type Fence struct {
	Inner string
	Start int
	End   int
}

// FindFences scans text for every `${{ ... }}` occurrence, left to right,
// non-overlapping. Each fence's inner text runs to the first "}}" found
// after its opening "${{", matching GitHub Actions' own non-nesting
// expression delimiters.
func FindFences(text string) []Fence {
	var out []Fence
	offset := 0
	for {
		rel := strings.Index(text[offset:], "${{")
		if rel < 0 {
			return out
		}
		start := offset + rel
		innerStart := start + 3
		relEnd := strings.Index(text[innerStart:], "}}")
		if relEnd < 0 {
			return out
		}
		end := innerStart + relEnd + 2
		out = append(out, Fence{
			Inner: strings.TrimSpace(text[innerStart : innerStart+relEnd]),
			Start: start,
			End:   end,
		})
		offset = end
	}
}
