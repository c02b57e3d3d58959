package finding

import (
	"fmt"

	"github.com/wflint/wflint/pkg/inputs"
	"github.com/wflint/wflint/pkg/yamlpath"
)

// DocumentSet concretizes SymbolicLocations against the parsed documents
// backing every input in a run. A finding can span multiple inputs (e.g. a
// reusable workflow call pointing back at the caller), so concretization is
// keyed by each location's own InputKey rather than a single document.
type DocumentSet struct {
	docs map[inputs.Key]*yamlpath.Document
}

// NewDocumentSet builds an empty DocumentSet.
func NewDocumentSet() *DocumentSet {
	return &DocumentSet{docs: make(map[inputs.Key]*yamlpath.Document)}
}

// Add registers doc as the parsed form of key, so that locations addressing
// key can later be concretized.
func (s *DocumentSet) Add(key inputs.Key, doc *yamlpath.Document) {
	s.docs[key] = doc
}

// Document returns the document registered for key, if any.
func (s *DocumentSet) Document(key inputs.Key) (*yamlpath.Document, bool) {
	d, ok := s.docs[key]
	return d, ok
}

// Concretize implements Concretizer by locating sym's Query within the
// document registered for sym.Key.
func (s *DocumentSet) Concretize(sym SymbolicLocation) (Location, error) {
	doc, ok := s.docs[sym.Key]
	if !ok {
		return Location{}, fmt.Errorf("finding: no document registered for %s", sym.Key)
	}

	mode := sym.Mode
	if sym.FeatureKind == FeatureKeyOnly {
		mode = yamlpath.ModeKeyOnly
	}
	feat, _, err := doc.Query(sym.Query, mode)
	if err != nil {
		return Location{}, fmt.Errorf("finding: locate %s in %s: %w", sym.Annotation, sym.Key, err)
	}

	span := feat.Span
	if sym.FeatureKind == FeatureSubfeature && sym.Subfeature != nil {
		featureText := doc.Extract(span)
		sub, found := sym.Subfeature.LocateWithin(featureText)
		if !found {
			return Location{}, fmt.Errorf("finding: locate subfeature in %s: not found", sym.Key)
		}
		span = yamlpath.Span{Start: span.Start + sub.Start, End: span.Start + sub.End}
	}

	startPoint, _ := pointsOf(doc.Source(), span)

	return Location{
		Symbolic: sym,
		Concrete: ConcreteLocation{
			Span:     span,
			Line:     startPoint.row + 1,
			Column:   startPoint.col + 1,
			Feature:  doc.Extract(span),
			Comments: feat.Comments,
		},
	}, nil
}

type point struct{ row, col int }

// pointsOf recovers 0-based (row, column) for span.Start, counting newlines
// and the distance back to the last one. Only the start point is needed by
// ConcreteLocation today; endPoint is computed for future callers (e.g. a
// SARIF renderer reporting an end column) and discarded here.
func pointsOf(src string, span yamlpath.Span) (start, end point) {
	start = rowColAt(src, span.Start)
	end = rowColAt(src, span.End)
	return start, end
}

func rowColAt(src string, offset int) point {
	row, lastNL := 0, -1
	for i := 0; i < offset && i < len(src); i++ {
		if src[i] == '\n' {
			row++
			lastNL = i
		}
	}
	return point{row: row, col: offset - lastNL - 1}
}
