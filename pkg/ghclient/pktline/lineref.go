package pktline

import (
	"fmt"
	"regexp"
	"strings"
)

// lineRefPattern matches the subset of Git line refs expected from an
// `ls-refs` v2 advertisement: an object id, a ref name, and an optional
// peeled object id, grounded on lineref.rs's LINE_REF_PATTERN.
var lineRefPattern = regexp.MustCompile(`^([0-9a-f]{40}) (\S+)(?: peeled:([0-9a-f]{40}))?$`)

// LineRef is one parsed Git reference from a smart-HTTP ref advertisement.
type LineRef struct {
	ObjID       string
	RefName     string
	PeeledObjID string
	HasPeeled   bool
}

// ParseLineRef turns a decoded pkt-line data packet into a LineRef.
func ParseLineRef(data []byte) (LineRef, error) {
	line := strings.TrimSuffix(string(data), "\n")

	m := lineRefPattern.FindStringSubmatch(line)
	if m == nil {
		return LineRef{}, fmt.Errorf("malformed line ref: %s", line)
	}

	ref := LineRef{ObjID: m[1], RefName: m[2]}
	if m[3] != "" {
		ref.PeeledObjID = m[3]
		ref.HasPeeled = true
	}
	return ref, nil
}

// LineRefIterator walks a pkt-line byte stream, yielding each parsed
// LineRef until the terminating flush packet.
type LineRefIterator struct {
	inner *PacketIterator
	done  bool
}

// NewLineRefIterator starts an iterator over data.
func NewLineRefIterator(data []byte) *LineRefIterator {
	return &LineRefIterator{inner: NewPacketIterator(data)}
}

// Next returns the next LineRef, or (zero, false, nil) once the flush
// packet terminating the advertisement is reached.
func (it *LineRefIterator) Next() (LineRef, bool, error) {
	if it.done {
		return LineRef{}, false, nil
	}

	pkt, ok, err := it.inner.Next()
	if err != nil {
		it.done = true
		return LineRef{}, true, err
	}
	if !ok {
		it.done = true
		return LineRef{}, false, nil
	}

	switch pkt.Kind {
	case KindFlush:
		it.done = true
		return LineRef{}, false, nil
	case KindDelim:
		it.done = true
		return LineRef{}, true, errorf("invalid packet line: unexpected control code 0001")
	default:
		ref, err := ParseLineRef(pkt.Data)
		if err != nil {
			return LineRef{}, true, err
		}
		return ref, true, nil
	}
}

// All drains the iterator into a slice, stopping at the first error.
func (it *LineRefIterator) All() ([]LineRef, error) {
	var refs []LineRef
	for {
		ref, ok, err := it.Next()
		if err != nil {
			return refs, err
		}
		if !ok {
			return refs, nil
		}
		refs = append(refs, ref)
	}
}
