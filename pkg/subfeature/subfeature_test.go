package subfeature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFragment(t *testing.T) {
	for _, tt := range []struct {
		ctx      string
		expected string
		isRegex  bool
	}{
		{"foo.bar", "foo.bar", false},
		{"foo . bar", "foo . bar", false},
		{"foo['bar']", "foo['bar']", false},
		{"foo [\n'bar'\n]", `foo\s+\[\s+'bar'\s+\]`, true},
	} {
		f := NewFragment(tt.ctx)
		assert.Equal(t, tt.isRegex, f.IsRegex(), tt.ctx)
		if tt.isRegex {
			assert.Equal(t, tt.expected, f.regex.String(), tt.ctx)
		} else {
			assert.Equal(t, tt.expected, f.raw, tt.ctx)
		}
	}
}

func TestLocateWithin(t *testing.T) {
	feature := "steps:\n  - run: echo ${{ github.event.issue.title }}\n"
	sf := New(0, "github.event.issue.title")
	span, ok := sf.LocateWithin(feature)
	if assert.True(t, ok) {
		assert.Equal(t, "github.event.issue.title", feature[span.Start:span.End])
	}
}

func TestLocateWithinNotFound(t *testing.T) {
	sf := New(0, "does.not.exist")
	_, ok := sf.LocateWithin("steps:\n  - run: echo hi\n")
	assert.False(t, ok)
}
