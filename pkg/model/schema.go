package model

import (
	"fmt"
	"strings"

	"github.com/rhysd/actionlint"

	"github.com/wflint/wflint/pkg/inputs"
)

// SchemaError reports that actionlint's own workflow grammar rejected a
// document our lenient map-based decode accepted, grounded on
// ossf/allstar's actionlint.Parse usage: a bad event name, a
// wrongly-typed `matrix:` field, or a duplicate key survives FromString's
// walk but not actionlint's typed schema.
type SchemaError struct {
	Key  inputs.Key
	Errs []*actionlint.Error
}

func (e *SchemaError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, er := range e.Errs {
		msgs[i] = fmt.Sprintf("%d:%d: %s", er.Line, er.Column, er.Message)
	}
	return fmt.Sprintf("schema: %s: %s", e.Key, strings.Join(msgs, "; "))
}

// Validate cross-checks w's source against actionlint's own workflow
// schema as a secondary sanity check beyond FromString's lenient decode.
// It returns a *SchemaError carrying every structural problem actionlint
// found, or nil if actionlint raised nothing.
func (w *Workflow) Validate() error {
	_, errs := actionlint.Parse([]byte(w.Source()))
	if len(errs) == 0 {
		return nil
	}
	return &SchemaError{Key: w.Key(), Errs: errs}
}
