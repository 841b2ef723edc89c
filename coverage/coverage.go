// Package coverage reports how completely the store's fields are populated
// and whether each null is one the pipeline should have filled.
package coverage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/padraicbc/mikerp/models"
)

// Store counts one field.
type Store interface {
	FieldCounts(ctx context.Context, table, column, scope string) (models.FieldCount, error)
}

// Line is the audit result for one field.
type Line struct {
	Field
	Total           int     `json:"total"`
	Populated       int     `json:"populated"`
	Percent         float64 `json:"percent"`
	ExpectedNulls   int     `json:"expectedNulls"`
	UnexpectedNulls int     `json:"unexpectedNulls"`
}

// Report is a full audit.
type Report struct {
	Lines      []Line `json:"lines"`
	Unexpected int    `json:"unexpected"`
}

// Auditor runs audits over a field list.
type Auditor struct {
	store  Store
	fields []Field
	logger *zap.Logger
}

// New returns an Auditor over the full registry.
func New(store Store, logger *zap.Logger) *Auditor {
	return &Auditor{store: store, fields: registry, logger: logger.With(zap.String("component", "coverage"))}
}

// Audit counts every field.
func (a *Auditor) Audit(ctx context.Context) (Report, error) {
	var rep Report
	for _, f := range a.fields {
		scope := ""
		if f.Source == Enrichment {
			scope = f.Scope
		}
		fc, err := a.store.FieldCounts(ctx, f.Table, f.Column, scope)
		if err != nil {
			return rep, fmt.Errorf("count %s.%s: %w", f.Table, f.Column, err)
		}
		l := Classify(f, fc)
		rep.Unexpected += l.UnexpectedNulls
		rep.Lines = append(rep.Lines, l)
	}
	if rep.Unexpected > 0 {
		a.logger.Warn("unexpected nulls found", zap.Int("count", rep.Unexpected))
	}
	return rep, nil
}

// Classify splits a field's nulls into expected and unexpected.
func Classify(f Field, fc models.FieldCount) Line {
	l := Line{Field: f, Total: fc.Total, Populated: fc.Populated}
	nulls := fc.Total - fc.Populated
	if fc.Total > 0 {
		l.Percent = 100 * float64(fc.Populated) / float64(fc.Total)
	}
	switch f.Source {
	case Extraction:
		l.UnexpectedNulls = nulls
	case Enrichment:
		l.UnexpectedNulls = min(fc.NullInScope, nulls)
		l.ExpectedNulls = nulls - l.UnexpectedNulls
	default:
		l.ExpectedNulls = nulls
	}
	return l
}
