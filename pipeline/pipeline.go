// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package pipeline applies a declarative per-column treatment to a decoded
// registry table.
//
// A pipeline runs in five phases, each of which leaves the table and the
// encoding ledger in agreement:
//
//  1. alignment: the table is reduced to exactly the pipeline's columns,
//     adding any missing column filled with the missing value;
//  2. filters, in entry order;
//  3. constraints, which drop rows;
//  4. removal of columns whose status is remove;
//  5. categorical expansion, when categorical encoding is enabled.
package pipeline

import (
	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/ledger"
	"github.com/featurebasedb/seerprep/logger"
	"github.com/featurebasedb/seerprep/table"
)

// Frame is the mutable state threaded through every phase. The table and
// ledger are modified in place.
type Frame struct {
	Table             *table.Table
	Ledger            *ledger.Ledger
	EncodeCategorical bool
}

// NewFrame wraps t with a fresh ledger giving every column width 1.
func NewFrame(t *table.Table, encodeCategorical bool) *Frame {
	return &Frame{
		Table:             t,
		Ledger:            ledger.FromNames(t.Names()),
		EncodeCategorical: encodeCategorical,
	}
}

// Check returns ErrEncodingMismatch if the ledger disagrees with the table.
func (fr *Frame) Check() error {
	return fr.Ledger.Check(fr.Table.NumColumns())
}

// Report summarizes what a pipeline run did.
type Report struct {
	ColumnsDropped  int `json:"columns_dropped"`
	ColumnsFilled   int `json:"columns_filled"`
	RowsConstrained int `json:"rows_constrained"`
	ColumnsRemoved  int `json:"columns_removed"`
	ColumnsExpanded int `json:"columns_expanded"`
}

// Pipeline is an ordered list of column entries.
type Pipeline struct {
	Entries []Entry
	Logger  logger.Logger
}

// New validates entries and returns a pipeline over them.
func New(entries []Entry, log logger.Logger) (*Pipeline, error) {
	if err := Validate(entries); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NopLogger
	}
	return &Pipeline{Entries: entries, Logger: log}, nil
}

// Columns returns the entry columns in order.
func (p *Pipeline) Columns() []string {
	out := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e.Column
	}
	return out
}

// Apply runs all five phases against fr.
func (p *Pipeline) Apply(fr *Frame) (Report, error) {
	var rep Report
	phases := []struct {
		name string
		run  func(*Frame, *Report) error
	}{
		{"alignment", p.align},
		{"filters", p.filter},
		{"constraints", p.constrain},
		{"removal", p.remove},
		{"categorical expansion", p.expand},
	}
	for _, ph := range phases {
		if err := ph.run(fr, &rep); err != nil {
			return rep, errors.Wrapf(err, "pipeline %s", ph.name)
		}
		if err := fr.Check(); err != nil {
			return rep, errors.Wrapf(err, "after pipeline %s", ph.name)
		}
		p.Logger.Debugf("after %s: (%d; %d) cases and attributes", ph.name, fr.Table.NumRows(), fr.Table.NumColumns())
	}
	return rep, nil
}

func (p *Pipeline) align(fr *Frame, rep *Report) error {
	want := make(map[string]struct{}, len(p.Entries))
	for _, e := range p.Entries {
		want[e.Column] = struct{}{}
	}
	for _, name := range fr.Table.Names() {
		if _, ok := want[name]; ok {
			continue
		}
		if _, err := fr.Table.Remove(name); err != nil {
			return err
		}
		fr.Ledger.Remove(name)
		rep.ColumnsDropped++
	}
	for _, e := range p.Entries {
		if fr.Table.Has(e.Column) {
			continue
		}
		if err := fr.Table.AddFilled(e.Column, table.Missing); err != nil {
			return err
		}
		fr.Ledger.Set(e.Column, 1)
		rep.ColumnsFilled++
		p.Logger.Warnf("column %q is not in the data; filled with missing values", e.Column)
	}
	if fr.Table.NumColumns() != len(p.Entries) {
		return errors.Newf(errors.ErrAlignment, "table has %d columns but the pipeline describes %d",
			fr.Table.NumColumns(), len(p.Entries))
	}
	for _, e := range p.Entries {
		if !fr.Table.Has(e.Column) {
			return errors.Newf(errors.ErrAlignment, "pipeline column %q is not in the table", e.Column)
		}
	}
	return nil
}

func (p *Pipeline) filter(fr *Frame, _ *Report) error {
	for _, e := range p.Entries {
		for _, f := range e.Filters {
			if err := f.Apply(fr, e.Column); err != nil {
				return errors.Wrapf(err, "%s filter on %q", f.Kind, e.Column)
			}
		}
	}
	return nil
}

func (p *Pipeline) constrain(fr *Frame, rep *Report) error {
	for _, e := range p.Entries {
		for _, c := range e.Constraints {
			col, err := fr.Table.Column(e.Column)
			if err != nil {
				return errors.Wrapf(err, "constraint on %q", e.Column)
			}
			op, err := ParseOperator(string(c.Operator))
			if err != nil {
				return err
			}
			dropped := fr.Table.Retain(func(i int) bool { return op.Eval(col[i], c.Value) })
			rep.RowsConstrained += dropped
			if dropped > 0 {
				p.Logger.Debugf("constraint %q %s %d dropped %d rows", e.Column, op, c.Value, dropped)
			}
		}
	}
	return nil
}

func (p *Pipeline) remove(fr *Frame, rep *Report) error {
	for _, e := range p.Entries {
		if e.Status != StatusRemove {
			continue
		}
		if _, err := fr.Table.Remove(e.Column); err != nil {
			return errors.Wrapf(err, "removing %q", e.Column)
		}
		if err := fr.Ledger.MustRemove(e.Column); err != nil {
			return err
		}
		rep.ColumnsRemoved++
	}
	return nil
}

func (p *Pipeline) expand(fr *Frame, rep *Report) error {
	if !fr.EncodeCategorical {
		return nil
	}
	for _, e := range p.Entries {
		if e.Status != StatusCategorical {
			continue
		}
		col, err := fr.Table.Remove(e.Column)
		if err != nil {
			return errors.Wrapf(err, "expanding %q", e.Column)
		}
		n, err := addIndicators(fr.Table, e.Column, col)
		if err != nil {
			return errors.Wrapf(err, "expanding %q", e.Column)
		}
		setExpandedWidth(fr, e.Column, n)
		rep.ColumnsExpanded++
	}
	return nil
}
