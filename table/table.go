// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package table holds the numeric case table the pipeline mutates: an ordered
// set of named int32 columns sharing one row count.
package table

import (
	"sort"

	"github.com/featurebasedb/seerprep/errors"
)

// Missing is the sentinel for blank or unparseable source data.
const Missing int32 = -1

// Table is an ordered set of named columns. Rows are always numbered
// 0..NumRows()-1; dropping rows compacts the remaining ones in place.
type Table struct {
	names   []string
	index   map[string]int
	columns [][]int32
	rows    int
}

// New returns an empty table with the given number of rows.
func New(rows int) *Table {
	return &Table{
		index: make(map[string]int),
		rows:  rows,
	}
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the column count.
func (t *Table) NumColumns() int { return len(t.names) }

// Names returns a copy of the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether the table has a column called name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the values of the named column. The slice is shared with
// the table.
func (t *Table) Column(name string) ([]int32, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.Newf(errors.ErrColumnNotFound, "column %q not found", name)
	}
	return t.columns[i], nil
}

// MustColumn is Column for callers that have already checked Has.
func (t *Table) MustColumn(name string) []int32 {
	col, err := t.Column(name)
	if err != nil {
		panic(err)
	}
	return col
}

// At returns the value at column position j, row i.
func (t *Table) At(i, j int) int32 { return t.columns[j][i] }

// Add appends a column. The table takes ownership of values.
func (t *Table) Add(name string, values []int32) error {
	if _, ok := t.index[name]; ok {
		return errors.Newf(errors.ErrDuplicateColumn, "column %q already exists", name)
	}
	if len(values) != t.rows {
		return errors.Errorf("column %q has %d values, table has %d rows", name, len(values), t.rows)
	}
	t.index[name] = len(t.names)
	t.names = append(t.names, name)
	t.columns = append(t.columns, values)
	return nil
}

// AddFilled appends a column with every row set to v.
func (t *Table) AddFilled(name string, v int32) error {
	values := make([]int32, t.rows)
	for i := range values {
		values[i] = v
	}
	return t.Add(name, values)
}

// Remove deletes the named column and returns its values.
func (t *Table) Remove(name string) ([]int32, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.Newf(errors.ErrColumnNotFound, "column %q not found", name)
	}
	values := t.columns[i]
	t.names = append(t.names[:i], t.names[i+1:]...)
	t.columns = append(t.columns[:i], t.columns[i+1:]...)
	delete(t.index, name)
	for j := i; j < len(t.names); j++ {
		t.index[t.names[j]] = j
	}
	return values, nil
}

// Retain keeps the rows for which keep returns true and renumbers them
// contiguously, preserving their relative order. keep is evaluated for every
// row before any row moves. It returns the number of rows dropped.
func (t *Table) Retain(keep func(row int) bool) int {
	mask := make([]bool, t.rows)
	for i := range mask {
		mask[i] = keep(i)
	}
	return t.RetainMask(mask)
}

// RetainMask keeps the rows whose mask entry is true. len(mask) must equal
// NumRows.
func (t *Table) RetainMask(mask []bool) int {
	if len(mask) != t.rows {
		panic("table: mask length does not match row count")
	}
	kept := 0
	for _, k := range mask {
		if k {
			kept++
		}
	}
	if kept == t.rows {
		return 0
	}
	for j, col := range t.columns {
		out := make([]int32, 0, kept)
		for i, v := range col {
			if mask[i] {
				out = append(out, v)
			}
		}
		t.columns[j] = out
	}
	dropped := t.rows - kept
	t.rows = kept
	return dropped
}

// Distinct returns the distinct values of the named column in ascending
// order.
func (t *Table) Distinct(name string) ([]int32, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	return Distinct(col), nil
}

// Distinct returns the distinct values of col in ascending order.
func Distinct(col []int32) []int32 {
	seen := make(map[int32]struct{})
	out := make([]int32, 0)
	for _, v := range col {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := New(t.rows)
	for j, name := range t.names {
		values := make([]int32, len(t.columns[j]))
		copy(values, t.columns[j])
		c.index[name] = j
		c.names = append(c.names, name)
		c.columns = append(c.columns, values)
	}
	return c
}
