// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package pipeline

import (
	"strconv"

	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/table"
)

// FilterKind identifies one of the column filters.
type FilterKind string

const (
	// Merge copies every non-missing value of the column into Target.
	Merge FilterKind = "merge"
	// MapValues rewrites values found in Mapping.
	MapValues FilterKind = "map_values"
	// EncodeValues splits the column into a continuous residual plus one
	// indicator per flagged value that occurs in the data.
	EncodeValues FilterKind = "encode_values"
	// EncodeField replaces the column by one indicator per distinct value.
	EncodeField FilterKind = "encode_field"
	// RemoveColumn drops the column.
	RemoveColumn FilterKind = "remove_column"
)

// ContinuousSuffix names the residual column EncodeValues leaves behind.
const ContinuousSuffix = " continuous"

// Filter is a column filter together with its arguments. Only the fields
// belonging to Kind are used.
type Filter struct {
	Kind FilterKind
	// Target is the column Merge writes into.
	Target string
	// Mapping is the value rewrite table of MapValues.
	Mapping map[int32]int32
	// Values are the flagged values of EncodeValues.
	Values []int32
}

func (f Filter) validate() error {
	switch f.Kind {
	case Merge:
		if f.Target == "" {
			return errors.New(errors.ErrUnknownFilter, "merge filter needs a target column")
		}
	case MapValues, EncodeValues, EncodeField, RemoveColumn:
	default:
		return errors.Newf(errors.ErrUnknownFilter, "unknown filter %q", f.Kind)
	}
	return nil
}

// Apply runs the filter on column, updating fr's table and ledger together.
func (f Filter) Apply(fr *Frame, column string) error {
	switch f.Kind {
	case Merge:
		return merge(fr, column, f.Target)
	case MapValues:
		return mapValues(fr, column, f.Mapping)
	case EncodeValues:
		return encodeValues(fr, column, f.Values)
	case EncodeField:
		return encodeField(fr, column)
	case RemoveColumn:
		return removeColumn(fr, column)
	}
	return errors.Newf(errors.ErrUnknownFilter, "unknown filter %q", f.Kind)
}

func merge(fr *Frame, column, target string) error {
	src, err := fr.Table.Column(column)
	if err != nil {
		return err
	}
	dst, err := fr.Table.Column(target)
	if err != nil {
		return errors.Wrap(err, "merge target")
	}
	for i, v := range src {
		if v != table.Missing {
			dst[i] = v
		}
	}
	return nil
}

func mapValues(fr *Frame, column string, mapping map[int32]int32) error {
	col, err := fr.Table.Column(column)
	if err != nil {
		return err
	}
	for i, v := range col {
		if to, ok := mapping[v]; ok {
			col[i] = to
		}
	}
	return nil
}

func encodeValues(fr *Frame, column string, values []int32) error {
	if !fr.EncodeCategorical {
		return nil
	}
	col, err := fr.Table.Column(column)
	if err != nil {
		return err
	}

	present := make(map[int32]struct{}, len(col))
	for _, v := range col {
		present[v] = struct{}{}
	}
	slot := make(map[int32]int)
	var contained []int32
	for _, v := range values {
		if _, ok := present[v]; !ok {
			continue
		}
		if _, dup := slot[v]; dup {
			continue
		}
		slot[v] = len(contained)
		contained = append(contained, v)
	}

	rows := fr.Table.NumRows()
	continuous := make([]int32, rows)
	indicators := make([][]int32, len(contained))
	for k := range indicators {
		indicators[k] = make([]int32, rows)
	}
	for i, v := range col {
		if k, ok := slot[v]; ok {
			indicators[k][i] = 1
			continue
		}
		continuous[i] = v
	}

	if _, err := fr.Table.Remove(column); err != nil {
		return err
	}
	if err := fr.Table.Add(column+ContinuousSuffix, continuous); err != nil {
		return err
	}
	for k, v := range contained {
		if err := fr.Table.Add(IndicatorName(column, v), indicators[k]); err != nil {
			return err
		}
	}
	fr.Ledger.Move(column, len(contained)+1)
	return nil
}

func encodeField(fr *Frame, column string) error {
	col, err := fr.Table.Column(column)
	if err != nil {
		return err
	}
	if _, err := fr.Table.Remove(column); err != nil {
		return err
	}
	n, err := addIndicators(fr.Table, column, col)
	if err != nil {
		return err
	}
	setExpandedWidth(fr, column, n)
	return nil
}

func removeColumn(fr *Frame, column string) error {
	if _, err := fr.Table.Remove(column); err != nil {
		return err
	}
	fr.Ledger.Remove(column)
	return nil
}

// IndicatorName names the indicator column for value v of column.
func IndicatorName(column string, v int32) string {
	return column + " " + strconv.FormatInt(int64(v), 10)
}

// addIndicators appends one indicator column per distinct value of col, in
// ascending value order, and returns how many it added.
func addIndicators(t *table.Table, column string, col []int32) (int, error) {
	distinct := table.Distinct(col)
	slot := make(map[int32]int, len(distinct))
	indicators := make([][]int32, len(distinct))
	for k, v := range distinct {
		slot[v] = k
		indicators[k] = make([]int32, len(col))
	}
	for i, v := range col {
		indicators[slot[v]][i] = 1
	}
	for k, v := range distinct {
		if err := t.Add(IndicatorName(column, v), indicators[k]); err != nil {
			return 0, err
		}
	}
	return len(distinct), nil
}

// setExpandedWidth moves column's ledger entry behind the columns just
// appended. A column without rows expands to nothing and loses its entry.
func setExpandedWidth(fr *Frame, column string, n int) {
	if n == 0 {
		fr.Ledger.Remove(column)
		return
	}
	fr.Ledger.Move(column, n)
}
