// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package describe summarizes the columns of a table so that each stage of
// a run can be inspected.
package describe

import (
	"fmt"

	"github.com/featurebasedb/seerprep/logger"
	"github.com/featurebasedb/seerprep/table"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Bins is the number of buckets in a column histogram.
const Bins = 10

// Summary describes one column.
type Summary struct {
	Column   string  `json:"column"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Distinct int     `json:"distinct"`
	Empty    int     `json:"empty"`
	// Histogram counts the values after scaling the column to [0, 1], in
	// Bins equal buckets. The top bucket includes the maximum.
	Histogram [Bins]int `json:"histogram"`
}

// String renders the summary as "column (min - max, mean, std) [distinct, empty]".
func (s Summary) String() string {
	return fmt.Sprintf("%s (%.1f - %.1f, %.2f, %.2f) [%d, %d]",
		s.Column, s.Min, s.Max, s.Mean, s.Std, s.Distinct, s.Empty)
}

// Column summarizes the values of one column. Std is the sample standard
// deviation, zero for fewer than two values so that summaries stay valid JSON.
func Column(name string, col []int32) Summary {
	s := Summary{Column: name}
	if len(col) == 0 {
		return s
	}
	x := make([]float64, len(col))
	for i, v := range col {
		x[i] = float64(v)
		if v == table.Missing {
			s.Empty++
		}
	}
	s.Min, s.Max = floats.Min(x), floats.Max(x)
	s.Mean, s.Std = stat.MeanStdDev(x, nil)
	if len(x) < 2 {
		s.Std = 0
	}
	s.Distinct = len(table.Distinct(col))

	span := s.Max - s.Min
	if span == 0 {
		span = 1
	}
	for _, v := range x {
		b := int((v - s.Min) / span * Bins)
		if b >= Bins {
			b = Bins - 1
		}
		s.Histogram[b]++
	}
	return s
}

// Table summarizes every column of t in order.
func Table(t *table.Table) []Summary {
	names := t.Names()
	out := make([]Summary, len(names))
	for j, name := range names {
		out[j] = Column(name, t.MustColumn(name))
	}
	return out
}

// State logs the shape of t under msg, and at debug level one line per
// column.
func State(log logger.Logger, msg string, t *table.Table) {
	log.Infof("%s: (%d; %d) cases and attributes", msg, t.NumRows(), t.NumColumns())
	for _, s := range Table(t) {
		log.Debugf("  %s", s)
	}
}
