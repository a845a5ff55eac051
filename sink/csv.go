// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package sink

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/featurebasedb/seerprep/errors"
)

// WriteCSV writes ds with a header row: the features, then the label, then
// the partition when there is one.
func WriteCSV(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	names := ds.Features.Names()
	header := append(names, ds.Label.Name)
	if ds.Sets != nil {
		header = append(header, SetColumn)
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	cols := make([][]int32, len(names))
	for j, name := range names {
		cols[j] = ds.Features.MustColumn(name)
	}
	record := make([]string, len(header))
	for i := 0; i < ds.Features.NumRows(); i++ {
		for j, col := range cols {
			record[j] = strconv.FormatInt(int64(col[i]), 10)
		}
		record[len(cols)] = strconv.FormatInt(int64(ds.Label.Values[i]), 10)
		if ds.Sets != nil {
			record[len(cols)+1] = ds.set(i)
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "writing row %d", i)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}
