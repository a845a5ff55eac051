// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package sink

import (
	"io"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/apache/arrow/go/v10/parquet"
	"github.com/apache/arrow/go/v10/parquet/pqarrow"
	"github.com/featurebasedb/seerprep/errors"
)

// parquetChunkSize is the row group size.
const parquetChunkSize = 64 * 1024

// ArrowTable converts ds into an Arrow table with one int32 column per
// feature, the int32 label, and the partition as strings when present.
// The caller must release the table.
func ArrowTable(ds *Dataset, mem memory.Allocator) arrow.Table {
	names := ds.Features.Names()
	fields := make([]arrow.Field, 0, len(names)+2)
	chunks := make([]arrow.Array, 0, len(names)+2)

	addInt32 := func(name string, values []int32) {
		b := array.NewInt32Builder(mem)
		defer b.Release()
		b.AppendValues(values, nil)
		fields = append(fields, arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int32})
		chunks = append(chunks, b.NewArray())
	}
	for _, name := range names {
		addInt32(name, ds.Features.MustColumn(name))
	}
	addInt32(ds.Label.Name, ds.Label.Values)
	if ds.Sets != nil {
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for i := range ds.Sets {
			b.Append(ds.set(i))
		}
		fields = append(fields, arrow.Field{Name: SetColumn, Type: arrow.BinaryTypes.String})
		chunks = append(chunks, b.NewArray())
	}

	schema := arrow.NewSchema(fields, nil)
	rec := array.NewRecord(schema, chunks, int64(ds.Features.NumRows()))
	defer rec.Release()
	for _, c := range chunks {
		c.Release()
	}
	return array.NewTableFromRecords(schema, []arrow.Record{rec})
}

// writerOnly hides any Close method of the wrapped writer. The parquet file
// writer closes a sink that is an io.Closer, and w belongs to the caller.
type writerOnly struct {
	io.Writer
}

// WriteParquet writes ds as a single Parquet file. w is not closed.
func WriteParquet(w io.Writer, ds *Dataset) error {
	tbl := ArrowTable(ds, memory.NewGoAllocator())
	defer tbl.Release()

	props := parquet.NewWriterProperties(parquet.WithDictionaryDefault(false))
	arrProps := pqarrow.DefaultWriterProps()
	return errors.Wrap(pqarrow.WriteTable(tbl, writerOnly{w}, parquetChunkSize, props, arrProps), "writing parquet")
}
