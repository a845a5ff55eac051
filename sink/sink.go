// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package sink writes a prepared data set to disk.
package sink

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/ledger"
	"github.com/featurebasedb/seerprep/split"
	"github.com/featurebasedb/seerprep/table"
	"github.com/featurebasedb/seerprep/target"
)

// SetColumn names the column holding each row's partition.
const SetColumn = "set"

// Dataset is the finished output of a run: input features whose columns
// agree with the ledger, a label per row and, optionally, each row's
// partition.
type Dataset struct {
	Features *table.Table
	Ledger   *ledger.Ledger
	Label    target.Label
	Sets     []split.Set
}

// Validate checks that the parts of ds line up.
func (ds *Dataset) Validate() error {
	if err := ds.Ledger.Check(ds.Features.NumColumns()); err != nil {
		return err
	}
	if n := len(ds.Label.Values); n != ds.Features.NumRows() {
		return errors.Errorf("label has %d rows but features have %d", n, ds.Features.NumRows())
	}
	if ds.Sets != nil && len(ds.Sets) != ds.Features.NumRows() {
		return errors.Errorf("partition has %d rows but features have %d", len(ds.Sets), ds.Features.NumRows())
	}
	if ds.Features.Has(ds.Label.Name) || (ds.Sets != nil && ds.Features.Has(SetColumn)) {
		return errors.Newf(errors.ErrDuplicateColumn, "label or partition column collides with a feature")
	}
	return nil
}

func (ds *Dataset) set(i int) string {
	if ds.Sets == nil {
		return ""
	}
	return string(ds.Sets[i])
}

// Format is an output file format.
type Format string

const (
	CSV     Format = "csv"
	Parquet Format = "parquet"
	SQLite  Format = "sqlite"
)

// Formats lists the supported formats.
var Formats = []Format{CSV, Parquet, SQLite}

// ParseFormats parses format names, ignoring case and surrounding space.
func ParseFormats(names []string) ([]Format, error) {
	out := make([]Format, 0, len(names))
	seen := make(map[Format]bool)
	for _, n := range names {
		f := Format(strings.ToLower(strings.TrimSpace(n)))
		switch f {
		case CSV, Parquet, SQLite:
		default:
			return nil, errors.Errorf("unknown output format %q", n)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// FileName is the name of the data file written for format f.
func (f Format) FileName() string {
	switch f {
	case SQLite:
		return "data.sqlite"
	default:
		return "data." + string(f)
	}
}

// Write writes ds into dir once per format and returns the paths written.
func Write(ctx context.Context, dir string, formats []Format, ds *Dataset) ([]string, error) {
	if err := ds.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating data set")
	}
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := filepath.Join(dir, f.FileName())
		var err error
		switch f {
		case CSV:
			err = writeFile(path, func(file *os.File) error { return WriteCSV(file, ds) })
		case Parquet:
			err = writeFile(path, func(file *os.File) error { return WriteParquet(file, ds) })
		case SQLite:
			err = WriteSQLite(ctx, path, ds)
		default:
			err = errors.Errorf("unknown output format %q", f)
		}
		if err != nil {
			return paths, errors.Wrapf(err, "writing %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteJSON writes v as indented JSON to path.
func WriteJSON(path string, v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encoding %s", filepath.Base(path))
	}
	return errors.Wrapf(os.WriteFile(path, append(buf, '\n'), 0644), "writing %s", path)
}
