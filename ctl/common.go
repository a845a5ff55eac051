// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"os"

	"github.com/featurebasedb/seerprep/decode"
	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/layout"
	"github.com/featurebasedb/seerprep/logger"
	"github.com/featurebasedb/seerprep/table"
)

// UsageError is wrapped by errors caused by missing or invalid flags.
var UsageError = errors.New(errors.ErrUsage, "usage error")

// LayoutFlags are the flags every command reading a layout shares.
type LayoutFlags struct {
	Specifications string
	RecordLength   int
	ReservedGap    int
}

func (f LayoutFlags) schema() layout.Schema {
	return layout.Schema{RecordLength: f.RecordLength, ReservedGap: f.ReservedGap}
}

func (f LayoutFlags) parse(log logger.Logger) (*layout.Layout, error) {
	if f.Specifications == "" {
		return nil, errors.Wrap(UsageError, "--specifications is required")
	}
	file, err := os.Open(f.Specifications)
	if err != nil {
		return nil, errors.Wrap(err, "opening specifications")
	}
	defer file.Close()
	return layout.Parse(file, f.schema(), log)
}

func decodeFile(ctx context.Context, l *layout.Layout, path string, concurrency int, log logger.Logger) (*table.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening incidences")
	}
	defer file.Close()
	d := decode.NewDecoder(l, log)
	d.Concurrency = concurrency
	return d.Decode(ctx, file)
}
