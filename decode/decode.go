// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package decode turns fixed-width registry records into a numeric table.
package decode

import (
	"bufio"
	"context"
	"io"
	"math"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/layout"
	"github.com/featurebasedb/seerprep/logger"
	"github.com/featurebasedb/seerprep/table"
	"golang.org/x/sync/errgroup"
)

// maxLineSize bounds a single record line; registry records are a few
// hundred characters.
const maxLineSize = 1 << 20

// Decoder decodes fixed-width text using a field layout.
type Decoder struct {
	Fields []layout.Field
	// Concurrency is the number of shards decoded in parallel. Zero means
	// GOMAXPROCS.
	Concurrency int
	Log         logger.Logger

	progress uint64
}

// NewDecoder returns a decoder for the fields of l.
func NewDecoder(l *layout.Layout, log logger.Logger) *Decoder {
	return &Decoder{Fields: l.Fields(), Log: log}
}

// Progress returns the number of records decoded so far.
func (d *Decoder) Progress() uint64 {
	return atomic.LoadUint64(&d.progress)
}

// Decode reads every line of r as one record. Column names are the field
// descriptions, in layout order. Shards are decoded independently and
// concatenated in input order, so the result does not depend on
// Concurrency.
func (d *Decoder) Decode(ctx context.Context, r io.Reader) (*table.Table, error) {
	log := d.Log
	if log == nil {
		log = logger.NopLogger
	}
	seen := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if _, ok := seen[f.Description]; ok {
			return nil, errors.Newf(errors.ErrDuplicateColumn, "field description %q is not unique", f.Description)
		}
		seen[f.Description] = struct{}{}
	}

	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	shards := d.Concurrency
	if shards <= 0 {
		shards = runtime.GOMAXPROCS(0)
	}
	if shards > len(lines) {
		shards = len(lines)
	}
	if shards == 0 {
		shards = 1
	}
	per := (len(lines) + shards - 1) / shards

	// results[s][j] holds column j for shard s.
	results := make([][][]int32, shards)
	group, ctx := errgroup.WithContext(ctx)
	for s := 0; s < shards; s++ {
		s := s
		lo := s * per
		hi := lo + per
		if lo > len(lines) {
			lo = len(lines)
		}
		if hi > len(lines) {
			hi = len(lines)
		}
		group.Go(func() error {
			cols, err := d.decodeShard(ctx, lines[lo:hi])
			results[s] = cols
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, errors.Wrap(err, "decoding records")
	}

	t := table.New(len(lines))
	for j, f := range d.Fields {
		col := make([]int32, 0, len(lines))
		for s := range results {
			col = append(col, results[s][j]...)
		}
		if err := t.Add(f.Description, col); err != nil {
			return nil, err
		}
	}
	log.Debugf("decoded %d records into %d columns using %d shards", t.NumRows(), t.NumColumns(), shards)
	return t, nil
}

func (d *Decoder) decodeShard(ctx context.Context, lines []string) ([][]int32, error) {
	cols := make([][]int32, len(d.Fields))
	for j := range cols {
		cols[j] = make([]int32, len(lines))
	}
	for i, line := range lines {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for j, f := range d.Fields {
			cols[j][i] = Value(slice(line, f))
		}
		atomic.AddUint64(&d.progress, 1)
	}
	return cols, nil
}

// slice returns the characters of line covered by f; short lines yield a
// truncated or empty string.
func slice(line string, f layout.Field) string {
	if f.Start >= len(line) {
		return ""
	}
	end := f.End()
	if end > len(line) {
		end = len(line)
	}
	return line[f.Start:end]
}

// Value parses a field as a number. Blank or non-numeric text yields
// table.Missing. Decimals are truncated toward zero and results outside the
// int32 range wrap.
func Value(s string) int32 {
	s = strings.TrimSpace(s)
	if s == "" {
		return table.Missing
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int32(v)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return table.Missing
	}
	return int32(int64(f))
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lines := make([]string, 0, 1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading records")
	}
	return lines, nil
}
