// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package cases removes registry records named in an externally supplied
// case list.
//
// The list names records to drop, not records to keep: a row whose
// (Patient ID, Record number) key appears in the list is removed. Callers
// that need inclusion semantics must invert the list themselves.
package cases

import (
	"context"
	"encoding/csv"
	"io"
	"runtime"
	"strconv"
	"strings"

	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/logger"
	"github.com/featurebasedb/seerprep/table"
	"golang.org/x/sync/errgroup"
)

const (
	PatientIDColumn    = "Patient ID"
	RecordNumberColumn = "Record number"
)

// Key identifies a case.
type Key struct {
	PatientID    int64
	RecordNumber int64
}

// Set is a set of case keys.
type Set map[Key]struct{}

// NewSet builds a set from keys; order and duplicates are irrelevant.
func NewSet(keys ...Key) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Contains reports whether k is in the set.
func (s Set) Contains(k Key) bool {
	_, ok := s[k]
	return ok
}

// ReadList reads a delimited case list with a header row containing at least
// PatientIDColumn and RecordNumberColumn. Other columns are ignored.
func ReadList(r io.Reader, log logger.Logger) (Set, error) {
	if log == nil {
		log = logger.NopLogger
	}
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCaseList, "case list is empty")
	} else if err != nil {
		return nil, errors.Wrap(err, "reading case list header")
	}
	pid, rec := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case PatientIDColumn:
			pid = i
		case RecordNumberColumn:
			rec = i
		}
	}
	if pid < 0 || rec < 0 {
		return nil, errors.Newf(errors.ErrCaseList, "case list header %q lacks %q or %q", header, PatientIDColumn, RecordNumberColumn)
	}
	if extra := len(header) - 2; extra > 0 {
		log.Debugf("ignoring %d additional case list column(s)", extra)
	}

	set := make(Set)
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "reading case list line %d", line+1)
		}
		line++
		if pid >= len(row) || rec >= len(row) {
			return nil, errors.Newf(errors.ErrCaseList, "case list line %d has %d columns", line, len(row))
		}
		p, err := parseID(row[pid])
		if err != nil {
			return nil, errors.Newf(errors.ErrCaseList, "case list line %d: bad %s %q", line, PatientIDColumn, row[pid])
		}
		n, err := parseID(row[rec])
		if err != nil {
			return nil, errors.Newf(errors.ErrCaseList, "case list line %d: bad %s %q", line, RecordNumberColumn, row[rec])
		}
		set[Key{PatientID: p, RecordNumber: n}] = struct{}{}
	}
	log.Debugf("read %d distinct cases from %d case list lines", len(set), line-1)
	return set, nil
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// Filter drops every row of t whose key is in set and renumbers the
// remaining rows. Membership is tested in parallel shards; the rows are
// renumbered once, after all shards finish. It returns the number of rows
// dropped.
func Filter(ctx context.Context, t *table.Table, set Set, concurrency int) (int, error) {
	pids, err := t.Column(PatientIDColumn)
	if err != nil {
		return 0, err
	}
	recs, err := t.Column(RecordNumberColumn)
	if err != nil {
		return 0, err
	}

	rows := t.NumRows()
	keep := make([]bool, rows)
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	per := (rows + concurrency - 1) / concurrency
	if per == 0 {
		per = 1
	}

	group, ctx := errgroup.WithContext(ctx)
	for lo := 0; lo < rows; lo += per {
		lo, hi := lo, lo+per
		if hi > rows {
			hi = rows
		}
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				k := Key{PatientID: int64(pids[i]), RecordNumber: int64(recs[i])}
				keep[i] = !set.Contains(k)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return 0, errors.Wrap(err, "matching cases")
	}
	return t.RetainMask(keep), nil
}
