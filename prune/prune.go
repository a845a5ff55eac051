// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package prune removes columns that carry no information.
package prune

import (
	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/ledger"
	"github.com/featurebasedb/seerprep/logger"
	"github.com/featurebasedb/seerprep/pipeline"
)

// Constant drops every column of fr with exactly one distinct value and
// charges each drop to a ledger entry. It returns the dropped column names.
//
// A dropped column is charged to the ledger entry of the same name or, for
// columns synthesized by encoding, to the longest ledger key that is a
// prefix of its name, found by stripping one trailing character at a time.
func Constant(fr *pipeline.Frame, log logger.Logger) ([]string, error) {
	if log == nil {
		log = logger.NopLogger
	}
	var constant []string
	for _, name := range fr.Table.Names() {
		col := fr.Table.MustColumn(name)
		if isConstant(col) {
			constant = append(constant, name)
		}
	}

	for _, name := range constant {
		if _, err := fr.Table.Remove(name); err != nil {
			return nil, err
		}
		owner, err := Owner(fr.Ledger, name)
		if err != nil {
			return nil, err
		}
		if err := fr.Ledger.Decrement(owner); err != nil {
			return nil, err
		}
		log.Debugf("dropped constant column %q (ledger entry %q)", name, owner)
	}
	return constant, fr.Check()
}

func isConstant(col []int32) bool {
	if len(col) == 0 {
		return false
	}
	for _, v := range col[1:] {
		if v != col[0] {
			return false
		}
	}
	return true
}

// Owner returns the ledger key a physical column is attributed to.
func Owner(l *ledger.Ledger, column string) (string, error) {
	for c := column; c != ""; c = c[:len(c)-1] {
		if l.Has(c) {
			return c, nil
		}
	}
	return "", errors.Newf(errors.ErrOrphanColumn, "unable to remove encoding column: %q has no ledger entry", column)
}
