// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package split helps consumers of a prepared data set: it groups physical
// columns by their ledger entry and partitions rows reproducibly.
package split

import (
	"math"
	"math/rand"

	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/ledger"
)

// Group is the run of physical columns one ledger entry occupies.
type Group struct {
	Entry   string
	Columns []string
}

// ByLedger cuts the ordered column names into consecutive groups using the
// ledger widths as cumulative split points.
func ByLedger(columns []string, l *ledger.Ledger) ([]Group, error) {
	if err := l.Check(len(columns)); err != nil {
		return nil, err
	}
	entries := l.Entries()
	groups := make([]Group, len(entries))
	at := 0
	for i, e := range entries {
		groups[i] = Group{Entry: e.Name, Columns: columns[at : at+e.Width]}
		at += e.Width
	}
	return groups, nil
}

// Seeds of the two shuffles. Fixed so that every experiment on the same
// data sees the same partition.
const (
	HoldoutSeed = 73
	TestSeed    = 63
)

// Set names a partition.
type Set string

const (
	Train Set = "train"
	Valid Set = "valid"
	Test  Set = "test"
)

// Ratios are the fractions of rows held out for validation and test.
type Ratios struct {
	Valid float64 `toml:"valid"`
	Test  float64 `toml:"test"`
}

// DefaultRatios holds out a tenth of the rows for each of validation and
// test.
var DefaultRatios = Ratios{Valid: 0.1, Test: 0.1}

// Partition assigns every row to one set.
type Partition struct {
	Train []int
	Valid []int
	Test  []int
}

// Assignments returns the set of every row, indexed by row.
func (p Partition) Assignments() []Set {
	out := make([]Set, len(p.Train)+len(p.Valid)+len(p.Test))
	for _, run := range []struct {
		set  Set
		rows []int
	}{{Train, p.Train}, {Valid, p.Valid}, {Test, p.Test}} {
		for _, i := range run.rows {
			out[i] = run.set
		}
	}
	return out
}

// Split shuffles rows with HoldoutSeed and holds out the Valid+Test share
// (rounded up), then shuffles the holdout with TestSeed and gives Test its
// share of it (rounded up). The remainder of each step is kept in shuffled
// order.
func Split(rows int, r Ratios) (Partition, error) {
	held := r.Valid + r.Test
	if r.Valid < 0 || r.Test < 0 || held >= 1 {
		return Partition{}, errors.Errorf("invalid split ratios valid=%g test=%g", r.Valid, r.Test)
	}
	order := rand.New(rand.NewSource(HoldoutSeed)).Perm(rows)
	nHeld := int(math.Ceil(held * float64(rows)))
	p := Partition{Train: order[nHeld:]}
	if nHeld == 0 {
		return p, nil
	}

	holdout := order[:nHeld]
	rand.New(rand.NewSource(TestSeed)).Shuffle(len(holdout), func(i, j int) {
		holdout[i], holdout[j] = holdout[j], holdout[i]
	})
	nTest := int(math.Ceil(r.Test / held * float64(nHeld)))
	if nTest > nHeld {
		nTest = nHeld
	}
	p.Test, p.Valid = holdout[:nTest], holdout[nTest:]
	return p, nil
}
