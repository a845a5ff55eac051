// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package sink

import (
	"context"
	"database/sql"
	"os"
	"strings"

	"github.com/featurebasedb/seerprep/errors"

	_ "modernc.org/sqlite"
)

// sqliteMaxColumns stays under SQLite's default limit of 2000 columns per
// table, leaving room for the row id, label and partition.
const sqliteMaxColumns = 1990

// WriteSQLite writes ds into a new SQLite database at path. The cases table
// holds one row per case; the encodings table holds the ledger, with each
// entry's first physical column position.
func WriteSQLite(ctx context.Context, path string, ds *Dataset) error {
	names := ds.Features.Names()
	if len(names) > sqliteMaxColumns {
		return errors.Errorf("%d feature columns exceed the SQLite limit of %d", len(names), sqliteMaxColumns)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing previous database")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer db.Close()

	columns := make([]string, 0, len(names)+3)
	defs := make([]string, 0, len(names)+3)
	columns = append(columns, quoteIdent("row"))
	defs = append(defs, quoteIdent("row")+" INTEGER PRIMARY KEY")
	for _, n := range append(names, ds.Label.Name) {
		columns = append(columns, quoteIdent(n))
		defs = append(defs, quoteIdent(n)+" INTEGER NOT NULL")
	}
	if ds.Sets != nil {
		columns = append(columns, quoteIdent(SetColumn))
		defs = append(defs, quoteIdent(SetColumn)+" TEXT NOT NULL")
	}

	schema := `
		CREATE TABLE cases (` + strings.Join(defs, ", ") + `);

		CREATE TABLE encodings (
			position INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			width INTEGER NOT NULL,
			first_column INTEGER NOT NULL
		);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "creating schema")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO cases ("+strings.Join(columns, ", ")+") VALUES ("+placeholders+")")
	if err != nil {
		return errors.Wrap(err, "preparing insert")
	}
	defer stmt.Close()

	cols := make([][]int32, len(names))
	for j, n := range names {
		cols[j] = ds.Features.MustColumn(n)
	}
	args := make([]interface{}, len(columns))
	for i := 0; i < ds.Features.NumRows(); i++ {
		args[0] = i
		for j, col := range cols {
			args[j+1] = col[i]
		}
		args[len(cols)+1] = ds.Label.Values[i]
		if ds.Sets != nil {
			args[len(cols)+2] = ds.set(i)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.Wrapf(err, "inserting row %d", i)
		}
	}

	first := 0
	for pos, e := range ds.Ledger.Entries() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO encodings (position, name, width, first_column) VALUES (?, ?, ?, ?)`,
			pos, e.Name, e.Width, first,
		); err != nil {
			return errors.Wrapf(err, "inserting encoding %q", e.Name)
		}
		first += e.Width
	}
	return errors.Wrap(tx.Commit(), "committing")
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
