// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package ledger records how many physical table columns each logical input
// occupies. Consumers that split features per input walk the ledger in order
// and take Width columns for each entry.
package ledger

import (
	"encoding/json"

	"github.com/featurebasedb/seerprep/errors"
)

// Entry is one logical input.
type Entry struct {
	Name  string `json:"name"`
	Width int    `json:"width"`
}

// Ledger is an ordered mapping from logical column name to physical width.
// It is passed by pointer through every pipeline phase and is never shared
// between runs.
type Ledger struct {
	order []string
	width map[string]int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{width: make(map[string]int)}
}

// FromNames returns a ledger giving each name width 1, in order.
func FromNames(names []string) *Ledger {
	l := New()
	for _, n := range names {
		l.Set(n, 1)
	}
	return l
}

// Len returns the number of entries.
func (l *Ledger) Len() int { return len(l.order) }

// Has reports whether name has an entry.
func (l *Ledger) Has(name string) bool {
	_, ok := l.width[name]
	return ok
}

// Width returns the width recorded for name and whether it exists.
func (l *Ledger) Width(name string) (int, bool) {
	w, ok := l.width[name]
	return w, ok
}

// Set records width for name. An existing entry keeps its position; a new
// one is appended.
func (l *Ledger) Set(name string, width int) {
	if _, ok := l.width[name]; !ok {
		l.order = append(l.order, name)
	}
	l.width[name] = width
}

// Move removes name (if present) and appends it again with width, so that
// its position follows columns appended to the table at the same time.
func (l *Ledger) Move(name string, width int) {
	l.Remove(name)
	l.Set(name, width)
}

// Remove deletes the entry for name, reporting whether it existed.
func (l *Ledger) Remove(name string) bool {
	if _, ok := l.width[name]; !ok {
		return false
	}
	delete(l.width, name)
	for i, n := range l.order {
		if n == name {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// MustRemove is Remove that fails with ErrColumnNotFound when name has no
// entry.
func (l *Ledger) MustRemove(name string) error {
	if !l.Remove(name) {
		return errors.Newf(errors.ErrColumnNotFound, "no ledger entry for %q", name)
	}
	return nil
}

// Decrement lowers the width of name by one, removing the entry when it
// would reach zero.
func (l *Ledger) Decrement(name string) error {
	w, ok := l.width[name]
	if !ok {
		return errors.Newf(errors.ErrColumnNotFound, "no ledger entry for %q", name)
	}
	if w > 1 {
		l.width[name] = w - 1
		return nil
	}
	l.Remove(name)
	return nil
}

// Sum returns the total width.
func (l *Ledger) Sum() int {
	n := 0
	for _, w := range l.width {
		n += w
	}
	return n
}

// Entries returns the entries in order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.order))
	for i, n := range l.order {
		out[i] = Entry{Name: n, Width: l.width[n]}
	}
	return out
}

// Check returns ErrEncodingMismatch unless the widths add up to columns.
func (l *Ledger) Check(columns int) error {
	if sum := l.Sum(); sum != columns {
		return errors.Newf(errors.ErrEncodingMismatch,
			"bad encodings: %d table columns vs. %d in the encoding ledger", columns, sum)
	}
	return nil
}

// Clone returns a deep copy.
func (l *Ledger) Clone() *Ledger {
	c := New()
	for _, n := range l.order {
		c.Set(n, l.width[n])
	}
	return c
}

// MarshalJSON writes the ledger as an ordered array of entries.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Entries())
}

// UnmarshalJSON reads a ledger written by MarshalJSON.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return errors.Wrap(err, "decoding ledger")
	}
	*l = *New()
	for _, e := range entries {
		if e.Width < 1 {
			return errors.Errorf("ledger entry %q has width %d", e.Name, e.Width)
		}
		if l.Has(e.Name) {
			return errors.Newf(errors.ErrDuplicateColumn, "ledger entry %q repeated", e.Name)
		}
		l.Set(e.Name, e.Width)
	}
	return nil
}
