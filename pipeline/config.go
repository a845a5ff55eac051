// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package pipeline

import (
	"math"
	"os"
	"strconv"

	"github.com/featurebasedb/seerprep/errors"
	toml "github.com/pelletier/go-toml"
)

// document is the TOML form of a pipeline:
//
//	[[column]]
//	name = "Regional nodes positive"
//	status = "keep"
//
//	  [[column.filter]]
//	  kind = "encode_values"
//	  values = [95, 97, 98, 99]
//
//	  [[column.constraint]]
//	  operator = "ge"
//	  value = 0
type document struct {
	Columns []columnDoc `toml:"column"`
}

type columnDoc struct {
	Name        string          `toml:"name"`
	Status      string          `toml:"status,omitempty"`
	Filters     []filterDoc     `toml:"filter,omitempty"`
	Constraints []constraintDoc `toml:"constraint,omitempty"`
}

type filterDoc struct {
	Kind    string           `toml:"kind"`
	Target  string           `toml:"target,omitempty"`
	Mapping map[string]int64 `toml:"mapping,omitempty"`
	Values  []int64          `toml:"values,omitempty"`
}

type constraintDoc struct {
	Operator string `toml:"operator"`
	Value    int64  `toml:"value"`
}

// Parse reads a TOML pipeline definition and validates it.
func Parse(data []byte) ([]Entry, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding pipeline definition")
	}
	entries := make([]Entry, 0, len(doc.Columns))
	for i, c := range doc.Columns {
		if c.Name == "" {
			return nil, errors.Errorf("pipeline column %d has no name", i+1)
		}
		e, err := c.entry()
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", c.Name)
		}
		entries = append(entries, e)
	}
	if err := Validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Load reads a pipeline definition from a file.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading pipeline definition")
	}
	entries, err := Parse(data)
	return entries, errors.Wrapf(err, "loading %s", path)
}

func (c columnDoc) entry() (Entry, error) {
	e := Entry{Column: c.Name, Status: Status(c.Status)}
	if e.Status == "" {
		e.Status = StatusKeep
	}
	for _, fd := range c.Filters {
		f := Filter{Kind: FilterKind(fd.Kind), Target: fd.Target}
		if len(fd.Mapping) > 0 {
			f.Mapping = make(map[int32]int32, len(fd.Mapping))
			for from, to := range fd.Mapping {
				k, err := strconv.ParseInt(from, 10, 32)
				if err != nil {
					return e, errors.Errorf("mapping key %q is not a 32-bit integer", from)
				}
				v, err := toInt32(to)
				if err != nil {
					return e, err
				}
				f.Mapping[int32(k)] = v
			}
		}
		for _, raw := range fd.Values {
			v, err := toInt32(raw)
			if err != nil {
				return e, err
			}
			f.Values = append(f.Values, v)
		}
		e.Filters = append(e.Filters, f)
	}
	for _, cd := range c.Constraints {
		op, err := ParseOperator(cd.Operator)
		if err != nil {
			return e, err
		}
		v, err := toInt32(cd.Value)
		if err != nil {
			return e, err
		}
		e.Constraints = append(e.Constraints, Constraint{Operator: op, Value: v})
	}
	return e, nil
}

func toInt32(v int64) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, errors.Errorf("value %d does not fit in 32 bits", v)
	}
	return int32(v), nil
}

// Marshal renders entries in the form Parse reads.
func Marshal(entries []Entry) ([]byte, error) {
	doc := document{Columns: make([]columnDoc, 0, len(entries))}
	for _, e := range entries {
		c := columnDoc{Name: e.Column, Status: string(e.Status)}
		for _, f := range e.Filters {
			fd := filterDoc{Kind: string(f.Kind), Target: f.Target}
			if len(f.Mapping) > 0 {
				fd.Mapping = make(map[string]int64, len(f.Mapping))
				for k, v := range f.Mapping {
					fd.Mapping[strconv.FormatInt(int64(k), 10)] = int64(v)
				}
			}
			for _, v := range f.Values {
				fd.Values = append(fd.Values, int64(v))
			}
			c.Filters = append(c.Filters, fd)
		}
		for _, ct := range e.Constraints {
			c.Constraints = append(c.Constraints, constraintDoc{Operator: string(ct.Operator), Value: int64(ct.Value)})
		}
		doc.Columns = append(doc.Columns, c)
	}
	buf, err := toml.Marshal(doc)
	return buf, errors.Wrap(err, "encoding pipeline definition")
}
