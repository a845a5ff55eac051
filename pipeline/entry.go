// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package pipeline

import (
	"github.com/featurebasedb/seerprep/errors"
)

// Status says what happens to an entry's column once filters and
// constraints have run.
type Status string

const (
	StatusKeep        Status = "keep"
	StatusCategorical Status = "categorical"
	StatusRemove      Status = "remove"
)

func (s Status) valid() bool {
	switch s {
	case StatusKeep, StatusCategorical, StatusRemove:
		return true
	}
	return false
}

// Operator is a row predicate comparing a column value with a constant.
type Operator string

const (
	OpEqual        Operator = "eq"
	OpNotEqual     Operator = "ne"
	OpLess         Operator = "lt"
	OpLessEqual    Operator = "le"
	OpGreater      Operator = "gt"
	OpGreaterEqual Operator = "ge"
)

var operatorAliases = map[string]Operator{
	"eq": OpEqual, "==": OpEqual,
	"ne": OpNotEqual, "!=": OpNotEqual,
	"lt": OpLess, "<": OpLess,
	"le": OpLessEqual, "<=": OpLessEqual,
	"gt": OpGreater, ">": OpGreater,
	"ge": OpGreaterEqual, ">=": OpGreaterEqual,
}

// ParseOperator accepts both the short names and the symbolic forms.
func ParseOperator(s string) (Operator, error) {
	op, ok := operatorAliases[s]
	if !ok {
		return "", errors.Newf(errors.ErrUnknownOperator, "unknown operator %q", s)
	}
	return op, nil
}

// Eval reports whether v op value holds.
func (op Operator) Eval(v, value int32) bool {
	switch op {
	case OpEqual:
		return v == value
	case OpNotEqual:
		return v != value
	case OpLess:
		return v < value
	case OpLessEqual:
		return v <= value
	case OpGreater:
		return v > value
	case OpGreaterEqual:
		return v >= value
	}
	panic("pipeline: unchecked operator " + string(op))
}

// Constraint keeps only rows whose column value satisfies Operator Value.
type Constraint struct {
	Operator Operator
	Value    int32
}

// Entry is the declarative treatment of one column.
type Entry struct {
	Column      string
	Filters     []Filter
	Constraints []Constraint
	Status      Status
}

// Validate checks that every filter, operator and status is known, and
// that no column is described twice.
func Validate(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Column]; ok {
			return errors.Newf(errors.ErrAlignment, "column %q has more than one pipeline entry", e.Column)
		}
		seen[e.Column] = struct{}{}
		if !e.Status.valid() {
			return errors.Errorf("column %q has unknown status %q", e.Column, e.Status)
		}
		for _, f := range e.Filters {
			if err := f.validate(); err != nil {
				return errors.Wrapf(err, "column %q", e.Column)
			}
		}
		for _, c := range e.Constraints {
			if _, err := ParseOperator(string(c.Operator)); err != nil {
				return errors.Wrapf(err, "column %q", e.Column)
			}
		}
	}
	return nil
}
