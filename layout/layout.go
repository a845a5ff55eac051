// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package layout parses the SAS-style field layout that describes where each
// field of a fixed-width registry record lives.
//
// A field line looks like
//
//	@ 1 PUBCSNUM $char8. /* Patient ID */
//
// i.e. the field marker, the 1-based start column, a variable name, a format
// token carrying the width, and a description. Lines that do not have this
// shape are ignored.
package layout

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/logger"
)

const (
	// FieldMarker is the first token of every field line.
	FieldMarker = "@"
	// MaxFieldWidth is the widest field the decoder's integer model supports.
	MaxFieldWidth = 18

	commentCloser = "*/"
	minTokens     = 7
)

// Field describes one fixed-width field.
type Field struct {
	// Start is the 0-based character offset of the field.
	Start int
	// Width is the number of characters, 1..MaxFieldWidth.
	Width int
	// Decimals is the declared number of decimals; informational only.
	Decimals    int
	Name        string
	Description string
}

// End returns the offset one past the field's last character.
func (f Field) End() int { return f.Start + f.Width }

// Schema carries the record-level constants the layout is checked against.
type Schema struct {
	// RecordLength is the documented length of a record.
	RecordLength int
	// ReservedGap is the number of characters in documented reserved
	// fields, which the layout does not declare.
	ReservedGap int
}

// SEERResearch is the November 2016 SEER research data record: 362
// characters, of which the reserved fields take 1+3+2+1+3+2+13+5+6+1+2+4+5+5.
var SEERResearch = Schema{
	RecordLength: 362,
	ReservedGap:  1 + 3 + 2 + 1 + 3 + 2 + 13 + 5 + 6 + 1 + 2 + 4 + 5 + 5,
}

// DeclaredWidth is the total width the layout must declare.
func (s Schema) DeclaredWidth() int { return s.RecordLength - s.ReservedGap }

// formatToken matches "$char8.", "8.", "3.0" and similar; group 1 is the
// width and group 2 the decimals.
var formatToken = regexp.MustCompile(`^\$?[A-Za-z]*([0-9]+)\.([0-9]*)$`)

// Layout is the ordered, immutable list of fields parsed from a layout file.
type Layout struct {
	fields []Field
}

// Fields returns a copy of the fields in declaration order.
func (l *Layout) Fields() []Field {
	out := make([]Field, len(l.fields))
	copy(out, l.fields)
	return out
}

// Len returns the number of fields.
func (l *Layout) Len() int { return len(l.fields) }

// TotalWidth returns the sum of all declared widths.
func (l *Layout) TotalWidth() int {
	n := 0
	for _, f := range l.fields {
		n += f.Width
	}
	return n
}

// Parse reads a layout from r and checks it against schema.
func Parse(r io.Reader, schema Schema, log logger.Logger) (*Layout, error) {
	if log == nil {
		log = logger.NopLogger
	}
	l := &Layout{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		field, ok, err := parseLine(scanner.Text())
		if err != nil {
			log.Warnf("ignoring layout line %d: %v", lineNo, err)
			continue
		}
		if !ok {
			continue
		}
		if field.Width > MaxFieldWidth {
			return nil, errors.Newf(errors.ErrSpecFormat,
				"field %q on line %d is %d characters wide, at most %d supported", field.Description, lineNo, field.Width, MaxFieldWidth)
		}
		l.fields = append(l.fields, field)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading layout")
	}

	if got, want := l.TotalWidth(), schema.DeclaredWidth(); got != want {
		return nil, errors.Newf(errors.ErrSpecFormat,
			"declared widths sum to %d, plus reserved gap %d is %d, want record length %d",
			got, schema.ReservedGap, got+schema.ReservedGap, schema.RecordLength)
	}
	log.Debugf("parsed %d layout fields covering %d characters", len(l.fields), l.TotalWidth())
	return l, nil
}

// parseLine returns ok=false for lines that do not describe a field. Lines
// that look like fields but carry a bad start or width return an error,
// which Parse reports as a warning before skipping the line.
func parseLine(line string) (Field, bool, error) {
	tokens := strings.Fields(line)
	if len(tokens) < minTokens || tokens[0] != FieldMarker {
		return Field{}, false, nil
	}

	start, err := strconv.Atoi(tokens[1])
	if err != nil || start < 1 {
		return Field{}, false, errors.Newf(errors.ErrSpecFormat, "bad start offset %q", tokens[1])
	}

	var match []string
	name := ""
	for i := 2; i <= 3; i++ {
		if match = formatToken.FindStringSubmatch(tokens[i]); match != nil {
			if i == 3 {
				name = tokens[2]
			}
			break
		}
	}
	if match == nil {
		return Field{}, false, errors.Newf(errors.ErrSpecFormat, "no width token in %q", line)
	}
	width, err := strconv.Atoi(match[1])
	if err != nil || width < 1 {
		return Field{}, false, errors.Newf(errors.ErrSpecFormat, "bad width token %q", match[0])
	}
	decimals := 0
	if match[2] != "" {
		decimals, _ = strconv.Atoi(match[2])
	}

	description := strings.Join(tokens[5:], " ")
	if i := strings.Index(description, commentCloser); i >= 0 {
		description = description[:i]
	}
	description = strings.TrimSpace(description)

	return Field{
		Start:       start - 1,
		Width:       width,
		Decimals:    decimals,
		Name:        name,
		Description: description,
	}, true, nil
}
