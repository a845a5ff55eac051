// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"io"

	"github.com/featurebasedb/seerprep"
	"github.com/featurebasedb/seerprep/layout"
	pretty "github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
)

// LayoutCommand represents a command for checking a layout file and
// printing its fields.
type LayoutCommand struct {
	LayoutFlags

	// Standard input/output
	*seerprep.CmdIO
}

// NewLayoutCommand returns a new instance of LayoutCommand.
func NewLayoutCommand(stdin io.Reader, stdout, stderr io.Writer) *LayoutCommand {
	return &LayoutCommand{
		LayoutFlags: LayoutFlags{
			RecordLength: layout.SEERResearch.RecordLength,
			ReservedGap:  layout.SEERResearch.ReservedGap,
		},
		CmdIO: seerprep.NewCmdIO(stdin, stdout, stderr),
	}
}

// Run parses the layout and prints one row per field. Start columns are
// printed 1-based, as the layout file writes them.
func (cmd *LayoutCommand) Run(_ context.Context) error {
	l, err := cmd.parse(cmd.Logger())
	if err != nil {
		return err
	}

	t := pretty.NewWriter()
	t.SetOutputMirror(cmd.Stdout)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(pretty.Row{"#", "Start", "Width", "Name", "Description"})
	for i, f := range l.Fields() {
		t.AppendRow(pretty.Row{i + 1, f.Start + 1, f.Width, f.Name, f.Description})
	}
	t.AppendFooter(pretty.Row{"", "", l.TotalWidth(), "", ""})
	t.Render()
	return nil
}
