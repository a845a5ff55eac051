// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/featurebasedb/seerprep"
	"github.com/featurebasedb/seerprep/describe"
	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/layout"
	pretty "github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
)

// DescribeCommand represents a command for summarizing the raw columns of an
// incidence file.
type DescribeCommand struct {
	LayoutFlags

	Incidences  string
	Concurrency int

	// Heatmap, when set, is the path of a histogram heatmap to write.
	Heatmap string
	// JSON prints the summaries as JSON instead of a table.
	JSON bool

	// Standard input/output
	*seerprep.CmdIO
}

// NewDescribeCommand returns a new instance of DescribeCommand.
func NewDescribeCommand(stdin io.Reader, stdout, stderr io.Writer) *DescribeCommand {
	return &DescribeCommand{
		LayoutFlags: LayoutFlags{
			RecordLength: layout.SEERResearch.RecordLength,
			ReservedGap:  layout.SEERResearch.ReservedGap,
		},
		Concurrency: runtime.NumCPU(),
		CmdIO:       seerprep.NewCmdIO(stdin, stdout, stderr),
	}
}

// Run decodes the incidence file and prints per-column summaries.
func (cmd *DescribeCommand) Run(ctx context.Context) error {
	if cmd.Incidences == "" {
		return fmt.Errorf("%w: --incidences is required", UsageError)
	}
	log := cmd.Logger()
	l, err := cmd.parse(log)
	if err != nil {
		return err
	}
	t, err := decodeFile(ctx, l, cmd.Incidences, cmd.Concurrency, log)
	if err != nil {
		return err
	}
	describe.State(log, "Raw data", t)
	summaries := describe.Table(t)

	if cmd.Heatmap != "" {
		if err := describe.SaveHeatmap(cmd.Heatmap, "Raw data", summaries); err != nil {
			return err
		}
	}

	if cmd.JSON {
		enc := json.NewEncoder(cmd.Stdout)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(summaries), "encoding summaries")
	}

	tw := pretty.NewWriter()
	tw.SetOutputMirror(cmd.Stdout)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(pretty.Row{"Column", "Min", "Max", "Mean", "Std", "Distinct", "Empty"})
	for _, s := range summaries {
		tw.AppendRow(pretty.Row{
			s.Column,
			fmt.Sprintf("%.1f", s.Min),
			fmt.Sprintf("%.1f", s.Max),
			fmt.Sprintf("%.2f", s.Mean),
			fmt.Sprintf("%.2f", s.Std),
			s.Distinct,
			s.Empty,
		})
	}
	tw.AppendFooter(pretty.Row{fmt.Sprintf("%d cases", t.NumRows()), "", "", "", "", "", ""})
	tw.Render()
	return nil
}
