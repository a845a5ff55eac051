// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"io"

	"github.com/featurebasedb/seerprep/ctl"
	"github.com/spf13/cobra"
)

var Describer *ctl.DescribeCommand

func newDescribeCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	Describer = ctl.NewDescribeCommand(stdin, stdout, stderr)
	describeCmd := &cobra.Command{
		Use:   "describe",
		Short: "Summarize the raw columns of an incidence file.",
		Long: `
Decodes an incidence file and prints, per column, the minimum, maximum,
mean, standard deviation, number of distinct values and number of empty
values.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Describer.Run(context.Background())
		},
	}
	flags := describeCmd.Flags()

	flags.StringVarP(&Describer.Specifications, "specifications", "s", "", "SAS file with the field layout.")
	flags.IntVarP(&Describer.RecordLength, "record-length", "", Describer.RecordLength, "Documented length of a record.")
	flags.IntVarP(&Describer.ReservedGap, "reserved-gap", "", Describer.ReservedGap, "Characters of reserved fields the layout does not declare.")
	flags.StringVarP(&Describer.Incidences, "incidences", "i", "", "SEER incidences TXT file.")
	flags.IntVarP(&Describer.Concurrency, "concurrency", "", Describer.Concurrency, "Number of shards decoded in parallel.")
	flags.StringVarP(&Describer.Heatmap, "heatmap", "", "", "Write a histogram heatmap (PNG, SVG or PDF) to this path.")
	flags.BoolVarP(&Describer.JSON, "json", "", false, "Print the summaries as JSON.")

	return describeCmd
}
