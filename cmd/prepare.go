// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/featurebasedb/seerprep/ctl"
	"github.com/featurebasedb/seerprep/pipeline"
	"github.com/featurebasedb/seerprep/target"
	"github.com/spf13/cobra"
)

var Preparer *ctl.PrepareCommand

func newPrepareCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	Preparer = ctl.NewPrepareCommand(stdin, stdout, stderr)
	prepareCmd := &cobra.Command{
		Use:   "prepare",
		Short: "Prepare a data set from SEER incidence files.",
		Long: `
Decodes an incidence file, drops the cases of an optional SEER*Stat case
list, applies a column pipeline, derives the label of the chosen task and
drops constant inputs.

Every run writes into a new directory under --output named after the
start time, e.g. 2026-3-7_14-5-9_experiment-0. It holds the data set in
each requested format, the encoding ledger, column summaries, the
arguments and pipeline that produced it, a manifest and metrics. The
run directory is printed on success.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Preparer.Run(context.Background())
		},
	}
	flags := prepareCmd.Flags()
	conf := Preparer.Config

	flags.StringVarP(&conf.Incidences, "incidences", "i", conf.Incidences, "SEER incidences TXT file (e.g. RESPIR.TXT).")
	flags.StringVarP(&conf.Specifications, "specifications", "s", conf.Specifications, "SAS file with the field layout of the incidences.")
	flags.StringVarP(&conf.Cases, "cases", "", conf.Cases, "SEER*Stat case list (CSV) naming cases to drop.")
	flags.StringVarP(&conf.Task, "task", "t", conf.Task, fmt.Sprintf("Label to derive: one of %s.", strings.Join(target.Names(), ", ")))
	flags.BoolVarP(&conf.OneHotEncoding, "one-hot-encoding", "", conf.OneHotEncoding, "One-hot encode categorical columns and flagged values.")
	flags.StringVarP(&conf.Pipeline, "pipeline", "p", conf.Pipeline, fmt.Sprintf("Pipeline definition file, or %q for the built-in pipeline.", pipeline.SEERName))
	flags.StringVarP(&conf.Output, "output", "o", conf.Output, "Directory under which run directories are created.")
	flags.StringSliceVarP(&conf.Formats, "formats", "f", conf.Formats, "Output formats (csv, parquet, sqlite).")
	flags.IntVarP(&conf.Concurrency, "concurrency", "", conf.Concurrency, "Number of shards decoded and filtered in parallel.")
	flags.IntVarP(&conf.RecordLength, "record-length", "", conf.RecordLength, "Documented length of an incidence record.")
	flags.IntVarP(&conf.ReservedGap, "reserved-gap", "", conf.ReservedGap, "Characters of reserved fields the layout does not declare.")
	flags.IntVarP(&conf.StartYear, "start-year", "", conf.StartYear, "Drop cases diagnosed before this year (0 keeps all).")
	flags.Float64VarP(&conf.ValidRatio, "valid-ratio", "", conf.ValidRatio, "Share of cases assigned to the validation set.")
	flags.Float64VarP(&conf.TestRatio, "test-ratio", "", conf.TestRatio, "Share of cases assigned to the test set.")
	flags.BoolVarP(&conf.Heatmaps, "heatmaps", "", conf.Heatmaps, "Plot column histogram heatmaps of the raw and final data.")
	flags.BoolVarP(&conf.Verbose, "verbose", "v", conf.Verbose, "Enable verbose logging.")

	return prepareCmd
}
