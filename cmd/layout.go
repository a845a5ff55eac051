// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"io"

	"github.com/featurebasedb/seerprep/ctl"
	"github.com/spf13/cobra"
)

var LayoutChecker *ctl.LayoutCommand

func newLayoutCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	LayoutChecker = ctl.NewLayoutCommand(stdin, stdout, stderr)
	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "Check a SAS field layout and print its fields.",
		Long: `
Parses the field layout the same way prepare does, checks the declared
widths against the record length, and prints one row per field.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return LayoutChecker.Run(context.Background())
		},
	}
	flags := layoutCmd.Flags()
	lf := &LayoutChecker.LayoutFlags

	flags.StringVarP(&lf.Specifications, "specifications", "s", "", "SAS file with the field layout.")
	flags.IntVarP(&lf.RecordLength, "record-length", "", lf.RecordLength, "Documented length of a record.")
	flags.IntVarP(&lf.ReservedGap, "reserved-gap", "", lf.ReservedGap, "Characters of reserved fields the layout does not declare.")

	return layoutCmd
}
