// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"fmt"
	"io"

	"github.com/featurebasedb/seerprep"
)

// PrepareCommand represents a command for turning registry incidence files
// into a model-ready data set.
type PrepareCommand struct {
	Config *seerprep.Config

	// Manifest is set once Run succeeds.
	Manifest *seerprep.Manifest
	// Dir is the run directory, set even when Run fails after creating it.
	Dir string

	// Standard input/output
	*seerprep.CmdIO
}

// NewPrepareCommand returns a new instance of PrepareCommand with the
// default config.
func NewPrepareCommand(stdin io.Reader, stdout, stderr io.Writer) *PrepareCommand {
	return &PrepareCommand{
		Config: seerprep.NewConfig(),
		CmdIO:  seerprep.NewCmdIO(stdin, stdout, stderr),
	}
}

// Run executes the preparation.
func (cmd *PrepareCommand) Run(ctx context.Context) error {
	cmd.SetVerbose(cmd.Config.Verbose)
	if cmd.Config.Incidences == "" || cmd.Config.Specifications == "" {
		return fmt.Errorf("%w: --incidences and --specifications are required", UsageError)
	}

	p := seerprep.NewPreparer(cmd.Config, cmd.Logger())
	m, err := p.Run(ctx)
	cmd.Dir = p.Dir
	if err != nil {
		return err
	}
	cmd.Manifest = m
	fmt.Fprintf(cmd.Stdout, "%s\n", cmd.Dir)
	return nil
}
