// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package seerprep

import (
	"runtime"

	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/layout"
	"github.com/featurebasedb/seerprep/pipeline"
	"github.com/featurebasedb/seerprep/sink"
	"github.com/featurebasedb/seerprep/split"
	"github.com/featurebasedb/seerprep/target"
)

// Config holds the options of a prepare run. The toml tags double as the
// command line flag names.
type Config struct {
	// Incidences is the fixed-width incidence file.
	Incidences string `toml:"incidences"`
	// Specifications is the SAS field layout of the incidence file.
	Specifications string `toml:"specifications"`
	// Cases is an optional SEER*Stat case list naming cases to drop.
	Cases string `toml:"cases"`

	Task           string `toml:"task"`
	OneHotEncoding bool   `toml:"one-hot-encoding"`
	// Pipeline is a pipeline definition file, or "seer" for the built-in one.
	Pipeline string `toml:"pipeline"`

	Output  string   `toml:"output"`
	Formats []string `toml:"formats"`

	Concurrency  int `toml:"concurrency"`
	RecordLength int `toml:"record-length"`
	ReservedGap  int `toml:"reserved-gap"`
	// StartYear drops cases diagnosed before it. Zero keeps every year.
	StartYear int `toml:"start-year"`

	ValidRatio float64 `toml:"valid-ratio"`
	TestRatio  float64 `toml:"test-ratio"`

	Heatmaps bool `toml:"heatmaps"`
	Verbose  bool `toml:"verbose"`
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	formats := make([]string, len(sink.Formats))
	for i, f := range sink.Formats {
		formats[i] = string(f)
	}
	return &Config{
		Task:         "survival60",
		Pipeline:     pipeline.SEERName,
		Output:       "output",
		Formats:      formats,
		Concurrency:  runtime.NumCPU(),
		RecordLength: layout.SEERResearch.RecordLength,
		ReservedGap:  layout.SEERResearch.ReservedGap,
		ValidRatio:   split.DefaultRatios.Valid,
		TestRatio:    split.DefaultRatios.Test,
	}
}

// Validate checks the options that can be checked without touching the
// file system.
func (c *Config) Validate() error {
	switch {
	case c.Incidences == "":
		return errors.Errorf("incidences file is required")
	case c.Specifications == "":
		return errors.Errorf("specifications file is required")
	case c.Output == "":
		return errors.Errorf("output directory is required")
	case c.Concurrency < 0:
		return errors.Errorf("concurrency must not be negative: %d", c.Concurrency)
	case c.RecordLength <= 0 || c.ReservedGap < 0 || c.ReservedGap >= c.RecordLength:
		return errors.Errorf("invalid record length %d with reserved gap %d", c.RecordLength, c.ReservedGap)
	case c.StartYear < 0:
		return errors.Errorf("start year must not be negative: %d", c.StartYear)
	}
	if _, err := target.ParseTask(c.Task); err != nil {
		return err
	}
	if _, err := sink.ParseFormats(c.Formats); err != nil {
		return err
	}
	if _, err := split.Split(0, c.Ratios()); err != nil {
		return err
	}
	return nil
}

// Schema returns the record schema the layout is checked against.
func (c *Config) Schema() layout.Schema {
	return layout.Schema{RecordLength: c.RecordLength, ReservedGap: c.ReservedGap}
}

// Ratios returns the partition ratios.
func (c *Config) Ratios() split.Ratios {
	return split.Ratios{Valid: c.ValidRatio, Test: c.TestRatio}
}
