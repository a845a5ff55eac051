// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package seerprep

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/featurebasedb/seerprep/cases"
	"github.com/featurebasedb/seerprep/decode"
	"github.com/featurebasedb/seerprep/describe"
	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/hash"
	"github.com/featurebasedb/seerprep/layout"
	"github.com/featurebasedb/seerprep/logger"
	"github.com/featurebasedb/seerprep/pipeline"
	"github.com/featurebasedb/seerprep/prune"
	"github.com/featurebasedb/seerprep/sink"
	"github.com/featurebasedb/seerprep/split"
	"github.com/featurebasedb/seerprep/table"
	"github.com/featurebasedb/seerprep/target"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml"
	"github.com/prometheus/client_golang/prometheus"
)

// YearOfDiagnosisColumn is the column the start-year filter reads.
const YearOfDiagnosisColumn = "Year of diagnosis"

// Files written into every run directory besides the data set itself.
const (
	ArgumentsFile    = "arguments.toml"
	PipelineFile     = "pipeline.toml"
	LedgerFile       = "ledger.json"
	SummaryFile      = "summary.json"
	ManifestFile     = "manifest.json"
	MetricsFile      = "metrics.prom"
	FailureFile      = "failure.json"
	RawHeatmapFile   = "data_raw.png"
	FinalHeatmapFile = "data_final.png"
)

// Manifest describes a finished run.
type Manifest struct {
	RunID   string `json:"run_id"`
	Version string `json:"version"`
	Task    string `json:"task"`
	Label   string `json:"label"`

	Rows      int `json:"rows"`
	Columns   int `json:"columns"`
	Encodings int `json:"encodings"`

	// Fingerprint identifies the features and labels in row order.
	Fingerprint string `json:"fingerprint"`
	// PipelineDigest identifies the pipeline definition that was applied.
	PipelineDigest string `json:"pipeline_digest"`

	RowsDropped map[string]int    `json:"rows_dropped"`
	Pipeline    pipeline.Report   `json:"pipeline"`
	Pruned      []string          `json:"pruned"`
	Partition   map[split.Set]int `json:"partition"`
	Files       []string          `json:"files"`

	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

// Preparer runs the whole preparation flow: decode, case filter, start-year
// filter, pipeline, target derivation, pruning, partitioning and output.
type Preparer struct {
	Config *Config
	Logger logger.Logger

	// Now is the clock used to name the run directory.
	Now func() time.Time

	// Dir is the run directory, set once it has been created.
	Dir string
}

// NewPreparer returns a Preparer for c.
func NewPreparer(c *Config, log logger.Logger) *Preparer {
	if log == nil {
		log = logger.NopLogger
	}
	return &Preparer{Config: c, Logger: log, Now: time.Now}
}

// Run prepares the data set. When the run directory exists by the time an
// error occurs, the error is also recorded in it as FailureFile.
func (p *Preparer) Run(ctx context.Context) (*Manifest, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}
	m, err := p.run(ctx)
	if err != nil && p.Dir != "" {
		failure := filepath.Join(p.Dir, FailureFile)
		if werr := os.WriteFile(failure, []byte(errors.MarshalJSON(err)+"\n"), 0644); werr != nil {
			p.Logger.Errorf("writing %s: %v", failure, werr)
		}
	}
	return m, err
}

func (p *Preparer) run(ctx context.Context) (*Manifest, error) {
	c := p.Config
	log := p.Logger
	task, err := target.ParseTask(c.Task)
	if err != nil {
		return nil, err
	}
	formats, err := sink.ParseFormats(c.Formats)
	if err != nil {
		return nil, err
	}
	entries, err := pipeline.Lookup(c.Pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "loading pipeline")
	}
	pl, err := pipeline.New(entries, log.WithPrefix("pipeline: "))
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		RunID:       uuid.NewString(),
		Version:     VersionInfo(),
		Task:        task.Name,
		RowsDropped: make(map[string]int),
		Started:     p.Now(),
	}
	if p.Dir, err = CreateRunDir(c.Output, m.Started); err != nil {
		return nil, err
	}
	log.Infof("run %s writing to %s", m.RunID, p.Dir)
	if err := p.writeArguments(entries); err != nil {
		return nil, err
	}

	t, err := p.decode(ctx)
	if err != nil {
		return nil, err
	}
	describe.State(log, "Raw data", t)
	if c.Heatmaps {
		if err := describe.SaveHeatmap(filepath.Join(p.Dir, RawHeatmapFile), "Raw data", describe.Table(t)); err != nil {
			return nil, err
		}
	}

	if c.Cases != "" {
		dropped, err := p.filterCases(ctx, t)
		if err != nil {
			return nil, err
		}
		p.dropped(m, StageCases, dropped)
		describe.State(log, "Filtered SEER*Stat cases from ASCII", t)
	}
	if c.StartYear > 0 {
		dropped, err := FilterStartYear(t, c.StartYear)
		if err != nil {
			return nil, err
		}
		p.dropped(m, StageStartYear, dropped)
		describe.State(log, fmt.Sprintf("Cases diagnosed in or after %d", c.StartYear), t)
	}

	done := stage(StagePipeline)
	fr := pipeline.NewFrame(t, c.OneHotEncoding)
	if m.Pipeline, err = pl.Apply(fr); err != nil {
		return nil, errors.Wrap(err, "applying pipeline")
	}
	done()
	p.dropped(m, StagePipeline, m.Pipeline.RowsConstrained)
	describe.State(log, "Remove irrelevant, combined, post-diagnosis, and treatment attributes", fr.Table)

	done = stage(StageTarget)
	label, dropped, err := target.NewDeriver(task, log).Derive(fr)
	if err != nil {
		return nil, err
	}
	done()
	p.dropped(m, StageTarget, dropped)
	describe.State(log, "Create target label indicating cancer survival for "+task.Name, fr.Table)

	done = stage(StagePrune)
	if m.Pruned, err = prune.Constant(fr, log); err != nil {
		return nil, err
	}
	done()
	CounterColumnsPruned.Add(float64(len(m.Pruned)))
	describe.State(log, "Remove inputs with constant values", fr.Table)

	part, err := split.Split(fr.Table.NumRows(), c.Ratios())
	if err != nil {
		return nil, err
	}
	m.Partition = map[split.Set]int{
		split.Train: len(part.Train),
		split.Valid: len(part.Valid),
		split.Test:  len(part.Test),
	}

	ds := &sink.Dataset{
		Features: fr.Table,
		Ledger:   fr.Ledger,
		Label:    label,
		Sets:     part.Assignments(),
	}
	m.Label = label.Name
	m.Rows, m.Columns, m.Encodings = fr.Table.NumRows(), fr.Table.NumColumns(), fr.Ledger.Len()
	m.Fingerprint = Fingerprint(ds)
	GaugeFeatureColumns.Set(float64(m.Columns))

	if err := p.write(ctx, m, ds, formats); err != nil {
		return nil, err
	}
	log.Infof("prepared %d cases with %d attributes (%d encodings) for %s", m.Rows, m.Columns, m.Encodings, task)
	return m, nil
}

func (p *Preparer) writeArguments(entries []pipeline.Entry) error {
	args, err := toml.Marshal(*p.Config)
	if err != nil {
		return errors.Wrap(err, "encoding arguments")
	}
	if err := os.WriteFile(filepath.Join(p.Dir, ArgumentsFile), args, 0644); err != nil {
		return errors.Wrap(err, "writing arguments")
	}
	def, err := pipeline.Marshal(entries)
	if err != nil {
		return err
	}
	return errors.Wrap(os.WriteFile(filepath.Join(p.Dir, PipelineFile), def, 0644), "writing pipeline")
}

func (p *Preparer) decode(ctx context.Context) (*table.Table, error) {
	defer stage(StageDecode)()
	spec, err := os.Open(p.Config.Specifications)
	if err != nil {
		return nil, errors.Wrap(err, "opening specifications")
	}
	defer spec.Close()
	l, err := layout.Parse(spec, p.Config.Schema(), p.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", p.Config.Specifications)
	}

	inc, err := os.Open(p.Config.Incidences)
	if err != nil {
		return nil, errors.Wrap(err, "opening incidences")
	}
	defer inc.Close()
	d := decode.NewDecoder(l, p.Logger)
	d.Concurrency = p.Config.Concurrency
	t, err := d.Decode(ctx, inc)
	CounterRecordsDecoded.Add(float64(d.Progress()))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", p.Config.Incidences)
	}
	return t, nil
}

func (p *Preparer) filterCases(ctx context.Context, t *table.Table) (int, error) {
	defer stage(StageCases)()
	f, err := os.Open(p.Config.Cases)
	if err != nil {
		return 0, errors.Wrap(err, "opening case list")
	}
	defer f.Close()
	set, err := cases.ReadList(f, p.Logger)
	if err != nil {
		return 0, errors.Wrapf(err, "reading %s", p.Config.Cases)
	}
	return cases.Filter(ctx, t, set, p.Config.Concurrency)
}

func (p *Preparer) write(ctx context.Context, m *Manifest, ds *sink.Dataset, formats []sink.Format) error {
	defer stage(StageWrite)()
	paths, err := sink.Write(ctx, p.Dir, formats, ds)
	if err != nil {
		return err
	}
	summaries := describe.Table(ds.Features)
	if p.Config.Heatmaps {
		path := filepath.Join(p.Dir, FinalHeatmapFile)
		if err := describe.SaveHeatmap(path, "Final data", summaries); err != nil {
			return err
		}
		paths = append(paths, path)
	}
	if err := sink.WriteJSON(filepath.Join(p.Dir, LedgerFile), ds.Ledger); err != nil {
		return err
	}
	if err := sink.WriteJSON(filepath.Join(p.Dir, SummaryFile), summaries); err != nil {
		return err
	}
	def, err := os.ReadFile(filepath.Join(p.Dir, PipelineFile))
	if err != nil {
		return errors.Wrap(err, "reading pipeline")
	}
	m.PipelineDigest = hash.Blake3sum16(def)

	for i, path := range paths {
		paths[i] = filepath.Base(path)
	}
	m.Files = paths
	m.Finished = p.Now()
	if err := prometheus.WriteToTextfile(filepath.Join(p.Dir, MetricsFile), prometheus.DefaultGatherer); err != nil {
		return errors.Wrap(err, "writing metrics")
	}
	return sink.WriteJSON(filepath.Join(p.Dir, ManifestFile), m)
}

func (p *Preparer) dropped(m *Manifest, stage string, n int) {
	m.RowsDropped[stage] += n
	CounterRowsDropped.WithLabelValues(stage).Add(float64(n))
	if n > 0 {
		p.Logger.Debugf("%s dropped %d cases", stage, n)
	}
}

// FilterStartYear drops cases diagnosed before year and returns how many
// were dropped. Cases with an unknown year are dropped as well.
func FilterStartYear(t *table.Table, year int) (int, error) {
	col, err := t.Column(YearOfDiagnosisColumn)
	if err != nil {
		return 0, errors.Wrap(err, "filtering by start year")
	}
	keep := make([]bool, len(col))
	for i, v := range col {
		keep[i] = v != table.Missing && int(v) >= year
	}
	return t.RetainMask(keep), nil
}

// Fingerprint hashes the features and label of ds in row order.
func Fingerprint(ds *sink.Dataset) string {
	f := hash.NewFingerprinter()
	f.WriteTable(ds.Features)
	f.WriteColumn(ds.Label.Name, ds.Label.Values)
	return f.Sum16()
}

// stage starts timing s and returns the function that records it.
func stage(s string) func() {
	start := time.Now()
	return func() {
		SummaryStageDuration.WithLabelValues(s).Observe(time.Since(start).Seconds())
	}
}
