// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package seerprep

import "github.com/prometheus/client_golang/prometheus"

const (
	MetricRecordsDecoded = "records_decoded_total"
	MetricRowsDropped    = "rows_dropped_total"
	MetricColumnsPruned  = "columns_pruned_total"
	MetricFeatureColumns = "feature_columns"
	MetricStageDuration  = "stage_duration_seconds"
)

// Stages that drop rows or take measurable time.
const (
	StageDecode    = "decode"
	StageCases     = "cases"
	StageStartYear = "start_year"
	StagePipeline  = "pipeline"
	StageTarget    = "target"
	StagePrune     = "prune"
	StageWrite     = "write"
)

var CounterRecordsDecoded = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "seerprep",
		Name:      MetricRecordsDecoded,
		Help:      "Fixed-width records decoded from incidence files.",
	},
)

var CounterRowsDropped = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "seerprep",
		Name:      MetricRowsDropped,
		Help:      "Cases dropped, by the stage that dropped them.",
	},
	[]string{
		"stage",
	},
)

var CounterColumnsPruned = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "seerprep",
		Name:      MetricColumnsPruned,
		Help:      "Constant feature columns removed.",
	},
)

var GaugeFeatureColumns = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "seerprep",
		Name:      MetricFeatureColumns,
		Help:      "Feature columns in the last prepared data set.",
	},
)

var SummaryStageDuration = prometheus.NewSummaryVec(
	prometheus.SummaryOpts{
		Namespace: "seerprep",
		Name:      MetricStageDuration,
		Help:      "Time spent in each stage of a run.",
	},
	[]string{
		"stage",
	},
)

func init() {
	prometheus.MustRegister(CounterRecordsDecoded)
	prometheus.MustRegister(CounterRowsDropped)
	prometheus.MustRegister(CounterColumnsPruned)
	prometheus.MustRegister(GaugeFeatureColumns)
	prometheus.MustRegister(SummaryStageDuration)
}
