// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package describe

import (
	"github.com/featurebasedb/seerprep/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// histogramGrid exposes the column histograms as a grid of bins (x) by
// columns (y).
type histogramGrid []Summary

func (g histogramGrid) Dims() (c, r int)   { return Bins, len(g) }
func (g histogramGrid) Z(c, r int) float64 { return float64(g[r].Histogram[c]) }
func (g histogramGrid) X(c int) float64    { return float64(c) }
func (g histogramGrid) Y(r int) float64    { return float64(r) }

// Heatmap plots the value distribution of every summarized column, one row
// per column labelled with its summary.
func Heatmap(title string, summaries []Summary) (*plot.Plot, error) {
	if len(summaries) == 0 {
		return nil, errors.Errorf("heatmap %q has no columns to plot", title)
	}
	grid := histogramGrid(summaries)
	hm := plotter.NewHeatMap(grid, palette.Heat(Bins, 1))
	if hm.Max == hm.Min {
		hm.Max = hm.Min + 1
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "min - max"
	p.Add(hm)

	labels := make([]string, len(summaries))
	for i, s := range summaries {
		labels[i] = s.String()
	}
	p.NominalY(labels...)
	return p, nil
}

// SaveHeatmap writes the heatmap to path; the format follows the extension.
func SaveHeatmap(path, title string, summaries []Summary) error {
	p, err := Heatmap(title, summaries)
	if err != nil {
		return err
	}
	height := vg.Length(len(summaries)) * vg.Inch / 8
	if height < 4*vg.Inch {
		height = 4 * vg.Inch
	}
	return errors.Wrap(p.Save(8*vg.Inch, height, path), "saving heatmap")
}
