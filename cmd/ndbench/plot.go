// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"image/color"

	"github.com/gomlx/ndarray/pkg/support/fsutil"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	ratioColor = color.RGBA{R: 0x70, G: 0x50, B: 0x90, A: 0xff}
	limitColor = color.RGBA{R: 0xd0, G: 0x40, B: 0x40, A: 0xff}
)

// savePlot saves a bar chart with the time ratios of the results, and the limits of the cases
// that have one, to the image file filePath. The format is given by the file extension.
func savePlot(filePath string, results []result) error {
	filePath, err := fsutil.PrepareOutputFile(filePath)
	if err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "ndarray vs. baseline"
	p.Y.Label.Text = "time ratio"
	p.Y.Min = 0

	ratios := make(plotter.Values, len(results))
	limits := make(plotter.Values, len(results))
	names := make([]string, len(results))
	for ii, r := range results {
		names[ii] = r.name
		ratios[ii] = r.ratio()
		limits[ii] = r.maxRatio
	}
	barWidth := vg.Points(16)
	ratioBars, err := plotter.NewBarChart(ratios, barWidth)
	if err != nil {
		return errors.WithMessage(err, "failed to plot ratios")
	}
	ratioBars.Color = ratioColor
	ratioBars.LineStyle.Width = 0
	ratioBars.Offset = -barWidth / 2
	limitBars, err := plotter.NewBarChart(limits, barWidth)
	if err != nil {
		return errors.WithMessage(err, "failed to plot limits")
	}
	limitBars.Color = limitColor
	limitBars.LineStyle.Width = 0
	limitBars.Offset = barWidth / 2

	p.Add(ratioBars, limitBars)
	p.Legend.Add("ratio", ratioBars)
	p.Legend.Add("limit", limitBars)
	p.Legend.Top = true
	p.NominalX(names...)

	width := vg.Length(len(results)+1) * 3 * barWidth
	if err = p.Save(max(width, 4*vg.Inch), 3*vg.Inch, filePath); err != nil {
		return errors.Wrapf(err, "failed to save plot to %q", filePath)
	}
	return nil
}
