// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// ndbench compares the performance of ndarray's algorithms with baselines doing the same work: the
// builtin copy for dense layouts, naive nested loops for strided layouts and gonum for matrix
// products.
//
// It prints a table with one row per case, and fails if the time ratio of a case is above its
// limit.
//
// Usage:
//
//	ndbench [-cases=dense_copy,strided_copy] [-n=100] [-min_time=500ms] [-plot=ratios.png]
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/ndarray/internal/timing"
	"github.com/gomlx/ndarray/pkg/support/sets"
	"github.com/gomlx/ndarray/pkg/support/xslices"
	"github.com/gomlx/ndarray/ui/commandline"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagCases = xslices.Flag("cases", nil,
		"Comma-separated list of benchmark cases to run. Default is all of them.",
		func(name string) (string, error) {
			_, err := findCase(name)
			return name, err
		})
	flagN        = flag.Int("n", 100, "Extent of each axis of the arrays in the benchmarks.")
	flagMinTime  = flag.Duration("min_time", timing.DefaultMinTime, "Minimum time measuring each case and each baseline.")
	flagPlot     = flag.String("plot", "", "If set, save a bar chart of the time ratios to this image file (.png, .svg or .pdf).")
	flagProgress = flag.Bool("progress", true, "Display a progress bar while running the cases.")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
)

var tableHeaders = []string{"Case", "Bytes", "Time", "Baseline", "Ratio", "Limit", "Throughput", "Result"}

// result of one benchmark case.
type result struct {
	name              string
	numBytes          int
	libTime, baseTime time.Duration
	maxRatio          float64
	err               error
}

// ratio of the library time over the baseline time.
func (r result) ratio() float64 {
	if r.baseTime <= 0 {
		return 0
	}
	return float64(r.libTime) / float64(r.baseTime)
}

// failed returns whether the results are wrong, or the ratio is above the limit.
func (r result) failed() bool {
	return r.err != nil || (r.maxRatio > 0 && r.ratio() > r.maxRatio)
}

// row formats the result as a row of the results table.
func (r result) row() []string {
	status, limit := "ok", "-"
	if r.failed() {
		status = commandline.FailMarker
	}
	if r.maxRatio > 0 {
		limit = fmt.Sprintf("%.2f", r.maxRatio)
	}
	return []string{
		r.name,
		humanize.Bytes(uint64(r.numBytes)),
		commandline.FormatDuration(r.libTime),
		commandline.FormatDuration(r.baseTime),
		fmt.Sprintf("%.2f", r.ratio()),
		limit,
		commandline.FormatThroughput(timing.Throughput(r.numBytes, r.libTime)),
		status,
	}
}

// runCase measures the library and the baseline of c, and verifies their results.
func runCase(c benchCase, n int, minTime time.Duration) result {
	klog.V(1).Infof("running %q: %s", c.name, c.description)
	run := c.setup(n)
	r := result{name: c.name, numBytes: run.numBytes, maxRatio: c.maxRatio}
	r.libTime = timing.Measure(minTime, run.lib)
	r.baseTime = timing.Measure(minTime, run.baseline)
	if err := run.verify(); err != nil {
		r.err = err
		klog.Errorf("case %q: %+v", c.name, err)
	}
	return r
}

// selectCases returns the cases whose names are in names, in the order they are defined.
// If names is empty, it returns all cases.
func selectCases(names []string) []benchCase {
	if len(names) == 0 {
		return benchCases
	}
	selected := sets.MakeWith(names...)
	var cases []benchCase
	for _, c := range benchCases {
		if selected.Has(c.name) {
			cases = append(cases, c)
		}
	}
	return cases
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagN < 3 {
		klog.Errorf("-n must be at least 3, got %d", *flagN)
		os.Exit(1)
	}

	cases := selectCases(*flagCases)
	fmt.Println(titleStyle.Render(fmt.Sprintf("ndbench: %d cases, n=%d", len(cases), *flagN)))
	var progress *commandline.Progress
	if *flagProgress {
		progress = commandline.NewProgress(os.Stdout, len(cases), "benchmarking", tableHeaders...)
	}
	results := make([]result, 0, len(cases))
	for _, c := range cases {
		r := runCase(c, *flagN, *flagMinTime)
		results = append(results, r)
		if progress != nil {
			progress.Step(r.row()...)
		}
	}

	if progress != nil {
		progress.Finish()
	} else {
		table := commandline.NewTable(tableHeaders...)
		for _, r := range results {
			table.AddRow(r.row()...)
		}
		fmt.Println(table.Render())
	}

	if *flagPlot != "" {
		must.M(savePlot(*flagPlot, results))
		fmt.Printf("Plot saved to %q\n", *flagPlot)
	}

	var numFailed int
	for _, r := range results {
		if r.failed() {
			numFailed++
		}
	}
	if numFailed > 0 {
		klog.Errorf("%d of %d cases failed", numFailed, len(results))
		os.Exit(1)
	}
}
