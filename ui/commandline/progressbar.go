// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
)

// ProgressbarStyle to use. Defaults to the ASCII version.
// Consider "progressbar.ThemeUnicode" for a prettier version.
// But it requires some of the graphical symbols to be supported.
var ProgressbarStyle = progressbar.ThemeASCII

// maxUpdateFrequency is the time between updates to the commandline display of results.
var maxUpdateFrequency = time.Millisecond * 200

// Progress displays a progress bar over a fixed number of steps (e.g.: benchmark cases), with
// a table of the results of the finished steps above it.
//
// The display is updated asynchronously, so Step never blocks on the terminal.
type Progress struct {
	w     io.Writer
	bar   *progressbar.ProgressBar
	table *Table

	// lipgloss-based rich and asynchronous display for the command-line.
	termenv          *termenv.Output
	tableStyle       lipgloss.Style
	linesPrinted     int
	updates          chan []string
	asyncUpdatesDone sync.WaitGroup
}

// NewProgress creates a Progress writing to w, for the given number of steps, and with a results
// table with the given headers.
func NewProgress(w io.Writer, numSteps int, description string, headers ...string) *Progress {
	p := &Progress{
		w:          w,
		table:      NewTable(headers...),
		termenv:    termenv.NewOutput(w),
		tableStyle: lipgloss.NewStyle().PaddingLeft(2),
		updates:    make(chan []string, 100), // Large buffer so steps are not blocked.
	}
	p.bar = progressbar.NewOptions(numSteps,
		progressbar.OptionSetDescription(description),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("cases"),
		progressbar.OptionSetTheme(ProgressbarStyle),
		progressbar.OptionSetWriter(w),
	)
	p.asyncUpdatesDone.Add(1)
	go p.drawUpdates()
	return p
}

// drawUpdates asynchronously draws updates, until the updates channel is closed.
func (p *Progress) drawUpdates() {
	defer p.asyncUpdatesDone.Done()
	for row := range p.updates {
		// Exhaust the updates in the buffer:
		amount := 1
		p.table.AddRow(row...)
	exhaust:
		for {
			select {
			case newRow, ok := <-p.updates:
				if !ok {
					break exhaust
				}
				p.table.AddRow(newRow...)
				amount++
			default:
				break exhaust
			}
		}

		// Clear the previous table and progress bar, which will be overwritten.
		p.termenv.HideCursor()
		if p.linesPrinted > 0 {
			p.termenv.CursorPrevLine(p.linesPrinted)
		}
		rendered := p.tableStyle.Render(p.table.String())
		_, _ = fmt.Fprintln(p.w, rendered)
		_ = p.bar.Add(amount) // Prints progress bar line.
		_, _ = fmt.Fprintln(p.w)
		p.linesPrinted = strings.Count(rendered, "\n") + 2
		p.termenv.ShowCursor()
		time.Sleep(maxUpdateFrequency)
	}
}

// Step reports one finished step, with its row of results.
func (p *Progress) Step(row ...string) {
	p.updates <- row
}

// Finish waits for all updates to be displayed, and returns the final table of results.
func (p *Progress) Finish() *Table {
	close(p.updates)
	p.asyncUpdatesDone.Wait()
	return p.table
}
