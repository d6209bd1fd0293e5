// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package commandline contains convenience tools to report benchmark progress and results on the
// command line.
package commandline

import (
	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
)

var (
	normalStyle       = lipgloss.NewStyle().Padding(0, 1)
	rightAlignedStyle = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
	headerStyle       = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	failStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#D04040")).Padding(0, 1)
	tableBorderColor  = "#705090"
)

// FailMarker is the content of a cell that is highlighted by Table.
const FailMarker = "FAIL"

// Table is a lipgloss table in the style used by this package: the first column is
// right-aligned, and cells with FailMarker are highlighted.
type Table struct {
	*lgtable.Table
	data *lgtable.StringData
}

// NewTable returns an empty table with the given headers.
func NewTable(headers ...string) *Table {
	t := &Table{data: lgtable.NewStringData()}
	t.Table = lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tableBorderColor))).
		Headers(headers...).
		Data(t.data).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return rightAlignedStyle
			}
			if row < t.data.Rows() && t.data.At(row, col) == FailMarker {
				return failStyle
			}
			return normalStyle
		})
	return t
}

// AddRow appends a row of cells to the table.
func (t *Table) AddRow(cells ...string) {
	t.data.Append(cells)
}

// NumRows returns the number of rows, not counting the headers.
func (t *Table) NumRows() int {
	return t.data.Rows()
}
