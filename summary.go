// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// stdoutIsTerminal decides between the rounded and the plain ASCII table
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// renderTable draws a dataset as a bordered table. Numeric cells are right
// aligned and shown with three decimals.
func renderTable(ds *Dataset, styled bool) string {
	rows := make([][]string, 0, ds.Len())
	numeric := make(map[int]bool)
	for _, r := range ds.Records {
		row := make([]string, len(ds.Columns))
		for i, col := range ds.Columns {
			v := r[col]
			if f, ok := v.Float(); ok {
				row[i] = strconv.FormatFloat(f, 'f', 3, 64)
				numeric[i] = true
				continue
			}
			if v.IsMissing() {
				row[i] = "NaN"
				continue
			}
			row[i] = v.String()
		}
		rows = append(rows, row)
	}

	t := table.New().
		Headers(ds.Columns...).
		Rows(rows...)

	if styled {
		t = t.Border(lipgloss.RoundedBorder()).
			BorderStyle(borderStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				case numeric[col]:
					return numberStyle
				default:
					return cellStyle
				}
			})
	} else {
		t = t.Border(lipgloss.ASCIIBorder()).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row != table.HeaderRow && numeric[col] {
					return numberStyle
				}
				return cellStyle
			})
	}

	return t.String()
}

// PrintSummary writes the end-of-run report: the EU production row count
// and either the head of the Russia dataset or the critical message.
func PrintSummary(logger *Logger, result *LoadResult, styled bool) {
	logger.UserMessage("")
	logger.UserMessage("EU production rows: %d (source: %s)", result.EUProduction.Len(), result.EU.Origin)

	if result.Russia.Empty() {
		logger.UserMessage("")
		logger.UserMessage(CriticalNoRussiaData)
		return
	}

	logger.UserMessage("")
	logger.UserMessage("--- Russian Production Summary ---")
	logger.UserMessage("%s", renderTable(result.Russia.Head(SummaryRows), styled))
}
