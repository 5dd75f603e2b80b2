package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Table renders rows of cells with padded columns, a bold header, and a
// rule under it.
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{writer: w, headers: headers}
}

// AddRow appends one row. Missing cells render empty; extra cells are
// dropped.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the table.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && utf8.RuneCountInString(cell) > widths[i] {
				widths[i] = utf8.RuneCountInString(cell)
			}
		}
	}

	bold := color.New(color.Bold, color.FgCyan)
	for i, h := range t.headers {
		bold.Fprint(t.writer, padRight(h, widths[i]))
		if i < len(t.headers)-1 {
			fmt.Fprint(t.writer, "  ")
		}
	}
	fmt.Fprintln(t.writer)

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	fmt.Fprintln(t.writer, strings.Join(rule, "  "))

	for _, row := range t.rows {
		for i := range t.headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprint(t.writer, padRight(cell, widths[i]))
			if i < len(t.headers)-1 {
				fmt.Fprint(t.writer, "  ")
			}
		}
		fmt.Fprintln(t.writer)
	}
}

func padRight(s string, width int) string {
	if n := width - utf8.RuneCountInString(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
