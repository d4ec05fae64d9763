package main

import (
	"fmt"
	"strings"
)

// resultHeader is the fixed ten-column result header.
var resultHeader = []string{
	"ID", "Sport", "Last name", "First name", "Year",
	"Team", "Co.", "Est. Value", "Sale date", "Sale price",
}

// resultWidths gives each column's minimum display width. A column
// grows when a cell is wider.
var resultWidths = []int{4, 10, 10, 10, 6, 10, 10, 8, 10, 8}

// renderCards renders result rows as a fixed-width ASCII table.
func renderCards(rows [][]string) string {
	widths := make([]int, len(resultHeader))
	copy(widths, resultWidths)
	for i, h := range resultHeader {
		if len(h) > widths[i] {
			widths[i] = len(h)
		}
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	sep := buildSeparator(widths)

	var b strings.Builder
	b.WriteString(sep)
	b.WriteByte('|')
	for i, h := range resultHeader {
		fmt.Fprintf(&b, " %-*s |", widths[i], h)
	}
	b.WriteByte('\n')
	b.WriteString(sep)

	for _, row := range rows {
		b.WriteByte('|')
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			fmt.Fprintf(&b, " %-*s |", widths[i], cell)
		}
		b.WriteByte('\n')
	}
	b.WriteString(sep)

	return b.String()
}

func buildSeparator(widths []int) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, w := range widths {
		for j := 0; j < w+2; j++ {
			b.WriteByte('-')
		}
		b.WriteByte('+')
	}
	b.WriteByte('\n')
	return b.String()
}
