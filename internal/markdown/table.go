package markdown

import (
	"strings"
	"unicode/utf8"
)

// CaptionWord opens a table caption paragraph.
const CaptionWord = "Таблица"

// RenderTable renders rows of cell texts as a pipe table. The first row is
// the header; shorter rows become bold subheaders spanning the table.
func RenderTable(rows [][]string) string {
	numColumns := 0
	for _, r := range rows {
		numColumns = max(numColumns, len(r))
	}
	if numColumns == 0 {
		return ""
	}

	header := make([]string, numColumns)
	for i, c := range rows[0] {
		header[i] = EscapeCell(c)
	}
	sep := make([]string, numColumns)
	for i, h := range header {
		sep[i] = strings.Repeat("-", max(3, utf8.RuneCountInString(h)))
	}

	lines := []string{tableRow(header), tableRow(sep)}
	for _, r := range rows[1:] {
		switch {
		case len(r) == 0:
			continue
		case len(r) < numColumns:
			lines = append(lines, tableRow(subheader(r, numColumns)))
		default:
			cells := make([]string, numColumns)
			for i, c := range r {
				cells[i] = EscapeCell(c)
			}
			lines = append(lines, tableRow(cells))
		}
	}
	return strings.Join(lines, "\n")
}

// EscapeCell makes cell text safe inside a pipe table row.
func EscapeCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", "<br>")
	return strings.ReplaceAll(s, "|", `\|`)
}

// IsCaption reports whether text is a table caption.
func IsCaption(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), CaptionWord)
}

func subheader(row []string, numColumns int) []string {
	var parts []string
	for _, c := range row {
		if c = EscapeCell(c); c != "" {
			parts = append(parts, c)
		}
	}
	cells := make([]string, numColumns)
	if len(parts) > 0 {
		cells[0] = "**" + strings.Join(parts, " ") + "**"
	}
	return cells
}

func tableRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}
