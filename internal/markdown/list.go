package markdown

import (
	"regexp"
	"strings"

	"github.com/dgallion1/docx2md/internal/classify"
)

// enumeratorRes strip list glyphs, applied in order.
var enumeratorRes = []*regexp.Regexp{
	regexp.MustCompile(`^[-•*−]\s*`),
	regexp.MustCompile(`^[a-zа-я]\)\s*`),
	regexp.MustCompile(`^\d+\)\s*`),
}

// StripEnumerator removes a leading bullet glyph or "a)"/"1)" enumerator.
func StripEnumerator(text string) string {
	text = strings.TrimSpace(text)
	for _, re := range enumeratorRes {
		text = re.ReplaceAllString(text, "")
	}
	return text
}

// RenderList renders a run of list items, one line per item.
func RenderList(items []classify.Element) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, ListLine(it.Indent, StripEnumerator(it.Text)))
	}
	return strings.Join(lines, "\n")
}

// ListLine formats one list item at the given nesting level.
func ListLine(indent int, text string) string {
	if indent < 0 {
		indent = 0
	}
	return strings.Repeat("  ", indent) + "- " + text
}
