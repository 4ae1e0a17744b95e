package fixup

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var numberPrefixRe = regexp.MustCompile(`^\d+(?:\.\d+)*\.?(?:\s+|$)`)

// Heading is an ATX heading located in Markdown source.
type Heading struct {
	Line  int // 0-based line index
	Level int
	Title string
}

// Headings returns the ATX headings of md in order. Lines inside code
// blocks are not headings.
func Headings(md string) []Heading {
	src := []byte(md)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var out []Heading
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if h.Lines().Len() == 0 {
			return ast.WalkSkipChildren, nil
		}
		seg := h.Lines().At(0)
		lineStart := strings.LastIndexByte(md[:seg.Start], '\n') + 1
		if !strings.HasPrefix(strings.TrimLeft(md[lineStart:seg.Start], " "), "#") {
			// Setext heading.
			return ast.WalkSkipChildren, nil
		}
		out = append(out, Heading{
			Line:  strings.Count(md[:seg.Start], "\n"),
			Level: h.Level,
			Title: strings.TrimSpace(string(seg.Value(src))),
		})
		return ast.WalkSkipChildren, nil
	})
	return out
}

// RestoreNumbering renumbers the H2-H4 headings of one chapter as N.S,
// N.S.U and N.S.U.W, replacing whatever numbers they carried. Running it
// twice renumbers again from scratch.
func RestoreNumbering(md string, chapter int) string {
	front, body := SplitFrontmatter(md)
	headings := Headings(body)
	if len(headings) == 0 {
		return md
	}

	lines := strings.Split(body, "\n")
	counters := [4]int{chapter}
	for _, h := range headings {
		var depth int
		switch h.Level {
		case 2:
			counters[1]++
			counters[2], counters[3] = 0, 0
			depth = 2
		case 3:
			counters[2]++
			counters[3] = 0
			depth = 3
		case 4:
			counters[3]++
			depth = 4
		default:
			continue
		}
		nums := make([]string, depth)
		for i := range depth {
			nums[i] = strconv.Itoa(counters[i])
		}
		title := numberPrefixRe.ReplaceAllString(h.Title, "")
		line := strings.Repeat("#", h.Level) + " " + strings.Join(nums, ".") + " " + title
		lines[h.Line] = strings.TrimRight(line, " ")
	}
	return front + strings.Join(lines, "\n")
}
