package classify

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docx2md/internal/doctree"
)

// MaxHeadingLevel is the deepest heading Markdown can express.
const MaxHeadingLevel = 6

// HeadingRule is one heading signal. Rules are tried in order and the first
// one that reports ok decides the level.
type HeadingRule interface {
	Level(p *doctree.Paragraph) (level int, ok bool)
}

// StyleRule matches paragraphs whose style name is in a heading-style table.
type StyleRule struct {
	Table map[string]int
}

func (r StyleRule) Level(p *doctree.Paragraph) (int, bool) {
	if p.Style == "" {
		return 0, false
	}
	level, ok := r.Table[p.Style]
	return level, ok
}

// HeadingStyles builds the heading-style table for one document: the
// standard "Heading N" names and their localized forms, plus any custom
// style whose font size makes it look like a heading.
func HeadingStyles(styles []doctree.StyleDef) map[string]int {
	table := make(map[string]int, 27+len(styles))
	for n := 1; n <= 9; n++ {
		table[fmt.Sprintf("Heading %d", n)] = n
		table[fmt.Sprintf("heading %d", n)] = n
		table[fmt.Sprintf("Заголовок %d", n)] = n
	}
	for _, s := range styles {
		if s.Name == "" || s.SizePt == nil {
			continue
		}
		if _, ok := table[s.Name]; ok {
			continue
		}
		switch size := *s.SizePt; {
		case size >= 24:
			table[s.Name] = 1
		case size >= 18:
			table[s.Name] = 2
		case size >= 14:
			table[s.Name] = 3
		}
	}
	return table
}

// OutlineRule uses the paragraph's explicit outline level. Level 9 is body
// text in OOXML and is not a heading.
type OutlineRule struct{}

func (OutlineRule) Level(p *doctree.Paragraph) (int, bool) {
	if p.OutlineLevel == nil {
		return 0, false
	}
	lvl := *p.OutlineLevel
	if lvl < 0 || lvl >= 9 {
		return 0, false
	}
	return lvl + 1, true
}

// FormattingRule treats short, bold or large-font paragraphs as headings.
type FormattingRule struct{}

func (FormattingRule) Level(p *doctree.Paragraph) (int, bool) {
	text := strings.TrimSpace(p.Text)
	if text == "" || utf8.RuneCountInString(text) >= 100 || len(p.Runs) == 0 {
		return 0, false
	}
	first := p.Runs[0].SizePt
	if first == nil {
		return 0, false
	}

	allBold := true
	for _, r := range p.Runs {
		if strings.TrimSpace(r.Text) != "" && !r.Bold {
			allBold = false
			break
		}
	}

	size := *first
	if !allBold && size <= 12 {
		return 0, false
	}
	switch {
	case size >= 20:
		return 1, true
	case size >= 16:
		return 2, true
	case size >= 14:
		return 3, true
	case allBold:
		return 4, true
	}
	return 0, false
}

var numberedHeadingRe = regexp.MustCompile(`^[\d.]+\s+[A-ZА-ЯЁ]`)

// PatternRule recognizes "1.2.3 Title" style numbering in the text itself.
type PatternRule struct{}

func (PatternRule) Level(p *doctree.Paragraph) (int, bool) {
	text := strings.TrimSpace(p.Text)
	if !numberedHeadingRe.MatchString(text) {
		return 0, false
	}
	token := strings.Fields(text)[0]
	return min(strings.Count(token, ".")+1, MaxHeadingLevel), true
}
