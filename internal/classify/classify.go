package classify

import (
	"strings"

	"github.com/dgallion1/docx2md/internal/doctree"
)

// Classifier assigns a role to each paragraph of one document.
type Classifier struct {
	headings []HeadingRule
}

// New returns a classifier with the standard heading rule chain, using the
// document's declared styles for the style table.
func New(styles []doctree.StyleDef) *Classifier {
	return NewWithRules(
		StyleRule{Table: HeadingStyles(styles)},
		OutlineRule{},
		FormattingRule{},
		PatternRule{},
	)
}

// NewWithRules returns a classifier with a custom heading rule chain.
func NewWithRules(rules ...HeadingRule) *Classifier {
	return &Classifier{headings: rules}
}

// HeadingLevel runs the heading rule chain and returns the first match.
func (c *Classifier) HeadingLevel(p *doctree.Paragraph) (int, bool) {
	for _, rule := range c.headings {
		if level, ok := rule.Level(p); ok && level > 0 {
			return min(level, MaxHeadingLevel), true
		}
	}
	return 0, false
}

// Classify decides the role of one paragraph. It never fails: a paragraph
// with no usable signal is a plain paragraph.
func (c *Classifier) Classify(p *doctree.Paragraph) Element {
	text := strings.TrimSpace(p.Text)

	if IsTOCEntry(p) {
		return Element{Kind: KindTOCEntry, Text: text}
	}
	if level, ok := c.HeadingLevel(p); ok {
		return Heading(level, text)
	}
	if indent, ok := IsListItem(p, text); ok {
		return ListItem(text, indent)
	}
	if IsCode(p, text) {
		return Code(text)
	}
	if IsNote(text) {
		return Note(text)
	}
	return Element{Kind: KindParagraph, Text: text, Runs: p.Runs}
}

// ClassifyTable wraps a table as an element.
func (c *Classifier) ClassifyTable(t *doctree.Table) Element {
	return Table(t.Rows)
}

// ClassifyDocument classifies every body block in order. Blank paragraphs
// carry no content and are dropped.
func ClassifyDocument(doc *doctree.Document) []Element {
	c := New(doc.Styles)
	out := make([]Element, 0, len(doc.Body))
	for _, b := range doc.Body {
		switch v := b.(type) {
		case *doctree.Paragraph:
			if strings.TrimSpace(v.Text) == "" {
				continue
			}
			out = append(out, c.Classify(v))
		case *doctree.Table:
			if len(v.Rows) == 0 {
				continue
			}
			out = append(out, c.ClassifyTable(v))
		}
	}
	return out
}
