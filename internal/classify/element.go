package classify

import "github.com/dgallion1/docx2md/internal/doctree"

// Kind is the role a body element plays in the Markdown output.
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
	KindListItem
	KindCode
	KindNote
	KindTable
	KindTOCEntry
)

var kindNames = map[Kind]string{
	KindParagraph: "paragraph",
	KindHeading:   "heading",
	KindListItem:  "list_item",
	KindCode:      "code",
	KindNote:      "note",
	KindTable:     "table",
	KindTOCEntry:  "toc_entry",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Element is one classified body element. Which fields are meaningful
// depends on Kind: Level for headings, Indent for list items, Runs for
// paragraphs, Rows for tables.
type Element struct {
	Kind   Kind
	Text   string
	Level  int
	Indent int
	Runs   []doctree.Run
	Rows   [][]string
}

// Heading builds a heading element.
func Heading(level int, text string) Element {
	return Element{Kind: KindHeading, Level: level, Text: text}
}

// ListItem builds a list item element.
func ListItem(text string, indent int) Element {
	return Element{Kind: KindListItem, Text: text, Indent: indent}
}

// Code builds a code line element.
func Code(text string) Element {
	return Element{Kind: KindCode, Text: text}
}

// Note builds a note element.
func Note(text string) Element {
	return Element{Kind: KindNote, Text: text}
}

// Text builds a plain paragraph element with a single unformatted run.
func Text(text string) Element {
	return Element{Kind: KindParagraph, Text: text, Runs: []doctree.Run{{Text: text}}}
}

// Table builds a table element.
func Table(rows [][]string) Element {
	return Element{Kind: KindTable, Rows: rows}
}
