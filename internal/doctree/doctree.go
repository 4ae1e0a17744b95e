package doctree

// Document is the flat, ordered body of a source document as handed to the
// classifier. Every source format reader produces one.
type Document struct {
	Title  string     // Document title (from metadata or filename)
	Body   []Block    // Paragraphs and tables in source order
	Styles []StyleDef // Styles declared by the source, if any
}

// Block is a body element: either *Paragraph or *Table.
type Block interface {
	block()
}

// Paragraph is one unit of text. Optional attributes use "" or nil for absent.
type Paragraph struct {
	Text         string
	Runs         []Run
	Style        string   // Style name, e.g. "Heading 1"
	OutlineLevel *int     // w:outlineLvl, 0-based
	LeftIndentPt *float64 // Left indent in points
}

// Run is a span of text sharing one set of character formatting.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	Font   string   // Font family name
	SizePt *float64 // Font size in points
}

// Table is a grid of cell texts. Rows may have different cell counts.
type Table struct {
	Rows [][]string
}

// StyleDef describes a named paragraph style.
type StyleDef struct {
	Name   string
	SizePt *float64
}

func (*Paragraph) block() {}
func (*Table) block()     {}

// Plain builds a paragraph with a single unformatted run.
func Plain(text string) *Paragraph {
	return &Paragraph{Text: text, Runs: []Run{{Text: text}}}
}

// Styled builds a single-run paragraph with the given style name.
func Styled(style, text string) *Paragraph {
	return &Paragraph{Text: text, Style: style, Runs: []Run{{Text: text}}}
}

// Pt returns a pointer to a point value, for optional size/indent fields.
func Pt(v float64) *float64 {
	return &v
}

// Level returns a pointer to an outline level.
func Level(v int) *int {
	return &v
}
