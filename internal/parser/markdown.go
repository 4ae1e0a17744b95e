package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docx2md/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark, so existing
// Markdown can be normalized through the same pipeline.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(src))

	w := &mdWalker{src: src, doc: &doctree.Document{Title: Title(filename)}}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n, 0)
	}
	return w.doc, nil
}

type mdWalker struct {
	src []byte
	doc *doctree.Document
}

func (w *mdWalker) add(b doctree.Block) {
	w.doc.Body = append(w.doc.Body, b)
}

func (w *mdWalker) block(n ast.Node, depth int) {
	switch node := n.(type) {
	case *ast.Heading:
		runs := w.runs(node)
		w.add(&doctree.Paragraph{
			Text:  runsText(runs),
			Runs:  runs,
			Style: fmt.Sprintf("Heading %d", node.Level),
		})
	case *ast.Paragraph, *ast.TextBlock:
		runs := w.runs(node)
		if t := runsText(runs); t != "" {
			w.add(&doctree.Paragraph{Text: t, Runs: runs})
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			line := strings.TrimRight(string(seg.Value(w.src)), "\r\n")
			w.add(doctree.Styled(codeStyle, line))
		}
	case *ast.List:
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			w.listItem(item, depth)
		}
	case *ast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			w.block(c, depth)
		}
	case *extast.Table:
		w.add(&doctree.Table{Rows: w.tableRows(node)})
	}
}

// listItem emits the item's first text block as the list entry. Nested
// lists go one level deeper; other blocks follow as-is.
func (w *mdWalker) listItem(item ast.Node, depth int) {
	emitted := false
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			if !emitted {
				runs := w.runs(c)
				w.add(listItem(runsText(runs), depth, runs))
				emitted = true
				continue
			}
			w.block(c, depth)
		case *ast.List:
			w.block(c, depth+1)
		default:
			w.block(c, depth)
		}
	}
}

func (w *mdWalker) tableRows(tbl *extast.Table) [][]string {
	var rows [][]string
	for r := tbl.FirstChild(); r != nil; r = r.NextSibling() {
		var row []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			if _, ok := c.(*extast.TableCell); ok {
				row = append(row, runsText(w.runs(c)))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (w *mdWalker) runs(n ast.Node) []doctree.Run {
	var runs []doctree.Run
	w.collect(n, doctree.Run{}, &runs)
	return runs
}

func (w *mdWalker) collect(n ast.Node, style doctree.Run, runs *[]doctree.Run) {
	emit := func(s string) {
		if s == "" {
			return
		}
		run := style
		run.Text = s
		*runs = append(*runs, run)
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			s := string(node.Segment.Value(w.src))
			switch {
			case node.HardLineBreak():
				s += "\n"
			case node.SoftLineBreak():
				s += " "
			}
			emit(s)
		case *ast.String:
			emit(string(node.Value))
		case *ast.AutoLink:
			emit(string(node.URL(w.src)))
		case *ast.Link:
			label := runsText(w.runs(node))
			emit("[" + label + "](" + string(node.Destination) + ")")
		case *ast.CodeSpan:
			s := style
			s.Font = monoFont
			w.collect(node, s, runs)
		case *ast.Emphasis:
			s := style
			if node.Level >= 2 {
				s.Bold = true
			} else {
				s.Italic = true
			}
			w.collect(node, s, runs)
		case *ast.RawHTML:
		default:
			w.collect(node, style, runs)
		}
	}
}
