package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docx2md/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

// monoFont is the run font given to inline code.
const monoFont = "Courier New"

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	out := &doctree.Document{Title: Title(filename)}
	if title := findTitle(doc); title != "" {
		out.Title = title
	}

	w := &htmlWalker{doc: out}
	if body := findBody(doc); body != nil {
		w.walk(body)
	} else {
		w.walk(doc)
	}
	return out, nil
}

type htmlWalker struct {
	doc       *doctree.Document
	listDepth int
}

func (w *htmlWalker) add(b doctree.Block) {
	w.doc.Body = append(w.doc.Body, b)
}

func (w *htmlWalker) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		if level := headingLevel(n.Data); level > 0 {
			runs := inlineRuns(n)
			w.add(&doctree.Paragraph{
				Text:  runsText(runs),
				Runs:  runs,
				Style: fmt.Sprintf("Heading %d", level),
			})
			return
		}

		switch n.Data {
		case "script", "style", "nav", "footer", "header":
			return
		case "p", "blockquote", "dt", "dd":
			if runs := inlineRuns(n); runsText(runs) != "" {
				w.add(&doctree.Paragraph{Text: runsText(runs), Runs: runs})
			}
			return
		case "pre":
			for _, line := range strings.Split(textContentRaw(n), "\n") {
				w.add(doctree.Styled(codeStyle, line))
			}
			return
		case "ul", "ol":
			w.listDepth++
			defer func() { w.listDepth-- }()
		case "li":
			w.listItem(n)
			return
		case "table":
			w.add(&doctree.Table{Rows: tableRows(n)})
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// listItem emits the item's own text, then any nested lists.
func (w *htmlWalker) listItem(n *html.Node) {
	var runs []doctree.Run
	var nested []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			nested = append(nested, c)
			continue
		}
		collectRuns(c, doctree.Run{}, &runs)
	}
	if text := runsText(runs); text != "" {
		w.add(listItem(text, max(w.listDepth-1, 0), runs))
	}
	for _, c := range nested {
		w.walk(c)
	}
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// inlineRuns flattens an element's inline content into formatted runs.
func inlineRuns(n *html.Node) []doctree.Run {
	var runs []doctree.Run
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectRuns(c, doctree.Run{}, &runs)
	}
	return runs
}

func collectRuns(n *html.Node, style doctree.Run, runs *[]doctree.Run) {
	switch n.Type {
	case html.TextNode:
		text := collapseSpace(n.Data)
		if text == "" {
			return
		}
		run := style
		run.Text = text
		*runs = append(*runs, run)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "br":
			*runs = append(*runs, doctree.Run{Text: "\n"})
			return
		case "b", "strong":
			style.Bold = true
		case "i", "em":
			style.Italic = true
		case "code", "kbd", "tt", "samp":
			style.Font = monoFont
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectRuns(c, style, runs)
	}
}

// collapseSpace folds HTML whitespace runs into single spaces.
func collapseSpace(s string) string {
	if strings.TrimSpace(s) == "" {
		if s == "" {
			return ""
		}
		return " "
	}
	var b strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func tableRows(tbl *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" && n != tbl {
			return
		}
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, textContent(c))
				}
			}
			rows = append(rows, row)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(tbl)
	return rows
}

func textContent(n *html.Node) string {
	return strings.TrimSpace(collapseSpace(textContentRaw(n)))
}

func textContentRaw(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
