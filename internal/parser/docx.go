package parser

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dgallion1/docx2md/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// go-docx needs a ReaderAt+size, so write to temp file.
	tmp, err := os.CreateTemp("", "docx2md-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	defer tmp.Close()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	meta, err := readPackageMeta(tmp, size)
	if err != nil {
		return nil, fmt.Errorf("read docx styles: %w", err)
	}

	out := &doctree.Document{
		Title:  Title(filename),
		Styles: meta.styles.defs(),
	}
	paraIdx := 0
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			para := docxParagraph(it, meta.styles)
			if paraIdx < len(meta.outline) && meta.outline[paraIdx] != nil {
				para.OutlineLevel = meta.outline[paraIdx]
			}
			paraIdx++
			out.Body = append(out.Body, para)
		case *docx.Table:
			out.Body = append(out.Body, &doctree.Table{Rows: docxTableRows(it)})
		}
	}
	return out, nil
}

func docxParagraph(para *docx.Paragraph, styles styleTable) *doctree.Paragraph {
	out := &doctree.Paragraph{}
	if props := para.Properties; props != nil {
		if props.Style != nil {
			st := styles.lookup(props.Style.Val)
			out.Style = st.name
			out.OutlineLevel = st.outline
		}
		if props.Ind != nil && props.Ind.Left > 0 {
			// Indents are in twentieths of a point.
			out.LeftIndentPt = doctree.Pt(float64(props.Ind.Left) / 20)
		}
	}

	var text strings.Builder
	for _, child := range para.Children {
		var run *docx.Run
		switch c := child.(type) {
		case *docx.Run:
			run = c
		case *docx.Hyperlink:
			run = &c.Run
		default:
			continue
		}
		dr := docxRun(run)
		if dr.Text == "" {
			continue
		}
		text.WriteString(dr.Text)
		out.Runs = append(out.Runs, dr)
	}
	out.Text = text.String()
	return out
}

func docxRun(run *docx.Run) doctree.Run {
	var b strings.Builder
	for _, rc := range run.Children {
		switch c := rc.(type) {
		case *docx.Text:
			b.WriteString(c.Text)
		case *docx.Tab:
			b.WriteByte('\t')
		case *docx.BarterRabbet:
			b.WriteByte('\n')
		}
	}
	out := doctree.Run{Text: b.String()}

	rp := run.RunProperties
	if rp == nil {
		return out
	}
	out.Bold = rp.Bold != nil
	out.Italic = rp.Italic != nil
	if rp.Fonts != nil {
		out.Font = rp.Fonts.ASCII
		if out.Font == "" {
			out.Font = rp.Fonts.HAnsi
		}
	}
	if rp.Size != nil {
		out.SizePt = halfPoints(rp.Size.Val)
	}
	return out
}

func docxTableRows(tbl *docx.Table) [][]string {
	rows := make([][]string, 0, len(tbl.TableRows))
	for _, tr := range tbl.TableRows {
		row := make([]string, 0, len(tr.TableCells))
		for _, tc := range tr.TableCells {
			lines := make([]string, 0, len(tc.Paragraphs))
			for _, p := range tc.Paragraphs {
				if t := strings.TrimSpace(docxParagraph(p, styleTable{}).Text); t != "" {
					lines = append(lines, t)
				}
			}
			row = append(row, strings.Join(lines, "\n"))
		}
		rows = append(rows, row)
	}
	return rows
}

// halfPoints converts a w:sz value to points.
func halfPoints(val string) *float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil || n <= 0 {
		return nil
	}
	return doctree.Pt(n / 2)
}
