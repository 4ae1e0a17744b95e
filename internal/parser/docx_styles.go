package parser

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dgallion1/docx2md/internal/doctree"
)

// go-docx does not expose word/styles.xml or w:outlineLvl, so both are read
// straight from the package.

type stylesXML struct {
	XMLName xml.Name   `xml:"styles"`
	Styles  []styleXML `xml:"style"`
}

type styleXML struct {
	Type    string   `xml:"type,attr"`
	ID      string   `xml:"styleId,attr"`
	Name    *valAttr `xml:"name"`
	Outline *valAttr `xml:"pPr>outlineLvl"`
	Size    *valAttr `xml:"rPr>sz"`
}

type valAttr struct {
	Val string `xml:"val,attr"`
}

type styleInfo struct {
	name    string
	sizePt  *float64
	outline *int
}

// styleTable maps style IDs to their declared attributes, in declaration order.
type styleTable struct {
	byID  map[string]styleInfo
	order []string
}

// lookup resolves a style ID. Unknown IDs are used as the name.
func (t styleTable) lookup(id string) styleInfo {
	if st, ok := t.byID[id]; ok {
		return st
	}
	return styleInfo{name: id}
}

func (t styleTable) defs() []doctree.StyleDef {
	out := make([]doctree.StyleDef, 0, len(t.order))
	for _, id := range t.order {
		st := t.byID[id]
		out = append(out, doctree.StyleDef{Name: st.name, SizePt: st.sizePt})
	}
	return out
}

type packageMeta struct {
	styles  styleTable
	outline []*int // per body-level paragraph, in order
}

func readPackageMeta(ra io.ReaderAt, size int64) (*packageMeta, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}
	meta := &packageMeta{}
	for _, f := range zr.File {
		switch f.Name {
		case "word/styles.xml":
			meta.styles, err = readZipEntry(f, parseStyles)
		case "word/document.xml":
			meta.outline, err = readZipEntry(f, paragraphOutlines)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return meta, nil
}

func readZipEntry[T any](f *zip.File, read func(io.Reader) (T, error)) (T, error) {
	rc, err := f.Open()
	if err != nil {
		var zero T
		return zero, err
	}
	defer rc.Close()
	return read(rc)
}

func parseStyles(r io.Reader) (styleTable, error) {
	var doc stylesXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return styleTable{}, err
	}
	t := styleTable{byID: make(map[string]styleInfo, len(doc.Styles))}
	for _, s := range doc.Styles {
		if s.Type != "paragraph" || s.ID == "" {
			continue
		}
		st := styleInfo{name: s.ID}
		if s.Name != nil && s.Name.Val != "" {
			st.name = s.Name.Val
		}
		if s.Size != nil {
			st.sizePt = halfPoints(s.Size.Val)
		}
		if s.Outline != nil {
			st.outline = outlineLevel(s.Outline.Val)
		}
		if _, dup := t.byID[s.ID]; !dup {
			t.order = append(t.order, s.ID)
		}
		t.byID[s.ID] = st
	}
	return t, nil
}

// paragraphOutlines walks document.xml and returns the w:outlineLvl of each
// body-level paragraph, nil where the paragraph sets none.
func paragraphOutlines(r io.Reader) ([]*int, error) {
	dec := xml.NewDecoder(r)
	var out []*int
	var path []string
	inBody := -1
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			path = append(path, t.Name.Local)
			depth := len(path) - inBody - 1
			switch {
			case inBody < 0 && t.Name.Local == "body":
				inBody = len(path) - 1
			case inBody >= 0 && depth == 1 && t.Name.Local == "p":
				out = append(out, nil)
			case inBody >= 0 && depth == 3 && t.Name.Local == "outlineLvl" &&
				path[inBody+1] == "p" && path[inBody+2] == "pPr":
				out[len(out)-1] = outlineLevel(attr(t, "val"))
			}
		case xml.EndElement:
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
			if len(path) <= inBody {
				inBody = -1
			}
		}
	}
}

// outlineLevel parses a 0-based outline level. Level 9 is body text.
func outlineLevel(val string) *int {
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 || n > 8 {
		return nil
	}
	return doctree.Level(n)
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
