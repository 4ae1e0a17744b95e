package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docx2md/internal/classify"
	"github.com/dgallion1/docx2md/internal/doctree"
)

// ErrUnsupportedFormat is returned for files no parser can read.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Parser reads raw document bytes into a flat document body.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".docx":     true,
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
	".txt":      true,
	".csv":      true,
	".pdf":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return &DOCXParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Title derives a document title from its filename.
func Title(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// listStyle is the paragraph style given to list items by the readers of
// formats with explicit list markup.
const listStyle = "List Paragraph"

// codeStyle marks preformatted lines.
const codeStyle = "Code"

func listItem(text string, depth int, runs []doctree.Run) *doctree.Paragraph {
	return &doctree.Paragraph{
		Text:         text,
		Runs:         runs,
		Style:        listStyle,
		LeftIndentPt: doctree.Pt(float64(depth * classify.PointsPerIndent)),
	}
}

func runsText(runs []doctree.Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return strings.TrimSpace(b.String())
}
