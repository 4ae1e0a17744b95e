package classify

import (
	"regexp"
	"strings"

	"github.com/dgallion1/docx2md/internal/doctree"
)

// NoteWord opens a note paragraph.
const NoteWord = "Примечание"

// PointsPerIndent is the left indent, in points, of one list nesting level.
const PointsPerIndent = 36

var (
	bulletPrefixes = []string{"- ", "• ", "* ", "− "}
	letterEnumRe   = regexp.MustCompile(`^[a-zа-я]\)`)
	numberEnumRe   = regexp.MustCompile(`^\d+\)`)
)

// codePrefixes are command and keyword openings that mark a code line.
var codePrefixes = []string{
	"sudo ", "docker ", "systemctl ", "$ ", "# ", "git ",
	"python ", "npm ", "pip ",
	"CREATE ", "SELECT ", "INSERT ",
	"function ", "class ", "def ", "import ",
	"version:", "services:", "{", "}",
}

// IsTOCEntry reports whether the paragraph belongs to a table of contents.
func IsTOCEntry(p *doctree.Paragraph) bool {
	style := strings.ToLower(p.Style)
	return strings.HasPrefix(style, "toc ") || style == "toc heading" || style == "toc"
}

// IsListItem reports whether the paragraph is a list item and its nesting level.
func IsListItem(p *doctree.Paragraph, text string) (indent int, ok bool) {
	style := strings.ToLower(p.Style)
	switch {
	case strings.Contains(style, "list"), strings.Contains(style, "bullet"):
		ok = true
	case hasAnyPrefix(text, bulletPrefixes):
		ok = true
	case letterEnumRe.MatchString(text), numberEnumRe.MatchString(text):
		ok = true
	}
	if !ok {
		return 0, false
	}
	if p.LeftIndentPt != nil && *p.LeftIndentPt > 0 {
		indent = int(*p.LeftIndentPt / PointsPerIndent)
	}
	return indent, true
}

// IsCode reports whether the paragraph is a line of code.
func IsCode(p *doctree.Paragraph, text string) bool {
	if strings.Contains(p.Style, "Code") {
		return true
	}
	if allMonospace(p.Runs) {
		return true
	}
	return hasAnyPrefix(text, codePrefixes)
}

// IsNote reports whether the text is a note.
func IsNote(text string) bool {
	return strings.HasPrefix(text, NoteWord)
}

// IsMonospace reports whether a font family name is a fixed-width font.
func IsMonospace(font string) bool {
	return strings.Contains(font, "Courier") || strings.Contains(font, "Mono")
}

func allMonospace(runs []doctree.Run) bool {
	seen := false
	for _, r := range runs {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		if !IsMonospace(r.Font) {
			return false
		}
		seen = true
	}
	return seen
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
