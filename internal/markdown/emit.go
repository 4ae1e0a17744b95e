package markdown

import (
	"regexp"
	"strings"

	"github.com/dgallion1/docx2md/internal/chapter"
	"github.com/dgallion1/docx2md/internal/classify"
)

// Options controls Markdown emission.
type Options struct {
	Frontmatter bool     // Prepend YAML frontmatter
	Extended    bool     // Filename hints and "conf" language on code fences
	NavBasePath string   // Site path prefix for readPrev/nextRead links
	PrevLabel   string   // readPrev label
	NextLabel   string   // nextRead label
	Terms       []string // Software names rendered as code
}

// Emitter turns classified elements into Markdown. It holds no per-call
// state: the same input always yields the same output.
type Emitter struct {
	opts   Options
	inline *Inline
}

// NewEmitter fills in default labels and terms.
func NewEmitter(opts Options) *Emitter {
	if opts.PrevLabel == "" {
		opts.PrevLabel = DefaultPrevLabel
	}
	if opts.NextLabel == "" {
		opts.NextLabel = DefaultNextLabel
	}
	if opts.Terms == nil {
		opts.Terms = DefaultTerms
	}
	return &Emitter{opts: opts, inline: NewInline(opts.Terms)}
}

var leadingNumberRe = regexp.MustCompile(`^\d+[.\s]+`)

// chapterTitle is the chapter heading text without any number the
// segmenter could not parse off, such as "1.Title".
func chapterTitle(info chapter.Info) string {
	if t := leadingNumberRe.ReplaceAllString(info.Title, ""); t != "" {
		return t
	}
	return info.Title
}

// EmitChapter renders one chapter. The chapter heading becomes the single
// H1, without its number. prev and next may be nil.
func (e *Emitter) EmitChapter(ch chapter.Chapter, prev, next *chapter.Chapter) (string, error) {
	var parts []string
	if e.opts.Frontmatter {
		fm := FrontMatter{Title: chapterTitle(ch.Info)}
		if prev != nil {
			fm.ReadPrev = navLink(e.opts.NavBasePath, prev.Filename, PrevPlaceholder, e.opts.PrevLabel)
		}
		if next != nil {
			fm.NextRead = navLink(e.opts.NavBasePath, next.Filename, NextPlaceholder, e.opts.NextLabel)
		}
		s, err := fm.Render()
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}

	els := ch.Elements
	if len(els) > 0 && els[0].Kind == classify.KindHeading {
		parts = append(parts, "# "+chapterTitle(ch.Info))
		els = els[1:]
	}
	parts = append(parts, e.Body(els)...)
	return joinParts(parts), nil
}

// EmitChapters renders every chapter with its neighbours linked.
func (e *Emitter) EmitChapters(chapters []chapter.Chapter) ([]string, error) {
	out := make([]string, len(chapters))
	for i := range chapters {
		var prev, next *chapter.Chapter
		if i > 0 {
			prev = &chapters[i-1]
		}
		if i < len(chapters)-1 {
			next = &chapters[i+1]
		}
		md, err := e.EmitChapter(chapters[i], prev, next)
		if err != nil {
			return nil, err
		}
		out[i] = md
	}
	return out, nil
}

// EmitDocument renders an unsplit document.
func (e *Emitter) EmitDocument(title string, els []classify.Element) (string, error) {
	var parts []string
	if e.opts.Frontmatter {
		s, err := FrontMatter{Title: title}.Render()
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	parts = append(parts, e.Body(els)...)
	return joinParts(parts), nil
}

// Body renders elements as Markdown blocks in order. List and code runs
// are grouped; a caption right after a table is folded into it.
func (e *Emitter) Body(els []classify.Element) []string {
	var parts []string
	for i := 0; i < len(els); {
		el := els[i]
		switch el.Kind {
		case classify.KindHeading:
			parts = append(parts, HeadingLine(el.Level, el.Text))
			i++
		case classify.KindListItem:
			j := runEnd(els, i, classify.KindListItem)
			parts = append(parts, RenderList(els[i:j]))
			i = j
		case classify.KindCode:
			j := runEnd(els, i, classify.KindCode)
			lines := make([]string, 0, j-i)
			for _, c := range els[i:j] {
				lines = append(lines, c.Text)
			}
			parts = append(parts, AggregateCode(lines, e.opts.Extended).String())
			i = j
		case classify.KindTable:
			table := RenderTable(el.Rows)
			i++
			if i < len(els) && isCaptionElement(els[i]) {
				table += "\n\n> " + strings.TrimSpace(els[i].Text)
				i++
			}
			if table != "" {
				parts = append(parts, table)
			}
		case classify.KindNote:
			parts = append(parts, e.note(el.Text))
			i++
		case classify.KindTOCEntry:
			i++
		default:
			if s := e.paragraph(el); s != "" {
				parts = append(parts, s)
			}
			i++
		}
	}
	return parts
}

// HeadingLine renders a heading, dropping a tab-separated page number.
func HeadingLine(level int, text string) string {
	level = max(1, min(level, classify.MaxHeadingLevel))
	return strings.Repeat("#", level) + " " + CleanHeading(text)
}

// CleanHeading drops a trailing page number and normalizes whitespace,
// the same way chapter titles are cleaned.
func CleanHeading(text string) string {
	return chapter.CleanTitle(text)
}

func (e *Emitter) paragraph(el classify.Element) string {
	if len(el.Runs) == 0 {
		return strings.TrimSpace(e.inline.FormatText(el.Text))
	}
	return strings.TrimSpace(e.inline.Format(el.Runs))
}

func (e *Emitter) note(text string) string {
	rest := strings.TrimPrefix(strings.TrimSpace(text), classify.NoteWord)
	rest = strings.TrimLeft(rest, " \t:.-–—")
	if rest == "" {
		return "> _" + classify.NoteWord + "_"
	}
	return "> _" + classify.NoteWord + "_ – " + e.inline.FormatText(rest)
}

func isCaptionElement(el classify.Element) bool {
	switch el.Kind {
	case classify.KindTable, classify.KindTOCEntry:
		return false
	}
	return IsCaption(el.Text)
}

func runEnd(els []classify.Element, i int, kind classify.Kind) int {
	for i < len(els) && els[i].Kind == kind {
		i++
	}
	return i
}

func joinParts(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}
