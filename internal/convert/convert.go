package convert

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"

	"github.com/dgallion1/docx2md/internal/chapter"
	"github.com/dgallion1/docx2md/internal/classify"
	"github.com/dgallion1/docx2md/internal/config"
	"github.com/dgallion1/docx2md/internal/doctree"
	"github.com/dgallion1/docx2md/internal/fixup"
	"github.com/dgallion1/docx2md/internal/markdown"
	"github.com/dgallion1/docx2md/internal/parser"
)

var (
	// ErrSplitDisabled is returned by Chapters when split mode is off.
	ErrSplitDisabled = errors.New("split mode is disabled")
	// ErrSourceNotFound is returned by ConvertFile for a missing source.
	ErrSourceNotFound = errors.New("source file not found")
)

// Options configures a Converter.
type Options struct {
	Rules                config.Rules
	PDFFallbackPdftotext bool
}

// Rendered is one chapter file.
type Rendered struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
	Markdown string `json:"markdown"`
}

// Result is a converted document: a single Markdown text, or chapter files
// in split mode.
type Result struct {
	Title    string     `json:"title"`
	Markdown string     `json:"markdown,omitempty"`
	Chapters []Rendered `json:"chapters,omitempty"`
}

// Converter runs one document at a time through classification,
// segmentation and emission. It is not safe for concurrent use: the
// segmenter's chapter counter is per-converter state.
type Converter struct {
	opts      Options
	segmenter *chapter.Segmenter
	emitter   *markdown.Emitter
	log       *slog.Logger
}

// New builds a converter from rules. A nil logger discards output.
func New(opts Options, log *slog.Logger) (*Converter, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	rules := opts.Rules

	var slugs map[string]string
	if rules.Slugs != nil {
		slugs = maps.Clone(chapter.DefaultSlugs)
		maps.Copy(slugs, rules.Slugs)
	}
	seg, err := chapter.NewSegmenter(chapter.Options{Excluded: rules.Excluded, Slugs: slugs})
	if err != nil {
		return nil, fmt.Errorf("build segmenter: %w", err)
	}

	return &Converter{
		opts:      opts,
		segmenter: seg,
		emitter: markdown.NewEmitter(markdown.Options{
			Frontmatter: rules.Frontmatter,
			Extended:    rules.Extended,
			NavBasePath: rules.NavBasePath,
			PrevLabel:   rules.PrevLabel,
			NextLabel:   rules.NextLabel,
			Terms:       rules.Terms,
		}),
		log: log,
	}, nil
}

// Elements classifies a document and, when enabled, numbers headings from
// its table of contents.
func (c *Converter) Elements(doc *doctree.Document) []classify.Element {
	els := classify.ClassifyDocument(doc)
	if c.opts.Rules.TOCNumbers {
		if toc := chapter.TOCEntries(els); len(toc) > 0 {
			els = chapter.ApplyTOCNumbers(els, toc)
			c.log.Debug("applied toc numbers", "entries", len(toc))
		}
	}
	c.log.Debug("classified document", "title", doc.Title, "blocks", len(doc.Body), "elements", len(els))
	return els
}

// Convert renders a whole document as one Markdown text.
func (c *Converter) Convert(doc *doctree.Document) (string, error) {
	md, err := c.emitter.EmitDocument(doc.Title, c.Elements(doc))
	if err != nil {
		return "", fmt.Errorf("emit document: %w", err)
	}
	if c.opts.Rules.Fixup {
		md = fixup.Transform(md, 0)
	}
	return md, nil
}

// Chapters renders one Markdown file per chapter, in document order.
func (c *Converter) Chapters(doc *doctree.Document) ([]Rendered, error) {
	if !c.opts.Rules.Split {
		return nil, ErrSplitDisabled
	}
	chapters := c.segmenter.Segment(c.Elements(doc))
	texts, err := c.emitter.EmitChapters(chapters)
	if err != nil {
		return nil, fmt.Errorf("emit chapters: %w", err)
	}

	out := make([]Rendered, len(chapters))
	for i, ch := range chapters {
		md := texts[i]
		if c.opts.Rules.Fixup {
			md = fixup.Transform(md, ch.Info.Number)
		}
		out[i] = Rendered{
			Number:   ch.Info.Number,
			Title:    ch.Info.Title,
			Filename: ch.Filename,
			Markdown: md,
		}
	}
	c.log.Info("segmented document", "title", doc.Title, "chapters", len(out))
	return out, nil
}

// Parse reads a source document with the parser for its extension.
func (c *Converter) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	p, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	if pdf, ok := p.(*parser.PDFParser); ok {
		pdf.FallbackPdftotext = c.opts.PDFFallbackPdftotext
	}
	doc, err := p.Parse(r, filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}

// ConvertReader parses and converts a source in the configured mode.
func (c *Converter) ConvertReader(r io.Reader, filename string) (*Result, error) {
	doc, err := c.Parse(r, filename)
	if err != nil {
		return nil, err
	}
	res := &Result{Title: doc.Title}
	if c.opts.Rules.Split {
		res.Chapters, err = c.Chapters(doc)
	} else {
		res.Markdown, err = c.Convert(doc)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ConvertFile converts a source file on disk.
func (c *Converter) ConvertFile(path string) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("stat source: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	log := c.log.With("source", path)
	log.Info("converting")
	res, err := c.ConvertReader(f, path)
	if err != nil {
		log.Error("conversion failed", "error", err)
		return nil, err
	}
	return res, nil
}
