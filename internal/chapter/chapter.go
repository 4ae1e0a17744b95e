package chapter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docx2md/internal/classify"
)

// Info identifies a chapter.
type Info struct {
	Number    int
	Title     string // Title without the leading number
	FullTitle string // Cleaned heading text
}

// Chapter is one top-level division of a document and its elements,
// starting with the chapter heading itself.
type Chapter struct {
	Info     Info
	Filename string
	Elements []classify.Element
}

// MinTitleLength is the shortest heading that can open a chapter.
const MinTitleLength = 5

// DefaultExcluded matches front-matter banners that are styled as top-level
// headings but never start a chapter.
var DefaultExcluded = []string{
	`АО "НТЦ ИТ РОСА"`,
	`ПРОГРАММНЫЙ КОМПЛЕКС`,
	`ПОРТАЛ РАЗРАБОТЧИКА`,
	`Версия \d+`,
	`Руководство`,
	`АННОТАЦИЯ`,
}

var (
	subsectionRe = regexp.MustCompile(`^\d+\.\d+`)
	tabsRe       = regexp.MustCompile(`\t+`)
	pageNumberRe = regexp.MustCompile(`\s+\d+\s*$`)
	spacesRe     = regexp.MustCompile(`\s+`)
	numberDotRe  = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)
	numberRe     = regexp.MustCompile(`^(\d+)\s+(.+)$`)
)

// Options configures a Segmenter. Zero values select the defaults.
type Options struct {
	Excluded []string          // Case-insensitive regexps
	Slugs    map[string]string // Known title -> slug
}

// Segmenter splits a classified element stream into chapters. It owns the
// fallback counter for chapters without a number; the counter restarts with
// every Segment call.
type Segmenter struct {
	excluded []*regexp.Regexp
	slugs    map[string]string
	counter  int
}

// NewSegmenter compiles the exclusion patterns.
func NewSegmenter(opts Options) (*Segmenter, error) {
	patterns := opts.Excluded
	if patterns == nil {
		patterns = DefaultExcluded
	}
	s := &Segmenter{slugs: opts.Slugs}
	if s.slugs == nil {
		s.slugs = DefaultSlugs
	}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile excluded pattern %q: %w", p, err)
		}
		s.excluded = append(s.excluded, re)
	}
	return s, nil
}

// IsChapterHeading reports whether a level-1 heading text opens a chapter.
func (s *Segmenter) IsChapterHeading(text string) bool {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinTitleLength {
		return false
	}
	if subsectionRe.MatchString(text) {
		return false
	}
	for _, re := range s.excluded {
		if re.MatchString(text) {
			return false
		}
	}
	return true
}

// Segment partitions elements into chapters. Elements before the first
// chapter heading (title page, table of contents) are dropped.
func (s *Segmenter) Segment(elements []classify.Element) []Chapter {
	s.counter = 0

	var chapters []Chapter
	var cur *Chapter
	for _, el := range elements {
		if el.Kind == classify.KindHeading && el.Level == 1 && s.IsChapterHeading(el.Text) {
			if cur != nil {
				chapters = append(chapters, *cur)
			}
			info := s.ExtractInfo(el.Text)
			cur = &Chapter{
				Info:     info,
				Filename: Filename(info, s.slugs),
				Elements: []classify.Element{el},
			}
			continue
		}
		if cur != nil {
			cur.Elements = append(cur.Elements, el)
		}
	}
	if cur != nil {
		chapters = append(chapters, *cur)
	}
	return dedupe(chapters)
}

// ExtractInfo parses the chapter number and title from heading text. A
// heading without a number takes the next value of the fallback counter.
func (s *Segmenter) ExtractInfo(text string) Info {
	clean := CleanTitle(text)
	for _, re := range []*regexp.Regexp{numberDotRe, numberRe} {
		if m := re.FindStringSubmatch(clean); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n > 0 {
				return Info{Number: n, Title: m[2], FullTitle: clean}
			}
		}
	}
	s.counter++
	return Info{Number: s.counter, Title: clean, FullTitle: clean}
}

// CleanTitle collapses tabs, drops a trailing page number and normalizes
// whitespace.
func CleanTitle(text string) string {
	text = tabsRe.ReplaceAllString(text, " ")
	text = pageNumberRe.ReplaceAllString(text, "")
	text = spacesRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// dedupe keeps one chapter per filename, preferring the one with more
// content. Table-of-contents echoes of a chapter carry only the heading.
func dedupe(chapters []Chapter) []Chapter {
	best := make(map[string]int, len(chapters))
	for i, ch := range chapters {
		j, ok := best[ch.Filename]
		if !ok || len(ch.Elements) >= len(chapters[j].Elements) {
			best[ch.Filename] = i
		}
	}
	if len(best) == len(chapters) {
		return chapters
	}
	out := make([]Chapter, 0, len(best))
	for i, ch := range chapters {
		if best[ch.Filename] == i {
			out = append(out, ch)
		}
	}
	return out
}
