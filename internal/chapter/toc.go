package chapter

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dgallion1/docx2md/internal/classify"
)

// MatchThreshold is the minimum word-set similarity for a heading to take
// its number from a table-of-contents entry.
const MatchThreshold = 0.5

// TOCEntry is one numbered line of a table of contents.
type TOCEntry struct {
	Number string // e.g. "2.3.1"
	Title  string
}

var (
	tocLineRe       = regexp.MustCompile(`^(\d+(?:\.\d+)*)\.?\s+([^\t]+?)(?:\t+\s*\d+)?\s*$`)
	leadingNumberRe = regexp.MustCompile(`^\d+(?:\.\d+)*\.?\s`)
)

// TOCEntries extracts numbered entries from table-of-contents elements.
func TOCEntries(elements []classify.Element) []TOCEntry {
	var out []TOCEntry
	for _, el := range elements {
		if el.Kind != classify.KindTOCEntry {
			continue
		}
		m := tocLineRe.FindStringSubmatch(strings.TrimSpace(el.Text))
		if m == nil {
			continue
		}
		out = append(out, TOCEntry{Number: m[1], Title: strings.TrimSpace(m[2])})
	}
	return out
}

// ApplyTOCNumbers prefixes un-numbered headings with the number of the
// matching table-of-contents entry. The input slice is not modified.
func ApplyTOCNumbers(elements []classify.Element, toc []TOCEntry) []classify.Element {
	if len(toc) == 0 {
		return elements
	}
	out := make([]classify.Element, len(elements))
	copy(out, elements)
	for i, el := range out {
		if el.Kind != classify.KindHeading || leadingNumberRe.MatchString(el.Text) {
			continue
		}
		if num, ok := matchTOC(CleanTitle(el.Text), entriesForLevel(toc, el.Level)); ok {
			out[i].Text = num + " " + el.Text
		}
	}
	return out
}

// entriesForLevel keeps chapter numbers for level-1 headings and section
// numbers for deeper ones, so a chapter never takes a "N.M" number.
func entriesForLevel(toc []TOCEntry, level int) []TOCEntry {
	var out []TOCEntry
	for _, e := range toc {
		if strings.Contains(e.Number, ".") == (level > 1) {
			out = append(out, e)
		}
	}
	return out
}

func matchTOC(title string, toc []TOCEntry) (string, bool) {
	norm := strings.ToLower(title)
	for _, e := range toc {
		if strings.ToLower(e.Title) == norm {
			return e.Number, true
		}
	}

	words := wordSet(title)
	best, bestScore := "", 0.0
	for _, e := range toc {
		if score := jaccard(words, wordSet(e.Title)); score > bestScore {
			best, bestScore = e.Number, score
		}
	}
	if bestScore >= MatchThreshold {
		return best, true
	}
	return "", false
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[w] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}
