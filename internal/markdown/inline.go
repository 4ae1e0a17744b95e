package markdown

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docx2md/internal/classify"
	"github.com/dgallion1/docx2md/internal/doctree"
)

// DefaultTerms are software names rendered as code wherever they appear.
var DefaultTerms = []string{"Winter CMS", "PostgreSQL", "Redis", "Docker", "Traefik", "Nginx"}

var (
	// Existing code spans and links are left alone.
	protectedRe = regexp.MustCompile("`[^`]*`|\\[[^\\]]*\\]\\([^)]*\\)")
	urlRe       = regexp.MustCompile(`https?://[^\s<>()\[\]*` + "`" + `]+`)
	prepRe      = regexp.MustCompile(`(?i)(?:^|\s)(?:в|во|на|см\.|in|on|at|see)\s`)

	placeholderRe = regexp.MustCompile(`<[A-ZА-ЯЁ][A-ZА-ЯЁ0-9 _-]*>`)
	pathRe        = regexp.MustCompile(`(?:^|[\s(«"])(/[A-Za-z0-9._-]+(?:/[A-Za-z0-9._-]+)*/?)`)
	fileRe        = regexp.MustCompile(`(?:^|[\s(«"])([A-Za-z0-9_][A-Za-z0-9._-]*\.(?:yaml|yml|conf|cfg|ini|json|toml|env|sh|sql|py|service|xml|log))(?:$|[^A-Za-z0-9_])`)
)

// Inline renders paragraph runs as Markdown inline text.
type Inline struct {
	terms []*regexp.Regexp
}

// NewInline returns a formatter that backtick-wraps the given software names.
func NewInline(terms []string) *Inline {
	f := &Inline{}
	for _, t := range terms {
		if t = strings.TrimSpace(t); t == "" {
			continue
		}
		f.terms = append(f.terms, regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(`+regexp.QuoteMeta(t)+`)`))
	}
	return f
}

// Format renders runs in order with no added separators, then links URLs
// and marks technical tokens.
func (f *Inline) Format(runs []doctree.Run) string {
	var b strings.Builder
	for _, r := range mergeRuns(runs) {
		b.WriteString(wrapRun(r))
	}
	return f.FormatText(b.String())
}

// FormatText applies URL linking and token marking to already rendered text.
func (f *Inline) FormatText(s string) string {
	s = mapUnprotected(s, linkURLs)
	return mapUnprotected(s, f.markTokens)
}

// mergeRuns joins adjacent runs that render with the same markers.
func mergeRuns(runs []doctree.Run) []doctree.Run {
	out := make([]doctree.Run, 0, len(runs))
	for _, r := range runs {
		if n := len(out); n > 0 && sameMarkup(out[n-1], r) {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

func sameMarkup(a, b doctree.Run) bool {
	return classify.IsMonospace(a.Font) == classify.IsMonospace(b.Font) &&
		a.Bold == b.Bold && a.Italic == b.Italic
}

func wrapRun(r doctree.Run) string {
	text := r.Text
	if strings.TrimSpace(text) == "" {
		return text
	}
	core := strings.TrimSpace(text)
	switch {
	case classify.IsMonospace(r.Font):
		if strings.Contains(text, "`") {
			return text
		}
		return surround(text, "`")
	case r.Bold:
		if strings.HasPrefix(core, "**") {
			return text
		}
		return surround(text, "**")
	case r.Italic:
		if strings.HasPrefix(core, "*") {
			return text
		}
		return surround(text, "*")
	}
	return text
}

// surround wraps the non-blank core of text, keeping edge whitespace outside.
func surround(text, mark string) string {
	left := len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace))
	right := len(strings.TrimRightFunc(text, unicode.IsSpace))
	return text[:left] + mark + text[left:right] + mark + text[right:]
}

// mapUnprotected applies fn to the text between code spans and links.
func mapUnprotected(s string, fn func(string) string) string {
	var b strings.Builder
	pos := 0
	for _, loc := range protectedRe.FindAllStringIndex(s, -1) {
		b.WriteString(fn(s[pos:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		pos = loc[1]
	}
	b.WriteString(fn(s[pos:]))
	return b.String()
}

// linkURLs turns bare URLs into links. "clause: URL" uses the clause as the
// link text; otherwise the URL labels itself.
func linkURLs(s string) string {
	var b strings.Builder
	pos := 0
	for _, loc := range urlRe.FindAllStringIndex(s, -1) {
		start, end := loc[0], loc[1]
		url := strings.TrimRight(s[start:end], ".,;:!?")
		end = start + len(url)

		prefix := s[pos:start]
		if head, clause, ok := splitClause(prefix); ok {
			b.WriteString(head)
			b.WriteString("[" + clause + "](" + url + ")")
		} else {
			b.WriteString(prefix)
			b.WriteString("[" + url + "](" + url + ")")
		}
		pos = end
	}
	b.WriteString(s[pos:])
	return b.String()
}

// splitClause finds the descriptive clause right before "...: URL". It
// starts after an open parenthesis or, failing that, after the last
// preposition of the current sentence.
func splitClause(prefix string) (head, clause string, ok bool) {
	trimmed := strings.TrimRightFunc(prefix, unicode.IsSpace)
	if !strings.HasSuffix(trimmed, ":") {
		return "", "", false
	}
	body := strings.TrimSuffix(trimmed, ":")

	sentence := 0
	if i := strings.LastIndex(body, ". "); i >= 0 {
		sentence = i + 2
	}
	start := -1
	if i := strings.LastIndex(body, "("); i >= sentence && !strings.Contains(body[i:], ")") {
		start = i + 1
	} else if locs := prepRe.FindAllStringIndex(body[sentence:], -1); len(locs) > 0 {
		start = sentence + locs[len(locs)-1][1]
	}
	if start < 0 {
		return "", "", false
	}
	clause = strings.TrimSpace(body[start:])
	if clause == "" {
		return "", "", false
	}
	return body[:start], clause, true
}

type span struct{ start, end int }

// markTokens backtick-wraps software names, config file names, absolute
// paths and <PLACEHOLDER> tokens.
func (f *Inline) markTokens(s string) string {
	var spans []span
	add := func(re *regexp.Regexp, group int, check func(end int) bool) {
		for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
			st, en := m[2*group], m[2*group+1]
			if st < 0 || (check != nil && !check(en)) {
				continue
			}
			for en > st && strings.ContainsRune(".,", rune(s[en-1])) {
				en--
			}
			spans = append(spans, span{st, en})
		}
	}
	add(placeholderRe, 0, nil)
	add(pathRe, 1, nil)
	add(fileRe, 1, nil)
	for _, re := range f.terms {
		add(re, 1, func(end int) bool { return !wordRuneAt(s, end) })
	}
	if len(spans) == 0 {
		return s
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})
	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		if sp.start < pos {
			continue
		}
		b.WriteString(s[pos:sp.start])
		b.WriteString("`" + s[sp.start:sp.end] + "`")
		pos = sp.end
	}
	b.WriteString(s[pos:])
	return b.String()
}

func wordRuneAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
