package fixup

import (
	"strings"
)

// ConvertParagraphsToLists turns blank-line separated paragraphs that read
// as an enumeration ("a;", "b;", "c.") into a bullet list. Anything else is
// returned unchanged.
func ConvertParagraphsToLists(text string) string {
	if strings.HasPrefix(strings.TrimSpace(text), "- ") {
		return text
	}
	paras := strings.Split(strings.TrimSpace(text), "\n\n")
	if len(paras) < 2 {
		return text
	}
	items := make([]string, len(paras))
	for i, p := range paras {
		p = strings.TrimSpace(p)
		last := i == len(paras)-1
		if p == "" || (!last && !strings.HasSuffix(p, ";")) || (last && !strings.HasSuffix(p, ".")) {
			return text
		}
		items[i] = "- " + p
	}
	return strings.Join(items, "\n")
}

// ConvertListRuns applies ConvertParagraphsToLists to every run of plain
// paragraphs in a document: one or more paragraphs ending in ';' closed by
// one ending in '.'.
func ConvertListRuns(md string) string {
	blocks := splitBlocks(md)
	var out []string
	for i := 0; i < len(blocks); {
		j := i
		for j < len(blocks) && isPlainBlock(blocks[j]) && strings.HasSuffix(blocks[j], ";") {
			j++
		}
		if j > i && j < len(blocks) && isPlainBlock(blocks[j]) && strings.HasSuffix(blocks[j], ".") {
			out = append(out, ConvertParagraphsToLists(strings.Join(blocks[i:j+1], "\n\n")))
			i = j + 1
			continue
		}
		if j == i {
			j++
		}
		out = append(out, blocks[i:j]...)
		i = j
	}
	return strings.Join(out, "\n\n") + trailingNewlines(md)
}

// splitBlocks splits md on blank lines, keeping code fences whole.
func splitBlocks(md string) []string {
	var blocks []string
	var cur []string
	inFence := false
	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, strings.Join(cur, "\n"))
			cur = nil
		}
	}
	for _, line := range strings.Split(strings.TrimRight(md, "\n"), "\n") {
		if isFence(line) {
			inFence = !inFence
		}
		if !inFence && strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return blocks
}

// isPlainBlock reports whether a block is a single-line text paragraph.
func isPlainBlock(b string) bool {
	if b == "" || strings.Contains(b, "\n") {
		return false
	}
	switch b[0] {
	case '#', '-', '|', '>', '`', '*', '+', ' ', '\t':
		return false
	}
	return true
}

func isFence(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}

func trailingNewlines(md string) string {
	if strings.HasSuffix(md, "\n") {
		return "\n"
	}
	return ""
}
