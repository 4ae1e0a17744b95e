package fixup

import (
	"strings"
)

// FixTableCaptions moves a "Таблица ..." caption line that sits right above
// a pipe table to below it, as a block quote.
func FixTableCaptions(md string) string {
	lines := strings.Split(md, "\n")
	var out []string
	inFence := false
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if isFence(line) {
			inFence = !inFence
		}
		if inFence || !strings.HasPrefix(strings.TrimSpace(line), "Таблица") {
			out = append(out, line)
			continue
		}

		start := i + 1
		for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
			start++
		}
		if start >= len(lines) || !isTableLine(lines[start]) {
			out = append(out, line)
			continue
		}
		end := start
		for end < len(lines) && isTableLine(lines[end]) {
			end++
		}
		out = append(out, lines[start:end]...)
		out = append(out, "", "> "+strings.TrimSpace(line))
		i = end - 1
	}
	return strings.Join(out, "\n")
}

func isTableLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}
