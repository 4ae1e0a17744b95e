package fixup

import (
	"strings"
)

// StripAnnotations unwraps "::AppAnnotation ... ::" component blocks,
// keeping their content.
func StripAnnotations(md string) string {
	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))
	inFence := false
	for _, line := range lines {
		if isFence(line) {
			inFence = !inFence
		}
		t := strings.TrimSpace(line)
		if !inFence && (strings.HasPrefix(t, "::AppAnnotation") || t == "::") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
