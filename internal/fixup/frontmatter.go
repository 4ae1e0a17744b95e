package fixup

import (
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// SplitFrontmatter separates a leading YAML frontmatter block (delimiters
// included) from the body. Without a valid block front is empty.
func SplitFrontmatter(md string) (front, body string) {
	var meta map[string]any
	rest, err := frontmatter.Parse(strings.NewReader(md), &meta, yamlFormat)
	if err != nil || len(rest) == len(md) {
		return "", md
	}
	return md[:len(md)-len(rest)], string(rest)
}

// Title returns the frontmatter title, if any.
func Title(md string) string {
	var meta struct {
		Title string `yaml:"title"`
	}
	if _, err := frontmatter.Parse(strings.NewReader(md), &meta, yamlFormat); err != nil {
		return ""
	}
	return meta.Title
}

// FixFrontmatter removes blank lines inside the frontmatter block.
func FixFrontmatter(md string) string {
	front, body := SplitFrontmatter(md)
	if front == "" {
		return md
	}
	var lines []string
	for _, l := range strings.Split(strings.TrimRight(front, "\n"), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n") + "\n" + body
}
