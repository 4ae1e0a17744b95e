package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default navigation labels and link placeholders.
const (
	DefaultPrevLabel = "Предыдущий раздел"
	DefaultNextLabel = "Следующий раздел"
	PrevPlaceholder  = "/path/to/prev"
	NextPlaceholder  = "/path/to/next"
)

// NavLink points at a neighbouring chapter.
type NavLink struct {
	To    string `yaml:"to"`
	Label string `yaml:"label"`
}

// FrontMatter is the YAML header of an emitted file.
type FrontMatter struct {
	Title    string   `yaml:"title"`
	ReadPrev *NavLink `yaml:"readPrev,omitempty"`
	NextRead *NavLink `yaml:"nextRead,omitempty"`
}

// Render encodes the frontmatter between "---" lines, with no blank lines.
func (fm FrontMatter) Render() (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}

	var lines []string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return "---\n" + strings.Join(lines, "\n") + "\n---", nil
}

// navLink builds a link to a neighbouring file. Without a base path the
// link is a placeholder for the site author to fill in.
func navLink(basePath, filename, placeholder, label string) *NavLink {
	to := placeholder
	if basePath != "" && filename != "" {
		to = strings.TrimRight(basePath, "/") + "/" + strings.TrimSuffix(filename, ".md")
	}
	return &NavLink{To: to, Label: label}
}
