package fixup

// Step is one Markdown rewrite.
type Step func(md string) string

// Transform runs the formatting fixes over one emitted chapter. A chapter
// number of zero skips heading renumbering.
func Transform(md string, chapter int) string {
	steps := []Step{
		FixFrontmatter,
		StripAnnotations,
		ConvertListRuns,
		FixTableCaptions,
	}
	if chapter > 0 {
		steps = append(steps, func(s string) string { return RestoreNumbering(s, chapter) })
	}
	for _, step := range steps {
		md = step(md)
	}
	return md
}
