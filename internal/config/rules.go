package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"gopkg.in/yaml.v3"
)

// Rules are the conversion settings a documentation site tunes per
// document set. Nil slices and maps keep the built-in defaults.
type Rules struct {
	Frontmatter bool `yaml:"frontmatter"`
	Split       bool `yaml:"split"`
	Extended    bool `yaml:"extended"`
	Fixup       bool `yaml:"fixup"`
	TOCNumbers  bool `yaml:"toc_numbers"`

	NavBasePath string `yaml:"nav_base_path"`
	PrevLabel   string `yaml:"prev_label"`
	NextLabel   string `yaml:"next_label"`

	Terms    []string          `yaml:"terms"`    // Software names rendered as code
	Excluded []string          `yaml:"excluded"` // Banner patterns that never open a chapter
	Slugs    map[string]string `yaml:"slugs"`    // Chapter title -> slug, merged over the defaults
}

// DefaultRules returns the rules used when no file is given.
func DefaultRules() Rules {
	return Rules{TOCNumbers: true}
}

// LoadRules reads a YAML rules file over DefaultRules. An empty path
// returns the defaults. Unknown keys are an error.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML rules over DefaultRules.
func ParseRules(data []byte) (Rules, error) {
	rules := DefaultRules()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil && !errors.Is(err, io.EOF) {
		return DefaultRules(), fmt.Errorf("parse rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return DefaultRules(), fmt.Errorf("invalid rules: %w", err)
	}
	return rules, nil
}

var absPathRe = regexp.MustCompile(`^/`)

// Validate checks the values a rules file can get wrong: the navigation
// base path, banner patterns and custom slugs.
func (r Rules) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NavBasePath, validation.Match(absPathRe).Error("must start with /")),
		validation.Field(&r.Terms, validation.Each(validation.Required)),
		validation.Field(&r.Excluded, validation.Each(validation.By(func(value any) error {
			if _, err := regexp.Compile(value.(string)); err != nil {
				return validation.NewError("rules.excluded.pattern", err.Error())
			}
			return nil
		}))),
		validation.Field(&r.Slugs, validation.Each(validation.Required, validation.By(func(value any) error {
			if !slug.IsValid(value.(string)) {
				return validation.NewError("rules.slugs.invalid", "must be a lowercase slug")
			}
			return nil
		}))),
	)
}
