package catalog

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed themes.yaml
var themesYAML []byte

// Theme is a named visual style template selectable for a print.
type Theme struct {
	Slug        string   `yaml:"slug" json:"slug"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags"`
	HeroImage   string   `yaml:"hero_image" json:"heroImage"`
}

type themesFile struct {
	Themes []Theme `yaml:"themes"`
}

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Themes holds the parsed theme catalog.
type Themes struct {
	themes []Theme
	bySlug map[string]Theme
}

// LoadThemes parses and validates a YAML theme catalog.
func LoadThemes(content []byte) (*Themes, error) {
	var file themesFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse theme catalog: %w", err)
	}
	if len(file.Themes) == 0 {
		return nil, fmt.Errorf("theme catalog is empty")
	}

	bySlug := make(map[string]Theme, len(file.Themes))
	for i, theme := range file.Themes {
		if !slugRegex.MatchString(theme.Slug) {
			return nil, fmt.Errorf("theme %d: invalid slug %q", i, theme.Slug)
		}
		if strings.TrimSpace(theme.Name) == "" {
			return nil, fmt.Errorf("theme %q: name is required", theme.Slug)
		}
		if _, dup := bySlug[theme.Slug]; dup {
			return nil, fmt.Errorf("duplicate theme slug: %s", theme.Slug)
		}
		bySlug[theme.Slug] = theme
	}

	return &Themes{themes: file.Themes, bySlug: bySlug}, nil
}

// LoadDefaultThemes loads the embedded theme catalog.
func LoadDefaultThemes() (*Themes, error) {
	return LoadThemes(themesYAML)
}

// All returns the themes in catalog order.
func (t *Themes) All() []Theme {
	out := make([]Theme, len(t.themes))
	copy(out, t.themes)
	return out
}

// BySlug resolves a theme by its slug.
func (t *Themes) BySlug(slug string) (Theme, bool) {
	theme, ok := t.bySlug[slug]
	return theme, ok
}
