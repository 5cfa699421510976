// Package scrape turns news URLs into structured articles using
// per-publisher extraction recipes.
package scrape

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldRule tells the scraper how to pull one field out of a candidate
// article node.
type FieldRule struct {
	// Selector is a CSS selector evaluated relative to the article node.
	Selector string `yaml:"selector"`
	// Kind is one of "text" (first match's text), "attr" (attribute of the
	// first match), "paragraphs" (every match becomes one flat fragment), or
	// "sections" (every match is a section whose ItemSelector matches become
	// nested fragments). Empty means "text".
	Kind string `yaml:"kind,omitempty"`
	// Attr names the attribute read when Kind is "attr".
	Attr string `yaml:"attr,omitempty"`
	// ItemSelector selects fragments inside each section when Kind is
	// "sections".
	ItemSelector string `yaml:"item_selector,omitempty"`
}

// Recipe describes how to extract an article from one publisher's markup.
type Recipe struct {
	// Article selects candidate article nodes; empty means the whole page is
	// the single candidate.
	Article string `yaml:"article,omitempty"`
	// Render requests the headless render service instead of a plain GET,
	// for pages that build their content in the browser.
	Render bool `yaml:"render,omitempty"`
	// Fields maps article field names (title, date, date_fallback, synopsis,
	// content) to extraction rules.
	Fields map[string]FieldRule `yaml:"fields"`
}

// Registry maps publisher names, as they appear in search results, to
// recipes.
type Registry struct {
	recipes map[string]Recipe
}

// NewRegistry creates a registry from an in-memory recipe map.
func NewRegistry(recipes map[string]Recipe) *Registry {
	return &Registry{recipes: recipes}
}

type registryFile struct {
	Recipes map[string]Recipe `yaml:"recipes"`
}

// LoadRegistry reads a YAML recipe file.
func LoadRegistry(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scrape: read recipes: %w", err)
	}
	var f registryFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("scrape: parse recipes: %w", err)
	}
	if len(f.Recipes) == 0 {
		return nil, fmt.Errorf("scrape: recipe file %s defines no recipes", path)
	}
	return &Registry{recipes: f.Recipes}, nil
}

// Lookup resolves the recipe for a source and URL. India Today serves video
// pages with different markup, keyed separately.
func (r *Registry) Lookup(source, pageURL string) (Recipe, string, bool) {
	key := source
	if source == "India Today" && strings.Contains(pageURL, "/video/") {
		key = "India Today Video"
	}
	rec, ok := r.recipes[key]
	return rec, key, ok
}

// Sources lists the publisher names the registry can scrape.
func (r *Registry) Sources() []string {
	out := make([]string, 0, len(r.recipes))
	for k := range r.recipes {
		out = append(out, k)
	}
	return out
}
