// Package catalog holds the service offerings and the UI translation
// dictionaries. Both are parsed once from the embedded catalog.yaml and are
// read-only afterwards; callers receive copies.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Service is a catalog entry as seeded into the services table.
type Service struct {
	Name string `yaml:"name" json:"name"`
	Icon string `yaml:"icon" json:"icon"`
	Key  string `yaml:"key" json:"key"`
}

type document struct {
	DefaultLanguage string                       `yaml:"default_language"`
	Services        []Service                    `yaml:"services"`
	Translations    map[string]map[string]string `yaml:"translations"`
}

// Catalog is immutable once built.
type Catalog struct {
	services     []Service
	translations map[language.Tag]map[string]string
	tags         []language.Tag
	matcher      language.Matcher
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse builds a catalog from YAML. The default language is listed first
// so the matcher falls back to it.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(doc.Services) == 0 {
		return nil, fmt.Errorf("parse catalog: no services defined")
	}
	seen := make(map[string]bool, len(doc.Services))
	for _, s := range doc.Services {
		if s.Name == "" {
			return nil, fmt.Errorf("parse catalog: service without a name")
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("parse catalog: duplicate service %q", s.Name)
		}
		seen[s.Name] = true
	}

	def, err := language.Parse(doc.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("parse catalog: default language %q: %w", doc.DefaultLanguage, err)
	}
	if _, ok := doc.Translations[doc.DefaultLanguage]; !ok {
		return nil, fmt.Errorf("parse catalog: no translations for default language %q", doc.DefaultLanguage)
	}

	c := &Catalog{
		services:     append([]Service(nil), doc.Services...),
		translations: make(map[language.Tag]map[string]string, len(doc.Translations)),
		tags:         []language.Tag{def},
	}

	// map iteration order is random; keep the tag list stable
	names := make([]string, 0, len(doc.Translations))
	for name := range doc.Translations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("parse catalog: language %q: %w", name, err)
		}
		c.translations[tag] = doc.Translations[name]
		if tag != def {
			c.tags = append(c.tags, tag)
		}
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// Services returns the offerings in catalog order.
func (c *Catalog) Services() []Service {
	return append([]Service(nil), c.services...)
}

// Languages lists the supported language tags, default first.
func (c *Catalog) Languages() []language.Tag {
	return append([]language.Tag(nil), c.tags...)
}

// Match picks the best supported language for the given preferences, which
// may be plain tags ("es") or Accept-Language values ("es-MX,es;q=0.9").
func (c *Catalog) Match(prefs ...string) language.Tag {
	_, idx := language.MatchStrings(c.matcher, prefs...)
	return c.tags[idx]
}

// Translations returns a copy of the dictionary for tag, falling back to
// the default language for missing keys.
func (c *Catalog) Translations(tag language.Tag) map[string]string {
	def := c.translations[c.tags[0]]
	out := make(map[string]string, len(def))
	for k, v := range def {
		out[k] = v
	}
	for k, v := range c.translations[tag] {
		out[k] = v
	}
	return out
}

// Translate looks up one key, falling back to the default language and
// then to the key itself.
func (c *Catalog) Translate(tag language.Tag, key string) string {
	if v, ok := c.translations[tag][key]; ok {
		return v
	}
	if v, ok := c.translations[c.tags[0]][key]; ok {
		return v
	}
	return key
}
