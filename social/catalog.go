package social

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

var defaultCatalog = mustLoadCatalog(defaultTemplates)

// Style is one tone of voice. Variation i uses Styles[i].
type Style struct {
	Name  string `yaml:"name"`
	Intro string `yaml:"intro"`
}

// EmojiSet holds emoji alternatives keyed by experience, remote/onsite and job type
type EmojiSet struct {
	Experience map[string][]string `yaml:"experience"`
	Location   map[string][]string `yaml:"location"`
	Type       map[string][]string `yaml:"type"`
}

// HashtagSet maps job attributes to hashtags
type HashtagSet struct {
	Fixed      []string          `yaml:"fixed"`
	Category   map[string]string `yaml:"category"`
	Experience map[string]string `yaml:"experience"`
	Remote     string            `yaml:"remote"`
}

// PlatformRules shapes the output for one network
type PlatformRules struct {
	MaxLength     int  `yaml:"maxLength"`
	Emoji         bool `yaml:"emoji"`
	Hashtags      bool `yaml:"hashtags"`
	SummaryLength int  `yaml:"summaryLength"`
}

// Catalog is the full set of post fragments
type Catalog struct {
	Styles       []Style                      `yaml:"styles"`
	Emoji        EmojiSet                     `yaml:"emoji"`
	Descriptions map[string]map[string]string `yaml:"descriptions"`
	TechPrefix   string                       `yaml:"techPrefix"`
	MaxTechTags  int                          `yaml:"maxTechTags"`
	CTAs         []string                     `yaml:"ctas"`
	Hashtags     HashtagSet                   `yaml:"hashtags"`
	Platforms    map[Platform]PlatformRules   `yaml:"platforms"`
}

// LoadCatalog parses a YAML catalog
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse social catalog: %w", err)
	}
	if len(c.Styles) == 0 {
		return nil, errors.New("social catalog has no styles")
	}
	if len(c.CTAs) == 0 {
		return nil, errors.New("social catalog has no calls to action")
	}
	if len(c.Platforms) == 0 {
		return nil, errors.New("social catalog has no platforms")
	}
	return &c, nil
}

func mustLoadCatalog(data []byte) *Catalog {
	c, err := LoadCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog returns the embedded catalog
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// description picks the category sentence for a style, falling back to the
// default category
func (c *Catalog) description(category, style string) string {
	if byStyle, ok := c.Descriptions[category]; ok {
		if s := byStyle[style]; s != "" {
			return s
		}
	}
	return c.Descriptions["default"][style]
}

// pick returns options[i] modulo len, or "" when there are none
func pick(options []string, i int) string {
	if len(options) == 0 {
		return ""
	}
	return options[i%len(options)]
}
