// Package config loads the `.jsurlxconfig` YAML overlay for
// extract.Options.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sawzeeyy/w3av/internal/extract"
	"github.com/sawzeeyy/w3av/internal/htmlurls"
)

// configFileName is the overlay file Load looks for in a directory.
const configFileName = ".jsurlxconfig"

// Config holds user-overridable extraction settings, loaded from
// .jsurlxconfig in the project root.
type Config struct {
	Extract ExtractConfig `yaml:"extract"`
}

// ExtractConfig mirrors extract.Options' user-facing knobs.
type ExtractConfig struct {
	Placeholder      *string  `yaml:"placeholder"`
	IncludeTemplates *bool    `yaml:"include_templates"`
	MaxNodes         *int     `yaml:"max_nodes"`
	MaxFileSize      *int     `yaml:"max_file_size"`
	HTMLParser       *string  `yaml:"html_parser"`
	SkipSymbols      *bool    `yaml:"skip_symbols"`
	SkipAliases      *bool    `yaml:"skip_aliases"`
	Extensions       []string `yaml:"extensions"`
}

// DefaultConfig returns the zero-value configuration: extract.Options'
// own withDefaults() supplies every concrete default.
func DefaultConfig() *Config {
	return &Config{}
}

// Load reads .jsurlxconfig from dir. A missing file or invalid YAML falls
// back to defaults.
func Load(dir string) *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig()
	}
	return cfg
}

// Apply overlays the config's set fields onto base Options, returning the
// effective Options extract.New should run with.
func (c *Config) Apply(base extract.Options) extract.Options {
	if c.Extract.Placeholder != nil {
		base.Placeholder = *c.Extract.Placeholder
	}
	if c.Extract.IncludeTemplates != nil {
		base.IncludeTemplates = *c.Extract.IncludeTemplates
	}
	if c.Extract.MaxNodes != nil {
		base.MaxNodes = *c.Extract.MaxNodes
	}
	if c.Extract.MaxFileSize != nil {
		base.MaxFileSize = *c.Extract.MaxFileSize
	}
	if c.Extract.HTMLParser != nil {
		base.HTMLParser = htmlurls.Backend(*c.Extract.HTMLParser)
	}
	if c.Extract.SkipSymbols != nil {
		base.SkipSymbols = *c.Extract.SkipSymbols
	}
	if c.Extract.SkipAliases != nil {
		base.SkipAliases = *c.Extract.SkipAliases
	}
	if len(c.Extract.Extensions) > 0 {
		base.Extensions = append(append([]string{}, base.Extensions...), c.Extract.Extensions...)
	}
	return base
}
