// Package config manages reflex configuration: TOML files resolved by
// walking up the directory tree, REFLEX_-prefixed environment
// variables, and code-level defaults, in that precedence order.
package config

import (
	"time"

	"github.com/ontoframe/reflex/contexts"
)

// Config represents the core reflex configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" toml:"database"`
	Contexts ContextsConfig `mapstructure:"contexts" toml:"contexts"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer" toml:"analyzer"`
	Source   SourceConfig   `mapstructure:"source" toml:"source"`
	Logging  LoggingConfig  `mapstructure:"logging" toml:"logging"`
}

// DatabaseConfig configures the change-log SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// ContextsConfig declares the processing contexts and their static
// transition graph. An empty Definitions list falls back to the
// built-in meta/domain/instance trio, fully connected.
type ContextsConfig struct {
	Default     string              `mapstructure:"default" toml:"default"`
	Definitions []ContextDefinition `mapstructure:"definitions" toml:"definitions"`
}

// ContextDefinition mirrors contexts.Definition for configuration.
// Empty Facets = all facets permitted; empty Transitions = fully
// connected from this context.
type ContextDefinition struct {
	Name        string   `mapstructure:"name" toml:"name"`
	Facets      []string `mapstructure:"facets" toml:"facets"`
	Transitions []string `mapstructure:"transitions" toml:"transitions"`
}

// AnalyzerConfig configures transaction reconstruction defaults.
type AnalyzerConfig struct {
	MaxGapMS int `mapstructure:"max_gap_ms" toml:"max_gap_ms"` // grouping window (default: 1000)
}

// MaxGap returns the grouping window as a duration.
func (a AnalyzerConfig) MaxGap() time.Duration {
	if a.MaxGapMS <= 0 {
		return time.Second
	}
	return time.Duration(a.MaxGapMS) * time.Millisecond
}

// SourceConfig configures the file-based facet source.
type SourceConfig struct {
	Dir string `mapstructure:"dir" toml:"dir"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	JSON bool `mapstructure:"json" toml:"json"`
}

// Registry builds the context registry from configuration. Unset
// definitions fall back to the built-in defaults.
func (c *Config) Registry() (*contexts.Registry, error) {
	defs := make([]contexts.Definition, 0, len(c.Contexts.Definitions))
	for _, def := range c.Contexts.Definitions {
		defs = append(defs, contexts.Definition{
			Name:        def.Name,
			Facets:      def.Facets,
			Transitions: def.Transitions,
		})
	}
	return contexts.NewRegistry(c.Contexts.Default, defs)
}
