package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "reflex.db")

	// Context defaults. Definitions are not defaulted here: an empty
	// list falls back to the built-in trio in Config.Registry, since
	// viper cannot default a slice of tables cleanly.
	v.SetDefault("contexts.default", "meta")

	// Analyzer defaults
	v.SetDefault("analyzer.max_gap_ms", 1000) // same-context grouping window

	// Facet source defaults
	v.SetDefault("source.dir", "entities")

	// Logging defaults
	v.SetDefault("logging.json", false)
}
