// Package cmd implements the subcommands of hbs.
package cmd

// Kong variable identifiers set by the top-level command.
var (
	// CacheIdentifier names the variable holding the cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier names the variable holding the config file path.
	ConfigIdentifier = "config"
)
