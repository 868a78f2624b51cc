// Package cmd provides the subcommands of the vibe command-line interface.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file. It also names the configuration table in that
	// file.
	ConfigIdentifier = "config"
)
