// Package cmd implements the subcommands of the macro command line: run,
// check, tokens, ast, fmt, repl, init, and version.
//
// Each subcommand is a kong command struct with a Run(context.Context)
// method. Commands read and write the [Streams] carried by the context, so
// they may be driven directly in tests.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
