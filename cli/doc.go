// Package cli contains the command line interface for macro.
//
// # Commands
//
//	macro [run] [flags] <source>   Run a script; '-' reads stdin
//	macro check <source>           Report static analysis violations
//	macro fmt <source>             Print or rewrite a script in canonical form
//	macro ast <source>             Print the syntax tree as a tree, JSON, or YAML
//	macro tokens <source>          Print the token stream
//	macro repl [source]            Start an interactive session
//	macro init                     Write the current flags to the config file
//	macro version                  Print version
//
// Arguments are passed to a script as name=value pairs:
//
//	macro run -a name=world -a count=3 greet.macro
//
// # Configuration
//
// Flags may also be set in $XDG_CONFIG_HOME/macro/config.yaml. Keys are flag
// names; nested mappings are joined with a hyphen:
//
//	log:
//	  level: debug
//	  format: json
//
// Command-line flags override config file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o macro .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/macro/pprof)
package cli
