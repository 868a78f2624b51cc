// Package cli contains the command line interface for vibe.
//
// # Usage
//
// Without a subcommand, vibe builds the project in the current directory:
//
//	vibe                       # same as: vibe build .
//	vibe build ./app -j 4      # transpile with four workers
//	vibe watch ./app           # rebuild on change until interrupted
//	vibe clean ./app           # remove generated files and the cache
//	vibe gen ui/card.csx       # print a generated unit
//	vibe tree -F json page.csx # print a markup tree
//	vibe repl                  # interactive session
//
// # Configuration
//
// Flag values are resolved, in order of precedence, from the command line,
// from environment variables named with the VIBE_ prefix (VIBE_LOG_LEVEL),
// and from the "config" table of a YAML file in the user configuration
// directory. [cmd.Init] writes that file from the current flag values:
//
//	config:
//	  log-level: debug
//	  log-format: text
//
// Keys may use hyphens or underscores.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o vibe .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/vibe/pprof)
package cli
