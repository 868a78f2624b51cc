// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("transpiled", slog.String("file", path))
//	logger.Error("build failed", slog.Any("error", err))
//
// # Configuration
//
// Loggers are configured at creation time using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger from an existing configuration, and
// [Config] reconfigures the package default logger used by the package-level
// functions such as [Info] and [ErrorContext].
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Messages below the configured level are
// discarded. Trace is reserved for per-node parser and generator detail.
//
// # Output
//
// Two formats are supported, [FormatText] (default) and [FormatJSON]. With
// [WithPretty] enabled (default), records are styled with lipgloss when
// the output is a terminal and written as plain text otherwise.
//
// # Context
//
// [WithContext] attaches a logger to a [context.Context], and [FromContext]
// retrieves it, falling back to the default logger. Context-unaware methods
// log with the context returned by [DefaultContextProvider].
package log
