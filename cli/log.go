package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/vibe/log"
)

// logFormat configures the logger format as a side effect of parsing via
// encoding.TextUnmarshaler, so that errors reported while kong parses the
// remaining flags already use it.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"${logLevel}"   enum:"${logLevels}"  help:"Set log level."`
	Format     logFormat `default:"${logFormat}"  enum:"${logFormats}" help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                            help:"Set timestamp format."`
	Caller     bool      `default:"false"                              help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                               help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevel":   log.DefaultLevel.String(),
		"logLevels":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormat":  log.DefaultFormat.String(),
		"logFormats": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan performs an early pass over command-line arguments to apply logger
// flags before kong begins parsing, regardless of their position. Boolean
// flags never reach a TextUnmarshaler, so this is their only early hook.
func (f *logConfig) scan(args []string) {
	valued := map[string]func(string){
		"level":  func(v string) { _ = f.Level.UnmarshalText([]byte(v)) },
		"format": func(v string) { _ = f.Format.UnmarshalText([]byte(v)) },
	}

	boolean := map[string]func(bool){
		"pretty": func(b bool) { f.Pretty = b; log.Config(log.WithPretty(b)) },
		"caller": func(b bool) { f.Caller = b; log.Config(log.WithCaller(b)) },
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return
		}

		name, negate := strings.CutPrefix(arg, "--no-log-")
		if !negate {
			var ok bool
			if name, ok = strings.CutPrefix(arg, "--log-"); !ok {
				continue
			}
		}

		name, value, assigned := strings.Cut(name, "=")

		if set, ok := valued[name]; ok && !negate {
			// Consume the next arg as value if not assigned.
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				value = args[i+1]
				i++
			}

			set(value)

			continue
		}

		if set, ok := boolean[name]; ok {
			b := true
			if assigned {
				var err error
				if b, err = strconv.ParseBool(value); err != nil {
					continue
				}
			}

			set(b != negate)
		}
	}
}
