package log

import (
	"io"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level slog.Level

const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

var levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

// Levels returns an iterator over the names of all defined log levels.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, level := range levels {
			if !yield(level.String()) {
				return
			}
		}
	}
}

// String returns the lowercase name of the level. Levels between the named
// ones are written relative to the nearest lower name, e.g. "info+2".
func (l Level) String() string {
	if l < LevelDebug {
		return relativeLevel("trace", l-LevelTrace)
	}

	return strings.ToLower(slog.Level(l).String())
}

func relativeLevel(name string, off Level) string {
	switch {
	case off == 0:
		return name
	case off > 0:
		return name + "+" + strconv.Itoa(int(off))
	default:
		return name + strconv.Itoa(int(off))
	}
}

// ParseLevel parses a string representation of a log level.
// Valid level strings are "trace", "debug", "info", "warn", and "error",
// ignoring case, optionally followed by a "+" or "-" and an integer offset.
// Unrecognized strings yield [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)

	if strings.EqualFold(s, "trace") {
		return LevelTrace
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatText

var formatNames = map[Format]string{
	FormatText: "text",
	FormatJSON: "json",
}

// Formats returns an iterator over the names of all defined log formats.
func Formats() iter.Seq[string] {
	return slices.Values([]string{FormatText.String(), FormatJSON.String()})
}

// String returns the name of the format.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}

	return "format(" + strconv.Itoa(int(f)) + ")"
}

// ParseFormat parses a string representation of a log format.
// Valid format strings are "json" and "text".
func ParseFormat(s string) Format {
	for f, name := range formatNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return f
		}
	}

	return DefaultFormat
}

// FormatTime defines a function that formats a time.Time value as a string.
type FormatTime func(time.Time) string

// DefaultTimeLayout is the default used when no valid time layout is provided.
const DefaultTimeLayout = time.RFC3339

// DefaultCaller is the default setting for including caller information
// in log output.
const DefaultCaller = false

// DefaultPretty is the default setting for pretty printing log output.
const DefaultPretty = true

// config holds the configuration options for a Logger.
type config struct {
	mutex      *sync.RWMutex
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

// makeConfig creates a new config with defaults applied, overridden by any
// provided options.
func makeConfig(w io.Writer, opts ...Option) config {
	c := config{mutex: &sync.RWMutex{}}

	return apply(apply(c, WithDefaults(w)), opts...)
}

// clone creates a copy of the config with a separate mutex and applies any
// provided options.
func (c config) clone(opts ...Option) config {
	c.mutex = &sync.RWMutex{}

	return apply(c, opts...)
}

// handlerOptions returns the slog options shared by every handler.
func (c config) handlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource: c.caller,
		Level:     slog.Level(c.level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					formatted := c.formatTime(t)
					if formatted == "" {
						return slog.Attr{}
					}

					a.Value = slog.StringValue(formatted)
				}

			case slog.LevelKey:
				// "TRACE" instead of "DEBUG-4"
				if level, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(strings.ToUpper(Level(level).String()))
				}
			}

			return a
		},
	}
}

// handler creates a slog.Handler based on the current configuration.
func (c config) handler() slog.Handler {
	opts := c.handlerOptions()

	switch {
	case c.format != FormatText && c.format != FormatJSON:
		return slog.DiscardHandler
	case c.pretty:
		return newPrettyHandler(c.output, c.format, c.formatTime, opts)
	case c.format == FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	default:
		return slog.NewTextHandler(c.output, opts)
	}
}

// update returns an Option that applies fn to the config while holding its
// write lock.
func update(fn func(*config)) Option {
	return func(c config) config {
		if c.mutex == nil {
			c.mutex = &sync.RWMutex{}
		} else {
			c.mutex.Lock()
			defer c.mutex.Unlock()
		}

		fn(&c)

		return c
	}
}

// WithDefaults returns a functional option that sets the default configuration.
// The default configuration is [DefaultTimeLayout], [DefaultLevel],
// [DefaultFormat], [DefaultPretty], and caller info disabled.
func WithDefaults(w io.Writer) Option {
	return update(func(c *config) {
		if w == nil {
			w = io.Discard
		}

		c.output = w
		c.formatTime = makeFormatTimeFunc(DefaultTimeLayout)
		c.level = DefaultLevel
		c.format = DefaultFormat
		c.caller = DefaultCaller
		c.pretty = DefaultPretty
	})
}

// WithOutput returns a functional option that sets the output [io.Writer]
// for log messages.
// If a nil writer is provided, [io.Discard] is used instead.
func WithOutput(w io.Writer) Option {
	return update(func(c *config) {
		if w == nil {
			w = io.Discard
		}

		c.output = w
	})
}

// WithLevel returns a functional option that sets the minimum log level.
// Messages below this level are discarded.
func WithLevel(level Level) Option {
	return update(func(c *config) { c.level = level })
}

// WithFormat returns a functional option that sets the output format.
func WithFormat(format Format) Option {
	return update(func(c *config) { c.format = format })
}

// WithTimeLayout returns a functional option that sets the layout used to
// format log timestamps.
//
// The layout string can be one of the named layouts from the [time] package
// (for example, "RFC3339" or "Kitchen"), a short alias such as "ms" or
// "none", or a custom layout passed verbatim to [time.Time.Format].
// An empty layout disables timestamps.
func WithTimeLayout(layout string) Option {
	format := makeFormatTimeFunc(layout)

	return update(func(c *config) { c.formatTime = format })
}

// WithCaller returns a functional option that controls whether caller
// information is included in log output.
func WithCaller(enable bool) Option {
	return update(func(c *config) { c.caller = enable })
}

// WithPretty returns a functional option that controls whether log output
// is styled for a terminal. Styling is dropped automatically when the
// output is not a terminal.
func WithPretty(enable bool) Option {
	return update(func(c *config) { c.pretty = enable })
}

// timeLayout maps named layouts to their corresponding time.Time constants.
var timeLayout = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"datetime":    time.DateTime,
	"timeonly":    time.TimeOnly,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"ms":          time.StampMilli,
	"stampmicro":  time.StampMicro,
	"us":          time.StampMicro,
	"none":        "",
}

func makeFormatTimeFunc(layout string) FormatTime {
	key := strings.Map(
		func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}

			return -1
		},
		strings.ToLower(layout),
	)

	if key == "" {
		return func(time.Time) string { return "" }
	}

	if std, ok := timeLayout[key]; ok {
		if std == "" {
			return func(time.Time) string { return "" }
		}

		layout = std
	}

	return func(t time.Time) string { return t.Format(layout) }
}
