package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/vibe/log"
	"github.com/ardnew/vibe/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalContext(
		ctx,
		yaml.MapSlice{{Key: ConfigIdentifier, Value: i.flagValues(ktx)}},
		yaml.Indent(defaultConfigIndent),
	)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err).With(slog.String("file", confPath))
	}

	if err := os.WriteFile(confPath, data, 0o600); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// flagValues returns the current value of every application flag that
// belongs in a configuration file, in declaration order.
func (i *Init) flagValues(ktx *kong.Context) yaml.MapSlice {
	var values yaml.MapSlice

	ignore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v := configValue(ktx.FlagValue(flag)); v != nil {
			values = append(values, yaml.MapItem{Key: flag.Name, Value: v})
		}
	}

	return values
}

// configValue converts a flag value to its configuration file form, or nil
// if the flag is unset. Values of named types are written as text.
func configValue(val any) any {
	switch v := val.(type) {
	case nil:
		return nil
	case bool, int, int64, uint, uint64, float64:
		return v
	case string:
		if v == "" {
			return nil
		}

		return v
	case []string:
		if len(v) == 0 {
			return nil
		}

		return v
	case fmt.Stringer:
		return configValue(v.String())
	default:
		return configValue(fmt.Sprint(v))
	}
}
