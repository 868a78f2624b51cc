package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag values from
// the table called name of a YAML document.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve("config"), "/path/to/config.yaml")
//
// Example config file:
//
//	config:
//	  log-level: debug
//	  log_format: json
//	  known-type: [Widget, Gadget]
//	  jobs: 4
//
// Keys may spell flag names with hyphens or underscores. Lists are joined
// with the separator of the flag they resolve. A document that cannot be
// decoded, or that has no such table, resolves nothing. Command-line flags
// override config file values.
func resolve(name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return config{}, nil //nolint:nilerr
		}

		table, ok := doc[name].(map[string]any)
		if !ok {
			return config{}, nil
		}

		cfg := make(config, len(table))
		for key, val := range table {
			cfg[strings.ReplaceAll(key, "_", "-")] = val
		}

		return cfg, nil
	}
}

// config implements [kong.Resolver] over a decoded configuration table
// keyed by hyphenated flag name.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	val, ok := c[flag.Name]
	if !ok || val == nil {
		return nil, nil
	}

	return flagText(val, flag.Tag.Sep), nil
}

// flagText converts a decoded YAML value to the form kong parses: booleans
// as is, everything else as text. Kong requires numbers as strings.
func flagText(val any, sep rune) any {
	switch v := val.(type) {
	case bool, string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		if sep == 0 || sep == -1 {
			sep = ','
		}

		items := make([]string, len(v))
		for i, item := range v {
			items[i] = fmt.Sprint(flagText(item, sep))
		}

		return strings.Join(items, string(sep))
	default:
		return fmt.Sprint(v)
	}
}
