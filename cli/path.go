package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/vibe/pkg"
)

const (
	// baseConfig is the base name of the configuration file and the name of
	// its configuration table.
	baseConfig = "config"
	configExt  = ".yaml"
)

var defaultDirMode os.FileMode = 0o700

// basePrefix returns the name of the configuration and cache directories.
//
// By default, basePrefix is the base name of the executable file unless it
// matches one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with pkg.Name
//   - "^\.+" (dot-prefixed names): remove the dot prefix
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))

		for _, sub := range []struct {
			rex *regexp.Regexp
			rep string
		}{
			{regexp.MustCompile(`^__debug_bin\d*$`), pkg.Name},
			{regexp.MustCompile(`^\.+`), ""},
		} {
			id = sub.rex.ReplaceAllString(id, sub.rep)
		}

		if id == "" {
			id = pkg.Name
		}

		return id
	},
)

// userDir returns the basePrefix directory below the directory returned by
// base, falling back to a dot directory in the user's home, then to the
// working directory.
func userDir(base func() (string, error), dot string) string {
	dir, err := base()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, dot)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, basePrefix())
}

// configDir returns the configuration directory path.
var configDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// cacheDir returns the directory of transient files such as the REPL
// history and profiles.
var cacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// configPath returns the path formed by joining the configuration directory
// with elem.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// envPrefix returns the prefix of the environment variables read by kong.
func envPrefix() string {
	return strings.TrimSuffix(pkg.EnvPrefix(), "_")
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
