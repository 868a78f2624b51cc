package project

import (
	"os"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/vibe/lang"
	"github.com/ardnew/vibe/pkg"
)

// KnownTypesEnv names the environment variable holding a list of known
// host type names separated by [os.PathListSeparator].
var KnownTypesEnv = pkg.EnvPrefix() + "KNOWN_TYPES"

// KnownTypes merges the PATH-like list value with extra type names and
// returns the distinct identifiers among them, extra names first.
// Entries that are not identifiers are dropped.
func KnownTypes(value string, extra ...string) []string {
	delim := string(os.PathListSeparator)

	merged := mung.Make(
		mung.WithSubjectItems(value),
		mung.WithDelim(delim),
		mung.WithPrefixItems(extra...),
	).String()

	var (
		names []string
		seen  = lang.NewTypeSet()
	)

	for _, name := range strings.Split(merged, delim) {
		name = strings.TrimSpace(name)
		if name == "" || lang.RejectNonIdentifier(name) || seen.Exists(name) {
			continue
		}

		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}

// KnownTypesFromEnv returns [KnownTypes] of the [KnownTypesEnv] value.
func KnownTypesFromEnv(extra ...string) []string {
	return KnownTypes(os.Getenv(KnownTypesEnv), extra...)
}
