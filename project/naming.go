package project

import (
	"path"
	"strings"

	"github.com/ardnew/vibe/lang"
)

// EntryClassName is the class name of the entry script before the
// transpiler maps it to the platform's program class.
const EntryClassName = "Main"

// GeneratedPrefix and GeneratedExtension frame generated file names.
const (
	GeneratedPrefix    = "Generated_"
	GeneratedExtension = ".cs"
)

// IsEntry reports whether the script at the slash-separated rel is the
// entry script named by m. A manifest entry without a directory matches a
// script of that name in any directory.
func IsEntry(rel string, m Manifest) bool {
	main := strings.ReplaceAll(strings.TrimSpace(m.Main), `\`, "/")
	if main == "" {
		return false
	}

	if strings.Contains(main, "/") {
		return path.Clean(strings.TrimPrefix(main, "./")) == path.Clean(rel)
	}

	return path.Base(rel) == main
}

// ClassName returns the class name of the script at the slash-separated
// rel: [EntryClassName] for the entry script, or its module name.
func ClassName(rel string, m Manifest) string {
	if IsEntry(rel, m) {
		return EntryClassName
	}

	return lang.ModuleName(rel)
}

// GeneratedName returns the file name generated for class.
func GeneratedName(class string) string {
	return GeneratedPrefix + class + GeneratedExtension
}
