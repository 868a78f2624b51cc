package project

import (
	"context"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/vibe/lang"
	"github.com/ardnew/vibe/pkg"
)

// skipDirs are never searched for scripts.
var skipDirs = []string{"bin", "obj", "node_modules", pkg.GeneratedDir}

// skipDir reports whether discovery skips the directory named name.
func skipDir(name string) bool {
	return slices.Contains(skipDirs, name) ||
		(len(name) > 1 && strings.HasPrefix(name, "."))
}

// IsScript reports whether path names a script file.
func IsScript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), lang.ScriptExtension)
}

// Discover returns the slash-separated paths, relative to root, of every
// script below root in sorted order. Build-output, dependency, generated,
// and hidden directories are skipped.
func Discover(ctx context.Context, root string) ([]string, error) {
	var scripts []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() || !IsScript(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		scripts = append(scripts, filepath.ToSlash(rel))

		return nil
	})
	if err != nil {
		return nil, ErrDiscover.Wrap(err)
	}

	slices.Sort(scripts)

	return scripts, nil
}
