package project

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// ManifestFile is the name of the package manifest in a project root.
const ManifestFile = "package.json"

// Manifest holds the fields of the package manifest used by a build.
type Manifest struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Main is the file name of the entry script, e.g. "main.csx".
	Main string `json:"main,omitempty" yaml:"main,omitempty"`
}

// ReadManifest reads the package manifest of root.
//
// A missing manifest is not an error and yields the zero Manifest. A
// manifest that cannot be read or decoded yields the zero Manifest and an
// error wrapping [ErrManifest], which callers may log and ignore.
func ReadManifest(root string) (Manifest, error) {
	path := filepath.Join(root, ManifestFile)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Manifest{}, nil
	}

	if err != nil {
		return Manifest{}, ErrManifest.Wrap(err).With(slog.String("path", path))
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, ErrManifest.Wrap(err).With(slog.String("path", path))
	}

	return m, nil
}
