package project

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	dirMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o644
)

// Writer writes generated compilation units into a directory.
type Writer struct {
	Dir string
}

// Path returns the path of the file generated for class.
func (w Writer) Path(class string) string {
	return filepath.Join(w.Dir, GeneratedName(class))
}

// Write replaces the file generated for class with text and returns its
// path. Readers of the file never observe a partial write.
func (w Writer) Write(class, text string) (string, error) {
	path := w.Path(class)

	if err := writeFile(path, []byte(text)); err != nil {
		return "", err
	}

	return path, nil
}

// Remove deletes a generated file. A missing file is not an error.
func (w Writer) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ErrWrite.Wrap(err).With(slog.String("path", path))
	}

	return nil
}

// writeFile writes data to a temporary file beside path and renames it
// into place.
func writeFile(path string, data []byte) error {
	fail := func(err error) error {
		return ErrWrite.Wrap(err).With(slog.String("path", path))
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fail(err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fail(err)
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

		return fail(err)
	}

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()

		return fail(err)
	}

	if err := tmp.Close(); err != nil {
		return fail(err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fail(err)
	}

	return nil
}
