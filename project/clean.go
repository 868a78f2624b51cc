package project

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ardnew/vibe/log"
)

// CleanReport summarizes a [Clean].
type CleanReport struct {
	Dir     string        `json:"dir"     yaml:"dir"`
	Found   bool          `json:"found"   yaml:"found"`
	Files   int           `json:"files"   yaml:"files"`
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// LogValue implements slog.LogValuer.
func (r CleanReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dir", r.Dir),
		slog.Bool("found", r.Found),
		slog.Int("files", r.Files),
		slog.Duration("elapsed", r.Elapsed),
	)
}

// Clean removes the output directory of the project at root, including
// every generated file and the cache index. Read-only entries are made
// writable first. A missing directory is not an error.
//
// Only [WithLogger] and [WithOutputDir] affect Clean. An output directory
// that is root or one of its ancestors is refused.
func Clean(ctx context.Context, root string, opts ...Option) (CleanReport, error) {
	start := time.Now()

	root, err := filepath.Abs(root)
	if err != nil {
		return CleanReport{}, ErrClean.Wrap(err)
	}

	cfg := makeConfig(root, opts...)

	logger := cfg.logger
	if logger.Logger == nil {
		logger = log.FromContext(ctx)
	}

	dir, err := filepath.Abs(cfg.outDir)
	if err != nil {
		return CleanReport{}, ErrClean.Wrap(err)
	}

	report := CleanReport{Dir: dir}
	fail := func(err error) (CleanReport, error) {
		report.Elapsed = time.Since(start)

		return report, ErrClean.Wrap(err).With(slog.String("dir", dir))
	}

	if contains(dir, root) {
		return fail(errors.New("output directory holds the project root"))
	}

	info, err := os.Lstat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		report.Elapsed = time.Since(start)
		logger.DebugContext(ctx, "output not found", slog.String("dir", dir))

		return report, nil
	case err != nil:
		return fail(err)
	case !info.IsDir():
		return fail(errors.New("not a directory"))
	}

	report.Found = true

	if report.Files, err = unlock(ctx, dir); err != nil {
		return fail(err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fail(err)
	}

	report.Elapsed = time.Since(start)

	logger.InfoContext(ctx, "output wiped", slog.Any("report", report))

	return report, nil
}

// contains reports whether dir is path or one of its ancestors.
func contains(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) &&
		!filepath.IsAbs(rel))
}

// unlock makes every entry below dir writable by its owner and returns the
// number of regular files.
func unlock(ctx context.Context, dir string) (int, error) {
	files := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		if d.Type().IsRegular() {
			files++
		}

		if mode := info.Mode().Perm(); mode&0o200 == 0 {
			return os.Chmod(path, mode|0o200)
		}

		return nil
	})

	return files, err
}
