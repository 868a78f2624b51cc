package project

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/vibe/log"
)

// BuildFunc receives the outcome of each build run by [Watch].
type BuildFunc func(Report, error)

// Watch builds root and then rebuilds it whenever a script, the manifest,
// or the descriptor changes, until ctx ends. Bursts of changes closer than
// the debounce interval trigger one rebuild. Every build outcome is passed
// to fn, which may be nil.
//
// Watch returns nil when ctx ends, or an error wrapping [ErrWatch] if the
// watcher cannot be started.
func Watch(ctx context.Context, root string, fn BuildFunc, opts ...Option) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return ErrWatch.Wrap(err)
	}

	cfg := makeConfig(root, opts...)

	logger := cfg.logger
	if logger.Logger == nil {
		logger = log.FromContext(ctx)
	}

	logger = logger.With(slog.String("root", root))

	// Rebuilds share one type cache.
	opts = append(opts, WithTypeCache(cfg.cache), WithLogger(logger))

	if fn == nil {
		fn = func(Report, error) {}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer w.Close()

	descriptor, _ := FindDescriptor(root)

	if err := watchTree(w, root); err != nil {
		return ErrWatch.Wrap(err)
	}

	if descriptor != "" && !within(root, descriptor) {
		if err := w.Add(filepath.Dir(descriptor)); err != nil {
			logger.WarnContext(ctx, "descriptor not watched", slog.Any("error", err))
		}
	}

	fn(Build(ctx, root, opts...))

	var rebuild <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			logger.DebugContext(ctx, "watch stopped")

			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() &&
					!skipDir(fi.Name()) {
					if err := watchTree(w, event.Name); err != nil {
						logger.WarnContext(ctx, "directory not watched",
							slog.String("path", event.Name), slog.Any("error", err))
					}

					// Scripts may have landed before the directory was watched.
					rebuild = time.After(cfg.debounce)

					continue
				}
			}

			if !relevant(event, root, descriptor) {
				continue
			}

			logger.TraceContext(ctx, "change detected",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()),
			)

			rebuild = time.After(cfg.debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			logger.WarnContext(ctx, "watcher error", slog.Any("error", ErrWatch.Wrap(err)))

		case <-rebuild:
			rebuild = nil

			fn(Build(ctx, root, opts...))
		}
	}
}

// watchTree adds dir and every directory below it that discovery searches.
func watchTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}

		return w.Add(path)
	})
}

// relevant reports whether event may change the output of a build.
// Outside root only the descriptor itself is relevant.
func relevant(event fsnotify.Event, root, descriptor string) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	if event.Name == descriptor {
		return true
	}

	if !within(root, event.Name) {
		return false
	}

	name := filepath.Base(event.Name)

	return IsScript(name) ||
		name == ManifestFile ||
		strings.EqualFold(filepath.Ext(name), DescriptorExtension)
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)

	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
