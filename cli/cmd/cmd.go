package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/klauspost/readahead"
)

type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer for command output.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// source is one script named on the command line.
type source struct {
	// Path is the cleaned absolute path, or stdinSource.
	Path string
}

// Stdin reports whether s reads from standard input.
func (s source) Stdin() bool { return s.Path == stdinSource }

// ReadAll reads the whole source.
func (s source) ReadAll() ([]byte, error) {
	if s.Stdin() {
		return io.ReadAll(os.Stdin)
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ra, err := readahead.NewReaderSize(f, 4, 64<<10)
	if err != nil {
		return nil, err
	}
	defer ra.Close()

	return io.ReadAll(ra)
}

// fileKey uniquely identifies a file by its device and inode numbers, which
// is stable across symlinks and relative paths.
type fileKey struct {
	dev uint64
	ino uint64
}

func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// uniqueSources resolves the named sources, dropping duplicates of the same
// file. Every "-", or a path naming the same file as stdin, collapses into a
// single stdin source placed last.
func uniqueSources(names []string) ([]source, error) {
	var (
		out      []source
		hasStdin bool
		seen     = make(map[fileKey]struct{})
	)

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, stdinOK := makeFileKey(stdinInfo)

	for _, name := range names {
		if name == stdinSource {
			hasStdin = true

			continue
		}

		abs, err := filepath.Abs(name)
		if err == nil {
			abs, err = filepath.EvalSymlinks(abs)
		}

		if err != nil {
			return nil, ErrSource.Wrap(err)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, ErrSource.Wrap(err)
		}

		if key, ok := makeFileKey(info); ok {
			if stdinOK && key == stdinKey {
				hasStdin = true

				continue
			}

			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		out = append(out, source{Path: abs})
	}

	if hasStdin {
		out = append(out, source{Path: stdinSource})
	}

	return out, nil
}
