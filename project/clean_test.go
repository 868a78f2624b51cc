package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		ManifestFile: `{"main": "main.csx"}`,
		"main.csx":   "var x = <br/>;\n",
		"lib.csx":    "var y = 1;\n",
	})

	report, err := Build(ctx, root, quiet)
	require.NoError(t, err)

	out := filepath.Join(root, "Vibe_Generated")
	for _, f := range report.Files {
		require.NoError(t, os.Chmod(f.Output, 0o444))
	}
	require.NoError(t, os.Chmod(out, 0o555))

	cleaned, err := Clean(ctx, root, quiet)
	require.NoError(t, err)

	if !cleaned.Found || cleaned.Dir != out {
		t.Errorf("expected %s found, got %+v", out, cleaned)
	}

	// Two generated files and the cache index.
	if cleaned.Files != 3 {
		t.Errorf("expected 3 files removed, got %d", cleaned.Files)
	}

	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected %s removed, got %v", out, err)
	}

	if _, err := os.Stat(filepath.Join(root, "main.csx")); err != nil {
		t.Errorf("expected scripts kept: %v", err)
	}

	report, err = Build(ctx, root, quiet)
	require.NoError(t, err)

	if n := report.Count(StatusGenerated); n != 2 {
		t.Errorf("expected full regeneration after clean, got %v", statuses(report))
	}
}

func TestClean_Missing(t *testing.T) {
	root := t.TempDir()

	report, err := Clean(context.Background(), root, quiet)
	require.NoError(t, err)

	if report.Found || report.Files != 0 {
		t.Errorf("expected nothing found, got %+v", report)
	}
}

func TestClean_OutputDir(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "gen")
	writeTree(t, out, map[string]string{"Generated_A.cs": "class A {}", "sub/x.cs": ""})

	report, err := Clean(context.Background(), root, quiet, WithOutputDir(out))
	require.NoError(t, err)

	if !report.Found || report.Files != 2 {
		t.Errorf("expected 2 files in %s, got %+v", out, report)
	}
}

func TestClean_Refused(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.csx": "var a = 1;\n"})

	tests := []struct {
		name string
		out  string
	}{
		{"root", root},
		{"ancestor", filepath.Dir(root)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Clean(context.Background(), root, quiet, WithOutputDir(tt.out))
			if !errors.Is(err, ErrClean) {
				t.Errorf("expected ErrClean, got %v", err)
			}

			if _, err := os.Stat(filepath.Join(root, "main.csx")); err != nil {
				t.Errorf("expected project kept: %v", err)
			}
		})
	}
}

func TestClean_NotDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"Vibe_Generated": "file"})

	if _, err := Clean(context.Background(), root, quiet); !errors.Is(err, ErrClean) {
		t.Errorf("expected ErrClean, got %v", err)
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		dir, path string
		want      bool
	}{
		{"/a", "/a", true},
		{"/a", "/a/b", true},
		{"/a/b/gen", "/a/b", false},
		{"/a/..b", "/a/..b/c", true},
		{"/x", "/a", false},
	}

	for _, tt := range tests {
		if got := contains(filepath.FromSlash(tt.dir), filepath.FromSlash(tt.path)); got != tt.want {
			t.Errorf("contains(%q, %q): expected %t, got %t", tt.dir, tt.path, tt.want, got)
		}
	}
}
