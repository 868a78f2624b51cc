package project

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCache_Key(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a := OpenCache(ctx, dir, CacheOptions{Namespace: "A"})
	b := OpenCache(ctx, dir, CacheOptions{Namespace: "B"})

	k1, data, err := a.Key(strings.NewReader("var x = 1;"))
	require.NoError(t, err)

	if string(data) != "var x = 1;" {
		t.Errorf("expected source bytes returned, got %q", data)
	}

	k2, _, err := a.Key(strings.NewReader("var x = 1;"))
	require.NoError(t, err)

	k3, _, err := a.Key(strings.NewReader("var x = 2;"))
	require.NoError(t, err)

	k4, _, err := b.Key(strings.NewReader("var x = 1;"))
	require.NoError(t, err)

	if k1 != k2 {
		t.Errorf("expected stable key, got %q and %q", k1, k2)
	}

	if k1 == k3 {
		t.Error("expected key to change with content")
	}

	if k1 == k4 {
		t.Error("expected key to change with options")
	}
}

func TestCache_Persist(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	out := filepath.Join(dir, GeneratedName("_a"))

	c := OpenCache(ctx, dir, CacheOptions{})
	c.Store("a.csx", CacheEntry{Key: "k", Class: "_a", Output: out})

	// The output does not exist yet.
	if c.Fresh("a.csx", "k") {
		t.Error("expected entry without output to be stale")
	}

	require.NoError(t, os.WriteFile(out, nil, 0o644))
	require.NoError(t, c.Save(ctx))

	reopened := OpenCache(ctx, dir, CacheOptions{})

	if !reopened.Fresh("a.csx", "k") {
		t.Errorf("expected persisted entry, got %v", reopened.Entries())
	}

	if reopened.Fresh("a.csx", "other") || reopened.Fresh("b.csx", "k") {
		t.Error("expected mismatched key or script to be stale")
	}

	gone := reopened.Prune([]string{"b.csx"})
	if len(gone) != 1 || gone[0].Output != out {
		t.Errorf("expected pruned entry for %q, got %v", out, gone)
	}

	if len(reopened.Entries()) != 0 {
		t.Errorf("expected no entries, got %v", reopened.Entries())
	}
}

func TestCache_IgnoresForeignIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	writeTree(t, dir, map[string]string{
		CacheFile: "version: 0.0.0-old\nentries:\n  a.csx: {key: k, class: _a, output: x}\n",
	})

	if got := OpenCache(ctx, dir, CacheOptions{}).Entries(); len(got) != 0 {
		t.Errorf("expected index of another version ignored, got %v", got)
	}

	writeTree(t, dir, map[string]string{CacheFile: "entries: [unterminated"})

	if got := OpenCache(ctx, dir, CacheOptions{}).Entries(); len(got) != 0 {
		t.Errorf("expected malformed index ignored, got %v", got)
	}
}

func TestWriter(t *testing.T) {
	w := Writer{Dir: filepath.Join(t.TempDir(), "out")}

	path, err := w.Write("Main", "class Program {}")
	require.NoError(t, err)

	if path != w.Path("Main") || filepath.Base(path) != "Generated_Main.cs" {
		t.Errorf("unexpected path %q", path)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	if string(data) != "class Program {}" {
		t.Errorf("unexpected content %q", data)
	}

	entries, err := os.ReadDir(w.Dir)
	require.NoError(t, err)

	if len(entries) != 1 {
		t.Errorf("expected only the generated file, got %d entries", len(entries))
	}

	require.NoError(t, w.Remove(path))
	require.NoError(t, w.Remove(path))
}
