package project

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.csx":                   "",
		"pages/home.csx":             "",
		"pages/About.CSX":            "",
		"pages/notes.txt":            "",
		"components/ui/card.csx":     "",
		"bin/Debug/skip.csx":         "",
		"obj/skip.csx":               "",
		"node_modules/pkg/skip.csx":  "",
		"Vibe_Generated/skip.csx":    "",
		".git/skip.csx":              "",
		"components/.cache/skip.csx": "",
	})

	got, err := Discover(context.Background(), root)
	require.NoError(t, err)

	want := []string{
		"components/ui/card.csx",
		"main.csx",
		"pages/About.CSX",
		"pages/home.csx",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scripts mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscover_Canceled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.csx": ""})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Discover(ctx, root)
	if !errors.Is(err, ErrDiscover) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled discovery, got %v", err)
	}
}
