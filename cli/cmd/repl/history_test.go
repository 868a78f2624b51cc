package repl

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistory_Add(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", baseHistory)
	h := NewHistory(path)

	for _, e := range []HistoryEntry{
		{"var a = <b/>;", modeEval},
		{"show", modeCtrl},
		{"var a = <b/>;", modeEval},
		{"show", modeEval},
		{"show", modeEval},
		{"  ", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q): %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"show", modeCtrl},
		{"var a = <b/>;", modeEval},
		{"show", modeEval},
	}
	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if diff := cmp.Diff(want, reloaded.Entries()); diff != "" {
		t.Errorf("reloaded entries mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	data := "S:var x = 1;\nC:types\nlegacy line\n\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []HistoryEntry{
		{"var x = 1;", modeEval},
		{"types", modeCtrl},
		{"legacy line", modeEval},
	}
	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	if _, err := h.Entry(len(want)); err == nil {
		t.Errorf("expected out of bounds error")
	}
}

func TestHistory_Missing(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "none"))
	if err := h.Load(); err != nil {
		t.Fatalf("expected missing history to load, got %v", err)
	}

	if h.Len() != 0 {
		t.Errorf("expected empty history, got %d entries", h.Len())
	}
}

func TestHistory_Limit(t *testing.T) {
	h := NewHistory("")

	for i := range maxHistory + 5 {
		if err := h.Add(strconv.Itoa(i), modeEval); err != nil {
			t.Fatal(err)
		}
	}

	if h.Len() != maxHistory {
		t.Fatalf("expected %d entries, got %d", maxHistory, h.Len())
	}

	first, _ := h.Entry(0)
	if first.Line != "5" {
		t.Errorf("expected oldest entry %q, got %q", "5", first.Line)
	}
}
