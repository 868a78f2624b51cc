package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

const (
	baseHistory = "history.utf8"
	maxHistory  = 1000
)

// modePrefix tags each persisted history line with its input mode.
var modePrefix = map[inputMode]string{
	modeEval: "S:",
	modeCtrl: "C:",
}

// HistoryEntry represents a single history entry with its mode.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

func (e HistoryEntry) encode() string { return modePrefix[e.Mode] + e.Line }

func decodeHistoryEntry(line string) HistoryEntry {
	for mode, prefix := range modePrefix {
		if s, ok := strings.CutPrefix(line, prefix); ok {
			return HistoryEntry{Line: s, Mode: mode}
		}
	}

	return HistoryEntry{Line: line, Mode: modeEval}
}

// History manages input history with file persistence. At most maxHistory
// entries are kept, and each line occurs at most once per mode.
type History struct {
	path    string
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory creates a new History instance with the given file path.
// An empty path keeps history in memory only.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load reads history entries from the history file. A missing file is an
// empty history.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil

	if h.path == "" {
		return nil
	}

	file, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			h.entries = append(h.entries, decodeHistoryEntry(line))
		}
	}

	if len(h.entries) > maxHistory {
		h.entries = slices.Clip(h.entries[len(h.entries)-maxHistory:])
	}

	return scanner.Err()
}

// Add appends line to the history in the given mode, removing an earlier
// duplicate, and persists the change.
func (h *History) Add(line string, mode inputMode) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entry := HistoryEntry{Line: line, Mode: mode}

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return nil
	}

	i := slices.Index(h.entries, entry)
	if i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
	}

	h.entries = append(h.entries, entry)

	if len(h.entries) > maxHistory || i >= 0 {
		if len(h.entries) > maxHistory {
			h.entries = slices.Delete(h.entries, 0, len(h.entries)-maxHistory)
		}

		return h.rewrite()
	}

	return h.append(entry)
}

// Entry retrieves a historic entry by index. Index 0 is the oldest entry.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of history entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all history entries.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// Must be called with h.mu held.
func (h *History) append(entry HistoryEntry) error {
	if h.path == "" {
		return nil
	}

	file, err := h.open(os.O_APPEND | os.O_CREATE | os.O_WRONLY)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(entry.encode() + "\n")

	return err
}

// Must be called with h.mu held.
func (h *History) rewrite() error {
	if h.path == "" {
		return nil
	}

	file, err := h.open(os.O_WRONLY | os.O_CREATE | os.O_TRUNC)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, entry := range h.entries {
		if _, err := w.WriteString(entry.encode() + "\n"); err != nil {
			return err
		}
	}

	return w.Flush()
}

func (h *History) open(flag int) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return nil, err
	}

	return os.OpenFile(h.path, flag, 0o600)
}
