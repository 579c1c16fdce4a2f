package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
)

const baseHistory = "history.utf8"

// Entry is one line of history and the mode it was entered in.
type Entry struct {
	Line string
	Mode inputMode
}

func (e Entry) encode() string { return e.Mode.tag() + ":" + e.Line }

func decode(s string) (Entry, bool) {
	tag, line, ok := strings.Cut(s, ":")
	if !ok || line == "" {
		return Entry{}, false
	}

	for _, mode := range []inputMode{modeEval, modeCtrl} {
		if mode.tag() == tag {
			return Entry{Line: line, Mode: mode}, true
		}
	}

	return Entry{}, false
}

// History is a list of inputs persisted to a file, oldest first.
// Entering an input again moves it to the end. A History with an empty path
// is kept in memory only.
type History struct {
	path    string
	mu      sync.RWMutex
	entries []Entry
}

// NewHistory returns an empty history backed by the file at path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with those in the history file. A missing file
// holds no entries; malformed lines are skipped.
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
		if e, ok := decode(strings.TrimSpace(scanner.Text())); ok {
			h.entries = append(h.entries, e)
		}
	}

	return scanner.Err()
}

// Add records line as entered in mode.
func (h *History) Add(line string, mode inputMode) error {
	e := Entry{Line: strings.TrimSpace(line), Mode: mode}
	if e.Line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == e {
		return nil
	}

	i := slices.Index(h.entries, e)
	if i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
	}

	h.entries = append(h.entries, e)

	if i >= 0 {
		return h.save()
	}

	return h.append(e)
}

// Entry returns the entry at index i, where 0 is the oldest.
func (h *History) Entry(i int) (Entry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return Entry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Search returns the index of the first entry satisfying match, starting
// after index from and moving by step. It reports false when none is found.
func (h *History) Search(from, step int, match func(Entry) bool) (int, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := from + step; i >= 0 && i < len(h.entries); i += step {
		if match == nil || match(h.entries[i]) {
			return i, true
		}
	}

	return 0, false
}

// append writes e to the end of the history file. Must be called with h.mu
// held.
func (h *History) append(e Entry) error {
	if h.path == "" {
		return nil
	}

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(e.encode() + "\n")

	return err
}

// save rewrites the history file with the current entries. Must be called
// with h.mu held.
func (h *History) save() error {
	if h.path == "" {
		return nil
	}

	var b strings.Builder

	for _, e := range h.entries {
		b.WriteString(e.encode())
		b.WriteByte('\n')
	}

	return os.WriteFile(h.path, []byte(b.String()), 0o600)
}
