package history

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	fileName   = "hubchat_input_history"
	maxEntries = 1000
)

// History holds submitted messages so the session input can navigate back
// through them. Entries are mirrored to a file under the temp dir; history
// persistence failures are silent.
type History struct {
	mu      sync.Mutex
	entries []string
	// index is the navigation position; -1 means "at the new input".
	index int
	// stash holds the in-progress input while navigating.
	stash string
	path  string
}

// New loads history from its backing file.
func New() *History {
	h := &History{
		index: -1,
		path:  filepath.Join(os.TempDir(), fileName),
	}
	h.load()
	return h
}

func (h *History) load() {
	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := unescape(scanner.Text()); line != "" {
			h.entries = append(h.entries, line)
		}
	}
	h.trim()
}

func (h *History) flush() {
	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Create(h.path)
	if err != nil {
		return
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, entry := range h.entries {
		writer.WriteString(escape(entry) + "\n")
	}
	writer.Flush()
}

// trim drops the oldest entries beyond maxEntries. Caller holds the lock.
func (h *History) trim() {
	if len(h.entries) > maxEntries {
		h.entries = h.entries[len(h.entries)-maxEntries:]
	}
}

// Add records a submitted message. Consecutive duplicates collapse.
func (h *History) Add(entry string) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return
	}

	h.mu.Lock()
	h.index = -1
	h.stash = ""
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == entry {
		h.mu.Unlock()
		return
	}
	h.entries = append(h.entries, entry)
	h.trim()
	h.mu.Unlock()

	h.flush()
}

// Previous steps back in history. currentInput is stashed on the first
// step so Next can restore it.
func (h *History) Previous(currentInput string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.index == -1:
		h.stash = currentInput
		h.index = len(h.entries) - 1
	case h.index > 0:
		h.index--
	default:
		return h.entries[0], false
	}
	return h.entries[h.index], true
}

// Next steps forward in history, restoring the stashed input past the
// newest entry.
func (h *History) Next() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index == -1 {
		return "", false
	}
	h.index++
	if h.index >= len(h.entries) {
		h.index = -1
		return h.stash, true
	}
	return h.entries[h.index], true
}

// Reset abandons navigation; call when the input is edited.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.index = -1
	h.stash = ""
}

// Entries are stored one per line; embedded newlines are escaped.

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

// unescape decodes in a single pass; sequential replacements cannot
// round-trip a literal backslash-n.
func unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
