package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T) *History {
	t.Helper()
	t.Setenv("TMPDIR", t.TempDir())
	return New()
}

func TestAdd(t *testing.T) {
	t.Run("records entries", func(t *testing.T) {
		h := newTestHistory(t)
		h.Add("first")
		h.Add("second")

		entry, ok := h.Previous("")
		require.True(t, ok)
		assert.Equal(t, "second", entry)
	})

	t.Run("collapses consecutive duplicates", func(t *testing.T) {
		h := newTestHistory(t)
		h.Add("same")
		h.Add("same")

		entry, ok := h.Previous("")
		require.True(t, ok)
		assert.Equal(t, "same", entry)
		_, ok = h.Previous("")
		assert.False(t, ok)
	})

	t.Run("ignores blank entries", func(t *testing.T) {
		h := newTestHistory(t)
		h.Add("   ")
		_, ok := h.Previous("")
		assert.False(t, ok)
	})
}

func TestNavigation(t *testing.T) {
	t.Run("previous walks backwards and stops at the oldest", func(t *testing.T) {
		h := newTestHistory(t)
		h.Add("one")
		h.Add("two")

		entry, ok := h.Previous("")
		require.True(t, ok)
		assert.Equal(t, "two", entry)

		entry, ok = h.Previous("")
		require.True(t, ok)
		assert.Equal(t, "one", entry)

		entry, ok = h.Previous("")
		assert.False(t, ok)
		assert.Equal(t, "one", entry)
	})

	t.Run("next restores the stashed input past the newest entry", func(t *testing.T) {
		h := newTestHistory(t)
		h.Add("one")
		h.Add("two")

		_, _ = h.Previous("draft in progress")
		_, _ = h.Previous("")

		entry, ok := h.Next()
		require.True(t, ok)
		assert.Equal(t, "two", entry)

		entry, ok = h.Next()
		require.True(t, ok)
		assert.Equal(t, "draft in progress", entry)

		_, ok = h.Next()
		assert.False(t, ok)
	})

	t.Run("reset abandons navigation", func(t *testing.T) {
		h := newTestHistory(t)
		h.Add("one")
		_, _ = h.Previous("draft")
		h.Reset()
		_, ok := h.Next()
		assert.False(t, ok)
	})
}

func TestPersistence(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	h := New()
	h.Add("multi\nline entry")
	h.Add("plain entry")

	// A fresh instance reloads from the same backing file.
	reloaded := New()
	entry, ok := reloaded.Previous("")
	require.True(t, ok)
	assert.Equal(t, "plain entry", entry)

	entry, ok = reloaded.Previous("")
	require.True(t, ok)
	assert.Equal(t, "multi\nline entry", entry)
}

func TestEscapeRoundtrip(t *testing.T) {
	for _, s := range []string{
		"plain",
		"with\nnewline",
		`with \n literal backslash`,
		"trailing backslash \\",
	} {
		assert.Equal(t, s, unescape(escape(s)))
	}
}
