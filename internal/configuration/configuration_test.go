package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("creates a default config when absent", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.json")

		config, err := Parse(path)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000", config.APIHost)
		assert.Equal(t, 120, config.RequestTimeout)
		assert.Equal(t, 50, config.Chat.PageSize)

		// The file was written for the user to edit.
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("merges user values over defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"api_host": "https://hub.example.com",
			"database": "`+filepath.ToSlash(filepath.Join(dir, "hub.db"))+`",
			"chat": {"default_agents": ["researcher"]}
		}`), 0644))

		config, err := Parse(path)
		require.NoError(t, err)
		assert.Equal(t, "https://hub.example.com", config.APIHost)
		assert.Equal(t, []string{"researcher"}, config.Chat.DefaultAgents)
		// Unspecified fields fall back to defaults.
		assert.Equal(t, 120, config.RequestTimeout)
		assert.Equal(t, 50, config.Chat.PageSize)
	})

	t.Run("creates the database directory", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.json")
		dbPath := filepath.Join(dir, "nested", "deep", "hub.db")
		require.NoError(t, os.WriteFile(path, []byte(`{"database": "`+filepath.ToSlash(dbPath)+`"}`), 0644))

		config, err := Parse(path)
		require.NoError(t, err)
		assert.Equal(t, dbPath, config.Database)
		info, err := os.Stat(filepath.Dir(dbPath))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.json")
		require.NoError(t, os.WriteFile(path, []byte("{nope"), 0644))

		_, err := Parse(path)
		assert.Error(t, err)
	})
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := ExpandPath("~/.config/hubchat/config.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/hubchat/config.json"), expanded)

	unchanged, err := ExpandPath("/etc/hubchat.json")
	require.NoError(t, err)
	assert.Equal(t, "/etc/hubchat.json", unchanged)
}
