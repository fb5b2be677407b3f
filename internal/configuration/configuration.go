package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/pkg/errors"
)

var defaultConfig = Config{
	APIHost:        "http://localhost:8000",
	RequestTimeout: 120,
	Database:       "~/.config/hubchat/hubchat.db",

	Chat: &ChatConfig{
		PageSize: 50,
	},
}

// Config holds configuration for the hubchat tool.
type Config struct {
	// APIHost is the base URL of the Agent Hub backend.
	APIHost string `json:"api_host"`
	// RequestTimeout in seconds, applied per query.
	RequestTimeout int `json:"request_timeout"`
	// Database is the path of the local sqlite database.
	Database string `json:"database"`

	Chat *ChatConfig `json:"chat"`
}

// ChatConfig holds configuration for chat sessions.
type ChatConfig struct {
	// PageSize used when paging through a chat's history.
	PageSize int `json:"page_size"`
	// DefaultAgents to route queries to when none are specified.
	DefaultAgents []string `json:"default_agents"`
}

// Parse a configuration file, creating it with defaults if absent. User
// values are merged over the defaults, so a partial file is valid.
func Parse(path string) (*Config, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding path")
	}

	if err := initializeIfNotPresent(path); err != nil {
		return nil, errors.Wrap(err, "initializing configuration")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	config := &Config{}
	if err = json.Unmarshal(bytes, config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling into config")
	}
	if err := mergo.Merge(config, defaultConfig); err != nil {
		return nil, errors.Wrap(err, "merging defaults")
	}

	expandedDatabase, err := ExpandPath(config.Database)
	if err != nil {
		return nil, errors.Wrap(err, "expanding database path")
	}
	config.Database = expandedDatabase
	if err := os.MkdirAll(filepath.Dir(config.Database), 0755); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}
	return config, nil
}

// save a configuration file.
func (c *Config) save(path string) error {
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	if err = os.WriteFile(path, bytes, 0644); err != nil {
		return errors.Wrap(err, "writing file")
	}
	return nil
}

// initializeIfNotPresent initializes a config if it does not exist.
func initializeIfNotPresent(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	dir, _ := filepath.Split(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating folders")
	}

	if err := defaultConfig.save(path); err != nil {
		return errors.Wrap(err, "saving default config")
	}
	return nil
}

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolving home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
