package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const ConfigFileName = ".evmex.json"

// MaxRecentSearches bounds the recent-search history kept in the config file.
const MaxRecentSearches = 10

// Config holds the persisted application settings.
type Config struct {
	RPCURL         string   `json:"rpc_url"`
	RecentSearches []string `json:"recent_searches"`
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{RecentSearches: []string{}}
}

func GetConfigPath(customPath string) (string, error) {
	if customPath != "" {
		return customPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := json.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	if cfg.RecentSearches == nil {
		cfg.RecentSearches = []string{}
	}
	if len(cfg.RecentSearches) > MaxRecentSearches {
		cfg.RecentSearches = cfg.RecentSearches[:MaxRecentSearches]
	}
	return cfg, nil
}

func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// AddRecentSearch puts query at the front of the history, removing any
// earlier occurrence and trimming the list to MaxRecentSearches.
func (c *Config) AddRecentSearch(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	searches := make([]string, 0, len(c.RecentSearches)+1)
	searches = append(searches, query)
	for _, s := range c.RecentSearches {
		if s != query {
			searches = append(searches, s)
		}
	}
	if len(searches) > MaxRecentSearches {
		searches = searches[:MaxRecentSearches]
	}
	c.RecentSearches = searches
}

// RemoveRecentSearch deletes the entry at index i. Out-of-range indices
// are ignored.
func (c *Config) RemoveRecentSearch(i int) {
	if i < 0 || i >= len(c.RecentSearches) {
		return
	}
	c.RecentSearches = append(c.RecentSearches[:i], c.RecentSearches[i+1:]...)
}
