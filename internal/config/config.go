package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	Schema  int    `json:"schema"`
	BaseURL string `json:"base_url"`
	Token   string `json:"token,omitempty"`

	// TimeoutSeconds bounds a single HTTP request, not a whole transfer.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`

	LogFile  string `json:"log_file,omitempty"`
	LogLevel string `json:"log_level,omitempty"`

	HistoryPath string `json:"history_path,omitempty"`

	PageSize int `json:"page_size,omitempty"`

	// ChunkThresholdBytes selects the multipart upload path for files at or
	// above this size. ChunkSizeBytes is the size of each part.
	ChunkThresholdBytes int64 `json:"chunk_threshold_bytes,omitempty"`
	ChunkSizeBytes      int64 `json:"chunk_size_bytes,omitempty"`
}

const CurrentConfigSchema = 1

func DefaultConfig() *Config {
	return &Config{
		Schema:              CurrentConfigSchema,
		BaseURL:             "http://localhost:8080",
		TimeoutSeconds:      30,
		LogLevel:            "info",
		PageSize:            200,
		ChunkThresholdBytes: 32 << 20,
		ChunkSizeBytes:      8 << 20,
	}
}

func Load(configPath string) (*Config, error) {
	paths := getConfigPaths(configPath)

	for _, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		var cfg Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}

		cfg.applyDefaults()
		return &cfg, nil
	}

	cfg := DefaultConfig()
	cfg.applyDefaults()
	return cfg, nil
}

func getConfigPaths(explicit string) []string {
	home, _ := os.UserHomeDir()

	var paths []string

	if explicit != "" {
		paths = append(paths, explicit)
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "cloud-dist", "config.json"))

	return paths
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()

	// The token may live in the environment instead of on disk.
	if env := os.Getenv("CLOUD_DIST_TOKEN"); env != "" {
		c.Token = env
	}
	if env := os.Getenv("CLOUD_DIST_BASE_URL"); env != "" {
		c.BaseURL = env
	}

	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = def.TimeoutSeconds
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.PageSize <= 0 {
		c.PageSize = def.PageSize
	}
	if c.ChunkThresholdBytes <= 0 {
		c.ChunkThresholdBytes = def.ChunkThresholdBytes
	}
	if c.ChunkSizeBytes <= 0 {
		c.ChunkSizeBytes = def.ChunkSizeBytes
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.StateDir(), "cloud-dist.log")
	}
	if c.HistoryPath == "" {
		c.HistoryPath = filepath.Join(c.StateDir(), "history.db")
	}
}

func (c *Config) StateDir() string {
	if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
		return filepath.Join(xdgState, "cloud-dist")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "cloud-dist")
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func Save(cfg *Config, configPath string) error {
	if configPath == "" {
		configPath = getConfigPaths("")[0]
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0o600)
}
