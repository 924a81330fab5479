// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all MaterialVault configuration.
type Config struct {
	// Content
	ContentDir   string
	ScanInterval time.Duration

	// Metadata sidecar storage
	MetadataDir string

	// Settings persistence
	SettingsFile string

	// Thumbnails
	ThumbCacheMax int
	ThumbWorkers  int

	// Logging
	LogLevel  string
	LogFormat string

	// Metrics (watch mode)
	MetricsAddr string
}

// Load reads configuration from environment variables with defaults.
// A .env file in the working directory is honored if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ContentDir:    envOr("MV_CONTENT_DIR", ""),
		ScanInterval:  envDuration("MV_SCAN_INTERVAL", 5*time.Second),
		MetadataDir:   envOr("MV_METADATA_DIR", ""),
		SettingsFile:  envOr("MV_SETTINGS_FILE", ""),
		ThumbCacheMax: envInt("MV_THUMB_CACHE_MAX", 1000),
		ThumbWorkers:  envInt("MV_THUMB_WORKERS", 2),
		LogLevel:      envOr("MV_LOG_LEVEL", "info"),
		LogFormat:     envOr("MV_LOG_FORMAT", "console"),
		MetricsAddr:   envOr("MV_METRICS_ADDR", ":9090"),
	}

	if cfg.ContentDir == "" {
		return nil, fmt.Errorf("MV_CONTENT_DIR is required")
	}
	if cfg.MetadataDir == "" {
		cfg.MetadataDir = filepath.Join(cfg.ContentDir, ".materialvault", "metadata")
	}
	if cfg.SettingsFile == "" {
		cfg.SettingsFile = filepath.Join(cfg.ContentDir, ".materialvault", "settings.toml")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
