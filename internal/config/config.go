// Package config loads gantt settings from an optional TOML file and
// GANTT_* environment variables. Environment values override the file;
// command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Store kinds.
const (
	StoreFile     = "file"
	StoreS3       = "s3"
	StoreGit      = "git"
	StorePostgres = "postgres"
)

type Config struct {
	Store string `toml:"store"` // GANTT_STORE (default "file")
	Dir   string `toml:"dir"`   // GANTT_DIR (default ".")

	S3Bucket   string `toml:"s3_bucket"`   // GANTT_S3_BUCKET (required for s3)
	S3Prefix   string `toml:"s3_prefix"`   // GANTT_S3_PREFIX (default "gantt")
	S3Region   string `toml:"s3_region"`   // GANTT_S3_REGION (default "us-east-1")
	S3Endpoint string `toml:"s3_endpoint"` // GANTT_S3_ENDPOINT (custom endpoint for MinIO)

	GitRepo   string `toml:"git_repo"`   // GANTT_GIT_REPO (required for git; path to clone)
	GitBranch string `toml:"git_branch"` // GANTT_GIT_BRANCH (default "main")

	DatabaseURL string `toml:"database_url"` // GANTT_DATABASE_URL (required for postgres)
	NATSURL     string `toml:"nats_url"`     // GANTT_NATS_URL (optional, empty = no events)

	LogLevel  string `toml:"log_level"`  // GANTT_LOG_LEVEL (default "info")
	LogFormat string `toml:"log_format"` // GANTT_LOG_FORMAT (default "text")
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Store:     StoreFile,
		Dir:       ".",
		S3Prefix:  "gantt",
		S3Region:  "us-east-1",
		GitBranch: "main",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// DefaultPath returns $GANTT_CONFIG, or ~/.config/gantt/config.toml.
func DefaultPath() string {
	if p := os.Getenv("GANTT_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gantt", "config.toml")
}

// Load reads the file at path (a missing file is not an error), applies
// environment overrides, then each override in order, and validates the
// result. The CLI passes its flags as overrides.
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	c := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, c); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	c.Store = envOrDefault("GANTT_STORE", c.Store)
	c.Dir = envOrDefault("GANTT_DIR", c.Dir)
	c.S3Bucket = envOrDefault("GANTT_S3_BUCKET", c.S3Bucket)
	c.S3Prefix = envOrDefault("GANTT_S3_PREFIX", c.S3Prefix)
	c.S3Region = envOrDefault("GANTT_S3_REGION", c.S3Region)
	c.S3Endpoint = envOrDefault("GANTT_S3_ENDPOINT", c.S3Endpoint)
	c.GitRepo = envOrDefault("GANTT_GIT_REPO", c.GitRepo)
	c.GitBranch = envOrDefault("GANTT_GIT_BRANCH", c.GitBranch)
	c.DatabaseURL = envOrDefault("GANTT_DATABASE_URL", c.DatabaseURL)
	c.NATSURL = envOrDefault("GANTT_NATS_URL", c.NATSURL)
	c.LogLevel = envOrDefault("GANTT_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOrDefault("GANTT_LOG_FORMAT", c.LogFormat)

	for _, o := range overrides {
		o(c)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the selected store has what it needs.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile:
		if c.Dir == "" {
			return errors.New("dir is required for the file store")
		}
	case StoreS3:
		if c.S3Bucket == "" {
			return errors.New("GANTT_S3_BUCKET is required for the s3 store")
		}
	case StoreGit:
		if c.GitRepo == "" {
			return errors.New("GANTT_GIT_REPO is required for the git store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("GANTT_DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store %q (want file, s3, git or postgres)", c.Store)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	return nil
}

// Encode writes c to w as TOML.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Save writes c to path as TOML, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if err := c.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *Config) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// NewLogger builds a logger writing to w in the configured format and level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := c.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
