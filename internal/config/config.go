// Package config loads secretnote settings from YAML, .env files and
// SECRETNOTE_* environment variables.
//
// Sources are applied in order: built-in defaults, the first readable YAML
// file, then environment overrides. A .env file, when present, is loaded
// into the environment first and never overrides variables already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/secretnote/client-go/internal/relay"
)

// Suite names accepted in the suite field.
const (
	SuiteDefault     = "default"
	SuiteLegacy      = "legacy"
	SuitePostQuantum = "post-quantum"
)

// DefaultPaths are searched when no config path is given.
var DefaultPaths = []string{
	"secretnote.yaml",
	"configs/secretnote.yaml",
}

type Config struct {
	Suite  string       `yaml:"suite"`
	Client ClientConfig `yaml:"client"`
	Relay  RelayConfig  `yaml:"relay"`
	Log    LogConfig    `yaml:"log"`
}

// ClientConfig configures the relay client used by send and receive.
type ClientConfig struct {
	URL          string        `yaml:"url"`
	Timeout      time.Duration `yaml:"timeout"`
	Retries      int           `yaml:"retries"`
	PollInterval time.Duration `yaml:"pollInterval"`
	MaxBackoff   time.Duration `yaml:"maxBackoff"`
}

// RelayConfig configures the relay server.
type RelayConfig struct {
	Addr              string        `yaml:"addr"`
	NoteTTL           time.Duration `yaml:"noteTTL"`
	CleanupInterval   time.Duration `yaml:"cleanupInterval"`
	MaxNoteSize       int           `yaml:"maxNoteSize"`
	PostsPerHour      int           `yaml:"postsPerHour"`
	FetchInterval     time.Duration `yaml:"fetchInterval"`
	FetchBurst        int           `yaml:"fetchBurst"`
	TrustForwardedFor *bool         `yaml:"trustForwardedFor"`
}

// LogConfig selects the log level and formatter.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Suite: SuiteDefault,
		Client: ClientConfig{
			URL:     "http://localhost:8080",
			Timeout: 30 * time.Second,
		},
		Relay: RelayConfig{
			Addr:            relay.DefaultAddr,
			NoteTTL:         relay.DefaultNoteTTL,
			CleanupInterval: relay.DefaultCleanupInterval,
			MaxNoteSize:     relay.DefaultMaxNoteSize,
			PostsPerHour:    relay.DefaultPostBurst,
			FetchInterval:   relay.DefaultFetchInterval,
			FetchBurst:      relay.DefaultFetchBurst,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns the configuration from configPath, or from the first of
// DefaultPaths that exists when configPath is empty. A missing explicit
// file is an error; missing default files are not.
func Load(configPath string) (Config, error) {
	cfg := Default()

	candidates := DefaultPaths
	if configPath != "" {
		candidates = []string{configPath}
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) && configPath == "" {
			continue
		}
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}

		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		Merge(&cfg, parsed)
		break
	}

	if err := ApplyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Merge copies every non-zero field of src into dst.
func Merge(dst *Config, src Config) {
	if src.Suite != "" {
		dst.Suite = src.Suite
	}

	if src.Client.URL != "" {
		dst.Client.URL = src.Client.URL
	}
	if src.Client.Timeout != 0 {
		dst.Client.Timeout = src.Client.Timeout
	}
	if src.Client.Retries != 0 {
		dst.Client.Retries = src.Client.Retries
	}
	if src.Client.PollInterval != 0 {
		dst.Client.PollInterval = src.Client.PollInterval
	}
	if src.Client.MaxBackoff != 0 {
		dst.Client.MaxBackoff = src.Client.MaxBackoff
	}

	if src.Relay.Addr != "" {
		dst.Relay.Addr = src.Relay.Addr
	}
	if src.Relay.NoteTTL != 0 {
		dst.Relay.NoteTTL = src.Relay.NoteTTL
	}
	if src.Relay.CleanupInterval != 0 {
		dst.Relay.CleanupInterval = src.Relay.CleanupInterval
	}
	if src.Relay.MaxNoteSize != 0 {
		dst.Relay.MaxNoteSize = src.Relay.MaxNoteSize
	}
	if src.Relay.PostsPerHour != 0 {
		dst.Relay.PostsPerHour = src.Relay.PostsPerHour
	}
	if src.Relay.FetchInterval != 0 {
		dst.Relay.FetchInterval = src.Relay.FetchInterval
	}
	if src.Relay.FetchBurst != 0 {
		dst.Relay.FetchBurst = src.Relay.FetchBurst
	}
	if src.Relay.TrustForwardedFor != nil {
		v := *src.Relay.TrustForwardedFor
		dst.Relay.TrustForwardedFor = &v
	}

	if src.Log.Level != "" {
		dst.Log.Level = src.Log.Level
	}
	if src.Log.Format != "" {
		dst.Log.Format = src.Log.Format
	}
}

// ApplyEnvOverrides applies SECRETNOTE_* variables to cfg.
func ApplyEnvOverrides(cfg *Config) error {
	if v := env("SECRETNOTE_SUITE"); v != "" {
		cfg.Suite = v
	}
	if v := env("SECRETNOTE_URL"); v != "" {
		cfg.Client.URL = v
	}
	if v := env("SECRETNOTE_RELAY_ADDR"); v != "" {
		cfg.Relay.Addr = v
	}
	if v := env("SECRETNOTE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := env("SECRETNOTE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := env("SECRETNOTE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SECRETNOTE_TIMEOUT: %w", err)
		}
		cfg.Client.Timeout = d
	}
	if v := env("SECRETNOTE_RELAY_TRUST_FORWARDED_FOR"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SECRETNOTE_RELAY_TRUST_FORWARDED_FOR: %w", err)
		}
		cfg.Relay.TrustForwardedFor = &b
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// Validate checks the fields Load cannot default.
func (c Config) Validate() error {
	switch c.Suite {
	case SuiteDefault, SuiteLegacy, SuitePostQuantum:
	default:
		return fmt.Errorf("unknown suite %q", c.Suite)
	}
	if c.Client.Timeout <= 0 {
		return errors.New("client timeout must be positive")
	}
	if c.Relay.PostsPerHour < 0 || c.Relay.FetchBurst < 0 || c.Relay.MaxNoteSize < 0 {
		return errors.New("relay limits must not be negative")
	}
	if _, err := parseFormat(c.Log.Format); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Server converts the relay section to a relay.Config. PostsPerHour
// becomes a bucket of that size refilled evenly over the hour.
func (r RelayConfig) Server() relay.Config {
	cfg := relay.Config{
		Addr:            r.Addr,
		NoteTTL:         r.NoteTTL,
		CleanupInterval: r.CleanupInterval,
		MaxNoteSize:     r.MaxNoteSize,
		FetchInterval:   r.FetchInterval,
		FetchBurst:      r.FetchBurst,
	}
	if r.PostsPerHour > 0 {
		cfg.PostInterval = time.Hour / time.Duration(r.PostsPerHour)
		cfg.PostBurst = r.PostsPerHour
	}
	if r.TrustForwardedFor != nil {
		cfg.TrustForwardedFor = *r.TrustForwardedFor
	}
	return cfg
}
