package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"lmsbridge/internal/common/fsutil"
	"lmsbridge/internal/lmclient"
)

const (
	DefaultAddr           = ":8089"
	DefaultBaseURL        = "http://127.0.0.1:1234"
	DefaultCLIBin         = "~/.lmstudio/bin/lms"
	DefaultHTTPTimeoutSec = 10
	DefaultCLITimeoutSec  = 30
	DefaultMaxBodyBytes   = 1 << 20

	envPrefix = "LMSBRIDGE_"
)

// Resolve loads an optional config file, then .env, then LMSBRIDGE_* overrides,
// fills defaults and validates. An empty path skips the file.
func Resolve(path string) (Config, error) {
	var cfg Config
	if path != "" {
		c, err := Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}
	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from LMSBRIDGE_* variables found via lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(envPrefix + key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = n
		return nil
	}
	str("ADDR", &c.Addr)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("HTTP_URL", &c.HTTP.BaseURL)
	str("API_KEY", &c.HTTP.APIKey)
	str("CLI_BIN", &c.CLI.Bin)
	if err := num("HTTP_TIMEOUT", &c.HTTP.TimeoutSeconds); err != nil {
		return err
	}
	if err := num("CLI_TIMEOUT", &c.CLI.TimeoutSeconds); err != nil {
		return err
	}
	if v, ok := lookup(envPrefix + "CLI_ARGS"); ok && v != "" {
		c.CLI.Args = strings.Fields(v)
	}
	if v, ok := lookup(envPrefix + "CORS_ORIGINS"); ok && v != "" {
		c.CORS.Enabled = true
		c.CORS.Origins = SplitCSV(v)
	}
	return nil
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.HTTP.BaseURL == "" {
		c.HTTP.BaseURL = DefaultBaseURL
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		c.HTTP.TimeoutSeconds = DefaultHTTPTimeoutSec
	}
	if c.CLI.Bin == "" {
		c.CLI.Bin = DefaultCLIBin
	}
	if c.CLI.TimeoutSeconds <= 0 {
		c.CLI.TimeoutSeconds = DefaultCLITimeoutSec
	}
	if bin, err := fsutil.ExpandHome(c.CLI.Bin); err == nil {
		c.CLI.Bin = bin
	}
	return c
}

// Validate rejects settings that cannot work.
func (c Config) Validate() error {
	u, err := url.Parse(c.HTTP.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("http.base_url must be an absolute http(s) URL, got %q", c.HTTP.BaseURL)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log_format must be json or console, got %q", c.LogFormat)
	}
	if strings.TrimSpace(c.CLI.Bin) == "" {
		return fmt.Errorf("cli.bin is required")
	}
	return nil
}

// ClientConfig converts c into the facade configuration.
func (c Config) ClientConfig(log zerolog.Logger, pub lmclient.EventPublisher) lmclient.Config {
	return lmclient.Config{
		HTTP: lmclient.HTTPConfig{
			BaseURL: c.HTTP.BaseURL,
			APIKey:  c.HTTP.APIKey,
			Timeout: time.Duration(c.HTTP.TimeoutSeconds) * time.Second,
		},
		CLI: lmclient.CLIConfig{
			Bin:     c.CLI.Bin,
			Args:    c.CLI.Args,
			Timeout: time.Duration(c.CLI.TimeoutSeconds) * time.Second,
			Env:     c.CLI.Env,
		},
		Logger:    log,
		Publisher: pub,
	}
}

// SplitCSV splits a comma-separated list, trimming blanks.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
