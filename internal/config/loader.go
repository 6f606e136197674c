package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for lmsbridge.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr         string     `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel     string     `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat    string     `json:"log_format" yaml:"log_format" toml:"log_format"`
	MaxBodyBytes int64      `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	HTTP         HTTPConfig `json:"http" yaml:"http" toml:"http"`
	CLI          CLIConfig  `json:"cli" yaml:"cli" toml:"cli"`
	CORS         CORSConfig `json:"cors" yaml:"cors" toml:"cors"`
}

// HTTPConfig points at the LM Studio REST server.
type HTTPConfig struct {
	BaseURL        string `json:"base_url" yaml:"base_url" toml:"base_url"`
	APIKey         string `json:"api_key" yaml:"api_key" toml:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// CLIConfig locates the `lms` binary.
type CLIConfig struct {
	Bin            string            `json:"bin" yaml:"bin" toml:"bin"`
	Args           []string          `json:"args" yaml:"args" toml:"args"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	Env            map[string]string `json:"env" yaml:"env" toml:"env"`
}

// CORSConfig is opt-in; an empty origin list allows any origin when enabled.
type CORSConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
