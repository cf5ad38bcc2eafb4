package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr           string `json:"addr" yaml:"addr" toml:"addr"`
	Engine         string `json:"engine" yaml:"engine" toml:"engine"`
	ModelsDir      string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	MaxModels      int    `json:"max_models" yaml:"max_models" toml:"max_models"`
	MaxBodyBytes   int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	LogLevel       string `json:"log_level" yaml:"log_level" toml:"log_level"`
	ORTLibraryPath string `json:"ort_library_path" yaml:"ort_library_path" toml:"ort_library_path"`

	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
	CORSAllowedMethods []string `json:"cors_allowed_methods" yaml:"cors_allowed_methods" toml:"cors_allowed_methods"`
	CORSAllowedHeaders []string `json:"cors_allowed_headers" yaml:"cors_allowed_headers" toml:"cors_allowed_headers"`
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
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values that can never be valid regardless of defaults.
func (c Config) Validate() error {
	if c.MaxModels < 0 {
		return fmt.Errorf("max_models must be >= 0, got %d", c.MaxModels)
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must be >= 0, got %d", c.MaxBodyBytes)
	}
	switch strings.ToLower(c.Engine) {
	case "", "onnx", "ort", "echo":
	default:
		return fmt.Errorf("unknown engine %q", c.Engine)
	}
	return nil
}
