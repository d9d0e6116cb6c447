// Package config loads the nibarchive command configuration.
//
// Configuration comes from a single YAML file named by the --config flag or,
// failing that, the NIBARCHIVE_CONFIG environment variable. There is no
// discovery: with neither set, Default is used as is.
package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted when no --config flag
// is given.
const EnvVar = "NIBARCHIVE_CONFIG"

// Config is the complete command configuration.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Export ExportConfig `yaml:"export"`
	Decode DecodeConfig `yaml:"decode"`
}

// LogConfig configures the zap logger built by the command.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: warn
	Level string `yaml:"level"`

	// Format is "console" for human-readable output or "json".
	// Default: console
	Format string `yaml:"format"`
}

// ExportConfig configures projections written by export and tojson.
type ExportConfig struct {
	// Format is the default projection format: json, yaml, cbor or msgpack.
	// Default: json
	Format string `yaml:"format"`

	// Indent is the indentation width for text formats. Zero writes
	// compact JSON.
	// Default: 2
	Indent int `yaml:"indent"`
}

// DecodeConfig configures archive decoding.
type DecodeConfig struct {
	// StrictUTF8 rejects archives whose keys or class names are not valid
	// UTF-8 instead of warning.
	StrictUTF8 bool `yaml:"strict_utf8"`
}

var (
	levels  = []string{"debug", "info", "warn", "error"}
	formats = []string{"console", "json"}
	exports = []string{"json", "yaml", "cbor", "msgpack"}
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Export: ExportConfig{
			Format: "json",
			Indent: 2,
		},
	}
}

// Load reads the file at path, or the file named by NIBARCHIVE_CONFIG when
// path is empty. With neither, it returns Default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates a configuration file. Fields the file does
// not set keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every field holds a supported value.
func (c *Config) Validate() error {
	if !slices.Contains(levels, c.Log.Level) {
		return fmt.Errorf("log.level %q: must be one of %v", c.Log.Level, levels)
	}
	if !slices.Contains(formats, c.Log.Format) {
		return fmt.Errorf("log.format %q: must be one of %v", c.Log.Format, formats)
	}
	if !slices.Contains(exports, c.Export.Format) {
		return fmt.Errorf("export.format %q: must be one of %v", c.Export.Format, exports)
	}
	if c.Export.Indent < 0 || c.Export.Indent > 16 {
		return fmt.Errorf("export.indent %d: must be between 0 and 16", c.Export.Indent)
	}
	return nil
}
