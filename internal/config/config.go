// Package config loads the debugger's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPath overrides the configuration file location.
	EnvPath = "GNI_DBG_CONFIG"

	defaultDir  = ".gni"
	defaultFile = "dbg.yaml"
)

type Config struct {
	Prompt  string        `yaml:"prompt"`
	Log     LogConfig     `yaml:"log"`
	Symbols SymbolsConfig `yaml:"symbols"`
	DAP     DAPConfig     `yaml:"dap"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type SymbolsConfig struct {
	// FunctionCacheSize is the number of resolved frames kept per session,
	// zero disables caching.
	FunctionCacheSize int  `yaml:"function_cache_size"`
	Demangle          bool `yaml:"demangle"`
}

type DAPConfig struct {
	// Port to listen on, zero serves stdin and stdout.
	Port int `yaml:"port"`
}

func Default() *Config {
	return &Config{
		Prompt: "(gni) ",
		Log: LogConfig{
			Level:  "warn",
			Pretty: true,
		},
		Symbols: SymbolsConfig{
			FunctionCacheSize: 1024,
			Demangle:          true,
		},
	}
}

// Path returns the configuration file location: $GNI_DBG_CONFIG if set,
// otherwise ~/.gni/dbg.yaml.
func Path() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, defaultDir, defaultFile), nil
}

// Load reads the configuration at path. A missing file yields the defaults;
// fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	if c.Symbols.FunctionCacheSize < 0 {
		return fmt.Errorf("symbols.function_cache_size: must not be negative")
	}
	if c.DAP.Port < 0 || c.DAP.Port > 65535 {
		return fmt.Errorf("dap.port: %d out of range", c.DAP.Port)
	}
	return nil
}
