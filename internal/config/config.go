// Package config loads packforge settings from layered sources.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PACKFORGE_"

// LocalConfigPath is the project config, relative to the working directory.
const LocalConfigPath = ".packforge/config.json"

// Configuration represents the packforge settings
type Configuration struct {
	ContentDir   string   `koanf:"content_dir" validate:"required"`
	Include      []string `koanf:"include"`
	Exclude      []string `koanf:"exclude"`
	Workers      int      `koanf:"workers" validate:"min=0,max=256"` // 0 means one per CPU
	TablesPath   string   `koanf:"tables_path"`                      // Empty uses the built-in tables
	MaxErrors    int      `koanf:"max_errors" validate:"min=0"`      // 0 keeps every validation error
	Strict       bool     `koanf:"strict"`                           // Incomplete consolidation fails the run
	Format       string   `koanf:"format" validate:"required"`
	StateDir     string   `koanf:"state_dir" validate:"required"`
	MaxHistory   int      `koanf:"max_history" validate:"min=0,max=10000"`
	MetricsFile  string   `koanf:"metrics_file"`
	ShowProgress bool     `koanf:"show_progress"` // Show a spinner while loading and migrating
}

// Load loads configuration from global, local, and environment sources
// Priority: Environment variables > Local config > Global config > Defaults
func Load(localConfigPath string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		k.Set(key, value)
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		globalPath := filepath.Join(homeDir, ".packforge", "config.json")
		if _, err := os.Stat(globalPath); err == nil {
			if err := k.Load(file.Provider(globalPath), json.Parser()); err != nil {
				return nil, &ValidationError{FilePath: globalPath, Message: fmt.Sprintf("failed to load global config: %v", err)}
			}
		}
	}

	if localConfigPath == "" {
		localConfigPath = LocalConfigPath
	}
	if _, err := os.Stat(localConfigPath); err == nil {
		if err := k.Load(file.Provider(localConfigPath), json.Parser()); err != nil {
			return nil, &ValidationError{FilePath: localConfigPath, Message: fmt.Sprintf("failed to load local config: %v", err)}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.StateDir = expandHomePath(cfg.StateDir)
	cfg.TablesPath = expandHomePath(cfg.TablesPath)
	cfg.MetricsFile = expandHomePath(cfg.MetricsFile)

	if err := ValidateConfigValues(&cfg, localConfigPath); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envTransform converts environment variable names to config keys
// Example: PACKFORGE_MAX_ERRORS -> max_errors
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
