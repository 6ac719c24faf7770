// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the bloc client.
//
// Configuration is loaded from a single file specified by:
//   - BLOC_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery beyond the defaults
// baked into Default(). The config file is the single source of truth;
// environment variables do not override config values. The only
// expansion performed is ${HOME} in paths for portability.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the configuration for the bloc client.
type Config struct {
	// Instance configures the Revolt instance to connect to.
	Instance InstanceConfig `yaml:"instance"`

	// StateDir is where the session state file lives.
	// Default: ~/.local/state/bloc
	StateDir string `yaml:"state_dir"`

	// LogLevel is the slog level name: debug, info, warn, error.
	// Default: info
	LogLevel string `yaml:"log_level"`
}

// InstanceConfig identifies a Revolt instance.
type InstanceConfig struct {
	// API is the base URL of the instance REST API
	// (e.g., "https://api.revolt.chat").
	API string `yaml:"api"`

	// WebSocket is the live event stream URL. Empty means "use the
	// URL the node reports from QueryNode".
	WebSocket string `yaml:"websocket"`

	// Autumn is the file server base URL. Empty means "use the URL
	// the node reports from QueryNode".
	Autumn string `yaml:"autumn"`
}

// Default returns the default configuration. These defaults ensure all
// fields have sensible values before the config file is merged in; the
// instance API URL is the one field with no usable default.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		StateDir: filepath.Join(homeDir, ".local", "state", "bloc"),
		LogLevel: "info",
	}
}

// Load loads configuration from the BLOC_CONFIG environment variable.
//
// There are no search paths — if BLOC_CONFIG is not set, this fails.
// This ensures deterministic configuration with no hidden overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("BLOC_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("BLOC_CONFIG environment variable not set; " +
			"set it to the path of your bloc.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging over
// the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.expandVariables()

	if cfg.Instance.API == "" {
		return nil, fmt.Errorf("config: %s does not set instance.api", path)
	}
	return cfg, nil
}

// expandVariables expands ${HOME} in path fields.
func (c *Config) expandVariables() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return
	}
	c.StateDir = strings.ReplaceAll(c.StateDir, "${HOME}", homeDir)
}
