// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bloc.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		path := writeConfig(t, `
instance:
  api: https://api.revolt.chat
  websocket: wss://ws.revolt.chat
  autumn: https://autumn.revolt.chat
state_dir: /var/lib/bloc
log_level: debug
`)
		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile failed: %v", err)
		}
		if cfg.Instance.API != "https://api.revolt.chat" {
			t.Errorf("unexpected api: %s", cfg.Instance.API)
		}
		if cfg.Instance.WebSocket != "wss://ws.revolt.chat" {
			t.Errorf("unexpected websocket: %s", cfg.Instance.WebSocket)
		}
		if cfg.StateDir != "/var/lib/bloc" {
			t.Errorf("unexpected state dir: %s", cfg.StateDir)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("unexpected log level: %s", cfg.LogLevel)
		}
	})

	t.Run("defaults fill unset fields", func(t *testing.T) {
		path := writeConfig(t, "instance:\n  api: https://chat.example\n")
		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile failed: %v", err)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("unexpected default log level: %s", cfg.LogLevel)
		}
		if cfg.StateDir == "" {
			t.Error("state dir default missing")
		}
	})

	t.Run("missing instance api", func(t *testing.T) {
		path := writeConfig(t, "log_level: warn\n")
		if _, err := LoadFile(path); err == nil {
			t.Fatal("expected error for missing instance.api")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile("/does/not/exist.yaml"); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "instance: [broken\n")
		if _, err := LoadFile(path); err == nil {
			t.Fatal("expected error for invalid yaml")
		}
	})
}

func TestLoadRequiresEnv(t *testing.T) {
	t.Setenv("BLOC_CONFIG", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when BLOC_CONFIG is unset")
	}

	path := writeConfig(t, "instance:\n  api: https://chat.example\n")
	t.Setenv("BLOC_CONFIG", path)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Instance.API != "https://chat.example" {
		t.Errorf("unexpected api: %s", cfg.Instance.API)
	}
}
