package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"coinrush/auth"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != ModeClient {
		t.Fatalf("mode = %q, want client", cfg.Mode)
	}
	if cfg.ServerAddr != ":5001" {
		t.Fatalf("server addr = %q, want :5001", cfg.ServerAddr)
	}
	if cfg.SendInterval != 40*time.Millisecond {
		t.Fatalf("send interval = %v", cfg.SendInterval)
	}
	if cfg.ProtocolID != 0 || cfg.Key != (auth.Key{}) {
		t.Fatalf("expected placeholder key and protocol id")
	}
	if !cfg.PurgeScores {
		t.Fatalf("default disconnect policy should purge")
	}
	if cfg.Tuning.SpawnWidth != 400 || cfg.Tuning.SpawnHeight != 400 {
		t.Fatalf("spawn bounds = %dx%d", cfg.Tuning.SpawnWidth, cfg.Tuning.SpawnHeight)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("COINRUSH_MODE", "server")
	t.Setenv("COINRUSH_SERVER_ADDR", ":6000")
	t.Setenv("COINRUSH_PROTOCOL_ID", "12")
	t.Setenv("COINRUSH_SPAWN_WIDTH", "200")
	t.Setenv("COINRUSH_COIN_RADIUS", "2.5")
	t.Setenv("COINRUSH_SCORE_ON_DISCONNECT", "retain")
	t.Setenv("COINRUSH_DB_DRIVER", "sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != ModeServer || cfg.ServerAddr != ":6000" || cfg.ProtocolID != 12 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Tuning.SpawnWidth != 200 || cfg.Tuning.CoinRadius != 2.5 {
		t.Fatalf("tuning overrides not applied: %+v", cfg.Tuning)
	}
	if cfg.PurgeScores {
		t.Fatalf("retain policy not applied")
	}
	if cfg.DBDriver != DriverSQLite {
		t.Fatalf("db driver = %q", cfg.DBDriver)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"COINRUSH_MODE":                "observer",
		"COINRUSH_PROTOCOL_ID":         "-1",
		"COINRUSH_KEY":                 "short",
		"COINRUSH_SCORE_ON_DISCONNECT": "forget",
		"COINRUSH_DB_DRIVER":           "mongo",
		"COINRUSH_SPAWN_HEIGHT":        "0",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, val)
			}
		})
	}
}

func TestInitConfigMissingFileIsNotFatal(t *testing.T) {
	if err := InitConfig(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("init config: %v", err)
	}
}

func TestInitConfigLoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("COINRUSH_TEST_ONLY=yes\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("COINRUSH_TEST_ONLY") })
	if err := InitConfig(path); err != nil {
		t.Fatalf("init config: %v", err)
	}
	if os.Getenv("COINRUSH_TEST_ONLY") != "yes" {
		t.Fatalf("env file not applied")
	}
}
