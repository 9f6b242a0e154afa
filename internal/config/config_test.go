package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"warungpos/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load(nil)
	if cfg.Port != "8080" || cfg.Backend != "sqlite" || cfg.DBDSN != "warungpos.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Seed {
		t.Fatal("seed should default to true")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warungpos.yaml")
	data := "port: \"9090\"\nbackend: memory\nseed: false\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Load([]string{"--config", path})
	if cfg.Port != "9090" {
		t.Fatalf("port = %s, want 9090", cfg.Port)
	}
	if cfg.Backend != "memory" {
		t.Fatalf("backend = %s, want memory", cfg.Backend)
	}
	if cfg.Seed {
		t.Fatal("seed should be false from file")
	}
	// untouched keys keep their defaults
	if cfg.DBDSN != "warungpos.db" {
		t.Fatalf("db_dsn = %s, want default", cfg.DBDSN)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warungpos.yaml")
	if err := os.WriteFile(path, []byte("port: \"9090\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7000")

	cfg := config.Load([]string{"--config", path})
	if cfg.Port != "7000" {
		t.Fatalf("port = %s, want env value 7000", cfg.Port)
	}
}

func TestLoadFlagsWinOverEnv(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("STORE_BACKEND", "sqlite")

	cfg := config.Load([]string{"--port", "6060", "--backend", "memory", "--seed=false"})
	if cfg.Port != "6060" {
		t.Fatalf("port = %s, want flag value 6060", cfg.Port)
	}
	if cfg.Backend != "memory" {
		t.Fatalf("backend = %s, want memory", cfg.Backend)
	}
	if cfg.Seed {
		t.Fatal("seed flag should override default")
	}
}
