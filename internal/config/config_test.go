package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
debug: true
server:
  host: 0.0.0.0
  port: 9090
storage:
  database_path: ./data/plans.db
generation:
  model: test-model
  batch_size: 4
import:
  directories:
    - ./floorplans
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug || cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Generation.Model != "test-model" || cfg.Generation.BatchSize != 4 {
		t.Errorf("unexpected generation config: %+v", cfg.Generation)
	}

	// ./ paths expand relative to the config dir.
	configDir := filepath.Dir(path)
	if cfg.Storage.DatabasePath != filepath.Join(configDir, "data/plans.db") {
		t.Errorf("DatabasePath = %s", cfg.Storage.DatabasePath)
	}
	if len(cfg.Import.Directories) != 1 || cfg.Import.Directories[0] != filepath.Join(configDir, "floorplans") {
		t.Errorf("Import.Directories = %v", cfg.Import.Directories)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults: %+v", cfg.Server)
	}
	if cfg.Generation.BatchSize != 10 {
		t.Errorf("BatchSize default = %d, want 10", cfg.Generation.BatchSize)
	}
	if cfg.Generation.Timeout() != 120*time.Second {
		t.Errorf("Timeout default = %v", cfg.Generation.Timeout())
	}
	if cfg.Generation.APIKeyEnv == "" {
		t.Error("APIKeyEnv default missing")
	}
	if len(cfg.Import.Extensions) == 0 {
		t.Error("import extensions default missing")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [not: a map\n")); err == nil {
		t.Error("expected error for invalid yaml")
	}
}
