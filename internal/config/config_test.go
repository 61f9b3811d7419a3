package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func loadIn(t *testing.T, dir string) (*Config, error) {
	t.Helper()
	viper.Reset()
	t.Setenv("HOME", dir)
	t.Setenv("HABITKIT_CONFIG_PATH", dir)
	return Load()
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadIn(t, t.TempDir())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.StoreBackend != StoreDiskv {
		t.Errorf("expected default store backend %q, got %q", StoreDiskv, cfg.StoreBackend)
	}
	if cfg.RemoteKind != RemoteNone {
		t.Errorf("expected default remote kind %q, got %q", RemoteNone, cfg.RemoteKind)
	}
	if cfg.StorePath == "" {
		t.Error("expected a default store path")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, ".habitkit.yaml")
	content := "store_backend: sqlite\nremote_kind: rest\nremote_address: https://sync.example.com\n"
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := loadIn(t, dir)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.StoreBackend != StoreSQLite {
		t.Errorf("expected sqlite backend, got %q", cfg.StoreBackend)
	}
	if cfg.RemoteKind != RemoteREST || cfg.RemoteAddress != "https://sync.example.com" {
		t.Errorf("expected rest remote, got %q %q", cfg.RemoteKind, cfg.RemoteAddress)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, ".habitkit.yaml")
	if err := os.WriteFile(cfgFile, []byte("store_backend: redis\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := loadIn(t, dir); err == nil {
		t.Error("expected error for unknown store backend")
	}
}

func TestLoadRejectsRESTWithoutAddress(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, ".habitkit.yaml")
	if err := os.WriteFile(cfgFile, []byte("remote_kind: rest\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := loadIn(t, dir); err == nil {
		t.Error("expected error for rest remote without address")
	}
}

func TestStoreFile(t *testing.T) {
	c := &Config{StoreBackend: StoreSQLite, StorePath: "/data/store"}
	if got := c.StoreFile(); got != "/data/store.db" {
		t.Errorf("StoreFile() = %q, want /data/store.db", got)
	}
	c.StoreBackend = StoreDiskv
	if got := c.StoreFile(); got != "/data/store" {
		t.Errorf("StoreFile() = %q, want /data/store", got)
	}
}
