package config

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/stackpkg/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "/data")

	cfg, path, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != "" {
		t.Errorf("Load() path = %q, want none", path)
	}
	if cfg.InstallDir != filepath.Join("/data", AppName) {
		t.Errorf("InstallDir = %q", cfg.InstallDir)
	}
	if cfg.Cache != CacheFile || cfg.Store != StoreFile || !cfg.Wrappers {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	file := filepath.Join(dir, AppName, FileName)
	os.MkdirAll(filepath.Dir(file), 0o755)
	os.WriteFile(file, []byte(`
install_dir = "/opt/pkgs"
sources = ["https://a.example", "https://b.example"]
cache = "redis"
cache_ttl = "30m"

[redis]
addr = "cache:6379"
`), 0o644)
	t.Setenv("STACKPKG_CONCURRENCY", "2")
	t.Setenv("STACKPKG_REDIS_DB", "3")

	cfg, path, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != file {
		t.Errorf("Load() path = %q, want %q", path, file)
	}
	if cfg.InstallDir != "/opt/pkgs" {
		t.Errorf("InstallDir = %q", cfg.InstallDir)
	}
	if !slices.Equal(cfg.Sources, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("Sources = %v", cfg.Sources)
	}
	if cfg.CacheTTL != 30*time.Minute {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.Redis.Addr != "cache:6379" || cfg.Redis.DB != 3 {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want 2 from env", cfg.Concurrency)
	}
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	if _, _, err := Load(ctx, "/does/not/exist.toml"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Load(missing) error = %v", err)
	}

	dir := t.TempDir()
	file := filepath.Join(dir, "bad.toml")
	os.WriteFile(file, []byte(`cache = "memcached"`), 0o644)
	if _, _, err := Load(ctx, file); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Load(bad cache) error = %v", err)
	}
}
