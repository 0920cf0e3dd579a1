package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ArtStore/internal/kvstore"
	"ArtStore/internal/viewer"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv(PathEnv, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.CatalogURL != DefaultCatalogURL {
		t.Fatalf("port=%q catalogURL=%q", cfg.Port, cfg.CatalogURL)
	}
	if cfg.Storage.Driver != kvstore.DriverLevelDB || cfg.FavoritesKey != "favoriteProducts" {
		t.Fatalf("storage=%+v key=%q", cfg.Storage, cfg.FavoritesKey)
	}
	if cfg.CatalogTimeout() != 10*time.Second {
		t.Fatalf("catalog timeout=%v want=10s", cfg.CatalogTimeout())
	}
	if p := cfg.DefaultProfile(); p != viewer.Default() {
		t.Fatalf("profile=%+v want=%+v", p, viewer.Default())
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("PERSIST_DEBOUNCE_MILLIS", "250")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("METRICS_TOKEN", "scrape")
	t.Setenv("PERSIST_RETRIES", "not-a-number")

	path := writeConfig(t, `
port: "9090"
logLevel: "debug"
catalogURL: "http://localhost:8082/color"
catalogTimeoutSeconds: 3
storage:
  driver: "sqlite"
  path: "/tmp/favs.db"
favoritesKey: "favs"
persistRetries: 5
profile:
  name: "Lan Anh"
  username: "lan"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.LogLevel != "debug" || cfg.FavoritesKey != "favs" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.Storage.Driver != "redis" || cfg.Storage.RedisAddr != "localhost:6379" || cfg.Storage.Path != "/tmp/favs.db" {
		t.Fatalf("storage=%+v", cfg.Storage)
	}
	if cfg.PersistRetries != 5 {
		t.Fatalf("persistRetries=%d want=5", cfg.PersistRetries)
	}
	if cfg.PersistDebounce() != 250*time.Millisecond {
		t.Fatalf("debounce=%v want=250ms", cfg.PersistDebounce())
	}
	if !cfg.MetricsEnabled || cfg.MetricsToken != "scrape" {
		t.Fatalf("metrics enabled=%v token=%q", cfg.MetricsEnabled, cfg.MetricsToken)
	}
	if kv := cfg.KV(); kv.Driver != "redis" || kv.RedisAddr != "localhost:6379" {
		t.Fatalf("kv=%+v", kv)
	}
	if p := cfg.DefaultProfile(); p.Username != "lan" {
		t.Fatalf("profile=%+v", p)
	}
}

func TestLoadFromPathEnv(t *testing.T) {
	path := writeConfig(t, "port: \"7000\"\n")
	t.Setenv(PathEnv, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "7000" {
		t.Fatalf("port=%q want=7000", cfg.Port)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "port: [")); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}

func TestValidateConfigRejects(t *testing.T) {
	cases := map[string]func(*FileConfig){
		"no port":           func(c *FileConfig) { c.Port = " " },
		"relative catalog":  func(c *FileConfig) { c.CatalogURL = "/color" },
		"ftp catalog":       func(c *FileConfig) { c.CatalogURL = "ftp://example.com/x" },
		"zero timeout":      func(c *FileConfig) { c.CatalogTimeoutSeconds = 0 },
		"leveldb no path":   func(c *FileConfig) { c.Storage.Path = "" },
		"blank driver":      func(c *FileConfig) { c.Storage.Driver, c.Storage.Path = "", "" },
		"redis no addr":     func(c *FileConfig) { c.Storage.Driver = "redis" },
		"postgres no dsn":   func(c *FileConfig) { c.Storage.Driver = "postgres" },
		"empty key":         func(c *FileConfig) { c.FavoritesKey = "" },
		"negative retries":  func(c *FileConfig) { c.PersistRetries = -1 },
		"negative debounce": func(c *FileConfig) { c.PersistDebounceMillis = -5 },
		"short secret":      func(c *FileConfig) { c.JWTSecret = "short" },
		"zero ttl":          func(c *FileConfig) { c.TokenTTLMinutes = 0 },
		"zero comment rate": func(c *FileConfig) { c.CommentsPerMinute = 0 },
		"metrics no token":  func(c *FileConfig) { c.MetricsEnabled = true },
		"blank profile":     func(c *FileConfig) { c.Profile.Username = "  " },
	}

	for name, mutate := range cases {
		cfg := Defaults()
		mutate(&cfg)
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	cfg := Defaults()
	cfg.Storage.Driver = "bolt"
	if err := validateConfig(cfg); !errors.Is(err, kvstore.ErrUnknownDriver) {
		t.Fatalf("err=%v want=%v", err, kvstore.ErrUnknownDriver)
	}

	for _, driver := range []string{"", " LevelDB "} {
		cfg = Defaults()
		cfg.Storage.Driver = driver
		cfg.Storage.Path = filepath.Join(t.TempDir(), "favorites")
		if err := validateConfig(cfg); err != nil {
			t.Fatalf("driver %q with path rejected: %v", driver, err)
		}
		kv, err := kvstore.Open(context.Background(), cfg.KV())
		if err != nil {
			t.Fatalf("driver %q accepted by config but not by kvstore: %v", driver, err)
		}
		_ = kv.Close()
	}

	cfg = Defaults()
	cfg.JWTSecret = strings.Repeat("s", minJWTSecretLen)
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
