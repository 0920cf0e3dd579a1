package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ArtStore/internal/favorites"
	"ArtStore/internal/kvstore"
	"ArtStore/internal/viewer"
)

const (
	// PathEnv names the variable consulted when Load gets no path.
	PathEnv = "ARTSTORE_CONFIG"

	DefaultCatalogURL = "https://66f515099aa4891f2a23c71b.mockapi.io/color"

	minJWTSecretLen = 32
)

type StorageConfig struct {
	Driver        string `yaml:"driver"`
	Path          string `yaml:"path"`
	DSN           string `yaml:"dsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
}

type ProfileConfig struct {
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
}

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                  string        `yaml:"port"`
	LogLevel              string        `yaml:"logLevel"`
	CatalogURL            string        `yaml:"catalogURL"`
	CatalogTimeoutSeconds int           `yaml:"catalogTimeoutSeconds"`
	Storage               StorageConfig `yaml:"storage"`
	FavoritesKey          string        `yaml:"favoritesKey"`
	PersistRetries        int           `yaml:"persistRetries"`
	PersistDebounceMillis int           `yaml:"persistDebounceMillis"`
	JWTSecret             string        `yaml:"jwtSecret"`
	TokenTTLMinutes       int           `yaml:"tokenTTLMinutes"`
	CommentsPerMinute     int           `yaml:"commentsPerMinute"`
	MetricsEnabled        bool          `yaml:"metricsEnabled"`
	MetricsToken          string        `yaml:"metricsToken"`
	Profile               ProfileConfig `yaml:"profile"`
}

func Defaults() FileConfig {
	return FileConfig{
		Port:                  "8080",
		LogLevel:              "info",
		CatalogURL:            DefaultCatalogURL,
		CatalogTimeoutSeconds: 10,
		Storage: StorageConfig{
			Driver: kvstore.DriverLevelDB,
			Path:   "data/favorites",
		},
		FavoritesKey:      favorites.DefaultKey,
		PersistRetries:    favorites.DefaultRetries,
		TokenTTLMinutes:   24 * 60,
		CommentsPerMinute: 10,
		Profile: ProfileConfig{
			Name:     viewer.DefaultName,
			Username: viewer.DefaultUsername,
		},
	}
}

// Load starts from Defaults, applies the YAML file at path (or at
// $ARTSTORE_CONFIG when path is empty; no file at all is fine), then
// environment overrides, and validates the result.
func Load(path string) (FileConfig, error) {
	cfg := Defaults()
	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	setString := func(k string, dst *string) {
		if v := os.Getenv(k); v != "" {
			*dst = v
		}
	}
	setInt := func(k string, dst *int) {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("PORT", &cfg.Port)
	setString("LOG_LEVEL", &cfg.LogLevel)
	setString("CATALOG_URL", &cfg.CatalogURL)
	setInt("CATALOG_TIMEOUT_SECONDS", &cfg.CatalogTimeoutSeconds)
	setString("STORAGE_DRIVER", &cfg.Storage.Driver)
	setString("STORAGE_PATH", &cfg.Storage.Path)
	setString("DATABASE_URL", &cfg.Storage.DSN)
	setString("REDIS_ADDR", &cfg.Storage.RedisAddr)
	setString("REDIS_PASSWORD", &cfg.Storage.RedisPassword)
	setString("FAVORITES_KEY", &cfg.FavoritesKey)
	setInt("PERSIST_RETRIES", &cfg.PersistRetries)
	setInt("PERSIST_DEBOUNCE_MILLIS", &cfg.PersistDebounceMillis)
	setString("JWT_SECRET", &cfg.JWTSecret)
	setInt("TOKEN_TTL_MINUTES", &cfg.TokenTTLMinutes)
	setInt("COMMENTS_PER_MINUTE", &cfg.CommentsPerMinute)
	setString("METRICS_TOKEN", &cfg.MetricsToken)
	setString("PROFILE_NAME", &cfg.Profile.Name)
	setString("PROFILE_USERNAME", &cfg.Profile.Username)

	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.MetricsEnabled = enabled
		}
	}
}

func validateConfig(cfg FileConfig) error {
	if strings.TrimSpace(cfg.Port) == "" {
		return errors.New("config: port is required")
	}
	u, err := url.Parse(cfg.CatalogURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("config: catalogURL must be an absolute http(s) URL (set in config.yaml or CATALOG_URL)")
	}
	if cfg.CatalogTimeoutSeconds <= 0 {
		return errors.New("config: catalogTimeoutSeconds must be > 0")
	}

	// same normalization as kvstore.Open; blank means leveldb
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case kvstore.DriverMemory:
	case kvstore.DriverLevelDB, kvstore.DriverSQLite, "":
		if strings.TrimSpace(cfg.Storage.Path) == "" {
			return errors.New("config: storage.path is required for file-backed drivers (or STORAGE_PATH)")
		}
	case kvstore.DriverRedis:
		if cfg.Storage.RedisAddr == "" {
			return errors.New("config: storage.redisAddr is required for the redis driver (or REDIS_ADDR)")
		}
	case kvstore.DriverPostgres:
		if cfg.Storage.DSN == "" {
			return errors.New("config: storage.dsn is required for the postgres driver (or DATABASE_URL)")
		}
	default:
		return fmt.Errorf("config: %w: %q", kvstore.ErrUnknownDriver, cfg.Storage.Driver)
	}

	if strings.TrimSpace(cfg.FavoritesKey) == "" {
		return errors.New("config: favoritesKey must not be empty")
	}
	if cfg.PersistRetries < 0 {
		return errors.New("config: persistRetries must be >= 0")
	}
	if cfg.PersistDebounceMillis < 0 {
		return errors.New("config: persistDebounceMillis must be >= 0")
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("config: jwtSecret must be at least %d chars", minJWTSecretLen)
	}
	if cfg.TokenTTLMinutes <= 0 {
		return errors.New("config: tokenTTLMinutes must be > 0")
	}
	if cfg.CommentsPerMinute <= 0 {
		return errors.New("config: commentsPerMinute must be > 0")
	}
	if cfg.MetricsEnabled && cfg.MetricsToken == "" {
		return errors.New("config: metricsToken is required when metricsEnabled=true (or METRICS_TOKEN)")
	}
	if _, err := (viewer.Profile{Name: cfg.Profile.Name, Username: cfg.Profile.Username}).Normalize(); err != nil {
		return errors.New("config: profile.name and profile.username are required")
	}
	return nil
}

func (c FileConfig) CatalogTimeout() time.Duration {
	return time.Duration(c.CatalogTimeoutSeconds) * time.Second
}

func (c FileConfig) PersistDebounce() time.Duration {
	return time.Duration(c.PersistDebounceMillis) * time.Millisecond
}

func (c FileConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

func (c FileConfig) KV() kvstore.Config {
	return kvstore.Config{
		Driver:        c.Storage.Driver,
		Path:          c.Storage.Path,
		DSN:           c.Storage.DSN,
		RedisAddr:     c.Storage.RedisAddr,
		RedisPassword: c.Storage.RedisPassword,
	}
}

func (c FileConfig) DefaultProfile() viewer.Profile {
	p, _ := viewer.Profile{Name: c.Profile.Name, Username: c.Profile.Username}.Normalize()
	return p
}
