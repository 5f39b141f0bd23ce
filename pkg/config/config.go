// Package config loads stackpkg settings.
//
// Values are layered: built-in defaults, then an optional TOML file
// ($XDG_CONFIG_HOME/stackpkg/config.toml or an explicit path), then
// STACKPKG_* environment variables (nested keys use underscores, e.g.
// STACKPKG_REDIS_ADDR). Command-line flags are applied by the CLI on top.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/registry"
)

const (
	// AppName is used for directory names and the environment prefix.
	AppName = "stackpkg"
	// FileName is the config file name inside the config directory.
	FileName = "config.toml"
)

// Metadata cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Installed-set backends.
const (
	StoreFile  = "file"
	StoreMongo = "mongo"
)

// Config is the effective configuration.
type Config struct {
	InstallDir  string        `mapstructure:"install_dir"`
	BinDir      string        `mapstructure:"bin_dir"`
	CacheDir    string        `mapstructure:"cache_dir"`
	Sources     []string      `mapstructure:"sources"`
	Domain      string        `mapstructure:"domain"`
	Concurrency int           `mapstructure:"concurrency"`
	Cache       string        `mapstructure:"cache"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	Store       string        `mapstructure:"store"`
	Wrappers    bool          `mapstructure:"wrappers"`
	Redis       RedisConfig   `mapstructure:"redis"`
	Mongo       MongoConfig   `mapstructure:"mongo"`
}

// RedisConfig configures the redis metadata cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MongoConfig configures the MongoDB installed-set store.
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// Default returns the built-in configuration.
func Default() Config {
	data := dataDir()
	return Config{
		InstallDir:  data,
		BinDir:      filepath.Join(data, "bin"),
		CacheDir:    cacheDir(),
		Sources:     []string{registry.DefaultSource},
		Domain:      "both",
		Concurrency: 8,
		Cache:       CacheFile,
		CacheTTL:    registry.DefaultCacheTTL,
		Store:       StoreFile,
		Wrappers:    true,
		Redis:       RedisConfig{Addr: "localhost:6379"},
		Mongo:       MongoConfig{URI: "mongodb://localhost:27017", Database: AppName},
	}
}

// Load reads the configuration. An empty path looks for the default config
// file and silently uses defaults when it does not exist; an explicit path
// must exist. The second return value is the file that was read, if any.
func Load(ctx context.Context, path string) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetConfigType("toml")
	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolved := ""
	switch {
	case path != "":
		if !fileExists(path) {
			return nil, "", errors.New(errors.ErrCodeInvalidInput, "config file not found: %s", path)
		}
		resolved = path
	default:
		if p := filepath.Join(Dir(), FileName); fileExists(p) {
			resolved = p
		}
	}
	if resolved != "" {
		v.SetConfigFile(resolved)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", resolved)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolved, nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.Cache {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (file, redis, none)", c.Cache)
	}
	switch c.Store {
	case StoreFile, StoreMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store %q (file, mongo)", c.Store)
	}
	if c.InstallDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "install_dir must not be empty")
	}
	return nil
}

// PackageCacheDir returns the directory of downloaded archives.
func (c *Config) PackageCacheDir() string {
	return filepath.Join(c.InstallDir, "cache")
}

// MetadataCacheDir returns the directory of the file metadata cache.
func (c *Config) MetadataCacheDir() string {
	return filepath.Join(c.CacheDir, "metadata")
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("install_dir", d.InstallDir)
	v.SetDefault("bin_dir", d.BinDir)
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("sources", d.Sources)
	v.SetDefault("domain", d.Domain)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("cache", d.Cache)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("store", d.Store)
	v.SetDefault("wrappers", d.Wrappers)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("mongo.uri", d.Mongo.URI)
	v.SetDefault("mongo.database", d.Mongo.Database)
}

// Dir returns the configuration directory ($XDG_CONFIG_HOME/stackpkg).
func Dir() string {
	return xdg("XDG_CONFIG_HOME", ".config")
}

func dataDir() string {
	return xdg("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func cacheDir() string {
	return xdg("XDG_CACHE_HOME", ".cache")
}

func xdg(env, fallback string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(home, fallback, AppName)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
