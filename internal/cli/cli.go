package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackpkg/pkg/cache"
	"github.com/matzehuels/stackpkg/pkg/config"
	"github.com/matzehuels/stackpkg/pkg/install"
	"github.com/matzehuels/stackpkg/pkg/installed"
	"github.com/matzehuels/stackpkg/pkg/localcache"
	"github.com/matzehuels/stackpkg/pkg/locator"
	"github.com/matzehuels/stackpkg/pkg/registry"
	"github.com/matzehuels/stackpkg/pkg/resolve"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	installDir string
	logFormat  string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig loads the configuration once per process.
func (c *CLI) loadConfig(ctx context.Context) (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, path, err := config.Load(ctx, c.configPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	if c.installDir != "" {
		cfg.InstallDir = c.installDir
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Collaborator Factories
// =============================================================================

// searchFlags are the resolution flags shared by install and plan.
type searchFlags struct {
	local, remote, both bool
	sources             []string
	prerelease          bool
	ignoreDependencies  bool
	force               bool
	development         bool
	developmentAll      bool
	minimalDeps         bool
	refresh             bool
	noCache             bool
	platform            string
	concurrency         int
}

// options maps the flags onto resolver options. Without an explicit domain
// flag the configured domain applies, and a configured "both" stays implicit.
func (f *searchFlags) options(cfg *config.Config, logger *log.Logger) (resolve.Options, error) {
	domain, explicit := f.explicitDomain()
	if !explicit {
		d, err := locator.ParseDomain(cfg.Domain)
		if err != nil {
			return resolve.Options{}, err
		}
		domain = d
	}
	return resolve.Options{
		Domain:             domain,
		Implicit:           !explicit && domain == locator.DomainBoth,
		IgnoreDependencies: f.ignoreDependencies,
		Force:              f.force,
		Development:        f.developmentMode(),
		MinimalDeps:        f.minimalDeps,
		Logger:             logger,
	}, nil
}

func (c *CLI) metadataCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	case config.CacheNone:
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(cfg.MetadataCacheDir())
	if err != nil {
		c.Logger.Warn("metadata cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

func (c *CLI) newRegistry(ctx context.Context, cfg *config.Config, f *searchFlags) (*registry.Registry, cache.Cache, error) {
	backend, err := c.metadataCache(ctx, cfg, f.noCache)
	if err != nil {
		return nil, nil, err
	}
	sources := cfg.Sources
	if len(f.sources) > 0 {
		sources = f.sources
	}
	var keyer cache.Keyer
	if cfg.Cache == config.CacheRedis {
		keyer = cache.NewScopedKeyer(nil, appName+":")
	}
	return registry.New(registry.Options{
		Sources:  sources,
		Cache:    backend,
		Keyer:    keyer,
		CacheTTL: cfg.CacheTTL,
		Refresh:  f.refresh,
		Logger:   c.Logger,
	}), backend, nil
}

// storeCloser releases a store's connection.
type storeCloser func()

func (c *CLI) openStore(ctx context.Context, cfg *config.Config) (installed.Store, storeCloser, error) {
	if cfg.Store == config.StoreMongo {
		host, _ := os.Hostname()
		m, err := installed.NewMongoStore(ctx, installed.MongoConfig{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Host:     host + ":" + cfg.InstallDir,
		})
		if err != nil {
			return nil, nil, err
		}
		return m, func() { _ = m.Close(context.Background()) }, nil
	}
	return installed.NewFileStore(cfg.InstallDir, c.Logger), func() {}, nil
}

// session bundles the collaborators of an install or plan run.
type session struct {
	cfg      *config.Config
	registry *registry.Registry
	store    installed.Store
	snapshot *installed.Set
	resolver *resolve.Resolver
	close    storeCloser
}

func (c *CLI) newSession(ctx context.Context, f *searchFlags) (*session, error) {
	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := f.options(cfg, c.Logger)
	if err != nil {
		return nil, err
	}
	reg, backend, err := c.newRegistry(ctx, cfg, f)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := c.openStore(ctx, cfg)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	release := func() {
		closeStore()
		_ = backend.Close()
	}
	snapshot, err := store.Load(ctx)
	if err != nil {
		release()
		return nil, err
	}
	concurrency := f.concurrency
	if concurrency <= 0 {
		concurrency = cfg.Concurrency
	}
	loc := locator.New(localcache.New(cfg.PackageCacheDir(), c.Logger), reg, locator.Options{
		Prerelease:  f.prerelease,
		Platform:    f.platform,
		Concurrency: concurrency,
		Logger:      c.Logger,
	})
	return &session{
		cfg:      cfg,
		registry: reg,
		store:    store,
		snapshot: snapshot,
		resolver: resolve.New(loc, snapshot, opts),
		close:    release,
	}, nil
}

func (s *session) layout() install.Layout {
	return install.Layout{InstallDir: s.cfg.InstallDir, BinDir: s.cfg.BinDir}
}
