package install

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackpkg/pkg/installed"
	"github.com/matzehuels/stackpkg/pkg/observability"
	"github.com/matzehuels/stackpkg/pkg/resolve"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

// CacheDir is the directory below the install root that receives fetched
// archives.
const CacheDir = "cache"

// Fetcher downloads the archive of s from src into destDir.
type Fetcher interface {
	Fetch(ctx context.Context, s *spec.Spec, src spec.Source, destDir string) (string, error)
}

// Installer installs a fetched archive.
type Installer interface {
	Install(ctx context.Context, archivePath string, opts Options) (*spec.Spec, error)
}

// Options configures plan execution and installation.
type Options struct {
	InstallDir         string        // Install root (holds the lock, cache and packages)
	Force              bool          // Skip specs whose fetch fails; skip dependency checks
	IgnoreDependencies bool          // Skip installer dependency checks
	Development        bool          // Installing with development dependencies
	Wrappers           bool          // Write executable wrappers
	LockTimeout        time.Duration // Wait for the install lock (default: 30s)
	Logger             *log.Logger   // Progress output (default: log.Default())
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return opts
}

// Planner executes install plans.
type Planner struct {
	fetcher   Fetcher
	installer Installer
	snapshot  installed.Snapshot
	hooks     *Hooks
	opts      Options
}

// NewPlanner creates a Planner. A nil snapshot means nothing is installed
// and nil hooks means none are run.
func NewPlanner(f Fetcher, inst Installer, snapshot installed.Snapshot, hooks *Hooks, opts Options) *Planner {
	if snapshot == nil {
		snapshot = installed.NewSet()
	}
	if hooks == nil {
		hooks = &Hooks{}
	}
	return &Planner{fetcher: f, installer: inst, snapshot: snapshot, hooks: hooks, opts: opts.WithDefaults()}
}

// Execute fetches and installs every spec of res.Plan in order and returns
// the specs installed. On a fatal failure the specs installed so far are
// returned together with the error. Post-install hooks run in both cases.
func (p *Planner) Execute(ctx context.Context, res *resolve.Result) ([]*spec.Spec, error) {
	unlock, err := Lock(ctx, p.opts.InstallDir, p.opts.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	done, err := p.run(ctx, res)
	if hookErr := p.hooks.Run(ctx, res, done); hookErr != nil {
		p.opts.Logger.Warn("post-install hook failed", "err", hookErr)
		if err == nil {
			err = hookErr
		}
	}
	return done, err
}

func (p *Planner) run(ctx context.Context, res *resolve.Result) ([]*spec.Spec, error) {
	logger := p.opts.Logger.With("session", shortID(res.ID))
	cacheDir := filepath.Join(p.opts.InstallDir, CacheDir)
	last := len(res.Plan) - 1

	var done []*spec.Spec
	for i, s := range res.Plan {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if i != last && p.snapshot.Contains(s.FullName()) {
			logger.Debug("already installed", "package", s.FullName())
			observability.Install().OnSkip(ctx, s.FullName(), "installed")
			continue
		}

		path, err := p.fetcher.Fetch(ctx, s, res.Sources[s.FullName()], cacheDir)
		if err != nil {
			if p.opts.Force && ctx.Err() == nil {
				logger.Warn("skipping package", "package", s.FullName(), "err", err)
				observability.Install().OnSkip(ctx, s.FullName(), "fetch failed")
				continue
			}
			return done, err
		}

		start := time.Now()
		got, err := p.installer.Install(ctx, path, p.opts)
		observability.Install().OnInstall(ctx, s.FullName(), time.Since(start), err)
		if err != nil {
			return done, err
		}
		logger.Info("installed", "package", got.FullName())
		done = append(done, got)
	}
	return done, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
