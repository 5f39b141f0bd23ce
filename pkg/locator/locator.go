// Package locator finds and ranks candidates for a dependency.
//
// A [Locator] combines the local archive cache and the registry. Searches
// run inside a per-resolution [Scope] that tracks the effective [Domain]:
// when the registry cannot be reached during an implicit "both" search, the
// scope is downgraded to local-only for the rest of the resolution and the
// transport errors are kept as advisory information.
//
// Candidates are ranked highest version first; for identical specs local
// archives precede registry entries so that an already downloaded archive
// wins without a network round-trip.
package locator

import (
	"context"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stackpkg/pkg/archive"
	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/observability"
	"github.com/matzehuels/stackpkg/pkg/registry"
	"github.com/matzehuels/stackpkg/pkg/requirement"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

// DefaultConcurrency bounds parallel registry lookups in Prefetch.
const DefaultConcurrency = 8

// LocalSource enumerates local archives of a package.
type LocalSource interface {
	Find(ctx context.Context, name string) ([]spec.Candidate, []error)
}

// RemoteSource searches the registry.
type RemoteSource interface {
	Search(ctx context.Context, q registry.Query) ([]spec.Candidate, []error)
}

// Options configures a Locator.
type Options struct {
	Prerelease  bool        // Admit prerelease versions for every requirement
	Platform    string      // Local platform (default: spec.LocalPlatform())
	Concurrency int         // Parallel registry lookups (default: 8)
	Logger      *log.Logger // Debug output (default: log.Default())
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Platform == "" {
		opts.Platform = spec.LocalPlatform()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return opts
}

// Locator searches local and remote sources. It holds no per-resolution
// state and is safe for concurrent use with distinct Scopes.
type Locator struct {
	local  LocalSource
	remote RemoteSource
	opts   Options
}

// New creates a Locator. Either source may be nil.
func New(local LocalSource, remote RemoteSource, opts Options) *Locator {
	return &Locator{local: local, remote: remote, opts: opts.WithDefaults()}
}

// Find returns the ranked candidates for dep within scope. Local archives
// are matched by name only; registry results already satisfy the
// requirement. The only error returned is context cancellation.
func (l *Locator) Find(ctx context.Context, dep spec.Dependency, scope *Scope) ([]spec.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	domain := scope.Domain()

	var out []spec.Candidate
	if domain.Local() && l.local != nil {
		cands, errs := l.local.Find(ctx, dep.Name)
		scope.record(errs, false)
		for _, c := range cands {
			if l.admit(c.Spec, dep.Requirement) {
				out = append(out, c)
			}
		}
	}

	if domain.Remote() && l.remote != nil {
		r := l.searchRemote(ctx, dep, scope)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if errs := scope.unreported(r); len(errs) > 0 && scope.record(errs, hasTransport(errs)) {
			l.opts.Logger.Warn("registry unavailable, searching local packages only", "err", errs[0])
			observability.Resolve().OnDowngrade(ctx, scope.Session, errs[0])
		}
		out = append(out, r.cands...)
	}

	Rank(out)
	observability.Resolve().OnSearch(ctx, dep.Name, domain.String(), len(out), time.Since(start))
	l.opts.Logger.Debug("candidates", "dep", dep, "domain", domain, "count", len(out))
	return out, nil
}

// Prefetch issues the registry lookups of deps concurrently and memoizes
// them in scope. Later Find calls for the same dependencies consume the
// memoized results in their own order.
func (l *Locator) Prefetch(ctx context.Context, deps []spec.Dependency, scope *Scope) {
	if l.remote == nil || len(deps) < 2 || !scope.Domain().Remote() {
		return
	}
	var g errgroup.Group
	g.SetLimit(l.opts.Concurrency)
	for _, dep := range deps {
		r, owner := scope.claim(memoKey(dep))
		if !owner {
			continue
		}
		g.Go(func() error {
			r.cands, r.errs = l.remote.Search(ctx, l.query(dep))
			close(r.done)
			return nil
		})
	}
	_ = g.Wait()
}

// FindRequested returns the best candidate for an explicitly requested
// package. A name that is a path to an existing archive is used directly.
// Without a match it fails with a *errors.NotFoundError carrying the
// advisory errors of the scope.
func (l *Locator) FindRequested(ctx context.Context, name string, req requirement.Requirement, scope *Scope) (spec.Candidate, error) {
	if strings.HasSuffix(name, archive.Ext) {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			s, err := archive.ReadSpec(name)
			if err != nil {
				return spec.Candidate{}, err
			}
			return spec.Candidate{Spec: s, Source: spec.Local(name)}, nil
		}
	}

	dep := spec.Dependency{Name: name, Requirement: req, Kind: spec.KindRuntime}
	cands, err := l.Find(ctx, dep, scope)
	if err != nil {
		return spec.Candidate{}, err
	}
	for _, c := range cands {
		if dep.Matches(c.Spec) {
			return c, nil
		}
	}
	return spec.Candidate{}, &errors.NotFoundError{Name: name, Requirement: req.String(), Advisory: scope.Errors()}
}

// Rank sorts candidates highest spec first; identical specs keep local
// sources ahead of remote ones, otherwise the input order is preserved.
func Rank(cands []spec.Candidate) {
	slices.SortStableFunc(cands, func(a, b spec.Candidate) int {
		if c := spec.Compare(b.Spec, a.Spec); c != 0 {
			return c
		}
		switch {
		case a.Source.IsLocal() && !b.Source.IsLocal():
			return -1
		case !a.Source.IsLocal() && b.Source.IsLocal():
			return 1
		}
		return 0
	})
}

func (l *Locator) searchRemote(ctx context.Context, dep spec.Dependency, scope *Scope) *remoteResult {
	r, owner := scope.claim(memoKey(dep))
	if owner {
		r.cands, r.errs = l.remote.Search(ctx, l.query(dep))
		close(r.done)
		return r
	}
	select {
	case <-r.done:
	case <-ctx.Done():
	}
	return r
}

func (l *Locator) query(dep spec.Dependency) registry.Query {
	return registry.Query{
		Name:        dep.Name,
		Requirement: dep.Requirement,
		All:         dep.Requirement.Specific(),
		Prerelease:  l.opts.Prerelease,
		Platform:    l.opts.Platform,
	}
}

func (l *Locator) admit(s *spec.Spec, req requirement.Requirement) bool {
	if s.Version.IsPrerelease() && !l.opts.Prerelease && !req.IsPrerelease() {
		return false
	}
	return spec.PlatformMatches(s.Platform, l.opts.Platform)
}

func memoKey(dep spec.Dependency) string {
	return dep.Name + "\x00" + dep.Requirement.String()
}

func hasTransport(errs []error) bool {
	for _, err := range errs {
		if errors.Is(err, errors.ErrCodeTransport) {
			return true
		}
	}
	return false
}
