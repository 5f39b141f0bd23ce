package registry

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackpkg/pkg/buildinfo"
	"github.com/matzehuels/stackpkg/pkg/cache"
	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/httputil"
	"github.com/matzehuels/stackpkg/pkg/requirement"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

const (
	DefaultSource   = "http://localhost:8808" // Default registry URI (stackpkg serve)
	DefaultCacheTTL = time.Hour               // Default metadata cache duration
)

// Options configures a Registry.
type Options struct {
	Sources    []string      // Registry base URIs, searched in order (default: DefaultSource)
	Cache      cache.Cache   // Metadata cache (default: none)
	Keyer      cache.Keyer   // Cache key derivation (default: cache.DefaultKeyer)
	CacheTTL   time.Duration // Metadata cache duration (default: 1h)
	Refresh    bool          // Bypass cache for fresh data
	Timeout    time.Duration // Per-request timeout (default: 10s)
	Attempts   int           // Attempts per request (default: 3)
	RetryDelay time.Duration // Initial backoff (default: 1s)
	Logger     *log.Logger   // Debug output (default: log.Default())
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if len(opts.Sources) == 0 {
		opts.Sources = []string{DefaultSource}
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = httputil.DefaultTimeout
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return opts
}

// Registry searches and fetches from an ordered list of sources.
type Registry struct {
	client  *Client
	sources []string
	keyer   cache.Keyer
	refresh bool
	logger  *log.Logger
}

// New creates a Registry.
func New(opts Options) *Registry {
	opts = opts.WithDefaults()
	client := NewClient(opts.Cache, opts.CacheTTL, map[string]string{
		"Accept":     "application/json",
		"User-Agent": buildinfo.UserAgent(),
	})
	client.http = httputil.NewClient(opts.Timeout)
	client.backoff = httputil.Backoff{
		Attempts: opts.Attempts,
		Delay:    opts.RetryDelay,
		OnRetry: func(attempt int, err error) {
			opts.Logger.Debug("retrying registry request", "attempt", attempt, "err", err)
		},
	}

	sources := make([]string, len(opts.Sources))
	for i, s := range opts.Sources {
		sources[i] = strings.TrimRight(s, "/")
	}
	return &Registry{
		client:  client,
		sources: sources,
		keyer:   opts.Keyer,
		refresh: opts.Refresh,
		logger:  opts.Logger,
	}
}

// Sources returns the configured source URIs in search order.
func (r *Registry) Sources() []string { return slices.Clone(r.sources) }

// Query selects versions of one package.
type Query struct {
	Name        string                  // Exact package name
	Requirement requirement.Requirement // Accepted versions
	All         bool                    // Every match instead of the newest per platform
	Prerelease  bool                    // Admit prerelease versions
	Platform    string                  // Local platform; empty admits every platform
}

// Search returns the candidates matching q from every source, in source
// order, plus one TRANSPORT error per source that could not be queried.
func (r *Registry) Search(ctx context.Context, q Query) ([]spec.Candidate, []error) {
	var (
		out  []spec.Candidate
		errs []error
	)
	for _, src := range r.sources {
		specs, err := r.Versions(ctx, src, q.Name)
		if err != nil {
			r.logger.Debug("registry search failed", "source", src, "name", q.Name, "err", err)
			errs = append(errs, err)
			continue
		}
		for _, s := range Filter(specs, q) {
			out = append(out, spec.Candidate{Spec: s, Source: spec.Remote(src)})
		}
	}
	return out, errs
}

// Versions lists every version of name known to source. An unknown package
// yields an empty list. Failures carry ErrCodeTransport, or ErrCodeFormat for
// an unreadable listing.
func (r *Registry) Versions(ctx context.Context, source, name string) ([]*spec.Spec, error) {
	endpoint := fmt.Sprintf("%s/api/v1/versions/%s.json", strings.TrimRight(source, "/"), url.PathEscape(name))

	var records []WireSpec
	err := r.client.Cached(ctx, r.keyer.MetadataKey(source, name), r.refresh, &records, func() error {
		records = nil
		return r.client.Get(ctx, endpoint, &records)
	})
	switch {
	case errors.Is(err, errors.ErrCodeFormat):
		return nil, err
	case isNotFound(err):
		return nil, nil
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeTransport, err, "query %s for %s", source, name)
	}

	specs := make([]*spec.Spec, 0, len(records))
	for _, rec := range records {
		s, err := rec.Spec()
		if err != nil {
			r.logger.Warn("skipping version record", "source", source, "name", name, "err", err)
			continue
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// Filter keeps the specs matching q. Unless q.All is set only the highest
// version per platform survives.
func Filter(specs []*spec.Spec, q Query) []*spec.Spec {
	var out []*spec.Spec
	latest := make(map[string]int)
	for _, s := range specs {
		if s.Name != q.Name || !q.Requirement.SatisfiedBy(s.Version) {
			continue
		}
		if s.Version.IsPrerelease() && !q.Prerelease && !q.Requirement.IsPrerelease() {
			continue
		}
		if q.Platform != "" && !spec.PlatformMatches(s.Platform, q.Platform) {
			continue
		}
		if q.All {
			out = append(out, s)
			continue
		}
		key := s.Platform
		if s.IsGeneric() {
			key = spec.PlatformAny
		}
		if i, ok := latest[key]; ok {
			if spec.Compare(s, out[i]) > 0 {
				out[i] = s
			}
			continue
		}
		latest[key] = len(out)
		out = append(out, s)
	}
	return out
}

func isNotFound(err error) bool {
	return stderrors.Is(err, httputil.ErrNotFound)
}
