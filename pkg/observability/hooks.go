// Package observability exposes event hooks for metrics and tracing.
//
// The resolver, the registry client and the install planner emit events
// through process-wide hook registries. Every registry starts with a no-op
// implementation, so emitting an event costs a method call when nothing is
// registered. Hooks are registered by main, never by library code, which
// keeps the libraries free of any metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetResolveHooks(&myResolveHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Resolve().OnResolveStart(ctx, session, requested)
//	// ... resolve ...
//	observability.Resolve().OnResolveComplete(ctx, session, len(plan), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// ResolveHooks receives events from dependency resolution.
type ResolveHooks interface {
	// OnResolveStart records the start of a resolution session.
	OnResolveStart(ctx context.Context, session string, requested []string)
	// OnSearch records one candidate search for a dependency.
	OnSearch(ctx context.Context, name, domain string, candidates int, duration time.Duration)
	// OnDowngrade records an implicit both-domain search falling back to local.
	OnDowngrade(ctx context.Context, session string, err error)
	// OnResolveComplete records the end of a resolution session.
	OnResolveComplete(ctx context.Context, session string, planSize int, duration time.Duration, err error)
}

// InstallHooks receives events from the install planner.
type InstallHooks interface {
	// OnFetch records an archive download or local copy.
	OnFetch(ctx context.Context, fullName, source string, duration time.Duration, err error)
	// OnInstall records one package installation.
	OnInstall(ctx context.Context, fullName string, duration time.Duration, err error)
	// OnSkip records a plan step skipped as already installed or under force.
	OnSkip(ctx context.Context, fullName, reason string)
}

// CacheHooks receives events from the registry metadata cache.
type CacheHooks interface {
	// OnLookup records a cache read for key.
	OnLookup(ctx context.Context, key string, hit bool)
	// OnStore records a cache write of size bytes.
	OnStore(ctx context.Context, key string, size int)
}

// HTTPHooks receives events from registry requests. A request that fails
// before a response arrives is reported with status 0 and a non-nil err.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, url string)
	OnResponse(ctx context.Context, method, url string, status int, duration time.Duration, err error)
}

// NoopResolveHooks ignores resolve events.
type NoopResolveHooks struct{}

func (NoopResolveHooks) OnResolveStart(context.Context, string, []string)                {}
func (NoopResolveHooks) OnSearch(context.Context, string, string, int, time.Duration)    {}
func (NoopResolveHooks) OnDowngrade(context.Context, string, error)                      {}
func (NoopResolveHooks) OnResolveComplete(context.Context, string, int, time.Duration, error) {
}

// NoopInstallHooks ignores install events.
type NoopInstallHooks struct{}

func (NoopInstallHooks) OnFetch(context.Context, string, string, time.Duration, error) {}
func (NoopInstallHooks) OnInstall(context.Context, string, time.Duration, error)       {}
func (NoopInstallHooks) OnSkip(context.Context, string, string)                        {}

// NoopCacheHooks ignores cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnLookup(context.Context, string, bool) {}
func (NoopCacheHooks) OnStore(context.Context, string, int)   {}

// NoopHTTPHooks ignores HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string) {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration, error) {
}

// hookSet holds the registered implementation of one hook interface.
type hookSet[T any] struct {
	mu    sync.RWMutex
	hooks T
	noop  T
}

func newHookSet[T any](noop T) *hookSet[T] {
	return &hookSet[T]{hooks: noop, noop: noop}
}

// set replaces the hooks; a nil h is ignored.
func (s *hookSet[T]) set(h T) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.hooks = h
	s.mu.Unlock()
}

func (s *hookSet[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hooks
}

func (s *hookSet[T]) reset() { s.set(s.noop) }

var (
	resolveHooks = newHookSet[ResolveHooks](NoopResolveHooks{})
	installHooks = newHookSet[InstallHooks](NoopInstallHooks{})
	cacheHooks   = newHookSet[CacheHooks](NoopCacheHooks{})
	httpHooks    = newHookSet[HTTPHooks](NoopHTTPHooks{})
)

// SetResolveHooks registers resolve hooks. Call it before resolving.
func SetResolveHooks(h ResolveHooks) { resolveHooks.set(h) }

// SetInstallHooks registers install hooks.
func SetInstallHooks(h InstallHooks) { installHooks.set(h) }

// SetCacheHooks registers cache hooks.
func SetCacheHooks(h CacheHooks) { cacheHooks.set(h) }

// SetHTTPHooks registers HTTP hooks.
func SetHTTPHooks(h HTTPHooks) { httpHooks.set(h) }

// Resolve returns the registered resolve hooks.
func Resolve() ResolveHooks { return resolveHooks.get() }

// Install returns the registered install hooks.
func Install() InstallHooks { return installHooks.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheHooks.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpHooks.get() }

// Reset restores every hook set to its no-op default. Used by tests.
func Reset() {
	resolveHooks.reset()
	installHooks.reset()
	cacheHooks.reset()
	httpHooks.reset()
}
