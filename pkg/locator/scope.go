package locator

import (
	"slices"
	"sync"

	"github.com/matzehuels/stackpkg/pkg/spec"
)

// Scope holds the search state of one top-level resolution: the effective
// domain, the advisory errors collected so far and memoized registry results.
// A Scope must not be shared between resolutions.
type Scope struct {
	Session string // Resolution session id, for logs and hooks

	mu       sync.Mutex
	domain   Domain
	implicit bool
	errs     []error
	memo     map[string]*remoteResult
}

type remoteResult struct {
	done     chan struct{}
	cands    []spec.Candidate
	errs     []error
	reported bool
}

// NewScope returns a scope searching domain. implicit marks a "both" domain
// that was not explicitly requested; only such a scope is downgraded to
// local-only after a transport failure.
func NewScope(domain Domain, implicit bool) *Scope {
	return &Scope{domain: domain, implicit: implicit, memo: make(map[string]*remoteResult)}
}

// Domain returns the effective domain.
func (s *Scope) Domain() Domain {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.domain
}

// Errors returns the advisory errors recorded so far.
func (s *Scope) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.errs)
}

// record appends errs and reports whether the scope was downgraded to local.
func (s *Scope) record(errs []error, transport bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, errs...)
	if transport && s.implicit && s.domain == DomainBoth {
		s.domain = DomainLocal
		return true
	}
	return false
}

// claim returns the memo entry for key and whether the caller must compute it.
func (s *Scope) claim(key string) (*remoteResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.memo[key]; ok {
		return r, false
	}
	r := &remoteResult{done: make(chan struct{})}
	s.memo[key] = r
	return r, true
}

// unreported returns the errors of r the first time it is called for r.
func (s *Scope) unreported(r *remoteResult) []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.reported {
		return nil
	}
	r.reported = true
	return r.errs
}
