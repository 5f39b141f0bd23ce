// Package resolve computes install plans.
//
// A [Resolver] expands the dependency frontier of the requested packages
// breadth first. Every dependency is merged into the accumulated
// requirement for its name and searched through the [locator.Locator];
// candidates are inserted into a [depgraph.Graph] tentatively and pruned once
// the frontier is drained. The plan is the graph's install order: leaf
// dependencies first, requested packages last.
//
// Each call to [Resolver.Resolve] runs in its own session carrying the
// visited set, search scope and source map, so one Resolver can serve
// concurrent resolutions.
package resolve

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stackpkg/pkg/depgraph"
	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/installed"
	"github.com/matzehuels/stackpkg/pkg/locator"
	"github.com/matzehuels/stackpkg/pkg/observability"
	"github.com/matzehuels/stackpkg/pkg/requirement"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

// Request names an explicitly requested package.
type Request struct {
	Name        string                  // Package name or path to a .pkg archive
	Requirement requirement.Requirement // Accepted versions
}

// ParseRequest parses "name" or "name:requirement", e.g. "rake:~> 13.0".
func ParseRequest(arg string) (Request, error) {
	name, expr, _ := strings.Cut(arg, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return Request{}, errors.New(errors.ErrCodeInvalidInput, "empty package name in %q", arg)
	}
	req, err := requirement.Parse(expr)
	if err != nil {
		return Request{}, err
	}
	return Request{Name: name, Requirement: req}, nil
}

// String renders the request as accepted by ParseRequest.
func (r Request) String() string {
	if r.Requirement.IsDefault() {
		return r.Name
	}
	return r.Name + ":" + r.Requirement.String()
}

// Resolver turns requested packages into install plans.
type Resolver struct {
	locator   *locator.Locator
	installed installed.Snapshot
	opts      Options
}

// New creates a Resolver. A nil snapshot means nothing is installed.
func New(loc *locator.Locator, snapshot installed.Snapshot, opts Options) *Resolver {
	if snapshot == nil {
		snapshot = installed.NewSet()
	}
	return &Resolver{locator: loc, installed: snapshot, opts: opts.WithDefaults()}
}

// Resolve locates each request and computes the install plan. Requests
// without a candidate fail with a *errors.NotFoundError; conflicting
// requirements fail with a *errors.UnresolvableError.
func (r *Resolver) Resolve(ctx context.Context, reqs ...Request) (*Result, error) {
	s := r.newSession()
	start := time.Now()

	names := make([]string, len(reqs))
	for i, req := range reqs {
		names[i] = req.String()
	}
	observability.Resolve().OnResolveStart(ctx, s.id, names)
	s.logger.Debug("resolving", "requests", names, "domain", s.scope.Domain())

	res, err := s.resolve(ctx, reqs)
	size := 0
	if res != nil {
		size = len(res.Plan)
	}
	observability.Resolve().OnResolveComplete(ctx, s.id, size, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("resolved", "plan", size, "duration", time.Since(start))
	return res, nil
}

// ResolveCandidates computes the plan for packages that were already
// located.
func (r *Resolver) ResolveCandidates(ctx context.Context, requested ...spec.Candidate) (*Result, error) {
	s := r.newSession()
	start := time.Now()

	names := make([]string, len(requested))
	for i, c := range requested {
		names[i] = c.Spec.FullName()
	}
	observability.Resolve().OnResolveStart(ctx, s.id, names)

	res, err := s.plan(ctx, requested)
	size := 0
	if res != nil {
		size = len(res.Plan)
	}
	observability.Resolve().OnResolveComplete(ctx, s.id, size, time.Since(start), err)
	return res, err
}

// session is the mutable state of one resolution.
type session struct {
	*Resolver
	id       string
	logger   *log.Logger
	scope    *locator.Scope
	graph    *depgraph.Graph
	visited  map[string]bool
	sources  map[string]spec.Source
	topLevel map[string]bool
}

func (r *Resolver) newSession() *session {
	id := uuid.NewString()
	scope := locator.NewScope(r.opts.Domain, r.opts.Implicit)
	scope.Session = id
	s := &session{
		Resolver: r,
		id:       id,
		logger:   r.opts.Logger.With("session", id[:8]),
		scope:    scope,
		visited:  make(map[string]bool),
		sources:  make(map[string]spec.Source),
		topLevel: make(map[string]bool),
	}
	s.graph = depgraph.NewFunc(s.development)
	return s
}

func (s *session) resolve(ctx context.Context, reqs []Request) (*Result, error) {
	requested := make([]spec.Candidate, 0, len(reqs))
	for _, req := range reqs {
		c, err := s.locator.FindRequested(ctx, req.Name, req.Requirement, s.scope)
		if err != nil {
			return nil, err
		}
		requested = append(requested, c)
	}
	return s.plan(ctx, requested)
}

func (s *session) plan(ctx context.Context, requested []spec.Candidate) (*Result, error) {
	keep := make(map[string]bool, len(requested))
	queue := make([]*spec.Spec, 0, len(requested))
	for _, c := range requested {
		s.graph.Add(c.Spec)
		s.addSource(c)
		keep[c.Spec.Name] = true
		s.topLevel[c.Spec.FullName()] = true
		queue = append(queue, c.Spec)
	}

	if !s.opts.IgnoreDependencies {
		if err := s.expand(ctx, queue); err != nil {
			return nil, err
		}
	}

	if n := s.graph.PruneUnsatisfied(); n > 0 {
		s.logger.Debug("pruned unsatisfied candidates", "count", n)
	}
	for _, dep := range s.graph.Requirements() {
		s.logger.Debug("requirement", "dep", dep)
	}
	if !s.opts.IgnoreDependencies && !s.opts.Force {
		if reasons := s.graph.Reasons(s.installed); len(reasons) > 0 {
			return nil, &errors.UnresolvableError{Reasons: reasons}
		}
	}

	for _, sp := range s.graph.Specs() {
		if !keep[sp.Name] && s.installed.Contains(sp.FullName()) {
			s.graph.Remove(sp.FullName())
		}
	}

	for _, e := range s.graph.Cycles() {
		s.logger.Debug("dependency cycle", "from", e.From, "to", e.To, "requirement", e.Meta["requirement"])
	}
	plan := s.graph.InstallOrder()
	sources := make(map[string]spec.Source, len(plan))
	for _, sp := range plan {
		sources[sp.FullName()] = s.sources[sp.FullName()]
	}
	return &Result{
		ID:        s.id,
		Plan:      plan,
		Sources:   sources,
		Requested: requested,
		Errors:    s.scope.Errors(),
		Graph:     s.graph,
	}, nil
}

// expand walks the dependency frontier breadth first. Names are visited
// once; the first dequeued candidate for a name decides which transitive
// dependencies are explored.
func (s *session) expand(ctx context.Context, queue []*spec.Spec) error {
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		cur := queue[0]
		queue = queue[1:]
		if cur == nil || s.visited[cur.Name] {
			continue
		}
		s.visited[cur.Name] = true

		deps := cur.Dependencies(s.development(cur))
		s.locator.Prefetch(ctx, s.searchable(deps), s.scope)

		for _, dep := range deps {
			s.graph.Accumulate(dep)
			if s.keepInstalled(dep) {
				s.logger.Debug("installed version satisfies dependency", "dep", dep)
				continue
			}

			cands, err := s.locator.Find(ctx, dep, s.scope)
			if err != nil {
				return err
			}
			satisfied := s.installed.IsInstalled(dep.Name, dep.Requirement)
			for _, c := range cands {
				queue = append(queue, c.Spec)
				if !satisfied {
					s.graph.Add(c.Spec)
					s.addSource(c)
				}
			}
		}
	}
	return nil
}

func (s *session) development(sp *spec.Spec) bool {
	switch s.opts.Development {
	case DevDeep:
		return true
	case DevShallow:
		return s.topLevel[sp.FullName()]
	}
	return false
}

func (s *session) keepInstalled(dep spec.Dependency) bool {
	return s.opts.MinimalDeps && s.installed.IsInstalled(dep.Name, dep.Requirement)
}

// searchable drops the dependencies the serial loop will not search.
func (s *session) searchable(deps []spec.Dependency) []spec.Dependency {
	out := make([]spec.Dependency, 0, len(deps))
	for _, dep := range deps {
		if !s.keepInstalled(dep) {
			out = append(out, dep)
		}
	}
	return out
}

func (s *session) addSource(c spec.Candidate) {
	if _, ok := s.sources[c.Spec.FullName()]; !ok {
		s.sources[c.Spec.FullName()] = c.Source
	}
}
