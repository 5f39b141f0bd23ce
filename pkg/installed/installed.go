// Package installed tracks the packages present in an install directory.
//
// A [Snapshot] is the read-only view the resolver consults; a [Store]
// persists records of installed specs. Two stores are provided: [FileStore]
// keeps one TOML record per package under the install directory, and
// [MongoStore] shares the installed set between machines through MongoDB.
package installed

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/stackpkg/pkg/requirement"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

// Snapshot is a read-only view of the installed packages.
type Snapshot interface {
	// All returns every installed spec.
	All() []*spec.Spec
	// IsInstalled reports whether some installed version of name satisfies req.
	IsInstalled(name string, req requirement.Requirement) bool
	// Contains reports whether the exact package is installed.
	Contains(fullName string) bool
}

// Store persists installed specs.
type Store interface {
	// Load returns the current installed set.
	Load(ctx context.Context) (*Set, error)
	// Record marks s as installed, replacing an earlier record of the same package.
	Record(ctx context.Context, s *spec.Spec) error
	// Forget removes the record of the package with the given full name.
	Forget(ctx context.Context, fullName string) error
}

// Set is an in-memory Snapshot. It is safe for concurrent use.
type Set struct {
	mu    sync.RWMutex
	specs []*spec.Spec
}

// NewSet returns a set holding specs.
func NewSet(specs ...*spec.Spec) *Set {
	s := &Set{}
	for _, sp := range specs {
		s.Add(sp)
	}
	return s
}

// Add records sp, replacing an entry with the same full name.
func (s *Set) Add(sp *spec.Spec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(sp.FullName()); i >= 0 {
		s.specs[i] = sp
		return
	}
	s.specs = append(s.specs, sp)
}

// Remove deletes the entry with the given full name.
func (s *Set) Remove(fullName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(fullName); i >= 0 {
		s.specs = slices.Delete(s.specs, i, i+1)
	}
}

// All returns the specs sorted by name, versions descending.
func (s *Set) All() []*spec.Spec {
	s.mu.RLock()
	out := slices.Clone(s.specs)
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b *spec.Spec) int {
		if a.Name != b.Name {
			if a.Name < b.Name {
				return -1
			}
			return 1
		}
		return spec.Compare(b, a)
	})
	return out
}

// Find returns the installed versions of name satisfying req, highest first.
func (s *Set) Find(name string, req requirement.Requirement) []*spec.Spec {
	var out []*spec.Spec
	for _, sp := range s.All() {
		if sp.Name == name && req.SatisfiedBy(sp.Version) {
			out = append(out, sp)
		}
	}
	return out
}

// IsInstalled implements Snapshot.
func (s *Set) IsInstalled(name string, req requirement.Requirement) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sp := range s.specs {
		if sp.Name == name && req.SatisfiedBy(sp.Version) {
			return true
		}
	}
	return false
}

// Contains implements Snapshot.
func (s *Set) Contains(fullName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index(fullName) >= 0
}

// Len returns the number of installed specs.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.specs)
}

func (s *Set) index(fullName string) int {
	return slices.IndexFunc(s.specs, func(sp *spec.Spec) bool { return sp.FullName() == fullName })
}

// Dependents returns the installed specs other than sp whose runtime
// dependencies are satisfied by sp and by no other installed version.
func (s *Set) Dependents(sp *spec.Spec) []*spec.Spec {
	all := s.All()
	var out []*spec.Spec
	for _, other := range all {
		if other.FullName() == sp.FullName() {
			continue
		}
		for _, dep := range other.Runtime {
			if !dep.Matches(sp) {
				continue
			}
			alternative := slices.ContainsFunc(all, func(c *spec.Spec) bool {
				return c.FullName() != sp.FullName() && dep.Matches(c)
			})
			if !alternative {
				out = append(out, other)
				break
			}
		}
	}
	return out
}
