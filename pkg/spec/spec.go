// Package spec defines package metadata: concrete package versions (Spec),
// the dependencies they declare, and search results pairing a spec with the
// source it was found in.
//
// Specs are produced by the registry client, the local cache scanner or the
// installed-set stores and are treated as immutable afterwards.
package spec

import (
	"cmp"
	"fmt"
	"runtime"
	"strings"

	"github.com/matzehuels/stackpkg/pkg/requirement"
	"github.com/matzehuels/stackpkg/pkg/version"
)

// PlatformAny marks a platform-independent package.
const PlatformAny = "any"

// Kind tags a dependency as runtime or development.
type Kind string

// Dependency kinds.
const (
	KindRuntime     Kind = "runtime"
	KindDevelopment Kind = "development"
)

// Dependency is a named version requirement.
type Dependency struct {
	Name        string                  // Package name
	Requirement requirement.Requirement // Accepted versions
	Kind        Kind                    // Runtime or development
}

// NewDependency parses exprs into a dependency on name. An empty kind means
// runtime.
func NewDependency(name string, kind Kind, exprs ...string) (Dependency, error) {
	req, err := requirement.Parse(exprs...)
	if err != nil {
		return Dependency{}, err
	}
	if kind == "" {
		kind = KindRuntime
	}
	return Dependency{Name: name, Requirement: req, Kind: kind}, nil
}

// MustDependency is like NewDependency but panics on a malformed requirement.
func MustDependency(name string, exprs ...string) Dependency {
	d, err := NewDependency(name, KindRuntime, exprs...)
	if err != nil {
		panic(err)
	}
	return d
}

// String renders "name (req)", adding the kind for development dependencies.
func (d Dependency) String() string {
	if d.Kind == KindDevelopment {
		return fmt.Sprintf("%s (%s, development)", d.Name, d.Requirement)
	}
	return fmt.Sprintf("%s (%s)", d.Name, d.Requirement)
}

// Merge combines d with another dependency on the same name. The kind of d
// is kept.
func (d Dependency) Merge(o Dependency) Dependency {
	return Dependency{
		Name:        d.Name,
		Requirement: requirement.Merge(d.Requirement, o.Requirement),
		Kind:        d.Kind,
	}
}

// Matches reports whether s has the dependency's name and a satisfying version.
func (d Dependency) Matches(s *Spec) bool {
	return s != nil && s.Name == d.Name && d.Requirement.SatisfiedBy(s.Version)
}

// Spec is the metadata of one concrete package version.
type Spec struct {
	Name        string          // Package name
	Version     version.Version // Concrete version
	Platform    string          // "any" or GOOS-GOARCH
	Summary     string          // One-line description
	Executables []string        // Files under data/bin exposed through wrappers
	Runtime     []Dependency    // Runtime dependencies, in declaration order
	Development []Dependency    // Development dependencies, in declaration order
}

// FullName returns name-version, suffixed with -platform for platform
// specific packages. It is unique per concrete package.
func (s *Spec) FullName() string {
	if s.Platform == "" || s.Platform == PlatformAny {
		return s.Name + "-" + s.Version.String()
	}
	return s.Name + "-" + s.Version.String() + "-" + s.Platform
}

// String returns the full name.
func (s *Spec) String() string { return s.FullName() }

// Dependencies returns the runtime dependencies, followed by the development
// dependencies when dev is set.
func (s *Spec) Dependencies(dev bool) []Dependency {
	deps := append([]Dependency(nil), s.Runtime...)
	if dev {
		deps = append(deps, s.Development...)
	}
	return deps
}

// IsGeneric reports whether the spec is platform independent.
func (s *Spec) IsGeneric() bool {
	return s.Platform == "" || s.Platform == PlatformAny
}

// Compare orders specs by version, then name, then platform. Generic specs
// sort before platform specific ones of the same version.
func Compare(a, b *Spec) int {
	if c := a.Version.Compare(b.Version); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if a.IsGeneric() != b.IsGeneric() {
		if a.IsGeneric() {
			return -1
		}
		return 1
	}
	return cmp.Compare(a.Platform, b.Platform)
}

// LocalPlatform returns the platform string of the running binary.
func LocalPlatform() string {
	return runtime.GOOS + "-" + runtime.GOARCH
}

// PlatformMatches reports whether a package built for platform can be
// installed on local.
func PlatformMatches(platform, local string) bool {
	return platform == "" || platform == PlatformAny || platform == local
}
