package registry

import (
	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/spec"
	"github.com/matzehuels/stackpkg/pkg/version"
)

// WireSpec is one element of a versions listing.
type WireSpec struct {
	Name         string           `json:"name"`
	Version      string           `json:"version"`
	Platform     string           `json:"platform"`
	Summary      string           `json:"summary,omitempty"`
	Executables  []string         `json:"executables,omitempty"`
	Dependencies WireDependencies `json:"dependencies"`
}

// WireDependencies groups dependencies by kind.
type WireDependencies struct {
	Runtime     []WireDependency `json:"runtime"`
	Development []WireDependency `json:"development"`
}

// WireDependency is a dependency in a versions listing.
type WireDependency struct {
	Name         string   `json:"name"`
	Requirements []string `json:"requirements"`
}

// FromSpec converts s to its wire form.
func FromSpec(s *spec.Spec) WireSpec {
	w := WireSpec{
		Name:        s.Name,
		Version:     s.Version.String(),
		Platform:    s.Platform,
		Summary:     s.Summary,
		Executables: s.Executables,
		Dependencies: WireDependencies{
			Runtime:     []WireDependency{},
			Development: []WireDependency{},
		},
	}
	if w.Platform == "" {
		w.Platform = spec.PlatformAny
	}
	for _, d := range s.Runtime {
		w.Dependencies.Runtime = append(w.Dependencies.Runtime, WireDependency{d.Name, d.Requirement.Strings()})
	}
	for _, d := range s.Development {
		w.Dependencies.Development = append(w.Dependencies.Development, WireDependency{d.Name, d.Requirement.Strings()})
	}
	return w
}

// Spec converts w into a Spec. Invalid records fail with ErrCodeFormat.
func (w WireSpec) Spec() (*spec.Spec, error) {
	if err := errors.ValidatePackageName(w.Name); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "invalid version record")
	}
	v, err := version.Parse(w.Version)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "invalid version record for %s", w.Name)
	}
	s := &spec.Spec{
		Name:        w.Name,
		Version:     v,
		Platform:    w.Platform,
		Summary:     w.Summary,
		Executables: w.Executables,
	}
	if s.Platform == "" {
		s.Platform = spec.PlatformAny
	}
	for _, d := range w.Dependencies.Runtime {
		dep, err := spec.NewDependency(d.Name, spec.KindRuntime, d.Requirements...)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFormat, err, "invalid dependency %s of %s", d.Name, w.Name)
		}
		s.Runtime = append(s.Runtime, dep)
	}
	for _, d := range w.Dependencies.Development {
		dep, err := spec.NewDependency(d.Name, spec.KindDevelopment, d.Requirements...)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFormat, err, "invalid dependency %s of %s", d.Name, w.Name)
		}
		s.Development = append(s.Development, dep)
	}
	return s, nil
}
