package spec

import (
	"bytes"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/version"
)

// document is the on-disk TOML layout of a spec.
type document struct {
	Name         string          `toml:"name"`
	Version      string          `toml:"version"`
	Platform     string          `toml:"platform,omitempty"`
	Summary      string          `toml:"summary,omitempty"`
	Executables  []string        `toml:"executables,omitempty"`
	Dependencies []dependencyDoc `toml:"dependencies,omitempty"`
}

type dependencyDoc struct {
	Name         string   `toml:"name"`
	Requirements []string `toml:"requirements"`
	Kind         string   `toml:"kind,omitempty"`
}

// Parse decodes a TOML spec document. Corrupt input, a missing name or an
// invalid version or requirement fail with ErrCodeFormat.
func Parse(data []byte) (*Spec, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "invalid package metadata")
	}
	if err := errors.ValidatePackageName(doc.Name); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "invalid package metadata")
	}
	v, err := version.Parse(doc.Version)
	if err != nil || doc.Version == "" {
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "invalid version %q in metadata for %s", doc.Version, doc.Name)
	}

	s := &Spec{
		Name:        doc.Name,
		Version:     v,
		Platform:    doc.Platform,
		Summary:     doc.Summary,
		Executables: doc.Executables,
	}
	if s.Platform == "" {
		s.Platform = PlatformAny
	}
	for _, d := range doc.Dependencies {
		kind := Kind(d.Kind)
		if kind != "" && kind != KindRuntime && kind != KindDevelopment {
			return nil, errors.New(errors.ErrCodeFormat, "unknown dependency kind %q in metadata for %s", d.Kind, doc.Name)
		}
		dep, err := NewDependency(d.Name, kind, d.Requirements...)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFormat, err, "invalid dependency %s in metadata for %s", d.Name, doc.Name)
		}
		if dep.Kind == KindDevelopment {
			s.Development = append(s.Development, dep)
		} else {
			s.Runtime = append(s.Runtime, dep)
		}
	}
	return s, nil
}

// Marshal encodes s as a TOML spec document readable by Parse.
func Marshal(s *Spec) ([]byte, error) {
	doc := document{
		Name:        s.Name,
		Version:     s.Version.String(),
		Platform:    s.Platform,
		Summary:     s.Summary,
		Executables: s.Executables,
	}
	for _, d := range s.Dependencies(true) {
		doc.Dependencies = append(doc.Dependencies, dependencyDoc{
			Name:         d.Name,
			Requirements: d.Requirement.Strings(),
			Kind:         string(d.Kind),
		})
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode metadata for %s", s.FullName())
	}
	return buf.Bytes(), nil
}
