package spec

import "fmt"

// SourceKind tells where a candidate was found.
type SourceKind int

// Source kinds.
const (
	SourceLocal  SourceKind = iota // A .pkg archive on disk
	SourceRemote                   // A registry
)

// String implements fmt.Stringer.
func (k SourceKind) String() string {
	if k == SourceLocal {
		return "local"
	}
	return "remote"
}

// Source identifies where a spec's archive can be obtained.
type Source struct {
	Kind   SourceKind // Local or remote
	Origin string     // Archive path for local sources, registry URI for remote ones
}

// Local returns a local source for an archive path.
func Local(path string) Source { return Source{Kind: SourceLocal, Origin: path} }

// Remote returns a remote source for a registry URI.
func Remote(uri string) Source { return Source{Kind: SourceRemote, Origin: uri} }

// IsLocal reports whether the source is a local archive.
func (s Source) IsLocal() bool { return s.Kind == SourceLocal }

// String implements fmt.Stringer.
func (s Source) String() string {
	return fmt.Sprintf("%s:%s", s.Kind, s.Origin)
}

// Candidate is a spec found by a search together with its source.
type Candidate struct {
	Spec   *Spec
	Source Source
}

// String implements fmt.Stringer.
func (c Candidate) String() string {
	return fmt.Sprintf("%s (%s)", c.Spec.FullName(), c.Source.Kind)
}
