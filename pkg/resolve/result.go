package resolve

import (
	"github.com/matzehuels/stackpkg/pkg/depgraph"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

// Result is the outcome of a successful resolution.
type Result struct {
	ID        string                 // Session id
	Plan      []*spec.Spec           // Install order, dependencies first, requested packages last
	Sources   map[string]spec.Source // Source per planned full name
	Requested []spec.Candidate       // Explicitly requested packages
	Errors    []error                // Advisory errors, e.g. registry outages
	Graph     *depgraph.Graph        // Final dependency graph
}

// Candidates returns the plan paired with the source of each spec.
func (r *Result) Candidates() []spec.Candidate {
	out := make([]spec.Candidate, 0, len(r.Plan))
	for _, s := range r.Plan {
		out = append(out, spec.Candidate{Spec: s, Source: r.Sources[s.FullName()]})
	}
	return out
}

// IsRequested reports whether fullName was explicitly requested.
func (r *Result) IsRequested(fullName string) bool {
	for _, c := range r.Requested {
		if c.Spec.FullName() == fullName {
			return true
		}
	}
	return false
}
