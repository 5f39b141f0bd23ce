package depgraph

import (
	"slices"

	"github.com/matzehuels/stackpkg/pkg/dag"
	"github.com/matzehuels/stackpkg/pkg/dag/transform"
	"github.com/matzehuels/stackpkg/pkg/requirement"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

// Installed reports whether an installed package satisfies a requirement.
type Installed interface {
	IsInstalled(name string, req requirement.Requirement) bool
}

// Graph is the set of specs under consideration plus the accumulated
// requirement per package name. It is not safe for concurrent use.
type Graph struct {
	development func(*spec.Spec) bool
	specs       []*spec.Spec
	byFullName  map[string]*spec.Spec
	reqs        map[string]spec.Dependency
	reqOrder    []string
}

// New returns an empty graph. With development set, development
// dependencies of every spec take part in ordering.
func New(development bool) *Graph {
	return NewFunc(func(*spec.Spec) bool { return development })
}

// NewFunc returns an empty graph in which the development dependencies of a
// spec take part in ordering when development reports true for it.
func NewFunc(development func(*spec.Spec) bool) *Graph {
	return &Graph{
		development: development,
		byFullName:  make(map[string]*spec.Spec),
		reqs:        make(map[string]spec.Dependency),
	}
}

// Add inserts specs unconditionally. A spec whose full name is already
// present is ignored, so the first source to supply a spec wins.
func (g *Graph) Add(specs ...*spec.Spec) {
	for _, s := range specs {
		if s == nil {
			continue
		}
		if _, ok := g.byFullName[s.FullName()]; ok {
			continue
		}
		g.byFullName[s.FullName()] = s
		g.specs = append(g.specs, s)
	}
}

// Contains reports whether a spec with the given full name is present.
func (g *Graph) Contains(fullName string) bool {
	_, ok := g.byFullName[fullName]
	return ok
}

// Remove deletes the spec with the given full name.
func (g *Graph) Remove(fullName string) {
	if _, ok := g.byFullName[fullName]; !ok {
		return
	}
	delete(g.byFullName, fullName)
	g.specs = slices.DeleteFunc(g.specs, func(s *spec.Spec) bool { return s.FullName() == fullName })
}

// Specs returns the specs in insertion order.
func (g *Graph) Specs() []*spec.Spec { return slices.Clone(g.specs) }

// Len returns the number of specs.
func (g *Graph) Len() int { return len(g.specs) }

// Accumulate merges dep into the running requirement for its name.
func (g *Graph) Accumulate(dep spec.Dependency) {
	if cur, ok := g.reqs[dep.Name]; ok {
		g.reqs[dep.Name] = cur.Merge(dep)
		return
	}
	g.reqs[dep.Name] = dep
	g.reqOrder = append(g.reqOrder, dep.Name)
}

// Requirement returns the accumulated dependency for name.
func (g *Graph) Requirement(name string) (spec.Dependency, bool) {
	d, ok := g.reqs[name]
	return d, ok
}

// Requirements returns the accumulated dependencies in first-seen order.
func (g *Graph) Requirements() []spec.Dependency {
	out := make([]spec.Dependency, 0, len(g.reqOrder))
	for _, name := range g.reqOrder {
		out = append(out, g.reqs[name])
	}
	return out
}

// PruneUnsatisfied removes every spec whose version violates the accumulated
// requirement for its name and returns how many were removed.
func (g *Graph) PruneUnsatisfied() int {
	removed := 0
	g.specs = slices.DeleteFunc(g.specs, func(s *spec.Spec) bool {
		dep, ok := g.reqs[s.Name]
		if !ok || dep.Requirement.SatisfiedBy(s.Version) {
			return false
		}
		delete(g.byFullName, s.FullName())
		removed++
		return true
	})
	return removed
}

// OK reports whether every accumulated requirement is met by a spec in the
// graph or by an installed package. installed may be nil.
func (g *Graph) OK(installed Installed) bool {
	return len(g.Reasons(installed)) == 0
}

// Reasons maps each unsatisfied package name to the requirement strings
// asked of it. The map is empty when the graph is OK.
func (g *Graph) Reasons(installed Installed) map[string][]string {
	reasons := make(map[string][]string)
	for _, name := range g.reqOrder {
		dep := g.reqs[name]
		if g.satisfied(dep) {
			continue
		}
		if installed != nil && installed.IsInstalled(dep.Name, dep.Requirement) {
			continue
		}
		reasons[name] = reasonClauses(dep.Requirement)
	}
	return reasons
}

// reasonClauses renders r without its ">= 0" clauses unless nothing else
// remains.
func reasonClauses(r requirement.Requirement) []string {
	all := r.Strings()
	out := slices.DeleteFunc(slices.Clone(all), func(c string) bool { return c == ">= 0" })
	if len(out) == 0 {
		return all
	}
	return out
}

func (g *Graph) satisfied(dep spec.Dependency) bool {
	return slices.ContainsFunc(g.specs, dep.Matches)
}

// DAG builds the dependency graph of the selected specs: one node per
// package name holding its highest spec, with an edge from each dependent to
// each dependency present in the graph. Cycles are broken. Node metadata
// carries "name", "version" and "platform".
func (g *Graph) DAG() *dag.DAG {
	d := g.build()
	transform.BreakCycles(d)
	return d
}

func (g *Graph) build() *dag.DAG {
	selected := g.selected()
	d := dag.New(nil)
	byName := make(map[string]*spec.Spec, len(selected))
	for _, s := range selected {
		byName[s.Name] = s
		_ = d.AddNode(dag.Node{ID: s.FullName(), Meta: dag.Metadata{
			"name":     s.Name,
			"version":  s.Version.String(),
			"platform": s.Platform,
		}})
	}
	for _, s := range selected {
		for _, dep := range s.Dependencies(g.development(s)) {
			target, ok := byName[dep.Name]
			if !ok || target == s {
				continue
			}
			_ = d.AddEdge(dag.Edge{From: s.FullName(), To: target.FullName(), Meta: dag.Metadata{
				"requirement": dep.Requirement.String(),
				"kind":        string(dep.Kind),
			}})
		}
	}
	return d
}

// Cycles returns the dependency edges that close a cycle among the selected
// specs, in the order DAG drops them.
func (g *Graph) Cycles() []dag.Edge {
	return transform.BreakCycles(g.build())
}

// DependencyOrder returns the selected specs with every dependent before its
// dependencies.
func (g *Graph) DependencyOrder() []*spec.Spec {
	return g.resolve(transform.TopologicalOrder(g.DAG()))
}

// InstallOrder returns the selected specs with every dependency before its
// dependents; it is the reverse of DependencyOrder.
func (g *Graph) InstallOrder() []*spec.Spec {
	return g.resolve(transform.ReverseTopologicalOrder(g.DAG()))
}

func (g *Graph) resolve(ids []string) []*spec.Spec {
	out := make([]*spec.Spec, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.byFullName[id])
	}
	return out
}

// selected keeps the highest spec per name, ordered by the first insertion
// of that name.
func (g *Graph) selected() []*spec.Spec {
	best := make(map[string]*spec.Spec)
	var names []string
	for _, s := range g.specs {
		cur, ok := best[s.Name]
		if !ok {
			names = append(names, s.Name)
		}
		if !ok || spec.Compare(s, cur) > 0 {
			best[s.Name] = s
		}
	}
	out := make([]*spec.Spec, 0, len(names))
	for _, name := range names {
		out = append(out, best[name])
	}
	return out
}
