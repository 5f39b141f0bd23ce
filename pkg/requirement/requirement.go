// Package requirement parses and evaluates version constraints.
//
// A Requirement is an ordered, de-duplicated list of clauses that are ANDed
// together. Supported operators are "=", "!=", ">", "<", ">=", "<=" and the
// pessimistic "~>", which admits versions at or above its operand but below
// the operand's next boundary ("~> 2.2" admits 2.2.x and 2.3, but not 3.0).
//
//	req, err := requirement.Parse(">= 1.0", "< 2")
//	if req.SatisfiedBy(version.MustParse("1.4.2")) {
//	    // ...
//	}
package requirement

import (
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/version"
)

// Op is a comparison operator.
type Op string

// Supported operators.
const (
	OpEqual        Op = "="
	OpNotEqual     Op = "!="
	OpGreater      Op = ">"
	OpLess         Op = "<"
	OpGreaterEqual Op = ">="
	OpLessEqual    Op = "<="
	OpPessimistic  Op = "~>"
)

var clauseRe = regexp.MustCompile(`^\s*(=|!=|>=|<=|>|<|~>)?\s*([0-9]+(?:\.[0-9a-zA-Z]+)*(?:-[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?)\s*$`)

// Clause is one (operator, version) pair.
type Clause struct {
	Op      Op
	Version version.Version
}

// String renders the clause as "op version".
func (c Clause) String() string {
	return string(c.Op) + " " + c.Version.String()
}

// SatisfiedBy reports whether v passes the clause.
func (c Clause) SatisfiedBy(v version.Version) bool {
	cmp := v.Compare(c.Version)
	switch c.Op {
	case OpEqual:
		return cmp == 0
	case OpNotEqual:
		return cmp != 0
	case OpGreater:
		return cmp > 0
	case OpLess:
		return cmp < 0
	case OpGreaterEqual:
		return cmp >= 0
	case OpLessEqual:
		return cmp <= 0
	case OpPessimistic:
		return cmp >= 0 && v.Release().LessThan(c.Version.Bump())
	}
	return false
}

// ParseClause parses "op version" or a bare version (implicit "=").
func ParseClause(text string) (Clause, error) {
	m := clauseRe.FindStringSubmatch(text)
	if m == nil {
		return Clause{}, errors.New(errors.ErrCodeMalformedRequirement, "illformed requirement %q", text)
	}
	v, err := version.Parse(m[2])
	if err != nil {
		return Clause{}, errors.Wrap(errors.ErrCodeMalformedRequirement, err, "illformed requirement %q", text)
	}
	op := Op(m[1])
	if op == "" {
		op = OpEqual
	}
	return Clause{Op: op, Version: v}, nil
}

// Requirement is an AND-combined list of clauses. The zero value behaves as
// Default.
type Requirement struct {
	clauses []Clause
}

var defaultClause = Clause{Op: OpGreaterEqual, Version: version.Zero()}

// Default returns the ">= 0" requirement every version satisfies.
func Default() Requirement {
	return Requirement{clauses: []Clause{defaultClause}}
}

// Parse builds a Requirement from clause expressions. Each expression may
// hold several comma-separated clauses. No expressions (or only blank ones)
// yield Default.
func Parse(exprs ...string) (Requirement, error) {
	var clauses []Clause
	for _, expr := range exprs {
		for _, part := range strings.Split(expr, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			c, err := ParseClause(part)
			if err != nil {
				return Requirement{}, err
			}
			clauses = append(clauses, c)
		}
	}
	return New(clauses...), nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(exprs ...string) Requirement {
	r, err := Parse(exprs...)
	if err != nil {
		panic(err)
	}
	return r
}

// New builds a Requirement from clauses, dropping duplicates while keeping
// first-seen order.
func New(clauses ...Clause) Requirement {
	seen := make(map[string]bool, len(clauses))
	out := make([]Clause, 0, len(clauses))
	for _, c := range clauses {
		key := c.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	if len(out) == 0 {
		return Default()
	}
	return Requirement{clauses: out}
}

// Clauses returns a copy of the clause list.
func (r Requirement) Clauses() []Clause {
	if len(r.clauses) == 0 {
		return []Clause{defaultClause}
	}
	return slices.Clone(r.clauses)
}

// SatisfiedBy reports whether v passes every clause.
func (r Requirement) SatisfiedBy(v version.Version) bool {
	for _, c := range r.Clauses() {
		if !c.SatisfiedBy(v) {
			return false
		}
	}
	return true
}

// IsPrerelease reports whether any clause names a prerelease version. Such a
// requirement admits prerelease candidates.
func (r Requirement) IsPrerelease() bool {
	for _, c := range r.clauses {
		if c.Version.IsPrerelease() {
			return true
		}
	}
	return false
}

// Specific reports whether the requirement pins anything beyond a lower
// bound: more than one clause, or a single clause that is not ">" or ">=".
// ">= 0" clauses are not counted.
func (r Requirement) Specific() bool {
	cs := slices.DeleteFunc(r.Clauses(), Clause.isDefault)
	switch len(cs) {
	case 0:
		return false
	case 1:
		return cs[0].Op != OpGreater && cs[0].Op != OpGreaterEqual
	}
	return true
}

// IsDefault reports whether r is the ">= 0" requirement.
func (r Requirement) IsDefault() bool {
	cs := r.Clauses()
	return len(cs) == 1 && cs[0].isDefault()
}

func (c Clause) isDefault() bool {
	return c.Op == OpGreaterEqual && c.Version.Equal(version.Zero())
}

// Strings renders each clause as "op version" in clause order.
func (r Requirement) Strings() []string {
	cs := r.Clauses()
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

// String joins the clauses with ", ".
func (r Requirement) String() string {
	return strings.Join(r.Strings(), ", ")
}

// Equal compares the sorted rendered clause lists. Two clauses that mean the
// same thing but are written differently ("= 1.0" and "= 1.0.0") are unequal.
func (r Requirement) Equal(o Requirement) bool {
	a, b := r.Strings(), o.Strings()
	sort.Strings(a)
	sort.Strings(b)
	return slices.Equal(a, b)
}

// Merge combines two requirements on the same name. The result is satisfied
// exactly by the versions satisfying both; a ">= 0" side is kept as a clause
// so that prereleases below 0 stay excluded.
func Merge(a, b Requirement) Requirement {
	return New(append(a.Clauses(), b.Clauses()...)...)
}

// MarshalText implements encoding.TextMarshaler.
func (r Requirement) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Requirement) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
