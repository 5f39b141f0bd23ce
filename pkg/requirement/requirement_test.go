package requirement

import (
	"testing"

	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/version"
)

func v(s string) version.Version { return version.MustParse(s) }

var sample = []string{
	"0", "0.1", "0.9.9", "1.0", "1.0.0", "1.0.1", "1.0.5.rc1", "1.1", "1.9.9",
	"2.0.0", "2.1.9", "2.2.0", "2.2.7", "2.3.0", "2.99", "3.0.0", "10.0",
	"0.a", "0.0.rc1",
}

func TestParseClause(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.0", "= 1.0"},
		{"= 1.0", "= 1.0"},
		{"!= 1.0", "!= 1.0"},
		{">1.0", "> 1.0"},
		{"  >=  2.0.1 ", ">= 2.0.1"},
		{"<= 3", "<= 3"},
		{"< 3", "< 3"},
		{"~> 2.2", "~> 2.2"},
		{"~> 1.0.0.rc1", "~> 1.0.0.rc1"},
	}
	for _, tt := range tests {
		c, err := ParseClause(tt.in)
		if err != nil {
			t.Fatalf("ParseClause(%q) error: %v", tt.in, err)
		}
		if c.String() != tt.want {
			t.Errorf("ParseClause(%q) = %q, want %q", tt.in, c.String(), tt.want)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	for _, in := range []string{"~ 1.0", "=> 1.0", ">= ", "abc", ">= 1.0 2.0", "=== 1"} {
		_, err := Parse(in)
		if !errors.Is(err, errors.ErrCodeMalformedRequirement) {
			t.Errorf("Parse(%q) error = %v, want MALFORMED_REQUIREMENT", in, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, text := range []string{"= 1.0", "!= 2.0.1", "> 0.1", "< 3", ">= 1.0", "<= 1.0.a", "~> 2.2"} {
		r := MustParse(text)
		again := MustParse(r.String())
		if !r.Equal(again) {
			t.Errorf("round trip of %q gave %q", text, again)
		}
		if r.String() != text {
			t.Errorf("String() = %q, want %q", r.String(), text)
		}
	}

	r := MustParse(">= 1.0, < 2", "!= 1.5")
	if got := MustParse(r.String()); !got.Equal(r) {
		t.Errorf("multi-clause round trip: %q != %q", got, r)
	}
}

func TestDefault(t *testing.T) {
	empty, err := Parse()
	if err != nil {
		t.Fatal(err)
	}
	blank := MustParse("  ")
	var zero Requirement

	for _, r := range []Requirement{Default(), empty, blank, zero} {
		if !r.IsDefault() {
			t.Errorf("%q should be default", r)
		}
		if r.String() != ">= 0" {
			t.Errorf("String() = %q, want >= 0", r)
		}
		for _, s := range sample {
			if !r.SatisfiedBy(v(s)) && !v(s).IsPrerelease() {
				t.Errorf("default should be satisfied by %s", s)
			}
		}
	}
}

func TestPessimistic(t *testing.T) {
	r := MustParse("~> 2.2")
	for _, s := range []string{"2.2.0", "2.3.0", "2.99"} {
		if !r.SatisfiedBy(v(s)) {
			t.Errorf("~> 2.2 should accept %s", s)
		}
	}
	for _, s := range []string{"3.0.0", "2.1.9", "1.0"} {
		if r.SatisfiedBy(v(s)) {
			t.Errorf("~> 2.2 should reject %s", s)
		}
	}

	patch := MustParse("~> 2.2.0")
	if !patch.SatisfiedBy(v("2.2.7")) || patch.SatisfiedBy(v("2.3.0")) {
		t.Error("~> 2.2.0 should admit only 2.2.x")
	}
}

func TestSatisfiedBy(t *testing.T) {
	tests := []struct {
		req  string
		v    string
		want bool
	}{
		{"= 1.0", "1.0.0", true},
		{"!= 1.0", "1.0.0", false},
		{"> 1.0", "1.0.1", true},
		{"< 1.0", "1.0.0.rc1", true},
		{">= 1.0, < 2", "1.9.9", true},
		{">= 1.0, < 2", "2.0.0", false},
		{"<= 1.0", "1.0", true},
	}
	for _, tt := range tests {
		if got := MustParse(tt.req).SatisfiedBy(v(tt.v)); got != tt.want {
			t.Errorf("%q.SatisfiedBy(%s) = %v, want %v", tt.req, tt.v, got, tt.want)
		}
	}
}

func TestSpecific(t *testing.T) {
	tests := map[string]bool{
		">= 0":          false,
		"> 1.0":         false,
		"= 1.0":         true,
		"~> 1.0":        true,
		"< 2":           true,
		">= 1.0, < 2":   true,
		">= 1.0, > 0.1": true,
		">= 0, >= 1.0":  false,
		">= 0, ~> 1.0":  true,
	}
	for text, want := range tests {
		if got := MustParse(text).Specific(); got != want {
			t.Errorf("%q.Specific() = %v, want %v", text, got, want)
		}
	}
}

func TestIsPrerelease(t *testing.T) {
	if MustParse(">= 1.0").IsPrerelease() {
		t.Error(">= 1.0 should not admit prereleases")
	}
	if !MustParse(">= 1.0", "< 2.0.a").IsPrerelease() {
		t.Error("< 2.0.a should admit prereleases")
	}
}

func TestEqual(t *testing.T) {
	a := MustParse(">= 1.0", "< 2")
	b := MustParse("< 2", ">= 1.0")
	if !a.Equal(b) {
		t.Error("clause order should not affect equality")
	}
	if MustParse("= 1.0").Equal(MustParse("= 1.0.0")) {
		t.Error("equality compares rendered clauses")
	}
	if got := MustParse(">= 1.0", ">= 1.0"); len(got.Clauses()) != 1 {
		t.Errorf("duplicate clauses not removed: %q", got)
	}
}

func TestMerge(t *testing.T) {
	reqs := []Requirement{
		Default(),
		MustParse(">= 1.0"),
		MustParse("~> 1.0"),
		MustParse("~> 2.2"),
		MustParse("< 2"),
		MustParse("!= 2.2.0"),
		MustParse("= 2.2.7"),
	}
	for _, a := range reqs {
		for _, b := range reqs {
			m := Merge(a, b)
			for _, s := range sample {
				want := a.SatisfiedBy(v(s)) && b.SatisfiedBy(v(s))
				if got := m.SatisfiedBy(v(s)); got != want {
					t.Errorf("Merge(%q, %q).SatisfiedBy(%s) = %v, want %v", a, b, s, got, want)
				}
			}
		}
	}

	if got := Merge(Default(), MustParse("~> 1.0")); got.String() != ">= 0, ~> 1.0" {
		t.Errorf("Merge(default, ~> 1.0) = %q", got)
	}
	if got := Merge(Default(), Default()); !got.IsDefault() {
		t.Errorf("Merge(default, default) = %q, want >= 0", got)
	}
	if Merge(Default(), MustParse("< 2")).SatisfiedBy(v("0.a")) {
		t.Error("0.a satisfies >= 0, < 2")
	}
	if Merge(Default(), MustParse(">= 1.0")).Specific() {
		t.Error(">= 0, >= 1.0 should not be specific")
	}
	if got := Merge(MustParse(">= 1.0"), MustParse("~> 1.0")); got.String() != ">= 1.0, ~> 1.0" {
		t.Errorf("Merge() = %q", got)
	}
}

func TestText(t *testing.T) {
	var r Requirement
	if err := r.UnmarshalText([]byte("~> 1.2, != 1.2.3")); err != nil {
		t.Fatal(err)
	}
	b, _ := r.MarshalText()
	if string(b) != "~> 1.2, != 1.2.3" {
		t.Errorf("MarshalText() = %q", b)
	}
}
