package spec

import (
	"testing"

	"github.com/matzehuels/stackpkg/pkg/errors"
)

const sampleDoc = `
name = "a"
version = "1.2.0"
summary = "the a package"
executables = ["a"]

[[dependencies]]
name = "b"
requirements = [">= 1.0", "< 2"]

[[dependencies]]
name = "t"
requirements = ["~> 0.3"]
kind = "development"
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if s.FullName() != "a-1.2.0" || s.Platform != PlatformAny {
		t.Errorf("unexpected spec %s (%s)", s.FullName(), s.Platform)
	}
	if len(s.Runtime) != 1 || s.Runtime[0].Requirement.String() != ">= 1.0, < 2" {
		t.Errorf("Runtime = %v", s.Runtime)
	}
	if len(s.Development) != 1 || s.Development[0].Kind != KindDevelopment {
		t.Errorf("Development = %v", s.Development)
	}
	if len(s.Executables) != 1 || s.Executables[0] != "a" {
		t.Errorf("Executables = %v", s.Executables)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := map[string]string{
		"garbage":        "this is = = not toml",
		"missing name":   `version = "1.0"`,
		"bad version":    "name = \"a\"\nversion = \"x.y\"",
		"no version":     `name = "a"`,
		"bad kind":       "name = \"a\"\nversion = \"1\"\n[[dependencies]]\nname = \"b\"\nrequirements = []\nkind = \"optional\"",
		"bad constraint": "name = \"a\"\nversion = \"1\"\n[[dependencies]]\nname = \"b\"\nrequirements = [\"=> 1\"]",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			if !errors.Is(err, errors.ErrCodeFormat) {
				t.Errorf("Parse() error = %v, want FORMAT", err)
			}
		})
	}
}

func TestMarshal(t *testing.T) {
	s, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	data, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	again, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Marshal()) error: %v\n%s", err, data)
	}
	if again.FullName() != s.FullName() || again.Summary != s.Summary {
		t.Errorf("got %s %q, want %s %q", again.FullName(), again.Summary, s.FullName(), s.Summary)
	}
	if len(again.Runtime) != 1 || !again.Runtime[0].Requirement.Equal(s.Runtime[0].Requirement) {
		t.Errorf("Runtime = %v", again.Runtime)
	}
	if len(again.Development) != 1 {
		t.Errorf("Development = %v", again.Development)
	}
}
