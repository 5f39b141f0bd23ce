package version

import (
	"testing"

	"github.com/matzehuels/stackpkg/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		pre     bool
		wantErr bool
	}{
		{"1.0.0", "1.0.0", false, false},
		{" 2.3 ", "2.3", false, false},
		{"", "0", false, false},
		{"1.0.0.rc1", "1.0.0.rc1", true, false},
		{"1.0.0-beta.2", "1.0.0-beta.2", true, false},
		{"1.0.a", "1.0.a", true, false},
		{"junk", "", false, true},
		{"1..0", "", false, true},
		{"1.0 beta", "", false, true},
		{"9223372036854775807", "9223372036854775807", false, false},
		{"1.99999999999999999999", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := Parse(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeMalformedVersion) {
					t.Fatalf("Parse(%q) error = %v, want MALFORMED_VERSION", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if v.String() != tt.want {
				t.Errorf("String() = %q, want %q", v.String(), tt.want)
			}
			if v.IsPrerelease() != tt.pre {
				t.Errorf("IsPrerelease() = %v, want %v", v.IsPrerelease(), tt.pre)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.10", "1.9", 1},
		{"2.0.0.rc1", "2.0.0", -1},
		{"2.0.0.rc1", "1.9.9", 1},
		{"1.0.a", "1.0.b", -1},
		{"0", "0.0.1", -1},
	}

	for _, tt := range tests {
		got := MustParse(tt.a).Compare(MustParse(tt.b))
		if got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestZeroValue(t *testing.T) {
	var v Version
	if !v.Equal(Zero()) {
		t.Errorf("zero value should equal %q", Zero())
	}
	if v.String() != "0" {
		t.Errorf("String() = %q, want 0", v.String())
	}
}

func TestBump(t *testing.T) {
	tests := map[string]string{
		"2.2":       "3",
		"2.2.0":     "2.3",
		"5":         "6",
		"1.0.0.rc1": "1.1",
		"1.4.a.2":   "2",
	}
	for in, want := range tests {
		if got := MustParse(in).Bump(); !got.Equal(MustParse(want)) {
			t.Errorf("Bump(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestRelease(t *testing.T) {
	if got := MustParse("1.2.0.beta").Release(); got.String() != "1.2.0" {
		t.Errorf("Release() = %s, want 1.2.0", got)
	}
	v := MustParse("1.2.0")
	if got := v.Release(); got.String() != "1.2.0" {
		t.Errorf("Release() = %s, want 1.2.0", got)
	}
}

func TestText(t *testing.T) {
	var v Version
	if err := v.UnmarshalText([]byte("3.1.4")); err != nil {
		t.Fatal(err)
	}
	b, _ := v.MarshalText()
	if string(b) != "3.1.4" {
		t.Errorf("MarshalText() = %q", b)
	}
	if err := v.UnmarshalText([]byte("x.y")); err == nil {
		t.Error("expected error for malformed version")
	}
}
