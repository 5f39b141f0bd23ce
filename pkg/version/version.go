// Package version implements package version values.
//
// A version is a dot-separated list of segments. Leading numeric segments form
// the release; the first segment containing a letter (or a "-" suffix) starts
// the prerelease part. "1.0", "1.0.0" and "1.0.0.0" compare equal; any
// prerelease sorts before its release ("2.0.0.rc1" < "2.0.0").
//
// Ordering is delegated to github.com/hashicorp/go-version after the version is
// rewritten into its canonical RELEASE[-PRERELEASE] form.
package version

import (
	"regexp"
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/matzehuels/stackpkg/pkg/errors"
)

var (
	pattern   = regexp.MustCompile(`^[0-9]+(\.[0-9a-zA-Z]+)*(-[0-9A-Za-z-]+(\.[0-9A-Za-z-]+)*)?$`)
	segmentRe = regexp.MustCompile(`[0-9]+|[a-zA-Z]+`)

	zero = goversion.Must(goversion.NewVersion("0"))
)

// Version is an immutable parsed version. The zero value is equivalent to "0".
type Version struct {
	raw     string
	release []int64
	pre     []string
	v       *goversion.Version
}

// Parse parses s into a Version. Surrounding whitespace is ignored and an
// empty string parses as "0". Malformed input fails with ErrCodeMalformedVersion.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = "0"
	}
	if !pattern.MatchString(s) {
		return Version{}, errors.New(errors.ErrCodeMalformedVersion, "malformed version number string %q", s)
	}

	parts := segmentRe.FindAllString(strings.ReplaceAll(s, "-", ".pre."), -1)
	out := Version{raw: s}
	for i, p := range parts {
		if !isDigits(p) {
			out.pre = parts[i:]
			break
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return Version{}, errors.Wrap(errors.ErrCodeMalformedVersion, err, "version segment %q out of range in %q", p, s)
		}
		out.release = append(out.release, n)
	}
	if len(out.release) == 0 {
		return Version{}, errors.New(errors.ErrCodeMalformedVersion, "malformed version number string %q", s)
	}

	v, err := goversion.NewVersion(out.canonical())
	if err != nil {
		return Version{}, errors.Wrap(errors.ErrCodeMalformedVersion, err, "malformed version number string %q", s)
	}
	out.v = v
	return out, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// MustParse is like Parse but panics on malformed input. Intended for tests
// and package-level constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Zero returns the "0" version, the lower bound of every version.
func Zero() Version { return MustParse("0") }

func (v Version) canonical() string {
	rel := make([]string, len(v.release))
	for i, n := range v.release {
		rel[i] = strconv.FormatInt(n, 10)
	}
	s := strings.Join(rel, ".")
	if len(v.pre) > 0 {
		s += "-" + strings.Join(v.pre, ".")
	}
	return s
}

func (v Version) engine() *goversion.Version {
	if v.v == nil {
		return zero
	}
	return v.v
}

// String returns the version as it was written.
func (v Version) String() string {
	if v.raw == "" {
		return "0"
	}
	return v.raw
}

// Compare returns -1, 0 or 1 depending on whether v sorts before, equal to,
// or after o.
func (v Version) Compare(o Version) int {
	return v.engine().Compare(o.engine())
}

// Equal reports whether v and o are the same version ("1.0" equals "1.0.0").
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// LessThan reports whether v sorts before o.
func (v Version) LessThan(o Version) bool { return v.Compare(o) < 0 }

// IsPrerelease reports whether the version has a prerelease part.
func (v Version) IsPrerelease() bool { return len(v.pre) > 0 }

// Segments returns a copy of the numeric release segments.
func (v Version) Segments() []int64 {
	if len(v.release) == 0 {
		return []int64{0}
	}
	return append([]int64(nil), v.release...)
}

// Release returns v with any prerelease part removed.
func (v Version) Release() Version {
	if !v.IsPrerelease() {
		return v
	}
	return fromSegments(v.release)
}

// Bump returns the next boundary used by the pessimistic operator: the
// prerelease part and the last release segment are dropped and the new last
// segment is incremented. "2.2.0" bumps to "2.3", "2.2" to "3", "5" to "6".
func (v Version) Bump() Version {
	segs := v.Segments()
	if len(segs) > 1 {
		segs = segs[:len(segs)-1]
	}
	segs[len(segs)-1]++
	return fromSegments(segs)
}

func fromSegments(segs []int64) Version {
	parts := make([]string, len(segs))
	for i, n := range segs {
		parts[i] = strconv.FormatInt(n, 10)
	}
	return MustParse(strings.Join(parts, "."))
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
