package locator

import (
	"strings"

	"github.com/matzehuels/stackpkg/pkg/errors"
)

// Domain selects where candidates are searched.
type Domain int

// Search domains.
const (
	DomainBoth   Domain = iota // Local cache and registry
	DomainLocal                // Local cache only
	DomainRemote               // Registry only
)

// String implements fmt.Stringer.
func (d Domain) String() string {
	switch d {
	case DomainLocal:
		return "local"
	case DomainRemote:
		return "remote"
	default:
		return "both"
	}
}

// Local reports whether the domain includes the local cache.
func (d Domain) Local() bool { return d != DomainRemote }

// Remote reports whether the domain includes the registry.
func (d Domain) Remote() bool { return d != DomainLocal }

// ParseDomain parses "local", "remote" or "both".
func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "both", "":
		return DomainBoth, nil
	case "local":
		return DomainLocal, nil
	case "remote":
		return DomainRemote, nil
	}
	return DomainBoth, errors.New(errors.ErrCodeInvalidInput, "unknown domain %q (want local, remote or both)", s)
}

// Set implements pflag.Value so a Domain can back a flag directly.
func (d *Domain) Set(s string) error {
	v, err := ParseDomain(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Type implements pflag.Value.
func (d *Domain) Type() string { return "domain" }
