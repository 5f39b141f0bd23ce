package resolve

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackpkg/pkg/locator"
)

// Development selects which specs contribute development dependencies.
type Development int

const (
	DevNone    Development = iota // Runtime dependencies only
	DevShallow                    // Development dependencies of requested packages
	DevDeep                       // Development dependencies of every package
)

// String returns the mode name.
func (d Development) String() string {
	switch d {
	case DevShallow:
		return "shallow"
	case DevDeep:
		return "deep"
	default:
		return "none"
	}
}

// Options configures a resolution.
type Options struct {
	Domain             locator.Domain // Where candidates are searched (default: both)
	Implicit           bool           // Domain was not chosen explicitly; allows downgrade to local
	IgnoreDependencies bool           // Plan only the requested packages
	Force              bool           // Skip the feasibility check
	Development        Development    // Development dependency mode
	MinimalDeps        bool           // Keep installed versions that satisfy transitive requirements
	Logger             *log.Logger    // Debug output (default: log.Default())
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return opts
}
