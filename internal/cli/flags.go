package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/locator"
	"github.com/matzehuels/stackpkg/pkg/requirement"
	"github.com/matzehuels/stackpkg/pkg/resolve"
)

// bind registers the resolution flags on cmd.
func (f *searchFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.BoolVar(&f.local, "local", false, "search the local package cache only")
	fl.BoolVar(&f.remote, "remote", false, "search the registry only")
	fl.BoolVar(&f.both, "both", false, "search the local cache and the registry")
	fl.StringSliceVar(&f.sources, "source", nil, "registry URI (repeatable, overrides config)")
	fl.BoolVar(&f.prerelease, "prerelease", false, "allow prerelease versions")
	fl.BoolVar(&f.ignoreDependencies, "ignore-dependencies", false, "do not resolve or check dependencies")
	fl.BoolVar(&f.force, "force", false, "plan despite unsatisfied requirements and skip failed fetches")
	fl.BoolVar(&f.development, "development", false, "include development dependencies of the requested packages")
	fl.BoolVar(&f.developmentAll, "development-all", false, "include development dependencies of every package")
	fl.BoolVar(&f.minimalDeps, "minimal-deps", false, "keep installed versions that satisfy transitive requirements")
	fl.BoolVar(&f.refresh, "refresh", false, "bypass the registry metadata cache")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable the registry metadata cache")
	fl.StringVar(&f.platform, "platform", "", "target platform (default: this machine)")
	fl.IntVar(&f.concurrency, "concurrency", 0, "parallel registry lookups (default from config)")
	cmd.MarkFlagsMutuallyExclusive("local", "remote", "both")
}

// explicitDomain returns the explicitly requested search domain, if any.
func (f *searchFlags) explicitDomain() (locator.Domain, bool) {
	switch {
	case f.local:
		return locator.DomainLocal, true
	case f.remote:
		return locator.DomainRemote, true
	case f.both:
		return locator.DomainBoth, true
	}
	return locator.DomainBoth, false
}

func (f *searchFlags) developmentMode() resolve.Development {
	switch {
	case f.developmentAll:
		return resolve.DevDeep
	case f.development:
		return resolve.DevShallow
	}
	return resolve.DevNone
}

// parseRequests parses NAME[:REQUIREMENT] arguments. A --version flag
// applies to a single bare name.
func parseRequests(args []string, version string) ([]resolve.Request, error) {
	reqs := make([]resolve.Request, 0, len(args))
	for _, arg := range args {
		r, err := resolve.ParseRequest(arg)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	if version == "" {
		return reqs, nil
	}
	if len(reqs) != 1 || !reqs[0].Requirement.IsDefault() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "--version requires exactly one package without a requirement")
	}
	req, err := requirement.Parse(version)
	if err != nil {
		return nil, err
	}
	reqs[0].Requirement = req
	return reqs, nil
}
