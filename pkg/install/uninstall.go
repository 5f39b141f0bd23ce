package install

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/installed"
	"github.com/matzehuels/stackpkg/pkg/requirement"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

// Chooser picks the versions to remove when several match.
type Chooser func(matches []*spec.Spec) ([]*spec.Spec, error)

// UninstallOptions configures Uninstaller.Uninstall.
type UninstallOptions struct {
	All                bool    // Remove every matching version
	IgnoreDependencies bool    // Remove even if other packages depend on it
	Executables        bool    // Remove wrappers once no version is left
	Choose             Chooser // Interactive choice among multiple matches
}

// Uninstaller removes installed packages.
type Uninstaller struct {
	layout Layout
	store  installed.Store
	logger *log.Logger
}

// NewUninstaller creates an uninstaller. The logger may be nil.
func NewUninstaller(layout Layout, store installed.Store, logger *log.Logger) *Uninstaller {
	if logger == nil {
		logger = log.Default()
	}
	return &Uninstaller{layout: layout, store: store, logger: logger}
}

// Uninstall removes the installed versions of name matching req and returns
// them. Several matches need opts.All or opts.Choose. A version that is the
// last satisfier of another installed package's runtime dependency is kept
// and reported with ErrCodeDependency unless opts.IgnoreDependencies is set.
func (u *Uninstaller) Uninstall(ctx context.Context, name string, req requirement.Requirement, opts UninstallOptions) ([]*spec.Spec, error) {
	set, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	matches := set.Find(name, req)
	if len(matches) == 0 {
		return nil, errors.New(errors.ErrCodePackageNotFound, "%s (%s) is not installed", name, req)
	}

	targets := matches
	if len(matches) > 1 && !opts.All {
		if opts.Choose == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%d versions of %s are installed; choose one or pass --all", len(matches), name)
		}
		if targets, err = opts.Choose(matches); err != nil {
			return nil, err
		}
	}

	var removed []*spec.Spec
	for _, s := range targets {
		if !opts.IgnoreDependencies {
			if deps := set.Dependents(s); len(deps) > 0 {
				names := make([]string, len(deps))
				for i, d := range deps {
					names[i] = d.FullName()
				}
				return removed, errors.New(errors.ErrCodeDependency, "%s is required by %s", s.FullName(), strings.Join(names, ", "))
			}
		}
		if err := u.remove(ctx, s); err != nil {
			return removed, err
		}
		set.Remove(s.FullName())
		removed = append(removed, s)
		u.logger.Info("removed", "package", s.FullName())
	}

	if opts.Executables && len(set.Find(name, requirement.Default())) == 0 {
		u.removeWrappers(removed)
	}
	return removed, nil
}

func (u *Uninstaller) remove(ctx context.Context, s *spec.Spec) error {
	dir := u.layout.PackageDir(s)
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "remove %s", dir)
	}
	return u.store.Forget(ctx, s.FullName())
}

func (u *Uninstaller) removeWrappers(removed []*spec.Spec) {
	if u.layout.BinDir == "" {
		return
	}
	for _, s := range removed {
		for _, exe := range s.Executables {
			path := u.layout.WrapperPath(exe)
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				u.logger.Warn("could not remove wrapper", "path", path, "err", err)
			}
		}
	}
}
