package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackpkg/pkg/archive"
	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/installed"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

// PackagesDir is the directory below the install root holding unpacked
// packages.
const PackagesDir = "packages"

// Layout names the directories of an installation.
type Layout struct {
	InstallDir string // Install root
	BinDir     string // Directory receiving executable wrappers; empty disables wrappers
}

// PackageDir returns the directory s is unpacked into.
func (l Layout) PackageDir(s *spec.Spec) string {
	return filepath.Join(l.InstallDir, PackagesDir, s.FullName())
}

// WrapperPath returns the wrapper location of an executable.
func (l Layout) WrapperPath(exe string) string {
	return filepath.Join(l.BinDir, filepath.Base(exe))
}

// FSInstaller unpacks archives into the install directory and records them
// in a store.
type FSInstaller struct {
	layout Layout
	store  installed.Store
	logger *log.Logger
}

// NewFSInstaller creates an installer. The logger may be nil.
func NewFSInstaller(layout Layout, store installed.Store, logger *log.Logger) *FSInstaller {
	if logger == nil {
		logger = log.Default()
	}
	return &FSInstaller{layout: layout, store: store, logger: logger}
}

// Install unpacks the archive at archivePath. Unless opts.Force or
// opts.IgnoreDependencies is set, every runtime dependency must already be
// installed; otherwise the install fails with ErrCodeDependency.
func (f *FSInstaller) Install(ctx context.Context, archivePath string, opts Options) (*spec.Spec, error) {
	s, err := archive.ReadSpec(archivePath)
	if err != nil {
		return nil, err
	}
	if !opts.Force && !opts.IgnoreDependencies {
		if err := f.checkDependencies(ctx, s); err != nil {
			return nil, err
		}
	}

	dir := f.layout.PackageDir(s)
	if err := os.RemoveAll(dir); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "clean %s", dir)
	}
	if _, err := archive.Extract(archivePath, dir); err != nil {
		return nil, err
	}
	if opts.Wrappers && f.layout.BinDir != "" {
		if err := f.writeWrappers(s, dir); err != nil {
			return nil, err
		}
	}
	if err := f.store.Record(ctx, s); err != nil {
		return nil, err
	}
	f.logger.Debug("unpacked", "package", s.FullName(), "dir", dir)
	return s, nil
}

func (f *FSInstaller) checkDependencies(ctx context.Context, s *spec.Spec) error {
	set, err := f.store.Load(ctx)
	if err != nil {
		return err
	}
	var missing []string
	for _, dep := range s.Runtime {
		if !set.IsInstalled(dep.Name, dep.Requirement) {
			missing = append(missing, dep.String())
		}
	}
	if len(missing) > 0 {
		return errors.New(errors.ErrCodeDependency, "%s requires %s", s.FullName(), strings.Join(missing, ", "))
	}
	return nil
}

func (f *FSInstaller) writeWrappers(s *spec.Spec, dir string) error {
	if err := os.MkdirAll(f.layout.BinDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", f.layout.BinDir)
	}
	for _, exe := range s.Executables {
		target := filepath.Join(dir, "bin", filepath.Base(exe))
		script := fmt.Sprintf("#!/bin/sh\n# stackpkg wrapper for %s\nexec %q \"$@\"\n", s.FullName(), target)
		path := f.layout.WrapperPath(exe)
		if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write wrapper %s", path)
		}
	}
	return nil
}
