// Package localcache scans a directory of package archives.
//
// The directory is the download cache of the installer and, for
// "stackpkg serve", the published package set. Archives are named
// <full-name>.pkg; the metadata inside the archive is authoritative.
package localcache

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackpkg/pkg/archive"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

// Dir is a directory of package archives. It never writes to the directory.
type Dir struct {
	path   string
	logger *log.Logger
}

// New returns a Dir rooted at path. A nil logger uses log.Default().
func New(path string, logger *log.Logger) *Dir {
	if logger == nil {
		logger = log.Default()
	}
	return &Dir{path: path, logger: logger}
}

// Path returns the directory path.
func (d *Dir) Path() string { return d.path }

// Find returns a local candidate for every readable archive whose metadata
// names exactly name. Versions are not filtered. Unreadable archives are
// skipped and reported in the error list.
func (d *Dir) Find(ctx context.Context, name string) ([]spec.Candidate, []error) {
	matches, err := filepath.Glob(filepath.Join(d.path, escapeGlob(name)+"-*"+archive.Ext))
	if err != nil {
		return nil, []error{err}
	}
	cands, errs := d.read(ctx, matches)
	out := cands[:0]
	for _, c := range cands {
		if c.Spec.Name == name {
			out = append(out, c)
		}
	}
	return out, errs
}

// All returns a candidate for every readable archive in the directory.
func (d *Dir) All(ctx context.Context) ([]spec.Candidate, []error) {
	entries, err := os.ReadDir(d.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, []error{err}
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), archive.Ext) {
			paths = append(paths, filepath.Join(d.path, e.Name()))
		}
	}
	return d.read(ctx, paths)
}

func (d *Dir) read(ctx context.Context, paths []string) ([]spec.Candidate, []error) {
	sort.Strings(paths)
	var (
		out  []spec.Candidate
		errs []error
	)
	for _, p := range paths {
		if ctx.Err() != nil {
			return out, append(errs, ctx.Err())
		}
		s, err := archive.ReadSpec(p)
		if err != nil {
			d.logger.Debug("skipping archive", "path", p, "err", err)
			errs = append(errs, err)
			continue
		}
		out = append(out, spec.Candidate{Spec: s, Source: spec.Local(p)})
	}
	return out, errs
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`)

func escapeGlob(s string) string { return globEscaper.Replace(s) }
